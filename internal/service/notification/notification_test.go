package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/dentaldesk/internal/table"
)

func TestTransientToastsExpire(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	c := NewCenter(5 * time.Second).WithClock(func() time.Time { return now })

	c.Success("Patient updated")
	c.Error("Failed to load patients")
	require.Len(t, c.Active(), 2)

	now = now.Add(5 * time.Second)
	assert.Empty(t, c.Active())
}

func TestConfirmationStaysUntilResolved(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	c := NewCenter(time.Second).WithClock(func() time.Time { return now })

	var got []string
	id := c.Confirm("Delete patient #2?", []table.Action{{Key: "cancel", Label: "Cancel"}, {Key: "delete", Label: "Delete"}},
		func(_ context.Context, action string) error {
			got = append(got, action)
			return nil
		})

	now = now.Add(time.Hour)
	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, KindConfirm, active[0].Kind)
	assert.Nil(t, active[0].ExpiresAt)
	assert.Equal(t, 1, c.Pending())

	assert.ErrorIs(t, c.Dismiss(id), ErrActionRequired)
	assert.ErrorIs(t, c.Resolve(context.Background(), id, "archive"), ErrUnknownAction)

	require.NoError(t, c.Resolve(context.Background(), id, "delete"))
	assert.Equal(t, []string{"delete"}, got)
	assert.Empty(t, c.Active())

	assert.ErrorIs(t, c.Resolve(context.Background(), id, "delete"), ErrNotFound)
	assert.Equal(t, []string{"delete"}, got, "a prompt resolves once")
}

func TestDismissTransient(t *testing.T) {
	c := NewCenter(time.Minute)
	c.Info("Saved")
	id := c.Active()[0].ID

	require.NoError(t, c.Dismiss(id))
	assert.Empty(t, c.Active())
	assert.ErrorIs(t, c.Dismiss(id), ErrNotFound)
}

func TestResolveRejectsTransient(t *testing.T) {
	c := NewCenter(time.Minute)
	c.Success("done")
	id := c.Active()[0].ID

	assert.ErrorIs(t, c.Resolve(context.Background(), id, "delete"), ErrUnknownAction)
}

func TestCenterKeepsConfirmationsWhenTrimming(t *testing.T) {
	c := NewCenter(time.Minute)
	c.max = 3
	c.Confirm("keep me", []table.Action{{Key: "cancel"}}, nil)
	for i := 0; i < 5; i++ {
		c.Info("noise")
	}

	active := c.Active()
	require.Len(t, active, 3)
	assert.Equal(t, KindConfirm, active[0].Kind)
}

func TestCenterSatisfiesNotifier(t *testing.T) {
	var _ table.Notifier = NewCenter(0)
}
