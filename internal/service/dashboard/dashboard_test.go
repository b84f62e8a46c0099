package dashboard_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/dentaldesk/internal/service/clinic"
	"github.com/Alijeyrad/dentaldesk/internal/service/dashboard"
	"github.com/Alijeyrad/dentaldesk/internal/service/notification"
	"github.com/Alijeyrad/dentaldesk/internal/table"
	"github.com/Alijeyrad/dentaldesk/internal/table/tabletest"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc      dashboard.Service
	clock    *fakeClock
	backends map[string]*tabletest.Backend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog, err := clinic.NewCatalog(clinic.Options{})
	require.NoError(t, err)

	f := &fixture{
		clock:    &fakeClock{now: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)},
		backends: make(map[string]*tabletest.Backend),
	}
	for _, e := range catalog.Entities() {
		f.backends[e] = tabletest.NewBackend()
	}
	f.backends["inventory"].Put(map[string]any{"id": "1", "name": "Gloves", "quantity": 4.0, "restockLevel": 5.0})

	f.svc, err = dashboard.New(catalog,
		func(entity string) table.Backend { return f.backends[entity] },
		dashboard.Options{IdleAfter: time.Hour},
		dashboard.WithClock(f.clock.Now),
	)
	require.NoError(t, err)
	return f
}

func TestTableMountsOncePerSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Table(ctx, "s1", "inventory")
	require.NoError(t, err)
	b, err := f.svc.Table(ctx, "s1", "inventory")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Len(t, f.backends["inventory"].Calls("LIST"), 1)

	other, err := f.svc.Table(ctx, "s2", "inventory")
	require.NoError(t, err)
	assert.NotSame(t, a, other)
	assert.Len(t, f.backends["inventory"].Calls("LIST"), 2)
}

func TestTableRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Table(context.Background(), "s1", "invoices")
	assert.ErrorIs(t, err, clinic.ErrUnknownEntity)

	_, err = f.svc.Table(context.Background(), "", "patients")
	assert.ErrorIs(t, err, dashboard.ErrSessionRequired)
}

func TestFailedFirstLoadStillReturnsTable(t *testing.T) {
	f := newFixture(t)
	f.backends["patients"].FailList = true

	ctrl, err := f.svc.Table(context.Background(), "s1", "patients")
	require.NoError(t, err)
	view, err := ctrl.View()
	require.NoError(t, err)
	assert.NotEmpty(t, view.Error)

	center, err := f.svc.Notifications("s1")
	require.NoError(t, err)
	require.Len(t, center.Active(), 1)
	assert.Equal(t, notification.KindError, center.Active()[0].Kind)
}

func TestMutationsReportToSessionNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.Mutate(ctx, "s1", "inventory", "adjust", func(c *table.Controller) error {
		return c.Adjust(ctx, "1", -1)
	})
	require.NoError(t, err)

	ctrl, err := f.svc.Table(ctx, "s1", "inventory")
	require.NoError(t, err)
	rec, _ := ctrl.Record("1")
	assert.Equal(t, 3.0, rec["quantity"])

	var confirmID string
	err = f.svc.Mutate(ctx, "s1", "inventory", "delete", func(c *table.Controller) error {
		var err error
		confirmID, err = c.RequestDelete("1")
		return err
	})
	require.NoError(t, err)

	center, err := f.svc.Notifications("s1")
	require.NoError(t, err)
	require.NoError(t, center.Resolve(ctx, confirmID, table.ActionDelete))
	assert.Empty(t, f.backends["inventory"].Items())

	other, err := f.svc.Notifications("s2")
	require.NoError(t, err)
	assert.Empty(t, other.Active())
}

func TestUnmountDropsTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Unmount("s1", "patients"), dashboard.ErrTableNotOpen)

	first, err := f.svc.Table(ctx, "s1", "patients")
	require.NoError(t, err)
	require.NoError(t, f.svc.Unmount("s1", "patients"))
	assert.False(t, first.Mounted())

	second, err := f.svc.Table(ctx, "s1", "patients")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Len(t, f.backends["patients"].Calls("LIST"), 2)
}

func TestSweepDiscardsIdleWorkspaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	idle, err := f.svc.Table(ctx, "idle", "patients")
	require.NoError(t, err)
	f.clock.Advance(45 * time.Minute)
	_, err = f.svc.Table(ctx, "busy", "patients")
	require.NoError(t, err)
	f.clock.Advance(30 * time.Minute)

	assert.Equal(t, 1, f.svc.Sweep(f.clock.Now()))
	assert.False(t, idle.Mounted())

	assert.Equal(t, 0, f.svc.Sweep(f.clock.Now()))
}

func TestCloseDiscardsWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ctrl, err := f.svc.Table(ctx, "s1", "dentures")
	require.NoError(t, err)
	f.svc.Close("s1")
	assert.False(t, ctrl.Mounted())
	f.svc.Close("s1")
}

func TestRunSweeperStopsWithContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		dashboard.RunSweeper(ctx, f.svc, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
