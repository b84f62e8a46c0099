package denture_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/dentaldesk/internal/service/denture"
	"github.com/Alijeyrad/dentaldesk/internal/table"
	"github.com/Alijeyrad/dentaldesk/internal/table/tabletest"
)

var june15 = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newTable(t *testing.T, items ...map[string]any) (*table.Controller, *tabletest.Backend, *tabletest.Notifier) {
	t.Helper()
	backend := tabletest.NewBackend(items...)
	notifier := tabletest.NewNotifier()
	ctrl, err := table.New(denture.Table(), backend, notifier, table.WithClock(func() time.Time { return june15 }))
	require.NoError(t, err)
	require.NoError(t, ctrl.Mount(context.Background()))
	return ctrl, backend, notifier
}

func rowIDs(t *testing.T, ctrl *table.Controller) []string {
	t.Helper()
	rows, err := ctrl.Rows()
	require.NoError(t, err)
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.String("id")
	}
	return out
}

func TestCategories(t *testing.T) {
	ctrl, _, _ := newTable(t,
		map[string]any{"id": 1, "status": "in-lab", "estimatedDeliveryDate": "2024-06-10"},
		map[string]any{"id": 2, "status": "trial", "estimatedDeliveryDate": "2024-06-15T00:00:00Z"},
		map[string]any{"id": 3, "status": "delivered", "estimatedDeliveryDate": "2024-06-01"},
		map[string]any{"id": 4, "status": "impression"},
	)

	tests := map[string][]string{
		"in-progress": {"1", "2", "4"},
		"overdue":     {"1"},
		"delivered":   {"3"},
	}
	for category, want := range tests {
		require.NoError(t, ctrl.SetCategory(category))
		assert.Equal(t, want, rowIDs(t, ctrl), category)
	}
}

func TestTrialBeforeDelivery(t *testing.T) {
	tests := []struct {
		name  string
		draft table.Record
		ok    bool
	}{
		{"ordered", table.Record{"trialDate": "2024-06-20", "estimatedDeliveryDate": "2024-07-01"}, true},
		{"same day", table.Record{"trialDate": "2024-07-01T09:00:00Z", "estimatedDeliveryDate": "2024-07-01"}, true},
		{"trial after delivery", table.Record{"trialDate": "2024-07-02", "estimatedDeliveryDate": "2024-07-01"}, false},
		{"no trial", table.Record{"estimatedDeliveryDate": "2024-07-01"}, true},
		{"no delivery", table.Record{"trialDate": "2024-07-02", "estimatedDeliveryDate": ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := denture.TrialBeforeDelivery(tt.draft, june15)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var ve *table.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "trialDate", ve.Field)
		})
	}
}

func TestEditWithTrialAfterDeliveryIsNotSent(t *testing.T) {
	ctrl, backend, notifier := newTable(t, map[string]any{
		"id": 9, "patientId": 3, "trialDate": "2024-06-20T00:00:00Z", "estimatedDeliveryDate": "2024-07-01T00:00:00Z",
	})

	modal, err := ctrl.OpenEdit("9")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-20", modal.Draft["trialDate"])

	_, err = ctrl.SetField("trialDate", "2024-07-05")
	require.NoError(t, err)
	_, err = ctrl.SubmitModal(context.Background())
	assert.True(t, table.IsValidation(err))
	assert.Empty(t, backend.Calls("PUT"))
	assert.Len(t, notifier.Toasts("error"), 1)

	modal = ctrl.Modal()
	require.NotNil(t, modal)
	assert.Equal(t, table.ModalEditing, modal.Phase)
	assert.Equal(t, "2024-07-05", modal.Draft["trialDate"])
}

func TestCreateUnderPatient(t *testing.T) {
	ctrl, backend, _ := newTable(t)

	modal, err := ctrl.OpenCreate("3")
	require.NoError(t, err)
	require.Len(t, modal.Toggles, 2)

	_, err = ctrl.ToggleField("upperArch")
	require.NoError(t, err)
	_, err = ctrl.SubmitModal(context.Background())
	require.NoError(t, err)

	posts := backend.Calls("POST")
	require.Len(t, posts, 1)
	assert.Equal(t, "3", posts[0].RelatedID)
	assert.Equal(t, "3", posts[0].Body["patientId"])
	assert.Equal(t, true, posts[0].Body["upperArch"])
	assert.Equal(t, false, posts[0].Body["lowerArch"])
}

func TestCreateWithoutPatientIsRejected(t *testing.T) {
	ctrl, backend, _ := newTable(t)

	_, err := ctrl.OpenCreate("")
	require.NoError(t, err)
	_, err = ctrl.SubmitModal(context.Background())

	var ve *table.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "patientId", ve.Field)
	assert.Empty(t, backend.Calls("POST"))
}
