package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/dentaldesk/internal/service/inventory"
	"github.com/Alijeyrad/dentaldesk/internal/table"
	"github.com/Alijeyrad/dentaldesk/internal/table/tabletest"
)

var june15 = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newTable(t *testing.T, items ...map[string]any) (*table.Controller, *tabletest.Backend, *tabletest.Notifier) {
	t.Helper()
	backend := tabletest.NewBackend(items...)
	notifier := tabletest.NewNotifier()
	ctrl, err := table.New(inventory.Table(), backend, notifier, table.WithClock(func() time.Time { return june15 }))
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

func TestStockBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		item    table.Record
		low     bool
		out     bool
		inStock bool
	}{
		{"at restock level", table.Record{"quantity": 5.0, "restockLevel": 5.0}, true, false, false},
		{"below restock level", table.Record{"quantity": 3.0, "restockLevel": 5.0}, true, false, false},
		{"empty", table.Record{"quantity": 0.0, "restockLevel": 5.0}, false, true, false},
		{"above restock level", table.Record{"quantity": 6.0, "restockLevel": 5.0}, false, false, true},
		{"numeric strings", table.Record{"quantity": "2", "restockLevel": "4"}, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.low, inventory.LowStock(tt.item, june15))
			assert.Equal(t, tt.out, inventory.OutOfStock(tt.item, june15))
			assert.Equal(t, tt.inStock, inventory.InStock(tt.item, june15))
		})
	}
}

func TestLowAndOutOfStockCategories(t *testing.T) {
	ctrl, _, _ := newTable(t,
		map[string]any{"id": "1", "name": "Gloves", "quantity": 5.0, "restockLevel": 5.0},
		map[string]any{"id": "2", "name": "Gauze", "quantity": 0.0, "restockLevel": 5.0},
		map[string]any{"id": "3", "name": "Masks", "quantity": 40.0, "restockLevel": 10.0},
	)

	require.NoError(t, ctrl.SetCategory("low-stock"))
	assert.Equal(t, []string{"1"}, rowIDs(t, ctrl))

	require.NoError(t, ctrl.SetCategory("out-of-stock"))
	assert.Equal(t, []string{"2"}, rowIDs(t, ctrl))

	require.NoError(t, ctrl.SetCategory("in-stock"))
	assert.Equal(t, []string{"3"}, rowIDs(t, ctrl))
}

func TestExpiringCategory(t *testing.T) {
	ctrl, _, _ := newTable(t,
		map[string]any{"id": "1", "name": "Anesthetic", "expiryDate": "2024-06-30"},
		map[string]any{"id": "2", "name": "Composite", "expiryDate": "2024-09-01"},
		map[string]any{"id": "3", "name": "Bonding", "expiryDate": "2024-06-01"},
		map[string]any{"id": "4", "name": "Mirrors"},
	)

	require.NoError(t, ctrl.SetCategory("expiring"))
	assert.Equal(t, []string{"1"}, rowIDs(t, ctrl))
}

func TestDecrementIsOptimistic(t *testing.T) {
	ctrl, backend, notifier := newTable(t, map[string]any{"id": "1", "name": "Gloves", "quantity": 6.0, "restockLevel": 5.0})

	require.NoError(t, ctrl.Adjust(context.Background(), "1", -1))

	puts := backend.Calls("PUT")
	require.Len(t, puts, 1)
	assert.Equal(t, 5.0, puts[0].Body["quantity"])
	assert.Equal(t, "Gloves", puts[0].Body["name"])
	assert.Len(t, backend.Calls("LIST"), 1)
	assert.Empty(t, notifier.Toasts("success"))

	require.NoError(t, ctrl.SetCategory("low-stock"))
	assert.Equal(t, []string{"1"}, rowIDs(t, ctrl))
}

func TestDecrementRollsBackOnFailure(t *testing.T) {
	ctrl, backend, notifier := newTable(t, map[string]any{"id": "1", "name": "Gloves", "quantity": 1.0, "restockLevel": 5.0})
	backend.FailUpdate = true

	err := ctrl.Adjust(context.Background(), "1", -1)
	require.ErrorIs(t, err, tabletest.ErrBackend)

	rec, ok := ctrl.Record("1")
	require.True(t, ok)
	assert.Equal(t, 1.0, rec["quantity"])
	assert.Len(t, notifier.Toasts("error"), 1)
}

func TestDecrementBelowZeroIsRejected(t *testing.T) {
	ctrl, backend, _ := newTable(t, map[string]any{"id": "1", "name": "Gloves", "quantity": 0.0})

	assert.ErrorIs(t, ctrl.Adjust(context.Background(), "1", -1), table.ErrInvalidQuantity)
	assert.Empty(t, backend.Calls("PUT"))
}

func TestCreateValidatesAmounts(t *testing.T) {
	ctrl, backend, _ := newTable(t)

	_, err := ctrl.OpenCreate("")
	require.NoError(t, err)
	_, _ = ctrl.SetField("name", "Floss")
	_, _ = ctrl.SetField("quantity", -3.0)

	_, err = ctrl.SubmitModal(context.Background())
	var ve *table.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)

	_, _ = ctrl.SetField("quantity", "lots")
	_, err = ctrl.SubmitModal(context.Background())
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be a number", ve.Message)
	assert.Empty(t, backend.Calls("POST"))

	_, _ = ctrl.SetField("quantity", 12.0)
	_, err = ctrl.SubmitModal(context.Background())
	require.NoError(t, err)
	assert.Len(t, backend.Calls("POST"), 1)
}

func TestStatusChangeIsUnsupported(t *testing.T) {
	ctrl, _, _ := newTable(t, map[string]any{"id": "1", "name": "Gloves"})

	assert.ErrorIs(t, ctrl.ChangeStatus(context.Background(), "1", "ordered"), table.ErrNoStatusField)
}
