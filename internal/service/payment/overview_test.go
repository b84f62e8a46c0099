package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/dentaldesk/internal/service/clinic"
	"github.com/Alijeyrad/dentaldesk/internal/service/payment"
	"github.com/Alijeyrad/dentaldesk/internal/table"
	"github.com/Alijeyrad/dentaldesk/internal/table/tabletest"
)

var june15 = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func backends(t *testing.T) map[string]*tabletest.Backend {
	t.Helper()
	return map[string]*tabletest.Backend{
		"patients": tabletest.NewBackend(
			map[string]any{"id": 1, "createdDate": "2024-06-01"},
			map[string]any{"id": 2, "createdDate": "2023-01-01"},
		),
		"appointments": tabletest.NewBackend(
			map[string]any{"id": 1, "date": "2024-06-15", "time": "09:00"},
			map[string]any{"id": 2, "date": "2024-06-15", "time": "16:00"},
			map[string]any{"id": 3, "date": "2024-06-18", "time": "08:00"},
		),
		"dentures": tabletest.NewBackend(
			map[string]any{"id": 1, "status": "in-lab", "estimatedDeliveryDate": "2024-06-01"},
			map[string]any{"id": 2, "status": "delivered", "estimatedDeliveryDate": "2024-06-01"},
		),
		"inventory": tabletest.NewBackend(
			map[string]any{"id": 1, "quantity": 5.0, "restockLevel": 5.0},
			map[string]any{"id": 2, "quantity": 0.0, "restockLevel": 5.0},
			map[string]any{"id": 3, "quantity": 0.0, "restockLevel": 1.0},
		),
		"treatments": tabletest.NewBackend(
			map[string]any{"id": 1, "cost": 100.0, "amountPaid": 100.0, "status": "completed"},
			map[string]any{"id": 2, "cost": 800.0, "amountPaid": 300.0, "status": "in-progress"},
			map[string]any{"id": 3, "cost": 500.0, "status": "cancelled"},
		),
	}
}

func newService(t *testing.T, b map[string]*tabletest.Backend) payment.Service {
	t.Helper()
	catalog, err := clinic.NewCatalog(clinic.Options{RecentWindowDays: 30})
	require.NoError(t, err)
	return payment.New(catalog, func(entity string) table.Backend { return b[entity] }, func() time.Time { return june15 })
}

func TestOverviewCounts(t *testing.T) {
	o, err := newService(t, backends(t)).Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, o.Patients)
	assert.Equal(t, 1, o.NewPatients)
	assert.Equal(t, 2, o.AppointmentsToday)
	assert.Equal(t, 2, o.UpcomingAppointments)
	assert.Equal(t, 1, o.DenturesInProgress)
	assert.Equal(t, 1, o.DenturesOverdue)
	assert.Equal(t, 1, o.LowStockItems)
	assert.Equal(t, 2, o.OutOfStockItems)
	assert.Equal(t, 3, o.Treatments)
	assert.Equal(t, june15, o.GeneratedAt)
}

func TestOverviewBillingSkipsCancelled(t *testing.T) {
	o, err := newService(t, backends(t)).Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, payment.Billing{Billed: 900, Paid: 400, Outstanding: 500, UnpaidTreatments: 1}, o.Billing)
}

func TestOverviewFailsWhenAnyListFails(t *testing.T) {
	b := backends(t)
	b["inventory"].FailList = true

	_, err := newService(t, b).Overview(context.Background())
	require.ErrorIs(t, err, payment.ErrOverviewUnavailable)
	assert.ErrorIs(t, err, tabletest.ErrBackend)
	assert.Contains(t, err.Error(), "inventory")
}
