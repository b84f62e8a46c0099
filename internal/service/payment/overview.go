package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/Alijeyrad/dentaldesk/internal/service/appointment"
	"github.com/Alijeyrad/dentaldesk/internal/service/clinic"
	"github.com/Alijeyrad/dentaldesk/internal/service/denture"
	"github.com/Alijeyrad/dentaldesk/internal/service/inventory"
	"github.com/Alijeyrad/dentaldesk/internal/service/patient"
	"github.com/Alijeyrad/dentaldesk/internal/service/treatment"
	"github.com/Alijeyrad/dentaldesk/internal/table"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Billing struct {
	Billed      float64 `json:"billed"`
	Paid        float64 `json:"paid"`
	Outstanding float64 `json:"outstanding"`
	// UnpaidTreatments counts treatments with a positive balance.
	UnpaidTreatments int `json:"unpaid_treatments"`
}

// Overview is the dashboard summary. Every figure is computed from a fresh
// fetch; nothing is shared with mounted tables.
type Overview struct {
	Patients             int       `json:"patients"`
	NewPatients          int       `json:"new_patients"`
	AppointmentsToday    int       `json:"appointments_today"`
	UpcomingAppointments int       `json:"upcoming_appointments"`
	DenturesInProgress   int       `json:"dentures_in_progress"`
	DenturesOverdue      int       `json:"dentures_overdue"`
	LowStockItems        int       `json:"low_stock_items"`
	OutOfStockItems      int       `json:"out_of_stock_items"`
	Treatments           int       `json:"treatments"`
	Billing              Billing   `json:"billing"`
	GeneratedAt          time.Time `json:"generated_at"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Overview(ctx context.Context) (*Overview, error)
}

// BackendFactory returns the REST collaborator of an entity.
type BackendFactory func(entity string) table.Backend

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type overviewService struct {
	catalog  *clinic.Catalog
	backends BackendFactory
	now      func() time.Time
}

func New(catalog *clinic.Catalog, backends BackendFactory, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &overviewService{catalog: catalog, backends: backends, now: now}
}

func (s *overviewService) Overview(ctx context.Context) (*Overview, error) {
	entities := s.catalog.Entities()
	lists := make([][]table.Record, len(entities))

	g, gctx := errgroup.WithContext(ctx)
	for i, entity := range entities {
		g.Go(func() error {
			items, err := s.backends(entity).List(gctx, "")
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrOverviewUnavailable, entity, err)
			}
			lists[i] = table.Records(items)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("overview fetch failed", "error", err)
		return nil, err
	}

	byEntity := make(map[string][]table.Record, len(entities))
	for i, entity := range entities {
		byEntity[entity] = lists[i]
	}

	now := s.now()
	count := func(entity, category string) int {
		cfg, err := s.catalog.Config(entity)
		if err != nil {
			return 0
		}
		rows, err := table.ApplyCategory(byEntity[entity], cfg.Categories, category, now)
		if err != nil {
			return 0
		}
		return len(rows)
	}

	treatments := byEntity[treatment.Entity]
	billable := lo.Filter(treatments, func(r table.Record, _ int) bool {
		return r.String("status") != treatment.StatusCancelled
	})

	o := &Overview{
		Patients:             len(byEntity[patient.Entity]),
		NewPatients:          count(patient.Entity, "recent"),
		AppointmentsToday:    count(appointment.Entity, "today"),
		UpcomingAppointments: count(appointment.Entity, "upcoming"),
		DenturesInProgress:   count(denture.Entity, "in-progress"),
		DenturesOverdue:      count(denture.Entity, "overdue"),
		LowStockItems:        count(inventory.Entity, "low-stock"),
		OutOfStockItems:      count(inventory.Entity, "out-of-stock"),
		Treatments:           len(treatments),
		Billing: Billing{
			Billed: lo.SumBy(billable, func(r table.Record) float64 {
				v, _ := r.Float("cost")
				return v
			}),
			Paid: lo.SumBy(billable, func(r table.Record) float64 {
				v, _ := r.Float("amountPaid")
				return v
			}),
			Outstanding: lo.SumBy(billable, func(r table.Record) float64 {
				return max(treatment.Balance(r), 0)
			}),
			UnpaidTreatments: count(treatment.Entity, "outstanding"),
		},
		GeneratedAt: now,
	}
	return o, nil
}
