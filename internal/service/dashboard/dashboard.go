package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Alijeyrad/dentaldesk/config"
	"github.com/Alijeyrad/dentaldesk/internal/service/clinic"
	"github.com/Alijeyrad/dentaldesk/internal/service/notification"
	"github.com/Alijeyrad/dentaldesk/internal/table"
)

const meterName = "github.com/Alijeyrad/dentaldesk/internal/service/dashboard"

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

type Options struct {
	// Location is the clinic wall clock every table is evaluated in.
	Location *time.Location
	ToastTTL time.Duration
	// IdleAfter is how long a workspace may go untouched before Sweep
	// discards it.
	IdleAfter time.Duration
}

func OptionsFromConfig(c config.DashboardConfig) Options {
	return Options{
		Location:  c.Location(),
		ToastTTL:  time.Duration(c.ToastTTLSeconds) * time.Second,
		IdleAfter: time.Duration(c.SessionIdleMinutes) * time.Minute,
	}
}

// BackendFactory returns the REST collaborator of an entity.
type BackendFactory func(entity string) table.Backend

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// Service owns one workspace per session: the tables the session has open
// and the notifications they report to.
type Service interface {
	Entities() []string
	// Table returns the session's table for entity, mounting it on first use.
	Table(ctx context.Context, sessionID, entity string) (*table.Controller, error)
	// Mutate runs fn against the session's table and records the outcome.
	Mutate(ctx context.Context, sessionID, entity, op string, fn func(*table.Controller) error) error
	Unmount(sessionID, entity string) error
	Notifications(sessionID string) (*notification.Center, error)
	Close(sessionID string)
	// Sweep discards workspaces idle since before now-IdleAfter.
	Sweep(now time.Time) int
	Now() time.Time
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type workspace struct {
	mu       sync.Mutex
	tables   map[string]*table.Controller
	center   *notification.Center
	lastSeen time.Time
}

type service struct {
	catalog  *clinic.Catalog
	backends BackendFactory
	opts     Options
	clock    func() time.Time

	mu         sync.Mutex
	workspaces map[string]*workspace

	active    metric.Int64UpDownCounter
	mounts    metric.Int64Counter
	mutations metric.Int64Counter
}

type Option func(*service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.clock = now }
}

func New(catalog *clinic.Catalog, backends BackendFactory, opts Options, options ...Option) (Service, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ToastTTL <= 0 {
		opts.ToastTTL = notification.DefaultTTL
	}
	s := &service{
		catalog:    catalog,
		backends:   backends,
		opts:       opts,
		clock:      time.Now,
		workspaces: make(map[string]*workspace),
	}
	for _, o := range options {
		o(s)
	}

	meter := otel.Meter(meterName)
	var err error
	if s.active, err = meter.Int64UpDownCounter("dentaldesk.dashboard.workspaces",
		metric.WithDescription("Open session workspaces")); err != nil {
		return nil, fmt.Errorf("dashboard metrics: %w", err)
	}
	if s.mounts, err = meter.Int64Counter("dentaldesk.dashboard.mounts",
		metric.WithDescription("Tables mounted in workspaces")); err != nil {
		return nil, fmt.Errorf("dashboard metrics: %w", err)
	}
	if s.mutations, err = meter.Int64Counter("dentaldesk.dashboard.mutations",
		metric.WithDescription("Row and modal operations by outcome")); err != nil {
		return nil, fmt.Errorf("dashboard metrics: %w", err)
	}
	return s, nil
}

func (s *service) Now() time.Time {
	return s.clock().In(s.opts.Location)
}

func (s *service) Entities() []string {
	return s.catalog.Entities()
}

// workspace returns the session's workspace, creating it when needed.
func (s *service) workspace(sessionID string) (*workspace, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[sessionID]
	if !ok {
		ws = &workspace{
			tables: make(map[string]*table.Controller),
			center: notification.NewCenter(s.opts.ToastTTL).WithClock(s.clock),
		}
		s.workspaces[sessionID] = ws
		s.active.Add(context.Background(), 1)
		slog.Debug("workspace opened", "session_id", sessionID)
	}
	ws.mu.Lock()
	ws.lastSeen = s.clock()
	ws.mu.Unlock()
	return ws, nil
}

func (s *service) Table(ctx context.Context, sessionID, entity string) (*table.Controller, error) {
	cfg, err := s.catalog.Config(entity)
	if err != nil {
		return nil, err
	}
	ws, err := s.workspace(sessionID)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	ctrl, ok := ws.tables[entity]
	if !ok {
		ctrl, err = table.New(cfg, s.backends(entity), ws.center, table.WithClock(s.Now))
		if err != nil {
			ws.mu.Unlock()
			return nil, err
		}
		ws.tables[entity] = ctrl
	}
	ws.mu.Unlock()

	if !ctrl.Mounted() {
		s.mounts.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", entity)))
		// A failed first load leaves an empty table carrying the error.
		_ = ctrl.Mount(ctx)
	}
	return ctrl, nil
}

func (s *service) Mutate(ctx context.Context, sessionID, entity, op string, fn func(*table.Controller) error) error {
	ctrl, err := s.Table(ctx, sessionID, entity)
	if err != nil {
		return err
	}
	err = fn(ctrl)
	outcome := "ok"
	switch {
	case table.IsValidation(err):
		outcome = "invalid"
	case err != nil:
		outcome = "error"
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
	return err
}

func (s *service) Unmount(sessionID, entity string) error {
	if _, err := s.catalog.Config(entity); err != nil {
		return err
	}
	ws, err := s.workspace(sessionID)
	if err != nil {
		return err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ctrl, ok := ws.tables[entity]
	if !ok {
		return ErrTableNotOpen
	}
	ctrl.Unmount()
	delete(ws.tables, entity)
	return nil
}

func (s *service) Notifications(sessionID string) (*notification.Center, error) {
	ws, err := s.workspace(sessionID)
	if err != nil {
		return nil, err
	}
	return ws.center, nil
}

func (s *service) Close(sessionID string) {
	s.mu.Lock()
	ws, ok := s.workspaces[sessionID]
	delete(s.workspaces, sessionID)
	s.mu.Unlock()
	if !ok {
		return
	}
	ws.discard()
	s.active.Add(context.Background(), -1)
}

func (s *service) Sweep(now time.Time) int {
	if s.opts.IdleAfter <= 0 {
		return 0
	}
	cutoff := now.Add(-s.opts.IdleAfter)

	var idle []*workspace
	s.mu.Lock()
	for id, ws := range s.workspaces {
		ws.mu.Lock()
		stale := ws.lastSeen.Before(cutoff)
		ws.mu.Unlock()
		if stale {
			idle = append(idle, ws)
			delete(s.workspaces, id)
		}
	}
	s.mu.Unlock()

	for _, ws := range idle {
		ws.discard()
	}
	if n := len(idle); n > 0 {
		s.active.Add(context.Background(), int64(-n))
		slog.Info("idle workspaces discarded", "count", n)
	}
	return len(idle)
}

func (ws *workspace) discard() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for _, ctrl := range ws.tables {
		ctrl.Unmount()
	}
	clear(ws.tables)
}

// RunSweeper calls Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, svc Service, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.Sweep(svc.Now())
		}
	}
}
