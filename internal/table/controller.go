package table

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Phase is the lifecycle position of a row with an operation in flight.
type Phase string

const (
	PhaseConfirmingDelete Phase = "confirming_delete"
	PhaseDeleting         Phase = "deleting"
	PhaseUpdating         Phase = "updating"
)

// Controller is one mounted table: the fetched collection, the view state
// layered over it and the mutations a user can start from its rows.
//
// All methods are safe for concurrent use. The lock is never held while a
// request to the backend is in flight.
type Controller struct {
	cfg      Config
	backend  Backend
	notifier Notifier
	now      func() time.Time

	mu         sync.Mutex
	mounted    bool
	source     []Record
	gen        uint64
	loading    bool
	refreshing bool
	mode       string
	lastErr    error
	loadedAt   time.Time
	filter     FilterState
	sort       SortState
	pending    map[string]Phase
	form       *Form
}

type Option func(*Controller)

// WithClock replaces time.Now for category predicates and validators.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New builds an unmounted controller.
func New(cfg Config, backend Backend, notifier Notifier, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, fmt.Errorf("table %s: backend is nil", cfg.Entity)
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	c := &Controller{
		cfg:      cfg.withDefaults(),
		backend:  backend,
		notifier: notifier,
		now:      time.Now,
		filter:   FilterState{Category: CategoryAll},
		sort:     Unsorted(),
		pending:  make(map[string]Phase),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the table configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// ---- View state ----

// View is a snapshot of everything a table renders.
type View struct {
	Entity     string           `json:"entity"`
	Columns    []Column         `json:"columns"`
	Categories []Category       `json:"categories"`
	Statuses   []string         `json:"statuses,omitempty"`
	Toggles    []Toggle         `json:"toggles,omitempty"`
	Rows       []Record         `json:"rows"`
	Total      int              `json:"total"`
	Filter     FilterState      `json:"filter"`
	Sort       SortState        `json:"sort"`
	Loading    bool             `json:"loading"`
	Refreshing bool             `json:"refreshing"`
	Error      string           `json:"error,omitempty"`
	LoadedAt   *time.Time       `json:"loaded_at,omitempty"`
	Pending    map[string]Phase `json:"pending,omitempty"`
	Modal      *ModalView       `json:"modal,omitempty"`
}

// View returns the current snapshot.
func (c *Controller) View() (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.rowsLocked()
	if err != nil {
		return nil, err
	}
	v := &View{
		Entity:     c.cfg.Entity,
		Columns:    c.cfg.Columns,
		Categories: c.cfg.Categories,
		Statuses:   c.cfg.Statuses,
		Toggles:    c.cfg.Toggles,
		Rows:       rows,
		Total:      len(c.source),
		Filter:     c.filter,
		Sort:       c.sort,
		Loading:    c.loading,
		Refreshing: c.refreshing,
	}
	if c.lastErr != nil {
		v.Error = c.lastErr.Error()
	}
	if !c.loadedAt.IsZero() {
		at := c.loadedAt
		v.LoadedAt = &at
	}
	if len(c.pending) > 0 {
		v.Pending = make(map[string]Phase, len(c.pending))
		for id, p := range c.pending {
			v.Pending[id] = p
		}
	}
	if c.form != nil {
		v.Modal = c.form.view()
	}
	return v, nil
}

// Rows returns sort(search(category(source))).
func (c *Controller) Rows() ([]Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rowsLocked()
}

func (c *Controller) rowsLocked() ([]Record, error) {
	filtered, err := ApplyCategory(c.source, c.cfg.Categories, c.filter.Category, c.now())
	if err != nil {
		return nil, err
	}
	filtered = ApplySearch(filtered, c.searchSpec(), c.filter.Search)
	col, _ := c.cfg.column(c.sort.Key)
	return ApplySort(filtered, col, c.sort), nil
}

func (c *Controller) searchSpec() SearchSpec {
	return SearchSpec{Fields: c.cfg.SearchFields, Related: c.cfg.RelatedSearch}
}

// SetCategory switches the coarse view. Unknown keys are rejected.
func (c *Controller) SetCategory(key string) error {
	if key == "" {
		key = CategoryAll
	}
	if key != CategoryAll && !slices.ContainsFunc(c.cfg.Categories, func(cat Category) bool { return cat.Key == key }) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	c.mu.Lock()
	c.filter.Category = key
	c.mu.Unlock()
	return nil
}

// SetSearch replaces the free-text search.
func (c *Controller) SetSearch(text string) {
	c.mu.Lock()
	c.filter.Search = text
	c.mu.Unlock()
}

// ClickSort registers a header click. It reports false when the column
// cannot be sorted and nothing changed.
func (c *Controller) ClickSort(key string) bool {
	col, known := c.cfg.column(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort.Click(col, known)
}

// SortState returns the current sort.
func (c *Controller) SortState() SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// Record returns the record with id from the fetched collection.
func (c *Controller) Record(id string) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, _, ok := c.findLocked(id)
	return r, ok
}

func (c *Controller) findLocked(id string) (Record, int, bool) {
	for i, r := range c.source {
		if c.cfg.idOf(r) == id {
			return r, i, true
		}
	}
	return nil, -1, false
}

// replaceLocked swaps one record without mutating the slice readers hold.
func (c *Controller) replaceLocked(idx int, r Record) {
	src := slices.Clone(c.source)
	src[idx] = r
	c.source = src
}

func (c *Controller) noun() string {
	s := c.cfg.Singular
	if s == "" {
		return "Record"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type discardNotifier struct{}

func (discardNotifier) Success(string) {}
func (discardNotifier) Error(string)   {}
func (discardNotifier) Confirm(string, []Action, ResolveFunc) string {
	return ""
}
