package table

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Backend is the REST collaborator one table talks to.
type Backend interface {
	List(ctx context.Context, mode string) ([]map[string]any, error)
	Get(ctx context.Context, id string) (map[string]any, error)
	Create(ctx context.Context, relatedID string, body map[string]any) (map[string]any, error)
	Update(ctx context.Context, id string, body map[string]any) (map[string]any, error)
	Delete(ctx context.Context, id string) error
}

// Notifier is the toast surface mutations report to. Confirm keeps the
// prompt open until one of its actions is resolved and returns its id.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Confirm(msg string, actions []Action, resolve ResolveFunc) string
}

// Action is a button on a confirmation prompt.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ResolveFunc runs when the user picks an action on a confirmation.
type ResolveFunc func(ctx context.Context, action string) error

const (
	ActionCancel = "cancel"
	ActionDelete = "delete"
)

// Column describes one displayed column. A column with Compose set renders
// and sorts on its parts joined by a single space.
type Column struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Sortable bool     `json:"sortable"`
	Compose  []string `json:"compose,omitempty"`
}

// Value returns the display and sort value of the column for r.
func (c Column) Value(r Record) string {
	if len(c.Compose) == 0 {
		return r.String(c.Key)
	}
	parts := make([]string, len(c.Compose))
	for i, k := range c.Compose {
		parts[i] = r.String(k)
	}
	return strings.Join(parts, " ")
}

// Predicate decides whether a record belongs to a category at instant now.
type Predicate func(r Record, now time.Time) bool

// Category is a named coarse view over the collection.
type Category struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Match Predicate `json:"-"`
}

// Toggle declares a boolean draft field the form may flip.
type Toggle struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Validator checks a draft before it is submitted. Returning a
// *ValidationError keeps the modal open with no network call.
type Validator func(draft Record, now time.Time) error

// Operation names a row mutation that carries its own policy.
type Operation string

const (
	OpStatus Operation = "status"
	OpAdjust Operation = "adjust"
)

// Config parameterises the generic table for one entity.
type Config struct {
	// Entity is the path segment and display name, e.g. "patients".
	Entity string
	// Singular is used in user-facing messages, e.g. "patient".
	Singular string
	IDField  string

	Columns    []Column
	Categories []Category

	// SearchFields are top-level keys searched as text. Empty means every
	// top-level string field.
	SearchFields []string
	// RelatedSearch maps a nested record key to the keys searched inside it.
	RelatedSearch map[string][]string

	StatusField string
	Statuses    []string

	// QuantityField is the numeric field Adjust changes.
	QuantityField string

	// DateFields are normalised to YYYY-MM-DD when a record is opened for edit.
	DateFields []string
	Toggles    []Toggle
	Validators []Validator
	// Normalizers run on a draft after validation and before submission.
	Normalizers []func(draft Record) error

	// RelatedField names the draft key that carries the related id for
	// create calls that take one (dentures and treatments belong to a patient).
	RelatedField string
	// Template seeds the draft of a new record.
	Template Record

	// Optimistic marks operations that update the local collection before
	// the server answers.
	Optimistic map[Operation]bool
}

// Validate reports configuration mistakes at construction time.
func (c *Config) Validate() error {
	if c.Entity == "" {
		return fmt.Errorf("table: entity name is empty")
	}
	if len(c.Columns) == 0 {
		return fmt.Errorf("table %s: no columns", c.Entity)
	}
	seen := make(map[string]struct{}, len(c.Columns))
	for _, col := range c.Columns {
		if _, dup := seen[col.Key]; dup {
			return fmt.Errorf("table %s: duplicate column %q", c.Entity, col.Key)
		}
		seen[col.Key] = struct{}{}
	}
	for _, cat := range c.Categories {
		if cat.Key != CategoryAll && cat.Match == nil {
			return fmt.Errorf("table %s: category %q has no predicate", c.Entity, cat.Key)
		}
	}
	return nil
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.IDField == "" {
		out.IDField = "id"
	}
	if out.Singular == "" {
		out.Singular = out.Entity
	}
	return out
}

// defaulted returns c itself when defaults are already applied.
func (c *Config) defaulted() *Config {
	if c.IDField != "" && c.Singular != "" {
		return c
	}
	d := c.withDefaults()
	return &d
}

func (c *Config) column(key string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

func (c *Config) toggle(key string) (Toggle, bool) {
	for _, t := range c.Toggles {
		if t.Key == key {
			return t, true
		}
	}
	return Toggle{}, false
}

func (c *Config) hasStatus(s string) bool {
	return slices.Contains(c.Statuses, s)
}

func (c *Config) idOf(r Record) string {
	return Stringify(r[c.IDField])
}
