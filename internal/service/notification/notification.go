package notification

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/dentaldesk/internal/table"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindConfirm Kind = "confirm"
)

// Notification is one toast as the dashboard renders it.
type Notification struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Message   string         `json:"message"`
	Actions   []table.Action `json:"actions,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// ---------------------------------------------------------------------------
// Center
// ---------------------------------------------------------------------------

const DefaultTTL = 5 * time.Second

// Center is the toast channel of one dashboard session. Success, error and
// info toasts expire after the TTL; confirmations stay until resolved.
type Center struct {
	ttl time.Duration
	now func() time.Time
	max int

	mu    sync.Mutex
	items []*entry
}

type entry struct {
	n       Notification
	resolve table.ResolveFunc
}

// NewCenter creates a center whose transient toasts live for ttl.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl, now: time.Now, max: 50}
}

// WithClock replaces time.Now; used by tests.
func (c *Center) WithClock(now func() time.Time) *Center {
	c.now = now
	return c
}

func (c *Center) Success(msg string) { c.push(KindSuccess, msg) }
func (c *Center) Error(msg string)   { c.push(KindError, msg) }
func (c *Center) Info(msg string)    { c.push(KindInfo, msg) }

func (c *Center) push(kind Kind, msg string) Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	exp := now.Add(c.ttl)
	n := Notification{ID: uuid.NewString(), Kind: kind, Message: msg, CreatedAt: now, ExpiresAt: &exp}
	c.items = append(c.items, &entry{n: n})
	c.trimLocked()
	slog.Debug("notification pushed", "kind", kind, "message", msg)
	return n
}

// Confirm opens a prompt with actions. resolve runs when one is chosen.
func (c *Center) Confirm(msg string, actions []table.Action, resolve table.ResolveFunc) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := Notification{
		ID:        uuid.NewString(),
		Kind:      KindConfirm,
		Message:   msg,
		Actions:   slices.Clone(actions),
		CreatedAt: c.now(),
	}
	c.items = append(c.items, &entry{n: n, resolve: resolve})
	return n.ID
}

// Resolve answers a confirmation. The prompt is removed before its callback
// runs so a second answer cannot trigger it twice.
func (c *Center) Resolve(ctx context.Context, id, action string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	e := c.items[idx]
	if e.n.Kind != KindConfirm {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	if !slices.ContainsFunc(e.n.Actions, func(a table.Action) bool { return a.Key == action }) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	c.mu.Unlock()

	if e.resolve == nil {
		return nil
	}
	return e.resolve(ctx, action)
}

// Dismiss closes a transient toast early.
func (c *Center) Dismiss(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	if c.items[idx].n.Kind == KindConfirm {
		return ErrActionRequired
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	return nil
}

// Active returns the toasts still showing, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.items = slices.DeleteFunc(c.items, func(e *entry) bool {
		return e.n.ExpiresAt != nil && !now.Before(*e.n.ExpiresAt)
	})
	out := make([]Notification, len(c.items))
	for i, e := range c.items {
		out[i] = e.n
	}
	return out
}

// Pending reports how many confirmations wait for an answer.
func (c *Center) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.items {
		if e.n.Kind == KindConfirm {
			n++
		}
	}
	return n
}

func (c *Center) indexLocked(id string) int {
	return slices.IndexFunc(c.items, func(e *entry) bool { return e.n.ID == id })
}

// trimLocked drops the oldest transient toasts beyond max.
func (c *Center) trimLocked() {
	for len(c.items) > c.max {
		idx := slices.IndexFunc(c.items, func(e *entry) bool { return e.n.Kind != KindConfirm })
		if idx < 0 {
			return
		}
		c.items = slices.Delete(c.items, idx, idx+1)
	}
}
