// Package tabletest provides in-memory collaborators for driving table
// controllers in tests.
package tabletest

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"sync"

	"github.com/Alijeyrad/dentaldesk/internal/table"
	"github.com/Alijeyrad/dentaldesk/pkg/restclient"
)

// ErrBackend is what a failing Backend returns.
var ErrBackend = errors.New("backend unavailable")

// ErrNotFound is returned for unknown ids. It matches the REST client's
// sentinel so callers treating 404 as absence work against both.
var ErrNotFound = restclient.ErrNotFound

// Call records one request a Backend received.
type Call struct {
	Method    string
	ID        string
	RelatedID string
	Mode      string
	Body      map[string]any
}

// Backend is an in-memory collection with a call log and failure switches.
type Backend struct {
	mu     sync.Mutex
	items  []map[string]any
	nextID int
	calls  []Call

	// FailList, FailUpdate, FailCreate and FailDelete make the matching
	// operation return ErrBackend.
	FailList   bool
	FailUpdate bool
	FailCreate bool
	FailDelete bool

	// ListHook runs before List answers; tests use it to hold a response.
	ListHook func(n int)

	// GetBy makes Get match on this field instead of "id", for endpoints
	// keyed by a related record.
	GetBy string
}

// NewBackend seeds the collection with copies of items.
func NewBackend(items ...map[string]any) *Backend {
	b := &Backend{nextID: 1000}
	for _, it := range items {
		b.items = append(b.items, maps.Clone(it))
	}
	return b
}

func (b *Backend) record(c Call) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
	n := 0
	for _, cc := range b.calls {
		if cc.Method == c.Method {
			n++
		}
	}
	return n
}

// Calls returns the calls made so far, optionally filtered by method.
func (b *Backend) Calls(method string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Items returns a copy of the stored collection.
func (b *Backend) Items() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, len(b.items))
	for i, it := range b.items {
		out[i] = maps.Clone(it)
	}
	return out
}

// Put replaces the stored collection.
func (b *Backend) Put(items ...map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
	for _, it := range items {
		b.items = append(b.items, maps.Clone(it))
	}
}

func (b *Backend) List(ctx context.Context, mode string) ([]map[string]any, error) {
	n := b.record(Call{Method: "LIST", Mode: mode})
	if b.ListHook != nil {
		b.ListHook(n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	fail := b.FailList
	b.mu.Unlock()
	if fail {
		return nil, ErrBackend
	}
	return b.Items(), nil
}

func (b *Backend) Get(_ context.Context, id string) (map[string]any, error) {
	b.record(Call{Method: "GET", ID: id})
	b.mu.Lock()
	defer b.mu.Unlock()
	key := "id"
	if b.GetBy != "" {
		key = b.GetBy
	}
	for _, it := range b.items {
		if table.Stringify(it[key]) == id {
			return maps.Clone(it), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
}

func (b *Backend) Create(_ context.Context, relatedID string, body map[string]any) (map[string]any, error) {
	b.record(Call{Method: "POST", RelatedID: relatedID, Body: maps.Clone(body)})
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailCreate {
		return nil, ErrBackend
	}
	b.nextID++
	item := maps.Clone(body)
	item["id"] = float64(b.nextID)
	b.items = append(b.items, item)
	return maps.Clone(item), nil
}

func (b *Backend) Update(_ context.Context, id string, body map[string]any) (map[string]any, error) {
	b.record(Call{Method: "PUT", ID: id, Body: maps.Clone(body)})
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailUpdate {
		return nil, ErrBackend
	}
	i := b.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	b.items[i] = maps.Clone(body)
	return maps.Clone(body), nil
}

func (b *Backend) Delete(_ context.Context, id string) error {
	b.record(Call{Method: "DELETE", ID: id})
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailDelete {
		return ErrBackend
	}
	i := b.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	b.items = append(b.items[:i], b.items[i+1:]...)
	return nil
}

func (b *Backend) indexLocked(id string) int {
	for i, it := range b.items {
		if table.Stringify(it["id"]) == id {
			return i
		}
	}
	return -1
}

// Toast is one notification a Notifier received.
type Toast struct {
	Kind    string
	Message string
	Actions []table.Action
}

// Notifier records toasts and keeps confirmations until resolved.
type Notifier struct {
	mu      sync.Mutex
	toasts  []Toast
	pending map[string]table.ResolveFunc
	seq     int
}

func NewNotifier() *Notifier {
	return &Notifier{pending: make(map[string]table.ResolveFunc)}
}

func (n *Notifier) Success(msg string) { n.push(Toast{Kind: "success", Message: msg}) }
func (n *Notifier) Error(msg string)   { n.push(Toast{Kind: "error", Message: msg}) }

func (n *Notifier) Confirm(msg string, actions []table.Action, fn table.ResolveFunc) string {
	n.push(Toast{Kind: "confirm", Message: msg, Actions: actions})
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	id := "confirm-" + strconv.Itoa(n.seq)
	n.pending[id] = fn
	return id
}

func (n *Notifier) push(t Toast) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, t)
}

// Resolve picks an action on an open confirmation.
func (n *Notifier) Resolve(ctx context.Context, id, action string) error {
	n.mu.Lock()
	fn, ok := n.pending[id]
	delete(n.pending, id)
	n.mu.Unlock()
	if !ok {
		return fmt.Errorf("confirmation %s: %w", id, ErrNotFound)
	}
	return fn(ctx, action)
}

// Toasts returns received toasts of kind, or all when kind is empty.
func (n *Notifier) Toasts(kind string) []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Toast
	for _, t := range n.toasts {
		if kind == "" || t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// Open returns how many confirmations are still waiting.
func (n *Notifier) Open() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}
