package table

import (
	"context"
	"fmt"
	"log/slog"
)

// Mount performs the single initial load. Mounting twice is a no-op.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return nil
	}
	c.mounted = true
	c.mu.Unlock()
	return c.load(ctx, false)
}

// Mounted reports whether the table is live.
func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// Load fetches the collection using a list variant (mode "" is the plain
// list endpoint). Later reloads reuse the mode.
func (c *Controller) Load(ctx context.Context, mode string) error {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	return c.load(ctx, false)
}

// Reload re-fetches with the last used mode.
func (c *Controller) Reload(ctx context.Context) error {
	return c.load(ctx, false)
}

// Refresh is a user-initiated reload; the view reports Refreshing until it settles.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.load(ctx, true)
}

// Reset clears filter, sort, modal and pending row state, then reloads.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrNotMounted
	}
	c.filter = FilterState{Category: CategoryAll}
	c.sort = Unsorted()
	c.form = nil
	c.pending = make(map[string]Phase)
	c.mu.Unlock()
	return c.load(ctx, false)
}

// Unmount discards the collection and every piece of view state. Responses
// still in flight are ignored when they land.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounted = false
	c.gen++
	c.source = nil
	c.loading = false
	c.refreshing = false
	c.lastErr = nil
	c.filter = FilterState{Category: CategoryAll}
	c.sort = Unsorted()
	c.form = nil
	c.pending = make(map[string]Phase)
}

// load fetches the collection. Only the response of the newest request is
// applied; older ones are dropped so a slow fetch cannot overwrite a newer
// collection.
func (c *Controller) load(ctx context.Context, user bool) error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrNotMounted
	}
	c.gen++
	gen := c.gen
	mode := c.mode
	c.loading = true
	if user {
		c.refreshing = true
	}
	c.mu.Unlock()

	items, err := c.backend.List(ctx, mode)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || !c.mounted {
		slog.Debug("dropping stale table response", "entity", c.cfg.Entity, "generation", gen, "current", c.gen)
		return nil
	}
	c.loading = false
	c.refreshing = false
	if err != nil {
		c.lastErr = err
		slog.Warn("table load failed", "entity", c.cfg.Entity, "error", err)
		c.notifier.Error(fmt.Sprintf("Failed to load %s", c.cfg.Entity))
		return fmt.Errorf("load %s: %w", c.cfg.Entity, err)
	}
	c.source = Records(items)
	c.lastErr = nil
	c.loadedAt = c.now()
	return nil
}
