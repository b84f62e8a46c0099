package table

import (
	"context"
	"fmt"
	"log/slog"
)

// RequestDelete asks the user to confirm deleting the record with id. No
// request is sent until the confirmation resolves with ActionDelete. The
// returned string is the confirmation id.
func (c *Controller) RequestDelete(id string) (string, error) {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return "", ErrNotMounted
	}
	if _, _, ok := c.findLocked(id); !ok {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if _, busy := c.pending[id]; busy {
		c.mu.Unlock()
		return "", ErrRowBusy
	}
	c.pending[id] = PhaseConfirmingDelete
	c.mu.Unlock()

	msg := fmt.Sprintf("Delete %s #%s? This cannot be undone.", c.cfg.Singular, id)
	actions := []Action{
		{Key: ActionCancel, Label: "Cancel"},
		{Key: ActionDelete, Label: "Delete"},
	}
	return c.notifier.Confirm(msg, actions, func(ctx context.Context, action string) error {
		return c.resolveDelete(ctx, id, action)
	}), nil
}

func (c *Controller) resolveDelete(ctx context.Context, id, action string) error {
	c.mu.Lock()
	if !c.mounted || c.pending[id] != PhaseConfirmingDelete {
		c.mu.Unlock()
		return ErrNotPending
	}
	if action != ActionDelete {
		delete(c.pending, id)
		c.mu.Unlock()
		return nil
	}
	c.pending[id] = PhaseDeleting
	c.mu.Unlock()

	err := c.backend.Delete(ctx, id)

	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()

	if err != nil {
		slog.Warn("delete failed", "entity", c.cfg.Entity, "id", id, "error", err)
		c.notifier.Error(fmt.Sprintf("Failed to delete %s: %v", c.cfg.Singular, err))
		return fmt.Errorf("delete %s %s: %w", c.cfg.Singular, id, err)
	}
	c.notifier.Success(c.noun() + " deleted")
	_ = c.Reload(ctx)
	return nil
}

// ChangeStatus sends the whole record with only its status replaced.
func (c *Controller) ChangeStatus(ctx context.Context, id, status string) error {
	if c.cfg.StatusField == "" {
		return ErrNoStatusField
	}
	if !c.cfg.hasStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	field := c.cfg.StatusField
	return c.mutate(ctx, OpStatus, id, func(r Record) error {
		r[field] = status
		return nil
	}, "status updated")
}

// Adjust adds delta to the quantity field of the record with id.
func (c *Controller) Adjust(ctx context.Context, id string, delta float64) error {
	if c.cfg.QuantityField == "" {
		return ErrNoQuantityField
	}
	field := c.cfg.QuantityField
	return c.mutate(ctx, OpAdjust, id, func(r Record) error {
		q, _ := r.Float(field)
		next := q + delta
		if next < 0 {
			return ErrInvalidQuantity
		}
		r[field] = next
		return nil
	}, "quantity updated")
}

// mutate applies change to a copy of the record and PUTs it. When the
// operation is optimistic the copy replaces the local record first and a
// failure rolls back by re-fetching; otherwise the local collection is only
// replaced by the re-fetch after success.
func (c *Controller) mutate(ctx context.Context, op Operation, id string, change func(Record) error, done string) error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrNotMounted
	}
	rec, idx, ok := c.findLocked(id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if _, busy := c.pending[id]; busy {
		c.mu.Unlock()
		return ErrRowBusy
	}
	next := rec.Clone()
	if err := change(next); err != nil {
		c.mu.Unlock()
		return err
	}
	optimistic := c.cfg.Optimistic[op]
	if optimistic {
		c.replaceLocked(idx, next)
	}
	c.pending[id] = PhaseUpdating
	c.mu.Unlock()

	res, err := c.backend.Update(ctx, id, plain(next))

	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()

	if err != nil {
		slog.Warn("update failed", "entity", c.cfg.Entity, "id", id, "op", op, "error", err)
		c.notifier.Error(fmt.Sprintf("Failed to update %s: %v", c.cfg.Singular, err))
		if optimistic {
			_ = c.Reload(ctx)
		}
		return fmt.Errorf("update %s %s: %w", c.cfg.Singular, id, err)
	}

	if optimistic {
		if len(res) > 0 {
			c.mu.Lock()
			if _, i, ok := c.findLocked(id); ok {
				c.replaceLocked(i, Record(res))
			}
			c.mu.Unlock()
		}
		return nil
	}
	c.notifier.Success(c.noun() + " " + done)
	_ = c.Reload(ctx)
	return nil
}
