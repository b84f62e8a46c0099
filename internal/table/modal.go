package table

import (
	"context"
	"fmt"
	"time"
)

type ModalMode string

const (
	ModeEdit   ModalMode = "edit"
	ModeCreate ModalMode = "create"
)

type ModalPhase string

const (
	ModalEditing    ModalPhase = "editing"
	ModalSubmitting ModalPhase = "submitting"
)

// Form owns one draft record and knows how to submit it. Controllers keep
// at most one open form; the medical-history editor uses one on its own.
// A Form is not safe for concurrent use by itself.
type Form struct {
	cfg       *Config
	mode      ModalMode
	id        string
	relatedID string
	draft     Record
	phase     ModalPhase
	lastErr   error
}

// NewEditForm opens a draft over a copy of r. Declared date fields lose
// their time-of-day part so date inputs can show them.
func NewEditForm(cfg *Config, r Record) *Form {
	cfg = cfg.defaulted()
	draft := r.Clone()
	for _, f := range cfg.DateFields {
		if v, ok := draft[f]; ok {
			draft[f] = DateOnly(v)
		}
	}
	return &Form{cfg: cfg, mode: ModeEdit, id: cfg.idOf(r), draft: draft, phase: ModalEditing}
}

// NewCreateForm opens a draft seeded from the configured template.
// relatedID is used for create endpoints that hang off another record.
func NewCreateForm(cfg *Config, relatedID string) *Form {
	cfg = cfg.defaulted()
	draft := cfg.Template.Clone()
	if draft == nil {
		draft = Record{}
	}
	for _, t := range cfg.Toggles {
		if _, ok := draft[t.Key]; !ok {
			draft[t.Key] = false
		}
	}
	if cfg.RelatedField != "" && relatedID != "" {
		draft[cfg.RelatedField] = relatedID
	}
	return &Form{cfg: cfg, mode: ModeCreate, relatedID: relatedID, draft: draft, phase: ModalEditing}
}

func (f *Form) Mode() ModalMode   { return f.mode }
func (f *Form) Phase() ModalPhase { return f.phase }
func (f *Form) Err() error        { return f.lastErr }

// Value reads a draft field.
func (f *Form) Value(key string) any {
	return f.draft[key]
}

// Set writes a draft field.
func (f *Form) Set(key string, v any) error {
	if f.phase == ModalSubmitting {
		return ErrModalBusy
	}
	f.draft[key] = v
	return nil
}

// Toggle flips a declared boolean field and returns the new value.
func (f *Form) Toggle(key string) (bool, error) {
	if f.phase == ModalSubmitting {
		return false, ErrModalBusy
	}
	if _, ok := f.cfg.toggle(key); !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownToggle, key)
	}
	cur, _ := f.draft[key].(bool)
	f.draft[key] = !cur
	return !cur, nil
}

// Draft returns a copy of the draft.
func (f *Form) Draft() Record {
	return f.draft.Clone()
}

// prepare runs validators then normalizers against the draft.
func (f *Form) prepare(now time.Time) error {
	for _, v := range f.cfg.Validators {
		if err := v(f.draft, now); err != nil {
			return err
		}
	}
	if f.mode == ModeCreate && f.cfg.RelatedField != "" && f.relatedKey() == "" {
		return &ValidationError{Field: f.cfg.RelatedField, Message: "is required"}
	}
	for _, n := range f.cfg.Normalizers {
		if err := n(f.draft); err != nil {
			return err
		}
	}
	return nil
}

func (f *Form) relatedKey() string {
	if f.relatedID != "" {
		return f.relatedID
	}
	if f.cfg.RelatedField == "" {
		return ""
	}
	return f.draft.String(f.cfg.RelatedField)
}

// send issues the PUT or POST for body. It does not touch form state.
func (f *Form) send(ctx context.Context, backend Backend, body map[string]any) (Record, error) {
	var (
		res map[string]any
		err error
	)
	if f.mode == ModeEdit {
		res, err = backend.Update(ctx, f.id, body)
	} else {
		res, err = backend.Create(ctx, f.relatedKey(), body)
	}
	if err != nil {
		return nil, err
	}
	return Record(res), nil
}

// Submit validates and sends the draft. It is the standalone path; tables
// go through Controller.SubmitModal.
func (f *Form) Submit(ctx context.Context, backend Backend, now time.Time) (Record, error) {
	if f.phase == ModalSubmitting {
		return nil, ErrModalBusy
	}
	if err := f.prepare(now); err != nil {
		f.lastErr = err
		return nil, err
	}
	f.phase = ModalSubmitting
	res, err := f.send(ctx, backend, plain(f.draft.Clone()))
	f.phase = ModalEditing
	f.lastErr = err
	return res, err
}

// ToggleState is a declared toggle with its draft value.
type ToggleState struct {
	Toggle
	Value bool `json:"value"`
}

// ModalView is the render snapshot of an open form.
type ModalView struct {
	Mode      ModalMode     `json:"mode"`
	Phase     ModalPhase    `json:"phase"`
	RecordID  string        `json:"record_id,omitempty"`
	RelatedID string        `json:"related_id,omitempty"`
	Draft     Record        `json:"draft"`
	Toggles   []ToggleState `json:"toggles,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func (f *Form) view() *ModalView {
	v := &ModalView{
		Mode:      f.mode,
		Phase:     f.phase,
		RecordID:  f.id,
		RelatedID: f.relatedID,
		Draft:     f.draft.Clone(),
	}
	for _, t := range f.cfg.Toggles {
		on, _ := f.draft[t.Key].(bool)
		v.Toggles = append(v.Toggles, ToggleState{Toggle: t, Value: on})
	}
	if f.lastErr != nil {
		v.Error = f.lastErr.Error()
	}
	return v
}

// View returns the render snapshot.
func (f *Form) View() *ModalView {
	return f.view()
}

// ---- Controller modal operations ----

// OpenEdit opens the modal on a copy of the record with id.
func (c *Controller) OpenEdit(id string) (*ModalView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form != nil && c.form.phase == ModalSubmitting {
		return nil, ErrModalBusy
	}
	r, _, ok := c.findLocked(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	c.form = NewEditForm(&c.cfg, r)
	return c.form.view(), nil
}

// OpenCreate opens the modal on a new draft.
func (c *Controller) OpenCreate(relatedID string) (*ModalView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form != nil && c.form.phase == ModalSubmitting {
		return nil, ErrModalBusy
	}
	c.form = NewCreateForm(&c.cfg, relatedID)
	return c.form.view(), nil
}

// Modal returns the open modal, or nil.
func (c *Controller) Modal() *ModalView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil {
		return nil
	}
	return c.form.view()
}

// SetField writes one draft field of the open modal.
func (c *Controller) SetField(key string, v any) (*ModalView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil {
		return nil, ErrNoModal
	}
	if err := c.form.Set(key, v); err != nil {
		return nil, err
	}
	return c.form.view(), nil
}

// ToggleField flips a declared boolean of the open modal.
func (c *Controller) ToggleField(key string) (*ModalView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil {
		return nil, ErrNoModal
	}
	if _, err := c.form.Toggle(key); err != nil {
		return nil, err
	}
	return c.form.view(), nil
}

// CloseModal discards the draft.
func (c *Controller) CloseModal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil {
		return ErrNoModal
	}
	if c.form.phase == ModalSubmitting {
		return ErrModalBusy
	}
	c.form = nil
	return nil
}

// SubmitModal validates and sends the open draft. On success the modal
// closes and the collection is re-fetched; on failure the modal stays open
// with the draft and the error.
func (c *Controller) SubmitModal(ctx context.Context) (Record, error) {
	c.mu.Lock()
	f := c.form
	if f == nil {
		c.mu.Unlock()
		return nil, ErrNoModal
	}
	if f.phase == ModalSubmitting {
		c.mu.Unlock()
		return nil, ErrModalBusy
	}
	if err := f.prepare(c.now()); err != nil {
		f.lastErr = err
		c.mu.Unlock()
		c.notifier.Error(err.Error())
		return nil, err
	}
	f.phase = ModalSubmitting
	body := plain(f.draft.Clone())
	mode := f.mode
	c.mu.Unlock()

	res, err := f.send(ctx, c.backend, body)

	c.mu.Lock()
	live := c.form == f
	if err != nil {
		if live {
			f.phase = ModalEditing
			f.lastErr = err
		}
		c.mu.Unlock()
		c.notifier.Error(fmt.Sprintf("Failed to save %s: %v", c.cfg.Singular, err))
		return nil, fmt.Errorf("submit %s: %w", c.cfg.Singular, err)
	}
	if live {
		c.form = nil
	}
	mounted := c.mounted
	c.mu.Unlock()

	if mode == ModeEdit {
		c.notifier.Success(c.noun() + " updated")
	} else {
		c.notifier.Success(c.noun() + " created")
	}
	if mounted {
		_ = c.Reload(ctx)
	}
	return res, nil
}
