package patient

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Alijeyrad/dentaldesk/internal/table"
	"github.com/Alijeyrad/dentaldesk/pkg/restclient"
)

// HistoryEntity is the REST path segment of medical histories. Histories
// are fetched by patient id and created under the patient.
const HistoryEntity = "medical-history"

// Conditions are the condition flags a medical history carries.
var Conditions = []table.Toggle{
	{Key: "diabetes", Label: "Diabetes"},
	{Key: "hypertension", Label: "Hypertension"},
	{Key: "heartDisease", Label: "Heart disease"},
	{Key: "asthma", Label: "Asthma"},
	{Key: "bleedingDisorder", Label: "Bleeding disorder"},
	{Key: "hepatitis", Label: "Hepatitis"},
	{Key: "allergies", Label: "Allergies"},
	{Key: "smoker", Label: "Smoker"},
	{Key: "pregnant", Label: "Pregnant"},
}

// HistoryTable configures the form behind the medical-history editor.
func HistoryTable() table.Config {
	return table.Config{
		Entity:   HistoryEntity,
		Singular: "medical history",
		Columns: []table.Column{
			{Key: "patientId", Label: "Patient"},
			{Key: "lastDentalVisit", Label: "Last Dental Visit"},
		},
		DateFields:   []string{"lastDentalVisit"},
		Toggles:      Conditions,
		RelatedField: "patientId",
		Template: table.Record{
			"medications":     "",
			"allergyDetails":  "",
			"lastDentalVisit": "",
			"notes":           "",
		},
	}
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// SaveRequest carries the edits of one save. Fields are written into the
// draft as given; Conditions set declared flags.
type SaveRequest struct {
	Fields     map[string]any  `json:"fields"`
	Conditions map[string]bool `json:"conditions"`
}

type HistoryService interface {
	// Lookup returns the history of a patient, or nil when there is none.
	Lookup(ctx context.Context, patientID string) (table.Record, error)
	// Save creates the history when absent and updates it otherwise.
	Save(ctx context.Context, patientID string, req SaveRequest) (table.Record, error)
	Conditions() []table.Toggle
}

type historyService struct {
	backend table.Backend
	cfg     table.Config
	now     func() time.Time
}

func NewHistoryService(backend table.Backend, now func() time.Time) HistoryService {
	if now == nil {
		now = time.Now
	}
	return &historyService{backend: backend, cfg: HistoryTable(), now: now}
}

func (s *historyService) Conditions() []table.Toggle {
	return slices.Clone(s.cfg.Toggles)
}

func (s *historyService) Lookup(ctx context.Context, patientID string) (table.Record, error) {
	if patientID == "" {
		return nil, ErrPatientIDRequired
	}
	res, err := s.backend.Get(ctx, patientID)
	if errors.Is(err, restclient.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup medical history of patient %s: %w", patientID, err)
	}
	return table.Record(res), nil
}

func (s *historyService) Save(ctx context.Context, patientID string, req SaveRequest) (table.Record, error) {
	existing, err := s.Lookup(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var form *table.Form
	if existing == nil {
		form = table.NewCreateForm(&s.cfg, patientID)
	} else {
		form = table.NewEditForm(&s.cfg, existing)
		for _, c := range s.cfg.Toggles {
			if form.Value(c.Key) == nil {
				_ = form.Set(c.Key, false)
			}
		}
	}

	for k, v := range req.Fields {
		if k == "id" || k == s.cfg.RelatedField {
			return nil, fmt.Errorf("%w: %s", ErrReadOnlyField, k)
		}
		_ = form.Set(k, v)
	}
	for k, want := range req.Conditions {
		if !slices.ContainsFunc(s.cfg.Toggles, func(t table.Toggle) bool { return t.Key == k }) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCondition, k)
		}
		if cur, _ := form.Value(k).(bool); cur != want {
			if _, err := form.Toggle(k); err != nil {
				return nil, err
			}
		}
	}

	res, err := form.Submit(ctx, s.backend, s.now())
	if err != nil {
		return nil, fmt.Errorf("save medical history of patient %s: %w", patientID, err)
	}
	if len(res) == 0 {
		res = form.Draft()
	}
	return res, nil
}
