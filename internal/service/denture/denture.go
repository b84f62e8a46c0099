package denture

import (
	"errors"
	"time"

	"github.com/Alijeyrad/dentaldesk/internal/table"
)

// Entity is the REST path segment of dentures. New dentures are created
// under a patient.
const Entity = "dentures"

const (
	StatusImpression = "impression"
	StatusInLab      = "in-lab"
	StatusTrial      = "trial"
	StatusReady      = "ready"
	StatusDelivered  = "delivered"
)

var Statuses = []string{StatusImpression, StatusInLab, StatusTrial, StatusReady, StatusDelivered}

var ErrTrialAfterDelivery = errors.New("trial date must not be after the estimated delivery date")

func Table() table.Config {
	delivered := table.FieldEquals("status", StatusDelivered)
	return table.Config{
		Entity:   Entity,
		Singular: "denture",
		Columns: []table.Column{
			{Key: "patient", Label: "Patient", Sortable: true, Compose: []string{"patient.firstName", "patient.lastName"}},
			{Key: "dentureType", Label: "Type", Sortable: true},
			{Key: "material", Label: "Material", Sortable: true},
			{Key: "labName", Label: "Lab", Sortable: true},
			{Key: "trialDate", Label: "Trial", Sortable: true},
			{Key: "estimatedDeliveryDate", Label: "Est. Delivery", Sortable: true},
			{Key: "status", Label: "Status", Sortable: true},
			{Key: "actions", Label: "Actions"},
		},
		Categories: []table.Category{
			{Key: table.CategoryAll, Label: "All"},
			{Key: "in-progress", Label: "In Progress", Match: table.Not(delivered)},
			{Key: "overdue", Label: "Overdue", Match: table.And(table.Not(delivered), table.BeforeToday("estimatedDeliveryDate"))},
			{Key: "delivered", Label: "Delivered", Match: delivered},
		},
		SearchFields: []string{"dentureType", "material", "labName", "status", "notes"},
		RelatedSearch: map[string][]string{
			"patient": {"firstName", "lastName"},
		},
		StatusField: "status",
		Statuses:    Statuses,
		DateFields:  []string{"impressionDate", "trialDate", "estimatedDeliveryDate", "deliveredDate"},
		Toggles: []table.Toggle{
			{Key: "upperArch", Label: "Upper arch"},
			{Key: "lowerArch", Label: "Lower arch"},
		},
		RelatedField: "patientId",
		Template: table.Record{
			"dentureType":           "",
			"material":              "",
			"labName":               "",
			"impressionDate":        "",
			"trialDate":             "",
			"estimatedDeliveryDate": "",
			"cost":                  0.0,
			"notes":                 "",
			"status":                StatusImpression,
		},
		Validators: []table.Validator{TrialBeforeDelivery},
	}
}

// TrialBeforeDelivery rejects a trial scheduled after the estimated
// delivery. Either date may be left empty.
func TrialBeforeDelivery(draft table.Record, now time.Time) error {
	trial, ok := draft.Time("trialDate", now.Location())
	if !ok {
		return nil
	}
	delivery, ok := draft.Time("estimatedDeliveryDate", now.Location())
	if !ok {
		return nil
	}
	if dayAfter(trial, delivery) {
		return &table.ValidationError{Field: "trialDate", Message: ErrTrialAfterDelivery.Error()}
	}
	return nil
}

func dayAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).After(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC))
}
