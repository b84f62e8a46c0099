package treatment

import (
	"time"

	"github.com/Alijeyrad/dentaldesk/internal/table"
)

// Entity is the REST path segment of treatments. Treatments are created
// under a patient.
const Entity = "treatments"

const DefaultRecentDays = 30

const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var Statuses = []string{StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled}

func Table(recentDays int) table.Config {
	if recentDays <= 0 {
		recentDays = DefaultRecentDays
	}
	return table.Config{
		Entity:   Entity,
		Singular: "treatment",
		Columns: []table.Column{
			{Key: "patient", Label: "Patient", Sortable: true, Compose: []string{"patient.firstName", "patient.lastName"}},
			{Key: "procedure", Label: "Procedure", Sortable: true},
			{Key: "tooth", Label: "Tooth", Sortable: true},
			{Key: "treatmentDate", Label: "Date", Sortable: true},
			{Key: "dentist", Label: "Dentist", Sortable: true},
			{Key: "cost", Label: "Cost", Sortable: true},
			{Key: "amountPaid", Label: "Paid", Sortable: true},
			{Key: "status", Label: "Status", Sortable: true},
			{Key: "actions", Label: "Actions"},
		},
		Categories: []table.Category{
			{Key: table.CategoryAll, Label: "All"},
			{Key: "recent", Label: "Recent", Match: table.WithinLastDays("treatmentDate", recentDays)},
			{Key: "older", Label: "Older", Match: table.OlderThanDays("treatmentDate", recentDays)},
			{Key: "outstanding", Label: "Outstanding", Match: Outstanding},
		},
		SearchFields: []string{"procedure", "tooth", "dentist", "status", "notes"},
		RelatedSearch: map[string][]string{
			"patient": {"firstName", "lastName"},
		},
		StatusField:  "status",
		Statuses:     Statuses,
		DateFields:   []string{"treatmentDate"},
		RelatedField: "patientId",
		Template: table.Record{
			"procedure":     "",
			"tooth":         "",
			"treatmentDate": "",
			"dentist":       "",
			"cost":          0.0,
			"amountPaid":    0.0,
			"notes":         "",
			"status":        StatusPlanned,
		},
		Validators: []table.Validator{validateCharges},
	}
}

// Balance is cost minus amount paid. Missing amounts count as zero.
func Balance(r table.Record) float64 {
	cost, _ := r.Float("cost")
	paid, _ := r.Float("amountPaid")
	return cost - paid
}

// Outstanding matches treatments that are not cancelled and still owe money.
func Outstanding(r table.Record, _ time.Time) bool {
	return r.String("status") != StatusCancelled && Balance(r) > 0
}

func validateCharges(draft table.Record, _ time.Time) error {
	if draft.String("procedure") == "" {
		return &table.ValidationError{Field: "procedure", Message: "is required"}
	}
	cost, _ := draft.Float("cost")
	paid, _ := draft.Float("amountPaid")
	switch {
	case cost < 0:
		return &table.ValidationError{Field: "cost", Message: "cannot be negative"}
	case paid < 0:
		return &table.ValidationError{Field: "amountPaid", Message: "cannot be negative"}
	case paid > cost:
		return &table.ValidationError{Field: "amountPaid", Message: "cannot exceed the cost"}
	}
	return nil
}
