package appointment

import (
	"time"

	"github.com/Alijeyrad/dentaldesk/internal/table"
)

// Entity is the REST path segment of appointments.
const Entity = "appointments"

// Status vocabulary.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

var Statuses = []string{StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow}

// Table returns the appointments table. Today compares calendar days while
// upcoming and past compare the full date and time against now.
func Table() table.Config {
	return table.Config{
		Entity:   Entity,
		Singular: "appointment",
		Columns: []table.Column{
			{Key: "patient", Label: "Patient", Sortable: true, Compose: []string{"patient.firstName", "patient.lastName"}},
			{Key: "date", Label: "Date", Sortable: true},
			{Key: "time", Label: "Time", Sortable: true},
			{Key: "reason", Label: "Reason", Sortable: true},
			{Key: "dentist", Label: "Dentist", Sortable: true},
			{Key: "status", Label: "Status", Sortable: true},
			{Key: "actions", Label: "Actions"},
		},
		Categories: []table.Category{
			{Key: table.CategoryAll, Label: "All"},
			{Key: "today", Label: "Today", Match: table.OnToday("date")},
			{Key: "upcoming", Label: "Upcoming", Match: table.AfterNow("date", "time")},
			{Key: "past", Label: "Past", Match: table.BeforeNow("date", "time")},
		},
		SearchFields: []string{"reason", "dentist", "notes", "status"},
		RelatedSearch: map[string][]string{
			"patient": {"firstName", "lastName", "phone"},
		},
		StatusField: "status",
		Statuses:    Statuses,
		DateFields:  []string{"date"},
		Template: table.Record{
			"patientId": "",
			"date":      "",
			"time":      "",
			"reason":    "",
			"dentist":   "",
			"notes":     "",
			"status":    StatusScheduled,
		},
		Validators: []table.Validator{requirePatient, NotInPast},
	}
}

func requirePatient(draft table.Record, _ time.Time) error {
	if draft.String("id") != "" {
		return nil
	}
	if draft.String("patientId") == "" {
		if _, ok := draft.Related("patient"); !ok {
			return &table.ValidationError{Field: "patientId", Message: ErrPatientRequired.Error()}
		}
	}
	return nil
}

// NotInPast rejects new drafts dated before today. The check is by calendar
// day so an appointment later today is still accepted. Edits of existing
// appointments are not checked, so past visits stay correctable.
func NotInPast(draft table.Record, now time.Time) error {
	if draft.String("id") != "" {
		return nil
	}
	d, ok := draft.Time("date", now.Location())
	if !ok {
		return &table.ValidationError{Field: "date", Message: ErrDateRequired.Error()}
	}
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return &table.ValidationError{Field: "date", Message: ErrDateInPast.Error()}
	}
	return nil
}
