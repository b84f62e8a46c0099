package patient

import (
	"strings"
	"time"

	"github.com/Alijeyrad/dentaldesk/internal/table"
)

// Entity is the REST path segment of patients.
const Entity = "patients"

// DefaultRecentDays is how far back the "recent" category reaches.
const DefaultRecentDays = 30

// ---------------------------------------------------------------------------
// Table configuration
// ---------------------------------------------------------------------------

// Table returns the patients table. recentDays bounds the recent/older
// split on the registration date; region is the default region phone
// numbers without a country code are parsed in.
func Table(recentDays int, region string) table.Config {
	if recentDays <= 0 {
		recentDays = DefaultRecentDays
	}
	return table.Config{
		Entity:   Entity,
		Singular: "patient",
		Columns: []table.Column{
			{Key: "name", Label: "Name", Sortable: true, Compose: []string{"firstName", "lastName"}},
			{Key: "dob", Label: "Date of Birth", Sortable: true},
			{Key: "gender", Label: "Gender", Sortable: true},
			{Key: "phone", Label: "Phone", Sortable: true},
			{Key: "email", Label: "Email", Sortable: true},
			{Key: "createdDate", Label: "Registered", Sortable: true},
			{Key: "actions", Label: "Actions"},
		},
		Categories: []table.Category{
			{Key: table.CategoryAll, Label: "All"},
			{Key: "recent", Label: "Recent", Match: table.WithinLastDays("createdDate", recentDays)},
			{Key: "older", Label: "Older", Match: table.OlderThanDays("createdDate", recentDays)},
		},
		SearchFields: []string{"firstName", "lastName", "name", "email", "phone", "address"},
		DateFields:   []string{"dob", "createdDate"},
		Template: table.Record{
			"firstName": "",
			"lastName":  "",
			"dob":       "",
			"gender":    "",
			"phone":     "",
			"email":     "",
			"address":   "",
		},
		Validators:  []table.Validator{requireName},
		Normalizers: []func(table.Record) error{PhoneNormalizer("phone", region)},
	}
}

func requireName(draft table.Record, _ time.Time) error {
	for _, f := range []string{"firstName", "lastName"} {
		if strings.TrimSpace(draft.String(f)) == "" {
			return &table.ValidationError{Field: f, Message: "is required"}
		}
	}
	return nil
}
