package patient

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/Alijeyrad/dentaldesk/internal/table"
)

// PhoneNormalizer rewrites the phone field of a draft to E.164. An empty
// value is left alone; anything that does not parse as a valid number for
// region is a validation error.
func PhoneNormalizer(field, region string) func(table.Record) error {
	region = strings.ToUpper(region)
	return func(draft table.Record) error {
		raw := strings.TrimSpace(draft.String(field))
		if raw == "" {
			return nil
		}
		e164, ok := NormalizePhone(raw, region)
		if !ok {
			return &table.ValidationError{Field: field, Message: "is not a valid phone number"}
		}
		draft[field] = e164
		return nil
	}
}

// NormalizePhone parses raw in region and formats it as E.164.
func NormalizePhone(raw, region string) (string, bool) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}
