package table

import "time"

// civil drops the clock so two instants compare by calendar day.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayOf(r Record, field string, now time.Time) (time.Time, bool) {
	t, ok := r.Time(field, now.Location())
	if !ok {
		return time.Time{}, false
	}
	return civil(t.In(now.Location())), true
}

// OnToday matches records whose date field falls on now's calendar day.
func OnToday(field string) Predicate {
	return func(r Record, now time.Time) bool {
		d, ok := dayOf(r, field, now)
		return ok && d.Equal(civil(now))
	}
}

// WithinLastDays matches dates between now-days and now, by calendar day.
func WithinLastDays(field string, days int) Predicate {
	return func(r Record, now time.Time) bool {
		d, ok := dayOf(r, field, now)
		if !ok {
			return false
		}
		today := civil(now)
		return !d.Before(today.AddDate(0, 0, -days)) && !d.After(today)
	}
}

// OlderThanDays matches dates strictly before now-days, by calendar day.
func OlderThanDays(field string, days int) Predicate {
	return func(r Record, now time.Time) bool {
		d, ok := dayOf(r, field, now)
		return ok && d.Before(civil(now).AddDate(0, 0, -days))
	}
}

// WithinNextDays matches dates between now and now+days, by calendar day.
func WithinNextDays(field string, days int) Predicate {
	return func(r Record, now time.Time) bool {
		d, ok := dayOf(r, field, now)
		if !ok {
			return false
		}
		today := civil(now)
		return !d.Before(today) && !d.After(today.AddDate(0, 0, days))
	}
}

// BeforeToday matches dates on an earlier calendar day than now.
func BeforeToday(field string) Predicate {
	return func(r Record, now time.Time) bool {
		d, ok := dayOf(r, field, now)
		return ok && d.Before(civil(now))
	}
}

// DateTimeOf reads the instant of a record from a date field and an
// optional "HH:MM" time field.
func DateTimeOf(r Record, dateField, timeField string, loc *time.Location) (time.Time, bool) {
	raw := r.String(dateField)
	if raw == "" {
		return time.Time{}, false
	}
	if timeField != "" && len(raw) == len(time.DateOnly) {
		if clock := r.String(timeField); clock != "" {
			if t, ok := ParseTime(raw+" "+clock, loc); ok {
				return t, true
			}
		}
	}
	return ParseTime(raw, loc)
}

// AfterNow matches records whose date-time is strictly after now.
func AfterNow(dateField, timeField string) Predicate {
	return func(r Record, now time.Time) bool {
		t, ok := DateTimeOf(r, dateField, timeField, now.Location())
		return ok && t.After(now)
	}
}

// BeforeNow matches records whose date-time is strictly before now.
func BeforeNow(dateField, timeField string) Predicate {
	return func(r Record, now time.Time) bool {
		t, ok := DateTimeOf(r, dateField, timeField, now.Location())
		return ok && t.Before(now)
	}
}

// FieldEquals matches records whose field equals value as a string.
func FieldEquals(field, value string) Predicate {
	return func(r Record, _ time.Time) bool {
		return r.String(field) == value
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(r Record, now time.Time) bool { return !p(r, now) }
}

// And matches when every predicate matches.
func And(ps ...Predicate) Predicate {
	return func(r Record, now time.Time) bool {
		for _, p := range ps {
			if !p(r, now) {
				return false
			}
		}
		return true
	}
}
