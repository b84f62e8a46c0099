package table

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// CategoryAll is the identity category every table starts on.
const CategoryAll = "all"

// FilterState is the coarse category plus the free-text search.
type FilterState struct {
	Category string `json:"category"`
	Search   string `json:"search"`
}

// ApplyCategory keeps the records matching the named category, in order.
func ApplyCategory(records []Record, cats []Category, key string, now time.Time) ([]Record, error) {
	if key == "" || key == CategoryAll {
		return records, nil
	}
	cat, ok := lo.Find(cats, func(c Category) bool { return c.Key == key })
	if !ok {
		return nil, ErrUnknownCategory
	}
	if cat.Match == nil {
		return records, nil
	}
	return lo.Filter(records, func(r Record, _ int) bool {
		return cat.Match(r, now)
	}), nil
}

// SearchSpec lists the fields free-text search looks at.
type SearchSpec struct {
	Fields  []string
	Related map[string][]string
}

// ApplySearch keeps records where any searched field contains text,
// ignoring case. Empty text keeps everything.
func ApplySearch(records []Record, spec SearchSpec, text string) []Record {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return records
	}
	return lo.Filter(records, func(r Record, _ int) bool {
		return matches(r, spec, needle)
	})
}

func matches(r Record, spec SearchSpec, needle string) bool {
	if len(spec.Fields) == 0 {
		for _, v := range r {
			if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
	}
	for _, f := range spec.Fields {
		if strings.Contains(strings.ToLower(Stringify(r[f])), needle) {
			return true
		}
	}
	for _, key := range sortedKeys(spec.Related) {
		nested, ok := r.Related(key)
		if !ok {
			continue
		}
		for _, f := range spec.Related[key] {
			if strings.Contains(strings.ToLower(Stringify(nested[f])), needle) {
				return true
			}
		}
	}
	return false
}

func sortedKeys(m map[string][]string) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
