package table

import (
	"slices"
	"strings"
)

// Direction of a column sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
	None Direction = "none"
)

// SortState tracks which column is sorted and how many times its header
// has been clicked in the current cycle.
type SortState struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
	Clicks    int       `json:"clicks"`
}

// Unsorted is the initial sort state.
func Unsorted() SortState {
	return SortState{Direction: None}
}

// Click advances the cycle for key: asc on the first click, desc on the
// second, unsorted on the third. Clicking a different column starts over
// at asc. Clicks on columns that cannot sort leave the state alone and
// report false.
func (s *SortState) Click(col Column, known bool) bool {
	if !known || !col.Sortable {
		return false
	}
	if s.Key != col.Key {
		*s = SortState{Key: col.Key, Direction: Asc, Clicks: 1}
		return true
	}
	s.Clicks++
	if s.Clicks >= 3 {
		*s = Unsorted()
		return true
	}
	if s.Direction == Asc {
		s.Direction = Desc
	} else {
		s.Direction = Asc
	}
	return true
}

// ApplySort orders a copy of records by the active column. Values are
// compared as strings; equal values keep their input order.
func ApplySort(records []Record, col Column, state SortState) []Record {
	out := slices.Clone(records)
	if state.Direction == None || state.Key == "" {
		return out
	}
	type keyed struct {
		rec Record
		key string
	}
	pairs := make([]keyed, len(out))
	for i, r := range out {
		pairs[i] = keyed{rec: r, key: col.Value(r)}
	}
	slices.SortStableFunc(pairs, func(a, b keyed) int {
		if state.Direction == Desc {
			return strings.Compare(b.key, a.key)
		}
		return strings.Compare(a.key, b.key)
	})
	for i, p := range pairs {
		out[i] = p.rec
	}
	return out
}
