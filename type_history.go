package bhavbook

import (
	"iter"
	"slices"
	"sort"
)

// History stores a chronological series of float64 values, each associated
// with a specific date. Dates are unique and the series is always sorted.
type History struct {
	days   []Date
	values []float64
}

// Len returns the number of points in the history.
func (h *History) Len() int { return len(h.days) }

// Latest returns the latest date and value in the history, or zero values
// when the history is empty.
func (h *History) Latest() (on Date, value float64) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, 0
	}
	return h.days[last], h.values[last]
}

// chronological is a private implementation to keep the history sorted.
type chronological struct{ *History }

func (s chronological) Len() int           { return len(s.days) }
func (s chronological) Less(i, j int) bool { return s.days[i].Before(s.days[j]) }
func (s chronological) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.values[i], s.values[j] = s.values[j], s.values[i]
}

// Append adds a point to the history. An existing value at that date is
// overwritten: the last data wins.
func (h *History) Append(on Date, v float64) *History {
	if i := slices.Index(h.days, on); i >= 0 {
		h.values[i] = v
		return h
	}
	h.days, h.values = append(h.days, on), append(h.values, v)
	sort.Sort(chronological{h})
	return h
}

// Get returns the value at 'on' and true, or zero and false.
func (h *History) Get(on Date) (float64, bool) {
	if i := slices.Index(h.days, on); i >= 0 {
		return h.values[i], true
	}
	return 0, false
}

// ValueAsOf returns the value on a given day, or the most recent value
// before it. It returns false when no point exists on or before that day.
func (h *History) ValueAsOf(on Date) (float64, bool) {
	i, found := slices.BinarySearchFunc(h.days, on, func(d, t Date) int {
		switch {
		case d.After(t):
			return 1
		case d.Before(t):
			return -1
		}
		return 0
	})
	if found {
		return h.values[i], true
	}
	if i == 0 {
		return 0, false
	}
	return h.values[i-1], true
}

// Values returns an iterator over all date/value pairs in chronological order.
func (h *History) Values() iter.Seq2[Date, float64] {
	return func(yield func(Date, float64) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}
