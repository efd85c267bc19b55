package events

import (
	"slices"
	"sort"
	"time"
)

// Table is a read-only, timestamp-sorted set of events. Views returned by
// Between and Where share the underlying events; nothing may mutate them.
// A nil *Table behaves as an empty table.
type Table struct {
	rows []*Event
}

// NewTable copies rows, computes derived columns and sorts by timestamp.
// Rows with equal timestamps keep their input order.
func NewTable(rows []Event) *Table {
	out := make([]*Event, len(rows))
	for i := range rows {
		ev := rows[i]
		ev.derive()
		out[i] = &ev
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return &Table{rows: out}
}

// Len reports the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Rows exposes the rows in timestamp order. Callers must treat both the
// slice and the events as read-only.
func (t *Table) Rows() []*Event {
	if t == nil {
		return nil
	}
	return t.rows
}

// Between returns the rows with start <= timestamp <= end. A zero bound is
// open on that side; start after end yields an empty table.
func (t *Table) Between(start, end time.Time) *Table {
	rows := t.Rows()
	lo, hi := 0, len(rows)
	if !start.IsZero() {
		lo = sort.Search(len(rows), func(i int) bool {
			return !rows[i].Timestamp.Before(start)
		})
	}
	if !end.IsZero() {
		hi = sort.Search(len(rows), func(i int) bool {
			return rows[i].Timestamp.After(end)
		})
	}
	if lo >= hi {
		return &Table{}
	}
	return &Table{rows: rows[lo:hi:hi]}
}

// Where returns the rows for which keep returns true, preserving order.
func (t *Table) Where(keep func(*Event) bool) *Table {
	rows := t.Rows()
	out := make([]*Event, 0, len(rows))
	for _, ev := range rows {
		if keep(ev) {
			out = append(out, ev)
		}
	}
	return &Table{rows: out}
}

// OfType narrows the table to one event type.
func (t *Table) OfType(typ Type) *Table {
	return t.Where(func(ev *Event) bool { return ev.Type == typ })
}

// Span returns the first and last timestamps. ok is false for an empty table.
func (t *Table) Span() (first, last time.Time, ok bool) {
	rows := t.Rows()
	if len(rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return rows[0].Timestamp, rows[len(rows)-1].Timestamp, true
}

// Countries lists the distinct non-blank countries in ascending order.
func (t *Table) Countries() []string {
	seen := make(map[string]struct{})
	for _, ev := range t.Rows() {
		if ev.Country != "" {
			seen[ev.Country] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
