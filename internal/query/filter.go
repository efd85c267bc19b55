package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/seuros/salesboard/internal/countries"
	"github.com/seuros/salesboard/internal/events"
)

// ErrInvalidDate is returned by ParseFilter when a bound does not parse.
var ErrInvalidDate = errors.New("invalid date")

// Filter narrows the event table before a report aggregates it.
// Zero bounds and empty sets impose no constraint.
type Filter struct {
	Start     time.Time
	End       time.Time
	Countries []string
	Product   string
}

// ParseFilter builds a Filter from raw boundary input. Country values are
// normalised to alpha-2 codes.
func ParseFilter(start, end string, countryValues []string, product string) (Filter, error) {
	var f Filter
	if s := strings.TrimSpace(start); s != "" {
		ts, err := events.ParseTimestamp(s)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: start %q", ErrInvalidDate, start)
		}
		f.Start = ts
	}
	if e := strings.TrimSpace(end); e != "" {
		ts, err := events.ParseTimestamp(e)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: end %q", ErrInvalidDate, end)
		}
		f.End = ts
	}
	f.Countries = countries.NormalizeAll(countryValues)
	f.Product = strings.TrimSpace(product)
	return f, nil
}

// Apply returns the rows of table passing f. The input is never modified.
func Apply(table *events.Table, f Filter) *events.Table {
	out := table.Between(f.Start, f.End)
	if len(f.Countries) > 0 {
		set := make(map[string]struct{}, len(f.Countries))
		for _, c := range f.Countries {
			set[c] = struct{}{}
		}
		out = out.Where(func(ev *events.Event) bool {
			_, ok := set[ev.Country]
			return ok
		})
	}
	if f.Product != "" {
		out = out.Where(func(ev *events.Event) bool { return ev.Product == f.Product })
	}
	return out
}

// Key is the canonical string form of f. Filters selecting the same rows
// produce the same key.
func (f Filter) Key() string {
	cs := slices.Clone(f.Countries)
	slices.Sort(cs)
	cs = slices.Compact(cs)

	var b strings.Builder
	b.WriteString(formatBound(f.Start))
	b.WriteByte('|')
	b.WriteString(formatBound(f.End))
	b.WriteByte('|')
	b.WriteString(strings.Join(cs, ","))
	b.WriteByte('|')
	b.WriteString(f.Product)
	return b.String()
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}
