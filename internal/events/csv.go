package events

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Columns is the fixed header of the source file.
var Columns = []string{
	"timestamp", "event_type", "country", "product", "price", "unit_cost",
	"quantity", "channel", "job_type", "url", "status", "user_agent",
	"customer_id", "salesperson_id", "salesperson_name",
}

// ErrMissingColumn is returned when a required header column is absent.
var ErrMissingColumn = errors.New("missing required column")

// ErrInvalidTimestamp is returned by ParseTimestamp for unrecognised input.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// LoadStats summarises a load.
type LoadStats struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-style instant. Values carrying an offset are
// converted to UTC; naive values are read as UTC wall-clock time.
func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

// LoadFile reads a delimited event log from path.
func LoadFile(path string) (*Table, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open data file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read parses a delimited event log. Columns are matched by header name.
// Unparsable numbers become 0; rows with an unparsable timestamp or an
// unknown event type are skipped and counted.
func Read(r io.Reader) (*Table, LoadStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, LoadStats{}, fmt.Errorf("read header: empty input")
		}
		return nil, LoadStats{}, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[name] = i
	}
	for _, required := range []string{"timestamp", "event_type"} {
		if _, ok := index[required]; !ok {
			return nil, LoadStats{}, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var (
		rows  []Event
		stats LoadStats
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.Skipped++
				continue
			}
			return nil, stats, fmt.Errorf("read record: %w", err)
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		ts, err := ParseTimestamp(field("timestamp"))
		if err != nil {
			stats.Skipped++
			continue
		}
		typ, ok := ParseType(field("event_type"))
		if !ok {
			stats.Skipped++
			continue
		}

		rows = append(rows, Event{
			Timestamp:       ts,
			Type:            typ,
			Country:         field("country"),
			Product:         field("product"),
			Price:           parseNumber(field("price")),
			UnitCost:        parseNumber(field("unit_cost")),
			Quantity:        parseNumber(field("quantity")),
			Channel:         field("channel"),
			JobType:         field("job_type"),
			URL:             field("url"),
			Status:          field("status"),
			UserAgent:       field("user_agent"),
			CustomerID:      field("customer_id"),
			SalespersonID:   field("salesperson_id"),
			SalespersonName: field("salesperson_name"),
		})
	}

	stats.Rows = len(rows)
	return NewTable(rows), stats, nil
}

// parseNumber coerces unparsable or non-finite input to 0.
func parseNumber(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return finite(v)
}
