package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/seuros/salesboard/internal/events"
	"github.com/seuros/salesboard/internal/logging"
	"go.uber.org/zap"
)

// Columns in the events table, in the order Load scans them.
var eventColumns = []string{
	"ts", "event_type", "country", "product", "price", "unit_cost",
	"quantity", "channel", "job_type", "url", "status", "user_agent",
	"customer_id", "salesperson_id", "salesperson_name",
}

const selectEvents = `
	SELECT ts, event_type, country, product, price, unit_cost, quantity,
	       channel, job_type, url, status, user_agent,
	       customer_id, salesperson_id, salesperson_name
	FROM events
	ORDER BY ts, id`

const selectVersion = `SELECT COUNT(*), COALESCE(MAX(id), 0) FROM events`

// Source reads the event log from the events table.
type Source struct {
	db *sql.DB
}

// NewSource wraps an open connection.
func NewSource(db *sql.DB) *Source {
	return &Source{db: db}
}

// Load reads every row. Rows with an unknown event type are skipped.
func (s *Source) Load(ctx context.Context) (*events.Table, events.LoadStats, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents)
	if err != nil {
		return nil, events.LoadStats{}, fmt.Errorf("query events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.L().Warn("failed to close event rows", zap.Error(err))
		}
	}()

	var (
		out   []events.Event
		stats events.LoadStats
	)
	for rows.Next() {
		var (
			ev      events.Event
			rawType string
		)
		if err := rows.Scan(
			&ev.Timestamp, &rawType, &ev.Country, &ev.Product,
			&ev.Price, &ev.UnitCost, &ev.Quantity,
			&ev.Channel, &ev.JobType, &ev.URL, &ev.Status, &ev.UserAgent,
			&ev.CustomerID, &ev.SalespersonID, &ev.SalespersonName,
		); err != nil {
			return nil, stats, fmt.Errorf("scan event: %w", err)
		}
		typ, ok := events.ParseType(rawType)
		if !ok {
			stats.Skipped++
			continue
		}
		ev.Type = typ
		ev.Timestamp = ev.Timestamp.UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, stats, fmt.Errorf("iterate events: %w", err)
	}

	stats.Rows = len(out)
	return events.NewTable(out), stats, nil
}

// Version changes whenever rows are added or removed.
func (s *Source) Version(ctx context.Context) (string, error) {
	var count, maxID int64
	if err := s.db.QueryRowContext(ctx, selectVersion).Scan(&count, &maxID); err != nil {
		return "", fmt.Errorf("query events version: %w", err)
	}
	return fmt.Sprintf("%d-%d", count, maxID), nil
}

func (s *Source) Describe() string {
	return "postgres events table"
}
