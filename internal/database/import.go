package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/seuros/salesboard/internal/events"
)

// ImportOptions tunes Import.
type ImportOptions struct {
	// Replace empties the table inside the same transaction first.
	Replace bool
}

// Import bulk-loads table into the events table with COPY.
func Import(ctx context.Context, db *sql.DB, table *events.Table, opts ImportOptions) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if opts.Replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM events"); err != nil {
			return 0, fmt.Errorf("clear events: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("events", eventColumns...))
	if err != nil {
		return 0, fmt.Errorf("prepare copy: %w", err)
	}

	count := 0
	for _, ev := range table.Rows() {
		if _, err := stmt.ExecContext(ctx,
			ev.Timestamp, string(ev.Type), ev.Country, ev.Product,
			ev.Price, ev.UnitCost, ev.Quantity,
			ev.Channel, ev.JobType, ev.URL, ev.Status, ev.UserAgent,
			ev.CustomerID, ev.SalespersonID, ev.SalespersonName,
		); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("copy row %d: %w", count+1, err)
		}
		count++
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return 0, fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("close copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return count, nil
}
