package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes a header row followed by the records. Multi-section
// results are written as consecutive blocks, each introduced by a
// "[title]" line and separated by an empty line.
func WriteCSV(w io.Writer, value any) error {
	sections, err := Sections(value)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	for i, s := range sections {
		if s.Title != "" {
			if i > 0 {
				cw.Flush()
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if err := cw.Write([]string{"[" + s.Title + "]"}); err != nil {
				return fmt.Errorf("failed to write CSV section: %w", err)
			}
		}
		if err := cw.Write(s.Columns); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		for _, row := range s.Rows {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
