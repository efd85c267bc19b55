package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteTable renders aligned columns. Single-record results are shown as
// "name: value" pairs.
func WriteTable(w io.Writer, value any) error {
	sections, err := Sections(value)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, s := range sections {
		if i > 0 {
			_, _ = fmt.Fprintln(tw)
		}
		if s.Title != "" {
			_, _ = fmt.Fprintf(tw, "%s\n", strings.ToUpper(s.Title))
		}
		if len(s.Rows) == 0 {
			_, _ = fmt.Fprintln(tw, "No data")
			continue
		}
		if len(sections) == 1 && len(s.Rows) == 1 && len(s.Columns) > 1 && !isList(value) {
			for c, name := range s.Columns {
				_, _ = fmt.Fprintf(tw, "%s:\t%s\n", label(name), s.Rows[0][c])
			}
			continue
		}

		headers := make([]string, len(s.Columns))
		rules := make([]string, len(s.Columns))
		for c, name := range s.Columns {
			headers[c] = strings.ToUpper(label(name))
			rules[c] = strings.Repeat("-", len(headers[c]))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
		_, _ = fmt.Fprintln(tw, strings.Join(rules, "\t"))
		for _, row := range s.Rows {
			_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	}
	return tw.Flush()
}

func label(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
