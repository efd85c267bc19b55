package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seuros/salesboard/internal/config"
	"github.com/seuros/salesboard/internal/countries"
	"github.com/seuros/salesboard/internal/export"
	"github.com/seuros/salesboard/internal/query"
)

const fixtureCSV = `timestamp,event_type,country,product,price,unit_cost,quantity,channel,job_type,url,status,user_agent,customer_id,salesperson_id,salesperson_name
2024-01-05 10:00:00,sale,US,AI Assistant,100,40,2,online,,,,,c-1,sp-1,Ada Lovelace
2024-02-10 10:00:00,sale,DE,Analytics Suite,50,20,1,partner,,,,,c-2,sp-2,Grace Hopper
2024-01-03 09:30:00,web,DE,,,,,,,/request-demo,200,Mozilla/5.0,,,
`

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	original := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = original

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "combined_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixtureCSV), 0o644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SALESBOARD_SERVER_URL", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(func() {
		overrides = config.Overrides{}
		reportFormat = "table"
		reportCountries = nil
		reportStart, reportEnd, reportProduct, reportServer = "", "", "", ""
	})

	var err error
	out := captureStdout(t, func() {
		RootCmd.SetArgs(args)
		err = RootCmd.Execute()
	})
	return out, err
}

func TestReportCommandJSON(t *testing.T) {
	path := writeFixture(t)

	out, err := execute(t, "report", "sales", "--data-file", path, "--format", "json")
	require.NoError(t, err)

	var rows []query.SalesRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "DE", rows[0].Country)
	assert.Equal(t, 200.0, rows[1].Revenue)
}

func TestReportCommandCountryFilter(t *testing.T) {
	path := writeFixture(t)

	out, err := execute(t, "report", "sales", "--data-file", path, "--format", "csv", "--country", "Germany")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "country,product,sales_count,revenue,profit", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "DE,Analytics Suite,"))
}

func TestReportCommandTable(t *testing.T) {
	path := writeFixture(t)

	out, err := execute(t, "report", "conversion_funnel", "--data-file", path, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "web visits:")
	assert.Contains(t, out, "conversion rate:")
}

func TestReportCommandRejectsBadInput(t *testing.T) {
	path := writeFixture(t)

	_, err := execute(t, "report", "nope", "--data-file", path)
	assert.ErrorIs(t, err, query.ErrUnknownReport)

	_, err = execute(t, "report", "sales", "--data-file", path, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestReportCommandBadDatePrintsEmptyReport(t *testing.T) {
	path := writeFixture(t)

	out, err := execute(t, "report", "sales", "--data-file", path, "--start", "soon", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	out, err = execute(t, "report", "conversion_funnel", "--data-file", path, "--end", "2024-13-45", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"web_visits": 0`)
}

func TestReportsCommand(t *testing.T) {
	out, err := execute(t, "reports", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(query.Reports())+1)
	assert.Equal(t, "name,shape,description", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "sales,list,"))
}

func TestCountriesCommand(t *testing.T) {
	path := writeFixture(t)

	out, err := execute(t, "countries", "--data-file", path, "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "code,alpha3,name", lines[0])
	assert.Equal(t, "DE,DEU,Germany", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "US,USA,"))
}

func TestDescribeCountries(t *testing.T) {
	got := describeCountries([]string{"FR", "ZZ"})
	require.Len(t, got, 2)
	assert.Equal(t, countries.Info{Code: "FR", Alpha3: "FRA", Name: "France"}, got[0])
	assert.Equal(t, "", got[1].Alpha3)
}

func TestOutputFormatDefaultsToCSVWhenPiped(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringVarP(&reportFormat, "format", "f", "table", "")

	var format export.Format
	var err error
	captureStdout(t, func() {
		format, err = outputFormat(cmd)
	})
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, format)

	require.NoError(t, cmd.Flags().Set("format", "yaml"))
	format, err = outputFormat(cmd)
	require.NoError(t, err)
	assert.Equal(t, export.FormatYAML, format)
}
