package events

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `timestamp,event_type,country,product,price,unit_cost,quantity,channel,job_type,url,status,user_agent,customer_id,salesperson_id,salesperson_name
2024-01-05 10:00:00,sale,US,AI Assistant,100,40,2,online,Prototyping Solution,,,,c-1,sp-1,Ada Lovelace
2024-01-03 09:30:00,web,DE,,,,,,Demo Request,/request-demo,200,Mozilla/5.0,c-2,,
2024-01-04 08:00:00,sale,FR,Analytics Suite,abc,10,n/a,partner,,,,,c-3,sp-2,Grace Hopper
not-a-date,sale,US,AI Assistant,1,1,1,online,,,,,c-4,sp-1,Ada Lovelace
2024-01-06 00:00:00,refund,US,AI Assistant,1,1,1,online,,,,,c-5,sp-1,Ada Lovelace
`

func TestReadParsesAndCoerces(t *testing.T) {
	table, stats, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 2, stats.Skipped)
	require.Equal(t, 3, table.Len())

	rows := table.Rows()
	assert.Equal(t, TypeWeb, rows[0].Type)
	assert.Equal(t, "/request-demo", rows[0].URL)
	assert.Equal(t, 0.0, rows[0].Price)

	// unparsable price and quantity are coerced to zero, not dropped
	assert.Equal(t, "FR", rows[1].Country)
	assert.Equal(t, 0.0, rows[1].Price)
	assert.Equal(t, 0.0, rows[1].Quantity)
	assert.Equal(t, 0.0, rows[1].Revenue)

	assert.Equal(t, "Ada Lovelace", rows[2].SalespersonName)
	assert.Equal(t, 200.0, rows[2].Revenue)
	assert.Equal(t, 120.0, rows[2].Profit)
}

func TestReadMatchesColumnsByName(t *testing.T) {
	input := "quantity,event_type,price,timestamp\n3,sale,10,2024-02-01T00:00:00\n"
	table, _, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, 30.0, table.Rows()[0].Revenue)
}

func TestReadRequiresTimestampColumn(t *testing.T) {
	_, _, err := Read(strings.NewReader("event_type,country\nsale,US\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestReadRejectsEmptyInput(t *testing.T) {
	_, _, err := Read(strings.NewReader(""))
	require.Error(t, err)
}

func TestReadTreatsNonFiniteNumbersAsZero(t *testing.T) {
	input := "timestamp,event_type,price,quantity\n2024-02-01,sale,NaN,Inf\n"
	table, _, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	ev := table.Rows()[0]
	assert.Equal(t, 0.0, ev.Price)
	assert.Equal(t, 0.0, ev.Quantity)
	assert.Equal(t, 0.0, ev.ProfitMargin)
}

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2024, time.May, 6, 7, 8, 9, 0, time.UTC)

	for _, raw := range []string{
		"2024-05-06 07:08:09",
		"2024-05-06T07:08:09",
		"2024-05-06T07:08:09Z",
		"2024-05-06T09:08:09+02:00",
	} {
		got, err := ParseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
		assert.Equal(t, time.UTC, got.Location(), raw)
	}

	day, err := ParseTimestamp("2024-05-06")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseTimestamp("yesterday")
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	table, stats, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 3, stats.Rows)

	_, _, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
