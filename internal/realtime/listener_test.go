package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyReloadPublishesPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	req := ReloadRequest{Reason: "import", Rows: 12, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	payload, err := json.Marshal(req)
	require.NoError(t, err)

	mock.ExpectExec("SELECT pg_notify").
		WithArgs(ChannelName, string(payload)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NotifyReload(context.Background(), db, req))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyReloadHandlesExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("SELECT pg_notify").WillReturnError(assert.AnError)

	err = NotifyReload(context.Background(), db, ReloadRequest{Reason: "import"})
	require.ErrorIs(t, err, assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecodeReloadRequest(t *testing.T) {
	req := DecodeReloadRequest(`{"reason":"import","rows":3,"created_at":"2024-03-01T00:00:00Z"}`)
	assert.Equal(t, "import", req.Reason)
	assert.Equal(t, 3, req.Rows)

	assert.Equal(t, ReloadRequest{Reason: "manual"}, DecodeReloadRequest("manual"))
}
