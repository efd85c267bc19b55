package realtime

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/seuros/salesboard/internal/logging"
)

// ChannelName is the Postgres channel that carries reload requests.
const ChannelName = "salesboard_dataset"

// ReloadRequest is the NOTIFY payload sent after the events table changes.
type ReloadRequest struct {
	Reason    string    `json:"reason"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// NotifyReload asks every listening server to reload its dataset.
func NotifyReload(ctx context.Context, db *sql.DB, req ReloadRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal reload request: %w", err)
	}
	if _, err := db.ExecContext(ctx, "SELECT pg_notify($1, $2)", ChannelName, string(data)); err != nil {
		return fmt.Errorf("send reload notification: %w", err)
	}
	return nil
}

// DecodeReloadRequest parses a notification payload. Malformed payloads
// still count as a reload request with the raw text as reason.
func DecodeReloadRequest(payload string) ReloadRequest {
	var req ReloadRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return ReloadRequest{Reason: payload}
	}
	return req
}

// StartListener subscribes to ChannelName and calls onNotify for every
// notification until ctx is done.
func StartListener(ctx context.Context, databaseURL string, onNotify func(ReloadRequest)) error {
	listener := pq.NewListener(databaseURL, 5*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			logging.L().Warn("dataset listener event", zap.Int("event", int(event)), zap.Error(err))
		}
	})

	if err := listener.Listen(ChannelName); err != nil {
		_ = listener.Close()
		return err
	}

	go func() {
		defer func() {
			_ = listener.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case n := <-listener.Notify:
				if n == nil {
					continue
				}
				onNotify(DecodeReloadRequest(n.Extra))
			case <-time.After(time.Minute):
				if err := listener.Ping(); err != nil {
					logging.L().Warn("dataset listener ping failed", zap.Error(err))
				}
			}
		}
	}()

	return nil
}
