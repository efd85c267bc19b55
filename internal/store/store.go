// Package store owns the loaded event table. Snapshots are immutable and
// published atomically; every reload bumps the generation.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/seuros/salesboard/internal/events"
	"github.com/seuros/salesboard/internal/logging"
)

// ErrNotLoaded is returned before the first successful load.
var ErrNotLoaded = errors.New("dataset not loaded")

// Source produces event tables. Version is a cheap change token; a
// different value means Load would return different data.
type Source interface {
	Load(ctx context.Context) (*events.Table, events.LoadStats, error)
	Version(ctx context.Context) (string, error)
	Describe() string
}

// FileSource reads the delimited event log from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) (*events.Table, events.LoadStats, error) {
	return events.LoadFile(s.Path)
}

// Version combines modification time and size.
func (s FileSource) Version(_ context.Context) (string, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return "", fmt.Errorf("stat data file: %w", err)
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size()), nil
}

func (s FileSource) Describe() string {
	return "file " + s.Path
}

// Snapshot is one published table.
type Snapshot struct {
	Table      *events.Table    `json:"-"`
	Generation uint64           `json:"generation"`
	Version    string           `json:"version"`
	Stats      events.LoadStats `json:"stats"`
	LoadedAt   time.Time        `json:"loaded_at"`
}

// Holder serves the current snapshot to readers without locking.
type Holder struct {
	source  Source
	current atomic.Pointer[Snapshot]

	mu    sync.Mutex // serialises reloads and hook registration
	hooks []func(Snapshot)
}

// NewHolder creates an empty holder for source.
func NewHolder(source Source) *Holder {
	return &Holder{source: source}
}

// Source returns the underlying source.
func (h *Holder) Source() Source {
	return h.source
}

// Current returns the table and generation. Before the first load it
// returns a nil table and generation 0.
func (h *Holder) Current() (*events.Table, uint64) {
	snap := h.current.Load()
	if snap == nil {
		return nil, 0
	}
	return snap.Table, snap.Generation
}

// Snapshot returns the current snapshot.
func (h *Holder) Snapshot() (Snapshot, error) {
	snap := h.current.Load()
	if snap == nil {
		return Snapshot{}, ErrNotLoaded
	}
	return *snap, nil
}

// OnReload registers fn to run after every successful reload.
func (h *Holder) OnReload(fn func(Snapshot)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, fn)
}

// Reload loads the source unconditionally and publishes the result.
// A failed load keeps the previous snapshot.
func (h *Holder) Reload(ctx context.Context) (Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reloadLocked(ctx)
}

// Refresh reloads only when the source version changed.
func (h *Holder) Refresh(ctx context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	version, err := h.source.Version(ctx)
	if err != nil {
		return false, err
	}
	if prev := h.current.Load(); prev != nil && prev.Version == version {
		return false, nil
	}
	if _, err := h.reloadLocked(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (h *Holder) reloadLocked(ctx context.Context) (Snapshot, error) {
	version, err := h.source.Version(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	table, stats, err := h.source.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", h.source.Describe(), err)
	}

	var generation uint64 = 1
	if prev := h.current.Load(); prev != nil {
		generation = prev.Generation + 1
	}
	snap := &Snapshot{
		Table:      table,
		Generation: generation,
		Version:    version,
		Stats:      stats,
		LoadedAt:   nowFunc().UTC(),
	}
	h.current.Store(snap)

	logging.L().Info("dataset loaded",
		zap.String("source", h.source.Describe()),
		zap.Uint64("generation", generation),
		zap.Int("rows", stats.Rows),
		zap.Int("skipped", stats.Skipped),
	)

	for _, hook := range h.hooks {
		hook(*snap)
	}
	return *snap, nil
}
