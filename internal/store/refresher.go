package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/seuros/salesboard/internal/logging"
)

var nowFunc = time.Now

// Refresher polls the source and reloads the holder when it changes.
type Refresher struct {
	holder   *Holder
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
}

// NewRefresher creates a refresher. A non-positive interval disables polling.
func NewRefresher(holder *Holder, interval time.Duration) *Refresher {
	return &Refresher{
		holder:   holder,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins polling in the background.
func (r *Refresher) Start() {
	if r.interval <= 0 || !r.started.CompareAndSwap(false, true) {
		return
	}
	logging.L().Info("starting dataset refresher", zap.Duration("interval", r.interval))
	go r.schedule()
}

// Stop halts polling and waits for the loop to exit.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
	if r.started.Load() {
		<-r.done
	}
}

func (r *Refresher) schedule() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.refresh()
		case <-r.stopChan:
			return
		}
	}
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()

	changed, err := r.holder.Refresh(ctx)
	if err != nil {
		logging.L().Warn("dataset refresh failed", zap.Error(err))
		return
	}
	if changed {
		logging.L().Info("dataset changed, reloaded")
	}
}
