package query

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/seuros/salesboard/internal/cache"
	"github.com/seuros/salesboard/internal/events"
	"github.com/seuros/salesboard/internal/logging"
)

// Snapshotter hands out the current table together with its generation.
type Snapshotter interface {
	Current() (*events.Table, uint64)
}

// Runner evaluates registered reports against the current snapshot.
type Runner struct {
	source Snapshotter
	cache  *cache.Cache
	logger *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithCache memoises results per generation, report and filter.
func WithCache(c *cache.Cache) Option {
	return func(r *Runner) { r.cache = c }
}

// WithLogger overrides the process logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner builds a Runner reading from source.
func NewRunner(source Snapshotter, opts ...Option) *Runner {
	r := &Runner{source: source}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.L()
	}
	return r
}

// Run evaluates the named report. Only an unknown name or a cancelled
// context produce an error; a report that fails internally yields its
// empty value.
func (r *Runner) Run(ctx context.Context, name string, f Filter) (any, error) {
	report, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, generation := r.source.Current()
	compute := func() any { return r.safeRun(report, table, f) }
	if r.cache == nil {
		return compute(), nil
	}
	return r.cache.Do(CacheKey(generation, name, f), compute), nil
}

// CacheKey is the canonical cache address of one report evaluation.
func CacheKey(generation uint64, name string, f Filter) string {
	return strconv.FormatUint(generation, 10) + "|" + name + "|" + f.Key()
}

func (r *Runner) safeRun(report Report, table *events.Table, f Filter) (out any) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("report failed",
				zap.String("report", report.Name),
				zap.String("filter", f.Key()),
				zap.Error(fmt.Errorf("panic: %v", rec)),
			)
			out = report.Empty()
		}
	}()
	return report.Run(table, f)
}
