package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	fiberzap "github.com/gofiber/contrib/v3/zap"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seuros/salesboard/internal/cache"
	"github.com/seuros/salesboard/internal/config"
	"github.com/seuros/salesboard/internal/handlers"
	"github.com/seuros/salesboard/internal/logging"
	"github.com/seuros/salesboard/internal/query"
	"github.com/seuros/salesboard/internal/realtime"
	"github.com/seuros/salesboard/internal/store"
)

const shutdownTimeout = 10 * time.Second

var (
	servePort            string
	serveRefreshInterval string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Salesboard report server",
	Long: `Start the Salesboard report server.

The server loads the event log, serves every report under /api/<report>
and pushes a message on /api/stream each time the dataset is reloaded.

Environment variables:
  DATA_FILE         CSV event log (default: combined_data.csv)
  DATABASE_URL      PostgreSQL connection string
  SOURCE            csv or postgres
  PORT              Server port (default: 8000)
  REFRESH_INTERVAL  Change detection interval (default: 1m, 0 disables)

Send SIGHUP to force a reload.

Example:
  DATA_FILE=./combined_data.csv salesboard serve --port 8080`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort != "" {
		overrides.Port = servePort
	}
	if serveRefreshInterval != "" {
		overrides.RefreshInterval = serveRefreshInterval
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg)
}

// serve runs the server until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.L()

	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	holder := store.NewHolder(source)

	var opts []query.Option
	if cfg.CacheEntries > 0 {
		results := cache.New(cfg.CacheEntries)
		holder.OnReload(func(store.Snapshot) { results.Purge() })
		opts = append(opts, query.WithCache(results))
	}
	runner := query.NewRunner(holder, opts...)

	hub := realtime.NewHub()
	defer hub.Close()
	holder.OnReload(hub.PublishSnapshot)

	if _, err := holder.Reload(ctx); err != nil {
		// Reports stay empty until the refresher manages a load.
		logger.Error("initial dataset load failed", zap.Error(err))
	}

	refresher := store.NewRefresher(holder, cfg.RefreshInterval)
	refresher.Start()
	defer refresher.Stop()

	reload := func(reason string) {
		if _, err := holder.Reload(ctx); err != nil {
			logger.Error("dataset reload failed", zap.String("reason", reason), zap.Error(err))
		}
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				reload("sighup")
			}
		}
	}()

	if cfg.Source == config.SourcePostgres {
		err := realtime.StartListener(ctx, cfg.DatabaseURL, func(req realtime.ReloadRequest) {
			logger.Info("reload requested", zap.String("reason", req.Reason), zap.Int("rows", req.Rows))
			reload("notify")
		})
		if err != nil {
			logger.Warn("dataset listener unavailable", zap.Error(err))
		}
	}

	app := newApp(cfg, handlers.Deps{
		Runner:  runner,
		Holder:  holder,
		Hub:     hub,
		Version: Version,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("salesboard starting",
			zap.String("port", cfg.Port),
			zap.String("source", source.Describe()),
		)
		errCh <- app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// newApp builds the Fiber app with middleware and routes.
func newApp(cfg *config.Config, deps handlers.Deps) *fiber.App {
	app := fiber.New(createFiberConfig("Salesboard", cfg))

	app.Use(recover.New())
	app.Use(fiberzap.New(fiberzap.Config{Logger: logging.L()}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{fiber.MethodGet, fiber.MethodOptions},
	}))

	// Add version header to all responses
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Salesboard-Version", Version)
		return c.Next()
	})

	handlers.Register(app, deps)
	return app
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Server port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveRefreshInterval, "refresh-interval", "", "Change detection interval, e.g. 30s (0 disables)")
	RootCmd.AddCommand(serveCmd)
}
