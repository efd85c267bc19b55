package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/salesboard/internal/realtime"
	"github.com/seuros/salesboard/internal/store"
)

// Deps are the collaborators the HTTP routes need. Hub is optional.
type Deps struct {
	Runner  Runner
	Holder  *store.Holder
	Hub     *realtime.Hub
	Version string
}

// Register mounts every route on app.
func Register(app *fiber.App, d Deps) {
	app.Get("/health", HandleHealth)
	app.Get("/up", HandleUp(d.Holder))

	app.Get("/api/version", HandleVersion(d.Version))
	app.Get("/api/reports", HandleReports)
	app.Get("/api/dataset", HandleDataset(d.Holder))
	app.Get("/api/country/:code", HandleCountry)
	if d.Hub != nil {
		app.Get("/api/stream", d.Hub.Handler())
	}

	// Must stay last: it matches every other /api/<name>.
	app.Get("/api/:report", HandleReport(d.Runner))
}
