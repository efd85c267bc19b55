package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/salesboard/internal/store"
)

// HandleHealth reports liveness.
func HandleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "salesboard",
	})
}

// HandleUp returns 200 once a dataset has been loaded.
func HandleUp(holder *store.Holder) fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, err := holder.Snapshot(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("dataset unavailable")
		}
		return c.SendStatus(fiber.StatusOK)
	}
}

// HandleVersion reports the build version.
func HandleVersion(version string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"version": version})
	}
}

// HandleDataset describes the snapshot reports are currently served from.
func HandleDataset(holder *store.Holder) fiber.Handler {
	return func(c fiber.Ctx) error {
		snap, err := holder.Snapshot()
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"source":     holder.Source().Describe(),
			"generation": snap.Generation,
			"version":    snap.Version,
			"stats":      snap.Stats,
			"loaded_at":  snap.LoadedAt,
		})
	}
}
