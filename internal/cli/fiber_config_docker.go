//go:build docker

package cli

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/salesboard/internal/config"
)

// createFiberConfig returns Fiber configuration for Docker deployments.
// The proxy header is left unset; the container network has no trusted proxy.
func createFiberConfig(appName string, cfg *config.Config) fiber.Config {
	timeout := config.DefaultRequestTimeout
	if cfg != nil {
		timeout = cfg.RequestTimeout
	}
	return fiber.Config{
		AppName:      appName,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
}
