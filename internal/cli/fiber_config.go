//go:build !docker

package cli

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/salesboard/internal/config"
)

// createFiberConfig returns Fiber configuration. A nil cfg uses the
// default request timeout.
func createFiberConfig(appName string, cfg *config.Config) fiber.Config {
	timeout := config.DefaultRequestTimeout
	if cfg != nil {
		timeout = cfg.RequestTimeout
	}
	return fiber.Config{
		AppName:      appName,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		// Use X-Forwarded-For to get real client IP behind reverse proxy
		ProxyHeader: fiber.HeaderXForwardedFor,
	}
}
