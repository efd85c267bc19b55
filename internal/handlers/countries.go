package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/salesboard/internal/countries"
)

// HandleCountry resolves a country code, alpha-3 code or name.
// GET /api/country/:code
func HandleCountry(c fiber.Ctx) error {
	code := countries.Normalize(c.Params("code"))
	if _, err := countries.Alpha3(code); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown country: " + c.Params("code")})
	}
	return c.JSON(countries.Describe(code))
}
