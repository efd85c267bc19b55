package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/salesboard/internal/query"
)

// parseFilter builds a query filter from the request. The country
// parameter may be repeated; codes, alpha-3 and names are all accepted.
func parseFilter(c fiber.Ctx) (query.Filter, error) {
	raw := c.Request().URI().QueryArgs().PeekMulti("country")
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		values = append(values, string(v))
	}
	return query.ParseFilter(c.Query("start_date"), c.Query("end_date"), values, c.Query("product"))
}
