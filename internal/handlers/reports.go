package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seuros/salesboard/internal/export"
	"github.com/seuros/salesboard/internal/logging"
	"github.com/seuros/salesboard/internal/query"
)

// Runner evaluates a named report.
type Runner interface {
	Run(ctx context.Context, name string, f query.Filter) (any, error)
}

// HandleReport serves one registered report.
// GET /api/:report?start_date=&end_date=&country=&product=&format=
func HandleReport(runner Runner) fiber.Handler {
	return func(c fiber.Ctx) error {
		name := c.Params("report")
		report, err := query.Lookup(name)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown report: " + name})
		}

		format := export.FormatJSON
		if raw := c.Query("format"); raw != "" {
			format, err = export.ParseFormat(raw)
			if err != nil || format == export.FormatTable {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported format: " + raw})
			}
		}

		f, err := parseFilter(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		result, err := runner.Run(c.Context(), name, f)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Request cancelled"})
			}
			logging.L().Error("report request failed", zap.String("report", name), zap.Error(err))
			result = report.Empty()
		}

		switch format {
		case export.FormatCSV:
			return sendExport(c, name, "csv", "text/csv; charset=utf-8", export.WriteCSV, result)
		case export.FormatYAML:
			return sendExport(c, name, "yaml", "application/yaml; charset=utf-8", export.WriteYAML, result)
		default:
			return c.JSON(result)
		}
	}
}

func sendExport(c fiber.Ctx, name, ext, contentType string, write func(io.Writer, any) error, result any) error {
	var buf bytes.Buffer
	if err := write(&buf, result); err != nil {
		logging.L().Error("export failed", zap.String("report", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export " + name})
	}
	c.Attachment(fmt.Sprintf("%s_%s.%s", name, uuid.NewString(), ext))
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(buf.Bytes())
}

// HandleReports lists the registered reports.
func HandleReports(c fiber.Ctx) error {
	return c.JSON(query.Reports())
}
