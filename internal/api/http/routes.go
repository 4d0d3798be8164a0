package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/gridwatch/internal/battery"
	"github.com/i474232898/gridwatch/internal/grid"
)

var validate = validator.New()

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, grids *grid.Service, batteries *battery.Service, db Pinger, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		database := "ok"
		if db != nil {
			if err := db.Ping(c.UserContext()); err != nil {
				log.Warn("database ping failed", zap.Error(err))
				database = "unavailable"
			}
		}
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  serviceName,
			"database": database,
		})
	})

	app.Get("/eia-data", func(c *fiber.Ctx) error {
		res, err := grids.Ingest(c.UserContext())
		if err != nil {
			var upstreamErr *grid.UpstreamError
			switch {
			case errors.As(err, &upstreamErr):
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
					"error":  upstreamErr.Message(),
					"status": upstreamErr.Status,
				})
			case errors.Is(err, grid.ErrMissingAPIKey):
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "failed to ingest grid data")
			}
		}

		return c.JSON(fiber.Map{
			"inserted": res.Inserted,
			"fetched":  res.Fetched,
			"skipped":  res.Skipped,
		})
	})

	app.Get("/current-grid", func(c *fiber.Ctx) error {
		status, err := grids.Current(c.UserContext())
		if err != nil {
			if errors.Is(err, grid.ErrNoData) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no data"})
			}
			log.Error("failed to load current grid status", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch grid status")
		}
		return c.JSON(status)
	})

	app.Get("/grid-history", func(c *fiber.Ctx) error {
		points, err := grids.History(c.UserContext())
		if err != nil {
			log.Error("failed to load grid history", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch grid history")
		}
		return c.JSON(points)
	})

	registerBatteryRoutes(app, batteries, log)
}
