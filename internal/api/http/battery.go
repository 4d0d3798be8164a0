package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/gridwatch/internal/battery"
)

func registerBatteryRoutes(app *fiber.App, batteries *battery.Service, log *zap.Logger) {
	app.Post("/battery", func(c *fiber.Ctx) error {
		level, err := bindSubmission(c)
		if err != nil {
			return err
		}

		saved, err := batteries.Save(c.UserContext(), level)
		if err != nil {
			log.Error("failed to store battery reading", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store battery reading")
		}

		return c.JSON(fiber.Map{
			"id":      saved.ID,
			"battery": saved.Battery,
		})
	})

	app.Post("/items", func(c *fiber.Ctx) error {
		level, err := bindSubmission(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": batteries.Report(level)})
	})
}

func bindSubmission(c *fiber.Ctx) (float64, error) {
	var req battery.Submission
	if err := c.BodyParser(&req); err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return *req.BatteryLevel, nil
}
