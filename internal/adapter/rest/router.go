package rest

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the fiber app with every route mounted under /api/v1
func NewApp(h *Handler, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "transferflow",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := messageUnexpected
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
				message = fe.Message
			}
			return c.Status(code).JSON(APIResponse{Success: false, Message: message})
		},
	})

	app.Use(recover.New())
	app.Use(requestLogger(logger))

	api := app.Group("/api/v1")
	api.Get("/health", h.Health)
	api.Post("/transfer", h.Transfer)
	api.Get("/transactions", h.ListTransactions)
	api.Get("/summary", h.Summary)

	return app
}

func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()

		logger.InfoContext(c.UserContext(), "HTTP request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("elapsed", time.Since(started)))

		return err
	}
}
