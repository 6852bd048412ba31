package bootstrap

import (
	"carbon-exchange/internal/config"
	"carbon-exchange/internal/interfaces/router"
	"carbon-exchange/internal/pkg/logging"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for Vercel serverless (api handler imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel, true)
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
