package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aifoundry/foundry/app/controllers"
	"github.com/aifoundry/foundry/internal/pkg/middleware"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to Foundry Platform API"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	auth := app.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Get("/me", middleware.JWTAuthMiddleware(), controllers.HandleMe)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
