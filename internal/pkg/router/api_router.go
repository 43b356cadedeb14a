package router

import (
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/aifoundry/foundry/app/controllers"
	"github.com/aifoundry/foundry/internal/pkg/cache"
	"github.com/aifoundry/foundry/internal/pkg/env"
	"github.com/aifoundry/foundry/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", cors.New(), limiter.New(limiter.Config{
		Storage: newLimiterStorage(),
	}))

	keys := api.Group("/keys", middleware.JWTAuthMiddleware())
	keys.Get("/", controllers.HandleAPIKeyList)
	keys.Post("/", controllers.HandleAPIKeyCreate)
	keys.Delete("/:id", controllers.HandleAPIKeyRevoke)

	webhooks := api.Group("/webhooks", middleware.JWTAuthMiddleware())
	webhooks.Get("/", controllers.HandleWebhookList)
	webhooks.Post("/", controllers.HandleWebhookCreate)
	webhooks.Delete("/:id", controllers.HandleWebhookDelete)
	webhooks.Get("/:id/events", controllers.HandleWebhookEvents)

	// Module endpoints take either a Bearer JWT or an organization API key.
	antifraud := api.Group("/antifraud", middleware.APIOrJWTAuthMiddleware())
	antifraud.Post("/transactions/submit", controllers.HandleTransactionSubmit)

	bankcall := api.Group("/bankcall", middleware.APIOrJWTAuthMiddleware())
	bankcall.Post("/calls/initiate", controllers.HandleCallInitiate)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

// newLimiterStorage backs the rate limiter with Redis so limits hold across
// instances. Configuration is derived from the existing cache client.
func newLimiterStorage() fiber.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if client := cache.GetClient(); client != nil {
		addr := client.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := client.Options().Password; p != "" {
			password = p
		}
	}

	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1, // Separate database for limiter state (cache uses DB 0)
		Reset:    false,
	})
}
