package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/order-allocation/internal/application/allocation"
	"github.com/jhoicas/order-allocation/internal/application/analytics"
	"github.com/jhoicas/order-allocation/pkg/config"
	"github.com/jhoicas/order-allocation/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AllocateUC     *allocation.AllocateOrderUseCase
	ReportUC       *analytics.CenterReportUseCase
	Auth           config.AuthConfig
	RequestTimeout time.Duration
	ServiceName    string
	DocsFile       string // swagger.json servido en /docs; vacío o inexistente lo deshabilita
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Swagger UI: http://localhost:<port>/docs
	if deps.DocsFile != "" {
		if _, err := os.Stat(deps.DocsFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.DocsFile,
				Path:     "docs",
				Title:    deps.ServiceName + " API",
			}))
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	// Todas las rutas /api requieren Api-Key o Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.Auth))

	allocationHandler := NewAllocationHandler(deps.AllocateUC, deps.RequestTimeout)
	api.Post("/allocate", RequireScope(jwt.ScopeOrdersWrite), allocationHandler.Allocate)
	api.Get("/orders/:order_id", RequireScope(jwt.ScopeOrdersRead), allocationHandler.GetOrder)

	analyticsHandler := NewAnalyticsHandler(deps.ReportUC, deps.RequestTimeout)
	api.Get("/analytics", RequireScope(jwt.ScopeAnalyticsRead), analyticsHandler.Centers)
}
