package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/pdf-extractor-api/handlers"
	extract_handlers "github.com/sahilchouksey/pdf-extractor-api/handlers/extract"
	"github.com/sahilchouksey/pdf-extractor-api/services"
	"github.com/sahilchouksey/pdf-extractor-api/utils/middleware"
	"github.com/sahilchouksey/pdf-extractor-api/utils/pdfvalidation"
	"github.com/sahilchouksey/pdf-extractor-api/utils/response"
)

// Dependencies are the collaborators the routes are built from
type Dependencies struct {
	Service        *services.ExtractionService
	Limits         pdfvalidation.PDFLimits
	AllowedOrigins string
	Health         map[string]handlers.Pinger
	DisableLogger  bool
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins: deps.AllowedOrigins,
		DisableLogger:  deps.DisableLogger,
	})

	extractHandler := extract_handlers.NewExtractHandler(deps.Service, deps.Limits)
	healthHandler := handlers.NewHealthHandler(deps.Health)

	// Health check endpoint (public)
	app.Get("/ping", healthHandler.HandleCheckHealth)

	// Extraction endpoints
	app.Post("/extract", extractHandler.Extract)
	app.Post("/convert-to-excel", extractHandler.ConvertToExcel)

	app.Use(func(c *fiber.Ctx) error {
		return response.NotFound(c, "Route not found")
	})
}
