package routes

import (
	"net/http"
	"time"

	"github.com/stockpile-hq/stockpile/internal/app"
	"github.com/stockpile-hq/stockpile/internal/handler"
	"github.com/stockpile-hq/stockpile/internal/metrics"
	"github.com/stockpile-hq/stockpile/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg.IsProduction(), app.Cfg.JWTExpiry)
	attributes := handler.NewAttributeHandler(app.AttributeService, app.FileService, app.Cfg.MaxUploadSize)
	assets := handler.NewAssetHandler(app.AssetService, app.ReportService, app.FileService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)
	if app.Cfg.MetricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	// Auth (rate limited)
	rateLimit := middleware.RateLimit(middleware.NewRateLimiter(10, 15*time.Minute))

	mux.HandleFunc("POST /api/auth/register", rateLimit(auth.Register))
	mux.HandleFunc("POST /api/auth/login", rateLimit(auth.Login))

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// Attributes
	mux.HandleFunc("GET /api/attribute-types", middleware.RequireAuth(attributes.Types))
	mux.HandleFunc("GET /api/attributes", middleware.RequireAuth(attributes.List))
	mux.HandleFunc("POST /api/attributes", middleware.RequireAuth(attributes.Create))
	mux.HandleFunc("GET /api/attributes/{id}", middleware.RequireAuth(attributes.Show))
	mux.HandleFunc("PATCH /api/attributes/{id}", middleware.RequireAuth(attributes.Update))
	mux.HandleFunc("DELETE /api/attributes/{id}", middleware.RequireAuth(attributes.Delete))
	mux.HandleFunc("POST /api/attributes/{id}/values", middleware.RequireAuth(attributes.CreateValue))
	mux.HandleFunc("POST /api/attributes/{id}/files", middleware.RequireAuth(attributes.UploadFile))

	// Assets
	mux.HandleFunc("GET /api/assets", middleware.RequireAuth(assets.List))
	mux.HandleFunc("POST /api/assets", middleware.RequireAuth(assets.Create))
	mux.HandleFunc("GET /api/assets/{id}", middleware.RequireAuth(assets.Show))
	mux.HandleFunc("PATCH /api/assets/{id}", middleware.RequireAuth(assets.Update))
	mux.HandleFunc("DELETE /api/assets/{id}", middleware.RequireAuth(assets.Delete))
	mux.HandleFunc("POST /api/assets/{id}/instances", middleware.RequireAuth(assets.CreateInstance))
	mux.HandleFunc("POST /api/assets/{id}/attributes", middleware.RequireAuth(assets.AttachAttribute))
	mux.HandleFunc("GET /api/assets/{id}/report", middleware.RequireAuth(assets.Report))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
		middleware.Metrics, // must wrap the mux directly to see the route pattern
	)

	return handler
}
