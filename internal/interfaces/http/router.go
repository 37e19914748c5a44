package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/application/reports"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthService    *auth.Service
	Reports        *reports.UseCase
	CredentialRate *RateLimiter
	JWTSecret      string
	Log            zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	limit := func(c *fiber.Ctx) error { return c.Next() }
	if deps.CredentialRate != nil {
		limit = deps.CredentialRate.Handler()
	}

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthService, deps.Log)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", limit, authHandler.Login)
	authGroup.Post("/provider", authHandler.Provider)
	authGroup.Post("/provider/callback", authHandler.ProviderCallback)
	authGroup.Post("/session", authHandler.ResolveSession)
	authGroup.Post("/register", limit, authHandler.Register)
	authGroup.Post("/register/provider", authHandler.RegisterWithProvider)
	authGroup.Post("/password-reset", limit, authHandler.PasswordReset)

	// Rutas protegidas (requieren Bearer Token). Una sesión bloqueada solo puede consultar
	// su estado y cerrar sesión.
	withSession := SessionMiddleware(deps.JWTSecret, deps.AuthService, deps.Log)
	active := func(h ...fiber.Handler) []fiber.Handler {
		return append([]fiber.Handler{withSession, RejectBlocked()}, h...)
	}

	sessionHandler := NewSessionHandler(deps.AuthService, deps.Log)
	api.Get("/session", withSession, sessionHandler.Current)
	api.Post("/session/logout", withSession, sessionHandler.Logout)
	api.Post("/session/verify-email", active(sessionHandler.VerifyEmail)...)
	api.Delete("/session/expiry-notice", active(sessionHandler.DismissExpiryNotice)...)

	api.Post("/subscription/upgrade", active(sessionHandler.Upgrade)...)
	api.Post("/subscription/check", active(sessionHandler.CheckSubscription)...)

	companyHandler := NewCompanyHandler(deps.AuthService)
	api.Patch("/company/settings", active(
		RequirePermission(entity.PermSettings), companyHandler.UpdateSettings)...)

	if deps.Reports != nil {
		reportHandler := NewReportHandler(deps.Reports)
		api.Get("/reports/overview", active(
			RequirePermission(entity.PermReports), reportHandler.Overview)...)
		api.Get("/reports/export.pdf", active(
			RequirePermission(entity.PermReports), reportHandler.ExportPDF)...)
	}
}
