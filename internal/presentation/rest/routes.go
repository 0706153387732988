package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sitehatch/sitehatch-backend/internal/application/ratelimit"
	"github.com/sitehatch/sitehatch-backend/internal/infra/auth"
	"github.com/sitehatch/sitehatch-backend/internal/infra/config"
)

// RegisterHandlers wires every route, with rate limiting on the expensive
// public mutations and auth on the owner, admin and debug surfaces.
func RegisterHandlers(
	app *fiber.App, s *Server, cfg *config.AppConfig,
	limiter *ratelimit.Limiter, identity *auth.IdentityProvider,
) {
	app.Post("/submissions", RateLimit(limiter, submitLimit), s.CreateSubmission)
	app.Post("/generate", RateLimit(limiter, generateLimit), s.Generate)
	app.Get("/status/:id", s.GetStatus)
	app.Get("/preview/:id", s.GetPreview)

	app.Post("/auth/login", s.Login)
	app.Post("/publish", BearerAuth(identity), s.Publish)

	paymentGroup := app.Group("/payment")
	paymentGroup.Post("/checkout", RateLimit(limiter, paymentLimit), BearerAuth(identity), s.CreateCheckout)
	paymentGroup.Post("/verify", RateLimit(limiter, paymentLimit), s.VerifyPayment)
	// signature-verified, so never rate limited
	paymentGroup.Post("/webhook", s.PaymentWebhook)

	adminGroup := app.Group("/admin", AdminAuth(cfg))
	adminGroup.Get("/websites", s.ListWebsites)
	adminGroup.Post("/websites/:id/approve", s.ApproveWebsite)
	adminGroup.Post("/submissions/:id/reset", s.ResetSubmission)
	adminGroup.Get("/stats", s.AdminStats)

	debugGroup := app.Group("/debug", DebugGate(cfg))
	debugGroup.Get("/credentials", s.DebugCredentials)
	debugGroup.Post("/reset-password", s.DebugResetPassword)
}
