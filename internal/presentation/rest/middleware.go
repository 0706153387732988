package rest

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/application/ratelimit"
	"github.com/sitehatch/sitehatch-backend/internal/infra/auth"
	"github.com/sitehatch/sitehatch-backend/internal/infra/config"
)

const identityKey = "identity"

// respondError maps the error taxonomy onto HTTP statuses. Upstream detail is
// logged here and never echoed to the caller.
func respondError(c *fiber.Ctx, err error) error {
	var invalid errs.InvalidInputError
	var notFound errs.NotFoundError
	var unauthorized errs.UnauthorizedError
	var rateLimited errs.RateLimitedError
	var precondition errs.PreconditionError
	var upstream errs.UpstreamError

	switch {
	case errors.As(err, &invalid):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: invalid.Error()})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: notFound.Error()})
	case errors.As(err, &unauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	case errors.As(err, &rateLimited):
		c.Set("Retry-After", strconv.Itoa(rateLimited.RetryAfterSeconds))
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Error: rateLimited.Error()})
	case errors.As(err, &precondition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: precondition.Error()})
	case errors.As(err, &upstream):
		slog.Error("upstream failure", "collaborator", upstream.Collaborator, "err", upstream.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "a collaborating service failed, try again later"})
	default:
		slog.Error("unhandled error", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
}

// RateLimit counts requests per client address for one purpose and rejects
// with Retry-After once the window is exhausted.
func RateLimit(limiter *ratelimit.Limiter, cfg ratelimit.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result := limiter.Check(c.IP(), cfg)
		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			return respondError(c, errs.RateLimitedError{RetryAfterSeconds: result.ResetInSeconds})
		}
		return c.Next()
	}
}

// AdminAuth gates the operator surface. Without a configured secret every
// request is rejected.
func AdminAuth(cfg *config.AppConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminSecret == "" {
			slog.Warn("admin request rejected, no admin secret configured")
			return respondError(c, errs.UnauthorizedError{})
		}
		provided := c.Get("X-Admin-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.AdminSecret)) != 1 {
			return respondError(c, errs.UnauthorizedError{})
		}
		return c.Next()
	}
}

// BearerAuth resolves the session token into an identity for owner-checked
// routes.
func BearerAuth(provider *auth.IdentityProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return respondError(c, errs.UnauthorizedError{})
		}
		identity, err := provider.GetIdentity(token)
		if err != nil {
			return respondError(c, errs.UnauthorizedError{})
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

func identityFrom(c *fiber.Ctx) *auth.Identity {
	identity, _ := c.Locals(identityKey).(*auth.Identity)
	return identity
}

// DebugGate hides development-only routes in every other environment.
func DebugGate(cfg *config.AppConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.DebugEnabled() {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.Next()
	}
}

// request windows for the public mutation endpoints
var (
	submitLimit   = ratelimit.Config{MaxRequests: 10, Window: time.Hour, Purpose: "submit"}
	generateLimit = ratelimit.Config{MaxRequests: 5, Window: time.Hour, Purpose: "generate"}
	paymentLimit  = ratelimit.Config{MaxRequests: 20, Window: time.Hour, Purpose: "payment"}
)
