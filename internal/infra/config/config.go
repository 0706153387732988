package config

import (
	"os"
	"strconv"

	"github.com/sitehatch/sitehatch-backend/pkg/env"
)

// AppConfig carries the environment-derived settings of the public surface.
// AdminSecret has no default on purpose: an unset secret means the admin
// surface fails closed.
type AppConfig struct {
	BaseURL              string
	AdminSecret          string
	SalesEmail           string
	Environment          string
	JWTSecret            string
	SessionLifetimeHours int
	PriceCents           int64
	Currency             string
}

func NewAppConfig() *AppConfig {
	lifetime, err := strconv.Atoi(env.GetEnv("SESSION_LIFETIME_HOURS", "72"))
	if err != nil {
		lifetime = 72
	}
	price, err := strconv.ParseInt(env.GetEnv("SITE_PRICE_CENTS", "19900"), 10, 64)
	if err != nil {
		price = 19900
	}
	return &AppConfig{
		BaseURL:              env.GetEnv("BASE_URL", "http://localhost:8080"),
		AdminSecret:          os.Getenv("ADMIN_SECRET"),
		SalesEmail:           env.GetEnv("SALES_EMAIL", "sales@sitehatch.io"),
		Environment:          env.GetEnv("APP_ENV", "production"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		SessionLifetimeHours: lifetime,
		PriceCents:           price,
		Currency:             env.GetEnv("SITE_PRICE_CURRENCY", "usd"),
	}
}

func (c *AppConfig) DebugEnabled() bool {
	return c.Environment == "development"
}
