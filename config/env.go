package config

import (
	"os"
	"strings"
	"time"
)

type Env struct {
	AppAddr string
	GinMode string

	JWTSecret string

	GatewayBaseURL     string
	GatewaySecretKey   string
	GatewayCallbackURL string
	GatewayTimeout     time.Duration
	Currency           string

	SchedulerEnabled bool
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		port := strings.TrimSpace(os.Getenv("PORT"))
		if port == "" {
			port = "8080"
		}
		appAddr = ":" + port
	}

	timeout := 15 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GATEWAY_TIMEOUT")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	return Env{
		AppAddr:            appAddr,
		GinMode:            strings.TrimSpace(os.Getenv("GIN_MODE")),
		JWTSecret:          envOrDefault("JWT_SECRET", "dev-secret-change-me"),
		GatewayBaseURL:     envOrDefault("GATEWAY_BASE_URL", "https://api.paystack.co"),
		GatewaySecretKey:   strings.TrimSpace(os.Getenv("GATEWAY_SECRET_KEY")),
		GatewayCallbackURL: strings.TrimSpace(os.Getenv("GATEWAY_CALLBACK_URL")),
		GatewayTimeout:     timeout,
		Currency:           envOrDefault("GATEWAY_CURRENCY", "NGN"),
		SchedulerEnabled:   !strings.EqualFold(strings.TrimSpace(os.Getenv("SCHEDULER_ENABLED")), "false"),
	}
}
