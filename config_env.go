package diary

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ConfigFromEnv builds a StaticConfig from environment variables, loading a
// .env file first when one exists. Unset values fall back to the defaults.
func ConfigFromEnv() StaticConfig {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if v := os.Getenv("DIARY_SIGNING_KEY"); v != "" {
		cfg.SigningKey = v
	}
	if v := os.Getenv("DIARY_SIGNING_METHOD"); v != "" {
		cfg.SigningMethod = v
	}
	if v := envInt("DIARY_ACCESS_TOKEN_MINUTES"); v > 0 {
		cfg.AccessTokenMinutes = v
	}
	if v := envInt("DIARY_REFRESH_TOKEN_DAYS"); v > 0 {
		cfg.RefreshTokenDays = v
	}
	if v := os.Getenv("DIARY_ISSUER"); v != "" {
		cfg.Issuer = v
	}
	if v := os.Getenv("DIARY_COOKIE_DOMAIN"); v != "" {
		cfg.CookieDomain = v
	}
	if v, err := strconv.ParseBool(os.Getenv("DIARY_COOKIE_SECURE")); err == nil {
		cfg.CookieSecure = v
	}

	return cfg
}

// EnvOrDefault returns the named variable or a fallback.
func EnvOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string) int {
	v, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return 0
	}
	return v
}
