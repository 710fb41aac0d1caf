package utils

import (
	"crypto/rand"
	"os"
	"strconv"
	"strings"
	"time"
)

type AuthConfig struct {
	JWTSecret         string
	JWTIssuer         string
	JWTDuration       time.Duration
	AdminPasswordHash string

	// SecretGenerated is set when ROMHUB_JWT_SECRET was empty and a random
	// secret was made for this process. Tokens do not survive a restart.
	SecretGenerated bool
}

type ServerConfig struct {
	HTTPAddr     string
	GrpcAddr     string
	SyncAddr     string
	SettingsPath string
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("ROMHUB_JWT_SECRET")
	generated := false
	if secret == "" {
		secret = rand.Text()
		generated = true
	}

	issuer := os.Getenv("ROMHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "romhub"
	}

	return AuthConfig{
		JWTSecret:         secret,
		SecretGenerated:   generated,
		JWTIssuer:         issuer,
		JWTDuration:       parseHours(os.Getenv("ROMHUB_JWT_TTL_HOURS"), 24*time.Hour),
		AdminPasswordHash: os.Getenv("ROMHUB_ADMIN_PASSWORD_HASH"),
	}
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr:     envOr("ROMHUB_HTTP_ADDR", ":8080"),
		GrpcAddr:     envOr("ROMHUB_GRPC_ADDR", ":9090"),
		SyncAddr:     envOr("ROMHUB_SYNC_ADDR", ":7070"),
		SettingsPath: envOr("ROMHUB_SETTINGS_PATH", ".config/config.toml"),
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// parseHours falls back to def when raw is empty, not a number or not positive.
func parseHours(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Hour
}
