// Command token mints a bearer token for local testing against a server that
// has JWT_SECRET set.
//
//	go run ./cmd/token --user alice
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/mmynk/groupledger/internal/auth"
	"github.com/mmynk/groupledger/internal/config"
	"github.com/mmynk/groupledger/pkg/logging"
)

func main() {
	userID := pflag.StringP("user", "u", "", "user id to put in the token (required)")
	ttl := pflag.Duration("ttl", 0, "token lifetime (defaults to JWT_TTL)")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	if *userID == "" {
		pflag.Usage()
		os.Exit(2)
	}
	if !cfg.AuthEnabled() {
		slog.Error("JWT_SECRET is not set; the server accepts X-User-ID instead of tokens")
		os.Exit(1)
	}

	lifetime := cfg.JWTTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, lifetime).Generate(*userID)
	if err != nil {
		slog.Error("Failed to generate token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
