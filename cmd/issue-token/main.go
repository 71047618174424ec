// Command issue-token mints a staff token for an allow-listed email.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spec-kit/status-portal/internal/auth"
	"github.com/spec-kit/status-portal/internal/config"
)

func main() {
	email := flag.String("email", "", "staff email (must be in AUTH_ALLOWED_EMAILS)")
	name := flag.String("name", "", "display name used as responder")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Auth.Enabled() {
		fmt.Fprintln(os.Stderr, "AUTH_JWT_SECRET is not set; staff routes are open")
		os.Exit(1)
	}
	if !auth.NewAllowList(cfg.Auth.AllowedEmails).Contains(*email) {
		fmt.Fprintf(os.Stderr, "%q is not in AUTH_ALLOWED_EMAILS\n", *email)
		os.Exit(1)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	token, expiresAt, err := tokens.GenerateToken(*email, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
}
