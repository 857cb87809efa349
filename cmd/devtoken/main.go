// Command devtoken mints a bearer token accepted by the jwt verifier, for
// local testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"findlost/internal/auth"
	"findlost/internal/config"
)

func main() {
	subject := flag.String("sub", "", "Subject (user ID) of the token")
	email := flag.String("email", "", "Verified email of the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *subject == "" || *email == "" {
		log.Fatal("both -sub and -email are required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.AuthMode != config.AuthModeJWT {
		log.Fatalf("AUTH_MODE is %q; dev tokens only work with jwt", cfg.AuthMode)
	}
	if cfg.IsProduction() {
		log.Fatal("refusing to mint tokens in production")
	}

	token, err := auth.IssueToken(auth.JWTOptions{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}, *subject, *email, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
