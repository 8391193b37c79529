// Command admintoken prints a bearer token for the /api/admin routes.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/devayla/base-counter/common/config"
	"github.com/devayla/base-counter/services/counter-service/internal/handler"
)

func main() {
	subject := flag.String("sub", "ops", "token subject")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	configPath := flag.String("config", "../config", "config directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Auth.AdminJWTSecret == "" {
		log.Fatal("ADMIN_JWT_SECRET is not configured")
	}

	token, err := handler.IssueAdminToken(cfg.Auth.AdminJWTSecret, cfg.Auth.AdminIssuer, *subject, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
