package main

import (
	"flag"
	"fmt"
	"os"

	"innkeep/pkg/auth"
	"innkeep/pkg/config"
)

const JobName = "admintoken"

func main() {
	subject := flag.String("subject", "", "operator the token is issued to")
	role := flag.String("role", auth.RoleAdmin, "role claim (admin or system)")
	flag.Parse()

	cfg := config.Load(JobName)
	if *subject == "" {
		cfg.Log.Fatal("-subject is required")
	}
	if *role != auth.RoleAdmin && *role != auth.RoleSystem {
		cfg.Log.Fatal("Unsupported role", "role", *role)
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.AdminTokenTTL)
	if err != nil {
		cfg.Log.Fatal("Invalid JWT configuration", "error", err)
	}

	token, _, err := tokens.Issue(*subject, *role)
	if err != nil {
		cfg.Log.Fatal("Failed to issue token", "error", err)
	}

	fmt.Fprintln(os.Stdout, token)
}
