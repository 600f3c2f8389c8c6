// Command token signs an actor token for local testing against the API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go-leave/internal/config"
	"go-leave/internal/middleware"

	"github.com/google/uuid"
)

func main() {
	userID := flag.String("user", "", "actor id (uuid)")
	role := flag.String("role", "employee", "employee, manager, assistant or admin")
	department := flag.String("department", "", "department id (uuid)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if _, err := uuid.Parse(*userID); err != nil {
		fmt.Fprintln(os.Stderr, "invalid -user:", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := middleware.SignActorToken(cfg.JWTSecret, *userID, *role, *department, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
