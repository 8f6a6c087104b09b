// Command stafftoken mints a bearer token for the front desk API using the
// JWT_SECRET the reservations service is configured with.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/diagnosis/guestroom-reservations/pkg/auth"
	"github.com/diagnosis/guestroom-reservations/pkg/config"
	"github.com/diagnosis/guestroom-reservations/pkg/logger"
)

func main() {
	var (
		sub   = flag.Int64("sub", 1, "staff member id")
		email = flag.String("email", "", "staff member email")
		role  = flag.String("role", auth.RoleStaff, "staff or manager")
		ttl   = flag.Duration("ttl", 12*time.Hour, "token lifetime")
	)
	flag.Parse()

	if *role != auth.RoleStaff && *role != auth.RoleManager {
		logger.Error("Unknown role", "role", *role)
		os.Exit(2)
	}

	cfg := config.Load()
	token, err := auth.NewAccessToken(*sub, *email, *role, cfg.Auth.JWTSecret, *ttl)
	if err != nil {
		logger.Error("Failed to sign token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
