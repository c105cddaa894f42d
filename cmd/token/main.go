// Command token mints an access token for local development and smoke tests.
//
//	go run ./cmd/token -employee emp-1 -role manager
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/config"
	"github.com/cmlabs-hris/worktime-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/jwt"
)

func main() {
	employeeID := flag.String("employee", "", "employee ID carried in the employee_id claim")
	role := flag.String("role", string(user.RoleEmployee), "owner, manager or employee")
	flag.Parse()

	if err := mint(*employeeID, user.Role(*role)); err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
}

func mint(employeeID string, role user.Role) error {
	if employeeID == "" {
		return fmt.Errorf("-employee is required")
	}
	if !role.IsValid() {
		return user.ErrInvalidRole
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	service, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return err
	}

	token, expiresAt, err := service.GenerateAccessToken(employeeID, role)
	if err != nil {
		return err
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
	return nil
}
