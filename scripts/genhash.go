// One-off: go run scripts/genhash.go [password]
// Prints the bcrypt hash of password at the configured SALT_BCRYPT cost.
package main

import (
	"fmt"
	"os"

	"TodoAPI/internal/config"
	"TodoAPI/internal/service"
)

func main() {
	password := "admin"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	h, err := service.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		panic(err)
	}
	fmt.Print(h)
}
