package main

import (
	"fmt"
	"log"
	"os"

	"github.com/your-org/solar-storefront/internal/pkg/auth"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/generate_password.go <password>")
	}

	password := os.Args[1]
	passwords := auth.NewPasswordManager(12)

	hash, err := passwords.HashPassword(password)
	if err != nil {
		log.Fatal("Error generating hash: ", err)
	}

	if err := passwords.VerifyPassword(password, hash); err != nil {
		log.Fatal("Hash verification failed: ", err)
	}

	// Single quotes keep the $ segments of the hash intact in .env files
	fmt.Printf("ADMIN_PASSWORD_HASH='%s'\n", hash)
}
