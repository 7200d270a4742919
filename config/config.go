package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func LoadEnv() error {
	// Try to load .env file if it exists (for local development).
	// In production, environment variables are set directly.
	err := godotenv.Load()
	if err != nil {
		// .env file not found is not an error - environment variables
		// are already available in os.Getenv().
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string

	// Critical variables - the gateway cannot function without these
	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if os.Getenv("UPSTREAM_API_URL") == "" {
		missing = append(missing, "UPSTREAM_API_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	// Non-critical variables - log warnings but don't fail
	if os.Getenv("ADMIN_URL") == "" {
		log.Println("WARNING: ADMIN_URL not set - CORS may not work correctly")
	}
	if os.Getenv("ADMIN_EMAIL") == "" {
		log.Println("WARNING: ADMIN_EMAIL not set - default admin will use built-in address")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
