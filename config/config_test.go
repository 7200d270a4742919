package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "test-db-url")
	t.Setenv("UPSTREAM_API_URL", "http://localhost:4000")
}

func TestLoadEnv(t *testing.T) {
	// LoadEnv returns nil when no .env file exists
	err := LoadEnv()
	if err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidateEnvAllSet(t *testing.T) {
	setRequiredEnv(t)

	err := ValidateEnv()
	if err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidateEnvMissingJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("JWT_SECRET")

	err := ValidateEnv()
	if err == nil {
		t.Error("expected error for missing JWT_SECRET")
	}
}

func TestValidateEnvMissingDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("DATABASE_URL")

	err := ValidateEnv()
	if err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestValidateEnvMissingUpstreamURL(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("UPSTREAM_API_URL")

	err := ValidateEnv()
	if err == nil {
		t.Error("expected error for missing UPSTREAM_API_URL")
	}
}

func TestValidateEnvMissingAll(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("UPSTREAM_API_URL")

	err := ValidateEnv()
	if err == nil {
		t.Error("expected error for missing variables")
	}
}

func TestGetEnvExisting(t *testing.T) {
	t.Setenv("TEST_GET_ENV_KEY", "test-value")

	result := GetEnv("TEST_GET_ENV_KEY", "default")
	if result != "test-value" {
		t.Errorf("expected 'test-value', got '%s'", result)
	}
}

func TestGetEnvMissing(t *testing.T) {
	os.Unsetenv("TEST_GET_ENV_MISSING")
	result := GetEnv("TEST_GET_ENV_MISSING", "fallback")
	if result != "fallback" {
		t.Errorf("expected 'fallback', got '%s'", result)
	}
}
