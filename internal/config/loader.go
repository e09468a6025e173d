package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the reservation service.
type Config struct {
	HTTPPort    int
	SQLiteDSN   string
	BusyTimeout time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// the values that are present.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:    8080,
		SQLiteDSN:   "file:reservations.db",
		BusyTimeout: 5 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("RESERVATIONS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "RESERVATIONS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("RESERVATIONS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("RESERVATIONS_BUSY_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "RESERVATIONS_BUSY_TIMEOUT")
		} else {
			cfg.BusyTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
