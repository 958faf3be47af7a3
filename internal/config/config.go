package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  The types reflect how the values are used
// in the application: strings for identifiers and secrets, durations for
// the hold lifecycle tunables.
type Config struct {
    Env           string        // application environment (e.g. "dev", "prod")
    Port          string        // HTTP port to listen on
    DBUser        string        // database username
    DBPass        string        // database password (optional)
    DBHost        string        // database host address
    DBPort        string        // database port number
    DBName        string        // database name
    JWTSecret     string        // secret used to verify access tokens on checkout
    HoldTTL       time.Duration // how long a seat hold survives without a refresh
    SweepInterval time.Duration // how often the expiry sweeper runs
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The hold TTL and
// sweep interval are independent tunables: shortening the interval
// tightens the eviction bound without changing how long holds live.
func Load() Config {
    return Config{
        Env:           must("APP_ENV"),
        Port:          must("APP_PORT"),
        DBUser:        must("DB_USER"),
        DBPass:        os.Getenv("DB_PASS"), // empty allowed
        DBHost:        must("DB_HOST"),
        DBPort:        must("DB_PORT"),
        DBName:        must("DB_NAME"),
        JWTSecret:     must("JWT_SECRET"),
        HoldTTL:       envDur("SEAT_HOLD_TTL", 2*time.Minute),
        SweepInterval: envDur("SEAT_HOLD_SWEEP_INTERVAL", 30*time.Second),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
// Shared env helpers (envStr, envBool, envInt, envDur) live in ratelimit.go.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
