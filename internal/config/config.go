package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  The database connection is described by a
// single DATABASE_URL; the MYSQL_* variables are a legacy fallback used
// by older deployments and only consulted when DATABASE_URL is unset.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DatabaseURL  string // primary connection string (sqlite:// or mysql://)
	LegacyDBURL  string // mysql:// URL assembled from MYSQL_* variables
	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	RabbitURL    string // AMQP broker URL (empty disables the event queue)
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:          getenv("APP_ENV", "dev"),
		Port:         getenv("APP_PORT", "5000"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		LegacyDBURL:  legacyMySQLURL(),
		JWTSecret:    must("SECRET_KEY"),
		AccessTTLMin: envIntDefault("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:   envIntDefault("BCRYPT_COST", 12),
		RabbitURL:    os.Getenv("RABBITMQ_URL"),
	}
	if cfg.DatabaseURL == "" && cfg.LegacyDBURL == "" {
		log.Fatal("no database configured: set DATABASE_URL or the MYSQL_* variables")
	}
	return cfg
}

// legacyMySQLURL assembles a mysql:// URL from the MYSQL_HOST, MYSQL_USER,
// MYSQL_PASSWORD, MYSQL_PORT and MYSQL_DB variables.  Returns "" when the
// host is unset.
func legacyMySQLURL() string {
	host := os.Getenv("MYSQL_HOST")
	if host == "" {
		return ""
	}
	user := getenv("MYSQL_USER", "root")
	pass := os.Getenv("MYSQL_PASSWORD")
	port := getenv("MYSQL_PORT", "3306")
	name := getenv("MYSQL_DB", "air_ticket")
	if pass != "" {
		return fmt.Sprintf("mysql://%s:%s@%s:%s/%s", user, pass, host, port, name)
	}
	return fmt.Sprintf("mysql://%s@%s:%s/%s", user, host, port, name)
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envIntDefault converts an environment variable to an int, falling back
// to def when unset.  An unparsable value is fatal.
func envIntDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
