package config // package config loads application configuration from environment variables

import (
	"database/sql" // sql provides the isolation level constants
	"errors"       // errors joins missing-key reports
	"fmt"          // fmt formats validation messages
	"os"           // os provides access to environment variables
	"strconv"      // strconv converts strings to other types
	"strings"      // strings normalises enum-like values
)

// Store drivers understood by STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Optional variables fall back to the defaults
// documented next to the field.
type Config struct {
	Env            string // application environment (default "dev")
	Port           string // HTTP port to listen on (default 8080)
	StoreDriver    string // "mysql" or "memory"
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	TxIsolation    sql.IsolationLevel // isolation used by RunInTx
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	UploadDir      string // directory where blobs are written
	UploadMaxBytes int64  // per-file upload limit
	LogLevel       string // zap level name
	LogFormat      string // "json" or "console"
	RabbitURL      string // AMQP url; empty disables events
	EventsQueue    string // queue receiving reservation events
	AuditLogPath   string // file written by the audit consumer
	TokenPurgeSpec string // cron spec for the refresh token janitor
}

// Load reads configuration values from environment variables and returns a
// Config.  Every missing required variable is reported in the returned error.
func Load() (Config, error) {
	var errs []error
	req := func(key string) string {
		v, err := must(key)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	optInt := func(key string, def int) int {
		n, err := mustInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		StoreDriver:    strings.ToLower(envStr("STORE_DRIVER", DriverMySQL)),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		JWTSecret:      req("JWT_SECRET"),
		AccessTTLMin:   optInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: optInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     optInt("BCRYPT_COST", 10),
		UploadDir:      envStr("UPLOAD_DIR", "./public/uploads"),
		UploadMaxBytes: int64(optInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogFormat:      envStr("LOG_FORMAT", "json"),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		EventsQueue:    envStr("EVENTS_QUEUE", "reservation.events"),
		AuditLogPath:   envStr("AUDIT_LOG_PATH", "logs/reservation-audit.log"),
		TokenPurgeSpec: envStr("TOKEN_PURGE_SCHEDULE", "@hourly"),
	}

	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = req("DB_USER")
		cfg.DBHost = req("DB_HOST")
		cfg.DBPort = req("DB_PORT")
		cfg.DBName = req("DB_NAME")
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver))
	}

	iso, err := parseIsolation(envStr("DB_TX_ISOLATION", "read-committed"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.TxIsolation = iso

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// must retrieves the value of a required environment variable.
func must(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return v, nil
}

// mustInt converts an optional integer variable, falling back to def when unset.
// A value that is present but not a positive integer is an error.
func mustInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid int for %s: %q", key, s)
	}
	return n, nil
}

func parseIsolation(s string) (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read-committed", "read_committed":
		return sql.LevelReadCommitted, nil
	case "repeatable-read", "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "serializable":
		return sql.LevelSerializable, nil
	}
	return sql.LevelDefault, fmt.Errorf("invalid DB_TX_ISOLATION %q", s)
}
