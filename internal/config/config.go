package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses token and OTP lifetimes as durations

	"github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for
// lifetimes, ints for costs.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	AccessSecret  string        // secret used to sign access tokens
	RefreshSecret string        // secret used to sign refresh tokens; must differ from AccessSecret
	AccessTTL     time.Duration // access token time-to-live (default 24h)
	RefreshTTL    time.Duration // refresh token time-to-live (default 360h = 15 days)

	BcryptCost int // bcrypt cost for password and passcode hashing

	OTPTTL      time.Duration // lifetime of a pending OTP keyed by phone number (default 120s)
	OTPEmailTTL time.Duration // lifetime of a pending OTP keyed by email (default 10m)
	OTPFixed    string        // when set, every OTP uses this code instead of a random one (dev/test)

	UploadDir string // directory where avatar and icon files are written
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when it
// exists; real environment variables take precedence over file values.
// Required variables are enforced by must() and missing values cause the
// program to exit with a fatal log message.
func Load() Config {
	// A missing .env file is normal in production where the environment is
	// provided by the process manager, so the error is ignored.
	_ = godotenv.Load()

	accessSecret := must("ACCESS_TOKEN_SECRET")
	refreshSecret := must("REFRESH_TOKEN_SECRET")
	if accessSecret == refreshSecret {
		// Distinct secrets guarantee a refresh token can never be replayed
		// as an access token.  Misconfiguration here is fatal at startup.
		log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     duration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTTL:    duration("REFRESH_TOKEN_TTL", 15*24*time.Hour),
		BcryptCost:    mustInt("BCRYPT_COST"),
		OTPTTL:        duration("OTP_TTL", 120*time.Second),
		OTPEmailTTL:   duration("OTP_EMAIL_TTL", 10*time.Minute),
		OTPFixed:      os.Getenv("OTP_FIXED_CODE"),
		UploadDir:     getenv("UPLOAD_DIR", "base"),
	}
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// getenv returns the value of an optional environment variable or the
// supplied default when the variable is unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// duration parses an optional duration variable (e.g. "24h", "120s") and
// falls back to the default on absence.  An unparsable value is fatal so a
// typo cannot silently shorten or extend a token lifetime.
func duration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}
