package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port string

	DBDriver          string
	DBPath            string
	DatabaseDSN       string
	MigrationAttempts int
	MigrationDelay    time.Duration

	CSRFKey          []byte
	SessionKey       []byte
	NewsletterSecret []byte
	CookieDomain     string
	CookieSecure     bool

	// TrustProxyHeaders takes the client IP from X-Forwarded-For. Enable it
	// only behind a proxy that overwrites the header.
	TrustProxyHeaders bool

	StaticDir string
	UploadDir string
	BaseURL   string

	MailProvider string
	MailFrom     string
	AdminEmail   string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	ResendAPIKey string

	PasswordMinLength       int
	PasswordRequireDigit    bool
	PasswordRequireLower    bool
	PasswordRequireUpper    bool
	PasswordRequireNonAlnum bool
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := &Config{
		Env:               getEnv("APP_ENV", EnvDevelopment),
		Port:              getEnv("PORT", "8080"),
		DBPath:            getEnv("DB_PATH", "./honeyweb.db"),
		MigrationAttempts: getEnvInt("MIGRATION_ATTEMPTS", 5),
		MigrationDelay:    getEnvDuration("MIGRATION_DELAY", 3*time.Second),
		CookieDomain:      getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:      getEnvBool("COOKIE_SECURE", false),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
		StaticDir:         getEnv("STATIC_DIR", ""),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		BaseURL:           strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		MailProvider:      strings.ToLower(getEnv("MAIL_PROVIDER", "log")),
		MailFrom:          getEnv("MAIL_FROM", "Save The Bee Bulgaria <noreply@savethebeebulgaria.com>"),
		AdminEmail:        getEnv("ADMIN_EMAIL", "savethebeebulgaria@gmail.com"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
		PasswordMinLength: getEnvInt("PASSWORD_MIN_LENGTH", 6),

		PasswordRequireDigit:    getEnvBool("PASSWORD_REQUIRE_DIGIT", false),
		PasswordRequireLower:    getEnvBool("PASSWORD_REQUIRE_LOWERCASE", false),
		PasswordRequireUpper:    getEnvBool("PASSWORD_REQUIRE_UPPERCASE", false),
		PasswordRequireNonAlnum: getEnvBool("PASSWORD_REQUIRE_NON_ALPHANUMERIC", false),
	}

	if err := cfg.loadDatabase(); err != nil {
		return nil, err
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")
	cfg.NewsletterSecret = loadKey("NEWSLETTER_SECRET")

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8080"
	}

	switch cfg.MailProvider {
	case "log", "smtp", "resend":
	default:
		return nil, fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.MailProvider)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// loadDatabase picks the driver: explicit DB_DRIVER, else postgres when
// DATABASE_URL or DB_HOST is present, else sqlite.
func (c *Config) loadDatabase() error {
	databaseURL := os.Getenv("DATABASE_URL")
	dbHost := os.Getenv("DB_HOST")

	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite"
		if databaseURL != "" || dbHost != "" {
			driver = "postgres"
		}
	}

	switch driver {
	case "sqlite":
		c.DBDriver = driver
		c.DatabaseDSN = c.DBPath
	case "postgres", "postgresql":
		c.DBDriver = "postgres"
		if databaseURL != "" {
			dsn, err := ParseDatabaseURL(databaseURL)
			if err != nil {
				return fmt.Errorf("DATABASE_URL: %w", err)
			}
			c.DatabaseDSN = dsn
			return nil
		}
		c.DatabaseDSN = keywordDSN([][2]string{
			{"host", getEnv("DB_HOST", "localhost")},
			{"port", getEnv("DB_PORT", "5432")},
			{"user", getEnv("DB_USER", "postgres")},
			{"password", getEnv("DB_PASSWORD", "")},
			{"dbname", getEnv("DB_NAME", "honeyweb")},
			{"sslmode", getEnv("DB_SSLMODE", "disable")},
		})
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	return nil
}

// ParseDatabaseURL turns a postgres:// URL as handed out by hosting platforms
// into a libpq keyword/value DSN. sslmode defaults to require.
func ParseDatabaseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("missing host")
	}

	port := u.Port()
	if port == "" {
		port = "5432"
	}
	dbname := strings.TrimPrefix(u.Path, "/")
	if dbname == "" {
		return "", fmt.Errorf("missing database name")
	}
	password, _ := u.User.Password()

	sslmode := u.Query().Get("sslmode")
	if sslmode == "" {
		sslmode = "require"
	}

	pairs := [][2]string{
		{"host", u.Hostname()},
		{"port", port},
		{"user", u.User.Username()},
		{"password", password},
		{"dbname", dbname},
		{"sslmode", sslmode},
	}
	return keywordDSN(pairs), nil
}

func keywordDSN(pairs [][2]string) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		parts = append(parts, p[0]+"="+quoteDSNValue(p[1]))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue applies libpq quoting when the value has spaces, quotes or backslashes.
func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func loadKey(name string) []byte {
	raw := os.Getenv(name)
	if raw == "" {
		slog.Warn(name+" environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET IT IN PRODUCTION!", "key", name)
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		slog.Warn(name+" is invalid or too short (min 32 bytes recommended). Generating a random key for development. PLEASE SET A SECURE KEY IN PRODUCTION!", "key", name)
		return generateRandomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		slog.Warn("Ignoring invalid integer environment variable", "key", key, "value", value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// generateRandomBytes uses crypto/rand; it only fails if the OS entropy source does.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to read random bytes", "error", err)
		fallbackKey := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		padded := make([]byte, n)
		copy(padded, fallbackKey)
		return padded
	}
	return b
}
