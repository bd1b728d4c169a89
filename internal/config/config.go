package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSecretLength is the minimum required length for the signing secret.
const MinSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"YAMDB_DB_PATH" envDefault:"./data/yamdb.db"`
	Secret     string `env:"YAMDB_SECRET,required"`
	ServerHost string `env:"YAMDB_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"YAMDB_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"YAMDB_ENV" envDefault:"development"`
	LogLevel   string `env:"YAMDB_LOG_LEVEL" envDefault:"info"`

	// Access token and confirmation code lifetimes.
	TokenTTL time.Duration `env:"YAMDB_TOKEN_TTL" envDefault:"24h"`
	CodeTTL  time.Duration `env:"YAMDB_CODE_TTL" envDefault:"24h"`

	// SMTP configuration. Confirmation codes are logged instead of mailed
	// when SMTPHost is empty.
	SMTPHost string `env:"YAMDB_SMTP_HOST"`
	SMTPPort int    `env:"YAMDB_SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"YAMDB_SMTP_USER"`
	SMTPPass string `env:"YAMDB_SMTP_PASS"`
	MailFrom string `env:"YAMDB_MAIL_FROM" envDefault:"noreply@yamdb.local"`

	// Optional superuser seeded at startup if absent.
	AdminUsername string `env:"YAMDB_ADMIN_USERNAME"`
	AdminEmail    string `env:"YAMDB_ADMIN_EMAIL"`

	// Pending registrations that never exchanged a token are purged
	// after this window. Zero disables the purge job.
	StaleRegistrationTTL time.Duration `env:"YAMDB_STALE_REGISTRATION_TTL" envDefault:"720h"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MailEnabled returns true if SMTP delivery is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("YAMDB_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSecretLength, len(cfg.Secret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.Secret == weak {
			return nil, fmt.Errorf("YAMDB_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if cfg.AdminUsername != "" && cfg.AdminEmail == "" || cfg.AdminUsername == "" && cfg.AdminEmail != "" {
		return nil, fmt.Errorf("YAMDB_ADMIN_USERNAME and YAMDB_ADMIN_EMAIL must be set together")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	return cfg, nil
}
