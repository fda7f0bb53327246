package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	QR        QRConfig
	SMTP      SMTPConfig
	EmailAPI  EmailAPIConfig
	EditToken EditTokenConfig
	Log       LogConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	TemplatesGlob   string
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig points at a single local SQLite file.
type DatabaseConfig struct {
	Path string
}

type QRConfig struct {
	// PublicBaseURL is the externally reachable origin encoded into every
	// QR code, e.g. "https://emergency-qr.example.com".
	PublicBaseURL string
	ArtifactDir   string
	FontPath      string
	FontSize      float64
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	DialTimeout time.Duration
}

// Configured reports whether the SMTP transport has usable credentials.
func (c SMTPConfig) Configured() bool {
	return c.Username != "" && c.Password != ""
}

type EmailAPIConfig struct {
	Endpoint       string
	APIKey         string
	SenderName     string
	SenderEmail    string
	RequestTimeout time.Duration
}

func (c EmailAPIConfig) Configured() bool {
	return c.APIKey != ""
}

type EditTokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	OTLPURL     string
	SampleRate  float64
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "emergency-qr"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("PORT", 5000),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			TemplatesGlob:   getEnv("TEMPLATES_GLOB", "web/templates/*.html"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "database/app.db"),
		},
		QR: QRConfig{
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:5000"),
			ArtifactDir:   getEnv("QR_ARTIFACT_DIR", "static/qr_codes"),
			FontPath:      getEnv("QR_FONT_PATH", "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"),
			FontSize:      getEnvFloat("QR_FONT_SIZE", 22),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:        getEnvInt("SMTP_PORT", 587),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			FromAddress: getEnv("SMTP_FROM", ""),
			DialTimeout: getEnvDuration("SMTP_DIAL_TIMEOUT", 10*time.Second),
		},
		EmailAPI: EmailAPIConfig{
			Endpoint:       getEnv("EMAIL_API_ENDPOINT", "https://api.brevo.com/v3/smtp/email"),
			APIKey:         getEnv("EMAIL_API_KEY", ""),
			SenderName:     getEnv("EMAIL_SENDER_NAME", "Emergency QR"),
			SenderEmail:    getEnv("EMAIL_SENDER_ADDRESS", "no-reply@emergency-qr.local"),
			RequestTimeout: getEnvDuration("EMAIL_API_TIMEOUT", 15*time.Second),
		},
		EditToken: EditTokenConfig{
			Secret: getEnv("EDIT_TOKEN_SECRET", ""),
			TTL:    getEnvDuration("EDIT_TOKEN_TTL", 10*time.Minute),
			Issuer: getEnv("EDIT_TOKEN_ISSUER", "emergency-qr"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("TRACING_ENABLED", false),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "emergency-qr"),
			OTLPURL:     getEnv("OTLP_ENDPOINT", "localhost:4318"),
			SampleRate:  getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces settings that must not be left at their defaults in
// production. Missing mail credentials are deliberately legal: the
// dispatcher degrades to a not-configured status instead.
func validate(cfg *Config) error {
	var errs []string

	if cfg.EditToken.Secret == "" {
		if cfg.App.Environment == "production" {
			errs = append(errs, "EDIT_TOKEN_SECRET is required in production")
		} else {
			cfg.EditToken.Secret = "dev-only-edit-token-secret"
		}
	}

	if cfg.QR.PublicBaseURL == "" {
		errs = append(errs, "PUBLIC_BASE_URL must not be empty")
	}

	if cfg.SMTP.Configured() && cfg.SMTP.FromAddress == "" {
		errs = append(errs, "SMTP_FROM is required when SMTP credentials are set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
