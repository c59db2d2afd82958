package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// fallbackAccessTokenSecret mirrors the secret the legacy server shipped
// with. Using it is insecure; Load flags it so main can warn loudly.
const fallbackAccessTokenSecret = "62a798775294eda38d9d5bdb57cfae9d1fff7a550c11c06ef2888fc1af641c09291d17f07f04156356fd86223256fbcc026e791a80a876fe7b14d4ba30ec185d"

type Config struct {
	AppEnv    string
	Port      string
	Store     StoreConfig
	Auth      AuthConfig
	Mail      MailConfig
	CORS      CORSConfig
	Telemetry TelemetryConfig
}

type StoreConfig struct {
	File       string
	StaticDir  string
	BackupCron string
}

// ProtectedRoute pairs a path prefix with the HTTP verbs that require a
// bearer token. Rules are evaluated in order; the first rule whose prefix
// and verb both match marks the request as protected.
type ProtectedRoute struct {
	Route   string   `json:"route"`
	Methods []string `json:"methods"`
}

type AuthConfig struct {
	AccessTokenSecret []byte
	AccessTokenTTL    time.Duration
	ProtectedRoutes   []ProtectedRoute
	FallbackSecret    bool
}

type MailConfig struct {
	SMTPHost    string
	SMTPPort    string
	Username    string
	Password    string
	SenderName  string
	SenderEmail string
	MeetingLink string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type TelemetryConfig struct {
	ServiceName          string
	ServiceVersion       string
	OTLPEndpoint         string
	OTLPTracesEndpoint   string
	OTLPMetricsEndpoint  string
	OTLPProtocol         string
	OTLPHeaders          map[string]string
	OTLPInsecure         bool
	ExportTimeout        time.Duration
	MetricExportInterval time.Duration
}

func defaultProtectedRoutes() []ProtectedRoute {
	return []ProtectedRoute{
		{Route: "/users", Methods: []string{"GET", "PUT", "PATCH", "DELETE"}},
		{Route: "/patients", Methods: []string{"POST", "PUT", "PATCH", "DELETE"}},
		{Route: "/doctors", Methods: []string{"POST", "PUT", "PATCH", "DELETE"}},
		{Route: "/appointments", Methods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"}},
	}
}

func Load() (Config, error) {
	// Legacy environment names are kept so existing deployments keep
	// working: DB, REACT_APP_JSON_SERVER_PORT, STATIC_FILES, NODE_ENV,
	// ACCESS_TOKEN_SECRET.
	appEnv := getEnv("NODE_ENV", "production")
	port := getEnv("REACT_APP_JSON_SERVER_PORT", "9090")

	secret := os.Getenv("ACCESS_TOKEN_SECRET")
	fallback := secret == ""
	if fallback {
		secret = fallbackAccessTokenSecret
	}

	ttl, err := time.ParseDuration(getEnv("ACCESS_TOKEN_TTL", "3h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}

	protectedRoutes := defaultProtectedRoutes()
	if raw := os.Getenv("PROTECTED_ROUTES"); raw != "" {
		protectedRoutes = nil
		if err := json.Unmarshal([]byte(raw), &protectedRoutes); err != nil {
			return Config{}, fmt.Errorf("invalid PROTECTED_ROUTES: %w", err)
		}
	}

	exportTimeout, err := time.ParseDuration(getEnv("OTEL_EXPORTER_OTLP_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OTEL_EXPORTER_OTLP_TIMEOUT: %w", err)
	}
	metricInterval, err := time.ParseDuration(getEnv("OTEL_METRIC_EXPORT_INTERVAL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OTEL_METRIC_EXPORT_INTERVAL: %w", err)
	}

	cfg := Config{
		AppEnv: appEnv,
		Port:   port,
		Store: StoreConfig{
			File:       getEnv("DB", "db.json"),
			StaticDir:  getEnv("STATIC_FILES", "server-files"),
			BackupCron: os.Getenv("BACKUP_CRON"),
		},
		Auth: AuthConfig{
			AccessTokenSecret: []byte(secret),
			AccessTokenTTL:    ttl,
			ProtectedRoutes:   protectedRoutes,
			FallbackSecret:    fallback,
		},
		Mail: MailConfig{
			SMTPHost:    getEnv("SMTP_HOST", "localhost"),
			SMTPPort:    getEnv("SMTP_PORT", "587"),
			Username:    os.Getenv("SMTP_USERNAME"),
			Password:    os.Getenv("SMTP_PASSWORD"),
			SenderName:  getEnv("MAIL_FROM_NAME", "Rucja/Cancer Unwired"),
			SenderEmail: getEnv("MAIL_FROM_ADDRESS", "shankartrailmail@gmail.com"),
			MeetingLink: getEnv("MEETING_LINK", "https://cancer-unwired-meetings-37zgb57m5-shankar-43s-projects.vercel.app/"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Telemetry: TelemetryConfig{
			ServiceName:          getEnv("OTEL_SERVICE_NAME", "rucja-api"),
			ServiceVersion:       getEnv("OTEL_SERVICE_VERSION", "dev"),
			OTLPEndpoint:         os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			OTLPTracesEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"),
			OTLPMetricsEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"),
			OTLPProtocol:         getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			OTLPHeaders:          parseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
			OTLPInsecure:         getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
			ExportTimeout:        exportTimeout,
			MetricExportInterval: metricInterval,
		},
	}

	if cfg.Store.File == "" {
		return Config{}, fmt.Errorf("DB must not be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return strings.EqualFold(value, "true") || value == "1"
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	var results []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func parseHeaders(value string) map[string]string {
	if value == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		key, val, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return headers
}
