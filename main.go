package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"rucja-api/config"
	"rucja-api/handlers"
	"rucja-api/mail"
	"rucja-api/middleware"
	"rucja-api/routes"
	"rucja-api/secretmanager"
	"rucja-api/store"
	"rucja-api/telemetry"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	loadEnv        = godotenv.Load
	loadConfig     = config.Load
	openStore      = store.Open
	initTelemetry  = telemetry.Init
	setupRoutes    = routes.SetupRoutes
	listenAndServe = http.ListenAndServe
	getSecret      = secretmanager.GetSecret
	logFatal       = logrus.Fatal
)

func loadSecretMap(secretName string) (map[string]string, error) {
	secretJSON, err := getSecret(secretName)
	if err != nil {
		return nil, err
	}
	secrets := make(map[string]string)
	if err := json.Unmarshal([]byte(secretJSON), &secrets); err != nil {
		return nil, err
	}
	return secrets, nil
}

// loadProdSecrets projects production secrets into the environment before
// config.Load reads it. The JWT secret is mandatory; SMTP credentials are
// optional so the service can still run with mail disabled.
func loadProdSecrets() error {
	jwtSecrets, err := loadSecretMap("rucja/jwt")
	if err != nil {
		return err
	}
	for key, value := range jwtSecrets {
		os.Setenv(key, value)
	}

	smtpSecrets, err := loadSecretMap("rucja/smtp")
	if err == nil {
		for key, value := range smtpSecrets {
			os.Setenv(key, value)
		}
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		logFatal(err)
	}
}

func run() error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
		logrus.SetLevel(level)
	}

	if err := loadEnv(); err != nil {
		logger.Info("No .env file found; using system environment variables")
	}

	if os.Getenv("NODE_ENV") == "production" && os.Getenv("AWS_SECRETS") == "enabled" {
		if err := loadProdSecrets(); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.FallbackSecret {
		logger.Warn("ACCESS_TOKEN_SECRET is not set; using the built-in fallback secret. Do not run production like this.")
	}

	ctx := context.Background()
	shutdownTelemetry, err := initTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Errorf("Telemetry shutdown: %v", err)
		}
	}()

	st, err := openStore(cfg.Store.File, logger)
	if err != nil {
		return err
	}

	if cfg.Store.BackupCron != "" {
		scheduler, err := store.NewBackupScheduler(st, cfg.Store.BackupCron, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	sender := mail.NewSMTPSender(cfg.Mail, logger)
	authHandler := handlers.NewAuthHandler(cfg, st)
	crudHandler := handlers.NewCrudHandler(st)
	mailHandler := handlers.NewMailHandler(cfg, sender)

	router := setupRoutes(cfg, authHandler, crudHandler, mailHandler)

	// Static files sit outside the router: they must answer paths no
	// route matches, which router-level middleware never sees.
	staticHandler := middleware.StaticFiles(cfg.Store.StaticDir)(router)

	corsOpts := []gorillaHandlers.CORSOption{
		gorillaHandlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
	}
	corsHandler := gorillaHandlers.CORS(corsOpts...)(staticHandler)

	handler := otelhttp.NewHandler(corsHandler, "http.server")

	logger.Infof("JSON document server is running on port %s in %s ENV.", cfg.Port, cfg.AppEnv)
	return listenAndServe(":"+cfg.Port, handler)
}
