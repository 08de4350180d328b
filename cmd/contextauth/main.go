package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tendant/contextauth/idm"
	"github.com/tendant/contextauth/internal/config"
	"github.com/tendant/contextauth/internal/notification"
	"github.com/tendant/contextauth/internal/workers"
	"github.com/tendant/contextauth/migrations"
	"github.com/tendant/contextauth/pkg/auth"
	"github.com/tendant/contextauth/pkg/repository"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFile)
	slog.SetDefault(logger)

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		DBName:       cfg.DBName,
		SSLMode:      cfg.DBSSLMode,
		MaxOpenConns: cfg.DBMaxOpenConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	if cfg.DBAutoMigrate {
		if err := migrations.Migrate(db); err != nil {
			logger.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	rdb, err := repository.NewRedis(repository.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	logger.Info("connected to redis")

	transport, err := newTransport(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize mail transport", "error", err)
		os.Exit(1)
	}
	logger.Info("mail transport enabled", "driver", cfg.Mail.Driver)

	service, err := idm.New(idm.Config{
		DB:                  db,
		Redis:               rdb,
		RedisKeyPrefix:      cfg.RedisKeyPrefix,
		JWTSecret:           cfg.JWTSecret,
		JWTIssuer:           cfg.JWTIssuer,
		AccessTokenTTL:      cfg.AccessTokenTTL,
		LoginOTPTTL:         cfg.LoginOTPTTL,
		OTPRequestInterval:  cfg.OTPRequestInterval,
		OTPAssertionTTL:     cfg.OTPAssertionTTL,
		TrustClientOTPFlag:  cfg.OTPTrustClientFlag,
		EmailCodeBinding:    cfg.EmailCodeBinding,
		SuspensionDuration:  cfg.SuspensionDuration,
		HistoryWindow:       cfg.HistoryWindow,
		LoginTimeout:        cfg.LoginTimeout,
		CollaboratorTimeout: cfg.CollaboratorTimeout,
		NotifyTimeout:       cfg.NotifyTimeout,
		Risk: auth.RiskConfig{
			UnknownDeviceWeight:   cfg.Risk.UnknownDeviceWeight,
			NearbyLocationWeight:  cfg.Risk.NearbyLocationWeight,
			UnknownLocationWeight: cfg.Risk.UnknownLocationWeight,
			SuspendThreshold:      cfg.Risk.SuspendThreshold,
			NearbyKm:              cfg.Risk.NearbyKm,
			DefaultRadiusKm:       cfg.Risk.DefaultRadiusKm,
		},
		Transport:          transport,
		RateLimit:          cfg.RateLimit,
		SecurityHeaders:    cfg.SecurityHeaders,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		CookieSecure:       cfg.CookieSecure,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("failed to initialize authentication", "error", err)
		os.Exit(1)
	}

	janitor := workers.NewSuspensionJanitor(service.Accounts(), cfg.JanitorInterval, logger)
	janitor.Start(context.Background())

	// Create HTTP server
	addr := cfg.Addr()
	server := &http.Server{
		Addr:         addr,
		Handler:      service.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	janitor.Stop()
	// Pending login and suspension alerts are flushed before the stores close.
	if err := service.Close(); err != nil {
		logger.Error("failed to close authentication service", "error", err)
	}

	logger.Info("server stopped")
}

func newLogger(level, file string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var w io.Writer = os.Stdout
	if file != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxAge:     28,  // days
			MaxBackups: 5,
			Compress:   true,
		})
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newTransport(cfg *config.Config, logger *slog.Logger) (notification.Transport, error) {
	switch cfg.Mail.Driver {
	case config.MailDriverSMTP:
		return notification.NewEmailTransport(notification.EmailConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			User:     cfg.Mail.SMTPUser,
			Password: cfg.Mail.SMTPPassword,
			From:     cfg.Mail.From,
			FromName: cfg.Mail.FromName,
			MaxConns: cfg.Mail.SMTPMaxConns,
		})
	case config.MailDriverBridge:
		return notification.NewBridgeTransport(notification.BridgeConfig{
			URL:     cfg.Mail.BridgeURL,
			Token:   cfg.Mail.BridgeToken,
			From:    cfg.Mail.From,
			Timeout: cfg.Mail.BridgeTimeout,
		}), nil
	default:
		return notification.NewLogTransport(logger), nil
	}
}
