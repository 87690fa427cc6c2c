// Command messenger serves the messenger HTTP API.
//
// @title        Messenger API
// @version      1.0
// @description  Minimal messenger backend: accounts and stored messages.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/queuejw/messenger/internal/api"
	"github.com/queuejw/messenger/internal/api/metrics"
	"github.com/queuejw/messenger/internal/core/domain"
	"github.com/queuejw/messenger/internal/core/service"
	"github.com/queuejw/messenger/internal/infrastructure/credential"
	"github.com/queuejw/messenger/internal/infrastructure/db/entity"
	"github.com/queuejw/messenger/internal/infrastructure/db/storage"
	"github.com/queuejw/messenger/internal/infrastructure/http/handlers"
	"github.com/queuejw/messenger/internal/pkg/config"
	"github.com/queuejw/messenger/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "messenger: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := config.Load()

	flagSet := pflag.NewFlagSet("messenger", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port (env PORT)")
	flagSet.StringVar(&cfg.Storage.DataDir, "data-dir", cfg.Storage.DataDir, "data directory for the file driver (env DATA_DIR)")
	flagSet.StringVar(&cfg.Storage.Driver, "storage", cfg.Storage.Driver, "storage driver: file, memory, mongo or redis (env STORAGE_DRIVER)")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "minimum log level (env LOG_LEVEL)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "messenger",
		Version: version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing storage")
		}
	}()

	cipher, err := credential.New(cfg.Cipher.Mode, cfg.Cipher.Key)
	if err != nil {
		return fmt.Errorf("credential cipher: %w", err)
	}
	if cfg.Cipher.Mode == credential.ModeAESECB && cfg.Cipher.Key == credential.DefaultKey {
		log.Warn().Msg("using the built-in credential key; set CIPHER_KEY in production")
	}

	observe := entity.WithObserver(metrics.ObserveStoreOp)
	users := entity.NewCollection[domain.User](backend, domain.KindUsers, observe)
	logins := entity.NewCollection[domain.LoginClaim](backend, domain.KindLogins, observe)
	messages := entity.NewCollection[domain.Message](backend, domain.KindMessages, observe, entity.WithIDFunc(entity.LongID))

	e := api.NewRouter(api.Dependencies{
		Accounts: service.NewAccountService(users, logins, cipher, log.With().Str("component", "accounts").Logger()),
		Messages: service.NewMessageService(messages, log.With().Str("component", "messages").Logger()),
		Ready:    map[string]handlers.Pinger{"storage": backend},
		Logger:   log,
	})

	srv := &http.Server{
		Addr:    net.JoinHostPort("", cfg.Port),
		Handler: e,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("storage", backend.Name()).
			Str("cipher", cfg.Cipher.Mode).
			Msg("messenger listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	return shutdown(srv, cfg, log)
}

func shutdown(srv *http.Server, cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
