package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance_tracker/internal/handlers"
	"finance_tracker/internal/logger"
	"finance_tracker/internal/repository"
	"finance_tracker/internal/server"
	"finance_tracker/internal/service"

	_ "finance_tracker/docs"

	"github.com/spf13/viper"
)

func main() {
	// load config.yml + env first so the log level is honored
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	// signing secrets are a startup invariant, not a per-request error
	secrets, err := loadTokenSecrets()
	if err != nil {
		log.Fatalw("missing token secrets", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, secrets)
	apiHandler := handlers.NewHandler(services, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	return bindSecretEnv()
}

func bindSecretEnv() error {
	if err := viper.BindEnv("auth.access_secret", "ACCESS_TOKEN_SECRET"); err != nil {
		return err
	}
	return viper.BindEnv("auth.refresh_secret", "REFRESH_TOKEN_SECRET")
}

// loadTokenSecrets enforces that both signing secrets are present; the
// process refuses to serve without them.
func loadTokenSecrets() (service.TokenSecrets, error) {
	s := service.TokenSecrets{
		Access:  viper.GetString("auth.access_secret"),
		Refresh: viper.GetString("auth.refresh_secret"),
	}
	if s.Access == "" {
		return service.TokenSecrets{}, errors.New("ACCESS_TOKEN_SECRET is not set")
	}
	if s.Refresh == "" {
		return service.TokenSecrets{}, errors.New("REFRESH_TOKEN_SECRET is not set")
	}
	return s, nil
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "finance.db")
		dbPath = "finance.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
