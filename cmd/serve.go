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

	"motor_dashboard/internal/config"
	"motor_dashboard/internal/handlers"
	"motor_dashboard/internal/logger"
	"motor_dashboard/internal/push"
	"motor_dashboard/internal/repository"
	"motor_dashboard/internal/server"
	"motor_dashboard/internal/service"

	"github.com/spf13/cobra"
)

const defaultShutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	Long:  `Serve the zone, motor and device pages, the live reading relay and the status event API.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	// open DB
	db, err := openDB(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	channels := push.NewFactory(cfg.Push, log)
	services := service.NewService(newAPIClient(cfg), channels, repos, log)
	apiHandler := handlers.NewHandler(services, log.Named("http"), handlers.WithAllowedOrigins(cfg.CORS.AllowedOrigins...))

	log.Infow("starting dashboard",
		"port", cfg.Port,
		"upstream", cfg.Upstream.BaseURL,
		"push_transport", cfg.Push.Transport,
	)

	srv := &server.Server{
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	errCh := runHTTPServer(srv, cfg.Port, apiHandler)

	return waitForShutdown(srv, cfg.Server.ShutdownTimeout, errCh, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "dashboard.db")
		dbPath = "dashboard.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

// waitForShutdown blocks until a termination signal or a server failure and
// then shuts the server down gracefully.
func waitForShutdown(srv *server.Server, timeout time.Duration, errCh <-chan error, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		log.Errorw("error starting server", "err", err)
		return err
	case <-quit:
	}

	log.Infow("shutting down server...")

	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
		return err
	}
	return nil
}
