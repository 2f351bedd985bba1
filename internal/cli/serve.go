package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecinar/route-tracker/internal/auth"
	"github.com/ecinar/route-tracker/internal/config"
	"github.com/ecinar/route-tracker/internal/customer"
	"github.com/ecinar/route-tracker/internal/db"
	"github.com/ecinar/route-tracker/internal/geo"
	"github.com/ecinar/route-tracker/internal/logging"
	"github.com/ecinar/route-tracker/internal/user"
	"github.com/ecinar/route-tracker/internal/visit"
	"github.com/ecinar/route-tracker/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP API that the mobile clients and the CLI talk to.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: PORT env or 8080)")

	return cmd
}

func runServe(portFlag int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if portFlag != 0 {
		cfg.Port = portFlag
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}

	logging.Setup(cfg.DevMode)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeDB(database)

	users := user.NewRepository(database)
	customers := customer.NewRepository(database)
	visits := visit.NewService(
		visit.NewSQLiteStore(database),
		geo.NewGate(cfg.NearbyThreshold),
		visit.WithCustomers(customers),
		visit.WithLocationTimeout(cfg.LocationTimeout),
		visit.WithStoreTimeout(cfg.StoreTimeout),
	)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	handler := web.NewServer(users, customers, visits, tokens, web.Options{
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening",
			"port", cfg.Port,
			"db", cfg.DBPath,
			"threshold_m", cfg.NearbyThreshold,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
