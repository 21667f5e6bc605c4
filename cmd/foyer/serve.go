package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/foyerhq/foyer/internal/api"
	"github.com/foyerhq/foyer/internal/config"
	"github.com/foyerhq/foyer/internal/greeting"
	"github.com/foyerhq/foyer/internal/identity"
	"github.com/foyerhq/foyer/internal/metrics"
	"github.com/foyerhq/foyer/internal/org"
	"github.com/foyerhq/foyer/internal/user"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Foyer API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cfg.Auth.Secret == "" {
		return errors.New("auth.secret must be set (or FOYER_JWT_SECRET)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	slog.Info("connected to database")

	userStore := user.NewStore(pool)
	orgStore := org.NewStore(pool)

	tokens := identity.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	identityService := identity.NewService(userStore, tokens, cfg.Auth.BcryptCost)

	greeter := greeting.NewClient(greeting.Config{
		IPInfoURL:   cfg.Greeting.IPInfoURL,
		IPInfoToken: cfg.Greeting.IPInfoToken,
		GeocodeURL:  cfg.Greeting.GeocodeURL,
		GeocodeKey:  cfg.Greeting.GeocodeKey,
		WeatherURL:  cfg.Greeting.WeatherURL,
		WeatherKey:  cfg.Greeting.WeatherKey,
		Timeout:     cfg.Greeting.Timeout,
	})

	m := metrics.New()
	m.RegisterDBPoolCollector(func() (total, idle, acquired int32) {
		stat := pool.Stat()
		return stat.TotalConns(), stat.IdleConns(), stat.AcquiredConns()
	})

	router := api.NewRouter(api.RouterDeps{
		Logger:         logger,
		Identity:       identityService,
		Users:          userStore,
		Orgs:           orgStore,
		Greeting:       greeter,
		Metrics:        m,
		DB:             pool,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
