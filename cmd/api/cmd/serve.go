package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/employee-api/internal/auth"
	"github.com/employee-api/internal/config"
	"github.com/employee-api/internal/handler"
	"github.com/employee-api/internal/metrics"
	"github.com/employee-api/internal/repository"
	"github.com/employee-api/internal/service"
	"github.com/employee-api/internal/store"
	"github.com/employee-api/internal/validation"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			logger, closer, err := opts.newLogger(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closer.Close()

			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Подключение к БД
	db, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close(db)

	// Запуск миграций
	if cfg.Database.AutoMigrate {
		results, err := store.Migrate(ctx, db, cfg.Database.Driver)
		if err != nil {
			return err
		}
		for _, r := range results {
			logger.Info("migration applied",
				slog.Int64("version", r.Source.Version),
				slog.Duration("duration", r.Duration),
			)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	m := metrics.New(cfg.App.Version)
	if err := m.RegisterDB(sqlDB, cfg.Database.Driver); err != nil {
		return fmt.Errorf("failed to register db metrics: %w", err)
	}

	// Инициализация репозиториев
	deptRepo := repository.NewDepartmentRepository(db)
	empRepo := repository.NewEmployeeRepository(db)

	// Инициализация сервисов
	deptService := service.NewDepartmentService(deptRepo)
	empService := service.NewEmployeeService(empRepo, deptRepo)

	var tokens *auth.TokenManager
	if cfg.Auth.Enabled {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	} else {
		logger.Warn("authentication is disabled")
	}

	// Настройка роутера
	router := handler.NewRouter(handler.RouterDeps{
		Employees:   handler.NewEmployeeHandler(empService, validation.New(), logger),
		Departments: handler.NewDepartmentHandler(deptService, logger),
		Health:      handler.NewHealthHandler(sqlDB, cfg.App.Version, logger),
		Metrics:     m,
		Tokens:      tokens,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		Version:     cfg.App.Version,
	}, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		select {
		case <-quit:
		case <-ctx.Done():
		}
		logger.Info("server is shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("could not gracefully shutdown the server", slog.Any("error", err))
		}
		close(done)
	}()

	logger.Info("server is starting",
		slog.String("addr", server.Addr),
		slog.String("version", cfg.App.Version),
		slog.String("driver", cfg.Database.Driver),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not listen on %s: %w", server.Addr, err)
	}

	<-done
	logger.Info("server stopped")
	return nil
}
