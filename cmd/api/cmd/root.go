package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/employee-api/internal/config"
	"github.com/employee-api/internal/logging"
	"github.com/spf13/cobra"
)

// rootOptions - глобальные флаги, доступные всем подкомандам
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCmd собирает дерево команд; serve выполняется по умолчанию
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	serve := newServeCmd(opts)

	root := &cobra.Command{
		Use:   "employee-api",
		Short: "Employee Management API",
		Long: `Employee Management API stores employee records and exposes them over HTTP.

Without a subcommand the HTTP server is started.`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (TOML, optional; CONFIG_FILE env)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (json, console)")

	root.AddCommand(
		serve,
		newMigrateCmd(opts),
		newOpenAPICmd(),
		newTokenCmd(opts),
		newVersionCmd(),
	)

	return root
}

// Execute запускает CLI; вызывается из main
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig загружает конфигурацию и применяет переопределения из флагов
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	return cfg, nil
}

func (o *rootOptions) newLogger(cfg *config.Config, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.New(cfg.Log, stdout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	slog.SetDefault(logger)
	return logger, closer, nil
}
