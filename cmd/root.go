package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-tools-service/internal/config"
	"github.com/vzahanych/weather-tools-service/internal/tools"
	"github.com/vzahanych/weather-tools-service/internal/weather"
	"github.com/vzahanych/weather-tools-service/pkg/logger"
	"github.com/vzahanych/weather-tools-service/pkg/telemetry"
	"go.uber.org/zap"
)

const serviceName = "weather-tools"

var (
	configPath string
	cfg        *config.Config
	log        *logger.Logger
	tele       *telemetry.Telemetry
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather-tools",
		Short: "Weather tools service",
		Long:  `Exposes weather, air quality and health tools over MCP (Streamable HTTP or stdio) and a plain REST API.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeServices(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdownServices()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(definitionsCmd())
	cmd.AddCommand(callCmd())

	return cmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rootCmd().ExecuteContext(ctx)
}

func initializeServices(ctx context.Context) error {
	var err error

	// 1. Load config from file and environment
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize logger
	log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 3. Telemetry is optional; a failed exporter falls back to a no-op tracer
	tele, err = telemetry.New(ctx, cfg.Telemetry, cfg.Version)
	if err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
		tele = nil
	}

	return nil
}

func shutdownServices() {
	if tele != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tele.Shutdown(ctx); err != nil {
			log.Warn("Failed to shut down telemetry", zap.Error(err))
		}
	}
	if log != nil {
		_ = log.Sync()
	}
}

// newToolkit wires the configured weather source into a toolkit.
func newToolkit() (*tools.Toolkit, error) {
	source, err := weather.New(cfg.Weather, log.Logger, tele)
	if err != nil {
		return nil, err
	}

	return tools.New(tools.Options{
		Source:        source,
		DefaultAPIKey: cfg.Weather.APIKey,
		Logger:        log.Logger,
		Telemetry:     tele,
	})
}
