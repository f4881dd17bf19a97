package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-tools-service/internal/mcpserver"
	"github.com/vzahanych/weather-tools-service/internal/server"
	"github.com/vzahanych/weather-tools-service/internal/tools"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Start the HTTP server exposing the tools over REST and MCP Streamable HTTP at /mcp.`,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Info("Starting weather tools server",
		zap.String("config_path", configPath),
		zap.String("weather_source", cfg.Weather.Source),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port))

	kit, err := newToolkit()
	if err != nil {
		return err
	}

	if cfg.Definitions.WriteOnStart {
		if err := tools.WriteDefinitionsFile(cfg.Definitions.Path, kit.Definitions()); err != nil {
			log.Error("Failed to write tool definitions", zap.String("path", cfg.Definitions.Path), zap.Error(err))
			return err
		}
		log.Info("Tool definitions written", zap.String("path", cfg.Definitions.Path))
	}

	mcp := mcpserver.New(kit, serviceName, cfg.Version, log.Logger)
	srv := server.NewServer(cfg.Server, kit, mcp.Handler(), log.Logger, tele)

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server error", zap.Error(err))
		return err
	}

	log.Info("Server shutdown complete")
	return nil
}
