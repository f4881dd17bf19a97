package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-tools-service/internal/mcpserver"
	"go.uber.org/zap"
)

func stdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdin/stdout",
		Long:  `Run the MCP server on stdin/stdout for clients that launch the tools as a subprocess. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kit, err := newToolkit()
			if err != nil {
				return err
			}

			err = mcpserver.New(kit, serviceName, cfg.Version, log.Logger).RunStdio(cmd.Context())
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("MCP stdio session failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
}
