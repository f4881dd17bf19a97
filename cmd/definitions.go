package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-tools-service/internal/tools"
	"go.uber.org/zap"
)

func definitionsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "definitions",
		Short: "Write the tool definitions file",
		Long:  `Write the JSON tool definitions derived from the registered tools. Use --output - to print them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kit, err := newToolkit()
			if err != nil {
				return err
			}

			if output == "" {
				output = cfg.Definitions.Path
			}
			if output == "-" {
				return tools.WriteDefinitions(cmd.OutOrStdout(), kit.Definitions())
			}

			if err := tools.WriteDefinitionsFile(output, kit.Definitions()); err != nil {
				return err
			}
			log.Info("Tool definitions written", zap.String("path", output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, - for stdout (default: definitions.path)")

	return cmd
}
