package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-tools-service/internal/tools"
)

func callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json-args]",
		Short: "Run a tool once and print its result",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kit, err := newToolkit()
			if err != nil {
				return err
			}

			var raw json.RawMessage
			if len(args) == 2 {
				raw = json.RawMessage(args[1])
			}

			result, err := kit.Call(cmd.Context(), args[0], raw)
			if err != nil {
				var validationErr *tools.ValidationError
				if errors.As(err, &validationErr) {
					for _, f := range validationErr.Fields {
						fmt.Fprintln(cmd.ErrOrStderr(), f.Message)
					}
				}
				return err
			}
			if !result.OK() {
				return result.Fault
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Value)
		},
	}
}
