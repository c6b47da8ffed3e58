package cmd

import (
	"fmt"
	"os"

	"github.com/employee-api/internal/config"
	"github.com/employee-api/internal/openapi"
	"github.com/spf13/cobra"
)

func newOpenAPICmd() *cobra.Command {
	var (
		format     string
		output     string
		host       string
		apiVersion string
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Export the Swagger 2.0 description of the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := openapi.Render(openapi.New(apiVersion, host), format)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&host, "host", "", "host recorded in the document")
	cmd.Flags().StringVar(&apiVersion, "api-version", config.Default().App.Version, "API version recorded in the document")

	return cmd
}
