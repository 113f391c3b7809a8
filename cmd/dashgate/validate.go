package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/dashgate/pkg/builder"
	"mercator-hq/dashgate/pkg/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [definition.yaml...]",
	Short: "Validate the configuration and definition files",
	Long: `Validate the configuration and, optionally, application definitions.

Each definition is decoded and its script compiled in a sandbox exactly as
the server would, without touching the store.

Examples:
  # Check the configuration only
  dashgate validate --config config.yaml

  # Check definitions
  dashgate validate demo1.yaml sales.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✓ Configuration valid")

	b := builder.New(builder.Config{
		MaxBodyBytes: cfg.Builder.MaxBodyBytes,
		CallTimeout:  cfg.Builder.CallTimeout,
	}, nil)

	failed := 0
	for _, path := range args {
		if err := validateDefinition(cmd.Context(), b, path); err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "✓ %s\n", path)
	}

	if failed > 0 {
		return cli.NewCommandError("validate", fmt.Errorf("%d of %d definitions invalid", failed, len(args)))
	}
	return nil
}

func validateDefinition(ctx context.Context, b *builder.Builder, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	def, err := builder.Parse(data)
	if err != nil {
		return err
	}
	_, err = b.BuildApp(ctx, def, builder.NewServerConfig("validate"))
	return err
}
