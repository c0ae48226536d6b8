package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formset/pkg/config"
)

var (
	configPath  string
	verbose     bool
	openapiSrc  string
	formsetName string

	logger *zap.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "formset",
	Short: "Autocomplete-driven form-set editor and server",
	Long: `formset manages Django-style form-sets whose entries are added through an
autocomplete search and removed with soft-delete semantics.

Settings come from a JSON or YAML file (--config), optionally overridden by an
x-formset declaration in an OpenAPI document (--openapi, --formset).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if openapiSrc != "" {
			if err := applyOpenAPI(cmd.Context(), &cfg, openapiSrc, formsetName); err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "JSON or YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&openapiSrc, "openapi", "", "OpenAPI document path or URL declaring x-formset properties")
	rootCmd.PersistentFlags().StringVar(&formsetName, "formset", "", "form-set to use from --openapi (operationId.property)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
