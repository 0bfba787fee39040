// Command ctnsum summarizes shipment spreadsheets into per-destination carton
// counts and writes the formatted summary workbooks.
package main

import (
	"fmt"
	"os"

	"github.com/javajack/ctnsum"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ctnsum",
		Short: "Summarize shipment spreadsheets by destination",
		Long: `ctnsum reads shipment line-item workbooks (.xlsx), classifies every row
by warehouse code and delivery note, and writes a summary workbook with
per-destination carton counts and self-pickup / truck delivery details.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	root.AddCommand(newProcessCmd(), newDescribeCmd(), newValidateCmd())
	return root
}

// processorOptions loads the configuration file, if any, and returns the
// options every command passes to the processor.
func processorOptions() ([]ctnsum.Option, error) {
	opts := []ctnsum.Option{ctnsum.WithLogger(logger)}
	if configPath == "" {
		return opts, nil
	}
	cfg, err := ctnsum.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return append(opts, cfg.Options()...), nil
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE",
		Short: "Print the summary of a shipment workbook without writing output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := processorOptions()
			if err != nil {
				return err
			}
			summary, err := ctnsum.ProcessFile(args[0], opts...)
			if err != nil {
				return fmt.Errorf("processing failed: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), ctnsum.Describe(summary))
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the classification rules of a configuration file",
		Long: `validate compiles every rule of the configuration file (or the built-in
table when --config is not given) and reports problems. It exits non-zero
when any rule would be rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := ctnsum.DefaultRules()
			if configPath != "" {
				// ParseConfig rejects invalid tables, so read the raw rules first.
				data, err := os.ReadFile(configPath)
				if err != nil {
					return fmt.Errorf("failed to read config file: %w", err)
				}
				var cfg ctnsum.Config
				if err := yaml.Unmarshal(data, &cfg); err != nil {
					return fmt.Errorf("failed to parse config: %w", err)
				}
				if len(cfg.Rules) > 0 {
					rules = cfg.Rules
				}
			}

			out := cmd.OutOrStdout()
			errCount := 0
			for _, issue := range ctnsum.ValidateRules(rules) {
				fmt.Fprintln(out, issue)
				if issue.Severity == ctnsum.SeverityError {
					errCount++
				}
			}
			if errCount > 0 {
				return fmt.Errorf("%d invalid rule(s)", errCount)
			}
			fmt.Fprintf(out, "%d rule(s) OK\n", len(rules))
			return nil
		},
	}
}
