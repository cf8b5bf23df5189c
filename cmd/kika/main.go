// Command kika inspects, converts and imports material definitions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	applog "kika/internal/log"
)

const (
	Version = "0.1.0"
	appName = "kika"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Material composition toolkit",
		Long: `kika reads material definitions from YAML or JSON files, reports
their composition, converts fractions and units, renders MCNP material
cards and imports materials into the service database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			applog.ReplaceLogger(applog.NewWriterLogger(cmd.ErrOrStderr()))
			return applog.SetLevel(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		infoCmd(),
		normalizeCmd(),
		mcnpCmd(),
		convertCmd(),
		importCmd(),
		presetsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}
