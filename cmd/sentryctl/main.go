package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sentrywaf/engine/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sentryctl",
	Short: "sentryctl drives the WAF engine for development and smoke testing",
	Long: `sentryctl is a local CLI for the engine: it validates config files,
inspects the KV store, and can replay a fixture request/response pair
through the connection/transaction lifecycle without a live host
adapter.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("sentryctl version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(kvCmd)
	rootCmd.AddCommand(dryRunCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
