package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentrywaf/engine/pkg/engine"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate engine configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Load a config file and fully initialize an engine from it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := engine.LoadConfig(args[0])
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		e, err := engine.New(cfg)
		if err != nil {
			return fmt.Errorf("build engine: %w", err)
		}
		if err := e.Ready(); err != nil {
			return fmt.Errorf("engine not ready: %w", err)
		}
		defer e.Close()

		fmt.Printf("config ok: %d phase(s), %d collection binding(s), kv backend %q\n",
			len(cfg.Phases), len(cfg.Collections), orDefault(cfg.KV.Backend, "filesystem"))
		return nil
	},
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
