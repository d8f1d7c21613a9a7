package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentrywaf/engine/pkg/engine"
)

var (
	dryRunReqBody string
	dryRunPhase   []string
)

var dryRunCmd = &cobra.Command{
	Use:   "dry-run [config-path]",
	Short: "Replay a fixture request through the engine without a host adapter",
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

		conn, err := e.ConnectionOpened(engine.ConnInfo{RemoteAddr: "127.0.0.1:0"})
		if err != nil {
			return fmt.Errorf("connection_opened: %w", err)
		}
		defer conn.Close()

		tx, err := conn.TransactionStarted()
		if err != nil {
			return fmt.Errorf("transaction_started: %w", err)
		}

		if err := tx.DataIn([]byte(dryRunReqBody)); err != nil {
			return fmt.Errorf("transaction_data_in: %w", err)
		}

		phases := dryRunPhase
		if len(phases) == 0 {
			phases = cfg.Phases
		}
		for _, phase := range phases {
			verdict, blocked, err := tx.Phase(phase)
			if err != nil {
				return fmt.Errorf("transaction_phase %q: %w", phase, err)
			}
			fmt.Printf("phase %-20s action=%-8s status=%d\n", phase, verdict.Action, verdict.Status)
			if blocked {
				break
			}
		}

		verdict, err := tx.Finished()
		if err != nil {
			return fmt.Errorf("transaction_finished: %w", err)
		}
		fmt.Printf("final verdict: action=%s status=%d\n", verdict.Action, verdict.Status)
		return nil
	},
}

func init() {
	dryRunCmd.Flags().StringVar(&dryRunReqBody, "request-body", "", "Fixture request body fed to transaction_data_in")
	dryRunCmd.Flags().StringSliceVar(&dryRunPhase, "phase", nil, "Phases to run, in order (defaults to config's phase list)")
}
