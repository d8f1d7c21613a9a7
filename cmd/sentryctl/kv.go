package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentrywaf/engine/pkg/kvstore"
)

var (
	kvBackendFlag string
	kvDataDirFlag string
	kvAddrFlag    string
)

var kvCmd = &cobra.Command{
	Use:   "kv",
	Short: "Inspect the KV store directly, bypassing the engine",
}

func openBackend() (kvstore.Backend, error) {
	switch kvBackendFlag {
	case "", "filesystem":
		return kvstore.NewFilesystemBackend(kvDataDirFlag), nil
	case "bolt":
		return kvstore.NewBoltBackend(kvDataDirFlag), nil
	case "redis":
		return kvstore.NewRedisBackend(kvAddrFlag), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", kvBackendFlag)
	}
}

var kvGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Fetch and merge all stored values for a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openBackend()
		if err != nil {
			return err
		}
		store := kvstore.New(backend, kvstore.DefaultMergePolicy)
		if err := store.Connect(); err != nil {
			return err
		}
		defer store.Disconnect()

		val, err := store.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("type=%s created=%s expiration=%s\n%s\n", val.Type, val.Created, val.Expiration, val.Data)
		return nil
	},
}

var kvSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Write a value under key with type \"manual\"",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openBackend()
		if err != nil {
			return err
		}
		store := kvstore.New(backend, kvstore.DefaultMergePolicy)
		if err := store.Connect(); err != nil {
			return err
		}
		defer store.Disconnect()

		return store.Set(args[0], &kvstore.Value{Type: "manual", Data: []byte(args[1])})
	},
}

func init() {
	kvCmd.PersistentFlags().StringVar(&kvBackendFlag, "backend", "filesystem", "KV backend: filesystem, bolt, redis")
	kvCmd.PersistentFlags().StringVar(&kvDataDirFlag, "data-dir", "./data/kv", "Data directory for filesystem/bolt backends")
	kvCmd.PersistentFlags().StringVar(&kvAddrFlag, "addr", "localhost:6379", "Address for redis backend")

	kvCmd.AddCommand(kvGetCmd)
	kvCmd.AddCommand(kvSetCmd)
}
