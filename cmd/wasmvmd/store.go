package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newStoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "store [wasm-file]",
		Short: "Validate and persist a Wasm blob to the source tier, printing its checksum.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wasmBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close()

			checksum, err := c.StoreCode(wasmBytes)
			if err != nil {
				return err
			}
			fmt.Println(checksum.String())
			return nil
		},
	}
}
