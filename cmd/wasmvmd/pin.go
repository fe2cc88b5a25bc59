package main

import (
	"fmt"

	"github.com/empower1/wasmvm/internal/types"
	"github.com/spf13/cobra"
)

func newPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin [checksum]",
		Short: "Compile (if needed) and pin a contract into the never-evicted cache tier.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checksum, err := types.ChecksumFromHex(args[0])
			if err != nil {
				return err
			}
			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Pin(checksum); err != nil {
				return err
			}
			fmt.Printf("pinned %s\n", checksum)
			return nil
		},
	}
}

func newUnpinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpin [checksum]",
		Short: "Remove a contract from the pinned tier.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checksum, err := types.ChecksumFromHex(args[0])
			if err != nil {
				return err
			}
			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close()
			c.Unpin(checksum)
			fmt.Printf("unpinned %s\n", checksum)
			return nil
		},
	}
}
