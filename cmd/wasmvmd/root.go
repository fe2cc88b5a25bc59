// Command wasmvmd is an operator convenience CLI over a single baseDir's
// Compiled Module cache: store/pin/unpin/call/stats. It is grounded on the
// teacher's cmd/empower1d/cli/cli.go command tree (one rootCmd, one
// subcommand per verb, a struct injected into each closure) generalized
// from "blockchain operations" to "cache and dispatch operations" — it has
// no validate-then-accept/reject workflow of its own and is not the
// "verify a Wasm blob before deployment" tool spec.md's Non-goals exclude;
// it calls straight into internal/cache and internal/instance.
package main

import (
	"fmt"
	"os"

	"github.com/empower1/wasmvm/internal/cache"
	"github.com/empower1/wasmvm/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

var (
	baseDir string
	logger  *zap.SugaredLogger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wasmvmd",
		Short: "Operate a wasmvm Compiled Module cache from the command line.",
	}
	root.PersistentFlags().StringVar(&baseDir, "base-dir", "./wasmvm-data", "cache/state root directory")
	root.AddCommand(
		newStoreCmd(),
		newPinCmd(),
		newUnpinCmd(),
		newCallCmd(),
		newStatsCmd(),
	)
	return root
}

func openCache() (*cache.Cache, error) {
	return cache.New(baseDir, cache.Options{
		Config: types.DefaultConfig(),
		Logger: logger,
	})
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	undo, err := maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	defer undo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wasmvmd: automaxprocs: %v\n", err)
	}

	prod, err := zap.NewProduction()
	if err != nil {
		fatalf("wasmvmd: failed to build logger: %v", err)
	}
	defer prod.Sync()
	logger = prod.Sugar()

	if err := newRootCmd().Execute(); err != nil {
		fatalf("wasmvmd: %v", err)
	}
}
