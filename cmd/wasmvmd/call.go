package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/empower1/wasmvm/internal/backend"
	"github.com/empower1/wasmvm/internal/backend/cryptoimpl"
	"github.com/empower1/wasmvm/internal/backend/memdb"
	"github.com/empower1/wasmvm/internal/instance"
	"github.com/empower1/wasmvm/internal/types"
	"github.com/spf13/cobra"
)

func newCallCmd() *cobra.Command {
	var envPath, infoPath, msgPath string
	var gasLimit uint64

	cmd := &cobra.Command{
		Use:   "call [checksum] [entry-point]",
		Short: "Dispatch one entry point against a local, ephemeral in-memory backend.",
		Long: "call loads the named contract from the cache (compiling on a miss), " +
			"instantiates it with a fresh internal/backend/memdb.Store, and dispatches " +
			"entry-point with the given --env/--info/--msg JSON payloads.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			checksum, err := types.ChecksumFromHex(args[0])
			if err != nil {
				return err
			}
			entry := types.EntryPoint(args[1])

			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close()

			mod, err := c.Get(checksum)
			if err != nil {
				return err
			}

			params := instance.CallParams{
				Entry:    entry,
				GasLimit: gasLimit,
				Logger:   logger,
				Backend: backend.Backend{
					Storage: memdb.NewStore(logger),
					Api:     cryptoimpl.Api{},
					Querier: backend.NoopQuerier{},
				},
			}
			if envPath != "" {
				if params.Env, err = os.ReadFile(envPath); err != nil {
					return fmt.Errorf("reading --env: %w", err)
				}
			}
			if infoPath != "" {
				if params.Info, err = os.ReadFile(infoPath); err != nil {
					return fmt.Errorf("reading --info: %w", err)
				}
			}
			if msgPath != "" {
				if params.Msg, err = os.ReadFile(msgPath); err != nil {
					return fmt.Errorf("reading --msg: %w", err)
				}
			}

			result, callErr := instance.Call(mod.Code, types.DefaultConfig(), params)
			report := struct {
				GasUsed   uint64          `json:"gas_used"`
				Remaining uint64          `json:"gas_remaining"`
				Result    json.RawMessage `json:"result,omitempty"`
				Error     string          `json:"error,omitempty"`
			}{
				GasUsed:   result.GasReport.Used(),
				Remaining: result.GasReport.Remaining,
			}
			if callErr != nil {
				report.Error = callErr.Error()
			} else {
				raw, err := json.Marshal(result.Result)
				if err != nil {
					return err
				}
				report.Result = raw
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVar(&envPath, "env", "", "path to a JSON Env payload")
	cmd.Flags().StringVar(&infoPath, "info", "", "path to a JSON MessageInfo payload")
	cmd.Flags().StringVar(&msgPath, "msg", "", "path to a JSON Msg payload")
	cmd.Flags().Uint64Var(&gasLimit, "gas-limit", 100_000_000, "host gas units available to the call")
	return cmd
}
