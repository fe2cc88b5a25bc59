// Package backend defines the three orthogonal services a host embeds to
// give the VM authority over state for one call (spec §4.4, C4): Storage,
// Api, and Querier. Every fallible operation returns a GasInfo alongside
// its result so the caller can charge the Wasm gas meter and the external
// counter independently (spec "Every backend operation returns
// (result, gas_info{externally_used, cost})").
//
// This is grounded on the teacher's internal/state.State (the single
// authority over one chain's ledger/contract storage) generalized from a
// single concrete struct into an interface so internal/backend/memdb can
// implement it for tests while a real embedding host supplies its own.
package backend

import (
	"context"

	"github.com/empower1/wasmvm/internal/types"
)

// IterationOrder selects scan direction for Storage.Scan.
type IterationOrder int

const (
	Ascending IterationOrder = iota
	Descending
)

// IteratorID is a small integer handle allocated monotonically within one
// call (spec §4.5 "Iterator lifecycle"); IDs never outlive the call that
// created them.
type IteratorID uint32

// KV is one key/value pair returned by Storage.Next.
type KV struct {
	Key   []byte
	Value []byte
}

// Storage is the flat per-contract key/value namespace (spec §4.4
// "Storage"). Range endpoints are inclusive-start, exclusive-end; nil
// endpoints mean unbounded.
type Storage interface {
	Get(ctx context.Context, key []byte) ([]byte, types.GasInfo, error)
	Set(ctx context.Context, key, value []byte) (types.GasInfo, error)
	Remove(ctx context.Context, key []byte) (types.GasInfo, error)
	Scan(ctx context.Context, start, end []byte, order IterationOrder) (IteratorID, types.GasInfo, error)
	Next(ctx context.Context, id IteratorID) (*KV, types.GasInfo, error)
}

// Api is the pure-function surface: address translation plus crypto
// primitives. Pure functions consume only gas — they never touch storage
// (spec §4.4 "Api").
type Api interface {
	CanonicalAddress(human string) ([]byte, types.GasInfo, error)
	Humanize(canonical []byte) (string, types.GasInfo, error)
	ValidateAddress(human string) (types.GasInfo, error)

	Secp256k1Verify(hash, sig, pubkey []byte) (bool, types.GasInfo, error)
	Secp256k1RecoverPubkey(hash, sig []byte, recoveryParam byte) ([]byte, types.GasInfo, error)
	Secp256r1Verify(hash, sig, pubkey []byte) (bool, types.GasInfo, error)
	Secp256r1RecoverPubkey(hash, sig []byte, recoveryParam byte) ([]byte, types.GasInfo, error)
	Ed25519Verify(msg, sig, pubkey []byte) (bool, types.GasInfo, error)
	Ed25519BatchVerify(msgs, sigs, pubkeys [][]byte) (bool, types.GasInfo, error)
	BLS12381AggregateG1(points [][]byte) ([]byte, types.GasInfo, error)
	BLS12381AggregateG2(points [][]byte) ([]byte, types.GasInfo, error)
	BLS12381PairingEquality(g1Points, g2Points [][]byte) (bool, types.GasInfo, error)
	BLS12381HashToG1(msg, dst []byte) ([]byte, types.GasInfo, error)
	BLS12381HashToG2(msg, dst []byte) ([]byte, types.GasInfo, error)
	SHA256(data []byte) []byte
	Keccak256(data []byte) []byte
}

// Querier runs a synchronous cross-contract/host query (spec §4.4
// "Querier"). It may recurse back into the VM; depth is capped by the
// Environment, not by Querier itself.
type Querier interface {
	QueryRaw(ctx context.Context, request []byte, gasRemaining uint64) ([]byte, uint64, error)
}

// Backend bundles the three services a single call is given.
type Backend struct {
	Storage Storage
	Api     Api
	Querier Querier
}
