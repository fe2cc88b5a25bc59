package gascost

// Host-import fixed gas costs (spec §4.6 last paragraph: "Each import's
// gas cost is either a fixed constant ... or reported by the backend").
// DB and query costs are reported by the backend per call via GasInfo and
// are not listed here; these are the constants charged up front for pure
// operations, adapted from the teacher's per-host-function base costs in
// internal/vm/host_functions.go (e.g. gasCostLogMessageBase,
// gasCostGetStorageBase) generalized into one named table.
const (
	CostDebug               uint64 = 10
	CostAbort               uint64 = 10
	CostAddrValidate        uint64 = 80
	CostAddrCanonicalize    uint64 = 150
	CostAddrHumanize        uint64 = 150
	CostSecp256k1Verify     uint64 = 3_000
	CostSecp256k1Recover    uint64 = 3_500
	CostSecp256r1Verify     uint64 = 5_000
	CostSecp256r1Recover    uint64 = 6_000
	CostEd25519Verify       uint64 = 1_800
	CostEd25519BatchVerifyBase uint64 = 1_800
	CostEd25519BatchVerifyPerItem uint64 = 1_000
	CostBLSAggregateG1Base  uint64 = 1_000
	CostBLSAggregateG2Base  uint64 = 1_500
	CostBLSPairingEqualityBase uint64 = 6_000
	CostBLSHashToG1         uint64 = 2_000
	CostBLSHashToG2         uint64 = 3_000
	CostSHA256PerByte       uint64 = 1
	CostKeccak256PerByte    uint64 = 1
	CostBlake2bPerByte      uint64 = 1
	CostBlake3PerByte       uint64 = 1
	CostArgon2PerByte       uint64 = 20
	// PerItem costs scale a base cost by the size of the input (e.g. bytes
	// hashed, or extra signatures past the first in a batch verify).
)

// HashCostPerByte returns the per-byte cost for a named hash algorithm;
// unknown names cost the same as sha256.
func HashCostPerByte(name string) uint64 {
	switch name {
	case "keccak256":
		return CostKeccak256PerByte
	case "blake2b":
		return CostBlake2bPerByte
	case "blake3":
		return CostBlake3PerByte
	case "argon2id":
		return CostArgon2PerByte
	default:
		return CostSHA256PerByte
	}
}
