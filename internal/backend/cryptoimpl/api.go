package cryptoimpl

import (
	"github.com/empower1/wasmvm/internal/backend"
	"github.com/empower1/wasmvm/internal/gascost"
	"github.com/empower1/wasmvm/internal/types"
)

// Api is the reference backend.Api implementation: address translation
// plus every pure crypto primitive the host-import surface exposes. It
// holds no mutable state — every method is safe for concurrent use.
type Api struct{}

var _ backend.Api = Api{}

func (Api) CanonicalAddress(human string) ([]byte, types.GasInfo, error) {
	hash, err := DecodeAddress(human)
	if err != nil {
		return nil, types.WithCost(gascost.CostAddrCanonicalize), err
	}
	return hash, types.WithCost(gascost.CostAddrCanonicalize), nil
}

func (Api) Humanize(canonical []byte) (string, types.GasInfo, error) {
	addr, err := EncodeAddress(canonical)
	if err != nil {
		return "", types.WithCost(gascost.CostAddrHumanize), err
	}
	return addr, types.WithCost(gascost.CostAddrHumanize), nil
}

func (Api) ValidateAddress(human string) (types.GasInfo, error) {
	_, err := DecodeAddress(human)
	return types.WithCost(gascost.CostAddrValidate), err
}

func (Api) Secp256k1Verify(hash, sig, pubkey []byte) (bool, types.GasInfo, error) {
	ok, err := Secp256k1Verify(hash, sig, pubkey)
	return ok, types.WithCost(gascost.CostSecp256k1Verify), err
}

func (Api) Secp256k1RecoverPubkey(hash, sig []byte, recoveryParam byte) ([]byte, types.GasInfo, error) {
	pk, err := Secp256k1RecoverPubkey(hash, sig, recoveryParam)
	return pk, types.WithCost(gascost.CostSecp256k1Recover), err
}

func (Api) Secp256r1Verify(hash, sig, pubkey []byte) (bool, types.GasInfo, error) {
	ok, err := Secp256r1Verify(hash, sig, pubkey)
	return ok, types.WithCost(gascost.CostSecp256r1Verify), err
}

func (Api) Secp256r1RecoverPubkey(hash, sig []byte, recoveryParam byte) ([]byte, types.GasInfo, error) {
	pk, err := Secp256r1RecoverPubkey(hash, sig, recoveryParam)
	return pk, types.WithCost(gascost.CostSecp256r1Recover), err
}

func (Api) Ed25519Verify(msg, sig, pubkey []byte) (bool, types.GasInfo, error) {
	ok, err := Ed25519Verify(msg, sig, pubkey)
	return ok, types.WithCost(gascost.CostEd25519Verify), err
}

func (Api) Ed25519BatchVerify(msgs, sigs, pubkeys [][]byte) (bool, types.GasInfo, error) {
	ok, err := Ed25519BatchVerify(msgs, sigs, pubkeys)
	cost := gascost.CostEd25519BatchVerifyBase
	if n := len(msgs); n > 1 {
		cost += uint64(n-1) * gascost.CostEd25519BatchVerifyPerItem
	}
	return ok, types.WithCost(cost), err
}

func (Api) BLS12381AggregateG1(points [][]byte) ([]byte, types.GasInfo, error) {
	out, err := BLS12381AggregateG1(points)
	return out, types.WithCost(gascost.CostBLSAggregateG1Base), err
}

func (Api) BLS12381AggregateG2(points [][]byte) ([]byte, types.GasInfo, error) {
	out, err := BLS12381AggregateG2(points)
	return out, types.WithCost(gascost.CostBLSAggregateG2Base), err
}

func (Api) BLS12381PairingEquality(g1Points, g2Points [][]byte) (bool, types.GasInfo, error) {
	ok, err := BLS12381PairingEquality(g1Points, g2Points)
	return ok, types.WithCost(gascost.CostBLSPairingEqualityBase), err
}

func (Api) BLS12381HashToG1(msg, dst []byte) ([]byte, types.GasInfo, error) {
	out, err := BLS12381HashToG1(msg, dst)
	return out, types.WithCost(gascost.CostBLSHashToG1), err
}

func (Api) BLS12381HashToG2(msg, dst []byte) ([]byte, types.GasInfo, error) {
	out, err := BLS12381HashToG2(msg, dst)
	return out, types.WithCost(gascost.CostBLSHashToG2), err
}

func (Api) SHA256(data []byte) []byte    { return SHA256(data) }
func (Api) Keccak256(data []byte) []byte { return Keccak256(data) }
