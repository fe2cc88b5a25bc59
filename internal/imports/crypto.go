package imports

import (
	"encoding/json"
	"fmt"

	"github.com/empower1/wasmvm/internal/environment"
)

// Crypto implements the crypto host-import category (spec §4.6
// "Crypto"). The methods return (bool, error); the wasmer closures in
// internal/instance/wire.go turn a true result into 0 (valid) and a false
// result into 1 (invalid), and any error, including malformed input,
// aborts the call rather than becoming a return code.
type Crypto struct {
	Env *environment.Environment
	Mem Memory
}

func (c Crypto) Secp256k1Verify(hashPtr, sigPtr, pubkeyPtr uint32) (bool, error) {
	hash, sig, pubkey, err := readTriple(c.Mem, hashPtr, sigPtr, pubkeyPtr)
	if err != nil {
		return false, fmt.Errorf("secp256k1_verify: %w", err)
	}
	ok, gasInfo, verErr := c.Env.Backend.Api.Secp256k1Verify(hash, sig, pubkey)
	if chargeErr := c.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return false, chargeErr
	}
	return ok, verErr
}

func (c Crypto) Secp256k1RecoverPubkey(alloc Allocator, hashPtr, sigPtr uint32, recoveryParam byte) (uint32, error) {
	hash, err := ReadRegion(c.Mem, hashPtr)
	if err != nil {
		return 0, fmt.Errorf("secp256k1_recover_pubkey: %w", err)
	}
	sig, err := ReadRegion(c.Mem, sigPtr)
	if err != nil {
		return 0, fmt.Errorf("secp256k1_recover_pubkey: %w", err)
	}
	pk, gasInfo, recErr := c.Env.Backend.Api.Secp256k1RecoverPubkey(hash, sig, recoveryParam)
	if chargeErr := c.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if recErr != nil {
		return 0, recErr
	}
	return WriteRegion(c.Mem, alloc, pk)
}

func (c Crypto) Secp256r1Verify(hashPtr, sigPtr, pubkeyPtr uint32) (bool, error) {
	hash, sig, pubkey, err := readTriple(c.Mem, hashPtr, sigPtr, pubkeyPtr)
	if err != nil {
		return false, fmt.Errorf("secp256r1_verify: %w", err)
	}
	ok, gasInfo, verErr := c.Env.Backend.Api.Secp256r1Verify(hash, sig, pubkey)
	if chargeErr := c.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return false, chargeErr
	}
	return ok, verErr
}

func (c Crypto) Secp256r1RecoverPubkey(alloc Allocator, hashPtr, sigPtr uint32, recoveryParam byte) (uint32, error) {
	hash, err := ReadRegion(c.Mem, hashPtr)
	if err != nil {
		return 0, fmt.Errorf("secp256r1_recover_pubkey: %w", err)
	}
	sig, err := ReadRegion(c.Mem, sigPtr)
	if err != nil {
		return 0, fmt.Errorf("secp256r1_recover_pubkey: %w", err)
	}
	pk, gasInfo, recErr := c.Env.Backend.Api.Secp256r1RecoverPubkey(hash, sig, recoveryParam)
	if chargeErr := c.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if recErr != nil {
		return 0, recErr
	}
	return WriteRegion(c.Mem, alloc, pk)
}

func (c Crypto) Ed25519Verify(msgPtr, sigPtr, pubkeyPtr uint32) (bool, error) {
	msg, sig, pubkey, err := readTriple(c.Mem, msgPtr, sigPtr, pubkeyPtr)
	if err != nil {
		return false, fmt.Errorf("ed25519_verify: %w", err)
	}
	ok, gasInfo, verErr := c.Env.Backend.Api.Ed25519Verify(msg, sig, pubkey)
	if chargeErr := c.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return false, chargeErr
	}
	return ok, verErr
}

// batchArgs is the JSON shape ed25519_batch_verify's single Region
// argument decodes into: parallel arrays of messages, signatures, and
// public keys, base64 by way of json.RawMessage-free plain []byte
// (Go's encoding/json base64-encodes []byte fields automatically).
type batchArgs struct {
	Messages   [][]byte `json:"messages"`
	Signatures [][]byte `json:"signatures"`
	PublicKeys [][]byte `json:"public_keys"`
}

func (c Crypto) Ed25519BatchVerify(argsPtr uint32) (bool, error) {
	raw, err := ReadRegion(c.Mem, argsPtr)
	if err != nil {
		return false, fmt.Errorf("ed25519_batch_verify: %w", err)
	}
	var args batchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return false, fmt.Errorf("ed25519_batch_verify: malformed arguments: %w", err)
	}
	ok, gasInfo, verErr := c.Env.Backend.Api.Ed25519BatchVerify(args.Messages, args.Signatures, args.PublicKeys)
	if chargeErr := c.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return false, chargeErr
	}
	return ok, verErr
}

type blsPointsArgs struct {
	Points [][]byte `json:"points"`
}

func (c Crypto) BLS12381AggregateG1(alloc Allocator, argsPtr uint32) (uint32, error) {
	raw, err := ReadRegion(c.Mem, argsPtr)
	if err != nil {
		return 0, fmt.Errorf("bls12_381_aggregate_g1: %w", err)
	}
	var args blsPointsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("bls12_381_aggregate_g1: malformed arguments: %w", err)
	}
	out, gasInfo, aggErr := c.Env.Backend.Api.BLS12381AggregateG1(args.Points)
	if chargeErr := c.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if aggErr != nil {
		return 0, aggErr
	}
	return WriteRegion(c.Mem, alloc, out)
}

func (c Crypto) BLS12381AggregateG2(alloc Allocator, argsPtr uint32) (uint32, error) {
	raw, err := ReadRegion(c.Mem, argsPtr)
	if err != nil {
		return 0, fmt.Errorf("bls12_381_aggregate_g2: %w", err)
	}
	var args blsPointsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("bls12_381_aggregate_g2: malformed arguments: %w", err)
	}
	out, gasInfo, aggErr := c.Env.Backend.Api.BLS12381AggregateG2(args.Points)
	if chargeErr := c.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if aggErr != nil {
		return 0, aggErr
	}
	return WriteRegion(c.Mem, alloc, out)
}

type blsPairingArgs struct {
	G1Points [][]byte `json:"g1_points"`
	G2Points [][]byte `json:"g2_points"`
}

func (c Crypto) BLS12381PairingEquality(argsPtr uint32) (bool, error) {
	raw, err := ReadRegion(c.Mem, argsPtr)
	if err != nil {
		return false, fmt.Errorf("bls12_381_pairing_equality: %w", err)
	}
	var args blsPairingArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return false, fmt.Errorf("bls12_381_pairing_equality: malformed arguments: %w", err)
	}
	ok, gasInfo, eqErr := c.Env.Backend.Api.BLS12381PairingEquality(args.G1Points, args.G2Points)
	if chargeErr := c.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return false, chargeErr
	}
	return ok, eqErr
}

func (c Crypto) BLS12381HashToG1(alloc Allocator, msgPtr, dstPtr uint32) (uint32, error) {
	msg, dst, err := readPair(c.Mem, msgPtr, dstPtr)
	if err != nil {
		return 0, fmt.Errorf("bls12_381_hash_to_g1: %w", err)
	}
	out, gasInfo, hashErr := c.Env.Backend.Api.BLS12381HashToG1(msg, dst)
	if chargeErr := c.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if hashErr != nil {
		return 0, hashErr
	}
	return WriteRegion(c.Mem, alloc, out)
}

func (c Crypto) BLS12381HashToG2(alloc Allocator, msgPtr, dstPtr uint32) (uint32, error) {
	msg, dst, err := readPair(c.Mem, msgPtr, dstPtr)
	if err != nil {
		return 0, fmt.Errorf("bls12_381_hash_to_g2: %w", err)
	}
	out, gasInfo, hashErr := c.Env.Backend.Api.BLS12381HashToG2(msg, dst)
	if chargeErr := c.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if hashErr != nil {
		return 0, hashErr
	}
	return WriteRegion(c.Mem, alloc, out)
}

func readTriple(mem Memory, p1, p2, p3 uint32) ([]byte, []byte, []byte, error) {
	a, err := ReadRegion(mem, p1)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := ReadRegion(mem, p2)
	if err != nil {
		return nil, nil, nil, err
	}
	c, err := ReadRegion(mem, p3)
	if err != nil {
		return nil, nil, nil, err
	}
	return a, b, c, nil
}

func readPair(mem Memory, p1, p2 uint32) ([]byte, []byte, error) {
	a, err := ReadRegion(mem, p1)
	if err != nil {
		return nil, nil, err
	}
	b, err := ReadRegion(mem, p2)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
