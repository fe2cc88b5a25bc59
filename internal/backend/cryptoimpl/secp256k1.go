package cryptoimpl

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Secp256k1Verify checks a 64-byte compact (r||s) signature over a
// 32-byte message hash against an uncompressed or compressed public key
// (spec §4.6 "secp256k1_verify").
func Secp256k1Verify(hash, sig, pubKeyBytes []byte) (bool, error) {
	if len(hash) != 32 {
		return false, fmt.Errorf("secp256k1: message hash must be 32 bytes, got %d", len(hash))
	}
	if len(sig) != 64 {
		return false, fmt.Errorf("secp256k1: signature must be 64 bytes (r||s), got %d", len(sig))
	}
	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false, fmt.Errorf("secp256k1: invalid public key: %w", err)
	}
	signature := ecdsa.NewSignature(modNScalar(sig[:32]), modNScalar(sig[32:]))
	return signature.Verify(hash, pubKey), nil
}

// Secp256k1RecoverPubkey recovers the 65-byte uncompressed public key
// from a compact signature and recovery id (spec §4.6
// "secp256k1_recover_pubkey").
func Secp256k1RecoverPubkey(hash, sig []byte, recoveryID byte) ([]byte, error) {
	if len(hash) != 32 || len(sig) != 64 {
		return nil, fmt.Errorf("secp256k1: expected 32-byte hash and 64-byte signature")
	}
	compact := make([]byte, 65)
	compact[0] = 27 + recoveryID
	copy(compact[1:], sig)
	pubKey, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, fmt.Errorf("secp256k1: recovery failed: %w", err)
	}
	return pubKey.SerializeUncompressed(), nil
}

func modNScalar(b []byte) *secp256k1.ModNScalar {
	var s secp256k1.ModNScalar
	s.SetByteSlice(b)
	return &s
}
