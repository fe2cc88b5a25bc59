package cryptoimpl

import (
	"crypto/ed25519"
	"fmt"
)

// Ed25519Verify checks a single signature. Thin wrapper over stdlib's
// crypto/ed25519, which already does the heavy lifting.
func Ed25519Verify(msg, sig, pubKey []byte) (bool, error) {
	if len(pubKey) != ed25519.PublicKeySize {
		return false, fmt.Errorf("ed25519: public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pubKey))
	}
	if len(sig) != ed25519.SignatureSize {
		return false, fmt.Errorf("ed25519: signature must be %d bytes, got %d", ed25519.SignatureSize, len(sig))
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), msg, sig), nil
}

// Ed25519BatchVerify checks N independent (message, signature, pubkey)
// triples. No library in the retrieval pack exposes Ed25519 batch
// verification (the real performance win comes from amortizing scalar
// multiplications across signatures); this falls back to a per-signature
// loop over stdlib, which is correct but forgoes that speedup — recorded
// in DESIGN.md.
func Ed25519BatchVerify(msgs, sigs, pubKeys [][]byte) (bool, error) {
	if len(msgs) != len(sigs) || len(sigs) != len(pubKeys) {
		return false, fmt.Errorf("ed25519: batch verify requires equal-length msgs/sigs/pubkeys")
	}
	for i := range msgs {
		ok, err := Ed25519Verify(msgs[i], sigs[i], pubKeys[i])
		if err != nil {
			return false, fmt.Errorf("ed25519: batch item %d: %w", i, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
