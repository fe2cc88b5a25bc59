// BLS12-381 aggregate/pairing/hash-to-curve operations use
// consensys/gnark-crypto, a pack enrichment grounded on the BLS usage in
// the pack's ProbeChain-go-probe and fluentlabs-xyz-go-ethereum go.mod
// files — the teacher itself carries no BLS dependency, so this is the
// "enrich from the rest of the pack" case rather than a kept teacher dep.
package cryptoimpl

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// BLS12381AggregateG1 sums a list of compressed G1 points into one
// compressed aggregate point.
func BLS12381AggregateG1(points [][]byte) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("bls12_381: aggregate_g1 requires at least one point")
	}
	var acc bls12381.G1Jac
	for i, raw := range points {
		var p bls12381.G1Affine
		if _, err := p.SetBytes(raw); err != nil {
			return nil, fmt.Errorf("bls12_381: invalid g1 point at index %d: %w", i, err)
		}
		var pj bls12381.G1Jac
		pj.FromAffine(&p)
		acc.AddAssign(&pj)
	}
	var out bls12381.G1Affine
	out.FromJacobian(&acc)
	encoded := out.Bytes()
	return encoded[:], nil
}

// BLS12381AggregateG2 sums a list of compressed G2 points.
func BLS12381AggregateG2(points [][]byte) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("bls12_381: aggregate_g2 requires at least one point")
	}
	var acc bls12381.G2Jac
	for i, raw := range points {
		var p bls12381.G2Affine
		if _, err := p.SetBytes(raw); err != nil {
			return nil, fmt.Errorf("bls12_381: invalid g2 point at index %d: %w", i, err)
		}
		var pj bls12381.G2Jac
		pj.FromAffine(&p)
		acc.AddAssign(&pj)
	}
	var out bls12381.G2Affine
	out.FromJacobian(&acc)
	encoded := out.Bytes()
	return encoded[:], nil
}

// BLS12381PairingEquality checks whether the product of pairings
// e(g1_i, g2_i) equals the identity in GT — the standard aggregate
// signature verification equation, exposed directly to the guest so
// contract-level BLS verification schemes can be built on top.
func BLS12381PairingEquality(g1Points, g2Points [][]byte) (bool, error) {
	if len(g1Points) != len(g2Points) {
		return false, fmt.Errorf("bls12_381: pairing_equality requires matching g1/g2 counts")
	}
	g1s := make([]bls12381.G1Affine, len(g1Points))
	g2s := make([]bls12381.G2Affine, len(g2Points))
	for i := range g1Points {
		if _, err := g1s[i].SetBytes(g1Points[i]); err != nil {
			return false, fmt.Errorf("bls12_381: invalid g1 point at index %d: %w", i, err)
		}
		if _, err := g2s[i].SetBytes(g2Points[i]); err != nil {
			return false, fmt.Errorf("bls12_381: invalid g2 point at index %d: %w", i, err)
		}
	}
	ok, err := bls12381.PairingCheck(g1s, g2s)
	if err != nil {
		return false, fmt.Errorf("bls12_381: pairing check failed: %w", err)
	}
	return ok, nil
}

var (
	defaultG1DST = []byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")
	defaultG2DST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")
)

// BLS12381HashToG1 maps an arbitrary message to a G1 point per the
// RFC9380 hash-to-curve suite gnark-crypto implements.
func BLS12381HashToG1(msg, dst []byte) ([]byte, error) {
	if len(dst) == 0 {
		dst = defaultG1DST
	}
	p, err := bls12381.HashToG1(msg, dst)
	if err != nil {
		return nil, fmt.Errorf("bls12_381: hash_to_g1: %w", err)
	}
	encoded := p.Bytes()
	return encoded[:], nil
}

// BLS12381HashToG2 maps an arbitrary message to a G2 point.
func BLS12381HashToG2(msg, dst []byte) ([]byte, error) {
	if len(dst) == 0 {
		dst = defaultG2DST
	}
	p, err := bls12381.HashToG2(msg, dst)
	if err != nil {
		return nil, fmt.Errorf("bls12_381: hash_to_g2: %w", err)
	}
	encoded := p.Bytes()
	return encoded[:], nil
}
