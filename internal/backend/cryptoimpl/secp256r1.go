// secp256r1 (P-256) verification and recovery use the standard library's
// crypto/ecdsa and crypto/elliptic — no pack example imports a dedicated
// P-256-with-recovery library, and stdlib already carries NIST curve
// support, so this is the one Api primitive built without a third-party
// dependency (recorded in DESIGN.md).
package cryptoimpl

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"math/big"
)

var p256 = elliptic.P256()

// Secp256r1Verify checks a 64-byte compact (r||s) signature over a
// 32-byte hash against a 65-byte uncompressed public key.
func Secp256r1Verify(hash, sig, pubKeyBytes []byte) (bool, error) {
	if len(hash) != 32 {
		return false, fmt.Errorf("secp256r1: message hash must be 32 bytes")
	}
	if len(sig) != 64 {
		return false, fmt.Errorf("secp256r1: signature must be 64 bytes (r||s)")
	}
	x, y := elliptic.Unmarshal(p256, pubKeyBytes)
	if x == nil {
		return false, fmt.Errorf("secp256r1: invalid uncompressed public key")
	}
	pub := &ecdsa.PublicKey{Curve: p256, X: x, Y: y}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	return ecdsa.Verify(pub, hash, r, s), nil
}

// Secp256r1RecoverPubkey recovers the uncompressed public key from a
// compact signature, message hash, and recovery id by reconstructing the
// curve point R from its x-coordinate and solving for the public key as
// Q = r^-1 * (s*R - e*G), the standard ECDSA public-key-recovery formula.
func Secp256r1RecoverPubkey(hash, sig []byte, recoveryID byte) ([]byte, error) {
	if len(hash) != 32 || len(sig) != 64 {
		return nil, fmt.Errorf("secp256r1: expected 32-byte hash and 64-byte signature")
	}
	if recoveryID > 1 {
		return nil, fmt.Errorf("secp256r1: recovery id must be 0 or 1")
	}

	curve := p256
	params := curve.Params()
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	e := new(big.Int).SetBytes(hash)

	if r.Sign() == 0 || s.Sign() == 0 {
		return nil, fmt.Errorf("secp256r1: r and s must be non-zero")
	}

	// Reconstruct R.x; recoveryID's low bit selects which root of y^2 to
	// use (odd/even y), matching the convention secp256k1 recovery uses.
	rx := new(big.Int).Set(r)
	rySquared := new(big.Int).Exp(rx, big.NewInt(3), params.P)
	threeX := new(big.Int).Mul(big.NewInt(3), rx)
	rySquared.Sub(rySquared, threeX)
	rySquared.Add(rySquared, params.B)
	rySquared.Mod(rySquared, params.P)
	ry := new(big.Int).ModSqrt(rySquared, params.P)
	if ry == nil {
		return nil, fmt.Errorf("secp256r1: r is not a valid x-coordinate on the curve")
	}
	if ry.Bit(0) != uint(recoveryID&1) {
		ry.Sub(params.P, ry)
	}

	rInv := new(big.Int).ModInverse(r, params.N)
	if rInv == nil {
		return nil, fmt.Errorf("secp256r1: r has no modular inverse")
	}

	sRx, sRy := curve.ScalarMult(rx, ry, s.Bytes())
	eNeg := new(big.Int).Neg(e)
	eNeg.Mod(eNeg, params.N)
	eGx, eGy := curve.ScalarBaseMult(eNeg.Bytes())
	qx, qy := curve.Add(sRx, sRy, eGx, eGy)
	qx, qy = curve.ScalarMult(qx, qy, rInv.Bytes())

	return elliptic.Marshal(curve, qx, qy), nil
}
