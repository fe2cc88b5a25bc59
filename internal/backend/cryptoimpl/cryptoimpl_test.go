package cryptoimpl

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func TestAddressHumanizeCanonicalizeRoundTrip(t *testing.T) {
	pubKey := make([]byte, 65)
	if _, err := rand.Read(pubKey); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	hash, err := HashPublicKey(pubKey)
	if err != nil {
		t.Fatalf("HashPublicKey: %v", err)
	}
	addr, err := EncodeAddress(hash)
	if err != nil {
		t.Fatalf("EncodeAddress: %v", err)
	}
	if !IsValidAddress(addr) {
		t.Fatalf("address %q should be valid", addr)
	}
	decoded, err := DecodeAddress(addr)
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	if !bytes.Equal(decoded, hash) {
		t.Fatalf("round trip mismatch: got %x, want %x", decoded, hash)
	}
}

func TestDecodeAddressRejectsBadChecksum(t *testing.T) {
	hash := make([]byte, PublicKeyHashLength)
	addr, err := EncodeAddress(hash)
	if err != nil {
		t.Fatalf("EncodeAddress: %v", err)
	}
	tampered := addr[:len(addr)-1] + "z"
	if IsValidAddress(tampered) {
		t.Fatal("tampered address should not validate")
	}
}

func TestEd25519VerifyRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	msg := []byte("hello wasmvm")
	sig := ed25519.Sign(priv, msg)

	ok, err := Ed25519Verify(msg, sig, pub)
	if err != nil {
		t.Fatalf("Ed25519Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected valid signature to verify")
	}

	ok, err = Ed25519Verify([]byte("tampered"), sig, pub)
	if err != nil {
		t.Fatalf("Ed25519Verify: %v", err)
	}
	if ok {
		t.Fatal("expected verification of tampered message to fail")
	}
}

func TestEd25519BatchVerify(t *testing.T) {
	const n = 3
	msgs := make([][]byte, n)
	sigs := make([][]byte, n)
	pubs := make([][]byte, n)
	for i := 0; i < n; i++ {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			t.Fatalf("GenerateKey: %v", err)
		}
		msgs[i] = []byte("msg")
		sigs[i] = ed25519.Sign(priv, msgs[i])
		pubs[i] = pub
	}
	ok, err := Ed25519BatchVerify(msgs, sigs, pubs)
	if err != nil {
		t.Fatalf("Ed25519BatchVerify: %v", err)
	}
	if !ok {
		t.Fatal("expected batch of valid signatures to verify")
	}

	sigs[1][0] ^= 0xFF
	ok, err = Ed25519BatchVerify(msgs, sigs, pubs)
	if err != nil {
		t.Fatalf("Ed25519BatchVerify: %v", err)
	}
	if ok {
		t.Fatal("expected batch with one corrupted signature to fail")
	}
}
