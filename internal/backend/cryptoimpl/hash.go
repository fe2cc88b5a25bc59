package cryptoimpl

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// SHA256 hashes data with the standard library's implementation.
func SHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Keccak256 hashes data with Ethereum-style Keccak (the pre-standardization
// SHA-3 padding), via golang.org/x/crypto/sha3 — the same dependency the
// pack's go-ethereum-derived repos use for this exact algorithm.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// Blake2b256 hashes data with BLAKE2b-256.
func Blake2b256(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

// Blake3 hashes data with BLAKE3, via lukechampine.com/blake3 — a pack
// dependency already carried for its speed on larger contract blobs.
func Blake3(data []byte) []byte {
	sum := blake3.Sum256(data)
	return sum[:]
}

// Argon2id derives a key from password material with the memory-hard
// Argon2id KDF. No guest-visible import and no command in this module
// calls it — argon2id is not part of the consensus-critical crypto
// surface, it is ambient tooling support.
func Argon2id(password, salt []byte, time, memoryKiB uint32, threads uint8, keyLen uint32) []byte {
	return argon2.IDKey(password, salt, time, memoryKiB, threads, keyLen)
}

// Hash dispatches by algorithm name to the matching function, used by the
// generic hash-by-name host import (internal/imports/crypto.go).
func Hash(name string, data []byte) ([]byte, error) {
	switch name {
	case "sha256":
		return SHA256(data), nil
	case "keccak256":
		return Keccak256(data), nil
	case "blake2b":
		return Blake2b256(data), nil
	case "blake3":
		return Blake3(data), nil
	default:
		return nil, fmt.Errorf("cryptoimpl: unknown hash algorithm %q", name)
	}
}
