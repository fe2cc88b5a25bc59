// Package types holds the wire- and cache-level data structures shared by
// every other package in the VM: the content-hash primary key, the
// host/guest memory ABI, the JSON call envelopes, and engine configuration.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/multiformats/go-multihash"
)

// ChecksumLength is the size in bytes of a Checksum (sha256 digest).
const ChecksumLength = 32

// ErrInvalidChecksum is returned when a byte slice cannot be interpreted as
// a Checksum.
var ErrInvalidChecksum = errors.New("invalid checksum")

// Checksum is the 32-byte content hash of an original Wasm binary. It is
// the primary key for every cache tier and for the blob store.
type Checksum [ChecksumLength]byte

// CreateChecksum hashes raw Wasm bytes into a Checksum.
func CreateChecksum(wasm []byte) Checksum {
	return Checksum(sha256.Sum256(wasm))
}

// ChecksumFromHex parses a hex-encoded checksum, e.g. a cache filename.
func ChecksumFromHex(s string) (Checksum, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Checksum{}, fmt.Errorf("%w: %v", ErrInvalidChecksum, err)
	}
	return ChecksumFromBytes(raw)
}

// ChecksumFromBytes validates and wraps a raw 32-byte digest.
func ChecksumFromBytes(raw []byte) (Checksum, error) {
	if len(raw) != ChecksumLength {
		return Checksum{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidChecksum, ChecksumLength, len(raw))
	}
	var c Checksum
	copy(c[:], raw)
	return c, nil
}

// String renders the checksum as lowercase hex — the form used for cache
// and blob-store filenames.
func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// Bytes returns the raw digest.
func (c Checksum) Bytes() []byte {
	return c[:]
}

// Multihash renders the checksum as a self-describing sha2-256 multihash
// string. This is a debug/log convenience only — it never appears on the
// consensus-critical path (filenames and cache keys always use String()).
func (c Checksum) Multihash() string {
	mh, err := multihash.Encode(c[:], multihash.SHA2_256)
	if err != nil {
		// Encode only fails for unsupported codes; SHA2_256 is always supported.
		return c.String()
	}
	return hex.EncodeToString(mh)
}
