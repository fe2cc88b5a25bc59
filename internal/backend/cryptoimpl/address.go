// Package cryptoimpl is the reference Api implementation (spec §4.4
// "Api"): address canonicalization/humanization plus the pure crypto
// primitives the host-import surface exposes. Address derivation is
// grounded on the teacher's internal/crypto/address_utils.go
// (RIPEMD160(SHA256(pubkey)) hashing, version byte, checksum), with the
// teacher's ad hoc hex encoding replaced by mr-tron/base58 — already a
// teacher dependency used elsewhere for DID multibase strings — so the
// human-readable form looks like a real chain address rather than a raw
// hex dump.
package cryptoimpl

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

const (
	AddressPrefix         = "ep1"
	addressVersionByte    = 0x00
	addressChecksumLength = 4
	PublicKeyHashLength   = 20
	fullAddressLength     = 1 + PublicKeyHashLength + addressChecksumLength
)

var (
	ErrInvalidAddressLength = errors.New("invalid address length")
	ErrInvalidAddressFormat = errors.New("invalid address format")
	ErrAddressChecksum      = errors.New("address checksum mismatch")
	ErrInvalidVersionByte   = errors.New("invalid address version byte")
)

// HashPublicKey derives a 20-byte address core from a raw public key:
// RIPEMD160(SHA256(pubkey)).
func HashPublicKey(pubKey []byte) ([]byte, error) {
	if len(pubKey) == 0 {
		return nil, fmt.Errorf("public key bytes must not be empty")
	}
	sha := sha256.Sum256(pubKey)
	h := ripemd160.New()
	h.Write(sha[:])
	return h.Sum(nil), nil
}

func addressChecksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:addressChecksumLength]
}

// EncodeAddress turns a 20-byte public key hash into the human-readable
// "ep1" + base58 form Humanize returns to the guest.
func EncodeAddress(pubKeyHash []byte) (string, error) {
	if len(pubKeyHash) != PublicKeyHashLength {
		return "", fmt.Errorf("%w: public key hash must be %d bytes", ErrInvalidAddressLength, PublicKeyHashLength)
	}
	payload := append([]byte{addressVersionByte}, pubKeyHash...)
	payload = append(payload, addressChecksum(payload)...)
	return AddressPrefix + base58.Encode(payload), nil
}

// DecodeAddress parses a human-readable address back into its raw public
// key hash, validating the version byte and checksum.
func DecodeAddress(address string) ([]byte, error) {
	if !strings.HasPrefix(address, AddressPrefix) {
		return nil, fmt.Errorf("%w: address does not start with %q", ErrInvalidAddressFormat, AddressPrefix)
	}
	raw, err := base58.Decode(strings.TrimPrefix(address, AddressPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddressFormat, err)
	}
	if len(raw) != fullAddressLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddressLength, fullAddressLength, len(raw))
	}
	version := raw[0]
	pubKeyHash := raw[1 : 1+PublicKeyHashLength]
	checksum := raw[1+PublicKeyHashLength:]
	if version != addressVersionByte {
		return nil, fmt.Errorf("%w: expected 0x%x, got 0x%x", ErrInvalidVersionByte, addressVersionByte, version)
	}
	if want := addressChecksum(raw[:fullAddressLength-addressChecksumLength]); !bytes.Equal(checksum, want) {
		return nil, ErrAddressChecksum
	}
	return pubKeyHash, nil
}

// IsValidAddress reports whether address parses as a well-formed,
// checksum-valid address without returning its decoded bytes.
func IsValidAddress(address string) bool {
	_, err := DecodeAddress(address)
	return err == nil
}
