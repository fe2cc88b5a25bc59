package analysis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrTruncated is returned whenever the byte reader runs out of input
// mid-structure — always a StaticValidationError cause, never a panic.
var ErrTruncated = errors.New("truncated wasm module")

// byteReader is a minimal cursor over a Wasm binary. The analyzer hand-rolls
// this instead of importing a binary-format library because none of the
// retrieval pack's examples expose an importable public Wasm decoder: the
// two wazero trees in the pack (moby's vendored copy and the standalone
// wazero/wazevo engine file) are both `internal/` packages of their own
// module and cannot be imported from outside — recorded in DESIGN.md.
type byteReader struct {
	buf []byte
	pos int
}

func newByteReader(buf []byte) *byteReader {
	return &byteReader{buf: buf}
}

func (r *byteReader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *byteReader) byte() (byte, error) {
	if r.remaining() < 1 {
		return 0, ErrTruncated
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, ErrTruncated
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *byteReader) skip(n int) error {
	if n < 0 || r.remaining() < n {
		return ErrTruncated
	}
	r.pos += n
	return nil
}

// u32LEB reads an unsigned LEB128-encoded value, as used throughout the
// Wasm binary format for counts, indices, and section/function sizes.
func (r *byteReader) u32LEB() (uint32, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.byte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 35 {
			return 0, fmt.Errorf("%w: LEB128 overflow", ErrTruncated)
		}
	}
	if result > math.MaxUint32 {
		return 0, fmt.Errorf("%w: LEB128 value exceeds u32", ErrTruncated)
	}
	return uint32(result), nil
}

// i64SLEB reads a signed LEB128-encoded value, used for global/element init
// expression immediates.
func (r *byteReader) i64SLEB() (int64, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.byte()
		if err != nil {
			return 0, err
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && (b&0x40) != 0 {
		result |= -(int64(1) << shift)
	}
	return result, nil
}

func (r *byteReader) name() (string, error) {
	n, err := r.u32LEB()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readU32LE(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
