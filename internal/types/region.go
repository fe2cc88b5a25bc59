package types

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// RegionSize is the fixed on-wire size of a Region descriptor: three
// little-endian u32 fields (offset, capacity, length).
const RegionSize = 12

// ErrRegionOutOfBounds is returned whenever a Region's offset/capacity pair
// would read or write outside the guest's linear memory.
var ErrRegionOutOfBounds = errors.New("region out of bounds")

// Region is the guest-memory-side descriptor used to shuttle a byte slice
// across the host<->guest boundary (spec §4.1, §6). The producer of
// non-zero-length data owns the transfer; the consumer is responsible for
// calling the guest's deallocate export once it is done with the bytes.
type Region struct {
	Offset   uint32
	Capacity uint32
	Length   uint32
}

// Encode writes the Region as 12 little-endian bytes, the layout the guest
// expects at RegionPtr.
func (r Region) Encode() [RegionSize]byte {
	var buf [RegionSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], r.Offset)
	binary.LittleEndian.PutUint32(buf[4:8], r.Capacity)
	binary.LittleEndian.PutUint32(buf[8:12], r.Length)
	return buf
}

// DecodeRegion reads a Region from 12 little-endian bytes.
func DecodeRegion(buf []byte) (Region, error) {
	if len(buf) < RegionSize {
		return Region{}, fmt.Errorf("%w: region header needs %d bytes, got %d", ErrRegionOutOfBounds, RegionSize, len(buf))
	}
	return Region{
		Offset:   binary.LittleEndian.Uint32(buf[0:4]),
		Capacity: binary.LittleEndian.Uint32(buf[4:8]),
		Length:   binary.LittleEndian.Uint32(buf[8:12]),
	}, nil
}

// Validate enforces the Region invariants from the data model: length must
// not exceed capacity, and [offset, offset+capacity) must lie fully inside
// a memory of the given size.
func (r Region) Validate(memorySize uint32) error {
	if r.Length > r.Capacity {
		return fmt.Errorf("%w: length %d exceeds capacity %d", ErrRegionOutOfBounds, r.Length, r.Capacity)
	}
	end := uint64(r.Offset) + uint64(r.Capacity)
	if end > uint64(memorySize) {
		return fmt.Errorf("%w: [%d,%d) exceeds memory size %d", ErrRegionOutOfBounds, r.Offset, end, memorySize)
	}
	return nil
}

// Slice returns the data-bearing portion of memory ([Offset, Offset+Length))
// described by the Region, after validating its bounds.
func (r Region) Slice(memory []byte) ([]byte, error) {
	if err := r.Validate(uint32(len(memory))); err != nil {
		return nil, err
	}
	return memory[r.Offset : r.Offset+r.Length], nil
}
