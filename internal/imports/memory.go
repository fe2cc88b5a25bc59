// Package imports implements the fixed host-import ABI every contract
// sees (spec §4.6, C6): DB, Addr, Crypto, Query, and Utility functions,
// each taking only i32/i64 Region pointers. It is grounded on the
// teacher's internal/vm/host_functions.go (manual ptr/len bounds checking
// against wasmer.Memory.Data(), per-call gas charging through a shared
// environment), generalized from raw (ptr,len) pairs to the Region ABI
// (internal/types.Region) and from one hard-coded backend to the
// internal/backend interfaces.
//
// This package is engine-agnostic: it operates on the Memory interface
// below rather than *wasmer.Memory directly, so internal/instance's
// wasmer closures are a thin adapter rather than where the ABI logic
// lives — panics recovered at that adapter boundary reclassify as
// BackendError per spec §7, which is easiest to guarantee when the
// ABI logic itself never touches the engine's types.
package imports

import (
	"fmt"

	"github.com/empower1/wasmvm/internal/types"
)

// Memory is the minimal surface imports needs from a guest's linear
// memory: a live, directly-addressable byte slice. wasmer.Memory.Data()
// satisfies this trivially.
type Memory interface {
	Data() []byte
}

// Allocator lets host functions request guest-side buffers for output
// Regions, calling back into the guest's exported `allocate` function
// (spec §4.7 step 4 applies the same convention to host-initiated output).
type Allocator interface {
	Allocate(size uint32) (uint32, error)
}

// ReadRegion decodes a Region header at ptr and returns a copy of the
// bytes it describes.
func ReadRegion(mem Memory, ptr uint32) ([]byte, error) {
	data := mem.Data()
	if uint64(ptr)+types.RegionSize > uint64(len(data)) {
		return nil, fmt.Errorf("region header at %d out of bounds", ptr)
	}
	region, err := types.DecodeRegion(data[ptr : ptr+types.RegionSize])
	if err != nil {
		return nil, err
	}
	raw, err := region.Slice(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// WriteRegion allocates a guest buffer of len(payload) bytes via alloc,
// copies payload into it, then allocates a second guest buffer for the
// Region header, writes the header there, and returns the pointer to the
// new Region header, matching
// spec §4.7 step 5 ("read output Region, copy out bytes") run in
// reverse for host-to-guest data.
func WriteRegion(mem Memory, alloc Allocator, payload []byte) (uint32, error) {
	dataPtr, err := alloc.Allocate(uint32(len(payload)))
	if err != nil {
		return 0, fmt.Errorf("allocate(%d) failed: %w", len(payload), err)
	}
	data := mem.Data()
	if uint64(dataPtr)+uint64(len(payload)) > uint64(len(data)) {
		return 0, fmt.Errorf("allocated region at %d,%d out of bounds", dataPtr, len(payload))
	}
	copy(data[dataPtr:], payload)

	region := types.Region{Offset: dataPtr, Capacity: uint32(len(payload)), Length: uint32(len(payload))}
	headerPtr, err := alloc.Allocate(types.RegionSize)
	if err != nil {
		return 0, fmt.Errorf("allocate(region header) failed: %w", err)
	}
	encoded := region.Encode()
	data = mem.Data() // the header allocation may have grown memory
	if uint64(headerPtr)+types.RegionSize > uint64(len(data)) {
		return 0, fmt.Errorf("allocated region header at %d out of bounds", headerPtr)
	}
	copy(data[headerPtr:], encoded[:])
	return headerPtr, nil
}

// WriteErrRegion encodes a UTF-8 error string as a Region the guest can
// read; a zero-length Region (spec §4.6 "error regions of length 0 mean
// success") is the canonical success marker Addr functions return.
func WriteErrRegion(mem Memory, alloc Allocator, errMsg string) (uint32, error) {
	if errMsg == "" {
		return WriteRegion(mem, alloc, nil)
	}
	return WriteRegion(mem, alloc, []byte(errMsg))
}
