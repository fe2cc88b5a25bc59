package imports

import (
	"fmt"

	"github.com/empower1/wasmvm/internal/environment"
	"github.com/empower1/wasmvm/internal/types"
)

// Addr implements the addr_* host-import category (spec §4.6 "Addr").
type Addr struct {
	Env *environment.Environment
	Mem Memory
}

// Validate implements addr_validate(src_ptr) -> err_region.
func (a Addr) Validate(alloc Allocator, srcPtr uint32) (uint32, error) {
	human, err := ReadRegion(a.Mem, srcPtr)
	if err != nil {
		return 0, fmt.Errorf("addr_validate: %w", err)
	}
	gasInfo, valErr := a.Env.Backend.Api.ValidateAddress(string(human))
	if chargeErr := a.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if valErr != nil {
		return WriteErrRegion(a.Mem, alloc, valErr.Error())
	}
	return WriteErrRegion(a.Mem, alloc, "")
}

// Canonicalize implements addr_canonicalize(src_ptr, dst_ptr) -> err_region.
// dst_ptr addresses a caller-owned Region header the canonical bytes are
// written into directly (no guest allocation round trip), matching the
// convention CosmWasm's wasmvm uses for this specific import.
func (a Addr) Canonicalize(alloc Allocator, srcPtr, dstPtr uint32) (uint32, error) {
	human, err := ReadRegion(a.Mem, srcPtr)
	if err != nil {
		return 0, fmt.Errorf("addr_canonicalize: %w", err)
	}
	canonical, gasInfo, canonErr := a.Env.Backend.Api.CanonicalAddress(string(human))
	if chargeErr := a.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if canonErr != nil {
		return WriteErrRegion(a.Mem, alloc, canonErr.Error())
	}
	if err := writeIntoCallerRegion(a.Mem, dstPtr, canonical); err != nil {
		return 0, fmt.Errorf("addr_canonicalize: %w", err)
	}
	return WriteErrRegion(a.Mem, alloc, "")
}

// Humanize implements addr_humanize(src_ptr, dst_ptr) -> err_region.
func (a Addr) Humanize(alloc Allocator, srcPtr, dstPtr uint32) (uint32, error) {
	canonical, err := ReadRegion(a.Mem, srcPtr)
	if err != nil {
		return 0, fmt.Errorf("addr_humanize: %w", err)
	}
	human, gasInfo, humErr := a.Env.Backend.Api.Humanize(canonical)
	if chargeErr := a.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if humErr != nil {
		return WriteErrRegion(a.Mem, alloc, humErr.Error())
	}
	if err := writeIntoCallerRegion(a.Mem, dstPtr, []byte(human)); err != nil {
		return 0, fmt.Errorf("addr_humanize: %w", err)
	}
	return WriteErrRegion(a.Mem, alloc, "")
}

// writeIntoCallerRegion writes payload into a Region the guest already
// allocated at regionPtr, failing if payload exceeds the Region's
// declared capacity (spec §8 "For every allocate(n) the host calls, the
// returned Region has capacity >= n").
func writeIntoCallerRegion(mem Memory, regionPtr uint32, payload []byte) error {
	data := mem.Data()
	if uint64(regionPtr)+types.RegionSize > uint64(len(data)) {
		return fmt.Errorf("region header at %d out of bounds", regionPtr)
	}
	region, err := types.DecodeRegion(data[regionPtr : regionPtr+types.RegionSize])
	if err != nil {
		return err
	}
	if uint32(len(payload)) > region.Capacity {
		return fmt.Errorf("payload of %d bytes exceeds region capacity %d", len(payload), region.Capacity)
	}
	if uint64(region.Offset)+uint64(len(payload)) > uint64(len(data)) {
		return fmt.Errorf("region payload at %d out of bounds", region.Offset)
	}
	copy(data[region.Offset:], payload)
	region.Length = uint32(len(payload))
	encoded := region.Encode()
	copy(data[regionPtr:regionPtr+types.RegionSize], encoded[:])
	return nil
}
