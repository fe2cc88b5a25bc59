package imports

import (
	"context"
	"fmt"

	"github.com/empower1/wasmvm/internal/backend"
	"github.com/empower1/wasmvm/internal/environment"
)

// DB implements the db_* host-import category (spec §4.6 "DB"): a flat
// per-contract key/value namespace with ordered range scans. Every
// method returns the error code convention the teacher established in
// BlockchainSetStorage/BlockchainGetStorage generalized to Region I/O.
type DB struct {
	Env *environment.Environment
	Mem Memory
}

// Read implements db_read(key_ptr) -> value_region. A missing key
// returns an empty Region, not an error — absence is ordinary, not
// exceptional (spec §4.4 Storage.get returns "value?").
func (d DB) Read(alloc Allocator, keyPtr uint32) (uint32, error) {
	key, err := ReadRegion(d.Mem, keyPtr)
	if err != nil {
		return 0, fmt.Errorf("db_read: %w", err)
	}
	value, gasInfo, err := d.Env.Backend.Storage.Get(context.Background(), key)
	if chargeErr := d.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if err != nil {
		return 0, fmt.Errorf("db_read: backend error: %w", err)
	}
	return WriteRegion(d.Mem, alloc, value)
}

// Write implements db_write(key_ptr, value_ptr). It fails in read-only
// mode with an error; db_write has no return value, so that error aborts
// the call and the guest never sees a negative return code.
func (d DB) Write(keyPtr, valuePtr uint32) error {
	if err := d.Env.CheckWriteAllowed(); err != nil {
		return fmt.Errorf("db_write: %w", err)
	}
	key, err := ReadRegion(d.Mem, keyPtr)
	if err != nil {
		return fmt.Errorf("db_write: %w", err)
	}
	value, err := ReadRegion(d.Mem, valuePtr)
	if err != nil {
		return fmt.Errorf("db_write: %w", err)
	}
	gasInfo, err := d.Env.Backend.Storage.Set(context.Background(), key, value)
	if chargeErr := d.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return chargeErr
	}
	if err != nil {
		return fmt.Errorf("db_write: backend error: %w", err)
	}
	return nil
}

// Remove implements db_remove(key_ptr).
func (d DB) Remove(keyPtr uint32) error {
	if err := d.Env.CheckWriteAllowed(); err != nil {
		return fmt.Errorf("db_remove: %w", err)
	}
	key, err := ReadRegion(d.Mem, keyPtr)
	if err != nil {
		return fmt.Errorf("db_remove: %w", err)
	}
	gasInfo, err := d.Env.Backend.Storage.Remove(context.Background(), key)
	if chargeErr := d.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return chargeErr
	}
	if err != nil {
		return fmt.Errorf("db_remove: backend error: %w", err)
	}
	return nil
}

// Scan implements db_scan(start_ptr, end_ptr, order) -> iter_id. nil
// start/end Regions (zero length) mean unbounded, per spec §4.4.
func (d DB) Scan(startPtr, endPtr uint32, order int32) (uint32, error) {
	start, err := regionOrNil(d.Mem, startPtr)
	if err != nil {
		return 0, fmt.Errorf("db_scan: %w", err)
	}
	end, err := regionOrNil(d.Mem, endPtr)
	if err != nil {
		return 0, fmt.Errorf("db_scan: %w", err)
	}
	dir := backend.Ascending
	if order != 0 {
		dir = backend.Descending
	}
	id, gasInfo, err := d.Env.Backend.Storage.Scan(context.Background(), start, end, dir)
	if chargeErr := d.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if err != nil {
		return 0, fmt.Errorf("db_scan: backend error: %w", err)
	}
	d.Env.RegisterIterator(id)
	return uint32(id), nil
}

// Next implements db_next(iter_id) -> kv_region. Draining past the end
// returns an empty Region (spec §4.4 "next drains").
func (d DB) Next(alloc Allocator, iterID uint32) (uint32, error) {
	id := backend.IteratorID(iterID)
	if err := d.Env.CheckIterator(id); err != nil {
		return 0, fmt.Errorf("db_next: %w", err)
	}
	kv, gasInfo, err := d.Env.Backend.Storage.Next(context.Background(), id)
	if chargeErr := d.Env.ChargeGasInfo(gasInfo); chargeErr != nil {
		return 0, chargeErr
	}
	if err != nil {
		return 0, fmt.Errorf("db_next: backend error: %w", err)
	}
	if kv == nil {
		return WriteRegion(d.Mem, alloc, nil)
	}
	payload := append(append([]byte(nil), kv.Key...), kv.Value...)
	return WriteRegion(d.Mem, alloc, payload)
}

func regionOrNil(mem Memory, ptr uint32) ([]byte, error) {
	if ptr == 0 {
		return nil, nil
	}
	b, err := ReadRegion(mem, ptr)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	return b, nil
}
