package imports

import (
	"testing"

	"github.com/empower1/wasmvm/internal/backend"
	"github.com/empower1/wasmvm/internal/backend/memdb"
	"github.com/empower1/wasmvm/internal/environment"
	"github.com/empower1/wasmvm/internal/types"
)

// fakeMemory is a growable byte slice standing in for wasmer.Memory.
type fakeMemory struct{ buf []byte }

func (m *fakeMemory) Data() []byte { return m.buf }

// bumpAllocator hands out sequentially increasing offsets, growing the
// backing buffer as needed — good enough to exercise the Region ABI
// without a real guest allocate() export.
type bumpAllocator struct {
	mem  *fakeMemory
	next uint32
}

func (a *bumpAllocator) Allocate(size uint32) (uint32, error) {
	ptr := a.next
	needed := int(ptr + size)
	if needed > len(a.mem.buf) {
		grown := make([]byte, needed)
		copy(grown, a.mem.buf)
		a.mem.buf = grown
	}
	a.next += size
	return ptr, nil
}

func writeRegionForTest(t *testing.T, mem *fakeMemory, alloc *bumpAllocator, payload []byte) uint32 {
	t.Helper()
	ptr, err := WriteRegion(mem, alloc, payload)
	if err != nil {
		t.Fatalf("WriteRegion: %v", err)
	}
	return ptr
}

func newTestEnv(t *testing.T) (*environment.Environment, *fakeMemory, *bumpAllocator) {
	t.Helper()
	mem := &fakeMemory{buf: make([]byte, 1024)}
	alloc := &bumpAllocator{mem: mem, next: 1024}
	store := memdb.NewStore(nil)
	be := backend.Backend{Storage: store}
	env := environment.New(be, nil, false, 1_000_000, environment.DefaultLimits())
	return env, mem, alloc
}

func TestDBWriteReadRoundTrip(t *testing.T) {
	env, mem, alloc := newTestEnv(t)
	db := DB{Env: env, Mem: mem}

	keyPtr := writeRegionForTest(t, mem, alloc, []byte("greeting"))
	valPtr := writeRegionForTest(t, mem, alloc, []byte("hello"))

	if err := db.Write(keyPtr, valPtr); err != nil {
		t.Fatalf("Write: %v", err)
	}

	keyPtr2 := writeRegionForTest(t, mem, alloc, []byte("greeting"))
	outPtr, err := db.Read(alloc, keyPtr2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got, err := ReadRegion(mem, outPtr)
	if err != nil {
		t.Fatalf("ReadRegion(result): %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestDBWriteRejectedInReadOnlyMode(t *testing.T) {
	mem := &fakeMemory{buf: make([]byte, 1024)}
	alloc := &bumpAllocator{mem: mem, next: 1024}
	store := memdb.NewStore(nil)
	be := backend.Backend{Storage: store}
	env := environment.New(be, nil, true, 1_000_000, environment.DefaultLimits())
	db := DB{Env: env, Mem: mem}

	keyPtr := writeRegionForTest(t, mem, alloc, []byte("k"))
	valPtr := writeRegionForTest(t, mem, alloc, []byte("v"))
	if err := db.Write(keyPtr, valPtr); err == nil {
		t.Fatal("expected write to fail in read-only mode")
	}
}

func TestGasChargeExhaustsBudget(t *testing.T) {
	mem := &fakeMemory{buf: make([]byte, 8)}
	store := memdb.NewStore(nil)
	be := backend.Backend{Storage: store}
	env := environment.New(be, nil, false, 10, environment.DefaultLimits())
	u := Util{Env: env, Mem: mem}
	if err := u.Gas(5); err != nil {
		t.Fatalf("Gas(5): %v", err)
	}
	if err := u.Gas(6); err == nil {
		t.Fatal("expected OutOfGas on second charge")
	} else if !types.IsOutOfGas(err) {
		t.Fatalf("expected OutOfGas error, got %v", err)
	}
}
