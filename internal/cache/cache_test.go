package cache

import (
	"os"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/empower1/wasmvm/internal/types"
	"github.com/empower1/wasmvm/testing/mockchain"
)

func minimalWasm() []byte {
	return mockchain.MinimalWasm("execute")
}

func TestWriteAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/nested/artifact.bin"
	if err := writeAtomic(path, []byte("hello")); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestCacheStoreAndGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, Options{Config: types.DefaultConfig(), Clock: clock.NewMock()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	wasm := minimalWasm()
	checksum, err := c.StoreCode(wasm)
	if err != nil {
		t.Fatalf("StoreCode: %v", err)
	}

	mod, err := c.Get(checksum)
	if err != nil {
		t.Fatalf("Get (miss path): %v", err)
	}
	if len(mod.Code.Report.EntryPoints) == 0 {
		t.Fatal("expected at least one entry point in compiled report")
	}

	snap := c.Snapshot()
	if snap.Misses != 0 {
		t.Fatalf("StoreCode+Get should not count as a pure miss when source is present, got misses=%d", snap.Misses)
	}
	if snap.HitsFS+snap.HitsMemory != 0 {
		t.Fatalf("expected no fs or memory hit on first load (compiled from source), got fs=%d memory=%d", snap.HitsFS, snap.HitsMemory)
	}

	mod2, err := c.Get(checksum)
	if err != nil {
		t.Fatalf("Get (memory hit): %v", err)
	}
	if mod2 != mod {
		t.Fatal("expected the second Get to return the same memory-resident CachedModule")
	}
	if c.Snapshot().HitsMemory == 0 {
		t.Fatal("expected a memory-tier hit on the second Get")
	}
}

func TestCacheGetMissingChecksumIsNoSuchContract(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, Options{Config: types.DefaultConfig()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	var bogus types.Checksum
	_, err = c.Get(bogus)
	if err == nil {
		t.Fatal("expected NoSuchContract for an unknown checksum")
	}
}

func TestCachePinBypassesEviction(t *testing.T) {
	dir := t.TempDir()
	cfg := types.DefaultConfig()
	c, err := New(dir, Options{Config: cfg, MemoryLRUBytes: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	wasm := minimalWasm()
	checksum, err := c.StoreCode(wasm)
	if err != nil {
		t.Fatalf("StoreCode: %v", err)
	}
	if err := c.Pin(checksum); err != nil {
		t.Fatalf("Pin: %v", err)
	}

	mod, err := c.Get(checksum)
	if err != nil {
		t.Fatalf("Get after pin: %v", err)
	}
	if mod == nil {
		t.Fatal("expected pinned module to be returned")
	}
	if c.Snapshot().HitsPinned == 0 {
		t.Fatal("expected a pinned-tier hit")
	}
}

func TestMemoryLRUEvictsOverCapacity(t *testing.T) {
	clk := clock.NewMock()
	lru := newMemoryLRU(10, 1, clk)

	var a, b types.Checksum
	a[0] = 1
	b[0] = 2

	lru.put(a, &CachedModule{sizeBytes: 6})
	clk.Add(1)
	lru.put(b, &CachedModule{sizeBytes: 6})

	if _, ok := lru.get(a); ok {
		t.Fatal("expected a to have been evicted once combined size exceeded capacity")
	}
	if _, ok := lru.get(b); !ok {
		t.Fatal("expected b to remain resident")
	}
}
