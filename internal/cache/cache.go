// Package cache implements the five-tier Compiled Module cache (spec
// §4.8, C8): pinned -> in-memory LRU -> on-disk -> source blob store ->
// miss. It is grounded on the teacher's internal/state.State, the one
// place in the teacher repo that already guards a shared map with a
// sync.RWMutex and exposes get/set/delete over it; this package
// generalizes that single-map discipline into four cooperating tiers plus
// the size-bounded eviction and compile de-duplication §4.8/§5 require.
package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/cespare/xxhash/v2"
	"github.com/empower1/wasmvm/internal/analysis"
	"github.com/empower1/wasmvm/internal/instance"
	"github.com/empower1/wasmvm/internal/instrument"
	"github.com/empower1/wasmvm/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// layoutVersion is folded into the on-disk path so an engine or injector
// upgrade never deserializes a stale artifact (spec §4.8 "stale entries
// (fingerprint mismatch) are skipped").
const layoutVersion = 1

// Fingerprint identifies the exact (engine, instrumentation) pairing a
// compiled artifact was produced under (GLOSSARY "Engine fingerprint").
// Changing InstrumentVersion or the wasmer-go version changes this value,
// invalidating every on-disk artifact without touching the source blobs.
func Fingerprint() string {
	return fmt.Sprintf("wasmer-go-v1.0.4-instrument-v%d-layout-v%d", instrument.InstrumentVersion, layoutVersion)
}

// CachedModule is what every tier above "source" stores: the compiled
// Code plus the fingerprint it was built under.
type CachedModule struct {
	Code        *instance.Code
	Fingerprint string
	sizeBytes   int
}

// Options configures a Cache at construction.
type Options struct {
	Config          types.Config
	MemoryLRUBytes  uint64 // 0 uses Config.CacheSize
	StripeCount     int    // memory-LRU lock striping, default 16
	Clock           clock.Clock
	Logger          *zap.SugaredLogger
}

// Cache is the process-wide object spec §9 calls for: constructed once at
// host startup with an explicit lifecycle (New/Close), borrowed by every
// other component.
type Cache struct {
	baseDir string
	cfg     types.Config
	logger  *zap.SugaredLogger
	clock   clock.Clock

	pinnedMu sync.RWMutex
	pinned   map[types.Checksum]*CachedModule

	lru *memoryLRU

	group singleflight.Group

	metrics Metrics
}

// New constructs a Cache rooted at baseDir, creating the on-disk
// directory layout (spec §4.8 tiers 3/4) if it does not already exist.
func New(baseDir string, opts Options) (*Cache, error) {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.StripeCount <= 0 {
		opts.StripeCount = 16
	}
	lruBytes := opts.MemoryLRUBytes
	if lruBytes == 0 {
		lruBytes = opts.Config.CacheSize
	}

	for _, sub := range []string{"cache/modules", "state/wasm"} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("cache: failed to create %s: %w", sub, err)
		}
	}

	return &Cache{
		baseDir: baseDir,
		cfg:     opts.Config,
		logger:  opts.Logger,
		clock:   opts.Clock,
		pinned:  make(map[types.Checksum]*CachedModule),
		lru:     newMemoryLRU(lruBytes, opts.StripeCount, opts.Clock),
	}, nil
}

// Close releases whatever resources the Cache holds. Today this is a
// no-op beyond documenting the explicit-shutdown lifecycle spec §9
// requires; a future on-disk write-behind queue would drain here.
func (c *Cache) Close() error {
	return nil
}

// StoreCode parses and validates a new contract's Wasm bytes against the
// static policy and persists them to the source tier (spec §4.8 tier 4's
// write path, invoked the first time a checksum is seen rather than on
// every Get miss). Instrumentation and compilation happen on the first Get.
func (c *Cache) StoreCode(wasmBytes []byte) (types.Checksum, error) {
	checksum := types.CreateChecksum(wasmBytes)
	m, err := analysis.Parse(wasmBytes)
	if err != nil {
		return checksum, types.StaticValidationError("failed to parse module", err)
	}
	if _, err := analysis.Validate(m, len(wasmBytes), c.cfg); err != nil {
		return checksum, err
	}
	if err := writeAtomic(c.sourcePath(checksum), wasmBytes); err != nil {
		return checksum, fmt.Errorf("cache: failed to persist source blob: %w", err)
	}
	return checksum, nil
}

// Pin loads and compiles checksum (if not already resident) and installs
// it in the never-evicted pinned tier (spec §4.8 tier 1).
func (c *Cache) Pin(checksum types.Checksum) error {
	mod, err := c.Get(checksum)
	if err != nil {
		return err
	}
	c.pinnedMu.Lock()
	c.pinned[checksum] = mod
	c.pinnedMu.Unlock()
	return nil
}

// Unpin removes checksum from the pinned tier; it remains reachable
// through the memory LRU or disk tiers on the next Get.
func (c *Cache) Unpin(checksum types.Checksum) {
	c.pinnedMu.Lock()
	delete(c.pinned, checksum)
	c.pinnedMu.Unlock()
}

// Get runs the five-tier lookup from spec §4.8 for checksum, compiling
// and caching on a miss. Concurrent misses on the same checksum serialize
// through singleflight rather than a hand-rolled per-key mutex map (spec
// §5 "concurrent misses on the same checksum serialize on a per-checksum
// lock").
func (c *Cache) Get(checksum types.Checksum) (*CachedModule, error) {
	c.pinnedMu.RLock()
	if mod, ok := c.pinned[checksum]; ok {
		c.pinnedMu.RUnlock()
		c.metrics.HitsPinned.Add(1)
		return mod, nil
	}
	c.pinnedMu.RUnlock()

	if mod, ok := c.lru.get(checksum); ok {
		c.metrics.HitsMemory.Add(1)
		return mod, nil
	}

	key := hex.EncodeToString(checksum[:])
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.loadMiss(checksum)
	})
	if err != nil {
		return nil, err
	}
	return result.(*CachedModule), nil
}

func (c *Cache) loadMiss(checksum types.Checksum) (*CachedModule, error) {
	if mod, ok := c.readDisk(checksum); ok {
		c.metrics.HitsFS.Add(1)
		c.lru.put(checksum, mod)
		return mod, nil
	}

	wasmBytes, err := os.ReadFile(c.sourcePath(checksum))
	if err != nil {
		c.metrics.Misses.Add(1)
		return nil, types.NoSuchContractErrorf(checksum.String())
	}

	code, err := instance.Compile(wasmBytes, c.cfg)
	if err != nil {
		return nil, err
	}
	mod := &CachedModule{Code: code, Fingerprint: Fingerprint(), sizeBytes: len(wasmBytes)}
	if err := c.writeDisk(checksum, mod); err != nil {
		c.logger.Warnw("cache: failed to persist compiled artifact", "checksum", checksum.String(), "error", err)
	}
	c.lru.put(checksum, mod)
	return mod, nil
}

func (c *Cache) sourcePath(checksum types.Checksum) string {
	return filepath.Join(c.baseDir, "state", "wasm", hex.EncodeToString(checksum[:]))
}

func (c *Cache) diskPath(checksum types.Checksum) string {
	return filepath.Join(c.baseDir, "cache", "modules", fmt.Sprintf("v%d", layoutVersion), Fingerprint(), hex.EncodeToString(checksum[:]))
}

// readDisk deserializes a cached artifact, "trusting our own cache
// directory" (spec §4.8 tier 3) rather than re-validating — a fingerprint
// mismatch (directory layout changed) or the file vanishing under us
// (another process pruned it) both degrade to a clean miss instead of an
// error, since both conditions just mean "re-derive from source."
func (c *Cache) readDisk(checksum types.Checksum) (*CachedModule, bool) {
	raw, err := os.ReadFile(c.diskPath(checksum))
	if err != nil {
		return nil, false
	}
	code, err := decodeSerializedCode(raw)
	if err != nil {
		return nil, false
	}
	return &CachedModule{Code: code, Fingerprint: Fingerprint(), sizeBytes: len(raw)}, true
}

func (c *Cache) writeDisk(checksum types.Checksum, mod *CachedModule) error {
	raw, err := encodeSerializedCode(mod.Code)
	if err != nil {
		return err
	}
	return writeAtomic(c.diskPath(checksum), raw)
}

// writeAtomic writes to a temp file in the destination's directory and
// renames over the target (spec §4.8 "written via temp-file + os.Rename"),
// so a reader never observes a partially written artifact.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// stripeFor deterministically assigns a checksum to one of the memory
// LRU's lock stripes (spec §5 "keep the hit path's critical section
// short"), using xxhash the way a striped-map implementation in the
// ecosystem typically would.
func stripeFor(checksum types.Checksum, stripeCount int) int {
	return int(xxhash.Sum64(checksum[:]) % uint64(stripeCount))
}
