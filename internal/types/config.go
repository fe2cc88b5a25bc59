package types

// WasmLimits bounds the shape of an accepted Wasm module (spec §6). Every
// field is a configurable knob; the analyzer rejects modules exceeding
// them before compilation is ever attempted.
type WasmLimits struct {
	MaxBytes           uint32
	MaxFunctions       uint32
	MaxImports         uint32
	MaxExports         uint32
	MaxFunctionParams  uint32
	MaxOperandStack    uint32
	MaxGlobals         uint32
	MaxTableSize       uint32
}

// DefaultWasmLimits mirrors the reference CosmWasm deployment's defaults;
// operators needing stricter bounds override individual fields.
func DefaultWasmLimits() WasmLimits {
	return WasmLimits{
		MaxBytes:          800 * 1024,
		MaxFunctions:      10_000,
		MaxImports:        100,
		MaxExports:        100,
		MaxFunctionParams: 32,
		MaxOperandStack:   2048,
		MaxGlobals:        512,
		MaxTableSize:      4096,
	}
}

// Capability is a named feature tag a contract's custom section may
// require (spec §4.2, GLOSSARY "Capability"): "iterator", "staking",
// "stargate", and so on. A contract requiring a capability the host does
// not advertise in AvailableCapabilities is rejected at load time.
type Capability string

// CapabilitySet is an unordered set of Capability tags.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a CapabilitySet from a list of tags.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether the set contains cap.
func (s CapabilitySet) Has(cap Capability) bool {
	_, ok := s[cap]
	return ok
}

// Satisfies reports whether every capability in required is present in s
// (the host's advertised set).
func (s CapabilitySet) Satisfies(required CapabilitySet) bool {
	for c := range required {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// Config bundles every recognized engine-wide option from spec §6.
// "No environment variables are part of the spec" — Config is always
// constructed programmatically by the embedding host.
type Config struct {
	WasmLimits            WasmLimits
	CacheSize             uint64 // memory LRU byte budget
	InstanceMemoryLimit   uint32 // per-instance linear memory cap, in bytes
	GasMultiplier         uint64
	AvailableCapabilities CapabilitySet
}

// DefaultConfig returns a Config with the reference defaults from SPEC_FULL
// §6/§4.3.
func DefaultConfig() Config {
	return Config{
		WasmLimits:          DefaultWasmLimits(),
		CacheSize:           512 * 1024 * 1024,
		InstanceMemoryLimit: 32 * 1024 * 1024,
		GasMultiplier:       GasMultiplierDefault,
		AvailableCapabilities: NewCapabilitySet(
			"iterator", "stargate", "staking", "cosmwasm_1_1", "cosmwasm_1_2",
		),
	}
}
