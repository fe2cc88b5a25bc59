package types

import "fmt"

// ModuleLayoutVersion bumps whenever the sidecar/serialization format
// changes shape. It is folded into the EngineFingerprint so a binary
// upgrade that changes layout invalidates every on-disk artifact.
const ModuleLayoutVersion = 1

// EngineFingerprint is the tuple (cpu-features, compiler-version,
// module-layout-version) rendered to a short string (GLOSSARY). Any
// change invalidates on-disk compiled artifacts: the cache simply treats
// a fingerprint mismatch as a cache miss for that tier.
type EngineFingerprint struct {
	CPUFeatures     string
	CompilerVersion string
	LayoutVersion   int
}

// String renders the fingerprint into the short form used as a cache
// subdirectory name.
func (f EngineFingerprint) String() string {
	return fmt.Sprintf("%s-%s-v%d", f.CompilerVersion, f.CPUFeatures, f.LayoutVersion)
}
