package types

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the VM error taxonomy (spec §7): kinds, not Go
// types, so a caller's switch stays exhaustive without importing every
// package that can originate one.
type ErrorKind int

const (
	KindStaticValidation ErrorKind = iota
	KindCompilation
	KindNoSuchContract
	KindInstantiation
	KindOutOfGas
	KindTrap
	KindBackend
	KindUser
	KindContract
)

func (k ErrorKind) String() string {
	switch k {
	case KindStaticValidation:
		return "StaticValidationError"
	case KindCompilation:
		return "CompilationError"
	case KindNoSuchContract:
		return "NoSuchContract"
	case KindInstantiation:
		return "InstantiationError"
	case KindOutOfGas:
		return "OutOfGas"
	case KindTrap:
		return "Trap"
	case KindBackend:
		return "BackendError"
	case KindUser:
		return "UserError"
	case KindContract:
		return "ContractError"
	default:
		return "UnknownError"
	}
}

// VMError is the structured error surfaced to the host at every fatal
// boundary named in spec §7. Reason carries the human-readable detail;
// Cause, when present, is the underlying Go error that triggered it.
type VMError struct {
	Kind   ErrorKind
	Reason string
	Cause  error
}

func (e *VMError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *VMError) Unwrap() error { return e.Cause }

func newErr(kind ErrorKind, reason string, cause error) *VMError {
	return &VMError{Kind: kind, Reason: reason, Cause: cause}
}

// StaticValidationError reports a module rejected by the static analyzer
// (§4.2). Fatal and never cached.
func StaticValidationError(reason string, cause error) *VMError {
	return newErr(KindStaticValidation, reason, cause)
}

// CompilationErrorf reports an engine compile failure on an already
// validated module.
func CompilationErrorf(reason string, cause error) *VMError {
	return newErr(KindCompilation, reason, cause)
}

// NoSuchContractErrorf reports a checksum absent from every cache tier and
// the blob store.
func NoSuchContractErrorf(checksum string) *VMError {
	return newErr(KindNoSuchContract, fmt.Sprintf("no such contract: %s", checksum), nil)
}

// InstantiationErrorf reports a memory-limit or import-wiring failure
// during wasmer instantiation.
func InstantiationErrorf(reason string, cause error) *VMError {
	return newErr(KindInstantiation, reason, cause)
}

// OutOfGasError reports either gas counter reaching zero.
func OutOfGasError() *VMError {
	return newErr(KindOutOfGas, "gas meter exhausted", nil)
}

// TrapErrorf reports a Wasm trap: unreachable, division by zero, or an
// out-of-bounds access.
func TrapErrorf(reason string, cause error) *VMError {
	return newErr(KindTrap, reason, cause)
}

// BackendErrorf reports an unrecoverable Storage/Api/Querier failure, or a
// panic recovered at the host-import boundary.
func BackendErrorf(reason string, cause error) *VMError {
	return newErr(KindBackend, reason, cause)
}

// UserErrorf reports a caller mistake that never reached the guest at
// all: an unrecognized entry point, a malformed Env/Info/Msg the host
// itself constructed, or similar misuse of the calling convention.
func UserErrorf(reason string, cause error) *VMError {
	return newErr(KindUser, reason, cause)
}

// ContractErrorf wraps the `{"error": "..."}` half of an envelope a
// guest returned deliberately — a successful call from the engine's
// point of view, but a failure from the contract's.
func ContractErrorf(reason string) *VMError {
	return newErr(KindContract, reason, nil)
}

// IsOutOfGas reports whether err is (or wraps) an OutOfGas VMError.
func IsOutOfGas(err error) bool {
	var ve *VMError
	if !errors.As(err, &ve) {
		return false
	}
	return ve.Kind == KindOutOfGas
}
