package imports

import (
	"fmt"

	"github.com/empower1/wasmvm/internal/environment"
	"github.com/empower1/wasmvm/internal/gascost"
)

// Util implements the debug/abort/gas host-import category (spec §4.6
// "Utility"), grounded on the teacher's BlockchainLogMessage: a flat base
// gas cost per call, with no per-byte gas charge; debug output is instead
// bounded by the Environment's cumulative debug-byte budget (spec §4.5).
type Util struct {
	Env *environment.Environment
	Mem Memory
}

// Debug implements debug(msg_ptr).
func (u Util) Debug(msgPtr uint32) error {
	msg, err := ReadRegion(u.Mem, msgPtr)
	if err != nil {
		return fmt.Errorf("debug: %w", err)
	}
	if err := u.Env.ChargeGas(gascost.CostDebug); err != nil {
		return err
	}
	if err := u.Env.ChargeDebug(len(msg)); err != nil {
		return err
	}
	u.Env.Logger.Debugf("contract debug: %s", msg)
	return nil
}

// Abort implements abort(msg_ptr): the guest's explicit unrecoverable
// failure signal, always fatal for the call.
func (u Util) Abort(msgPtr uint32) error {
	msg, err := ReadRegion(u.Mem, msgPtr)
	if err != nil {
		return fmt.Errorf("abort: %w", err)
	}
	if chargeErr := u.Env.ChargeGas(gascost.CostAbort); chargeErr != nil {
		return chargeErr
	}
	return fmt.Errorf("contract called abort: %s", msg)
}

// Gas implements gas(amount): the injector's instrumentation target,
// called at the head of every basic block with that block's precomputed
// cost (spec §4.3).
func (u Util) Gas(amount uint64) error {
	return u.Env.ChargeGas(amount)
}
