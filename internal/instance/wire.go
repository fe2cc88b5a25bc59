package instance

import (
	"github.com/wasmerio/wasmer-go/wasmer"
)

// buildImportObject registers the full §4.6 host-import surface against
// store, the way the teacher's ExecuteContract builds envImports — except
// spread across db.go/addr.go/crypto.go/query.go/util.go's category
// structs instead of ten flat functions in one map literal. Every closure
// recovers a panic into a BackendError (wrapPanic) before it can unwind
// into the wasmer C boundary.
func buildImportObject(store *wasmer.Store, henv *hostEnv) *wasmer.ImportObject {
	i32 := wasmer.I32
	ft := func(params, results []wasmer.ValueKind) *wasmer.FunctionType {
		return wasmer.NewFunctionType(wasmer.NewValueTypes(params...), wasmer.NewValueTypes(results...))
	}
	fn := func(kind *wasmer.FunctionType, f func(env interface{}, args []wasmer.Value) ([]wasmer.Value, error)) wasmer.IntoExtern {
		return wasmer.NewFunctionWithEnvironment(store, kind, henv, f)
	}

	imp := wasmer.NewImportObject()
	imp.Register("env", map[string]wasmer.IntoExtern{
		"db_read":    fn(ft([]wasmer.ValueKind{i32}, []wasmer.ValueKind{i32}), hfDBRead),
		"db_write":   fn(ft([]wasmer.ValueKind{i32, i32}, nil), hfDBWrite),
		"db_remove":  fn(ft([]wasmer.ValueKind{i32}, nil), hfDBRemove),
		"db_scan":    fn(ft([]wasmer.ValueKind{i32, i32, i32}, []wasmer.ValueKind{i32}), hfDBScan),
		"db_next":    fn(ft([]wasmer.ValueKind{i32}, []wasmer.ValueKind{i32}), hfDBNext),

		"addr_validate":     fn(ft([]wasmer.ValueKind{i32}, []wasmer.ValueKind{i32}), hfAddrValidate),
		"addr_canonicalize": fn(ft([]wasmer.ValueKind{i32, i32}, []wasmer.ValueKind{i32}), hfAddrCanonicalize),
		"addr_humanize":     fn(ft([]wasmer.ValueKind{i32, i32}, []wasmer.ValueKind{i32}), hfAddrHumanize),

		"secp256k1_verify":          fn(ft([]wasmer.ValueKind{i32, i32, i32}, []wasmer.ValueKind{i32}), hfSecp256k1Verify),
		"secp256k1_recover_pubkey":  fn(ft([]wasmer.ValueKind{i32, i32, i32}, []wasmer.ValueKind{i32}), hfSecp256k1Recover),
		"secp256r1_verify":          fn(ft([]wasmer.ValueKind{i32, i32, i32}, []wasmer.ValueKind{i32}), hfSecp256r1Verify),
		"secp256r1_recover_pubkey":  fn(ft([]wasmer.ValueKind{i32, i32, i32}, []wasmer.ValueKind{i32}), hfSecp256r1Recover),
		"ed25519_verify":            fn(ft([]wasmer.ValueKind{i32, i32, i32}, []wasmer.ValueKind{i32}), hfEd25519Verify),
		"ed25519_batch_verify":      fn(ft([]wasmer.ValueKind{i32}, []wasmer.ValueKind{i32}), hfEd25519BatchVerify),
		"bls12_381_aggregate_g1":    fn(ft([]wasmer.ValueKind{i32}, []wasmer.ValueKind{i32}), hfBLSAggregateG1),
		"bls12_381_aggregate_g2":    fn(ft([]wasmer.ValueKind{i32}, []wasmer.ValueKind{i32}), hfBLSAggregateG2),
		"bls12_381_pairing_equality": fn(ft([]wasmer.ValueKind{i32}, []wasmer.ValueKind{i32}), hfBLSPairingEquality),
		"bls12_381_hash_to_g1":      fn(ft([]wasmer.ValueKind{i32, i32}, []wasmer.ValueKind{i32}), hfBLSHashToG1),
		"bls12_381_hash_to_g2":      fn(ft([]wasmer.ValueKind{i32, i32}, []wasmer.ValueKind{i32}), hfBLSHashToG2),

		"query_chain": fn(ft([]wasmer.ValueKind{i32}, []wasmer.ValueKind{i32}), hfQueryChain),

		"debug": fn(ft([]wasmer.ValueKind{i32}, nil), hfDebug),
		"abort": fn(ft([]wasmer.ValueKind{i32}, nil), hfAbort),
		"gas":   fn(ft([]wasmer.ValueKind{wasmer.I64}, nil), hfGas),
	})
	return imp
}

func u32(v wasmer.Value) uint32 { return uint32(v.I32()) }

func i32Result(v uint32) []wasmer.Value { return []wasmer.Value{wasmer.NewI32(int32(v))} }

func boolResult(b bool) []wasmer.Value {
	if b {
		return i32Result(0)
	}
	return i32Result(1)
}

func hfDBRead(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("db_read", &err)
	h := env.(*hostEnv)
	ptr, err := h.db.Read(h.alloc, u32(args[0]))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfDBWrite(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("db_write", &err)
	h := env.(*hostEnv)
	return nil, h.db.Write(u32(args[0]), u32(args[1]))
}

func hfDBRemove(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("db_remove", &err)
	h := env.(*hostEnv)
	return nil, h.db.Remove(u32(args[0]))
}

func hfDBScan(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("db_scan", &err)
	h := env.(*hostEnv)
	id, err := h.db.Scan(u32(args[0]), u32(args[1]), args[2].I32())
	if err != nil {
		return nil, err
	}
	return i32Result(id), nil
}

func hfDBNext(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("db_next", &err)
	h := env.(*hostEnv)
	ptr, err := h.db.Next(h.alloc, u32(args[0]))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfAddrValidate(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("addr_validate", &err)
	h := env.(*hostEnv)
	ptr, err := h.addr.Validate(h.alloc, u32(args[0]))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfAddrCanonicalize(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("addr_canonicalize", &err)
	h := env.(*hostEnv)
	ptr, err := h.addr.Canonicalize(h.alloc, u32(args[0]), u32(args[1]))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfAddrHumanize(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("addr_humanize", &err)
	h := env.(*hostEnv)
	ptr, err := h.addr.Humanize(h.alloc, u32(args[0]), u32(args[1]))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfSecp256k1Verify(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("secp256k1_verify", &err)
	h := env.(*hostEnv)
	ok, err := h.crypto.Secp256k1Verify(u32(args[0]), u32(args[1]), u32(args[2]))
	if err != nil {
		return nil, err
	}
	return boolResult(ok), nil
}

func hfSecp256k1Recover(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("secp256k1_recover_pubkey", &err)
	h := env.(*hostEnv)
	ptr, err := h.crypto.Secp256k1RecoverPubkey(h.alloc, u32(args[0]), u32(args[1]), byte(args[2].I32()))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfSecp256r1Verify(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("secp256r1_verify", &err)
	h := env.(*hostEnv)
	ok, err := h.crypto.Secp256r1Verify(u32(args[0]), u32(args[1]), u32(args[2]))
	if err != nil {
		return nil, err
	}
	return boolResult(ok), nil
}

func hfSecp256r1Recover(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("secp256r1_recover_pubkey", &err)
	h := env.(*hostEnv)
	ptr, err := h.crypto.Secp256r1RecoverPubkey(h.alloc, u32(args[0]), u32(args[1]), byte(args[2].I32()))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfEd25519Verify(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("ed25519_verify", &err)
	h := env.(*hostEnv)
	ok, err := h.crypto.Ed25519Verify(u32(args[0]), u32(args[1]), u32(args[2]))
	if err != nil {
		return nil, err
	}
	return boolResult(ok), nil
}

func hfEd25519BatchVerify(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("ed25519_batch_verify", &err)
	h := env.(*hostEnv)
	ok, err := h.crypto.Ed25519BatchVerify(u32(args[0]))
	if err != nil {
		return nil, err
	}
	return boolResult(ok), nil
}

func hfBLSAggregateG1(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("bls12_381_aggregate_g1", &err)
	h := env.(*hostEnv)
	ptr, err := h.crypto.BLS12381AggregateG1(h.alloc, u32(args[0]))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfBLSAggregateG2(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("bls12_381_aggregate_g2", &err)
	h := env.(*hostEnv)
	ptr, err := h.crypto.BLS12381AggregateG2(h.alloc, u32(args[0]))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfBLSPairingEquality(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("bls12_381_pairing_equality", &err)
	h := env.(*hostEnv)
	ok, err := h.crypto.BLS12381PairingEquality(u32(args[0]))
	if err != nil {
		return nil, err
	}
	return boolResult(ok), nil
}

func hfBLSHashToG1(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("bls12_381_hash_to_g1", &err)
	h := env.(*hostEnv)
	ptr, err := h.crypto.BLS12381HashToG1(h.alloc, u32(args[0]), u32(args[1]))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfBLSHashToG2(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("bls12_381_hash_to_g2", &err)
	h := env.(*hostEnv)
	ptr, err := h.crypto.BLS12381HashToG2(h.alloc, u32(args[0]), u32(args[1]))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfQueryChain(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("query_chain", &err)
	h := env.(*hostEnv)
	ptr, err := h.query.QueryChain(h.alloc, u32(args[0]))
	if err != nil {
		return nil, err
	}
	return i32Result(ptr), nil
}

func hfDebug(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("debug", &err)
	h := env.(*hostEnv)
	return nil, h.util.Debug(u32(args[0]))
}

func hfAbort(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("abort", &err)
	h := env.(*hostEnv)
	return nil, h.util.Abort(u32(args[0]))
}

func hfGas(env interface{}, args []wasmer.Value) (out []wasmer.Value, err error) {
	defer wrapPanic("gas", &err)
	h := env.(*hostEnv)
	return nil, h.util.Gas(uint64(args[0].I64()))
}
