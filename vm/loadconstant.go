package vm

import "fmt"

// LoadConstant is the accessor for the constant-load family: ldc, ldc_w,
// ldc2_w and their quickened forms.
type LoadConstant struct {
	Bytecode
}

// NewLoadConstant returns a constant-load view of the instruction at bci.
func NewLoadConstant(m *Method, bci int) LoadConstant {
	lc := LoadConstant{NewBytecode(m, bci)}
	if debugChecks {
		lc.Verify()
	}
	return lc
}

// IsValid reports whether the instruction loads a constant.
func (lc LoadConstant) IsValid() bool {
	switch lc.JavaCode() {
	case OpLdc, OpLdcW, OpLdc2W:
		return true
	}
	return false
}

// Verify panics unless the view sits on a constant load.
func (lc LoadConstant) Verify() {
	if debugChecks && !lc.IsValid() {
		panic(fmt.Sprintf("vm.LoadConstant: %v at bci %d of %s does not load a constant", lc.Code(), lc.bci, lc.method))
	}
}

// RawIndex returns the operand as encoded: one byte for the ldc forms,
// two for the rest. A cache slot after quickening, a pool index before.
func (lc LoadConstant) RawIndex() uint32 {
	rawc := lc.Code()
	if debugChecks && rawc == OpWide {
		panic("vm.LoadConstant.RawIndex: constant loads take no wide prefix")
	}
	if rawc.JavaCode() == OpLdc {
		return lc.IndexU1(rawc)
	}
	return lc.IndexU2(rawc, false)
}

// HasCacheIndex reports whether the operand is a cache slot, which is
// exactly when the instruction has been quickened.
func (lc LoadConstant) HasCacheIndex() bool {
	return lc.Code().Flags(false).Has(FmtHasCacheIndex)
}

// PoolIndex returns the pool slot of the constant, mapping a cache slot
// back through the cache.
func (lc LoadConstant) PoolIndex() uint32 {
	index := lc.RawIndex()
	if lc.HasCacheIndex() {
		cache := lc.method.pool.Cache()
		if debugChecks && cache == nil {
			panic(fmt.Sprintf("vm.LoadConstant.PoolIndex: %s quickened without a cache", lc.method))
		}
		return cache.EntryAt(index).ConstantPoolIndex()
	}
	return index
}

// ResultType returns the value category the load produces, from the
// pool entry's tag.
func (lc LoadConstant) ResultType() BasicType {
	return lc.method.pool.TagAt(lc.PoolIndex()).BasicType()
}

// ResolveConstant resolves the loaded constant to its value, through the
// cache when the instruction is quickened and directly otherwise. Both
// paths are idempotent; the cached one memoizes.
func (lc LoadConstant) ResolveConstant() (Value, error) {
	index := lc.RawIndex()
	pool := lc.method.pool
	if lc.HasCacheIndex() {
		return pool.ResolveCachedConstantAt(index)
	}
	return pool.ResolveConstantAt(index)
}
