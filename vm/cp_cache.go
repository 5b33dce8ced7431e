package vm

import (
	"fmt"
	"sync"
)

// ---------------------------------------------------------------------------
// Constant-pool cache
// ---------------------------------------------------------------------------

// CPCacheEntry is one resolution slot. It remembers the pool index it
// stands for and memoizes the outcome of resolving that entry, so that
// repeated executions of a quickened instruction hit the cached value.
type CPCacheEntry struct {
	cpIndex uint32

	mu       sync.Mutex
	resolved bool
	value    Value
	method   *ResolvedMethod
}

// ConstantPoolIndex returns the pool slot this cache entry stands for.
func (e *CPCacheEntry) ConstantPoolIndex() uint32 { return e.cpIndex }

// IsResolved reports whether a resolution outcome has been recorded.
func (e *CPCacheEntry) IsResolved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolved
}

// ResolvedValue returns the memoized constant, if any.
func (e *CPCacheEntry) ResolvedValue() (Value, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value, e.resolved
}

// ResolvedMethod returns the memoized call target, if any.
func (e *CPCacheEntry) ResolvedMethod() (*ResolvedMethod, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.method, e.resolved
}

// CPCache is the resolution-state table the rewriter builds next to a
// pool. Instruction operands hold cache slots after quickening; each
// slot points back at its pool index and fills in lazily on first use.
// Failures are not memoized, so a later attempt may succeed once the
// missing class appears.
type CPCache struct {
	entries []*CPCacheEntry
}

// NewCPCache builds a cache whose slot i stands for pool index
// cpIndexes[i].
func NewCPCache(cpIndexes []uint32) *CPCache {
	c := &CPCache{entries: make([]*CPCacheEntry, len(cpIndexes))}
	for i, cpi := range cpIndexes {
		c.entries[i] = &CPCacheEntry{cpIndex: cpi}
	}
	return c
}

// Length returns the number of slots.
func (c *CPCache) Length() int { return len(c.entries) }

// EntryAt returns the slot at index.
func (c *CPCache) EntryAt(slot uint32) *CPCacheEntry {
	if debugChecks && slot >= uint32(len(c.entries)) {
		panic(fmt.Sprintf("vm.CPCache: slot %d out of range [0,%d)", slot, len(c.entries)))
	}
	return c.entries[slot]
}

// ResolveCachedConstantAt resolves the pool entry behind slot, memoizing
// the value on success. Concurrent callers race benignly: whichever
// resolution finishes first is recorded and all callers observe it.
func (c *CPCache) ResolveCachedConstantAt(slot uint32, cp *ConstantPool) (Value, error) {
	e := c.EntryAt(slot)

	e.mu.Lock()
	if e.resolved {
		v := e.value
		e.mu.Unlock()
		return v, nil
	}
	e.mu.Unlock()

	v, err := cp.ResolveConstantAt(e.cpIndex)
	if err != nil {
		return Value{}, err
	}

	e.mu.Lock()
	if !e.resolved {
		e.value = v
		e.resolved = true
	}
	v = e.value
	e.mu.Unlock()
	return v, nil
}

// RecordMethod memoizes a resolved call target in the slot.
func (e *CPCacheEntry) RecordMethod(m *ResolvedMethod) {
	e.mu.Lock()
	if !e.resolved {
		e.method = m
		e.resolved = true
	}
	e.mu.Unlock()
}
