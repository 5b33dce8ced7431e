package vm

import "sync"

// Symbol is an interned name or descriptor. Methods, pool entries and
// resolved targets share one Symbol value per distinct string, so
// comparisons are cheap and a loaded image does not duplicate backing
// storage.
type Symbol string

// SymbolTable interns strings to canonical Symbols.
//
// The table is append-only and safe for concurrent use: reads take the
// shared lock, and a miss upgrades with a double-check under the write
// lock.
type SymbolTable struct {
	mu    sync.RWMutex
	table map[string]Symbol
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{table: make(map[string]Symbol)}
}

// Intern returns the canonical Symbol for name, creating it if needed.
func (st *SymbolTable) Intern(name string) Symbol {
	st.mu.RLock()
	if sym, ok := st.table[name]; ok {
		st.mu.RUnlock()
		return sym
	}
	st.mu.RUnlock()

	st.mu.Lock()
	defer st.mu.Unlock()

	if sym, ok := st.table[name]; ok {
		return sym
	}
	sym := Symbol(name)
	st.table[name] = sym
	return sym
}

// Lookup returns the canonical Symbol for name without creating one.
func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sym, ok := st.table[name]
	return sym, ok
}

// Len returns the number of interned symbols.
func (st *SymbolTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.table)
}
