package vm

import (
	"fmt"
	"sync"
)

// ---------------------------------------------------------------------------
// Klass
// ---------------------------------------------------------------------------

type memberKey struct {
	name Symbol
	sig  Symbol
}

// ResolvedMethod is the product of resolving a member reference: the
// declaring klass together with the member's name and descriptor. One
// ResolvedMethod exists per declared member, so resolving the same
// reference twice yields the same pointer.
type ResolvedMethod struct {
	Holder    *Klass
	Name      Symbol
	Signature Symbol
	Method    *Method
}

// ResultType returns the value category the member's descriptor declares.
func (r *ResolvedMethod) ResultType() BasicType { return ResultTypeOf(r.Signature) }

func (r *ResolvedMethod) String() string {
	return fmt.Sprintf("%s.%s%s", r.Holder.Name, r.Name, r.Signature)
}

// Klass is a loaded class: a name, an optional superclass, and the
// members declared on it. Lookup walks the superclass chain.
type Klass struct {
	Name        Symbol
	Super       *Klass
	IsInterface bool

	mu      sync.RWMutex
	members map[memberKey]*ResolvedMethod
}

func (k *Klass) String() string { return string(k.Name) }

func (k *Klass) addMethod(m *Method) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.members == nil {
		k.members = make(map[memberKey]*ResolvedMethod)
	}
	key := memberKey{name: m.Name, sig: m.Descriptor}
	if debugChecks {
		if _, dup := k.members[key]; dup {
			panic(fmt.Sprintf("vm.Klass: %s already declares %s%s", k.Name, m.Name, m.Descriptor))
		}
	}
	k.members[key] = &ResolvedMethod{
		Holder:    k,
		Name:      m.Name,
		Signature: m.Descriptor,
		Method:    m,
	}
}

func (k *Klass) lookupLocal(key memberKey) *ResolvedMethod {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.members[key]
}

// LookupMethod finds a member by name and descriptor, walking up the
// superclass chain. Returns nil when no klass in the chain declares it.
func (k *Klass) LookupMethod(name, sig Symbol) *ResolvedMethod {
	key := memberKey{name: name, sig: sig}
	for cur := k; cur != nil; cur = cur.Super {
		if m := cur.lookupLocal(key); m != nil {
			return m
		}
	}
	return nil
}

// IsSubclassOf reports whether other appears in k's superclass chain,
// k itself included.
func (k *Klass) IsSubclassOf(other *Klass) bool {
	for cur := k; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Klass table
// ---------------------------------------------------------------------------

// KlassTable is the registry of loaded classes, keyed by name.
type KlassTable struct {
	mu    sync.RWMutex
	table map[Symbol]*Klass
}

// NewKlassTable creates an empty registry.
func NewKlassTable() *KlassTable {
	return &KlassTable{table: make(map[Symbol]*Klass)}
}

// Define registers a class under name, or returns the one already
// registered. A nil super leaves the chain rooted at this klass.
func (t *KlassTable) Define(name Symbol, super *Klass) *Klass {
	t.mu.RLock()
	k := t.table[name]
	t.mu.RUnlock()
	if k != nil {
		return k
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if k = t.table[name]; k != nil {
		return k
	}
	k = &Klass{Name: name, Super: super}
	t.table[name] = k
	return k
}

// DefineInterface registers an interface under name, or returns the one
// already registered.
func (t *KlassTable) DefineInterface(name Symbol) *Klass {
	k := t.Define(name, nil)
	k.IsInterface = true
	return k
}

// Lookup returns the class registered under name, or nil.
func (t *KlassTable) Lookup(name Symbol) *Klass {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.table[name]
}

// Len returns the number of registered classes.
func (t *KlassTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.table)
}
