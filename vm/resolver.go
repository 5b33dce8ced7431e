package vm

import (
	"fmt"
	"sync"
)

// ---------------------------------------------------------------------------
// Link resolution
// ---------------------------------------------------------------------------

// ResolutionErrorKind classifies why a symbolic reference failed to
// resolve.
type ResolutionErrorKind int

const (
	// ResolveMissingClass: the referenced class is not loaded.
	ResolveMissingClass ResolutionErrorKind = iota
	// ResolveUnresolved: the class is loaded but declares no such member.
	ResolveUnresolved
	// ResolveIncompatible: the reference kind does not match the class,
	// such as an interface invoke against an ordinary class.
	ResolveIncompatible
	// ResolveMissingBootstrap: a dynamic call site has no bound target.
	ResolveMissingBootstrap
)

// ResolutionError reports a failed resolution with the symbolic context
// of the reference.
type ResolutionError struct {
	Kind   ResolutionErrorKind
	Class  Symbol
	Member Symbol
	Desc   Symbol
}

func (e *ResolutionError) Error() string {
	member := ""
	if e.Member != "" {
		member = fmt.Sprintf(" for %s%s", e.Member, e.Desc)
	}
	switch e.Kind {
	case ResolveMissingClass:
		return fmt.Sprintf("vm: class %s not loaded%s", e.Class, member)
	case ResolveUnresolved:
		return fmt.Sprintf("vm: class %s declares no member %s%s", e.Class, e.Member, e.Desc)
	case ResolveIncompatible:
		return fmt.Sprintf("vm: incompatible reference to %s%s", e.Class, member)
	case ResolveMissingBootstrap:
		return fmt.Sprintf("vm: no bootstrap target bound%s", member)
	}
	return fmt.Sprintf("vm: resolution failed for %s%s", e.Class, member)
}

// LinkResolver turns the symbolic reference at a pool slot into a call
// target. Implementations receive the plain pool index of the reference.
type LinkResolver interface {
	ResolveMethod(cp *ConstantPool, index uint32) (*ResolvedMethod, error)
	ResolveInterfaceMethod(cp *ConstantPool, index uint32) (*ResolvedMethod, error)
	ResolveDynamicMethod(cp *ConstantPool, index uint32) (*ResolvedMethod, error)
}

// TableResolver resolves references against a klass table, walking
// superclass chains, and dynamic call sites against bound bootstrap
// targets.
type TableResolver struct {
	Klasses *KlassTable

	mu         sync.RWMutex
	bootstraps map[uint16]*ResolvedMethod
}

// NewTableResolver creates a resolver over the given klass table.
func NewTableResolver(kt *KlassTable) *TableResolver {
	return &TableResolver{Klasses: kt}
}

// BindBootstrap binds the target a dynamic call site with the given
// bootstrap-method index links to. The bootstrap protocol itself is out
// of scope here; call sites resolve to whatever was bound.
func (r *TableResolver) BindBootstrap(index uint16, target *ResolvedMethod) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bootstraps == nil {
		r.bootstraps = make(map[uint16]*ResolvedMethod)
	}
	r.bootstraps[index] = target
}

func (r *TableResolver) lookupRef(cp *ConstantPool, index uint32, wantInterface bool) (*ResolvedMethod, error) {
	class := cp.KlassNameAt(index)
	name := cp.NameRefAt(index)
	desc := cp.SignatureRefAt(index)

	k := r.Klasses.Lookup(class)
	if k == nil {
		return nil, &ResolutionError{Kind: ResolveMissingClass, Class: class, Member: name, Desc: desc}
	}
	if k.IsInterface != wantInterface {
		return nil, &ResolutionError{Kind: ResolveIncompatible, Class: class, Member: name, Desc: desc}
	}
	m := k.LookupMethod(name, desc)
	if m == nil {
		return nil, &ResolutionError{Kind: ResolveUnresolved, Class: class, Member: name, Desc: desc}
	}
	return m, nil
}

// ResolveMethod resolves an ordinary method reference.
func (r *TableResolver) ResolveMethod(cp *ConstantPool, index uint32) (*ResolvedMethod, error) {
	return r.lookupRef(cp, index, false)
}

// ResolveInterfaceMethod resolves an interface method reference. The
// referenced class must be an interface.
func (r *TableResolver) ResolveInterfaceMethod(cp *ConstantPool, index uint32) (*ResolvedMethod, error) {
	return r.lookupRef(cp, index, true)
}

// ResolveDynamicMethod resolves a dynamic call site to its bound target.
func (r *TableResolver) ResolveDynamicMethod(cp *ConstantPool, index uint32) (*ResolvedMethod, error) {
	bsi := cp.BootstrapIndexAt(index)
	name := cp.NameRefAt(index)
	desc := cp.SignatureRefAt(index)

	r.mu.RLock()
	target := r.bootstraps[bsi]
	r.mu.RUnlock()
	if target == nil {
		return nil, &ResolutionError{Kind: ResolveMissingBootstrap, Member: name, Desc: desc}
	}
	return target, nil
}
