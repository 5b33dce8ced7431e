package vm

import "fmt"

// ---------------------------------------------------------------------------
// Member references
// ---------------------------------------------------------------------------

// MemberRef is the accessor for instructions that reference a field,
// method, or dynamic call site through the constant pool: the getfield
// through invokedynamic range.
type MemberRef struct {
	Bytecode
}

// NewMemberRef returns a member-reference view of the instruction at bci.
func NewMemberRef(m *Method, bci int) MemberRef {
	return MemberRef{NewBytecode(m, bci)}
}

// Index returns the instruction's reference index: the 4-byte cache slot
// for a rewritten dynamic call site, otherwise the 2-byte operand with
// the cache tag stripped. After quickening this is a cache slot; before,
// the raw pool index.
func (m MemberRef) Index() uint32 {
	rawc := m.Code()
	if m.HasIndexU4(rawc) {
		return m.IndexU4(rawc)
	}
	return m.IndexU2CPCache(rawc) - CPCacheIndexTag
}

// PoolIndex maps Index through the attached cache to the pool slot the
// reference originates from. Caller misuse to invoke this without a
// cache.
func (m MemberRef) PoolIndex() uint32 {
	cache := m.method.pool.Cache()
	if cache == nil {
		if debugChecks {
			panic(fmt.Sprintf("vm.MemberRef.PoolIndex: %s has no constant-pool cache", m.method))
		}
		return m.Index()
	}
	return cache.EntryAt(m.Index()).ConstantPoolIndex()
}

// refPoolIndex is the pool slot of the reference: through the cache when
// one is attached, the direct operand otherwise.
func (m MemberRef) refPoolIndex() uint32 {
	if m.method.pool.Cache() != nil {
		return m.PoolIndex()
	}
	return m.Index()
}

// Name returns the referenced member's name.
func (m MemberRef) Name() Symbol {
	return m.method.pool.NameRefAt(m.refPoolIndex())
}

// Signature returns the referenced member's descriptor.
func (m MemberRef) Signature() Symbol {
	return m.method.pool.SignatureRefAt(m.refPoolIndex())
}

// ClassName returns the name of the class the reference targets.
// Dynamic call sites carry none.
func (m MemberRef) ClassName() Symbol {
	return m.method.pool.KlassNameAt(m.refPoolIndex())
}

// ResultType returns the value category the member produces: the field's
// type, or the method's return type.
func (m MemberRef) ResultType() BasicType {
	return ResultTypeOf(m.Signature())
}

// ---------------------------------------------------------------------------
// Invokes
// ---------------------------------------------------------------------------

// Invoke is the accessor for the five invoke instructions.
type Invoke struct {
	MemberRef
}

// NewInvoke returns an invoke view of the instruction at bci. Checked
// builds verify the site immediately.
func NewInvoke(m *Method, bci int) Invoke {
	iv := Invoke{NewMemberRef(m, bci)}
	if debugChecks {
		iv.Verify()
	}
	return iv
}

func (iv Invoke) IsInvokeVirtual() bool   { return iv.JavaCode() == OpInvokevirtual }
func (iv Invoke) IsInvokeSpecial() bool   { return iv.JavaCode() == OpInvokespecial }
func (iv Invoke) IsInvokeStatic() bool    { return iv.JavaCode() == OpInvokestatic }
func (iv Invoke) IsInvokeInterface() bool { return iv.JavaCode() == OpInvokeinterface }
func (iv Invoke) IsInvokeDynamic() bool   { return iv.JavaCode() == OpInvokedynamic }

// IsValid reports whether the instruction is one of the invokes.
func (iv Invoke) IsValid() bool {
	switch iv.JavaCode() {
	case OpInvokevirtual, OpInvokespecial, OpInvokestatic, OpInvokeinterface, OpInvokedynamic:
		return true
	}
	return false
}

// Verify panics unless the view sits on an invoke whose reference has a
// cache entry. Do not call from the rewriter: the cache does not exist
// yet there.
func (iv Invoke) Verify() {
	if !debugChecks {
		return
	}
	if !iv.IsValid() {
		panic(fmt.Sprintf("vm.Invoke: %v at bci %d of %s is not an invoke", iv.Code(), iv.bci, iv.method))
	}
	cache := iv.method.pool.Cache()
	if cache == nil {
		panic(fmt.Sprintf("vm.Invoke: %s has no constant-pool cache", iv.method))
	}
	if slot := iv.Index(); slot >= uint32(cache.Length()) {
		panic(fmt.Sprintf("vm.Invoke: cache slot %d out of range [0,%d)", slot, cache.Length()))
	}
}

// HasReceiver reports whether the call pops a receiver: all invokes
// except static and dynamic ones.
func (iv Invoke) HasReceiver() bool {
	return !iv.IsInvokeStatic() && !iv.IsInvokeDynamic()
}

// SizeOfParameters returns the operand-stack slots the call consumes,
// counting the receiver.
func (iv Invoke) SizeOfParameters() int {
	size := ParameterSlots(iv.Signature())
	if iv.HasReceiver() {
		size++
	}
	return size
}

// StaticTarget resolves the call's symbolic reference to its compile-time
// target, dispatching on the invoke kind.
func (iv Invoke) StaticTarget(r LinkResolver) (*ResolvedMethod, error) {
	pool := iv.method.pool
	index := iv.refPoolIndex()
	switch {
	case iv.IsInvokeDynamic():
		return r.ResolveDynamicMethod(pool, index)
	case iv.IsInvokeInterface():
		return r.ResolveInterfaceMethod(pool, index)
	default:
		return r.ResolveMethod(pool, index)
	}
}

// ---------------------------------------------------------------------------
// Field accesses
// ---------------------------------------------------------------------------

// Field is the accessor for the four field-access instructions.
type Field struct {
	MemberRef
}

// NewField returns a field-access view of the instruction at bci.
func NewField(m *Method, bci int) Field {
	f := Field{NewMemberRef(m, bci)}
	if debugChecks {
		f.Verify()
	}
	return f
}

// IsValid reports whether the instruction is a field access.
func (f Field) IsValid() bool {
	switch f.JavaCode() {
	case OpGetfield, OpPutfield, OpGetstatic, OpPutstatic:
		return true
	}
	return false
}

// Verify panics unless the view sits on a field access.
func (f Field) Verify() {
	if debugChecks && !f.IsValid() {
		panic(fmt.Sprintf("vm.Field: %v at bci %d of %s is not a field access", f.Code(), f.bci, f.method))
	}
}

// IsStatic reports whether the access needs no receiver.
func (f Field) IsStatic() bool {
	c := f.JavaCode()
	return c == OpGetstatic || c == OpPutstatic
}

// IsGetter reports whether the access reads the field.
func (f Field) IsGetter() bool {
	c := f.JavaCode()
	return c == OpGetfield || c == OpGetstatic
}

// IsPutter reports whether the access writes the field.
func (f Field) IsPutter() bool { return !f.IsGetter() }

// ---------------------------------------------------------------------------
// Class references
// ---------------------------------------------------------------------------

// checkCode panics when the instruction at the view is not c.
func (b Bytecode) checkCode(c Code) {
	if debugChecks && b.Code() != c {
		panic(fmt.Sprintf("vm: instruction at bci %d of %s is %v, want %v", b.bci, b.method, b.Code(), c))
	}
}

// classRefIndex reads the u2 pool index of a class-reference instruction.
// These operands stay pool indexes; the rewrite leaves them alone.
func (b Bytecode) classRefIndex(c Code) uint32 {
	b.checkCode(c)
	return b.IndexU2(c, false)
}

// NewInstr is the accessor for the new instruction.
type NewInstr struct{ Bytecode }

func NewInstrAt(m *Method, bci int) NewInstr {
	b := NewBytecode(m, bci)
	b.checkCode(OpNew)
	return NewInstr{b}
}

func (n NewInstr) Index() uint32 { return n.classRefIndex(OpNew) }

// ClassName returns the name of the class being instantiated.
func (n NewInstr) ClassName() Symbol {
	return n.method.pool.ClassNameAt(n.Index())
}

// Checkcast is the accessor for the checkcast instruction.
type Checkcast struct{ Bytecode }

func NewCheckcast(m *Method, bci int) Checkcast {
	b := NewBytecode(m, bci)
	b.checkCode(OpCheckcast)
	return Checkcast{b}
}

func (cc Checkcast) Index() uint32 { return cc.classRefIndex(OpCheckcast) }

// Instanceof is the accessor for the instanceof instruction.
type Instanceof struct{ Bytecode }

func NewInstanceof(m *Method, bci int) Instanceof {
	b := NewBytecode(m, bci)
	b.checkCode(OpInstanceof)
	return Instanceof{b}
}

func (io Instanceof) Index() uint32 { return io.classRefIndex(OpInstanceof) }

// Anewarray is the accessor for the anewarray instruction.
type Anewarray struct{ Bytecode }

func NewAnewarray(m *Method, bci int) Anewarray {
	b := NewBytecode(m, bci)
	b.checkCode(OpAnewarray)
	return Anewarray{b}
}

func (aa Anewarray) Index() uint32 { return aa.classRefIndex(OpAnewarray) }

// Multianewarray is the accessor for the multianewarray instruction.
type Multianewarray struct{ Bytecode }

func NewMultianewarray(m *Method, bci int) Multianewarray {
	b := NewBytecode(m, bci)
	b.checkCode(OpMultianewarray)
	return Multianewarray{b}
}

func (ma Multianewarray) Index() uint32 { return ma.classRefIndex(OpMultianewarray) }

// Dimensions returns the number of array dimensions the instruction
// allocates.
func (ma Multianewarray) Dimensions() int { return int(ma.U1At(3)) }

// ClassName returns the array class the instruction allocates.
func (ma Multianewarray) ClassName() Symbol {
	return ma.method.pool.ClassNameAt(ma.Index())
}
