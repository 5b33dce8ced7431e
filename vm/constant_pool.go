package vm

import "fmt"

// ---------------------------------------------------------------------------
// Constant pool
// ---------------------------------------------------------------------------

// Tag identifies the kind of a constant-pool entry, using the class-file
// tag numbering.
type Tag uint8

const (
	TagInvalid            Tag = 0
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagInvokeDynamic      Tag = 18
)

var tagNames = map[Tag]string{
	TagInvalid:            "invalid",
	TagUtf8:               "utf8",
	TagInteger:            "integer",
	TagFloat:              "float",
	TagLong:               "long",
	TagDouble:             "double",
	TagClass:              "class",
	TagString:             "string",
	TagFieldref:           "fieldref",
	TagMethodref:          "methodref",
	TagInterfaceMethodref: "interfacemethodref",
	TagNameAndType:        "nameandtype",
	TagMethodHandle:       "methodhandle",
	TagMethodType:         "methodtype",
	TagInvokeDynamic:      "invokedynamic",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// IsMember reports whether t names a field or method reference.
func (t Tag) IsMember() bool {
	return t == TagFieldref || t == TagMethodref || t == TagInterfaceMethodref
}

// IsLoadable reports whether an ldc-family instruction may load entries of
// this kind.
func (t Tag) IsLoadable() bool {
	switch t {
	case TagInteger, TagFloat, TagLong, TagDouble, TagClass, TagString,
		TagMethodHandle, TagMethodType:
		return true
	}
	return false
}

// BasicType maps a loadable tag to the value category an ldc of that
// entry produces.
func (t Tag) BasicType() BasicType {
	switch t {
	case TagInteger:
		return TInt
	case TagFloat:
		return TFloat
	case TagLong:
		return TLong
	case TagDouble:
		return TDouble
	case TagClass, TagString, TagMethodHandle, TagMethodType:
		return TObject
	}
	return TIllegal
}

// CPCacheIndexTag offsets a cp-cache slot read out of an instruction
// operand. Any u2 pool index is below it, so interfaces that accept
// either kind of index can tell them apart; the resolution path strips it
// again.
const CPCacheIndexTag uint32 = 1 << 16

// poolEntry is one slot. Member refs and name-and-type entries link to
// other slots by index, as in the class-file encoding.
type poolEntry struct {
	tag  Tag
	i    int64   // integer and long payloads, method-handle ref kind
	f    float64 // float and double payloads
	sym  Symbol  // utf8 text
	ref1 uint16  // class index / name index / bootstrap index / reference index
	ref2 uint16  // name-and-type index / descriptor index
}

// ConstantPool holds the symbolic constants a method's instructions index
// into. Slot 0 is unused and long/double entries occupy two slots, as in
// the class-file layout. Pools are built once and read-only afterward;
// the quickening rewriter attaches the cp-cache.
type ConstantPool struct {
	entries []poolEntry
	cache   *CPCache
	klasses *KlassTable
	utf8s   map[string]uint16
}

// NewConstantPool creates an empty pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		entries: make([]poolEntry, 1),
		utf8s:   make(map[string]uint16),
	}
}

// SetKlassTable supplies the class registry used to resolve class and
// method-handle constants.
func (cp *ConstantPool) SetKlassTable(kt *KlassTable) { cp.klasses = kt }

// Length returns the number of slots, counting slot 0 and the padding
// slots after longs and doubles.
func (cp *ConstantPool) Length() int { return len(cp.entries) }

// Cache returns the constant-pool cache, or nil before quickening.
func (cp *ConstantPool) Cache() *CPCache { return cp.cache }

func (cp *ConstantPool) attachCache(c *CPCache) { cp.cache = c }

// ---------------------------------------------------------------------------
// Builders
// ---------------------------------------------------------------------------

func (cp *ConstantPool) append(e poolEntry) uint16 {
	if len(cp.entries) > 0xFFFE {
		panic("vm.ConstantPool: pool overflow")
	}
	cp.entries = append(cp.entries, e)
	return uint16(len(cp.entries) - 1)
}

// AddUtf8 interns a utf8 slot, reusing an existing slot with equal text.
func (cp *ConstantPool) AddUtf8(s string) uint16 {
	if at, ok := cp.utf8s[s]; ok {
		return at
	}
	at := cp.append(poolEntry{tag: TagUtf8, sym: Symbol(s)})
	cp.utf8s[s] = at
	return at
}

func (cp *ConstantPool) AddInteger(v int32) uint16 {
	return cp.append(poolEntry{tag: TagInteger, i: int64(v)})
}

func (cp *ConstantPool) AddFloat(v float32) uint16 {
	return cp.append(poolEntry{tag: TagFloat, f: float64(v)})
}

// AddLong appends a long entry plus its padding slot.
func (cp *ConstantPool) AddLong(v int64) uint16 {
	at := cp.append(poolEntry{tag: TagLong, i: v})
	cp.append(poolEntry{tag: TagInvalid})
	return at
}

// AddDouble appends a double entry plus its padding slot.
func (cp *ConstantPool) AddDouble(v float64) uint16 {
	at := cp.append(poolEntry{tag: TagDouble, f: v})
	cp.append(poolEntry{tag: TagInvalid})
	return at
}

func (cp *ConstantPool) AddClass(name string) uint16 {
	return cp.append(poolEntry{tag: TagClass, ref1: cp.AddUtf8(name)})
}

func (cp *ConstantPool) AddString(s string) uint16 {
	return cp.append(poolEntry{tag: TagString, ref1: cp.AddUtf8(s)})
}

func (cp *ConstantPool) AddNameAndType(name, desc string) uint16 {
	return cp.append(poolEntry{
		tag:  TagNameAndType,
		ref1: cp.AddUtf8(name),
		ref2: cp.AddUtf8(desc),
	})
}

func (cp *ConstantPool) addMember(tag Tag, class, name, desc string) uint16 {
	return cp.append(poolEntry{
		tag:  tag,
		ref1: cp.AddClass(class),
		ref2: cp.AddNameAndType(name, desc),
	})
}

func (cp *ConstantPool) AddFieldref(class, name, desc string) uint16 {
	return cp.addMember(TagFieldref, class, name, desc)
}

func (cp *ConstantPool) AddMethodref(class, name, desc string) uint16 {
	return cp.addMember(TagMethodref, class, name, desc)
}

func (cp *ConstantPool) AddInterfaceMethodref(class, name, desc string) uint16 {
	return cp.addMember(TagInterfaceMethodref, class, name, desc)
}

func (cp *ConstantPool) AddMethodType(desc string) uint16 {
	return cp.append(poolEntry{tag: TagMethodType, ref1: cp.AddUtf8(desc)})
}

// AddMethodHandle records a handle of the given reference kind pointing
// at a member-ref slot.
func (cp *ConstantPool) AddMethodHandle(refKind uint8, refIndex uint16) uint16 {
	return cp.append(poolEntry{tag: TagMethodHandle, i: int64(refKind), ref1: refIndex})
}

// AddInvokeDynamic records a dynamic call site: a bootstrap-method index
// (opaque to this layer) plus the site's name and descriptor.
func (cp *ConstantPool) AddInvokeDynamic(bootstrapIndex uint16, name, desc string) uint16 {
	return cp.append(poolEntry{
		tag:  TagInvokeDynamic,
		ref1: bootstrapIndex,
		ref2: cp.AddNameAndType(name, desc),
	})
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func (cp *ConstantPool) entryAt(index uint32) *poolEntry {
	if debugChecks && (index == 0 || index >= uint32(len(cp.entries))) {
		panic(fmt.Sprintf("vm.ConstantPool: slot %d out of range [1,%d)", index, len(cp.entries)))
	}
	return &cp.entries[index]
}

func (cp *ConstantPool) checkTag(index uint32, want Tag) *poolEntry {
	e := cp.entryAt(index)
	if debugChecks && e.tag != want {
		panic(fmt.Sprintf("vm.ConstantPool: slot %d holds %v, want %v", index, e.tag, want))
	}
	return e
}

// TagAt returns the kind of the entry at index.
func (cp *ConstantPool) TagAt(index uint32) Tag { return cp.entryAt(index).tag }

// Utf8At returns the text of a utf8 slot.
func (cp *ConstantPool) Utf8At(index uint32) Symbol {
	return cp.checkTag(index, TagUtf8).sym
}

func (cp *ConstantPool) IntAt(index uint32) int32 {
	return int32(cp.checkTag(index, TagInteger).i)
}

func (cp *ConstantPool) FloatAt(index uint32) float32 {
	return float32(cp.checkTag(index, TagFloat).f)
}

func (cp *ConstantPool) LongAt(index uint32) int64 {
	return cp.checkTag(index, TagLong).i
}

func (cp *ConstantPool) DoubleAt(index uint32) float64 {
	return cp.checkTag(index, TagDouble).f
}

// ClassNameAt returns the name held by a class slot.
func (cp *ConstantPool) ClassNameAt(index uint32) Symbol {
	return cp.Utf8At(uint32(cp.checkTag(index, TagClass).ref1))
}

// StringAt returns the text of a string slot.
func (cp *ConstantPool) StringAt(index uint32) Symbol {
	return cp.Utf8At(uint32(cp.checkTag(index, TagString).ref1))
}

// toCPIndex accepts either a plain pool index or a CPCacheIndexTag-tagged
// cache slot and returns the pool index, remapping tagged values through
// the attached cache.
func (cp *ConstantPool) toCPIndex(which uint32) uint32 {
	if which >= CPCacheIndexTag {
		if debugChecks && cp.cache == nil {
			panic("vm.ConstantPool: cache-tagged index without an attached cache")
		}
		return cp.cache.EntryAt(which - CPCacheIndexTag).ConstantPoolIndex()
	}
	return which
}

func (cp *ConstantPool) memberAt(which uint32) *poolEntry {
	e := cp.entryAt(cp.toCPIndex(which))
	if debugChecks && !e.tag.IsMember() && e.tag != TagInvokeDynamic {
		panic(fmt.Sprintf("vm.ConstantPool: slot %d holds %v, want a member or dynamic reference", which, e.tag))
	}
	return e
}

// NameAndTypeRefIndexAt returns the name-and-type slot a member or
// dynamic reference links to. The index may be cache-tagged.
func (cp *ConstantPool) NameAndTypeRefIndexAt(which uint32) uint32 {
	return uint32(cp.memberAt(which).ref2)
}

// KlassRefIndexAt returns the class slot a member reference links to.
// The index may be cache-tagged.
func (cp *ConstantPool) KlassRefIndexAt(which uint32) uint32 {
	e := cp.memberAt(which)
	if debugChecks && e.tag == TagInvokeDynamic {
		panic("vm.ConstantPool: dynamic call sites carry no class reference")
	}
	return uint32(e.ref1)
}

// KlassNameAt returns the class name a member reference names. The index
// may be cache-tagged.
func (cp *ConstantPool) KlassNameAt(which uint32) Symbol {
	return cp.ClassNameAt(cp.KlassRefIndexAt(which))
}

// NameRefAt returns the member name a member or dynamic reference names.
// The index may be cache-tagged.
func (cp *ConstantPool) NameRefAt(which uint32) Symbol {
	nt := cp.checkTag(cp.NameAndTypeRefIndexAt(which), TagNameAndType)
	return cp.Utf8At(uint32(nt.ref1))
}

// SignatureRefAt returns the descriptor a member or dynamic reference
// names. The index may be cache-tagged.
func (cp *ConstantPool) SignatureRefAt(which uint32) Symbol {
	nt := cp.checkTag(cp.NameAndTypeRefIndexAt(which), TagNameAndType)
	return cp.Utf8At(uint32(nt.ref2))
}

// MethodHandleRefKindAt returns the reference kind of a method-handle
// slot.
func (cp *ConstantPool) MethodHandleRefKindAt(index uint32) uint8 {
	return uint8(cp.checkTag(index, TagMethodHandle).i)
}

// MethodHandleRefIndexAt returns the member-ref slot a method-handle
// slot points at.
func (cp *ConstantPool) MethodHandleRefIndexAt(index uint32) uint32 {
	return uint32(cp.checkTag(index, TagMethodHandle).ref1)
}

// MethodTypeDescriptorAt returns the descriptor of a method-type slot.
func (cp *ConstantPool) MethodTypeDescriptorAt(index uint32) Symbol {
	return cp.Utf8At(uint32(cp.checkTag(index, TagMethodType).ref1))
}

// BootstrapIndexAt returns the bootstrap-method index of a dynamic call
// site slot.
func (cp *ConstantPool) BootstrapIndexAt(index uint32) uint16 {
	return cp.checkTag(index, TagInvokeDynamic).ref1
}

// ---------------------------------------------------------------------------
// Constant resolution
// ---------------------------------------------------------------------------

// ResolveConstantAt resolves the loadable entry at a plain pool index to
// its value. Class and method-handle entries need the klass table; their
// failures are resolution errors, never panics.
func (cp *ConstantPool) ResolveConstantAt(index uint32) (Value, error) {
	e := cp.entryAt(index)
	switch e.tag {
	case TagInteger:
		return IntValue(int32(e.i)), nil
	case TagFloat:
		return FloatValue(float32(e.f)), nil
	case TagLong:
		return LongValue(e.i), nil
	case TagDouble:
		return DoubleValue(e.f), nil
	case TagString:
		return StringValue(string(cp.StringAt(index))), nil
	case TagMethodType:
		return MethodTypeValue(cp.MethodTypeDescriptorAt(index)), nil
	case TagClass:
		name := cp.ClassNameAt(index)
		k := cp.lookupKlass(name)
		if k == nil {
			return Value{}, &ResolutionError{Kind: ResolveMissingClass, Class: name}
		}
		return ClassValue(k), nil
	case TagMethodHandle:
		ref := cp.MethodHandleRefIndexAt(index)
		target, err := cp.resolveMemberTarget(ref)
		if err != nil {
			return Value{}, err
		}
		return MethodHandleValue(target), nil
	}
	panic(fmt.Sprintf("vm.ConstantPool: slot %d (tag %v) is not loadable", index, e.tag))
}

// ResolveCachedConstantAt resolves a quickened constant through its cache
// slot, memoizing the value in the entry.
func (cp *ConstantPool) ResolveCachedConstantAt(slot uint32) (Value, error) {
	if debugChecks && cp.cache == nil {
		panic("vm.ConstantPool.ResolveCachedConstantAt: no cache attached")
	}
	return cp.cache.ResolveCachedConstantAt(slot, cp)
}

func (cp *ConstantPool) lookupKlass(name Symbol) *Klass {
	if cp.klasses == nil {
		return nil
	}
	return cp.klasses.Lookup(name)
}

// resolveMemberTarget resolves the member-ref slot behind a method
// handle against the klass table.
func (cp *ConstantPool) resolveMemberTarget(index uint32) (*ResolvedMethod, error) {
	class := cp.KlassNameAt(index)
	name := cp.NameRefAt(index)
	desc := cp.SignatureRefAt(index)
	k := cp.lookupKlass(class)
	if k == nil {
		return nil, &ResolutionError{Kind: ResolveMissingClass, Class: class, Member: name, Desc: desc}
	}
	m := k.LookupMethod(name, desc)
	if m == nil {
		return nil, &ResolutionError{Kind: ResolveUnresolved, Class: class, Member: name, Desc: desc}
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Raw entry export and import
// ---------------------------------------------------------------------------

// PoolEntry is the external form of one constant-pool slot, used by
// serialization. Fields mirror the slot layout: Int carries integer and
// long payloads and the method-handle reference kind, Ref1 and Ref2 carry
// slot links and bootstrap indexes.
type PoolEntry struct {
	Tag  Tag
	Int  int64
	Num  float64
	Text string
	Ref1 uint16
	Ref2 uint16
}

// Entries exports every slot above 0 in index order, padding slots
// included, so entry i describes pool slot i+1.
func (cp *ConstantPool) Entries() []PoolEntry {
	out := make([]PoolEntry, 0, len(cp.entries)-1)
	for _, e := range cp.entries[1:] {
		out = append(out, PoolEntry{
			Tag:  e.tag,
			Int:  e.i,
			Num:  e.f,
			Text: string(e.sym),
			Ref1: e.ref1,
			Ref2: e.ref2,
		})
	}
	return out
}

// NewConstantPoolFromEntries rebuilds a pool from exported entries.
// Entry i lands in slot i+1, so indexes embedded in code and in entry
// links stay valid. Input is validated rather than trusted: unknown tags,
// out-of-range links and missing two-word padding are errors.
func NewConstantPoolFromEntries(entries []PoolEntry) (*ConstantPool, error) {
	if len(entries) > 0xFFFE {
		return nil, fmt.Errorf("vm: pool of %d entries exceeds the index space", len(entries))
	}
	cp := NewConstantPool()
	limit := len(entries) + 1
	checkLink := func(slot int, ref uint16) error {
		if int(ref) == 0 || int(ref) >= limit {
			return fmt.Errorf("vm: pool entry %d links to slot %d, outside [1,%d)", slot, ref, limit)
		}
		return nil
	}
	for i, e := range entries {
		slot := i + 1
		entry := poolEntry{tag: e.Tag, i: e.Int, f: e.Num, ref1: e.Ref1, ref2: e.Ref2}
		switch e.Tag {
		case TagInvalid:
			if i == 0 || !entries[i-1].Tag.isTwoWord() {
				return nil, fmt.Errorf("vm: pool entry %d: stray padding slot", slot)
			}
		case TagUtf8:
			entry.sym = Symbol(e.Text)
			if _, dup := cp.utf8s[e.Text]; !dup {
				cp.utf8s[e.Text] = uint16(slot)
			}
		case TagInteger, TagFloat:
		case TagLong, TagDouble:
			if i+1 >= len(entries) || entries[i+1].Tag != TagInvalid {
				return nil, fmt.Errorf("vm: pool entry %d: two-word entry without padding slot", slot)
			}
		case TagClass, TagString, TagMethodType:
			if err := checkLink(slot, e.Ref1); err != nil {
				return nil, err
			}
		case TagNameAndType, TagFieldref, TagMethodref, TagInterfaceMethodref:
			if err := checkLink(slot, e.Ref1); err != nil {
				return nil, err
			}
			if err := checkLink(slot, e.Ref2); err != nil {
				return nil, err
			}
		case TagMethodHandle:
			if err := checkLink(slot, e.Ref1); err != nil {
				return nil, err
			}
		case TagInvokeDynamic:
			// Ref1 is a bootstrap index, not a slot link.
			if err := checkLink(slot, e.Ref2); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("vm: pool entry %d: unknown tag %d", slot, uint8(e.Tag))
		}
		cp.entries = append(cp.entries, entry)
	}
	return cp, nil
}

func (t Tag) isTwoWord() bool { return t == TagLong || t == TagDouble }
