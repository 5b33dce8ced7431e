package vm

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Disassembler
// ---------------------------------------------------------------------------

// poolConstantText renders the pool entry at index the way a listing
// shows it, without resolving anything.
func poolConstantText(pool *ConstantPool, index uint32) string {
	switch pool.TagAt(index) {
	case TagInteger:
		return fmt.Sprintf("%d (int)", pool.IntAt(index))
	case TagFloat:
		return fmt.Sprintf("%g (float)", pool.FloatAt(index))
	case TagLong:
		return fmt.Sprintf("%d (long)", pool.LongAt(index))
	case TagDouble:
		return fmt.Sprintf("%g (double)", pool.DoubleAt(index))
	case TagString:
		return fmt.Sprintf("%q", string(pool.StringAt(index)))
	case TagClass:
		return fmt.Sprintf("class %s", pool.ClassNameAt(index))
	case TagMethodType:
		return fmt.Sprintf("methodtype %s", pool.MethodTypeDescriptorAt(index))
	case TagMethodHandle:
		ref := pool.MethodHandleRefIndexAt(index)
		return fmt.Sprintf("methodhandle kind=%d %s.%s%s",
			pool.MethodHandleRefKindAt(index),
			pool.KlassNameAt(ref), pool.NameRefAt(ref), pool.SignatureRefAt(ref))
	}
	return pool.TagAt(index).String()
}

// memberText renders a member or dynamic reference operand: the raw
// operand plus the symbolic name it stands for.
func memberText(b Bytecode) string {
	pool := b.method.pool
	c := b.Code()
	if c == OpInvokedynamic && pool.Cache() == nil {
		// Unrewritten call sites still carry the class-file u2 encoding.
		pidx := uint32(b.U2At(1))
		return fmt.Sprintf("#%d ; %s:%s", pidx, pool.NameRefAt(pidx), pool.SignatureRefAt(pidx))
	}
	ref := NewMemberRef(b.method, b.bci)
	if c == OpInvokedynamic {
		return fmt.Sprintf("#%d ; %s:%s", ref.Index(), ref.Name(), ref.Signature())
	}
	return fmt.Sprintf("#%d ; %s.%s:%s", ref.Index(), ref.ClassName(), ref.Name(), ref.Signature())
}

// constLoadText renders a constant-load operand with the pool text it
// loads.
func constLoadText(b Bytecode) string {
	lc := LoadConstant{b}
	return fmt.Sprintf("#%d ; %s", lc.RawIndex(), poolConstantText(b.method.pool, lc.PoolIndex()))
}

func tableswitchText(b Bytecode) string {
	ts := Tableswitch{b}
	var sb strings.Builder
	fmt.Fprintf(&sb, "low=%d high=%d default=%d [", ts.LowKey(), ts.HighKey(), int32(b.bci)+ts.DefaultOffset())
	for i := 0; i < ts.Length(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", int32(b.bci)+ts.DestOffsetAt(i))
	}
	sb.WriteString("]")
	return sb.String()
}

func lookupswitchText(b Bytecode) string {
	ls := Lookupswitch{b}
	var sb strings.Builder
	fmt.Fprintf(&sb, "default=%d {", int32(b.bci)+ls.DefaultOffset())
	for i := 0; i < ls.NumberOfPairs(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		p := ls.PairAt(i)
		fmt.Fprintf(&sb, "%d: %d", p.Match, int32(b.bci)+p.Offset)
	}
	sb.WriteString("}")
	return sb.String()
}

// DisassembleInstruction renders the instruction at bci as one listing
// line, without the leading offset.
func DisassembleInstruction(m *Method, bci int) string {
	c := Code(m.code[bci])
	if !c.IsDefined() {
		return fmt.Sprintf(".byte 0x%02X", byte(c))
	}
	b := NewBytecode(m, bci)
	name := c.Name()

	switch c {
	case OpBipush:
		return fmt.Sprintf("%s %d", name, b.ConstantS1(1, c))
	case OpSipush:
		return fmt.Sprintf("%s %d", name, b.ConstantS2(1, c, false))
	case OpLdc, OpLdcW, OpLdc2W, OpFastAldc, OpFastAldcW:
		return fmt.Sprintf("%s %s", name, constLoadText(b))
	case OpIinc:
		return fmt.Sprintf("%s %d %d", name, b.U1At(1), b.ConstantS1(2, c))
	case OpWide:
		sub := Code(m.code[bci+1])
		if sub == OpIinc {
			return fmt.Sprintf("wide %s %d %d", sub.Name(), b.U2At(2), b.ConstantS2(4, sub, true))
		}
		return fmt.Sprintf("wide %s %d", sub.Name(), b.IndexU2(sub, true))
	case OpNewarray:
		return fmt.Sprintf("%s %s", name, BasicType(b.U1At(1)))
	case OpTableswitch:
		return fmt.Sprintf("%s %s", name, tableswitchText(b))
	case OpLookupswitch:
		return fmt.Sprintf("%s %s", name, lookupswitchText(b))
	case OpGetstatic, OpPutstatic, OpGetfield, OpPutfield,
		OpInvokevirtual, OpInvokespecial, OpInvokestatic, OpInvokedynamic:
		return fmt.Sprintf("%s %s", name, memberText(b))
	case OpInvokeinterface:
		return fmt.Sprintf("%s %s count %d", name, memberText(b), b.U1At(3))
	case OpNew, OpAnewarray, OpCheckcast, OpInstanceof:
		pidx := b.IndexU2(c, false)
		return fmt.Sprintf("%s #%d ; %s", name, pidx, b.method.pool.ClassNameAt(pidx))
	case OpMultianewarray:
		ma := Multianewarray{b}
		return fmt.Sprintf("%s #%d dim %d ; %s", name, ma.Index(), ma.Dimensions(), ma.ClassName())
	}

	flags := c.Flags(false)
	switch {
	case flags.Has(FmtHasOffset):
		if flags.Has(FmtHasU4) {
			return fmt.Sprintf("%s %d", name, int32(bci)+b.OffsetS4(c))
		}
		return fmt.Sprintf("%s %d", name, int32(bci)+b.OffsetS2(c))
	case flags.Has(FmtHasLocalIndex):
		return fmt.Sprintf("%s %d", name, b.IndexU1(c))
	}
	return name
}

// Disassemble renders every instruction of m, one per line, each
// prefixed with its offset.
func Disassemble(m *Method) string {
	var sb strings.Builder
	for bci := 0; bci < len(m.code); {
		fmt.Fprintf(&sb, "%4d: %s\n", bci, DisassembleInstruction(m, bci))
		c := Code(m.code[bci])
		if !c.IsDefined() {
			bci++
			continue
		}
		n := LengthAt(m.code, bci)
		if n <= 0 {
			bci++
			continue
		}
		bci += n
	}
	return sb.String()
}
