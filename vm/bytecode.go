package vm

import (
	"encoding/binary"
	"fmt"
)

// ---------------------------------------------------------------------------
// Bytecode: base instruction accessor
// ---------------------------------------------------------------------------

// Bytecode is a non-owning view of one instruction: the owning method plus
// the byte offset of the opcode. It is cheap to construct, holds no state
// beyond those two fields, and every read re-derives what it needs from
// the bytes, so a view built after a quickening rewrite always sees the
// rewritten encoding. All multi-byte operands are big-endian.
type Bytecode struct {
	method *Method
	bci    int
}

// NewBytecode returns a view of the instruction at bci in m.
func NewBytecode(m *Method, bci int) Bytecode {
	if debugChecks {
		if m == nil {
			panic("vm.NewBytecode: nil method")
		}
		if bci < 0 || bci >= len(m.code) {
			panic(fmt.Sprintf("vm.NewBytecode: bci %d outside method %s (length %d)", bci, m.Name, len(m.code)))
		}
	}
	return Bytecode{method: m, bci: bci}
}

// Method returns the owning method.
func (b Bytecode) Method() *Method { return b.method }

// BCI returns the offset of the opcode in the method's code.
func (b Bytecode) BCI() int { return b.bci }

// Code returns the opcode byte currently at the view's position. Read
// fresh on every call: the byte can change under quickening.
func (b Bytecode) Code() Code { return Code(b.method.code[b.bci]) }

// JavaCode returns the canonical class-file opcode for the instruction,
// mapping quickened forms back to their original.
func (b Bytecode) JavaCode() Code { return b.Code().JavaCode() }

// ---------------------------------------------------------------------------
// Raw reads
// ---------------------------------------------------------------------------

func (b Bytecode) checkRead(off, width int) {
	if debugChecks {
		if off < 0 || b.bci+off+width > len(b.method.code) {
			panic(fmt.Sprintf("vm: read of %d bytes at bci %d+%d runs past method %s", width, b.bci, off, b.method.Name))
		}
	}
}

// U1At returns the byte at the given offset from the opcode.
func (b Bytecode) U1At(off int) uint8 {
	b.checkRead(off, 1)
	return b.method.code[b.bci+off]
}

// U2At returns the big-endian 2-byte field at the given offset.
func (b Bytecode) U2At(off int) uint16 {
	b.checkRead(off, 2)
	return binary.BigEndian.Uint16(b.method.code[b.bci+off:])
}

// U4At returns the big-endian 4-byte field at the given offset.
func (b Bytecode) U4At(off int) uint32 {
	b.checkRead(off, 4)
	return binary.BigEndian.Uint32(b.method.code[b.bci+off:])
}

// S1At, S2At and S4At are the signed counterparts.
func (b Bytecode) S1At(off int) int8  { return int8(b.U1At(off)) }
func (b Bytecode) S2At(off int) int16 { return int16(b.U2At(off)) }
func (b Bytecode) S4At(off int) int32 { return int32(b.U4At(off)) }

// AlignedOffset rounds bci+off up to the next 4-byte boundary, measured
// from the start of the code array, and returns the distance from the
// opcode. Switch payloads are padded this way so their 4-byte fields can
// be read aligned wherever the opcode falls.
func (b Bytecode) AlignedOffset(off int) int {
	return alignUp4(b.bci+off) - b.bci
}

// ---------------------------------------------------------------------------
// Operand readers
// ---------------------------------------------------------------------------

// IndexU1 reads a 1-byte index operand, cross-checked against c's format.
func (b Bytecode) IndexU1(c Code) uint32 {
	b.assertSameFormatAs(c, false)
	assertIndexSize(1, c, false)
	return uint32(b.U1At(1))
}

// IndexU2 reads a 2-byte index operand; for a wide-prefixed instruction
// the operand starts after the prefixed opcode.
func (b Bytecode) IndexU2(c Code, wide bool) uint32 {
	b.assertSameFormatAs(c, wide)
	assertIndexSize(2, c, wide)
	if wide {
		return uint32(b.U2At(2))
	}
	return uint32(b.U2At(1))
}

// IndexU2CPCache reads a 2-byte cp-cache index operand and tags it with
// CPCacheIndexTag, keeping it disjoint from any raw pool index.
func (b Bytecode) IndexU2CPCache(c Code) uint32 {
	b.assertSameFormatAs(c, false)
	assertIndexSize(2, c, false)
	assertCacheIndex(c, false)
	return uint32(b.U2At(1)) + CPCacheIndexTag
}

// IndexU4 reads the 4-byte cache index a rewritten invokedynamic carries.
// The value is a plain cache slot, never tagged.
func (b Bytecode) IndexU4(c Code) uint32 {
	b.assertSameFormatAs(c, false)
	assertIndexSize(4, c, false)
	return b.U4At(1)
}

// HasIndexU4 reports whether c's index operand is the 4-byte form.
func (b Bytecode) HasIndexU4(c Code) bool {
	return c == OpInvokedynamic
}

// OffsetS2 reads the signed 2-byte branch offset of c.
func (b Bytecode) OffsetS2(c Code) int32 {
	b.assertSameFormatAs(c, false)
	assertOffsetSize(2, c, false)
	return int32(b.S2At(1))
}

// OffsetS4 reads the signed 4-byte branch offset of c.
func (b Bytecode) OffsetS4(c Code) int32 {
	b.assertSameFormatAs(c, false)
	assertOffsetSize(4, c, false)
	return b.S4At(1)
}

// ConstantS1 reads the signed immediate byte at offset where.
func (b Bytecode) ConstantS1(where int, c Code) int8 {
	b.assertSameFormatAs(c, false)
	assertConstantSize(1, where, c, false)
	return b.S1At(where)
}

// ConstantS2 reads the signed 2-byte immediate at offset where.
func (b Bytecode) ConstantS2(where int, c Code, wide bool) int16 {
	b.assertSameFormatAs(c, wide)
	assertConstantSize(2, where, c, wide)
	return b.S2At(where)
}
