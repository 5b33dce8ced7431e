package vm

import "fmt"

// Format-consistency checks. Every accessor reads operands with hard-coded
// offsets; these cross-check that arithmetic against the format table so
// the two cannot drift apart as opcodes evolve. They guard against bugs in
// this package and its callers, not against untrusted input, and compile
// to nothing under the vmrelease tag.

// assertSameFormatAs checks that the opcode actually present at the view's
// bci has the same operand format as test. A breakpoint byte passes
// silently: the displaced instruction is unknowable here. For wide forms
// the prefix is peeled before comparing.
func (b Bytecode) assertSameFormatAs(test Code, wide bool) {
	if !debugChecks {
		return
	}
	this := Code(b.method.code[b.bci])
	if this == OpBreakpoint {
		return
	}
	if wide {
		if this != OpWide {
			panic(fmt.Sprintf("vm: expected a wide instruction at bci %d, have %s", b.bci, this.Name()))
		}
		this = Code(b.method.code[b.bci+1])
		if this == OpBreakpoint {
			return
		}
	}
	have := this.Flags(wide) & fmtMask
	want := test.Flags(wide) & fmtMask
	if have != want {
		panic(fmt.Sprintf("vm: format mismatch at bci %d: have %s, expected format of %s", b.bci, this.Name(), test.Name()))
	}
}

// assertIndexSize checks that c carries an index operand of exactly size
// bytes (and nothing that would change the operand layout).
func assertIndexSize(size int, c Code, wide bool) {
	if !debugChecks {
		return
	}
	have := c.Flags(wide) & (FmtHasU2 | FmtHasU4 | FmtNotSimple | FmtHasOffset)
	var need FormatFlags
	switch size {
	case 1:
		need = 0
	case 2:
		need = FmtHasU2
	case 4:
		need = FmtHasU4
	default:
		panic(fmt.Sprintf("vm: assertIndexSize: bad size %d", size))
	}
	if wide {
		need |= FmtNotSimple
	}
	if have != need {
		panic(fmt.Sprintf("vm: %s has no %d-byte index operand", c.Name(), size))
	}
}

// assertOffsetSize checks that c is a pure branch with an offset operand of
// exactly size bytes.
func assertOffsetSize(size int, c Code, wide bool) {
	if !debugChecks {
		return
	}
	have := c.Flags(wide) & fmtMask
	var need FormatFlags
	switch size {
	case 2:
		need = FmtNotVariable | FmtHasOffset | FmtHasU2
	case 4:
		need = FmtNotVariable | FmtHasOffset | FmtHasU4
	default:
		panic(fmt.Sprintf("vm: assertOffsetSize: bad size %d", size))
	}
	if wide {
		need |= FmtNotSimple
	}
	if have != need {
		panic(fmt.Sprintf("vm: %s has no %d-byte offset operand", c.Name(), size))
	}
}

// assertConstantSize checks that c embeds an immediate of exactly size
// bytes at offset where, ending exactly at the instruction's declared
// length. A local-index field (iinc) is ignored in the comparison.
func assertConstantSize(size, where int, c Code, wide bool) {
	if !debugChecks {
		return
	}
	have := c.Flags(wide) & fmtMask &^ FmtHasLocalIndex
	var need FormatFlags
	switch size {
	case 1:
		need = FmtNotVariable | FmtHasConstant
	case 2:
		need = FmtNotVariable | FmtHasConstant | FmtHasU2
	default:
		panic(fmt.Sprintf("vm: assertConstantSize: bad size %d", size))
	}
	if wide {
		need |= FmtNotSimple
	}
	length := c.Length()
	if wide {
		length = c.WideLength()
	}
	if have != need || where+size != length {
		panic(fmt.Sprintf("vm: %s has no %d-byte immediate ending at %d", c.Name(), size, where+size))
	}
}

// assertCacheIndex checks that c's index operand is a cp-cache slot, the
// encoding the rewriter installs.
func assertCacheIndex(c Code, wide bool) {
	if !debugChecks {
		return
	}
	if c.Flags(wide)&FmtHasCacheIndex == 0 {
		panic("vm: " + c.Name() + " operand is not a cache index")
	}
}
