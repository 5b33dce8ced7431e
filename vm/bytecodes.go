package vm

import (
	"encoding/binary"
	"fmt"
)

// Code is a single bytecode. The values through OpJsrW are the class-file
// opcodes; everything above is interpreter-internal and never appears in a
// class file.
type Code byte

// ---------------------------------------------------------------------------
// Opcodes
// ---------------------------------------------------------------------------

// Constants and stack constants (0x00-0x14)
const (
	OpNop        Code = 0x00
	OpAconstNull Code = 0x01
	OpIconstM1   Code = 0x02
	OpIconst0    Code = 0x03
	OpIconst1    Code = 0x04
	OpIconst2    Code = 0x05
	OpIconst3    Code = 0x06
	OpIconst4    Code = 0x07
	OpIconst5    Code = 0x08
	OpLconst0    Code = 0x09
	OpLconst1    Code = 0x0A
	OpFconst0    Code = 0x0B
	OpFconst1    Code = 0x0C
	OpFconst2    Code = 0x0D
	OpDconst0    Code = 0x0E
	OpDconst1    Code = 0x0F
	OpBipush     Code = 0x10
	OpSipush     Code = 0x11
	OpLdc        Code = 0x12
	OpLdcW       Code = 0x13
	OpLdc2W      Code = 0x14
)

// Local loads (0x15-0x35)
const (
	OpIload   Code = 0x15
	OpLload   Code = 0x16
	OpFload   Code = 0x17
	OpDload   Code = 0x18
	OpAload   Code = 0x19
	OpIload0  Code = 0x1A
	OpIload1  Code = 0x1B
	OpIload2  Code = 0x1C
	OpIload3  Code = 0x1D
	OpLload0  Code = 0x1E
	OpLload1  Code = 0x1F
	OpLload2  Code = 0x20
	OpLload3  Code = 0x21
	OpFload0  Code = 0x22
	OpFload1  Code = 0x23
	OpFload2  Code = 0x24
	OpFload3  Code = 0x25
	OpDload0  Code = 0x26
	OpDload1  Code = 0x27
	OpDload2  Code = 0x28
	OpDload3  Code = 0x29
	OpAload0  Code = 0x2A
	OpAload1  Code = 0x2B
	OpAload2  Code = 0x2C
	OpAload3  Code = 0x2D
	OpIaload  Code = 0x2E
	OpLaload  Code = 0x2F
	OpFaload  Code = 0x30
	OpDaload  Code = 0x31
	OpAaload  Code = 0x32
	OpBaload  Code = 0x33
	OpCaload  Code = 0x34
	OpSaload  Code = 0x35
)

// Local stores (0x36-0x56)
const (
	OpIstore  Code = 0x36
	OpLstore  Code = 0x37
	OpFstore  Code = 0x38
	OpDstore  Code = 0x39
	OpAstore  Code = 0x3A
	OpIstore0 Code = 0x3B
	OpIstore1 Code = 0x3C
	OpIstore2 Code = 0x3D
	OpIstore3 Code = 0x3E
	OpLstore0 Code = 0x3F
	OpLstore1 Code = 0x40
	OpLstore2 Code = 0x41
	OpLstore3 Code = 0x42
	OpFstore0 Code = 0x43
	OpFstore1 Code = 0x44
	OpFstore2 Code = 0x45
	OpFstore3 Code = 0x46
	OpDstore0 Code = 0x47
	OpDstore1 Code = 0x48
	OpDstore2 Code = 0x49
	OpDstore3 Code = 0x4A
	OpAstore0 Code = 0x4B
	OpAstore1 Code = 0x4C
	OpAstore2 Code = 0x4D
	OpAstore3 Code = 0x4E
	OpIastore Code = 0x4F
	OpLastore Code = 0x50
	OpFastore Code = 0x51
	OpDastore Code = 0x52
	OpAastore Code = 0x53
	OpBastore Code = 0x54
	OpCastore Code = 0x55
	OpSastore Code = 0x56
)

// Stack manipulation (0x57-0x5F)
const (
	OpPop    Code = 0x57
	OpPop2   Code = 0x58
	OpDup    Code = 0x59
	OpDupX1  Code = 0x5A
	OpDupX2  Code = 0x5B
	OpDup2   Code = 0x5C
	OpDup2X1 Code = 0x5D
	OpDup2X2 Code = 0x5E
	OpSwap   Code = 0x5F
)

// Arithmetic and conversions (0x60-0x98)
const (
	OpIadd  Code = 0x60
	OpLadd  Code = 0x61
	OpFadd  Code = 0x62
	OpDadd  Code = 0x63
	OpIsub  Code = 0x64
	OpLsub  Code = 0x65
	OpFsub  Code = 0x66
	OpDsub  Code = 0x67
	OpImul  Code = 0x68
	OpLmul  Code = 0x69
	OpFmul  Code = 0x6A
	OpDmul  Code = 0x6B
	OpIdiv  Code = 0x6C
	OpLdiv  Code = 0x6D
	OpFdiv  Code = 0x6E
	OpDdiv  Code = 0x6F
	OpIrem  Code = 0x70
	OpLrem  Code = 0x71
	OpFrem  Code = 0x72
	OpDrem  Code = 0x73
	OpIneg  Code = 0x74
	OpLneg  Code = 0x75
	OpFneg  Code = 0x76
	OpDneg  Code = 0x77
	OpIshl  Code = 0x78
	OpLshl  Code = 0x79
	OpIshr  Code = 0x7A
	OpLshr  Code = 0x7B
	OpIushr Code = 0x7C
	OpLushr Code = 0x7D
	OpIand  Code = 0x7E
	OpLand  Code = 0x7F
	OpIor   Code = 0x80
	OpLor   Code = 0x81
	OpIxor  Code = 0x82
	OpLxor  Code = 0x83
	OpIinc  Code = 0x84
	OpI2l   Code = 0x85
	OpI2f   Code = 0x86
	OpI2d   Code = 0x87
	OpL2i   Code = 0x88
	OpL2f   Code = 0x89
	OpL2d   Code = 0x8A
	OpF2i   Code = 0x8B
	OpF2l   Code = 0x8C
	OpF2d   Code = 0x8D
	OpD2i   Code = 0x8E
	OpD2l   Code = 0x8F
	OpD2f   Code = 0x90
	OpI2b   Code = 0x91
	OpI2c   Code = 0x92
	OpI2s   Code = 0x93
	OpLcmp  Code = 0x94
	OpFcmpl Code = 0x95
	OpFcmpg Code = 0x96
	OpDcmpl Code = 0x97
	OpDcmpg Code = 0x98
)

// Control flow (0x99-0xB1)
const (
	OpIfeq         Code = 0x99
	OpIfne         Code = 0x9A
	OpIflt         Code = 0x9B
	OpIfge         Code = 0x9C
	OpIfgt         Code = 0x9D
	OpIfle         Code = 0x9E
	OpIfIcmpeq     Code = 0x9F
	OpIfIcmpne     Code = 0xA0
	OpIfIcmplt     Code = 0xA1
	OpIfIcmpge     Code = 0xA2
	OpIfIcmpgt     Code = 0xA3
	OpIfIcmple     Code = 0xA4
	OpIfAcmpeq     Code = 0xA5
	OpIfAcmpne     Code = 0xA6
	OpGoto         Code = 0xA7
	OpJsr          Code = 0xA8
	OpRet          Code = 0xA9
	OpTableswitch  Code = 0xAA
	OpLookupswitch Code = 0xAB
	OpIreturn      Code = 0xAC
	OpLreturn      Code = 0xAD
	OpFreturn      Code = 0xAE
	OpDreturn      Code = 0xAF
	OpAreturn      Code = 0xB0
	OpReturn       Code = 0xB1
)

// Field access, invocation, objects (0xB2-0xC9)
const (
	OpGetstatic       Code = 0xB2
	OpPutstatic       Code = 0xB3
	OpGetfield        Code = 0xB4
	OpPutfield        Code = 0xB5
	OpInvokevirtual   Code = 0xB6
	OpInvokespecial   Code = 0xB7
	OpInvokestatic    Code = 0xB8
	OpInvokeinterface Code = 0xB9
	OpInvokedynamic   Code = 0xBA
	OpNew             Code = 0xBB
	OpNewarray        Code = 0xBC
	OpAnewarray       Code = 0xBD
	OpArraylength     Code = 0xBE
	OpAthrow          Code = 0xBF
	OpCheckcast       Code = 0xC0
	OpInstanceof      Code = 0xC1
	OpMonitorenter    Code = 0xC2
	OpMonitorexit     Code = 0xC3
	OpWide            Code = 0xC4
	OpMultianewarray  Code = 0xC5
	OpIfnull          Code = 0xC6
	OpIfnonnull       Code = 0xC7
	OpGotoW           Code = 0xC8
	OpJsrW            Code = 0xC9
)

// Interpreter-internal codes (0xCA-). These never appear in a class file:
// OpBreakpoint overwrites an instruction under a debugger, and the fast
// constant loads are installed by the quickening rewriter.
const (
	OpBreakpoint Code = 0xCA
	OpFastAldc   Code = 0xCB
	OpFastAldcW  Code = 0xCC
)

// ---------------------------------------------------------------------------
// Format descriptors
// ---------------------------------------------------------------------------

// FormatFlags describe the operand shape of an opcode, derived from its
// format string at registration time.
type FormatFlags uint16

const (
	FmtHasConstant   FormatFlags = 1 << iota // embedded signed immediate ("c")
	FmtHasLocalIndex                         // local-variable index ("i")
	FmtHasCacheIndex                         // cp-cache index, written by the rewriter ("j")
	FmtHasPoolIndex                          // constant-pool index ("k")
	FmtHasOffset                             // branch offset ("o")
	FmtHasU2                                 // some operand field is 2 bytes wide
	FmtHasU4                                 // some operand field is 4 bytes wide
	FmtNotVariable                           // fixed length (plain or wide form)
	FmtNotSimple                             // wide or variable length

	fmtMask = FmtNotSimple<<1 - 1
)

// Has reports whether every bit of mask is set.
func (f FormatFlags) Has(mask FormatFlags) bool { return f&mask == mask }

type descriptor struct {
	name       string
	length     int8 // 0 for variable-length instructions
	wideLength int8 // 0 when no wide form exists
	flags      FormatFlags
	wideFlags  FormatFlags
	javaCode   Code // canonical form for quickened codes, else the code itself
	canRewrite bool
	defined    bool
}

var descriptors [256]descriptor

// Format strings, one byte per character:
//
//	b  the opcode byte itself
//	c  signed immediate constant
//	i  local-variable index
//	j  cp-cache index (operand a quickening rewrite targets)
//	k  constant-pool index
//	o  branch offset
//	_  padding / ignored
//	w  wide prefix (wide formats start "wb")
//
// A field spelled with two or four letters is a 2- or 4-byte big-endian
// operand. An empty format means variable length.
func computeFlags(format string) FormatFlags {
	if format == "" {
		return FmtNotSimple
	}
	var flags FormatFlags
	i := 0
	switch format[0] {
	case 'b':
		flags |= FmtNotVariable
		i = 1
	case 'w':
		if len(format) < 2 || format[1] != 'b' {
			panic("vm: wide format must start with \"wb\": " + format)
		}
		flags |= FmtNotVariable | FmtNotSimple
		i = 2
	default:
		panic("vm: format must start with 'b' or \"wb\": " + format)
	}
	for i < len(format) {
		ch := format[i]
		if ch == '_' {
			i++
			continue
		}
		width := 0
		for i < len(format) && format[i] == ch {
			width++
			i++
		}
		switch ch {
		case 'c':
			flags |= FmtHasConstant
		case 'i':
			flags |= FmtHasLocalIndex
		case 'j':
			flags |= FmtHasCacheIndex
		case 'k':
			flags |= FmtHasPoolIndex
		case 'o':
			flags |= FmtHasOffset
		default:
			panic(fmt.Sprintf("vm: bad format letter %q in %q", ch, format))
		}
		switch width {
		case 1:
			// single-byte field, no width flag
		case 2:
			flags |= FmtHasU2
		case 4:
			flags |= FmtHasU4
		default:
			panic(fmt.Sprintf("vm: bad field width %d in %q", width, format))
		}
	}
	return flags
}

func defFull(code Code, name, format, wideFormat string, java Code, canRewrite bool) {
	if descriptors[code].defined {
		panic("vm: duplicate opcode definition: " + name)
	}
	if wideFormat != "" && format == "" {
		panic("vm: wide form requires a plain form: " + name)
	}
	d := descriptor{
		name:       name,
		length:     int8(len(format)),
		wideLength: int8(len(wideFormat)),
		flags:      computeFlags(format),
		javaCode:   java,
		canRewrite: canRewrite,
		defined:    true,
	}
	if wideFormat != "" {
		d.wideFlags = computeFlags(wideFormat)
	}
	descriptors[code] = d
}

func def(code Code, name, format, wideFormat string) {
	defFull(code, name, format, wideFormat, code, false)
}

// defRewrite registers an opcode the quickening rewriter may transform.
func defRewrite(code Code, name, format, wideFormat string) {
	defFull(code, name, format, wideFormat, code, true)
}

// defQuick registers an interpreter-internal quickened opcode and its
// canonical class-file form.
func defQuick(code Code, name, format string, java Code) {
	defFull(code, name, format, "", java, true)
}

func init() {
	def(OpNop, "nop", "b", "")
	def(OpAconstNull, "aconst_null", "b", "")
	def(OpIconstM1, "iconst_m1", "b", "")
	def(OpIconst0, "iconst_0", "b", "")
	def(OpIconst1, "iconst_1", "b", "")
	def(OpIconst2, "iconst_2", "b", "")
	def(OpIconst3, "iconst_3", "b", "")
	def(OpIconst4, "iconst_4", "b", "")
	def(OpIconst5, "iconst_5", "b", "")
	def(OpLconst0, "lconst_0", "b", "")
	def(OpLconst1, "lconst_1", "b", "")
	def(OpFconst0, "fconst_0", "b", "")
	def(OpFconst1, "fconst_1", "b", "")
	def(OpFconst2, "fconst_2", "b", "")
	def(OpDconst0, "dconst_0", "b", "")
	def(OpDconst1, "dconst_1", "b", "")
	def(OpBipush, "bipush", "bc", "")
	def(OpSipush, "sipush", "bcc", "")
	defRewrite(OpLdc, "ldc", "bk", "")
	defRewrite(OpLdcW, "ldc_w", "bkk", "")
	def(OpLdc2W, "ldc2_w", "bkk", "")
	def(OpIload, "iload", "bi", "wbii")
	def(OpLload, "lload", "bi", "wbii")
	def(OpFload, "fload", "bi", "wbii")
	def(OpDload, "dload", "bi", "wbii")
	def(OpAload, "aload", "bi", "wbii")
	def(OpIload0, "iload_0", "b", "")
	def(OpIload1, "iload_1", "b", "")
	def(OpIload2, "iload_2", "b", "")
	def(OpIload3, "iload_3", "b", "")
	def(OpLload0, "lload_0", "b", "")
	def(OpLload1, "lload_1", "b", "")
	def(OpLload2, "lload_2", "b", "")
	def(OpLload3, "lload_3", "b", "")
	def(OpFload0, "fload_0", "b", "")
	def(OpFload1, "fload_1", "b", "")
	def(OpFload2, "fload_2", "b", "")
	def(OpFload3, "fload_3", "b", "")
	def(OpDload0, "dload_0", "b", "")
	def(OpDload1, "dload_1", "b", "")
	def(OpDload2, "dload_2", "b", "")
	def(OpDload3, "dload_3", "b", "")
	defRewrite(OpAload0, "aload_0", "b", "")
	def(OpAload1, "aload_1", "b", "")
	def(OpAload2, "aload_2", "b", "")
	def(OpAload3, "aload_3", "b", "")
	def(OpIaload, "iaload", "b", "")
	def(OpLaload, "laload", "b", "")
	def(OpFaload, "faload", "b", "")
	def(OpDaload, "daload", "b", "")
	def(OpAaload, "aaload", "b", "")
	def(OpBaload, "baload", "b", "")
	def(OpCaload, "caload", "b", "")
	def(OpSaload, "saload", "b", "")
	def(OpIstore, "istore", "bi", "wbii")
	def(OpLstore, "lstore", "bi", "wbii")
	def(OpFstore, "fstore", "bi", "wbii")
	def(OpDstore, "dstore", "bi", "wbii")
	def(OpAstore, "astore", "bi", "wbii")
	def(OpIstore0, "istore_0", "b", "")
	def(OpIstore1, "istore_1", "b", "")
	def(OpIstore2, "istore_2", "b", "")
	def(OpIstore3, "istore_3", "b", "")
	def(OpLstore0, "lstore_0", "b", "")
	def(OpLstore1, "lstore_1", "b", "")
	def(OpLstore2, "lstore_2", "b", "")
	def(OpLstore3, "lstore_3", "b", "")
	def(OpFstore0, "fstore_0", "b", "")
	def(OpFstore1, "fstore_1", "b", "")
	def(OpFstore2, "fstore_2", "b", "")
	def(OpFstore3, "fstore_3", "b", "")
	def(OpDstore0, "dstore_0", "b", "")
	def(OpDstore1, "dstore_1", "b", "")
	def(OpDstore2, "dstore_2", "b", "")
	def(OpDstore3, "dstore_3", "b", "")
	def(OpAstore0, "astore_0", "b", "")
	def(OpAstore1, "astore_1", "b", "")
	def(OpAstore2, "astore_2", "b", "")
	def(OpAstore3, "astore_3", "b", "")
	def(OpIastore, "iastore", "b", "")
	def(OpLastore, "lastore", "b", "")
	def(OpFastore, "fastore", "b", "")
	def(OpDastore, "dastore", "b", "")
	def(OpAastore, "aastore", "b", "")
	def(OpBastore, "bastore", "b", "")
	def(OpCastore, "castore", "b", "")
	def(OpSastore, "sastore", "b", "")
	def(OpPop, "pop", "b", "")
	def(OpPop2, "pop2", "b", "")
	def(OpDup, "dup", "b", "")
	def(OpDupX1, "dup_x1", "b", "")
	def(OpDupX2, "dup_x2", "b", "")
	def(OpDup2, "dup2", "b", "")
	def(OpDup2X1, "dup2_x1", "b", "")
	def(OpDup2X2, "dup2_x2", "b", "")
	def(OpSwap, "swap", "b", "")
	def(OpIadd, "iadd", "b", "")
	def(OpLadd, "ladd", "b", "")
	def(OpFadd, "fadd", "b", "")
	def(OpDadd, "dadd", "b", "")
	def(OpIsub, "isub", "b", "")
	def(OpLsub, "lsub", "b", "")
	def(OpFsub, "fsub", "b", "")
	def(OpDsub, "dsub", "b", "")
	def(OpImul, "imul", "b", "")
	def(OpLmul, "lmul", "b", "")
	def(OpFmul, "fmul", "b", "")
	def(OpDmul, "dmul", "b", "")
	def(OpIdiv, "idiv", "b", "")
	def(OpLdiv, "ldiv", "b", "")
	def(OpFdiv, "fdiv", "b", "")
	def(OpDdiv, "ddiv", "b", "")
	def(OpIrem, "irem", "b", "")
	def(OpLrem, "lrem", "b", "")
	def(OpFrem, "frem", "b", "")
	def(OpDrem, "drem", "b", "")
	def(OpIneg, "ineg", "b", "")
	def(OpLneg, "lneg", "b", "")
	def(OpFneg, "fneg", "b", "")
	def(OpDneg, "dneg", "b", "")
	def(OpIshl, "ishl", "b", "")
	def(OpLshl, "lshl", "b", "")
	def(OpIshr, "ishr", "b", "")
	def(OpLshr, "lshr", "b", "")
	def(OpIushr, "iushr", "b", "")
	def(OpLushr, "lushr", "b", "")
	def(OpIand, "iand", "b", "")
	def(OpLand, "land", "b", "")
	def(OpIor, "ior", "b", "")
	def(OpLor, "lor", "b", "")
	def(OpIxor, "ixor", "b", "")
	def(OpLxor, "lxor", "b", "")
	def(OpIinc, "iinc", "bic", "wbiicc")
	def(OpI2l, "i2l", "b", "")
	def(OpI2f, "i2f", "b", "")
	def(OpI2d, "i2d", "b", "")
	def(OpL2i, "l2i", "b", "")
	def(OpL2f, "l2f", "b", "")
	def(OpL2d, "l2d", "b", "")
	def(OpF2i, "f2i", "b", "")
	def(OpF2l, "f2l", "b", "")
	def(OpF2d, "f2d", "b", "")
	def(OpD2i, "d2i", "b", "")
	def(OpD2l, "d2l", "b", "")
	def(OpD2f, "d2f", "b", "")
	def(OpI2b, "i2b", "b", "")
	def(OpI2c, "i2c", "b", "")
	def(OpI2s, "i2s", "b", "")
	def(OpLcmp, "lcmp", "b", "")
	def(OpFcmpl, "fcmpl", "b", "")
	def(OpFcmpg, "fcmpg", "b", "")
	def(OpDcmpl, "dcmpl", "b", "")
	def(OpDcmpg, "dcmpg", "b", "")
	def(OpIfeq, "ifeq", "boo", "")
	def(OpIfne, "ifne", "boo", "")
	def(OpIflt, "iflt", "boo", "")
	def(OpIfge, "ifge", "boo", "")
	def(OpIfgt, "ifgt", "boo", "")
	def(OpIfle, "ifle", "boo", "")
	def(OpIfIcmpeq, "if_icmpeq", "boo", "")
	def(OpIfIcmpne, "if_icmpne", "boo", "")
	def(OpIfIcmplt, "if_icmplt", "boo", "")
	def(OpIfIcmpge, "if_icmpge", "boo", "")
	def(OpIfIcmpgt, "if_icmpgt", "boo", "")
	def(OpIfIcmple, "if_icmple", "boo", "")
	def(OpIfAcmpeq, "if_acmpeq", "boo", "")
	def(OpIfAcmpne, "if_acmpne", "boo", "")
	def(OpGoto, "goto", "boo", "")
	def(OpJsr, "jsr", "boo", "")
	def(OpRet, "ret", "bi", "wbii")
	def(OpTableswitch, "tableswitch", "", "")
	defRewrite(OpLookupswitch, "lookupswitch", "", "")
	def(OpIreturn, "ireturn", "b", "")
	def(OpLreturn, "lreturn", "b", "")
	def(OpFreturn, "freturn", "b", "")
	def(OpDreturn, "dreturn", "b", "")
	def(OpAreturn, "areturn", "b", "")
	def(OpReturn, "return", "b", "")
	defRewrite(OpGetstatic, "getstatic", "bjj", "")
	defRewrite(OpPutstatic, "putstatic", "bjj", "")
	defRewrite(OpGetfield, "getfield", "bjj", "")
	defRewrite(OpPutfield, "putfield", "bjj", "")
	defRewrite(OpInvokevirtual, "invokevirtual", "bjj", "")
	defRewrite(OpInvokespecial, "invokespecial", "bjj", "")
	defRewrite(OpInvokestatic, "invokestatic", "bjj", "")
	defRewrite(OpInvokeinterface, "invokeinterface", "bjj__", "")
	defRewrite(OpInvokedynamic, "invokedynamic", "bjjjj", "")
	defRewrite(OpNew, "new", "bkk", "")
	def(OpNewarray, "newarray", "bc", "")
	def(OpAnewarray, "anewarray", "bkk", "")
	def(OpArraylength, "arraylength", "b", "")
	def(OpAthrow, "athrow", "b", "")
	def(OpCheckcast, "checkcast", "bkk", "")
	def(OpInstanceof, "instanceof", "bkk", "")
	def(OpMonitorenter, "monitorenter", "b", "")
	def(OpMonitorexit, "monitorexit", "b", "")
	def(OpWide, "wide", "", "")
	def(OpMultianewarray, "multianewarray", "bkkc", "")
	def(OpIfnull, "ifnull", "boo", "")
	def(OpIfnonnull, "ifnonnull", "boo", "")
	def(OpGotoW, "goto_w", "boooo", "")
	def(OpJsrW, "jsr_w", "boooo", "")
	def(OpBreakpoint, "breakpoint", "", "")
	defQuick(OpFastAldc, "fast_aldc", "bj", OpLdc)
	defQuick(OpFastAldcW, "fast_aldc_w", "bjj", OpLdcW)
}

// ---------------------------------------------------------------------------
// Table lookup
// ---------------------------------------------------------------------------

func checkDefined(c Code) {
	if debugChecks && !descriptors[c].defined {
		panic(fmt.Sprintf("vm: undefined opcode 0x%02X", byte(c)))
	}
}

// IsDefined reports whether c has a registered descriptor.
func (c Code) IsDefined() bool { return descriptors[c].defined }

// Name returns the mnemonic for c.
func (c Code) Name() string {
	if !descriptors[c].defined {
		return fmt.Sprintf("unknown_0x%02X", byte(c))
	}
	return descriptors[c].name
}

// Flags returns the format flags for c, or for its wide form.
func (c Code) Flags(wide bool) FormatFlags {
	checkDefined(c)
	if wide {
		return descriptors[c].wideFlags
	}
	return descriptors[c].flags
}

// Length returns the fixed instruction length of c, or 0 when the length
// depends on the instruction's position or payload.
func (c Code) Length() int {
	checkDefined(c)
	return int(descriptors[c].length)
}

// WideLength returns the length of c's wide form (counting the wide prefix
// byte), or 0 when no wide form exists.
func (c Code) WideLength() int {
	checkDefined(c)
	return int(descriptors[c].wideLength)
}

// JavaCode maps a quickened opcode to the class-file opcode it replaced;
// for ordinary opcodes it returns c itself.
func (c Code) JavaCode() Code {
	checkDefined(c)
	return descriptors[c].javaCode
}

// IsQuickened reports whether c is an interpreter-installed replacement
// for a class-file opcode.
func (c Code) IsQuickened() bool {
	checkDefined(c)
	return descriptors[c].javaCode != c
}

// CanRewrite reports whether c participates in quickening, either as a
// rewrite-eligible class-file opcode or as a quickened form.
func (c Code) CanRewrite() bool {
	checkDefined(c)
	return descriptors[c].canRewrite
}

// ---------------------------------------------------------------------------
// Rewrite policy
// ---------------------------------------------------------------------------

// CheckMustRewrite reports whether the rewriter must transform a
// rewrite-eligible opcode when it encounters one. Three eligible opcodes
// are exempt: aload_0, whose rewrite is deferred pending field-access
// fusion; lookupswitch, which the interpreter never rewrites; and new,
// which is not safe to quicken eagerly. Precondition: c.CanRewrite().
func CheckMustRewrite(c Code) bool {
	if debugChecks && !c.CanRewrite() {
		panic("vm.CheckMustRewrite: opcode not rewrite-eligible: " + c.Name())
	}
	switch c {
	case OpAload0, OpLookupswitch, OpNew:
		return false
	}
	return true
}

// MustRewrite reports whether the rewriter transforms sites of c.
func MustRewrite(c Code) bool {
	return c.CanRewrite() && CheckMustRewrite(c)
}

// ---------------------------------------------------------------------------
// Instruction length in a code stream
// ---------------------------------------------------------------------------

func alignUp4(off int) int { return (off + 3) &^ 3 }

// LengthAt computes the full length of the instruction starting at bci,
// including variable-length switch payloads and the wide prefix.
func LengthAt(code []byte, bci int) int {
	c := Code(code[bci])
	if l := c.Length(); l > 0 {
		return l
	}
	switch c {
	case OpWide:
		return Code(code[bci+1]).WideLength()
	case OpTableswitch:
		first := alignUp4(bci + 1)
		lo := int(int32(binary.BigEndian.Uint32(code[first+4:])))
		hi := int(int32(binary.BigEndian.Uint32(code[first+8:])))
		return first + (3+hi-lo+1)*4 - bci
	case OpLookupswitch:
		first := alignUp4(bci + 1)
		npairs := int(int32(binary.BigEndian.Uint32(code[first+4:])))
		return first + (2+2*npairs)*4 - bci
	case OpBreakpoint:
		// Length of the displaced instruction is tracked by the debugger
		// machinery; for stream walking, step over the trap byte.
		return 1
	}
	panic("vm.LengthAt: no length for opcode " + c.Name())
}
