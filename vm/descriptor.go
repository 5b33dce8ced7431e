package vm

import "strings"

// ---------------------------------------------------------------------------
// Basic types and descriptor parsing
// ---------------------------------------------------------------------------

// BasicType classifies a value category. The numbering of the primitive
// types matches the newarray type-code operand.
type BasicType int8

const (
	TBoolean BasicType = 4
	TChar    BasicType = 5
	TFloat   BasicType = 6
	TDouble  BasicType = 7
	TByte    BasicType = 8
	TShort   BasicType = 9
	TInt     BasicType = 10
	TLong    BasicType = 11
	TObject  BasicType = 12
	TArray   BasicType = 13
	TVoid    BasicType = 14
	TIllegal BasicType = 99
)

var basicTypeNames = map[BasicType]string{
	TBoolean: "boolean",
	TChar:    "char",
	TFloat:   "float",
	TDouble:  "double",
	TByte:    "byte",
	TShort:   "short",
	TInt:     "int",
	TLong:    "long",
	TObject:  "object",
	TArray:   "array",
	TVoid:    "void",
	TIllegal: "illegal",
}

func (t BasicType) String() string {
	if name, ok := basicTypeNames[t]; ok {
		return name
	}
	return "illegal"
}

// IsDoubleWord reports whether values of t occupy two stack slots.
func (t BasicType) IsDoubleWord() bool { return t == TLong || t == TDouble }

// BasicTypeOfChar maps a descriptor character to its basic type.
func BasicTypeOfChar(ch byte) BasicType {
	switch ch {
	case 'Z':
		return TBoolean
	case 'C':
		return TChar
	case 'F':
		return TFloat
	case 'D':
		return TDouble
	case 'B':
		return TByte
	case 'S':
		return TShort
	case 'I':
		return TInt
	case 'J':
		return TLong
	case 'L':
		return TObject
	case '[':
		return TArray
	case 'V':
		return TVoid
	}
	return TIllegal
}

// ResultTypeOf classifies the value produced by a member with the given
// descriptor: the return type for a method descriptor, the field type for
// a field descriptor.
func ResultTypeOf(desc Symbol) BasicType {
	s := string(desc)
	if len(s) == 0 {
		return TIllegal
	}
	if s[0] == '(' {
		i := strings.IndexByte(s, ')')
		if i < 0 || i+1 >= len(s) {
			return TIllegal
		}
		return BasicTypeOfChar(s[i+1])
	}
	return BasicTypeOfChar(s[0])
}

// ParameterSlots returns the number of operand-stack slots the parameters
// of a method descriptor occupy, not counting any receiver. Longs and
// doubles take two slots, everything else one.
func ParameterSlots(desc Symbol) int {
	s := string(desc)
	if len(s) == 0 || s[0] != '(' {
		if debugChecks {
			panic("vm.ParameterSlots: not a method descriptor: " + s)
		}
		return 0
	}
	slots := 0
	i := 1
	for i < len(s) && s[i] != ')' {
		switch s[i] {
		case 'J', 'D':
			slots += 2
			i++
		case 'L':
			slots++
			i = skipReference(s, i)
		case '[':
			slots++
			for i < len(s) && s[i] == '[' {
				i++
			}
			if i < len(s) && s[i] == 'L' {
				i = skipReference(s, i)
			} else {
				i++
			}
		default:
			slots++
			i++
		}
	}
	return slots
}

// skipReference advances past "Lpkg/Name;" starting at the 'L'.
func skipReference(s string, i int) int {
	end := strings.IndexByte(s[i:], ';')
	if end < 0 {
		if debugChecks {
			panic("vm: unterminated reference in descriptor: " + s)
		}
		return len(s)
	}
	return i + end + 1
}
