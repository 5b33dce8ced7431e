package vm

import (
	"fmt"
	"math"
	"strconv"
)

// Value is a resolved constant: the result of resolving a loadable
// constant-pool entry. It is comparable, so two resolutions of the same
// slot can be checked with ==.
type Value struct {
	Kind BasicType
	I    int64           // TInt (32-bit range) and TLong
	F    float64         // TFloat and TDouble
	S    string          // string constants, method-type descriptors
	K    *Klass          // class constants
	M    *ResolvedMethod // method-handle constants
}

func IntValue(v int32) Value      { return Value{Kind: TInt, I: int64(v)} }
func LongValue(v int64) Value     { return Value{Kind: TLong, I: v} }
func FloatValue(v float32) Value  { return Value{Kind: TFloat, F: float64(v)} }
func DoubleValue(v float64) Value { return Value{Kind: TDouble, F: v} }
func StringValue(s string) Value  { return Value{Kind: TObject, S: s} }
func ClassValue(k *Klass) Value   { return Value{Kind: TObject, K: k} }

// MethodTypeValue carries the descriptor text of a method-type constant.
func MethodTypeValue(desc Symbol) Value { return Value{Kind: TObject, S: string(desc)} }

// MethodHandleValue carries the resolved target of a method-handle
// constant.
func MethodHandleValue(m *ResolvedMethod) Value { return Value{Kind: TObject, M: m} }

// IsZero reports whether v is the zero Value, which no resolution
// produces.
func (v Value) IsZero() bool { return v == Value{} }

func (v Value) String() string {
	switch v.Kind {
	case TInt:
		return strconv.FormatInt(v.I, 10)
	case TLong:
		return strconv.FormatInt(v.I, 10) + "L"
	case TFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 32) + "f"
	case TDouble:
		return strconv.FormatFloat(v.F, 'g', -1, 64) + "d"
	case TObject:
		switch {
		case v.K != nil:
			return "class " + string(v.K.Name)
		case v.M != nil:
			return "handle " + v.M.String()
		default:
			return strconv.Quote(v.S)
		}
	}
	return fmt.Sprintf("<%s value>", v.Kind)
}

// Float32 returns the 32-bit float payload of a TFloat value.
func (v Value) Float32() float32 {
	if debugChecks && v.Kind != TFloat {
		panic("vm.Value.Float32: kind is " + v.Kind.String())
	}
	return float32(v.F)
}

// Int32 returns the 32-bit integer payload of a TInt value.
func (v Value) Int32() int32 {
	if debugChecks && v.Kind != TInt {
		panic("vm.Value.Int32: kind is " + v.Kind.String())
	}
	if debugChecks && (v.I > math.MaxInt32 || v.I < math.MinInt32) {
		panic("vm.Value.Int32: payload out of range")
	}
	return int32(v.I)
}
