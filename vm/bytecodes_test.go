package vm

import "testing"

// ---------------------------------------------------------------------------
// Descriptor table tests
// ---------------------------------------------------------------------------

func TestOpcodeNames(t *testing.T) {
	tests := []struct {
		c    Code
		name string
	}{
		{OpNop, "nop"},
		{OpAload0, "aload_0"},
		{OpTableswitch, "tableswitch"},
		{OpInvokedynamic, "invokedynamic"},
		{OpFastAldcW, "fast_aldc_w"},
	}
	for _, tt := range tests {
		if got := tt.c.Name(); got != tt.name {
			t.Errorf("Name(0x%02X) = %q, want %q", byte(tt.c), got, tt.name)
		}
	}
}

func TestUndefinedOpcode(t *testing.T) {
	c := Code(0xFE)
	if c.IsDefined() {
		t.Error("0xFE should not be defined")
	}
	if got := c.Name(); got != "unknown_0xFE" {
		t.Errorf("Name(0xFE) = %q, want unknown_0xFE", got)
	}
}

func TestOpcodeLengths(t *testing.T) {
	tests := []struct {
		c      Code
		length int
	}{
		{OpNop, 1},
		{OpIconst0, 1},
		{OpBipush, 2},
		{OpSipush, 3},
		{OpLdc, 2},
		{OpLdcW, 3},
		{OpLdc2W, 3},
		{OpIload, 2},
		{OpIinc, 3},
		{OpGoto, 3},
		{OpGotoW, 5},
		{OpGetfield, 3},
		{OpInvokevirtual, 3},
		{OpInvokeinterface, 5},
		{OpInvokedynamic, 5},
		{OpNew, 3},
		{OpNewarray, 2},
		{OpMultianewarray, 4},
		{OpFastAldc, 2},
		{OpFastAldcW, 3},
		{OpTableswitch, 0},
		{OpLookupswitch, 0},
		{OpWide, 0},
		{OpBreakpoint, 0},
	}
	for _, tt := range tests {
		if got := tt.c.Length(); got != tt.length {
			t.Errorf("%s.Length() = %d, want %d", tt.c.Name(), got, tt.length)
		}
	}
}

func TestWideLengths(t *testing.T) {
	tests := []struct {
		c      Code
		length int
	}{
		{OpIload, 4},
		{OpAstore, 4},
		{OpRet, 4},
		{OpIinc, 6},
		{OpGoto, 0},
		{OpInvokevirtual, 0},
	}
	for _, tt := range tests {
		if got := tt.c.WideLength(); got != tt.length {
			t.Errorf("%s.WideLength() = %d, want %d", tt.c.Name(), got, tt.length)
		}
	}
}

func TestJavaCode(t *testing.T) {
	tests := []struct {
		c    Code
		java Code
	}{
		{OpFastAldc, OpLdc},
		{OpFastAldcW, OpLdcW},
		{OpInvokevirtual, OpInvokevirtual},
		{OpNop, OpNop},
	}
	for _, tt := range tests {
		if got := tt.c.JavaCode(); got != tt.java {
			t.Errorf("%s.JavaCode() = %s, want %s", tt.c.Name(), got.Name(), tt.java.Name())
		}
	}
	if OpFastAldc.IsQuickened() != true {
		t.Error("fast_aldc should be quickened")
	}
	if OpLdc.IsQuickened() {
		t.Error("ldc should not be quickened")
	}
}

func TestFormatFlags(t *testing.T) {
	tests := []struct {
		c    Code
		wide bool
		has  FormatFlags
		not  FormatFlags
	}{
		{OpGetfield, false, FmtHasCacheIndex | FmtHasU2 | FmtNotVariable, FmtHasPoolIndex | FmtHasOffset},
		{OpInvokedynamic, false, FmtHasCacheIndex | FmtHasU4, FmtHasU2},
		{OpLdc, false, FmtHasPoolIndex, FmtHasCacheIndex | FmtHasU2},
		{OpLdcW, false, FmtHasPoolIndex | FmtHasU2, FmtHasCacheIndex},
		{OpFastAldc, false, FmtHasCacheIndex, FmtHasU2},
		{OpGoto, false, FmtHasOffset | FmtHasU2, FmtHasU4},
		{OpGotoW, false, FmtHasOffset | FmtHasU4, FmtHasU2},
		{OpIinc, false, FmtHasConstant | FmtHasLocalIndex, FmtHasU2},
		{OpIinc, true, FmtHasConstant | FmtHasLocalIndex | FmtHasU2 | FmtNotSimple, 0},
		{OpIload, true, FmtHasLocalIndex | FmtHasU2 | FmtNotSimple, 0},
		{OpTableswitch, false, FmtNotSimple, FmtNotVariable},
	}
	for _, tt := range tests {
		flags := tt.c.Flags(tt.wide)
		if !flags.Has(tt.has) {
			t.Errorf("%s.Flags(wide=%v) = %016b, missing %016b", tt.c.Name(), tt.wide, flags, tt.has)
		}
		if tt.not != 0 && flags&tt.not != 0 {
			t.Errorf("%s.Flags(wide=%v) = %016b, unexpected %016b", tt.c.Name(), tt.wide, flags, tt.not)
		}
	}
}

// ---------------------------------------------------------------------------
// Rewrite policy tests
// ---------------------------------------------------------------------------

func TestMustRewrite(t *testing.T) {
	tests := []struct {
		c    Code
		want bool
	}{
		{OpGetstatic, true},
		{OpPutfield, true},
		{OpInvokevirtual, true},
		{OpInvokespecial, true},
		{OpInvokestatic, true},
		{OpInvokeinterface, true},
		{OpInvokedynamic, true},
		{OpLdc, true},
		{OpLdcW, true},
		{OpAload0, false},
		{OpLookupswitch, false},
		{OpNew, false},
		{OpGoto, false},
		{OpIconst0, false},
		{OpLdc2W, false},
	}
	for _, tt := range tests {
		if got := MustRewrite(tt.c); got != tt.want {
			t.Errorf("MustRewrite(%s) = %v, want %v", tt.c.Name(), got, tt.want)
		}
	}
}

func TestCheckMustRewriteRequiresEligible(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("CheckMustRewrite on an ineligible opcode should panic")
		}
	}()

	CheckMustRewrite(OpGoto) // Should panic
}

// ---------------------------------------------------------------------------
// Instruction length tests
// ---------------------------------------------------------------------------

func TestLengthAtFixed(t *testing.T) {
	code := []byte{
		byte(OpIconst1),
		byte(OpBipush), 7,
		byte(OpInvokeinterface), 0, 2, 1, 0,
		byte(OpReturn),
	}
	tests := []struct {
		bci, length int
	}{
		{0, 1},
		{1, 2},
		{3, 5},
		{8, 1},
	}
	for _, tt := range tests {
		if got := LengthAt(code, tt.bci); got != tt.length {
			t.Errorf("LengthAt(bci=%d) = %d, want %d", tt.bci, got, tt.length)
		}
	}
}

func TestLengthAtWide(t *testing.T) {
	code := []byte{
		byte(OpWide), byte(OpIload), 0x01, 0x00,
		byte(OpWide), byte(OpIinc), 0x01, 0x00, 0xFF, 0x9C,
		byte(OpReturn),
	}
	if got := LengthAt(code, 0); got != 4 {
		t.Errorf("LengthAt(wide iload) = %d, want 4", got)
	}
	if got := LengthAt(code, 4); got != 6 {
		t.Errorf("LengthAt(wide iinc) = %d, want 6", got)
	}
}

func TestLengthAtTableswitch(t *testing.T) {
	// One entry per alignment: the padding after the opcode shrinks as
	// the opcode moves toward the next 4-byte boundary.
	for nops := 0; nops < 4; nops++ {
		code := tableswitchCode(nops, -20, 2, 4, 10, 20, 30)
		want := len(code) - nops - 1 // trailing return
		if got := LengthAt(code, nops); got != want {
			t.Errorf("nops=%d: LengthAt = %d, want %d", nops, got, want)
		}
	}
}

func TestLengthAtLookupswitch(t *testing.T) {
	for nops := 0; nops < 4; nops++ {
		code := lookupswitchCode(nops, 24, LookupPair{1, 100}, LookupPair{5, 200})
		want := len(code) - nops - 1
		if got := LengthAt(code, nops); got != want {
			t.Errorf("nops=%d: LengthAt = %d, want %d", nops, got, want)
		}
	}
}

func TestLengthAtBreakpoint(t *testing.T) {
	code := []byte{byte(OpBreakpoint), byte(OpReturn)}
	if got := LengthAt(code, 0); got != 1 {
		t.Errorf("LengthAt(breakpoint) = %d, want 1", got)
	}
}

func TestLengthAtUndefinedPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("LengthAt on an undefined opcode should panic")
		}
	}()

	LengthAt([]byte{0xFE}, 0) // Should panic
}
