package capsule

import (
	"bytes"
	"strings"
	"testing"

	"github.com/b-38438-org/JetBrainsRuntime/vm"
)

// fixtureMethod builds a method whose pool exercises every entry shape:
// member chains, two-word constants with padding, strings and classes.
func fixtureMethod() *vm.Method {
	cp := vm.NewConstantPool()
	fieldRef := cp.AddFieldref("Widget", "count", "I")
	longIdx := cp.AddLong(1 << 40)
	strIdx := cp.AddString("tag")
	clsIdx := cp.AddClass("Widget")

	code := []byte{byte(vm.OpAload0)}
	code = append(code, byte(vm.OpGetfield), byte(fieldRef>>8), byte(fieldRef))
	code = append(code, byte(vm.OpLdc2W), byte(longIdx>>8), byte(longIdx))
	code = append(code, byte(vm.OpLdc), byte(strIdx))
	code = append(code, byte(vm.OpNew), byte(clsIdx>>8), byte(clsIdx))
	code = append(code, byte(vm.OpIreturn))

	kt := vm.NewKlassTable()
	holder := kt.Define("Widget", nil)
	m := vm.NewMethod(holder, "size", "()I", code, cp)
	m.MaxStack = 3
	m.MaxLocals = 1
	return m
}

func TestCapsule_RoundTrip(t *testing.T) {
	m := fixtureMethod()
	c := FromMethod(m)

	data, err := Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Version != Version {
		t.Errorf("Version: got %d, want %d", got.Version, Version)
	}
	if got.ClassName != "Widget" {
		t.Errorf("ClassName: got %q, want Widget", got.ClassName)
	}
	if got.Name != "size" || got.Descriptor != "()I" {
		t.Errorf("member: got %s%s, want size()I", got.Name, got.Descriptor)
	}
	if got.MaxStack != 3 || got.MaxLocals != 1 {
		t.Errorf("frame sizes: got %d/%d, want 3/1", got.MaxStack, got.MaxLocals)
	}
	if !bytes.Equal(got.Code, m.Code()) {
		t.Error("Code mismatch")
	}
	if len(got.Pool) != m.Constants().Length()-1 {
		t.Errorf("Pool entries: got %d, want %d", len(got.Pool), m.Constants().Length()-1)
	}

	back, err := got.ToMethod()
	if err != nil {
		t.Fatalf("ToMethod: %v", err)
	}
	if back.Name != m.Name || back.Descriptor != m.Descriptor {
		t.Errorf("rebuilt member: got %s%s, want %s%s", back.Name, back.Descriptor, m.Name, m.Descriptor)
	}
	if back.MaxStack != 3 || back.MaxLocals != 1 {
		t.Errorf("rebuilt frame sizes: got %d/%d, want 3/1", back.MaxStack, back.MaxLocals)
	}

	// The listings agree instruction for instruction, which pins the
	// rebuilt pool's slot layout to the source method's.
	if a, b := vm.Disassemble(m), vm.Disassemble(back); a != b {
		t.Errorf("listing mismatch:\nsource:\n%s\nrebuilt:\n%s", a, b)
	}
}

func TestCapsule_ContentHashStable(t *testing.T) {
	c := FromMethod(fixtureMethod())
	h1, err := c.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash: %v", err)
	}

	data, err := Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	h2, err := got.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash after round trip: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash moved across a round trip: %x vs %x", h1, h2)
	}

	if err := got.Verify(h1); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestCapsule_ContentHashMovesWithCode(t *testing.T) {
	a := FromMethod(fixtureMethod())
	b := FromMethod(fixtureMethod())
	b.Code[0] = byte(vm.OpNop)

	ha, err := a.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash: %v", err)
	}
	hb, err := b.ContentHash()
	if err != nil {
		t.Fatalf("ContentHash: %v", err)
	}
	if ha == hb {
		t.Error("hash did not move when the code changed")
	}

	if err := b.Verify(ha); err == nil {
		t.Error("Verify accepted a stale hash")
	}
}

func TestCapsule_SnapshotsBeforeQuickening(t *testing.T) {
	m := fixtureMethod()
	c := FromMethod(m)
	before := append([]byte(nil), c.Code...)

	if err := vm.Rewrite(m, vm.Options{RewriteBytecodes: true}); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !bytes.Equal(c.Code, before) {
		t.Error("quickening the method changed the capsule snapshot")
	}
	if bytes.Equal(m.Code(), before) {
		t.Error("quickening did not patch the method")
	}
}

func TestCapsule_ToMethodRejectsBadInput(t *testing.T) {
	base := FromMethod(fixtureMethod())

	tests := []struct {
		name   string
		mutate func(c *Capsule)
		msg    string
	}{
		{"version", func(c *Capsule) { c.Version = 99 }, "unsupported version"},
		{"empty code", func(c *Capsule) { c.Code = nil }, "has no code"},
		{"unknown tag", func(c *Capsule) { c.Pool[0].Tag = 99 }, "unknown tag"},
		{"stray padding", func(c *Capsule) { c.Pool[0] = PoolConst{Tag: 0} }, "stray padding"},
		{"dangling link", func(c *Capsule) {
			c.Pool[len(c.Pool)-1] = PoolConst{Tag: uint8(vm.TagClass), Ref1: 600}
		}, "links to slot"},
	}
	for _, tt := range tests {
		data, err := Marshal(base)
		if err != nil {
			t.Fatalf("%s: Marshal: %v", tt.name, err)
		}
		c, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("%s: Unmarshal: %v", tt.name, err)
		}
		tt.mutate(c)
		_, err = c.ToMethod()
		if err == nil {
			t.Errorf("%s: ToMethod accepted bad input", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.msg) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.msg)
		}
	}
}
