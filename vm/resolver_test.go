package vm

import (
	"errors"
	"strings"
	"testing"
)

func testILoadMethod(holder *Klass, name Symbol) *Method {
	return NewMethod(holder, name, "()I",
		[]byte{byte(OpIconst0), byte(OpIreturn)}, NewConstantPool())
}

func TestResolveWalksSuperclassChain(t *testing.T) {
	kt := NewKlassTable()
	base := kt.Define("Base", nil)
	derived := kt.Define("Derived", base)
	testILoadMethod(base, "size")

	cp := NewConstantPool()
	ref := cp.AddMethodref("Derived", "size", "()I")

	r := NewTableResolver(kt)
	m, err := r.ResolveMethod(cp, uint32(ref))
	if err != nil {
		t.Fatalf("ResolveMethod error: %v", err)
	}
	if m.Holder != base {
		t.Errorf("resolved holder = %v, want Base", m.Holder)
	}
	if m.Name != "size" || m.Signature != "()I" {
		t.Errorf("resolved member = %s%s, want size()I", m.Name, m.Signature)
	}
	if derived.LookupMethod("size", "()I") != m {
		t.Error("a direct lookup on Derived found a different member")
	}

	// Repeated resolution yields the same target.
	again, err := r.ResolveMethod(cp, uint32(ref))
	if err != nil {
		t.Fatalf("second ResolveMethod error: %v", err)
	}
	if again != m {
		t.Error("second resolution returned a different target")
	}
}

func TestResolveLocalShadowsSuper(t *testing.T) {
	kt := NewKlassTable()
	base := kt.Define("Base", nil)
	derived := kt.Define("Derived", base)
	testILoadMethod(base, "size")
	own := testILoadMethod(derived, "size")

	cp := NewConstantPool()
	ref := cp.AddMethodref("Derived", "size", "()I")

	m, err := NewTableResolver(kt).ResolveMethod(cp, uint32(ref))
	if err != nil {
		t.Fatalf("ResolveMethod error: %v", err)
	}
	if m.Holder != derived || m.Method != own {
		t.Errorf("resolved %v, want the declaration on Derived", m)
	}
}

func TestResolveMissingClass(t *testing.T) {
	cp := NewConstantPool()
	ref := cp.AddMethodref("Ghost", "size", "()I")

	_, err := NewTableResolver(NewKlassTable()).ResolveMethod(cp, uint32(ref))
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("error = %v, want *ResolutionError", err)
	}
	if resErr.Kind != ResolveMissingClass || resErr.Class != "Ghost" {
		t.Errorf("got kind %v class %s, want missing-class Ghost", resErr.Kind, resErr.Class)
	}
	if !strings.Contains(err.Error(), "Ghost") {
		t.Errorf("error text %q does not name the class", err)
	}
}

func TestResolveUnresolvedMember(t *testing.T) {
	kt := NewKlassTable()
	kt.Define("Widget", nil)

	cp := NewConstantPool()
	ref := cp.AddMethodref("Widget", "missing", "()V")

	_, err := NewTableResolver(kt).ResolveMethod(cp, uint32(ref))
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || resErr.Kind != ResolveUnresolved {
		t.Fatalf("error = %v, want unresolved", err)
	}
	if resErr.Member != "missing" || resErr.Desc != "()V" {
		t.Errorf("got member %s%s, want missing()V", resErr.Member, resErr.Desc)
	}
}

func TestResolveInterfaceMismatch(t *testing.T) {
	kt := NewKlassTable()
	widget := kt.Define("Widget", nil)
	shape := kt.DefineInterface("Shape")
	testILoadMethod(widget, "size")
	testILoadMethod(shape, "area")

	cp := NewConstantPool()
	classRef := cp.AddMethodref("Widget", "size", "()I")
	ifaceRef := cp.AddInterfaceMethodref("Shape", "area", "()I")
	r := NewTableResolver(kt)

	// An interface resolve against an ordinary class fails, and the
	// other way round.
	_, err := r.ResolveInterfaceMethod(cp, uint32(classRef))
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || resErr.Kind != ResolveIncompatible {
		t.Errorf("interface resolve of a class ref: error = %v, want incompatible", err)
	}
	_, err = r.ResolveMethod(cp, uint32(ifaceRef))
	if !errors.As(err, &resErr) || resErr.Kind != ResolveIncompatible {
		t.Errorf("class resolve of an interface ref: error = %v, want incompatible", err)
	}

	// The matching kinds succeed.
	if _, err := r.ResolveMethod(cp, uint32(classRef)); err != nil {
		t.Errorf("ResolveMethod error: %v", err)
	}
	if _, err := r.ResolveInterfaceMethod(cp, uint32(ifaceRef)); err != nil {
		t.Errorf("ResolveInterfaceMethod error: %v", err)
	}
}

func TestResolveDynamicMethod(t *testing.T) {
	kt := NewKlassTable()
	impl := kt.Define("WidgetImpl", nil)
	testILoadMethod(impl, "apply")

	cp := NewConstantPool()
	site := cp.AddInvokeDynamic(3, "apply", "()I")
	r := NewTableResolver(kt)

	_, err := r.ResolveDynamicMethod(cp, uint32(site))
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || resErr.Kind != ResolveMissingBootstrap {
		t.Fatalf("unbound site: error = %v, want missing-bootstrap", err)
	}

	r.BindBootstrap(3, impl.LookupMethod("apply", "()I"))
	m, err := r.ResolveDynamicMethod(cp, uint32(site))
	if err != nil {
		t.Fatalf("ResolveDynamicMethod error: %v", err)
	}
	if m.Holder != impl || m.Name != "apply" {
		t.Errorf("resolved %v, want WidgetImpl.apply()I", m)
	}

	// Sites with a different bootstrap index stay unbound.
	other := cp.AddInvokeDynamic(4, "apply", "()I")
	if _, err := r.ResolveDynamicMethod(cp, uint32(other)); err == nil {
		t.Error("a site with an unbound bootstrap index resolved")
	}
}
