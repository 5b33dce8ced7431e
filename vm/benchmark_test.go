package vm

import "testing"

// ---------------------------------------------------------------------------
// Accessor hot-path benchmarks
// ---------------------------------------------------------------------------

var (
	benchInt   uint32
	benchSym   Symbol
	benchValue Value
)

// BenchmarkLengthAt measures the instruction-length walk over a method
// with fixed, variable and quickened instructions.
func BenchmarkLengthAt(b *testing.B) {
	f := newRewriteFixture()
	if err := Rewrite(f.m, Options{RewriteBytecodes: true}); err != nil {
		b.Fatalf("Rewrite() error: %v", err)
	}
	code := f.m.Code()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for bci := 0; bci < len(code); {
			bci += LengthAt(code, bci)
		}
	}
}

// BenchmarkMemberRefIndex measures the operand read of a quickened
// member reference.
func BenchmarkMemberRefIndex(b *testing.B) {
	f := newRewriteFixture()
	if err := Rewrite(f.m, Options{RewriteBytecodes: true}); err != nil {
		b.Fatalf("Rewrite() error: %v", err)
	}
	ref := NewMemberRef(f.m, f.iv)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchInt = ref.Index()
	}
}

// BenchmarkMemberRefName measures the symbolic lookup behind a quickened
// member reference, cache slot to pool entry to name.
func BenchmarkMemberRefName(b *testing.B) {
	f := newRewriteFixture()
	if err := Rewrite(f.m, Options{RewriteBytecodes: true}); err != nil {
		b.Fatalf("Rewrite() error: %v", err)
	}
	ref := NewMemberRef(f.m, f.iv)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchSym = ref.Name()
	}
}

// BenchmarkResolveCachedConstant measures the memoized constant-load
// path after the first resolution has filled the cache entry.
func BenchmarkResolveCachedConstant(b *testing.B) {
	f := newRewriteFixture()
	if err := Rewrite(f.m, Options{RewriteBytecodes: true}); err != nil {
		b.Fatalf("Rewrite() error: %v", err)
	}
	lc := NewLoadConstant(f.m, f.ldcMT)
	if _, err := lc.ResolveConstant(); err != nil {
		b.Fatalf("ResolveConstant() error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v, err := lc.ResolveConstant()
		if err != nil {
			b.Fatal(err)
		}
		benchValue = v
	}
}

// BenchmarkRewrite measures quickening a method end to end, cache
// allocation included.
func BenchmarkRewrite(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		f := newRewriteFixture()
		b.StartTimer()
		if err := Rewrite(f.m, Options{RewriteBytecodes: true}); err != nil {
			b.Fatalf("Rewrite() error: %v", err)
		}
	}
}

// BenchmarkDisassemble measures rendering a full listing.
func BenchmarkDisassemble(b *testing.B) {
	f := newRewriteFixture()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Disassemble(f.m)
	}
}
