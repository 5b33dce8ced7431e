package vm

import "testing"

// ---------------------------------------------------------------------------
// Tableswitch tests
// ---------------------------------------------------------------------------

func TestTableswitch(t *testing.T) {
	// The same table at each opcode alignment in [0,3]: the padding
	// changes, the decoded values must not.
	for nops := 0; nops < 4; nops++ {
		m := newTestMethod(tableswitchCode(nops, -20, 2, 4, 10, 20, 30))
		ts := NewTableswitch(m, nops)

		if got := ts.LowKey(); got != 2 {
			t.Errorf("nops=%d: LowKey() = %d, want 2", nops, got)
		}
		if got := ts.HighKey(); got != 4 {
			t.Errorf("nops=%d: HighKey() = %d, want 4", nops, got)
		}
		if got := ts.Length(); got != 3 {
			t.Errorf("nops=%d: Length() = %d, want 3", nops, got)
		}
		if got := ts.DefaultOffset(); got != -20 {
			t.Errorf("nops=%d: DefaultOffset() = %d, want -20", nops, got)
		}
		for i, want := range []int32{10, 20, 30} {
			if got := ts.DestOffsetAt(i); got != want {
				t.Errorf("nops=%d: DestOffsetAt(%d) = %d, want %d", nops, i, got, want)
			}
		}
	}
}

func TestTableswitchSingleEntry(t *testing.T) {
	m := newTestMethod(tableswitchCode(0, 8, 7, 7, 4))
	ts := NewTableswitch(m, 0)
	if got := ts.Length(); got != 1 {
		t.Errorf("Length() = %d, want 1", got)
	}
	if got := ts.DestOffsetAt(0); got != 4 {
		t.Errorf("DestOffsetAt(0) = %d, want 4", got)
	}
}

func TestTableswitchEntryOutOfRangePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("DestOffsetAt past the table should panic")
		}
	}()

	m := newTestMethod(tableswitchCode(0, -20, 2, 4, 10, 20, 30))
	NewTableswitch(m, 0).DestOffsetAt(3) // Should panic
}

func TestTableswitchInvertedRangePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("an inverted key range should panic")
		}
	}()

	m := newTestMethod(tableswitchCode(0, 0, 5, 2))
	NewTableswitch(m, 0) // Should panic
}

func TestTableswitchOnWrongOpcodePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("a tableswitch view of a lookupswitch should panic")
		}
	}()

	m := newTestMethod(lookupswitchCode(0, 0, LookupPair{1, 100}))
	NewTableswitch(m, 0) // Should panic
}

// ---------------------------------------------------------------------------
// Lookupswitch tests
// ---------------------------------------------------------------------------

func TestLookupswitch(t *testing.T) {
	pairs := []LookupPair{{1, 100}, {5, 200}, {9, 300}}
	for nops := 0; nops < 4; nops++ {
		m := newTestMethod(lookupswitchCode(nops, 24, pairs...))
		ls := NewLookupswitch(m, nops)

		if got := ls.NumberOfPairs(); got != 3 {
			t.Errorf("nops=%d: NumberOfPairs() = %d, want 3", nops, got)
		}
		if got := ls.DefaultOffset(); got != 24 {
			t.Errorf("nops=%d: DefaultOffset() = %d, want 24", nops, got)
		}
		for i, want := range pairs {
			if got := ls.PairAt(i); got != want {
				t.Errorf("nops=%d: PairAt(%d) = %+v, want %+v", nops, i, got, want)
			}
		}
	}
}

func TestLookupswitchEmpty(t *testing.T) {
	m := newTestMethod(lookupswitchCode(0, 4))
	ls := NewLookupswitch(m, 0)
	if got := ls.NumberOfPairs(); got != 0 {
		t.Errorf("NumberOfPairs() = %d, want 0", got)
	}
}

func TestLookupswitchUnsortedPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("out-of-order match keys should panic")
		}
	}()

	m := newTestMethod(lookupswitchCode(0, 0, LookupPair{5, 200}, LookupPair{1, 100}))
	NewLookupswitch(m, 0) // Should panic
}

func TestLookupswitchDuplicateKeyPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("duplicate match keys should panic")
		}
	}()

	m := newTestMethod(lookupswitchCode(0, 0, LookupPair{3, 100}, LookupPair{3, 200}))
	NewLookupswitch(m, 0) // Should panic
}

func TestLookupswitchPairOutOfRangePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("PairAt past the table should panic")
		}
	}()

	m := newTestMethod(lookupswitchCode(0, 0, LookupPair{1, 100}))
	NewLookupswitch(m, 0).PairAt(1) // Should panic
}
