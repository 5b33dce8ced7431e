package vm

import "fmt"

// ---------------------------------------------------------------------------
// Switch instructions
// ---------------------------------------------------------------------------

// Tableswitch is the accessor for the dense multi-way branch. The
// payload starts at the first 4-byte-aligned offset after the opcode:
// default offset, low key, high key, then one branch offset per key in
// [low, high].
type Tableswitch struct {
	Bytecode
}

// NewTableswitch returns a view of the tableswitch at bci. Checked
// builds validate the table immediately.
func NewTableswitch(m *Method, bci int) Tableswitch {
	ts := Tableswitch{NewBytecode(m, bci)}
	if debugChecks {
		ts.Verify()
	}
	return ts
}

// Verify panics unless the view sits on a tableswitch with a well-formed
// key range. A bad range means the producer of the code is broken, not
// the input.
func (ts Tableswitch) Verify() {
	if !debugChecks {
		return
	}
	ts.checkCode(OpTableswitch)
	if lo, hi := ts.LowKey(), ts.HighKey(); hi < lo {
		panic(fmt.Sprintf("vm.Tableswitch: key range [%d,%d] inverted at bci %d of %s", lo, hi, ts.bci, ts.method))
	}
}

// DefaultOffset returns the branch offset taken when the key is outside
// [LowKey, HighKey].
func (ts Tableswitch) DefaultOffset() int32 {
	return ts.S4At(ts.AlignedOffset(1))
}

// LowKey returns the smallest key the table covers.
func (ts Tableswitch) LowKey() int32 {
	return ts.S4At(ts.AlignedOffset(1 + 4))
}

// HighKey returns the largest key the table covers.
func (ts Tableswitch) HighKey() int32 {
	return ts.S4At(ts.AlignedOffset(1 + 2*4))
}

// Length returns the number of branch offsets in the table.
func (ts Tableswitch) Length() int {
	return int(ts.HighKey() - ts.LowKey() + 1)
}

// DestOffsetAt returns the branch offset for key LowKey+i.
func (ts Tableswitch) DestOffsetAt(i int) int32 {
	if debugChecks && (i < 0 || i >= ts.Length()) {
		panic(fmt.Sprintf("vm.Tableswitch: entry %d out of range [0,%d)", i, ts.Length()))
	}
	return ts.S4At(ts.AlignedOffset(1 + (3+i)*4))
}

// ---------------------------------------------------------------------------

// LookupPair is one match entry of a lookupswitch table.
type LookupPair struct {
	Match  int32
	Offset int32
}

// Lookupswitch is the accessor for the sparse multi-way branch. The
// aligned payload holds the default offset, the pair count, then the
// match/offset pairs in strictly increasing match order.
type Lookupswitch struct {
	Bytecode
}

// NewLookupswitch returns a view of the lookupswitch at bci. Checked
// builds validate the table immediately.
func NewLookupswitch(m *Method, bci int) Lookupswitch {
	ls := Lookupswitch{NewBytecode(m, bci)}
	if debugChecks {
		ls.Verify()
	}
	return ls
}

// Verify panics unless the view sits on a lookupswitch whose match keys
// strictly increase. The class-file verifier upstream guarantees the
// ordering; a violation here is an internal bug.
func (ls Lookupswitch) Verify() {
	if !debugChecks {
		return
	}
	ls.checkCode(OpLookupswitch)
	n := ls.NumberOfPairs()
	if n < 0 {
		panic(fmt.Sprintf("vm.Lookupswitch: negative pair count %d at bci %d of %s", n, ls.bci, ls.method))
	}
	for i := 1; i < n; i++ {
		if prev, cur := ls.pairAt(i-1).Match, ls.pairAt(i).Match; cur <= prev {
			panic(fmt.Sprintf("vm.Lookupswitch: match keys out of order at pair %d (%d then %d) at bci %d of %s",
				i, prev, cur, ls.bci, ls.method))
		}
	}
}

// DefaultOffset returns the branch offset taken when no pair matches.
func (ls Lookupswitch) DefaultOffset() int32 {
	return ls.S4At(ls.AlignedOffset(1))
}

// NumberOfPairs returns the number of match/offset pairs.
func (ls Lookupswitch) NumberOfPairs() int {
	return int(ls.S4At(ls.AlignedOffset(1 + 4)))
}

func (ls Lookupswitch) pairAt(i int) LookupPair {
	at := ls.AlignedOffset(1 + (2+2*i)*4)
	return LookupPair{Match: ls.S4At(at), Offset: ls.S4At(at + 4)}
}

// PairAt returns the i-th pair in table order.
func (ls Lookupswitch) PairAt(i int) LookupPair {
	if debugChecks && (i < 0 || i >= ls.NumberOfPairs()) {
		panic(fmt.Sprintf("vm.Lookupswitch: pair %d out of range [0,%d)", i, ls.NumberOfPairs()))
	}
	return ls.pairAt(i)
}
