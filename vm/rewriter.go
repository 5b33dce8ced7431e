package vm

import (
	"encoding/binary"
	"fmt"
)

// ---------------------------------------------------------------------------
// Quickening rewriter
// ---------------------------------------------------------------------------

// Options control the rewrite pass.
type Options struct {
	// RewriteBytecodes enables quickening. Disabled, methods keep their
	// pool-index encoding and no cache is allocated.
	RewriteBytecodes bool
}

type patchKind int

const (
	patchMember patchKind = iota
	patchDynamic
	patchNarrowConst
	patchWideConst
)

type patch struct {
	bci  int
	kind patchKind
	slot uint32
}

// Rewrite quickens a method in place: member references and dynamic call
// sites get their pool-index operands replaced with cache slots, and
// constant loads of method-handle and method-type entries switch to
// their quickened opcodes. The cache is built and attached before any
// operand byte changes, so a failure leaves the method untouched.
//
// A pool is rewritten at most once; rewriting a method whose pool
// already carries a cache is an error.
func Rewrite(m *Method, opts Options) error {
	if !opts.RewriteBytecodes {
		return nil
	}
	pool := m.pool
	if pool.Cache() != nil {
		return fmt.Errorf("vm: rewrite %s: constant pool already has a cache", m)
	}

	var (
		cpIndexes   []uint32
		patches     []patch
		memberSlots = make(map[uint32]uint32)
		constSlots  = make(map[uint32]uint32)
	)
	alloc := func(cpIndex uint32) uint32 {
		slot := uint32(len(cpIndexes))
		cpIndexes = append(cpIndexes, cpIndex)
		return slot
	}
	checkPoolIndex := func(bci int, pidx uint32, ok func(Tag) bool, what string) error {
		if pidx == 0 || pidx >= uint32(pool.Length()) {
			return fmt.Errorf("vm: rewrite %s: %s index %d at bci %d outside pool [1,%d)", m, what, pidx, bci, pool.Length())
		}
		if tag := pool.TagAt(pidx); !ok(tag) {
			return fmt.Errorf("vm: rewrite %s: %s at bci %d points at a %v entry", m, what, bci, tag)
		}
		return nil
	}

	code := m.code
	for bci := 0; bci < len(code); {
		c := Code(code[bci])
		if !c.IsDefined() || c == OpBreakpoint {
			return fmt.Errorf("vm: rewrite %s: unexpected opcode 0x%02X at bci %d", m, byte(c), bci)
		}
		if c.IsQuickened() {
			return fmt.Errorf("vm: rewrite %s: already-quickened %v at bci %d", m, c, bci)
		}
		n := LengthAt(code, bci)
		if n <= 0 || bci+n > len(code) {
			return fmt.Errorf("vm: rewrite %s: %v at bci %d runs past the end of the code", m, c, bci)
		}

		if MustRewrite(c) {
			switch c {
			case OpGetstatic, OpPutstatic, OpGetfield, OpPutfield,
				OpInvokevirtual, OpInvokespecial, OpInvokestatic, OpInvokeinterface:
				pidx := uint32(binary.BigEndian.Uint16(code[bci+1:]))
				if err := checkPoolIndex(bci, pidx, Tag.IsMember, "member reference"); err != nil {
					return err
				}
				slot, ok := memberSlots[pidx]
				if !ok {
					slot = alloc(pidx)
					memberSlots[pidx] = slot
				}
				if slot > 0xFFFF {
					return fmt.Errorf("vm: rewrite %s: cache overflow at bci %d", m, bci)
				}
				patches = append(patches, patch{bci: bci, kind: patchMember, slot: slot})

			case OpInvokedynamic:
				pidx := uint32(binary.BigEndian.Uint16(code[bci+1:]))
				err := checkPoolIndex(bci, pidx, func(t Tag) bool { return t == TagInvokeDynamic }, "dynamic call site")
				if err != nil {
					return err
				}
				// Call sites never share resolution state, so each
				// occurrence gets its own entry.
				patches = append(patches, patch{bci: bci, kind: patchDynamic, slot: alloc(pidx)})

			case OpLdc, OpLdcW:
				var pidx uint32
				if c == OpLdc {
					pidx = uint32(code[bci+1])
				} else {
					pidx = uint32(binary.BigEndian.Uint16(code[bci+1:]))
				}
				if err := checkPoolIndex(bci, pidx, Tag.IsLoadable, "constant load"); err != nil {
					return err
				}
				tag := pool.TagAt(pidx)
				if tag != TagMethodHandle && tag != TagMethodType {
					break // plain constants keep the direct form
				}
				slot, ok := constSlots[pidx]
				if !ok {
					slot = alloc(pidx)
					constSlots[pidx] = slot
				}
				kind, limit := patchNarrowConst, uint32(0xFF)
				if c == OpLdcW {
					kind, limit = patchWideConst, 0xFFFF
				}
				if slot > limit {
					break // slot does not fit the operand; keep the direct form
				}
				patches = append(patches, patch{bci: bci, kind: kind, slot: slot})

			default:
				panic(fmt.Sprintf("vm.Rewrite: unhandled rewrite candidate %v", c))
			}
		}
		bci += n
	}

	pool.attachCache(NewCPCache(cpIndexes))

	for _, p := range patches {
		switch p.kind {
		case patchMember:
			binary.BigEndian.PutUint16(code[p.bci+1:], uint16(p.slot))
		case patchDynamic:
			binary.BigEndian.PutUint32(code[p.bci+1:], p.slot)
		case patchNarrowConst:
			code[p.bci] = byte(OpFastAldc)
			code[p.bci+1] = byte(p.slot)
		case patchWideConst:
			code[p.bci] = byte(OpFastAldcW)
			binary.BigEndian.PutUint16(code[p.bci+1:], uint16(p.slot))
		}
	}
	return nil
}
