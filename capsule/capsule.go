// Package capsule implements content-addressed method serialization.
// A capsule carries one method's bytecode, constant pool and metadata in
// canonical CBOR, so equal methods encode to equal bytes and a SHA-256
// over the encoding names the method.
package capsule

import (
	"fmt"

	"github.com/b-38438-org/JetBrainsRuntime/vm"
)

// Version is the current capsule format version.
const Version = 1

// PoolConst is one constant-pool slot in wire form: the class-file tag
// plus the tag-appropriate payload fields. Entry i describes pool slot
// i+1; padding slots after longs and doubles ride along as tag 0.
type PoolConst struct {
	Tag  uint8   `cbor:"1,keyasint"`
	Int  int64   `cbor:"2,keyasint,omitempty"`
	Num  float64 `cbor:"3,keyasint,omitempty"`
	Text string  `cbor:"4,keyasint,omitempty"`
	Ref1 uint16  `cbor:"5,keyasint,omitempty"`
	Ref2 uint16  `cbor:"6,keyasint,omitempty"`
}

// Capsule is a serialized method. Code holds the unrewritten bytecode;
// quickened operands are a VM-local matter and never leave the process.
type Capsule struct {
	Version    uint8       `cbor:"1,keyasint"`
	ClassName  string      `cbor:"2,keyasint,omitempty"`
	Name       string      `cbor:"3,keyasint"`
	Descriptor string      `cbor:"4,keyasint"`
	MaxStack   int         `cbor:"5,keyasint,omitempty"`
	MaxLocals  int         `cbor:"6,keyasint,omitempty"`
	Code       []byte      `cbor:"7,keyasint"`
	Pool       []PoolConst `cbor:"8,keyasint,omitempty"`
}

// FromMethod snapshots a method into a capsule. The capsule owns its
// copies of the code and pool, so later rewrites of the method do not
// bleed into it.
func FromMethod(m *vm.Method) *Capsule {
	c := &Capsule{
		Version:    Version,
		Name:       string(m.Name),
		Descriptor: string(m.Descriptor),
		MaxStack:   m.MaxStack,
		MaxLocals:  m.MaxLocals,
		Code:       append([]byte(nil), m.Code()...),
	}
	if m.Holder != nil {
		c.ClassName = string(m.Holder.Name)
	}
	for _, e := range m.Constants().Entries() {
		c.Pool = append(c.Pool, PoolConst{
			Tag:  uint8(e.Tag),
			Int:  e.Int,
			Num:  e.Num,
			Text: e.Text,
			Ref1: e.Ref1,
			Ref2: e.Ref2,
		})
	}
	return c
}

// ToMethod rebuilds the method a capsule describes. The method comes
// back detached: ClassName identifies the declaring class but no klass
// is resolved or registered here.
func (c *Capsule) ToMethod() (*vm.Method, error) {
	if c.Version != Version {
		return nil, fmt.Errorf("capsule: unsupported version %d", c.Version)
	}
	if len(c.Code) == 0 {
		return nil, fmt.Errorf("capsule: %s%s has no code", c.Name, c.Descriptor)
	}
	entries := make([]vm.PoolEntry, 0, len(c.Pool))
	for _, p := range c.Pool {
		entries = append(entries, vm.PoolEntry{
			Tag:  vm.Tag(p.Tag),
			Int:  p.Int,
			Num:  p.Num,
			Text: p.Text,
			Ref1: p.Ref1,
			Ref2: p.Ref2,
		})
	}
	pool, err := vm.NewConstantPoolFromEntries(entries)
	if err != nil {
		return nil, fmt.Errorf("capsule: %s%s: %w", c.Name, c.Descriptor, err)
	}
	m := vm.NewMethod(nil, vm.Symbol(c.Name), vm.Symbol(c.Descriptor),
		append([]byte(nil), c.Code...), pool)
	m.MaxStack = c.MaxStack
	m.MaxLocals = c.MaxLocals
	return m, nil
}
