package vm

import "fmt"

// Method owns a code array and the constant pool its instructions index
// into. The accessor types in this package are views over a method; the
// quickening rewriter mutates the code array in place.
type Method struct {
	Holder     *Klass
	Name       Symbol
	Descriptor Symbol
	MaxStack   int
	MaxLocals  int

	code []byte
	pool *ConstantPool
}

// NewMethod wraps a code array. The slice is not copied; the method owns
// it from here on.
func NewMethod(holder *Klass, name, descriptor Symbol, code []byte, pool *ConstantPool) *Method {
	if debugChecks {
		if len(code) == 0 {
			panic(fmt.Sprintf("vm.NewMethod: %s has no code", name))
		}
		if pool == nil {
			panic(fmt.Sprintf("vm.NewMethod: %s has no constant pool", name))
		}
	}
	m := &Method{
		Holder:     holder,
		Name:       name,
		Descriptor: descriptor,
		code:       code,
		pool:       pool,
	}
	if holder != nil {
		holder.addMethod(m)
	}
	return m
}

// Code returns the backing code array. It is live: quickening rewrites
// bytes in place and prior views observe the change.
func (m *Method) Code() []byte { return m.code }

// CodeLength returns the length of the code array.
func (m *Method) CodeLength() int { return len(m.code) }

// Constants returns the method's constant pool.
func (m *Method) Constants() *ConstantPool { return m.pool }

// BytecodeAt returns a view of the instruction at bci.
func (m *Method) BytecodeAt(bci int) Bytecode { return NewBytecode(m, bci) }

// ResultType returns the value category the method returns.
func (m *Method) ResultType() BasicType { return ResultTypeOf(m.Descriptor) }

func (m *Method) String() string {
	holder := "<none>"
	if m.Holder != nil {
		holder = string(m.Holder.Name)
	}
	return fmt.Sprintf("%s.%s%s", holder, m.Name, m.Descriptor)
}
