// Package vm implements the instruction accessor and reference-resolution
// layer of a JVM-style bytecode interpreter.
//
// This package contains:
//   - Opcode format table (lengths, operand-shape flags, wide forms)
//   - Typed instruction accessors over a method's code bytes
//   - Constant pool and constant-pool cache with dual index encoding
//   - Link resolution of call sites and loaded constants
//   - The quickening rewriter and its eligibility policy
//   - A bytecode disassembler
//
// Accessors are transient views: construct one over (method, bci), read
// through it, discard it. They never outlive a rewrite of the underlying
// bytes.
package vm
