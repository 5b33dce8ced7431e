package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/b-38438-org/JetBrainsRuntime/archive"
	"github.com/b-38438-org/JetBrainsRuntime/capsule"
	"github.com/b-38438-org/JetBrainsRuntime/vm"
)

var (
	headerColor  = color.New(color.FgWhite, color.Bold)
	opColor      = color.New(color.FgCyan)
	commentColor = color.New(color.FgGreen)
)

// renderLine colorizes one listing line: mnemonic, operands, then the
// symbolic comment after " ; ".
func renderLine(line string) string {
	head, comment, hasComment := strings.Cut(line, " ; ")
	mnemonic, operands, hasOperands := strings.Cut(head, " ")

	var sb strings.Builder
	sb.WriteString(opColor.Sprint(mnemonic))
	if hasOperands {
		sb.WriteString(" ")
		sb.WriteString(operands)
	}
	if hasComment {
		sb.WriteString(" ; ")
		sb.WriteString(commentColor.Sprint(comment))
	}
	return sb.String()
}

// printListing writes the capsule header and the method's instructions,
// one line per instruction.
func printListing(w io.Writer, c *capsule.Capsule, m *vm.Method) {
	member := c.Name + c.Descriptor
	if c.ClassName != "" {
		member = c.ClassName + "." + member
	}
	fmt.Fprintln(w, headerColor.Sprint(member))
	fmt.Fprintf(w, "  max_stack=%d max_locals=%d code=%d bytes\n", c.MaxStack, c.MaxLocals, m.CodeLength())

	code := m.Code()
	for bci := 0; bci < len(code); {
		fmt.Fprintf(w, "  %4d: %s\n", bci, renderLine(vm.DisassembleInstruction(m, bci)))
		if !vm.Code(code[bci]).IsDefined() {
			bci++
			continue
		}
		n := vm.LengthAt(code, bci)
		if n <= 0 {
			bci++
			continue
		}
		bci += n
	}
}

// resolveHash turns a full hash or a unique prefix into an archive key.
func resolveHash(a *archive.Archive, text string) ([32]byte, error) {
	text = strings.ToLower(text)
	for _, ch := range text {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') {
			return [32]byte{}, fmt.Errorf("malformed hash %q", text)
		}
	}
	if len(text) > 64 {
		return [32]byte{}, fmt.Errorf("malformed hash %q", text)
	}

	entries, err := a.List()
	if err != nil {
		return [32]byte{}, err
	}
	var match [32]byte
	found := 0
	for _, e := range entries {
		if strings.HasPrefix(fmt.Sprintf("%x", e.Hash), text) {
			match = e.Hash
			found++
		}
	}
	switch found {
	case 0:
		return [32]byte{}, fmt.Errorf("no archived capsule matches %q", text)
	case 1:
		return match, nil
	}
	return [32]byte{}, fmt.Errorf("ambiguous hash prefix %q matches %d capsules", text, found)
}
