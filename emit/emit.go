// Package emit implements the append-only symbolic instruction buffer that
// the statement/expression lowerer (package compiler) writes into.
//
// A Buffer records a flat sequence of Instruction records — label
// definitions, label references, opcodes, and inline data — without
// resolving any addresses. Resolution happens later, in package asm.
package emit

import (
	"fmt"

	"github.com/clscript/clscript/code"
)

// Kind discriminates the variants of a symbolic Instruction.
type Kind int

const (
	// KindLabel marks a jump target; its Name is the label's identity.
	KindLabel Kind = iota
	// KindReference emits a placeholder ADDR operand resolved at
	// assembly time to the byte offset of the Label with the same Name.
	KindReference
	// KindOp emits a single opcode byte.
	KindOp
	// KindData emits raw bytes verbatim (e.g. a NUM or STR operand).
	KindData
	// KindComment carries no bytes; it exists purely for disassembly
	// readability.
	KindComment
)

// Instruction is one symbolic record in a Buffer.
type Instruction struct {
	Kind    Kind
	Name    string      // for KindLabel, KindReference
	Op      code.Opcode // for KindOp
	Data    []byte      // for KindData
	Comment string      // for KindOp (optional), KindComment
}

// Buffer accumulates Instructions for one compilation unit prior to
// assembly.
type Buffer struct {
	Instructions []Instruction
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// Label appends a label definition.
func (b *Buffer) Label(name string) {
	b.Instructions = append(b.Instructions, Instruction{Kind: KindLabel, Name: name})
}

// Reference emits code.Addr followed by a placeholder resolved at assembly
// to the named label's absolute byte offset.
func (b *Buffer) Reference(name string) {
	b.Op(code.Addr)
	b.Instructions = append(b.Instructions, Instruction{Kind: KindReference, Name: name})
}

// Op appends a bare opcode, with an optional disassembly comment.
func (b *Buffer) Op(op code.Opcode, comment ...string) {
	c := ""
	if len(comment) > 0 {
		c = comment[0]
	}
	b.Instructions = append(b.Instructions, Instruction{Kind: KindOp, Op: op, Comment: c})
}

// Number emits code.Num followed by n's 8-byte big-endian IEEE-754 encoding.
func (b *Buffer) Number(n float64) {
	b.Op(code.Num)
	b.Instructions = append(b.Instructions, Instruction{Kind: KindData, Data: code.EncodeNumber(n)})
}

// String emits code.Str followed by s's big-endian UTF-16 encoding,
// NUL-terminated. s must not contain the NUL code point.
func (b *Buffer) String(s string) {
	b.Op(code.Str)
	b.Instructions = append(b.Instructions, Instruction{Kind: KindData, Data: code.EncodeString(s)})
}

// Comment appends a disassembly-only annotation with no byte footprint.
func (b *Buffer) Comment(format string, args ...any) {
	b.Instructions = append(b.Instructions, Instruction{Kind: KindComment, Comment: fmt.Sprintf(format, args...)})
}
