// Package code defines the opcode table shared by the assembler, the
// compiler, and the virtual machine.
//
// Every opcode occupies a single byte; multi-byte immediate operands are
// big-endian. The table below is the byte-for-byte contract between the
// assembler (package asm), which emits these bytes, and the VM (package
// vm), which dispatches on them.
package code

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf16"
)

// Opcode identifies a single bytecode instruction.
type Opcode byte

//nolint:revive
const (
	Nop Opcode = 0x00

	Undef Opcode = 0x01
	Null  Opcode = 0x02
	Obj   Opcode = 0x03
	Arr   Opcode = 0x04
	True  Opcode = 0x05
	False Opcode = 0x06
	Num   Opcode = 0x07
	Addr  Opcode = 0x08
	Str   Opcode = 0x09

	Pop  Opcode = 0x0A
	Top  Opcode = 0x0D
	Top2 Opcode = 0x0E

	Var  Opcode = 0x10
	Load Opcode = 0x11
	Out  Opcode = 0x12

	Jump    Opcode = 0x20
	JumpIf  Opcode = 0x21
	JumpNot Opcode = 0x22

	Func Opcode = 0x30
	Call Opcode = 0x31
	New  Opcode = 0x32
	Ret  Opcode = 0x33

	Get    Opcode = 0x40
	Set    Opcode = 0x41
	InOp   Opcode = 0x43
	Delete Opcode = 0x44

	Eq   Opcode = 0x50
	Neq  Opcode = 0x51
	Seq  Opcode = 0x52
	Sneq Opcode = 0x53
	Lt   Opcode = 0x54
	Lte  Opcode = 0x55
	Gt   Opcode = 0x56
	Gte  Opcode = 0x57

	Add Opcode = 0x60
	Sub Opcode = 0x61
	Mul Opcode = 0x62
	Exp Opcode = 0x63
	Div Opcode = 0x64
	Mod Opcode = 0x65

	Bnot Opcode = 0x70
	Bor  Opcode = 0x71
	Bxor Opcode = 0x72
	Band Opcode = 0x73
	// Lshift is 0x74, distinct from Band's 0x73 — the reference opcode
	// table collides these two on the same byte; see DESIGN.md.
	Lshift  Opcode = 0x74
	Rshift  Opcode = 0x75
	Urshift Opcode = 0x76

	Or  Opcode = 0x80
	And Opcode = 0x81
	Not Opcode = 0x82

	Insof  Opcode = 0x90
	Typeof Opcode = 0x91
)

// Definition describes an opcode's mnemonic and the byte-width of any
// inline operands that follow it in the instruction stream.
type Definition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*Definition{
	Nop: {"NOP", nil},

	Undef: {"UNDEF", nil},
	Null:  {"NULL", nil},
	Obj:   {"OBJ", nil},
	Arr:   {"ARR", nil},
	True:  {"TRUE", nil},
	False: {"FALSE", nil},
	Num:   {"NUM", []int{8}},
	Addr:  {"ADDR", []int{4}},
	Str:   {"STR", nil}, // variable-width, NUL-terminated UTF-16; see decodeUTF16String

	Pop:  {"POP", nil},
	Top:  {"TOP", nil},
	Top2: {"TOP2", nil},

	Var:  {"VAR", nil},
	Load: {"LOAD", nil},
	Out:  {"OUT", nil},

	Jump:    {"JUMP", nil},
	JumpIf:  {"JUMPIF", nil},
	JumpNot: {"JUMPNOT", nil},

	Func: {"FUNC", nil},
	Call: {"CALL", nil},
	New:  {"NEW", nil},
	Ret:  {"RET", nil},

	Get:    {"GET", nil},
	Set:    {"SET", nil},
	InOp:   {"IN", nil},
	Delete: {"DELETE", nil},

	Eq:   {"EQ", nil},
	Neq:  {"NEQ", nil},
	Seq:  {"SEQ", nil},
	Sneq: {"SNEQ", nil},
	Lt:   {"LT", nil},
	Lte:  {"LTE", nil},
	Gt:   {"GT", nil},
	Gte:  {"GTE", nil},

	Add: {"ADD", nil},
	Sub: {"SUB", nil},
	Mul: {"MUL", nil},
	Exp: {"EXP", nil},
	Div: {"DIV", nil},
	Mod: {"MOD", nil},

	Bnot:    {"BNOT", nil},
	Bor:     {"BOR", nil},
	Bxor:    {"BXOR", nil},
	Band:    {"BAND", nil},
	Lshift:  {"LSHIFT", nil},
	Rshift:  {"RSHIFT", nil},
	Urshift: {"URSHIFT", nil},

	Or:  {"OR", nil},
	And: {"AND", nil},
	Not: {"NOT", nil},

	Insof:  {"INSOF", nil},
	Typeof: {"TYPEOF", nil},
}

// Lookup returns the Definition for op, or an error if op is not a known
// opcode.
func Lookup(op byte) (*Definition, error) {
	def, ok := definitions[Opcode(op)]
	if !ok {
		return nil, fmt.Errorf("opcode %#x undefined", op)
	}
	return def, nil
}

// Instructions is a packed, assembled byte sequence.
type Instructions []byte

// String disassembles the instruction stream for debugging and for the
// REPL's disassembly toggle. It is best-effort: STR's variable-width
// operand is decoded as a UTF-16 string, and unknown opcodes are reported
// inline rather than aborting the walk.
func (ins Instructions) String() string {
	var out strings.Builder

	i := 0
	for i < len(ins) {
		def, err := Lookup(ins[i])
		if err != nil {
			fmt.Fprintf(&out, "%04d ERROR: %s\n", i, err)
			i++
			continue
		}

		start := i
		i++

		switch Opcode(ins[start]) {
		case Num:
			if i+8 > len(ins) {
				fmt.Fprintf(&out, "%04d %s <truncated>\n", start, def.Name)
				return out.String()
			}
			bits := binary.BigEndian.Uint64(ins[i : i+8])
			fmt.Fprintf(&out, "%04d %s %v\n", start, def.Name, math.Float64frombits(bits))
			i += 8
		case Addr:
			if i+4 > len(ins) {
				fmt.Fprintf(&out, "%04d %s <truncated>\n", start, def.Name)
				return out.String()
			}
			addr := binary.BigEndian.Uint32(ins[i : i+4])
			fmt.Fprintf(&out, "%04d %s %d\n", start, def.Name, addr)
			i += 4
		case Str:
			s, n, ok := decodeUTF16String(ins[i:])
			if !ok {
				fmt.Fprintf(&out, "%04d %s <truncated>\n", start, def.Name)
				return out.String()
			}
			fmt.Fprintf(&out, "%04d %s %q\n", start, def.Name, s)
			i += n
		default:
			fmt.Fprintf(&out, "%04d %s\n", start, def.Name)
		}
	}

	return out.String()
}

// decodeUTF16String reads a sequence of big-endian 16-bit code units
// terminated by 0x0000 from buf, returning the decoded string and the
// number of bytes consumed including the terminator.
func decodeUTF16String(buf []byte) (string, int, bool) {
	var units []uint16
	i := 0
	for {
		if i+2 > len(buf) {
			return "", 0, false
		}
		u := binary.BigEndian.Uint16(buf[i : i+2])
		i += 2
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), i, true
}

// EncodeNumber returns the 8-byte big-endian IEEE-754 encoding of n.
func EncodeNumber(n float64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(n))
	return buf
}

// EncodeString returns s encoded as a big-endian UTF-16 code-unit stream
// terminated by a 0x0000 unit. s must not contain the NUL code point.
func EncodeString(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2*len(units)+2)
	for idx, u := range units {
		binary.BigEndian.PutUint16(buf[idx*2:], u)
	}
	return buf
}

// EncodeAddr returns the 4-byte big-endian encoding of addr.
func EncodeAddr(addr uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, addr)
	return buf
}
