package vm

import (
	"testing"

	"github.com/clscript/clscript/code"
	"github.com/clscript/clscript/object"
)

func numBytes(n float64) []byte { return code.EncodeNumber(n) }
func strBytes(s string) []byte  { return code.EncodeString(s) }
func addrBytes(a uint32) []byte { return code.EncodeAddr(a) }

func TestVMArithmetic(t *testing.T) {
	var instrs code.Instructions
	instrs = append(instrs, byte(code.Num))
	instrs = append(instrs, numBytes(2)...)
	instrs = append(instrs, byte(code.Num))
	instrs = append(instrs, numBytes(3)...)
	instrs = append(instrs, byte(code.Add))
	instrs = append(instrs, byte(code.Ret))

	scope := object.NewGlobalEnvironment(object.Builtins())
	result, err := New(instrs).Run(scope, 0)
	if err != nil {
		t.Fatalf("Run: unexpected error: %s", err)
	}
	if n, ok := result.(*object.Number); !ok || n.Value != 5 {
		t.Fatalf("result = %v, want Number{5}", result)
	}
}

func TestVMVarLoadOut(t *testing.T) {
	var instrs code.Instructions
	// VAR "x"
	instrs = append(instrs, byte(code.Str))
	instrs = append(instrs, strBytes("x")...)
	instrs = append(instrs, byte(code.Var))
	// OUT: push value, then name, then OUT (leaves the value on the stack)
	instrs = append(instrs, byte(code.Num))
	instrs = append(instrs, numBytes(42)...)
	instrs = append(instrs, byte(code.Str))
	instrs = append(instrs, strBytes("x")...)
	instrs = append(instrs, byte(code.Out))
	instrs = append(instrs, byte(code.Pop))
	// LOAD "x"
	instrs = append(instrs, byte(code.Str))
	instrs = append(instrs, strBytes("x")...)
	instrs = append(instrs, byte(code.Load))
	instrs = append(instrs, byte(code.Ret))

	scope := object.NewGlobalEnvironment(object.Builtins())
	result, err := New(instrs).Run(scope, 0)
	if err != nil {
		t.Fatalf("Run: unexpected error: %s", err)
	}
	if n, ok := result.(*object.Number); !ok || n.Value != 42 {
		t.Fatalf("result = %v, want Number{42}", result)
	}
}

func TestVMJumpSkipsOverDeadCode(t *testing.T) {
	// ADDR(skip) JUMP UNDEF NUM(9) RET — the JUMP must land past the UNDEF.
	var instrs code.Instructions
	instrs = append(instrs, byte(code.Addr))
	skipTo := uint32(1 + 4 + 1 + 1) // past ADDR+operand, JUMP, UNDEF
	instrs = append(instrs, addrBytes(skipTo)...)
	instrs = append(instrs, byte(code.Jump))
	instrs = append(instrs, byte(code.Undef))
	instrs = append(instrs, byte(code.Num))
	instrs = append(instrs, numBytes(9)...)
	instrs = append(instrs, byte(code.Ret))

	scope := object.NewGlobalEnvironment(object.Builtins())
	result, err := New(instrs).Run(scope, 0)
	if err != nil {
		t.Fatalf("Run: unexpected error: %s", err)
	}
	if n, ok := result.(*object.Number); !ok || n.Value != 9 {
		t.Fatalf("result = %v, want Number{9} (UNDEF should have been jumped over)", result)
	}
}

func TestVMCallHostFunction(t *testing.T) {
	// Builds len("ab") by hand: an args array holding one string element,
	// matching how lowerArrayLiteral builds a CallExpression's argument
	// array (ARR, then TOP/index/value/SET/POP per element).
	var instrs code.Instructions
	instrs = append(instrs, byte(code.Undef)) // receiver
	instrs = append(instrs, byte(code.Str))
	instrs = append(instrs, strBytes("len")...)
	instrs = append(instrs, byte(code.Load)) // fn
	instrs = append(instrs, byte(code.Arr))  // args array
	instrs = append(instrs, byte(code.Top))
	instrs = append(instrs, byte(code.Num))
	instrs = append(instrs, numBytes(0)...)
	instrs = append(instrs, byte(code.Str))
	instrs = append(instrs, strBytes("ab")...)
	instrs = append(instrs, byte(code.Set))
	instrs = append(instrs, byte(code.Pop))
	instrs = append(instrs, byte(code.Call))
	instrs = append(instrs, byte(code.Ret))

	scope := object.NewGlobalEnvironment(object.Builtins())
	result, err := New(instrs).Run(scope, 0)
	if err != nil {
		t.Fatalf("Run: unexpected error: %s", err)
	}
	if n, ok := result.(*object.Number); !ok || n.Value != 2 {
		t.Fatalf("len(\"ab\") via host call = %v, want Number{2}", result)
	}
}

func TestVMStackUnderflowOnPop(t *testing.T) {
	instrs := code.Instructions{byte(code.Pop)}
	scope := object.NewGlobalEnvironment(object.Builtins())
	if _, err := New(instrs).Run(scope, 0); err == nil {
		t.Fatal("Run: expected an error popping an empty stack, got nil")
	}
}

func TestVMSwitchBreakDiscardsDiscriminant(t *testing.T) {
	// Mirrors compiler.lowerSwitch's dispatch shape for a one-case switch
	// whose case body is just `break`: TOP/NUM/SEQ/JUMPIF probes a case,
	// an unconditional JUMP handles the no-match (no default) fallback,
	// and `break` jumps straight to the end label. The end label's first
	// instruction must be the POP that discards the duplicated
	// discriminant — every path into `end` (break, fallthrough, or a
	// miss with no default) arrives with exactly that one extra value on
	// the stack. If POP were placed before the label instead of after
	// it, the jump would land past it and RET would yield the
	// discriminant instead of the sentinel pushed before the switch.
	var instrs code.Instructions
	instrs = append(instrs, byte(code.Num))
	instrs = append(instrs, numBytes(42)...) // sentinel, must survive the switch
	instrs = append(instrs, byte(code.Num))
	instrs = append(instrs, numBytes(5)...) // discriminant
	instrs = append(instrs, byte(code.Top))
	instrs = append(instrs, byte(code.Num))
	instrs = append(instrs, numBytes(5)...)
	instrs = append(instrs, byte(code.Seq))

	caseAddr := uint32(len(instrs) + 1 + 4 + 1 + 1 + 4 + 1)
	endAddr := caseAddr + 1 + 4 + 1

	instrs = append(instrs, byte(code.Addr))
	instrs = append(instrs, addrBytes(caseAddr)...)
	instrs = append(instrs, byte(code.JumpIf))

	instrs = append(instrs, byte(code.Addr))
	instrs = append(instrs, addrBytes(endAddr)...) // no-match, no-default fallback
	instrs = append(instrs, byte(code.Jump))

	if uint32(len(instrs)) != caseAddr {
		t.Fatalf("caseAddr miscalculated: instrs is %d bytes, want %d", len(instrs), caseAddr)
	}
	instrs = append(instrs, byte(code.Addr))
	instrs = append(instrs, addrBytes(endAddr)...) // break
	instrs = append(instrs, byte(code.Jump))

	if uint32(len(instrs)) != endAddr {
		t.Fatalf("endAddr miscalculated: instrs is %d bytes, want %d", len(instrs), endAddr)
	}
	instrs = append(instrs, byte(code.Pop))
	instrs = append(instrs, byte(code.Ret))

	scope := object.NewGlobalEnvironment(object.Builtins())
	result, err := New(instrs).Run(scope, 0)
	if err != nil {
		t.Fatalf("Run: unexpected error: %s", err)
	}
	if n, ok := result.(*object.Number); !ok || n.Value != 42 {
		t.Fatalf("result = %v, want Number{42} (the discriminant must be popped before RET reads the sentinel)", result)
	}
}

func TestVMUnknownOpcode(t *testing.T) {
	instrs := code.Instructions{0xFF}
	scope := object.NewGlobalEnvironment(object.Builtins())
	if _, err := New(instrs).Run(scope, 0); err == nil {
		t.Fatal("Run: expected an error for an unknown opcode, got nil")
	}
}
