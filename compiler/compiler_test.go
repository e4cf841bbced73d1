package compiler

import (
	"testing"

	"github.com/clscript/clscript/lexer"
	"github.com/clscript/clscript/object"
	"github.com/clscript/clscript/parser"
	"github.com/clscript/clscript/vm"
)

// runProgram parses, compiles, and runs input, returning the value its
// script-root block yields. Mirrors the compile-then-run pairing the
// example corpus's own compiler/vm test suites use, adapted here since
// this compiler has no constant pool to inspect directly.
func runProgram(t *testing.T, input string) object.Value {
	t.Helper()

	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}

	instrs, err := Compile(program)
	if err != nil {
		t.Fatalf("Compile(%q): unexpected error: %s", input, err)
	}

	scope := object.NewGlobalEnvironment(object.Builtins())
	result, err := vm.New(instrs).Run(scope, 0)
	if err != nil {
		t.Fatalf("Run(%q): unexpected error: %s", input, err)
	}
	return result
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1 + 2 * 3;", 7},
		{"(1 + 2) * 3;", 9},
		{"2 ** 3 ** 2;", 512}, // right-associative exponent
		{"10 % 3;", 1},
		{"-5 + 2;", -3},
	}
	for _, tt := range tests {
		got := runProgram(t, tt.input)
		n, ok := got.(*object.Number)
		if !ok || n.Value != tt.want {
			t.Errorf("%q = %v, want Number{%v}", tt.input, got, tt.want)
		}
	}
}

func TestCompileVariablesAndAssignment(t *testing.T) {
	got := runProgram(t, "var x = 1; x += 4; x;")
	n, ok := got.(*object.Number)
	if !ok || n.Value != 5 {
		t.Fatalf("result = %v, want Number{5}", got)
	}
}

func TestCompileIfElse(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"var x; if (true) { x = 1; } else { x = 2; } x;", 1},
		{"var x; if (false) { x = 1; } else { x = 2; } x;", 2},
		{"var x = 0; if (false) { x = 1; } x;", 0},
	}
	for _, tt := range tests {
		got := runProgram(t, tt.input)
		n, ok := got.(*object.Number)
		if !ok || n.Value != tt.want {
			t.Errorf("%q = %v, want Number{%v}", tt.input, got, tt.want)
		}
	}
}

func TestCompileWhileLoop(t *testing.T) {
	got := runProgram(t, "var i = 0; var sum = 0; while (i < 5) { sum += i; i += 1; } sum;")
	n, ok := got.(*object.Number)
	if !ok || n.Value != 10 {
		t.Fatalf("result = %v, want Number{10}", got)
	}
}

func TestCompileDoWhileRunsBodyOnce(t *testing.T) {
	got := runProgram(t, "var i = 0; do { i += 1; } while (false); i;")
	n, ok := got.(*object.Number)
	if !ok || n.Value != 1 {
		t.Fatalf("result = %v, want Number{1}", got)
	}
}

func TestCompileForLoop(t *testing.T) {
	got := runProgram(t, "var sum = 0; for (var i = 0; i < 4; i += 1) { sum += i; } sum;")
	n, ok := got.(*object.Number)
	if !ok || n.Value != 6 {
		t.Fatalf("result = %v, want Number{6}", got)
	}
}

func TestCompileForLoopSkipsBodyWhenTestIsInitiallyFalse(t *testing.T) {
	got := runProgram(t, "var calls = 0; for (var i = 0; i < 0; i += 1) { calls += 1; } calls;")
	n, ok := got.(*object.Number)
	if !ok || n.Value != 0 {
		t.Fatalf("result = %v, want Number{0} (a for-loop must test its condition before running the body even once)", got)
	}
}

func TestCompileForLoopWithNoTestRunsUntilBreak(t *testing.T) {
	got := runProgram(t, `
		var i = 0;
		for (;;) {
			if (i == 3) { break; }
			i += 1;
		}
		i;
	`)
	n, ok := got.(*object.Number)
	if !ok || n.Value != 3 {
		t.Fatalf("result = %v, want Number{3}", got)
	}
}

func TestCompileBreakAndContinue(t *testing.T) {
	got := runProgram(t, `
		var sum = 0;
		for (var i = 0; i < 10; i += 1) {
			if (i == 5) { break; }
			if (i % 2 == 0) { continue; }
			sum += i;
		}
		sum;
	`)
	n, ok := got.(*object.Number)
	if !ok || n.Value != 4 { // 1 + 3
		t.Fatalf("result = %v, want Number{4}", got)
	}
}

func TestCompileSwitchFallthrough(t *testing.T) {
	got := runProgram(t, `
		var out = 0;
		switch (2) {
		case 1:
			out += 1;
		case 2:
			out += 10;
		case 3:
			out += 100;
			break;
		default:
			out += 1000;
		}
		out;
	`)
	n, ok := got.(*object.Number)
	if !ok || n.Value != 110 {
		t.Fatalf("result = %v, want Number{110}", got)
	}
}

func TestCompileSwitchDefaultOnly(t *testing.T) {
	got := runProgram(t, `
		var out = 0;
		switch (99) {
		case 1:
			out = 1;
			break;
		default:
			out = 2;
		}
		out;
	`)
	n, ok := got.(*object.Number)
	if !ok || n.Value != 2 {
		t.Fatalf("result = %v, want Number{2}", got)
	}
}

func TestCompileFunctionDeclarationAndCall(t *testing.T) {
	got := runProgram(t, `
		function add(a, b) { return a + b; }
		add(3, 4);
	`)
	n, ok := got.(*object.Number)
	if !ok || n.Value != 7 {
		t.Fatalf("result = %v, want Number{7}", got)
	}
}

func TestCompileRecursiveFunction(t *testing.T) {
	got := runProgram(t, `
		function fact(n) {
			if (n <= 1) { return 1; }
			return n * fact(n - 1);
		}
		fact(5);
	`)
	n, ok := got.(*object.Number)
	if !ok || n.Value != 120 {
		t.Fatalf("result = %v, want Number{120}", got)
	}
}

func TestCompileFunctionLiteralClosure(t *testing.T) {
	got := runProgram(t, `
		function makeAdder(x) {
			return function(y) { return x + y; };
		}
		var addFive = makeAdder(5);
		addFive(10);
	`)
	n, ok := got.(*object.Number)
	if !ok || n.Value != 15 {
		t.Fatalf("result = %v, want Number{15}", got)
	}
}

func TestCompileTernaryAndLogical(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"true ? 1 : 2;", 1},
		{"false ? 1 : 2;", 2},
		{"0 || 7;", 7},
		{"3 && 9;", 9},
	}
	for _, tt := range tests {
		got := runProgram(t, tt.input)
		n, ok := got.(*object.Number)
		if !ok || n.Value != tt.want {
			t.Errorf("%q = %v, want Number{%v}", tt.input, got, tt.want)
		}
	}
}

func TestCompileArrayAndMemberAccess(t *testing.T) {
	got := runProgram(t, "var a = [10, 20, 30]; a[1];")
	n, ok := got.(*object.Number)
	if !ok || n.Value != 20 {
		t.Fatalf("result = %v, want Number{20}", got)
	}
}

func TestCompileArrayElision(t *testing.T) {
	// An elided slot in an array literal lowers as NULL, not UNDEFINED
	// (see lowerArrayLiteral) — distinct from a slot an out-of-range SET
	// grows the array to, which setProperty fills with Undefined.
	got := runProgram(t, "var a = [1, , 3]; typeof a[1];")
	s, ok := got.(*object.String)
	if !ok || s.Value != "object" {
		t.Fatalf("result = %v, want String{\"object\"}", got)
	}
}

func TestCompileObjectLiteralAndMemberAccess(t *testing.T) {
	got := runProgram(t, `var o = {a: 1, b: 2}; o.b;`)
	n, ok := got.(*object.Number)
	if !ok || n.Value != 2 {
		t.Fatalf("result = %v, want Number{2}", got)
	}
}

func TestCompileUpdateExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"var x = 1; x++; x;", 2},
		{"var x = 1; ++x;", 2},
		{"var x = 1; x++;", 1}, // postfix yields the pre-update value
	}
	for _, tt := range tests {
		got := runProgram(t, tt.input)
		n, ok := got.(*object.Number)
		if !ok || n.Value != tt.want {
			t.Errorf("%q = %v, want Number{%v}", tt.input, got, tt.want)
		}
	}
}

func TestCompileTypeofVoidDelete(t *testing.T) {
	tests := []struct {
		input string
		want  object.Value
	}{
		{"typeof 1;", &object.String{Value: "number"}},
		{"typeof \"s\";", &object.String{Value: "string"}},
		{"void 5;", &object.Undefined{}},
	}
	for _, tt := range tests {
		got := runProgram(t, tt.input)
		if got.Inspect() != tt.want.Inspect() {
			t.Errorf("%q = %v, want %v", tt.input, got, tt.want)
		}
	}

	got := runProgram(t, `var o = {a: 1}; delete o.a; typeof o.a;`)
	if s, ok := got.(*object.String); !ok || s.Value != "undefined" {
		t.Fatalf("after delete: typeof o.a = %v, want String{\"undefined\"}", got)
	}
}

func TestCompileSequenceExpression(t *testing.T) {
	got := runProgram(t, "var x = (1, 2, 3); x;")
	n, ok := got.(*object.Number)
	if !ok || n.Value != 3 {
		t.Fatalf("result = %v, want Number{3}", got)
	}
}

func TestCompileStringConcatenation(t *testing.T) {
	got := runProgram(t, `"a" + "b" + 1;`)
	s, ok := got.(*object.String)
	if !ok || s.Value != "ab1" {
		t.Fatalf("result = %v, want String{\"ab1\"}", got)
	}
}

func TestCompileClosureCapturesLoopInductionVariableViaIIFE(t *testing.T) {
	// Each iteration's IIFE argument j is bound fresh per call, so each
	// returned closure keeps its own i even though the loop variable i
	// itself is var-scoped (shared) across iterations.
	got := runProgram(t, `
		var a = [];
		for (var i = 0; i < 3; i++) {
			a[i] = (function(j){ return function(){ return j; } })(i);
		}
		a[0]() + a[1]() + a[2]();
	`)
	n, ok := got.(*object.Number)
	if !ok || n.Value != 3 {
		t.Fatalf("result = %v, want Number{3}", got)
	}
}

func TestCompileNamedFunctionExpressionCallsItselfByOwnName(t *testing.T) {
	got := runProgram(t, `
		var f = function g(n){ return n < 1 ? 0 : n + g(n-1); };
		f(4);
	`)
	n, ok := got.(*object.Number)
	if !ok || n.Value != 10 {
		t.Fatalf("result = %v, want Number{10}", got)
	}
}

func TestCompileNamedFunctionExpressionNameIsNotVisibleOutside(t *testing.T) {
	l := lexer.New(`var f = function g(n){ return n; }; g;`)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	instrs, err := Compile(program)
	if err != nil {
		t.Fatalf("Compile: unexpected error: %s", err)
	}
	scope := object.NewGlobalEnvironment(object.Builtins())
	if _, err := vm.New(instrs).Run(scope, 0); err == nil {
		t.Fatal("Run: expected an unresolved-reference error for g outside its own function expression, got nil")
	}
}

func TestCompileShortCircuitLogicalOperatorsSkipUnevaluatedSide(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{
			name: "&& with falsy left does not evaluate right",
			input: `
				var calls = 0;
				function sideEffect() { calls += 1; return 1; }
				false && sideEffect();
				calls;
			`,
			want: 0,
		},
		{
			name: "|| with truthy left does not evaluate right",
			input: `
				var calls = 0;
				function sideEffect() { calls += 1; return 1; }
				true || sideEffect();
				calls;
			`,
			want: 0,
		},
	}
	for _, tt := range tests {
		got := runProgram(t, tt.input)
		n, ok := got.(*object.Number)
		if !ok || n.Value != tt.want {
			t.Errorf("%s: calls = %v, want Number{%v} (unevaluated side must have no side effect)", tt.name, got, tt.want)
		}
	}
}

func TestCompileBreakOutsideLoopIsAnError(t *testing.T) {
	l := lexer.New("break;")
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	if _, err := Compile(program); err == nil {
		t.Fatal("Compile: expected an error for break outside a loop, got nil")
	}
}
