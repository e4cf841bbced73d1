// Package engine wires the front end (lexer, parser) to the back end
// (compiler, VM) into the two entry points an embedder actually needs:
// Compile, which turns source text into an assembled bytecode sequence, and
// Run, which compiles and executes it against a fresh global environment
// seeded with the host builtins table.
package engine

import (
	"fmt"
	"strings"

	"github.com/clscript/clscript/code"
	"github.com/clscript/clscript/compiler"
	"github.com/clscript/clscript/lexer"
	"github.com/clscript/clscript/object"
	"github.com/clscript/clscript/parser"
	"github.com/clscript/clscript/vm"
)

// Compile parses source and lowers it to an assembled bytecode sequence.
// The script root's bytecode always begins at offset 0, so the result can
// be handed directly to vm.New(...).Run(scope, 0).
func Compile(source string) (code.Instructions, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("parse error: %s", strings.Join(errs, "; "))
	}
	return compiler.Compile(program)
}

// Run compiles source and executes it against a fresh global environment,
// returning the value the script yields (its final expression statement's
// value, or undefined).
func Run(source string) (object.Value, error) {
	instrs, err := Compile(source)
	if err != nil {
		return nil, err
	}
	scope := object.NewGlobalEnvironment(object.Builtins())
	return vm.New(instrs).Run(scope, 0)
}
