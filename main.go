// Command clscript compiles source code for this module's C-like scripting
// language into bytecode and runs it on the stack virtual machine.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/clscript/clscript/code"
	"github.com/clscript/clscript/compiler"
	"github.com/clscript/clscript/lexer"
	"github.com/clscript/clscript/object"
	"github.com/clscript/clscript/parser"
	"github.com/clscript/clscript/repl"
	"github.com/clscript/clscript/vm"
)

const version = "0.1.0"

func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `clscript v%s

USAGE:
    %s [OPTIONS]

DESCRIPTION:
    clscript compiles source code into bytecode and runs it on a stack
    virtual machine. Without any flags, it starts an interactive REPL.

OPTIONS:
    -f, --file <path>         Execute a script file
    -e, --eval <code>         Evaluate an expression and print the result
    -d, --debug                Print the disassembled bytecode and result
    -c, --compile-only         Compile only; write bytecode instead of running it
    -o, --out <path>           Bytecode output path for -c (default: <input>.clbc)
    -v, --version              Show version information
    -h, --help                  Show this help message

EXAMPLES:
    # Start interactive REPL
    %s

    # Execute a script file
    %s -f script.cls

    # Evaluate an expression
    %s -e "var x = 5; x * 2"

    # Compile a script to bytecode without running it
    %s -c -f script.cls -o script.clbc

`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage

	fileFlag := flag.String("file", "", "Execute a script file")
	evalFlag := flag.String("eval", "", "Evaluate an expression and print the result")
	debugFlag := flag.Bool("debug", false, "Print the disassembled bytecode and result")
	compileFlag := flag.Bool("compile-only", false, "Compile only; write bytecode instead of running it")
	outFlag := flag.String("out", "", "Bytecode output path for -c")
	versionFlag := flag.Bool("version", false, "Show version information")

	flag.StringVar(fileFlag, "f", "", "Execute a script file")
	flag.StringVar(evalFlag, "e", "", "Evaluate an expression and print the result")
	flag.BoolVar(debugFlag, "d", false, "Print the disassembled bytecode and result")
	flag.BoolVar(compileFlag, "c", false, "Compile only; write bytecode instead of running it")
	flag.StringVar(outFlag, "o", "", "Bytecode output path for -c")
	flag.BoolVar(versionFlag, "v", false, "Show version information")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("clscript v%s\n", version)
		return
	}

	if *compileFlag {
		if *fileFlag == "" {
			fmt.Println("compile-only mode requires -f/--file")
			os.Exit(1)
		}
		compileToFile(*fileFlag, *outFlag)
		return
	}

	if *fileFlag != "" {
		executeFile(*fileFlag, *debugFlag)
		return
	}

	if *evalFlag != "" {
		evaluateExpression(*evalFlag, *debugFlag)
		return
	}

	username := "unknown"
	if usr, err := user.Current(); err == nil {
		username = usr.Username
	}

	fmt.Println("Hello", username+",", "welcome to clscript!")
	fmt.Println("Feel free to type in code. (Ctrl+D or Ctrl+C to exit)")

	repl.Start(username, repl.Options{Debug: *debugFlag})
}

func readSource(filename string) (string, string) {
	cleaned := filepath.Clean(filename)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		fmt.Printf("Error getting absolute path: %s\n", err)
		os.Exit(1)
	}
	//nolint:gosec // reading a user-supplied script path is the point of this flag
	content, err := os.ReadFile(absolute)
	if err != nil {
		fmt.Printf("Error reading file: %s\n", err)
		os.Exit(1)
	}
	return string(content), absolute
}

func compileProgram(source string) (code.Instructions, []string) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errs
	}
	instrs, err := compiler.Compile(program)
	if err != nil {
		return nil, []string{err.Error()}
	}
	return instrs, nil
}

// executeFile reads, compiles, and runs a script file.
func executeFile(filename string, debug bool) {
	source, absolute := readSource(filename)
	fmt.Printf("Executing file: %s\n", absolute)

	instrs, errs := compileProgram(source)
	if errs != nil {
		printErrors(errs)
		os.Exit(1)
	}

	scope := object.NewGlobalEnvironment(object.Builtins())
	result, err := vm.New(instrs).Run(scope, 0)
	if err != nil {
		fmt.Printf("VM error: %s\n", err)
		os.Exit(1)
	}

	if debug {
		fmt.Println(instrs.String())
	}
	if result != nil {
		fmt.Println(result.Inspect())
	}
}

// evaluateExpression compiles and runs a single line of source.
func evaluateExpression(source string, debug bool) {
	instrs, errs := compileProgram(source)
	if errs != nil {
		printErrors(errs)
		os.Exit(1)
	}

	scope := object.NewGlobalEnvironment(object.Builtins())
	result, err := vm.New(instrs).Run(scope, 0)
	if err != nil {
		fmt.Printf("VM error: %s\n", err)
		os.Exit(1)
	}

	if debug {
		fmt.Println(instrs.String())
	}
	if result != nil {
		fmt.Println(result.Inspect())
	}
}

// compileToFile assembles source's bytecode and writes it, plus a
// disassembled listing alongside it, instead of running it.
func compileToFile(filename, out string) {
	source, absolute := readSource(filename)

	instrs, errs := compileProgram(source)
	if errs != nil {
		printErrors(errs)
		os.Exit(1)
	}

	if out == "" {
		out = strings.TrimSuffix(absolute, filepath.Ext(absolute)) + ".clbc"
	}
	if err := os.WriteFile(out, instrs, 0o644); err != nil {
		fmt.Printf("Error writing bytecode: %s\n", err)
		os.Exit(1)
	}
	disasmPath := out + ".dis"
	if err := os.WriteFile(disasmPath, []byte(instrs.String()), 0o644); err != nil {
		fmt.Printf("Error writing disassembly: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d bytes of bytecode to %s\n", len(instrs), out)
	fmt.Printf("Wrote disassembly to %s\n", disasmPath)
}

func printErrors(errs []string) {
	_, _ = fmt.Fprintln(os.Stderr, "Errors:")
	for _, msg := range errs {
		_, _ = fmt.Fprintln(os.Stderr, "\t"+msg)
	}
}
