// Package compiler implements the statement/expression lowerer: it walks
// each block produced by the AST pre-processor (package hoist) and emits
// symbolic instructions (package emit) per the lowering rules, then hands
// the result to the assembler (package asm) for label resolution.
//
// Compilation proceeds in the same two passes the package overview
// describes: first the AST pre-processor discovers blocks and hoists
// declarations, then this package lowers each block's statements and
// expressions into the symbolic instruction buffer, and finally the
// assembler resolves labels into a packed byte sequence.
package compiler

import (
	"fmt"

	"github.com/clscript/clscript/asm"
	"github.com/clscript/clscript/ast"
	"github.com/clscript/clscript/code"
	"github.com/clscript/clscript/emit"
	"github.com/clscript/clscript/hoist"
	"github.com/clscript/clscript/idgen"
)

// controlFrame records the jump targets `break` and `continue` resolve to
// for one enclosing loop or switch. ContinueLabel is empty for switch
// statements, which do not accept `continue`.
type controlFrame struct {
	BreakLabel    string
	ContinueLabel string
}

// Compiler lowers a parsed program into an assembled bytecode sequence.
type Compiler struct {
	gen          *idgen.Generator
	buf          *emit.Buffer
	controlStack []controlFrame
}

// New returns a Compiler ready to compile one program.
func New() *Compiler {
	return &Compiler{gen: idgen.New(), buf: emit.New()}
}

// Compile runs the full pipeline — pre-processing, lowering, assembly —
// over program and returns the packed bytecode sequence.
func Compile(program *ast.Program) (code.Instructions, error) {
	c := New()
	blocks, err := hoist.Process(program, c.gen)
	if err != nil {
		return nil, err
	}
	for _, block := range blocks {
		if err := c.compileBlock(block); err != nil {
			return nil, err
		}
	}
	return asm.Assemble(c.buf)
}

func (c *Compiler) compileBlock(block *hoist.Block) error {
	c.buf.Label(block.Label)

	if block.Program != nil {
		// Script root. Its final statement, if it is an expression
		// statement, is lowered without the usual trailing POP so its
		// value becomes the script's result — the value RET yields to
		// engine.Run/the REPL/the CLI's -e flag.
		for _, name := range block.Declarations.Names() {
			c.buf.String(name)
			c.buf.Op(code.Var)
		}
		stmts := block.Program.Statements
		for i, s := range stmts {
			if i == len(stmts)-1 {
				if expr, ok := s.(*ast.ExpressionStatement); ok {
					if err := c.lowerExpr(expr.Expression); err != nil {
						return err
					}
					c.buf.Op(code.Ret)
					return nil
				}
			}
			if err := c.lowerStatement(s); err != nil {
				return err
			}
		}
		c.buf.Op(code.Undef)
		c.buf.Op(code.Ret)
		return nil
	}

	// Function block: the operand stack on entry holds the arguments array.
	for i, param := range block.Params {
		c.buf.String(param.Name)
		c.buf.Op(code.Var)
		c.buf.Op(code.Top)
		c.buf.Number(float64(i))
		c.buf.Op(code.Get)
		c.buf.String(param.Name)
		c.buf.Op(code.Out)
		c.buf.Op(code.Pop)
	}
	c.buf.Op(code.Pop) // discard the arguments array

	for _, name := range block.Declarations.Names() {
		c.buf.String(name)
		c.buf.Op(code.Var)
	}
	if err := c.lowerStatements(block.Body.Statements); err != nil {
		return err
	}
	c.buf.Op(code.Undef)
	c.buf.Op(code.Ret)
	return nil
}

func (c *Compiler) lowerStatements(stmts []ast.Statement) error {
	for _, s := range stmts {
		if err := c.lowerStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) lowerStatement(stmt ast.Statement) error {
	switch n := stmt.(type) {
	case nil, *ast.EmptyStatement:
		return nil

	case *ast.BlockStatement:
		return c.lowerStatements(n.Statements)

	case *ast.ExpressionStatement:
		if err := c.lowerExpr(n.Expression); err != nil {
			return err
		}
		c.buf.Op(code.Pop)
		return nil

	case *ast.VariableDeclaration:
		return c.lowerVariableDeclaration(n)

	case *ast.IfStatement:
		return c.lowerIf(n)

	case *ast.WhileStatement:
		return c.lowerWhile(n)

	case *ast.DoWhileStatement:
		return c.lowerDoWhile(n)

	case *ast.ForStatement:
		return c.lowerFor(n)

	case *ast.SwitchStatement:
		return c.lowerSwitch(n)

	case *ast.BreakStatement:
		if len(c.controlStack) == 0 {
			return fmt.Errorf("compiler: break outside loop or switch")
		}
		c.buf.Reference(c.controlStack[len(c.controlStack)-1].BreakLabel)
		c.buf.Op(code.Jump)
		return nil

	case *ast.ContinueStatement:
		for i := len(c.controlStack) - 1; i >= 0; i-- {
			if c.controlStack[i].ContinueLabel != "" {
				c.buf.Reference(c.controlStack[i].ContinueLabel)
				c.buf.Op(code.Jump)
				return nil
			}
		}
		return fmt.Errorf("compiler: continue outside loop")

	case *ast.ReturnStatement:
		if n.Argument != nil {
			if err := c.lowerExpr(n.Argument); err != nil {
				return err
			}
		} else {
			c.buf.Op(code.Undef)
		}
		c.buf.Op(code.Ret)
		return nil

	case *ast.FunctionDeclaration:
		c.buf.Op(code.Null)
		c.buf.Number(float64(len(n.Params)))
		c.buf.Reference(n.Label)
		c.buf.Op(code.Func)
		c.buf.String(n.Name.Name)
		c.buf.Op(code.Out)
		c.buf.Op(code.Pop)
		return nil

	default:
		return fmt.Errorf("compiler: unrecognized statement node: %T", n)
	}
}

func (c *Compiler) lowerVariableDeclaration(n *ast.VariableDeclaration) error {
	var assigns []ast.Expression
	for _, d := range n.Declarations {
		if d.Init == nil {
			continue
		}
		assigns = append(assigns, &ast.AssignmentExpression{
			Token:    n.Token,
			Operator: "=",
			Left:     d.Name,
			Right:    d.Init,
		})
	}
	if len(assigns) == 0 {
		return nil
	}
	var expr ast.Expression
	if len(assigns) == 1 {
		expr = assigns[0]
	} else {
		expr = &ast.SequenceExpression{Token: n.Token, Expressions: assigns}
	}
	if err := c.lowerExpr(expr); err != nil {
		return err
	}
	c.buf.Op(code.Pop)
	return nil
}

func (c *Compiler) lowerIf(n *ast.IfStatement) error {
	if err := c.lowerExpr(n.Condition); err != nil {
		return err
	}
	altOrEnd := c.gen.Get()
	c.buf.Reference(altOrEnd)
	c.buf.Op(code.JumpNot)
	if err := c.lowerStatement(n.Consequent); err != nil {
		return err
	}
	if n.Alternative != nil {
		end := c.gen.Get()
		c.buf.Reference(end)
		c.buf.Op(code.Jump)
		c.buf.Label(altOrEnd)
		if err := c.lowerStatement(n.Alternative); err != nil {
			return err
		}
		c.buf.Label(end)
	} else {
		c.buf.Label(altOrEnd)
	}
	return nil
}

func (c *Compiler) lowerWhile(n *ast.WhileStatement) error {
	start := c.gen.Get()
	end := c.gen.Get()

	c.buf.Label(start)
	if err := c.lowerExpr(n.Condition); err != nil {
		return err
	}
	c.buf.Reference(end)
	c.buf.Op(code.JumpNot)

	c.controlStack = append(c.controlStack, controlFrame{BreakLabel: end, ContinueLabel: start})
	err := c.lowerStatement(n.Body)
	c.controlStack = c.controlStack[:len(c.controlStack)-1]
	if err != nil {
		return err
	}

	c.buf.Reference(start)
	c.buf.Op(code.Jump)
	c.buf.Label(end)
	return nil
}

func (c *Compiler) lowerDoWhile(n *ast.DoWhileStatement) error {
	start := c.gen.Get()
	test := c.gen.Get()
	end := c.gen.Get()

	c.buf.Label(start)
	c.controlStack = append(c.controlStack, controlFrame{BreakLabel: end, ContinueLabel: test})
	err := c.lowerStatement(n.Body)
	c.controlStack = c.controlStack[:len(c.controlStack)-1]
	if err != nil {
		return err
	}

	c.buf.Label(test)
	if err := c.lowerExpr(n.Condition); err != nil {
		return err
	}
	c.buf.Reference(start)
	c.buf.Op(code.JumpIf)
	c.buf.Label(end)
	return nil
}

func (c *Compiler) lowerFor(n *ast.ForStatement) error {
	switch init := n.Init.(type) {
	case *ast.VariableDeclaration:
		if err := c.lowerStatement(init); err != nil {
			return err
		}
	case *ast.ExpressionStatement:
		if err := c.lowerStatement(init); err != nil {
			return err
		}
	}

	start := c.gen.Get()
	update := c.gen.Get()
	end := c.gen.Get()

	c.buf.Label(start)
	if n.Test != nil {
		if err := c.lowerExpr(n.Test); err != nil {
			return err
		}
		c.buf.Reference(end)
		c.buf.Op(code.JumpNot)
	}

	c.controlStack = append(c.controlStack, controlFrame{BreakLabel: end, ContinueLabel: update})
	err := c.lowerStatement(n.Body)
	c.controlStack = c.controlStack[:len(c.controlStack)-1]
	if err != nil {
		return err
	}

	c.buf.Label(update)
	if n.Update != nil {
		if err := c.lowerExpr(n.Update); err != nil {
			return err
		}
		c.buf.Op(code.Pop)
	}
	c.buf.Reference(start)
	c.buf.Op(code.Jump)
	c.buf.Label(end)
	return nil
}

func (c *Compiler) lowerSwitch(n *ast.SwitchStatement) error {
	if err := c.lowerExpr(n.Discriminant); err != nil {
		return err
	}

	end := c.gen.Get()
	caseLabels := make([]string, len(n.Cases))
	defaultLabel := ""
	for i, cs := range n.Cases {
		caseLabels[i] = c.gen.Get()
		if cs.Test == nil {
			defaultLabel = caseLabels[i]
		}
	}

	for i, cs := range n.Cases {
		if cs.Test == nil {
			continue
		}
		c.buf.Op(code.Top)
		if err := c.lowerExpr(cs.Test); err != nil {
			return err
		}
		c.buf.Op(code.Seq)
		c.buf.Reference(caseLabels[i])
		c.buf.Op(code.JumpIf)
	}

	if defaultLabel != "" {
		c.buf.Reference(defaultLabel)
	} else {
		c.buf.Reference(end)
	}
	c.buf.Op(code.Jump)

	c.controlStack = append(c.controlStack, controlFrame{BreakLabel: end})
	for i, cs := range n.Cases {
		c.buf.Label(caseLabels[i])
		if err := c.lowerStatements(cs.Consequent); err != nil {
			c.controlStack = c.controlStack[:len(c.controlStack)-1]
			return err
		}
	}
	c.controlStack = c.controlStack[:len(c.controlStack)-1]

	c.buf.Label(end)
	c.buf.Op(code.Pop)
	return nil
}
