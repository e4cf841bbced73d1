// Package hoist implements the AST pre-processor (block discovery +
// hoisting): a pre-order traversal that rejects unsupported syntax,
// annotates every block-forming node (script root, function literal,
// function declaration) with a hoisted-declaration set and a unique label,
// and returns the list of blocks in discovery order.
package hoist

import (
	"fmt"

	"github.com/clscript/clscript/ast"
	"github.com/clscript/clscript/idgen"
)

// Block is a unit of compilation: the script root, a function declaration,
// or a function literal.
type Block struct {
	Label        string
	Declarations *ast.DeclarationSet
	Params       []*ast.Identifier
	Body         *ast.BlockStatement // nil for the script root; use Program instead
	Program      *ast.Program        // non-nil only for the script-root block
	Name         string              // display name, "" if anonymous
}

// Process walks program, rejecting unsupported syntax and returns the
// ordered list of blocks (script root first, then each function in
// discovery order).
func Process(program *ast.Program, gen *idgen.Generator) ([]*Block, error) {
	p := &processor{gen: gen}

	program.Declarations = ast.NewDeclarationSet()
	program.Label = ".main_" + gen.Get()
	p.blocks = append(p.blocks, &Block{
		Label:        program.Label,
		Declarations: program.Declarations,
		Program:      program,
		Name:         "main",
	})

	if err := p.walkStatements(program.Statements, program.Declarations); err != nil {
		return nil, err
	}
	return p.blocks, nil
}

type processor struct {
	gen    *idgen.Generator
	blocks []*Block
}

func (p *processor) walkStatements(stmts []ast.Statement, decls *ast.DeclarationSet) error {
	for _, s := range stmts {
		if err := p.walkStatement(s, decls); err != nil {
			return err
		}
	}
	return nil
}

func (p *processor) walkStatement(stmt ast.Statement, decls *ast.DeclarationSet) error {
	switch n := stmt.(type) {
	case nil:
		return nil
	case *ast.EmptyStatement:
		return nil
	case *ast.BlockStatement:
		return p.walkStatements(n.Statements, decls)
	case *ast.ExpressionStatement:
		return p.walkExpr(n.Expression, decls)
	case *ast.VariableDeclaration:
		for _, d := range n.Declarations {
			decls.Add(d.Name.Name)
			if d.Init != nil {
				if err := p.walkExpr(d.Init, decls); err != nil {
					return err
				}
			}
		}
		return nil
	case *ast.IfStatement:
		if err := p.walkExpr(n.Condition, decls); err != nil {
			return err
		}
		if err := p.walkStatement(n.Consequent, decls); err != nil {
			return err
		}
		return p.walkStatement(n.Alternative, decls)
	case *ast.WhileStatement:
		if err := p.walkExpr(n.Condition, decls); err != nil {
			return err
		}
		return p.walkStatement(n.Body, decls)
	case *ast.DoWhileStatement:
		if err := p.walkStatement(n.Body, decls); err != nil {
			return err
		}
		return p.walkExpr(n.Condition, decls)
	case *ast.ForStatement:
		switch init := n.Init.(type) {
		case *ast.VariableDeclaration:
			if err := p.walkStatement(init, decls); err != nil {
				return err
			}
		case *ast.ExpressionStatement:
			if err := p.walkStatement(init, decls); err != nil {
				return err
			}
		}
		if n.Test != nil {
			if err := p.walkExpr(n.Test, decls); err != nil {
				return err
			}
		}
		if n.Update != nil {
			if err := p.walkExpr(n.Update, decls); err != nil {
				return err
			}
		}
		return p.walkStatement(n.Body, decls)
	case *ast.SwitchStatement:
		if err := p.walkExpr(n.Discriminant, decls); err != nil {
			return err
		}
		for _, c := range n.Cases {
			if c.Test != nil {
				if err := p.walkExpr(c.Test, decls); err != nil {
					return err
				}
			}
			if err := p.walkStatements(c.Consequent, decls); err != nil {
				return err
			}
		}
		return nil
	case *ast.BreakStatement, *ast.ContinueStatement:
		return nil
	case *ast.ReturnStatement:
		if n.Argument != nil {
			return p.walkExpr(n.Argument, decls)
		}
		return nil
	case *ast.FunctionDeclaration:
		decls.Add(n.Name.Name)
		n.Declarations = ast.NewDeclarationSet()
		n.Label = "." + n.Name.Name + "_" + p.gen.Get()
		p.blocks = append(p.blocks, &Block{
			Label:        n.Label,
			Declarations: n.Declarations,
			Params:       n.Params,
			Body:         n.Body,
			Name:         n.Name.Name,
		})
		return p.walkStatements(n.Body.Statements, n.Declarations)
	case *ast.LabeledStatement, *ast.ThrowStatement, *ast.TryStatement, *ast.ForInStatement:
		return fmt.Errorf("hoist: unsupported syntax: %T", n)
	default:
		return fmt.Errorf("hoist: unrecognized statement node: %T", n)
	}
}

func (p *processor) walkExpr(expr ast.Expression, decls *ast.DeclarationSet) error {
	switch n := expr.(type) {
	case nil:
		return nil
	case *ast.Identifier, *ast.Literal, *ast.UndefinedLiteral, *ast.ThisExpression:
		return nil
	case *ast.ArrayExpression:
		for _, el := range n.Elements {
			if err := p.walkExpr(el, decls); err != nil {
				return err
			}
		}
		return nil
	case *ast.ObjectExpression:
		for _, prop := range n.Properties {
			if prop.Computed {
				if keyExpr, ok := prop.Key.(ast.Expression); ok {
					if err := p.walkExpr(keyExpr, decls); err != nil {
						return err
					}
				}
			}
			if err := p.walkExpr(prop.Value, decls); err != nil {
				return err
			}
		}
		return nil
	case *ast.UnaryExpression:
		return p.walkExpr(n.Argument, decls)
	case *ast.UpdateExpression:
		return p.walkExpr(n.Argument, decls)
	case *ast.BinaryExpression:
		if err := p.walkExpr(n.Left, decls); err != nil {
			return err
		}
		return p.walkExpr(n.Right, decls)
	case *ast.LogicalExpression:
		if err := p.walkExpr(n.Left, decls); err != nil {
			return err
		}
		return p.walkExpr(n.Right, decls)
	case *ast.ConditionalExpression:
		if err := p.walkExpr(n.Test, decls); err != nil {
			return err
		}
		if err := p.walkExpr(n.Consequent, decls); err != nil {
			return err
		}
		return p.walkExpr(n.Alternative, decls)
	case *ast.AssignmentExpression:
		if err := p.walkExpr(n.Left, decls); err != nil {
			return err
		}
		return p.walkExpr(n.Right, decls)
	case *ast.MemberExpression:
		if err := p.walkExpr(n.Object, decls); err != nil {
			return err
		}
		if n.Computed {
			return p.walkExpr(n.Property, decls)
		}
		return nil
	case *ast.CallExpression:
		if err := p.walkExpr(n.Callee, decls); err != nil {
			return err
		}
		for _, a := range n.Arguments {
			if err := p.walkExpr(a, decls); err != nil {
				return err
			}
		}
		return nil
	case *ast.NewExpression:
		if err := p.walkExpr(n.Callee, decls); err != nil {
			return err
		}
		for _, a := range n.Arguments {
			if err := p.walkExpr(a, decls); err != nil {
				return err
			}
		}
		return nil
	case *ast.SequenceExpression:
		for _, e := range n.Expressions {
			if err := p.walkExpr(e, decls); err != nil {
				return err
			}
		}
		return nil
	case *ast.FunctionLiteral:
		n.Declarations = ast.NewDeclarationSet()
		name := n.Name
		if name == "" {
			name = "anonymous"
		}
		n.Label = "." + name + "_" + p.gen.Get()
		p.blocks = append(p.blocks, &Block{
			Label:        n.Label,
			Declarations: n.Declarations,
			Params:       n.Params,
			Body:         n.Body,
			Name:         n.Name,
		})
		return p.walkStatements(n.Body.Statements, n.Declarations)
	default:
		return fmt.Errorf("hoist: unrecognized expression node: %T", n)
	}
}
