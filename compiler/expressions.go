package compiler

import (
	"fmt"

	"github.com/clscript/clscript/ast"
	"github.com/clscript/clscript/code"
)

// lowerExpr lowers expr, leaving exactly one value on the operand stack.
func (c *Compiler) lowerExpr(expr ast.Expression) error {
	switch n := expr.(type) {
	case *ast.Identifier:
		c.buf.String(n.Name)
		c.buf.Op(code.Load)
		return nil

	case *ast.UndefinedLiteral:
		c.buf.Op(code.Undef)
		return nil

	case *ast.ThisExpression:
		c.buf.String("this")
		c.buf.Op(code.Load)
		return nil

	case *ast.Literal:
		return c.lowerLiteral(n)

	case *ast.ArrayExpression:
		return c.lowerArrayLiteral(n.Elements)

	case *ast.ObjectExpression:
		return c.lowerObjectLiteral(n)

	case *ast.UnaryExpression:
		return c.lowerUnary(n)

	case *ast.UpdateExpression:
		return c.lowerUpdate(n)

	case *ast.BinaryExpression:
		return c.lowerBinary(n)

	case *ast.LogicalExpression:
		return c.lowerLogical(n)

	case *ast.ConditionalExpression:
		return c.lowerConditional(n)

	case *ast.AssignmentExpression:
		return c.lowerAssignment(n)

	case *ast.MemberExpression:
		if err := c.lowerMemberTarget(n); err != nil {
			return err
		}
		c.buf.Op(code.Get)
		return nil

	case *ast.CallExpression:
		return c.lowerCall(n)

	case *ast.NewExpression:
		return c.lowerNew(n)

	case *ast.SequenceExpression:
		return c.lowerSequence(n)

	case *ast.FunctionLiteral:
		if n.Name != "" {
			c.buf.String(n.Name)
		} else {
			c.buf.Op(code.Null)
		}
		c.buf.Number(float64(len(n.Params)))
		c.buf.Reference(n.Label)
		c.buf.Op(code.Func)
		return nil

	default:
		return fmt.Errorf("compiler: unrecognized expression node: %T", n)
	}
}

func (c *Compiler) lowerLiteral(n *ast.Literal) error {
	switch v := n.Value.(type) {
	case nil:
		c.buf.Op(code.Null)
	case float64:
		c.buf.Number(v)
	case string:
		c.buf.String(v)
	case bool:
		if v {
			c.buf.Op(code.True)
		} else {
			c.buf.Op(code.False)
		}
	default:
		return fmt.Errorf("compiler: unrecognized literal value type %T", v)
	}
	return nil
}

// lowerArrayLiteral lowers elements as an array literal: ARR; then for
// each element, write it into the fresh array at its index. A nil element
// denotes an elided slot and lowers as NULL.
func (c *Compiler) lowerArrayLiteral(elements []ast.Expression) error {
	c.buf.Op(code.Arr)
	for i, el := range elements {
		c.buf.Op(code.Top)
		c.buf.Number(float64(i))
		if el == nil {
			c.buf.Op(code.Null)
		} else if err := c.lowerExpr(el); err != nil {
			return err
		}
		c.buf.Op(code.Set)
		c.buf.Op(code.Pop)
	}
	return nil
}

func (c *Compiler) lowerObjectLiteral(n *ast.ObjectExpression) error {
	c.buf.Op(code.Obj)
	for _, prop := range n.Properties {
		c.buf.Op(code.Top)
		if prop.Computed {
			keyExpr, ok := prop.Key.(ast.Expression)
			if !ok {
				return fmt.Errorf("compiler: computed object key is not an expression: %T", prop.Key)
			}
			if err := c.lowerExpr(keyExpr); err != nil {
				return err
			}
		} else {
			id, ok := prop.Key.(*ast.Identifier)
			if !ok {
				return fmt.Errorf("compiler: non-computed object key is not an identifier: %T", prop.Key)
			}
			c.buf.String(id.Name)
		}
		if err := c.lowerExpr(prop.Value); err != nil {
			return err
		}
		c.buf.Op(code.Set)
		c.buf.Op(code.Pop)
	}
	return nil
}

func (c *Compiler) lowerUnary(n *ast.UnaryExpression) error {
	switch n.Operator {
	case "+":
		c.buf.Number(0)
		if err := c.lowerExpr(n.Argument); err != nil {
			return err
		}
		c.buf.Op(code.Add)
	case "-":
		c.buf.Number(0)
		if err := c.lowerExpr(n.Argument); err != nil {
			return err
		}
		c.buf.Op(code.Sub)
	case "!":
		if err := c.lowerExpr(n.Argument); err != nil {
			return err
		}
		c.buf.Op(code.Not)
	case "~":
		if err := c.lowerExpr(n.Argument); err != nil {
			return err
		}
		c.buf.Op(code.Bnot)
	case "typeof":
		if err := c.lowerExpr(n.Argument); err != nil {
			return err
		}
		c.buf.Op(code.Typeof)
	case "void":
		if err := c.lowerExpr(n.Argument); err != nil {
			return err
		}
		c.buf.Op(code.Pop)
		c.buf.Op(code.Undef)
	case "delete":
		if member, ok := n.Argument.(*ast.MemberExpression); ok {
			if err := c.lowerMemberTarget(member); err != nil {
				return err
			}
			c.buf.Op(code.Delete)
			break
		}
		c.buf.Op(code.True)
	default:
		return fmt.Errorf("compiler: unrecognized unary operator %q", n.Operator)
	}
	return nil
}

// lowerMemberTarget lowers a member expression's object and key, leaving
// [object, key] on the operand stack without issuing the final GET/SET.
func (c *Compiler) lowerMemberTarget(me *ast.MemberExpression) error {
	if err := c.lowerExpr(me.Object); err != nil {
		return err
	}
	if me.Computed {
		return c.lowerExpr(me.Property)
	}
	id, ok := me.Property.(*ast.Identifier)
	if !ok {
		return fmt.Errorf("compiler: non-computed member property is not an identifier: %T", me.Property)
	}
	c.buf.String(id.Name)
	return nil
}

// lowerUpdate lowers ++/-- on an identifier or member expression. Both
// forms compute the post-update value first; a postfix update then undoes
// the delta to recover the pre-update value, per the specification's
// adjust-the-final-result strategy.
func (c *Compiler) lowerUpdate(n *ast.UpdateExpression) error {
	apply, undo := code.Add, code.Sub
	if n.Operator == "--" {
		apply, undo = code.Sub, code.Add
	}

	switch target := n.Argument.(type) {
	case *ast.Identifier:
		c.buf.String(target.Name)
		c.buf.Op(code.Load)
		c.buf.Number(1)
		c.buf.Op(apply)
		c.buf.String(target.Name)
		c.buf.Op(code.Out)
	case *ast.MemberExpression:
		if err := c.lowerMemberTarget(target); err != nil {
			return err
		}
		c.buf.Op(code.Top2)
		c.buf.Op(code.Get)
		c.buf.Number(1)
		c.buf.Op(apply)
		c.buf.Op(code.Set)
	default:
		return fmt.Errorf("compiler: invalid update target %T", target)
	}

	if !n.Prefix {
		c.buf.Number(1)
		c.buf.Op(undo)
	}
	return nil
}

var binaryOpcodes = map[string]code.Opcode{
	"+": code.Add, "-": code.Sub, "*": code.Mul, "**": code.Exp,
	"/": code.Div, "%": code.Mod,
	"==": code.Eq, "!=": code.Neq, "===": code.Seq, "!==": code.Sneq,
	"<": code.Lt, "<=": code.Lte, ">": code.Gt, ">=": code.Gte,
	"&": code.Band, "|": code.Bor, "^": code.Bxor,
	"<<": code.Lshift, ">>": code.Rshift, ">>>": code.Urshift,
}

func (c *Compiler) lowerBinary(n *ast.BinaryExpression) error {
	if err := c.lowerExpr(n.Left); err != nil {
		return err
	}
	if err := c.lowerExpr(n.Right); err != nil {
		return err
	}
	op, ok := binaryOpcodes[n.Operator]
	if !ok {
		return fmt.Errorf("compiler: unrecognized binary operator %q", n.Operator)
	}
	c.buf.Op(op)
	return nil
}

// lowerLogical lowers && / || with the observable short-circuit the
// specification requires: the unevaluated side is never lowered, so it
// can have no side effect.
func (c *Compiler) lowerLogical(n *ast.LogicalExpression) error {
	if err := c.lowerExpr(n.Left); err != nil {
		return err
	}
	end := c.gen.Get()
	c.buf.Op(code.Top)
	c.buf.Reference(end)
	if n.Operator == "&&" {
		c.buf.Op(code.JumpNot)
	} else {
		c.buf.Op(code.JumpIf)
	}
	c.buf.Op(code.Pop)
	if err := c.lowerExpr(n.Right); err != nil {
		return err
	}
	c.buf.Label(end)
	return nil
}

func (c *Compiler) lowerConditional(n *ast.ConditionalExpression) error {
	if err := c.lowerExpr(n.Test); err != nil {
		return err
	}
	alt := c.gen.Get()
	end := c.gen.Get()
	c.buf.Reference(alt)
	c.buf.Op(code.JumpNot)
	if err := c.lowerExpr(n.Consequent); err != nil {
		return err
	}
	c.buf.Reference(end)
	c.buf.Op(code.Jump)
	c.buf.Label(alt)
	if err := c.lowerExpr(n.Alternative); err != nil {
		return err
	}
	c.buf.Label(end)
	return nil
}

func (c *Compiler) lowerAssignment(n *ast.AssignmentExpression) error {
	compound := n.Operator != "="
	var op code.Opcode
	if compound {
		var ok bool
		op, ok = binaryOpcodes[n.Operator[:len(n.Operator)-1]]
		if !ok {
			return fmt.Errorf("compiler: unrecognized compound assignment operator %q", n.Operator)
		}
	}

	switch left := n.Left.(type) {
	case *ast.Identifier:
		if compound {
			c.buf.String(left.Name)
			c.buf.Op(code.Load)
		}
		if err := c.lowerExpr(n.Right); err != nil {
			return err
		}
		if compound {
			c.buf.Op(op)
		}
		c.buf.String(left.Name)
		c.buf.Op(code.Out)
		return nil

	case *ast.MemberExpression:
		if err := c.lowerMemberTarget(left); err != nil {
			return err
		}
		if compound {
			c.buf.Op(code.Top2)
			c.buf.Op(code.Get)
		}
		if err := c.lowerExpr(n.Right); err != nil {
			return err
		}
		if compound {
			c.buf.Op(op)
		}
		c.buf.Op(code.Set)
		return nil

	default:
		return fmt.Errorf("compiler: invalid assignment target %T", left)
	}
}

func (c *Compiler) lowerCall(n *ast.CallExpression) error {
	if member, ok := n.Callee.(*ast.MemberExpression); ok {
		if err := c.lowerExpr(member.Object); err != nil {
			return err
		}
		c.buf.Op(code.Top)
		if member.Computed {
			if err := c.lowerExpr(member.Property); err != nil {
				return err
			}
		} else {
			id, ok := member.Property.(*ast.Identifier)
			if !ok {
				return fmt.Errorf("compiler: non-computed member property is not an identifier: %T", member.Property)
			}
			c.buf.String(id.Name)
		}
		c.buf.Op(code.Get)
	} else {
		c.buf.Op(code.Null)
		if err := c.lowerExpr(n.Callee); err != nil {
			return err
		}
	}
	if err := c.lowerArrayLiteral(n.Arguments); err != nil {
		return err
	}
	c.buf.Op(code.Call)
	return nil
}

func (c *Compiler) lowerNew(n *ast.NewExpression) error {
	if err := c.lowerExpr(n.Callee); err != nil {
		return err
	}
	if err := c.lowerArrayLiteral(n.Arguments); err != nil {
		return err
	}
	c.buf.Op(code.New)
	return nil
}

func (c *Compiler) lowerSequence(n *ast.SequenceExpression) error {
	for i, e := range n.Expressions {
		if err := c.lowerExpr(e); err != nil {
			return err
		}
		if i < len(n.Expressions)-1 {
			c.buf.Op(code.Pop)
		}
	}
	return nil
}
