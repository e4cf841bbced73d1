// Package vm implements the stack virtual machine: a single-threaded,
// recursive-by-call interpreter over the bytecode assembled by package
// asm. A fresh Frame is spawned on script start and on every function
// invocation; RET terminates the current frame and yields its top-of-
// stack value to the caller.
package vm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf16"

	"github.com/clscript/clscript/code"
	"github.com/clscript/clscript/object"
)

var errStackUnderflow = errors.New("vm: operand stack underflow")

// VM executes one assembled bytecode sequence. The sequence is immutable
// once assembled and is shared, read-only, across every frame a run spawns
// (including frames spawned by recursive calls).
type VM struct {
	code code.Instructions
}

// New returns a VM over the given assembled bytecode.
func New(instrs code.Instructions) *VM {
	return &VM{code: instrs}
}

// Run starts a fresh frame at pc with scope and an empty operand stack,
// and runs it to completion, returning the value yielded by RET.
func (vm *VM) Run(scope *object.Environment, pc uint32) (object.Value, error) {
	return vm.runFrame(NewFrame(scope, int(pc), nil))
}

func (vm *VM) runFrame(f *Frame) (object.Value, error) {
	for {
		if f.pc >= len(vm.code) {
			return nil, fmt.Errorf("vm: program counter ran off the end of the code buffer")
		}
		op := code.Opcode(vm.code[f.pc])
		f.pc++

		switch op {
		case code.Nop:
			// no-op

		case code.Undef:
			f.push(&object.Undefined{})
		case code.Null:
			f.push(&object.Null{})
		case code.Obj:
			f.push(object.NewObject())
		case code.Arr:
			f.push(&object.Array{})
		case code.True:
			f.push(&object.Boolean{Value: true})
		case code.False:
			f.push(&object.Boolean{Value: false})

		case code.Num:
			if f.pc+8 > len(vm.code) {
				return nil, fmt.Errorf("vm: truncated NUM operand")
			}
			bits := binary.BigEndian.Uint64(vm.code[f.pc : f.pc+8])
			f.pc += 8
			f.push(&object.Number{Value: math.Float64frombits(bits)})

		case code.Addr:
			if f.pc+4 > len(vm.code) {
				return nil, fmt.Errorf("vm: truncated ADDR operand")
			}
			addr := binary.BigEndian.Uint32(vm.code[f.pc : f.pc+4])
			f.pc += 4
			f.push(&object.Number{Value: float64(addr)})

		case code.Str:
			s, n, err := vm.readString(f.pc)
			if err != nil {
				return nil, err
			}
			f.pc += n
			f.push(&object.String{Value: s})

		case code.Pop:
			if _, err := f.pop(); err != nil {
				return nil, err
			}

		case code.Top:
			v, err := f.top()
			if err != nil {
				return nil, err
			}
			f.push(v)

		case code.Top2:
			if len(f.stack) < 2 {
				return nil, errStackUnderflow
			}
			a, b := f.stack[len(f.stack)-2], f.stack[len(f.stack)-1]
			f.push(a)
			f.push(b)

		case code.Var:
			name, err := popString(f)
			if err != nil {
				return nil, err
			}
			f.scope.Declare(name)

		case code.Load:
			name, err := popString(f)
			if err != nil {
				return nil, err
			}
			v, err := f.scope.Load(name)
			if err != nil {
				return nil, err
			}
			f.push(v)

		case code.Out:
			name, err := popString(f)
			if err != nil {
				return nil, err
			}
			value, err := f.pop()
			if err != nil {
				return nil, err
			}
			if err := f.scope.Out(name, value); err != nil {
				return nil, err
			}
			f.push(value)

		case code.Jump:
			addr, err := popAddr(f)
			if err != nil {
				return nil, err
			}
			f.pc = addr

		case code.JumpIf:
			addr, err := popAddr(f)
			if err != nil {
				return nil, err
			}
			test, err := f.pop()
			if err != nil {
				return nil, err
			}
			if truthy(test) {
				f.pc = addr
			}

		case code.JumpNot:
			addr, err := popAddr(f)
			if err != nil {
				return nil, err
			}
			test, err := f.pop()
			if err != nil {
				return nil, err
			}
			if !truthy(test) {
				f.pc = addr
			}

		case code.Func:
			addr, err := popAddr(f)
			if err != nil {
				return nil, err
			}
			arityVal, err := f.pop()
			if err != nil {
				return nil, err
			}
			nameVal, err := f.pop()
			if err != nil {
				return nil, err
			}
			name := ""
			if s, ok := nameVal.(*object.String); ok {
				name = s.Value
			}
			f.push(&object.Function{
				Name:    name,
				Arity:   int(toNumber(arityVal)),
				Address: uint32(addr),
				Scope:   f.scope,
			})

		case code.Call:
			args, err := f.pop()
			if err != nil {
				return nil, err
			}
			fn, err := f.pop()
			if err != nil {
				return nil, err
			}
			recv, err := f.pop()
			if err != nil {
				return nil, err
			}
			argv, err := toArgs(args)
			if err != nil {
				return nil, err
			}
			result, err := vm.invoke(fn, recv, argv)
			if err != nil {
				return nil, err
			}
			f.push(result)

		case code.New:
			args, err := f.pop()
			if err != nil {
				return nil, err
			}
			fn, err := f.pop()
			if err != nil {
				return nil, err
			}
			argv, err := toArgs(args)
			if err != nil {
				return nil, err
			}
			instance := object.NewObject()
			result, err := vm.invoke(fn, instance, argv)
			if err != nil {
				return nil, err
			}
			if obj, ok := result.(*object.Object); ok {
				f.push(obj)
			} else {
				f.push(instance)
			}

		case code.Ret:
			return f.pop()

		case code.Get:
			key, err := f.pop()
			if err != nil {
				return nil, err
			}
			obj, err := f.pop()
			if err != nil {
				return nil, err
			}
			v, err := getProperty(obj, key)
			if err != nil {
				return nil, err
			}
			f.push(v)

		case code.Set:
			value, err := f.pop()
			if err != nil {
				return nil, err
			}
			key, err := f.pop()
			if err != nil {
				return nil, err
			}
			obj, err := f.pop()
			if err != nil {
				return nil, err
			}
			if err := setProperty(obj, key, value); err != nil {
				return nil, err
			}
			f.push(value)

		case code.InOp:
			key, err := f.pop()
			if err != nil {
				return nil, err
			}
			obj, err := f.pop()
			if err != nil {
				return nil, err
			}
			f.push(&object.Boolean{Value: hasProperty(obj, key)})

		case code.Delete:
			key, err := f.pop()
			if err != nil {
				return nil, err
			}
			obj, err := f.pop()
			if err != nil {
				return nil, err
			}
			f.push(&object.Boolean{Value: deleteProperty(obj, key)})

		case code.Eq, code.Neq, code.Seq, code.Sneq, code.Lt, code.Lte, code.Gt, code.Gte:
			right, err := f.pop()
			if err != nil {
				return nil, err
			}
			left, err := f.pop()
			if err != nil {
				return nil, err
			}
			result, err := compareOp(op, left, right)
			if err != nil {
				return nil, err
			}
			f.push(&object.Boolean{Value: result})

		case code.Add, code.Sub, code.Mul, code.Exp, code.Div, code.Mod:
			right, err := f.pop()
			if err != nil {
				return nil, err
			}
			left, err := f.pop()
			if err != nil {
				return nil, err
			}
			result, err := arithOp(op, left, right)
			if err != nil {
				return nil, err
			}
			f.push(result)

		case code.Bnot:
			v, err := f.pop()
			if err != nil {
				return nil, err
			}
			f.push(&object.Number{Value: float64(^toInt32(v))})

		case code.Bor, code.Bxor, code.Band, code.Lshift, code.Rshift, code.Urshift:
			right, err := f.pop()
			if err != nil {
				return nil, err
			}
			left, err := f.pop()
			if err != nil {
				return nil, err
			}
			f.push(bitwiseOp(op, left, right))

		case code.Or:
			right, err := f.pop()
			if err != nil {
				return nil, err
			}
			left, err := f.pop()
			if err != nil {
				return nil, err
			}
			if truthy(left) {
				f.push(left)
			} else {
				f.push(right)
			}

		case code.And:
			right, err := f.pop()
			if err != nil {
				return nil, err
			}
			left, err := f.pop()
			if err != nil {
				return nil, err
			}
			if !truthy(left) {
				f.push(left)
			} else {
				f.push(right)
			}

		case code.Not:
			v, err := f.pop()
			if err != nil {
				return nil, err
			}
			f.push(&object.Boolean{Value: !truthy(v)})

		case code.Insof:
			right, err := f.pop()
			if err != nil {
				return nil, err
			}
			left, err := f.pop()
			if err != nil {
				return nil, err
			}
			f.push(&object.Boolean{Value: instanceOf(left, right)})

		case code.Typeof:
			v, err := f.pop()
			if err != nil {
				return nil, err
			}
			f.push(&object.String{Value: typeOf(v)})

		default:
			return nil, fmt.Errorf("vm: unknown opcode %#x", byte(op))
		}
	}
}

// invoke calls fn (a *object.Function closure or *object.HostFunction)
// with the given receiver ("this") and positional arguments.
func (vm *VM) invoke(fn object.Value, receiver object.Value, args []object.Value) (object.Value, error) {
	switch callee := fn.(type) {
	case *object.Function:
		child := object.NewEnvironment(callee.Scope)
		child.Declare("this")
		if err := child.Out("this", receiver); err != nil {
			return nil, err
		}
		if callee.Name != "" {
			child.Declare(callee.Name)
			if err := child.Out(callee.Name, callee); err != nil {
				return nil, err
			}
		}
		frame := NewFrame(child, int(callee.Address), []object.Value{&object.Array{Elements: args}})
		return vm.runFrame(frame)
	case *object.HostFunction:
		return callee.Fn(receiver, args)
	default:
		typ := "undefined"
		if fn != nil {
			typ = string(fn.Type())
		}
		return nil, fmt.Errorf("vm: value is not callable: %s", typ)
	}
}

func (vm *VM) readString(pc int) (string, int, error) {
	var units []uint16
	i := pc
	for {
		if i+2 > len(vm.code) {
			return "", 0, fmt.Errorf("vm: truncated STR operand (missing terminator)")
		}
		u := binary.BigEndian.Uint16(vm.code[i : i+2])
		i += 2
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), i - pc, nil
}

func popString(f *Frame) (string, error) {
	v, err := f.pop()
	if err != nil {
		return "", err
	}
	s, ok := v.(*object.String)
	if !ok {
		return "", fmt.Errorf("vm: expected string operand, got %s", v.Type())
	}
	return s.Value, nil
}

func popAddr(f *Frame) (int, error) {
	v, err := f.pop()
	if err != nil {
		return 0, err
	}
	return int(toNumber(v)), nil
}

func toArgs(v object.Value) ([]object.Value, error) {
	arr, ok := v.(*object.Array)
	if !ok {
		return nil, fmt.Errorf("vm: expected argument array, got %s", v.Type())
	}
	return arr.Elements, nil
}
