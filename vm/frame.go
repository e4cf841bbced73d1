package vm

import "github.com/clscript/clscript/object"

// Frame is the ephemeral execution context the VM dispatch loop runs:
// a scope, a read-only reference to the shared code buffer, a program
// counter, and its own operand stack. A fresh Frame is spawned on script
// start and on every function invocation; it is discarded on RET.
type Frame struct {
	scope *object.Environment
	pc    int
	stack []object.Value
}

// NewFrame returns a Frame starting execution at pc with the given scope
// and initial operand stack contents.
func NewFrame(scope *object.Environment, pc int, initial []object.Value) *Frame {
	stack := make([]object.Value, len(initial))
	copy(stack, initial)
	return &Frame{scope: scope, pc: pc, stack: stack}
}

func (f *Frame) push(v object.Value) {
	f.stack = append(f.stack, v)
}

func (f *Frame) pop() (object.Value, error) {
	if len(f.stack) == 0 {
		return nil, errStackUnderflow
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v, nil
}

func (f *Frame) top() (object.Value, error) {
	if len(f.stack) == 0 {
		return nil, errStackUnderflow
	}
	return f.stack[len(f.stack)-1], nil
}
