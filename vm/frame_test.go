package vm

import (
	"testing"

	"github.com/clscript/clscript/object"
)

func TestFramePushPopOrder(t *testing.T) {
	f := NewFrame(object.NewEnvironment(nil), 0, nil)
	f.push(&object.Number{Value: 1})
	f.push(&object.Number{Value: 2})

	v, err := f.pop()
	if err != nil {
		t.Fatalf("pop: unexpected error: %s", err)
	}
	if n, ok := v.(*object.Number); !ok || n.Value != 2 {
		t.Fatalf("pop() = %v, want Number{2} (LIFO order)", v)
	}
}

func TestFramePopOnEmptyStackErrors(t *testing.T) {
	f := NewFrame(object.NewEnvironment(nil), 0, nil)
	if _, err := f.pop(); err == nil {
		t.Fatal("pop on empty stack: expected error, got nil")
	}
}

func TestFrameTopDoesNotRemove(t *testing.T) {
	f := NewFrame(object.NewEnvironment(nil), 0, nil)
	f.push(&object.Number{Value: 5})

	if _, err := f.top(); err != nil {
		t.Fatalf("top: unexpected error: %s", err)
	}
	if len(f.stack) != 1 {
		t.Fatalf("top mutated the stack: len=%d, want 1", len(f.stack))
	}
}

func TestNewFrameCopiesInitialStack(t *testing.T) {
	initial := []object.Value{&object.Number{Value: 1}}
	f := NewFrame(object.NewEnvironment(nil), 7, initial)

	if f.pc != 7 {
		t.Fatalf("pc = %d, want 7", f.pc)
	}
	if len(f.stack) != 1 {
		t.Fatalf("stack length = %d, want 1", len(f.stack))
	}

	initial[0] = &object.Number{Value: 99}
	if n := f.stack[0].(*object.Number).Value; n != 1 {
		t.Fatalf("frame stack shares backing array with caller's slice: got %v, want 1", n)
	}
}
