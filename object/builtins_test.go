package object

import "testing"

func TestBuiltinLen(t *testing.T) {
	fn := Builtins()["len"].(*HostFunction)

	v, err := fn.Fn(nil, []Value{&String{Value: "hello"}})
	if err != nil {
		t.Fatalf("len(\"hello\"): unexpected error: %s", err)
	}
	if n, ok := v.(*Number); !ok || n.Value != 5 {
		t.Fatalf("len(\"hello\") = %v, want Number{5}", v)
	}

	if _, err := fn.Fn(nil, []Value{&Number{Value: 1}}); err == nil {
		t.Fatal("len(1): expected error for unsupported argument type, got nil")
	}
	if _, err := fn.Fn(nil, nil); err == nil {
		t.Fatal("len(): expected error for wrong argument count, got nil")
	}
}

func TestBuiltinFirstLastRest(t *testing.T) {
	arr := &Array{Elements: []Value{&Number{Value: 1}, &Number{Value: 2}, &Number{Value: 3}}}
	builtins := Builtins()

	first, err := builtins["first"].(*HostFunction).Fn(nil, []Value{arr})
	if err != nil || first.(*Number).Value != 1 {
		t.Fatalf("first(arr) = %v, %v, want Number{1}, nil", first, err)
	}

	last, err := builtins["last"].(*HostFunction).Fn(nil, []Value{arr})
	if err != nil || last.(*Number).Value != 3 {
		t.Fatalf("last(arr) = %v, %v, want Number{3}, nil", last, err)
	}

	rest, err := builtins["rest"].(*HostFunction).Fn(nil, []Value{arr})
	if err != nil {
		t.Fatalf("rest(arr): unexpected error: %s", err)
	}
	restArr := rest.(*Array)
	if len(restArr.Elements) != 2 || restArr.Elements[0].(*Number).Value != 2 {
		t.Fatalf("rest(arr) = %v, want [2, 3]", rest.Inspect())
	}
}

func TestBuiltinFirstLastRestOnEmptyArray(t *testing.T) {
	empty := &Array{}
	builtins := Builtins()

	for _, name := range []string{"first", "last", "rest"} {
		v, err := builtins[name].(*HostFunction).Fn(nil, []Value{empty})
		if err != nil {
			t.Fatalf("%s([]): unexpected error: %s", name, err)
		}
		if _, ok := v.(*Undefined); !ok {
			t.Fatalf("%s([]) = %v, want Undefined", name, v)
		}
	}
}

func TestBuiltinPushDoesNotMutateOriginal(t *testing.T) {
	original := &Array{Elements: []Value{&Number{Value: 1}}}
	fn := Builtins()["push"].(*HostFunction)

	pushed, err := fn.Fn(nil, []Value{original, &Number{Value: 2}})
	if err != nil {
		t.Fatalf("push: unexpected error: %s", err)
	}
	if len(original.Elements) != 1 {
		t.Fatalf("original array mutated: %v", original.Elements)
	}
	pushedArr := pushed.(*Array)
	if len(pushedArr.Elements) != 2 || pushedArr.Elements[1].(*Number).Value != 2 {
		t.Fatalf("push result = %v, want [1, 2]", pushed.Inspect())
	}
}
