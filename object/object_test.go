package object

import "testing"

func TestObjectSetGetPreservesInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("b", &Number{Value: 2})
	o.Set("a", &Number{Value: 1})
	o.Set("b", &Number{Value: 20}) // re-set must not move "b" in key order

	got := o.Keys()
	want := []string{"b", "a"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}

	v, ok := o.Get("b")
	if !ok {
		t.Fatal("Get(\"b\"): not found")
	}
	if n, ok := v.(*Number); !ok || n.Value != 20 {
		t.Fatalf("Get(\"b\") = %v, want Number{20}", v)
	}
}

func TestObjectDelete(t *testing.T) {
	o := NewObject()
	o.Set("x", &Undefined{})

	if !o.Delete("x") {
		t.Fatal("Delete(\"x\"): expected true")
	}
	if o.Delete("x") {
		t.Fatal("Delete(\"x\") again: expected false")
	}
	if _, ok := o.Get("x"); ok {
		t.Fatal("Get(\"x\") after Delete: expected not found")
	}
	if len(o.Keys()) != 0 {
		t.Fatalf("Keys() after Delete: got %v, want empty", o.Keys())
	}
}

func TestObjectInspect(t *testing.T) {
	o := NewObject()
	o.Set("k", &String{Value: "v"})
	got := o.Inspect()
	want := `{k: v}`
	if got != want {
		t.Fatalf("Inspect() = %q, want %q", got, want)
	}
}

func TestArrayInspectRendersElidedSlotsAsUndefined(t *testing.T) {
	a := &Array{Elements: []Value{&Number{Value: 1}, nil, &Number{Value: 3}}}
	got := a.Inspect()
	want := "[1, undefined, 3]"
	if got != want {
		t.Fatalf("Inspect() = %q, want %q", got, want)
	}
}

func TestFunctionInspectAnonymous(t *testing.T) {
	f := &Function{Arity: 2}
	got := f.Inspect()
	want := "function anonymous/2"
	if got != want {
		t.Fatalf("Inspect() = %q, want %q", got, want)
	}
}

func TestValueTypes(t *testing.T) {
	tests := []struct {
		v    Value
		want Type
	}{
		{&Undefined{}, UndefinedType},
		{&Null{}, NullType},
		{&Boolean{Value: true}, BooleanType},
		{&Number{Value: 1}, NumberType},
		{&String{Value: "s"}, StringType},
		{NewObject(), ObjectType},
		{&Array{}, ArrayType},
		{&Function{}, FunctionType},
		{&HostFunction{}, HostType},
	}
	for _, tt := range tests {
		if got := tt.v.Type(); got != tt.want {
			t.Errorf("%T.Type() = %q, want %q", tt.v, got, tt.want)
		}
	}
}
