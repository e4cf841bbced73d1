package object

import "testing"

func TestEnvironmentDeclareLoad(t *testing.T) {
	env := NewEnvironment(nil)
	env.Declare("x")

	v, err := env.Load("x")
	if err != nil {
		t.Fatalf("Load(\"x\"): unexpected error: %s", err)
	}
	if _, ok := v.(*Undefined); !ok {
		t.Fatalf("Load(\"x\") = %v, want Undefined", v)
	}
}

func TestEnvironmentDeclareIsIdempotent(t *testing.T) {
	env := NewEnvironment(nil)
	env.Declare("x")
	if err := env.Out("x", &Number{Value: 5}); err != nil {
		t.Fatalf("Out: unexpected error: %s", err)
	}

	env.Declare("x") // must not reset x back to undefined

	v, _ := env.Load("x")
	if n, ok := v.(*Number); !ok || n.Value != 5 {
		t.Fatalf("Load(\"x\") after re-Declare = %v, want Number{5}", v)
	}
}

func TestEnvironmentChildResolvesThroughParent(t *testing.T) {
	parent := NewEnvironment(nil)
	parent.Declare("x")
	_ = parent.Out("x", &Number{Value: 1})

	child := NewEnvironment(parent)
	v, err := child.Load("x")
	if err != nil {
		t.Fatalf("Load(\"x\"): unexpected error: %s", err)
	}
	if n, ok := v.(*Number); !ok || n.Value != 1 {
		t.Fatalf("Load(\"x\") = %v, want Number{1}", v)
	}
}

func TestEnvironmentUnresolvedLoadErrors(t *testing.T) {
	env := NewEnvironment(nil)
	if _, err := env.Load("missing"); err == nil {
		t.Fatal("Load(\"missing\"): expected error, got nil")
	}
}

func TestGlobalEnvironmentFallsBackToAmbient(t *testing.T) {
	ambient := map[string]Value{"puts": &HostFunction{Name: "puts"}}
	env := NewGlobalEnvironment(ambient)

	v, err := env.Load("puts")
	if err != nil {
		t.Fatalf("Load(\"puts\"): unexpected error: %s", err)
	}
	if hf, ok := v.(*HostFunction); !ok || hf.Name != "puts" {
		t.Fatalf("Load(\"puts\") = %v, want the ambient host function", v)
	}
}

func TestGlobalEnvironmentOutCreatesImplicitGlobal(t *testing.T) {
	env := NewGlobalEnvironment(map[string]Value{})

	if err := env.Out("newGlobal", &Number{Value: 42}); err != nil {
		t.Fatalf("Out: unexpected error: %s", err)
	}

	v, err := env.Load("newGlobal")
	if err != nil {
		t.Fatalf("Load(\"newGlobal\"): unexpected error: %s", err)
	}
	if n, ok := v.(*Number); !ok || n.Value != 42 {
		t.Fatalf("Load(\"newGlobal\") = %v, want Number{42}", v)
	}
}

func TestEnvironmentOutUnresolvedNonGlobalErrors(t *testing.T) {
	env := NewEnvironment(nil)
	if err := env.Out("missing", &Number{Value: 1}); err == nil {
		t.Fatal("Out(\"missing\"): expected error on a non-global environment, got nil")
	}
}
