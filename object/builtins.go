package object

import "fmt"

// Builtins is the ambient host environment a NewGlobalEnvironment falls
// back to on miss: the concrete stand-in for the "host-language
// built-ins/global environment (provided by the embedder)" the
// specification places out of its own scope but which run(source) needs
// in order to do anything useful. Adapted from the teacher's len/first/
// rest/last/push/puts builtin table to this module's Value variants.
func Builtins() map[string]Value {
	b := map[string]Value{
		"len":   &HostFunction{Name: "len", Fn: builtinLen},
		"first": &HostFunction{Name: "first", Fn: builtinFirst},
		"rest":  &HostFunction{Name: "rest", Fn: builtinRest},
		"last":  &HostFunction{Name: "last", Fn: builtinLast},
		"push":  &HostFunction{Name: "push", Fn: builtinPush},
		"puts":  &HostFunction{Name: "puts", Fn: builtinPuts},
	}
	return b
}

func builtinLen(_ Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len: wrong number of arguments, got=%d want=1", len(args))
	}
	switch arg := args[0].(type) {
	case *String:
		return &Number{Value: float64(len(arg.Value))}, nil
	case *Array:
		return &Number{Value: float64(len(arg.Elements))}, nil
	default:
		return nil, fmt.Errorf("len: argument not supported, got %s", args[0].Type())
	}
}

func builtinFirst(_ Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("first: wrong number of arguments, got=%d want=1", len(args))
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return nil, fmt.Errorf("first: argument not supported, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return &Undefined{}, nil
	}
	return arr.Elements[0], nil
}

func builtinRest(_ Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("rest: wrong number of arguments, got=%d want=1", len(args))
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return nil, fmt.Errorf("rest: argument not supported, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return &Undefined{}, nil
	}
	rest := make([]Value, len(arr.Elements)-1)
	copy(rest, arr.Elements[1:])
	return &Array{Elements: rest}, nil
}

func builtinLast(_ Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("last: wrong number of arguments, got=%d want=1", len(args))
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return nil, fmt.Errorf("last: argument not supported, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return &Undefined{}, nil
	}
	return arr.Elements[len(arr.Elements)-1], nil
}

func builtinPush(_ Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("push: wrong number of arguments, got=%d want=2", len(args))
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return nil, fmt.Errorf("push: argument not supported, got %s", args[0].Type())
	}
	newElements := make([]Value, len(arr.Elements)+1)
	copy(newElements, arr.Elements)
	newElements[len(arr.Elements)] = args[1]
	return &Array{Elements: newElements}, nil
}

func builtinPuts(_ Value, args []Value) (Value, error) {
	for _, arg := range args {
		fmt.Println(arg.Inspect())
	}
	return &Undefined{}, nil
}
