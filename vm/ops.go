package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/clscript/clscript/code"
	"github.com/clscript/clscript/object"
)

// truthy implements the specification's truthiness rule: false, 0, "",
// null, undefined, and NaN are falsy; everything else is truthy.
func truthy(v object.Value) bool {
	switch x := v.(type) {
	case *object.Undefined, *object.Null, nil:
		return false
	case *object.Boolean:
		return x.Value
	case *object.Number:
		return x.Value != 0 && !math.IsNaN(x.Value)
	case *object.String:
		return x.Value != ""
	default:
		return true
	}
}

// toNumber applies the dynamic-scripting ToNumber coercion: booleans
// become 1/0, null becomes 0, undefined and unparsable strings become
// NaN, numbers pass through unchanged.
func toNumber(v object.Value) float64 {
	switch x := v.(type) {
	case *object.Number:
		return x.Value
	case *object.Boolean:
		if x.Value {
			return 1
		}
		return 0
	case *object.Null, nil:
		return 0
	case *object.String:
		s := strings.TrimSpace(x.Value)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func toInt32(v object.Value) int32 {
	n := toNumber(v)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int32(uint32(int64(n)))
}

func toUint32(v object.Value) uint32 {
	n := toNumber(v)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return uint32(int64(n))
}

// toString applies the ToString coercion used for string concatenation
// and property-key normalization.
func toString(v object.Value) string {
	switch x := v.(type) {
	case *object.String:
		return x.Value
	case *object.Number:
		return strconv.FormatFloat(x.Value, 'g', -1, 64)
	case *object.Boolean:
		return strconv.FormatBool(x.Value)
	case *object.Null, nil:
		return "null"
	case *object.Undefined:
		return "undefined"
	default:
		return x.Inspect()
	}
}

func typeOf(v object.Value) string {
	switch v.(type) {
	case *object.Undefined, nil:
		return "undefined"
	case *object.Null:
		return "object"
	case *object.Boolean:
		return "boolean"
	case *object.Number:
		return "number"
	case *object.String:
		return "string"
	case *object.Function, *object.HostFunction:
		return "function"
	default:
		return "object"
	}
}

func isString(v object.Value) bool {
	_, ok := v.(*object.String)
	return ok
}

// arithOp evaluates one of ADD/SUB/MUL/EXP/DIV/MOD. ADD concatenates if
// either operand is a string, per the specification's "+" coercion rule;
// every other arithmetic opcode coerces both operands to number.
func arithOp(op code.Opcode, left, right object.Value) (object.Value, error) {
	if op == code.Add && (isString(left) || isString(right)) {
		return &object.String{Value: toString(left) + toString(right)}, nil
	}
	l, r := toNumber(left), toNumber(right)
	switch op {
	case code.Add:
		return &object.Number{Value: l + r}, nil
	case code.Sub:
		return &object.Number{Value: l - r}, nil
	case code.Mul:
		return &object.Number{Value: l * r}, nil
	case code.Exp:
		return &object.Number{Value: math.Pow(l, r)}, nil
	case code.Div:
		return &object.Number{Value: l / r}, nil
	case code.Mod:
		return &object.Number{Value: math.Mod(l, r)}, nil
	default:
		return nil, fmt.Errorf("vm: not an arithmetic opcode: %v", op)
	}
}

// compareOp evaluates EQ/NEQ/SEQ/SNEQ/LT/LTE/GT/GTE. ==/!= coerce;
// ===/!== do not; ordering comparisons follow mixed number/string rules:
// lexical when both sides are strings, numeric otherwise.
func compareOp(op code.Opcode, left, right object.Value) (bool, error) {
	switch op {
	case code.Eq:
		return looseEquals(left, right), nil
	case code.Neq:
		return !looseEquals(left, right), nil
	case code.Seq:
		return strictEquals(left, right), nil
	case code.Sneq:
		return !strictEquals(left, right), nil
	case code.Lt, code.Lte, code.Gt, code.Gte:
		if isString(left) && isString(right) {
			l, r := left.(*object.String).Value, right.(*object.String).Value
			switch op {
			case code.Lt:
				return l < r, nil
			case code.Lte:
				return l <= r, nil
			case code.Gt:
				return l > r, nil
			default:
				return l >= r, nil
			}
		}
		l, r := toNumber(left), toNumber(right)
		switch op {
		case code.Lt:
			return l < r, nil
		case code.Lte:
			return l <= r, nil
		case code.Gt:
			return l > r, nil
		default:
			return l >= r, nil
		}
	default:
		return false, fmt.Errorf("vm: not a comparison opcode: %v", op)
	}
}

func strictEquals(left, right object.Value) bool {
	if left == nil || right == nil {
		return left == right
	}
	if left.Type() != right.Type() {
		return false
	}
	switch l := left.(type) {
	case *object.Undefined:
		return true
	case *object.Null:
		return true
	case *object.Boolean:
		return l.Value == right.(*object.Boolean).Value
	case *object.Number:
		return l.Value == right.(*object.Number).Value
	case *object.String:
		return l.Value == right.(*object.String).Value
	default:
		return left == right
	}
}

func looseEquals(left, right object.Value) bool {
	if left.Type() == right.Type() {
		return strictEquals(left, right)
	}
	_, leftNullish := left.(*object.Undefined)
	_, leftNull := left.(*object.Null)
	_, rightNullish := right.(*object.Undefined)
	_, rightNull := right.(*object.Null)
	if (leftNullish || leftNull) && (rightNullish || rightNull) {
		return true
	}
	if leftNullish || leftNull || rightNullish || rightNull {
		return false
	}
	return toNumber(left) == toNumber(right)
}

// bitwiseOp evaluates BOR/BXOR/BAND/LSHIFT/RSHIFT/URSHIFT, coercing both
// operands to 32-bit integers first. URSHIFT treats the left operand as
// unsigned, per the specification.
func bitwiseOp(op code.Opcode, left, right object.Value) object.Value {
	switch op {
	case code.Bor:
		return &object.Number{Value: float64(toInt32(left) | toInt32(right))}
	case code.Bxor:
		return &object.Number{Value: float64(toInt32(left) ^ toInt32(right))}
	case code.Band:
		return &object.Number{Value: float64(toInt32(left) & toInt32(right))}
	case code.Lshift:
		return &object.Number{Value: float64(toInt32(left) << (toUint32(right) & 31))}
	case code.Rshift:
		return &object.Number{Value: float64(toInt32(left) >> (toUint32(right) & 31))}
	case code.Urshift:
		return &object.Number{Value: float64(toUint32(left) >> (toUint32(right) & 31))}
	default:
		return &object.Undefined{}
	}
}

// getProperty implements GET over objects (string-keyed), arrays
// (numeric index, plus a "length" accessor), and strings (numeric index,
// plus a "length" accessor).
func getProperty(obj, key object.Value) (object.Value, error) {
	switch o := obj.(type) {
	case *object.Object:
		v, ok := o.Get(toString(key))
		if !ok {
			return &object.Undefined{}, nil
		}
		return v, nil
	case *object.Array:
		if toString(key) == "length" {
			return &object.Number{Value: float64(len(o.Elements))}, nil
		}
		idx := int(toNumber(key))
		if idx < 0 || idx >= len(o.Elements) {
			return &object.Undefined{}, nil
		}
		if o.Elements[idx] == nil {
			return &object.Undefined{}, nil
		}
		return o.Elements[idx], nil
	case *object.String:
		if toString(key) == "length" {
			return &object.Number{Value: float64(len([]rune(o.Value)))}, nil
		}
		runes := []rune(o.Value)
		idx := int(toNumber(key))
		if idx < 0 || idx >= len(runes) {
			return &object.Undefined{}, nil
		}
		return &object.String{Value: string(runes[idx])}, nil
	case *object.Undefined, *object.Null, nil:
		return nil, fmt.Errorf("vm: cannot read property %q of %s", toString(key), typeOf(obj))
	default:
		return &object.Undefined{}, nil
	}
}

// setProperty implements SET over objects and arrays. Arrays grow to
// accommodate an out-of-range numeric index, filling the skipped slots
// with undefined (an elided slot in an array literal holds null instead).
func setProperty(obj, key, value object.Value) error {
	switch o := obj.(type) {
	case *object.Object:
		o.Set(toString(key), value)
		return nil
	case *object.Array:
		idx := int(toNumber(key))
		if idx < 0 {
			return fmt.Errorf("vm: negative array index %d", idx)
		}
		for len(o.Elements) <= idx {
			o.Elements = append(o.Elements, &object.Undefined{})
		}
		o.Elements[idx] = value
		return nil
	default:
		return fmt.Errorf("vm: cannot set property %q on %s", toString(key), typeOf(obj))
	}
}

func hasProperty(obj, key object.Value) bool {
	switch o := obj.(type) {
	case *object.Object:
		_, ok := o.Get(toString(key))
		return ok
	case *object.Array:
		if toString(key) == "length" {
			return true
		}
		idx := int(toNumber(key))
		return idx >= 0 && idx < len(o.Elements)
	default:
		return false
	}
}

func deleteProperty(obj, key object.Value) bool {
	o, ok := obj.(*object.Object)
	if !ok {
		return false
	}
	return o.Delete(toString(key))
}

// instanceOf backs INSOF. No prototype chain exists in this value model
// and the grammar has no instanceof operator to emit it, so this always
// reports false; the opcode is implemented only for table completeness.
func instanceOf(_, _ object.Value) bool {
	return false
}
