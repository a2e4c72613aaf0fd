package value

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Value is a sealed interface over the representable payload types.
// Only Null, Bool, Int, Float, String, Array, and Object implement it.
// Anything a caller wants to place in the context store must convert to a
// Value first; FromGo is the only conversion path.
type Value interface {
	value() // Sealed - only these types implement it

	// TypeName returns the variant name used in audit entries
	// ("null", "bool", "int", "float", "string", "array", "object").
	TypeName() string
}

// Null represents an explicit null value.
type Null struct{}

func (Null) value()           {}
func (Null) TypeName() string { return "null" }

// Bool represents a boolean value.
type Bool bool

func (Bool) value()           {}
func (Bool) TypeName() string { return "bool" }

// Int represents an integer value. Always int64.
type Int int64

func (Int) value()           {}
func (Int) TypeName() string { return "int" }

// Float represents a floating-point value.
type Float float64

func (Float) value()           {}
func (Float) TypeName() string { return "float" }

// String represents a string value.
type String string

func (String) value()           {}
func (String) TypeName() string { return "string" }

// Array represents an ordered list of Values.
type Array []Value

func (Array) value()           {}
func (Array) TypeName() string { return "array" }

// Object represents a map of string keys to Values.
// Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) value()           {}
func (Object) TypeName() string { return "object" }

// SortedKeys returns the object's keys in ascending byte order.
// Serialization always iterates in this order so equal objects produce
// byte-identical output.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FromGo converts an arbitrary Go value into a Value.
// Returns an error for anything outside the representable set; callers map
// that error onto their rejection path. The conversion is total over nil,
// bool, all integer widths, float32/64, string, []any, map[string]any, and
// existing Value types (which pass through unchanged).
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("uint64 value out of int64 range: %d", val)
		}
		return Int(val), nil
	case float32:
		return FromGo(float64(val))
	case float64:
		// NaN and Inf have no JSON representation, so they are not
		// representable payloads either.
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("float value %v has no JSON representation", val)
		}
		return Float(val), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case []string:
		arr := make(Array, len(val))
		for i, s := range val {
			arr[i] = String(s)
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = conv
		}
		return obj, nil
	case map[string]Value:
		return Object(val), nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// MustFromGo converts a Go value or panics. Test and fixture construction only.
func MustFromGo(v any) Value {
	conv, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return conv
}

// Clone returns an independent deep copy of v. Mutating the copy is never
// observable through the original.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case Object:
		out := make(Object, len(val))
		for k, elem := range val {
			out[k] = Clone(elem)
		}
		return out
	default:
		// Null, Bool, Int, Float, String are immutable by construction.
		return v
	}
}

// CloneMap deep-copies a key/value mapping.
func CloneMap(m map[string]Value) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// Equal reports whether two Values are structurally equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, elem := range av {
			other, present := bv[k]
			if !present || !Equal(elem, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// GoString renders a Value for human-readable CLI output.
// Strings are returned bare (no quotes); composites render as compact JSON.
func GoString(v Value) string {
	switch val := v.(type) {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(bool(val))
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case String:
		return string(val)
	default:
		data, err := Marshal(v)
		if err != nil {
			return fmt.Sprintf("<unprintable: %v>", err)
		}
		return string(data)
	}
}
