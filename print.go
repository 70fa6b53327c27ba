package shapefix

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Print renders v the way JSON would spell it, used inside messages.
// Undefined prints as "undefined"; NaN and infinities print as "null".
func Print(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case undefined:
		return "undefined"
	case bool:
		return strconv.FormatBool(x)
	case string:
		b, err := gojson.MarshalNoEscape(x)
		if err != nil {
			return strconv.Quote(x)
		}
		return string(b)
	case json.Number:
		return x.String()
	}
	if f, ok := Number(v); ok {
		return FormatNumber(f)
	}
	b, err := gojson.MarshalNoEscape(Strip(v))
	if err != nil {
		return TypeName(v)
	}
	return string(b)
}

// FormatNumber spells f in the shortest round-trip form, switching to
// exponent notation outside [1e-6, 1e21) like JSON serializers do.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return "null"
	case f == 0:
		return "0"
	}
	if a := math.Abs(f); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Go pads exponents to two digits ("1e-07").
	if i := strings.IndexByte(s, 'e'); i >= 0 && i+2 < len(s) && s[i+2] == '0' {
		s = s[:i+2] + strings.TrimLeft(s[i+2:], "0")
	}
	return s
}

// Number converts any numeric representation to float64.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	}
	return 0, false
}

// SameValue reports literal equality: same kind and equal value. Numbers
// compare numerically across representations, NaN equals NaN and -0 equals 0.
func SameValue(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNull, KindUndefined:
		return true
	case KindBoolean:
		return a.(bool) == b.(bool)
	case KindString:
		return a.(string) == b.(string)
	case KindNumber:
		fa, _ := Number(a)
		fb, _ := Number(b)
		if math.IsNaN(fa) {
			return math.IsNaN(fb)
		}
		return fa == fb
	}
	return Identical(a, b)
}

// Identical reports reference identity for objects and arrays and plain
// equality for everything else. It never panics on uncomparable values.
func Identical(a, b any) bool {
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		return ok && reflect.ValueOf(x).UnsafePointer() == reflect.ValueOf(y).UnsafePointer()
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		return len(x) == 0 || &x[0] == &y[0]
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta != nil && !ta.Comparable() {
		return false
	}
	return a == b
}

// Strip returns a copy of v with Undefined entries dropped from objects and
// replaced by null inside arrays, suitable for encoding.
func Strip(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			if IsUndefined(e) {
				continue
			}
			out[k] = Strip(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			if IsUndefined(e) {
				continue
			}
			out[i] = Strip(e)
		}
		return out
	case undefined:
		return nil
	}
	return v
}
