package shapefix

import (
	"strings"

	"github.com/reoring/shapefix/i18n"
)

// Mismatch renders the invalid_type message for a value that is not of the
// expected type tag.
func Mismatch(expected string, got any) string {
	return i18n.T(CodeInvalidType, map[string]string{"expected": expected, "got": TypeName(got)})
}

// LiteralMismatch renders the invalid_literal message.
func LiteralMismatch(want, got any) string {
	return i18n.T(CodeInvalidLiteral, map[string]string{"expected": Print(want), "got": Print(got)})
}

// MissingKey renders the required message.
func MissingKey(key string) string {
	return i18n.T(CodeRequired, map[string]string{"key": key})
}

// Unexpected renders the invalid_enum message for a primitive a union does
// not admit. allowed lists the constants accepted for that kind, if any.
func Unexpected(got any, allowed []any) string {
	k := KindOf(got)
	data := map[string]string{"kind": TypeName(got)}
	if k != KindNull && k != KindUndefined {
		data["value"] = Print(got)
	}
	if len(allowed) > 0 {
		parts := make([]string, len(allowed))
		for i, a := range allowed {
			parts[i] = Print(a)
		}
		data["allowed"] = strings.Join(parts, " | ")
	}
	return i18n.T(CodeInvalidEnum, data)
}

// NoMatch renders the union_no_match message for "object" or "array".
func NoMatch(shape string) string {
	return i18n.T(CodeUnionNoMatch, map[string]string{"shape": shape})
}

// Disallowed renders the disallowed_shape message for "object" or "array".
func Disallowed(shape string) string {
	return i18n.T(CodeDisallowedShape, map[string]string{"shape": shape})
}

// Custom renders a refinement message; an empty msg yields the default text.
func Custom(msg string) string {
	if msg == "" {
		return i18n.T(CodeCustom, nil)
	}
	return i18n.T(CodeCustom, map[string]string{"message": msg})
}
