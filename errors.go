package shapefix

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType     = "invalid_type"     // value of the wrong kind
	CodeRequired        = "required"         // required key absent
	CodeInvalidLiteral  = "invalid_literal"  // constant mismatch
	CodeInvalidEnum     = "invalid_enum"     // union primitive not among the allowed kinds/constants
	CodeUnionNoMatch    = "union_no_match"   // object/array matches no union alternative
	CodeDisallowedShape = "disallowed_shape" // union admits no object or no array at all
	CodeCustom          = "custom"           // refinement predicate failed
	CodeParseError      = "parse_error"      // input could not be decoded
)

// ValidationError is a single entry produced by Fix, Validate or Assert.
type ValidationError struct {
	Path    []Segment
	Code    string
	Message string
}

// String renders "$.path: message".
func (e ValidationError) String() string { return FormatPath(e.Path) + ": " + e.Message }

func (e ValidationError) Error() string { return e.String() }

// Pointer returns the location as an RFC 6901 JSON Pointer.
func (e ValidationError) Pointer() string { return Pointer(e.Path) }

// Errors is a collection of validation errors that implements error.
type Errors []ValidationError

// Error summarizes the first few errors.
func (es Errors) Error() string {
	if len(es) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(es), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(es[i].String())
	}
	if n := len(es); n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Strings renders every error as "$.path: message".
func (es Errors) Strings() []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.String()
	}
	return out
}

// Err returns es as an error, or nil when empty.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// AsErrors extracts Errors from an error using errors.As internally. A single
// ValidationError (as returned by Assert) is wrapped into a one-element slice.
func AsErrors(err error) (Errors, bool) {
	if err == nil {
		return nil, false
	}
	var es Errors
	if errors.As(err, &es) {
		return es, true
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return Errors{ve}, true
	}
	return nil, false
}
