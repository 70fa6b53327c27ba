package engine

import (
	"strconv"
	"strings"
)

// DuplicatePolicy controls what happens when an object repeats a key.
type DuplicatePolicy int

const (
	// DupLastWins keeps the last occurrence, as encoding/json does.
	DupLastWins DuplicatePolicy = iota
	// DupError rejects the document.
	DupError
)

// Limits bound what a document may contain. Zero values disable a check.
type Limits struct {
	MaxDepth    int
	OnDuplicate DuplicatePolicy
}

// Enabled reports whether any check is active.
func (l Limits) Enabled() bool { return l.MaxDepth > 0 || l.OnDuplicate != DupLastWins }

// Error reports a limit violation at a JSON Pointer location.
type Error struct {
	Code    string
	Pointer string
	Message string
}

func (e *Error) Error() string {
	p := e.Pointer
	if p == "" {
		p = "/"
	}
	return p + ": " + e.Message
}

type frame struct {
	array   bool
	keys    map[string]struct{}
	pointer string
	key     string
	index   int
}

// Enforce wraps inner so that tokens violating l are turned into *Error.
func Enforce(inner TokenSource, l Limits) TokenSource {
	if !l.Enabled() {
		return inner
	}
	return &enforcer{inner: inner, limits: l}
}

type enforcer struct {
	inner  TokenSource
	limits Limits
	stack  []frame
}

func (e *enforcer) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return tok, err
	}
	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		p := e.valuePointer()
		if e.limits.MaxDepth > 0 && len(e.stack) >= e.limits.MaxDepth {
			return Token{}, &Error{Code: "parse_error", Pointer: p, Message: "max depth exceeded"}
		}
		f := frame{array: tok.Kind == KindBeginArray, pointer: p}
		if !f.array && e.limits.OnDuplicate == DupError {
			f.keys = make(map[string]struct{})
		}
		e.stack = append(e.stack, f)
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.keys != nil {
				if _, dup := top.keys[tok.String]; dup {
					return Token{}, &Error{
						Code:    "duplicate_key",
						Pointer: join(top.pointer, tok.String),
						Message: "key '" + tok.String + "' duplicated",
					}
				}
				top.keys[tok.String] = struct{}{}
			}
			top.key = tok.String
		}
	default:
		if n := len(e.stack); n > 0 && e.stack[n-1].array {
			e.stack[n-1].index++
		}
	}
	return tok, nil
}

// valuePointer locates the value about to be opened.
func (e *enforcer) valuePointer() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.array {
		p := join(top.pointer, strconv.Itoa(top.index))
		top.index++
		return p
	}
	return join(top.pointer, top.key)
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func join(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
