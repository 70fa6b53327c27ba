package shapefix

import (
	"strconv"
	"strings"
)

// Segment is one step of a location path: an object key or an array index.
type Segment struct {
	key   string
	index int
	isKey bool
}

// Key returns a key segment.
func Key(k string) Segment { return Segment{key: k, isKey: true} }

// Index returns an index segment.
func Index(i int) Segment { return Segment{index: i} }

// IsKey reports whether the segment addresses an object key.
func (s Segment) IsKey() bool { return s.isKey }

// Name returns the key of a key segment.
func (s Segment) Name() string { return s.key }

// Pos returns the index of an index segment.
func (s Segment) Pos() int { return s.index }

func (s Segment) String() string {
	if s.isKey {
		return "." + s.key
	}
	return "[" + strconv.Itoa(s.index) + "]"
}

// FormatPath renders a path rooted at "$": keys as ".key", indices as "[i]".
func FormatPath(path []Segment) string {
	b := &strings.Builder{}
	b.WriteByte('$')
	for _, s := range path {
		if s.isKey {
			b.WriteByte('.')
			b.WriteString(s.key)
			continue
		}
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(s.index))
		b.WriteByte(']')
	}
	return b.String()
}

// Pointer renders a path as an RFC 6901 JSON Pointer ("" for the root).
func Pointer(path []Segment) string {
	b := &strings.Builder{}
	for _, s := range path {
		b.WriteByte('/')
		if s.isKey {
			// escape '~' -> '~0', '/' -> '~1' per RFC6901
			b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.key, "~", "~0"), "/", "~1"))
			continue
		}
		b.WriteString(strconv.Itoa(s.index))
	}
	return b.String()
}
