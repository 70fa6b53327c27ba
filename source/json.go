package source

import (
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/shapefix/internal/engine"
)

// tokens adapts a go-json streaming decoder to engine.TokenSource. The decoder
// reports object keys as plain strings, so a small stack tells keys from values.
type tokens struct {
	dec   *gojson.Decoder
	stack []frame
}

type frame struct {
	object  bool
	wantKey bool
}

func newTokens(r io.Reader) *tokens {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	return &tokens{dec: dec}
}

func (s *tokens) NextToken() (engine.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return engine.Token{}, err
	}
	switch v := tok.(type) {
	case gojson.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{object: true, wantKey: true})
			return engine.Token{Kind: engine.KindBeginObject}, nil
		case '[':
			s.stack = append(s.stack, frame{})
			return engine.Token{Kind: engine.KindBeginArray}, nil
		case '}':
			s.pop()
			return engine.Token{Kind: engine.KindEndObject}, nil
		case ']':
			s.pop()
			return engine.Token{Kind: engine.KindEndArray}, nil
		}
	case string:
		if n := len(s.stack); n > 0 && s.stack[n-1].object && s.stack[n-1].wantKey {
			s.stack[n-1].wantKey = false
			return engine.Token{Kind: engine.KindKey, String: v}, nil
		}
		s.scalar()
		return engine.Token{Kind: engine.KindString, String: v}, nil
	case gojson.Number:
		s.scalar()
		return engine.Token{Kind: engine.KindNumber, Number: string(v)}, nil
	case float64:
		s.scalar()
		return engine.Token{Kind: engine.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	case bool:
		s.scalar()
		return engine.Token{Kind: engine.KindBool, Bool: v}, nil
	}
	s.scalar()
	return engine.Token{Kind: engine.KindNull}, nil
}

// pop closes a container, which completes a value in the parent.
func (s *tokens) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.scalar()
}

func (s *tokens) scalar() {
	if n := len(s.stack); n > 0 && s.stack[n-1].object {
		s.stack[n-1].wantKey = true
	}
}
