package main

import (
	"fmt"
	"io"
	"os"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/source"
)

type document struct {
	name   string
	format source.Format
	data   []byte
}

// read loads the named documents; no names or "-" reads stdin.
func (s *session) read(names []string) ([]document, error) {
	if len(names) == 0 {
		names = []string{"-"}
	}
	docs := make([]document, 0, len(names))
	for _, name := range names {
		var (
			data []byte
			err  error
			f    = source.JSON
		)
		if name == "-" {
			data, err = io.ReadAll(os.Stdin)
			name = "<stdin>"
		} else {
			data, err = os.ReadFile(name)
			f = source.FormatOf(name)
		}
		if err != nil {
			return nil, fmt.Errorf("could not read %q: %w", name, err)
		}
		if s.format != nil {
			f = *s.format
		}
		docs = append(docs, document{name: name, format: f, data: data})
	}
	return docs, nil
}

func (s *session) decode(d document) (any, bool) {
	var (
		v   any
		err error
	)
	if d.format == source.YAML {
		v, err = source.DecodeYAML(d.data, s.input)
	} else {
		v, err = source.DecodeJSON(d.data, s.input)
	}
	if err != nil {
		s.report(s.errOut, d.name, source.Issues(err))
		return nil, false
	}
	return v, true
}

type outputMode int

const (
	outputDocument outputMode = iota
	outputDiff
	outputPatch
)

// fix repairs every document. It reports whether all of them were already valid.
func (s *session) fix(docs []document, mode outputMode) (bool, error) {
	clean := true
	for i, d := range docs {
		v, ok := s.decode(d)
		if !ok {
			clean = false
			continue
		}
		// Fix works in place, so render the input first.
		var (
			before []byte
			err    error
		)
		switch mode {
		case outputDiff:
			before, err = source.Encode(v, d.format)
		case outputPatch:
			before, err = source.EncodeJSON(v)
		}
		if err != nil {
			return false, fmt.Errorf("%s: %w", d.name, err)
		}
		fixed, errs := s.validator.Fix(s.schema, v)
		if len(errs) > 0 {
			clean = false
			s.report(s.errOut, d.name, errs)
		}
		if i > 0 && mode == outputDocument && d.format == source.YAML {
			fmt.Fprintln(s.out, "---")
		}
		switch mode {
		case outputDiff:
			err = s.writeDiff(d, before, fixed)
		case outputPatch:
			err = s.writePatch(before, fixed)
		default:
			var out []byte
			if out, err = source.Encode(fixed, d.format); err == nil {
				_, err = s.out.Write(out)
			}
		}
		if err != nil {
			return false, fmt.Errorf("%s: %w", d.name, err)
		}
	}
	return clean, nil
}

func validate(s *session, docs []document, quiet bool) (bool, error) {
	ok := true
	for _, d := range docs {
		v, decoded := s.decode(d)
		if !decoded {
			ok = false
			continue
		}
		errs := s.validator.Validate(s.schema, v)
		if len(errs) == 0 {
			if !quiet {
				fmt.Fprintf(s.out, "%s: %s\n", d.name, s.colors.ok("ok"))
			}
			continue
		}
		ok = false
		if !quiet {
			s.report(s.out, d.name, errs)
		}
	}
	return ok, nil
}

func assert(s *session, docs []document, quiet bool) (bool, error) {
	ok := true
	for _, d := range docs {
		v, decoded := s.decode(d)
		if !decoded {
			ok = false
			continue
		}
		err := s.validator.Assert(s.schema, v)
		if err == nil {
			continue
		}
		ok = false
		if quiet {
			continue
		}
		if es, isErrs := sf.AsErrors(err); isErrs {
			s.report(s.out, d.name, es)
		} else {
			fmt.Fprintf(s.out, "%s: %v\n", d.name, err)
		}
	}
	return ok, nil
}

func is(s *session, docs []document, quiet bool) (bool, error) {
	ok := true
	for _, d := range docs {
		v, decoded := s.decode(d)
		res := decoded && s.validator.Is(s.schema, v)
		ok = ok && res
		if !quiet {
			fmt.Fprintf(s.out, "%s: %t\n", d.name, res)
		}
	}
	return ok, nil
}
