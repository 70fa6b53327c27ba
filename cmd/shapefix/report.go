package main

import (
	"fmt"
	"io"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/source"
)

type palette struct {
	path, code, ok, added, removed func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		path:    mk(color.FgCyan),
		code:    mk(color.Faint),
		ok:      mk(color.FgGreen),
		added:   mk(color.FgGreen),
		removed: mk(color.FgRed),
	}
}

// report writes one line per error: "name: $.path: message (code)".
func (s *session) report(w io.Writer, name string, errs sf.Errors) {
	for _, e := range errs {
		fmt.Fprintf(w, "%s: %s: %s %s\n", name, s.colors.path(sf.FormatPath(e.Path)), e.Message, s.colors.code("("+e.Code+")"))
	}
}

// writeDiff prints a line diff between the document as decoded and as repaired.
func (s *session) writeDiff(d document, before []byte, fixed any) error {
	after, err := source.Encode(fixed, d.format)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "--- %s\n+++ %s (fixed)\n", d.name, d.name)
	for _, l := range lineDiff(string(before), string(after)) {
		switch l.op {
		case diffpatch.DiffInsert:
			fmt.Fprintln(s.out, s.colors.added("+"+l.text))
		case diffpatch.DiffDelete:
			fmt.Fprintln(s.out, s.colors.removed("-"+l.text))
		default:
			fmt.Fprintln(s.out, " "+l.text)
		}
	}
	return nil
}

type diffLine struct {
	op   diffpatch.Operation
	text string
}

func lineDiff(a, b string) []diffLine {
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)
	var out []diffLine
	for _, d := range diffs {
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l == "" {
				continue
			}
			out = append(out, diffLine{op: d.Type, text: strings.TrimSuffix(l, "\n")})
		}
	}
	return out
}

// writePatch prints the RFC 7386 merge patch turning the input into the
// repaired document. Both sides are JSON renderings, whatever the input format.
func (s *session) writePatch(before []byte, fixed any) error {
	after, err := source.EncodeJSON(fixed)
	if err != nil {
		return err
	}
	patch, err := jsonpatch.CreateMergePatch(before, after)
	if err != nil {
		return err
	}
	_, err = s.out.Write(append(patch, '\n'))
	return err
}
