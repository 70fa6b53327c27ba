package kubeopenapi

import (
	"slices"
	"sort"
	"strings"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/dsl"
)

var refPrefixes = map[string]string{"$defs": "#/$defs/", "definitions": "#/definitions/"}

// extractDefs returns the local $defs (or legacy definitions) of the document
// root and the key they live under.
func extractDefs(doc map[string]any) (map[string]any, string) {
	for _, key := range []string{"$defs", "definitions"} {
		if m, ok := doc[key].(map[string]any); ok {
			return m, key
		}
	}
	return nil, ""
}

// declare registers every local definition as a lazily built entry of the
// arena, so references may point forward or back to themselves.
func (im *importer) declare(raw map[string]any, key string) {
	im.raw, im.defsKey = raw, key
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		im.defs.Define(name, dsl.Lazy(func() any { return im.build(name) }))
	}
}

// ref resolves a local $ref to its arena reference.
func (im *importer) ref(ref, ptr string) (sf.Schema, error) {
	prefix, ok := refPrefixes[im.defsKey]
	if !ok || !strings.HasPrefix(ref, prefix) {
		return nil, errorf(ptr, "$ref %q not supported (local $defs only)", ref)
	}
	name := unescape(strings.TrimPrefix(ref, prefix))
	if _, ok := im.raw[name].(map[string]any); !ok {
		return nil, errorf(ptr, "$ref to unknown definition %q", name)
	}
	if !slices.Contains(im.used, name) {
		im.used = append(im.used, name)
	}
	return im.defs.Ref(name), nil
}

// build is the resolver of a definition; failures are kept in im.err.
func (im *importer) build(name string) any {
	ptr := "/" + im.defsKey + "/" + escape(name)
	if im.building[name] {
		im.fail(errorf(ptr, "definition %q depends on itself outside an object, array or union", name))
		return dsl.Never()
	}
	im.building[name] = true
	defer delete(im.building, name)
	s, err := im.node(im.raw[name].(map[string]any), ptr)
	if err != nil {
		im.fail(err)
		return dsl.Never()
	}
	return s
}

// resolveUsed forces every referenced definition, including those referenced
// while forcing, and returns the first failure.
func (im *importer) resolveUsed() error {
	for i := 0; i < len(im.used) && im.err == nil; i++ {
		s, _ := im.defs.Lookup(im.used[i])
		s.(*dsl.LazySchema).Resolve()
	}
	return im.err
}

func (im *importer) fail(err error) {
	if im.err == nil {
		im.err = err
	}
}

func escape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

func unescape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
}
