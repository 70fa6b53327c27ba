// Package kubeopenapi imports OpenAPI v3 schemas, as embedded in Kubernetes
// CustomResourceDefinitions, into shapefix schemas.
//
// Supported keywords: type (object, array, string, number, integer, boolean),
// properties, required, items, enum, nullable, default, allOf, oneOf, anyOf,
// local $ref into $defs or definitions, minLength/maxLength, minItems/maxItems,
// minProperties/maxProperties, minimum/maximum, pattern, and the Kubernetes
// extensions x-kubernetes-int-or-string, x-kubernetes-preserve-unknown-fields,
// x-kubernetes-embedded-resource and x-kubernetes-list-type. Other validation
// keywords produce a warning (an error with Options.Strict).
package kubeopenapi

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/dsl"
	"github.com/reoring/shapefix/rules"
	"github.com/reoring/shapefix/source"
)

type importer struct {
	opts     Options
	d        *simpleDiag
	defs     *dsl.Defs
	raw      map[string]any
	defsKey  string
	used     []string
	building map[string]bool
	err      error
}

// Import compiles an OpenAPI v3 schema into a shapefix schema. The input can
// be a decoded map[string]any or raw JSON/YAML bytes, holding either the
// schema itself, an object with openAPIV3Schema, or a whole CRD.
func Import(schema any, opts Options) (sf.Schema, Diag, error) {
	d := &simpleDiag{}
	var root map[string]any
	switch t := schema.(type) {
	case nil:
		return nil, d, errors.New("kubeopenapi: nil schema")
	case []byte:
		v, err := source.DecodeYAML(t, source.Options{})
		if err != nil {
			return nil, d, fmt.Errorf("kubeopenapi: %w", err)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, d, fmt.Errorf("kubeopenapi: expected a mapping, got %s", sf.TypeName(v))
		}
		root = m
	case map[string]any:
		root = t
	default:
		return nil, d, fmt.Errorf("kubeopenapi: unsupported input %T", schema)
	}

	// Accept direct schema (openAPIV3Schema) or unwrap CRD root (spec.versions[].schema.openAPIV3Schema)
	if spec, ok := root["openAPIV3Schema"].(map[string]any); ok {
		root = spec
	} else if unwrapped := unwrapCRDSchema(root); unwrapped != nil {
		root = unwrapped
	}

	im := &importer{opts: opts, d: d, defs: dsl.NewDefs(), building: map[string]bool{}}
	if raw, key := extractDefs(root); raw != nil {
		im.declare(raw, key)
	}
	s, err := im.node(root, "")
	if err == nil {
		err = im.resolveUsed()
	}
	if err != nil {
		return nil, d, err
	}
	return s, d, nil
}

// unwrapCRDSchema tries to extract openAPIV3Schema from a Kubernetes CRD document.
// It looks for spec.versions[].schema.openAPIV3Schema (preferring served=true),
// then falls back to spec.validation.openAPIV3Schema for legacy specs.
func unwrapCRDSchema(root map[string]any) map[string]any {
	spec, ok := root["spec"].(map[string]any)
	if !ok {
		return nil
	}
	if vers, ok := spec["versions"].([]any); ok {
		var firstFound map[string]any
		for _, v := range vers {
			vm, _ := v.(map[string]any)
			sch, _ := vm["schema"].(map[string]any)
			oas, ok := sch["openAPIV3Schema"].(map[string]any)
			if !ok {
				continue
			}
			if served, ok := vm["served"].(bool); !ok || served {
				return oas
			}
			if firstFound == nil {
				firstFound = oas
			}
		}
		if firstFound != nil {
			return firstFound
		}
	}
	// legacy: spec.validation.openAPIV3Schema
	if val, ok := spec["validation"].(map[string]any); ok {
		if oas, ok := val["openAPIV3Schema"].(map[string]any); ok {
			return oas
		}
	}
	return nil
}

// ignored keywords carry no validation.
var ignored = map[string]bool{
	"type": true, "description": true, "title": true, "example": true, "examples": true,
	"format": true, "$defs": true, "definitions": true, "$schema": true, "$id": true,
	"externalDocs": true, "readOnly": true, "writeOnly": true, "deprecated": true,
}

// handled keywords are read by node.
var handled = map[string]bool{
	"properties": true, "required": true, "items": true, "enum": true, "nullable": true,
	"default": true, "allOf": true, "oneOf": true, "anyOf": true, "$ref": true,
	"minLength": true, "maxLength": true, "minItems": true, "maxItems": true,
	"minProperties": true, "maxProperties": true, "minimum": true, "maximum": true, "pattern": true,
	"x-kubernetes-int-or-string": true, "x-kubernetes-preserve-unknown-fields": true,
	"x-kubernetes-embedded-resource": true, "x-kubernetes-list-type": true,
	"x-kubernetes-list-map-keys": true, "additionalProperties": true,
}

// node compiles one schema object located at ptr.
func (im *importer) node(doc map[string]any, ptr string) (sf.Schema, error) {
	if err := im.unsupported(doc, ptr); err != nil {
		return nil, err
	}
	if ref, ok := doc["$ref"].(string); ok {
		s, err := im.ref(ref, ptr+"/$ref")
		if n, _ := doc["nullable"].(bool); n && err == nil {
			s = dsl.Nullable(s)
		}
		return s, err
	}

	base, err := im.base(doc, ptr)
	if err != nil {
		return nil, err
	}
	if base, err = im.composites(doc, ptr, base); err != nil {
		return nil, err
	}
	rs, err := im.constraints(doc, ptr)
	if err != nil {
		return nil, err
	}
	if len(rs) > 0 {
		base = dsl.Refine(base, rules.All(rs...))
	}
	if n, _ := doc["nullable"].(bool); n {
		base = dsl.Nullable(base)
	}
	if def, ok := doc["default"]; ok && !im.opts.IgnoreDefaults {
		base = &defaulted{Schema: base, value: def}
	}
	return base, nil
}

// base builds the schema selected by type and enum.
func (im *importer) base(doc map[string]any, ptr string) (sf.Schema, error) {
	if b, _ := doc["x-kubernetes-int-or-string"].(bool); b {
		return dsl.Union(dsl.Refine(dsl.Number(), rules.Integer()), dsl.String()), nil
	}
	if raw, ok := doc["enum"]; ok {
		values, ok := raw.([]any)
		if !ok || len(values) == 0 {
			return nil, errorf(ptr+"/enum", "enum needs a non-empty list")
		}
		members := make([]any, len(values))
		for i, v := range values {
			if k := sf.KindOf(v); k == sf.KindObject || k == sf.KindArray {
				return nil, errorf(fmt.Sprintf("%s/enum/%d", ptr, i), "enum values must be scalars")
			}
			members[i] = dsl.Literal(v)
		}
		return dsl.Union(members...), nil
	}

	typ, _ := doc["type"].(string)
	if typ == "" {
		switch {
		case doc["properties"] != nil:
			typ = "object"
		case doc["items"] != nil:
			typ = "array"
		default:
			return dsl.Any(), nil
		}
	}
	switch typ {
	case "string":
		return dsl.String(), nil
	case "number":
		return dsl.Number(), nil
	case "integer":
		return dsl.Refine(dsl.Number(), rules.Integer()), nil
	case "boolean":
		return dsl.Bool(), nil
	case "array":
		items, ok := doc["items"].(map[string]any)
		if !ok {
			return dsl.Array(dsl.Any()), nil
		}
		item, err := im.node(items, ptr+"/items")
		if err != nil {
			return nil, err
		}
		return dsl.Array(item), nil
	case "object":
		return im.object(doc, ptr)
	}
	return nil, errorf(ptr+"/type", "unsupported type %q", typ)
}

// object builds the properties in sorted key order; keys listed under
// required are mandatory.
func (im *importer) object(doc map[string]any, ptr string) (sf.Schema, error) {
	required := map[string]bool{}
	if req, ok := doc["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}
	pm, _ := doc["properties"].(map[string]any)
	keys := make([]string, 0, len(pm))
	for k := range pm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	props := make([]dsl.Property, 0, len(keys)+3)
	for _, k := range keys {
		ps, ok := pm[k].(map[string]any)
		if !ok {
			return nil, errorf(ptr+"/properties/"+escape(k), "property schema must be an object")
		}
		s, err := im.node(ps, ptr+"/properties/"+escape(k))
		if err != nil {
			return nil, err
		}
		if required[k] {
			props = append(props, dsl.Field(k, s))
		} else {
			props = append(props, dsl.Optional(k, s))
		}
		delete(required, k)
	}
	for k := range required {
		im.d.warnf(ptr+"/required", "required key %q has no property schema", k)
		props = append(props, dsl.Field(k, dsl.Any()))
	}
	if _, ok := doc["additionalProperties"].(map[string]any); ok {
		im.d.warnf(ptr+"/additionalProperties", "additionalProperties schema is not checked")
	}
	if b, _ := doc["x-kubernetes-embedded-resource"].(bool); b && im.opts.EnableEmbeddedChecks {
		props = embeddedResource(props)
	}
	return dsl.Object(props...), nil
}

// embeddedResource requires apiVersion, kind and metadata unless the schema
// declares them itself.
func embeddedResource(props []dsl.Property) []dsl.Property {
	declared := map[string]bool{}
	for _, p := range props {
		declared[p.Key] = true
	}
	for _, p := range []dsl.Property{
		dsl.Field("apiVersion", dsl.String()),
		dsl.Field("kind", dsl.String()),
		dsl.Field("metadata", dsl.Object()),
	} {
		if !declared[p.Key] {
			props = append(props, p)
		}
	}
	return props
}

// composites layers allOf, oneOf and anyOf over base. oneOf is checked like
// anyOf: the first matching branch wins.
func (im *importer) composites(doc map[string]any, ptr string, base sf.Schema) (sf.Schema, error) {
	typed := doc["type"] != nil || doc["enum"] != nil || doc["properties"] != nil || doc["items"] != nil
	for _, key := range []string{"allOf", "oneOf", "anyOf"} {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		list, ok := raw.([]any)
		if !ok || len(list) == 0 {
			return nil, errorf(ptr+"/"+key, "%s needs a non-empty list", key)
		}
		members := make([]any, 0, len(list))
		for i, e := range list {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, errorf(fmt.Sprintf("%s/%s/%d", ptr, key, i), "branch must be a schema object")
			}
			s, err := im.node(m, fmt.Sprintf("%s/%s/%d", ptr, key, i))
			if err != nil {
				return nil, err
			}
			members = append(members, s)
		}
		var s sf.Schema
		if key == "allOf" {
			s = dsl.Intersection(members...)
		} else {
			s = dsl.Union(members...)
		}
		if typed {
			base = dsl.Intersection(base, s)
		} else {
			base, typed = s, true
		}
		if base.Tag() == "never" {
			im.d.warnf(ptr+"/"+key, "%s branches share no type; nothing is accepted", key)
		}
	}
	return base, nil
}

// constraints turns length, range, pattern and list-type keywords into refinements.
func (im *importer) constraints(doc map[string]any, ptr string) ([]dsl.Refinement, error) {
	var rs []dsl.Refinement
	for _, pair := range [][2]string{{"minLength", "maxLength"}, {"minItems", "maxItems"}, {"minProperties", "maxProperties"}} {
		if n, ok := count(doc, pair[0]); ok {
			rs = append(rs, rules.MinLen(n))
		}
		if n, ok := count(doc, pair[1]); ok {
			rs = append(rs, rules.MaxLen(n))
		}
	}
	lo, hasLo := sf.Number(doc["minimum"])
	hi, hasHi := sf.Number(doc["maximum"])
	if hasLo || hasHi {
		if !hasLo {
			lo = math.Inf(-1)
		}
		if !hasHi {
			hi = math.Inf(1)
		}
		rs = append(rs, rules.Range(lo, hi))
	}
	if p, ok := doc["pattern"].(string); ok {
		if _, err := regexp.Compile(p); err != nil {
			return nil, errorf(ptr+"/pattern", "%v", err)
		}
		rs = append(rs, rules.Pattern(p))
	}
	r, ok, err := im.listType(doc, ptr)
	if err != nil {
		return nil, err
	}
	if ok {
		rs = append(rs, r)
	}
	return rs, nil
}

func count(doc map[string]any, key string) (int, bool) {
	f, ok := sf.Number(doc[key])
	if !ok || f < 0 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// unsupported reports keywords the importer does not check.
func (im *importer) unsupported(doc map[string]any, ptr string) error {
	var keys []string
	for k := range doc {
		if !ignored[k] && !handled[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if im.opts.Strict {
			return errorf(ptr+"/"+escape(k), "unsupported keyword %q", k)
		}
		im.d.warnf(ptr+"/"+escape(k), "unsupported keyword %q ignored", k)
	}
	return nil
}
