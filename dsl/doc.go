// Package dsl provides the schema builders for shapefix.
//
// Overview
//   - Leaves: Any/Unknown, Never, Bool, Number, String and Literal (constants are cached, so equal constants
//     are the same schema instance).
//   - Composites: Array(item), Object(Field/Optional...), Intersection(...), Union(...)/Nullable(x).
//   - Indirection: Lazy(func() any) for recursive shapes, and Defs for named definitions addressed with Ref.
//   - Refine(base, Refinement) layers a predicate over any schema.
//   - Define(v) converts map/slice/constant literals into schemas, so definitions can be written as data:
//     Define(map[string]any{"id": String(), "nickname?": String(), "tags": []any{String()}}).
//
// File layout (roles)
//   - primitives.go / literal.go: leaf schemas.
//   - object.go / object_plan.go: interpreted object check and its specialized plan.
//   - union.go: member partitioning by kind and primitive/array dispatch.
//   - union_tree.go: decision tree over object candidates, its interpreter and its compilation to internal/ir.
//   - intersection.go, lazy.go, refine.go, define.go.
//
// Design guidelines
//   - Every schema is a pointer type; identity is meaningful (union discrimination matches properties by
//     key and schema instance).
//   - Object, Intersection and the object branch of Union are adaptive: they specialize after the calling
//     Validator's threshold without any observable difference.
//   - Schemas are immutable after construction and safe for concurrent use. Object property order and
//     Union partitioning are computed on first use, so Lazy references may point at definitions that are
//     declared later or that refer back to themselves. Intersection members are inspected eagerly.
//
// Example
//
//	user := dsl.Union(
//	    dsl.Object(
//	        dsl.Field("type", "admin"),
//	        dsl.Field("id", dsl.String()),
//	        dsl.Field("permissions", dsl.Array(dsl.String())),
//	    ),
//	    dsl.Object(
//	        dsl.Field("type", "customer"),
//	        dsl.Field("id", dsl.String()),
//	        dsl.Field("plan", dsl.Union("free", "premium")),
//	    ),
//	)
//	fixed, errs := shapefix.Fix(user, input)
package dsl
