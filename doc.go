package shapefix

// Package shapefix provides:
//
// - Runtime validation of untyped values (decoded JSON/YAML trees) against composable schemas
// - Repair of invalid or missing locations to schema-conforming fallbacks (Fix)
// - Full error collection without mutation (Validate), first-error failure (Assert) and a predicate (Is)
// - Adaptive specialization: hot Object/Intersection/Union checks switch from an interpreted walk to a
//   precompiled plan after a configurable number of calls, without changing observable behavior
//
// Design policy:
// - Keep the check contract and public entry points in the root package; schema builders live under dsl/.
// - Place decoding under source/, messages under i18n/, the CLI under cmd/shapefix.
// - Configuration is an explicit value (Config) carried by a Validator; package-level helpers use a
//   swappable default.
//
// Typical usage:
//
//  user := dsl.Object(
//      dsl.Field("id", dsl.String()),
//      dsl.Field("tags", dsl.Array(dsl.String())),
//  )
//  fixed, errs := shapefix.Fix(user, input)
//  for _, e := range errs {
//      fmt.Println(e) // $.tags[1]: Expected string but got number
//  }
//
//  v := shapefix.New(shapefix.Config{MaxErrors: 10, Threshold: shapefix.NeverOptimize})
//  if err := v.Assert(user, input); err != nil {
//      ...
//  }
//
