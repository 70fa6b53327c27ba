package kubeopenapi

import (
	"github.com/reoring/shapefix/dsl"
	"github.com/reoring/shapefix/rules"
)

// listType maps x-kubernetes-list-type to a uniqueness refinement: "set"
// requires distinct elements and "map" distinct values of the single
// x-kubernetes-list-map-keys entry. "atomic" and absent add nothing.
func (im *importer) listType(doc map[string]any, ptr string) (dsl.Refinement, bool, error) {
	lt, ok := doc["x-kubernetes-list-type"].(string)
	if !ok {
		return dsl.Refinement{}, false, nil
	}
	switch lt {
	case "atomic":
		return dsl.Refinement{}, false, nil
	case "set":
		return rules.UniqueBy("", ""), true, nil
	case "map":
		keys, _ := doc["x-kubernetes-list-map-keys"].([]any)
		if len(keys) == 0 {
			return dsl.Refinement{}, false, errorf(ptr+"/x-kubernetes-list-map-keys", "list-type map needs x-kubernetes-list-map-keys")
		}
		if len(keys) > 1 {
			im.d.warnf(ptr+"/x-kubernetes-list-map-keys", "composite list map keys are not checked")
			return dsl.Refinement{}, false, nil
		}
		key, ok := keys[0].(string)
		if !ok || key == "" {
			return dsl.Refinement{}, false, errorf(ptr+"/x-kubernetes-list-map-keys/0", "list map key must be a string")
		}
		return rules.UniqueBy("", key), true, nil
	}
	return dsl.Refinement{}, false, errorf(ptr+"/x-kubernetes-list-type", "unknown list type %q", lt)
}
