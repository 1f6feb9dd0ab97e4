package presets

import (
	"fmt"

	"github.com/vytor/ankistore/internal/errors"
)

// Merge deep-merges incoming into original, modifying original.
//
// Nested maps are merged recursively and lists element-wise; values of any
// other type at the same key are a conflict and abort the merge with a
// validation error rather than silently overwriting. Keys only present in
// incoming are added.
func Merge(original, incoming map[string]any) error {
	for key, inVal := range incoming {
		origVal, exists := original[key]
		if !exists {
			original[key] = inVal
			continue
		}

		switch origTyped := origVal.(type) {
		case map[string]any:
			inTyped, ok := inVal.(map[string]any)
			if !ok {
				return errors.NewValidationError(key, fmt.Sprintf("cannot merge %T into map", inVal))
			}
			if err := Merge(origTyped, inTyped); err != nil {
				return err
			}
		case []any:
			inTyped, ok := inVal.([]any)
			if !ok {
				return errors.NewValidationError(key, fmt.Sprintf("cannot merge %T into list", inVal))
			}
			merged, err := mergeLists(key, origTyped, inTyped)
			if err != nil {
				return err
			}
			original[key] = merged
		default:
			return errors.NewValidationError(key, fmt.Sprintf("cannot merge into value of type %T", origVal))
		}
	}
	return nil
}

// mergeLists merges correlated elements; extra incoming elements are appended.
func mergeLists(key string, original, incoming []any) ([]any, error) {
	common := len(original)
	if len(incoming) < common {
		common = len(incoming)
	}
	for i := 0; i < common; i++ {
		origMap, origIsMap := original[i].(map[string]any)
		inMap, inIsMap := incoming[i].(map[string]any)
		if origIsMap && inIsMap {
			if err := Merge(origMap, inMap); err != nil {
				return nil, err
			}
			continue
		}
		origList, origIsList := original[i].([]any)
		inList, inIsList := incoming[i].([]any)
		if origIsList && inIsList {
			merged, err := mergeLists(key, origList, inList)
			if err != nil {
				return nil, err
			}
			original[i] = merged
			continue
		}
		return nil, errors.NewValidationError(key, fmt.Sprintf("cannot merge list element %d", i))
	}
	original = append(original, incoming[common:]...)
	return original, nil
}

// Apply layers overrides onto a fresh copy of base and returns the result.
// Scalar overrides replace the base value outright; map and list overrides
// follow Merge semantics against the existing value.
func Apply(base map[string]any, overrides map[string]any) (map[string]any, error) {
	out := deepCopyMap(base)
	for key, v := range overrides {
		existing, exists := out[key]
		if !exists {
			out[key] = v
			continue
		}
		switch typed := existing.(type) {
		case map[string]any:
			inMap, ok := v.(map[string]any)
			if !ok {
				return nil, errors.NewValidationError(key, fmt.Sprintf("cannot merge %T into map", v))
			}
			if err := Merge(typed, inMap); err != nil {
				return nil, err
			}
		default:
			out[key] = v
		}
	}
	return out, nil
}
