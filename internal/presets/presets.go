// Package presets holds the schema-default value tables that new collection
// records start from. The defaults are loaded once from an embedded preset
// file and exposed as deep copies, so callers can layer their own overrides
// without touching the shared tables.
package presets

import (
	_ "embed"
	"encoding/json"
	"sync"
)

//go:embed default.json
var defaultJSON []byte

var (
	loadOnce sync.Once
	tables   map[string]any
)

func load() map[string]any {
	loadOnce.Do(func() {
		if err := json.Unmarshal(defaultJSON, &tables); err != nil {
			panic("presets: corrupt default preset: " + err.Error())
		}
	})
	return tables
}

func table(name string) map[string]any {
	t, ok := load()[name].(map[string]any)
	if !ok {
		panic("presets: missing preset table " + name)
	}
	return deepCopyMap(t)
}

// Conf returns the default collection configuration.
func Conf() map[string]any { return table("conf") }

// Model returns the default note-type record.
func Model() map[string]any { return table("model") }

// Field returns the default model field descriptor.
func Field() map[string]any { return table("field") }

// Template returns the default card template descriptor.
func Template() map[string]any { return table("template") }

// Deck returns the default deck record.
func Deck() map[string]any { return table("deck") }

// DeckConfig returns the default deck-option group.
func DeckConfig() map[string]any { return table("dconf") }

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
