package models

import (
	"encoding/json"
	"time"

	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/idgen"
	"github.com/vytor/ankistore/internal/presets"
)

// Model types
const (
	ModelTypeStandard = 0
	ModelTypeCloze    = 1
)

// Model is a note type: the ordered fields and card templates every note of
// this type conforms to. Serialized as JSON inside the collection metadata row.
type Model struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Type      int           `json:"type"`
	Mod       int64         `json:"mod"`
	USN       int           `json:"usn"`
	SortField int           `json:"sortf"`
	DeckID    int64         `json:"did"`
	Fields    []*Field      `json:"flds"`
	Templates []*Template   `json:"tmpls"`
	Req       []Requirement `json:"req"`
	Tags      []string      `json:"tags"`
	Vers      []any         `json:"vers"`
	CSS       string        `json:"css"`
	LatexPre  string        `json:"latexPre"`
	LatexPost string        `json:"latexPost"`
}

// Field is one named field of a model. Ord is the dense 0-based index of the
// field in the model's field list; note field values are stored positionally
// against it.
type Field struct {
	Name   string   `json:"name"`
	Ord    int      `json:"ord"`
	Sticky bool     `json:"sticky"`
	RTL    bool     `json:"rtl"`
	Font   string   `json:"font"`
	Size   int      `json:"size"`
	Media  []string `json:"media"`
}

// Template is one question/answer rendering rule of a model, producing one
// card per note. DeckOverride routes generated cards to a specific deck when
// non-nil.
type Template struct {
	Name         string `json:"name"`
	Ord          int    `json:"ord"`
	Qfmt         string `json:"qfmt"`
	Afmt         string `json:"afmt"`
	Bqfmt        string `json:"bqfmt"`
	Bafmt        string `json:"bafmt"`
	DeckOverride *int64 `json:"did"`
}

// Requirement asserts which fields a template needs to generate a card.
// Persisted in the legacy triple-array form [ord, kind, fieldOrds].
type Requirement struct {
	TemplateOrd int
	Kind        string // "all" or "any"
	FieldOrds   []int
}

// MarshalJSON writes the triple-array wire form.
func (r Requirement) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.TemplateOrd, r.Kind, r.FieldOrds})
}

// UnmarshalJSON reads the triple-array wire form.
func (r *Requirement) UnmarshalJSON(b []byte) error {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &r.TemplateOrd); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &r.Kind); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &r.FieldOrds)
}

// TemplateSpec is the minimal caller input for one template.
type TemplateSpec struct {
	Name     string
	Question string
	Answer   string
}

// FieldsFromNames builds defaulted field descriptors with dense ordinals.
func FieldsFromNames(names ...string) []*Field {
	fields := make([]*Field, len(names))
	for i, name := range names {
		fields[i] = NewField(name, i)
	}
	return fields
}

// NewField builds a defaulted field descriptor. ord must be the index of the
// field in its containing list.
func NewField(name string, ord int) *Field {
	var f Field
	mustDecode(presets.Field(), &f)
	f.Name = name
	f.Ord = ord
	return &f
}

// TemplatesFromSpecs builds defaulted template descriptors with dense ordinals.
func TemplatesFromSpecs(specs []TemplateSpec) []*Template {
	templates := make([]*Template, len(specs))
	for i, spec := range specs {
		templates[i] = NewTemplate(spec.Name, spec.Question, spec.Answer, i)
	}
	return templates
}

// NewTemplate builds a defaulted template descriptor. ord must be the index of
// the template in its containing list.
func NewTemplate(name, question, answer string, ord int) *Template {
	var t Template
	mustDecode(presets.Template(), &t)
	t.Name = name
	t.Qfmt = question
	t.Afmt = answer
	t.Ord = ord
	return &t
}

// NewModel builds a fully-defaulted model. The id comes from gen, the
// requirements array naively asserts every template requires its own ordinal
// field, and overrides are layered onto the schema defaults before the typed
// values are applied.
func NewModel(gen idgen.Generator, name string, fields []*Field, templates []*Template, overrides map[string]any) (*Model, error) {
	base := presets.Model()
	if len(overrides) > 0 {
		merged, err := presets.Apply(base, overrides)
		if err != nil {
			return nil, err
		}
		base = merged
	}

	var m Model
	if err := decode(base, &m); err != nil {
		return nil, err
	}

	m.ID = gen.Next()
	m.Name = name
	m.Fields = fields
	m.Templates = templates
	m.Mod = time.Now().Unix()
	m.Req = make([]Requirement, len(templates))
	for i := range templates {
		m.Req[i] = Requirement{TemplateOrd: i, Kind: "all", FieldOrds: []int{i}}
	}
	return &m, nil
}

// FieldNames returns the model's field names in ordinal order.
func (m *Model) FieldNames() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// TemplateNames returns the model's template names in ordinal order.
func (m *Model) TemplateNames() []string {
	names := make([]string, len(m.Templates))
	for i, t := range m.Templates {
		names[i] = t.Name
	}
	return names
}

// TemplateOrdByName resolves a template name to its ordinal.
func (m *Model) TemplateOrdByName(name string) (int, error) {
	for _, t := range m.Templates {
		if t.Name == name {
			return t.Ord, nil
		}
	}
	return 0, errors.NewNotFoundError("template", name)
}

func decode(m map[string]any, out any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func mustDecode(m map[string]any, out any) {
	if err := decode(m, out); err != nil {
		panic("models: corrupt preset: " + err.Error())
	}
}
