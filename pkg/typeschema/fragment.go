package typeschema

import (
	"bytes"
	"maps"
	"slices"

	json "github.com/goccy/go-json"
)

// Fragment is a single schema node: either the root of a document, one entry
// of the definitions table, or a nested keyword value. Fragments are built by
// the policy resolvers and must not be mutated once placed in the definitions
// table or returned to the caller.
type Fragment struct {
	// raw short-circuits marshaling with a verbatim schema literal.
	raw json.RawMessage
	// unsupported carries the diagnostic of a degraded subtree and is
	// emitted under the $unsupportedObject keyword.
	unsupported string

	ref         string
	typ         string
	format      string
	title       string
	description string
	comment     string
	deprecated  bool
	defaultVal  json.RawMessage
	examples    []string
	enum        []string
	pattern     string

	minimum json.RawMessage
	maximum json.RawMessage

	minLength *int
	maxLength *int
	minItems  *int
	maxItems  *int
	minProps  *int
	maxProps  *int

	items         *Fragment
	propertyNames *Fragment
	// additional is the dictionary value schema; additionalAllowed is the
	// boolean additionalProperties form. At most one of the two is set.
	additional        *Fragment
	additionalAllowed *bool

	properties map[string]*Fragment
	required   []string
	oneOf      []*Fragment
}

// Ref returns the $ref target of a reference fragment, empty otherwise.
func (f *Fragment) Ref() string { return f.ref }

// Type returns the fragment's JSON type keyword, empty when not set.
func (f *Fragment) Type() string { return f.typ }

// Unsupported returns the diagnostic message of a degraded fragment,
// empty for healthy fragments.
func (f *Fragment) Unsupported() string { return f.unsupported }

func unsupportedFragment(message string) *Fragment {
	return &Fragment{unsupported: message}
}

// nullWrapped unions the given fragment with null at the member site,
// leaving any shared definition untouched.
func nullWrapped(f *Fragment) *Fragment {
	return &Fragment{oneOf: []*Fragment{f, {typ: "null"}}}
}

// MarshalJSON emits the fragment with a fixed keyword order and sorted
// property names, so repeated conversions produce identical bytes.
func (f *Fragment) MarshalJSON() ([]byte, error) {
	if f.raw != nil {
		return f.raw, nil
	}
	w := newObjectWriter()
	if f.ref != "" {
		w.field("$ref", f.ref)
	}
	if f.unsupported != "" {
		w.field("$unsupportedObject", f.unsupported)
	}
	if f.typ != "" {
		w.field("type", f.typ)
	}
	if f.format != "" {
		w.field("format", f.format)
	}
	if f.title != "" {
		w.field("title", f.title)
	}
	if f.description != "" {
		w.field("description", f.description)
	}
	if f.comment != "" {
		w.field("$comment", f.comment)
	}
	if f.deprecated {
		w.field("deprecated", true)
	}
	if f.defaultVal != nil {
		w.rawField("default", f.defaultVal)
	}
	if len(f.examples) > 0 {
		w.field("examples", f.examples)
	}
	if len(f.enum) > 0 {
		w.field("enum", f.enum)
	}
	if f.pattern != "" {
		w.field("pattern", f.pattern)
	}
	if f.minLength != nil {
		w.field("minLength", *f.minLength)
	}
	if f.maxLength != nil {
		w.field("maxLength", *f.maxLength)
	}
	if f.minimum != nil {
		w.rawField("minimum", f.minimum)
	}
	if f.maximum != nil {
		w.rawField("maximum", f.maximum)
	}
	if f.minItems != nil {
		w.field("minItems", *f.minItems)
	}
	if f.maxItems != nil {
		w.field("maxItems", *f.maxItems)
	}
	if f.items != nil {
		w.field("items", f.items)
	}
	if f.minProps != nil {
		w.field("minProperties", *f.minProps)
	}
	if f.maxProps != nil {
		w.field("maxProperties", *f.maxProps)
	}
	if f.propertyNames != nil {
		w.field("propertyNames", f.propertyNames)
	}
	if f.additional != nil {
		w.field("additionalProperties", f.additional)
	} else if f.additionalAllowed != nil {
		w.field("additionalProperties", *f.additionalAllowed)
	}
	if len(f.properties) > 0 {
		pw := newObjectWriter()
		for _, name := range slices.Sorted(maps.Keys(f.properties)) {
			pw.field(name, f.properties[name])
		}
		data, err := pw.finish()
		if err != nil {
			return nil, err
		}
		w.rawField("properties", data)
	}
	if len(f.required) > 0 {
		w.field("required", f.required)
	}
	if len(f.oneOf) > 0 {
		w.field("oneOf", f.oneOf)
	}
	return w.finish()
}

// objectWriter assembles a JSON object with the exact field order it is fed.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) field(name string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		if w.err == nil {
			w.err = err
		}
		return
	}
	w.rawField(name, data)
}

func (w *objectWriter) rawField(name string, value []byte) {
	w.startField(name)
	w.raw(value)
}

func (w *objectWriter) startField(name string) {
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.n++
	quoted, err := json.Marshal(name)
	if err != nil {
		if w.err == nil {
			w.err = err
		}
		return
	}
	w.buf.Write(quoted)
	w.buf.WriteByte(':')
}

func (w *objectWriter) raw(value []byte) {
	w.buf.Write(value)
}

// spliceObject appends another JSON object's fields into this writer.
func (w *objectWriter) spliceObject(obj []byte) {
	trimmed := bytes.TrimSpace(obj)
	if len(trimmed) < 2 || trimmed[0] != '{' || trimmed[len(trimmed)-1] != '}' {
		return
	}
	inner := bytes.TrimSpace(trimmed[1 : len(trimmed)-1])
	if len(inner) == 0 {
		return
	}
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.n++
	w.buf.Write(inner)
}

func (w *objectWriter) finishBytes() []byte {
	w.buf.WriteByte('}')
	return w.buf.Bytes()
}

func (w *objectWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.finishBytes(), nil
}
