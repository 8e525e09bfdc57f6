package typeschema

import (
	"reflect"
	"strings"
)

// AnnotationKind enumerates every annotation the engine understands.
type AnnotationKind int

const (
	// AnnotationName overrides the emitted property name.
	AnnotationName AnnotationKind = iota + 1
	// AnnotationIgnore excludes the member or enum value from the output.
	AnnotationIgnore
	// AnnotationInclude emits a member regardless of its accessibility.
	AnnotationInclude
	// AnnotationRequired forces the member into the required list.
	AnnotationRequired
	// AnnotationOptional keeps the member out of the required list.
	AnnotationOptional
	// AnnotationOverride replaces the computed schema with a literal one.
	AnnotationOverride
	AnnotationTitle
	AnnotationDescription
	AnnotationExample
	AnnotationDeprecated
	AnnotationFormat
	// AnnotationPattern constrains string values with a regular expression.
	AnnotationPattern
	// AnnotationKeyPattern constrains dictionary keys with a regular expression.
	AnnotationKeyPattern
	AnnotationDefault
	AnnotationMinLength
	AnnotationMaxLength
	AnnotationMinItems
	AnnotationMaxItems
	AnnotationMinProperties
	AnnotationMaxProperties
	AnnotationMinimum
	AnnotationMaximum
)

// Annotation is one declared annotation. Flag annotations carry an empty Value.
type Annotation struct {
	Kind  AnnotationKind
	Value string
}

// Annotations is the flat annotation set attached to a type or member.
type Annotations []Annotation

// Has reports whether an annotation of the given kind is present.
func (a Annotations) Has(kind AnnotationKind) bool {
	_, ok := a.Value(kind)
	return ok
}

// Value returns the value of the first annotation of the given kind.
func (a Annotations) Value(kind AnnotationKind) (string, bool) {
	for _, ann := range a {
		if ann.Kind == kind {
			return ann.Value, true
		}
	}
	return "", false
}

// schemaTagKinds maps `schema` tag entry keys to annotation kinds.
var schemaTagKinds = map[string]AnnotationKind{
	"ignore":        AnnotationIgnore,
	"include":       AnnotationInclude,
	"required":      AnnotationRequired,
	"optional":      AnnotationOptional,
	"deprecated":    AnnotationDeprecated,
	"title":         AnnotationTitle,
	"description":   AnnotationDescription,
	"example":       AnnotationExample,
	"format":        AnnotationFormat,
	"pattern":       AnnotationPattern,
	"keyPattern":    AnnotationKeyPattern,
	"default":       AnnotationDefault,
	"minLength":     AnnotationMinLength,
	"maxLength":     AnnotationMaxLength,
	"minItems":      AnnotationMinItems,
	"maxItems":      AnnotationMaxItems,
	"minProperties": AnnotationMinProperties,
	"maxProperties": AnnotationMaxProperties,
	"minimum":       AnnotationMinimum,
	"maximum":       AnnotationMaximum,
}

// ParseStructTag reads the `json`, `schema` and `schemaOverride` struct tags
// into an annotation set. The json tag contributes the emitted name,
// the ignore marker ("-") and optionality ("omitempty"). The schema tag is a
// comma-separated list of flags and key=value entries, e.g.
//
//	`schema:"required,pattern=^[a-z]+$,title=Name"`
//
// The override schema literal lives in its own tag because JSON text contains
// commas:
//
//	`schemaOverride:"{\"type\": \"string\"}"`
func ParseStructTag(tag reflect.StructTag) Annotations {
	var anns Annotations
	if jsonTag, ok := tag.Lookup("json"); ok {
		anns = append(anns, parseJSONTag(jsonTag)...)
	}
	if schemaTag, ok := tag.Lookup("schema"); ok {
		anns = append(anns, parseSchemaTag(schemaTag)...)
	}
	if override, ok := tag.Lookup("schemaOverride"); ok {
		anns = append(anns, Annotation{Kind: AnnotationOverride, Value: override})
	}
	return anns
}

func parseJSONTag(tag string) Annotations {
	parts := strings.Split(tag, ",")
	var anns Annotations
	switch parts[0] {
	case "-":
		if len(parts) == 1 {
			return Annotations{{Kind: AnnotationIgnore}}
		}
		// A field named "-" is encoded as `json:"-,"`.
		anns = append(anns, Annotation{Kind: AnnotationName, Value: "-"})
	case "":
	default:
		anns = append(anns, Annotation{Kind: AnnotationName, Value: parts[0]})
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			anns = append(anns, Annotation{Kind: AnnotationOptional})
		}
	}
	return anns
}

func parseSchemaTag(tag string) Annotations {
	if tag == "-" {
		return Annotations{{Kind: AnnotationIgnore}}
	}
	var anns Annotations
	for _, entry := range strings.Split(tag, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, value, hasValue := strings.Cut(entry, "=")
		kind, known := schemaTagKinds[key]
		if !known {
			continue
		}
		if hasValue {
			anns = append(anns, Annotation{Kind: kind, Value: value})
		} else {
			anns = append(anns, Annotation{Kind: kind})
		}
	}
	return anns
}
