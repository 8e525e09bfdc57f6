package typeschema

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// nullableResolver unwraps pointer types and converts the element type.
// The union with null happens at the member site, not here, so the shared
// definition of the element type stays null-free.
type nullableResolver struct{}

func (nullableResolver) name() string { return "nullable" }

func (nullableResolver) resolve(c *Converter, td TypeDescriptor) (resolution, error) {
	if td.Kind() != KindPointer {
		return unhandled, nil
	}
	elem, ok := td.Elem()
	if !ok {
		return faultWith(fmt.Sprintf("pointer type %s has no resolvable element", td.Name())), nil
	}
	frag, err := c.convertType(elem)
	if err != nil {
		return resolution{}, err
	}
	return handledWith(frag), nil
}

// formatResolver maps well-known value types to string schemas with a format
// keyword. The $comment records the source type name for traceability.
type formatResolver struct{}

// stringFormats keys are qualified type names.
var stringFormats = map[string]string{
	"time.Time":                   "date-time",
	"time.Duration":               "duration",
	"github.com/google/uuid.UUID": "uuid",
	"net/url.URL":                 "uri",
}

// rawMessageTypes are emitted as free-form objects.
var rawMessageTypes = map[string]bool{
	"encoding/json.RawMessage":            true,
	"github.com/goccy/go-json.RawMessage": true,
}

func (formatResolver) name() string { return "format" }

func (formatResolver) resolve(_ *Converter, td TypeDescriptor) (resolution, error) {
	qn := td.QualifiedName()
	if format, ok := stringFormats[qn]; ok {
		return handledWith(&Fragment{
			typ:     "string",
			format:  format,
			comment: td.Name(),
		}), nil
	}
	if rawMessageTypes[qn] {
		allowed := true
		return handledWith(&Fragment{
			typ:               "object",
			comment:           td.Name(),
			additionalAllowed: &allowed,
		}), nil
	}
	return unhandled, nil
}

// primitiveResolver maps primitive kinds to their JSON types with the exact
// numeric range of each primitive.
type primitiveResolver struct{}

// integerBounds holds exact ranges as JSON literals so that 64-bit bounds
// survive emission without floating-point rounding.
var integerBounds = map[TypeKind][2]string{
	KindInt8:   {"-128", "127"},
	KindInt16:  {"-32768", "32767"},
	KindInt32:  {"-2147483648", "2147483647"},
	KindInt64:  {"-9223372036854775808", "9223372036854775807"},
	KindInt:    {"-9223372036854775808", "9223372036854775807"},
	KindUint8:  {"0", "255"},
	KindUint16: {"0", "65535"},
	KindUint32: {"0", "4294967295"},
	KindUint64: {"0", "18446744073709551615"},
	KindUint:   {"0", "18446744073709551615"},
}

// Floating-point kinds all report the saturated decimal range instead of
// their true IEEE ranges. The original generator this engine reproduces
// clamped float, double and decimal alike; consumers depend on these exact
// literals, so they are kept verbatim.
const (
	floatMinimum = "-7.922816251426434e+28"
	floatMaximum = "7.922816251426434e+28"
)

func (primitiveResolver) name() string { return "primitive" }

func (primitiveResolver) resolve(c *Converter, td TypeDescriptor) (resolution, error) {
	frag, ok := c.primitiveFragment(td.Kind(), td.Name())
	if !ok {
		return unhandled, nil
	}
	return handledWith(frag), nil
}

// primitiveFragment builds the schema of a primitive kind under the given
// source type name. It reports false for non-primitive kinds.
func (c *Converter) primitiveFragment(kind TypeKind, name string) (*Fragment, bool) {
	var frag *Fragment
	switch {
	case kind == KindBool:
		frag = &Fragment{typ: "boolean", comment: name}
	case kind == KindString:
		frag = &Fragment{typ: "string", comment: name}
	case kind == KindFloat32 || kind == KindFloat64:
		frag = &Fragment{typ: "number", comment: name}
		if c.ctx.opts.NumberMode != NumberModeNative {
			frag.minimum = json.RawMessage(floatMinimum)
			frag.maximum = json.RawMessage(floatMaximum)
		}
	default:
		bounds, ok := integerBounds[kind]
		if !ok {
			return nil, false
		}
		frag = &Fragment{typ: "integer", comment: name}
		if c.ctx.opts.NumberMode != NumberModeNative {
			frag.minimum = json.RawMessage(bounds[0])
			frag.maximum = json.RawMessage(bounds[1])
		}
	}
	if c.ctx.opts.NumberMode == NumberModeStrict && frag.typ != "boolean" && frag.typ != "string" {
		return c.ctx.sharedDefinition(name, frag), true
	}
	return frag, true
}
