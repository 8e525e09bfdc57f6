package typeschema

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// overrideResolver emits a type-level schema-override literal verbatim.
// Member-level overrides are intercepted by the object resolver before
// member recursion; both paths share overrideFragment.
type overrideResolver struct{}

func (overrideResolver) name() string { return "override" }

func (overrideResolver) resolve(_ *Converter, td TypeDescriptor) (resolution, error) {
	literal, ok := td.Annotations().Value(AnnotationOverride)
	if !ok {
		return unhandled, nil
	}
	return overrideFragment(literal, td.Name()), nil
}

// overrideFragment validates the literal and returns it as a raw fragment.
// A malformed literal degrades to an unsupported marker carrying the parse
// error, never failing the whole conversion.
func overrideFragment(literal, origin string) resolution {
	var probe any
	if err := json.Unmarshal([]byte(literal), &probe); err != nil {
		return faultWith(fmt.Sprintf("malformed schema override on %s: %v", origin, err))
	}
	return handledWith(&Fragment{raw: json.RawMessage(literal)})
}
