package typeschema

import (
	"github.com/nieomylnieja/typeschema/internal/casing"
)

// enumResolver converts enum types. In string mode every member becomes a
// kebab-cased string value unless it carries an explicit value override
// (emitted verbatim) or is ignored (excluded). In underlying mode the schema
// of the enum's underlying primitive substitutes the enum entirely.
type enumResolver struct{}

func (enumResolver) name() string { return "enum" }

func (enumResolver) resolve(c *Converter, td TypeDescriptor) (resolution, error) {
	if td.Kind() != KindEnum {
		return unhandled, nil
	}
	if c.ctx.opts.EnumMode == EnumModeUnderlying {
		underlyingKind := KindInt
		underlyingName := "int"
		if underlying, ok := td.Elem(); ok {
			underlyingKind = underlying.Kind()
			underlyingName = underlying.Name()
		}
		frag, ok := c.primitiveFragment(underlyingKind, underlyingName)
		if !ok {
			return faultWith("enum " + td.Name() + " has a non-primitive underlying type"), nil
		}
		return handledWith(frag), nil
	}
	values := make([]string, 0, len(td.EnumMembers()))
	for _, member := range td.EnumMembers() {
		switch {
		case member.Ignored:
		case member.Value != "":
			values = append(values, member.Value)
		default:
			values = append(values, casing.ToKebab(member.Name))
		}
	}
	return handledWith(&Fragment{
		typ:     "string",
		enum:    values,
		comment: td.Name(),
	}), nil
}
