package typeschema

import (
	"github.com/pkg/errors"
)

// Converter drives the recursive conversion of type descriptors into schema
// fragments, sharing one definitions table across every root it converts.
// A Converter is not safe for concurrent use; conversions that must run in
// parallel each need their own Converter.
type Converter struct {
	ctx *conversionContext
}

// NewConverter validates the options and returns a Converter with an empty
// definitions table.
func NewConverter(opts ConversionOptions) (*Converter, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Converter{ctx: newConversionContext(opts)}, nil
}

// Convert converts a single root type with its own definitions table and
// assembles the final document.
func Convert(td TypeDescriptor, opts ConversionOptions) (*Document, error) {
	c, err := NewConverter(opts)
	if err != nil {
		return nil, err
	}
	return c.Convert(td)
}

// Convert converts the given root type and assembles a document from its
// fragment and the definitions accumulated so far. The root fragment is
// emitted inline; its definitions-table entry appears under $defs only when
// the traversal referenced it, i.e. when the type graph cycles through the
// root. The caller receives either a complete document or an error, never a
// silently truncated document; degraded subtrees are visible as
// $unsupportedObject markers.
func (c *Converter) Convert(td TypeDescriptor) (*Document, error) {
	if td == nil {
		return nil, errors.New("cannot convert a nil type descriptor")
	}
	if td.Unresolved() {
		return nil, errors.Errorf("root type %s cannot be resolved", td.Name())
	}
	c.ctx.depth = 0
	frag, err := c.convertType(td)
	if err != nil {
		return nil, err
	}
	root := frag
	rootName, rootDefined := c.ctx.lookup(td.QualifiedName())
	if rootDefined {
		// The conversion returned a reference; inline the definition
		// itself and discount the reference we are replacing.
		root = c.ctx.defs[rootName]
		c.ctx.refs[rootName]--
		c.ctx.rootName = rootName
	}
	return c.assemble(root), nil
}

// ConvertInto converts every given root into the Converter's shared
// definitions table and assembles one document holding all of them under
// $defs, with no inline root. Callers use it to publish a single document
// covering several related types.
func (c *Converter) ConvertInto(tds ...TypeDescriptor) (*Document, error) {
	for _, td := range tds {
		if td == nil {
			return nil, errors.New("cannot convert a nil type descriptor")
		}
		if td.Unresolved() {
			return nil, errors.Errorf("root type %s cannot be resolved", td.Name())
		}
		c.ctx.depth = 0
		if _, err := c.convertType(td); err != nil {
			return nil, err
		}
	}
	c.ctx.rootName = ""
	return c.assemble(nil), nil
}

// convertType is the recursive driver. It transitions between three states:
// Referencing when the type already has a definition (which is what breaks
// reference cycles), Exceeded when the next visit would pass the depth bound
// (a fatal error for the whole conversion), and Visiting otherwise, in which
// case the resolver pipeline runs and the composite fallback claims whatever
// the specialized resolvers left.
func (c *Converter) convertType(td TypeDescriptor) (*Fragment, error) {
	if td == nil {
		return unsupportedFragment("unresolved type reference"), nil
	}
	if td.Unresolved() {
		return unsupportedFragment("type " + displayName(td) + " could not be resolved"), nil
	}
	if name, ok := c.ctx.lookup(td.QualifiedName()); ok {
		return c.ctx.refFragment(name), nil
	}
	if c.ctx.depth+1 > c.ctx.opts.MaxDepth {
		return nil, errors.Errorf(
			"maximum recursion depth %d exceeded at type %s; the type graph almost certainly contains an unintended unbounded cycle",
			c.ctx.opts.MaxDepth, displayName(td),
		)
	}
	c.ctx.depth++
	defer func() { c.ctx.depth-- }()

	for _, r := range pipeline {
		res, err := r.resolve(c, td)
		if err != nil {
			return nil, errors.Wrapf(err, "%s resolver failed on type %s", r.name(), displayName(td))
		}
		if res.state != notHandled {
			return res.fragment, nil
		}
	}
	return c.convertComposite(td)
}

func displayName(td TypeDescriptor) string {
	if qualified := td.QualifiedName(); qualified != "" {
		return qualified
	}
	if name := td.Name(); name != "" {
		return name
	}
	return "(unnamed " + td.Kind().String() + ")"
}
