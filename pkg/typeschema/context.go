package typeschema

import "strings"

// conversionContext is the mutable traversal state of one Converter:
// the shared definitions table, the recursion depth counter and the options.
// It is owned by exactly one Converter and must never be shared across
// concurrent conversions; the cross-call sharing of the definitions table is
// what enables structural sharing within one conversion and would
// cross-contaminate unrelated ones.
type conversionContext struct {
	opts  ConversionOptions
	depth int
	// defs maps emitted definition names to their one canonical fragment.
	defs map[string]*Fragment
	// names maps qualified type names to emitted definition names.
	// Definitions default to the simple type name; a collision between
	// same-named types from different packages falls back to the qualified
	// name, which is unique by construction.
	names map[string]string
	// refs counts reference fragments handed out per definition name,
	// used to decide whether the root definition must be emitted.
	refs map[string]int
	// rootName is the definition name of the current root type.
	rootName string
}

func newConversionContext(opts ConversionOptions) *conversionContext {
	return &conversionContext{
		opts:  opts,
		defs:  map[string]*Fragment{},
		names: map[string]string{},
		refs:  map[string]int{},
	}
}

// definitionName resolves the emitted name for a qualified type name,
// claiming it on first use.
func (ctx *conversionContext) definitionName(td TypeDescriptor) string {
	qualified := td.QualifiedName()
	if name, ok := ctx.names[qualified]; ok {
		return name
	}
	name := td.Name()
	if ctx.nameTaken(name, qualified) {
		name = qualified
	}
	ctx.names[qualified] = name
	return name
}

// nameTaken reports whether the emitted name is already claimed by another
// type or reserved by a shared definition, which is registered straight into
// the definitions table without a qualified-name entry.
func (ctx *conversionContext) nameTaken(name, qualified string) bool {
	for owner, defName := range ctx.names {
		if defName == name {
			return owner != qualified
		}
	}
	_, reserved := ctx.defs[name]
	return reserved
}

// lookup returns the registered definition name for a qualified type name.
func (ctx *conversionContext) lookup(qualified string) (string, bool) {
	name, ok := ctx.names[qualified]
	if !ok {
		return "", false
	}
	if _, registered := ctx.defs[name]; !registered {
		return "", false
	}
	return name, true
}

// register places a fragment in the definitions table under the type's
// emitted name. Registration happens before member descent so that cycles
// encountered deeper in the same subtree resolve to a reference instead of
// recursing forever.
func (ctx *conversionContext) register(td TypeDescriptor, frag *Fragment) string {
	name := ctx.definitionName(td)
	ctx.defs[name] = frag
	return name
}

// sharedDefinition registers a fragment under a fixed name (used by the
// strict number mode) and returns a reference to it.
func (ctx *conversionContext) sharedDefinition(name string, frag *Fragment) *Fragment {
	if _, ok := ctx.defs[name]; !ok {
		ctx.defs[name] = frag
	}
	return ctx.refFragment(name)
}

// refFragment creates a fresh reference fragment pointing at a definition.
// Each call site gets its own fragment so member-level constraints never
// leak into sibling references.
func (ctx *conversionContext) refFragment(name string) *Fragment {
	ctx.refs[name]++
	return &Fragment{ref: definitionPointer(name)}
}

// definitionPointer builds the $ref URI for a definition name, escaping
// JSON pointer special characters (package paths contain slashes).
func definitionPointer(name string) string {
	escaped := strings.NewReplacer("~", "~0", "/", "~1").Replace(name)
	return "#/$defs/" + escaped
}
