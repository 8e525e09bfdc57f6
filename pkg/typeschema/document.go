package typeschema

import (
	"maps"
	"slices"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// SchemaVersion is the JSON Schema draft this package emits.
const SchemaVersion = "https://json-schema.org/draft/2020-12/schema"

// Document is a fully assembled schema document: the root fragment emitted
// inline, plus the flat definitions table referenced through $defs.
type Document struct {
	// Version is the $schema URI, defaulting to [SchemaVersion].
	Version string
	// ID is the optional $id of the document.
	ID string
	// Root is the root type's fragment, emitted inline at the document root.
	Root *Fragment
	// Definitions maps definition names to their canonical fragments.
	Definitions map[string]*Fragment
}

// assemble turns the accumulated traversal state into a Document. The root
// definition is dropped from $defs unless the traversal referenced it.
func (c *Converter) assemble(root *Fragment) *Document {
	definitions := make(map[string]*Fragment, len(c.ctx.defs))
	for name, frag := range c.ctx.defs {
		if name == c.ctx.rootName && c.ctx.refs[name] <= 0 {
			continue
		}
		definitions[name] = frag
	}
	return &Document{
		Version:     SchemaVersion,
		ID:          c.ctx.opts.SchemaID,
		Root:        root,
		Definitions: definitions,
	}
}

// MarshalJSON emits $schema and $id first, the root fragment's keywords
// inline, and $defs last with its entries sorted by definition name.
// Emission is deterministic: converting the same types twice produces
// byte-identical documents.
func (d *Document) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	version := d.Version
	if version == "" {
		version = SchemaVersion
	}
	w.field("$schema", version)
	if d.ID != "" {
		w.field("$id", d.ID)
	}
	if d.Root != nil {
		rootBytes, err := json.Marshal(d.Root)
		if err != nil {
			return nil, err
		}
		if len(rootBytes) > 0 && rootBytes[0] != '{' {
			return nil, errors.New("root fragment is not a schema object")
		}
		w.spliceObject(rootBytes)
	}
	if len(d.Definitions) > 0 {
		dw := newObjectWriter()
		for _, name := range slices.Sorted(maps.Keys(d.Definitions)) {
			dw.field(name, d.Definitions[name])
		}
		defsBytes, err := dw.finish()
		if err != nil {
			return nil, err
		}
		w.rawField("$defs", defsBytes)
	}
	return w.finish()
}
