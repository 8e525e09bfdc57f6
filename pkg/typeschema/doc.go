// Package typeschema converts structural descriptions of types into JSON
// Schema documents.
//
// The engine is representation-agnostic: it consumes the read-only
// [TypeDescriptor] and [MemberDescriptor] interfaces and never depends on
// where a type came from. Two adapters ship with the module:
//
//   - [github.com/nieomylnieja/typeschema/pkg/typeschema/reflectsource]
//     builds descriptors from runtime reflection.
//   - [github.com/nieomylnieja/typeschema/pkg/typeschema/gosource]
//     builds descriptors from parsed source packages and doubles as a
//     [DocProvider], merging doc comments into the output.
//
// # Basic Usage
//
// Convert a type through the reflection adapter:
//
//	source := reflectsource.New()
//	doc, err := typeschema.Convert(source.Describe(Game{}), typeschema.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, err := json.Marshal(doc)
//
// The document carries the root type's schema inline, plus a $defs table
// with one entry per named type reached during traversal. Visiting the same
// type twice yields a $ref to the single shared definition, which is also
// what lets self-referential types convert without infinite recursion.
//
// # Conversion Pipeline
//
// Every visited type runs through a fixed, ordered chain of policy
// resolvers: pointer unwrap, explicit override, string-formatted well-known
// types, enums, primitives, dictionaries, sequences, and finally the
// composite object fallback. Each resolver either handles the type, passes,
// or faults; a fault degrades that one subtree to an $unsupportedObject
// marker carrying a diagnostic, and the rest of the conversion proceeds.
//
// Only two conditions abort a conversion entirely: a root type that cannot
// be resolved at all, and exceeding the configured recursion depth, which
// almost always means an unintended unbounded cycle.
//
// # Configuration
//
// [ConversionOptions] carries every behavioral toggle: the accessibility
// filter, base-type traversal, dictionary key handling, enum and numeric
// representation, the depth bound and the optional documentation provider.
// Options are validated before the conversion starts.
//
// A [Converter] can convert several roots into one shared definitions
// table; it is not safe for concurrent use. Independent conversions that
// must run in parallel each need their own Converter.
package typeschema
