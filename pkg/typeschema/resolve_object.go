package typeschema

import (
	"fmt"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/nieomylnieja/typeschema/internal/casing"
)

// convertComposite is the fallback stage of the resolver pipeline: concrete
// types become objects with filtered members, abstract types fan out into a
// oneOf of their known subtypes. Named composites are registered in the
// definitions table before member descent, so self-referential types resolve
// to a reference instead of recursing forever.
func (c *Converter) convertComposite(td TypeDescriptor) (*Fragment, error) {
	switch td.Kind() {
	case KindStruct, KindInterface:
	case KindUnsupported:
		return unsupportedFragment(fmt.Sprintf("type %s is not representable in a schema", displayName(td))), nil
	default:
		// Every representable kind is claimed by an earlier resolver;
		// reaching this point is a pipeline ordering defect.
		return nil, errors.Errorf("no policy resolver claimed type %s of kind %s", displayName(td), td.Kind())
	}

	if td.QualifiedName() == "" {
		// Anonymous composite: built inline, never registered.
		frag := &Fragment{}
		if err := c.fillComposite(frag, td); err != nil {
			return nil, err
		}
		return frag, nil
	}

	frag := &Fragment{}
	name := c.ctx.register(td, frag)
	if err := c.fillComposite(frag, td); err != nil {
		return nil, err
	}
	if isGenericInstance(td) {
		c.recordGenericInstance(td, name)
	}
	if c.ctx.opts.IncludeInterfaces && !td.Abstract() {
		if err := c.recordInterfaces(td, name); err != nil {
			return nil, err
		}
	}
	return c.ctx.refFragment(name), nil
}

func (c *Converter) fillComposite(frag *Fragment, td TypeDescriptor) error {
	if td.Abstract() {
		return c.fillAbstract(frag, td)
	}
	return c.fillObject(frag, td)
}

// fillAbstract emits a oneOf of references to every known concrete subtype,
// each converted and registered on its own.
func (c *Converter) fillAbstract(frag *Fragment, td TypeDescriptor) error {
	subtypes := td.Subtypes()
	if len(subtypes) == 0 {
		*frag = *unsupportedFragment(fmt.Sprintf("no concrete subtypes known for abstract type %s", displayName(td)))
		return nil
	}
	c.applyTypeMetadata(frag, td)
	for _, subtype := range subtypes {
		subFrag, err := c.convertType(subtype)
		if err != nil {
			return err
		}
		frag.oneOf = append(frag.oneOf, subFrag)
	}
	return nil
}

// fillObject emits a closed object with every eligible member.
func (c *Converter) fillObject(frag *Fragment, td TypeDescriptor) error {
	frag.typ = "object"
	c.applyTypeMetadata(frag, td)
	properties := map[string]*Fragment{}
	var required []string
	if err := c.collectMembers(td, properties, &required); err != nil {
		return err
	}
	frag.properties = properties
	frag.required = required
	closed := false
	frag.additionalAllowed = &closed
	return nil
}

// collectMembers walks the members of source, folding embedded base types in
// when configured. Members keep their declaring type through the recursion,
// so documentation lookups for embedded members resolve against the base
// type that actually declares them. Later (more deeply declared) members
// override embedded ones of the same emitted name, matching field shadowing
// semantics.
func (c *Converter) collectMembers(
	source TypeDescriptor,
	properties map[string]*Fragment,
	required *[]string,
) error {
	for _, member := range source.Members() {
		if member.Embedded() {
			if !c.ctx.opts.TraverseBaseTypes {
				continue
			}
			base := member.Type()
			if base.Kind() == KindPointer {
				if elem, ok := base.Elem(); ok {
					base = elem
				}
			}
			if base.Kind() != KindStruct {
				continue
			}
			if err := c.collectMembers(base, properties, required); err != nil {
				return err
			}
			continue
		}
		if !c.includeMember(member) {
			continue
		}
		name := emittedName(member)
		frag, isRequired, err := c.convertMember(source, member)
		if err != nil {
			return err
		}
		properties[name] = frag
		if isRequired && !slices.Contains(*required, name) {
			*required = append(*required, name)
		} else if !isRequired {
			if i := slices.Index(*required, name); i >= 0 {
				*required = slices.Delete(*required, i, i+1)
			}
		}
	}
	return nil
}

// includeMember applies the eligibility filter: static, indexer, write-only
// and ignored members are always excluded; the rest must either fall within
// the configured accessibility levels or carry an explicit include annotation.
func (c *Converter) includeMember(member MemberDescriptor) bool {
	annotations := member.Annotations()
	if annotations.Has(AnnotationIgnore) {
		return false
	}
	if member.Static() || member.Indexer() || member.WriteOnly() {
		return false
	}
	if c.ctx.opts.Accessibility.Contains(member.Accessibility()) {
		return true
	}
	return annotations.Has(AnnotationInclude)
}

// emittedName picks the output property name: the explicit name annotation
// when present, the camel-cased member name otherwise.
func emittedName(member MemberDescriptor) string {
	if name, ok := member.Annotations().Value(AnnotationName); ok {
		return name
	}
	return casing.ToCamel(member.Name())
}

// convertMember computes the schema fragment of one member and whether the
// member is required. A member is required when explicitly annotated so, or
// when it is non-nullable, has no default value and is not annotated
// optional. The declaring type is the one the member is declared on, which
// for embedded members is the base type, not the outer object.
func (c *Converter) convertMember(declaring TypeDescriptor, member MemberDescriptor) (*Fragment, bool, error) {
	annotations := member.Annotations()
	var frag *Fragment
	if literal, ok := annotations.Value(AnnotationOverride); ok {
		frag = overrideFragment(literal, declaring.Name()+"."+member.Name()).fragment
	} else {
		var err error
		frag, err = c.convertType(member.Type())
		if err != nil {
			return nil, false, err
		}
	}
	if member.Nullable() {
		frag = nullWrapped(frag)
	}
	c.applyMemberAnnotations(frag, annotations)
	c.applyMemberDocs(frag, declaring, member)

	_, hasDefault := member.Default()
	required := annotations.Has(AnnotationRequired) ||
		(!member.Nullable() && !hasDefault && !annotations.Has(AnnotationDefault) && !annotations.Has(AnnotationOptional))
	return frag, required, nil
}

// applyMemberAnnotations layers member-level constraint and metadata
// annotations onto the member-site fragment. Reference fragments are created
// per call site, so the constraints never leak into the shared definition.
func (c *Converter) applyMemberAnnotations(frag *Fragment, annotations Annotations) {
	if frag.raw != nil {
		// Verbatim overrides are emitted untouched.
		return
	}
	if title, ok := annotations.Value(AnnotationTitle); ok {
		frag.title = title
	}
	if description, ok := annotations.Value(AnnotationDescription); ok {
		frag.description = description
	}
	if example, ok := annotations.Value(AnnotationExample); ok {
		frag.examples = append(frag.examples, example)
	}
	if annotations.Has(AnnotationDeprecated) {
		frag.deprecated = true
	}
	if format, ok := annotations.Value(AnnotationFormat); ok {
		frag.format = format
	}
	if pattern, ok := annotations.Value(AnnotationPattern); ok {
		frag.pattern = pattern
	}
	if keyPattern, ok := annotations.Value(AnnotationKeyPattern); ok && frag.additional != nil {
		frag.propertyNames = &Fragment{pattern: keyPattern}
	}
	if value, ok := annotations.Value(AnnotationDefault); ok {
		frag.defaultVal = defaultLiteral(value)
	}
	if value, ok := annotations.Value(AnnotationMinimum); ok {
		frag.minimum = json.RawMessage(value)
	}
	if value, ok := annotations.Value(AnnotationMaximum); ok {
		frag.maximum = json.RawMessage(value)
	}
	frag.minLength = intAnnotation(annotations, AnnotationMinLength, frag.minLength)
	frag.maxLength = intAnnotation(annotations, AnnotationMaxLength, frag.maxLength)
	frag.minItems = intAnnotation(annotations, AnnotationMinItems, frag.minItems)
	frag.maxItems = intAnnotation(annotations, AnnotationMaxItems, frag.maxItems)
	frag.minProps = intAnnotation(annotations, AnnotationMinProperties, frag.minProps)
	frag.maxProps = intAnnotation(annotations, AnnotationMaxProperties, frag.maxProps)
}

// applyMemberDocs fills metadata gaps from the doc provider; explicit
// annotations always win. The lookup runs against the member's declaring
// type, so embedded members folded into an outer object still find the
// docs of the base type declaring them.
func (c *Converter) applyMemberDocs(frag *Fragment, declaring TypeDescriptor, member MemberDescriptor) {
	if c.ctx.opts.Docs == nil || frag.raw != nil {
		return
	}
	typeDoc, ok := c.ctx.opts.Docs.TypeDoc(declaring.QualifiedName())
	if !ok {
		return
	}
	memberDoc, ok := typeDoc.Members[member.Name()]
	if !ok {
		return
	}
	if frag.description == "" {
		frag.description = memberDoc.Description
	}
	if memberDoc.Deprecated != "" {
		frag.deprecated = true
	}
	if len(frag.examples) == 0 {
		frag.examples = memberDoc.Examples
	}
}

// applyTypeMetadata merges type-level annotations and documentation into a
// definition fragment.
func (c *Converter) applyTypeMetadata(frag *Fragment, td TypeDescriptor) {
	annotations := td.Annotations()
	if title, ok := annotations.Value(AnnotationTitle); ok {
		frag.title = title
	}
	if description, ok := annotations.Value(AnnotationDescription); ok {
		frag.description = description
	}
	if annotations.Has(AnnotationDeprecated) {
		frag.deprecated = true
	}
	if c.ctx.opts.Docs == nil {
		return
	}
	typeDoc, ok := c.ctx.opts.Docs.TypeDoc(td.QualifiedName())
	if !ok {
		return
	}
	if frag.title == "" {
		frag.title = typeDoc.Title
	}
	if frag.description == "" {
		frag.description = typeDoc.Description
	}
	if typeDoc.Deprecated != "" {
		frag.deprecated = true
	}
	if len(frag.examples) == 0 {
		frag.examples = typeDoc.Examples
	}
}

// isGenericInstance recognizes instantiated generic types either through
// reported type arguments or through the bracketed name reflection produces.
func isGenericInstance(td TypeDescriptor) bool {
	return len(td.GenericArguments()) > 0 || strings.Contains(td.Name(), "[")
}

// recordGenericInstance accumulates the instantiation under a synthetic open
// definition named after the generic type without its argument list. Every
// concrete instantiation encountered during the conversion becomes one oneOf
// variant of the open definition.
func (c *Converter) recordGenericInstance(td TypeDescriptor, defName string) {
	openName, _, found := strings.Cut(td.Name(), "[")
	if !found || openName == "" {
		return
	}
	open, ok := c.ctx.defs[openName]
	if !ok {
		open = &Fragment{comment: "open generic type " + openName}
		c.ctx.defs[openName] = open
	}
	ref := definitionPointer(defName)
	for _, variant := range open.oneOf {
		if variant.ref == ref {
			return
		}
	}
	open.oneOf = append(open.oneOf, c.ctx.refFragment(defName))
}

// recordInterfaces makes every interface the type implements an open
// definition accumulating this type as a oneOf variant.
func (c *Converter) recordInterfaces(td TypeDescriptor, defName string) error {
	for _, iface := range td.Interfaces() {
		if iface.QualifiedName() == "" {
			continue
		}
		ifaceName, ok := c.ctx.lookup(iface.QualifiedName())
		if !ok {
			if _, err := c.convertType(iface); err != nil {
				return err
			}
			ifaceName, ok = c.ctx.lookup(iface.QualifiedName())
			if !ok {
				continue
			}
		}
		ifaceFrag := c.ctx.defs[ifaceName]
		ref := definitionPointer(defName)
		exists := slices.ContainsFunc(ifaceFrag.oneOf, func(variant *Fragment) bool {
			return variant.ref == ref
		})
		if !exists && ifaceFrag.unsupported == "" {
			ifaceFrag.oneOf = append(ifaceFrag.oneOf, c.ctx.refFragment(defName))
		}
		if ifaceFrag.unsupported != "" {
			// An abstract type without registered subtypes gains its first
			// variant here; clear the marker and start the union.
			*ifaceFrag = Fragment{oneOf: []*Fragment{c.ctx.refFragment(defName)}}
		}
	}
	return nil
}

func defaultLiteral(value string) json.RawMessage {
	if json.Valid([]byte(value)) {
		return json.RawMessage(value)
	}
	quoted, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return json.RawMessage(quoted)
}

func intAnnotation(annotations Annotations, kind AnnotationKind, current *int) *int {
	value, ok := annotations.Value(kind)
	if !ok {
		return current
	}
	var parsed int
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		return current
	}
	return &parsed
}
