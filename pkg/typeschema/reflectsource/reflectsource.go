// Package reflectsource builds type descriptors from runtime reflection.
//
// Reflection cannot enumerate the implementations of an interface or the
// members of an enum, so the adapter leans on two conventions: enum types
// implement `Values() []string` (the shape the go-enum generator emits) and
// interface implementations are registered up front with
// [Source.RegisterImplementation].
package reflectsource

import (
	"reflect"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nieomylnieja/typeschema/internal/typeinfo"
	"github.com/nieomylnieja/typeschema/pkg/typeschema"
)

// enumValuer is the go-enum convention: every enum type lists its values in
// declaration order.
type enumValuer interface {
	Values() []string
}

// enumOverrider supplies explicit schema values per enum member name.
// A value of "-" excludes the member from the output.
type enumOverrider interface {
	SchemaEnumOverrides() map[string]string
}

// schemaOverrider supplies a verbatim schema literal for the whole type.
type schemaOverrider interface {
	SchemaOverride() string
}

// descriptorCacheSize bounds the descriptor memoization per Source.
const descriptorCacheSize = 512

// Source builds and memoizes [typeschema.TypeDescriptor] values backed by
// [reflect.Type]. Descriptors are immutable; the same reflect type always
// yields the same descriptor instance. A Source is safe to reuse across
// conversions but not across goroutines.
type Source struct {
	cache *lru.Cache[reflect.Type, *typeDesc]
	impls map[reflect.Type][]reflect.Type
}

func New() *Source {
	// lru.New only fails for non-positive sizes.
	cache, _ := lru.New[reflect.Type, *typeDesc](descriptorCacheSize)
	return &Source{
		cache: cache,
		impls: map[reflect.Type][]reflect.Type{},
	}
}

// Describe returns the descriptor of the value's dynamic type.
func (s *Source) Describe(v any) typeschema.TypeDescriptor {
	t := reflect.TypeOf(v)
	if t == nil {
		return unresolvedDesc{}
	}
	return s.describe(t)
}

// DescribeType returns the descriptor of the given reflect type.
func (s *Source) DescribeType(t reflect.Type) typeschema.TypeDescriptor {
	if t == nil {
		return unresolvedDesc{}
	}
	return s.describe(t)
}

// RegisterImplementation declares concrete implementations of an interface,
// given as a pointer to the interface type:
//
//	source.RegisterImplementation((*Prize)(nil), Trophy{}, Voucher{})
func (s *Source) RegisterImplementation(iface any, impls ...any) {
	it := reflect.TypeOf(iface)
	if it == nil || it.Kind() != reflect.Ptr || it.Elem().Kind() != reflect.Interface {
		return
	}
	it = it.Elem()
	for _, impl := range impls {
		t := reflect.TypeOf(impl)
		if t == nil || !t.Implements(it) {
			continue
		}
		if !slices.Contains(s.impls[it], t) {
			s.impls[it] = append(s.impls[it], t)
		}
	}
}

func (s *Source) describe(t reflect.Type) *typeDesc {
	if cached, ok := s.cache.Get(t); ok {
		return cached
	}
	desc := &typeDesc{src: s, typ: t}
	s.cache.Add(t, desc)
	return desc
}

// typeDesc is a lazy descriptor over a reflect type; members and related
// types are resolved on demand, which keeps construction of cyclic type
// graphs from recursing.
type typeDesc struct {
	src *Source
	typ reflect.Type
}

// Name is non-empty for named and built-in basic types; unnamed composite
// types (slices, maps, pointers, anonymous structs) have no name.
func (d *typeDesc) Name() string { return d.typ.Name() }

func (d *typeDesc) Package() string { return d.typ.PkgPath() }

func (d *typeDesc) QualifiedName() string {
	if d.typ.PkgPath() == "" {
		return ""
	}
	return typeinfo.Get(d.typ).Qualified()
}

func (d *typeDesc) Kind() typeschema.TypeKind {
	if d.isEnum() {
		return typeschema.KindEnum
	}
	return kindOf(d.typ)
}

func (d *typeDesc) isEnum() bool {
	if d.typ.PkgPath() == "" || d.typ.Kind() == reflect.Interface {
		return false
	}
	return d.typ.Implements(enumValuerType) || reflect.PointerTo(d.typ).Implements(enumValuerType)
}

var enumValuerType = reflect.TypeOf((*enumValuer)(nil)).Elem()

func (d *typeDesc) Members() []typeschema.MemberDescriptor {
	if d.typ.Kind() != reflect.Struct {
		return nil
	}
	members := make([]typeschema.MemberDescriptor, 0, d.typ.NumField())
	for i := 0; i < d.typ.NumField(); i++ {
		members = append(members, &memberDesc{src: d.src, field: d.typ.Field(i)})
	}
	return members
}

func (d *typeDesc) Annotations() typeschema.Annotations {
	if d.typ.Kind() == reflect.Interface {
		return nil
	}
	if overrider, ok := zeroValue(d.typ).(schemaOverrider); ok {
		return typeschema.Annotations{
			{Kind: typeschema.AnnotationOverride, Value: overrider.SchemaOverride()},
		}
	}
	return nil
}

func (d *typeDesc) Base() (typeschema.TypeDescriptor, bool) {
	if d.typ.Kind() != reflect.Struct {
		return nil, false
	}
	for i := 0; i < d.typ.NumField(); i++ {
		field := d.typ.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			return d.src.describe(field.Type), true
		}
	}
	return nil, false
}

func (d *typeDesc) Interfaces() []typeschema.TypeDescriptor {
	if d.typ.Kind() == reflect.Interface {
		return nil
	}
	var ifaces []reflect.Type
	for iface := range d.src.impls {
		if d.typ.Implements(iface) {
			ifaces = append(ifaces, iface)
		}
	}
	slices.SortFunc(ifaces, func(a, b reflect.Type) int {
		return strings.Compare(a.String(), b.String())
	})
	descriptors := make([]typeschema.TypeDescriptor, 0, len(ifaces))
	for _, iface := range ifaces {
		descriptors = append(descriptors, d.src.describe(iface))
	}
	return descriptors
}

// GenericArguments is empty in reflection mode; instantiated generic types
// are recognized through their bracketed names instead.
func (d *typeDesc) GenericArguments() []typeschema.TypeDescriptor { return nil }

func (d *typeDesc) Abstract() bool {
	return d.typ.Kind() == reflect.Interface
}

func (d *typeDesc) Subtypes() []typeschema.TypeDescriptor {
	if d.typ.Kind() != reflect.Interface {
		return nil
	}
	impls := d.src.impls[d.typ]
	descriptors := make([]typeschema.TypeDescriptor, 0, len(impls))
	for _, impl := range impls {
		descriptors = append(descriptors, d.src.describe(impl))
	}
	return descriptors
}

func (d *typeDesc) EnumMembers() []typeschema.EnumMember {
	valuer, ok := zeroValue(d.typ).(enumValuer)
	if !ok {
		return nil
	}
	var overrides map[string]string
	if overrider, ok := zeroValue(d.typ).(enumOverrider); ok {
		overrides = overrider.SchemaEnumOverrides()
	}
	values := valuer.Values()
	members := make([]typeschema.EnumMember, 0, len(values))
	for _, value := range values {
		member := typeschema.EnumMember{Name: value}
		if override, ok := overrides[value]; ok {
			if override == "-" {
				member.Ignored = true
			} else {
				member.Value = override
			}
		}
		members = append(members, member)
	}
	return members
}

func (d *typeDesc) Elem() (typeschema.TypeDescriptor, bool) {
	if d.isEnum() {
		return basicDesc{kind: kindOf(d.typ)}, true
	}
	switch d.typ.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Map:
		return d.src.describe(d.typ.Elem()), true
	}
	return nil, false
}

func (d *typeDesc) Key() (typeschema.TypeDescriptor, bool) {
	if d.typ.Kind() != reflect.Map {
		return nil, false
	}
	return d.src.describe(d.typ.Key()), true
}

func (d *typeDesc) Len() int {
	if d.typ.Kind() != reflect.Array {
		return -1
	}
	return d.typ.Len()
}

func (d *typeDesc) Unresolved() bool { return false }

// memberDesc is a struct field viewed as a member.
type memberDesc struct {
	src   *Source
	field reflect.StructField
}

func (m *memberDesc) Name() string { return m.field.Name }

func (m *memberDesc) Type() typeschema.TypeDescriptor {
	return m.src.describe(m.field.Type)
}

func (m *memberDesc) Nullable() bool {
	return m.field.Type.Kind() == reflect.Ptr
}

func (m *memberDesc) Accessibility() typeschema.Accessibility {
	if m.field.IsExported() {
		return typeschema.AccessPublic
	}
	return typeschema.AccessPrivate
}

// Go struct fields are never static, indexers or write-only.
func (m *memberDesc) Static() bool    { return false }
func (m *memberDesc) Indexer() bool   { return false }
func (m *memberDesc) WriteOnly() bool { return false }

func (m *memberDesc) Embedded() bool { return m.field.Anonymous }

func (m *memberDesc) Annotations() typeschema.Annotations {
	return typeschema.ParseStructTag(m.field.Tag)
}

func (m *memberDesc) Default() (string, bool) {
	return m.Annotations().Value(typeschema.AnnotationDefault)
}

// basicDesc is a synthetic descriptor for the underlying primitive of an
// enum type.
type basicDesc struct {
	kind typeschema.TypeKind
}

func (d basicDesc) Name() string                                    { return d.kind.String() }
func (d basicDesc) Package() string                                 { return "" }
func (d basicDesc) QualifiedName() string                           { return "" }
func (d basicDesc) Kind() typeschema.TypeKind                       { return d.kind }
func (d basicDesc) Members() []typeschema.MemberDescriptor          { return nil }
func (d basicDesc) Annotations() typeschema.Annotations             { return nil }
func (d basicDesc) Base() (typeschema.TypeDescriptor, bool)         { return nil, false }
func (d basicDesc) Interfaces() []typeschema.TypeDescriptor         { return nil }
func (d basicDesc) GenericArguments() []typeschema.TypeDescriptor   { return nil }
func (d basicDesc) Abstract() bool                                  { return false }
func (d basicDesc) Subtypes() []typeschema.TypeDescriptor           { return nil }
func (d basicDesc) EnumMembers() []typeschema.EnumMember            { return nil }
func (d basicDesc) Elem() (typeschema.TypeDescriptor, bool)         { return nil, false }
func (d basicDesc) Key() (typeschema.TypeDescriptor, bool)          { return nil, false }
func (d basicDesc) Len() int                                        { return -1 }
func (d basicDesc) Unresolved() bool                                { return false }

// unresolvedDesc stands in for a type that could not be described at all.
type unresolvedDesc struct{}

func (unresolvedDesc) Name() string                                  { return "" }
func (unresolvedDesc) Package() string                               { return "" }
func (unresolvedDesc) QualifiedName() string                         { return "" }
func (unresolvedDesc) Kind() typeschema.TypeKind                     { return typeschema.KindUnsupported }
func (unresolvedDesc) Members() []typeschema.MemberDescriptor        { return nil }
func (unresolvedDesc) Annotations() typeschema.Annotations           { return nil }
func (unresolvedDesc) Base() (typeschema.TypeDescriptor, bool)       { return nil, false }
func (unresolvedDesc) Interfaces() []typeschema.TypeDescriptor       { return nil }
func (unresolvedDesc) GenericArguments() []typeschema.TypeDescriptor { return nil }
func (unresolvedDesc) Abstract() bool                                { return false }
func (unresolvedDesc) Subtypes() []typeschema.TypeDescriptor         { return nil }
func (unresolvedDesc) EnumMembers() []typeschema.EnumMember          { return nil }
func (unresolvedDesc) Elem() (typeschema.TypeDescriptor, bool)       { return nil, false }
func (unresolvedDesc) Key() (typeschema.TypeDescriptor, bool)        { return nil, false }
func (unresolvedDesc) Len() int                                      { return -1 }
func (unresolvedDesc) Unresolved() bool                              { return true }

func kindOf(t reflect.Type) typeschema.TypeKind {
	switch t.Kind() {
	case reflect.Bool:
		return typeschema.KindBool
	case reflect.Int:
		return typeschema.KindInt
	case reflect.Int8:
		return typeschema.KindInt8
	case reflect.Int16:
		return typeschema.KindInt16
	case reflect.Int32:
		return typeschema.KindInt32
	case reflect.Int64:
		return typeschema.KindInt64
	case reflect.Uint:
		return typeschema.KindUint
	case reflect.Uint8:
		return typeschema.KindUint8
	case reflect.Uint16:
		return typeschema.KindUint16
	case reflect.Uint32:
		return typeschema.KindUint32
	case reflect.Uint64:
		return typeschema.KindUint64
	case reflect.Float32:
		return typeschema.KindFloat32
	case reflect.Float64:
		return typeschema.KindFloat64
	case reflect.String:
		return typeschema.KindString
	case reflect.Struct:
		return typeschema.KindStruct
	case reflect.Map:
		return typeschema.KindMap
	case reflect.Slice:
		return typeschema.KindSlice
	case reflect.Array:
		return typeschema.KindArray
	case reflect.Ptr:
		return typeschema.KindPointer
	case reflect.Interface:
		return typeschema.KindInterface
	default:
		return typeschema.KindUnsupported
	}
}

// zeroValue materializes a callable zero value of t, falling back to a
// pointer when methods use pointer receivers.
func zeroValue(t reflect.Type) any {
	if t.Kind() == reflect.Interface {
		return nil
	}
	v := reflect.Zero(t).Interface()
	if _, ok := v.(enumValuer); ok {
		return v
	}
	if _, ok := v.(enumOverrider); ok {
		return v
	}
	if _, ok := v.(schemaOverrider); ok {
		return v
	}
	return reflect.New(t).Interface()
}
