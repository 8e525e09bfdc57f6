package typeschema

// TypeKind classifies the shape of a described type.
// Resolvers branch on the kind, never on the concrete descriptor implementation.
type TypeKind int

const (
	KindUnsupported TypeKind = iota
	KindBool
	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindStruct
	KindMap
	KindSlice
	KindArray
	KindPointer
	KindInterface
	KindEnum
)

var kindNames = map[TypeKind]string{
	KindUnsupported: "unsupported",
	KindBool:        "bool",
	KindInt:         "int",
	KindInt8:        "int8",
	KindInt16:       "int16",
	KindInt32:       "int32",
	KindInt64:       "int64",
	KindUint:        "uint",
	KindUint8:       "uint8",
	KindUint16:      "uint16",
	KindUint32:      "uint32",
	KindUint64:      "uint64",
	KindFloat32:     "float32",
	KindFloat64:     "float64",
	KindString:      "string",
	KindStruct:      "struct",
	KindMap:         "map",
	KindSlice:       "slice",
	KindArray:       "array",
	KindPointer:     "pointer",
	KindInterface:   "interface",
	KindEnum:        "enum",
}

func (k TypeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unsupported"
}

// Accessibility is a bit set of member accessibility levels.
// A member carries exactly one level; ConversionOptions carries an OR of
// every level that should be emitted.
type Accessibility uint8

const (
	AccessPublic Accessibility = 1 << iota
	AccessInternal
	AccessProtected
	AccessPrivate
)

// Contains reports whether every level of a is present in s.
func (s Accessibility) Contains(a Accessibility) bool {
	return a != 0 && s&a == a
}

func (s Accessibility) String() string {
	switch s {
	case AccessPublic:
		return "public"
	case AccessInternal:
		return "internal"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	}
	return "mixed"
}

// TypeDescriptor is a read-only view of a declared type, independent of
// whether it originates from runtime reflection or parsed source.
// Implementations must be safe to query repeatedly; the conversion engine
// never mutates descriptors.
type TypeDescriptor interface {
	// Name returns the simple type name. Instantiated generic types keep
	// their bracketed argument list, e.g. "Pair[int]". Unnamed types
	// return an empty string.
	Name() string
	// Package returns the import path of the declaring package, empty for
	// built-in and unnamed types.
	Package() string
	// QualifiedName joins package path and name, and is the key the
	// definitions table deduplicates on. Empty for unnamed types.
	QualifiedName() string
	Kind() TypeKind
	// Members lists declared properties in declaration order. Embedded
	// struct fields appear as members with Embedded() == true and are
	// expanded or skipped by the engine depending on options.
	Members() []MemberDescriptor
	Annotations() Annotations
	// Base returns the first embedded struct type, if any.
	Base() (TypeDescriptor, bool)
	// Interfaces lists known interfaces this type implements.
	Interfaces() []TypeDescriptor
	// GenericArguments lists type arguments of an instantiated generic type.
	GenericArguments() []TypeDescriptor
	// Abstract reports a type that cannot be instantiated directly and is
	// represented by its concrete subtypes.
	Abstract() bool
	// Subtypes lists known concrete implementations of an abstract type.
	Subtypes() []TypeDescriptor
	// EnumMembers lists enum members in declaration order for KindEnum types.
	EnumMembers() []EnumMember
	// Elem returns the element type of pointer, slice, array and map types,
	// and the underlying primitive type of KindEnum types.
	Elem() (TypeDescriptor, bool)
	// Key returns the key type of map types.
	Key() (TypeDescriptor, bool)
	// Len returns the fixed length of array types, -1 otherwise.
	Len() int
	// Unresolved marks a descriptor whose origin could not be resolved,
	// e.g. a missing external reference in source mode.
	Unresolved() bool
}

// MemberDescriptor is a single property of a TypeDescriptor.
type MemberDescriptor interface {
	Name() string
	Type() TypeDescriptor
	// Nullable reports that the member may hold no value; nullable members
	// are emitted as a union with null and are not required by default.
	Nullable() bool
	Accessibility() Accessibility
	// Static, Indexer and WriteOnly members are always excluded from the
	// output. The Go-backed adapters report false for all three; the flags
	// are honored for any other descriptor source.
	Static() bool
	Indexer() bool
	WriteOnly() bool
	// Embedded marks a member whose own members are folded into the owner.
	Embedded() bool
	Annotations() Annotations
	// Default returns the member's default-value literal, if declared.
	Default() (string, bool)
}

// EnumMember is one named member of an enum type.
type EnumMember struct {
	Name string
	// Value is an explicit output literal which bypasses the casing
	// transform. Empty means no override.
	Value string
	// Ignored members are excluded from the output entirely.
	Ignored bool
}

// DocProvider supplies documentation text keyed by qualified type name.
// A nil provider disables documentation merging.
type DocProvider interface {
	TypeDoc(qualifiedName string) (TypeDoc, bool)
}

// TypeDoc carries documentation extracted for one type.
type TypeDoc struct {
	Title       string
	Description string
	Deprecated  string
	Examples    []string
	// Members maps declared member names (not emitted property names)
	// to their documentation.
	Members map[string]MemberDoc
}

// MemberDoc carries documentation extracted for one member.
type MemberDoc struct {
	Description string
	Deprecated  string
	Examples    []string
}
