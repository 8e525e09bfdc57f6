package typeschema

// stubType is a hand-assembled descriptor used to drive the engine without
// either adapter.
type stubType struct {
	name        string
	pkg         string
	kind        TypeKind
	members     []MemberDescriptor
	annotations Annotations
	abstract    bool
	subtypes    []TypeDescriptor
	interfaces  []TypeDescriptor
	genericArgs []TypeDescriptor
	enumMembers []EnumMember
	elem        TypeDescriptor
	key         TypeDescriptor
	length      int
	unresolved  bool
}

func (t *stubType) Name() string    { return t.name }
func (t *stubType) Package() string { return t.pkg }

func (t *stubType) QualifiedName() string {
	if t.pkg == "" || t.name == "" {
		return ""
	}
	return t.pkg + "." + t.name
}

func (t *stubType) Kind() TypeKind                       { return t.kind }
func (t *stubType) Members() []MemberDescriptor          { return t.members }
func (t *stubType) Annotations() Annotations             { return t.annotations }
func (t *stubType) Interfaces() []TypeDescriptor         { return t.interfaces }
func (t *stubType) GenericArguments() []TypeDescriptor   { return t.genericArgs }
func (t *stubType) Abstract() bool                       { return t.abstract }
func (t *stubType) Subtypes() []TypeDescriptor           { return t.subtypes }
func (t *stubType) EnumMembers() []EnumMember            { return t.enumMembers }
func (t *stubType) Unresolved() bool                     { return t.unresolved }

func (t *stubType) Base() (TypeDescriptor, bool) {
	for _, member := range t.members {
		if member.Embedded() {
			return member.Type(), true
		}
	}
	return nil, false
}

func (t *stubType) Elem() (TypeDescriptor, bool) {
	if t.elem == nil {
		return nil, false
	}
	return t.elem, true
}

func (t *stubType) Key() (TypeDescriptor, bool) {
	if t.key == nil {
		return nil, false
	}
	return t.key, true
}

func (t *stubType) Len() int {
	if t.kind == KindArray {
		return t.length
	}
	return -1
}

type stubMember struct {
	name        string
	typ         TypeDescriptor
	nullable    bool
	access      Accessibility
	static      bool
	indexer     bool
	writeOnly   bool
	embedded    bool
	annotations Annotations
	defaultVal  string
	hasDefault  bool
}

func (m *stubMember) Name() string                 { return m.name }
func (m *stubMember) Type() TypeDescriptor         { return m.typ }
func (m *stubMember) Nullable() bool               { return m.nullable }
func (m *stubMember) Static() bool                 { return m.static }
func (m *stubMember) Indexer() bool                { return m.indexer }
func (m *stubMember) WriteOnly() bool              { return m.writeOnly }
func (m *stubMember) Embedded() bool               { return m.embedded }
func (m *stubMember) Annotations() Annotations     { return m.annotations }
func (m *stubMember) Default() (string, bool)      { return m.defaultVal, m.hasDefault }

func (m *stubMember) Accessibility() Accessibility {
	if m.access == 0 {
		return AccessPublic
	}
	return m.access
}

func primitiveStub(kind TypeKind) *stubType {
	return &stubType{name: kind.String(), kind: kind}
}

func structStub(pkg, name string, members ...MemberDescriptor) *stubType {
	return &stubType{name: name, pkg: pkg, kind: KindStruct, members: members}
}

func memberStub(name string, typ TypeDescriptor) *stubMember {
	return &stubMember{name: name, typ: typ}
}
