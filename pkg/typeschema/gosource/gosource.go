// Package gosource builds type descriptors from parsed Go source packages.
//
// Unlike the reflection adapter it sees declarations, not values: it can
// enumerate the package-level constants of an enum type, discover every
// concrete implementation of an interface across the loaded packages, and
// read doc comments. A [Source] therefore also implements
// [typeschema.DocProvider].
package gosource

import (
	"go/ast"
	"go/doc/comment"
	"go/token"
	"go/types"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"

	"github.com/nieomylnieja/typeschema/internal/pathutils"
	"github.com/nieomylnieja/typeschema/pkg/typeschema"
)

// Source holds the loaded packages and memoized descriptors.
// It is not safe for concurrent use.
type Source struct {
	pkgs  map[string]*goPackage
	descs map[types.Type]*typeDesc
	docs  map[string]docEntry
}

// Load parses and type-checks every package under the module rooted at dir.
// An empty dir starts the search for the module root at the current working
// directory.
func Load(dir string) (*Source, error) {
	if dir == "" {
		root, err := pathutils.FindModuleRoot()
		if err != nil {
			return nil, err
		}
		dir = root
	}
	// Load complete type information for the packages,
	// along with type-annotated syntax.
	conf := &packages.Config{
		Dir: dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedDeps |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(conf, "./...")
	if err != nil {
		return nil, errors.Wrap(err, "failed to load packages")
	}
	if err = checkForPackageErrors(pkgs); err != nil {
		return nil, err
	}
	s := &Source{
		pkgs:  make(map[string]*goPackage, len(pkgs)),
		descs: map[types.Type]*typeDesc{},
		docs:  map[string]docEntry{},
	}
	s.collectAllPackages(pkgs)
	return s, nil
}

// Describe returns the descriptor of a named type declared in one of the
// loaded packages. A type that cannot be found yields a descriptor marked
// unresolved rather than an error, so nested references to it degrade to an
// unsupported marker instead of a crash.
func (s *Source) Describe(pkgPath, name string) typeschema.TypeDescriptor {
	pkg, ok := s.pkgs[pkgPath]
	if !ok {
		return unresolvedDesc{name: name}
	}
	obj := pkg.pkg.Types.Scope().Lookup(name)
	if obj == nil {
		return unresolvedDesc{name: name}
	}
	typeName, ok := obj.(*types.TypeName)
	if !ok {
		return unresolvedDesc{name: name}
	}
	return s.describe(typeName.Type())
}

func (s *Source) describe(typ types.Type) *typeDesc {
	typ = types.Unalias(typ)
	if cached, ok := s.descs[typ]; ok {
		return cached
	}
	desc := &typeDesc{src: s, typ: typ}
	s.descs[typ] = desc
	return desc
}

type goPackage struct {
	pkg *packages.Package
	// commentParser is created lazily on first documentation lookup.
	commentParser *comment.Parser
}

// collectAllPackages recursively adds all packages and their imports to the source's map.
func (s *Source) collectAllPackages(pkgs []*packages.Package) {
	for _, pkg := range pkgs {
		if _, exists := s.pkgs[pkg.PkgPath]; exists {
			continue
		}
		s.pkgs[pkg.PkgPath] = &goPackage{pkg: pkg}
		if len(pkg.Imports) > 0 {
			s.collectAllPackages(slices.Collect(maps.Values(pkg.Imports)))
		}
	}
}

func checkForPackageErrors(pkgs []*packages.Package) (err error) {
	packages.Visit(pkgs, func(pkg *packages.Package) bool {
		for _, err = range pkg.Errors {
			err = errors.Wrapf(err, "package %s has reported an error", pkg.PkgPath)
			return false
		}
		mod := pkg.Module
		if mod != nil && mod.Error != nil {
			err = errors.New(mod.Error.Err)
			return false
		}
		return true
	}, nil)
	return err
}

// typeDesc is a descriptor over a type-checked [types.Type].
type typeDesc struct {
	src *Source
	typ types.Type
}

func (d *typeDesc) named() (*types.Named, bool) {
	named, ok := d.typ.(*types.Named)
	return named, ok
}

func (d *typeDesc) Name() string {
	if named, ok := d.named(); ok {
		return namedTypeName(named)
	}
	if basic, ok := d.typ.(*types.Basic); ok {
		return basic.Name()
	}
	return ""
}

func (d *typeDesc) Package() string {
	named, ok := d.named()
	if !ok || named.Obj().Pkg() == nil {
		return ""
	}
	return named.Obj().Pkg().Path()
}

func (d *typeDesc) QualifiedName() string {
	name := d.Name()
	if name == "" {
		return ""
	}
	if pkgPath := d.Package(); pkgPath != "" {
		return pkgPath + "." + name
	}
	if _, ok := d.typ.(*types.Basic); ok {
		// Built-in basic types have no package but are still identifiable.
		return ""
	}
	return name
}

func (d *typeDesc) Kind() typeschema.TypeKind {
	if d.isEnum() {
		return typeschema.KindEnum
	}
	return kindOf(d.typ)
}

// isEnum recognizes a named basic type with at least one package-level
// constant of that exact type.
func (d *typeDesc) isEnum() bool {
	named, ok := d.named()
	if !ok || named.Obj().Pkg() == nil {
		return false
	}
	basic, ok := named.Underlying().(*types.Basic)
	if !ok || basic.Kind() == types.Bool {
		return false
	}
	return len(d.enumConsts()) > 0
}

// enumConsts lists the package-level constants of this type in declaration
// order.
func (d *typeDesc) enumConsts() []*types.Const {
	named, ok := d.named()
	if !ok || named.Obj().Pkg() == nil {
		return nil
	}
	scope := named.Obj().Pkg().Scope()
	var consts []*types.Const
	for _, name := range scope.Names() {
		if c, ok := scope.Lookup(name).(*types.Const); ok && types.Identical(c.Type(), d.typ) {
			consts = append(consts, c)
		}
	}
	slices.SortFunc(consts, func(a, b *types.Const) int {
		return int(a.Pos()) - int(b.Pos())
	})
	return consts
}

func (d *typeDesc) Members() []typeschema.MemberDescriptor {
	structType, ok := d.typ.Underlying().(*types.Struct)
	if !ok {
		return nil
	}
	members := make([]typeschema.MemberDescriptor, 0, structType.NumFields())
	for i := 0; i < structType.NumFields(); i++ {
		members = append(members, &memberDesc{
			src:   d.src,
			field: structType.Field(i),
			tag:   reflect.StructTag(structType.Tag(i)),
		})
	}
	return members
}

// Annotations are empty in source mode; type-level metadata flows in through
// the documentation provider instead.
func (d *typeDesc) Annotations() typeschema.Annotations { return nil }

func (d *typeDesc) Base() (typeschema.TypeDescriptor, bool) {
	structType, ok := d.typ.Underlying().(*types.Struct)
	if !ok {
		return nil, false
	}
	for i := 0; i < structType.NumFields(); i++ {
		field := structType.Field(i)
		if field.Embedded() {
			if _, isStruct := field.Type().Underlying().(*types.Struct); isStruct {
				return d.src.describe(field.Type()), true
			}
		}
	}
	return nil, false
}

func (d *typeDesc) Interfaces() []typeschema.TypeDescriptor {
	if d.Abstract() {
		return nil
	}
	var found []*types.Named
	d.src.eachNamedType(func(named *types.Named) {
		iface, ok := named.Underlying().(*types.Interface)
		if !ok || iface.Empty() {
			return
		}
		if implementedBy(d.typ, iface) {
			found = append(found, named)
		}
	})
	sortNamed(found)
	return d.src.describeAll(found)
}

func (d *typeDesc) GenericArguments() []typeschema.TypeDescriptor {
	named, ok := d.named()
	if !ok {
		return nil
	}
	targs := named.TypeArgs()
	if targs == nil || targs.Len() == 0 {
		return nil
	}
	args := make([]typeschema.TypeDescriptor, 0, targs.Len())
	for i := 0; i < targs.Len(); i++ {
		args = append(args, d.src.describe(targs.At(i)))
	}
	return args
}

func (d *typeDesc) Abstract() bool {
	_, ok := d.typ.Underlying().(*types.Interface)
	return ok
}

// Subtypes scans every loaded package for concrete named types implementing
// this interface, ordered by qualified name for deterministic output.
func (d *typeDesc) Subtypes() []typeschema.TypeDescriptor {
	iface, ok := d.typ.Underlying().(*types.Interface)
	if !ok {
		return nil
	}
	var found []*types.Named
	d.src.eachNamedType(func(named *types.Named) {
		if _, isInterface := named.Underlying().(*types.Interface); isInterface {
			return
		}
		if implementedBy(named, iface) {
			found = append(found, named)
		}
	})
	sortNamed(found)
	return d.src.describeAll(found)
}

func (d *typeDesc) EnumMembers() []typeschema.EnumMember {
	consts := d.enumConsts()
	members := make([]typeschema.EnumMember, 0, len(consts))
	for _, c := range consts {
		member := typeschema.EnumMember{Name: c.Name()}
		doc := d.src.constDoc(c)
		if value, ok := docDirective(doc, "schema:value"); ok {
			member.Value = value
		}
		if _, ok := docDirective(doc, "schema:ignore"); ok {
			member.Ignored = true
		}
		members = append(members, member)
	}
	return members
}

func (d *typeDesc) Elem() (typeschema.TypeDescriptor, bool) {
	if d.isEnum() {
		if basic, ok := d.typ.Underlying().(*types.Basic); ok {
			return d.src.describe(basic), true
		}
	}
	switch t := d.typ.Underlying().(type) {
	case *types.Pointer:
		return d.src.describe(t.Elem()), true
	case *types.Slice:
		return d.src.describe(t.Elem()), true
	case *types.Array:
		return d.src.describe(t.Elem()), true
	case *types.Map:
		return d.src.describe(t.Elem()), true
	}
	return nil, false
}

func (d *typeDesc) Key() (typeschema.TypeDescriptor, bool) {
	if m, ok := d.typ.Underlying().(*types.Map); ok {
		return d.src.describe(m.Key()), true
	}
	return nil, false
}

func (d *typeDesc) Len() int {
	if a, ok := d.typ.Underlying().(*types.Array); ok {
		return int(a.Len())
	}
	return -1
}

func (d *typeDesc) Unresolved() bool {
	basic, ok := d.typ.(*types.Basic)
	return ok && basic.Kind() == types.Invalid
}

type memberDesc struct {
	src   *Source
	field *types.Var
	tag   reflect.StructTag
}

func (m *memberDesc) Name() string { return m.field.Name() }

func (m *memberDesc) Type() typeschema.TypeDescriptor {
	return m.src.describe(m.field.Type())
}

func (m *memberDesc) Nullable() bool {
	_, ok := types.Unalias(m.field.Type()).(*types.Pointer)
	return ok
}

func (m *memberDesc) Accessibility() typeschema.Accessibility {
	if m.field.Exported() {
		return typeschema.AccessPublic
	}
	return typeschema.AccessPrivate
}

func (m *memberDesc) Static() bool    { return false }
func (m *memberDesc) Indexer() bool   { return false }
func (m *memberDesc) WriteOnly() bool { return false }

func (m *memberDesc) Embedded() bool { return m.field.Embedded() }

func (m *memberDesc) Annotations() typeschema.Annotations {
	return typeschema.ParseStructTag(m.tag)
}

func (m *memberDesc) Default() (string, bool) {
	return m.Annotations().Value(typeschema.AnnotationDefault)
}

type unresolvedDesc struct {
	name string
}

func (d unresolvedDesc) Name() string                                  { return d.name }
func (unresolvedDesc) Package() string                                 { return "" }
func (d unresolvedDesc) QualifiedName() string                         { return "" }
func (unresolvedDesc) Kind() typeschema.TypeKind                       { return typeschema.KindUnsupported }
func (unresolvedDesc) Members() []typeschema.MemberDescriptor          { return nil }
func (unresolvedDesc) Annotations() typeschema.Annotations             { return nil }
func (unresolvedDesc) Base() (typeschema.TypeDescriptor, bool)         { return nil, false }
func (unresolvedDesc) Interfaces() []typeschema.TypeDescriptor         { return nil }
func (unresolvedDesc) GenericArguments() []typeschema.TypeDescriptor   { return nil }
func (unresolvedDesc) Abstract() bool                                  { return false }
func (unresolvedDesc) Subtypes() []typeschema.TypeDescriptor           { return nil }
func (unresolvedDesc) EnumMembers() []typeschema.EnumMember            { return nil }
func (unresolvedDesc) Elem() (typeschema.TypeDescriptor, bool)         { return nil, false }
func (unresolvedDesc) Key() (typeschema.TypeDescriptor, bool)          { return nil, false }
func (unresolvedDesc) Len() int                                        { return -1 }
func (unresolvedDesc) Unresolved() bool                                { return true }

// eachNamedType visits every named type declared in the loaded packages.
// Iteration order is made deterministic by the callers sorting their results.
func (s *Source) eachNamedType(visit func(named *types.Named)) {
	for _, pkg := range s.pkgs {
		if pkg.pkg.Types == nil {
			continue
		}
		scope := pkg.pkg.Types.Scope()
		for _, name := range scope.Names() {
			typeName, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || typeName.IsAlias() {
				continue
			}
			if named, ok := typeName.Type().(*types.Named); ok {
				visit(named)
			}
		}
	}
}

func (s *Source) describeAll(named []*types.Named) []typeschema.TypeDescriptor {
	descriptors := make([]typeschema.TypeDescriptor, 0, len(named))
	for _, n := range named {
		descriptors = append(descriptors, s.describe(n))
	}
	return descriptors
}

// implementedBy reports whether t or *t satisfies the interface.
func implementedBy(t types.Type, iface *types.Interface) bool {
	return types.Implements(t, iface) || types.Implements(types.NewPointer(t), iface)
}

func sortNamed(named []*types.Named) {
	slices.SortFunc(named, func(a, b *types.Named) int {
		return strings.Compare(qualifiedNameOf(a), qualifiedNameOf(b))
	})
}

func qualifiedNameOf(named *types.Named) string {
	name := namedTypeName(named)
	if pkg := named.Obj().Pkg(); pkg != nil {
		return pkg.Path() + "." + name
	}
	return name
}

// namedTypeName renders a named type's name, keeping the argument list of
// instantiated generic types, e.g. "Pair[int]".
func namedTypeName(named *types.Named) string {
	name := named.Obj().Name()
	targs := named.TypeArgs()
	if targs == nil || targs.Len() == 0 {
		return name
	}
	args := make([]string, 0, targs.Len())
	for i := 0; i < targs.Len(); i++ {
		args = append(args, types.TypeString(targs.At(i), types.RelativeTo(named.Obj().Pkg())))
	}
	return name + "[" + strings.Join(args, ",") + "]"
}

// constDoc returns the doc comment text attached to a package-level constant.
func (s *Source) constDoc(c *types.Const) string {
	if c.Pkg() == nil {
		return ""
	}
	pkg, ok := s.pkgs[c.Pkg().Path()]
	if !ok {
		return ""
	}
	spec := findValueSpec(pkg.pkg, c.Pos())
	if spec == nil {
		return ""
	}
	if spec.Doc != nil {
		return spec.Doc.Text()
	}
	if spec.Comment != nil {
		return spec.Comment.Text()
	}
	return ""
}

func findValueSpec(pkg *packages.Package, pos token.Pos) *ast.ValueSpec {
	for _, file := range pkg.Syntax {
		if file.FileStart > pos || pos >= file.FileEnd {
			continue
		}
		var found *ast.ValueSpec
		ast.Inspect(file, func(n ast.Node) bool {
			if found != nil {
				return false
			}
			spec, ok := n.(*ast.ValueSpec)
			if ok && spec.Pos() <= pos && pos < spec.End() {
				found = spec
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// docDirective extracts a "schema:<name> value" directive from doc text.
func docDirective(doc, directive string) (string, bool) {
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == directive {
			return "", true
		}
		if value, ok := strings.CutPrefix(line, directive+" "); ok {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

func kindOf(typ types.Type) typeschema.TypeKind {
	switch t := typ.Underlying().(type) {
	case *types.Basic:
		return basicKind(t)
	case *types.Struct:
		return typeschema.KindStruct
	case *types.Map:
		return typeschema.KindMap
	case *types.Slice:
		return typeschema.KindSlice
	case *types.Array:
		return typeschema.KindArray
	case *types.Pointer:
		return typeschema.KindPointer
	case *types.Interface:
		return typeschema.KindInterface
	default:
		return typeschema.KindUnsupported
	}
}

func basicKind(basic *types.Basic) typeschema.TypeKind {
	switch basic.Kind() {
	case types.Bool, types.UntypedBool:
		return typeschema.KindBool
	case types.Int, types.UntypedInt:
		return typeschema.KindInt
	case types.Int8:
		return typeschema.KindInt8
	case types.Int16:
		return typeschema.KindInt16
	case types.Int32:
		return typeschema.KindInt32
	case types.Int64:
		return typeschema.KindInt64
	case types.Uint:
		return typeschema.KindUint
	case types.Uint8:
		return typeschema.KindUint8
	case types.Uint16:
		return typeschema.KindUint16
	case types.Uint32:
		return typeschema.KindUint32
	case types.Uint64, types.Uintptr:
		return typeschema.KindUint64
	case types.Float32:
		return typeschema.KindFloat32
	case types.Float64, types.UntypedFloat:
		return typeschema.KindFloat64
	case types.String, types.UntypedString:
		return typeschema.KindString
	default:
		return typeschema.KindUnsupported
	}
}
