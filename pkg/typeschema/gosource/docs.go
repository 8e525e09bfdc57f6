package gosource

import (
	"go/ast"
	"go/doc/comment"
	"go/types"
	"regexp"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/packages"

	"github.com/nieomylnieja/typeschema/pkg/typeschema"
)

// docEntry caches the outcome of a documentation lookup, including misses.
type docEntry struct {
	doc typeschema.TypeDoc
	ok  bool
}

// TypeDoc implements [typeschema.DocProvider]. It finds the declaration of
// the named type, renders its doc comment as Markdown and collects the doc
// comments of its struct fields keyed by declared field name.
func (s *Source) TypeDoc(qualifiedName string) (typeschema.TypeDoc, bool) {
	if entry, ok := s.docs[qualifiedName]; ok {
		return entry.doc, entry.ok
	}
	doc, ok := s.lookupTypeDoc(qualifiedName)
	s.docs[qualifiedName] = docEntry{doc: doc, ok: ok}
	return doc, ok
}

func (s *Source) lookupTypeDoc(qualifiedName string) (typeschema.TypeDoc, bool) {
	pkgPath, name, ok := splitQualifiedName(qualifiedName)
	if !ok {
		return typeschema.TypeDoc{}, false
	}
	pkg, ok := s.pkgs[pkgPath]
	if !ok {
		return typeschema.TypeDoc{}, false
	}
	if pkg.commentParser == nil {
		pkg.commentParser = s.newCommentParserForPackage(pkg.pkg)
	}
	decl := findTypeDeclaration(pkg.pkg, name)
	if decl == nil {
		return typeschema.TypeDoc{}, false
	}

	// Every found declaration carries at least its name as the title;
	// the engine only merges it into fragments without an explicit one.
	doc := typeschema.TypeDoc{Title: name}
	text, deprecated := splitDeprecated(decl.Doc.Text())
	doc.Description = docCommentToMarkdown(pkg.commentParser, pkg.pkg.PkgPath, text)
	doc.Deprecated = deprecated

	if structType, ok := typeSpecStruct(decl); ok {
		doc.Members = s.structFieldDocs(pkg, structType)
	}
	return doc, true
}

func (s *Source) structFieldDocs(pkg *goPackage, structType *ast.StructType) map[string]typeschema.MemberDoc {
	members := map[string]typeschema.MemberDoc{}
	for _, astField := range structType.Fields.List {
		text := astField.Doc.Text()
		if text == "" && astField.Comment != nil {
			text = astField.Comment.Text()
		}
		if text == "" {
			continue
		}
		text, deprecated := splitDeprecated(text)
		memberDoc := typeschema.MemberDoc{
			Description: docCommentToMarkdown(pkg.commentParser, pkg.pkg.PkgPath, text),
			Deprecated:  deprecated,
		}
		for _, name := range fieldNames(astField) {
			members[name] = memberDoc
		}
	}
	if len(members) == 0 {
		return nil
	}
	return members
}

// fieldNames lists the declared names of a struct field, resolving the type
// name of embedded fields.
func fieldNames(field *ast.Field) []string {
	if len(field.Names) > 0 {
		names := make([]string, 0, len(field.Names))
		for _, ident := range field.Names {
			names = append(names, ident.Name)
		}
		return names
	}
	if name := embeddedFieldName(field.Type); name != "" {
		return []string{name}
	}
	return nil
}

func embeddedFieldName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedFieldName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedFieldName(t.X)
	case *ast.IndexListExpr:
		return embeddedFieldName(t.X)
	}
	return ""
}

// findTypeDeclaration finds the ast.GenDecl for the given type declaration, specified by name.
func findTypeDeclaration(pkg *packages.Package, name string) *ast.GenDecl {
	obj := pkg.Types.Scope().Lookup(name)
	if obj == nil {
		return nil
	}
	for _, file := range pkg.Syntax {
		pos := obj.Pos()
		if file.FileStart > pos || pos >= file.FileEnd {
			continue // not in this file
		}
		path, _ := astutil.PathEnclosingInterval(file, pos, pos)
		for _, n := range path {
			if n, ok := n.(*ast.GenDecl); ok {
				return n
			}
		}
	}
	return nil
}

func typeSpecStruct(decl *ast.GenDecl) (*ast.StructType, bool) {
	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		if structType, ok := typeSpec.Type.(*ast.StructType); ok {
			return structType, true
		}
	}
	return nil, false
}

const docLinkBaseURL = "https://pkg.go.dev"

func docCommentToMarkdown(parser *comment.Parser, pkg, text string) string {
	text = stripEnumDeclaration(text)
	if text == "" {
		return ""
	}
	parsed := parser.Parse(text)
	printer := comment.Printer{
		DocLinkURL: func(link *comment.DocLink) string {
			if link.ImportPath == "" {
				link.ImportPath = pkg
			}
			return link.DefaultURL(docLinkBaseURL)
		},
	}
	return strings.TrimSpace(string(printer.Markdown(parsed)))
}

func (s *Source) newCommentParserForPackage(currentPackage *packages.Package) *comment.Parser {
	return &comment.Parser{
		LookupPackage: func(name string) (importPath string, ok bool) {
			for _, pkg := range s.pkgs {
				if pkg.pkg.Name == name {
					return pkg.pkg.PkgPath, true
				}
			}
			return "", false
		},
		LookupSym: func(recv, name string) (ok bool) {
			if recv == "" {
				return currentPackage.Types.Scope().Lookup(name) != nil
			}
			obj := currentPackage.Types.Scope().Lookup(recv)
			if obj == nil {
				return false
			}
			switch u := obj.Type().Underlying().(type) {
			case *types.Struct:
				for field := range u.Fields() {
					if field.Name() == name {
						return true
					}
				}
				return false
			default:
				return false
			}
		},
	}
}

var (
	enumDeclarationRegex = regexp.MustCompile(`(?s)ENUM\(.*`)
	deprecatedRegex      = regexp.MustCompile(`(?m)^Deprecated:\s*(.*)$`)
)

// stripEnumDeclaration removes ENUM (used with go-enum generator) declarations from the code docs.
func stripEnumDeclaration(text string) string {
	return strings.TrimSpace(enumDeclarationRegex.ReplaceAllString(text, ""))
}

// splitDeprecated extracts the "Deprecated:" notice from doc text, returning
// the remaining text and the notice.
func splitDeprecated(text string) (remaining, deprecated string) {
	matches := deprecatedRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		deprecated = strings.TrimSpace(matches[1])
		text = deprecatedRegex.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text), deprecated
}

// splitQualifiedName splits "pkg/path.Name" into its package path and type
// name. Generic instantiation suffixes ("Pair[int]") are cut off first so the
// lookup lands on the generic declaration.
func splitQualifiedName(qualifiedName string) (pkgPath, name string, ok bool) {
	base, _, _ := strings.Cut(qualifiedName, "[")
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return "", "", false
	}
	return base[:i], base[i+1:], true
}
