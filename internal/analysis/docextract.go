package analysis

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/token"
	"github.com/doITmagic/php-analyzer/internal/phpdoc"
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// rawDocComment pulls the preceding T_DOC_COMMENT's raw text out of a
// token's leading free-floating trivia, mirroring the teacher's own
// extractPHPDocFromToken/parsePHPDoc in
// internal/ragcode/analyzers/php/phpdoc.go, but handed to
// internal/phpdoc.Parse instead of that package's bespoke regex
// scanner, since this analyzer already owns a byte-accurate PHPDoc
// parser.
func rawDocComment(tok *token.Token) (string, bool) {
	if tok == nil {
		return "", false
	}
	for _, ff := range tok.FreeFloating {
		if ff.ID.String() == "T_DOC_COMMENT" {
			return string(ff.Value), true
		}
	}
	return "", false
}

func docFromToken(tok *token.Token) *phpdoc.Doc {
	raw, ok := rawDocComment(tok)
	if !ok {
		return nil
	}
	return phpdoc.Parse(raw)
}

func classDocOf(tok *token.Token) *phpdoc.Doc { return docFromToken(tok) }
func funcDocOf(tok *token.Token) *phpdoc.Doc  { return docFromToken(tok) }

// methodDocOf looks at the method's own leading token first, falling
// back to the first modifier's token — a doc comment preceding
// `public function foo()` attaches its free-floating trivia to
// whichever token sits first in source order, which modifier parses
// first depends on the grammar, so both are tried (teacher's analyzer.go
// comment: "first modifier usually has PHPDoc in FreeFloating").
func methodDocOf(modifiers []ast.Vertex, methodTkn *token.Token) *phpdoc.Doc {
	if d := docFromToken(methodTkn); d != nil {
		return d
	}
	for _, m := range modifiers {
		if ident, ok := m.(*ast.Identifier); ok {
			if d := docFromToken(ident.IdentifierTkn); d != nil {
				return d
			}
		}
	}
	return nil
}

func propertyDocOf(modifiers []ast.Vertex) *phpdoc.Doc {
	for _, m := range modifiers {
		if ident, ok := m.(*ast.Identifier); ok {
			if d := docFromToken(ident.IdentifierTkn); d != nil {
				return d
			}
		}
	}
	return nil
}

// resolveTypeHintNode converts a parsed type-hint AST node — a bare
// Name/NameFullyQualified, a `?Type` Nullable wrapper, or a PHP 8
// union (`A|B`) — into a resolved UnionType. Scalar/primitive keyword
// hints (int, string, array, ...) parse as ast.Name too, so they are
// recognized by lowercase keyword first before falling through to a
// class-name resolution.
func (s *AnalysisState) resolveTypeHintNode(n ast.Vertex) phptype.UnionType {
	switch v := n.(type) {
	case nil:
		return phptype.UnionType{}
	case *ast.Nullable:
		return s.resolveTypeHintNode(v.Expr).Merge(phptype.NullUnion())
	case *ast.Union:
		var out phptype.UnionType
		for _, part := range v.Types {
			out = out.Merge(s.resolveTypeHintNode(part))
		}
		return out
	case *ast.Intersection:
		// A `A&B` intersection type hint narrows to the first operand
		// for inference purposes; pass 2's template/interface
		// validation is where the full intersection is checked.
		if len(v.Types) > 0 {
			return s.resolveTypeHintNode(v.Types[0])
		}
		return phptype.UnknownUnion()
	case *ast.Identifier:
		return s.scalarOrClassHint(string(v.Value))
	case *ast.Name, *ast.NameFullyQualified, *ast.NameRelative:
		return s.scalarOrClassHint(nameString(v))
	default:
		return phptype.UnknownUnion()
	}
}

func (s *AnalysisState) scalarOrClassHint(raw string) phptype.UnionType {
	switch strings.ToLower(raw) {
	case "int", "integer":
		return phptype.UnionOf(phptype.Int())
	case "float", "double":
		return phptype.UnionOf(phptype.Float())
	case "string":
		return phptype.UnionOf(phptype.String())
	case "bool", "boolean":
		return phptype.BoolUnion()
	case "array":
		return phptype.UnionOf(phptype.Array())
	case "object":
		return phptype.UnionOf(phptype.Object())
	case "callable":
		return phptype.UnionOf(phptype.Callable())
	case "iterable":
		return phptype.UnionOf(phptype.Iterable())
	case "mixed":
		return phptype.MixedUnion()
	case "void":
		return phptype.VoidUnion()
	case "null":
		return phptype.NullUnion()
	case "never":
		return phptype.UnionType{}
	case "self":
		return phptype.UnionOf(phptype.SpecialSelfType())
	case "static":
		return phptype.UnionOf(phptype.SpecialStaticType())
	case "parent":
		return phptype.UnionOf(phptype.SpecialParentType())
	default:
		fq := s.GetFQSymbolNameFromLocalName(symbols.Name(raw))
		return phptype.UnionOf(phptype.Named(symbols.Name(raw), fq))
	}
}
