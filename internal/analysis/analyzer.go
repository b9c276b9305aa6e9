package analysis

import (
	"fmt"
	"io"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/conf"
	phpErrors "github.com/VKCOM/php-parser/pkg/errors"
	"github.com/VKCOM/php-parser/pkg/parser"
	"github.com/VKCOM/php-parser/pkg/version"
	"github.com/doITmagic/php-analyzer/internal/config"
	"github.com/doITmagic/php-analyzer/internal/issue"
	"github.com/doITmagic/php-analyzer/internal/symboldata"
)

// phpVersion pins the parser to the PHP 8.1 grammar: match/named
// arguments/nullsafe operator all require 8.0, but enum declarations
// (pass1.go's StmtEnum/StmtEnumCase) require 8.1, so 8.0 is not
// sufficient for every construct this analyzer understands.
var phpVersion = &version.Version{Major: 8, Minor: 1}

// Analyzer owns one file's source and parsed tree and drives it
// through the three analysis passes, grounded directly on
// orig:src/analysis/analyzer.rs's Analyzer struct (GetContent closure,
// lazy parse, pass methods).
type Analyzer struct {
	Config   *config.PHPAnalyzeConfig
	Filename string

	getContent func() ([]byte, error)
	content    []byte
	root       ast.Vertex
	parseErrs  []*phpErrors.Error
}

// New creates an Analyzer that reads its source from r on first Parse
// call (orig:src/analysis/analyzer.rs's `new`).
func New(cfg *config.PHPAnalyzeConfig, filename string, r io.Reader) *Analyzer {
	return &Analyzer{
		Config:   cfg,
		Filename: filename,
		getContent: func() ([]byte, error) {
			return io.ReadAll(r)
		},
	}
}

// NewFromBuffer creates an Analyzer over an in-memory buffer (mirrors
// orig:src/analysis/analyzer.rs's `new_from_buffer`, used by tests and
// by editor-integration callers that already hold the file content).
func NewFromBuffer(cfg *config.PHPAnalyzeConfig, filename string, content []byte) *Analyzer {
	return &Analyzer{
		Config:   cfg,
		Filename: filename,
		getContent: func() ([]byte, error) {
			return content, nil
		},
	}
}

// Parse reads the source (if not already read) and parses it into an
// AST. Every parse error is reported through emit as
// issue.ParseAnomaly and makes Parse return an error, so the file is
// not analyzed further; AnalyzeFiles skips such a file and goes on with
// the rest of the project. The returned error is a plain error value;
// no sentinel identifies it as a parse failure.
func (a *Analyzer) Parse(emit issue.Emitter) error {
	if a.content == nil {
		data, err := a.getContent()
		if err != nil {
			return fmt.Errorf("reading %s: %w", a.Filename, err)
		}
		a.content = data
	}

	root, err := parser.Parse(a.content, conf.Config{
		Version: phpVersion,
		ErrorHandlerFunc: func(e *phpErrors.Error) {
			a.parseErrs = append(a.parseErrs, e)
		},
	})
	if err != nil {
		emit.Emit(issue.Issue{
			Kind:     issue.ParseAnomaly,
			Position: issue.Position{Filename: a.Filename},
			Message:  err.Error(),
		})
		return err
	}
	for _, pe := range a.parseErrs {
		emit.Emit(issue.Issue{
			Kind:     issue.ParseAnomaly,
			Position: issue.Position{Filename: a.Filename, Line: pe.Pos.StartLine},
			Message:  pe.Msg,
		})
	}
	if len(a.parseErrs) > 0 {
		return fmt.Errorf("parsing %s: %d syntax error(s)", a.Filename, len(a.parseErrs))
	}
	a.root = root
	return nil
}

// Root returns the parsed tree, or nil if Parse has not succeeded.
func (a *Analyzer) Root() ast.Vertex { return a.root }

// Content returns the raw source bytes Parse read.
func (a *Analyzer) Content() []byte { return a.content }

// FirstPass runs pass 1 (symbol discovery, spec §4.3) over the parsed
// tree, populating store with every class/interface/trait/function/
// constant declaration this file contributes.
func (a *Analyzer) FirstPass(store *symboldata.Store, emit issue.Emitter) {
	if a.root == nil {
		return
	}
	v := newPass1Visitor(a.Filename, store, a.Config, emit)
	walkWithVisitor(a.root, v)
}

// SecondPass runs pass 2 (symbol cross-linking, spec §4.4) over the
// parsed tree: resolving extends/implements/trait-use, evaluating
// class-constant initializers, and re-resolving @var/@param/@return
// PHPDoc types against this file's use_map.
func (a *Analyzer) SecondPass(store *symboldata.Store, global *GlobalState, emit issue.Emitter) {
	if a.root == nil {
		return
	}
	v := newPass2Visitor(a.Filename, store, global, a.Config, emit)
	walkWithVisitor(a.root, v)
}

// ThirdPass runs pass 3 (expression/statement inference, spec §4.5)
// over the parsed tree, producing inferred variable/return types and
// raising every remaining diagnostic kind.
func (a *Analyzer) ThirdPass(store *symboldata.Store, global *GlobalState, emit issue.Emitter) {
	if a.root == nil {
		return
	}
	v := newPass3Visitor(a.Filename, store, global, a.Config, emit)
	walkWithVisitor(a.root, v)
}

// WithNodeRefAtPosition finds the smallest node covering (line, col)
// (1-based line, 0-based byte column within that line, matching the
// rest of this package's StartLine/StartPos convention rather than
// UTF-16 code units) and invokes cb with it, returning false without
// calling cb if Parse has not run or no covered node was found
// (orig:src/analysis/analyzer.rs's with_node_ref_at_position).
func (a *Analyzer) WithNodeRefAtPosition(line, col int, cb func(ast.Vertex)) bool {
	node, _, ok := a.nodeAtPosition(line, col)
	if !ok {
		return false
	}
	cb(node)
	return true
}

// WithNodeRefPathAtPosition is WithNodeRefAtPosition but invokes cb
// with the full ancestor path from the outermost covering node to the
// innermost (orig:src/analysis/analyzer.rs's with_node_ref_path_at_position).
func (a *Analyzer) WithNodeRefPathAtPosition(line, col int, cb func(path []ast.Vertex)) bool {
	_, path, ok := a.nodeAtPosition(line, col)
	if !ok {
		return false
	}
	cb(path)
	return true
}

func (a *Analyzer) nodeAtPosition(line, col int) (ast.Vertex, []ast.Vertex, bool) {
	if a.root == nil {
		return nil, nil, false
	}
	offset, ok := lineColToOffset(a.content, line, col)
	if !ok {
		return nil, nil, false
	}
	v := &nodeRefVisitor{offset: offset}
	walkWithVisitor(a.root, v)
	if len(v.path) == 0 {
		return nil, nil, false
	}
	return v.path[len(v.path)-1], v.path, true
}

// lineColToOffset converts a 1-based line and 0-based byte column into
// a byte offset into content, the same currency ast.Position.StartPos/
// EndPos already use, rather than reinterpreting col as a UTF-16 code
// unit count that this package's Position model has no field for.
func lineColToOffset(content []byte, line, col int) (int, bool) {
	if line < 1 {
		return 0, false
	}
	lineStart := 0
	if line > 1 {
		current := 1
		found := false
		for i, b := range content {
			if b == '\n' {
				current++
				if current == line {
					lineStart = i + 1
					found = true
					break
				}
			}
		}
		if !found {
			return 0, false
		}
	}
	offset := lineStart + col
	if offset < 0 || offset > len(content) {
		return 0, false
	}
	return offset, true
}

// Dump renders the parsed tree's node-type shape, used by the CLI's
// --dump-ast debugging flag (mirrors orig:src/analysis/analyzer.rs's
// `dump`, which prints the tree for manual inspection).
func (a *Analyzer) Dump() string {
	if a.root == nil {
		return "<no parse>"
	}
	return fmt.Sprintf("%T", a.root)
}
