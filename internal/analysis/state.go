// Package analysis implements the multi-pass driver of spec §4.1/§4.5:
// the Analyzer that owns one file's parsed tree, the AnalysisState
// threaded through all three passes, and the per-node semantic rules
// (expression/value inference, scope write/read, control-flow merge,
// truthiness/instanceof narrowing, symbol lookup) that together make up
// pass 1 (symbol discovery), pass 2 (symbol cross-linking) and pass 3
// (expression/statement inference).
//
// Grounded on orig:src/analysis/analyzer.rs (driver shape) and
// orig:src/analysis/state.rs (AnalysisState/GlobalState/ClassState/
// FunctionState, reproduced almost field-for-field), with AST
// traversal plumbing grounded on the teacher's own
// internal/ragcode/analyzers/php/analyzer.go (ast/visitor/traverser
// usage, PHP version pinned to 8.1, FreeFloating doc-comment tokens).
package analysis

import (
	"sync"

	"github.com/doITmagic/php-analyzer/internal/issue"
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/scope"
	"github.com/doITmagic/php-analyzer/internal/symbols"
	"github.com/doITmagic/php-analyzer/internal/symboldata"
)

// ConstantData accumulates every definition site of one global
// constant (define()/const NAME = ...) seen across files, so a
// constant redefined differently in two files does not pretend to
// have one value (spec §3: "ConstantData ... get_value: returns a
// value if there is only one known definition").
type ConstantData struct {
	mu       sync.RWMutex
	FQName   symbols.FullyQualifiedName
	defSites map[string]definition
}

type definition struct {
	Type  phptype.UnionType
	Value phptype.PHPValue
	HasValue bool
}

func NewConstantData(fq symbols.FullyQualifiedName) *ConstantData {
	return &ConstantData{FQName: fq, defSites: make(map[string]definition)}
}

// AddValue records one definition site (filename:byteoffset keyed, so
// re-analyzing the same file twice in an idempotent pass 2 run
// overwrites rather than duplicates its own entry).
func (c *ConstantData) AddValue(siteKey string, t phptype.UnionType, v phptype.PHPValue, hasValue bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defSites[siteKey] = definition{Type: t, Value: v, HasValue: hasValue}
}

// GetValue returns the constant's value iff every recorded definition
// site agrees on both type and value (spec §3's "only one known
// definition" generalizes, in this concurrent multi-file setting, to
// "every site that has run so far agrees").
func (c *ConstantData) GetValue() (phptype.PHPValue, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var v phptype.PHPValue
	first := true
	for _, d := range c.defSites {
		if !d.HasValue {
			return phptype.PHPValue{}, false
		}
		if first {
			v = d.Value
			first = false
			continue
		}
		if !v.Equal(d.Value) {
			return phptype.PHPValue{}, false
		}
	}
	return v, !first
}

func (c *ConstantData) GetType() phptype.UnionType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var t phptype.UnionType
	for _, d := range c.defSites {
		t = t.Merge(d.Type)
	}
	return t
}

// GlobalState is the process-wide state shared by every file's
// AnalysisState: the outermost variable scope (for code outside any
// function) and the global-constant table (spec §3: "global state
// (global scope + process-wide constants)").
type GlobalState struct {
	ScopeStack *scope.ScopeStack

	mu        sync.RWMutex
	constants map[string]*ConstantData
}

func NewGlobalState() *GlobalState {
	return &GlobalState{
		ScopeStack: scope.NewScopeStack(),
		constants:  make(map[string]*ConstantData),
	}
}

func (g *GlobalState) GetOrCreateConstant(fq symbols.FullyQualifiedName) *ConstantData {
	key := fq.Key()
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.constants[key]; ok {
		return c
	}
	c := NewConstantData(fq)
	g.constants[key] = c
	return c
}

func (g *GlobalState) GetConstant(fq symbols.FullyQualifiedName) (*ConstantData, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.constants[fq.Key()]
	return c, ok
}

// ClassState records which user-defined class/interface/trait pass 3
// is currently walking inside, so `self`/`static`/`parent` and `$this`
// resolve against it (spec §3: "current in_class").
type ClassState struct {
	Kind ClassKind
	Name symbols.ClassName
}

type ClassKind int

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
	ClassKindTrait
)

// FunctionState is pushed for each function/method/closure body pass 3
// enters, carrying its own ScopeStack (a function body's local
// variables never inherit the caller's) and the accumulated list of
// `return` expression types/values used to compute the function's
// inferred return type on exit (spec §3: "in_function_stack:
// Vec<FunctionState>").
type FunctionState struct {
	Name     symbols.Name
	IsMethod bool
	ScopeStack *scope.ScopeStack

	mu      sync.Mutex
	Returns []ReturnObservation
}

type ReturnObservation struct {
	Type     phptype.UnionType
	HasType  bool
	Value    phptype.PHPValue
	HasValue bool
}

func NewFunctionState(name symbols.Name, isMethod bool) *FunctionState {
	return &FunctionState{Name: name, IsMethod: isMethod, ScopeStack: scope.NewScopeStack()}
}

func (f *FunctionState) AddReturn(t phptype.UnionType, hasType bool, v phptype.PHPValue, hasValue bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Returns = append(f.Returns, ReturnObservation{Type: t, HasType: hasType, Value: v, HasValue: hasValue})
}

// InferredReturnType unions every observed return's type, matching
// spec §4.5's "after the body, merge into ...inferred_return_type via
// set-union". A function with no `return` statement (or only bare
// `return;`) infers Void.
func (f *FunctionState) InferredReturnType() phptype.UnionType {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Returns) == 0 {
		return phptype.VoidUnion()
	}
	var out phptype.UnionType
	for _, r := range f.Returns {
		if r.HasType {
			out = out.Merge(r.Type)
		} else {
			out = out.Merge(phptype.VoidUnion())
		}
	}
	return out
}

// AnalysisState is the per-file, per-pass context threaded through
// every visitor method (spec §3's AnalysisState). One is created per
// file per analysis run; Global and Symbols are shared across the
// whole process.
type AnalysisState struct {
	Pass     int
	Filename string

	Global  *GlobalState
	Symbols *symboldata.Store

	InClass         *ClassState
	InFunctionStack []*FunctionState

	UseMap    map[symbols.Name]symbols.FullyQualifiedName
	Namespace symbols.FullyQualifiedName
	HasNamespace bool

	LastDocComment     string
	LastDocCommentByte int
	HasLastDocComment  bool

	InConditionalBranch bool

	// CurrentStartByte/CurrentEndByte track the byte range of the
	// statement/expression pass 3 is currently visiting, so Emit can
	// stamp every raised Issue with a position without every evaluator
	// call site having to thread one through explicitly.
	CurrentStartByte int
	CurrentEndByte   int
	CurrentLine      int

	// ActiveTemplates is the set of @template parameter names in scope
	// for the class/method currently being walked, used by the
	// type-expression resolver (spec §4.8: "An identifier appearing as
	// a typename is a Template if it matches an in-scope template
	// parameter").
	ActiveTemplates map[symbols.Name]bool
}

func NewAnalysisState(symbolData *symboldata.Store, global *GlobalState) *AnalysisState {
	return &AnalysisState{
		Global:          global,
		Symbols:         symbolData,
		UseMap:          make(map[symbols.Name]symbols.FullyQualifiedName),
		ActiveTemplates: make(map[symbols.Name]bool),
	}
}

// GetFQSymbolNameWithoutAliasing appends the current namespace to a
// local name with no use_map lookup — used for the declaration site
// itself, which is never subject to aliasing (spec §4.3: "resolve the
// declared name against the current namespace (WITHOUT aliasing)").
func (s *AnalysisState) GetFQSymbolNameWithoutAliasing(name symbols.Name) symbols.FullyQualifiedName {
	if s.HasNamespace {
		return s.Namespace.Push(name)
	}
	return symbols.FQNOf(name)
}

// GetFQSymbolNameFromLocalName resolves a local Name used at a
// reference site (a type hint, a `new Foo()`, an `extends` clause)
// through use_map first, then the current namespace, then the global
// namespace (spec §4.6 rule 1-3).
func (s *AnalysisState) GetFQSymbolNameFromLocalName(name symbols.Name) symbols.FullyQualifiedName {
	if fq, ok := s.UseMap[name]; ok {
		return fq
	}
	if s.HasNamespace {
		return s.Namespace.Push(name)
	}
	return symbols.FQNOf(name)
}

// CurrentScopeStack returns the innermost function's ScopeStack, or
// the file-wide global ScopeStack when not inside a function (spec
// §3: "current_scope_stack").
func (s *AnalysisState) CurrentScopeStack() *scope.ScopeStack {
	if n := len(s.InFunctionStack); n > 0 {
		return s.InFunctionStack[n-1].ScopeStack
	}
	return s.Global.ScopeStack
}

func (s *AnalysisState) CurrentScope() *scope.Scope {
	return s.CurrentScopeStack().Top()
}

func (s *AnalysisState) CurrentFunction() (*FunctionState, bool) {
	if n := len(s.InFunctionStack); n > 0 {
		return s.InFunctionStack[n-1], true
	}
	return nil, false
}

// PushFunction enters a function/method/closure body.
func (s *AnalysisState) PushFunction(fs *FunctionState) {
	s.InFunctionStack = append(s.InFunctionStack, fs)
}

// PopFunction leaves the innermost function body, returning it so its
// accumulated Returns can be merged into MethodData/FunctionData.
func (s *AnalysisState) PopFunction() *FunctionState {
	n := len(s.InFunctionStack)
	if n == 0 {
		return nil
	}
	fs := s.InFunctionStack[n-1]
	s.InFunctionStack = s.InFunctionStack[:n-1]
	return fs
}

// InMethod reports whether pass 3 is currently inside a method whose
// name matches (case-insensitively — PHP method names are
// case-insensitive), used by InConstructor (spec §3).
func (s *AnalysisState) InMethod(name string) bool {
	fs, ok := s.CurrentFunction()
	if !ok || !fs.IsMethod {
		return false
	}
	return fs.Name.EqualFold(symbols.Name(name))
}

func (s *AnalysisState) InConstructor() bool {
	return s.InMethod("__construct")
}

// Emit stamps kind/msg with the position pass 3 is currently visiting
// and forwards it to e, so expression/statement evaluators can raise
// diagnostics without carrying a Position through every call.
func (s *AnalysisState) Emit(e issue.Emitter, kind issue.Kind, msg string) {
	e.Emit(issue.Issue{
		Kind: kind,
		Position: issue.Position{
			Filename:  s.Filename,
			StartByte: s.CurrentStartByte,
			EndByte:   s.CurrentEndByte,
			Line:      s.CurrentLine,
		},
		Message: msg,
	})
}

// SetPosition updates the position bookkeeping used by Emit; pass 3's
// traversal calls this on entry to each statement/expression node.
func (s *AnalysisState) SetPosition(startByte, endByte, line int) {
	s.CurrentStartByte = startByte
	s.CurrentEndByte = endByte
	s.CurrentLine = line
}

// Clone produces a fresh AnalysisState for a new pass over the same
// file, sharing Global/Symbols but resetting the per-file bookkeeping
// (use_map, namespace, doc-comment carry) that must start empty at the
// top of every pass (spec §5: "the use_map and namespace are per-
// AnalysisState and never shared").
func (s *AnalysisState) Clone(pass int) *AnalysisState {
	ns := NewAnalysisState(s.Symbols, s.Global)
	ns.Pass = pass
	ns.Filename = s.Filename
	return ns
}
