// Package issue implements the diagnostic taxonomy and emitter
// contract of spec §4.9: a closed set of issue kinds pass 2 and pass 3
// can raise, each carrying the byte position it was raised at, plus a
// small family of IssueEmitter implementations (discard, collect,
// stream) grounded on the teacher's own output-sink pattern in
// internal/coderag/indexer.go (index results are either collected into
// a slice or streamed, never both).
package issue

import "fmt"

// Kind is the closed enum of diagnostics the analyzer can raise.
type Kind int

const (
	UnknownType Kind = iota
	UnknownClass
	UnknownInterface
	UnknownTrait
	UnknownClassConstant
	UnknownProperty
	UnknownMethod
	UnknownFunction
	UnknownVariable
	MethodCallOnNullableType
	PropertyAccessOnNullableType
	MethodCallOnUnknownType
	PropertyAccessOnUnknownType
	PropertyAccessOnInterfaceType
	WrongClassNameCasing
	TooFewArguments
	TooManyArguments
	ArgumentTypeMismatch
	ReturnTypeMismatch
	AssignTypeMismatch
	EmptyTemplate
	DuplicateDeclaration
	DuplicateSymbol
	DuplicateClassConstant
	AbstractInstantiation
	UnreachableCode
	RedundantCondition
	UnknownIndexType
	IndeterminablePropertyName
	IncrementIsIllegalOnType
	DecrementIsIllegalOnType
	ParseAnomaly
	PHPDocTypeError
)

var kindNames = map[Kind]string{
	UnknownType:                  "UnknownType",
	UnknownClass:                 "UnknownClass",
	UnknownInterface:             "UnknownInterface",
	UnknownTrait:                 "UnknownTrait",
	UnknownClassConstant:         "UnknownClassConstant",
	UnknownProperty:              "UnknownProperty",
	UnknownMethod:                "UnknownMethod",
	UnknownFunction:              "UnknownFunction",
	UnknownVariable:              "UnknownVariable",
	MethodCallOnNullableType:     "MethodCallOnNullableType",
	PropertyAccessOnNullableType: "PropertyAccessOnNullableType",
	MethodCallOnUnknownType:      "MethodCallOnUnknownType",
	PropertyAccessOnUnknownType:  "PropertyAccessOnUnknownType",
	PropertyAccessOnInterfaceType: "PropertyAccessOnInterfaceType",
	WrongClassNameCasing:         "WrongClassNameCasing",
	TooFewArguments:              "TooFewArguments",
	TooManyArguments:             "TooManyArguments",
	ArgumentTypeMismatch:         "ArgumentTypeMismatch",
	ReturnTypeMismatch:           "ReturnTypeMismatch",
	AssignTypeMismatch:           "AssignTypeMismatch",
	EmptyTemplate:                "EmptyTemplate",
	DuplicateDeclaration:         "DuplicateDeclaration",
	DuplicateSymbol:              "DuplicateSymbol",
	DuplicateClassConstant:       "DuplicateClassConstant",
	AbstractInstantiation:        "AbstractInstantiation",
	UnreachableCode:              "UnreachableCode",
	RedundantCondition:           "RedundantCondition",
	UnknownIndexType:             "UnknownIndexType",
	IndeterminablePropertyName:   "IndeterminablePropertyName",
	IncrementIsIllegalOnType:     "IncrementIsIllegalOnType",
	DecrementIsIllegalOnType:     "DecrementIsIllegalOnType",
	ParseAnomaly:                 "ParseAnomaly",
	PHPDocTypeError:              "PHPDocTypeError",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Position locates an issue within a specific file, as a byte offset
// range so callers can slice the original source for a snippet without
// re-tokenizing.
type Position struct {
	Filename   string
	StartByte  int
	EndByte    int
	Line       int // 1-based; 0 if unknown
}

// Issue is one diagnostic: its Kind, where it was raised, and a
// human-readable Message built by the raising call site (so the same
// Kind can carry different specifics — which class, which method —
// without one format string per Kind living in this package).
type Issue struct {
	Kind     Kind
	Position Position
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", i.Position.Filename, i.Position.Line, i.Kind, i.Message)
}

// Emitter receives issues as they are raised during analysis. Pass 2
// and pass 3 hold one Emitter for the whole run; AnalysisState carries
// it down to every visitor method (grounded on orig:src/analysis/state.rs's
// diagnostic sink field).
type Emitter interface {
	Emit(Issue)
}

// VoidEmitter discards every issue; used by callers that only want the
// inferred types (e.g. a hover/completion consumer) and not
// diagnostics.
type VoidEmitter struct{}

func (VoidEmitter) Emit(Issue) {}
