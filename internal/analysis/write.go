package analysis

import (
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/scope"
	"github.com/doITmagic/php-analyzer/internal/symboldata"
)

// WriteVariable records an assignment to a local variable in the
// current scope, folding the written value's type into InferredType
// (a running union across every write seen so far on this
// control-flow path, per spec §4.6) and updating LastWrittenValue for
// constant propagation.
func (s *AnalysisState) WriteVariable(name string, t phptype.UnionType, v phptype.PHPValue, hasValue bool) *scope.VariableData {
	sc := s.CurrentScope()
	vd := sc.GetOrCreate(name)
	vd.InferredType = vd.InferredType.Merge(t)
	vd.LastWrittenValue = v
	vd.HasLastWrittenValue = hasValue
	vd.WrittenTo++
	sc.Set(name, vd)
	return vd
}

// DeclareParameter installs a function/method parameter's
// VariableData at function-body entry, combining its declared type
// hint with any @param PHPDoc narrowing (spec §4.5: parameter
// installation with declared/phpdoc/default-derived types).
func (s *AnalysisState) DeclareParameter(name string, declared phptype.UnionType, hasDeclared bool, comment phptype.UnionType, hasComment bool, byRef bool) *scope.VariableData {
	sc := s.CurrentScope()
	vd := sc.GetOrCreate(name)
	vd.PHPDeclaredType = declared
	vd.HasDeclaredType = hasDeclared
	vd.CommentType = comment
	vd.HasCommentType = hasComment
	vd.IsArgument = true
	vd.IsReference = byRef
	sc.Set(name, vd)
	return vd
}

// ReadVariable records a read of a local variable and returns its
// effective type, falling back to Unknown and raising no diagnostic
// here — UnknownVariable is the caller's responsibility, since only
// the pass-3 visitor knows whether this is the first reference in the
// current scope or a genuine use-before-definition.
func (s *AnalysisState) ReadVariable(name string) (phptype.UnionType, bool) {
	sc := s.CurrentScope()
	vd, ok := sc.Get(name)
	if !ok {
		return phptype.UnknownUnion(), false
	}
	vd.ReadFrom++
	return vd.EffectiveType(), true
}

// WriteConstructorPropertyType narrows a property's declared type from
// an assignment observed inside `__construct`, but only when the
// property itself carries no explicit declared type — an explicitly
// typed property is never widened by constructor-body inference (spec
// §8's worked "property type inferred through constructor" scenario).
func WriteConstructorPropertyType(prop *symboldata.PropertyData, t phptype.UnionType) {
	if prop.TypeDeclared {
		return
	}
	prop.SetType(prop.GetType().Merge(t))
}
