package analysis

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/visitor"
	"github.com/VKCOM/php-parser/pkg/visitor/traverser"
	"github.com/doITmagic/php-analyzer/internal/config"
	"github.com/doITmagic/php-analyzer/internal/issue"
	"github.com/doITmagic/php-analyzer/internal/phpdoc"
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/symboldata"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

func walkWithVisitor(root ast.Vertex, v ast.Visitor) {
	traverser.NewTraverser(v).Traverse(root)
}

// pass1Visitor discovers every class/interface/trait/function/
// constant declaration in one file (spec §4.3), installing a
// ClassEntry/FunctionData/ConstantData placeholder in store for each
// so pass 2 and pass 3 can resolve forward references regardless of
// declaration order within or across files.
type pass1Visitor struct {
	visitor.Null

	state *AnalysisState
	store *symboldata.Store
	cfg   *config.PHPAnalyzeConfig
	emit  issue.Emitter

	currentClassFQN symbols.FullyQualifiedName
	currentClass    *symboldata.ClassData
	currentIface    *symboldata.InterfaceData
	currentTrait    *symboldata.TraitData
}

func newPass1Visitor(filename string, store *symboldata.Store, cfg *config.PHPAnalyzeConfig, emit issue.Emitter) *pass1Visitor {
	st := NewAnalysisState(store, NewGlobalState())
	st.Filename = filename
	st.Pass = 1
	return &pass1Visitor{state: st, store: store, cfg: cfg, emit: emit}
}

func (v *pass1Visitor) StmtNamespace(n *ast.StmtNamespace) { applyNamespaceStmt(v.state, n) }

func (v *pass1Visitor) StmtUseList(n *ast.StmtUseList) { applyUseListStmt(v.state, n) }

func (v *pass1Visitor) StmtClass(n *ast.StmtClass) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
	cn := symbols.NewClassName(symbols.Name(name), fq)

	if v.store.IsDeclared(fq) {
		v.state.Emit(v.emit, issue.DuplicateSymbol, "duplicate declaration of class "+fq.String())
	}
	data := v.store.DeclareClass(cn)
	data.IsAbstract = hasModifierToken(n.Modifiers, "abstract")
	data.IsFinal = hasModifierToken(n.Modifiers, "final")
	data.Doc = classDocOf(n.ClassTkn)
	if data.Doc != nil {
		data.Templates = templateNamesOf(data.Doc)
	}
	if n.Extends != nil {
		parentFQ := v.state.GetFQSymbolNameFromLocalName(symbols.Name(nameString(n.Extends)))
		data.SetParent(parentFQ)
	}
	for _, iface := range n.Implements {
		ifaceFQ := v.state.GetFQSymbolNameFromLocalName(symbols.Name(nameString(iface)))
		data.Interfaces = append(data.Interfaces, ifaceFQ)
	}

	prevClass, prevIface, prevTrait := v.currentClass, v.currentIface, v.currentTrait
	prevTemplates := v.state.ActiveTemplates
	v.currentClass, v.currentIface, v.currentTrait = data, nil, nil
	v.state.ActiveTemplates = templateSet(data.Templates)

	for _, stmt := range n.Stmts {
		walkWithVisitor(stmt, v)
	}

	v.currentClass, v.currentIface, v.currentTrait = prevClass, prevIface, prevTrait
	v.state.ActiveTemplates = prevTemplates
}

// StmtEnum discovers an `enum` declaration as a ClassData with IsEnum
// set, per SPEC_FULL.md §4.3's extension of spec.md's "classes,
// interfaces, traits, enums" object system to the detailed discovery
// rule that otherwise only narrates class/interface/trait.
func (v *pass1Visitor) StmtEnum(n *ast.StmtEnum) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
	cn := symbols.NewClassName(symbols.Name(name), fq)

	if v.store.IsDeclared(fq) {
		v.state.Emit(v.emit, issue.DuplicateSymbol, "duplicate declaration of enum "+fq.String())
	}
	data := v.store.DeclareClass(cn)
	data.IsEnum = true
	data.IsFinal = true
	data.Doc = classDocOf(n.EnumTkn)
	for _, iface := range n.Implements {
		ifaceFQ := v.state.GetFQSymbolNameFromLocalName(symbols.Name(nameString(iface)))
		data.Interfaces = append(data.Interfaces, ifaceFQ)
	}

	prevClass, prevIface, prevTrait := v.currentClass, v.currentIface, v.currentTrait
	v.currentClass, v.currentIface, v.currentTrait = data, nil, nil

	for _, stmt := range n.Stmts {
		walkWithVisitor(stmt, v)
	}

	v.currentClass, v.currentIface, v.currentTrait = prevClass, prevIface, prevTrait
}

// StmtEnumCase folds one enum case into the enclosing enum's
// Constants, per SPEC_FULL.md §4.3's "cases folded as class constants
// whose value is a PHPValue.ObjectInstance-like enum-case marker" —
// the case's own type is the enum itself, not its (optional) backing
// scalar value.
func (v *pass1Visitor) StmtEnumCase(n *ast.StmtEnumCase) {
	if v.currentClass == nil || !v.currentClass.IsEnum {
		return
	}
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	if _, exists := v.currentClass.GetConstant(symbols.Name(name)); exists {
		v.state.Emit(v.emit, issue.DuplicateClassConstant, "duplicate enum case "+name)
	}
	enumType := phptype.Named(v.currentClass.Name.Local, v.currentClass.Name.FQN)
	v.currentClass.SetConstant(symbols.Name(name), &symboldata.ConstantData{
		Name:          symbols.Name(name),
		DefiningClass: v.currentClass.Name.FQN,
		Type:          phptype.UnionOf(enumType),
		Value:         phptype.ObjectInstanceValue(enumType),
		HasValue:      true,
	})
}

func (v *pass1Visitor) StmtInterface(n *ast.StmtInterface) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
	cn := symbols.NewClassName(symbols.Name(name), fq)
	if v.store.IsDeclared(fq) {
		v.state.Emit(v.emit, issue.DuplicateSymbol, "duplicate declaration of interface "+fq.String())
	}
	data := v.store.DeclareInterface(cn)
	data.Doc = classDocOf(n.InterfaceTkn)
	for _, ext := range n.Extends {
		extFQ := v.state.GetFQSymbolNameFromLocalName(symbols.Name(nameString(ext)))
		data.Extends = append(data.Extends, extFQ)
	}

	prevClass, prevIface, prevTrait := v.currentClass, v.currentIface, v.currentTrait
	v.currentClass, v.currentIface, v.currentTrait = nil, data, nil
	for _, stmt := range n.Stmts {
		walkWithVisitor(stmt, v)
	}
	v.currentClass, v.currentIface, v.currentTrait = prevClass, prevIface, prevTrait
}

func (v *pass1Visitor) StmtTrait(n *ast.StmtTrait) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
	cn := symbols.NewClassName(symbols.Name(name), fq)
	if v.store.IsDeclared(fq) {
		v.state.Emit(v.emit, issue.DuplicateSymbol, "duplicate declaration of trait "+fq.String())
	}
	data := v.store.DeclareTrait(cn)

	prevClass, prevIface, prevTrait := v.currentClass, v.currentIface, v.currentTrait
	v.currentClass, v.currentIface, v.currentTrait = nil, nil, data
	for _, stmt := range n.Stmts {
		walkWithVisitor(stmt, v)
	}
	v.currentClass, v.currentIface, v.currentTrait = prevClass, prevIface, prevTrait
}

func (v *pass1Visitor) StmtTraitUse(n *ast.StmtTraitUse) {
	if v.currentClass == nil {
		return
	}
	for _, t := range n.Traits {
		local := nameString(t)
		fq := v.state.GetFQSymbolNameFromLocalName(symbols.Name(local))
		v.currentClass.Traits = append(v.currentClass.Traits, fq)
	}
}

func (v *pass1Visitor) StmtClassMethod(n *ast.StmtClassMethod) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	md := v.getOrCreateMethod(symbols.Name(name))
	if md == nil {
		return
	}
	md.Visibility = visibilityOf(n.Modifiers)
	md.IsStatic = hasModifierToken(n.Modifiers, "static")
	md.IsAbstract = hasModifierToken(n.Modifiers, "abstract")
	md.IsFinal = hasModifierToken(n.Modifiers, "final")
	md.Doc = methodDocOf(n.Modifiers, n.FunctionTkn)
	md.Params = v.paramsOf(n.Params, md.Doc, true)
	declared, hasDeclared := v.typeOf(n.ReturnType)
	md.ReturnDeclared = hasDeclared
	if hasDeclared {
		md.ReturnType = declared
	} else if md.Doc != nil {
		if rt, ok := docReturnType(v.state, md.Doc); ok {
			md.ReturnType = rt
		}
	}
}

func (v *pass1Visitor) StmtFunction(n *ast.StmtFunction) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
	fd := v.store.GetOrCreateFunction(fq)
	fd.Doc = funcDocOf(n.FunctionTkn)
	fd.Params = v.paramsOf(n.Params, fd.Doc, false)
	declared, hasDeclared := v.typeOf(n.ReturnType)
	fd.ReturnDeclared = hasDeclared
	if hasDeclared {
		fd.ReturnType = declared
	} else if fd.Doc != nil {
		if rt, ok := docReturnType(v.state, fd.Doc); ok {
			fd.ReturnType = rt
		}
	}
}

func (v *pass1Visitor) StmtPropertyList(n *ast.StmtPropertyList) {
	if v.currentClass == nil {
		return
	}
	declared, hasDeclared := v.typeOf(n.Type)
	doc := propertyDocOf(n.Modifiers)
	for _, propVertex := range n.Props {
		prop, ok := propVertex.(*ast.StmtProperty)
		if !ok {
			continue
		}
		name, ok := variableNameFromAny(prop.Var)
		if !ok {
			continue
		}
		pd := v.currentClass.GetOrCreateProperty(symbols.Name(name))
		pd.Visibility = visibilityOf(n.Modifiers)
		pd.IsStatic = hasModifierToken(n.Modifiers, "static")
		pd.IsReadonly = hasModifierToken(n.Modifiers, "readonly")
		pd.TypeDeclared = hasDeclared
		pd.Doc = doc
		if hasDeclared {
			pd.SetType(declared)
		} else if doc != nil {
			if vt, ok := docVarType(v.state, doc); ok {
				pd.SetType(vt)
			}
		}
		if prop.Expr != nil {
			pd.HasDefault = true
		}
	}
}

func (v *pass1Visitor) StmtClassConstList(n *ast.StmtClassConstList) {
	if v.currentClass == nil {
		return
	}
	for _, cVertex := range n.Consts {
		c, ok := cVertex.(*ast.StmtConstant)
		if !ok {
			continue
		}
		name, ok := identifierName(c.Name)
		if !ok {
			continue
		}
		if _, exists := v.currentClass.GetConstant(symbols.Name(name)); exists {
			v.state.Emit(v.emit, issue.DuplicateClassConstant, "duplicate class constant "+name)
		}
		v.currentClass.SetConstant(symbols.Name(name), &symboldata.ConstantData{
			Name:          symbols.Name(name),
			DefiningClass: v.currentClass.Name.FQN,
		})
	}
}

func (v *pass1Visitor) StmtConstList(n *ast.StmtConstList) {
	for _, cVertex := range n.Consts {
		c, ok := cVertex.(*ast.StmtConstant)
		if !ok {
			continue
		}
		name, ok := identifierName(c.Name)
		if !ok {
			continue
		}
		fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
		v.store.SetConstant(fq, &symboldata.ConstantData{Name: symbols.Name(name)})
	}
}

func (v *pass1Visitor) getOrCreateMethod(name symbols.Name) *symboldata.MethodData {
	switch {
	case v.currentClass != nil:
		return v.currentClass.GetOrCreateMethod(name)
	case v.currentIface != nil:
		return v.currentIface.GetOrCreateMethod(name)
	case v.currentTrait != nil:
		return v.currentTrait.GetOrCreateMethod(name)
	}
	return nil
}

// paramsOf converts a parameter list to FunctionArgumentData, taking
// the type hint when present and falling back to the matching @param
// PHPDoc entry otherwise (spec §4.3: "FormalParameters handling with
// inline PHPDoc type extraction").
func (v *pass1Visitor) paramsOf(params []ast.Vertex, doc *phpdoc.Doc, isMethod bool) []symboldata.FunctionArgumentData {
	out := make([]symboldata.FunctionArgumentData, 0, len(params))
	for i, pVertex := range params {
		p, ok := pVertex.(*ast.Parameter)
		if !ok {
			continue
		}
		name, ok := variableNameFromAny(p.Var)
		if !ok {
			continue
		}
		declared, hasDeclared := v.typeOf(p.Type)
		arg := symboldata.FunctionArgumentData{
			Name:         symbols.Name(name),
			Position:     i,
			TypeDeclared: hasDeclared,
			Type:         declared,
			Variadic:     p.Variadic != nil,
			ByRef:        p.AmpersandTkn != nil,
			Promoted:     len(p.Modifiers) > 0,
			HasDefault:   p.DefaultValue != nil,
		}
		if !hasDeclared && doc != nil {
			if pd, ok := doc.ParamByName(name); ok {
				arg.Type = v.state.ResolveTypeExpression(pd.ParsedType).Normalize()
			}
		}
		out = append(out, arg)
	}
	return out
}

// typeOf converts a type-hint AST node (Name/NameFullyQualified/
// Nullable/UnionType) to a resolved UnionType.
func (v *pass1Visitor) typeOf(n ast.Vertex) (phptype.UnionType, bool) {
	if n == nil {
		return phptype.UnionType{}, false
	}
	return v.state.resolveTypeHintNode(n), true
}

func hasModifierToken(modifiers []ast.Vertex, target string) bool {
	for _, m := range modifiers {
		if ident, ok := m.(*ast.Identifier); ok {
			if strings.EqualFold(string(ident.Value), target) {
				return true
			}
		}
	}
	return false
}

func visibilityOf(modifiers []ast.Vertex) symboldata.Visibility {
	for _, m := range modifiers {
		if ident, ok := m.(*ast.Identifier); ok {
			switch strings.ToLower(string(ident.Value)) {
			case "protected":
				return symboldata.Protected
			case "private":
				return symboldata.Private
			}
		}
	}
	return symboldata.Public
}

func variableNameFromAny(n ast.Vertex) (string, bool) {
	if v, ok := n.(*ast.ExprVariable); ok {
		return variableName(v), true
	}
	return "", false
}

func templateNamesOf(doc *phpdoc.Doc) []symbols.Name {
	var out []symbols.Name
	for _, e := range doc.Entries {
		if e.Tag == "template" && e.VarName != "" {
			out = append(out, symbols.Name(e.VarName))
		}
	}
	return out
}

func templateSet(names []symbols.Name) map[symbols.Name]bool {
	m := make(map[symbols.Name]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func docReturnType(state *AnalysisState, doc *phpdoc.Doc) (phptype.UnionType, bool) {
	returns := doc.Returns()
	if len(returns) == 0 {
		return phptype.UnionType{}, false
	}
	if returns[0].TypeErr != nil {
		return phptype.UnionType{}, false
	}
	return state.ResolveTypeExpression(returns[0].ParsedType).Normalize(), true
}

func docVarType(state *AnalysisState, doc *phpdoc.Doc) (phptype.UnionType, bool) {
	vars := doc.Vars()
	if len(vars) == 0 {
		return phptype.UnionType{}, false
	}
	if vars[0].TypeErr != nil {
		return phptype.UnionType{}, false
	}
	return state.ResolveTypeExpression(vars[0].ParsedType).Normalize(), true
}
