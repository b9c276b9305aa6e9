package analysis

import (
	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// applyNamespaceStmt updates an AnalysisState's current namespace and
// resets its use_map, shared by all three pass visitors since each pass
// re-derives namespace/use_map from scratch over its own fresh
// AnalysisState (spec §5: "the use_map and namespace are per-
// AnalysisState and never shared").
func applyNamespaceStmt(state *AnalysisState, n *ast.StmtNamespace) {
	if n.Name == nil {
		state.HasNamespace = false
		state.Namespace = symbols.FullyQualifiedName{}
		return
	}
	state.Namespace = symbols.NewFQN(nameString(n.Name))
	state.HasNamespace = true
	state.UseMap = make(map[symbols.Name]symbols.FullyQualifiedName)
}

// applyUseListStmt folds one `use ...;` statement's aliases into
// state.UseMap, shared by all three pass visitors.
func applyUseListStmt(state *AnalysisState, n *ast.StmtUseList) {
	for _, useVertex := range n.Uses {
		use, ok := useVertex.(*ast.StmtUse)
		if !ok {
			continue
		}
		raw := nameString(use.Use)
		fq := symbols.NewFQN(raw)
		var alias symbols.Name
		if use.Alias != nil {
			if ident, ok := use.Alias.(*ast.Identifier); ok {
				alias = symbols.Name(ident.Value)
			}
		}
		if alias == "" {
			alias = fq.Name()
		}
		state.UseMap[alias] = fq
	}
}
