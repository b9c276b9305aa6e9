package analysis

import "github.com/VKCOM/php-parser/pkg/ast"

// positionOf extracts the byte/line position carried by the concrete
// AST node types pass 2 and pass 3 stamp onto emitted issues. Only the
// node kinds these two passes actually position diagnostics against are
// covered; anything else reports a zero position, which Emit tolerates
// (spec §7: "downstream logic is required to be None-tolerant").
func positionOf(n ast.Vertex) (startByte, endByte, line int) {
	switch t := n.(type) {
	case *ast.Name:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.NameFullyQualified:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.NameRelative:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.Identifier:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.Parameter:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.StmtClass:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.StmtInterface:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.StmtClassMethod:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.StmtFunction:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.StmtPropertyList:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.StmtExpression:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.StmtReturn:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.ExprClassConstFetch:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.ExprMethodCall:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.ExprStaticCall:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.ExprPropertyFetch:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.ExprNew:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	case *ast.ExprVariable:
		if t.Position != nil {
			return t.Position.StartPos, t.Position.EndPos, t.Position.StartLine
		}
	}
	return 0, 0, 0
}

// setPos stamps state's current-position bookkeeping from n, tolerating
// a node kind positionOf does not recognize (position stays whatever it
// was, which is the safe default instead of zeroing out a useful range).
func setPos(state *AnalysisState, n ast.Vertex) {
	start, end, line := positionOf(n)
	if start == 0 && end == 0 && line == 0 {
		return
	}
	state.SetPosition(start, end, line)
}
