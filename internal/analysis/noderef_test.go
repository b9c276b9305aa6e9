package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/doITmagic/php-analyzer/internal/config"
	"github.com/doITmagic/php-analyzer/internal/issue"
)

func TestWithNodeRefAtPositionFindsVariableInsideReturn(t *testing.T) {
	src := `<?php
function greet($name) {
	return $name;
}
`
	cfg := config.DefaultConfig()
	emit := issue.NewSliceEmitter()
	a := NewFromBuffer(cfg, "noderef.php", []byte(src))
	require.NoError(t, a.Parse(emit))

	lines := strings.Split(src, "\n")
	returnLine := 3
	col := strings.Index(lines[returnLine-1], "$name")
	require.GreaterOrEqual(t, col, 0)

	var found ast.Vertex
	ok := a.WithNodeRefAtPosition(returnLine, col, func(n ast.Vertex) {
		found = n
	})
	require.True(t, ok)
	_, isVar := found.(*ast.ExprVariable)
	assert.True(t, isVar, "expected *ast.ExprVariable, got %T", found)
}

func TestWithNodeRefPathAtPositionReturnsAncestorChain(t *testing.T) {
	src := `<?php
function greet($name) {
	return $name;
}
`
	cfg := config.DefaultConfig()
	emit := issue.NewSliceEmitter()
	a := NewFromBuffer(cfg, "noderef.php", []byte(src))
	require.NoError(t, a.Parse(emit))

	lines := strings.Split(src, "\n")
	returnLine := 3
	col := strings.Index(lines[returnLine-1], "$name")
	require.GreaterOrEqual(t, col, 0)

	var path []ast.Vertex
	ok := a.WithNodeRefPathAtPosition(returnLine, col, func(p []ast.Vertex) {
		path = p
	})
	require.True(t, ok)
	require.NotEmpty(t, path)

	var sawFunction, sawReturn bool
	for _, n := range path {
		switch n.(type) {
		case *ast.StmtFunction:
			sawFunction = true
		case *ast.StmtReturn:
			sawReturn = true
		}
	}
	assert.True(t, sawFunction, "expected StmtFunction in ancestor path")
	assert.True(t, sawReturn, "expected StmtReturn in ancestor path")
	_, innermostIsVar := path[len(path)-1].(*ast.ExprVariable)
	assert.True(t, innermostIsVar, "expected innermost node to be *ast.ExprVariable, got %T", path[len(path)-1])
}

func TestWithNodeRefAtPositionMissesOutOfRangePosition(t *testing.T) {
	src := "<?php\nfunction greet() {\n\treturn 1;\n}\n"
	cfg := config.DefaultConfig()
	emit := issue.NewSliceEmitter()
	a := NewFromBuffer(cfg, "noderef.php", []byte(src))
	require.NoError(t, a.Parse(emit))

	ok := a.WithNodeRefAtPosition(999, 0, func(n ast.Vertex) {
		t.Fatalf("callback should not run for an out-of-range line, got %T", n)
	})
	assert.False(t, ok)
}
