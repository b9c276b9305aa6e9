package phpdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doITmagic/php-analyzer/internal/phptype"
)

func TestParseParamAndReturn(t *testing.T) {
	raw := "/**\n" +
		" * Finds a user by id.\n" +
		" *\n" +
		" * @param int $id the user id\n" +
		" * @return User|null\n" +
		" */"
	doc := Parse(raw)

	require.Equal(t, "Finds a user by id.", doc.Description())

	params := doc.Params()
	require.Len(t, params, 1)
	assert.Equal(t, "id", params[0].VarName)
	assert.True(t, phptype.IsInt(params[0].ParsedType.Normalize()))

	returns := doc.Returns()
	require.Len(t, returns, 1)
	assert.True(t, returns[0].ParsedType.Normalize().IsNullable())
}

func TestParseVarTag(t *testing.T) {
	raw := "/** @var string */"
	doc := Parse(raw)
	vars := doc.Vars()
	require.Len(t, vars, 1)
	assert.True(t, phptype.IsString(vars[0].ParsedType.Normalize()))
}

func TestParseBareTags(t *testing.T) {
	raw := "/**\n * @deprecated use newMethod instead\n * @throws RuntimeException\n */"
	doc := Parse(raw)
	assert.True(t, doc.HasTag("@deprecated"))
	assert.True(t, doc.HasTag("@throws"))
}

func TestParseEmptyLinesPreserved(t *testing.T) {
	raw := "/**\n * First.\n *\n * Second.\n */"
	doc := Parse(raw)
	var empties int
	for _, e := range doc.Entries {
		if e.Kind == EntryEmptyLine {
			empties++
		}
	}
	assert.Equal(t, 1, empties)
	assert.Equal(t, "First. Second.", doc.Description())
}

func TestOffsetsAreWithinSource(t *testing.T) {
	raw := "/**\n * @param int $id\n */"
	doc := Parse(raw)
	for _, e := range doc.Entries {
		require.GreaterOrEqual(t, e.Start, 0)
		require.LessOrEqual(t, e.End, len(raw))
		require.LessOrEqual(t, e.Start, e.End)
	}
}
