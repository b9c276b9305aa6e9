package phptype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnionPrimitives(t *testing.T) {
	u, err := ParseUnion("int|string|null")
	require.NoError(t, err)
	assert.Equal(t, 3, u.Len())
	assert.True(t, u.IsNullable())
}

func TestParseNullableShorthand(t *testing.T) {
	u, err := ParseUnion("?string")
	require.NoError(t, err)
	assert.True(t, u.IsNullable())
	assert.True(t, IsString(u.WithoutNull()))
}

func TestParseArrayShorthand(t *testing.T) {
	u, err := ParseUnion("int[]")
	require.NoError(t, err)
	require.Equal(t, 1, u.Len())
	assert.Equal(t, KindVector, u.Types()[0].Kind)
}

func TestParseGenericCollection(t *testing.T) {
	u, err := ParseUnion("Collection<int>")
	require.NoError(t, err)
	require.Equal(t, 1, u.Len())
	assert.Equal(t, KindGeneric, u.Types()[0].Kind)
}

func TestParseArrayMapGeneric(t *testing.T) {
	u, err := ParseUnion("array<string,int>")
	require.NoError(t, err)
	require.Equal(t, 1, u.Len())
	assert.Equal(t, KindHashMap, u.Types()[0].Kind)
}

func TestParseShape(t *testing.T) {
	u, err := ParseUnion("array{name:string,age?:int}")
	require.NoError(t, err)
	require.Equal(t, 1, u.Len())
	d := u.Types()[0]
	require.Equal(t, KindShape, d.Kind)
	require.Len(t, d.ShapeFields, 2)
	assert.False(t, d.ShapeFields[0].Optional)
	assert.True(t, d.ShapeFields[1].Optional)
}

func TestParseCallable(t *testing.T) {
	u, err := ParseUnion("callable(int,string):bool")
	require.NoError(t, err)
	require.Equal(t, 1, u.Len())
	d := u.Types()[0]
	require.Equal(t, KindTypedCallable, d.Kind)
	assert.Len(t, d.CallableParams, 2)
}

func TestParseIntersection(t *testing.T) {
	it, err := ParseTypeExpression("Countable&Traversable")
	require.NoError(t, err)
	assert.Equal(t, 2, it.Len())
}

func TestParseClassString(t *testing.T) {
	u, err := ParseUnion("class-string<App\\Model>")
	require.NoError(t, err)
	require.Equal(t, 1, u.Len())
	d := u.Types()[0]
	require.Equal(t, KindSpecial, d.Kind)
	assert.Equal(t, SpecialClassString, d.Special)
	require.NotNil(t, d.ClassStrF)
}

func TestParseInvalidTrailingInput(t *testing.T) {
	_, err := ParseTypeExpression("int string")
	assert.Error(t, err)
}
