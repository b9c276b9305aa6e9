package phptype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doITmagic/php-analyzer/internal/symbols"
)

func TestUnionMergeIsCommutative(t *testing.T) {
	a := UnionOf(Int(), String())
	b := UnionOf(String(), Null())

	ab := a.Merge(b)
	ba := b.Merge(a)

	assert.True(t, ab.Equal(ba))
	assert.Equal(t, ab.String(), ba.String())
	assert.Equal(t, 3, ab.Len())
}

func TestUnionAddDeduplicates(t *testing.T) {
	u := UnionOf(Int())
	u = u.Add(Int())
	assert.Equal(t, 1, u.Len())
}

func TestUnionNullableHelpers(t *testing.T) {
	u := UnionOf(String(), Null())
	assert.True(t, u.IsNullable())

	without := u.WithoutNull()
	assert.False(t, without.IsNullable())
	assert.True(t, IsString(without))
}

func TestUnionTruthiness(t *testing.T) {
	allTrue := UnionOf(True())
	assert.True(t, allTrue.CanEvaluateToTrue())
	assert.False(t, allTrue.CanEvaluateToFalse())

	nullable := UnionOf(String(), Null())
	assert.True(t, nullable.CanEvaluateToTrue())
	assert.True(t, nullable.CanEvaluateToFalse())
}

func TestDiscreteTypeEqualityIsCaseInsensitiveForNamed(t *testing.T) {
	a := Named("Foo", symbols.NewFQN("App\\Foo"))
	b := Named("foo", symbols.NewFQN("app\\foo"))
	assert.True(t, a.Equal(b))
}

func TestGenericConcretizeTemplates(t *testing.T) {
	base := Named("Collection", symbols.NewFQN("Collection"))
	g := Generic(base, []UnionType{UnionOf(Template("T"))})

	concrete := map[symbols.Name]UnionType{"T": UnionOf(Int())}
	resolved := g.ConcretizeTemplates(concrete)

	require.Equal(t, 1, resolved.Len())
	assert.Equal(t, "\\Collection<int>", resolved.String())
}
