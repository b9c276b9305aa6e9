package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doITmagic/php-analyzer/internal/phptype"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	s := NewScope()
	a := s.GetOrCreate("x")
	a.InferredType = phptype.UnionOf(phptype.Int())
	b := s.GetOrCreate("x")
	assert.True(t, b.InferredType.Equal(phptype.UnionOf(phptype.Int())))
}

func TestMergeUnionsBranchTypes(t *testing.T) {
	base := NewScope()
	base.GetOrCreate("x").InferredType = phptype.UnionOf(phptype.Int())

	branchA := base.Fork()
	branchA.GetOrCreate("x").InferredType = phptype.UnionOf(phptype.String())

	branchB := base.Fork()
	branchB.GetOrCreate("x").InferredType = phptype.UnionOf(phptype.Null())

	base.Merge(branchA, branchB)

	merged, ok := base.Get("x")
	require.True(t, ok)
	assert.Equal(t, 3, merged.InferredType.Len())
}

func TestMergeVariableWrittenOnOnlyOneBranchKeepsPreBranchType(t *testing.T) {
	base := NewScope()
	base.GetOrCreate("y").InferredType = phptype.UnionOf(phptype.Int())

	branchA := base.Fork()
	branchA.GetOrCreate("y").InferredType = phptype.UnionOf(phptype.String())

	branchB := base.Fork() // leaves y untouched

	base.Merge(branchA, branchB)

	merged, ok := base.Get("y")
	require.True(t, ok)
	assert.True(t, merged.InferredType.Contains(phptype.Int()))
	assert.Equal(t, 2, merged.InferredType.Len())
}

func TestScopeStackPushPopIsolatesLocals(t *testing.T) {
	st := NewScopeStack()
	st.Top().GetOrCreate("outer").InferredType = phptype.UnionOf(phptype.String())

	st.Push()
	_, ok := st.Top().Get("outer")
	assert.False(t, ok)
	st.Pop()

	v, ok := st.Top().Get("outer")
	require.True(t, ok)
	assert.True(t, phptype.IsString(v.InferredType))
}

func TestEffectiveTypePrefersCommentOverDeclared(t *testing.T) {
	v := &VariableData{
		PHPDeclaredType: phptype.MixedUnion(), HasDeclaredType: true,
		CommentType: phptype.UnionOf(phptype.Int()), HasCommentType: true,
	}
	assert.True(t, phptype.IsInt(v.EffectiveType()))
}
