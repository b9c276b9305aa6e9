package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doITmagic/php-analyzer/internal/config"
	"github.com/doITmagic/php-analyzer/internal/issue"
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/symboldata"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

func runAllPasses(t *testing.T, src string) (*symboldata.Store, *GlobalState, *issue.SliceEmitter) {
	t.Helper()
	cfg := config.DefaultConfig()
	store := symboldata.New()
	global := NewGlobalState()
	emit := issue.NewSliceEmitter()

	a := NewFromBuffer(cfg, "test.php", []byte(src))
	require.NoError(t, a.Parse(emit))
	a.FirstPass(store, emit)
	a.SecondPass(store, global, emit)
	a.ThirdPass(store, global, emit)
	return store, global, emit
}

func TestPass3InfersReturnTypeFromBody(t *testing.T) {
	store, _, _ := runAllPasses(t, `<?php
function greet() {
	return "hello";
}
`)
	fd, ok := store.GetFunction(symbols.FQNOf("greet"))
	require.True(t, ok)
	assert.True(t, phptype.IsString(fd.GetInferredReturnType()))
}

func TestPass3MergesReturnTypesAcrossIfBranches(t *testing.T) {
	store, _, _ := runAllPasses(t, `<?php
function pick($flag) {
	if ($flag) {
		return 1;
	} else {
		return "one";
	}
}
`)
	fd, ok := store.GetFunction(symbols.FQNOf("pick"))
	require.True(t, ok)
	ret := fd.GetInferredReturnType()
	assert.True(t, phptype.IsInt(ret) || ret.Contains(phptype.Int()))
	assert.True(t, ret.Contains(phptype.String()))
}

func TestPass3WhileLoopReachesFixedPointWithinBound(t *testing.T) {
	store, _, emit := runAllPasses(t, `<?php
function countUp() {
	$i = 0;
	while ($i < 10) {
		$i = $i + 1;
	}
	return $i;
}
`)
	fd, ok := store.GetFunction(symbols.FQNOf("countUp"))
	require.True(t, ok)
	assert.True(t, phptype.IsInt(fd.GetInferredReturnType()))
	assert.Empty(t, emit.Sorted())
}

func TestPass3ForeachBindsValueFromVectorElementType(t *testing.T) {
	store, _, _ := runAllPasses(t, `<?php
function sumAll(array $nums) {
	$total = 0;
	foreach ($nums as $n) {
		$total = $total + $n;
	}
	return $total;
}
`)
	fd, ok := store.GetFunction(symbols.FQNOf("sumAll"))
	require.True(t, ok)
	assert.False(t, fd.GetInferredReturnType().Empty())
}

func TestPass3TryCatchBindsCaughtExceptionType(t *testing.T) {
	store, _, emit := runAllPasses(t, `<?php
class MyError extends Exception {}

function risky() {
	try {
		return 1;
	} catch (MyError $e) {
		return 0;
	}
}
`)
	_, ok := store.GetFunction(symbols.FQNOf("risky"))
	require.True(t, ok)
	for _, i := range emit.Sorted() {
		assert.NotEqual(t, issue.UnknownClass, i.Kind, i.Message)
	}
}

func TestPass3UnknownFunctionCallIsReported(t *testing.T) {
	_, _, emit := runAllPasses(t, `<?php
function caller() {
	return totallyUndefinedFunction();
}
`)
	var found bool
	for _, i := range emit.Sorted() {
		if i.Kind == issue.UnknownFunction {
			found = true
		}
	}
	assert.True(t, found)
}

// TestPass3EndToEndScenarios runs the literal input/output scenarios
// documented for the inference engine, one table entry per scenario,
// each asserting the emitted issue kinds and, where stated, the
// inferred return type or a folded constant value.
func TestPass3EndToEndScenarios(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		check func(t *testing.T, store *symboldata.Store, emit *issue.SliceEmitter)
	}{
		{
			name: "return of simple literal",
			src: `<?php function f() { return 42; }`,
			check: func(t *testing.T, store *symboldata.Store, emit *issue.SliceEmitter) {
				fd, ok := store.GetFunction(symbols.FQNOf("f"))
				require.True(t, ok)
				assert.True(t, phptype.IsInt(fd.GetInferredReturnType()))
				assert.Empty(t, emit.Sorted())
			},
		},
		{
			name: "conditional value merge",
			src: `<?php function f() { if (rand(0,1)) { $x = "a"; } else { $x = 3.14; } return $x; }`,
			check: func(t *testing.T, store *symboldata.Store, emit *issue.SliceEmitter) {
				fd, ok := store.GetFunction(symbols.FQNOf("f"))
				require.True(t, ok)
				ret := fd.GetInferredReturnType()
				assert.True(t, ret.Contains(phptype.String()))
				assert.True(t, ret.Contains(phptype.Float()))
				assert.Empty(t, emit.Sorted())
			},
		},
		{
			name: "class constant propagation",
			src: `<?php class K { const N = 3; } function f() { return K::N + 1; }`,
			check: func(t *testing.T, store *symboldata.Store, emit *issue.SliceEmitter) {
				cd, ok := store.GetClass(symbols.FQNOf("K"))
				require.True(t, ok)
				nConst, ok := cd.GetConstant("N")
				require.True(t, ok)
				require.True(t, nConst.HasValue)
				assert.EqualValues(t, 3, nConst.Value.I)

				fd, ok := store.GetFunction(symbols.FQNOf("f"))
				require.True(t, ok)
				assert.True(t, phptype.IsInt(fd.GetInferredReturnType()))
				assert.Empty(t, emit.Sorted())
			},
		},
		{
			name: "unknown class on member call",
			src: `<?php function f(MissingClass $x) { return $x->foo(); }`,
			check: func(t *testing.T, store *symboldata.Store, emit *issue.SliceEmitter) {
				var found bool
				for _, i := range emit.Sorted() {
					if i.Kind == issue.UnknownClass {
						found = true
					}
				}
				assert.True(t, found)
			},
		},
		{
			name: "property type through constructor",
			src: `<?php
class A {
	/** @var string */
	public $s;
	function __construct() { $this->s = "x"; }
}
function f() {
	$a = new A();
	return $a->s;
}
`,
			check: func(t *testing.T, store *symboldata.Store, emit *issue.SliceEmitter) {
				fd, ok := store.GetFunction(symbols.FQNOf("f"))
				require.True(t, ok)
				assert.True(t, phptype.IsString(fd.GetInferredReturnType()))
				assert.Empty(t, emit.Sorted())
			},
		},
		{
			name: "instanceof narrowing removes MethodCallOnNullableType",
			src: `<?php
class X { function foo() {} }
function f(?X $x) {
	if ($x instanceof X) {
		$x->foo();
	}
}
`,
			check: func(t *testing.T, store *symboldata.Store, emit *issue.SliceEmitter) {
				assert.Empty(t, emit.Sorted())
			},
		},
		{
			name: "missing instanceof guard raises MethodCallOnNullableType",
			src: `<?php
class X { function foo() {} }
function f(?X $x) {
	$x->foo();
}
`,
			check: func(t *testing.T, store *symboldata.Store, emit *issue.SliceEmitter) {
				var found bool
				for _, i := range emit.Sorted() {
					if i.Kind == issue.MethodCallOnNullableType {
						found = true
					}
				}
				assert.True(t, found)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, _, emit := runAllPasses(t, tc.src)
			tc.check(t, store, emit)
		})
	}
}

func TestPass3SwitchMergesBranchesWithoutPanicking(t *testing.T) {
	store, _, _ := runAllPasses(t, `<?php
function classify($x) {
	switch ($x) {
	case 1:
		return "one";
	case 2:
		return "two";
	default:
		return "other";
	}
}
`)
	fd, ok := store.GetFunction(symbols.FQNOf("classify"))
	require.True(t, ok)
	assert.True(t, phptype.IsString(fd.GetInferredReturnType()))
}
