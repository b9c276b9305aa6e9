package symboldata

import (
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// installNatives seeds the store with the subset of PHP's built-in
// class hierarchy and standard-library function signatures that
// SPEC_FULL.md's ambient-stack section calls out: enough for member
// access and call-return inference to resolve against real interfaces
// (Traversable, Countable, ArrayAccess, Throwable) and the handful of
// always-available functions the end-to-end scenarios in spec §8
// exercise, without attempting to model the whole of ext/standard.
func installNatives(s *Store) {
	installNativeInterfaces(s)
	installNativeClasses(s)
	installNativeFunctions(s)
}

func iface(s *Store, name string, extends ...string) *InterfaceData {
	fqn := symbols.NewFQN(name)
	data := s.DeclareInterface(symbols.NewClassNameFromFQN(fqn))
	for _, e := range extends {
		data.Extends = append(data.Extends, symbols.NewFQN(e))
	}
	return data
}

func class(s *Store, name string, parent string, interfaces ...string) *ClassData {
	fqn := symbols.NewFQN(name)
	data := s.DeclareClass(symbols.NewClassNameFromFQN(fqn))
	if parent != "" {
		p := symbols.NewFQN(parent)
		data.Parent = &p
	}
	for _, i := range interfaces {
		data.Interfaces = append(data.Interfaces, symbols.NewFQN(i))
	}
	return data
}

func installNativeInterfaces(s *Store) {
	iface(s, `\Traversable`)
	iface(s, `\Iterator`, `\Traversable`)
	iface(s, `\IteratorAggregate`, `\Traversable`)
	iface(s, `\Countable`)
	iface(s, `\ArrayAccess`)
	iface(s, `\Stringable`)
	iface(s, `\JsonSerializable`)
	iface(s, `\Throwable`, `\Stringable`)
}

func installNativeClasses(s *Store) {
	exception := class(s, `\Exception`, "", `\Throwable`)
	addMethod(exception, "getMessage", phptype.UnionOf(phptype.String()))
	addMethod(exception, "getCode", phptype.UnionOf(phptype.Int()))
	addMethod(exception, "getPrevious", phptype.UnionOf(phptype.Named("Throwable", symbols.NewFQN(`\Throwable`)), phptype.Null()))
	addMethod(exception, "getTrace", phptype.UnionOf(phptype.Vector(phptype.MixedUnion())))
	addMethod(exception, "getTraceAsString", phptype.UnionOf(phptype.String()))
	addMethod(exception, "getFile", phptype.UnionOf(phptype.String()))
	addMethod(exception, "getLine", phptype.UnionOf(phptype.Int()))
	addMethod(exception, "__toString", phptype.UnionOf(phptype.String()))

	class(s, `\Error`, "", `\Throwable`)
	class(s, `\TypeError`, `\Error`)
	class(s, `\ValueError`, `\Error`)
	class(s, `\ArgumentCountError`, `\TypeError`)
	class(s, `\RuntimeException`, `\Exception`)
	class(s, `\LogicException`, `\Exception`)
	class(s, `\InvalidArgumentException`, `\LogicException`)
	class(s, `\OutOfRangeException`, `\LogicException`)
	class(s, `\OutOfBoundsException`, `\RuntimeException`)
	class(s, `\UnexpectedValueException`, `\RuntimeException`)
	class(s, `\DomainException`, `\LogicException`)
	class(s, `\RangeException`, `\RuntimeException`)
	class(s, `\OverflowException`, `\RuntimeException`)
	class(s, `\UnderflowException`, `\RuntimeException`)
	class(s, `\JsonException`, `\Exception`)

	arrIter := class(s, `\ArrayIterator`, "", `\Iterator`, `\ArrayAccess`, `\Countable`)
	addMethod(arrIter, "current", phptype.MixedUnion())
	addMethod(arrIter, "key", phptype.UnionOf(phptype.Int(), phptype.String()))
	addMethod(arrIter, "next", phptype.VoidUnion())
	addMethod(arrIter, "rewind", phptype.VoidUnion())
	addMethod(arrIter, "valid", phptype.BoolUnion())
	addMethod(arrIter, "count", phptype.UnionOf(phptype.Int()))

	class(s, `\stdClass`, "")
	class(s, `\Closure`, "")

	dt := class(s, `\DateTimeImmutable`, "")
	addMethod(dt, "format", phptype.UnionOf(phptype.String()))
	addMethod(dt, "getTimestamp", phptype.UnionOf(phptype.Int()))
}

func addMethod(c *ClassData, name string, ret phptype.UnionType) {
	m := c.GetOrCreateMethod(symbols.Name(name))
	m.ReturnType = ret
	m.ReturnDeclared = true
}

// installNativeFunctions seeds return-type signatures for the
// standard-library functions referenced across SPEC_FULL.md's domain
// stack components (string/array helpers, type predicates, and the
// reflection accessors exercised by the class-constant and instanceof
// scenarios of spec §8).
func installNativeFunctions(s *Store) {
	sig := func(name string, ret phptype.DiscreteType, params ...phptype.UnionType) {
		f := s.GetOrCreateFunction(symbols.NewFQN(name))
		f.ReturnType = phptype.UnionOf(ret)
		f.ReturnDeclared = true
		for i, p := range params {
			f.Params = append(f.Params, FunctionArgumentData{
				Name: symbols.Name("arg"), Position: i, Type: p, TypeDeclared: true,
			})
		}
	}

	sig("strlen", phptype.Int())
	sig("count", phptype.Int())
	sig("sizeof", phptype.Int())
	sig("strtolower", phptype.String())
	sig("strtoupper", phptype.String())
	sig("trim", phptype.String())
	sig("ltrim", phptype.String())
	sig("rtrim", phptype.String())
	sig("str_repeat", phptype.String())
	sig("str_replace", phptype.String())
	sig("substr", phptype.String())
	sig("sprintf", phptype.String())
	sig("implode", phptype.String())
	sig("json_encode", phptype.String())
	sig("is_string", phptype.Bool())
	sig("is_int", phptype.Bool())
	sig("is_float", phptype.Bool())
	sig("is_bool", phptype.Bool())
	sig("is_array", phptype.Bool())
	sig("is_object", phptype.Bool())
	sig("is_null", phptype.Bool())
	sig("is_callable", phptype.Bool())
	sig("is_numeric", phptype.Bool())
	sig("array_key_exists", phptype.Bool())
	sig("in_array", phptype.Bool())
	sig("function_exists", phptype.Bool())
	sig("class_exists", phptype.Bool())
	sig("method_exists", phptype.Bool())
	sig("property_exists", phptype.Bool())
	sig("get_class", phptype.String())
	sig("gettype", phptype.String())
	sig("rand", phptype.Int())
	sig("mt_rand", phptype.Int())
	sig("random_int", phptype.Int())
	sig("abs", phptype.Int())
	sig("max", phptype.Int())
	sig("min", phptype.Int())
	sig("intdiv", phptype.Int())
	sig("array_sum", phptype.Int())
	sig("boolval", phptype.Bool())
	sig("intval", phptype.Int())
	sig("floatval", phptype.Float())
	sig("strval", phptype.String())

	explode := s.GetOrCreateFunction(symbols.NewFQN("explode"))
	explode.ReturnType = phptype.UnionOf(phptype.Vector(phptype.UnionOf(phptype.String())))
	explode.ReturnDeclared = true

	arrayKeys := s.GetOrCreateFunction(symbols.NewFQN("array_keys"))
	arrayKeys.ReturnType = phptype.UnionOf(phptype.Vector(phptype.MixedUnion()))
	arrayKeys.ReturnDeclared = true

	arrayValues := s.GetOrCreateFunction(symbols.NewFQN("array_values"))
	arrayValues.ReturnType = phptype.UnionOf(phptype.Vector(phptype.MixedUnion()))
	arrayValues.ReturnDeclared = true

	arrayMap := s.GetOrCreateFunction(symbols.NewFQN("array_map"))
	arrayMap.ReturnType = phptype.UnionOf(phptype.Vector(phptype.MixedUnion()))
	arrayMap.ReturnDeclared = true

	arrayFilter := s.GetOrCreateFunction(symbols.NewFQN("array_filter"))
	arrayFilter.ReturnType = phptype.UnionOf(phptype.Vector(phptype.MixedUnion()))
	arrayFilter.ReturnDeclared = true

	jsonDecode := s.GetOrCreateFunction(symbols.NewFQN("json_decode"))
	jsonDecode.ReturnType = phptype.MixedUnion()
	jsonDecode.ReturnDeclared = true
}
