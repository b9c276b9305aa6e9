package symbols

// ClassName is a pair of (local Name, FQN): the local Name records how
// the type was written at the use site (so diagnostics like
// WrongClassNameCasing can point at the discrepancy), while the FQN is
// the canonical lookup key (spec §3).
type ClassName struct {
	Local Name
	FQN   FullyQualifiedName
}

// NewClassName pairs a local spelling with its resolved FQN.
func NewClassName(local Name, fqn FullyQualifiedName) ClassName {
	return ClassName{Local: local, FQN: fqn}
}

// NewClassNameFromFQN derives a ClassName whose local spelling is the
// FQN's own last component (used when there is no separate use-site
// spelling to preserve, e.g. resolving a base-class reference already
// stored as an FQN).
func NewClassNameFromFQN(fqn FullyQualifiedName) ClassName {
	return ClassName{Local: fqn.Name(), FQN: fqn}
}

// Key is the canonical lowercase FQN string used in SymbolData maps.
func (c ClassName) Key() string {
	return c.FQN.Key()
}

// Namespace returns the namespace portion of the FQN.
func (c ClassName) Namespace() FullyQualifiedName {
	return c.FQN.Namespace()
}

// Equal compares two ClassNames by their canonical FQN only, ignoring
// the local spelling (two references to "\App\Foo" written as "Foo"
// and "App\Foo" in different files are the same class).
func (c ClassName) Equal(other ClassName) bool {
	return c.FQN.Equal(other.FQN)
}

func (c ClassName) String() string {
	return c.FQN.String()
}
