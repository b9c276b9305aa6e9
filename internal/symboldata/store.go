package symboldata

import (
	"sync"

	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// ClassKind tags a ClassEntry's closed variant, mirroring
// orig:src/symboldata/class.rs's ClassType enum (None | Class |
// Interface | Trait). None is the placeholder state installed the
// first time a name is referenced before its declaration has been
// visited, letting pass 1 record forward references (e.g. a type hint
// naming a class declared later in the same file) without blocking on
// file order.
type ClassKind int

const (
	ClassKindNone ClassKind = iota
	ClassKindClass
	ClassKindInterface
	ClassKindTrait
)

// ClassEntry is the symbol table's per-name slot: exactly one of
// Class/Interface/Trait is populated once Kind leaves ClassKindNone.
type ClassEntry struct {
	mu sync.RWMutex

	Kind      ClassKind
	Class     *ClassData
	Interface *InterfaceData
	Trait     *TraitData
}

func (e *ClassEntry) getKind() ClassKind {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.Kind
}

// Store is the process-wide, file-order-independent symbol table
// (spec §3's SymbolData). All maps are keyed by
// FullyQualifiedName.Key() (ASCII-lowercase canonical form) so lookups
// are case-insensitive for classes/functions, matching PHP semantics.
type Store struct {
	mu sync.RWMutex

	classes   map[string]*ClassEntry
	functions map[string]*FunctionData
	constants map[string]*ConstantData // global constants only
}

// New returns an empty Store with the native bootstrap classes and
// functions installed (see native.go).
func New() *Store {
	s := &Store{
		classes:   make(map[string]*ClassEntry),
		functions: make(map[string]*FunctionData),
		constants: make(map[string]*ConstantData),
	}
	installNatives(s)
	return s
}

// GetOrCreateClassEntry returns the ClassEntry for fqn, atomically
// installing a ClassKindNone placeholder if this is the first
// reference. Safe to call concurrently from multiple files' pass-1
// visitors.
func (s *Store) GetOrCreateClassEntry(fqn symbols.FullyQualifiedName) *ClassEntry {
	key := fqn.Key()

	s.mu.RLock()
	if e, ok := s.classes[key]; ok {
		s.mu.RUnlock()
		return e
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.classes[key]; ok {
		return e
	}
	e := &ClassEntry{Kind: ClassKindNone}
	s.classes[key] = e
	return e
}

// GetClassEntry looks up an existing entry without creating one.
func (s *Store) GetClassEntry(fqn symbols.FullyQualifiedName) (*ClassEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.classes[fqn.Key()]
	return e, ok
}

// DeclareClass fills in (or overwrites, on a duplicate declaration) the
// entry for name as a concrete class, returning its ClassData.
func (s *Store) DeclareClass(name symbols.ClassName) *ClassData {
	e := s.GetOrCreateClassEntry(name.FQN)
	e.mu.Lock()
	defer e.mu.Unlock()
	data := newClassData(name)
	e.Kind = ClassKindClass
	e.Class = data
	e.Interface = nil
	e.Trait = nil
	return data
}

func (s *Store) DeclareInterface(name symbols.ClassName) *InterfaceData {
	e := s.GetOrCreateClassEntry(name.FQN)
	e.mu.Lock()
	defer e.mu.Unlock()
	data := newInterfaceData(name)
	e.Kind = ClassKindInterface
	e.Interface = data
	e.Class = nil
	e.Trait = nil
	return data
}

func (s *Store) DeclareTrait(name symbols.ClassName) *TraitData {
	e := s.GetOrCreateClassEntry(name.FQN)
	e.mu.Lock()
	defer e.mu.Unlock()
	data := newTraitData(name)
	e.Kind = ClassKindTrait
	e.Trait = data
	e.Class = nil
	e.Interface = nil
	return data
}

// GetClass resolves fqn to a *ClassData iff it is declared as a
// concrete class (not an interface, trait, or unresolved reference).
func (s *Store) GetClass(fqn symbols.FullyQualifiedName) (*ClassData, bool) {
	e, ok := s.GetClassEntry(fqn)
	if !ok {
		return nil, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.Kind != ClassKindClass {
		return nil, false
	}
	return e.Class, true
}

func (s *Store) GetInterface(fqn symbols.FullyQualifiedName) (*InterfaceData, bool) {
	e, ok := s.GetClassEntry(fqn)
	if !ok {
		return nil, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.Kind != ClassKindInterface {
		return nil, false
	}
	return e.Interface, true
}

func (s *Store) GetTrait(fqn symbols.FullyQualifiedName) (*TraitData, bool) {
	e, ok := s.GetClassEntry(fqn)
	if !ok {
		return nil, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.Kind != ClassKindTrait {
		return nil, false
	}
	return e.Trait, true
}

// IsDeclared reports whether fqn has ever moved past ClassKindNone —
// used to distinguish "referenced but never declared" (UnknownClass)
// from "declared".
func (s *Store) IsDeclared(fqn symbols.FullyQualifiedName) bool {
	e, ok := s.GetClassEntry(fqn)
	return ok && e.getKind() != ClassKindNone

}

// GetOrCreateFunction returns the FunctionData for fqn, installing an
// empty one on first reference (mirrors GetOrCreateClassEntry's
// forward-reference tolerance, since PHP allows calling a function
// declared later in the same file).
func (s *Store) GetOrCreateFunction(fqn symbols.FullyQualifiedName) *FunctionData {
	key := fqn.Key()

	s.mu.RLock()
	if f, ok := s.functions[key]; ok {
		s.mu.RUnlock()
		return f
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.functions[key]; ok {
		return f
	}
	f := &FunctionData{Name: fqn}
	s.functions[key] = f
	return f
}

func (s *Store) GetFunction(fqn symbols.FullyQualifiedName) (*FunctionData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.functions[fqn.Key()]
	return f, ok
}

func (s *Store) SetConstant(fqn symbols.FullyQualifiedName, cd *ConstantData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.constants[fqn.Key()] = cd
}

func (s *Store) GetConstant(fqn symbols.FullyQualifiedName) (*ConstantData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cd, ok := s.constants[fqn.Key()]
	return cd, ok
}

// AllClassKeys returns every declared (non-placeholder) class key, used
// by the inheritance-resolution pass to iterate without holding the
// store lock while walking parent chains.
func (s *Store) AllClassKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.classes))
	for k, e := range s.classes {
		if e.getKind() != ClassKindNone {
			keys = append(keys, k)
		}
	}
	return keys
}
