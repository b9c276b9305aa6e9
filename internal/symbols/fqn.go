package symbols

import "strings"

// FullyQualifiedName is an ordered sequence of Names representing an
// absolute namespace path. The implicit namespace root is never stored
// as an element; Path is empty for the global namespace itself.
type FullyQualifiedName struct {
	Path []Name
}

// NewFQN builds a FullyQualifiedName from a leading-backslash (or bare)
// string such as "\App\Models\User" or "App\Models\User".
func NewFQN(raw string) FullyQualifiedName {
	raw = TrimLeadingBackslash(raw)
	if raw == "" {
		return FullyQualifiedName{}
	}
	parts := strings.Split(raw, `\`)
	path := make([]Name, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		path = append(path, Name(p))
	}
	return FullyQualifiedName{Path: path}
}

// FQNOf builds an absolute FQN from a single Name, with no namespace.
func FQNOf(n Name) FullyQualifiedName {
	return FullyQualifiedName{Path: []Name{n}}
}

// Push appends a Name component, returning a new path (does not mutate
// shared backing arrays of the receiver).
func (f FullyQualifiedName) Push(n Name) FullyQualifiedName {
	next := make([]Name, len(f.Path), len(f.Path)+1)
	copy(next, f.Path)
	next = append(next, n)
	return FullyQualifiedName{Path: next}
}

// Append concatenates additional Name components.
func (f FullyQualifiedName) Append(names ...Name) FullyQualifiedName {
	next := make([]Name, len(f.Path), len(f.Path)+len(names))
	copy(next, f.Path)
	next = append(next, names...)
	return FullyQualifiedName{Path: next}
}

// Pop removes and returns the last component, if any.
func (f FullyQualifiedName) Pop() (FullyQualifiedName, Name, bool) {
	if len(f.Path) == 0 {
		return f, "", false
	}
	last := f.Path[len(f.Path)-1]
	return FullyQualifiedName{Path: f.Path[:len(f.Path)-1]}, last, true
}

// Name returns the last path component (the local/declared name), or
// "" if the path is empty.
func (f FullyQualifiedName) Name() Name {
	if len(f.Path) == 0 {
		return ""
	}
	return f.Path[len(f.Path)-1]
}

// Namespace returns the FQN with its last component removed.
func (f FullyQualifiedName) Namespace() FullyQualifiedName {
	ns, _, _ := f.Pop()
	return ns
}

// Level mirrors the original's "namespace depth" helper: 0 for a
// top-level global name, n-1 for a path of length n.
func (f FullyQualifiedName) Level() int {
	if len(f.Path) == 0 {
		return 0
	}
	return len(f.Path) - 1
}

// ToLower returns the component-wise ASCII-lowercased FQN used as the
// canonical lookup key in SymbolData.
func (f FullyQualifiedName) ToLower() FullyQualifiedName {
	next := make([]Name, len(f.Path))
	for i, n := range f.Path {
		next[i] = n.ToLower()
	}
	return FullyQualifiedName{Path: next}
}

// String renders the canonical "\A\B\C" form.
func (f FullyQualifiedName) String() string {
	var b strings.Builder
	for _, p := range f.Path {
		b.WriteByte('\\')
		b.WriteString(string(p))
	}
	return b.String()
}

// Key returns the string used as a map key: the lowercase canonical
// form. Two FQNs that differ only in case produce the same Key.
func (f FullyQualifiedName) Key() string {
	return f.ToLower().String()
}

// Equal compares two FQNs case-insensitively over the whole path,
// matching spec §3 ("Lookups normalize via ASCII-lowercase of each
// component").
func (f FullyQualifiedName) Equal(other FullyQualifiedName) bool {
	return f.Key() == other.Key()
}

// IsEmpty reports whether the path has no components (the global
// namespace with no trailing name, or an unset FQN).
func (f FullyQualifiedName) IsEmpty() bool {
	return len(f.Path) == 0
}
