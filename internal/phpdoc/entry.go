// Package phpdoc implements the PHPDoc comment parser of spec §4.7: a
// byte-range-accurate tag scanner that turns a T_DOC_COMMENT token's
// raw text into a closed list of PHPDocEntry variants, each carrying
// the exact [Start,End) byte offsets it occupied in the original
// comment so diagnostics can point at the annotation itself rather
// than the whole docblock.
//
// Grounded on the teacher's regexp-based parsePHPDoc/parseTag
// (internal/ragcode/analyzers/php/phpdoc.go), re-expressed with
// explicit offset tracking and widened to the full tag grammar of
// §4.7.
package phpdoc

import "github.com/doITmagic/php-analyzer/internal/phptype"

// EntryKind tags the closed PHPDocEntry variant enum of spec §4.7.
type EntryKind int

const (
	EntryVar EntryKind = iota
	EntryParam
	EntryReturn
	EntryDescription
	EntryGeneral
	EntryGeneralWithParam
	EntryAnything
	EntryEmptyLine
)

// Entry is one parsed unit of a docblock. Start/End are byte offsets
// into the original, unstripped doc comment text (including the
// leading "/**" and per-line "*" decoration), so callers can slice the
// source buffer directly for a diagnostic span.
type Entry struct {
	Kind EntryKind
	Start, End int

	// EntryVar, EntryParam, EntryReturn
	RawType    string
	ParsedType phptype.IntersectionType
	TypeErr    error

	// EntryParam, and EntryVar when the variable is named explicitly
	VarName string

	// EntryGeneral, EntryGeneralWithParam: the tag itself, e.g.
	// "@throws", "@deprecated", "@see". GeneralWithParam additionally
	// populates VarName for tags like "@property-read" that name a
	// variable.
	Tag string

	Description string
}

// Doc is a parsed docblock: the full ordered Entry list plus accessors
// that filter it for the tags pass 2/3 consult most often.
type Doc struct {
	Entries []Entry
}

// Vars returns all EntryVar entries in source order.
func (d *Doc) Vars() []Entry {
	return d.byKind(EntryVar)
}

// Params returns all EntryParam entries in source order.
func (d *Doc) Params() []Entry {
	return d.byKind(EntryParam)
}

// Returns returns all EntryReturn entries (PHPDoc permits at most one
// in practice, but the grammar does not forbid more).
func (d *Doc) Returns() []Entry {
	return d.byKind(EntryReturn)
}

// ParamByName finds the @param entry naming the given variable
// (without its leading '$'), if any.
func (d *Doc) ParamByName(name string) (Entry, bool) {
	for _, e := range d.Entries {
		if e.Kind == EntryParam && e.VarName == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Description concatenates every EntryDescription entry's text.
func (d *Doc) Description() string {
	s := ""
	for _, e := range d.Entries {
		if e.Kind == EntryDescription {
			if s != "" {
				s += " "
			}
			s += e.Description
		}
	}
	return s
}

// HasTag reports whether a bare @tag (e.g. "@deprecated") appears.
func (d *Doc) HasTag(tag string) bool {
	for _, e := range d.Entries {
		if (e.Kind == EntryGeneral || e.Kind == EntryGeneralWithParam) && e.Tag == tag {
			return true
		}
	}
	return false
}

func (d *Doc) byKind(k EntryKind) []Entry {
	var out []Entry
	for _, e := range d.Entries {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
