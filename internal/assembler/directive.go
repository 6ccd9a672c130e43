package assembler

import (
	"github.com/quietcore/rvm8/internal/symtab"
	"github.com/quietcore/rvm8/internal/token"
)

// DirectiveKind tags a Directive record's variant.
type DirectiveKind int

const (
	GenericDirective DirectiveKind = iota
	MacroDirective
)

// Directive is a first-pass-captured directive body. Generic covers .entry
// and .section; MacroDirective covers .macro/.endmacro blocks.
type Directive struct {
	Kind       DirectiveKind
	Body       []token.Token // Generic, and Macro body
	Name       token.Token   // Macro: the macro's name token
	Parameters []token.Token // Macro: positional parameter tokens
}

// Table maps a directive id to its records in insertion order. Multiple
// definitions under the same directive id (e.g. several .macro blocks) are
// appended, never collapsed.
type Table struct {
	byID map[symtab.ID][]Directive
}

// NewTable creates an empty directive table.
func NewTable() *Table {
	return &Table{byID: make(map[symtab.ID][]Directive)}
}

// Add appends a directive record under id.
func (t *Table) Add(id symtab.ID, d Directive) {
	t.byID[id] = append(t.byID[id], d)
}

// Entries returns the records captured under id, in insertion order.
func (t *Table) Entries(id symtab.ID) []Directive {
	return t.byID[id]
}

// FindMacro scans the records under macroDirectiveID for the one whose name
// token carries nameID.
func (t *Table) FindMacro(macroDirectiveID symtab.ID, nameID symtab.ID) (Directive, bool) {
	for _, d := range t.byID[macroDirectiveID] {
		if d.Kind == MacroDirective && d.Name.SymbolID == nameID {
			return d, true
		}
	}
	return Directive{}, false
}
