// Package ast defines the node types the parser builds and the Program
// aggregate that collects top-level definitions.
package ast

import (
	"math/big"

	"github.com/marn-lang/marn/pkg/compiler/source"
)

// Node represents any node in the abstract syntax tree.
type Node interface {
	Pos() source.Location
}

// Name is a reference to a word, constructor, type or type variable.
type Name struct {
	Loc  source.Location
	Name string
}

func (n *Name) Pos() source.Location { return n.Loc }

// Nat is an unsigned natural literal.
type Nat struct {
	Loc   source.Location
	Value uint64
}

func (n *Nat) Pos() source.Location { return n.Loc }

// Int is a signed integer literal.
type Int struct {
	Loc   source.Location
	Value int64
}

func (i *Int) Pos() source.Location { return i.Loc }

// Rat is a rational literal. Value is normalized with a positive
// denominator; the sign lives on the numerator.
type Rat struct {
	Loc   source.Location
	Value *big.Rat
}

func (r *Rat) Pos() source.Location { return r.Loc }

// String is a string literal with escapes already decoded.
type String struct {
	Loc   source.Location
	Value string
}

func (s *String) Pos() source.Location { return s.Loc }

// Comment preserves a source comment verbatim, both at top level and
// interleaved in bodies, so documentation survives into the tree.
type Comment struct {
	Loc  source.Location
	Text string
}

func (c *Comment) Pos() source.Location { return c.Loc }

// List is a literal list: { expr* }.
type List struct {
	Loc   source.Location
	Items []Node
}

func (l *List) Pos() source.Location { return l.Loc }

// Quote is a quoted code block: [ expr* ].
type Quote struct {
	Loc  source.Location
	Body []Node
}

func (q *Quote) Pos() source.Location { return q.Loc }

// FuncType is a function-type signature: ( in* -- out* ).
type FuncType struct {
	Loc source.Location
	In  []Node
	Out []Node
}

func (f *FuncType) Pos() source.Location { return f.Loc }

// Word is a named definition: : name expr* ;
type Word struct {
	Loc  source.Location
	Name string
	Body []Node
}

func (w *Word) Pos() source.Location { return w.Loc }

// Constructor belongs to exactly one algebraic type. Owner points back at
// the type whose constructor list holds this node; the list owns the
// constructor, the Program's constructors map merely shares it.
type Constructor struct {
	Loc   source.Location
	Name  string
	Args  []Node
	Owner *Type
}

func (c *Constructor) Pos() source.Location { return c.Loc }

// Type is an algebraic type definition.
type Type struct {
	Loc          source.Location
	Name         string
	Variables    []string
	Constructors []*Constructor
}

func (t *Type) Pos() source.Location { return t.Loc }

// Alias binds a name to an ordered sequence of other type names.
type Alias struct {
	Loc       source.Location
	Name      string
	Variables []string
	Body      []Node
}

func (a *Alias) Pos() source.Location { return a.Loc }

// Case is one arm of a match: case: name expr* ;
type Case struct {
	Loc         source.Location
	Constructor string
	Body        []Node
}

func (c *Case) Pos() source.Location { return c.Loc }

// Match dispatches on a constructor. Loop marks a match closed by loop;.
type Match struct {
	Loc   source.Location
	Cases []*Case
	Loop  bool
}

func (m *Match) Pos() source.Location { return m.Loc }

// Dip parses like a word body and executes underneath the value set aside.
type Dip struct {
	Loc  source.Location
	Body []Node
}

func (d *Dip) Pos() source.Location { return d.Loc }

// Program is the AST root: four uniqueness-checked namespaces plus the
// sequential list, which alone preserves source order across definitions and
// top-level comments.
type Program struct {
	Words        map[string]*Word
	Types        map[string]*Type
	Aliases      map[string]*Alias
	Constructors map[string]*Constructor
	Sequential   []Node
}

// NewProgram returns an empty aggregate ready to be populated.
func NewProgram() *Program {
	return &Program{
		Words:        make(map[string]*Word),
		Types:        make(map[string]*Type),
		Aliases:      make(map[string]*Alias),
		Constructors: make(map[string]*Constructor),
	}
}

// Word looks name up in the value namespace: words first, then
// constructors. Returns nil when unbound.
func (p *Program) Word(name string) Node {
	if w, ok := p.Words[name]; ok {
		return w
	}
	if c, ok := p.Constructors[name]; ok {
		return c
	}
	return nil
}

// Type looks name up in the type namespace: types first, then aliases.
// Returns nil when unbound.
func (p *Program) Type(name string) Node {
	if t, ok := p.Types[name]; ok {
		return t
	}
	if a, ok := p.Aliases[name]; ok {
		return a
	}
	return nil
}
