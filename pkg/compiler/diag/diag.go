// Package diag defines the structured diagnostics produced by the lexer and
// parser. Nothing in the pipeline is fatal: every problem is appended to a
// Bag and processing continues, so one malformed construct never hides the
// rest of the file.
package diag

import (
	"fmt"

	"github.com/marn-lang/marn/pkg/compiler/source"
)

// Kind classifies a diagnostic.
type Kind uint8

const (
	UnclosedString Kind = iota
	UnclosedComment
	ZeroDenominator
	BadTopLevelToken
	Redefinition
	UnnamedWord
	UnnamedCase
	UnclosedWord
	UnclosedDip
	UnclosedQuote
	UnclosedList
	UnclosedSignature
	BadExpressionToken
	EmptyMatch
)

var kindMessages = map[Kind]string{
	UnclosedString:     "unclosed string literal",
	UnclosedComment:    "unclosed comment",
	ZeroDenominator:    "rational literal with zero denominator",
	BadTopLevelToken:   "unexpected token at top level",
	Redefinition:       "name already defined",
	UnnamedWord:        "definition is missing its name",
	UnnamedCase:        "case is missing its constructor name",
	UnclosedWord:       "definition not closed before end of input",
	UnclosedDip:        "dip not closed before end of input",
	UnclosedQuote:      "quote not closed before end of input",
	UnclosedList:       "list not closed before end of input",
	UnclosedSignature:  "signature not closed before end of input",
	BadExpressionToken: "unexpected token in expression",
	EmptyMatch:         "match has no cases",
}

// String returns the human-readable message for the kind.
func (k Kind) String() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return fmt.Sprintf("diagnostic(%d)", k)
}

// Diagnostic is one recorded problem. Loc anchors it in the source. Detail
// carries the offending lexeme or name where the kind has one. For
// Redefinition, Prev points at the original definition and Detail holds the
// contested name.
type Diagnostic struct {
	Kind   Kind
	Loc    source.Location
	Detail string
	Prev   source.Location
}

// Error renders the diagnostic as "row:col: message" with the detail and,
// for redefinitions, the original site appended.
func (d Diagnostic) Error() string {
	switch {
	case d.Kind == Redefinition:
		return fmt.Sprintf("%s: %s: %q (first defined at %s)", d.Loc, d.Kind, d.Detail, d.Prev)
	case d.Detail != "":
		return fmt.Sprintf("%s: %s: %q", d.Loc, d.Kind, d.Detail)
	default:
		return fmt.Sprintf("%s: %s", d.Loc, d.Kind)
	}
}

// Bag is the append-only, ordered diagnostics sink threaded through lexing
// and parsing. The zero value is ready to use.
type Bag struct {
	diags []Diagnostic
}

// Add appends a diagnostic.
func (b *Bag) Add(d Diagnostic) {
	b.diags = append(b.diags, d)
}

// Report is shorthand for Add with just a kind and a location.
func (b *Bag) Report(kind Kind, loc source.Location) {
	b.Add(Diagnostic{Kind: kind, Loc: loc})
}

// Len reports how many diagnostics were recorded.
func (b *Bag) Len() int { return len(b.diags) }

// Empty reports whether no diagnostics were recorded.
func (b *Bag) Empty() bool { return len(b.diags) == 0 }

// Diagnostics returns the recorded diagnostics in order.
func (b *Bag) Diagnostics() []Diagnostic { return b.diags }
