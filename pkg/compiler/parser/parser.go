// Package parser builds the Program aggregate from a buffered token
// sequence. Nothing here is fatal: every recoverable problem is recorded in
// the diagnostics bag and parsing continues with a locally sensible default,
// so a single malformed construct never prevents diagnosing the rest of the
// file. An aggregate returned alongside diagnostics is partial and must not
// be fed to semantic analysis.
package parser

import (
	"io"
	"math/big"

	"github.com/marn-lang/marn/pkg/compiler/ast"
	"github.com/marn-lang/marn/pkg/compiler/diag"
	"github.com/marn-lang/marn/pkg/compiler/lexer"
	"github.com/marn-lang/marn/pkg/compiler/source"
)

// Parser is a recursive-descent consumer of a buffered token sequence.
type Parser struct {
	toks  *lexer.Buffer
	diags *diag.Bag
	prog  *ast.Program
}

// New creates a parser over an already-buffered token sequence.
func New(toks *lexer.Buffer, diags *diag.Bag) *Parser {
	return &Parser{toks: toks, diags: diags, prog: ast.NewProgram()}
}

// ParseSource wires the whole pipeline over r: character stream, lexer,
// lookahead buffer, parser. Diagnostics land in diags; the returned
// aggregate is only trustworthy when diags stayed empty.
func ParseSource(r io.Reader, diags *diag.Bag) *ast.Program {
	return New(lexer.NewBuffer(lexer.New(r, diags)), diags).Parse()
}

// Parse runs the top-level loop until the end marker is observed at top
// level, returning the completed aggregate.
func (p *Parser) Parse() *ast.Program {
	for {
		tok := p.toks.Peek()
		switch {
		case tok.Kind == lexer.KindEOT:
			return p.prog
		case tok.Kind == lexer.KindComment:
			p.toks.Next()
			p.prog.Sequential = append(p.prog.Sequential, &ast.Comment{Loc: tok.Loc, Text: tok.Text})
		case tok.Is(lexer.KwColon):
			p.toks.Next()
			p.defineWord(tok.Loc)
		case tok.Is(lexer.KwType):
			p.toks.Next()
			p.defineType(tok.Loc)
		case tok.Is(lexer.KwAlias):
			p.toks.Next()
			p.defineAlias(tok.Loc)
		default:
			p.toks.Next()
			p.diags.Add(diag.Diagnostic{Kind: diag.BadTopLevelToken, Loc: tok.Loc, Detail: tok.String()})
			p.synchronize()
		}
	}
}

// synchronize discards tokens until the next definition keyword or the end
// marker, bounding an error cascade to one diagnostic per malformed region.
func (p *Parser) synchronize() {
	for {
		tok := p.toks.Peek()
		if tok.Kind == lexer.KindEOT ||
			tok.Is(lexer.KwColon) || tok.Is(lexer.KwType) || tok.Is(lexer.KwAlias) {
			return
		}
		p.toks.Next()
	}
}

func (p *Parser) redefined(name string, duplicate, original source.Location) {
	p.diags.Add(diag.Diagnostic{Kind: diag.Redefinition, Loc: duplicate, Detail: name, Prev: original})
}

// defineWord parses a word definition and inserts it, unless its name is
// already bound in the value namespace; the duplicate is then discarded and
// the mapping keeps the original.
func (p *Parser) defineWord(loc source.Location) {
	word := p.parseWordBody(loc)
	if word == nil {
		return
	}
	if orig := p.prog.Word(word.Name); orig != nil {
		p.redefined(word.Name, word.Loc, orig.Pos())
		return
	}
	p.prog.Words[word.Name] = word
	p.prog.Sequential = append(p.prog.Sequential, word)
}

// parseWordBody parses `name expr* ;`. A missing name records UnnamedWord
// but the body is still consumed so recovery stays token-aligned.
func (p *Parser) parseWordBody(loc source.Location) *ast.Word {
	name := ""
	if tok := p.toks.Peek(); tok.Kind == lexer.KindName {
		p.toks.Next()
		name = tok.Text
	} else {
		p.diags.Report(diag.UnnamedWord, loc)
	}
	body := p.parseExpressions(loc, lexer.KwSemicolon, diag.UnclosedWord)
	if name == "" {
		return nil
	}
	return &ast.Word{Loc: loc, Name: name, Body: body}
}

// parseExpressions greedily consumes expressions until the stop keyword
// (consumed) or the end marker, which records eofKind anchored at the
// construct's start and returns the truncated body. Unexpected tokens are
// skipped one at a time: expression context has no unambiguous
// resynchronization point.
func (p *Parser) parseExpressions(start source.Location, stop lexer.Keyword, eofKind diag.Kind) []ast.Node {
	var exprs []ast.Node
	for {
		tok := p.toks.Peek()
		switch {
		case tok.Is(stop):
			p.toks.Next()
			return exprs
		case tok.Kind == lexer.KindEOT:
			p.diags.Report(eofKind, start)
			return exprs
		case tok.Kind == lexer.KindNat:
			p.toks.Next()
			exprs = append(exprs, &ast.Nat{Loc: tok.Loc, Value: tok.Nat})
		case tok.Kind == lexer.KindInt:
			p.toks.Next()
			exprs = append(exprs, &ast.Int{Loc: tok.Loc, Value: tok.Int})
		case tok.Kind == lexer.KindRat:
			p.toks.Next()
			exprs = append(exprs, &ast.Rat{Loc: tok.Loc, Value: big.NewRat(tok.Num, int64(tok.Den))})
		case tok.Kind == lexer.KindString:
			p.toks.Next()
			exprs = append(exprs, &ast.String{Loc: tok.Loc, Value: tok.Text})
		case tok.Kind == lexer.KindName:
			p.toks.Next()
			exprs = append(exprs, &ast.Name{Loc: tok.Loc, Name: tok.Text})
		case tok.Kind == lexer.KindComment:
			p.toks.Next()
			exprs = append(exprs, &ast.Comment{Loc: tok.Loc, Text: tok.Text})
		case tok.Is(lexer.KwMatch):
			p.toks.Next()
			if m := p.parseMatch(tok.Loc); m != nil {
				exprs = append(exprs, m)
			}
		case tok.Is(lexer.KwDip):
			p.toks.Next()
			exprs = append(exprs, &ast.Dip{
				Loc:  tok.Loc,
				Body: p.parseExpressions(tok.Loc, lexer.KwSemicolon, diag.UnclosedDip),
			})
		case tok.Is(lexer.KwOpenBracket):
			p.toks.Next()
			exprs = append(exprs, &ast.Quote{
				Loc:  tok.Loc,
				Body: p.parseExpressions(tok.Loc, lexer.KwCloseBracket, diag.UnclosedQuote),
			})
		case tok.Is(lexer.KwOpenBrace):
			p.toks.Next()
			exprs = append(exprs, &ast.List{
				Loc:   tok.Loc,
				Items: p.parseExpressions(tok.Loc, lexer.KwCloseBrace, diag.UnclosedList),
			})
		case tok.Is(lexer.KwOpenParen):
			p.toks.Next()
			exprs = append(exprs, p.parseSignature(tok.Loc))
		default:
			p.toks.Next()
			p.diags.Add(diag.Diagnostic{Kind: diag.BadExpressionToken, Loc: tok.Loc, Detail: tok.String()})
		}
	}
}

// parseSignature parses `( name* -- name* )`. Names before the double dash
// are inputs, after it outputs; anything else inside is skipped with a
// diagnostic.
func (p *Parser) parseSignature(loc source.Location) *ast.FuncType {
	sig := &ast.FuncType{Loc: loc}
	dst := &sig.In
	for {
		tok := p.toks.Peek()
		switch {
		case tok.Is(lexer.KwCloseParen):
			p.toks.Next()
			return sig
		case tok.Is(lexer.KwDoubleDash):
			p.toks.Next()
			dst = &sig.Out
		case tok.Kind == lexer.KindEOT:
			p.diags.Report(diag.UnclosedSignature, loc)
			return sig
		case tok.Kind == lexer.KindName:
			p.toks.Next()
			*dst = append(*dst, &ast.Name{Loc: tok.Loc, Name: tok.Text})
		default:
			p.toks.Next()
			p.diags.Add(diag.Diagnostic{Kind: diag.BadExpressionToken, Loc: tok.Loc, Detail: tok.String()})
		}
	}
}

// parseMatch parses the run of case groups after a match keyword, plus an
// optional closing loop;. A match with zero cases records EmptyMatch and
// produces no node.
func (p *Parser) parseMatch(loc source.Location) *ast.Match {
	var cases []*ast.Case
	seen := false
	for {
		tok := p.toks.Peek()
		if !tok.Is(lexer.KwCase) {
			break
		}
		p.toks.Next()
		seen = true
		if c := p.parseCase(tok.Loc); c != nil {
			cases = append(cases, c)
		}
	}
	m := &ast.Match{Loc: loc, Cases: cases}
	if p.toks.Peek().Is(lexer.KwLoop) {
		p.toks.Next()
		m.Loop = true
	}
	if !seen {
		p.diags.Report(diag.EmptyMatch, loc)
		return nil
	}
	return m
}

// parseCase parses `name expr* ;`. A case without its constructor name
// records UnnamedCase; the body is still consumed for alignment but the case
// contributes nothing to the match.
func (p *Parser) parseCase(loc source.Location) *ast.Case {
	name := ""
	if tok := p.toks.Peek(); tok.Kind == lexer.KindName {
		p.toks.Next()
		name = tok.Text
	} else {
		p.diags.Report(diag.UnnamedCase, loc)
	}
	body := p.parseExpressions(loc, lexer.KwSemicolon, diag.UnclosedWord)
	if name == "" {
		return nil
	}
	return &ast.Case{Loc: loc, Constructor: name, Body: body}
}

// parseHeader collects the leading `[typevar*] name` run of a type or alias
// definition up to the separating colon. open reports whether the colon was
// reached; a semicolon or end of input closes the definition early.
func (p *Parser) parseHeader(loc source.Location) (variables []string, name string, open bool) {
	var names []string
loop:
	for {
		tok := p.toks.Peek()
		switch {
		case tok.Kind == lexer.KindName:
			p.toks.Next()
			names = append(names, tok.Text)
		case tok.Is(lexer.KwColon):
			p.toks.Next()
			open = true
			break loop
		case tok.Is(lexer.KwSemicolon):
			p.toks.Next()
			break loop
		case tok.Kind == lexer.KindEOT:
			p.diags.Report(diag.UnclosedWord, loc)
			break loop
		default:
			p.toks.Next()
			p.diags.Add(diag.Diagnostic{Kind: diag.BadExpressionToken, Loc: tok.Loc, Detail: tok.String()})
		}
	}
	if len(names) == 0 {
		p.diags.Report(diag.UnnamedWord, loc)
		return nil, "", open
	}
	return names[:len(names)-1], names[len(names)-1], open
}

// defineType parses a type definition and inserts it, redefinition-checked
// against the type namespace. Each constructor is then individually checked
// against the value namespace: colliding constructors are skipped with their
// own diagnostic while the type itself stays accepted.
func (p *Parser) defineType(loc source.Location) {
	t := p.parseType(loc)
	if t == nil {
		return
	}
	if orig := p.prog.Type(t.Name); orig != nil {
		p.redefined(t.Name, t.Loc, orig.Pos())
		return
	}
	p.prog.Types[t.Name] = t
	for _, c := range t.Constructors {
		if orig := p.prog.Word(c.Name); orig != nil {
			p.redefined(c.Name, c.Loc, orig.Pos())
			continue
		}
		p.prog.Constructors[c.Name] = c
	}
	p.prog.Sequential = append(p.prog.Sequential, t)
}

// parseType parses `type: [typevar*] name : constructor ("|" constructor)* ;`
// where each constructor is `[argtype*] name`. The bar separator is a plain
// name token; empty segments between separators are ignored. Malformed
// tokens are skipped the same way expression lists recover.
func (p *Parser) parseType(loc source.Location) *ast.Type {
	variables, name, open := p.parseHeader(loc)
	if name == "" {
		return nil
	}
	t := &ast.Type{Loc: loc, Name: name, Variables: variables}
	if !open {
		return t
	}

	var segment []*ast.Name
	finish := func() {
		if len(segment) == 0 {
			return
		}
		last := segment[len(segment)-1]
		c := &ast.Constructor{Loc: segment[0].Loc, Name: last.Name, Owner: t}
		for _, arg := range segment[:len(segment)-1] {
			c.Args = append(c.Args, arg)
		}
		t.Constructors = append(t.Constructors, c)
		segment = nil
	}
	for {
		tok := p.toks.Peek()
		switch {
		case tok.Kind == lexer.KindName && tok.Text == "|":
			p.toks.Next()
			finish()
		case tok.Kind == lexer.KindName:
			p.toks.Next()
			segment = append(segment, &ast.Name{Loc: tok.Loc, Name: tok.Text})
		case tok.Is(lexer.KwSemicolon):
			p.toks.Next()
			finish()
			return t
		case tok.Kind == lexer.KindEOT:
			p.diags.Report(diag.UnclosedWord, loc)
			finish()
			return t
		default:
			p.toks.Next()
			p.diags.Add(diag.Diagnostic{Kind: diag.BadExpressionToken, Loc: tok.Loc, Detail: tok.String()})
		}
	}
}

// defineAlias parses an alias definition, redefinition-checked against the
// type namespace exactly like types.
func (p *Parser) defineAlias(loc source.Location) {
	a := p.parseAlias(loc)
	if a == nil {
		return
	}
	if orig := p.prog.Type(a.Name); orig != nil {
		p.redefined(a.Name, a.Loc, orig.Pos())
		return
	}
	p.prog.Aliases[a.Name] = a
	p.prog.Sequential = append(p.prog.Sequential, a)
}

// parseAlias parses `alias: [typevar*] name : name* ;`. The body is a plain
// name list, not an expression sequence.
func (p *Parser) parseAlias(loc source.Location) *ast.Alias {
	variables, name, open := p.parseHeader(loc)
	if name == "" {
		return nil
	}
	a := &ast.Alias{Loc: loc, Name: name, Variables: variables}
	if !open {
		return a
	}
	for {
		tok := p.toks.Peek()
		switch {
		case tok.Kind == lexer.KindName:
			p.toks.Next()
			a.Body = append(a.Body, &ast.Name{Loc: tok.Loc, Name: tok.Text})
		case tok.Is(lexer.KwSemicolon):
			p.toks.Next()
			return a
		case tok.Kind == lexer.KindEOT:
			p.diags.Report(diag.UnclosedWord, loc)
			return a
		default:
			p.toks.Next()
			p.diags.Add(diag.Diagnostic{Kind: diag.BadExpressionToken, Loc: tok.Loc, Detail: tok.String()})
		}
	}
}
