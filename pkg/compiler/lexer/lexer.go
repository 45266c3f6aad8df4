// Package lexer turns a character stream into Marn tokens. The lexer is a
// single-pass, pull-based producer: after the real input is exhausted every
// further Next call yields the end marker, so consumers never need an
// end-of-stream guard.
package lexer

import (
	"io"
	"strings"
	"unicode"

	"github.com/marn-lang/marn/pkg/compiler/diag"
	"github.com/marn-lang/marn/pkg/compiler/source"
)

// Lexer scans tokens from a character stream, recording recoverable
// problems in the diagnostics bag. It never fails: malformed lexemes degrade
// to names, to partially-filled literals with a paired diagnostic, or (zero
// denominator only) to no token at all.
type Lexer struct {
	stream *source.Stream
	diags  *diag.Bag
}

// New creates a lexer reading from r.
func New(r io.Reader, diags *diag.Bag) *Lexer {
	return &Lexer{stream: source.NewStream(r), diags: diags}
}

// Next returns the next token, skipping inter-token whitespace.
//
// Recognition is tried in a fixed priority order because several prefixes
// are ambiguous: a comment marker may start a name, and a leading + or -
// may start a number or a name.
func (l *Lexer) Next() Token {
	for {
		l.skipWhitespace()
		if l.stream.Current() == source.EOF {
			return Token{Kind: KindEOT, Loc: l.stream.Location()}
		}
		start := l.stream.Location()
		switch c := l.stream.Current(); {
		case c == '\\':
			return l.scanCommentOrName(start)
		case c == '"':
			return l.scanString(start)
		case c == '+':
			return l.scanNatOrName(start)
		case c == '-':
			if tok, ok := l.scanNegativeOrName(start); ok {
				return tok
			}
		case isDigit(c):
			if tok, ok := l.scanNumberOrNumberedWord(start); ok {
				return tok
			}
		default:
			return l.scanWord(nil, start)
		}
		// A dropped lexeme (zero denominator) produced no token; keep going.
	}
}

func (l *Lexer) skipWhitespace() {
	for c := l.stream.Current(); c != source.EOF && unicode.IsSpace(c); c = l.stream.Current() {
		l.stream.Advance()
	}
}

// isBoundary reports whether c ends a lexeme.
func isBoundary(c rune) bool {
	return c == source.EOF || unicode.IsSpace(c)
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// scanCommentOrName handles the marker ambiguity: a backslash immediately
// followed by whitespace or end of input starts a comment running to end of
// line (exclusive); otherwise the backslash is swallowed into a name.
func (l *Lexer) scanCommentOrName(start source.Location) Token {
	c := l.stream.Advance()
	if !isBoundary(c) {
		return l.scanWord([]rune{'\\'}, start)
	}
	var sb strings.Builder
	for ; c != '\n' && c != source.EOF; c = l.stream.Advance() {
		sb.WriteRune(c)
	}
	return Token{Kind: KindComment, Loc: start, Text: sb.String()}
}

var escapes = map[rune]rune{
	'n': '\n',
	'b': '\b',
	'r': '\r',
	't': '\t',
}

// scanString consumes a double-quoted literal, decoding escapes. Hitting end
// of input first records UnclosedString and still yields whatever was
// collected.
func (l *Lexer) scanString(start source.Location) Token {
	var sb strings.Builder
	for {
		c := l.stream.Advance()
		switch c {
		case '"':
			l.stream.Advance()
			return Token{Kind: KindString, Loc: start, Text: sb.String()}
		case source.EOF:
			l.diags.Report(diag.UnclosedString, start)
			return Token{Kind: KindString, Loc: start, Text: sb.String()}
		case '\\':
			c = l.stream.Advance()
			if c == source.EOF {
				l.diags.Report(diag.UnclosedString, start)
				return Token{Kind: KindString, Loc: start, Text: sb.String()}
			}
			if decoded, ok := escapes[c]; ok {
				c = decoded
			}
			sb.WriteRune(c)
		default:
			sb.WriteRune(c)
		}
	}
}

// scanNatOrName: +digits delimited by whitespace is a natural; anything else
// starting with + folds into a name.
func (l *Lexer) scanNatOrName(start source.Location) Token {
	parsed := []rune{'+'}
	l.stream.Advance()
	n, value := l.scanDigits(&parsed)
	if n > 0 && isBoundary(l.stream.Current()) {
		return Token{Kind: KindNat, Loc: start, Nat: value}
	}
	return l.scanWord(parsed, start)
}

// scanNegativeOrName: -digits is an integer, -digits/digits a rational,
// anything else a name. Returns ok=false when the lexeme was dropped
// (zero denominator).
func (l *Lexer) scanNegativeOrName(start source.Location) (Token, bool) {
	parsed := []rune{'-'}
	l.stream.Advance()
	n, magnitude := l.scanDigits(&parsed)
	if n > 0 && isBoundary(l.stream.Current()) {
		return Token{Kind: KindInt, Loc: start, Int: -int64(magnitude)}, true
	}
	if n == 0 || l.stream.Current() != '/' {
		return l.scanWord(parsed, start), true
	}
	parsed = append(parsed, '/')
	l.stream.Advance()
	n, denominator := l.scanDigits(&parsed)
	if n > 0 && isBoundary(l.stream.Current()) {
		return l.rational(start, -int64(magnitude), denominator)
	}
	return l.scanWord(parsed, start), true
}

// scanNumberOrNumberedWord: a bare digit run is an integer when delimited, a
// rational when followed by /digits, a numbered keyword when immediately
// followed by one of the counted operators, and otherwise a plain name.
func (l *Lexer) scanNumberOrNumberedWord(start source.Location) (Token, bool) {
	var parsed []rune
	_, magnitude := l.scanDigits(&parsed)
	if isBoundary(l.stream.Current()) {
		return Token{Kind: KindInt, Loc: start, Int: int64(magnitude)}, true
	}
	if l.stream.Current() != '/' {
		return l.scanNumberedWord(parsed, start, magnitude), true
	}
	parsed = append(parsed, '/')
	l.stream.Advance()
	n, denominator := l.scanDigits(&parsed)
	if n > 0 && isBoundary(l.stream.Current()) {
		return l.rational(start, int64(magnitude), denominator)
	}
	return l.scanWord(parsed, start), true
}

// rational rejects a zero denominator: the diagnostic is recorded, no token
// is produced, and lexing resumes after the lexeme.
func (l *Lexer) rational(start source.Location, numerator int64, denominator uint64) (Token, bool) {
	if denominator == 0 {
		l.diags.Report(diag.ZeroDenominator, start)
		return Token{}, false
	}
	return Token{Kind: KindRat, Loc: start, Num: numerator, Den: denominator}, true
}

// scanNumberedWord reads the word glued to a digit run. If it is one of the
// counted operators the digits become its count; otherwise the whole
// concatenation is an ordinary name.
func (l *Lexer) scanNumberedWord(parsed []rune, start source.Location, count uint64) Token {
	wordStart := len(parsed)
	for !isBoundary(l.stream.Current()) {
		parsed = append(parsed, l.stream.Current())
		l.stream.Advance()
	}
	if nk, ok := numberedKeywords[string(parsed[wordStart:])]; ok {
		return Token{Kind: KindNumbered, Loc: start, Numbered: nk, Count: count}
	}
	return l.wordToken(string(parsed), start)
}

// scanWord consumes a maximal run of non-whitespace characters onto the
// already-parsed prefix and classifies the result as keyword or name.
func (l *Lexer) scanWord(parsed []rune, start source.Location) Token {
	for !isBoundary(l.stream.Current()) {
		parsed = append(parsed, l.stream.Current())
		l.stream.Advance()
	}
	return l.wordToken(string(parsed), start)
}

func (l *Lexer) wordToken(text string, start source.Location) Token {
	if kw, ok := keywords[text]; ok {
		return Token{Kind: KindKeyword, Loc: start, Keyword: kw}
	}
	return Token{Kind: KindName, Loc: start, Text: text}
}

// scanDigits consumes a run of decimal digits, reporting how many were seen
// and their value, and appends them to parsed for name fallback.
func (l *Lexer) scanDigits(parsed *[]rune) (int, uint64) {
	n := 0
	var value uint64
	for c := l.stream.Current(); isDigit(c); c = l.stream.Current() {
		value = value*10 + uint64(c-'0')
		n++
		*parsed = append(*parsed, c)
		l.stream.Advance()
	}
	return n, value
}
