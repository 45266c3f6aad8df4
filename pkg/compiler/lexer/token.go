package lexer

import (
	"fmt"

	"github.com/marn-lang/marn/pkg/compiler/source"
)

// Kind represents the type of token identified by the lexer.
type Kind uint8

const (
	KindEOT Kind = iota // end marker, repeated forever after real input ends
	KindNat             // unsigned natural literal, written +N
	KindInt             // signed integer literal
	KindRat             // rational literal N/D
	KindString          // string literal, escapes decoded
	KindComment         // verbatim comment text
	KindName            // bare name
	KindKeyword
	KindNumbered // count-prefixed keyword, e.g. 3Tuple
)

// Keyword is the closed set of words with dedicated meaning.
type Keyword uint8

const (
	KwColon Keyword = iota
	KwSemicolon
	KwMatch
	KwCase
	KwLoop
	KwType
	KwAlias
	KwDip
	KwOpenBracket
	KwCloseBracket
	KwOpenParen
	KwCloseParen
	KwOpenBrace
	KwCloseBrace
	KwDoubleDash
)

var keywords = map[string]Keyword{
	":":      KwColon,
	";":      KwSemicolon,
	"match:": KwMatch,
	"case:":  KwCase,
	"loop;":  KwLoop,
	"type:":  KwType,
	"alias:": KwAlias,
	"dip:":   KwDip,
	"[":      KwOpenBracket,
	"]":      KwCloseBracket,
	"(":      KwOpenParen,
	")":      KwCloseParen,
	"{":      KwOpenBrace,
	"}":      KwCloseBrace,
	"--":     KwDoubleDash,
}

var keywordNames = map[Keyword]string{
	KwColon:        ":",
	KwSemicolon:    ";",
	KwMatch:        "match:",
	KwCase:         "case:",
	KwLoop:         "loop;",
	KwType:         "type:",
	KwAlias:        "alias:",
	KwDip:          "dip:",
	KwOpenBracket:  "[",
	KwCloseBracket: "]",
	KwOpenParen:    "(",
	KwCloseParen:   ")",
	KwOpenBrace:    "{",
	KwCloseBrace:   "}",
	KwDoubleDash:   "--",
}

// String returns the keyword's source spelling.
func (k Keyword) String() string { return keywordNames[k] }

// Numbered is the fixed vocabulary of arity-carrying operators.
type Numbered uint8

const (
	NumTuple Numbered = iota
	NumPack
	NumUnpack
)

var numberedKeywords = map[string]Numbered{
	"Tuple":  NumTuple,
	"pack":   NumPack,
	"unpack": NumUnpack,
}

var numberedNames = map[Numbered]string{
	NumTuple:  "Tuple",
	NumPack:   "pack",
	NumUnpack: "unpack",
}

// String returns the numbered keyword's bare spelling, without its count.
func (n Numbered) String() string { return numberedNames[n] }

// Token is one lexical unit. Kind selects which payload fields are
// meaningful: Nat for KindNat, Int for KindInt, Num/Den for KindRat, Text
// for strings, comments and names, Keyword for KindKeyword, and
// Numbered+Count for KindNumbered. Every token carries the location of its
// first character.
type Token struct {
	Kind     Kind
	Loc      source.Location
	Nat      uint64
	Int      int64
	Num      int64
	Den      uint64
	Text     string
	Keyword  Keyword
	Numbered Numbered
	Count    uint64
}

// String renders the token roughly as it was spelled, for diagnostics and
// token dumps.
func (t Token) String() string {
	switch t.Kind {
	case KindEOT:
		return "<end of input>"
	case KindNat:
		return fmt.Sprintf("+%d", t.Nat)
	case KindInt:
		return fmt.Sprintf("%d", t.Int)
	case KindRat:
		return fmt.Sprintf("%d/%d", t.Num, t.Den)
	case KindString:
		return fmt.Sprintf("%q", t.Text)
	case KindComment:
		return `\` + t.Text
	case KindName:
		return t.Text
	case KindKeyword:
		return t.Keyword.String()
	case KindNumbered:
		return fmt.Sprintf("%d%s", t.Count, t.Numbered)
	}
	return fmt.Sprintf("token(%d)", t.Kind)
}

// Is reports whether the token is the given keyword.
func (t Token) Is(kw Keyword) bool {
	return t.Kind == KindKeyword && t.Keyword == kw
}
