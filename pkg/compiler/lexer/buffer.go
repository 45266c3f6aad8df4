package lexer

// Source is anything producing tokens on demand. The Lexer is the canonical
// implementation; wrappers compose over it.
type Source interface {
	Next() Token
}

// Buffer exposes one token of lookahead over a Source, so a consumer can
// branch on the shape of the next token before deciding to consume it.
type Buffer struct {
	src  Source
	peek Token
}

// NewBuffer wraps src and primes the lookahead.
func NewBuffer(src Source) *Buffer {
	return &Buffer{src: src, peek: src.Next()}
}

// Peek returns the current token without consuming it.
func (b *Buffer) Peek() Token {
	return b.peek
}

// Next consumes and returns the current token, reloading the lookahead.
func (b *Buffer) Next() Token {
	tok := b.peek
	b.peek = b.src.Next()
	return tok
}

type excluding struct {
	src  Source
	kind Kind
}

// Excluding filters tokens of the given kind out of src. End markers always
// pass through so consumers keep their no-guard lookahead discipline.
func Excluding(src Source, kind Kind) Source {
	return &excluding{src: src, kind: kind}
}

func (e *excluding) Next() Token {
	for {
		tok := e.src.Next()
		if tok.Kind != e.kind || tok.Kind == KindEOT {
			return tok
		}
	}
}
