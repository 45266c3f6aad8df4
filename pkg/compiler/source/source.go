// Package source provides the character stream and location tracking the
// lexer reads from. Locations are plain values stamped onto every token and
// AST node.
package source

import (
	"bufio"
	"fmt"
	"io"
)

// EOF is the sentinel returned once the underlying input is exhausted.
const EOF rune = -1

// Location identifies a single character in the input. Row and Column are
// zero-based; Position is the absolute rune offset from the start of the
// stream.
type Location struct {
	Row      int
	Column   int
	Position int
}

// String renders the location one-based, the way editors count.
func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Row+1, l.Column+1)
}

// Stream wraps a reader with one rune of lookahead and a location cursor.
// Reading past end of input yields EOF indefinitely.
type Stream struct {
	r         *bufio.Reader
	lookahead rune
	loc       Location
}

// NewStream primes the lookahead from r.
func NewStream(r io.Reader) *Stream {
	s := &Stream{r: bufio.NewReader(r)}
	s.lookahead = s.read()
	return s
}

// Current returns the lookahead rune without consuming it.
func (s *Stream) Current() rune {
	return s.lookahead
}

// Location returns the position of the current lookahead rune.
func (s *Stream) Location() Location {
	return s.loc
}

// Advance consumes the current rune and returns the new lookahead. Advancing
// past a newline moves to the next row and resets the column; any other rune
// moves one column right. Advancing at end of input is a no-op returning EOF.
func (s *Stream) Advance() rune {
	if s.lookahead == EOF {
		return EOF
	}
	if s.lookahead == '\n' {
		s.loc.Row++
		s.loc.Column = 0
	} else {
		s.loc.Column++
	}
	s.loc.Position++
	s.lookahead = s.read()
	return s.lookahead
}

func (s *Stream) read() rune {
	c, _, err := s.r.ReadRune()
	if err != nil {
		return EOF
	}
	return c
}
