package lexer

import "github.com/ambulancja/falopa/internal/token"

// Stream is the pull-based token source the parser consumes. It adds a
// one-token pushback buffer on top of a Lexer, matching §4.1's requirement
// that implementations supply pushback on the token stream: the parser
// peeks a token to decide between a type declaration and an equation, and
// must be able to hand it back.
type Stream struct {
	lex      *Lexer
	pushback []token.Token
}

func NewStream(source string) *Stream {
	return &Stream{lex: New(source)}
}

// Next returns the next token, preferring anything previously unshifted.
func (s *Stream) Next() token.Token {
	if n := len(s.pushback); n > 0 {
		tok := s.pushback[n-1]
		s.pushback = s.pushback[:n-1]
		return tok
	}
	return s.lex.NextToken()
}

// Unshift pushes tok back onto the stream; the next Next() call returns it.
// Only one level of pushback is guaranteed by the grammar, but the buffer
// is a stack so nested callers may each push one without stepping on the
// other's.
func (s *Stream) Unshift(tok token.Token) {
	s.pushback = append(s.pushback, tok)
}
