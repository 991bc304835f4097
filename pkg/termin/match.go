package termin

import (
	"fmt"

	"github.com/bastiangx/termserve/pkg/token"
)

// Match is a token span recognized as an occurrence of a pattern. It is
// created per lookup and owned by the caller.
type Match struct {
	Begin  token.Token
	End    token.Token
	Termin *Termin
	// Morph is the agreement inferred for the span. It is empty, not nil,
	// when an abbreviation consumed a period.
	Morph *token.Morph
	// AbridgeWithoutPoint marks a single-token abbreviation match with no
	// delimiter consumed.
	AbridgeWithoutPoint bool
}

func newMatch(begin, end token.Token, t *Termin) *Match {
	return &Match{Begin: begin, End: end, Termin: t}
}

// BeginChar is the source offset of the first matched rune.
func (m *Match) BeginChar() int { return m.Begin.BeginChar() }

// EndChar is the source offset of the last matched rune.
func (m *Match) EndChar() int { return m.End.EndChar() }

// LengthChar is the number of source runes the match covers.
func (m *Match) LengthChar() int {
	if m == nil || m.Begin == nil || m.End == nil {
		return 0
	}
	return m.End.EndChar() - m.Begin.BeginChar() + 1
}

// TokensCount is the number of chain tokens in the span.
func (m *Match) TokensCount() int {
	n := 0
	for t := m.Begin; t != nil; t = t.Next() {
		n++
		if t == m.End {
			return n
		}
	}
	return n
}

// Tokens returns the matched tokens in order.
func (m *Match) Tokens() []token.Token {
	var res []token.Token
	for t := m.Begin; t != nil; t = t.Next() {
		res = append(res, t)
		if t == m.End {
			break
		}
	}
	return res
}

func (m *Match) String() string {
	name := "?"
	if m.Termin != nil {
		name = m.Termin.CanonicText()
	}
	return fmt.Sprintf("%s [%d..%d]", name, m.BeginChar(), m.EndChar())
}
