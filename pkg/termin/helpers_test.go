package termin_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bastiangx/termserve/pkg/chain"
	"github.com/bastiangx/termserve/pkg/morph"
	"github.com/bastiangx/termserve/pkg/termin"
	"github.com/bastiangx/termserve/pkg/token"
)

const testLexicon = `
[[entry]]
lemma = "ТЕЧЕНИЕ"
class = "noun"
gender = "neuter"
forms = ["ТЕЧЕНИЯ", "ТЕЧЕНИЮ", "ТЕЧЕНИИ", "ТЕЧЕНИЕМ"]

[[entry]]
lemma = "ГОД"
class = "noun"
gender = "masculine"
forms = ["ГОДА", "ГОДУ", "ГОДОМ", "ГОДЕ"]

[[entry]]
lemma = "НОМЕР"
class = "noun"
gender = "masculine"
forms = ["НОМЕРА", "НОМЕРУ", "НОМЕРОМ"]

[[entry]]
lemma = "РЕГИСТРАЦИОННЫЙ"
class = "adjective"
forms = ["РЕГИСТРАЦИОННОГО", "РЕГИСТРАЦИОННАЯ", "РЕГИСТРАЦИОННОМ"]

[[entry]]
lemma = "В"
class = "preposition"
lang = "ru"

[[entry]]
lemma = "ДЛЯ"
class = "preposition"
lang = "ru"

[[entry]]
lemma = "И"
class = "conjunction"
lang = "ru"

[[entry]]
lemma = "ТЕСТ"
class = "noun"
lang = "ua"
`

func newLexicon(t *testing.T) *morph.Lexicon {
	t.Helper()
	lex := morph.NewLexicon()
	require.NoError(t, lex.LoadString(testLexicon))
	return lex
}

type fixture struct {
	lex *morph.Lexicon
	an  *chain.Analyzer
}

func newFixture(t *testing.T) *fixture {
	lex := newLexicon(t)
	return &fixture{lex: lex, an: chain.NewAnalyzer(lex)}
}

// tokens tokenizes text and returns the chain as a slice.
func (f *fixture) tokens(t *testing.T, text string) []token.Token {
	t.Helper()
	toks := chain.Slice(chain.Tokenize(text, f.lex))
	require.NotEmpty(t, toks, "no tokens in %q", text)
	return toks
}

func (f *fixture) first(t *testing.T, text string) token.Token {
	return f.tokens(t, text)[0]
}

func (f *fixture) collection(patterns ...*termin.Termin) *termin.Collection {
	c := termin.NewCollection(f.an)
	for _, p := range patterns {
		c.Add(p)
	}
	return c
}

// matchLen is the number of tokens a match spans, 0 for no match.
func matchLen(m *termin.Match) int {
	if m == nil {
		return 0
	}
	return m.TokensCount()
}
