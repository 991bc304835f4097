package chain

import (
	"github.com/bastiangx/termserve/pkg/morph"
	"github.com/bastiangx/termserve/pkg/token"
)

// Analyzer turns dictionary source strings into annotated tokens so patterns
// can collect inflection variants for every word.
type Analyzer struct {
	lex *morph.Lexicon
}

// NewAnalyzer returns an analyzer over lex. A nil lexicon uses morph.Default.
func NewAnalyzer(lex *morph.Lexicon) *Analyzer {
	if lex == nil {
		lex = morph.Default()
	}
	return &Analyzer{lex: lex}
}

// Lexicon is the lexicon the analyzer annotates from.
func (a *Analyzer) Lexicon() *morph.Lexicon { return a.lex }

// Analyze tokenizes text. When lang is defined it overrides the detected
// language of every token.
func (a *Analyzer) Analyze(text string, lang token.Lang) []token.Token {
	toks := Slice(Tokenize(text, a.lex))
	if !lang.IsUndefined() {
		for _, t := range toks {
			if m := t.Morph(); m != nil {
				m.Language = lang
			}
		}
	}
	return toks
}

// Tokenize is Tokenize over the analyzer's lexicon.
func (a *Analyzer) Tokenize(text string) token.Token {
	return Tokenize(text, a.lex)
}
