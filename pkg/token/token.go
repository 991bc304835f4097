/*
Package token defines the read-only view of an annotated token chain that the
term matcher works against.

The matcher never builds tokens itself. A tokenizer (see package chain) owns
the chain and hands out values satisfying these interfaces:

	Token      every token: navigation, offsets, whitespace, morphology, chars
	Text       a word or punctuation mark with its surface forms
	Number     a numeric literal, possibly spanning several source tokens
	Composite  an already recognized sub-entity wrapping a span of tokens

Concrete token types depend on this package, never the other way round.
*/
package token

import "strings"

// Token is the capability every chain element exposes.
type Token interface {
	Prev() Token
	Next() Token
	// BeginChar and EndChar are inclusive rune offsets in the source text.
	BeginChar() int
	EndChar() int
	WhitespacesBefore() int
	WhitespacesAfter() int
	Morph() *Morph
	Chars() Chars
}

// Text is a single word or punctuation token.
type Text interface {
	Token
	// Term is the upper-cased primary surface form.
	Term() string
	// Term0 is the script-normalized secondary form, empty when it equals Term.
	Term0() string
	Lemma() string
	// InvariantPrefixLength is the number of leading runes shared by Term
	// and every normal form in Morph.
	InvariantPrefixLength() int
}

// Number is a numeric token. Value is the decimal literal.
type Number interface {
	Token
	Value() string
	BeginToken() Token
	EndToken() Token
}

// Composite wraps a span of inner tokens recognized earlier.
type Composite interface {
	Token
	BeginToken() Token
	EndToken() Token
	// TypeName classifies the wrapped entity ("GEO", "DATE", ...); empty for
	// plain groupings.
	TypeName() string
}

// IsWhitespaceBefore reports whether at least one whitespace precedes t.
func IsWhitespaceBefore(t Token) bool {
	return t != nil && t.WhitespacesBefore() > 0
}

// IsWhitespaceAfter reports whether at least one whitespace follows t.
func IsWhitespaceAfter(t Token) bool {
	return t != nil && t.WhitespacesAfter() > 0
}

// LengthChar is the rune length of t in the source.
func LengthChar(t Token) int {
	if t == nil {
		return 0
	}
	return t.EndChar() - t.BeginChar() + 1
}

// IsChar reports whether t is a single-character text token equal to ch.
func IsChar(t Token, ch rune) bool {
	tt, ok := t.(Text)
	if !ok || tt == nil {
		return false
	}
	term := tt.Term()
	r := []rune(term)
	return len(r) == 1 && r[0] == ch
}

// IsCharOf reports whether t is a single-character text token found in chars.
func IsCharOf(t Token, chars string) bool {
	tt, ok := t.(Text)
	if !ok || tt == nil {
		return false
	}
	r := []rune(tt.Term())
	return len(r) == 1 && strings.ContainsRune(chars, r[0])
}

const hyphens = "-‐‑‒–—―­"

// IsHyphen reports whether t is a hyphen or dash.
func IsHyphen(t Token) bool {
	return IsCharOf(t, hyphens)
}

const brackets = "\"'`«»“”„‘’()[]{}<>"

// IsBracket reports whether t is a bracket or quote mark.
func IsBracket(t Token) bool {
	if t == nil || t.Chars().IsLetter() {
		return false
	}
	return IsCharOf(t, brackets)
}

// IsValue reports whether t is a text token whose surface forms or any
// normal form equals term.
func IsValue(t Token, term string) bool {
	tt, ok := t.(Text)
	if !ok || tt == nil || term == "" {
		return false
	}
	if term == tt.Term() {
		return true
	}
	if t0 := tt.Term0(); t0 != "" && t0 == term {
		return true
	}
	if m := tt.Morph(); m != nil {
		for _, wf := range m.Items {
			if wf.NormalCase == term || wf.NormalFull == term {
				return true
			}
		}
	}
	return false
}

// IsEngArticle reports whether t is an English article.
func IsEngArticle(t Token) bool {
	tt, ok := t.(Text)
	if !ok || tt == nil || !tt.Chars().IsLatin() {
		return false
	}
	switch tt.Term() {
	case "THE", "A", "AN":
		return true
	}
	return false
}

// TermOf returns the primary surface form of t, or "" for non-text tokens.
func TermOf(t Token) string {
	if tt, ok := t.(Text); ok && tt != nil {
		return tt.Term()
	}
	return ""
}
