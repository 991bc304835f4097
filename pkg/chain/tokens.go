// Package chain is a concrete, minimal token chain: text, number and
// composite tokens linked in both directions, built from plain text by
// Tokenize and annotated from a morph.Lexicon. It implements the interfaces
// of package token and exists so the matcher can be driven end to end.
package chain

import (
	"github.com/bastiangx/termserve/pkg/token"
)

type base struct {
	prev, next token.Token
	begin, end int
	wsBefore   int
	wsAfter    int
	morph      *token.Morph
	chars      token.Chars
}

func (b *base) Prev() token.Token        { return b.prev }
func (b *base) Next() token.Token        { return b.next }
func (b *base) BeginChar() int           { return b.begin }
func (b *base) EndChar() int             { return b.end }
func (b *base) WhitespacesBefore() int   { return b.wsBefore }
func (b *base) WhitespacesAfter() int    { return b.wsAfter }
func (b *base) Morph() *token.Morph      { return b.morph }
func (b *base) Chars() token.Chars       { return b.chars }
func (b *base) setPrev(t token.Token)    { b.prev = t }
func (b *base) setNext(t token.Token)    { b.next = t }
func (b *base) self() *base              { return b }

type linked interface {
	token.Token
	setPrev(token.Token)
	setNext(token.Token)
	self() *base
}

// TextToken is a word or a single punctuation mark.
type TextToken struct {
	base
	term      string
	term0     string
	lemma     string
	source    string
	invPrefix int
}

func (t *TextToken) Term() string               { return t.term }
func (t *TextToken) Term0() string              { return t.term0 }
func (t *TextToken) Lemma() string              { return t.lemma }
func (t *TextToken) InvariantPrefixLength() int { return t.invPrefix }

// Source is the token text as it appeared in the input.
func (t *TextToken) Source() string { return t.source }

func (t *TextToken) String() string { return t.source }

// NumberToken is a run of digits.
type NumberToken struct {
	base
	value    string
	inner    token.Token
	innerEnd token.Token
}

func (n *NumberToken) Value() string { return n.value }

// BeginToken returns the token the number was read from, or the number itself.
func (n *NumberToken) BeginToken() token.Token {
	if n.inner != nil {
		return n.inner
	}
	return n
}

// EndToken mirrors BeginToken for the end of the span.
func (n *NumberToken) EndToken() token.Token {
	if n.innerEnd != nil {
		return n.innerEnd
	}
	return n
}

func (n *NumberToken) String() string { return n.value }

// MetaToken wraps a span of inner tokens as one chain element.
type MetaToken struct {
	base
	beginTok token.Token
	endTok   token.Token
	typeName string
}

func (m *MetaToken) BeginToken() token.Token { return m.beginTok }
func (m *MetaToken) EndToken() token.Token   { return m.endTok }
func (m *MetaToken) TypeName() string        { return m.typeName }

// Wrap replaces the span begin..end in its chain with a composite token of
// the given type and returns it. The inner tokens keep their own links so
// the span can still be walked from BeginToken to EndToken.
func Wrap(begin, end token.Token, typeName string) *MetaToken {
	lb, ok1 := begin.(linked)
	le, ok2 := end.(linked)
	if !ok1 || !ok2 {
		return nil
	}
	m := &MetaToken{
		base: base{
			prev:     begin.Prev(),
			next:     end.Next(),
			begin:    begin.BeginChar(),
			end:      end.EndChar(),
			wsBefore: begin.WhitespacesBefore(),
			wsAfter:  end.WhitespacesAfter(),
			morph:    &token.Morph{Language: begin.Morph().Language},
			chars:    begin.Chars(),
		},
		beginTok: begin,
		endTok:   end,
		typeName: typeName,
	}
	if p, ok := lb.self().prev.(linked); ok {
		p.setNext(m)
	}
	if n, ok := le.self().next.(linked); ok {
		n.setPrev(m)
	}
	return m
}

// First walks back from t to the head of its chain.
func First(t token.Token) token.Token {
	if t == nil {
		return nil
	}
	for t.Prev() != nil {
		t = t.Prev()
	}
	return t
}

// Slice collects the chain starting at t into a slice.
func Slice(t token.Token) []token.Token {
	var res []token.Token
	for ; t != nil; t = t.Next() {
		res = append(res, t)
	}
	return res
}
