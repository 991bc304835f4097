// Package termin matches dictionary patterns against annotated token chains.
//
// A Termin is a pattern: an ordered (or order-free) list of Term slots, with
// optional acronym and abbreviation spellings. A Collection indexes many
// patterns in patricia tries keyed by every string a pattern can start with
// and answers anchored lookups: given a token, which patterns match there,
// longest first.
//
// Matching is read-only over the chain; a "no match" outcome is a nil
// result, never an error.
package termin

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bastiangx/termserve/pkg/token"
)

// Analyzer tokenizes and annotates dictionary source text so patterns can
// collect inflection variants for every word.
type Analyzer interface {
	Analyze(text string, lang token.Lang) []token.Token
}

// stdAbridgePrefixes are adjective stems commonly abbreviated in place names.
var stdAbridgePrefixes = []string{"НИЖ", "ВЕРХ", "МАЛ", "БОЛЬШ", "НОВ", "СТАР"}

// Termin is a dictionary pattern. Once added to a Collection only the tag
// fields may change; anything else requires Collection.Reindex.
type Termin struct {
	Terms []*Term
	// IgnoreTermsOrder lets slots match in any order.
	IgnoreTermsOrder bool
	// Acronym is a literal short form.
	Acronym string
	// AcronymSmart also accepts the dotted-initials rendering ("Р.Ф.").
	AcronymSmart      string
	AcronymCanBeLower bool
	// AcronymCanBeSmart copies Acronym to AcronymSmart when the pattern is
	// added to a collection.
	AcronymCanBeSmart bool
	Abridges          []*Abridge
	// AdditionalVars are alternate full spellings reported as this pattern.
	AdditionalVars []*Termin
	Lang           token.Lang

	Tag  any
	Tag2 any
	Tag3 any

	canonic string
}

// New builds a pattern from source text through an analyzer, collecting the
// lemma and dictionary forms of every word. A nil analyzer falls back to
// NewNormal.
func New(source string, lang token.Lang, an Analyzer) *Termin {
	if an == nil {
		return NewNormal(source, lang)
	}
	t := &Termin{Lang: lang}
	for _, tok := range an.Analyze(source, lang) {
		switch v := tok.(type) {
		case token.Text:
			t.Terms = append(t.Terms, NewWordTerm(v, true))
		case token.Number:
			t.Terms = append(t.Terms, NewNumberTerm(v.Value()))
		}
	}
	return t
}

// NewNormal builds a pattern from text already in normal form. The text is
// upper-cased and split without morphology.
func NewNormal(text string, lang token.Lang) *Termin {
	t := &Termin{Lang: lang}
	text = strings.ReplaceAll(strings.ToUpper(text), "'", "")
	for _, w := range splitNormal(text) {
		t.Terms = append(t.Terms, NewTextTerm(w))
	}
	return t
}

// NewAcronym builds an acronym-only pattern.
func NewAcronym(acr string, lang token.Lang) *Termin {
	return &Termin{Acronym: strings.ToUpper(acr), Lang: lang}
}

// NewFromTokens builds a pattern from a span of a live chain. The language
// is taken from the first token that has one.
func NewFromTokens(begin, end token.Token, tag any, addLemma bool) *Termin {
	t := &Termin{Tag: tag}
	for tok := begin; tok != nil; tok = tok.Next() {
		if m := tok.Morph(); t.Lang.IsUndefined() && m != nil && !m.Language.IsUndefined() {
			t.Lang = m.Language
		}
		switch v := tok.(type) {
		case token.Text:
			t.Terms = append(t.Terms, NewWordTerm(v, addLemma))
		case token.Number:
			t.Terms = append(t.Terms, NewNumberTerm(v.Value()))
		}
		if tok == end {
			break
		}
	}
	return t
}

// splitNormal cuts letter-and-space text on spaces; anything else is split
// into letter runs, digit runs and single punctuation marks.
func splitNormal(text string) []string {
	plain := true
	for _, r := range text {
		if !isLetter(r) && r != ' ' {
			plain = false
			break
		}
	}
	if plain {
		return strings.Fields(text)
	}
	var res []string
	rs := []rune(text)
	for i := 0; i < len(rs); {
		r := rs[i]
		j := i + 1
		switch {
		case isSpace(r):
			i++
			continue
		case isLetter(r):
			for j < len(rs) && isLetter(rs[j]) {
				j++
			}
		case unicode.IsDigit(r):
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
		}
		res = append(res, string(rs[i:j]))
		i = j
	}
	return res
}

func isLetter(r rune) bool { return unicode.IsLetter(r) }

func isSpace(r rune) bool { return unicode.IsSpace(r) }

// CanonicText is the override if set, else the slots' canonical texts joined
// by spaces, else the acronym.
func (t *Termin) CanonicText() string {
	if t.canonic != "" {
		return t.canonic
	}
	if len(t.Terms) > 0 {
		parts := make([]string, len(t.Terms))
		for i, s := range t.Terms {
			parts[i] = s.CanonicalText()
		}
		return strings.Join(parts, " ")
	}
	if t.Acronym != "" {
		return t.Acronym
	}
	return "?"
}

// SetCanonicText overrides the canonical text.
func (t *Termin) SetCanonicText(s string) { t.canonic = s }

// Gender is the gender of the head slot: the last one for an adjective +
// noun pattern, otherwise the first.
func (t *Termin) Gender() token.Gender {
	if len(t.Terms) == 0 {
		return token.GenderUndefined
	}
	last := t.Terms[len(t.Terms)-1]
	if t.Terms[0].IsAdjective() && last.IsNoun() {
		return last.Gender()
	}
	return t.Terms[0].Gender()
}

// SetGender constrains the first slot.
func (t *Termin) SetGender(g token.Gender) {
	if len(t.Terms) > 0 {
		t.Terms[0].SetGender(g)
	}
}

// SetStdAcronym derives an acronym from the first letters of slots longer
// than two characters. Nothing is set for fewer than two letters.
func (t *Termin) SetStdAcronym(smart bool) {
	var sb strings.Builder
	n := 0
	for _, s := range t.Terms {
		txt := s.CanonicalText()
		if utf8.RuneCountInString(txt) > 2 {
			r, _ := utf8.DecodeRuneInString(txt)
			sb.WriteRune(r)
			n++
		}
	}
	if n < 2 {
		return
	}
	if smart {
		t.AcronymSmart = sb.String()
	} else {
		t.Acronym = sb.String()
	}
}

// AddAbridge parses and attaches an abbreviation such as "НАС.П." or
// "Д-Р". It returns nil and attaches nothing for malformed input.
func (t *Termin) AddAbridge(abr string) *Abridge {
	a := ParseAbridge(abr)
	if a == nil {
		return nil
	}
	t.Abridges = append(t.Abridges, a)
	return a
}

// AddStdAbridges adds "НИЖ. НОВГОРОД" style abbreviations to two-slot
// patterns whose first word starts with a known adjective stem: one per
// consonant in the stem, cut after it.
func (t *Termin) AddStdAbridges() {
	if len(t.Terms) != 2 {
		return
	}
	first := t.Terms[0].CanonicalText()
	var head string
	for _, p := range stdAbridgePrefixes {
		if strings.HasPrefix(first, p) {
			head = p
			break
		}
	}
	if head == "" {
		return
	}
	second := t.Terms[1].CanonicalText()
	hr := []rune(head)
	for i, r := range hr {
		if token.IsCyrillicVowel(r) {
			continue
		}
		a := &Abridge{}
		a.AddPart(string(hr[:i+1]), false)
		a.AddPart(second, false)
		t.Abridges = append(t.Abridges, a)
	}
}

// AddAllAbridges adds every abbreviation of the first slot cut after a
// consonant. With tailLen > 0 the last tailLen runes become a hyphen tail
// ("Д-Р" for "ДОКТОР" with tailLen 1) and maxFirstLen limits the head.
// minFirstLen stops the plain form from cutting too short.
func (t *Termin) AddAllAbridges(tailLen, maxFirstLen, minFirstLen int) {
	if len(t.Terms) == 0 {
		return
	}
	txt := []rune(t.Terms[0].CanonicalText())
	if tailLen == 0 {
		for i := len(txt) - 2; i >= 0; i-- {
			if token.IsCyrillicVowel(txt[i]) {
				continue
			}
			if minFirstLen > 0 && i < minFirstLen-1 {
				break
			}
			a := &Abridge{}
			a.AddPart(string(txt[:i+1]), false)
			for _, s := range t.Terms[1:] {
				a.AddPart(s.CanonicalText(), false)
			}
			t.Abridges = append(t.Abridges, a)
		}
		return
	}
	if tailLen >= len(txt) {
		return
	}
	tail := string(txt[len(txt)-tailLen:])
	head := txt[:len(txt)-tailLen-1]
	for i := len(head) - 2; i >= 0; i-- {
		if maxFirstLen > 0 && i >= maxFirstLen {
			continue
		}
		if !token.IsCyrillicVowel(head[i]) {
			t.AddAbridge(string(head[:i+1]) + "-" + tail)
		}
	}
}

// AddVariant attaches an alternate full spelling built through an.
func (t *Termin) AddVariant(text string, an Analyzer) *Termin {
	v := New(text, token.LangUnknown, an)
	t.AdditionalVars = append(t.AdditionalVars, v)
	return v
}

// AddVariantTermin attaches an already built alternate spelling.
func (t *Termin) AddVariantTermin(v *Termin) {
	t.AdditionalVars = append(t.AdditionalVars, v)
}

// SearchKeys lists every string the pattern can start with: the first
// slot's variants, hyphen compounds, every slot when order is free,
// acronyms, and abbreviation heads longer than one letter.
func (t *Termin) SearchKeys() []string {
	var res []string
	add := func(s string) {
		if s == "" {
			return
		}
		for _, e := range res {
			if e == s {
				return
			}
		}
		res = append(res, s)
	}
	for j, s := range t.Terms {
		if s.IsPatternAny {
			if !t.IgnoreTermsOrder {
				break
			}
			continue
		}
		for _, v := range s.Variants() {
			add(v)
		}
		if j+2 < len(t.Terms) && t.Terms[j+1].IsHyphen() {
			pref := s.CanonicalText()
			for _, v := range t.Terms[j+2].Variants() {
				add(pref + v)
			}
		}
		if !t.IgnoreTermsOrder {
			break
		}
	}
	add(t.Acronym)
	add(t.AcronymSmart)
	for _, a := range t.Abridges {
		if len(a.Parts) > 0 && utf8.RuneCountInString(a.Parts[0].Value) > 1 {
			add(a.Parts[0].Value)
		}
	}
	return res
}

// IsEqual reports whether o shares an acronym with t or has the same number
// of pairwise compatible slots.
func (t *Termin) IsEqual(o *Termin) bool {
	if o.Acronym != "" && (t.Acronym == o.Acronym || t.AcronymSmart == o.Acronym) {
		return true
	}
	if o.AcronymSmart != "" && (t.Acronym == o.AcronymSmart || t.AcronymSmart == o.AcronymSmart) {
		return true
	}
	if len(o.Terms) != len(t.Terms) {
		return false
	}
	for i := range t.Terms {
		if !t.Terms[i].CheckByTerm(o.Terms[i]) {
			return false
		}
	}
	return true
}

func (t *Termin) String() string {
	var parts []string
	if len(t.Terms) > 0 {
		words := make([]string, len(t.Terms))
		for i, s := range t.Terms {
			words[i] = s.CanonicalText()
		}
		parts = append(parts, strings.Join(words, " "))
	}
	if t.Acronym != "" {
		parts = append(parts, t.Acronym)
	}
	if t.AcronymSmart != "" {
		parts = append(parts, t.AcronymSmart)
	}
	for _, a := range t.Abridges {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, ", ")
}
