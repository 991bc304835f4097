package termin

import (
	"unicode/utf8"

	"github.com/bastiangx/termserve/pkg/token"
)

const quoteMarks = "\"'`’“”"

func asText(t token.Token) token.Text {
	if tt, ok := t.(token.Text); ok {
		return tt
	}
	return nil
}

func classOf(t token.Token) token.MorphClass {
	if t == nil {
		return token.ClassUndefined
	}
	return t.Morph().Class()
}

// isStopToken reports whether t may be skipped under IgnoreStopWords:
// punctuation, dictionary prepositions and conjunctions, bare numbers.
func isStopToken(t token.Token) bool {
	switch v := t.(type) {
	case token.Text:
		if !v.Chars().IsLetter() {
			return true
		}
		mc := v.Morph().ClassInDictionary()
		return mc.IsConjunction() || mc.IsPreposition()
	case token.Number:
		return true
	}
	return false
}

// TryParse matches the pattern at t0 and returns the longest span that
// satisfies it, or nil. Acronym forms are tried first, then the slots, then
// abbreviations.
func (t *Termin) TryParse(t0 token.Token, attrs ParseAttr) *Match {
	if t0 == nil {
		return nil
	}
	var term, term0 string
	if tt := asText(t0); tt != nil {
		term = tt.Term()
		if term0 = tt.Term0(); term0 == term {
			term0 = ""
		}
	}
	if m := t.tryAcronym(t0, term, term0, attrs); m != nil {
		return m
	}
	if m := t.trySlots(t0, attrs); m != nil {
		return m
	}
	if m := t.tryUnordered(t0, attrs); m != nil {
		return m
	}
	return t.tryAbridges(t0, attrs)
}

func (t *Termin) tryAcronym(t0 token.Token, term, term0 string, attrs ParseAttr) *Match {
	if term == "" {
		return nil
	}
	if t.AcronymSmart != "" && !attrs.Has(FullWordsOnly) {
		if t.AcronymSmart == term || (term0 != "" && t.AcronymSmart == term0) {
			if n := t0.Next(); n != nil && token.IsChar(n, '.') && !token.IsWhitespaceAfter(t0) {
				return newMatch(t0, n, t)
			}
			return newMatch(t0, t0, t)
		}
		if end := dottedInitials(t0, t.AcronymSmart); end != nil {
			return newMatch(t0, end, t)
		}
	}
	if t.Acronym != "" && (t.Acronym == term || (term0 != "" && t.Acronym == term0)) {
		ch := t0.Chars()
		if ch.IsAllUpper() || t.AcronymCanBeLower || (!ch.IsAllLower() && utf8.RuneCountInString(term) >= 3) {
			return newMatch(t0, t0, t)
		}
	}
	if t.Acronym != "" && t0.Chars().IsLastLower() && token.LengthChar(t0) > 3 && token.IsValue(t0, t.Acronym) {
		return newMatch(t0, t0, t)
	}
	return nil
}

// dottedInitials matches "Р.Ф." for "РФ": one single-letter token per rune,
// each followed by a period, with no spaces inside. It returns the last
// period or nil.
func dottedInitials(t0 token.Token, acr string) token.Token {
	var end token.Token
	tt := t0
	i := 0
	for _, r := range acr {
		txt := asText(tt)
		if txt == nil {
			return nil
		}
		rs := []rune(txt.Term())
		if len(rs) != 1 || rs[0] != r || token.IsWhitespaceAfter(tt) {
			return nil
		}
		if i > 0 && token.IsWhitespaceBefore(tt) {
			return nil
		}
		p := tt.Next()
		if p == nil || !token.IsChar(p, '.') {
			return nil
		}
		end = p
		tt = p.Next()
		i++
	}
	return end
}

func (t *Termin) trySlots(t0 token.Token, attrs ParseAttr) *Match {
	if len(t.Terms) == 0 {
		return nil
	}
	cou := 0
	for _, s := range t.Terms {
		if s.IsHyphen() {
			cou--
		} else {
			cou++
		}
	}
	if t.IgnoreTermsOrder && cou != 1 {
		return nil
	}
	t1, tt := t0, t0
	var e, eUp token.Token
	var mc *token.Morph
	ok, frozen := true, false
	i := 0
slots:
	for i = 0; i < len(t.Terms); i++ {
		slot := t.Terms[i]
		if slot.IsHyphen() {
			continue
		}
		if tt != nil && i > 0 && token.IsHyphen(tt) {
			tt = tt.Next()
		}
		if i > 0 && tt != nil && attrs.Has(IgnoreBrackets) && token.IsBracket(tt) {
			tt = tt.Next()
		}
		if i > 0 && attrs.Has(CanBeGeoObject) {
			if c, isComp := tt.(token.Composite); isComp && c.TypeName() == GeoTypeName {
				tt = tt.Next()
			}
		}
		if c, isComp := tt.(token.Composite); isComp && e == nil {
			eUp = tt
			e = c.EndToken()
			tt = c.BeginToken()
		}
		if tt == nil {
			ok = false
			break
		}
		if !slot.CheckByToken(tt) {
			next := tt.Next()
			switch {
			case next != nil && token.IsCharOf(tt, ".,") && slot.CheckByToken(next):
				tt = next
			case i > 0 && next != nil && asText(tt) != nil &&
				(classOf(tt).IsPreposition() || token.IsEngArticle(tt)) &&
				slot.CheckByToken(next) && !t.Terms[i-1].IsPatternAny:
				tt = next
			default:
				ok = false
				if i+2 < len(t.Terms) && t.Terms[i+1].IsHyphen() && t.Terms[i+2].checkByPrefToken(slot, asText(tt)) {
					i += 2
					ok = true
				} else if q := quotePrefixed(tt); q != nil {
					if slot.checkByStrPrefToken(token.TermOf(tt), q) {
						ok = true
						tt = q
					}
				}
				if !ok {
					if i > 0 && attrs.Has(IgnoreStopWords) && isStopToken(tt) {
						ok = true
						tt = tt.Next()
						i--
						continue slots
					}
					break slots
				}
			}
		}
		if m := tt.Morph(); m.Len() > 0 && !frozen {
			mc = m.Clone()
			cls := mc.Class()
			if (cls.IsNoun() || cls.IsVerb()) && !cls.IsAdjective() {
				if i+1 >= len(t.Terms) || !t.Terms[i+1].IsHyphen() {
					frozen = true
				}
			}
		}
		if cls := classOf(tt); cls.IsPreposition() || cls.IsConjunction() {
			frozen = true
		}
		if tt == e {
			tt = eUp
			eUp, e = nil, nil
		}
		if e == nil {
			t1 = tt
		}
		tt = tt.Next()
	}
	if !ok || i < len(t.Terms) {
		return nil
	}
	if n := t1.Next(); n != nil && token.IsChar(n, '.') {
		for _, a := range t.Abridges {
			if a.TryAttach(t0) != nil {
				t1 = n
				break
			}
		}
	}
	return &Match{Begin: t0, End: t1, Termin: t, Morph: mc}
}

// quotePrefixed returns the word after "Д'" in "Д'АРТАНЬЯН": a one-letter
// token glued to a quote glued to a word.
func quotePrefixed(tt token.Token) token.Text {
	if asText(tt) == nil || token.IsWhitespaceAfter(tt) || token.LengthChar(tt) != 1 {
		return nil
	}
	q := tt.Next()
	if q == nil || !token.IsCharOf(q, quoteMarks) || token.IsWhitespaceAfter(q) {
		return nil
	}
	return asText(q.Next())
}

func (t *Termin) tryUnordered(t0 token.Token, attrs ParseAttr) *Match {
	if len(t.Terms) < 2 || !t.IgnoreTermsOrder {
		return nil
	}
	rest := append([]*Term(nil), t.Terms...)
	t1, tt := t0, t0
	for len(rest) > 0 {
		if tt != t0 && tt != nil && token.IsHyphen(tt) {
			tt = tt.Next()
		}
		if tt == nil {
			break
		}
		j := -1
		for k, s := range rest {
			if s.CheckByToken(tt) {
				j = k
				break
			}
		}
		if j < 0 {
			if tt != t0 && attrs.Has(IgnoreStopWords) && isStopToken(tt) {
				tt = tt.Next()
				continue
			}
			break
		}
		rest = append(rest[:j], rest[j+1:]...)
		t1 = tt
		tt = tt.Next()
	}
	for _, s := range rest {
		if !s.IsHyphen() && !s.IsPoint() {
			return nil
		}
	}
	return newMatch(t0, t1, t)
}

// tryAbridges returns the longest abbreviation match. An abbreviation read
// without any delimiter must spell its first part exactly.
func (t *Termin) tryAbridges(t0 token.Token, attrs ParseAttr) *Match {
	if len(t.Abridges) == 0 || attrs.Has(FullWordsOnly) {
		return nil
	}
	var res *Match
	for _, a := range t.Abridges {
		r := a.TryAttach(t0)
		if r == nil {
			continue
		}
		if r.AbridgeWithoutPoint && len(t.Terms) > 0 {
			if tt := asText(t0); tt == nil || a.Parts[0].Value != tt.Term() {
				continue
			}
		}
		if res == nil || res.LengthChar() < r.LengthChar() {
			res = r
		}
	}
	if res != nil {
		res.Termin = t
	}
	return res
}
