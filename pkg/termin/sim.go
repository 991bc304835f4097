package termin

import (
	"unicode/utf8"

	"github.com/bastiangx/termserve/pkg/token"
)

// Similarity thresholds outside [simMin, 1) fall back to exact matching.
const simMin = 0.05

const (
	costLight  = 0.3
	costMedium = 0.7
	costFull   = 1.0

	orderPenalty = 0.7
	minCredit    = 0.2
)

func slotCost(s *Term) float64 {
	switch {
	case utf8.RuneCountInString(s.CanonicalText()) < 2, s.IsHyphen(), s.IsPoint():
		return costLight
	case s.IsNumber(), s.IsPatternAny:
		return costMedium
	}
	return costFull
}

// tokenCost weighs a token; light reports a stop-class word whose match
// earns reduced credit.
func tokenCost(t token.Token) (cost float64, light bool) {
	if token.LengthChar(t) < 2 {
		return costLight, false
	}
	if _, ok := t.(token.Number); ok {
		return costMedium, false
	}
	tt := asText(t)
	if tt == nil {
		return costFull, false
	}
	c := tt.Morph().ClassInDictionary()
	if c.IsConjunction() || c.IsPreposition() || c.IsPronoun() || c.IsMisc() {
		return costLight, true
	}
	return costFull, false
}

// TryParseSim matches the pattern approximately: it scans tokens from t0,
// crediting each to the first unmatched slot it fits, and returns the
// longest span whose score beats d. Thresholds below 0.05 or at 1 and above
// match exactly.
func (t *Termin) TryParseSim(t0 token.Token, d float64, attrs ParseAttr) *Match {
	if t0 == nil {
		return nil
	}
	if d >= 1 || d < simMin {
		return t.TryParse(t0, attrs)
	}
	if tt := asText(t0); tt != nil {
		if m := t.tryAcronym(t0, tt.Term(), "", attrs); m != nil {
			return m
		}
	}
	if len(t.Terms) > 0 {
		return t.simSlots(t0, d)
	}
	return t.tryAbridges(t0, attrs)
}

func (t *Termin) simSlots(t0 token.Token, d float64) *Match {
	var termsLen float64
	for _, s := range t.Terms {
		termsLen += slotCost(s)
	}
	maxTks := termsLen / d
	best := d
	var t1 token.Token
	found := make([]bool, len(t.Terms))
	var tkCnt, credit float64
	lastInd := -1
	outOfOrder := false
	for tt := t0; tt != nil && tkCnt < maxTks && credit < termsLen; tt = tt.Next() {
		cost, light := tokenCost(tt)
		tkCnt += cost
		for i, s := range t.Terms {
			if found[i] {
				continue
			}
			if s.IsPatternAny {
				credit += costMedium
				found[i] = true
				break
			}
			if utf8.RuneCountInString(s.CanonicalText()) < 2 {
				credit += costLight
				found[i] = true
				break
			}
			if !s.CheckByToken(tt) {
				continue
			}
			found[i] = true
			switch {
			case light:
				termsLen -= costMedium
				credit += costLight
			case s.IsNumber():
				credit += costMedium
			default:
				credit += costFull
			}
			if !outOfOrder {
				if i < lastInd {
					outOfOrder = true
				} else {
					lastInd = i
				}
			}
			break
		}
		if credit < minCredit {
			return nil
		}
		score := credit / (tkCnt + termsLen - credit)
		if outOfOrder {
			score *= orderPenalty
		}
		if best < score {
			t1 = tt
			best = score
		}
	}
	if t1 == nil {
		return nil
	}
	res := newMatch(t0, t1, t)
	if m := t0.Morph(); m.Len() > 0 {
		res.Morph = m.Clone()
	}
	return res
}
