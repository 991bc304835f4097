package termin

import (
	"strings"
	"unicode"

	"github.com/bastiangx/termserve/pkg/token"
)

// maxUnwrapDepth bounds recursion through single-token composites.
const maxUnwrapDepth = 10

// Term is one slot of a pattern: a word with its acceptable variants, a
// number, or a placeholder matching any token.
type Term struct {
	variants     []string
	number       string
	word         bool
	forms        []token.WordForm
	gender       token.Gender
	IsPatternAny bool
}

// NewWordTerm builds a slot from an annotated token. With addLemma the lemma
// and every dictionary-backed normal form join the variants after the surface
// form. A token starting with a digit becomes a number slot.
func NewWordTerm(t token.Text, addLemma bool) *Term {
	term := t.Term()
	if term != "" && unicode.IsDigit([]rune(term)[0]) {
		return NewNumberTerm(term)
	}
	res := &Term{word: true}
	res.addVariant(term)
	if m := t.Morph(); m != nil {
		res.forms = append([]token.WordForm(nil), m.Items...)
	}
	if !addLemma {
		return res
	}
	lemma := t.Lemma()
	if lemma != "" && lemma != term {
		res.addVariant(lemma)
	}
	for _, wf := range res.forms {
		if !wf.InDictionary {
			continue
		}
		s := wf.NormalFull
		if s == "" {
			s = wf.NormalCase
		}
		if s != lemma && s != term {
			res.addVariant(s)
		}
	}
	return res
}

// NewTextTerm builds a slot from an already normalized, upper-cased word.
func NewTextTerm(word string) *Term {
	if word != "" && unicode.IsDigit([]rune(word)[0]) {
		return NewNumberTerm(word)
	}
	res := &Term{word: true}
	res.addVariant(word)
	return res
}

// NewNumberTerm builds a numeric slot.
func NewNumberTerm(num string) *Term {
	num = strings.TrimLeft(num, "0")
	if num == "" {
		num = "0"
	}
	return &Term{number: num, variants: []string{num}}
}

// NewAnyTerm builds a placeholder slot matching any single token.
func NewAnyTerm() *Term {
	return &Term{IsPatternAny: true}
}

func (t *Term) addVariant(v string) {
	if v == "" {
		return
	}
	for _, e := range t.variants {
		if e == v {
			return
		}
	}
	t.variants = append(t.variants, v)
}

// Variants returns the accepted forms; the first is canonical.
func (t *Term) Variants() []string { return t.variants }

// CanonicalText is the first variant, "?" for an empty slot.
func (t *Term) CanonicalText() string {
	if len(t.variants) > 0 {
		return t.variants[0]
	}
	return "?"
}

func (t *Term) IsNumber() bool { return t.number != "" }

// Number is the decimal literal of a numeric slot.
func (t *Term) Number() string { return t.number }

func (t *Term) IsHyphen() bool { return t.word && t.CanonicalText() == "-" }

func (t *Term) IsPoint() bool { return t.word && t.CanonicalText() == "." }

// Gender is the explicit gender if one was set, otherwise the union of the
// genders of the source word's dictionary readings.
func (t *Term) Gender() token.Gender {
	if t.gender != token.GenderUndefined {
		return t.gender
	}
	var res token.Gender
	for _, wf := range t.forms {
		if wf.InDictionary {
			res |= wf.Gender
		}
	}
	return res
}

// SetGender fixes the gender and drops source readings that contradict it.
func (t *Term) SetGender(g token.Gender) {
	t.gender = g
	kept := t.forms[:0]
	for _, wf := range t.forms {
		if wf.Gender&g != 0 {
			kept = append(kept, wf)
		}
	}
	t.forms = kept
}

func (t *Term) IsNoun() bool {
	for _, wf := range t.forms {
		if wf.Class.IsNoun() {
			return true
		}
	}
	return false
}

func (t *Term) IsAdjective() bool {
	for _, wf := range t.forms {
		if wf.Class.IsAdjective() {
			return true
		}
	}
	return false
}

// CheckByTerm reports whether two slots accept a common value.
func (t *Term) CheckByTerm(o *Term) bool {
	if t.IsNumber() {
		return t.number == o.number
	}
	for _, v := range t.variants {
		for _, w := range o.variants {
			if v == w {
				return true
			}
		}
	}
	return false
}

// CheckByToken reports whether the slot accepts tok.
func (t *Term) CheckByToken(tok token.Token) bool {
	return t.check(tok, 0)
}

func (t *Term) check(tok token.Token, lev int) bool {
	if lev > maxUnwrapDepth || tok == nil {
		return false
	}
	if t.IsPatternAny {
		return true
	}
	switch tt := tok.(type) {
	case token.Text:
		if t.IsNumber() {
			return false
		}
		for _, v := range t.variants {
			if token.IsValue(tt, v) {
				return true
			}
		}
		return false
	case token.Number:
		if t.IsNumber() {
			return t.number == tt.Value()
		}
		if b := tt.BeginToken(); b != tok && b == tt.EndToken() {
			return t.check(b, lev+1)
		}
		return false
	case token.Composite:
		if b := tt.BeginToken(); b != nil && b == tt.EndToken() {
			return t.check(b, lev+1)
		}
	}
	return false
}

// checkByPrefToken accepts tok spelled as prefix's canonical text glued to
// one of this slot's variants ("ЮГО" "-" "ЗАПАДНЫЙ" read as "ЮГОЗАПАДНЫЙ").
func (t *Term) checkByPrefToken(prefix *Term, tok token.Text) bool {
	if prefix == nil || !prefix.word || tok == nil {
		return false
	}
	pref := prefix.CanonicalText()
	if !strings.HasPrefix(tok.Term(), pref) {
		return false
	}
	for _, v := range t.variants {
		if token.IsValue(tok, pref+v) {
			return true
		}
	}
	return false
}

// checkByStrPrefToken accepts tok as the remainder of a variant after pref
// ("Д" "'" "АРТАНЬЯН" for the variant "ДАРТАНЬЯН").
func (t *Term) checkByStrPrefToken(pref string, tok token.Text) bool {
	if pref == "" || tok == nil {
		return false
	}
	for _, v := range t.variants {
		if len(v) > len(pref) && strings.HasPrefix(v, pref) {
			if token.IsValue(tok, v[len(pref):]) {
				return true
			}
		}
	}
	return false
}

func (t *Term) String() string {
	if t.IsPatternAny {
		return "IsPatternAny"
	}
	return strings.Join(t.variants, ", ")
}
