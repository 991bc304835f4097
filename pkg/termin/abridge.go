package termin

import (
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/termserve/pkg/token"
)

// AbridgePart is one literal of an abbreviation. HasDelim means the literal
// is written with a period or slash after it.
type AbridgePart struct {
	Value    string
	HasDelim bool
}

func (p AbridgePart) String() string {
	if p.HasDelim {
		return p.Value + "."
	}
	return p.Value
}

// Abridge is a shortened spelling of a pattern: either a sequence of parts
// ("НАС.П.") or a first part joined to a tail by a hyphen or slash ("Д-Р").
type Abridge struct {
	Parts []AbridgePart
	Tail  string
}

// AddPart appends a literal, upper-cased.
func (a *Abridge) AddPart(val string, hasDelim bool) {
	a.Parts = append(a.Parts, AbridgePart{Value: strings.ToUpper(val), HasDelim: hasDelim})
}

func (a *Abridge) String() string {
	if len(a.Parts) == 0 {
		return ""
	}
	if a.Tail != "" {
		return a.Parts[0].String() + "-" + a.Tail
	}
	var sb strings.Builder
	for _, p := range a.Parts {
		sb.WriteString(p.String())
	}
	return sb.String()
}

const abridgeDelims = "\\/."

func isAbridgeDelim(t token.Token) bool {
	return t != nil && (token.IsCharOf(t, abridgeDelims) || token.IsHyphen(t))
}

// TryAttach matches the abbreviation at t0. The returned match carries an
// empty Morph when a period or other delimiter was consumed.
func (a *Abridge) TryAttach(t0 token.Token) *Match {
	if len(a.Parts) == 0 {
		return nil
	}
	t1, ok := t0.(token.Text)
	if !ok || t1 == nil {
		return nil
	}
	if t1.Term() != a.Parts[0].Value {
		if len(a.Parts) != 1 || !token.IsValue(t1, a.Parts[0].Value) {
			return nil
		}
	}
	if a.Tail == "" {
		return a.attachParts(t0)
	}
	return a.attachTail(t0, t1)
}

func (a *Abridge) attachParts(t0 token.Token) *Match {
	te := t0
	point := false
	if n := te.Next(); n != nil {
		if token.IsChar(n, '.') {
			te = n
			point = true
		} else if len(a.Parts) > 1 {
			for te.Next() != nil && isAbridgeDelim(te.Next()) {
				te = te.Next()
				point = true
			}
		}
	}
	tt := te.Next()
	for i := 1; i < len(a.Parts); i++ {
		if tt != nil && tt.WhitespacesBefore() > 2 {
			return nil
		}
		if isAbridgeDelim(tt) {
			tt = tt.Next()
		} else if !point && a.Parts[i-1].HasDelim {
			return nil
		}
		if tt == nil {
			return nil
		}
		switch v := tt.(type) {
		case token.Text:
			if v.Term() != a.Parts[i].Value && !token.IsValue(v, a.Parts[i].Value) {
				return nil
			}
		case token.Composite:
			if v.BeginToken() != v.EndToken() || !token.IsValue(v.BeginToken(), a.Parts[i].Value) {
				return nil
			}
		default:
			return nil
		}
		te = tt
		if isAbridgeDelim(tt.Next()) {
			tt = tt.Next()
			point = true
			te = tt
		} else {
			point = false
		}
		tt = tt.Next()
	}
	res := &Match{Begin: t0, End: te, AbridgeWithoutPoint: t0 == te}
	if point {
		res.Morph = &token.Morph{}
	}
	return res
}

func (a *Abridge) attachTail(t0 token.Token, t1 token.Text) *Match {
	d, ok := t1.Next().(token.Text)
	if !ok || d == nil || !token.IsCharOf(d, "-\\/") {
		return nil
	}
	tl, ok := d.Next().(token.Text)
	if !ok || tl == nil {
		return nil
	}
	term := tl.Term()
	if term == "" {
		return nil
	}
	tr, _ := utf8.DecodeRuneInString(term)
	ar, _ := utf8.DecodeRuneInString(a.Tail)
	if tr != ar {
		return nil
	}
	tailLen := utf8.RuneCountInString(a.Tail)
	if tailLen > 3 {
		if !token.IsValue(tl, a.Tail) || !strings.HasPrefix(term, a.Tail) {
			return nil
		}
	}
	if term != a.Tail {
		termLen := utf8.RuneCountInString(term)
		last, _ := utf8.DecodeLastRuneInString(term)
		switch {
		case termLen == tailLen+1:
			if !strings.HasPrefix(term, a.Tail) || !token.IsCyrillicVowel(last) {
				return nil
			}
		case termLen+1 == tailLen:
			if !token.IsCyrillicVowel(last) {
				return nil
			}
		}
	}
	return &Match{Begin: t0, End: tl}
}

// ParseAbridge reads an abbreviation written the way it appears in text:
// letters up to the first non-letter form the first part; "-" followed by
// more text makes that text the tail; otherwise each further run of
// letters is a part, marked delimited when a non-space follows it. It
// returns nil when the text does not start with a letter.
func ParseAbridge(abr string) *Abridge {
	rs := []rune(abr)
	i := 0
	for i < len(rs) && isLetter(rs[i]) {
		i++
	}
	if i == 0 {
		return nil
	}
	a := &Abridge{}
	a.AddPart(string(rs[:i]), false)
	if i+1 < len(rs) && rs[i] == '-' {
		a.Tail = strings.ToUpper(string(rs[i+1:]))
		return a
	}
	if i < len(rs) && !isSpace(rs[i]) {
		a.Parts[0].HasDelim = true
	}
	for ; i < len(rs); i++ {
		if !isLetter(rs[i]) {
			continue
		}
		j := i + 1
		for j < len(rs) && isLetter(rs[j]) {
			j++
		}
		p := AbridgePart{Value: strings.ToUpper(string(rs[i:j]))}
		if j < len(rs) && !isSpace(rs[j]) {
			p.HasDelim = true
		}
		a.Parts = append(a.Parts, p)
		i = j
	}
	return a
}
