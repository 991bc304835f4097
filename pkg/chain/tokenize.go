package chain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bastiangx/termserve/pkg/morph"
	"github.com/bastiangx/termserve/pkg/token"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Marks are stripped to get the secondary surface form; the combining breve
// is kept so Й does not collapse into И. Transformers carry state, so each
// call builds its own chain.
func stripMarks() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.Predicate(func(r rune) bool {
			return unicode.Is(unicode.Mn, r) && r != '\u0306'
		})),
		norm.NFC,
	)
}

// SecondaryForm returns the script-normalized variant of an upper-cased term
// (ЁЛКА -> ЕЛКА, CAFÉ -> CAFE), or "" when normalization changes nothing.
func SecondaryForm(term string) string {
	res, _, err := transform.String(stripMarks(), term)
	if err != nil || res == term {
		return ""
	}
	return res
}

type span struct {
	text       string
	begin, end int
	kind       spanKind
}

type spanKind uint8

const (
	spanWord spanKind = iota
	spanDigits
	spanPunct
)

func split(text string) ([]span, []int) {
	var spans []span
	var ws []int
	pos, pending := 0, 0
	rs := []rune(text)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			pending++
			i++
			pos++
			continue
		case unicode.IsLetter(r):
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.Is(unicode.Mn, rs[j])) {
				j++
			}
			spans = append(spans, span{string(rs[i:j]), pos, pos + j - i - 1, spanWord})
			pos += j - i
			i = j
		case unicode.IsDigit(r):
			j := i + 1
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			spans = append(spans, span{string(rs[i:j]), pos, pos + j - i - 1, spanDigits})
			pos += j - i
			i = j
		default:
			spans = append(spans, span{string(r), pos, pos, spanPunct})
			pos++
			i++
		}
		ws = append(ws, pending)
		pending = 0
	}
	ws = append(ws, pending)
	return spans, ws
}

// Tokenize splits text into words, digit runs and single punctuation marks
// and links them into a chain annotated from lex. It returns the first token,
// or nil for text without tokens. A nil lexicon leaves words without readings.
func Tokenize(text string, lex *morph.Lexicon) token.Token {
	spans, ws := split(text)
	var first, prev linked
	for i, sp := range spans {
		var cur linked
		switch sp.kind {
		case spanDigits:
			cur = &NumberToken{
				base: base{
					morph: &token.Morph{},
				},
				value: strings.TrimLeft(sp.text, "0"),
			}
			if n := cur.(*NumberToken); n.value == "" {
				n.value = "0"
			}
		default:
			cur = newText(sp.text, lex)
		}
		b := cur.self()
		b.begin, b.end = sp.begin, sp.end
		b.wsBefore, b.wsAfter = ws[i], ws[i+1]
		if prev != nil {
			prev.setNext(cur)
			cur.setPrev(prev)
		} else {
			first = cur
		}
		prev = cur
	}
	if first == nil {
		return nil
	}
	return first
}

func newText(src string, lex *morph.Lexicon) *TextToken {
	term := strings.ToUpper(src)
	t := &TextToken{
		base: base{
			chars: token.CharsOf(src),
			morph: &token.Morph{},
		},
		term:   term,
		term0:  SecondaryForm(term),
		source: src,
	}
	if t.chars.IsLetter() {
		items, lang := lex.Lookup(term)
		if items == nil && t.term0 != "" {
			items, lang = lex.Lookup(t.term0)
		}
		t.morph.Items = items
		if lang.IsUndefined() {
			lang = token.DetectLang(term)
		}
		t.morph.Language = lang
	}
	t.lemma = term
	for _, wf := range t.morph.Items {
		if wf.NormalFull != "" {
			t.lemma = wf.NormalFull
			break
		}
		if wf.NormalCase != "" {
			t.lemma = wf.NormalCase
			break
		}
	}
	t.invPrefix = invariantPrefix(term, t.morph.Items)
	return t
}

// invariantPrefix counts the leading runes shared by term and every normal form.
func invariantPrefix(term string, items []token.WordForm) int {
	n := utf8.RuneCountInString(term)
	for _, wf := range items {
		for _, s := range []string{wf.NormalCase, wf.NormalFull} {
			if s == "" {
				continue
			}
			if c := commonPrefix(term, s); c < n {
				n = c
			}
		}
	}
	return n
}

func commonPrefix(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	i := 0
	for i < len(ra) && i < len(rb) && ra[i] == rb[i] {
		i++
	}
	return i
}
