package token

import (
	"fmt"
	"strings"
	"unicode"
)

// Lang is a bitset of languages a token or pattern may belong to.
type Lang uint16

const (
	LangRU Lang = 1 << iota
	LangUA
	LangBY
	LangKZ
	LangEN
	LangIT
	LangDE

	LangUnknown Lang = 0
)

var langCodes = [...]struct {
	l    Lang
	code string
}{
	{LangRU, "ru"},
	{LangUA, "ua"},
	{LangBY, "by"},
	{LangKZ, "kz"},
	{LangEN, "en"},
	{LangIT, "it"},
	{LangDE, "de"},
}

func (l Lang) IsUndefined() bool { return l == LangUnknown }
func (l Lang) IsRU() bool        { return l&LangRU != 0 }
func (l Lang) IsUA() bool        { return l&LangUA != 0 }
func (l Lang) IsEN() bool        { return l&LangEN != 0 }

// Intersects reports whether l and o share at least one language.
func (l Lang) Intersects(o Lang) bool { return l&o != 0 }

// Compatible reports whether a pattern of language l may match a token of
// language o. Undefined on either side is compatible with anything.
func (l Lang) Compatible(o Lang) bool {
	return l.IsUndefined() || o.IsUndefined() || l.Intersects(o)
}

func (l Lang) String() string {
	if l == LangUnknown {
		return ""
	}
	var parts []string
	for _, it := range langCodes {
		if l&it.l != 0 {
			parts = append(parts, it.code)
		}
	}
	return strings.Join(parts, ";")
}

// ParseLang parses "ru;ua" style codes. An empty string is LangUnknown.
func ParseLang(s string) (Lang, error) {
	var res Lang
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' || r == ' ' }) {
		p = strings.ToLower(p)
		found := false
		for _, it := range langCodes {
			if it.code == p {
				res |= it.l
				found = true
				break
			}
		}
		if !found {
			return LangUnknown, fmt.Errorf("unknown language code %q", p)
		}
	}
	return res, nil
}

// IsLatinChar reports whether r is a Latin letter.
func IsLatinChar(r rune) bool {
	return unicode.Is(unicode.Latin, r)
}

// IsCyrillicChar reports whether r is a Cyrillic letter.
func IsCyrillicChar(r rune) bool {
	return unicode.Is(unicode.Cyrillic, r)
}

// IsLatin reports whether s consists of Latin letters, whitespace and hyphens
// only, and contains at least one Latin letter.
func IsLatin(s string) bool {
	has := false
	for _, r := range s {
		switch {
		case IsLatinChar(r):
			has = true
		case unicode.IsSpace(r), r == '-':
		default:
			return false
		}
	}
	return has
}

const cyrillicVowels = "АЕЁИОУЫЭЮЯІЇЄаеёиоуыэюяіїє"

// IsCyrillicVowel reports whether r is a Cyrillic vowel letter.
func IsCyrillicVowel(r rune) bool {
	return strings.ContainsRune(cyrillicVowels, r)
}

const uaOnly = "ІЇЄҐіїєґ"

// DetectLang classifies a word by its script. Cyrillic words containing
// Ukrainian-only letters are Ukrainian, other Cyrillic words Russian, Latin
// words English. Mixed or letterless input is LangUnknown.
func DetectLang(s string) Lang {
	cyr, lat, ua := 0, 0, false
	for _, r := range s {
		switch {
		case IsCyrillicChar(r):
			cyr++
			if strings.ContainsRune(uaOnly, r) {
				ua = true
			}
		case IsLatinChar(r):
			lat++
		}
	}
	switch {
	case cyr > 0 && lat > 0:
		return LangUnknown
	case ua:
		return LangUA
	case cyr > 0:
		return LangRU
	case lat > 0:
		return LangEN
	}
	return LangUnknown
}
