package token

import "unicode"

// Chars summarizes the letter case and script of a token's source text.
type Chars uint8

const (
	CharsLetter Chars = 1 << iota
	CharsAllUpper
	CharsAllLower
	CharsCapitalUpper
	CharsLastLower
	CharsLatin
	CharsCyrillic
)

func (c Chars) IsLetter() bool       { return c&CharsLetter != 0 }
func (c Chars) IsAllUpper() bool     { return c&CharsAllUpper != 0 }
func (c Chars) IsAllLower() bool     { return c&CharsAllLower != 0 }
func (c Chars) IsCapitalUpper() bool { return c&CharsCapitalUpper != 0 }
func (c Chars) IsLastLower() bool    { return c&CharsLastLower != 0 }
func (c Chars) IsLatin() bool        { return c&CharsLatin != 0 }
func (c Chars) IsCyrillic() bool     { return c&CharsCyrillic != 0 }

// CharsOf computes the Chars summary of a source string.
func CharsOf(s string) Chars {
	var res Chars
	r := []rune(s)
	if len(r) == 0 {
		return res
	}
	letters, upper, lower := 0, 0, 0
	lat, cyr := true, true
	for _, ch := range r {
		if !unicode.IsLetter(ch) {
			continue
		}
		letters++
		if unicode.IsUpper(ch) {
			upper++
		} else if unicode.IsLower(ch) {
			lower++
		}
		if !IsLatinChar(ch) {
			lat = false
		}
		if !IsCyrillicChar(ch) {
			cyr = false
		}
	}
	if letters == 0 {
		return res
	}
	res |= CharsLetter
	if lat {
		res |= CharsLatin
	}
	if cyr {
		res |= CharsCyrillic
	}
	switch {
	case upper == letters:
		res |= CharsAllUpper
	case lower == letters:
		res |= CharsAllLower
	case unicode.IsUpper(r[0]) && upper == 1:
		res |= CharsCapitalUpper
	}
	if last := r[len(r)-1]; unicode.IsLower(last) && upper > 0 {
		res |= CharsLastLower
	}
	return res
}
