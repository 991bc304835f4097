package token

import "strings"

// MorphClass is a bitset of coarse parts of speech.
type MorphClass uint16

const (
	ClassNoun MorphClass = 1 << iota
	ClassAdjective
	ClassVerb
	ClassAdverb
	ClassPronoun
	ClassNumeral
	ClassPreposition
	ClassConjunction
	ClassProper
	ClassMisc

	ClassUndefined MorphClass = 0
)

var classNames = [...]struct {
	c    MorphClass
	name string
}{
	{ClassNoun, "noun"},
	{ClassAdjective, "adjective"},
	{ClassVerb, "verb"},
	{ClassAdverb, "adverb"},
	{ClassPronoun, "pronoun"},
	{ClassNumeral, "numeral"},
	{ClassPreposition, "preposition"},
	{ClassConjunction, "conjunction"},
	{ClassProper, "proper"},
	{ClassMisc, "misc"},
}

func (c MorphClass) IsUndefined() bool   { return c == ClassUndefined }
func (c MorphClass) IsNoun() bool        { return c&ClassNoun != 0 }
func (c MorphClass) IsAdjective() bool   { return c&ClassAdjective != 0 }
func (c MorphClass) IsVerb() bool        { return c&ClassVerb != 0 }
func (c MorphClass) IsPronoun() bool     { return c&ClassPronoun != 0 }
func (c MorphClass) IsPreposition() bool { return c&ClassPreposition != 0 }
func (c MorphClass) IsConjunction() bool { return c&ClassConjunction != 0 }
func (c MorphClass) IsMisc() bool        { return c&ClassMisc != 0 }

// String joins the set flag names with "|".
func (c MorphClass) String() string {
	if c == ClassUndefined {
		return "undefined"
	}
	var parts []string
	for _, it := range classNames {
		if c&it.c != 0 {
			parts = append(parts, it.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseMorphClass maps a "noun|adjective" style string to a class set.
// Unknown names are ignored.
func ParseMorphClass(s string) MorphClass {
	var res MorphClass
	for _, p := range strings.Split(s, "|") {
		p = strings.TrimSpace(strings.ToLower(p))
		for _, it := range classNames {
			if it.name == p {
				res |= it.c
			}
		}
	}
	return res
}

// Gender is a bitset of grammatical genders.
type Gender uint8

const (
	GenderMasculine Gender = 1 << iota
	GenderFeminine
	GenderNeuter

	GenderUndefined Gender = 0
)

var genderNames = map[Gender]string{
	GenderUndefined: "undefined",
	GenderMasculine: "masculine",
	GenderFeminine:  "feminine",
	GenderNeuter:    "neuter",
}

func (g Gender) String() string {
	if s, ok := genderNames[g]; ok {
		return s
	}
	var parts []string
	for _, it := range []Gender{GenderMasculine, GenderFeminine, GenderNeuter} {
		if g&it != 0 {
			parts = append(parts, genderNames[it])
		}
	}
	return strings.Join(parts, "|")
}

// ParseGender maps "masculine|feminine" style strings to a gender set.
func ParseGender(s string) Gender {
	var res Gender
	for _, p := range strings.Split(s, "|") {
		p = strings.TrimSpace(strings.ToLower(p))
		for g, name := range genderNames {
			if name == p {
				res |= g
			}
		}
	}
	return res
}

// WordForm is one morphological reading of a token.
type WordForm struct {
	// NormalCase is the form in the nominative case keeping number.
	NormalCase string
	// NormalFull is the dictionary lemma.
	NormalFull   string
	Class        MorphClass
	Gender       Gender
	InDictionary bool
}

// Morph is the morphological annotation of a token: its language and the
// set of readings.
type Morph struct {
	Language Lang
	Items    []WordForm
}

// Clone returns a deep copy of m. A nil Morph clones to nil.
func (m *Morph) Clone() *Morph {
	if m == nil {
		return nil
	}
	res := &Morph{Language: m.Language}
	if len(m.Items) > 0 {
		res.Items = append([]WordForm(nil), m.Items...)
	}
	return res
}

// Len is the number of readings.
func (m *Morph) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Items)
}

// Class is the union of the classes of all readings.
func (m *Morph) Class() MorphClass {
	var res MorphClass
	if m == nil {
		return res
	}
	for _, wf := range m.Items {
		res |= wf.Class
	}
	return res
}

// ClassInDictionary is the union of classes over dictionary-backed readings.
func (m *Morph) ClassInDictionary() MorphClass {
	var res MorphClass
	if m == nil {
		return res
	}
	for _, wf := range m.Items {
		if wf.InDictionary {
			res |= wf.Class
		}
	}
	return res
}

// Gender is the union of genders over dictionary-backed readings.
func (m *Morph) Gender() Gender {
	var res Gender
	if m == nil {
		return res
	}
	for _, wf := range m.Items {
		if wf.InDictionary {
			res |= wf.Gender
		}
	}
	return res
}
