package termin

import "strings"

// ParseAttr tunes how a pattern is matched against tokens.
type ParseAttr uint16

const (
	// FullWordsOnly disables smart-acronym and abbreviation forms.
	FullWordsOnly ParseAttr = 1 << iota
	// InDictionaryOnly restricts lookups to dictionary-backed readings.
	InDictionaryOnly
	// TermOnly looks up the surface form only, ignoring readings.
	TermOnly
	// IgnoreBrackets skips a single bracket or quote between slots.
	IgnoreBrackets
	// CanBeGeoObject skips a GEO composite between slots.
	CanBeGeoObject
	// IgnoreStopWords skips prepositions, conjunctions, numbers and
	// punctuation between slots.
	IgnoreStopWords

	NoAttrs ParseAttr = 0
)

var attrNames = [...]struct {
	a    ParseAttr
	name string
}{
	{FullWordsOnly, "full_words_only"},
	{InDictionaryOnly, "in_dictionary_only"},
	{TermOnly, "term_only"},
	{IgnoreBrackets, "ignore_brackets"},
	{CanBeGeoObject, "can_be_geo_object"},
	{IgnoreStopWords, "ignore_stop_words"},
}

// Has reports whether all bits of f are set.
func (a ParseAttr) Has(f ParseAttr) bool { return a&f == f && f != 0 }

func (a ParseAttr) String() string {
	if a == NoAttrs {
		return "none"
	}
	var parts []string
	for _, it := range attrNames {
		if a&it.a != 0 {
			parts = append(parts, it.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseAttrFromNames maps attribute names to flags. Unknown names are
// reported back so callers can warn about them.
func ParseAttrFromNames(names []string) (ParseAttr, []string) {
	var res ParseAttr
	var unknown []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		found := false
		for _, it := range attrNames {
			if it.name == n {
				res |= it.a
				found = true
				break
			}
		}
		if !found && n != "" {
			unknown = append(unknown, n)
		}
	}
	return res, unknown
}

// GeoTypeName is the composite type skipped under CanBeGeoObject.
const GeoTypeName = "GEO"
