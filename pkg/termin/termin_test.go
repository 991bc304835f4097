package termin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/termserve/pkg/chain"
	"github.com/bastiangx/termserve/pkg/termin"
	"github.com/bastiangx/termserve/pkg/token"
)

func TestNewNormal(t *testing.T) {
	testCases := []struct {
		input       string
		canonic     string
		slots       int
		description string
	}{
		{"в течение", "В ТЕЧЕНИЕ", 2, "spaces split words"},
		{"д'артаньян", "ДАРТАНЬЯН", 1, "apostrophes are dropped"},
		{"юго-запад", "ЮГО - ЗАПАД", 3, "hyphen is its own slot"},
		{"статья 5", "СТАТЬЯ 5", 2, "number slot"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			p := termin.NewNormal(tc.input, token.LangUnknown)
			assert.Equal(t, tc.canonic, p.CanonicText())
			assert.Len(t, p.Terms, tc.slots)
		})
	}
}

func TestNewCollectsInflections(t *testing.T) {
	f := newFixture(t)
	p := termin.New("в течении", token.LangUnknown, f.an)
	require.Len(t, p.Terms, 2)
	assert.Equal(t, []string{"ТЕЧЕНИИ", "ТЕЧЕНИЕ"}, p.Terms[1].Variants())

	normal := termin.New("в течении", token.LangUnknown, nil)
	assert.Equal(t, []string{"ТЕЧЕНИИ"}, normal.Terms[1].Variants(), "nil analyzer keeps the surface form only")
}

func TestNewFromTokens(t *testing.T) {
	f := newFixture(t)
	toks := f.tokens(t, "это в течение года")
	p := termin.NewFromTokens(toks[1], toks[2], "during", true)
	assert.Equal(t, "В ТЕЧЕНИЕ", p.CanonicText())
	assert.Equal(t, "during", p.Tag)
	assert.True(t, p.Lang.IsRU())
}

func TestCanonicTextAndString(t *testing.T) {
	p := termin.NewNormal("российская федерация", token.LangUnknown)
	p.SetStdAcronym(true)
	assert.Equal(t, "РФ", p.AcronymSmart)
	assert.Equal(t, "РОССИЙСКАЯ ФЕДЕРАЦИЯ, РФ", p.String())

	p.SetCanonicText("РОССИЯ")
	assert.Equal(t, "РОССИЯ", p.CanonicText())

	acr := termin.NewAcronym("сша", token.LangUnknown)
	assert.Equal(t, "США", acr.CanonicText())
	assert.Equal(t, "?", (&termin.Termin{}).CanonicText())

	short := termin.NewNormal("в течение", token.LangUnknown)
	short.SetStdAcronym(false)
	assert.Empty(t, short.Acronym, "one long word is not enough for an acronym")
}

func TestTerminGender(t *testing.T) {
	f := newFixture(t)
	p := termin.New("регистрационный номер", token.LangUnknown, f.an)
	assert.Equal(t, token.GenderMasculine, p.Gender(), "adjective + noun takes the noun's gender")
}

func TestSearchKeys(t *testing.T) {
	p := termin.NewNormal("юго-запад", token.LangUnknown)
	assert.Equal(t, []string{"ЮГО", "ЮГОЗАПАД"}, p.SearchKeys())

	free := termin.NewNormal("альфа бета", token.LangUnknown)
	free.IgnoreTermsOrder = true
	free.Acronym = "АБ"
	free.AddAbridge("АЛЬФ.Б.")
	free.AddAbridge("А.Б.")
	assert.Equal(t, []string{"АЛЬФА", "БЕТА", "АБ", "АЛЬФ"}, free.SearchKeys())

	wild := &termin.Termin{Terms: []*termin.Term{termin.NewAnyTerm(), termin.NewTextTerm("СЛОВО")}}
	assert.Empty(t, wild.SearchKeys(), "placeholders are never indexed")
}

func TestIsEqual(t *testing.T) {
	f := newFixture(t)
	a := termin.NewNormal("в течение", token.LangUnknown)
	b := termin.New("в течении", token.LangUnknown, f.an)
	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(termin.NewNormal("в течение года", token.LangUnknown)))

	x := termin.NewAcronym("РФ", token.LangUnknown)
	y := termin.NewNormal("российская федерация", token.LangUnknown)
	y.AcronymSmart = "РФ"
	assert.True(t, y.IsEqual(x))
}

func TestTryParseSlots(t *testing.T) {
	f := newFixture(t)
	testCases := []struct {
		pattern     string
		attrs       termin.ParseAttr
		input       string
		tokens      int
		description string
	}{
		{"в течение", termin.NoAttrs, "в течение года", 2, "exact"},
		{"в течение", termin.NoAttrs, "В ТЕЧЕНИИ года", 2, "inflected slot"},
		{"в течение", termin.NoAttrs, "в годе", 0, "second slot missing"},
		{"регистрационный номер", termin.NoAttrs, "регистрационного номера", 2, "both slots inflected"},
		{"юго-запад", termin.NoAttrs, "юго-запад", 3, "hyphen modelled"},
		{"юго-запад", termin.NoAttrs, "югозапад", 1, "hyphen compound written solid"},
		{"статья 5", termin.NoAttrs, "статья 005", 2, "number slot"},
		{"ответственность сторон", termin.NoAttrs, "ответственность для сторон", 3, "leading preposition skipped"},
		{"ответственность сторон", termin.NoAttrs, "ответственность, сторон", 3, "comma skipped"},
		{"права обязанности", termin.NoAttrs, "права и обязанности", 0, "conjunction blocks"},
		{"права обязанности", termin.IgnoreStopWords, "права и обязанности", 3, "conjunction skipped"},
		{"права обязанности", termin.IgnoreStopWords, "права 12 обязанности", 3, "number skipped"},
		{"завод звезда", termin.NoAttrs, "завод «звезда»", 0, "bracket blocks"},
		{"завод звезда", termin.IgnoreBrackets, "завод «звезда»", 3, "bracket skipped"},
		{"дартаньян", termin.NoAttrs, "д'артаньян", 3, "quote-joined prefix"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			p := termin.New(tc.pattern, token.LangUnknown, f.an)
			m := p.TryParse(f.first(t, tc.input), tc.attrs)
			assert.Equal(t, tc.tokens, matchLen(m), "%q on %q", tc.pattern, tc.input)
			if m != nil {
				assert.Same(t, p, m.Termin)
			}
		})
	}
}

func TestTryParseAgreement(t *testing.T) {
	f := newFixture(t)
	p := termin.New("регистрационный номер", token.LangUnknown, f.an)
	m := p.TryParse(f.first(t, "регистрационного номера"), termin.NoAttrs)
	require.NotNil(t, m)
	require.NotNil(t, m.Morph)
	assert.True(t, m.Morph.Class().IsNoun(), "agreement is taken from the head noun")

	p = termin.New("в течение", token.LangUnknown, f.an)
	m = p.TryParse(f.first(t, "в течение"), termin.NoAttrs)
	require.NotNil(t, m)
	assert.True(t, m.Morph.Class().IsPreposition(), "a preposition freezes agreement")
}

func TestTryParseGeoObject(t *testing.T) {
	f := newFixture(t)
	p := termin.NewNormal("администрация района", token.LangUnknown)

	build := func() token.Token {
		toks := f.tokens(t, "администрация москва района")
		require.NotNil(t, chain.Wrap(toks[1], toks[1], termin.GeoTypeName))
		return toks[0]
	}

	assert.Nil(t, p.TryParse(build(), termin.NoAttrs))
	m := p.TryParse(build(), termin.CanBeGeoObject)
	require.NotNil(t, m)
	assert.Equal(t, "РАЙОНА", token.TermOf(m.End))
}

func TestTryParseAcronym(t *testing.T) {
	f := newFixture(t)
	p := termin.NewNormal("российская федерация", token.LangUnknown)
	p.AcronymSmart = "РФ"

	testCases := []struct {
		input       string
		attrs       termin.ParseAttr
		tokens      int
		description string
	}{
		{"РФ", termin.NoAttrs, 1, "literal"},
		{"РФ.", termin.NoAttrs, 2, "literal with point"},
		{"Р.Ф.", termin.NoAttrs, 4, "dotted initials"},
		{"Р. Ф.", termin.NoAttrs, 0, "space inside initials"},
		{"Р.Ф", termin.NoAttrs, 0, "last initial without point"},
		{"ОК", termin.NoAttrs, 0, "unrelated token"},
		{"РФ", termin.FullWordsOnly, 0, "full words only"},
		{"российской федерации", termin.NoAttrs, 0, "no inflections without an analyzer"},
		{"российская федерация", termin.NoAttrs, 2, "full form"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.tokens, matchLen(p.TryParse(f.first(t, tc.input), tc.attrs)))
		})
	}
}

func TestTryParsePlainAcronymCase(t *testing.T) {
	f := newFixture(t)
	p := termin.NewAcronym("ООН", token.LangUnknown)

	assert.NotNil(t, p.TryParse(f.first(t, "ООН"), termin.NoAttrs))
	assert.NotNil(t, p.TryParse(f.first(t, "Оон"), termin.NoAttrs), "mixed case of three letters")
	assert.Nil(t, p.TryParse(f.first(t, "оон"), termin.NoAttrs))

	p.AcronymCanBeLower = true
	assert.NotNil(t, p.TryParse(f.first(t, "оон"), termin.NoAttrs))
}

func TestTryParseOrderFree(t *testing.T) {
	f := newFixture(t)
	for _, pattern := range []string{"альфа бета гамма", "A B C"} {
		p := termin.NewNormal(pattern, token.LangUnknown)
		p.IgnoreTermsOrder = true
		words := p.Terms
		w := func(i int) string { return words[i].CanonicalText() }

		for _, input := range []string{
			w(0) + " " + w(1) + " " + w(2),
			w(2) + " " + w(0) + " " + w(1),
			w(1) + " " + w(0) + " " + w(2),
		} {
			assert.Equal(t, 3, matchLen(p.TryParse(f.first(t, input), termin.NoAttrs)), input)
		}
		assert.Nil(t, p.TryParse(f.first(t, w(0)+" "+w(1)), termin.NoAttrs), "incomplete")
		assert.Nil(t, p.TryParse(f.first(t, w(0)+" "+w(0)+" "+w(1)), termin.NoAttrs), "slot used twice")
	}
}

// Abbreviations keep their own word order even when the full form does not.
func TestTryParseOrderFreeWithAbridge(t *testing.T) {
	f := newFixture(t)
	p := termin.NewNormal("номер регистрационный", token.LangUnknown)
	p.IgnoreTermsOrder = true
	require.NotNil(t, p.AddAbridge("РЕГ.НОМ."))

	assert.Equal(t, 2, matchLen(p.TryParse(f.first(t, "номер регистрационный"), termin.NoAttrs)))
	assert.Equal(t, 2, matchLen(p.TryParse(f.first(t, "регистрационный номер"), termin.NoAttrs)))
	assert.Equal(t, 4, matchLen(p.TryParse(f.first(t, "рег. ном."), termin.NoAttrs)))
	assert.Nil(t, p.TryParse(f.first(t, "ном. рег."), termin.NoAttrs))
	assert.Nil(t, p.TryParse(f.first(t, "рег. ном."), termin.FullWordsOnly))

	c := f.collection(p)
	assert.Equal(t, 4, matchLen(c.TryParse(f.first(t, "рег. ном."), termin.NoAttrs)))
	assert.Nil(t, c.TryParse(f.first(t, "ном. рег."), termin.NoAttrs))
}

func TestTryParseAbridges(t *testing.T) {
	f := newFixture(t)
	p := termin.New("регистрационный номер", token.LangUnknown, f.an)
	require.NotNil(t, p.AddAbridge("РЕГ.НОМЕР"))
	assert.Nil(t, p.AddAbridge("..."))
	assert.Len(t, p.Abridges, 1)

	assert.Equal(t, 3, matchLen(p.TryParse(f.first(t, "рег. номер"), termin.NoAttrs)))
	assert.Equal(t, 2, matchLen(p.TryParse(f.first(t, "регистрационный номер"), termin.NoAttrs)))
	assert.Nil(t, p.TryParse(f.first(t, "рег номер"), termin.NoAttrs))
}

func TestTryParseAbridgeWithoutPoint(t *testing.T) {
	f := newFixture(t)
	p := termin.NewNormal("долгое течение", token.LangUnknown)
	p.AddAbridge("ТЕЧЕНИЕ")

	assert.Equal(t, 1, matchLen(p.TryParse(f.first(t, "течение"), termin.NoAttrs)))
	assert.Nil(t, p.TryParse(f.first(t, "течении"), termin.NoAttrs), "an inflected form needs the point")
	assert.Equal(t, 2, matchLen(p.TryParse(f.first(t, "течении."), termin.NoAttrs)))
}

func TestAddStdAbridges(t *testing.T) {
	f := newFixture(t)
	p := termin.NewNormal("нижний новгород", token.LangUnknown)
	p.AddStdAbridges()
	var heads []string
	for _, a := range p.Abridges {
		heads = append(heads, a.Parts[0].Value)
	}
	assert.Equal(t, []string{"Н", "НИЖ"}, heads)
	assert.Equal(t, 3, matchLen(p.TryParse(f.first(t, "ниж. новгород"), termin.NoAttrs)))
	assert.Equal(t, 3, matchLen(p.TryParse(f.first(t, "н. новгород"), termin.NoAttrs)))

	other := termin.NewNormal("красная площадь", token.LangUnknown)
	other.AddStdAbridges()
	assert.Empty(t, other.Abridges)
}

func TestAddAllAbridges(t *testing.T) {
	p := termin.NewNormal("доктор", token.LangUnknown)
	p.AddAllAbridges(0, 0, 2)
	var got []string
	for _, a := range p.Abridges {
		got = append(got, a.String())
	}
	assert.Equal(t, []string{"ДОКТ", "ДОК"}, got)

	tail := termin.NewNormal("доктор", token.LangUnknown)
	tail.AddAllAbridges(1, 0, 0)
	got = got[:0]
	for _, a := range tail.Abridges {
		got = append(got, a.String())
	}
	assert.Equal(t, []string{"ДОК-Р", "Д-Р"}, got)
}

func TestAdditionalVariants(t *testing.T) {
	f := newFixture(t)
	p := termin.NewNormal("организация объединенных наций", token.LangUnknown)
	v := p.AddVariant("объединенные нации", nil)
	require.NotNil(t, v)

	c := f.collection(p)
	m := c.TryParse(f.first(t, "объединенные нации"), termin.NoAttrs)
	require.NotNil(t, m)
	assert.Same(t, p, m.Termin, "variants report their owner")
}
