package morph_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/termserve/pkg/morph"
	"github.com/bastiangx/termserve/pkg/token"
)

const numberEntry = `
[[entry]]
lemma = "номер"
class = "noun"
gender = "masculine"
forms = ["номера", "номеру", "номером", "НОМЕРЕ", "номер"]
`

func TestDefaultLexicon(t *testing.T) {
	lex := morph.Default()
	require.Same(t, lex, morph.Default())

	items, lang := lex.Lookup("В")
	require.Len(t, items, 2)
	assert.True(t, lang.IsRU())
	assert.True(t, lang.IsUA())
	for _, wf := range items {
		assert.True(t, wf.Class.IsPreposition())
		assert.True(t, wf.InDictionary)
	}

	items, lang = lex.Lookup("THE")
	require.Len(t, items, 1)
	assert.True(t, items[0].Class.IsMisc())
	assert.Equal(t, token.LangEN, lang)
}

func TestLoadString(t *testing.T) {
	lex := morph.NewLexicon()
	require.NoError(t, lex.LoadString(numberEntry))
	assert.Equal(t, 5, lex.Len(), "duplicate forms are registered once")

	testCases := []struct {
		input       string
		description string
	}{
		{"НОМЕР", "lemma"},
		{"НОМЕРА", "lower-case form"},
		{"НОМЕРЕ", "upper-case form"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			items, lang := lex.Lookup(tc.input)
			require.Len(t, items, 1)
			assert.Equal(t, "НОМЕР", items[0].NormalFull)
			assert.True(t, items[0].Class.IsNoun())
			assert.Equal(t, token.GenderMasculine, items[0].Gender)
			assert.True(t, items[0].InDictionary)
			assert.Equal(t, token.LangRU, lang)
		})
	}

	items, _ := lex.Lookup("НОМЕРАМИ")
	assert.Nil(t, items)

	assert.Error(t, lex.LoadString("[[entry]\nlemma = "))
}

func TestStemGuessing(t *testing.T) {
	lex := morph.NewLexicon()

	items, lang := lex.Lookup("RUNNING")
	require.Len(t, items, 1)
	assert.Equal(t, "RUN", items[0].NormalFull)
	assert.False(t, items[0].InDictionary)
	assert.Equal(t, token.LangEN, lang)

	items, _ = lex.Lookup("CAT")
	assert.Nil(t, items, "short words are not stemmed")

	items, _ = lex.Lookup("БЕГУЩИЙ")
	assert.Nil(t, items, "only latin words are stemmed")

	lex.SetStemGuessing(false)
	items, _ = lex.Lookup("RUNNING")
	assert.Nil(t, items)
}

func TestNilLexicon(t *testing.T) {
	var lex *morph.Lexicon
	items, lang := lex.Lookup("НОМЕР")
	assert.Nil(t, items)
	assert.True(t, lang.IsUndefined())
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.toml")
	require.NoError(t, os.WriteFile(path, []byte(numberEntry), 0o644))

	lex, err := morph.LoadLexicon(path)
	require.NoError(t, err)
	items, _ := lex.Lookup("НОМЕРОМ")
	require.Len(t, items, 1)

	items, _ = lex.Lookup("НА")
	assert.NotEmpty(t, items, "embedded tables are included")

	items, _ = morph.Default().Lookup("НОМЕРОМ")
	assert.Nil(t, items, "shared default lexicon is untouched")

	_, err = morph.LoadLexicon(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestNewWithDefaults(t *testing.T) {
	lex, err := morph.NewWithDefaults()
	require.NoError(t, err)
	assert.Equal(t, morph.Default().Len(), lex.Len())
	assert.NotSame(t, morph.Default(), lex)
}
