// Package morph provides a small dictionary-backed inflection lexicon: the
// morphological collaborator the token chain consults to annotate words with
// their lemma and readings. It is a table, not an analyzer: forms are listed
// explicitly in TOML files, and unknown English words get a Porter2 stem as a
// guessed lemma.
package morph

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/termserve/pkg/token"
	"github.com/charmbracelet/log"
	"github.com/surgebase/porter2"
)

//go:embed data/default.toml
var defaultLexicon string

// Entry is one lemma with its inflected forms as stored in a lexicon file.
type Entry struct {
	Lemma  string   `toml:"lemma" msgpack:"lemma"`
	Class  string   `toml:"class" msgpack:"class,omitempty"`
	Gender string   `toml:"gender" msgpack:"gender,omitempty"`
	Lang   string   `toml:"lang" msgpack:"lang,omitempty"`
	Forms  []string `toml:"forms" msgpack:"forms,omitempty"`
}

type lexiconFile struct {
	Entries []Entry `toml:"entry"`
}

type reading struct {
	wf   token.WordForm
	lang token.Lang
}

// Lexicon maps upper-cased surface forms to their readings.
// Lookups are safe for concurrent use once loading is done.
type Lexicon struct {
	forms     map[string][]reading
	guessStem bool
	mu        sync.RWMutex
}

// NewLexicon returns an empty lexicon with stem guessing enabled.
func NewLexicon() *Lexicon {
	return &Lexicon{
		forms:     make(map[string][]reading),
		guessStem: true,
	}
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// Default returns the shared lexicon built from the embedded function-word
// tables (prepositions, conjunctions, articles).
func Default() *Lexicon {
	defaultOnce.Do(func() {
		defaultLex = NewLexicon()
		if err := defaultLex.LoadString(defaultLexicon); err != nil {
			log.Errorf("Embedded lexicon is broken: %v", err)
		}
	})
	return defaultLex
}

// NewWithDefaults returns a private lexicon preloaded with the embedded
// tables. Unlike Default it may be extended freely.
func NewWithDefaults() (*Lexicon, error) {
	lex := NewLexicon()
	if err := lex.LoadString(defaultLexicon); err != nil {
		return nil, err
	}
	return lex, nil
}

// LoadLexicon builds a lexicon from the embedded defaults plus the TOML file
// at path.
func LoadLexicon(path string) (*Lexicon, error) {
	lex, err := NewWithDefaults()
	if err != nil {
		return nil, err
	}
	var f lexiconFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decoding lexicon %s: %w", path, err)
	}
	lex.AddEntries(f.Entries)
	log.Debugf("Loaded %d lexicon entries from %s", len(f.Entries), path)
	return lex, nil
}

// LoadString merges the TOML lexicon in data.
func (l *Lexicon) LoadString(data string) error {
	var f lexiconFile
	if _, err := toml.Decode(data, &f); err != nil {
		return fmt.Errorf("decoding lexicon: %w", err)
	}
	l.AddEntries(f.Entries)
	return nil
}

// SetStemGuessing toggles Porter2 lemma guessing for unknown Latin words.
func (l *Lexicon) SetStemGuessing(on bool) {
	l.mu.Lock()
	l.guessStem = on
	l.mu.Unlock()
}

// AddEntries registers every form of every entry. The lemma itself is always
// registered as one of its forms.
func (l *Lexicon) AddEntries(entries []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range entries {
		lemma := strings.ToUpper(strings.TrimSpace(e.Lemma))
		if lemma == "" {
			continue
		}
		lang, err := token.ParseLang(e.Lang)
		if err != nil {
			log.Warnf("Lexicon entry %s: %v", lemma, err)
		}
		if lang.IsUndefined() {
			lang = token.DetectLang(lemma)
		}
		wf := token.WordForm{
			NormalCase:   lemma,
			NormalFull:   lemma,
			Class:        token.ParseMorphClass(e.Class),
			Gender:       token.ParseGender(e.Gender),
			InDictionary: true,
		}
		seen := map[string]bool{}
		for _, f := range append([]string{lemma}, e.Forms...) {
			f = strings.ToUpper(strings.TrimSpace(f))
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			l.forms[f] = append(l.forms[f], reading{wf: wf, lang: lang})
		}
	}
}

// Lookup returns the readings of an upper-cased word and the language they
// were registered with. Unknown Latin words yield a single guessed reading
// whose normal forms are the Porter2 stem; other unknown words yield none.
func (l *Lexicon) Lookup(word string) ([]token.WordForm, token.Lang) {
	if l == nil || word == "" {
		return nil, token.LangUnknown
	}
	l.mu.RLock()
	rs, ok := l.forms[word]
	guess := l.guessStem
	l.mu.RUnlock()
	if ok {
		res := make([]token.WordForm, len(rs))
		var lang token.Lang
		for i, r := range rs {
			res[i] = r.wf
			lang |= r.lang
		}
		return res, lang
	}
	if guess && token.IsLatin(word) && len(word) > 3 {
		stem := strings.ToUpper(porter2.Stem(strings.ToLower(word)))
		if stem != "" && stem != word {
			return []token.WordForm{{NormalCase: stem, NormalFull: stem}}, token.LangEN
		}
	}
	return nil, token.LangUnknown
}

// Len is the number of distinct registered forms.
func (l *Lexicon) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.forms)
}
