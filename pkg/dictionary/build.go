package dictionary

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bastiangx/termserve/internal/logger"
	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/chain"
	"github.com/bastiangx/termserve/pkg/morph"
	"github.com/bastiangx/termserve/pkg/termin"
	"github.com/bastiangx/termserve/pkg/token"
)

// Dictionary is a built pattern index together with the analyzer its
// patterns were built through. Request text must be tokenized by the same
// analyzer so surface forms agree.
type Dictionary struct {
	Collection *termin.Collection
	Analyzer   *chain.Analyzer
	Sources    []string
	Built      time.Time
}

// Build compiles src into a Dictionary. Lexicon entries carried by src are
// added to lex; a nil lex starts from a private copy of the embedded tables.
// Malformed or duplicate entries are skipped with a warning.
func Build(src *Source, lex *morph.Lexicon) (*Dictionary, error) {
	if src == nil || len(src.Patterns) == 0 {
		return nil, ErrEmptyDictionary
	}
	if lex == nil {
		var err error
		if lex, err = morph.NewWithDefaults(); err != nil {
			return nil, err
		}
	}
	if len(src.Lexicon) > 0 {
		lex.AddEntries(src.Lexicon)
	}
	buildLog := logger.New("dict")
	an := chain.NewAnalyzer(lex)
	coll := termin.NewCollection(an)
	syn := termin.NewCollection(an)

	start := time.Now()
	dups := utils.NewDuplicateFilter()
	skipped := 0
	for _, e := range src.Patterns {
		if !dups.ShouldInclude(e.Text, e.Acronym, e.Lang) {
			buildLog.Warnf("Duplicate pattern %q skipped", e.Text)
			skipped++
			continue
		}
		t, err := buildTermin(e, an)
		if err != nil {
			buildLog.Warnf("Pattern %q skipped: %v", e.Text, err)
			skipped++
			continue
		}
		coll.Add(t)
		for _, s := range e.Synonyms {
			st := termin.NewNormal(s, t.Lang)
			if len(st.Terms) == 0 {
				continue
			}
			st.Tag = []string{t.CanonicText()}
			syn.Add(st)
		}
	}
	if coll.Len() == 0 {
		return nil, ErrEmptyDictionary
	}
	if syn.Len() > 0 {
		coll.Synonyms = syn
	}

	st := coll.Stats()
	buildLog.Debug("Built dictionary",
		"patterns", st.Termins,
		"skipped", skipped,
		"synonyms", syn.Len(),
		"keys", st.Keys,
		"single_char", st.SingleChar,
		"lexicon_forms", lex.Len(),
		"took", time.Since(start))
	return &Dictionary{Collection: coll, Analyzer: an, Built: time.Now()}, nil
}

var (
	errNoText  = errors.New("neither text nor acronym given")
	errNoSlots = errors.New("text has no words")
)

func buildTermin(e Entry, an *chain.Analyzer) (*termin.Termin, error) {
	lang, err := token.ParseLang(e.Lang)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(e.Text)
	var t *termin.Termin
	switch {
	case text == "" && e.Acronym == "":
		return nil, errNoText
	case text == "":
		t = termin.NewAcronym(e.Acronym, lang)
	case e.Normal:
		t = termin.NewNormal(text, lang)
	default:
		t = termin.New(text, lang, an)
	}
	if text != "" && len(t.Terms) == 0 {
		return nil, errNoSlots
	}
	if text != "" && e.Acronym != "" {
		t.Acronym = strings.ToUpper(e.Acronym)
	}
	if e.StdAcronym && t.Acronym == "" {
		t.SetStdAcronym(false)
	}
	t.AcronymCanBeSmart = e.AcronymSmart
	t.AcronymCanBeLower = e.AcronymLower
	t.IgnoreTermsOrder = e.IgnoreOrder
	if e.Canonic != "" {
		t.SetCanonicText(strings.ToUpper(e.Canonic))
	}
	if e.Tag != "" {
		t.Tag = e.Tag
	}
	for _, a := range e.Abridges {
		if t.AddAbridge(a) == nil {
			return nil, fmt.Errorf("malformed abbreviation %q", a)
		}
	}
	if e.StdAbridges {
		t.AddStdAbridges()
	}
	for _, v := range e.Variants {
		var vt *termin.Termin
		if e.Normal {
			vt = termin.NewNormal(v, lang)
		} else {
			vt = termin.New(v, lang, an)
		}
		vt.IgnoreTermsOrder = t.IgnoreTermsOrder
		t.AddVariantTermin(vt)
	}
	return t, nil
}
