package termin

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/bastiangx/termserve/pkg/token"
)

// bucket selects the trie a key lives in. Matching never crosses buckets
// except for the Ukrainian fallback into the main one.
type bucket int

const (
	bucketMain bucket = iota
	bucketUA
	bucketLatin
	bucketCount
)

var bucketNames = [bucketCount]string{"main", "ua", "latin"}

func (b bucket) String() string { return bucketNames[b] }

func bucketFor(lang token.Lang, key string) bucket {
	if lang.IsUA() && !lang.IsRU() {
		return bucketUA
	}
	if token.IsLatin(key) {
		return bucketLatin
	}
	return bucketMain
}

// node is the payload stored at a trie key.
type node struct {
	termins []*Termin
}

type indexKey struct {
	b   bucket
	key string
}

// Collection is the pattern index. Add, Remove and Reindex take the write
// lock; every lookup takes the read lock, so a built collection can be
// shared by any number of goroutines.
type Collection struct {
	mu      sync.RWMutex
	termins []*Termin
	roots   [bucketCount]*patricia.Trie
	hash1   map[rune][]*Termin
	indexed map[*Termin][]indexKey

	canonMu sync.Mutex
	canonic map[string][]*Termin

	an Analyzer

	// AllNormalized makes AddString skip the analyzer.
	AllNormalized bool
	// Synonyms is consulted when a lookup finds nothing. A synonym pattern's
	// Tag holds []string alternates resolved against this collection.
	Synonyms *Collection
	Tag      any
}

// NewCollection returns an empty collection building string patterns
// through an. A nil analyzer builds every pattern with NewNormal.
func NewCollection(an Analyzer) *Collection {
	c := &Collection{
		hash1:   make(map[rune][]*Termin),
		indexed: make(map[*Termin][]indexKey),
		an:      an,
	}
	for i := range c.roots {
		c.roots[i] = patricia.NewTrie()
	}
	return c
}

// Add indexes t. Adding an already indexed pattern reindexes it.
func (c *Collection) Add(t *Termin) {
	if t == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.AcronymCanBeSmart && t.AcronymSmart == "" {
		t.AcronymSmart = t.Acronym
	}
	if _, ok := c.indexed[t]; ok {
		c.unindex(t)
	} else {
		c.termins = append(c.termins, t)
	}
	c.canonic = nil
	c.index(t)
}

// AddString builds a pattern from text and adds it. With isNormal, or when
// the collection has no analyzer, the text is taken as already normalized.
func (c *Collection) AddString(text string, tag any, lang token.Lang, isNormal bool) *Termin {
	var t *Termin
	if isNormal || c.AllNormalized || c.an == nil {
		t = NewNormal(text, lang)
	} else {
		t = New(text, lang, c.an)
	}
	t.Tag = tag
	c.Add(t)
	return t
}

// Remove detaches t from every key it was indexed under. Removing a pattern
// that is not in the collection does nothing.
func (c *Collection) Remove(t *Termin) {
	if t == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unindex(t)
	for i, e := range c.termins {
		if e == t {
			c.termins = append(c.termins[:i], c.termins[i+1:]...)
			c.canonic = nil
			break
		}
	}
}

// Reindex refreshes the keys of a pattern changed after it was added.
func (c *Collection) Reindex(t *Termin) {
	if t == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.indexed[t]; !ok {
		return
	}
	c.unindex(t)
	c.canonic = nil
	c.index(t)
}

func (c *Collection) index(t *Termin) {
	if t.AcronymSmart != "" {
		r, _ := utf8.DecodeRuneInString(t.AcronymSmart)
		c.addHash1(r, t)
	}
	for _, a := range t.Abridges {
		if len(a.Parts) > 0 && utf8.RuneCountInString(a.Parts[0].Value) == 1 {
			r, _ := utf8.DecodeRuneInString(a.Parts[0].Value)
			c.addHash1(r, t)
		}
	}
	var keys []indexKey
	for _, k := range t.SearchKeys() {
		keys = append(keys, c.insert(bucketFor(t.Lang, k), k, t))
	}
	for _, av := range t.AdditionalVars {
		av.IgnoreTermsOrder = t.IgnoreTermsOrder
		for _, k := range av.SearchKeys() {
			keys = append(keys, c.insert(bucketFor(t.Lang, k), k, t))
		}
	}
	c.indexed[t] = keys
}

func (c *Collection) insert(b bucket, key string, t *Termin) indexKey {
	tr := c.roots[b]
	p := patricia.Prefix(key)
	if it := tr.Get(p); it != nil {
		n := it.(*node)
		for _, e := range n.termins {
			if e == t {
				return indexKey{b, key}
			}
		}
		n.termins = append(n.termins, t)
	} else {
		tr.Insert(p, &node{termins: []*Termin{t}})
	}
	return indexKey{b, key}
}

func (c *Collection) unindex(t *Termin) {
	for _, k := range c.indexed[t] {
		tr := c.roots[k.b]
		p := patricia.Prefix(k.key)
		it := tr.Get(p)
		if it == nil {
			continue
		}
		n := it.(*node)
		for i, e := range n.termins {
			if e == t {
				n.termins = append(n.termins[:i], n.termins[i+1:]...)
				break
			}
		}
		if len(n.termins) == 0 {
			tr.Delete(p)
		}
	}
	delete(c.indexed, t)
	for r, li := range c.hash1 {
		for i, e := range li {
			if e == t {
				li = append(li[:i], li[i+1:]...)
				break
			}
		}
		if len(li) == 0 {
			delete(c.hash1, r)
		} else {
			c.hash1[r] = li
		}
	}
}

func (c *Collection) addHash1(r rune, t *Termin) {
	li := c.hash1[r]
	for _, e := range li {
		if e == t {
			return
		}
	}
	c.hash1[r] = append(li, t)
}

func langOf(t token.Token) token.Lang {
	if m := t.Morph(); m != nil {
		return m.Language
	}
	return token.LangUnknown
}

// TryParse returns the first of TryParseAll's matches, or nil.
func (c *Collection) TryParse(t token.Token, attrs ParseAttr) *Match {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if res := c.tryParseAll(t, attrs); len(res) > 0 {
		return res[0]
	}
	return nil
}

// TryParseAll returns every match of maximal token length at t, the one
// covering the most characters first, or nil.
func (c *Collection) TryParseAll(t token.Token, attrs ParseAttr) []*Match {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tryParseAll(t, attrs)
}

func (c *Collection) tryParseAll(t token.Token, attrs ParseAttr) []*Match {
	if t == nil {
		return nil
	}
	res := c.attachAll(t, attrs, false)
	if res == nil && langOf(t).IsUA() {
		res = c.attachAll(t, attrs, true)
	}
	if res == nil && c.Synonyms != nil && c.Synonyms != c {
		m := c.Synonyms.TryParse(t, NoAttrs)
		if m == nil {
			return nil
		}
		syns, ok := stringsOf(m.Termin.Tag)
		if !ok {
			return nil
		}
		term := c.find(m.Termin.CanonicText())
		for _, s := range syns {
			if term != nil {
				break
			}
			term = c.find(s)
		}
		if term != nil {
			m.Termin = term
			return []*Match{m}
		}
	}
	return res
}

func (c *Collection) attachAll(t token.Token, attrs ParseAttr, mainRoot bool) []*Match {
	if len(c.termins) == 0 {
		return nil
	}
	tt := asText(t)
	if tt == nil {
		if comp, ok := t.(token.Composite); ok {
			tt = asText(comp.BeginToken())
		}
	}
	lang := langOf(t)
	var res []*Match
	wasVars := false
	var s string
	switch {
	case tt != nil:
		s = tt.Term()
		b := bucketFor(lang, s)
		if mainRoot {
			b = bucketFor(token.LangUnknown, s)
		}
		tr := c.roots[b]
		noVars := false
		if !attrs.Has(TermOnly) {
			n := tt.InvariantPrefixLength()
			noVars = !hasPrefix(tr, s, n)
			if t0 := tt.Term0(); noVars && t0 != "" && t0 != s && n <= utf8.RuneCountInString(t0) {
				s = t0
				noVars = !hasPrefix(tr, s, n)
			}
		}
		if noVars {
			break
		}
		if c.manageVar(t, attrs, tr, s, &res) {
			wasVars = true
		}
		if attrs.Has(TermOnly) {
			break
		}
		var items []token.WordForm
		if m := tt.Morph(); m != nil {
			items = m.Items
		}
		for i, wf := range items {
			if attrs.Has(InDictionaryOnly) && !wf.InDictionary {
				continue
			}
			if nc := wf.NormalCase; nc != "" && nc != s && !seenForm(items[:i], nc, true) {
				if c.manageVar(t, attrs, tr, nc, &res) {
					wasVars = true
				}
			}
			nf := wf.NormalFull
			if nf == "" || nf == wf.NormalCase || nf == s || seenForm(items[:i], nf, false) {
				continue
			}
			if c.manageVar(t, attrs, tr, nf, &res) {
				wasVars = true
			}
		}
	case isNumber(t):
		v := t.(token.Number).Value()
		if c.manageVar(t, attrs, c.roots[bucketFor(lang, v)], v, &res) {
			wasVars = true
		}
	default:
		return nil
	}
	if !wasVars && utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		for _, term := range c.hash1[r] {
			if !term.Lang.Compatible(lang) {
				continue
			}
			if ar := term.TryParse(t, NoAttrs); ar != nil {
				ar.Termin = term
				res = mergeMatch(res, ar, true)
			}
		}
	}
	if len(res) > 1 {
		ii, longest := 0, 0
		for i, m := range res {
			if l := m.LengthChar(); l > longest {
				longest, ii = l, i
			}
		}
		if ii > 0 {
			v := res[ii]
			copy(res[1:ii+1], res[:ii])
			res[0] = v
		}
	}
	return res
}

// stringsOf accepts synonym lists as built in code or decoded from files.
func stringsOf(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []any:
		res := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			res = append(res, s)
		}
		return res, true
	}
	return nil, false
}

func isNumber(t token.Token) bool {
	_, ok := t.(token.Number)
	return ok
}

// hasPrefix reports whether any key in tr starts with the first n runes of
// s. A zero-length prefix is never a dead end.
func hasPrefix(tr *patricia.Trie, s string, n int) bool {
	if n <= 0 {
		return true
	}
	if n > utf8.RuneCountInString(s) {
		return true
	}
	i := 0
	for pos := range s {
		if i == n {
			return tr.MatchSubtree(patricia.Prefix(s[:pos]))
		}
		i++
	}
	return tr.MatchSubtree(patricia.Prefix(s))
}

// seenForm reports whether an earlier reading already produced form.
func seenForm(prev []token.WordForm, form string, asCase bool) bool {
	for _, wf := range prev {
		if wf.NormalFull == form || (asCase && wf.NormalCase == form) {
			return true
		}
	}
	return false
}

// manageVar runs every pattern stored under key v against t. It reports
// whether a multi-letter key led to patterns.
func (c *Collection) manageVar(t token.Token, attrs ParseAttr, tr *patricia.Trie, v string, res *[]*Match) bool {
	it := tr.Get(patricia.Prefix(v))
	if it == nil {
		return false
	}
	n := it.(*node)
	if len(n.termins) == 0 {
		return false
	}
	lang := langOf(t)
	for _, term := range n.termins {
		if !term.Lang.Compatible(lang) {
			continue
		}
		if ar := term.TryParse(t, attrs); ar != nil {
			ar.Termin = term
			*res = mergeMatch(*res, ar, true)
		}
		for _, av := range term.AdditionalVars {
			if ar := av.TryParse(t, attrs); ar != nil {
				ar.Termin = term
				*res = mergeMatch(*res, ar, true)
			}
		}
	}
	return utf8.RuneCountInString(v) > 1
}

// mergeMatch keeps only the matches with the most tokens. With dedup a tie
// for a pattern already present is dropped.
func mergeMatch(res []*Match, m *Match, dedup bool) []*Match {
	if len(res) == 0 {
		return append(res, m)
	}
	cur, n := res[0].TokensCount(), m.TokensCount()
	switch {
	case n > cur:
		return append(res[:0], m)
	case n == cur:
		if dedup {
			for _, r := range res {
				if r.Termin == m.Termin {
					return res
				}
			}
		}
		return append(res, m)
	}
	return res
}

// TryParseAllSim matches every pattern approximately at t with threshold d
// and returns the matches with the most tokens. Thresholds outside
// [0.05, 1) fall back to TryParseAll.
func (c *Collection) TryParseAllSim(t token.Token, d float64) []*Match {
	if d >= 1 || d < simMin {
		return c.TryParseAll(t, NoAttrs)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.termins) == 0 || t == nil {
		return nil
	}
	anchor := t
	if comp, ok := t.(token.Composite); ok && asText(comp.BeginToken()) != nil {
		anchor = comp.BeginToken()
	}
	lang := langOf(t)
	var res []*Match
	for _, term := range c.termins {
		if !term.Lang.Compatible(lang) {
			continue
		}
		if ar := term.TryParseSim(anchor, d, NoAttrs); ar != nil {
			ar.Termin = term
			res = mergeMatch(res, ar, false)
		}
	}
	return res
}

// Find returns the first pattern stored under key, trying the Latin bucket
// for Latin keys and the main then Ukrainian buckets otherwise.
func (c *Collection) Find(key string) *Termin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.find(key)
}

func (c *Collection) find(key string) *Termin {
	if key == "" {
		return nil
	}
	r, _ := utf8.DecodeRuneInString(key)
	var li []*Termin
	if token.IsLatinChar(r) {
		li = c.findInTree(key, token.LangEN)
	} else {
		li = c.findInTree(key, token.LangRU)
		if li == nil {
			li = c.findInTree(key, token.LangUA)
		}
	}
	if len(li) > 0 {
		return li[0]
	}
	return nil
}

// FindByString returns the patterns stored under str. A multi-word string
// not stored as a whole resolves through its first word when the rest of
// the words are variants of the following slots.
func (c *Collection) FindByString(str string, lang token.Lang) []*Termin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.findInTree(strings.ToUpper(str), lang)
}

func (c *Collection) findInTree(key string, lang token.Lang) []*Termin {
	if key == "" {
		return nil
	}
	tr := c.roots[bucketFor(lang, key)]
	if it := tr.Get(patricia.Prefix(key)); it != nil {
		return copyTermins(it.(*node).termins)
	}
	sp := -1
	for pos, r := range key {
		if !tr.MatchSubtree(patricia.Prefix(key[:pos+utf8.RuneLen(r)])) {
			if r == ' ' {
				sp = pos
			}
			break
		}
	}
	if sp <= 0 {
		return nil
	}
	it := tr.Get(patricia.Prefix(key[:sp]))
	if it == nil {
		return nil
	}
	words := strings.Split(key, " ")
	var res []*Termin
	for _, t := range it.(*node).termins {
		if len(t.Terms) != len(words) {
			continue
		}
		ok := true
		for k := 1; k < len(words) && ok; k++ {
			ok = containsString(t.Terms[k].Variants(), words[k])
		}
		if ok {
			res = append(res, t)
		}
	}
	return res
}

func containsString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

func copyTermins(src []*Termin) []*Termin {
	if len(src) == 0 {
		return nil
	}
	return append([]*Termin(nil), src...)
}

// FindEquivalent returns the indexed patterns equal to t.
func (c *Collection) FindEquivalent(t *Termin) []*Termin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var res []*Termin
	for _, k := range t.SearchKeys() {
		for _, e := range c.findInTree(k, t.Lang) {
			if e.IsEqual(t) && !containsTermin(res, e) {
				res = append(res, e)
			}
		}
	}
	return res
}

func containsTermin(list []*Termin, t *Termin) bool {
	for _, e := range list {
		if e == t {
			return true
		}
	}
	return false
}

// FindByCanonicText returns the patterns whose canonical text is text. The
// reverse index is built on first use after a change.
func (c *Collection) FindByCanonicText(text string) []*Termin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.canonMu.Lock()
	defer c.canonMu.Unlock()
	if c.canonic == nil {
		c.canonic = make(map[string][]*Termin, len(c.termins))
		for _, t := range c.termins {
			ct := t.CanonicText()
			if !containsTermin(c.canonic[ct], t) {
				c.canonic[ct] = append(c.canonic[ct], t)
			}
		}
	}
	return copyTermins(c.canonic[text])
}

// Len is the number of patterns.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.termins)
}

// Termins returns the patterns in insertion order.
func (c *Collection) Termins() []*Termin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyTermins(c.termins)
}

// Stats describes the index for logging and the stats request.
type Stats struct {
	Termins    int            `msgpack:"termins"`
	Keys       map[string]int `msgpack:"keys"`
	SingleChar int            `msgpack:"single_char"`
}

// Stats counts patterns, trie keys per bucket and single-character entries.
func (c *Collection) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := Stats{Termins: len(c.termins), Keys: make(map[string]int, bucketCount)}
	for b, tr := range c.roots {
		n := 0
		_ = tr.Visit(func(_ patricia.Prefix, _ patricia.Item) error {
			n++
			return nil
		})
		st.Keys[bucket(b).String()] = n
	}
	for _, li := range c.hash1 {
		st.SingleChar += len(li)
	}
	return st
}
