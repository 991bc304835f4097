package termin

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Suggestion is a pattern close to a query string.
type Suggestion struct {
	Text   string
	Score  float64
	Termin *Termin
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(score)
}

// Suggest lists patterns for a possibly misspelled or partial query: every
// pattern indexed under a key starting with the query, plus every pattern
// whose canonical text is at least threshold similar (Jaro-Winkler). Results
// are ordered by similarity and capped at limit when limit > 0.
func (c *Collection) Suggest(query string, limit int, threshold float64) []Suggestion {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[*Termin]int)
	var res []Suggestion
	add := func(t *Termin) {
		ct := t.CanonicText()
		s := similarity(q, ct)
		if i, ok := seen[t]; ok {
			if res[i].Score < s {
				res[i].Score = s
			}
			return
		}
		seen[t] = len(res)
		res = append(res, Suggestion{Text: ct, Score: s, Termin: t})
	}

	for _, tr := range c.roots {
		_ = tr.VisitSubtree(patricia.Prefix(q), func(_ patricia.Prefix, item patricia.Item) error {
			for _, t := range item.(*node).termins {
				add(t)
			}
			return nil
		})
	}
	for _, t := range c.termins {
		if _, ok := seen[t]; ok {
			continue
		}
		if similarity(q, t.CanonicText()) >= threshold {
			add(t)
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Score != res[j].Score {
			return res[i].Score > res[j].Score
		}
		return res[i].Text < res[j].Text
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res
}
