package dictionary

import (
	"strings"

	"github.com/bastiangx/termserve/pkg/termin"
	"github.com/bastiangx/termserve/pkg/token"
)

// Scan tokenizes text and collects the longest match at every position,
// resuming after the end of each match. A sim threshold in [0.05, 1)
// switches to approximate matching, which ignores attrs. limit <= 0 means
// no limit.
func (d *Dictionary) Scan(text string, attrs termin.ParseAttr, sim float64, limit int) []*termin.Match {
	var res []*termin.Match
	for t := d.Analyzer.Tokenize(text); t != nil; {
		m := d.matchAt(t, attrs, sim)
		if m == nil {
			t = t.Next()
			continue
		}
		res = append(res, m)
		if limit > 0 && len(res) >= limit {
			break
		}
		t = m.End.Next()
	}
	return res
}

func (d *Dictionary) matchAt(t token.Token, attrs termin.ParseAttr, sim float64) *termin.Match {
	if sim >= 0.05 && sim < 1 {
		if res := d.Collection.TryParseAllSim(t, sim); len(res) > 0 {
			return res[0]
		}
		return nil
	}
	return d.Collection.TryParse(t, attrs)
}

// Lookup returns the patterns stored under text, compared upper-cased
// with runs of whitespace collapsed.
func (d *Dictionary) Lookup(text string) []*termin.Termin {
	key := strings.ToUpper(strings.Join(strings.Fields(text), " "))
	if key == "" {
		return nil
	}
	return d.Collection.FindByString(key, token.DetectLang(key))
}
