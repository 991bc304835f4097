/*
Package server implements msgpack IPC for pattern matching services.

The server reads msgpack requests from stdin and writes msgpack responses to stdout.
Logging goes to stderr so it never mixes with the response stream.

# IPC

Every request is a map with an "id" and an "action". The reply carries the same id.
Once the dictionary is loaded the server announces itself with

	{"status": "ready"}

Matching scans a whole text and reports the longest pattern at every position:

	{"id": "m1", "action": "match", "text": "в Р.Ф. и на Красной площади"}
	{"id": "m1", "h": [{"b": 2, "e": 5, "s": "Р.Ф.", "n": "РОССИЙСКАЯ ФЕДЕРАЦИЯ", "k": 4}], "c": 1, "t": 87}

"match_sim" does the same with approximate matching; "d" is the threshold in [0.05, 1):

	{"id": "m2", "action": "match_sim", "text": "красная большая площадь", "d": 0.5}

Optional "flags" switch parse attributes for a single request, for example
["ignore_brackets", "full_words_only"]. They are added to the configured defaults.

Other actions:

	{"id": "l1", "action": "lookup", "text": "российская федерация"}
	{"id": "s1", "action": "suggest", "text": "красн", "l": 5}
	{"id": "x1", "action": "stats"}
	{"id": "r1", "action": "reload"}

Errors are reported as {"id": ..., "e": "message", "c": code} with HTTP-like codes.

Reloading builds a fresh dictionary off to the side and swaps it in atomically,
so requests never observe a half-built index.
*/
package server

import "github.com/bastiangx/termserve/pkg/termin"

// Actions understood by the server.
const (
	ActionMatch    = "match"
	ActionMatchSim = "match_sim"
	ActionLookup   = "lookup"
	ActionSuggest  = "suggest"
	ActionStats    = "stats"
	ActionReload   = "reload"
)

// Request is the single request shape; fields not used by an action are ignored.
type Request struct {
	ID     string   `msgpack:"id"`
	Action string   `msgpack:"action"`
	Text   string   `msgpack:"text,omitempty"`
	Sim    float64  `msgpack:"d,omitempty"`
	Limit  int      `msgpack:"l,omitempty"`
	Flags  []string `msgpack:"flags,omitempty"`
}

// Hit is one match. Offsets are rune positions in the request text, both inclusive.
type Hit struct {
	Begin   int    `msgpack:"b"`
	End     int    `msgpack:"e"`
	Text    string `msgpack:"s"`
	Canonic string `msgpack:"n"`
	Tag     any    `msgpack:"g,omitempty"`
	Tokens  int    `msgpack:"k"`
}

// MatchResponse answers match and match_sim.
type MatchResponse struct {
	ID        string `msgpack:"id"`
	Hits      []Hit  `msgpack:"h"`
	Count     int    `msgpack:"c"`
	TimeTaken int64  `msgpack:"t"` // microseconds
}

// PatternInfo describes a dictionary pattern.
type PatternInfo struct {
	Canonic string `msgpack:"n"`
	Tag     any    `msgpack:"g,omitempty"`
	Acronym string `msgpack:"a,omitempty"`
	Lang    string `msgpack:"lang,omitempty"`
}

// LookupResponse answers lookup.
type LookupResponse struct {
	ID       string        `msgpack:"id"`
	Patterns []PatternInfo `msgpack:"p"`
	Count    int           `msgpack:"c"`
}

// SuggestionItem is one fuzzy suggestion.
type SuggestionItem struct {
	Text  string  `msgpack:"w"`
	Score float64 `msgpack:"r"`
	PatternInfo
}

// SuggestResponse answers suggest.
type SuggestResponse struct {
	ID          string           `msgpack:"id"`
	Suggestions []SuggestionItem `msgpack:"s"`
	Count       int              `msgpack:"c"`
	TimeTaken   int64            `msgpack:"t"`
}

// StatsResponse answers stats.
type StatsResponse struct {
	ID       string       `msgpack:"id"`
	Index    termin.Stats `msgpack:"index"`
	Sources  []string     `msgpack:"sources"`
	Built    int64        `msgpack:"built"` // unix seconds
	Requests int64        `msgpack:"requests"`
}

// StatusResponse is the ready banner and the reload acknowledgement.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

func patternInfo(t *termin.Termin) PatternInfo {
	return PatternInfo{
		Canonic: t.CanonicText(),
		Tag:     t.Tag,
		Acronym: t.Acronym,
		Lang:    t.Lang.String(),
	}
}
