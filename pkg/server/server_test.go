package server_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/goleak"

	"github.com/bastiangx/termserve/internal/logger"
	"github.com/bastiangx/termserve/pkg/config"
	"github.com/bastiangx/termserve/pkg/dictionary"
	"github.com/bastiangx/termserve/pkg/server"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newDict(t *testing.T, entries ...dictionary.Entry) *dictionary.Dictionary {
	t.Helper()
	d, err := dictionary.Build(&dictionary.Source{Patterns: entries}, nil)
	require.NoError(t, err)
	return d
}

func sampleDict(t *testing.T) *dictionary.Dictionary {
	return newDict(t,
		dictionary.Entry{Text: "москва", Normal: true, Tag: "city"},
		dictionary.Entry{Text: "красная площадь", Normal: true, Tag: "square"},
	)
}

// serve runs the server over the encoded requests and returns a decoder
// positioned after the ready banner.
func serve(t *testing.T, s func(io.Reader, io.Writer) *server.Server, reqs ...any) *msgpack.Decoder {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	require.NoError(t, s(&in, &out).Start())

	dec := msgpack.NewDecoder(&out)
	var ready server.StatusResponse
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)
	return dec
}

func newServer(d *dictionary.Dictionary, cfg *config.Config, opts ...server.Option) func(io.Reader, io.Writer) *server.Server {
	return func(r io.Reader, w io.Writer) *server.Server {
		opts = append(opts, server.WithIO(r, w), server.WithLogger(logger.Discard()))
		return server.NewServer(d, cfg, opts...)
	}
}

func TestServerMatch(t *testing.T) {
	dec := serve(t, newServer(sampleDict(t), nil),
		server.Request{ID: "m1", Action: server.ActionMatch, Text: "Москва, Красная площадь"},
		server.Request{ID: "m2", Action: server.ActionMatch, Text: "Москва, Красная площадь", Limit: 1},
		server.Request{ID: "m3", Action: server.ActionMatch, Text: "ничего"},
	)

	var res server.MatchResponse
	require.NoError(t, dec.Decode(&res))
	assert.Equal(t, "m1", res.ID)
	require.Equal(t, 2, res.Count)
	assert.Equal(t, server.Hit{Begin: 0, End: 5, Text: "Москва", Canonic: "МОСКВА", Tag: "city", Tokens: 1}, res.Hits[0])
	assert.Equal(t, server.Hit{Begin: 8, End: 22, Text: "Красная площадь", Canonic: "КРАСНАЯ ПЛОЩАДЬ", Tag: "square", Tokens: 2}, res.Hits[1])

	require.NoError(t, dec.Decode(&res))
	assert.Equal(t, "m2", res.ID)
	assert.Equal(t, 1, res.Count)

	res = server.MatchResponse{}
	require.NoError(t, dec.Decode(&res))
	assert.Equal(t, "m3", res.ID)
	assert.Zero(t, res.Count)
	assert.Empty(t, res.Hits)
}

func TestServerMatchSim(t *testing.T) {
	dec := serve(t, newServer(sampleDict(t), nil),
		server.Request{ID: "s1", Action: server.ActionMatchSim, Text: "красная большая площадь", Sim: 0.5},
		server.Request{ID: "s2", Action: server.ActionMatchSim, Text: "красная большая площадь", Sim: 1.5},
		server.Request{ID: "s3", Action: server.ActionMatch, Text: "красная большая площадь"},
	)

	var res server.MatchResponse
	require.NoError(t, dec.Decode(&res))
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "красная большая площадь", res.Hits[0].Text)
	assert.Equal(t, 3, res.Hits[0].Tokens)

	var errRes server.ErrorResponse
	require.NoError(t, dec.Decode(&errRes))
	assert.Equal(t, "s2", errRes.ID)
	assert.Equal(t, 400, errRes.Code)

	res = server.MatchResponse{}
	require.NoError(t, dec.Decode(&res))
	assert.Zero(t, res.Count, "exact matching needs adjacent words")
}

func TestServerErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxTextLen = 10
	dec := serve(t, newServer(sampleDict(t), cfg),
		server.Request{ID: "e1", Action: "complete", Text: "москва"},
		server.Request{ID: "e2", Action: server.ActionMatch},
		server.Request{ID: "e3", Action: server.ActionMatch, Text: "очень длинный текст"},
		server.Request{ID: "e4", Action: server.ActionMatch, Text: "москва", Flags: []string{"fuzzy"}},
		42,
		server.Request{ID: "e5", Action: server.ActionReload},
	)

	testCases := []struct {
		id   string
		code int
	}{
		{"e1", 400},
		{"e2", 400},
		{"e3", 413},
		{"e4", 400},
		{"", 400},
		{"e5", 501},
	}
	for _, tc := range testCases {
		var res server.ErrorResponse
		require.NoError(t, dec.Decode(&res))
		assert.Equal(t, tc.id, res.ID)
		assert.Equal(t, tc.code, res.Code, "request %q: %s", tc.id, res.Error)
	}
}

func TestServerLookupSuggestStats(t *testing.T) {
	d := sampleDict(t)
	d.Sources = []string{"cities.toml"}
	dec := serve(t, newServer(d, nil),
		server.Request{ID: "l1", Action: server.ActionLookup, Text: "красная   площадь"},
		server.Request{ID: "l2", Action: server.ActionLookup, Text: "синяя площадь"},
		server.Request{ID: "g1", Action: server.ActionSuggest, Text: "красная плошадь", Limit: 3},
		server.Request{ID: "x1", Action: server.ActionStats},
	)

	var lookup server.LookupResponse
	require.NoError(t, dec.Decode(&lookup))
	require.Equal(t, 1, lookup.Count)
	assert.Equal(t, "КРАСНАЯ ПЛОЩАДЬ", lookup.Patterns[0].Canonic)
	assert.Equal(t, "square", lookup.Patterns[0].Tag)

	lookup = server.LookupResponse{}
	require.NoError(t, dec.Decode(&lookup))
	assert.Zero(t, lookup.Count)

	var sugg server.SuggestResponse
	require.NoError(t, dec.Decode(&sugg))
	require.NotEmpty(t, sugg.Suggestions)
	assert.Equal(t, "КРАСНАЯ ПЛОЩАДЬ", sugg.Suggestions[0].Canonic)
	assert.Greater(t, sugg.Suggestions[0].Score, 0.9)

	var stats server.StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, 2, stats.Index.Termins)
	assert.Equal(t, []string{"cities.toml"}, stats.Sources)
	assert.Equal(t, int64(4), stats.Requests)
}

func TestServerReload(t *testing.T) {
	next := newDict(t, dictionary.Entry{Text: "париж", Normal: true, Tag: "city"})
	calls := 0
	reload := func(context.Context) (*dictionary.Dictionary, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("broken file")
		}
		return next, nil
	}

	var srv *server.Server
	build := func(r io.Reader, w io.Writer) *server.Server {
		srv = newServer(sampleDict(t), nil, server.WithReloader(reload))(r, w)
		return srv
	}
	dec := serve(t, build,
		server.Request{ID: "r1", Action: server.ActionReload},
		server.Request{ID: "m1", Action: server.ActionMatch, Text: "париж и москва"},
		server.Request{ID: "r2", Action: server.ActionReload},
		server.Request{ID: "m2", Action: server.ActionMatch, Text: "париж"},
	)

	var status server.StatusResponse
	require.NoError(t, dec.Decode(&status))
	assert.Equal(t, server.StatusResponse{ID: "r1", Status: "ok"}, status)

	var res server.MatchResponse
	require.NoError(t, dec.Decode(&res))
	require.Equal(t, 1, res.Count, "old patterns are gone")
	assert.Equal(t, "ПАРИЖ", res.Hits[0].Canonic)

	var errRes server.ErrorResponse
	require.NoError(t, dec.Decode(&errRes))
	assert.Equal(t, 500, errRes.Code)

	res = server.MatchResponse{}
	require.NoError(t, dec.Decode(&res))
	assert.Equal(t, 1, res.Count, "failed reload keeps the current dictionary")
	assert.Same(t, next, srv.Dictionary())
}

func TestServerSwapWhileServing(t *testing.T) {
	first := sampleDict(t)
	second := newDict(t, dictionary.Entry{Text: "москва", Normal: true, Tag: "capital"})

	pr, pw := io.Pipe()
	var out bytes.Buffer
	s := server.NewServer(first, nil, server.WithIO(pr, &out), server.WithLogger(logger.Discard()))

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		enc := msgpack.NewEncoder(pw)
		for i := 0; i < 50; i++ {
			_ = enc.Encode(server.Request{ID: "m", Action: server.ActionMatch, Text: "москва"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if i%2 == 0 {
				s.Swap(second)
			} else {
				s.Swap(first)
			}
		}
	}()
	wg.Wait()
	require.NoError(t, pw.Close())
	require.NoError(t, <-done)

	dec := msgpack.NewDecoder(&out)
	var ready server.StatusResponse
	require.NoError(t, dec.Decode(&ready))
	for i := 0; i < 50; i++ {
		var res server.MatchResponse
		require.NoError(t, dec.Decode(&res))
		require.Equal(t, 1, res.Count)
		assert.Contains(t, []any{"city", "capital"}, res.Hits[0].Tag)
	}
	s.Swap(nil)
	assert.Same(t, first, s.Dictionary())
}
