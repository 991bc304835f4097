package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/termserve/internal/logger"
	"github.com/bastiangx/termserve/pkg/config"
	"github.com/bastiangx/termserve/pkg/dictionary"
	"github.com/bastiangx/termserve/pkg/termin"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// ReloadFunc builds a replacement dictionary for the reload action.
type ReloadFunc func(ctx context.Context) (*dictionary.Dictionary, error)

// Option configures a Server.
type Option func(*Server)

// WithIO replaces stdin and stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.reader = r
		s.writer = w
	}
}

// WithReloader enables the reload action.
func WithReloader(fn ReloadFunc) Option {
	return func(s *Server) { s.reload = fn }
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// Server handles the IPC for pattern matching. The dictionary can be swapped
// while requests are served.
type Server struct {
	dict     atomic.Pointer[dictionary.Dictionary]
	cfg      *config.Config
	attrs    termin.ParseAttr
	reload   ReloadFunc
	reloadMu sync.Mutex
	requests atomic.Int64

	reader io.Reader
	writer io.Writer
	wmu    sync.Mutex
	enc    *msgpack.Encoder
	log    *log.Logger
}

// NewServer creates a server over d using stdin/stdout for IPC.
func NewServer(d *dictionary.Dictionary, cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		cfg:    cfg,
		attrs:  cfg.Match.Attrs(),
		reader: os.Stdin,
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.New("server")
	}
	s.enc = msgpack.NewEncoder(s.writer)
	s.dict.Store(d)
	return s
}

// Swap installs d for every following request. A nil d is ignored.
func (s *Server) Swap(d *dictionary.Dictionary) {
	if d == nil {
		return
	}
	old := s.dict.Swap(d)
	if old != nil {
		s.log.Info("Dictionary swapped", "patterns", d.Collection.Len(), "previous", old.Collection.Len())
	}
}

// Dictionary returns the dictionary currently serving requests.
func (s *Server) Dictionary() *dictionary.Dictionary {
	return s.dict.Load()
}

// Reload rebuilds the dictionary through the configured reloader and swaps
// it in. Concurrent reloads are serialized.
func (s *Server) Reload(ctx context.Context) error {
	if s.reload == nil {
		return errReloadDisabled
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	d, err := s.reload(ctx)
	if err != nil {
		return err
	}
	s.Swap(d)
	return nil
}

var errReloadDisabled = errors.New("reload is not configured")

// Start sends the ready banner and serves requests until the input ends.
func (s *Server) Start() error {
	s.log.Debug("Starting Server.")
	s.sendResponse(StatusResponse{Status: "ready"})

	dec := msgpack.NewDecoder(bufio.NewReader(s.reader))
	for {
		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return err
		}
		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Errorf("Unmarshaling request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			continue
		}
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	s.requests.Add(1)
	switch req.Action {
	case ActionMatch, ActionMatchSim:
		s.handleMatch(req)
	case ActionLookup:
		s.handleLookup(req)
	case ActionSuggest:
		s.handleSuggest(req)
	case ActionStats:
		s.handleStats(req)
	case ActionReload:
		s.handleReload(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %q", req.Action), 400)
	}
}

// checkText validates the text of a request and reports whether to go on.
func (s *Server) checkText(req Request) bool {
	if req.Text == "" {
		s.sendError(req.ID, "Missing 'text' parameter", 400)
		return false
	}
	if maxLen := s.cfg.Server.MaxTextLen; maxLen > 0 && utf8.RuneCountInString(req.Text) > maxLen {
		s.sendError(req.ID, fmt.Sprintf("Text exceeds maximum length of %d characters", maxLen), 413)
		return false
	}
	return true
}

func (s *Server) handleMatch(req Request) {
	if !s.checkText(req) {
		return
	}
	attrs := s.attrs
	if len(req.Flags) > 0 {
		extra, unknown := termin.ParseAttrFromNames(req.Flags)
		if len(unknown) > 0 {
			s.sendError(req.ID, fmt.Sprintf("Unknown flags: %v", unknown), 400)
			return
		}
		attrs |= extra
	}
	sim := s.cfg.Match.Similarity
	if req.Action == ActionMatchSim {
		sim = req.Sim
		if sim < 0.05 || sim >= 1 {
			s.sendError(req.ID, "Similarity 'd' must be in [0.05, 1)", 400)
			return
		}
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Match.MaxMatches
	}

	d := s.dict.Load()
	start := time.Now()
	matches := d.Scan(req.Text, attrs, sim, limit)
	elapsed := time.Since(start)

	runes := []rune(req.Text)
	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		b, e := m.BeginChar(), m.EndChar()
		hits = append(hits, Hit{
			Begin:   b,
			End:     e,
			Text:    string(runes[b : e+1]),
			Canonic: m.Termin.CanonicText(),
			Tag:     m.Termin.Tag,
			Tokens:  m.TokensCount(),
		})
	}
	s.sendResponse(MatchResponse{
		ID:        req.ID,
		Hits:      hits,
		Count:     len(hits),
		TimeTaken: elapsed.Microseconds(),
	})
}

func (s *Server) handleLookup(req Request) {
	if !s.checkText(req) {
		return
	}
	found := s.dict.Load().Lookup(req.Text)
	patterns := make([]PatternInfo, 0, len(found))
	for _, t := range found {
		patterns = append(patterns, patternInfo(t))
	}
	s.sendResponse(LookupResponse{ID: req.ID, Patterns: patterns, Count: len(patterns)})
}

func (s *Server) handleSuggest(req Request) {
	if !s.checkText(req) {
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Server.SuggestLimit
	}
	threshold := req.Sim
	if threshold <= 0 {
		threshold = s.cfg.Server.SuggestThreshold
	}

	start := time.Now()
	found := s.dict.Load().Collection.Suggest(req.Text, limit, threshold)
	elapsed := time.Since(start)

	items := make([]SuggestionItem, 0, len(found))
	for _, sg := range found {
		items = append(items, SuggestionItem{Text: sg.Text, Score: sg.Score, PatternInfo: patternInfo(sg.Termin)})
	}
	s.sendResponse(SuggestResponse{
		ID:          req.ID,
		Suggestions: items,
		Count:       len(items),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleStats(req Request) {
	d := s.dict.Load()
	s.sendResponse(StatsResponse{
		ID:       req.ID,
		Index:    d.Collection.Stats(),
		Sources:  d.Sources,
		Built:    d.Built.Unix(),
		Requests: s.requests.Load(),
	})
}

func (s *Server) handleReload(req Request) {
	err := s.Reload(context.Background())
	switch {
	case errors.Is(err, errReloadDisabled):
		s.sendError(req.ID, err.Error(), 501)
	case err != nil:
		s.log.Warnf("Reload failed, keeping current dictionary: %v", err)
		s.sendError(req.ID, fmt.Sprintf("Reload failed: %v", err), 500)
	default:
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok"})
	}
}

// sendResponse encodes response onto the writer, one message at a time.
func (s *Server) sendResponse(response any) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}
