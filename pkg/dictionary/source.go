// Package dictionary loads pattern dictionaries from TOML, plain text and
// compiled snapshot files and builds them into a termin.Collection.
package dictionary

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/termserve/pkg/morph"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Entry is one pattern as written in a dictionary file.
type Entry struct {
	Text string `toml:"text" msgpack:"text,omitempty"`
	// Normal takes Text as already normalized and skips morphology.
	Normal  bool   `toml:"normal" msgpack:"normal,omitempty"`
	Lang    string `toml:"lang" msgpack:"lang,omitempty"`
	Tag     string `toml:"tag" msgpack:"tag,omitempty"`
	Canonic string `toml:"canonic" msgpack:"canonic,omitempty"`

	Acronym      string `toml:"acronym" msgpack:"acronym,omitempty"`
	AcronymSmart bool   `toml:"acronym_smart" msgpack:"acronym_smart,omitempty"`
	AcronymLower bool   `toml:"acronym_lower" msgpack:"acronym_lower,omitempty"`
	// StdAcronym derives the acronym from the initials of long words.
	StdAcronym bool `toml:"std_acronym" msgpack:"std_acronym,omitempty"`

	Abridges    []string `toml:"abridges" msgpack:"abridges,omitempty"`
	StdAbridges bool     `toml:"std_abridges" msgpack:"std_abridges,omitempty"`
	Variants    []string `toml:"variants" msgpack:"variants,omitempty"`
	Synonyms    []string `toml:"synonyms" msgpack:"synonyms,omitempty"`
	IgnoreOrder bool     `toml:"ignore_order" msgpack:"ignore_order,omitempty"`
}

// Source is the decoded content of one or more dictionary files.
type Source struct {
	Patterns []Entry       `toml:"pattern" msgpack:"patterns"`
	Lexicon  []morph.Entry `toml:"lexicon" msgpack:"lexicon,omitempty"`
}

// Merge appends the patterns and lexicon entries of o.
func (s *Source) Merge(o *Source) {
	if o == nil {
		return
	}
	s.Patterns = append(s.Patterns, o.Patterns...)
	s.Lexicon = append(s.Lexicon, o.Lexicon...)
}

// ExpandPaths resolves doublestar patterns to a sorted, de-duplicated list
// of dictionary files. A literal path that does not exist is an error; a
// glob matching nothing is not.
func ExpandPaths(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var res []string
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if !isGlob(p) {
			if _, err := os.Stat(p); err != nil {
				return nil, fmt.Errorf("dictionary path %s: %w", p, err)
			}
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad dictionary pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if seen[m] || !hasKnownExtension(m) {
				continue
			}
			seen[m] = true
			res = append(res, m)
		}
	}
	sort.Strings(res)
	return res, nil
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// LoadFile decodes a single dictionary file of any supported format.
func LoadFile(path string) (*Source, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatTOML:
		return loadTOML(path)
	case FormatText:
		return loadText(path)
	case FormatSnapshot:
		return LoadSnapshot(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

func loadTOML(path string) (*Source, error) {
	var src Source
	md, err := toml.DecodeFile(path, &src)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		log.Warnf("Ignoring unknown keys in %s: %v", path, undecoded)
	}
	return &src, nil
}

// loadText reads one pattern per line as "text", "text | tag" or
// "text | tag | lang". Blank lines and lines starting with # are skipped.
func loadText(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var src Source
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "|")
		e := Entry{Text: strings.TrimSpace(fields[0])}
		if len(fields) > 1 {
			e.Tag = strings.TrimSpace(fields[1])
		}
		if len(fields) > 2 {
			e.Lang = strings.TrimSpace(fields[2])
		}
		src.Patterns = append(src.Patterns, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &src, nil
}

// LoadFiles decodes paths concurrently and merges them in path order.
func LoadFiles(ctx context.Context, paths []string) (*Source, error) {
	parts := make([]*Source, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := LoadFile(p)
			if err != nil {
				return err
			}
			parts[i] = src
			log.Debugf("Loaded %d patterns from %s", len(src.Patterns), filepath.Base(p))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := &Source{}
	for _, p := range parts {
		res.Merge(p)
	}
	return res, nil
}
