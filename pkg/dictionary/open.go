package dictionary

import (
	"context"
	"fmt"

	"github.com/bastiangx/termserve/pkg/morph"
)

// Open expands patterns, loads every matched file and builds the result.
// lexiconPath is optional.
func Open(ctx context.Context, patterns []string, lexiconPath string) (*Dictionary, error) {
	paths, err := ExpandPaths(patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files match %v", ErrEmptyDictionary, patterns)
	}
	src, err := LoadFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	var lex *morph.Lexicon
	if lexiconPath != "" {
		if lex, err = morph.LoadLexicon(lexiconPath); err != nil {
			return nil, err
		}
	}
	d, err := Build(src, lex)
	if err != nil {
		return nil, err
	}
	d.Sources = paths
	return d, nil
}
