// Copyright 2025 The TermServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package main implements the pattern matching server and its command line tools.
//
// Note: This is a BETA release. APIs and functionality may rapidly change.
//
// TermServe finds dictionary terms in running text: multi-word names, their
// inflected forms, acronyms such as "РФ" or "Р.Ф." and abbreviations such as
// "рег. номер". Patterns are indexed in Patricia tries keyed by every string a
// pattern can start with, so every token of the text costs one trie walk.
//
// # Usage
//
// Start the MessagePack IPC server with the dictionaries from the config file:
//
//	termserve serve
//
// Use other dictionaries, reload them on change and enable debug logs:
//
//	termserve serve --dict 'dict/**/*.toml' --watch -d
//
// Match a single text and print the hits:
//
//	termserve match "в Р.Ф. и на Красной площади"
//
// Try patterns interactively:
//
//	termserve interactive --sim 0.6
//
// Compile dictionaries into a snapshot that loads without TOML parsing:
//
//	termserve compile -o dict.tsnap 'dict/**/*.toml'
//
// # Dictionaries
//
// Dictionaries are TOML files of [[pattern]] tables, optionally with the
// [[lexicon]] entries their words inflect through:
//
//	[[lexicon]]
//	lemma = "ПЛОЩАДЬ"
//	class = "noun"
//	forms = ["ПЛОЩАДИ", "ПЛОЩАДЬЮ"]
//
//	[[pattern]]
//	text = "российская федерация"
//	acronym = "РФ"
//	acronym_smart = true
//	synonyms = ["россия"]
//	tag = "country"
//
// Plain text files hold one pattern per line as "text | tag | lang".
//
// # Configuration
//
// Runtime configuration is a TOML file created with defaults on first run:
//
//	[match]
//	similarity = 0.0
//	ignore_brackets = false
//	ignore_stop_words = false
//	full_words_only = false
//	in_dictionary_only = false
//	max_matches = 64
//
//	[dict]
//	paths = ["dict/**/*.toml", "dict/**/*.txt"]
//	lexicon = ""
//	snapshot = ""
//	watch = false
//
//	[server]
//	max_text_len = 4096
//	suggest_limit = 10
//	suggest_threshold = 0.85
//
// Relative dictionary paths resolve against the config file's directory.
//
// # IPC Protocol
//
// The server reads MessagePack requests from stdin and writes responses to
// stdout; see package server for the message shapes. All logging goes to stderr.
//
//	{"id": "m1", "action": "match", "text": "Красная площадь"}
//	{"id": "m1", "h": [{"b": 0, "e": 14, "s": "Красная площадь", "n": "КРАСНАЯ ПЛОЩАДЬ", "k": 2}], "c": 1, "t": 41}
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
