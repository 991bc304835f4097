package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/termserve/pkg/dictionary"
)

const testConfig = `
[match]
max_matches = 8

[dict]
paths = ["dict/**/*.toml"]
snapshot = "out/dict.tsnap"
`

const testDict = `
[[pattern]]
text = "москва"
normal = true
tag = "city"

[[pattern]]
text = "российская федерация"
normal = true
acronym = "РФ"
acronym_smart = true
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(testConfig), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dict", "ru"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dict", "ru", "geo.toml"), []byte(testDict), 0o644))
	return filepath.Join(dir, "config.toml")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMatchCommand(t *testing.T) {
	cfg := writeProject(t)

	out, err := execute(t, "match", "--config", cfg, "Москва", "и", "Р.Ф.")
	require.NoError(t, err)
	assert.Contains(t, out, "0\t5\tМОСКВА\tcity")
	assert.Contains(t, out, "9\t12\tРОССИЙСКАЯ ФЕДЕРАЦИЯ")

	out, err = execute(t, "match", "--config", cfg, "--attrs", "full_words_only", "Р.Ф.")
	require.NoError(t, err)
	assert.Contains(t, out, "no matches")

	_, err = execute(t, "match", "--config", cfg, "--attrs", "fuzzy", "москва")
	assert.Error(t, err)
}

func TestCompileCommand(t *testing.T) {
	cfg := writeProject(t)
	snap := filepath.Join(filepath.Dir(cfg), "out", "dict.tsnap")

	_, err := execute(t, "compile", "--config", cfg)
	require.NoError(t, err)
	src, err := dictionary.LoadSnapshot(snap)
	require.NoError(t, err)
	assert.Len(t, src.Patterns, 2)

	other := filepath.Join(t.TempDir(), "other.tsnap")
	_, err = execute(t, "compile", "--config", cfg, "-o", other, filepath.Join(filepath.Dir(cfg), "dict", "**", "*.toml"))
	require.NoError(t, err)
	assert.FileExists(t, other)

	// once the snapshot exists it is what match loads
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(cfg), "dict", "ru", "geo.toml")))
	out, err := execute(t, "match", "--config", cfg, "москва")
	require.NoError(t, err)
	assert.Contains(t, out, "МОСКВА")
}

func TestInteractiveCommand(t *testing.T) {
	cfg := writeProject(t)
	out, err := execute(t, "interactive", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "termserve interactive")
}

func TestMissingDictionary(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(testConfig), 0o644))
	_, err := execute(t, "match", "--config", cfg, "москва")
	assert.ErrorIs(t, err, dictionary.ErrEmptyDictionary)
}
