// Package cli provides an interactive line-oriented matcher for debugging
// dictionaries in real time.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/termserve/pkg/dictionary"
	"github.com/bastiangx/termserve/pkg/termin"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	hitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	tagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

// InputHandler reads lines, matches them against a dictionary and prints
// the text with every match highlighted.
//
// Commands:
//
//	?query      fuzzy suggestions for query
//	:sim 0.5    switch to approximate matching (0 turns it off)
//	:attrs a,b  replace the parse attributes
type InputHandler struct {
	dict  *dictionary.Dictionary
	attrs termin.ParseAttr
	sim   float64
	limit int
	in    io.Reader
	out   io.Writer
}

// NewInputHandler creates a handler reading from in and printing to out.
func NewInputHandler(d *dictionary.Dictionary, attrs termin.ParseAttr, sim float64, limit int, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		dict:  d,
		attrs: attrs,
		sim:   sim,
		limit: limit,
		in:    in,
		out:   out,
	}
}

// Start runs the prompt loop until the input ends.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, "termserve interactive")
	fmt.Fprintln(h.out, "type some text and press Enter to see the matches (Ctrl+D to exit):")
	reader := bufio.NewReader(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(h.out)
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleInput(line string) {
	switch {
	case strings.HasPrefix(line, "?"):
		h.suggest(strings.TrimSpace(line[1:]))
	case strings.HasPrefix(line, ":"):
		h.command(line[1:])
	default:
		h.match(line)
	}
}

func (h *InputHandler) command(line string) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "sim":
		d, err := strconv.ParseFloat(arg, 64)
		if err != nil || d < 0 || d >= 1 {
			fmt.Fprintf(h.out, "bad threshold %q, want a number in [0, 1)\n", arg)
			return
		}
		h.sim = d
		fmt.Fprintf(h.out, "similarity set to %g\n", d)
	case "attrs":
		attrs, unknown := termin.ParseAttrFromNames(strings.Split(arg, ","))
		if len(unknown) > 0 {
			fmt.Fprintf(h.out, "unknown attributes: %s\n", strings.Join(unknown, ", "))
			return
		}
		h.attrs = attrs
		fmt.Fprintf(h.out, "attributes set to %s\n", attrs)
	default:
		fmt.Fprintf(h.out, "unknown command %q\n", name)
	}
}

func (h *InputHandler) match(text string) {
	start := time.Now()
	matches := h.dict.Scan(text, h.attrs, h.sim, h.limit)
	log.Debugf("Took [ %v ] for %d runes", time.Since(start), len([]rune(text)))

	if len(matches) == 0 {
		fmt.Fprintln(h.out, "no matches")
		return
	}
	fmt.Fprintln(h.out, Highlight(text, matches))
	for i, m := range matches {
		line := fmt.Sprintf("%2d. [%d..%d] %s", i+1, m.BeginChar(), m.EndChar(), hitStyle.Render(m.Termin.CanonicText()))
		if m.Termin.Tag != nil {
			line += " " + tagStyle.Render(fmt.Sprint(m.Termin.Tag))
		}
		fmt.Fprintln(h.out, line)
	}
}

func (h *InputHandler) suggest(query string) {
	found := h.dict.Collection.Suggest(query, h.limit, 0.8)
	if len(found) == 0 {
		fmt.Fprintf(h.out, "no suggestions for %q\n", query)
		return
	}
	for i, s := range found {
		fmt.Fprintf(h.out, "%2d. %-40s %s\n", i+1, hitStyle.Render(s.Text), scoreStyle.Render(strconv.FormatFloat(s.Score, 'f', 3, 64)))
	}
}

// Highlight renders text with every matched span styled. Matches must be in
// text order and must not overlap, as Scan returns them.
func Highlight(text string, matches []*termin.Match) string {
	runes := []rune(text)
	var sb strings.Builder
	pos := 0
	for _, m := range matches {
		b, e := m.BeginChar(), m.EndChar()
		if b < pos || e >= len(runes) {
			continue
		}
		sb.WriteString(string(runes[pos:b]))
		sb.WriteString(hitStyle.Render(string(runes[b : e+1])))
		pos = e + 1
	}
	sb.WriteString(string(runes[pos:]))
	return sb.String()
}
