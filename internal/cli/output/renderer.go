// Package output renders command results in terminal, markdown or JSON
// form. Terminal output gets styled headers and box-drawn tables; piped
// output falls back to markdown so scripted callers get something
// parseable without flags.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out  io.Writer
	errW io.Writer
	mode Mode
}

// NewRenderer creates a renderer. An empty or unknown mode behaves as auto.
func NewRenderer(out, errW io.Writer, mode Mode) *Renderer {
	switch mode {
	case ModeText, ModeMarkdown, ModeJSON:
	default:
		mode = ModeAuto
	}
	return &Renderer{out: out, errW: errW, mode: mode}
}

// EffectiveMode resolves auto: text on a terminal, markdown when piped.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if f, ok := r.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return ModeText
	}
	return ModeMarkdown
}

// Header writes a section header at the given level.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.out, headerStyle.Render(text))
		return
	}
	_, _ = fmt.Fprintf(r.out, "%s %s\n", strings.Repeat("#", level), text)
}

// Println writes a plain line.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Warnf writes a warning to the error stream.
func (r *Renderer) Warnf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.errW, "Warning: "+format+"\n", a...)
}

// Table writes a table of rows under the given header names.
func (r *Renderer) Table(headers []string, rows [][]string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.markdownTable(headers, rows)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	head := make(table.Row, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	t.AppendHeader(head)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, c := range row {
			tr[i] = c
		}
		t.AppendRow(tr)
	}
	t.Render()
}

func (r *Renderer) markdownTable(headers []string, rows [][]string) {
	_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(headers, " | "))
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(seps, " | "))
	for _, row := range rows {
		_, _ = fmt.Fprintf(r.out, "| %s |\n", strings.Join(row, " | "))
	}
}

// JSON writes v as indented JSON regardless of mode.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
