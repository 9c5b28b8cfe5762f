// Package render prints catalog content for people (text) and programs (JSON).
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vk/rustdex/internal/catalog"
)

// Options controls text output.
type Options struct {
	Color bool
	// Width is the wrap column. Zero or less means DefaultWidth.
	Width int
}

type palette struct {
	title   *color.Color
	heading *color.Color
	code    *color.Color
	bullet  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title:   color.New(color.FgYellow, color.Bold),
		heading: color.New(color.FgGreen, color.Bold),
		code:    color.New(color.FgCyan),
		bullet:  color.New(color.FgBlue, color.Bold),
	}
	for _, c := range []*color.Color{p.title, p.heading, p.code, p.bullet} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Text writes human-readable output.
type Text struct {
	w     io.Writer
	width int
	p     palette
}

// NewText returns a Text writer for w.
func NewText(w io.Writer, opts Options) *Text {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	return &Text{w: w, width: width, p: newPalette(opts.Color)}
}

const (
	indent = "  "
	bullet = "- "
)

// Capability prints one record declared by module.
func (t *Text) Capability(module string, c catalog.Capability) error {
	var b strings.Builder

	b.WriteString(t.p.title.Sprint(module+"::"+c.Name) + "\n")
	t.facts(&b, "Implementor facts", c.ImplementorFacts)
	t.facts(&b, "Trait facts", c.TraitFacts)
	t.code(&b, "Signature", c.Signature)
	t.code(&b, "Example", c.Example)

	_, err := io.WriteString(t.w, b.String())
	return err
}

// Module prints a module's introductory line and its capability names.
func (t *Text) Module(m *catalog.Module) error {
	var b strings.Builder

	b.WriteString(t.p.title.Sprint(m.ID()) + "\n")
	for _, line := range wrap(m.Introductory(), t.width-len(indent)) {
		b.WriteString(indent + line + "\n")
	}
	b.WriteString("\n" + t.p.heading.Sprintf("Capabilities (%d)", m.Len()) + "\n")
	for _, name := range m.Names() {
		b.WriteString(indent + t.p.bullet.Sprint(bullet) + name + "\n")
	}

	_, err := io.WriteString(t.w, b.String())
	return err
}

// List prints one item per line.
func (t *Text) List(items []string) error {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item + "\n")
	}
	_, err := io.WriteString(t.w, b.String())
	return err
}

// Ambiguous prints the modules that declare name.
func (t *Text) Ambiguous(name string, candidates []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is declared in %d modules:\n", t.p.title.Sprint(name), len(candidates))
	for _, id := range candidates {
		b.WriteString(indent + t.p.bullet.Sprint(bullet) + id + "::" + name + "\n")
	}
	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *Text) facts(b *strings.Builder, heading string, facts []string) {
	if len(facts) == 0 {
		return
	}
	b.WriteString("\n" + t.p.heading.Sprint(heading) + "\n")
	hang := strings.Repeat(" ", runewidth.StringWidth(bullet))
	for _, fact := range facts {
		for i, line := range wrap(fact, t.width-len(indent)-len(hang)) {
			if i == 0 {
				b.WriteString(indent + t.p.bullet.Sprint(bullet) + line + "\n")
			} else {
				b.WriteString(indent + hang + line + "\n")
			}
		}
	}
}

// code prints a block verbatim; source text is never wrapped.
func (t *Text) code(b *strings.Builder, heading, body string) {
	body = strings.TrimRight(body, "\n")
	if strings.TrimSpace(body) == "" {
		return
	}
	b.WriteString("\n" + t.p.heading.Sprint(heading) + "\n")
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(indent + t.p.code.Sprint(line) + "\n")
	}
}

// wrap breaks text into lines no wider than width display columns. Words
// wider than width get a line of their own.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	line := words[0]
	lineWidth := runewidth.StringWidth(line)
	for _, word := range words[1:] {
		w := runewidth.StringWidth(word)
		if lineWidth+1+w > width {
			lines = append(lines, line)
			line, lineWidth = word, w
			continue
		}
		line += " " + word
		lineWidth += 1 + w
	}
	return append(lines, line)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
