// Package docs renders a markdown command reference from the registry.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/pkg/cmd"
)

// DefaultTemplate is used when no template file is given.
const DefaultTemplate = `# Commands

{{ .CommandSections }}`

// CommandSections renders every command grouped by category, heaviest
// categories last.
func CommandSections(registry *cmd.Registry, prefix string) string {
	commands := registry.GetAll()
	sort.SliceStable(commands, func(i, j int) bool {
		wi, wj := config.CategoryWeight(commands[i].Category()), config.CategoryWeight(commands[j].Category())
		if wi == wj {
			return commands[i].Name() < commands[j].Name()
		}
		return wi < wj
	})

	var buf bytes.Buffer
	current := "\x00"
	for _, c := range commands {
		if cat := c.Category(); cat != current {
			if current != "\x00" {
				buf.WriteString("\n")
			}
			current = cat
			if cat == "" {
				cat = "Other"
			}
			fmt.Fprintf(&buf, "### %s\n\n", cat)
		}
		writeCommand(&buf, c, prefix, 0)
	}
	return buf.String()
}

func writeCommand(buf *bytes.Buffer, c *cmd.Command, prefix string, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s- **%s%s**", indent, prefix, c.Path())
	if c.Runnable() {
		line = fmt.Sprintf("%s- `%s%s`", indent, prefix, c.Usage())
	}
	if d := c.Description(); d != "" {
		line += ": " + d
	}
	if aliases := c.Aliases(); len(aliases) > 0 {
		line += fmt.Sprintf(" (aliases: %s)", strings.Join(aliases, ", "))
	}
	buf.WriteString(line + "\n")
	for _, sub := range c.Subcommands() {
		writeCommand(buf, sub, prefix, depth+1)
	}
}

// Render executes tmpl with the command sections.
func Render(w io.Writer, tmpl string, registry *cmd.Registry, prefix string) error {
	t, err := template.New("readme").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	data := struct{ CommandSections string }{CommandSections: CommandSections(registry, prefix)}
	return t.Execute(w, data)
}

// UpdateReadme renders tmplPath (or DefaultTemplate when empty) into outPath.
func UpdateReadme(registry *cmd.Registry, prefix, tmplPath, outPath string) error {
	tmpl := DefaultTemplate
	if tmplPath != "" {
		raw, err := os.ReadFile(tmplPath)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		tmpl = string(raw)
	}

	var buf bytes.Buffer
	if err := Render(&buf, tmpl, registry, prefix); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}
