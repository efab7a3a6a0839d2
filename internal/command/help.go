package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/internal/render"
	"github.com/keshon/chatcmd/pkg/cmd"
)

type HelpCommand struct {
	Deps *Deps
}

func (c *HelpCommand) Definition() cmd.Definition {
	return cmd.Definition{
		Name:        "help",
		Aliases:     []string{"h", "commands"},
		Description: "List commands, or describe one",
		Category:    config.CategoryInformation,
		Args: []cmd.Argument{
			{Name: "command", Description: "command (and subcommand) to describe"},
		},
		SingleArg: true,
		Handler:   c.Run,
	}
}

func (c *HelpCommand) Run(_ context.Context, call *cmd.Call) (*cmd.Result, error) {
	prefix := activePrefix(c.Deps.Dispatcher, call.Invocation)
	registry := c.Deps.Dispatcher.Registry()

	if path := call.Args.String("command"); path != "" {
		target, ok := registry.Find(strings.TrimPrefix(path, prefix))
		if !ok {
			return cmd.Fail(fmt.Sprintf("No command named `%s`.", path)), nil
		}
		m := render.Help(target, prefix)
		return &cmd.Result{Title: m.Title, Responses: []string{m.Body}}, nil
	}

	return &cmd.Result{
		Title:     "Commands",
		Responses: []string{buildHelpByCategory(registry.GetAll(), prefix)},
	}, nil
}

func buildHelpByCategory(all []*cmd.Command, prefix string) string {
	categoryMap := make(map[string][]*cmd.Command)
	for _, c := range all {
		categoryMap[c.Category()] = append(categoryMap[c.Category()], c)
	}

	cats := make([]string, 0, len(categoryMap))
	for cat := range categoryMap {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, wj := config.CategoryWeight(cats[i]), config.CategoryWeight(cats[j])
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	var sb strings.Builder
	for _, cat := range cats {
		name := cat
		if name == "" {
			name = "Other"
		}
		fmt.Fprintf(&sb, "**%s**\n", name)
		for _, c := range categoryMap[cat] {
			fmt.Fprintf(&sb, "`%s%s` - %s\n", prefix, c.Name(), c.Description())
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Use `%shelp <command>` for details.", prefix)
	return sb.String()
}

type UsageCommand struct {
	Deps *Deps
}

func (c *UsageCommand) Definition() cmd.Definition {
	return cmd.Definition{
		Name:        "usage",
		Description: "Show how to call a command",
		Category:    config.CategoryInformation,
		Args: []cmd.Argument{
			{Name: "command", Required: true, Description: "command (and subcommand) to show"},
		},
		SingleArg: true,
		Handler:   c.Run,
	}
}

func (c *UsageCommand) Run(_ context.Context, call *cmd.Call) (*cmd.Result, error) {
	prefix := activePrefix(c.Deps.Dispatcher, call.Invocation)
	path := call.Args.String("command")

	target, ok := c.Deps.Dispatcher.Registry().Find(strings.TrimPrefix(path, prefix))
	if !ok {
		return cmd.Fail(fmt.Sprintf("No command named `%s`.", path)), nil
	}

	var lines []string
	if target.Runnable() {
		lines = append(lines, fmt.Sprintf("`%s%s`", prefix, target.Usage()))
	}
	for _, sub := range target.Subcommands() {
		lines = append(lines, fmt.Sprintf("`%s%s`", prefix, sub.Usage()))
	}
	return cmd.OK(strings.Join(lines, "\n")), nil
}
