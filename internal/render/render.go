// Package render turns dispatch outcomes into user-facing text. Both the
// Discord and console front-ends use it so users see the same wording.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/chatcmd/pkg/cmd"
	"github.com/keshon/chatcmd/pkg/util"
)

// Message is a rendered reply.
type Message struct {
	Title  string
	Body   string
	Failed bool
}

// Text joins title and body for plain-text surfaces.
func (m Message) Text() string {
	switch {
	case m.Title == "":
		return m.Body
	case m.Body == "":
		return m.Title
	default:
		return m.Title + "\n" + m.Body
	}
}

// Result renders a handler result. An empty OK result renders as an empty
// message, which front-ends skip.
func Result(res *cmd.Result) Message {
	if res == nil {
		return Message{}
	}
	return Message{
		Title:  res.Title,
		Body:   strings.Join(res.Responses, "\n"),
		Failed: res.Status == cmd.StatusFailed,
	}
}

// Error renders a dispatch failure. prefix is the active command prefix and
// is used in usage hints. Handler failures never leak their cause.
func Error(err error, c *cmd.Command, prefix string) Message {
	var (
		unknown    *cmd.UnknownCommandError
		unknownSub *cmd.UnknownSubcommandError
		disabled   *cmd.CommandDisabledError
		missing    *cmd.MissingArgumentError
		typeErr    *cmd.ArgumentTypeError
		resErr     *cmd.ArgumentResolutionError
		violation  *cmd.ConstraintViolation
		handlerErr *cmd.HandlerError
	)

	switch {
	case errors.As(err, &unknown):
		body := fmt.Sprintf("Unknown command `%s`.", unknown.Token)
		if unknown.Suggestion != "" {
			body += fmt.Sprintf(" Did you mean `%s%s`?", prefix, unknown.Suggestion)
		}
		return failed("Unknown command", body)

	case errors.As(err, &unknownSub):
		var names []string
		if c != nil {
			for _, sub := range c.Subcommands() {
				names = append(names, "`"+sub.Name()+"`")
			}
		}
		body := fmt.Sprintf("`%s%s` needs a subcommand.", prefix, unknownSub.Parent)
		if unknownSub.Token != "" {
			body = fmt.Sprintf("`%s` is not a subcommand of `%s%s`.", unknownSub.Token, prefix, unknownSub.Parent)
		}
		if len(names) > 0 {
			body += " Available: " + strings.Join(names, ", ") + "."
		}
		return failed("Unknown subcommand", body)

	case errors.As(err, &disabled):
		return failed("Command disabled", fmt.Sprintf("`%s` is disabled here.", disabled.Command))

	case errors.As(err, &missing):
		return failed("Missing argument", fmt.Sprintf("`%s` is required.", missing.Name)+usageHint(c, prefix))

	case errors.As(err, &typeErr):
		return failed("Invalid argument", fmt.Sprintf("`%s` must be %s, got `%s`.", typeErr.Name, describeType(typeErr.Expected), typeErr.Received)+usageHint(c, prefix))

	case errors.As(err, &resErr):
		return failed("Invalid argument", fmt.Sprintf("Could not find anything matching `%s` for `%s`.", resErr.Token, resErr.Name)+usageHint(c, prefix))

	case errors.As(err, &violation):
		return failed("Not allowed", Violation(violation))

	case errors.As(err, &handlerErr):
		return failed("Something went wrong", fmt.Sprintf("`%s` failed. The error has been logged.", handlerErr.Command))

	default:
		return failed("Error", err.Error())
	}
}

// Violation explains a constraint violation to the issuer.
func Violation(v *cmd.ConstraintViolation) string {
	switch v.Kind {
	case cmd.ViolationAuth:
		return fmt.Sprintf("`%s` requires authorization level %d; yours is %d.", v.Command, v.Required, v.Actual)
	case cmd.ViolationEnvironment:
		return fmt.Sprintf("`%s` can only be used %s.", v.Command, v.Environment)
	case cmd.ViolationPermission:
		if v.Self {
			return fmt.Sprintf("I need these permissions to run `%s`: %s.", v.Command, strings.Join(v.Missing, ", "))
		}
		return fmt.Sprintf("You need these permissions to run `%s`: %s.", v.Command, strings.Join(v.Missing, ", "))
	case cmd.ViolationSpecificList:
		return fmt.Sprintf("You are not allowed to use `%s`.", v.Command)
	case cmd.ViolationCooldown:
		return fmt.Sprintf("`%s` is on cooldown. Try again in %s.", v.Command, util.FormatDuration(v.Remaining))
	default:
		return fmt.Sprintf("`%s` cannot be used right now.", v.Command)
	}
}

// Help renders one command's description and usage.
func Help(c *cmd.Command, prefix string) Message {
	var b strings.Builder
	if c.Description() != "" {
		b.WriteString(c.Description())
		b.WriteString("\n")
	}
	if c.Runnable() {
		fmt.Fprintf(&b, "Usage: `%s%s`", prefix, c.Usage())
	}
	if aliases := c.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(&b, "\nAliases: %s", strings.Join(aliases, ", "))
	}
	for _, sub := range c.Subcommands() {
		fmt.Fprintf(&b, "\n• `%s%s`", prefix, sub.Usage())
		if sub.Description() != "" {
			b.WriteString(" - " + sub.Description())
		}
	}
	for _, a := range c.Args() {
		if a.Description == "" {
			continue
		}
		fmt.Fprintf(&b, "\n`%s` (%s): %s", a.Name, describeType(a.Type), a.Description)
	}
	return Message{Title: c.Path(), Body: strings.TrimSpace(b.String())}
}

func usageHint(c *cmd.Command, prefix string) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("\nUsage: `%s%s`", prefix, c.Usage())
}

func describeType(t cmd.ArgType) string {
	switch t {
	case cmd.TypeInteger:
		return "a whole number"
	case cmd.TypeUnsignedInteger:
		return "a non-negative whole number"
	case cmd.TypeNonZeroInteger:
		return "a non-zero whole number"
	case cmd.TypeBoolean:
		return "true or false"
	case cmd.TypeString:
		return "text"
	default:
		return "a " + string(t)
	}
}

func failed(title, body string) Message {
	return Message{Title: title, Body: body, Failed: true}
}
