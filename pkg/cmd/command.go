package cmd

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Environment restricts the surface a command can run on.
type Environment int

const (
	Anywhere Environment = iota
	GuildOnly
	DMOnly
)

func (e Environment) String() string {
	switch e {
	case GuildOnly:
		return "in servers"
	case DMOnly:
		return "in direct messages"
	default:
		return "anywhere"
	}
}

// Constraints are checked in this field order before arguments are bound.
type Constraints struct {
	AuthLevel         int
	Environment       Environment
	IssuerPermissions []string
	SelfPermissions   []string
	// Specific lists user or group identifiers allowed to run the command.
	// Empty means unrestricted.
	Specific []string
	Cooldown time.Duration
	Guards   []Guard
}

// Definition declares a command. It is plain configuration: Compile
// validates it and produces the immutable Command the registry stores.
type Definition struct {
	Name        string
	Aliases     []string
	Description string
	Category    string

	Args        []Argument
	Constraints Constraints
	// SingleArg folds every remaining positional token into the final
	// (string) argument instead of splitting it.
	SingleArg bool

	Subcommands []Definition
	Enabled     EnabledFunc
	Handler     Handler
}

// Kind tells top-level commands from subcommands. It is fixed at compile
// time and never inferred from a handler.
type Kind int

const (
	KindCommand Kind = iota
	KindSubcommand
)

// Command is a compiled, immutable Definition.
type Command struct {
	name        string
	aliases     []string
	description string
	category    string
	kind        Kind
	parent      *Command

	args        []Argument
	constraints Constraints
	singleArg   bool

	children []*Command
	byName   map[string]*Command

	enabled EnabledFunc
	handler Handler
}

func (c *Command) Name() string              { return c.name }
func (c *Command) Description() string       { return c.description }
func (c *Command) Category() string          { return c.category }
func (c *Command) Kind() Kind                { return c.kind }
func (c *Command) Parent() *Command          { return c.parent }
func (c *Command) SingleArg() bool           { return c.singleArg }
func (c *Command) Constraints() *Constraints { return &c.constraints }
func (c *Command) Runnable() bool            { return c.handler != nil }

// Aliases returns a copy of the command's aliases.
func (c *Command) Aliases() []string { return append([]string(nil), c.aliases...) }

// Args returns a copy of the argument schema.
func (c *Command) Args() []Argument { return append([]Argument(nil), c.args...) }

// Subcommands returns the direct children in declaration order.
func (c *Command) Subcommands() []*Command { return append([]*Command(nil), c.children...) }

// Subcommand looks a direct child up by name or alias, case-insensitively.
func (c *Command) Subcommand(name string) (*Command, bool) {
	child, ok := c.byName[fold(name)]
	return child, ok
}

// Path is the space-separated chain from the root, e.g. "role add".
func (c *Command) Path() string {
	if c.parent == nil {
		return c.name
	}
	return c.parent.Path() + " " + c.name
}

// Usage renders the argument schema, e.g. "role add <role> <member> [--silent]".
func (c *Command) Usage() string {
	var b strings.Builder
	b.WriteString(c.Path())
	for _, a := range c.args {
		name := a.Name
		if a.Type == TypeBoolean && a.Short != "" {
			name = "-" + a.Short + "|--" + a.Name
		} else if a.Type == TypeBoolean {
			name = "--" + a.Name
		}
		if a.Required {
			fmt.Fprintf(&b, " <%s>", name)
		} else {
			fmt.Fprintf(&b, " [%s]", name)
		}
	}
	if c.singleArg && len(c.args) > 0 {
		b.WriteString("...")
	}
	return b.String()
}

// Compile validates def and returns its immutable form. Aliases and
// subcommand names are checked for collisions inside the tree; collisions
// with other commands are the registry's job.
func Compile(def Definition) (*Command, error) {
	return compile(def, nil)
}

func compile(def Definition, parent *Command) (*Command, error) {
	name := strings.TrimSpace(def.Name)
	if err := validName(name); err != nil {
		return nil, &RegistrationError{Reason: InvalidDefinition, Command: def.Name, Detail: err.Error()}
	}

	c := &Command{
		name:        name,
		description: def.Description,
		category:    def.Category,
		parent:      parent,
		args:        append([]Argument(nil), def.Args...),
		constraints: def.Constraints,
		singleArg:   def.SingleArg,
		enabled:     def.Enabled,
		handler:     def.Handler,
		byName:      map[string]*Command{},
	}
	if parent != nil {
		c.kind = KindSubcommand
		if c.category == "" {
			c.category = parent.category
		}
	}
	c.constraints.IssuerPermissions = append([]string(nil), def.Constraints.IssuerPermissions...)
	c.constraints.SelfPermissions = append([]string(nil), def.Constraints.SelfPermissions...)
	c.constraints.Specific = append([]string(nil), def.Constraints.Specific...)
	c.constraints.Guards = append([]Guard(nil), def.Constraints.Guards...)

	seen := map[string]bool{fold(name): true}
	for _, a := range def.Aliases {
		a = strings.TrimSpace(a)
		if err := validName(a); err != nil {
			return nil, &RegistrationError{Reason: InvalidDefinition, Command: name, Detail: "alias: " + err.Error()}
		}
		if seen[fold(a)] {
			return nil, &RegistrationError{Reason: DuplicateAlias, Command: name, Detail: a}
		}
		seen[fold(a)] = true
		c.aliases = append(c.aliases, a)
	}

	if err := validateArgs(c); err != nil {
		return nil, err
	}
	if c.constraints.Cooldown < 0 {
		return nil, &RegistrationError{Reason: InvalidDefinition, Command: name, Detail: "negative cooldown"}
	}

	for _, sd := range def.Subcommands {
		child, err := compile(sd, c)
		if err != nil {
			return nil, err
		}
		for _, key := range child.keys() {
			if _, dup := c.byName[key]; dup {
				reason := DuplicateAlias
				if key == fold(child.name) {
					reason = DuplicateName
				}
				return nil, &RegistrationError{Reason: reason, Command: child.Path(), Detail: key}
			}
			c.byName[key] = child
		}
		c.children = append(c.children, child)
	}

	if c.handler == nil && len(c.children) == 0 {
		return nil, &RegistrationError{Reason: InvalidDefinition, Command: name, Detail: "no handler"}
	}
	return c, nil
}

func validateArgs(c *Command) error {
	names := map[string]bool{}
	shorts := map[string]string{}
	for i, a := range c.args {
		if err := validName(a.Name); err != nil {
			return &RegistrationError{Reason: InvalidDefinition, Command: c.name, Detail: "argument: " + err.Error()}
		}
		if names[a.Name] {
			return &RegistrationError{Reason: InvalidDefinition, Command: c.name, Detail: "duplicate argument " + a.Name}
		}
		names[a.Name] = true
		if a.Type == "" {
			c.args[i].Type = TypeString
		}
		if a.Short != "" {
			if utf8.RuneCountInString(a.Short) != 1 || a.Short == "-" || a.Short == "=" {
				return &RegistrationError{Reason: InvalidDefinition, Command: c.name, Detail: "short flag must be one character: " + a.Short}
			}
			if other, dup := shorts[a.Short]; dup {
				return &RegistrationError{Reason: DuplicateShortFlag, Command: c.name, Detail: fmt.Sprintf("-%s used by %s and %s", a.Short, other, a.Name)}
			}
			shorts[a.Short] = a.Name
		}
	}
	if c.singleArg {
		if len(c.args) == 0 || c.args[len(c.args)-1].Type != TypeString {
			return &RegistrationError{Reason: InvalidDefinition, Command: c.name, Detail: "single-arg commands must end with a string argument"}
		}
	}
	return nil
}

func validName(s string) error {
	if s == "" {
		return fmt.Errorf("empty name")
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			return fmt.Errorf("name %q contains whitespace", s)
		}
	}
	if strings.HasPrefix(s, "-") {
		return fmt.Errorf("name %q starts with '-'", s)
	}
	return nil
}

// keys returns the folded name and aliases of c.
func (c *Command) keys() []string {
	out := make([]string, 0, len(c.aliases)+1)
	out = append(out, fold(c.name))
	for _, a := range c.aliases {
		out = append(out, fold(a))
	}
	return out
}

// walk visits c and every descendant, depth first.
func (c *Command) walk(fn func(*Command)) {
	fn(c)
	for _, child := range c.children {
		child.walk(fn)
	}
}

// customTypes lists every non-primitive argument type used in c's tree.
func (c *Command) customTypes() []ArgType {
	var out []ArgType
	c.walk(func(n *Command) {
		for _, a := range n.args {
			if !a.Type.Primitive() {
				out = append(out, a.Type)
			}
		}
	})
	return out
}
