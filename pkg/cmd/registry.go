package cmd

import (
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// fold is the case-insensitive key for names and aliases.
func fold(s string) string {
	return folder.String(s)
}

// Registry owns compiled commands. Every name and alias, at any depth of
// any command tree, is unique across the registry. Registration is meant
// to happen at startup; lookups are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command // folded canonical name -> top-level command
	lookup   map[string]*Command // folded name or alias -> top-level command
	owners   map[string]*Command // folded name or alias at any depth -> owning command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: map[string]*Command{},
		lookup:   map[string]*Command{},
		owners:   map[string]*Command{},
	}
}

// Register adds a compiled top-level command.
func (r *Registry) Register(c *Command) error {
	if c.kind != KindCommand {
		return &RegistrationError{Reason: InvalidDefinition, Command: c.Path(), Detail: "subcommands are registered with their parent"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var conflict *RegistrationError
	c.walk(func(n *Command) {
		if conflict != nil {
			return
		}
		for i, key := range n.keys() {
			if _, taken := r.owners[key]; !taken {
				continue
			}
			reason := DuplicateAlias
			if i == 0 {
				reason = DuplicateName
			}
			conflict = &RegistrationError{Reason: reason, Command: n.Path(), Detail: key + " already registered by " + r.owners[key].Path()}
			return
		}
	})
	if conflict != nil {
		return conflict
	}
	// Unique across levels of the new tree as well.
	local := map[string]*Command{}
	c.walk(func(n *Command) {
		if conflict != nil {
			return
		}
		for _, key := range n.keys() {
			if prev, dup := local[key]; dup {
				conflict = &RegistrationError{Reason: DuplicateAlias, Command: n.Path(), Detail: key + " already used by " + prev.Path()}
				return
			}
			local[key] = n
		}
	})
	if conflict != nil {
		return conflict
	}

	for key, n := range local {
		r.owners[key] = n
	}
	r.commands[fold(c.name)] = c
	for _, key := range c.keys() {
		r.lookup[key] = c
	}
	return nil
}

// Unregister removes a top-level command, its aliases and its subcommand
// tree. It reports whether anything was removed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.lookup[fold(name)]
	if !ok {
		return false
	}
	c.walk(func(n *Command) {
		for _, key := range n.keys() {
			delete(r.owners, key)
		}
	})
	for _, key := range c.keys() {
		delete(r.lookup, key)
	}
	delete(r.commands, fold(c.name))
	return true
}

// Get returns the top-level command with the given name or alias.
func (r *Registry) Get(nameOrAlias string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.lookup[fold(nameOrAlias)]
	return c, ok
}

// GetAll returns all top-level commands, sorted by name.
func (r *Registry) GetAll() []*Command {
	r.mu.RLock()
	list := make([]*Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].name < list[j].name
	})
	return list
}

// Find resolves a space-separated path such as "role add".
func (r *Registry) Find(path string) (*Command, bool) {
	toks := Lex(path)
	texts := make([]string, len(toks))
	for i, t := range toks {
		texts[i] = t.Text
	}
	c, n := r.ResolveChain(texts)
	if c == nil || n != len(texts) {
		return nil, false
	}
	return c, true
}

// ResolveChain greedily descends from the top-level command named by
// tokens[0] through matching subcommands. It returns the deepest match and
// how many tokens were consumed; (nil, 0) when tokens[0] matches nothing.
// There is no backtracking.
func (r *Registry) ResolveChain(tokens []string) (*Command, int) {
	if len(tokens) == 0 {
		return nil, 0
	}
	c, ok := r.Get(tokens[0])
	if !ok {
		return nil, 0
	}
	n := 1
	for n < len(tokens) {
		child, ok := c.Subcommand(tokens[n])
		if !ok {
			break
		}
		c = child
		n++
	}
	return c, n
}

// Suggest returns the registered top-level name or alias closest to token
// within a small edit distance, or "".
func (r *Registry) Suggest(token string) string {
	token = fold(token)
	if token == "" {
		return ""
	}
	max := 2
	if len(token) <= 3 {
		max = 1
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	best, bestDist := "", max+1
	for key := range r.lookup {
		d := levenshtein.ComputeDistance(token, key)
		if d < bestDist || (d == bestDist && key < best) {
			best, bestDist = key, d
		}
	}
	if bestDist > max {
		return ""
	}
	return best
}
