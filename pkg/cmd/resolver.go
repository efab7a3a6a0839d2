package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// TypeRegistry holds custom argument type resolvers. It is safe for
// concurrent use.
type TypeRegistry struct {
	mu        sync.RWMutex
	resolvers map[ArgType]TypeResolver
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{resolvers: map[ArgType]TypeResolver{}}
}

// Register binds id to r, replacing any previous binding. Primitive type
// names cannot be overridden.
func (t *TypeRegistry) Register(id ArgType, r TypeResolver) error {
	if id == "" || r == nil {
		return fmt.Errorf("argument type: empty identifier or nil resolver")
	}
	if id.Primitive() {
		return fmt.Errorf("argument type %q is built in", id)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resolvers[id] = r
	return nil
}

// Lookup returns the resolver bound to id.
func (t *TypeRegistry) Lookup(id ArgType) (TypeResolver, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.resolvers[id]
	return r, ok
}

// Has reports whether id is a primitive or a registered custom type.
func (t *TypeRegistry) Has(id ArgType) bool {
	if id.Primitive() {
		return true
	}
	_, ok := t.Lookup(id)
	return ok
}

// Resolve binds tokens to schema in declaration order: a flag supplied for
// the argument wins, otherwise the next positional token is used, otherwise
// the default or Absent. The first failure discards everything bound so far.
// With singleArg the final argument receives every remaining positional
// token joined by single spaces. Extra positional tokens are ignored.
func (t *TypeRegistry) Resolve(ctx context.Context, toks Tokens, schema []Argument, singleArg bool, inv *Invocation) (Args, error) {
	args := make(Args, len(schema))
	next := 0
	for i, arg := range schema {
		if flag, ok := toks.Flags[arg.Name]; ok {
			v, err := t.convertFlag(ctx, arg, flag, inv)
			if err != nil {
				return nil, err
			}
			args[arg.Name] = v
			continue
		}

		if next >= len(toks.Positional) {
			v, err := fillMissing(ctx, arg, inv)
			if err != nil {
				return nil, err
			}
			args[arg.Name] = v
			continue
		}

		raw := toks.Positional[next]
		next++
		if singleArg && i == len(schema)-1 {
			raw = strings.Join(toks.Positional[next-1:], " ")
			next = len(toks.Positional)
		}
		v, err := t.convert(ctx, arg, raw, inv)
		if err != nil {
			return nil, err
		}
		args[arg.Name] = v
	}
	return args, nil
}

func fillMissing(ctx context.Context, arg Argument, inv *Invocation) (any, error) {
	switch {
	case arg.Required:
		return nil, &MissingArgumentError{Name: arg.Name}
	case arg.DefaultFunc != nil:
		v, err := arg.DefaultFunc(ctx, inv)
		if err != nil {
			return nil, &ArgumentResolutionError{Name: arg.Name, Err: err}
		}
		return v, nil
	case arg.Default != nil:
		return arg.Default, nil
	default:
		return Absent, nil
	}
}

func (t *TypeRegistry) convertFlag(ctx context.Context, arg Argument, flag Flag, inv *Invocation) (any, error) {
	if arg.Type == TypeBoolean {
		if !flag.Explicit {
			return true, nil
		}
		b, ok := parseBool(flag.Value)
		if !ok {
			return nil, &ArgumentTypeError{Name: arg.Name, Expected: TypeBoolean, Received: flag.Value}
		}
		return b, nil
	}
	if !flag.Explicit {
		return nil, &ArgumentTypeError{Name: arg.Name, Expected: arg.Type, Received: flag.Raw}
	}
	return t.convert(ctx, arg, flag.Value, inv)
}

func (t *TypeRegistry) convert(ctx context.Context, arg Argument, raw string, inv *Invocation) (any, error) {
	switch arg.Type {
	case TypeString, "":
		return raw, nil
	case TypeInteger, TypeUnsignedInteger, TypeNonZeroInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil ||
			(arg.Type == TypeUnsignedInteger && n < 0) ||
			(arg.Type == TypeNonZeroInteger && n == 0) {
			return nil, &ArgumentTypeError{Name: arg.Name, Expected: arg.Type, Received: raw}
		}
		return n, nil
	case TypeBoolean:
		b, ok := parseBool(raw)
		if !ok {
			return nil, &ArgumentTypeError{Name: arg.Name, Expected: TypeBoolean, Received: raw}
		}
		return b, nil
	}

	r, ok := t.Lookup(arg.Type)
	if !ok {
		return nil, &ArgumentResolutionError{Name: arg.Name, Token: raw, Err: fmt.Errorf("no resolver for type %q", arg.Type)}
	}
	v, err := r(ctx, raw, inv)
	if err == nil && v == nil {
		err = ErrNotFound
	}
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("%s: %w", arg.Type, err)
		}
		return nil, &ArgumentResolutionError{Name: arg.Name, Token: raw, Err: err}
	}
	return v, nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// TypeState is registered on every Dispatcher and resolves with ResolveState.
const TypeState ArgType = "state"

// ResolveState is a ready-made custom type for on/off style switches.
func ResolveState(_ context.Context, token string, _ *Invocation) (any, error) {
	switch strings.ToLower(token) {
	case "on", "yes", "enable", "enabled", "true", "1":
		return true, nil
	case "off", "no", "disable", "disabled", "false", "0":
		return false, nil
	}
	return nil, ErrNotFound
}
