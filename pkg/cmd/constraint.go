package cmd

import (
	"context"
	"time"
)

// Evaluator checks a command's constraints in a fixed order and owns the
// cooldown table. The first failing check wins.
type Evaluator struct {
	cooldowns *CooldownTable
	now       func() time.Time
}

// NewEvaluator returns an evaluator using the given clock; nil means time.Now.
func NewEvaluator(now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{cooldowns: NewCooldownTable(), now: now}
}

// Cooldowns exposes the table for sweeping and inspection.
func (e *Evaluator) Cooldowns() *CooldownTable { return e.cooldowns }

// Evaluate runs, in order: authorization level, environment, issuer then
// self permissions, allow-list, cooldown, guards. When every check passes
// and the command has a cooldown, the invocation is stamped as accepted.
// A rejected invocation never refreshes the stamp.
func (e *Evaluator) Evaluate(ctx context.Context, c *Command, inv *Invocation) error {
	cons := &c.constraints
	path := c.Path()

	if inv.AuthLevel < cons.AuthLevel {
		return &ConstraintViolation{Kind: ViolationAuth, Command: path, Required: cons.AuthLevel, Actual: inv.AuthLevel}
	}

	switch {
	case cons.Environment == GuildOnly && inv.Surface != SurfaceGuild,
		cons.Environment == DMOnly && inv.Surface != SurfaceDirect:
		return &ConstraintViolation{Kind: ViolationEnvironment, Command: path, Environment: cons.Environment}
	}

	if missing := missingFrom(cons.IssuerPermissions, inv.IssuerPermissions); len(missing) > 0 {
		return &ConstraintViolation{Kind: ViolationPermission, Command: path, Missing: missing}
	}
	if missing := missingFrom(cons.SelfPermissions, inv.SelfPermissions); len(missing) > 0 {
		return &ConstraintViolation{Kind: ViolationPermission, Command: path, Missing: missing, Self: true}
	}

	if len(cons.Specific) > 0 && !allowed(cons.Specific, inv) {
		return &ConstraintViolation{Kind: ViolationSpecificList, Command: path}
	}

	if cons.Cooldown > 0 {
		token, remaining, ok := e.cooldowns.reserve(path, inv.UserID, cons.Cooldown, e.now())
		if !ok {
			return &ConstraintViolation{Kind: ViolationCooldown, Command: path, Remaining: remaining}
		}
		if i, ok := runGuards(ctx, cons.Guards, inv, c); !ok {
			e.cooldowns.release(path, inv.UserID, token)
			return &ConstraintViolation{Kind: ViolationGuard, Command: path, Index: i}
		}
		e.cooldowns.commit(path, inv.UserID, token, e.now())
		return nil
	}

	if i, ok := runGuards(ctx, cons.Guards, inv, c); !ok {
		return &ConstraintViolation{Kind: ViolationGuard, Command: path, Index: i}
	}
	return nil
}

// runGuards returns the index of the first denying guard. A panicking guard
// denies.
func runGuards(ctx context.Context, guards []Guard, inv *Invocation, c *Command) (int, bool) {
	for i, g := range guards {
		if !callGuard(ctx, g, inv, c) {
			return i, false
		}
	}
	return 0, true
}

func callGuard(ctx context.Context, g Guard, inv *Invocation, c *Command) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return g(ctx, inv, c)
}

// missingFrom returns the entries of required absent from actual.
func missingFrom(required, actual []string) []string {
	if len(required) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(actual))
	for _, p := range actual {
		have[p] = struct{}{}
	}
	var missing []string
	for _, p := range required {
		if _, ok := have[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}

func allowed(specific []string, inv *Invocation) bool {
	for _, id := range specific {
		if id == inv.UserID {
			return true
		}
		for _, g := range inv.Groups {
			if id == g {
				return true
			}
		}
	}
	return false
}
