package cmd

import (
	"sync"
	"time"
)

type cooldownKey struct {
	command string
	user    string
}

type cooldownEntry struct {
	last    time.Time     // last accepted invocation
	expires time.Time     // last + cooldown, for sweeping
	pending uint64        // non-zero while a reservation awaits guards
	period  time.Duration // cooldown of the pending reservation
}

// CooldownTable tracks the last accepted invocation per (command, user).
// Check-and-reserve is atomic per key, so two concurrent invocations by the
// same user cannot both pass.
//
// While one invocation holds a reservation and its guards are still running,
// a second invocation by the same user is rejected with the full period as
// its remaining time. That is an upper bound: if the guards then deny the
// first invocation, nothing is stamped and the next attempt is accepted.
type CooldownTable struct {
	mu      sync.Mutex
	entries map[cooldownKey]*cooldownEntry
	seq     uint64
}

// NewCooldownTable returns an empty table.
func NewCooldownTable() *CooldownTable {
	return &CooldownTable{entries: map[cooldownKey]*cooldownEntry{}}
}

// reserve checks the cooldown and, when clear, holds the key until commit
// or release. A key with a pending reservation counts as fully on cooldown.
func (t *CooldownTable) reserve(command, user string, period time.Duration, now time.Time) (uint64, time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := cooldownKey{command, user}
	e := t.entries[key]
	if e != nil {
		if e.pending != 0 {
			return 0, period, false
		}
		if !e.last.IsZero() {
			if elapsed := now.Sub(e.last); elapsed < period {
				return 0, period - elapsed, false
			}
		}
	} else {
		e = &cooldownEntry{}
		t.entries[key] = e
	}
	t.seq++
	e.pending = t.seq
	e.period = period
	return t.seq, 0, true
}

// commit stamps the reservation as the last accepted invocation.
func (t *CooldownTable) commit(command, user string, token uint64, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entries[cooldownKey{command, user}]
	if e == nil || e.pending != token {
		return
	}
	e.last = now
	e.expires = now.Add(e.period)
	e.pending = 0
}

// release drops a reservation without touching the previous stamp.
func (t *CooldownTable) release(command, user string, token uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := cooldownKey{command, user}
	e := t.entries[key]
	if e == nil || e.pending != token {
		return
	}
	e.pending = 0
	if e.last.IsZero() {
		delete(t.entries, key)
	}
}

// Remaining returns how long user must still wait before command may be
// accepted again, given its cooldown period.
func (t *CooldownTable) Remaining(command, user string, period time.Duration, now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entries[cooldownKey{command, user}]
	if e == nil || e.last.IsZero() {
		return 0
	}
	if elapsed := now.Sub(e.last); elapsed < period {
		return period - elapsed
	}
	return 0
}

// Sweep removes records whose cooldown has expired and returns how many
// were removed. Records with a pending reservation are kept.
func (t *CooldownTable) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for key, e := range t.entries {
		if e.pending == 0 && !e.expires.After(now) {
			delete(t.entries, key)
			n++
		}
	}
	return n
}

// Len returns the number of tracked records.
func (t *CooldownTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
