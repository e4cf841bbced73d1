// Package idgen mints fresh, collision-free label names for a single
// compilation.
//
// It is a trivial monotonic counter formatted as lowercase hexadecimal,
// held in a Generator value rather than in package-level state — there
// is no concurrency to guard against since a Compiler instance and
// its idgen.Generator are only ever driven by one goroutine at a time.
package idgen

import "strconv"

// Generator hands out unique hex-string labels, starting at 1.
type Generator struct {
	next uint64
}

// New returns a Generator whose first Get() call yields "1".
func New() *Generator {
	return &Generator{next: 1}
}

// Get returns the current counter value as lowercase hex and increments it.
func (g *Generator) Get() string {
	id := strconv.FormatUint(g.next, 16)
	g.next++
	return id
}

// Clear resets the counter back to 1.
func (g *Generator) Clear() {
	g.next = 1
}
