// Package check implements input validation for operator forward passes.
//
// Predicates are ordinary eagerly-evaluated boolean checks executed in
// sequence. The first failing predicate pins a descriptive error and all
// later checks are skipped, so an operator can run its whole validation
// block and then test Err() once before computing anything.
package check

import "fmt"

// Checker accumulates predicate checks for one operator invocation.
// The zero value is not usable; create one with New.
type Checker struct {
	op  string
	err error
}

// New creates a Checker for the named operator. The name prefixes every
// failure message.
func New(op string) *Checker {
	return &Checker{op: op}
}

// Expect records a predicate. If cond is false and no earlier predicate has
// failed, the formatted message becomes the checker's error.
func (c *Checker) Expect(cond bool, format string, args ...any) {
	if c.err != nil || cond {
		return
	}
	c.err = fmt.Errorf("%s: %s", c.op, fmt.Sprintf(format, args...))
}

// Err returns the first failure, or nil if every predicate held.
func (c *Checker) Err() error {
	return c.err
}
