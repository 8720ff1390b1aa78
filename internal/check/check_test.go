package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker_AllPass(t *testing.T) {
	c := New("op")
	c.Expect(true, "never fails")
	c.Expect(1+1 == 2, "arithmetic works")

	assert.NoError(t, c.Err())
}

func TestChecker_FirstFailureWins(t *testing.T) {
	c := New("linear")
	c.Expect(true, "fine")
	c.Expect(false, "expected rank %d, got %d", 2, 1)
	c.Expect(false, "later failure must not overwrite")

	err := c.Err()
	assert.EqualError(t, err, "linear: expected rank 2, got 1")
}

func TestChecker_SkipsAfterFailure(t *testing.T) {
	c := New("op")
	c.Expect(false, "first")

	// Later Expect calls are recorded against an already-failed checker
	// and must not change the error.
	c.Expect(false, "second")
	assert.EqualError(t, c.Err(), "op: first")
}
