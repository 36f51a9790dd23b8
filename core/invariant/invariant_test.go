package invariant_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aledsdavies/ecsgen/core/invariant"
)

func panicMessage(t *testing.T, fn func()) (msg string) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		msg = fmt.Sprintf("%v", r)
	}()
	fn()
	return ""
}

func TestPassingChecksDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		invariant.Precondition(true, "ok")
		invariant.Postcondition(true, "ok")
		invariant.Invariant(true, "ok")
		invariant.NotNil(&struct{}{}, "node")
		invariant.InRange(5, 0, 5, "depth")
	})
}

func TestPreconditionFail(t *testing.T) {
	msg := panicMessage(t, func() {
		invariant.Precondition(false, "system %q must be named", "")
	})
	assert.Contains(t, msg, "PRECONDITION VIOLATION")
	assert.Contains(t, msg, `system "" must be named`)
	assert.Contains(t, msg, "at ")
}

func TestInvariantFail(t *testing.T) {
	msg := panicMessage(t, func() {
		invariant.Invariant(false, "child depth %d", 3)
	})
	assert.Contains(t, msg, "INVARIANT VIOLATION: child depth 3")
}

func TestPostconditionFail(t *testing.T) {
	msg := panicMessage(t, func() {
		invariant.Postcondition(false, "registry drained")
	})
	assert.Contains(t, msg, "POSTCONDITION VIOLATION")
}

func TestNotNilTypedNil(t *testing.T) {
	var p *int
	msg := panicMessage(t, func() {
		invariant.NotNil(p, "arena")
	})
	assert.Contains(t, msg, "arena must not be nil")

	msg = panicMessage(t, func() {
		invariant.NotNil(nil, "method")
	})
	assert.Contains(t, msg, "method must not be nil")
}

func TestInRangeFail(t *testing.T) {
	msg := panicMessage(t, func() {
		invariant.InRange(6, 0, 5, "depth")
	})
	assert.Contains(t, msg, "depth must be in range [0, 5], got 6")
}
