package build

import "github.com/google/uuid"

// NewSessionID returns a fresh identifier for one build invocation.
// Ninja rule names and the lock's held-by metadata are both namespaced
// with it, so two `ditto compile` invocations racing over the same
// build directory never collide on a rule name or leave an ambiguous
// lock-held message behind.
func NewSessionID() string {
	return uuid.NewString()
}
