package cascade

import (
	"fmt"

	"github.com/AnatoleLucet/cascade/internal/invoke"
)

// User is a callback observing some properties of an instance. A user is
// identified by its pointer: using the same *User twice on an instance
// registers it once. One user may be used on many instances.
type User struct {
	deps []string
	fn   *invoke.Func
	err  error
}

// NewUser creates a user invoking fn with the values of deps, in order. fn
// takes one parameter per dependency and returns at most one value.
func NewUser(deps []string, fn any) *User {
	u := &User{deps: append([]string(nil), deps...)}

	compiled, err := invoke.New(fn, len(deps))
	if err != nil {
		u.err = fmt.Errorf("%w: user of %v: %w", ErrInvalidDefinition, deps, err)
		return u
	}
	u.fn = compiled

	return u
}

// Dependencies returns the properties u reads.
func (u *User) Dependencies() []string {
	return append([]string(nil), u.deps...)
}
