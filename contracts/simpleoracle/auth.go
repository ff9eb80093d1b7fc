package simpleoracle

import (
	"fmt"

	"go.dedis.ch/oracle/core/access"
)

// AuthError is returned when a mutating message is not sent by the owner.
type AuthError struct {
	Owner  access.Address
	Caller access.Address
}

// Error implements error.
func (e *AuthError) Error() string {
	return fmt.Sprintf("unauthorized: owner is %s (msg sent from %s)", e.Owner, e.Caller)
}

// authorize returns nil if the caller is the owner, otherwise an *AuthError.
func authorize(caller, owner access.Address) error {
	if !caller.Equal(owner) {
		return &AuthError{Owner: owner, Caller: caller}
	}

	return nil
}
