package fake

import (
	"strings"

	"go.dedis.ch/oracle/core/access"
)

// Validator is a fake address validator. It accepts any non-empty lowercase
// string, unless an error is set.
//
// - implements access.Validator
type Validator struct {
	Err error
}

// NewBadValidator returns a validator that always fails.
func NewBadValidator() Validator {
	return Validator{Err: fakeErr}
}

// Validate implements access.Validator.
func (v Validator) Validate(addr string) (access.Address, error) {
	if v.Err != nil {
		return "", &access.ValidationError{Address: addr, Reason: v.Err}
	}

	if addr == "" || strings.ToLower(addr) != addr {
		return "", &access.ValidationError{Address: addr, Reason: fakeErr}
	}

	return access.Address(addr), nil
}
