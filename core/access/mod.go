// Package access defines the identities of the callers and how a string is
// validated as an identity.
//
// The host authenticates the sender of a message before any contract runs, so
// an identity here is a plain address. Contracts only need to compare them and
// to validate the addresses provided in the messages.
package access

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"golang.org/x/xerrors"
)

// Address is the identity of a caller, or of an account stored by a contract.
type Address string

// String implements fmt.Stringer.
func (a Address) String() string {
	return string(a)
}

// Equal returns true when both addresses are exactly the same.
func (a Address) Equal(other Address) bool {
	return a == other
}

// Validator is the interface to turn a string into a well-formed address.
type Validator interface {
	// Validate returns the address if the string is well-formed, otherwise a
	// *ValidationError.
	Validate(addr string) (Address, error)
}

// ValidationError is returned when a string is not a well-formed address.
type ValidationError struct {
	Address string
	Reason  error
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid address '%s': %v", e.Address, e.Reason)
}

// Unwrap returns the reason of the failure.
func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// bech32Validator validates bech32 addresses of a given human-readable part.
//
// - implements access.Validator
type bech32Validator struct {
	prefix string
}

// NewBech32Validator returns a validator that accepts the bech32 addresses
// using the prefix as the human-readable part.
func NewBech32Validator(prefix string) Validator {
	return bech32Validator{
		prefix: prefix,
	}
}

// Validate implements access.Validator. Only the normalized (lowercase) form
// of an address is accepted.
func (v bech32Validator) Validate(addr string) (Address, error) {
	if addr == "" {
		return "", &ValidationError{Address: addr, Reason: xerrors.New("empty address")}
	}

	if strings.ToLower(addr) != addr {
		return "", &ValidationError{Address: addr, Reason: xerrors.New("address not normalized")}
	}

	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return "", &ValidationError{Address: addr, Reason: err}
	}

	if hrp != v.prefix {
		return "", &ValidationError{
			Address: addr,
			Reason:  xerrors.Errorf("wrong prefix '%s' != '%s'", hrp, v.prefix),
		}
	}

	if len(data) == 0 {
		return "", &ValidationError{Address: addr, Reason: xerrors.New("empty payload")}
	}

	return Address(addr), nil
}

// NewBech32Address encodes the raw bytes into a bech32 address with the
// prefix.
func NewBech32Address(prefix string, raw []byte) (Address, error) {
	conv, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", xerrors.Errorf("failed to convert bits: %v", err)
	}

	addr, err := bech32.Encode(prefix, conv)
	if err != nil {
		return "", xerrors.Errorf("failed to encode: %v", err)
	}

	return Address(addr), nil
}
