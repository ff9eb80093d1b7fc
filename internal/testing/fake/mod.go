// Package fake provides fake implementations for interfaces commonly used in
// the repository.
// The implementations offer configuration to return errors when it is needed by
// the unit test.
package fake

import (
	"fmt"

	"golang.org/x/xerrors"
)

var fakeErr = xerrors.New("fake error")

// GetError returns the fake error.
func GetError() error {
	return fakeErr
}

// Err returns the message of the fake error prefixed by the given message, as
// it is formatted by the error wrappers of the module.
func Err(msg string) string {
	return fmt.Sprintf("%s: %v", msg, fakeErr)
}
