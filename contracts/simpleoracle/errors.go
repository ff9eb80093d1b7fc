package simpleoracle

import (
	"fmt"
)

// MigrationErrorKind is the reason a migration is rejected.
type MigrationErrorKind int

const (
	// VersionParse means that one of the versions is not a semantic version.
	VersionParse MigrationErrorKind = iota

	// NameMismatch means that the instance runs the code of another contract.
	NameMismatch

	// Downgrade means that the instance runs a newer version of the code.
	Downgrade
)

// String implements fmt.Stringer.
func (k MigrationErrorKind) String() string {
	switch k {
	case VersionParse:
		return "version-parse"
	case NameMismatch:
		return "name-mismatch"
	case Downgrade:
		return "downgrade"
	default:
		return "unknown"
	}
}

// MigrationError is returned when the migration of an instance is rejected.
// The instance is left on its previous version.
type MigrationError struct {
	Kind MigrationErrorKind

	OldName    string
	OldVersion string
	NewName    string
	NewVersion string

	// Err is the parsing error of a VersionParse.
	Err error
}

// Error implements error.
func (e *MigrationError) Error() string {
	switch e.Kind {
	case VersionParse:
		return fmt.Sprintf("couldn't parse contract version: %v", e.Err)
	case NameMismatch:
		return fmt.Sprintf("mismatched contract migration name (from %s to %s)",
			e.OldName, e.NewName)
	case Downgrade:
		return fmt.Sprintf("cannot migrate contract from newer to older (from %s to %s)",
			e.OldVersion, e.NewVersion)
	default:
		return "migration failed"
	}
}

// Unwrap returns the parsing error, if any.
func (e *MigrationError) Unwrap() error {
	return e.Err
}
