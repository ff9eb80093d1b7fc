package simpleoracle

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/oracle/core/access"
)

func TestAuthorize(t *testing.T) {
	require.NoError(t, authorize("alice", "alice"))

	err := authorize("bob", "alice")
	require.Equal(t, &AuthError{Owner: "alice", Caller: "bob"}, err)
	require.EqualError(t, err, "unauthorized: owner is alice (msg sent from bob)")

	// Addresses are compared exactly.
	require.Error(t, authorize(access.Address("Alice"), "alice"))
}

func TestMigrationError_Error(t *testing.T) {
	err := &MigrationError{Kind: MigrationErrorKind(99)}
	require.EqualError(t, err, "migration failed")
	require.Nil(t, err.Unwrap())

	require.Equal(t, "version-parse", VersionParse.String())
	require.Equal(t, "name-mismatch", NameMismatch.String())
	require.Equal(t, "downgrade", Downgrade.String())
	require.Equal(t, "unknown", MigrationErrorKind(99).String())
}
