package simpleoracle_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/oracle/contracts/simpleoracle"
	"go.dedis.ch/oracle/core/access"
	"go.dedis.ch/oracle/core/decimal"
	"go.dedis.ch/oracle/core/execution"
	"go.dedis.ch/oracle/core/execution/native"
	"go.dedis.ch/oracle/core/host"
	"go.dedis.ch/oracle/core/store"
	"go.dedis.ch/oracle/core/store/mem"
	"go.dedis.ch/oracle/core/version"
	"golang.org/x/xerrors"
)

const (
	prefix = "oracle"
	label  = "oracle"

	// Code names under which the versions of the contract are registered.
	codeV1    = "simpleoracle-v1"
	codeV2    = "simpleoracle-v2"
	codeV0    = "simpleoracle-v0"
	codeOther = "other"
)

func TestOracle_Scenario(t *testing.T) {
	h, alice, bob := makeHost(t)

	res, err := h.Instantiate(codeV1, label, alice, alice, []byte(`{"owner":null}`))
	require.NoError(t, err)
	require.Len(t, res.Events, 1)

	owner := queryOwner(t, h)
	require.Equal(t, alice, owner)

	_, err = h.Query(label, []byte(`{"price":{}}`))
	require.Regexp(t, "price not found$", err.Error())

	// The owner publishes a price.
	res, err = h.Execute(label, alice, encode(t, simpleoracle.NewSetPrice(decimal.MustParse("1.23"), nil)))
	require.NoError(t, err)

	price := queryPrice(t, h)
	require.Equal(t, "1.23", price.Value.String())
	require.Equal(t, res.Block, price.BlockInfo)
	require.Nil(t, price.Timestamp)

	// The ownership is handed over.
	_, err = h.Execute(label, alice, encode(t, simpleoracle.NewSetOwner(bob.String())))
	require.NoError(t, err)
	require.Equal(t, bob, queryOwner(t, h))

	_, err = h.Execute(label, alice, encode(t, simpleoracle.NewSetPrice(decimal.MustParse("9"), nil)))
	require.EqualError(t, err, fmt.Sprintf("failed to execute: unauthorized: owner is %s (msg sent from %s)",
		bob, alice))

	var aerr *simpleoracle.AuthError
	require.True(t, xerrors.As(err, &aerr))
	require.Equal(t, bob, aerr.Owner)
	require.Equal(t, alice, aerr.Caller)

	// The rejected message did not change the price.
	require.Equal(t, "1.23", queryPrice(t, h).Value.String())

	_, err = h.Execute(label, bob, encode(t, simpleoracle.NewSetPrice(decimal.MustParse("2.5"), nil)))
	require.NoError(t, err)
	require.Equal(t, "2.5", queryPrice(t, h).Value.String())
}

func TestOracle_ExplicitOwner(t *testing.T) {
	h, alice, bob := makeHost(t)

	msg := fmt.Sprintf(`{"owner":"%s"}`, bob)

	_, err := h.Instantiate(codeV1, label, alice, "", []byte(msg))
	require.NoError(t, err)
	require.Equal(t, bob, queryOwner(t, h))

	_, err = h.Execute(label, alice, encode(t, simpleoracle.NewSetOwner(alice.String())))
	require.Error(t, err)

	var aerr *simpleoracle.AuthError
	require.True(t, xerrors.As(err, &aerr))
}

func TestOracle_InvalidOwner(t *testing.T) {
	h, alice, _ := makeHost(t)

	_, err := h.Instantiate(codeV1, label, alice, "", []byte(`{"owner":"cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu"}`))
	require.Error(t, err)

	var verr *access.ValidationError
	require.True(t, xerrors.As(err, &verr))

	// Nothing is created.
	_, err = h.Instance(label)
	var nf store.NotFoundError
	require.True(t, xerrors.As(err, &nf))

	_, err = h.Instantiate(codeV1, label, alice, "", []byte(`{}`))
	require.NoError(t, err)

	_, err = h.Execute(label, alice, encode(t, simpleoracle.NewSetOwner(alice.String()+"x")))
	require.True(t, xerrors.As(err, &verr))
	require.Equal(t, alice, queryOwner(t, h))
}

func TestOracle_BlockInfo(t *testing.T) {
	h, alice, _ := makeHost(t)

	_, err := h.Instantiate(codeV1, label, alice, "", nil)
	require.Regexp(t, "^failed to instantiate: invalid instantiate message", err.Error())

	_, err = h.Instantiate(codeV1, label, alice, "", []byte(`{}`))
	require.NoError(t, err)

	_, err = h.Execute(label, alice, encode(t, simpleoracle.NewSetPrice(decimal.MustParse("1"), nil)))
	require.NoError(t, err)

	first := queryPrice(t, h)

	// Same block, same block info.
	_, err = h.Execute(label, alice, encode(t, simpleoracle.NewSetPrice(decimal.MustParse("2"), nil)))
	require.NoError(t, err)

	second := queryPrice(t, h)
	require.Equal(t, "2", second.Value.String())
	require.Equal(t, first.BlockInfo, second.BlockInfo)

	_, err = h.NextBlock(1, 5*time.Second)
	require.NoError(t, err)

	_, err = h.Execute(label, alice, encode(t, simpleoracle.NewSetPrice(decimal.MustParse("3"), nil)))
	require.NoError(t, err)

	third := queryPrice(t, h)
	require.Equal(t, first.BlockInfo.Height+1, third.BlockInfo.Height)
	require.Equal(t, first.BlockInfo.Time.PlusSeconds(5), third.BlockInfo.Time)
	require.Equal(t, first.BlockInfo.ChainID, third.BlockInfo.ChainID)
}

func TestOracle_Timestamp(t *testing.T) {
	h, alice, _ := makeHost(t)

	_, err := h.Instantiate(codeV1, label, alice, "", []byte(`{}`))
	require.NoError(t, err)

	block, err := h.Block()
	require.NoError(t, err)

	for _, ts := range []execution.Timestamp{
		block.Time.MinusHours(24),
		block.Time,
		block.Time.PlusHours(1),
		0,
	} {
		ts := ts

		_, err = h.Execute(label, alice, encode(t, simpleoracle.NewSetPrice(decimal.MustParse("4.2"), &ts)))
		require.NoError(t, err)

		price := queryPrice(t, h)
		require.NotNil(t, price.Timestamp)
		require.Equal(t, ts, *price.Timestamp)
		require.Equal(t, block, price.BlockInfo)
	}

	// Setting a price without timestamp clears the previous one.
	_, err = h.Execute(label, alice, encode(t, simpleoracle.NewSetPrice(decimal.MustParse("4.2"), nil)))
	require.NoError(t, err)
	require.Nil(t, queryPrice(t, h).Timestamp)
}

func TestOracle_Migrate(t *testing.T) {
	h, alice, bob := makeHost(t)

	_, err := h.Instantiate(codeV1, label, alice, alice, []byte(`{}`))
	require.NoError(t, err)

	_, err = h.Execute(label, alice, encode(t, simpleoracle.NewSetPrice(decimal.MustParse("1.5"), nil)))
	require.NoError(t, err)

	// Same code and version.
	_, err = h.Migrate(label, alice, codeV1, []byte(`{}`))
	require.NoError(t, err)

	_, err = h.Migrate(label, bob, codeV2, []byte(`{}`))
	require.EqualError(t, err, fmt.Sprintf("failed to migrate: sender %s is not the admin %s", bob, alice))

	res, err := h.Migrate(label, alice, codeV2, []byte(`{}`))
	require.NoError(t, err)

	value, found := res.Events[0].Get("new_contract_version")
	require.True(t, found)
	require.Equal(t, "0.2.0", value)

	inst, err := h.Instance(label)
	require.NoError(t, err)
	require.Equal(t, codeV2, inst.Code)

	// The state survives the migration.
	require.Equal(t, alice, queryOwner(t, h))
	require.Equal(t, "1.5", queryPrice(t, h).Value.String())

	_, err = h.Migrate(label, alice, codeV0, nil)
	require.EqualError(t, err,
		"failed to migrate: cannot migrate contract from newer to older (from 0.2.0 to 0.0.1)")

	var merr *simpleoracle.MigrationError
	require.True(t, xerrors.As(err, &merr))
	require.Equal(t, simpleoracle.Downgrade, merr.Kind)

	inst, err = h.Instance(label)
	require.NoError(t, err)
	require.Equal(t, codeV2, inst.Code)
}

func TestOracle_Migrate_NameMismatch(t *testing.T) {
	h, alice, _ := makeHost(t)

	_, err := h.Instantiate(codeOther, label, alice, alice, nil)
	require.NoError(t, err)

	_, err = h.Migrate(label, alice, codeV2, nil)
	require.EqualError(t, err, "failed to migrate: mismatched contract migration name (from crates.io:other to "+
		simpleoracle.ContractName+")")

	var merr *simpleoracle.MigrationError
	require.True(t, xerrors.As(err, &merr))
	require.Equal(t, simpleoracle.NameMismatch, merr.Kind)

	inst, err := h.Instance(label)
	require.NoError(t, err)
	require.Equal(t, codeOther, inst.Code)
}

func TestOracle_Migrate_NoAdmin(t *testing.T) {
	h, alice, _ := makeHost(t)

	_, err := h.Instantiate(codeV1, label, alice, "", []byte(`{}`))
	require.NoError(t, err)

	_, err = h.Migrate(label, alice, codeV2, nil)
	require.EqualError(t, err, fmt.Sprintf("failed to migrate: instance '%s' has no admin", label))
}

// -----------------------------------------------------------------------------
// Utility functions

func makeHost(t *testing.T) (*host.Host, access.Address, access.Address) {
	validator := access.NewBech32Validator(prefix)

	exec := native.NewExecution()
	simpleoracle.RegisterContract(exec, simpleoracle.NewContract(validator))
	exec.Set(codeV1, simpleoracle.NewContract(validator))
	exec.Set(codeV2, simpleoracle.NewContract(validator, simpleoracle.WithVersion("0.2.0")))
	exec.Set(codeV0, simpleoracle.NewContract(validator, simpleoracle.WithVersion("0.0.1")))
	exec.Set(codeOther, otherContract{})

	alice, err := access.NewBech32Address(prefix, []byte("alice-address-000000"))
	require.NoError(t, err)

	bob, err := access.NewBech32Address(prefix, []byte("bob-address-00000000"))
	require.NoError(t, err)

	return host.New(mem.NewStore(), exec), alice, bob
}

func encode(t *testing.T, msg interface{}) []byte {
	data, err := simpleoracle.Encode(msg)
	require.NoError(t, err)

	return data
}

func queryOwner(t *testing.T, h *host.Host) access.Address {
	data, err := h.Query(label, encode(t, simpleoracle.NewOwnerQuery()))
	require.NoError(t, err)

	var owner access.Address
	require.NoError(t, json.Unmarshal(data, &owner))

	return owner
}

func queryPrice(t *testing.T, h *host.Host) simpleoracle.Price {
	data, err := h.Query(label, encode(t, simpleoracle.NewPriceQuery()))
	require.NoError(t, err)

	var price simpleoracle.Price
	require.NoError(t, json.Unmarshal(data, &price))

	return price
}

// otherContract is a contract of another name that can only be instantiated.
//
// - implements native.Contract
type otherContract struct{}

func (otherContract) Instantiate(snap store.Snapshot, _ execution.Env,
	_ execution.MessageInfo, _ []byte) (execution.Response, error) {

	return execution.NewResponse(), version.Set(snap, "crates.io:other", "1.0.0")
}

func (otherContract) Execute(store.Snapshot, execution.Env, execution.MessageInfo,
	[]byte) (execution.Response, error) {

	return execution.Response{}, xerrors.New("not supported")
}

func (otherContract) Query(store.Readable, execution.Env, []byte) ([]byte, error) {
	return nil, xerrors.New("not supported")
}

func (otherContract) Migrate(store.Snapshot, execution.Env, []byte) (execution.Response, error) {
	return execution.Response{}, xerrors.New("not supported")
}
