package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/oracle/cli/node"
	"go.dedis.ch/oracle/contracts/simpleoracle"
	"go.dedis.ch/oracle/core/access"
	"go.dedis.ch/oracle/core/execution/native"
	"go.dedis.ch/oracle/core/host"
	hostctl "go.dedis.ch/oracle/core/host/controller"
	kvctl "go.dedis.ch/oracle/core/store/kv/controller"
	"go.dedis.ch/oracle/internal/testing/fake"
)

func TestController_SetCommands(t *testing.T) {
	builder := node.NewBuilder("test")

	NewController().SetCommands(builder)
}

func TestController_OnStart(t *testing.T) {
	inj := node.NewInjector()
	ctrl := NewController()

	err := ctrl.OnStart(node.FlagSet{}, inj)
	require.EqualError(t, err,
		"failed to resolve native service: couldn't find dependency for '*native.Service'")

	exec := native.NewExecution()
	inj.Inject(exec)

	err = ctrl.OnStart(node.FlagSet{}, inj)
	require.EqualError(t, err,
		"failed to resolve validator: couldn't find dependency for 'access.Validator'")

	inj.Inject(fake.Validator{})

	err = ctrl.OnStart(node.FlagSet{}, inj)
	require.NoError(t, err)

	_, err = exec.Get(simpleoracle.ContractName)
	require.NoError(t, err)

	require.NoError(t, ctrl.OnStop(inj))
}

func TestController_OnStart_Proxy(t *testing.T) {
	inj := node.NewInjector()
	inj.Inject(native.NewExecution())
	inj.Inject(fake.Validator{})

	p := &fakeProxy{}
	inj.Inject(p)

	err := NewController().OnStart(node.FlagSet{}, inj)
	require.EqualError(t, err,
		"failed to resolve host: couldn't find dependency for '*host.Host'")

	inj = node.NewInjector()
	inj.Inject(native.NewExecution())
	inj.Inject(fake.Validator{})
	inj.Inject(p)
	inj.Inject(host.New(nil, nil))

	err = NewController().OnStart(node.FlagSet{}, inj)
	require.NoError(t, err)
	require.Equal(t, []string{RoutePrefix}, p.paths)
}

func TestOracle_Commands(t *testing.T) {
	dir := t.TempDir()

	alice := makeAddress(t, "alice")
	bob := makeAddress(t, "bob")

	_, err := runApp(t, dir, "init", "--chain-id", "test-1")
	require.NoError(t, err)

	out, err := runApp(t, dir, "oracle", "instantiate", "--sender", alice, "--admin", alice)
	require.NoError(t, err)

	res := decodeResult(t, out)
	require.Len(t, res.Events, 1)
	require.Equal(t, simpleoracle.EventInstantiation, res.Events[0].Type)

	out, err = runApp(t, dir, "oracle", "query", "owner")
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("%q\n", alice), out)

	_, err = runApp(t, dir, "oracle", "query", "price")
	require.EqualError(t, err, "command error: failed to query: failed to query price: price not found")

	_, err = runApp(t, dir, "oracle", "set-price", "--sender", alice, "--value", "1.23")
	require.NoError(t, err)

	_, err = runApp(t, dir, "block", "next")
	require.NoError(t, err)

	_, err = runApp(t, dir, "oracle", "set-price", "--sender", alice, "--value", "1.5",
		"--timestamp", "1000")
	require.NoError(t, err)

	out, err = runApp(t, dir, "oracle", "query", "price")
	require.NoError(t, err)

	var price simpleoracle.Price
	require.NoError(t, json.Unmarshal([]byte(out), &price))
	require.Equal(t, "1.5", price.Value.String())
	require.Equal(t, uint64(2), price.BlockInfo.Height)
	require.Equal(t, "test-1", price.BlockInfo.ChainID)
	require.Equal(t, "1000", price.Timestamp.String())

	_, err = runApp(t, dir, "oracle", "set-owner", "--sender", alice, "--owner", bob)
	require.NoError(t, err)

	_, err = runApp(t, dir, "oracle", "set-price", "--sender", alice, "--value", "2")
	require.EqualError(t, err, fmt.Sprintf("command error: failed to execute: "+
		"unauthorized: owner is %s (msg sent from %s)", bob, alice))

	out, err = runApp(t, dir, "oracle", "migrate", "--sender", alice)
	require.NoError(t, err)
	require.Equal(t, simpleoracle.EventMigration, decodeResult(t, out).Events[0].Type)

	_, err = runApp(t, dir, "oracle", "migrate", "--sender", bob)
	require.EqualError(t, err, fmt.Sprintf("command error: failed to migrate: "+
		"sender %s is not the admin %s", bob, alice))
}

func TestOracle_Commands_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	alice := makeAddress(t, "alice")

	_, err := runApp(t, dir, "oracle", "instantiate", "--sender", "nope")
	require.Error(t, err)
	require.Regexp(t, "^command error: invalid sender: invalid address 'nope'", err.Error())

	_, err = runApp(t, dir, "oracle", "instantiate", "--sender", alice, "--admin", "NOPE")
	require.EqualError(t, err,
		"command error: invalid admin: invalid address 'NOPE': address not normalized")

	_, err = runApp(t, dir, "oracle", "instantiate", "--sender", alice, "--owner", "nope")
	require.Error(t, err)
	require.Regexp(t, "^command error: failed to instantiate: failed to validate owner: ",
		err.Error())

	_, err = runApp(t, dir, "oracle", "set-price", "--sender", alice, "--value", "abc")
	require.EqualError(t, err,
		"command error: invalid value: invalid decimal 'abc': unexpected character")

	_, err = runApp(t, dir, "oracle", "set-price", "--sender", alice, "--value", "1",
		"--timestamp", "-1")
	require.Error(t, err)
	require.Regexp(t, "^command error: invalid timestamp: ", err.Error())

	_, err = runApp(t, dir, "oracle", "set-price", "--sender", alice, "--value", "1")
	require.EqualError(t, err, "command error: failed to execute: instance oracle not found")

	_, err = runApp(t, dir, "oracle", "set-price", "--value", "1")
	require.EqualError(t, err, `Required flag "sender" not set`)
}

func TestActions_NoHost(t *testing.T) {
	ctx := node.Context{
		Injector: node.NewInjector(),
		Flags:    node.FlagSet{"value": "1"},
		Out:      new(bytes.Buffer),
	}

	for _, action := range []node.ActionTemplate{
		instantiateAction{},
		setOwnerAction{},
		setPriceAction{},
		migrateAction{},
		queryAction{msg: simpleoracle.NewOwnerQuery()},
	} {
		err := action.Execute(ctx)
		require.EqualError(t, err, "failed to resolve host: couldn't find dependency for '*host.Host'")
	}

	ctx.Injector.Inject(host.New(nil, nil))

	err := setOwnerAction{}.Execute(ctx)
	require.EqualError(t, err,
		"failed to resolve validator: couldn't find dependency for 'access.Validator'")
}

// -----------------------------------------------------------------------------
// Utility functions

func runApp(t *testing.T, dir string, args ...string) (string, error) {
	out := new(bytes.Buffer)

	builder := node.NewBuilderWithCfg("test", nil, out,
		kvctl.NewMinimal(),
		hostctl.NewController(),
		NewController(),
	)

	err := builder.Build().Run(append([]string{"test", "--config", dir}, args...))

	return out.String(), err
}

func makeAddress(t *testing.T, seed string) string {
	addr, err := access.NewBech32Address(hostctl.DefaultPrefix, []byte(seed))
	require.NoError(t, err)

	return addr.String()
}

func decodeResult(t *testing.T, out string) host.Result {
	var res host.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	return res
}
