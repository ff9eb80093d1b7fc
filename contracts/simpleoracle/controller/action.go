package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"go.dedis.ch/oracle/cli/node"
	"go.dedis.ch/oracle/contracts/simpleoracle"
	"go.dedis.ch/oracle/core/access"
	"go.dedis.ch/oracle/core/decimal"
	"go.dedis.ch/oracle/core/execution"
	"go.dedis.ch/oracle/core/host"
	"golang.org/x/xerrors"
)

// instantiateAction is an action to create an instance of the oracle.
//
// - implements node.ActionTemplate
type instantiateAction struct{}

// Execute implements node.ActionTemplate.
func (instantiateAction) Execute(ctx node.Context) error {
	env, err := resolveEnv(ctx)
	if err != nil {
		return err
	}

	var admin access.Address

	if ctx.Flags.String("admin") != "" {
		admin, err = env.validator.Validate(ctx.Flags.String("admin"))
		if err != nil {
			return xerrors.Errorf("invalid admin: %v", err)
		}
	}

	msg := simpleoracle.InstantiateMsg{}

	owner := ctx.Flags.String("owner")
	if owner != "" {
		msg.Owner = &owner
	}

	data, err := simpleoracle.Encode(msg)
	if err != nil {
		return err
	}

	res, err := env.host.Instantiate(simpleoracle.ContractName, env.label, env.sender, admin, data)
	if err != nil {
		return err
	}

	return printJSON(ctx.Out, res)
}

// setOwnerAction is an action to change the owner of an instance.
//
// - implements node.ActionTemplate
type setOwnerAction struct{}

// Execute implements node.ActionTemplate.
func (setOwnerAction) Execute(ctx node.Context) error {
	env, err := resolveEnv(ctx)
	if err != nil {
		return err
	}

	return env.execute(ctx.Out, simpleoracle.NewSetOwner(ctx.Flags.String("owner")))
}

// setPriceAction is an action to publish a price.
//
// - implements node.ActionTemplate
type setPriceAction struct{}

// Execute implements node.ActionTemplate.
func (setPriceAction) Execute(ctx node.Context) error {
	value, err := decimal.Parse(ctx.Flags.String("value"))
	if err != nil {
		return xerrors.Errorf("invalid value: %v", err)
	}

	var ts *execution.Timestamp

	if ctx.Flags.String("timestamp") != "" {
		nanos, err := strconv.ParseUint(ctx.Flags.String("timestamp"), 10, 64)
		if err != nil {
			return xerrors.Errorf("invalid timestamp: %v", err)
		}

		t := execution.Timestamp(nanos)
		ts = &t
	}

	env, err := resolveEnv(ctx)
	if err != nil {
		return err
	}

	return env.execute(ctx.Out, simpleoracle.NewSetPrice(value, ts))
}

// migrateAction is an action to migrate an instance to the code of this
// binary.
//
// - implements node.ActionTemplate
type migrateAction struct{}

// Execute implements node.ActionTemplate.
func (migrateAction) Execute(ctx node.Context) error {
	env, err := resolveEnv(ctx)
	if err != nil {
		return err
	}

	data, err := simpleoracle.Encode(simpleoracle.MigrateMsg{})
	if err != nil {
		return err
	}

	res, err := env.host.Migrate(env.label, env.sender, simpleoracle.ContractName, data)
	if err != nil {
		return err
	}

	return printJSON(ctx.Out, res)
}

// queryAction is an action to print the answer of a query.
//
// - implements node.ActionTemplate
type queryAction struct {
	msg simpleoracle.QueryMsg
}

// Execute implements node.ActionTemplate.
func (a queryAction) Execute(ctx node.Context) error {
	var h *host.Host
	err := ctx.Injector.Resolve(&h)
	if err != nil {
		return xerrors.Errorf("failed to resolve host: %v", err)
	}

	data, err := simpleoracle.Encode(a.msg)
	if err != nil {
		return err
	}

	res, err := h.Query(ctx.Flags.String("label"), data)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Out, string(res))

	return nil
}

// actionEnv is what the mutating actions need: the host, the authenticated
// sender and the instance.
type actionEnv struct {
	host      *host.Host
	validator access.Validator
	sender    access.Address
	label     string
}

func resolveEnv(ctx node.Context) (actionEnv, error) {
	env := actionEnv{
		label: ctx.Flags.String("label"),
	}

	err := ctx.Injector.Resolve(&env.host)
	if err != nil {
		return env, xerrors.Errorf("failed to resolve host: %v", err)
	}

	err = ctx.Injector.Resolve(&env.validator)
	if err != nil {
		return env, xerrors.Errorf("failed to resolve validator: %v", err)
	}

	env.sender, err = env.validator.Validate(ctx.Flags.String("sender"))
	if err != nil {
		return env, xerrors.Errorf("invalid sender: %v", err)
	}

	return env, nil
}

func (env actionEnv) execute(out io.Writer, msg simpleoracle.ExecuteMsg) error {
	data, err := simpleoracle.Encode(msg)
	if err != nil {
		return err
	}

	res, err := env.host.Execute(env.label, env.sender, data)
	if err != nil {
		return err
	}

	return printJSON(out, res)
}

func printJSON(out io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return xerrors.Errorf("failed to encode: %v", err)
	}

	fmt.Fprintln(out, string(data))

	return nil
}
