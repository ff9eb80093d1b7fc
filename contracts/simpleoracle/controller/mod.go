// Package controller implements the initializer of the oracle contract. It
// registers the contract on the execution service of the node, sets the
// oracle commands and, when the node is served, the read-only HTTP routes.
package controller

import (
	"go.dedis.ch/oracle/cli"
	"go.dedis.ch/oracle/cli/node"
	"go.dedis.ch/oracle/contracts/simpleoracle"
	"go.dedis.ch/oracle/core/access"
	"go.dedis.ch/oracle/core/execution/native"
	"go.dedis.ch/oracle/core/host"
	"go.dedis.ch/oracle/proxy"
	"golang.org/x/xerrors"
)

const (
	// RoutePrefix is the path of the HTTP routes of the oracle.
	RoutePrefix = "/oracle/"

	defaultLabel = "oracle"
)

// NewController creates a new controller for the oracle contract.
func NewController() node.Initializer {
	return controller{}
}

// controller is a CLI initializer for the oracle contract.
//
// - implements node.Initializer
type controller struct{}

// SetCommands implements node.Initializer.
func (controller) SetCommands(builder node.Builder) {
	label := cli.StringFlag{
		Name:  "label",
		Usage: "label of the instance",
		Value: defaultLabel,
	}

	sender := cli.StringFlag{
		Name:     "sender",
		Usage:    "address of the sender of the message",
		Required: true,
	}

	cmd := builder.SetCommand("oracle")
	cmd.SetDescription("interact with the price oracle")

	sub := cmd.SetSubCommand("instantiate")
	sub.SetDescription("create an instance of the oracle")
	sub.SetFlags(
		sender,
		label,
		cli.StringFlag{
			Name:  "owner",
			Usage: "address of the owner, the sender if empty",
		},
		cli.StringFlag{
			Name:  "admin",
			Usage: "address allowed to migrate the instance, none if empty",
		},
	)
	sub.SetAction(builder.MakeAction(instantiateAction{}))

	sub = cmd.SetSubCommand("set-owner")
	sub.SetDescription("hand the ownership over to another address")
	sub.SetFlags(sender, label, cli.StringFlag{
		Name:     "owner",
		Usage:    "address of the new owner",
		Required: true,
	})
	sub.SetAction(builder.MakeAction(setOwnerAction{}))

	sub = cmd.SetSubCommand("set-price")
	sub.SetDescription("publish a new price")
	sub.SetFlags(
		sender,
		label,
		cli.StringFlag{
			Name:     "value",
			Usage:    "decimal value of the price",
			Required: true,
		},
		cli.StringFlag{
			Name:  "timestamp",
			Usage: "optional time of the price in nanoseconds since the epoch",
		},
	)
	sub.SetAction(builder.MakeAction(setPriceAction{}))

	sub = cmd.SetSubCommand("migrate")
	sub.SetDescription("migrate the instance to the current version of the code")
	sub.SetFlags(sender, label)
	sub.SetAction(builder.MakeAction(migrateAction{}))

	sub = cmd.SetSubCommand("query")
	sub.SetDescription("read the state of the instance")

	query := sub.SetSubCommand("owner")
	query.SetDescription("print the owner")
	query.SetFlags(label)
	query.SetAction(builder.MakeAction(queryAction{msg: simpleoracle.NewOwnerQuery()}))

	query = sub.SetSubCommand("price")
	query.SetDescription("print the price")
	query.SetFlags(label)
	query.SetAction(builder.MakeAction(queryAction{msg: simpleoracle.NewPriceQuery()}))
}

// OnStart implements node.Initializer. It registers the oracle contract and
// the HTTP routes if the proxy is running.
func (controller) OnStart(flags cli.Flags, inj node.Injector) error {
	var exec *native.Service
	err := inj.Resolve(&exec)
	if err != nil {
		return xerrors.Errorf("failed to resolve native service: %v", err)
	}

	var validator access.Validator
	err = inj.Resolve(&validator)
	if err != nil {
		return xerrors.Errorf("failed to resolve validator: %v", err)
	}

	simpleoracle.RegisterContract(exec, simpleoracle.NewContract(validator))

	var p proxy.Proxy
	err = inj.Resolve(&p)
	if err != nil {
		// The proxy only runs when the node is served.
		return nil
	}

	var h *host.Host
	err = inj.Resolve(&h)
	if err != nil {
		return xerrors.Errorf("failed to resolve host: %v", err)
	}

	p.RegisterHandler(RoutePrefix, queryHandler(h).ServeHTTP)

	return nil
}

// OnStop implements node.Initializer.
func (controller) OnStop(node.Injector) error {
	return nil
}
