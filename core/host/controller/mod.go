// Package controller implements the initializer of the host: it loads the
// configuration of the chain, creates the host on top of the database of the
// node and sets the commands to initialize the chain and to move it forward.
package controller

import (
	"context"
	"time"

	"go.dedis.ch/oracle"
	"go.dedis.ch/oracle/cli"
	"go.dedis.ch/oracle/cli/node"
	"go.dedis.ch/oracle/core/access"
	"go.dedis.ch/oracle/core/execution/native"
	"go.dedis.ch/oracle/core/host"
	"go.dedis.ch/oracle/core/store/kv"
	"golang.org/x/xerrors"
)

// bucket is the name of the bucket of the host in the database.
var bucket = []byte("oracle")

// NewController returns a new initializer for the host.
func NewController() node.Initializer {
	return &controller{}
}

// controller is an initializer that injects the configuration, the execution
// service, the address validator and the host. The accepted invocations are
// logged until the node stops.
//
// - implements node.Initializer
type controller struct {
	cancel context.CancelFunc
}

// SetCommands implements node.Initializer. It sets the init and block
// commands.
func (c *controller) SetCommands(builder node.Builder) {
	cmd := builder.SetCommand("init")
	cmd.SetDescription("write the configuration of the chain")
	cmd.SetFlags(
		cli.StringFlag{
			Name:  "chain-id",
			Usage: "identifier of the chain",
			Value: host.DefaultChainID,
		},
		cli.StringFlag{
			Name:  "prefix",
			Usage: "human-readable part of the bech32 addresses",
			Value: DefaultPrefix,
		},
		cli.DurationFlag{
			Name:  "block-time",
			Usage: "time between two blocks",
			Value: host.DefaultBlockTime,
		},
	)
	cmd.SetAction(builder.MakeAction(initAction{now: time.Now}))

	cmd = builder.SetCommand("block")
	cmd.SetDescription("inspect and move the chain")

	sub := cmd.SetSubCommand("show")
	sub.SetDescription("print the current block")
	sub.SetAction(builder.MakeAction(showAction{}))

	sub = cmd.SetSubCommand("next")
	sub.SetDescription("move to a later block")
	sub.SetFlags(
		cli.IntFlag{
			Name:  "heights",
			Usage: "number of heights to move forward",
			Value: 1,
		},
		cli.DurationFlag{
			Name:  "duration",
			Usage: "time to move forward, the block time per height if zero",
		},
	)
	sub.SetAction(builder.MakeAction(nextAction{}))
}

// OnStart implements node.Initializer. It creates the host on the database of
// the node with the configuration of the folder.
func (c *controller) OnStart(flags cli.Flags, inj node.Injector) error {
	cfg, found, err := LoadConfig(flags.Path(node.ConfigFlag))
	if err != nil {
		return xerrors.Errorf("failed to load config: %v", err)
	}

	if !found {
		oracle.Logger.Debug().Msg("no config found, using the defaults")
	}

	var db kv.DB
	err = inj.Resolve(&db)
	if err != nil {
		return xerrors.Errorf("failed to resolve db: %v", err)
	}

	exec := native.NewExecution()

	h := host.New(kv.NewStore(db, bucket), exec,
		host.WithChainID(cfg.ChainID),
		host.WithGenesis(cfg.GenesisTime),
		host.WithBlockTime(cfg.BlockTime))

	inj.Inject(&cfg)
	inj.Inject(exec)
	inj.Inject(access.NewBech32Validator(cfg.Prefix))
	inj.Inject(h)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go logEvents(ctx, h.Watch(ctx))

	return nil
}

// OnStop implements node.Initializer. It stops logging the invocations.
func (c *controller) OnStop(node.Injector) error {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	return nil
}

func logEvents(ctx context.Context, notifs <-chan host.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case notif := <-notifs:
			for _, event := range notif.Events {
				oracle.Logger.Debug().
					Str("tx", notif.TxID).
					Str("instance", notif.Instance).
					Uint64("height", notif.Block.Height).
					Str("type", event.Type).
					Msgf("%s event", notif.Entry)
			}
		}
	}
}
