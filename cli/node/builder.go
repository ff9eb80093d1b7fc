package node

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.dedis.ch/oracle"
	"go.dedis.ch/oracle/cli"
	"go.dedis.ch/oracle/cli/ucli"
	"golang.org/x/xerrors"
)

const (
	// ConfigFlag is the name of the global flag holding the path to the
	// folder of the node.
	ConfigFlag = "config"

	defaultConfig = ".oracled"
)

// CLIBuilder is an application builder that will build a CLI to start and
// control a node.
//
// - implements node.Builder
// - implements cli.Builder
type CLIBuilder struct {
	cli.Builder

	startFlags []cli.Flag
	inits      []Initializer
	writer     io.Writer

	// In production, the node is stopped via SIGTERM. In case of testing, the
	// channel is fed directly.
	enableSignal bool
	sigs         chan os.Signal
}

// NewBuilder returns a new empty builder.
func NewBuilder(name string, inits ...Initializer) *CLIBuilder {
	return NewBuilderWithCfg(name, nil, nil, inits...)
}

// NewBuilderWithCfg returns a new empty builder with specific configurations.
func NewBuilderWithCfg(name string, sigs chan os.Signal, out io.Writer,
	inits ...Initializer) *CLIBuilder {

	if out == nil {
		out = os.Stdout
	}

	enabled := false

	if sigs == nil {
		sigs = make(chan os.Signal, 1)
		enabled = true
	}

	builder := ucli.NewBuilder(name, nil, cli.StringFlag{
		Name:  ConfigFlag,
		Usage: "path to the config folder",
		Value: defaultConfig,
	})

	return &CLIBuilder{
		Builder:      builder,
		enableSignal: enabled,
		sigs:         sigs,
		inits:        inits,
		writer:       out,
	}
}

// SetStartFlags implements node.Builder. It appends the given flags to the list
// of flags that will be used to create the serve command.
func (b *CLIBuilder) SetStartFlags(flags ...cli.Flag) {
	b.startFlags = append(b.startFlags, flags...)
}

// MakeAction implements node.Builder. It creates a CLI action that starts the
// node, executes the template and stops the node.
func (b *CLIBuilder) MakeAction(tmpl ActionTemplate) cli.Action {
	return func(flags cli.Flags) error {
		return b.run(flags, func(inj Injector) error {
			ctx := Context{
				Injector: inj,
				Flags:    flags,
				Out:      b.writer,
			}

			err := tmpl.Execute(ctx)
			if err != nil {
				return xerrors.Errorf("command error: %w", err)
			}

			return nil
		})
	}
}

// Build implements node.Builder. It returns the application.
func (b *CLIBuilder) Build() cli.Application {
	for _, controller := range b.inits {
		controller.SetCommands(b)
	}

	cmd := b.SetCommand("serve")
	cmd.SetDescription("start the node and serve until it is interrupted")
	cmd.SetFlags(b.startFlags...)
	cmd.SetAction(b.start)

	return b.Builder.Build()
}

func (b *CLIBuilder) start(flags cli.Flags) error {
	if b.enableSignal {
		signal.Notify(b.sigs, syscall.SIGINT, syscall.SIGTERM)

		defer signal.Stop(b.sigs)
	}

	return b.run(flags, func(Injector) error {
		oracle.Logger.Info().Msg("node is running")

		<-b.sigs

		oracle.Logger.Info().Msg("node is stopping")

		return nil
	})
}

// run starts the controllers, calls the function and stops the controllers
// whatever the result of the function is.
func (b *CLIBuilder) run(flags cli.Flags, fn func(Injector) error) (err error) {
	dir := flags.Path(ConfigFlag)
	if dir != "" {
		err := os.MkdirAll(dir, 0700)
		if err != nil {
			return xerrors.Errorf("couldn't make path: %v", err)
		}
	}

	injector := NewInjector()

	started := 0

	// Controllers are stopped in reverse order so that high level components
	// are stopped before lower level ones (i.e. stop a service before the
	// database to avoid errors).
	defer func() {
		for i := started - 1; i >= 0; i-- {
			stopErr := b.inits[i].OnStop(injector)
			if stopErr != nil && err == nil {
				err = xerrors.Errorf("couldn't stop controller: %v", stopErr)
			}
		}

		oracle.Logger.Trace().Msg("node has been stopped")
	}()

	for _, controller := range b.inits {
		err = controller.OnStart(flags, injector)
		if err != nil {
			return xerrors.Errorf("couldn't run the controller: %v", err)
		}

		started++
	}

	return fn(injector)
}
