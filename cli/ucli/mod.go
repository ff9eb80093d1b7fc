// Package ucli provides a cli builder implementation based on the urfave/cli
// library.
//
// Every flag can also be set from the environment: the variable is the name
// of the application followed by the name of the flag, in upper case and with
// underscores, for instance ORACLED_LISTEN for the flag listen of oracled. A
// flag given on the command line wins over the environment.
package ucli

import (
	"fmt"
	"strings"

	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/oracle/cli"
)

// Builder implements a cli builder based on urfave/cli.
//
// - implements cli.Builder
type Builder struct {
	commands  []*cmdBuilder
	name      string
	usage     string
	envPrefix string
	action    cli.Action
	flags     []cli.Flag
}

// NewBuilder returns a new initialized builder. Action allows one to define a
// primary action, but can be nil if we only needs to define commands. Flags
// provides the global flags available from all the commands/subcommands.
func NewBuilder(name string, action cli.Action, flags ...cli.Flag) cli.Builder {
	return &Builder{
		name:      name,
		envPrefix: envName(name) + "_",
		action:    action,
		flags:     flags,
	}
}

// Build implements cli.Builder. It returns the urfave application with the
// commands defined so far.
func (b Builder) Build() cli.Application {
	app := &urfave.App{
		Name:        b.name,
		Usage:       b.usage,
		Commands:    buildCommand(b.envPrefix, b.commands),
		Action:      makeAction(b.action),
		Flags:       buildFlags(b.envPrefix, b.flags),
		HideVersion: true,
	}

	app.Setup()

	return app
}

// SetUsage sets the description of the application displayed by the help.
func (b *Builder) SetUsage(usage string) {
	b.usage = usage
}

// SetCommand implements cli.Builder.
func (b *Builder) SetCommand(name string) cli.CommandBuilder {
	cmd := &cmdBuilder{
		name: name,
	}
	b.commands = append(b.commands, cmd)

	return cmd
}

// cmdBuilder is the struct provided to build commands.
//
// - implements cli.CommandBuilder
type cmdBuilder struct {
	name        string
	description string
	action      cli.Action
	flags       []cli.Flag
	subcommands []*cmdBuilder
}

// SetDescription implements cli.CommandBuilder.
func (b *cmdBuilder) SetDescription(value string) {
	b.description = value
}

// SetFlags implements cli.CommandBuilder.
func (b *cmdBuilder) SetFlags(flags ...cli.Flag) {
	b.flags = flags
}

// SetAction implements cli.CommandBuilder.
func (b *cmdBuilder) SetAction(action cli.Action) {
	b.action = action
}

// SetSubCommand implements cli.CommandBuilder.
func (b *cmdBuilder) SetSubCommand(name string) cli.CommandBuilder {
	builder := &cmdBuilder{
		name: name,
	}
	b.subcommands = append(b.subcommands, builder)

	return builder
}

// buildFlags converts cli.Flag to their corresponding urfave/cli, bound to
// the environment variable of the prefix.
func buildFlags(prefix string, flags []cli.Flag) []urfave.Flag {
	res := make([]urfave.Flag, len(flags))

	for i, f := range flags {
		var flag urfave.Flag

		switch e := f.(type) {
		case cli.StringFlag:
			flag = &urfave.StringFlag{
				Name:     e.Name,
				Usage:    e.Usage,
				Required: e.Required,
				Value:    e.Value,
				EnvVars:  []string{prefix + envName(e.Name)},
			}
		case cli.DurationFlag:
			flag = &urfave.DurationFlag{
				Name:     e.Name,
				Usage:    e.Usage,
				Required: e.Required,
				Value:    e.Value,
				EnvVars:  []string{prefix + envName(e.Name)},
			}
		case cli.IntFlag:
			flag = &urfave.IntFlag{
				Name:     e.Name,
				Usage:    e.Usage,
				Required: e.Required,
				Value:    e.Value,
				EnvVars:  []string{prefix + envName(e.Name)},
			}
		case cli.BoolFlag:
			flag = &urfave.BoolFlag{
				Name:     e.Name,
				Usage:    e.Usage,
				Required: e.Required,
				Value:    e.Value,
				EnvVars:  []string{prefix + envName(e.Name)},
			}
		default:
			panic(fmt.Sprintf("flag type '%T' not supported", f))
		}

		res[i] = flag
	}

	return res
}

// buildCommand recursively builds the commands from a cmdBuilder struct to a
// urfave commands.
func buildCommand(prefix string, cmds []*cmdBuilder) []*urfave.Command {
	commands := make([]*urfave.Command, len(cmds))

	for i, cmd := range cmds {
		commands[i] = &urfave.Command{
			Name:        cmd.name,
			Usage:       cmd.description,
			Action:      makeAction(cmd.action),
			Flags:       buildFlags(prefix, cmd.flags),
			Subcommands: buildCommand(prefix, cmd.subcommands),
		}
	}

	return commands
}

// makeAction transforms a cli.Action to its urfave form.
func makeAction(action cli.Action) urfave.ActionFunc {
	if action != nil {
		return func(ctx *urfave.Context) error {
			return action(ctx)
		}
	}

	return nil
}

func envName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
