// Package cli defines the builder of a command-line application, so that each
// component of the node declares its own commands and flags without knowing
// the library that parses them.
//
//	builder := ucli.NewBuilder("oracled", nil)
//
//	block := builder.SetCommand("block")
//	next := block.SetSubCommand("next")
//	next.SetDescription("move to a later block")
//	next.SetFlags(cli.IntFlag{Name: "heights", Value: 1})
//	next.SetAction(func(flags cli.Flags) error {
//		fmt.Printf("moving %d heights\n", flags.Int("heights"))
//		return nil
//	})
//
//	builder.Build().Run(os.Args)
package cli

import (
	"time"
)

// Builder collects the commands of the application.
type Builder interface {
	// SetCommand creates a new command with the given name and returns its
	// builder.
	SetCommand(name string) CommandBuilder

	// Build returns the application.
	Build() Application
}

// Application is the main interface to run the CLI.
type Application interface {
	Run(arguments []string) error
}

// CommandBuilder defines one command: its help, its flags, and either an
// action or subcommands.
type CommandBuilder interface {
	// SetDescription sets the value of the description for this command.
	SetDescription(value string)

	// SetFlags sets the flags for this command.
	SetFlags(...Flag)

	// SetAction sets the action for this command.
	SetAction(Action)

	// SetSubCommand creates a subcommand for this command.
	SetSubCommand(name string) CommandBuilder
}

// Action runs the command with the parsed flags.
type Action func(Flags) error

// Flag is the definition of a flag, one of the types of flag.go.
type Flag interface {
	Flag()
}

// Flags gives an action the values of the flags. A flag that is not defined
// reads as the zero value.
type Flags interface {
	String(name string) string

	Duration(name string) time.Duration

	Path(name string) string

	Int(name string) int

	Bool(name string) bool
}
