// Package node defines the Builder type, which builds a CLI application to
// control a local node.
//
// The node is made of initializers. Each of them sets its own commands and
// starts the components it is responsible for, which are then shared with the
// others through the injector. Every action created with MakeAction runs in a
// freshly started node that is stopped when the action returns. The
// application also has a serve command that starts the node and keeps it
// running until it is interrupted.
package node

import (
	"io"

	"go.dedis.ch/oracle/cli"
)

// Builder is the builder that will be provided to the initializers, which can
// create commands and actions.
type Builder interface {
	// SetCommand creates a new command and returns its builder.
	SetCommand(name string) cli.CommandBuilder

	// SetStartFlags appends a list of flags that will be used to create the
	// serve command.
	SetStartFlags(...cli.Flag)

	// MakeAction creates a CLI action from a given template. The template is
	// executed once the components of the node are started.
	MakeAction(ActionTemplate) cli.Action
}

// ActionTemplate is an extension of the cli.Action interface to allow an action
// to use the components of the node.
type ActionTemplate interface {
	// Execute processes a command received from the CLI.
	Execute(Context) error
}

// Context is the context available to the action when being invoked. It
// provides the dependency injector alongside with the input and output.
type Context struct {
	Injector Injector
	Flags    cli.Flags
	Out      io.Writer
}

// Injector is a dependency injection abstraction.
type Injector interface {
	// Resolve populates the input with the dependency if any compatible exists.
	Resolve(interface{}) error

	// Inject stores the dependency to be resolved later on.
	Inject(interface{})
}

// Initializer is the interface that a module can implement to set its own
// commands and inject the dependencies that will be resolved in the actions.
type Initializer interface {
	// SetCommands populates the builder with the commands of the controller.
	SetCommands(Builder)

	// OnStart starts the components of the initializer and populates the
	// injector.
	OnStart(cli.Flags, Injector) error

	// OnStop stops the components and cleans the resources.
	OnStop(Injector) error
}
