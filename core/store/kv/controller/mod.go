// Package controller implements the initializer that opens the database of
// the node in its config folder.
package controller

import (
	"path/filepath"

	"go.dedis.ch/oracle"
	"go.dedis.ch/oracle/cli"
	"go.dedis.ch/oracle/cli/node"
	"go.dedis.ch/oracle/core/store/kv"
	"golang.org/x/xerrors"
)

// DBName is the name of the database file in the config folder.
const DBName = "oracle.db"

type minimal struct{}

// NewMinimal returns an initializer that injects the kv.DB of the node.
//
// - implements node.Initializer
func NewMinimal() node.Initializer {
	return minimal{}
}

// SetCommands implements node.Initializer. The database has no command.
func (m minimal) SetCommands(builder node.Builder) {}

// OnStart implements node.Initializer. It opens the database and injects it.
func (m minimal) OnStart(flags cli.Flags, inj node.Injector) error {
	path := filepath.Join(flags.Path(node.ConfigFlag), DBName)

	db, err := kv.New(path)
	if err != nil {
		return xerrors.Errorf("db: %v", err)
	}

	oracle.Logger.Debug().Str("path", path).Msg("database opened")

	inj.Inject(db)

	return nil
}

// OnStop implements node.Initializer. It closes the database.
func (m minimal) OnStop(inj node.Injector) error {
	var db kv.DB
	err := inj.Resolve(&db)
	if err != nil {
		return xerrors.Errorf("injector: %v", err)
	}

	err = db.Close()
	if err != nil {
		return xerrors.Errorf("while closing db: %v", err)
	}

	return nil
}
