// Package simpleoracle implements a native contract that publishes a single price,
// written by a single owner.
//
// The owner is set when the instance is created, either explicitly or to the
// instantiator, and is the only identity allowed to send execute messages. It
// can hand the ownership over to another address with SetOwner. SetPrice
// replaces the stored price entirely, and stamps it with the block of the
// transaction. Queries are open to anyone.
//
// The messages are JSON documents:
//
//	{"owner":null}
//	{"set_owner":{"owner":"oracle1..."}}
//	{"set_price":{"value":"1.23","timestamp":null}}
//	{"price":{}}
//	{"owner":{}}
//
// Migrating an instance to this code is only allowed from an older (or the
// same) version of the same contract.
package simpleoracle

import (
	"go.dedis.ch/oracle/core/access"
	"go.dedis.ch/oracle/core/execution"
	"go.dedis.ch/oracle/core/execution/native"
	"go.dedis.ch/oracle/core/store"
	"golang.org/x/xerrors"
)

const (
	// ContractName is the name of the contract.
	ContractName = "go.dedis.ch/oracle.SimpleOracle"

	// ContractVersion is the version of the code of the contract.
	ContractVersion = "0.1.0"
)

// RegisterContract registers the oracle contract to the given execution
// service.
func RegisterContract(exec *native.Service, c Contract) {
	exec.Set(ContractName, c)
}

// Contract is the price oracle contract. It does not hold any state: every
// invocation reads what it needs from the snapshot it is given.
//
// - implements native.Contract
type Contract struct {
	// validator checks the addresses provided in the messages.
	validator access.Validator

	// version is the version of the code, recorded at instantiation and
	// compared against the stored one on migration.
	version string
}

// Option is the type of option to create a contract.
type Option func(*Contract)

// WithVersion sets the version of the code. The default is ContractVersion.
func WithVersion(version string) Option {
	return func(c *Contract) {
		c.version = version
	}
}

// NewContract creates a new oracle contract which uses the validator for the
// addresses in the messages.
func NewContract(validator access.Validator, opts ...Option) Contract {
	c := Contract{
		validator: validator,
		version:   ContractVersion,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// Version returns the version of the code.
func (c Contract) Version() string {
	return c.version
}

// Instantiate implements native.Contract. It decodes the message and creates
// the instance.
func (c Contract) Instantiate(snap store.Snapshot, env execution.Env,
	info execution.MessageInfo, data []byte) (execution.Response, error) {

	msg, err := DecodeInstantiate(data)
	if err != nil {
		return execution.Response{}, err
	}

	return c.instantiate(snap, env, info, msg)
}

// Execute implements native.Contract. It decodes the message and applies the
// state transition.
func (c Contract) Execute(snap store.Snapshot, env execution.Env,
	info execution.MessageInfo, data []byte) (execution.Response, error) {

	msg, err := DecodeExecute(data)
	if err != nil {
		return execution.Response{}, err
	}

	return c.execute(snap, env, info, msg)
}

// Query implements native.Contract. It decodes the message and returns the
// JSON answer.
func (c Contract) Query(snap store.Readable, env execution.Env, data []byte) ([]byte, error) {
	msg, err := DecodeQuery(data)
	if err != nil {
		return nil, err
	}

	res, err := c.query(snap, env, msg)
	if err != nil {
		return nil, err
	}

	return Encode(res)
}

// Migrate implements native.Contract. It decodes the message and checks that
// the instance can run this version of the code.
func (c Contract) Migrate(snap store.Snapshot, env execution.Env,
	data []byte) (execution.Response, error) {

	msg, err := DecodeMigrate(data)
	if err != nil {
		return execution.Response{}, xerrors.Errorf("failed to migrate: %v", err)
	}

	return c.migrate(snap, env, msg)
}
