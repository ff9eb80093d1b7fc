// Package native implements an execution service to run native smart contracts.
//
// A native smart contract is written in Go and packaged with the application.
// Contracts are registered under a code name, and the host invokes their entry
// points with the snapshot of the instance and the raw message.
package native

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.dedis.ch/oracle"
	"go.dedis.ch/oracle/core/execution"
	"go.dedis.ch/oracle/core/store"
	"golang.org/x/xerrors"
)

// Entry point names, used as metric labels.
const (
	EntryInstantiate = "instantiate"
	EntryExecute     = "execute"
	EntryQuery       = "query"
	EntryMigrate     = "migrate"
)

var promCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "oracle_native_calls_total",
	Help: "total number of native contract calls per entry point and result",
}, []string{"entry", "result"})

func init() {
	oracle.PromCollectors = append(oracle.PromCollectors, promCalls)
}

// Contract is the interface to implement to register a smart contract that will
// be executed natively. The messages are provided in their encoded form, and
// the contract is responsible for decoding them.
type Contract interface {
	// Instantiate is called once when an instance of the contract is created.
	Instantiate(snap store.Snapshot, env execution.Env, info execution.MessageInfo,
		msg []byte) (execution.Response, error)

	// Execute applies a state transition.
	Execute(snap store.Snapshot, env execution.Env, info execution.MessageInfo,
		msg []byte) (execution.Response, error)

	// Query reads the state and returns the encoded answer.
	Query(snap store.Readable, env execution.Env, msg []byte) ([]byte, error)

	// Migrate is called when the code of an instance is replaced by this one.
	Migrate(snap store.Snapshot, env execution.Env, msg []byte) (execution.Response, error)
}

// Service is an execution service for packaged contracts. Those contracts have
// complete access to the snapshot they are given.
type Service struct {
	contracts map[string]Contract
}

// NewExecution returns a new native execution service without contracts.
func NewExecution() *Service {
	return &Service{
		contracts: map[string]Contract{},
	}
}

// Set stores the contract using the name as the key. It panics if a contract
// is already registered with the same name.
func (ns *Service) Set(name string, contract Contract) {
	_, found := ns.contracts[name]
	if found {
		panic(xerrors.Errorf("contract '%s' already registered", name))
	}

	ns.contracts[name] = contract
}

// Get returns the contract registered with the name.
func (ns *Service) Get(name string) (Contract, error) {
	contract := ns.contracts[name]
	if contract == nil {
		return nil, xerrors.Errorf("unknown contract '%s'", name)
	}

	return contract, nil
}

// Instantiate calls the Instantiate entry point of the contract.
func (ns *Service) Instantiate(name string, snap store.Snapshot, env execution.Env,
	info execution.MessageInfo, msg []byte) (execution.Response, error) {

	contract, err := ns.Get(name)
	if err != nil {
		return execution.Response{}, err
	}

	res, err := contract.Instantiate(snap, env, info, msg)
	observe(name, EntryInstantiate, err)

	return res, err
}

// Execute calls the Execute entry point of the contract.
func (ns *Service) Execute(name string, snap store.Snapshot, env execution.Env,
	info execution.MessageInfo, msg []byte) (execution.Response, error) {

	contract, err := ns.Get(name)
	if err != nil {
		return execution.Response{}, err
	}

	res, err := contract.Execute(snap, env, info, msg)
	observe(name, EntryExecute, err)

	return res, err
}

// Query calls the Query entry point of the contract.
func (ns *Service) Query(name string, snap store.Readable, env execution.Env,
	msg []byte) ([]byte, error) {

	contract, err := ns.Get(name)
	if err != nil {
		return nil, err
	}

	res, err := contract.Query(snap, env, msg)
	observe(name, EntryQuery, err)

	return res, err
}

// Migrate calls the Migrate entry point of the contract.
func (ns *Service) Migrate(name string, snap store.Snapshot, env execution.Env,
	msg []byte) (execution.Response, error) {

	contract, err := ns.Get(name)
	if err != nil {
		return execution.Response{}, err
	}

	res, err := contract.Migrate(snap, env, msg)
	observe(name, EntryMigrate, err)

	return res, err
}

func observe(name, entry string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	promCalls.WithLabelValues(entry, result).Inc()

	oracle.Logger.Debug().
		Str("contract", name).
		Str("entry", entry).
		Str("result", result).
		Msgf("native call %s", entry)
}
