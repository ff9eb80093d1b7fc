// Package host implements the environment contracts run in: it tracks the
// current block, the contract instances and their upgrade admin, and runs
// every invocation as a single store transaction.
//
// The host is the one to authenticate the sender, to provide the block
// information and to guarantee that a failed invocation leaves no partial
// write. Invocations are serialized, and the accepted ones are published to
// the channels returned by Watch.
package host

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"go.dedis.ch/oracle"
	"go.dedis.ch/oracle/core"
	"go.dedis.ch/oracle/core/access"
	"go.dedis.ch/oracle/core/execution"
	"go.dedis.ch/oracle/core/execution/native"
	"go.dedis.ch/oracle/core/store"
	"go.dedis.ch/oracle/core/store/prefixed"
	"golang.org/x/xerrors"
)

const (
	// hostPrefix is the namespace of the records of the host.
	hostPrefix = "go.dedis.ch/oracle.Host"

	// instancePrefix is prepended to the label of an instance to get the
	// namespace of its state.
	instancePrefix = "instance/"

	blockKey = "block"

	watchBuffer = 100

	// DefaultChainID is the chain identifier when none is provided.
	DefaultChainID = "oracle-testnet"

	// DefaultGenesis is the time of the first block when none is provided.
	DefaultGenesis = execution.Timestamp(1_571_797_419_879_305_533)

	// DefaultBlockTime is the time between two blocks when none is provided.
	DefaultBlockTime = 5 * time.Second
)

var promHeight = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "oracle_host_block_height",
	Help: "height of the current block",
})

func init() {
	oracle.PromCollectors = append(oracle.PromCollectors, promHeight)
}

// Instance is the record of a contract instance.
type Instance struct {
	// Label is the unique name of the instance, also used as its address.
	Label string `json:"label"`

	// Code is the name of the contract code the instance runs.
	Code string `json:"code"`

	// Admin is the address allowed to migrate the instance. An instance
	// without admin cannot be migrated.
	Admin access.Address `json:"admin"`
}

// Result is the outcome of a successful mutating invocation.
type Result struct {
	// TxID is the unique identifier of the invocation.
	TxID string `json:"tx_id"`

	// Block is the block the invocation was included in.
	Block execution.BlockInfo `json:"block"`

	// Events are the events emitted by the contract.
	Events []execution.Event `json:"events"`
}

// Notification is what the watchers of the host receive for every accepted
// invocation.
type Notification struct {
	Result

	// Entry is the entry point that was invoked.
	Entry string

	// Instance is the label of the instance.
	Instance string
}

// Host runs the contract instances.
type Host struct {
	sync.Mutex

	store     store.Transactional
	exec      *native.Service
	watcher   *core.Watcher
	chainID   string
	genesis   execution.Timestamp
	blockTime time.Duration
}

// Option is the type of option to create a host.
type Option func(*Host)

// WithChainID sets the chain identifier of the blocks.
func WithChainID(id string) Option {
	return func(h *Host) {
		h.chainID = id
	}
}

// WithGenesis sets the time of the first block.
func WithGenesis(ts execution.Timestamp) Option {
	return func(h *Host) {
		h.genesis = ts
	}
}

// WithBlockTime sets the time between two blocks.
func WithBlockTime(d time.Duration) Option {
	return func(h *Host) {
		h.blockTime = d
	}
}

// New creates a host on top of the store, that runs the contracts of the
// execution service.
func New(st store.Transactional, exec *native.Service, opts ...Option) *Host {
	h := &Host{
		store:     st,
		exec:      exec,
		watcher:   core.NewWatcher(),
		chainID:   DefaultChainID,
		genesis:   DefaultGenesis,
		blockTime: DefaultBlockTime,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Block returns the current block.
func (h *Host) Block() (execution.BlockInfo, error) {
	var block execution.BlockInfo

	err := h.store.View(func(r store.Readable) error {
		var err error
		block, err = h.readBlock(r)
		return err
	})
	if err != nil {
		return block, xerrors.Errorf("failed to read block: %v", err)
	}

	return block, nil
}

// NextBlock moves the chain forward by the number of heights and the
// duration. A zero duration moves the time by the block time for each height.
func (h *Host) NextBlock(heights uint64, d time.Duration) (execution.BlockInfo, error) {
	h.Lock()
	defer h.Unlock()

	if d == 0 {
		d = h.blockTime * time.Duration(heights)
	}

	if d < 0 {
		return execution.BlockInfo{}, xerrors.Errorf("negative duration %v", d)
	}

	var block execution.BlockInfo

	err := h.store.Update(func(snap store.Snapshot) error {
		var err error
		block, err = h.readBlock(snap)
		if err != nil {
			return err
		}

		block.Height += heights
		block.Time = block.Time.PlusNanos(uint64(d))

		data, err := json.Marshal(block)
		if err != nil {
			return xerrors.Errorf("failed to encode block: %v", err)
		}

		return prefixed.NewSnapshot(hostPrefix, snap).Set([]byte(blockKey), data)
	})
	if err != nil {
		return execution.BlockInfo{}, xerrors.Errorf("failed to update block: %v", err)
	}

	promHeight.Set(float64(block.Height))

	oracle.Logger.Debug().Uint64("height", block.Height).Msg("new block")

	return block, nil
}

// Instance returns the record of the instance with the label.
func (h *Host) Instance(label string) (Instance, error) {
	var inst Instance

	err := h.store.View(func(r store.Readable) error {
		var err error
		inst, err = readInstance(r, label)
		return err
	})
	if err != nil {
		return inst, xerrors.Errorf("failed to read instance: %w", err)
	}

	return inst, nil
}

// Instantiate creates an instance of the code with the label. The admin is
// optional and allowed to migrate the instance later.
func (h *Host) Instantiate(code, label string, sender, admin access.Address,
	msg []byte) (Result, error) {

	if label == "" {
		return Result{}, xerrors.New("empty label")
	}

	return h.run("instantiate", label, func(snap store.Snapshot, env execution.Env) (execution.Response, error) {
		_, err := readInstance(snap, label)
		if err == nil {
			return execution.Response{}, xerrors.Errorf("instance '%s' already exists", label)
		}

		var nf store.NotFoundError
		if !xerrors.As(err, &nf) {
			return execution.Response{}, err
		}

		inst := Instance{Label: label, Code: code, Admin: admin}

		err = writeInstance(snap, inst)
		if err != nil {
			return execution.Response{}, err
		}

		info := execution.MessageInfo{Sender: sender}

		return h.exec.Instantiate(code, instanceSnapshot(label, snap), env, info, msg)
	})
}

// Execute sends the message to the instance.
func (h *Host) Execute(label string, sender access.Address, msg []byte) (Result, error) {
	return h.run("execute", label, func(snap store.Snapshot, env execution.Env) (execution.Response, error) {
		inst, err := readInstance(snap, label)
		if err != nil {
			return execution.Response{}, err
		}

		info := execution.MessageInfo{Sender: sender}

		return h.exec.Execute(inst.Code, instanceSnapshot(label, snap), env, info, msg)
	})
}

// Migrate replaces the code of the instance. Only the admin of the instance
// can migrate it, and the code is replaced only if the migration of the new
// code succeeds.
func (h *Host) Migrate(label string, sender access.Address, code string,
	msg []byte) (Result, error) {

	return h.run("migrate", label, func(snap store.Snapshot, env execution.Env) (execution.Response, error) {
		inst, err := readInstance(snap, label)
		if err != nil {
			return execution.Response{}, err
		}

		if inst.Admin == "" {
			return execution.Response{}, xerrors.Errorf("instance '%s' has no admin", label)
		}

		if !inst.Admin.Equal(sender) {
			return execution.Response{}, xerrors.Errorf("sender %s is not the admin %s",
				sender, inst.Admin)
		}

		res, err := h.exec.Migrate(code, instanceSnapshot(label, snap), env, msg)
		if err != nil {
			return execution.Response{}, err
		}

		inst.Code = code

		err = writeInstance(snap, inst)
		if err != nil {
			return execution.Response{}, err
		}

		return res, nil
	})
}

// Query sends the read-only message to the instance and returns the answer.
func (h *Host) Query(label string, msg []byte) ([]byte, error) {
	var res []byte

	err := h.store.View(func(r store.Readable) error {
		block, err := h.readBlock(r)
		if err != nil {
			return err
		}

		inst, err := readInstance(r, label)
		if err != nil {
			return err
		}

		env := makeEnv(block, label)

		res, err = h.exec.Query(inst.Code, prefixed.NewReadable(instancePrefix+label, r), env, msg)
		return err
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to query: %w", err)
	}

	return res, nil
}

type invocation func(snap store.Snapshot, env execution.Env) (execution.Response, error)

// run executes the invocation in a single store transaction.
func (h *Host) run(entry, label string, fn invocation) (Result, error) {
	h.Lock()
	defer h.Unlock()

	txID := xid.New().String()

	var res Result

	err := h.store.Update(func(snap store.Snapshot) error {
		block, err := h.readBlock(snap)
		if err != nil {
			return err
		}

		resp, err := fn(snap, makeEnv(block, label))
		if err != nil {
			return err
		}

		res = Result{
			TxID:   txID,
			Block:  block,
			Events: resp.Events,
		}

		return nil
	})
	if err != nil {
		oracle.Logger.Info().
			Str("tx", txID).
			Str("instance", label).
			Err(err).
			Msgf("%s rejected", entry)

		return Result{}, xerrors.Errorf("failed to %s: %w", entry, err)
	}

	oracle.Logger.Info().
		Str("tx", txID).
		Str("instance", label).
		Int("events", len(res.Events)).
		Msgf("%s accepted", entry)

	h.watcher.Notify(Notification{
		Result:   res,
		Entry:    entry,
		Instance: label,
	})

	return res, nil
}

// Watch returns a channel populated with the accepted invocations until the
// context is done. Notifications are dropped when the channel is full.
func (h *Host) Watch(ctx context.Context) <-chan Notification {
	ch := make(chan Notification, watchBuffer)

	obs := observer{ch: ch}
	h.watcher.Add(obs)

	go func() {
		<-ctx.Done()
		h.watcher.Remove(obs)
	}()

	return ch
}

func (h *Host) readBlock(r store.Readable) (execution.BlockInfo, error) {
	data, err := prefixed.NewReadable(hostPrefix, r).Get([]byte(blockKey))
	if err != nil {
		return execution.BlockInfo{}, xerrors.Errorf("failed to read block: %v", err)
	}

	if data == nil {
		genesis := execution.BlockInfo{
			Height:  1,
			Time:    h.genesis,
			ChainID: h.chainID,
		}

		return genesis, nil
	}

	var block execution.BlockInfo

	err = json.Unmarshal(data, &block)
	if err != nil {
		return block, xerrors.Errorf("failed to decode block: %v", err)
	}

	return block, nil
}

func readInstance(r store.Readable, label string) (Instance, error) {
	data, err := prefixed.NewReadable(hostPrefix, r).Get(instanceKey(label))
	if err != nil {
		return Instance{}, xerrors.Errorf("failed to read instance: %v", err)
	}

	if data == nil {
		return Instance{}, store.NotFoundError{Key: "instance " + label}
	}

	var inst Instance

	err = json.Unmarshal(data, &inst)
	if err != nil {
		return inst, xerrors.Errorf("failed to decode instance: %v", err)
	}

	return inst, nil
}

func writeInstance(snap store.Snapshot, inst Instance) error {
	data, err := json.Marshal(inst)
	if err != nil {
		return xerrors.Errorf("failed to encode instance: %v", err)
	}

	err = prefixed.NewSnapshot(hostPrefix, snap).Set(instanceKey(inst.Label), data)
	if err != nil {
		return xerrors.Errorf("failed to write instance: %v", err)
	}

	return nil
}

func instanceKey(label string) []byte {
	return []byte(instancePrefix + label)
}

func instanceSnapshot(label string, snap store.Snapshot) store.Snapshot {
	return prefixed.NewSnapshot(instancePrefix+label, snap)
}

func makeEnv(block execution.BlockInfo, label string) execution.Env {
	return execution.Env{
		Block: block,
		Contract: execution.ContractInfo{
			Address: access.Address(label),
		},
	}
}

type observer struct {
	ch chan Notification
}

func (obs observer) NotifyCallback(event interface{}) {
	select {
	case obs.ch <- event.(Notification):
	default:
		oracle.Logger.Warn().Msg("watcher is full, dropping notification")
	}
}
