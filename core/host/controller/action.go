package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.dedis.ch/oracle/cli/node"
	"go.dedis.ch/oracle/core/execution"
	"go.dedis.ch/oracle/core/host"
	"golang.org/x/xerrors"
)

// initAction is an action to write the configuration of the chain. The genesis
// block is stamped with the current time.
//
// - implements node.ActionTemplate
type initAction struct {
	now func() time.Time
}

// Execute implements node.ActionTemplate.
func (a initAction) Execute(ctx node.Context) error {
	cfg := Config{
		ChainID:     ctx.Flags.String("chain-id"),
		Prefix:      ctx.Flags.String("prefix"),
		BlockTime:   ctx.Flags.Duration("block-time"),
		GenesisTime: execution.NewTimestamp(a.now()),
	}

	err := WriteConfig(ctx.Flags.Path(node.ConfigFlag), cfg)
	if err != nil {
		return xerrors.Errorf("failed to initialize: %v", err)
	}

	fmt.Fprintf(ctx.Out, "initialized chain %s with prefix %s\n", cfg.ChainID, cfg.Prefix)

	return nil
}

// showAction is an action to print the current block.
//
// - implements node.ActionTemplate
type showAction struct{}

// Execute implements node.ActionTemplate.
func (showAction) Execute(ctx node.Context) error {
	h, err := resolveHost(ctx.Injector)
	if err != nil {
		return err
	}

	block, err := h.Block()
	if err != nil {
		return err
	}

	return printJSON(ctx.Out, block)
}

// nextAction is an action to move the chain forward.
//
// - implements node.ActionTemplate
type nextAction struct{}

// Execute implements node.ActionTemplate.
func (nextAction) Execute(ctx node.Context) error {
	heights := ctx.Flags.Int("heights")
	if heights < 1 {
		return xerrors.Errorf("invalid number of heights: %d", heights)
	}

	h, err := resolveHost(ctx.Injector)
	if err != nil {
		return err
	}

	block, err := h.NextBlock(uint64(heights), ctx.Flags.Duration("duration"))
	if err != nil {
		return err
	}

	return printJSON(ctx.Out, block)
}

func resolveHost(inj node.Injector) (*host.Host, error) {
	var h *host.Host

	err := inj.Resolve(&h)
	if err != nil {
		return nil, xerrors.Errorf("failed to resolve host: %v", err)
	}

	return h, nil
}

func printJSON(out io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return xerrors.Errorf("failed to encode: %v", err)
	}

	fmt.Fprintln(out, string(data))

	return nil
}
