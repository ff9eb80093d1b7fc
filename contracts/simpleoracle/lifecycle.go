package simpleoracle

import (
	"go.dedis.ch/oracle"
	"go.dedis.ch/oracle/core/execution"
	"go.dedis.ch/oracle/core/store"
	"go.dedis.ch/oracle/core/version"
	"golang.org/x/xerrors"
)

// Event types emitted by the contract.
const (
	EventInstantiation = "instantiation"
	EventSetOwner      = "set-owner"
	EventSetPrice      = "set-price"
	EventMigration     = "migration"
)

// instantiate records the contract version and the owner, which defaults to
// the sender.
func (c Contract) instantiate(snap store.Snapshot, env execution.Env,
	info execution.MessageInfo, msg InstantiateMsg) (execution.Response, error) {

	err := version.Set(snap, ContractName, c.version)
	if err != nil {
		return execution.Response{}, xerrors.Errorf("failed to set version: %v", err)
	}

	owner := info.Sender

	if msg.Owner != nil {
		owner, err = c.validator.Validate(*msg.Owner)
		if err != nil {
			return execution.Response{}, xerrors.Errorf("failed to validate owner: %w", err)
		}
	}

	err = saveOwner(snap, owner)
	if err != nil {
		return execution.Response{}, xerrors.Errorf("failed to save owner: %v", err)
	}

	oracle.Logger.Info().
		Str("contract", ContractName).
		Str("instance", env.Contract.Address.String()).
		Msgf("instantiated with owner %s", owner)

	event := execution.NewEvent(EventInstantiation).
		AddAttribute("owner", owner.String()).
		AddAttribute("contract_name", ContractName).
		AddAttribute("contract_version", c.version)

	return execution.NewResponse().AddEvent(event), nil
}

// execute checks that the sender is the owner and then applies the message.
func (c Contract) execute(snap store.Snapshot, env execution.Env,
	info execution.MessageInfo, msg ExecuteMsg) (execution.Response, error) {

	owner, err := loadOwner(snap)
	if err != nil {
		return execution.Response{}, xerrors.Errorf("failed to load owner: %w", err)
	}

	err = authorize(info.Sender, owner)
	if err != nil {
		return execution.Response{}, err
	}

	switch {
	case msg.SetOwner != nil:
		res, err := c.setOwner(snap, *msg.SetOwner)
		if err != nil {
			return execution.Response{}, xerrors.Errorf("failed to SET_OWNER: %w", err)
		}

		return res, nil
	case msg.SetPrice != nil:
		res, err := c.setPrice(snap, env, *msg.SetPrice)
		if err != nil {
			return execution.Response{}, xerrors.Errorf("failed to SET_PRICE: %w", err)
		}

		return res, nil
	default:
		return execution.Response{}, xerrors.New("unknown execute message")
	}
}

// setOwner replaces the owner. The previous owner loses the write access
// immediately.
func (c Contract) setOwner(snap store.Snapshot, msg SetOwnerMsg) (execution.Response, error) {
	owner, err := c.validator.Validate(msg.Owner)
	if err != nil {
		return execution.Response{}, err
	}

	err = saveOwner(snap, owner)
	if err != nil {
		return execution.Response{}, err
	}

	oracle.Logger.Info().Str("contract", ContractName).Msgf("setting owner %s", owner)

	event := execution.NewEvent(EventSetOwner).AddAttribute("owner", owner.String())

	return execution.NewResponse().AddEvent(event), nil
}

// setPrice replaces the price. The block info always comes from the
// environment. The timestamp is stored as is, and is not checked against the
// block time so that externally timestamped prices can be backfilled.
func (c Contract) setPrice(snap store.Snapshot, env execution.Env,
	msg SetPriceMsg) (execution.Response, error) {

	price := Price{
		Value:     msg.Value,
		BlockInfo: env.Block,
		Timestamp: msg.Timestamp,
	}

	err := savePrice(snap, price)
	if err != nil {
		return execution.Response{}, err
	}

	oracle.Logger.Info().
		Str("contract", ContractName).
		Uint64("height", env.Block.Height).
		Msgf("setting price %s", price.Value)

	event := execution.NewEvent(EventSetPrice).AddAttribute("value", price.Value.String())

	return execution.NewResponse().AddEvent(event), nil
}

// query returns the value for the query. It is either an access.Address or a
// Price.
func (c Contract) query(snap store.Readable, _ execution.Env, msg QueryMsg) (interface{}, error) {
	switch {
	case msg.Owner != nil:
		owner, err := loadOwner(snap)
		if err != nil {
			return nil, xerrors.Errorf("failed to query owner: %w", err)
		}

		return owner, nil
	case msg.Price != nil:
		price, err := loadPrice(snap)
		if err != nil {
			return nil, xerrors.Errorf("failed to query price: %w", err)
		}

		return price, nil
	default:
		return nil, xerrors.New("unknown query message")
	}
}

// migrate accepts the migration from an older or equal version of the same
// contract, and records the new version. The owner and the price are left
// untouched. The host is responsible for checking who triggers it.
func (c Contract) migrate(snap store.Snapshot, _ execution.Env,
	_ MigrateMsg) (execution.Response, error) {

	old, err := version.Get(snap)
	if err != nil {
		return execution.Response{}, xerrors.Errorf("failed to read contract version: %w", err)
	}

	oldVersion, err := version.Parse(old.Version)
	if err != nil {
		return execution.Response{}, &MigrationError{
			Kind:       VersionParse,
			OldName:    old.Contract,
			OldVersion: old.Version,
			NewName:    ContractName,
			NewVersion: c.version,
			Err:        xerrors.Errorf("old: %v", err),
		}
	}

	newVersion, err := version.Parse(c.version)
	if err != nil {
		return execution.Response{}, &MigrationError{
			Kind:       VersionParse,
			OldName:    old.Contract,
			OldVersion: old.Version,
			NewName:    ContractName,
			NewVersion: c.version,
			Err:        xerrors.Errorf("new: %v", err),
		}
	}

	if old.Contract != ContractName {
		return execution.Response{}, &MigrationError{
			Kind:       NameMismatch,
			OldName:    old.Contract,
			OldVersion: old.Version,
			NewName:    ContractName,
			NewVersion: c.version,
		}
	}

	if oldVersion.Compare(newVersion) > 0 {
		return execution.Response{}, &MigrationError{
			Kind:       Downgrade,
			OldName:    old.Contract,
			OldVersion: old.Version,
			NewName:    ContractName,
			NewVersion: c.version,
		}
	}

	err = version.Set(snap, ContractName, c.version)
	if err != nil {
		return execution.Response{}, xerrors.Errorf("failed to set version: %v", err)
	}

	oracle.Logger.Info().
		Str("contract", ContractName).
		Msgf("migrated from %s to %s", old.Version, c.version)

	event := execution.NewEvent(EventMigration).
		AddAttribute("old_contract_name", old.Contract).
		AddAttribute("old_contract_version", old.Version).
		AddAttribute("new_contract_name", ContractName).
		AddAttribute("new_contract_version", c.version)

	return execution.NewResponse().AddEvent(event), nil
}
