package simpleoracle

import (
	"bytes"
	"encoding/json"

	"go.dedis.ch/oracle/core/decimal"
	"go.dedis.ch/oracle/core/execution"
	"golang.org/x/xerrors"
)

// InstantiateMsg is the message to create an instance of the contract.
type InstantiateMsg struct {
	// Owner is the owner of the contract who can execute value changes. If it
	// is not set, then it will be the instantiator.
	Owner *string `json:"owner"`
}

// ExecuteMsg is the message of a state transition. Exactly one of the fields
// is set.
type ExecuteMsg struct {
	SetOwner *SetOwnerMsg `json:"set_owner,omitempty"`
	SetPrice *SetPriceMsg `json:"set_price,omitempty"`
}

// SetOwnerMsg changes the owner.
type SetOwnerMsg struct {
	Owner string `json:"owner"`
}

// SetPriceMsg sets the price.
type SetPriceMsg struct {
	// Value is the new price value.
	Value decimal.Decimal256 `json:"value"`

	// Timestamp is an optional timestamp for the price, independent of the
	// block time.
	Timestamp *execution.Timestamp `json:"timestamp"`
}

// UnmarshalJSON implements json.Unmarshaler. The value is mandatory and
// unknown fields are rejected.
func (m *SetPriceMsg) UnmarshalJSON(data []byte) error {
	var aux struct {
		Value     *decimal.Decimal256  `json:"value"`
		Timestamp *execution.Timestamp `json:"timestamp"`
	}

	err := decodeStrict(data, &aux)
	if err != nil {
		return err
	}

	if aux.Value == nil {
		return xerrors.New("missing field 'value'")
	}

	m.Value = *aux.Value
	m.Timestamp = aux.Timestamp

	return nil
}

// QueryMsg is the message to read the state. Exactly one of the fields is set.
type QueryMsg struct {
	// Price returns the current price.
	Price *struct{} `json:"price,omitempty"`

	// Owner returns the owner.
	Owner *struct{} `json:"owner,omitempty"`
}

// MigrateMsg is the message provided when the code of an instance is replaced.
type MigrateMsg struct{}

// Price is the latest price published by the owner.
type Price struct {
	// Value is the price value set via SetPrice.
	Value decimal.Decimal256 `json:"value"`

	// BlockInfo is the block info when this price was set.
	BlockInfo execution.BlockInfo `json:"block_info"`

	// Timestamp is an optional timestamp for the price, independent of the
	// block time.
	Timestamp *execution.Timestamp `json:"timestamp"`
}

// NewSetOwner returns the execute message to change the owner.
func NewSetOwner(owner string) ExecuteMsg {
	return ExecuteMsg{SetOwner: &SetOwnerMsg{Owner: owner}}
}

// NewSetPrice returns the execute message to set the price. The timestamp can
// be nil.
func NewSetPrice(value decimal.Decimal256, ts *execution.Timestamp) ExecuteMsg {
	return ExecuteMsg{SetPrice: &SetPriceMsg{Value: value, Timestamp: ts}}
}

// NewPriceQuery returns the query message for the price.
func NewPriceQuery() QueryMsg {
	return QueryMsg{Price: &struct{}{}}
}

// NewOwnerQuery returns the query message for the owner.
func NewOwnerQuery() QueryMsg {
	return QueryMsg{Owner: &struct{}{}}
}

// variants returns the number of fields set in the message.
func (m ExecuteMsg) variants() int {
	n := 0
	if m.SetOwner != nil {
		n++
	}
	if m.SetPrice != nil {
		n++
	}

	return n
}

func (m QueryMsg) variants() int {
	n := 0
	if m.Price != nil {
		n++
	}
	if m.Owner != nil {
		n++
	}

	return n
}

// DecodeInstantiate decodes the JSON message.
func DecodeInstantiate(data []byte) (InstantiateMsg, error) {
	var msg InstantiateMsg

	err := decodeStrict(data, &msg)
	if err != nil {
		return msg, xerrors.Errorf("invalid instantiate message: %v", err)
	}

	return msg, nil
}

// DecodeExecute decodes the JSON message. It fails if the message does not
// hold exactly one known variant.
func DecodeExecute(data []byte) (ExecuteMsg, error) {
	var msg ExecuteMsg

	err := decodeStrict(data, &msg)
	if err != nil {
		return msg, xerrors.Errorf("invalid execute message: %v", err)
	}

	if msg.variants() != 1 {
		return msg, xerrors.Errorf("invalid execute message: expected one variant, got %d",
			msg.variants())
	}

	return msg, nil
}

// DecodeQuery decodes the JSON message. It fails if the message does not hold
// exactly one known variant.
func DecodeQuery(data []byte) (QueryMsg, error) {
	var msg QueryMsg

	err := decodeStrict(data, &msg)
	if err != nil {
		return msg, xerrors.Errorf("invalid query message: %v", err)
	}

	if msg.variants() != 1 {
		return msg, xerrors.Errorf("invalid query message: expected one variant, got %d",
			msg.variants())
	}

	return msg, nil
}

// DecodeMigrate decodes the JSON message. An empty input is accepted.
func DecodeMigrate(data []byte) (MigrateMsg, error) {
	var msg MigrateMsg

	if len(bytes.TrimSpace(data)) == 0 {
		return msg, nil
	}

	err := decodeStrict(data, &msg)
	if err != nil {
		return msg, xerrors.Errorf("invalid migrate message: %v", err)
	}

	return msg, nil
}

// Encode returns the JSON encoding of a message.
func Encode(msg interface{}) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode: %v", err)
	}

	return data, nil
}

func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	return dec.Decode(v)
}
