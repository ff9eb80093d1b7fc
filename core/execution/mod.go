// Package execution defines the context provided by the host to a contract
// invocation, and what a contract returns to it.
//
// The host is authoritative for the block information and the sender of a
// message. A contract never takes them from a message.
package execution

import (
	"go.dedis.ch/oracle/core/access"
)

// BlockInfo is the information of the block the invocation belongs to.
type BlockInfo struct {
	// Height is the height of the block.
	Height uint64 `json:"height"`

	// Time is the time of the block.
	Time Timestamp `json:"time"`

	// ChainID is the identifier of the chain.
	ChainID string `json:"chain_id"`
}

// ContractInfo is the information of the contract instance being invoked.
type ContractInfo struct {
	Address access.Address `json:"address"`
}

// Env is the environment of an invocation.
type Env struct {
	Block    BlockInfo    `json:"block"`
	Contract ContractInfo `json:"contract"`
}

// MessageInfo contains the information about the message of a mutating
// invocation.
type MessageInfo struct {
	// Sender is the identity authenticated by the host.
	Sender access.Address `json:"sender"`
}

// Attribute is a key/value pair of an event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is an observable effect of an invocation.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// NewEvent returns an event of the given type without attributes.
func NewEvent(typ string) Event {
	return Event{
		Type:       typ,
		Attributes: []Attribute{},
	}
}

// AddAttribute returns the event with the attribute appended.
func (e Event) AddAttribute(key, value string) Event {
	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: value})
	return e
}

// Get returns the value of the first attribute with the key, and false if
// there is none.
func (e Event) Get(key string) (string, bool) {
	for _, attr := range e.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}

	return "", false
}

// Response is the result of a successful mutating invocation.
type Response struct {
	Events []Event `json:"events"`
}

// NewResponse returns an empty response.
func NewResponse() Response {
	return Response{
		Events: []Event{},
	}
}

// AddEvent returns the response with the event appended.
func (r Response) AddEvent(e Event) Response {
	r.Events = append(r.Events, e)
	return r
}
