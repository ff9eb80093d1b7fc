package simpleoracle

import (
	"encoding/json"

	"go.dedis.ch/oracle/core/access"
	"go.dedis.ch/oracle/core/store"
	"golang.org/x/xerrors"
)

const (
	// OwnerKey is the key of the owner in the storage of the instance.
	OwnerKey = "owner"

	// PriceKey is the key of the price in the storage of the instance.
	PriceKey = "price"
)

// loadOwner returns the owner, or a store.NotFoundError if none is stored.
func loadOwner(r store.Readable) (access.Address, error) {
	var owner access.Address

	found, err := load(r, OwnerKey, &owner)
	if err != nil {
		return "", err
	}

	if !found {
		return "", store.NotFoundError{Key: OwnerKey}
	}

	return owner, nil
}

func saveOwner(w store.Writable, owner access.Address) error {
	return save(w, OwnerKey, owner)
}

// loadPrice returns the price, or a store.NotFoundError if none has been set
// yet.
func loadPrice(r store.Readable) (Price, error) {
	price, err := mayLoadPrice(r)
	if err != nil {
		return Price{}, err
	}

	if price == nil {
		return Price{}, store.NotFoundError{Key: PriceKey}
	}

	return *price, nil
}

// mayLoadPrice returns the price, or nil if none has been set yet.
func mayLoadPrice(r store.Readable) (*Price, error) {
	var price Price

	found, err := load(r, PriceKey, &price)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return &price, nil
}

func savePrice(w store.Writable, price Price) error {
	return save(w, PriceKey, price)
}

func load(r store.Readable, key string, v interface{}) (bool, error) {
	data, err := r.Get([]byte(key))
	if err != nil {
		return false, xerrors.Errorf("failed to read %s: %v", key, err)
	}

	if data == nil {
		return false, nil
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return false, xerrors.Errorf("failed to decode %s: %v", key, err)
	}

	return true, nil
}

func save(w store.Writable, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return xerrors.Errorf("failed to encode %s: %v", key, err)
	}

	err = w.Set([]byte(key), data)
	if err != nil {
		return xerrors.Errorf("failed to write %s: %v", key, err)
	}

	return nil
}
