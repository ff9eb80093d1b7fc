// Package version manages the (name, version) metadata of a contract
// instance. The host keeps it next to the state of the instance so that the
// code replacing it can decide whether the migration is compatible.
package version

import (
	"encoding/json"
	"strings"

	"go.dedis.ch/oracle/core/store"
	"golang.org/x/mod/semver"
	"golang.org/x/xerrors"
)

// Key is the key of the metadata in the storage of the instance.
const Key = "contract_info"

// ContractVersion is the metadata of the code of an instance.
type ContractVersion struct {
	// Contract is the name of the contract code.
	Contract string `json:"contract"`

	// Version is the semantic version of the contract code.
	Version string `json:"version"`
}

// Get returns the metadata stored in the snapshot, or a store.NotFoundError
// if none is set.
func Get(r store.Readable) (ContractVersion, error) {
	data, err := r.Get([]byte(Key))
	if err != nil {
		return ContractVersion{}, xerrors.Errorf("failed to read: %v", err)
	}

	if data == nil {
		return ContractVersion{}, store.NotFoundError{Key: Key}
	}

	var cv ContractVersion

	err = json.Unmarshal(data, &cv)
	if err != nil {
		return ContractVersion{}, xerrors.Errorf("failed to decode: %v", err)
	}

	return cv, nil
}

// Set stores the metadata in the snapshot.
func Set(w store.Writable, name, version string) error {
	data, err := json.Marshal(ContractVersion{Contract: name, Version: version})
	if err != nil {
		return xerrors.Errorf("failed to encode: %v", err)
	}

	err = w.Set([]byte(Key), data)
	if err != nil {
		return xerrors.Errorf("failed to write: %v", err)
	}

	return nil
}

// Version is a parsed semantic version MAJOR.MINOR.PATCH with an optional
// pre-release and build metadata.
type Version struct {
	raw string
}

// Parse returns the version of the string. The three numeric components are
// required.
func Parse(s string) (Version, error) {
	v := "v" + s

	if !semver.IsValid(v) {
		return Version{}, xerrors.Errorf("invalid semantic version '%s'", s)
	}

	core := v
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}

	if strings.Count(core, ".") != 2 {
		return Version{}, xerrors.Errorf("invalid semantic version '%s': incomplete", s)
	}

	return Version{raw: v}, nil
}

// Compare returns -1, 0 or +1 if the version precedes, is equal to, or
// follows the other one. Versions equal by precedence are then ordered by
// their build metadata so that the order is total: no metadata comes first,
// then the identifiers are compared one by one like pre-release ones.
func (v Version) Compare(other Version) int {
	res := semver.Compare(v.raw, other.raw)
	if res != 0 {
		return res
	}

	return compareBuild(semver.Build(v.raw), semver.Build(other.raw))
}

func compareBuild(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}

	as := strings.Split(strings.TrimPrefix(a, "+"), ".")
	bs := strings.Split(strings.TrimPrefix(b, "+"), ".")

	for i := 0; i < len(as) && i < len(bs); i++ {
		res := compareIdent(as[i], bs[i])
		if res != 0 {
			return res
		}
	}

	return compareInt(len(as), len(bs))
}

// compareIdent orders numeric identifiers numerically and before alphanumeric
// ones, which are ordered lexically. Among numeric identifiers of the same
// value, the one with more leading zeros comes last.
func compareIdent(a, b string) int {
	na, nb := isNum(a), isNum(b)

	switch {
	case na && nb:
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")

		res := compareInt(len(ta), len(tb))
		if res == 0 {
			res = strings.Compare(ta, tb)
		}
		if res == 0 {
			res = compareInt(len(a), len(b))
		}

		return res
	case na:
		return -1
	case nb:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func isNum(s string) bool {
	if s == "" {
		return false
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return strings.TrimPrefix(v.raw, "v")
}
