// Package decimal implements an unsigned fixed-point decimal with 18
// fractional digits, backed by a 256-bit integer.
//
// The module never performs arithmetic on prices. The type only has to parse
// and format the values exactly, so that what is stored is what was sent.
package decimal

import (
	"encoding/json"
	"strings"

	"github.com/holiman/uint256"
	"golang.org/x/xerrors"
)

// Places is the number of fractional digits of a Decimal256.
const Places = 18

// fractional is 10^Places.
var fractional = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Places))

// Decimal256 is a fixed-point decimal. The zero value is 0.
type Decimal256 struct {
	atomics uint256.Int
}

// Zero returns the decimal 0.
func Zero() Decimal256 {
	return Decimal256{}
}

// One returns the decimal 1.
func One() Decimal256 {
	return Decimal256{atomics: *fractional.Clone()}
}

// FromAtomics returns the decimal of value atomics * 10^-Places.
func FromAtomics(atomics *uint256.Int) Decimal256 {
	return Decimal256{atomics: *atomics.Clone()}
}

// Parse returns the decimal of a string such as "1.23" or "42".
func Parse(s string) (Decimal256, error) {
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" {
		return Decimal256{}, xerrors.Errorf("invalid decimal '%s': missing whole part", s)
	}

	if hasDot && frac == "" {
		return Decimal256{}, xerrors.Errorf("invalid decimal '%s': missing fractional part", s)
	}

	if len(frac) > Places {
		return Decimal256{}, xerrors.Errorf("invalid decimal '%s': more than %d fractional digits",
			s, Places)
	}

	if !isDigits(whole) || !isDigits(frac) {
		return Decimal256{}, xerrors.Errorf("invalid decimal '%s': unexpected character", s)
	}

	value, err := uint256.FromDecimal(whole)
	if err != nil {
		return Decimal256{}, xerrors.Errorf("invalid decimal '%s': %v", s, err)
	}

	atomics, overflow := new(uint256.Int).MulOverflow(value, fractional)
	if overflow {
		return Decimal256{}, xerrors.Errorf("invalid decimal '%s': overflow", s)
	}

	if frac != "" {
		padded := frac + strings.Repeat("0", Places-len(frac))

		fracValue, err := uint256.FromDecimal(padded)
		if err != nil {
			return Decimal256{}, xerrors.Errorf("invalid decimal '%s': %v", s, err)
		}

		_, overflow = atomics.AddOverflow(atomics, fracValue)
		if overflow {
			return Decimal256{}, xerrors.Errorf("invalid decimal '%s': overflow", s)
		}
	}

	return Decimal256{atomics: *atomics}, nil
}

// MustParse is like Parse but panics when the string is invalid.
func MustParse(s string) Decimal256 {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return d
}

// Atomics returns the underlying integer, i.e. the value times 10^Places.
func (d Decimal256) Atomics() *uint256.Int {
	return d.atomics.Clone()
}

// IsZero returns true if the decimal is 0.
func (d Decimal256) IsZero() bool {
	return d.atomics.IsZero()
}

// Equal returns true if both decimals have the same value.
func (d Decimal256) Equal(other Decimal256) bool {
	return d.atomics.Eq(&other.atomics)
}

// Cmp returns -1, 0 or +1 if the decimal is lower, equal or greater than the
// other.
func (d Decimal256) Cmp(other Decimal256) int {
	return d.atomics.Cmp(&other.atomics)
}

// String implements fmt.Stringer. It returns the shortest representation of
// the decimal, without trailing zeros.
func (d Decimal256) String() string {
	whole := new(uint256.Int).Div(&d.atomics, fractional)
	frac := new(uint256.Int).Mod(&d.atomics, fractional)

	if frac.IsZero() {
		return whole.Dec()
	}

	digits := frac.Dec()
	digits = strings.Repeat("0", Places-len(digits)) + digits
	digits = strings.TrimRight(digits, "0")

	return whole.Dec() + "." + digits
}

// MarshalJSON implements json.Marshaler. The decimal is encoded as a string.
func (d Decimal256) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal256) UnmarshalJSON(data []byte) error {
	var s string

	err := json.Unmarshal(data, &s)
	if err != nil {
		return xerrors.Errorf("decimal must be a string: %v", err)
	}

	res, err := Parse(s)
	if err != nil {
		return err
	}

	*d = res

	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
