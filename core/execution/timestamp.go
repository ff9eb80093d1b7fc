package execution

import (
	"encoding/json"
	"strconv"
	"time"

	"golang.org/x/xerrors"
)

// Timestamp is a point in time in nanoseconds since the UNIX epoch. It is
// encoded in JSON as a string to avoid losing precision.
type Timestamp uint64

// NewTimestamp returns the timestamp of the given time. Times before the epoch
// are truncated to the epoch.
func NewTimestamp(t time.Time) Timestamp {
	nanos := t.UnixNano()
	if nanos < 0 {
		return 0
	}

	return Timestamp(nanos)
}

// FromSeconds returns the timestamp of the number of seconds since the epoch.
func FromSeconds(seconds uint64) Timestamp {
	return Timestamp(seconds * uint64(time.Second))
}

// Nanos returns the number of nanoseconds since the epoch.
func (ts Timestamp) Nanos() uint64 {
	return uint64(ts)
}

// Seconds returns the number of whole seconds since the epoch.
func (ts Timestamp) Seconds() uint64 {
	return uint64(ts) / uint64(time.Second)
}

// PlusNanos returns the timestamp moved forward by n nanoseconds.
func (ts Timestamp) PlusNanos(n uint64) Timestamp {
	return ts + Timestamp(n)
}

// PlusSeconds returns the timestamp moved forward by n seconds.
func (ts Timestamp) PlusSeconds(n uint64) Timestamp {
	return ts.PlusNanos(n * uint64(time.Second))
}

// PlusHours returns the timestamp moved forward by n hours.
func (ts Timestamp) PlusHours(n uint64) Timestamp {
	return ts.PlusNanos(n * uint64(time.Hour))
}

// MinusHours returns the timestamp moved backward by n hours. It saturates at
// the epoch.
func (ts Timestamp) MinusHours(n uint64) Timestamp {
	d := Timestamp(n * uint64(time.Hour))
	if d > ts {
		return 0
	}

	return ts - d
}

// Time returns the timestamp as a UTC time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(0, int64(ts)).UTC()
}

// String implements fmt.Stringer.
func (ts Timestamp) String() string {
	return strconv.FormatUint(uint64(ts), 10)
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string

	err := json.Unmarshal(data, &s)
	if err != nil {
		return xerrors.Errorf("timestamp must be a string: %v", err)
	}

	nanos, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return xerrors.Errorf("invalid timestamp '%s': %v", s, err)
	}

	*ts = Timestamp(nanos)

	return nil
}
