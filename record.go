package station

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// InvalidFlag is the trailing flag character that marks a value as invalid.
const InvalidFlag = '#'

// Value is a single decoded observation. A value is invalid when the station
// flagged it with InvalidFlag, or when its numeric part could not be parsed.
type Value struct {
	Float float64
	Valid bool

	// Flag is the trailing unit or validity character, e.g. 'C' or '#'.
	Flag byte
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if !v.Valid {
		return "None"
	}

	return fmt.Sprintf("%g", v.Float)
}

// Record contains a parsed representation of one reply line.
type Record struct {
	// Type is the leading frame identifier, e.g. "0R0". If a line carries
	// more than one, the last one is kept.
	Type []byte

	// Observations is keyed by observation name.
	Observations map[string]Value

	// Time is the moment of decoding, not the device time.
	Time time.Time
}

// Get returns the value of an observation, and whether it is present and
// valid.
func (r Record) Get(name string) (float64, bool) {
	v, ok := r.Observations[name]

	if !ok || !v.Valid {
		return 0, false
	}

	return v.Float, true
}

// Has returns true if the observation is present, valid or not.
func (r Record) Has(name string) bool {
	_, ok := r.Observations[name]
	return ok
}

// Len returns the number of observations.
func (r Record) Len() int {
	return len(r.Observations)
}

// Fields renders the record as log fields. Invalid observations map to nil,
// the frame identifier to "type" and the capture time to "datetime".
func (r Record) Fields() log.Fields {
	fields := log.Fields{
		"datetime": r.Time,
	}

	if r.Type != nil {
		fields["type"] = string(r.Type)
	}

	for name, v := range r.Observations {
		if v.Valid {
			fields[name] = v.Float
		} else {
			fields[name] = nil
		}
	}

	return fields
}
