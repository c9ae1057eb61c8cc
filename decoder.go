package station

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

var (
	fieldSeparator = []byte(",")
	valueSeparator = []byte("=")
)

// Decoder turns reply lines into records. Decoding never fails: a field that
// cannot be decoded is logged and skipped (or stored as invalid), and the
// remaining fields are processed as usual.
type Decoder struct {
	Logger  log.FieldLogger
	Clock   clockwork.Clock
	Metrics *Metrics
}

// NewDecoder returns a decoder that logs to the standard logger and stamps
// records with the real time.
func NewDecoder() *Decoder {
	return &Decoder{
		Logger: log.StandardLogger(),
		Clock:  clockwork.NewRealClock(),
	}
}

// Parse decodes a reply line using a default decoder.
func Parse(raw []byte) Record {
	return NewDecoder().Decode(raw)
}

// Decode parses one reply line, e.g. "0R2,Ta=27.9C,Ua=39.4P,Pa=1003.2H".
func (d *Decoder) Decode(raw []byte) Record {
	record := Record{
		Observations: map[string]Value{},
	}

	for _, field := range bytes.Split(bytes.TrimSpace(raw), fieldSeparator) {
		if len(field) == 0 {
			continue
		}

		switch bytes.Count(field, valueSeparator) {
		case 0:
			record.Type = append([]byte(nil), field...)
		case 1:
			d.decodeField(&record, field)
		default:
			d.Logger.Warnf("Skipping malformed field '%s'.", field)
			d.Metrics.fieldRejected(RejectMalformed)
		}
	}

	record.Time = d.Clock.Now()
	d.Metrics.recordDecoded()

	return record
}

func (d *Decoder) decodeField(record *Record, field []byte) {
	parts := bytes.SplitN(field, valueSeparator, 2)
	code, value := string(parts[0]), parts[1]

	if code == InformationCode {
		return
	}

	name, ok := LookupObservation(code)

	if !ok {
		d.Logger.Warnf("Unknown sensor %s: %s", code, value)
		d.Metrics.fieldRejected(RejectUnknown)
		return
	}

	if len(value) == 0 {
		d.Logger.Warnf("Parse failed for %s: empty value", code)
		d.Metrics.fieldRejected(RejectNumber)
		record.Observations[name] = Value{}
		return
	}

	// The last character is the unit, or the invalid flag.
	flag := value[len(value)-1]

	if flag == InvalidFlag {
		record.Observations[name] = Value{Flag: flag}
		return
	}

	number, err := parseNumber(string(value[:len(value)-1]))

	if err != nil {
		d.Logger.Warnf("Parse failed for %s (%s): %v", code, value, err)
		d.Metrics.fieldRejected(RejectNumber)
		record.Observations[name] = Value{Flag: flag}
		return
	}

	record.Observations[name] = Value{
		Float: number,
		Valid: true,
		Flag:  flag,
	}
}

// parseNumber parses a decimal number. Hexadecimal notation is refused, and
// a number too large for a float64 becomes an infinity.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)

	if strings.ContainsAny(s, "xX") {
		return 0, fmt.Errorf("invalid number %q", s)
	}

	number, err := strconv.ParseFloat(s, 64)

	if errors.Is(err, strconv.ErrRange) && math.IsInf(number, 0) {
		return number, nil
	}

	return number, err
}
