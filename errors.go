package station

import "errors"

// Errors surfaced by a Station. They are wrapped, so compare with errors.Is.
var (
	// ErrConnection indicates that the serial device could not be opened.
	ErrConnection = errors.New("station: cannot open device")

	// ErrIO indicates a read or write failure on an open device.
	ErrIO = errors.New("station: i/o failure")

	// ErrNotOpen is returned when a command is issued before Open.
	ErrNotOpen = errors.New("station: device not open")
)
