package station

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Port is the part of a serial port used by a Station. It is satisfied by
// serial.Port.
type Port interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds each Read. A Read that times out returns zero
	// bytes and no error.
	SetReadTimeout(t time.Duration) error
}

// Opener opens a port. It can be replaced to talk to something other than a
// real serial device.
type Opener func(name string, mode *serial.Mode) (Port, error)

// OpenSerial opens a real serial device.
func OpenSerial(name string, mode *serial.Mode) (Port, error) {
	port, err := serial.Open(name, mode)

	if err != nil {
		return nil, err
	}

	return port, nil
}

// serialMode returns the 8N1 mode at the given baud rate.
func serialMode(baudRate int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// formatHex formats raw bytes as space-delimited hex, for debugging.
func formatHex(b []byte) string {
	return fmt.Sprintf("% X", b)
}
