package station

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus/hooks/test"
	"go.bug.st/serial"
)

// fakePort emulates a serial port. Reads return queued bytes, or time out
// immediately when nothing is queued.
type fakePort struct {
	lock sync.Mutex

	written  bytes.Buffer
	incoming []byte
	respond  func(frame []byte) []byte

	writeErr error
	readErr  error

	timeout time.Duration
	closed  int
}

func (f *fakePort) Read(p []byte) (int, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.readErr != nil {
		return 0, f.readErr
	}

	n := copy(p, f.incoming)
	f.incoming = f.incoming[n:]

	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.writeErr != nil {
		return 0, f.writeErr
	}

	f.written.Write(p)

	if f.respond != nil {
		f.incoming = append(f.incoming, f.respond(p)...)
	}

	return len(p), nil
}

func (f *fakePort) Close() error {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.closed++

	return nil
}

func (f *fakePort) SetReadTimeout(t time.Duration) error {
	f.timeout = t
	return nil
}

func (f *fakePort) queue(data string) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.incoming = append(f.incoming, data...)
}

func (f *fakePort) output() string {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.written.String()
}

var testTime = time.Date(2020, 9, 18, 23, 7, 15, 0, time.UTC)

// newTestStation returns an opened station that talks to port.
func newTestStation(t *testing.T, port *fakePort, opts ...Option) (*Station, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()

	opts = append([]Option{
		WithLogger(logger),
		WithClock(clockwork.NewFakeClockAt(testTime)),
		WithOpener(func(name string, mode *serial.Mode) (Port, error) {
			return port, nil
		}),
	}, opts...)

	s := New(DefaultConfig(), opts...)

	if err := s.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s, hook
}
