package station

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// readChunkSize is the size of a single read from the port.
const readChunkSize = 64

// Station represents a weather station on a serial line. The protocol is
// half-duplex: a Station serializes its exchanges, so it is safe to share
// between goroutines, but only one request is in flight at any time.
type Station struct {
	config Config

	opener  Opener
	logger  log.FieldLogger
	clock   clockwork.Clock
	metrics *Metrics
	decoder *Decoder

	port    Port
	pending []byte
	address int
	lock    sync.Mutex
}

// Option configures a Station.
type Option func(*Station)

// WithLogger sets the logger for wire traffic and decoding diagnostics.
func WithLogger(logger log.FieldLogger) Option {
	return func(s *Station) {
		s.logger = logger
	}
}

// WithClock sets the clock used for read deadlines and capture times.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Station) {
		s.clock = clock
	}
}

// WithMetrics enables metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Station) {
		s.metrics = metrics
	}
}

// WithOpener replaces the function that opens the serial device.
func WithOpener(opener Opener) Option {
	return func(s *Station) {
		s.opener = opener
	}
}

// New returns a new station that is not yet opened. Zero values in config
// are replaced by their defaults, except for the address.
func New(config Config, opts ...Option) *Station {
	defaults := DefaultConfig()

	if config.Port == "" {
		config.Port = defaults.Port
	}
	if config.BaudRate <= 0 {
		config.BaudRate = defaults.BaudRate
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}

	s := &Station{
		config:  config,
		address: config.Address,
		opener:  OpenSerial,
		logger:  log.StandardLogger(),
		clock:   clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.decoder = &Decoder{
		Logger:  s.logger,
		Clock:   s.clock,
		Metrics: s.metrics,
	}

	return s
}

// Config returns the configuration of the station.
func (s *Station) Config() Config {
	return s.config
}

// Decoder returns the decoder that shares the logger, clock and metrics of
// the station.
func (s *Station) Decoder() *Decoder {
	return s.decoder
}

// Open opens the serial device. Opening an open station is a no-op.
func (s *Station) Open() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.port != nil {
		return nil
	}

	s.logger.Infof("Opening serial port %s.", s.config.Port)

	port, err := s.opener(s.config.Port, serialMode(s.config.BaudRate))

	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnection, s.config.Port, err)
	}

	if err := port.SetReadTimeout(s.config.Timeout); err != nil {
		port.Close()
		return fmt.Errorf("%w: %s: set read timeout: %w", ErrConnection, s.config.Port, err)
	}

	s.port = port
	s.pending = nil

	return nil
}

// Close releases the serial device. Closing a closed station is a no-op.
func (s *Station) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.port == nil {
		return nil
	}

	s.logger.Infof("Closing serial port %s.", s.config.Port)

	err := s.port.Close()

	s.port = nil
	s.pending = nil

	if err != nil {
		return fmt.Errorf("%w: close: %w", ErrIO, err)
	}

	return nil
}

// IsOpen returns true if the serial device is open.
func (s *Station) IsOpen() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.port != nil
}

// Session opens the station, invokes fn and closes the station again. The
// station is closed on every exit path, including a panic in fn.
func (s *Station) Session(fn func(s *Station) error) (err error) {
	if err := s.Open(); err != nil {
		return err
	}

	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(s)
}

// Address returns the address that prefixes every command.
func (s *Station) Address() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.address
}

// SendCommand writes a command without waiting for a reply.
func (s *Station) SendCommand(command Command) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.send(command)
}

// GetData writes a command and waits for one reply line, including its
// terminator. The whole line is bounded by the timeout, not each read. If no
// complete line arrives in time, whatever was received is returned, possibly
// nothing. A timeout is not an error. NUL
// bytes are removed from the reply.
func (s *Station) GetData(command Command) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.send(command); err != nil {
		return nil, err
	}

	return s.receive()
}

// Query writes a command and decodes the reply line.
func (s *Station) Query(command Command) (Record, error) {
	line, err := s.GetData(command)

	if err != nil {
		return Record{}, err
	}

	return s.decoder.Decode(line), nil
}

// GetAck sends an empty command, to verify that the station is alive.
func (s *Station) GetAck() ([]byte, error) {
	return s.GetData(CommandAck)
}

// GetAddress asks the station for its address. The request is not prefixed
// with an address, since it may be unknown.
func (s *Station) GetAddress() ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	frame := append([]byte(CommandGetAddress), Terminator...)

	if err := s.write(CommandGetAddress, frame); err != nil {
		return nil, err
	}

	return s.receive()
}

// SetAddress changes the address of the station. Subsequent commands are
// sent to the new address.
func (s *Station) SetAddress(address int) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.send(SetAddressCommand(address)); err != nil {
		return err
	}

	s.address = address

	return nil
}

// Reset performs a software reset.
func (s *Station) Reset() error {
	return s.SendCommand(CommandReset)
}

// PrecipCounterReset resets the accumulated rain and hail counters.
func (s *Station) PrecipCounterReset() error {
	return s.SendCommand(CommandPrecipCounterReset)
}

// PrecipIntensityReset resets the rain and hail intensities.
func (s *Station) PrecipIntensityReset() error {
	return s.SendCommand(CommandPrecipIntensityReset)
}

// MeasurementReset interrupts and restarts all measurements.
func (s *Station) MeasurementReset() error {
	return s.SendCommand(CommandMeasurementReset)
}

// SetAutomaticMode lets the station send messages on its own.
func (s *Station) SetAutomaticMode() error {
	return s.SendCommand(CommandAutomaticMode)
}

// SetPolledMode lets the station send messages on request only.
func (s *Station) SetPolledMode() error {
	return s.SendCommand(CommandPolledMode)
}

// GetWind requests the wind message.
func (s *Station) GetWind() ([]byte, error) {
	return s.GetData(CommandWind)
}

// GetPTH requests the pressure, temperature and humidity message.
func (s *Station) GetPTH() ([]byte, error) {
	return s.GetData(CommandPTH)
}

// GetPrecip requests the precipitation message.
func (s *Station) GetPrecip() ([]byte, error) {
	return s.GetData(CommandPrecipitation)
}

// GetSupervisor requests the supervisor message.
func (s *Station) GetSupervisor() ([]byte, error) {
	return s.GetData(CommandSupervisor)
}

// GetComposite requests the composite message.
func (s *Station) GetComposite() ([]byte, error) {
	return s.GetData(CommandComposite)
}

// send frames and writes a command. The lock must be held.
func (s *Station) send(command Command) error {
	return s.write(command, command.Frame(s.address))
}

func (s *Station) write(command Command, frame []byte) error {
	if s.port == nil {
		return ErrNotOpen
	}

	s.logger.Debugf("Station outgoing: %q", frame)

	if _, err := s.port.Write(frame); err != nil {
		return fmt.Errorf("%w: write: %w", ErrIO, err)
	}

	s.metrics.commandSent(command)

	return nil
}

// receive reads one reply line, bounded by the timeout. The lock must be
// held.
func (s *Station) receive() ([]byte, error) {
	line, err := s.readLine()

	if err != nil {
		return nil, err
	}

	if len(line) == 0 {
		s.logger.Debugf("Station timeout after %s.", s.config.Timeout)
		s.metrics.emptyReply()
		return nil, nil
	}

	s.logger.Debugf("Station incoming: %s", formatHex(line))

	return bytes.ReplaceAll(line, []byte{0}, nil), nil
}

func (s *Station) readLine() ([]byte, error) {
	deadline := s.clock.Now().Add(s.config.Timeout)
	buf := make([]byte, readChunkSize)

	for {
		if i := bytes.IndexByte(s.pending, '\n'); i >= 0 {
			line := s.pending[:i+1]
			s.pending = append([]byte(nil), s.pending[i+1:]...)

			return line, nil
		}

		remaining := deadline.Sub(s.clock.Now())

		if remaining <= 0 {
			return s.takePending(), nil
		}

		// Each read may only use what is left of the line timeout.
		if err := s.port.SetReadTimeout(remaining); err != nil {
			s.pending = nil
			return nil, fmt.Errorf("%w: set read timeout: %w", ErrIO, err)
		}

		n, err := s.port.Read(buf)
		s.pending = append(s.pending, buf[:n]...)

		if err != nil {
			s.pending = nil
			return nil, fmt.Errorf("%w: read: %w", ErrIO, err)
		}

		if n == 0 {
			return s.takePending(), nil
		}
	}
}

// takePending returns a partial line after a timeout.
func (s *Station) takePending() []byte {
	line := s.pending
	s.pending = nil

	return line
}
