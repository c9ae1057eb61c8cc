package station

import (
	"sync"

	"github.com/basilfx/go-utilities/taskrunner"
	"github.com/twinj/uuid"
)

// Listener represents the identifier of a listener.
type Listener uuid.UUID

// ListenerChannelSize is the size of the channel that is created for each
// listener.
const ListenerChannelSize = 32

// Poller requests the composite message of a station at a fixed interval, and
// hands every record that carries observations to its listeners.
type Poller struct {
	station *Station

	taskRunner *taskrunner.TaskRunner

	listeners map[Listener]chan Record
	lock      sync.RWMutex

	err error
}

// NewPoller returns a new poller for an opened station. It polls at the
// interval of the station configuration.
func NewPoller(station *Station) *Poller {
	return &Poller{
		station:    station,
		listeners:  map[Listener]chan Record{},
		taskRunner: taskrunner.New(),
	}
}

// Register interest in records.
func (p *Poller) Register() (Listener, chan Record) {
	c := make(chan Record, ListenerChannelSize)
	id := Listener(uuid.NewV4())

	p.lock.Lock()
	defer p.lock.Unlock()

	p.listeners[id] = c

	return id, c
}

// Unregister interest in records. The channel of the listener is closed.
func (p *Poller) Unregister(id Listener) {
	p.lock.Lock()
	defer p.lock.Unlock()

	c, ok := p.listeners[id]

	if !ok {
		return
	}

	delete(p.listeners, id)

	close(c)
}

// Serve polls until Shutdown is invoked, or the station fails. It blocks
// until polling has stopped.
func (p *Poller) Serve() {
	p.taskRunner.RunWithCancel("Poller.Poll", p.pollTask)

	p.taskRunner.Wait()
}

// Shutdown the poller. This does not close the station.
func (p *Poller) Shutdown() {
	if p.taskRunner != nil {
		p.taskRunner.Cancel()
	}
}

// Err returns the station error that stopped polling, if any.
func (p *Poller) Err() error {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.err
}

func (p *Poller) publish(record Record) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	for id, c := range p.listeners {
		select {
		case c <- record:
			continue
		default:
			p.station.logger.Errorf("Channel of listener '%s' full.", id)
		}
	}
}

func (p *Poller) fail(err error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.err = err
}
