package station

import (
	"context"
)

func (p *Poller) pollTask(ctx context.Context) {
	ticker := p.station.clock.NewTicker(p.station.config.PollInterval)
	defer ticker.Stop()

	for {
		if !p.poll() {
			return
		}

		select {
		case <-ctx.Done():
			p.station.logger.Debugf("Poll task stopped.")
			return
		case <-ticker.Chan():
			// Poll again.
		}
	}
}

// poll performs one request. It returns false if polling should stop.
func (p *Poller) poll() bool {
	record, err := p.station.Query(CommandComposite)

	if err != nil {
		p.station.logger.Errorf("Error while polling: %v", err)
		p.fail(err)
		return false
	}

	if record.Len() == 0 {
		p.station.logger.Debugf("Poll yielded no observations.")
		return true
	}

	p.publish(record)

	return true
}
