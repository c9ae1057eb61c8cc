package station

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c chan Record) Record {
	t.Helper()

	select {
	case record := <-c:
		return record
	case <-time.After(time.Second):
		t.Fatal("timeout while waiting for record")
		return Record{}
	}
}

func TestPoller(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testTime)
	port := &fakePort{
		respond: func(frame []byte) []byte {
			return []byte("0R0,Ta=16.0C,Ua=50.0P\r\n")
		},
	}
	s, _ := newTestStation(t, port, WithClock(clock))

	p := NewPoller(s)
	id, c := p.Register()

	done := make(chan struct{})

	go func() {
		p.Serve()
		close(done)
	}()

	first := receive(t, c)
	humidity, ok := first.Get("humidity")
	assert.True(t, ok)
	assert.Equal(t, 50.0, humidity)

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(DefaultPollInterval)

	second := receive(t, c)
	assert.Equal(t, first.Observations, second.Observations)

	p.Shutdown()
	<-done

	assert.NoError(t, p.Err())

	p.Unregister(id)

	_, open := <-c
	assert.False(t, open)
}

func TestPollerSkipsEmptyRecords(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testTime)
	replies := []string{"", "0R0\r\n", "0R0,Ta=16.0C\r\n"}
	polled := make(chan struct{}, len(replies))
	port := &fakePort{
		respond: func(frame []byte) []byte {
			select {
			case polled <- struct{}{}:
			default:
			}

			reply := replies[0]
			if len(replies) > 1 {
				replies = replies[1:]
			}
			return []byte(reply)
		},
	}
	s, _ := newTestStation(t, port, WithClock(clock))

	p := NewPoller(s)
	_, c := p.Register()

	done := make(chan struct{})

	go func() {
		p.Serve()
		close(done)
	}()

	for i := 0; i < 2; i++ {
		<-polled
		require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
		clock.Advance(DefaultPollInterval)
	}

	record := receive(t, c)
	assert.Equal(t, 1, record.Len())

	p.Shutdown()
	<-done

	assert.Empty(t, c)
}

func TestPollerStopsOnFailure(t *testing.T) {
	port := &fakePort{readErr: errors.New("device unplugged")}
	s, _ := newTestStation(t, port)

	p := NewPoller(s)
	p.Serve()

	assert.ErrorIs(t, p.Err(), ErrIO)
}
