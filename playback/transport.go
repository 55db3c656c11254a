package playback

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Sender makes the sound of one event.
type Sender interface {
	Send(e Event) error
}

type SenderFunc func(e Event) error

func (f SenderFunc) Send(e Event) error {
	return f(e)
}

// Transport plays one schedule at a time in real time. Starting a new
// schedule stops the running one.
type Transport struct {
	sender Sender

	// OnStop is called when a schedule without repeat has played its last
	// event.
	OnStop func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func NewTransport(sender Sender) *Transport {
	return &Transport{sender: sender}
}

func (t *Transport) Start(ctx context.Context, s Schedule) {
	t.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	t.mu.Lock()
	t.cancel = cancel
	t.done = done
	t.err = nil
	t.mu.Unlock()

	go func() {
		defer close(done)
		err := t.run(ctx, s)
		if err != nil && !errors.Is(err, context.Canceled) {
			t.mu.Lock()
			t.err = err
			t.mu.Unlock()
		}
	}()
}

// Stop cancels the running schedule and waits for it to wind down.
func (t *Transport) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the running schedule ends and reports the send error
// that ended it, if any.
func (t *Transport) Wait() error {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done != nil {
		<-done
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Transport) run(ctx context.Context, s Schedule) error {
	begin := time.Now()

	for pass := 0; ; pass++ {
		shift := float64(pass)*s.Length() - s.Start
		for _, e := range s.Events {
			if err := sleepUntil(ctx, begin.Add(seconds(e.Time+shift))); err != nil {
				return err
			}
			if err := t.sender.Send(e); err != nil {
				return errors.Wrapf(err, "send %s", e.Sample.Name)
			}
		}

		if !s.Repeat || len(s.Events) == 0 || s.Length() <= 0 {
			break
		}
	}

	if t.OnStop != nil {
		t.OnStop()
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func sleepUntil(ctx context.Context, at time.Time) error {
	d := time.Until(at)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
