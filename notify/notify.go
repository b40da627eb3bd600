// Package notify provides a coalesced asynchronous updater: a non-blocking
// trigger on one side and a dedicated handler goroutine on the other. Any
// number of triggers before the handler runs collapse into one dispatch.
package notify

import "sync"

// Updater invokes a handler on its own goroutine after Trigger is called.
type Updater struct {
	handler   func()
	wake      chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New returns a started updater. The handler always runs on the updater
// goroutine, never on the triggering one.
func New(handler func()) *Updater {
	u := &Updater{
		handler: handler,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	u.wg.Add(1)
	go u.loop()
	return u
}

// Trigger requests a dispatch. It never blocks: if a dispatch is already
// pending, the request coalesces into it.
func (u *Updater) Trigger() {
	select {
	case u.wake <- struct{}{}:
	default:
	}
}

// Close stops the updater and waits for the handler to return. A trigger
// that raced with Close is still dispatched, so consumers must tolerate
// one late delivery. Triggers after Close are ignored.
func (u *Updater) Close() {
	u.closeOnce.Do(func() {
		close(u.done)
	})
	u.wg.Wait()
}

func (u *Updater) loop() {
	defer u.wg.Done()
	for {
		select {
		case <-u.wake:
			u.handler()
		case <-u.done:
			// serve the wake-up that raced with close
			select {
			case <-u.wake:
				u.handler()
			default:
			}
			return
		}
	}
}
