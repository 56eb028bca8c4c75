// package notify broadcasts the author commit counts discovered while serving
// a request to every registered observer.
//
// A Stream covers exactly one request cycle: any number of values followed by
// at most one terminal signal, either completion or an error. Long-lived
// observers are kept in a Registry, which hands out a fresh Stream per request
// so that concurrent requests never share terminal state.
package notify

import (
	"sync"

	"github.com/open-sauced/pizza/analyzer/pkg/insights"
)

// Observer receives the notifications of a Stream.
type Observer interface {
	OnNext(value insights.AuthorCommits)
	OnError(err error)
	OnCompleted()
}

// Subscription is the handle returned when subscribing an Observer. Calling
// Unsubscribe stops any further delivery to that observer.
type Subscription struct {
	once   sync.Once
	remove func()
}

// Unsubscribe deregisters the observer. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.remove)
}

type entry struct {
	id       uint64
	observer Observer
}

// subscriberList is the registration list shared by Stream and Registry.
type subscriberList struct {
	lock    sync.Mutex
	nextID  uint64
	entries []entry
}

func (l *subscriberList) add(o Observer) *Subscription {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, entry{id: id, observer: o})

	return &Subscription{remove: func() { l.remove(id) }}
}

func (l *subscriberList) remove(id uint64) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

// snapshot copies the registered observers in subscription order so delivery
// happens without holding the lock.
func (l *subscriberList) snapshot() []Observer {
	l.lock.Lock()
	defer l.lock.Unlock()

	observers := make([]Observer, 0, len(l.entries))
	for _, e := range l.entries {
		observers = append(observers, e.observer)
	}
	return observers
}

func (l *subscriberList) clear() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.entries = nil
}

func (l *subscriberList) len() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.entries)
}

// Stream delivers the values of a single request cycle to its subscribers.
// It is safe for concurrent use.
type Stream struct {
	subscribers subscriberList

	// terminal serializes Complete and Error so only the first one wins.
	terminal sync.Mutex
	done     bool
}

// NewStream returns a Stream with no subscribers.
func NewStream() *Stream {
	return &Stream{}
}

// Subscribe registers an observer with the stream. Subscribing to a stream
// that has already terminated returns a handle that never delivers anything.
func (s *Stream) Subscribe(o Observer) *Subscription {
	if s.Done() {
		return &Subscription{remove: func() {}}
	}
	return s.subscribers.add(o)
}

// Subscribers returns the number of currently registered observers.
func (s *Stream) Subscribers() int {
	return s.subscribers.len()
}

// Done reports whether the stream has delivered its terminal signal.
func (s *Stream) Done() bool {
	s.terminal.Lock()
	defer s.terminal.Unlock()
	return s.done
}

// Next pushes a value to every current subscriber. Values pushed after the
// stream terminated are dropped. Ordering against a terminal signal is only
// guaranteed when both are issued from the same goroutine.
func (s *Stream) Next(value insights.AuthorCommits) {
	if s.Done() {
		return
	}
	for _, o := range s.subscribers.snapshot() {
		o.OnNext(value)
	}
}

// Complete signals completion to every current subscriber and releases them.
// It returns false if the stream had already terminated.
func (s *Stream) Complete() bool {
	observers, ok := s.finish()
	if !ok {
		return false
	}
	for _, o := range observers {
		o.OnCompleted()
	}
	return true
}

// Error signals err to every current subscriber and releases them.
// It returns false if the stream had already terminated.
func (s *Stream) Error(err error) bool {
	observers, ok := s.finish()
	if !ok {
		return false
	}
	for _, o := range observers {
		o.OnError(err)
	}
	return true
}

func (s *Stream) finish() ([]Observer, bool) {
	s.terminal.Lock()
	defer s.terminal.Unlock()

	if s.done {
		return nil, false
	}
	s.done = true

	observers := s.subscribers.snapshot()
	s.subscribers.clear()
	return observers, true
}
