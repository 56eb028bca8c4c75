package notify

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-sauced/pizza/analyzer/pkg/insights"
)

// recorder is an Observer that keeps every event as a readable string.
type recorder struct {
	lock   sync.Mutex
	events []string
}

func (r *recorder) OnNext(value insights.AuthorCommits) {
	r.record(fmt.Sprintf("next %s %d", value.Author, value.CommitCount))
}

func (r *recorder) OnError(err error) {
	r.record("error " + err.Error())
}

func (r *recorder) OnCompleted() {
	r.record("completed")
}

func (r *recorder) record(event string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) Events() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.events...)
}

func TestStreamDeliversValuesThenCompletion(t *testing.T) {
	stream := NewStream()
	first, second := &recorder{}, &recorder{}
	stream.Subscribe(first)
	stream.Subscribe(second)

	stream.Next(insights.AuthorCommits{Author: "alice", CommitCount: 3})
	stream.Next(insights.AuthorCommits{Author: "bob", CommitCount: 0})
	require.True(t, stream.Complete())

	expected := []string{"next alice 3", "next bob 0", "completed"}
	assert.Equal(t, expected, first.Events())
	assert.Equal(t, expected, second.Events())
	assert.True(t, stream.Done())
	assert.Equal(t, 0, stream.Subscribers())
}

func TestStreamSignalsOnlyOneTerminal(t *testing.T) {
	tests := []struct {
		name     string
		signal   func(s *Stream) bool
		expected []string
	}{
		{
			name:     "Completion wins over later error",
			signal:   func(s *Stream) bool { return s.Complete() },
			expected: []string{"completed"},
		},
		{
			name:     "Error wins over later completion",
			signal:   func(s *Stream) bool { return s.Error(errors.New("boom")) },
			expected: []string{"error boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := NewStream()
			rec := &recorder{}
			stream.Subscribe(rec)

			require.True(t, tt.signal(stream))
			assert.False(t, stream.Complete())
			assert.False(t, stream.Error(errors.New("late")))
			stream.Next(insights.AuthorCommits{Author: "late"})

			assert.Equal(t, tt.expected, rec.Events())
		})
	}
}

func TestStreamUnsubscribe(t *testing.T) {
	stream := NewStream()
	kept, dropped := &recorder{}, &recorder{}
	stream.Subscribe(kept)
	sub := stream.Subscribe(dropped)

	stream.Next(insights.AuthorCommits{Author: "alice", CommitCount: 1})
	sub.Unsubscribe()
	sub.Unsubscribe()
	stream.Next(insights.AuthorCommits{Author: "bob", CommitCount: 2})
	stream.Complete()

	assert.Equal(t, []string{"next alice 1", "next bob 2", "completed"}, kept.Events())
	assert.Equal(t, []string{"next alice 1"}, dropped.Events())
}

func TestStreamWithoutSubscribers(t *testing.T) {
	stream := NewStream()
	stream.Next(insights.AuthorCommits{Author: "alice"})
	assert.True(t, stream.Error(errors.New("nobody listens")))

	rec := &recorder{}
	stream.Subscribe(rec).Unsubscribe()
	assert.Empty(t, rec.Events())
}

func TestStreamConcurrentNext(t *testing.T) {
	stream := NewStream()
	rec := &recorder{}
	stream.Subscribe(rec)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stream.Next(insights.AuthorCommits{Author: "user", CommitCount: i})
		}(i)
	}
	wg.Wait()
	stream.Complete()

	events := rec.Events()
	require.Len(t, events, 51)
	assert.Equal(t, "completed", events[50])
}

func TestRegistryCreatesIndependentStreams(t *testing.T) {
	registry := NewRegistry()
	rec := &recorder{}
	sub := registry.Subscribe(rec)

	first := registry.NewStream()
	second := registry.NewStream()

	first.Next(insights.AuthorCommits{Author: "alice", CommitCount: 1})
	first.Error(errors.New("first failed"))
	second.Next(insights.AuthorCommits{Author: "bob", CommitCount: 2})
	second.Complete()

	assert.Equal(t, []string{"next alice 1", "error first failed", "next bob 2", "completed"}, rec.Events())

	// Streams created after unsubscribing no longer reach the observer.
	sub.Unsubscribe()
	third := registry.NewStream()
	assert.Equal(t, 0, third.Subscribers())
}

func TestConsoleObserver(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleObserver("Observer", &buf)

	console.OnNext(insights.AuthorCommits{Author: "alice", CommitCount: 7})
	console.OnError(errors.New("boom"))
	console.OnCompleted()

	expected := "Observer: Autor: alice\nBroj commitova: 7\n\n" +
		"Observer: Došlo je do greške: boom\n" +
		"Observer: Završeno praćenje repozitorijuma.\n"
	assert.Equal(t, expected, buf.String())
}
