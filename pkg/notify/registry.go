package notify

// Registry holds the observers that outlive a single request. Each request
// gets its own Stream through NewStream.
type Registry struct {
	subscribers subscriberList
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe registers an observer for every stream created afterwards.
// Streams already in flight are not affected.
func (r *Registry) Subscribe(o Observer) *Subscription {
	return r.subscribers.add(o)
}

// NewStream returns a Stream with every currently registered observer
// subscribed to it.
func (r *Registry) NewStream() *Stream {
	stream := NewStream()
	for _, o := range r.subscribers.snapshot() {
		stream.Subscribe(o)
	}
	return stream
}
