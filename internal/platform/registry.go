package platform

// Registry maps each platform to its Publisher. Platforms without an entry
// (or without auto capability) are rejected by the dispatcher before any
// network call.
type Registry struct {
	publishers map[Platform]Publisher
}

func NewRegistry() *Registry {
	return &Registry{publishers: make(map[Platform]Publisher)}
}

func (r *Registry) Register(p Platform, pub Publisher) {
	r.publishers[p] = pub
}

func (r *Registry) PublisherFor(p Platform) (Publisher, bool) {
	pub, ok := r.publishers[p]
	return pub, ok
}
