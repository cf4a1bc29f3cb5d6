package voice

// Store exposes voice catalog retrieval for handlers and the speaker.
type Store interface {
	List() []Voice
	FindByID(id string) (Voice, bool)
	ByLanguage(language string) []Voice
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Voice
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied voices.
func NewMemoryStore(items []Voice) *MemoryStore {
	return &MemoryStore{items: append([]Voice(nil), items...)}
}

// List returns the full catalog.
func (s *MemoryStore) List() []Voice {
	return append([]Voice(nil), s.items...)
}

// FindByID looks up a voice by identifier.
func (s *MemoryStore) FindByID(id string) (Voice, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Voice{}, false
}

// ByLanguage returns the catalog entries for one language, in seed order.
func (s *MemoryStore) ByLanguage(language string) []Voice {
	var out []Voice
	for _, item := range s.items {
		if item.Language == language {
			out = append(out, item)
		}
	}
	return out
}
