package story

// Store exposes catalog retrieval for HTTP handlers and clients.
type Store interface {
	List() []Game
	FindBySlug(slug string) (Game, bool)
	FindByID(id string) (Game, bool)
}

// MemoryStore implements Store with an in-memory slice, suitable for the seeded catalog.
type MemoryStore struct {
	items []Game
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied games.
func NewMemoryStore(items []Game) *MemoryStore {
	return &MemoryStore{items: append([]Game(nil), items...)}
}

// List returns the catalog in declaration order.
func (s *MemoryStore) List() []Game {
	return append([]Game(nil), s.items...)
}

// FindBySlug looks up a game by its URL slug.
func (s *MemoryStore) FindBySlug(slug string) (Game, bool) {
	for _, item := range s.items {
		if item.Slug == slug {
			return item, true
		}
	}
	return Game{}, false
}

// FindByID looks up a game by identifier.
func (s *MemoryStore) FindByID(id string) (Game, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Game{}, false
}
