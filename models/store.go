package models

// Store is a row of the stores collection.
type Store struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name,omitempty"`
	Website string `json:"website,omitempty"`
}

// StoreIndex maps store slugs to persisted store ids. It is built once and
// never modified afterwards, so it can be shared freely.
type StoreIndex struct {
	ids map[string]string
}

// NewStoreIndex builds an index from store rows. Later rows win on duplicate slugs.
func NewStoreIndex(stores []Store) StoreIndex {
	ids := make(map[string]string, len(stores))
	for _, s := range stores {
		if s.Slug == "" || s.ID == "" {
			continue
		}
		ids[s.Slug] = s.ID
	}
	return StoreIndex{ids: ids}
}

// Lookup returns the store id for slug.
func (x StoreIndex) Lookup(slug string) (string, bool) {
	id, ok := x.ids[slug]
	return id, ok
}

// Len returns the number of indexed stores.
func (x StoreIndex) Len() int {
	return len(x.ids)
}
