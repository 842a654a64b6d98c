package store

// Directory is an ordered, slug-unique list of stores. It is immutable once
// built; a refresh produces a new Directory.
type Directory struct {
	stores []Store
	index  map[string]int
}

// NewDirectory builds a Directory from stores in upstream order. Stores whose
// slug repeats an earlier one are dropped and returned separately.
func NewDirectory(stores []Store) (*Directory, []Store) {
	d := &Directory{
		stores: make([]Store, 0, len(stores)),
		index:  make(map[string]int, len(stores)),
	}
	var dropped []Store
	for _, s := range stores {
		if _, dup := d.index[s.Slug]; dup {
			dropped = append(dropped, s)
			continue
		}
		d.index[s.Slug] = len(d.stores)
		d.stores = append(d.stores, s)
	}
	return d, dropped
}

// Stores returns a copy of the stores in upstream order.
func (d *Directory) Stores() []Store {
	if d == nil {
		return nil
	}
	out := make([]Store, len(d.stores))
	copy(out, d.stores)
	return out
}

// Len returns the number of stores.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.stores)
}

// Find looks up a store by slug.
func (d *Directory) Find(slug string) (Store, bool) {
	if d == nil {
		return Store{}, false
	}
	i, ok := d.index[slug]
	if !ok {
		return Store{}, false
	}
	return d.stores[i], true
}
