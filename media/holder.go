package media

import "sync"

// ArtworkLoader fetches the bytes behind an artwork reference.
type ArtworkLoader func(ref string) ([]byte, error)

// Holder pairs an Item with its lazily loaded artwork.
type Holder struct {
	mu      sync.Mutex
	item    Item
	artwork []byte
	loaded  bool
}

func NewHolder(item Item) *Holder {
	return &Holder{item: item}
}

func (h *Holder) Item() Item {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.item
}

// SetItem swaps the held item. The cached artwork survives only if the reference is unchanged.
func (h *Holder) SetItem(item Item) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if item.artwork != h.item.artwork {
		h.artwork = nil
		h.loaded = false
	}
	h.item = item
}

// Artwork returns the cached artwork, loading it on first use.
// Items without an artwork reference yield nil without calling load.
func (h *Holder) Artwork(load ArtworkLoader) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loaded || h.item.artwork == "" {
		return h.artwork, nil
	}

	data, err := load(h.item.artwork)
	if err != nil {
		return nil, err
	}

	h.artwork = data
	h.loaded = true
	return data, nil
}
