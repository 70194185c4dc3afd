package storage

import "sort"

// Overlay stages writes on top of a base DB. Reads merge staged writes with
// the base; nothing touches the base until Flush. An operation that fails
// mid-way simply drops its overlays, leaving committed state untouched.
type Overlay struct {
	base   DB
	writes map[string][]byte // nil value means staged delete
}

// NewOverlay creates an overlay over the given base.
func NewOverlay(base DB) *Overlay {
	return &Overlay{
		base:   base,
		writes: make(map[string][]byte),
	}
}

// Get retrieves a value, preferring staged writes over the base.
func (o *Overlay) Get(key []byte) ([]byte, error) {
	if v, ok := o.writes[string(key)]; ok {
		if v == nil {
			return nil, ErrKeyNotFound
		}
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	}
	return o.base.Get(key)
}

// Put stages a write.
func (o *Overlay) Put(key, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	o.writes[string(key)] = v
	return nil
}

// Delete stages a removal.
func (o *Overlay) Delete(key []byte) error {
	o.writes[string(key)] = nil
	return nil
}

// Has checks key existence across staged writes and the base.
func (o *Overlay) Has(key []byte) (bool, error) {
	if v, ok := o.writes[string(key)]; ok {
		return v != nil, nil
	}
	return o.base.Has(key)
}

// ForEach iterates the merged view in ascending byte order.
func (o *Overlay) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	merged := make(map[string][]byte)
	err := o.base.ForEach(prefix, func(key, value []byte) error {
		if _, staged := o.writes[string(key)]; staged {
			return nil
		}
		v := make([]byte, len(value))
		copy(v, value)
		merged[string(key)] = v
		return nil
	})
	if err != nil {
		return err
	}
	p := string(prefix)
	for k, v := range o.writes {
		if v == nil || len(k) < len(p) || k[:len(p)] != p {
			continue
		}
		merged[k] = v
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), merged[k]); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the base owns its lifecycle.
func (o *Overlay) Close() error {
	return nil
}

// Flush applies all staged writes to the batch in deterministic key order.
// The overlay keeps its staged state; callers discard it after commit.
func (o *Overlay) Flush(b Batch) error {
	keys := make([]string, 0, len(o.writes))
	for k := range o.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := o.writes[k]
		if v == nil {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		} else {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
	}
	return nil
}
