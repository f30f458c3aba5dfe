package btree

import "golang.org/x/xerrors"

// ErrKeyNotFound is returned by Get when the key is absent from the map.
var ErrKeyNotFound = xerrors.New("btree: key not found")

// pair is the (key, value) element stored in the map's underlying tree.
// Only the key participates in ordering and equality.
type pair[K, V any] struct {
	key K
	val V
}

// BTreeMap is an ordered key/value map backed by a BTree of (K,V) pairs,
// with the comparator lifted to compare only the key component. Equality
// between two maps is length-equal AND pairwise-equal over their in-order
// items — stricter than set equality, since item order is a function of
// the comparator and therefore stable.
type BTreeMap[K, V any] struct {
	tree   *BTree[pair[K, V]]
	length int
}

// NewMap returns an empty ordered map of the given order, using lt and eq
// to order and compare keys.
func NewMap[K, V any](order int, lt, eq func(a, b K) bool) *BTreeMap[K, V] {
	liftLT := func(a, b pair[K, V]) bool { return lt(a.key, b.key) }
	liftEQ := func(a, b pair[K, V]) bool { return eq(a.key, b.key) }
	return &BTreeMap[K, V]{tree: New[pair[K, V]](order, liftLT, liftEQ)}
}

// Put inserts or replaces the value associated with key.
func (m *BTreeMap[K, V]) Put(key K, val V) {
	var zero V
	probe := pair[K, V]{key, zero}
	if n, i, ok := m.tree.locate(probe); ok {
		// overwrite in place, mirroring the Python source's
		// `loc[0].keys[loc[1]] = (key, value)`.
		n.keys[i] = pair[K, V]{key, val}
		return
	}
	m.tree.Insert(pair[K, V]{key, val})
	m.length++
}

// Get returns the value for key, or ErrKeyNotFound if key is absent.
func (m *BTreeMap[K, V]) Get(key K) (V, error) {
	var zero V
	n, i, ok := m.tree.locate(pair[K, V]{key, zero})
	if !ok {
		return zero, xerrors.Errorf("btree: get %v: %w", anyValue(key), ErrKeyNotFound)
	}
	return n.keys[i].val, nil
}

// GetOrDefault returns the value for key, or def if key is absent.
func (m *BTreeMap[K, V]) GetOrDefault(key K, def V) V {
	n, i, ok := m.tree.locate(pair[K, V]{key, def})
	if !ok {
		return def
	}
	return n.keys[i].val
}

// Contains reports whether key is present in the map.
func (m *BTreeMap[K, V]) Contains(key K) bool {
	var zero V
	_, _, ok := m.tree.locate(pair[K, V]{key, zero})
	return ok
}

// Len returns the number of distinct keys ever inserted (i.e. currently
// held, since BTree has no delete).
func (m *BTreeMap[K, V]) Len() int {
	return m.length
}

// Items returns the map's (key, value) pairs in key order.
func (m *BTreeMap[K, V]) Items() []KV[K, V] {
	out := make([]KV[K, V], 0, m.length)
	it := m.tree.Iterator()
	for {
		p, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, KV[K, V]{p.key, p.val})
	}
}

// Keys returns the map's keys in order.
func (m *BTreeMap[K, V]) Keys() []K {
	items := m.Items()
	out := make([]K, len(items))
	for i, kv := range items {
		out[i] = kv.Key
	}
	return out
}

// Values returns the map's values in key order.
func (m *BTreeMap[K, V]) Values() []V {
	items := m.Items()
	out := make([]V, len(items))
	for i, kv := range items {
		out[i] = kv.Value
	}
	return out
}

// KV is a single (key, value) pair as returned by Items.
type KV[K, V any] struct {
	Key   K
	Value V
}

// Equal reports whether m and other have the same length and the same
// in-order sequence of (key, value) pairs, per valEq for comparing values.
func (m *BTreeMap[K, V]) Equal(other *BTreeMap[K, V], valEq func(a, b V) bool) bool {
	if m.length != other.length {
		return false
	}
	a, b := m.Items(), other.Items()
	for i := range a {
		if !m.tree.eq(pair[K, V]{a[i].Key, a[i].Value}, pair[K, V]{b[i].Key, b[i].Value}) {
			return false
		}
		if !valEq(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

// anyValue exists only to give ErrKeyNotFound's wrapping message something
// to print without requiring K to satisfy fmt.Stringer.
func anyValue[K any](k K) any { return k }
