// Package btree implements an order-parameterized B-tree with a
// caller-supplied comparator pair, in the style of a classic Knuth
// split-on-descent insert. Comparison is never assumed to be total-order
// derivable from a single operator; callers provide both "less than" and
// "equal" so that equality need not be `!lt(a,b) && !lt(b,a)`.
package btree

// node holds up to 2*order-1 keys and, for internal nodes, up to 2*order
// children. Leaves hold keys only.
type node[T any] struct {
	leaf     bool
	keys     []T
	children []*node[T]
}

// BTree is an in-memory ordered container parameterized by an insertion
// order t (each node holds up to 2t-1 keys) and a comparator pair.
type BTree[T any] struct {
	root  *node[T]
	order int
	lt    func(a, b T) bool
	eq    func(a, b T) bool
}

// New returns an empty B-tree of the given order, using lt and eq to order
// and compare keys.
func New[T any](order int, lt, eq func(a, b T) bool) *BTree[T] {
	return &BTree[T]{
		root:  &node[T]{leaf: true},
		order: order,
		lt:    lt,
		eq:    eq,
	}
}

// Insert adds k to the tree. Duplicate keys (per eq) are both retained;
// BTree does not deduplicate on insert — that is BTreeMap's job.
func (t *BTree[T]) Insert(k T) {
	if len(t.root.keys) == 2*t.order-1 {
		newRoot := &node[T]{leaf: false, children: []*node[T]{t.root}}
		t.splitChild(newRoot, 0)
		t.root = newRoot
	}
	t.insertNonFull(t.root, k)
}

// insertNonFull descends from x, splitting full children as it goes, until
// it finds a non-full leaf to insert k into.
func (t *BTree[T]) insertNonFull(x *node[T], k T) {
	for {
		i := t.insertionIndex(x.keys, k)
		if x.leaf {
			x.keys = append(x.keys, k)
			copy(x.keys[i+1:], x.keys[i:])
			x.keys[i] = k
			return
		}
		if len(x.children[i].keys) == 2*t.order-1 {
			t.splitChild(x, i)
			if t.lt(x.keys[i], k) {
				i++
			}
		}
		x = x.children[i]
	}
}

// insertionIndex returns the largest index i such that keys[i-1] < k (or 0
// if no such index exists), i.e. the position at which k should be
// inserted to keep keys sorted. This is the Go standard-binary-search
// replacement for the Python source's reverse-enumerate idiom (spec Open
// Question 3).
func (t *BTree[T]) insertionIndex(keys []T, k T) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.lt(keys[mid], k) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// splitChild splits the full child x.children[i] about its median key,
// promoting that key into x.
func (t *BTree[T]) splitChild(x *node[T], i int) {
	order := t.order
	y := x.children[i]
	z := &node[T]{leaf: y.leaf}

	median := y.keys[order-1]
	z.keys = append(z.keys, y.keys[order:]...)
	y.keys = y.keys[:order-1]

	if !y.leaf {
		z.children = append(z.children, y.children[order:]...)
		y.children = y.children[:order]
	}

	x.children = append(x.children, nil)
	copy(x.children[i+2:], x.children[i+1:])
	x.children[i+1] = z

	x.keys = append(x.keys, median)
	copy(x.keys[i+1:], x.keys[i:])
	x.keys[i] = median
}

// locate descends for k, returning the node and index holding it when
// present. This is the shared traversal behind Search and BTreeMap's
// get/put, so lookup and in-place replacement never walk the tree twice.
func (t *BTree[T]) locate(k T) (*node[T], int, bool) {
	x := t.root
	for {
		i := t.insertionIndex(x.keys, k)
		if i < len(x.keys) && t.eq(k, x.keys[i]) {
			return x, i, true
		}
		if x.leaf {
			return nil, 0, false
		}
		x = x.children[i]
	}
}

// Search looks up k in the tree, returning its value and true on a hit.
func (t *BTree[T]) Search(k T) (T, bool) {
	n, i, ok := t.locate(k)
	if !ok {
		var zero T
		return zero, false
	}
	return n.keys[i], true
}

// frame is one level of an in-order traversal: the node being visited and
// the index of the next key to yield from it.
type frame[T any] struct {
	n   *node[T]
	idx int
}

// Iterator is a stateful, stack-of-frames in-order cursor, mirroring the
// Python source's BTreeIter. The tree must not be mutated while an
// Iterator is outstanding.
type Iterator[T any] struct {
	stack []frame[T]
}

// Iterator returns a cursor positioned before the first (smallest) key.
func (t *BTree[T]) Iterator() *Iterator[T] {
	it := &Iterator[T]{stack: []frame[T]{{t.root, 0}}}
	n := t.root
	for !n.leaf {
		n = n.children[0]
		it.stack = append(it.stack, frame[T]{n, 0})
	}
	return it
}

// Next advances the cursor and returns the next key in order, or
// (zero, false) once exhausted.
func (it *Iterator[T]) Next() (T, bool) {
	for len(it.stack) > 0 {
		top := len(it.stack) - 1
		fr := it.stack[top]
		if fr.idx < len(fr.n.keys) {
			ret := fr.n.keys[fr.idx]
			it.stack[top].idx++
			if fr.n.leaf {
				return ret, true
			}
			n := fr.n.children[fr.idx+1]
			it.stack = append(it.stack, frame[T]{n, 0})
			for !n.leaf {
				n = n.children[0]
				it.stack = append(it.stack, frame[T]{n, 0})
			}
			return ret, true
		}
		it.stack = it.stack[:top]
	}
	var zero T
	return zero, false
}

// All collects every key in order. Convenience wrapper over Iterator, for
// callers that don't need to interleave with other work mid-traversal.
func (t *BTree[T]) All() []T {
	var out []T
	it := t.Iterator()
	for {
		k, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, k)
	}
}
