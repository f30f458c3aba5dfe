package btree

import (
	"errors"
	"testing"
)

func strLT(a, b string) bool { return a < b }
func strEQ(a, b string) bool { return a == b }

func TestMapPutGetLen(t *testing.T) {
	m := NewMap[string, int](3, strLT, strEQ)
	m.Put("b", 2)
	m.Put("a", 1)
	m.Put("c", 3)
	m.Put("a", 100) // overwrite

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	v, err := m.Get("a")
	if err != nil || v != 100 {
		t.Fatalf("Get(a) = (%d, %v), want (100, nil)", v, err)
	}
	if got := m.GetOrDefault("z", -1); got != -1 {
		t.Fatalf("GetOrDefault(z) = %d, want -1", got)
	}
	if !m.Contains("b") || m.Contains("zzz") {
		t.Fatalf("Contains mismatch")
	}
}

func TestMapGetMissingReturnsKeyNotFound(t *testing.T) {
	m := NewMap[string, int](2, strLT, strEQ)
	m.Put("x", 1)
	_, err := m.Get("missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrKeyNotFound", err)
	}
}

func TestMapItemsInKeyOrder(t *testing.T) {
	m := NewMap[int, string](2, intLT, intEQ)
	for _, k := range []int{5, 1, 9, 3, 7} {
		m.Put(k, "v")
	}
	items := m.Items()
	for i := 1; i < len(items); i++ {
		if items[i].Key < items[i-1].Key {
			t.Fatalf("Items() not sorted: %v", items)
		}
	}
	keys := m.Keys()
	want := []int{1, 3, 5, 7, 9}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("Keys()[%d] = %d, want %d", i, keys[i], k)
		}
	}
}

func TestMapEqualIsOrderSensitiveStrict(t *testing.T) {
	a := NewMap[int, int](2, intLT, intEQ)
	b := NewMap[int, int](2, intLT, intEQ)
	for _, k := range []int{1, 2, 3} {
		a.Put(k, k*10)
		b.Put(k, k*10)
	}
	if !a.Equal(b, func(x, y int) bool { return x == y }) {
		t.Fatalf("expected equal maps to compare equal")
	}
	b.Put(3, 999)
	if a.Equal(b, func(x, y int) bool { return x == y }) {
		t.Fatalf("expected maps with differing value to compare unequal")
	}

	// Same items under a descending comparator iterate as 3, 2, 1, so the
	// pairwise in-order comparison against a's 1, 2, 3 fails.
	c := NewMap[int, int](2, func(x, y int) bool { return x > y }, intEQ)
	for _, k := range []int{1, 2, 3} {
		c.Put(k, k*10)
	}
	if a.Equal(c, func(x, y int) bool { return x == y }) {
		t.Fatalf("expected maps holding the same items in a different order to compare unequal")
	}
}
