package idmap

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

// Key is the set of counter types a CounterMap can issue.
type Key interface {
	~uint16 | ~uint32 | ~uint64
}

// CounterMap stores values under keys minted from a strictly increasing
// counter. A key is never issued twice, even after the value it named has
// been deleted. The zero value is an empty map ready for use.
type CounterMap[K Key, V any] struct {
	values map[K]V
	next   K
}

// Push stores v under a fresh key and returns that key.
func (c *CounterMap[K, V]) Push(v V) K {
	if c.values == nil {
		c.values = make(map[K]V)
	}

	k := c.next
	c.next++
	c.values[k] = v
	return k
}

// Get returns the value stored under k.
func (c *CounterMap[K, V]) Get(k K) (V, bool) {
	v, ok := c.values[k]
	return v, ok
}

// Set replaces the value under an existing key. Keys are only minted by Push,
// so Set reports false and stores nothing for unknown keys.
func (c *CounterMap[K, V]) Set(k K, v V) bool {
	if _, ok := c.values[k]; !ok {
		return false
	}
	c.values[k] = v
	return true
}

// Delete removes the value under k. The key is not reclaimed.
func (c *CounterMap[K, V]) Delete(k K) bool {
	if _, ok := c.values[k]; !ok {
		return false
	}
	delete(c.values, k)
	if len(c.values) == 0 {
		c.values = nil
	}
	return true
}

// Len returns the number of stored values.
func (c *CounterMap[K, V]) Len() int {
	return len(c.values)
}

// Next returns the key the next Push will issue.
func (c *CounterMap[K, V]) Next() K {
	return c.next
}

// All iterates every stored value. Iteration order is unspecified.
func (c *CounterMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, v := range c.values {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Keys returns the live keys in ascending order.
func (c *CounterMap[K, V]) Keys() []K {
	return slices.Sorted(maps.Keys(c.values))
}

// Clone returns an independent copy. When cloneValue is nil values are
// copied by assignment.
func (c *CounterMap[K, V]) Clone(cloneValue func(V) V) CounterMap[K, V] {
	out := CounterMap[K, V]{next: c.next}
	if c.values == nil {
		return out
	}

	out.values = make(map[K]V, len(c.values))
	for k, v := range c.values {
		if cloneValue != nil {
			v = cloneValue(v)
		}
		out.values[k] = v
	}
	return out
}

type entry[K Key, V any] struct {
	_msgpack struct{} `msgpack:",as_array"`
	Key      K
	Value    V
}

type wireCounterMap[K Key, V any] struct {
	_msgpack struct{} `msgpack:",as_array"`
	Next     K
	Entries  []entry[K, V]
}

// EncodeMsgpack writes the counter followed by the entries in key order so
// the same contents always produce the same bytes.
func (c CounterMap[K, V]) EncodeMsgpack(enc *msgpack.Encoder) error {
	w := wireCounterMap[K, V]{
		Next:    c.next,
		Entries: make([]entry[K, V], 0, len(c.values)),
	}
	for _, k := range c.Keys() {
		w.Entries = append(w.Entries, entry[K, V]{Key: k, Value: c.values[k]})
	}
	return enc.Encode(&w)
}

// DecodeMsgpack restores a CounterMap, rejecting keys the counter could not
// have issued.
func (c *CounterMap[K, V]) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w wireCounterMap[K, V]
	if err := dec.Decode(&w); err != nil {
		return err
	}

	var values map[K]V
	for _, e := range w.Entries {
		if e.Key >= w.Next {
			return fmt.Errorf("key %d was never issued (counter at %d)", e.Key, w.Next)
		}
		if values == nil {
			values = make(map[K]V, len(w.Entries))
		}
		if _, dup := values[e.Key]; dup {
			return fmt.Errorf("duplicate key %d", e.Key)
		}
		values[e.Key] = e.Value
	}

	c.values = values
	c.next = w.Next
	return nil
}
