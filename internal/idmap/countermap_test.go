package idmap

import (
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/vmihailenco/msgpack/v5"
)

type testKey uint64

func TestCounterMap_Push(t *testing.T) {
	tests := map[string]struct {
		count int
	}{
		"single push": {count: 1},
		"ten pushes":  {count: 10},
		"many pushes": {count: 500},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var cm CounterMap[testKey, string]
			seen := map[testKey]bool{}

			for i := 0; i < tt.count; i++ {
				k := cm.Push("v")
				testutil.AssertEqual(t, "key", k, testKey(i))
				if seen[k] {
					t.Fatalf("key %d issued twice", k)
				}
				seen[k] = true
			}

			testutil.AssertEqual(t, "len", cm.Len(), tt.count)
			testutil.AssertEqual(t, "next", cm.Next(), testKey(tt.count))
		})
	}
}

func TestCounterMap_DeleteDoesNotReclaim(t *testing.T) {
	var cm CounterMap[testKey, int]
	a := cm.Push(1)
	b := cm.Push(2)

	testutil.AssertEqual(t, "delete existing", cm.Delete(a), true)
	testutil.AssertEqual(t, "delete again", cm.Delete(a), false)

	c := cm.Push(3)
	if c <= b {
		t.Errorf("key %d reused or not increasing after %d", c, b)
	}

	_, ok := cm.Get(a)
	testutil.AssertEqual(t, "deleted value present", ok, false)
	testutil.AssertEqual(t, "len", cm.Len(), 2)
}

func TestCounterMap_Set(t *testing.T) {
	var cm CounterMap[testKey, string]
	k := cm.Push("old")

	testutil.AssertEqual(t, "set existing", cm.Set(k, "new"), true)
	v, _ := cm.Get(k)
	testutil.AssertEqual(t, "updated value", v, "new")

	testutil.AssertEqual(t, "set unknown", cm.Set(k+5, "nope"), false)
	testutil.AssertEqual(t, "len", cm.Len(), 1)
}

func TestCounterMap_Keys(t *testing.T) {
	var cm CounterMap[testKey, int]
	for i := 0; i < 5; i++ {
		cm.Push(i)
	}
	cm.Delete(2)

	keys := cm.Keys()
	exp := []testKey{0, 1, 3, 4}
	testutil.AssertEqual(t, "key count", len(keys), len(exp))
	for i := range exp {
		testutil.AssertEqual(t, "key", keys[i], exp[i])
	}
}

func TestCounterMap_Clone(t *testing.T) {
	var cm CounterMap[testKey, *int]
	one := 1
	k := cm.Push(&one)

	clone := cm.Clone(func(v *int) *int {
		cp := *v
		return &cp
	})

	*clone.values[k] = 99
	testutil.AssertEqual(t, "original untouched", *cm.values[k], 1)
	testutil.AssertEqual(t, "clone next", clone.Next(), cm.Next())

	clone.Push(nil)
	testutil.AssertEqual(t, "original len", cm.Len(), 1)
}

func TestCounterMap_Msgpack(t *testing.T) {
	var cm CounterMap[testKey, string]
	cm.Push("a")
	cm.Push("b")
	cm.Push("c")
	cm.Delete(1)

	first, err := msgpack.Marshal(&cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := msgpack.Marshal(&cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "deterministic", string(first), string(second))

	var out CounterMap[testKey, string]
	if err := msgpack.Unmarshal(first, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "len", out.Len(), 2)
	testutil.AssertEqual(t, "next", out.Next(), testKey(3))
	v, ok := out.Get(2)
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "value", v, "c")
}

func TestCounterMap_DecodeRejectsUnissuedKey(t *testing.T) {
	bad := wireCounterMap[testKey, string]{
		Next:    1,
		Entries: []entry[testKey, string]{{Key: 4, Value: "x"}},
	}
	data, err := msgpack.Marshal(&bad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out CounterMap[testKey, string]
	if err := msgpack.Unmarshal(data, &out); err == nil {
		t.Error("expected error for key beyond counter")
	}
}
