package mapreduce

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestShuffleFirstSeenOrder(t *testing.T) {
	pairs := []KV[string, int]{
		{"b", 1}, {"a", 2}, {"b", 3}, {"c", 4}, {"a", 5},
	}
	got, err := Shuffle(pairs)
	if err != nil {
		t.Fatal(err)
	}
	want := []Group[string, int]{
		{Key: "b", Values: []int{1, 3}},
		{Key: "a", Values: []int{2, 5}},
		{Key: "c", Values: []int{4}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected groups (-want +got):\n%s", diff)
	}
}

func TestShuffleEmpty(t *testing.T) {
	got, err := Shuffle([]KV[int, int]{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no groups, got %v", got)
	}
}

func TestShuffleKeepsEveryValue(t *testing.T) {
	var pairs []KV[int, int]
	for i := 0; i < 1000; i++ {
		pairs = append(pairs, KV[int, int]{Key: i % 7, Value: i})
	}
	groups, err := Shuffle(pairs)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 7 {
		t.Fatalf("expected 7 groups, got %d", len(groups))
	}
	seen := make(map[int]bool)
	for _, g := range groups {
		for _, v := range g.Values {
			if v%7 != g.Key {
				t.Fatalf("value %d landed in group %d", v, g.Key)
			}
			if seen[v] {
				t.Fatalf("value %d duplicated", v)
			}
			seen[v] = true
		}
	}
	if len(seen) != 1000 {
		t.Fatalf("expected 1000 values, got %d", len(seen))
	}
}

func TestShuffleUnhashableKey(t *testing.T) {
	pairs := []KV[interface{}, int]{
		{Key: "ok", Value: 1},
		{Key: []int{1, 2}, Value: 2},
	}
	_, err := Shuffle(pairs)
	var uerr *UnhashableKeyError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnhashableKeyError, got %v", err)
	}
}
