package containers

import (
	"errors"
	"testing"
)

func TestRingAdvanceWraps(t *testing.T) {
	r, err := NewRing([]string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c", "a", "b"}
	for i, w := range want {
		if got := r.Advance(); got != w {
			t.Fatalf("advance %d: got %q, want %q", i, got, w)
		}
		if r.Current() != w {
			t.Fatalf("current %q after advance, want %q", r.Current(), w)
		}
	}
	if r.Index() != 1 {
		t.Errorf("index = %d", r.Index())
	}
}

func TestRingEmpty(t *testing.T) {
	if _, err := NewRing[int](nil); !errors.Is(err, ErrEmptyRing) {
		t.Errorf("got %v", err)
	}
}

func TestRingEach(t *testing.T) {
	r, _ := NewRing([]int{10, 20})
	sum := 0
	r.Each(func(i int, v int) { sum += i * v })
	if sum != 20 {
		t.Errorf("sum = %d", sum)
	}
}
