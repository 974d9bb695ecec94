package activity

import (
	"fmt"
	"slices"
	"testing"
)

func TestPush_UnderCapacity(t *testing.T) {
	l := New(3)
	l.Push("a")
	l.Push("b")

	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if got := l.Entries(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Entries() = %v", got)
	}
}

func TestPush_EvictsOldest(t *testing.T) {
	l := New(3)
	for _, e := range []string{"a", "b", "c", "d", "e"} {
		l.Push(e)
	}

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	if got := l.Entries(); !slices.Equal(got, []string{"c", "d", "e"}) {
		t.Errorf("Entries() = %v, want [c d e]", got)
	}
}

func TestDefaultCapacityBound(t *testing.T) {
	l := New(0)
	for i := 0; i < 120; i++ {
		l.Push(fmt.Sprintf("entry %d", i))
		if l.Len() > DefaultCapacity {
			t.Fatalf("Len() = %d exceeds capacity after %d pushes", l.Len(), i+1)
		}
	}
	entries := l.Entries()
	if entries[0] != "entry 70" {
		t.Errorf("oldest = %q, want entry 70", entries[0])
	}
	if entries[len(entries)-1] != "entry 119" {
		t.Errorf("newest = %q, want entry 119", entries[len(entries)-1])
	}
}

func TestRecent(t *testing.T) {
	l := New(4)
	for _, e := range []string{"a", "b", "c", "d", "e", "f"} {
		l.Push(e)
	}

	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{}},
		{2, []string{"f", "e"}},
		{4, []string{"f", "e", "d", "c"}},
		{10, []string{"f", "e", "d", "c"}},
		{-1, []string{}},
	}
	for _, tt := range tests {
		if got := l.Recent(tt.n); !slices.Equal(got, tt.want) {
			t.Errorf("Recent(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestRestore_KeepsNewest(t *testing.T) {
	l := Restore([]string{"1", "2", "3", "4"}, 2)
	if got := l.Entries(); !slices.Equal(got, []string{"3", "4"}) {
		t.Errorf("Entries() = %v, want [3 4]", got)
	}
}
