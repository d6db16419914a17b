package track

import (
	"fmt"
	"sync"
	"testing"
)

func rec(artist, title string) Record {
	return NewRecord([]Pair{{Artist, artist}, {Title, title}})
}

func TestNewRecordLastValueWins(t *testing.T) {
	r := NewRecord([]Pair{
		{Composer, "first"},
		{Title, "Song"},
		{Composer, "second"},
	})

	if got := r.Get(Composer); got != "second" {
		t.Errorf("composer = %q, want second", got)
	}
	fields := r.Fields()
	if len(fields) != 2 || fields[0] != Composer || fields[1] != Title {
		t.Errorf("fields = %v", fields)
	}
	if r.Get(Album) != "" || r.Has(Album) {
		t.Errorf("album should be absent")
	}
}

func TestRecordValid(t *testing.T) {
	tests := []struct {
		name  string
		pairs []Pair
		want  bool
	}{
		{"artist only", []Pair{{Artist, "A"}}, true},
		{"title only", []Pair{{Title, "T"}}, true},
		{"empty artist still counts", []Pair{{Artist, ""}}, true},
		{"album only", []Pair{{Album, "X"}}, false},
		{"nothing", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewRecord(tc.pairs).Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		appendMode bool
		maxTracks  int
		want       int
	}{
		{true, 5, 5},
		{true, 0, 1},
		{true, -1, 1},
		{false, 5, 1},
	}

	for _, tc := range tests {
		if got := Capacity(tc.appendMode, tc.maxTracks); got != tc.want {
			t.Errorf("Capacity(%v, %d) = %d, want %d", tc.appendMode, tc.maxTracks, got, tc.want)
		}
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(2)
	h.Push(rec("A", "a"))
	h.Push(rec("B", "b"))
	h.Push(rec("C", "c"))

	snap := h.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("len = %d, want 2", len(snap))
	}
	if snap[0].Get(Artist) != "B" || snap[1].Get(Artist) != "C" {
		t.Fatalf("snapshot = [%s %s], want [B C]", snap[0].Get(Artist), snap[1].Get(Artist))
	}

	latest, ok := h.Latest()
	if !ok || latest.Get(Title) != "c" {
		t.Errorf("latest = %v, %v", latest.Map(), ok)
	}
}

func TestHistorySnapshotIsACopy(t *testing.T) {
	h := NewHistory(3)
	h.Push(rec("A", "a"))

	snap := h.Snapshot()
	snap[0] = rec("X", "x")

	if got, _ := h.Latest(); got.Get(Artist) != "A" {
		t.Errorf("snapshot mutation leaked into history")
	}
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Push(rec("A", "a"))
	h.Push(rec("B", "b"))

	if h.Cap() != 1 || h.Len() != 1 {
		t.Fatalf("cap=%d len=%d, want 1/1", h.Cap(), h.Len())
	}
}

func TestHistoryConcurrentPush(t *testing.T) {
	h := NewHistory(10)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Push(rec(fmt.Sprint(i), fmt.Sprint(j)))
				_ = h.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	if h.Len() != 10 {
		t.Fatalf("len = %d, want 10", h.Len())
	}
}
