package fiting

import "testing"

func newTestBufferedSegment() *BufferedSegment[int64, uint64] {
	packed := []Pair[int64, uint64]{
		{Key: 0, Pos: 0},
		{Key: 10, Pos: 1},
		{Key: 20, Pos: 2},
		{Key: 30, Pos: 3},
	}
	seg := Segment[int64, uint64]{StartKey: 0, StartPos: 0, EndKey: 30, Slope: 0.1}
	return newBufferedSegment[int64, uint64](seg, packed, 4)
}

func TestBufferedSegmentSearchPacked(t *testing.T) {
	bs := newTestBufferedSegment()

	idx, ok := bs.searchPacked(0, bs.packedLen(), 20)
	if !ok || bs.keys[idx].Pos != 2 {
		t.Fatalf("expected to find key 20 at packed position 2, got idx=%d ok=%v", idx, ok)
	}

	if _, ok := bs.searchPacked(0, bs.packedLen(), 15); ok {
		t.Fatalf("expected no match for an absent key")
	}
}

func TestBufferedSegmentTombstoneHidesKey(t *testing.T) {
	bs := newTestBufferedSegment()
	idx, _ := bs.searchPacked(0, bs.packedLen(), 20)
	bs.deletePacked(idx)

	if _, ok := bs.searchPacked(0, bs.packedLen(), 20); ok {
		t.Fatalf("expected a tombstoned key to no longer be found")
	}
	if bs.size() != 3 {
		t.Fatalf("expected size 3 after one tombstone out of 4, got %d", bs.size())
	}
}

func TestBufferedSegmentInsertAndFindBuffer(t *testing.T) {
	bs := newTestBufferedSegment()
	if !bs.insertBuffer(25, 999) {
		t.Fatalf("expected insertBuffer to succeed within capacity")
	}
	idx, ok := bs.bufferFind(25)
	if !ok || bs.buffer[idx].pos != 999 {
		t.Fatalf("expected to find inserted buffer key 25 with pos 999, got idx=%d ok=%v", idx, ok)
	}
	if bs.size() != 5 {
		t.Fatalf("expected size 5 after the insert, got %d", bs.size())
	}
}

func TestBufferedSegmentInsertRejectsWhenFull(t *testing.T) {
	bs := newTestBufferedSegment()
	for i, k := range []int64{21, 22, 23, 24} {
		if !bs.insertBuffer(k, uint64(100+i)) {
			t.Fatalf("expected insert %d to succeed (buffer at capacity %d)", i, bs.maxBufferSize)
		}
	}
	if bs.insertBuffer(25, 200) {
		t.Fatalf("expected insert past capacity to fail")
	}
}

func TestBufferedSegmentFirstLive(t *testing.T) {
	bs := newTestBufferedSegment()
	p, ok := bs.firstLive()
	if !ok || p.Key != 0 {
		t.Fatalf("expected first live entry to be key 0, got %+v ok=%v", p, ok)
	}

	idx, _ := bs.searchPacked(0, bs.packedLen(), 0)
	bs.deletePacked(idx)
	p, ok = bs.firstLive()
	if !ok || p.Key != 10 {
		t.Fatalf("expected first live entry after tombstoning key 0 to be key 10, got %+v ok=%v", p, ok)
	}
}

func TestBufferedSegmentMergedLowerBound(t *testing.T) {
	bs := newTestBufferedSegment()
	bs.insertBuffer(15, 888)

	p, ok := bs.mergedLowerBound(12)
	if !ok || p.Key != 15 {
		t.Fatalf("expected mergedLowerBound(12) to return buffered key 15, got %+v ok=%v", p, ok)
	}

	if _, ok := bs.mergedLowerBound(31); ok {
		t.Fatalf("expected mergedLowerBound past every live key to report false")
	}
}

func TestBufferedSegmentMergeLive(t *testing.T) {
	bs := newTestBufferedSegment()
	bs.insertBuffer(25, 222)

	merged := bs.mergeLive(5, 111)
	if len(merged) != 6 {
		t.Fatalf("expected 6 merged entries (4 packed + 1 buffered + 1 new), got %d", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].Key <= merged[i-1].Key {
			t.Fatalf("expected mergeLive output sorted strictly ascending by key, got %v then %v", merged[i-1].Key, merged[i].Key)
		}
	}
}
