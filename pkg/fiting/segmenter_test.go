package fiting

import "testing"

func TestBuildSegmentsCoversAllPoints(t *testing.T) {
	data := []int64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89}
	var segs []Segment[int64, uint64]
	in := func(i int) (int64, uint64) { return data[i], uint64(i) }
	out := func(s Segment[int64, uint64]) { segs = append(segs, s) }

	count := BuildSegments[int64, uint64](len(data), 4, in, out)
	if count != len(segs) {
		t.Fatalf("reported count %d does not match emitted segments %d", count, len(segs))
	}
	if len(segs) == 0 {
		t.Fatalf("expected at least one segment")
	}

	if segs[0].StartKey != data[0] {
		t.Fatalf("first segment should start at first key, got %v want %v", segs[0].StartKey, data[0])
	}
	if segs[len(segs)-1].EndKey != data[len(data)-1] {
		t.Fatalf("last segment should end at last key, got %v want %v", segs[len(segs)-1].EndKey, data[len(data)-1])
	}
}

func TestBuildSegmentsCoalescesDuplicates(t *testing.T) {
	data := []int64{1, 1, 1, 2, 3, 3}
	var segs []Segment[int64, uint64]
	in := func(i int) (int64, uint64) { return data[i], uint64(i) }
	out := func(s Segment[int64, uint64]) { segs = append(segs, s) }

	BuildSegments[int64, uint64](len(data), 4, in, out)
	if len(segs) != 1 {
		t.Fatalf("expected duplicates to coalesce into one segment, got %d", len(segs))
	}
	if segs[0].StartPos != 0 {
		t.Fatalf("expected start position to be the earliest occurrence's index, got %d", segs[0].StartPos)
	}
}

func TestBuildSegmentsSingleCoveringSegment(t *testing.T) {
	data := make([]int64, 100)
	for i := range data {
		data[i] = int64(i) * 2
	}
	var segs []Segment[int64, uint64]
	in := func(i int) (int64, uint64) { return data[i], uint64(i) }
	out := func(s Segment[int64, uint64]) { segs = append(segs, s) }

	BuildSegments[int64, uint64](len(data), 1000, in, out)
	if len(segs) != 1 {
		t.Fatalf("expected a perfectly linear run within a large error bound to fit one segment, got %d", len(segs))
	}
}

func TestBuildSegmentsTightBoundSplitsMany(t *testing.T) {
	data := make([]int64, 200)
	for i := range data {
		if i%2 == 0 {
			data[i] = int64(i)
		} else {
			data[i] = int64(i) + 50
		}
	}
	var segs []Segment[int64, uint64]
	in := func(i int) (int64, uint64) { return data[i], uint64(i) }
	out := func(s Segment[int64, uint64]) { segs = append(segs, s) }

	count := BuildSegments[int64, uint64](len(data), 0, in, out)
	if count <= 1 {
		t.Fatalf("expected a zigzag series with zero slack to split into many segments, got %d", count)
	}
}
