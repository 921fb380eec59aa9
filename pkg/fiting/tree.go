package fiting

import (
	"log"

	"github.com/RKolla99/FITing-Tree/pkg/config"
)

// logSegmentThreshold is the segment count at or above which Build and
// BuildBuffered log a summary line, mirroring the teacher's own "[Compaction]"/"[NeuroDB]" diagnostic
// lines in pkg/core/hybrid_store.go — the core stays quiet for small builds
// and only narrates work big enough to matter.
const logSegmentThreshold = 1000

// ApproxPos is the result of a FitingTree query: an approximate position
// pos of a key, and a window [lo, hi) within which a classical lower_bound
// search over the underlying sorted array locates the key, if present.
type ApproxPos struct {
	Pos uint64
	Hi  uint64
	Lo  uint64
}

// FitingTree is the non-buffered façade of spec §4.E: built once from a
// sorted array, answering approximate-position queries in O(log n) segment
// lookups plus O(1) arithmetic.
type FitingTree[K Key, P Pos] struct {
	n          uint64
	errorBound uint64
	index      *segmentIndex[K, P, Segment[K, P]]
}

// Build constructs a FitingTree over the sorted slice data using error
// budget errorBound. Build panics if errorBound is zero or if data is not
// sorted in non-decreasing order, per spec §7 ("Invalid construction
// parameter" / "Unsorted input" are both fatal at construction).
func Build[K Key, P Pos](data []K, errorBound uint64) *FitingTree[K, P] {
	if err := (config.IndexConfig{Error: errorBound}).Validate(); err != nil {
		panic("fiting: " + err.Error())
	}
	assertSorted(data)

	t := &FitingTree[K, P]{
		n:          uint64(len(data)),
		errorBound: errorBound,
		index:      newSegmentIndex[K, P, Segment[K, P]](),
	}
	if len(data) == 0 {
		return t
	}

	var entries []segEntry[K, P, Segment[K, P]]
	in := func(i int) (K, P) { return data[i], P(i) }
	out := func(seg Segment[K, P]) {
		entries = append(entries, segEntry[K, P, Segment[K, P]]{start: seg.StartKey, seg: seg})
	}
	count := BuildSegments[K, P](len(data), errorBound, in, out)
	if count >= logSegmentThreshold {
		log.Printf("[fiting] built %d segments over %d keys (error=%d)", count, len(data), errorBound)
	}

	t.index.bulkLoad(entries)
	return t
}

// SegmentCount returns the number of segments in the index.
func (t *FitingTree[K, P]) SegmentCount() int {
	if t.index == nil {
		return 0
	}
	return t.index.len()
}

// ApproxPos answers an approximate-position query for key, per spec §4.E.
func (t *FitingTree[K, P]) ApproxPos(key K) ApproxPos {
	if t.n == 0 {
		return ApproxPos{0, 0, 0}
	}

	e, ok := t.index.floor(key)
	if !ok {
		return ApproxPos{Pos: 0, Hi: t.errorBound, Lo: 0}
	}

	pred := e.seg.predict(key)
	if pred < 0 {
		pred = 0
	}

	errI := int64(t.errorBound)
	nI := int64(t.n)
	if pred-errI > nI {
		return ApproxPos{Pos: t.n - 1, Hi: t.n, Lo: t.n - 1}
	}

	return ApproxPos{
		Pos: uint64(pred),
		Hi:  uint64(addErr(pred, errI, nI)),
		Lo:  uint64(subErr(pred, errI)),
	}
}

func addErr(x, errorBound, size int64) int64 {
	if x+errorBound >= size {
		return size
	}
	return x + errorBound
}

func subErr(x, errorBound int64) int64 {
	if x <= errorBound {
		return 0
	}
	return x - errorBound
}

func assertSorted[K Key](data []K) {
	for i := 1; i < len(data); i++ {
		if data[i] < data[i-1] {
			panic("fiting: build input must be sorted in non-decreasing order")
		}
	}
}
