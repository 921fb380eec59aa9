package fiting

import "github.com/google/btree"

// segmentIndexDegree mirrors the teacher's own MemTable degree
// (pkg/core/memory.NewMemTable(32)) for the backing B-tree.
const segmentIndexDegree = 32

// segEntry is the (start_key, segment) pair stored in the segment index,
// the generic payload of the underlying B-tree node.
type segEntry[K Key, P Pos, S any] struct {
	start K
	seg   S
}

func segEntryLess[K Key, P Pos, S any](a, b segEntry[K, P, S]) bool {
	return a.start < b.start
}

// segmentIndex is the SegmentIndex of spec §4.D / §3: an ordered map from a
// segment's start key to the segment itself, answering "the segment with
// the greatest start_key <= query" in O(log n). It is realized with
// google/btree's generic BTreeG, kept in ascending order by start_key — the
// spec explicitly permits either direction (§4.D, §9); ascending is the
// natural direction for google/btree's API, whereas the reference's
// stx::btree is kept descending to get the same query with a single
// lower_bound call.
type segmentIndex[K Key, P Pos, S any] struct {
	tree *btree.BTreeG[segEntry[K, P, S]]
}

func newSegmentIndex[K Key, P Pos, S any]() *segmentIndex[K, P, S] {
	return &segmentIndex[K, P, S]{
		tree: btree.NewG(segmentIndexDegree, segEntryLess[K, P, S]),
	}
}

// bulkLoad populates the index from entries already sorted ascending by
// start key. google/btree has no dedicated bulk-loading primitive (unlike
// the reference's stx::btree::bulk_load); a single ascending pass of
// ReplaceOrInsert calls is the idiomatic substitute and is what this
// package's teacher (MemTable) does for every insert already.
func (idx *segmentIndex[K, P, S]) bulkLoad(entries []segEntry[K, P, S]) {
	for _, e := range entries {
		idx.tree.ReplaceOrInsert(e)
	}
}

// floor returns the entry with the greatest start key <= key, or ok=false
// if key precedes every entry in the index (or the index is empty).
func (idx *segmentIndex[K, P, S]) floor(key K) (segEntry[K, P, S], bool) {
	var found segEntry[K, P, S]
	ok := false
	idx.tree.DescendLessOrEqual(segEntry[K, P, S]{start: key}, func(e segEntry[K, P, S]) bool {
		found = e
		ok = true
		return false
	})
	return found, ok
}

// ceilingAfter returns the entry with the smallest start key strictly
// greater than start, or ok=false if no such entry exists.
func (idx *segmentIndex[K, P, S]) ceilingAfter(start K) (segEntry[K, P, S], bool) {
	var found segEntry[K, P, S]
	ok := false
	idx.tree.AscendGreaterOrEqual(segEntry[K, P, S]{start: start}, func(e segEntry[K, P, S]) bool {
		if e.start == start {
			return true
		}
		found = e
		ok = true
		return false
	})
	return found, ok
}

// ascendFrom visits entries in ascending order starting at the first entry
// with start key >= pivot.
func (idx *segmentIndex[K, P, S]) ascendFrom(pivot K, fn func(segEntry[K, P, S]) bool) {
	idx.tree.AscendGreaterOrEqual(segEntry[K, P, S]{start: pivot}, fn)
}

func (idx *segmentIndex[K, P, S]) insert(e segEntry[K, P, S]) {
	idx.tree.ReplaceOrInsert(e)
}

func (idx *segmentIndex[K, P, S]) delete(start K) {
	idx.tree.Delete(segEntry[K, P, S]{start: start})
}

// replaceRange deletes the entry keyed by oldStart and inserts newEntries,
// used by the buffered variant's flush repair (spec §4.D "replace range").
func (idx *segmentIndex[K, P, S]) replaceRange(oldStart K, newEntries []segEntry[K, P, S]) {
	idx.delete(oldStart)
	for _, e := range newEntries {
		idx.insert(e)
	}
}

func (idx *segmentIndex[K, P, S]) len() int {
	return idx.tree.Len()
}

func (idx *segmentIndex[K, P, S]) min() (segEntry[K, P, S], bool) {
	return idx.tree.Min()
}

func (idx *segmentIndex[K, P, S]) ascend(fn func(segEntry[K, P, S]) bool) {
	idx.tree.Ascend(fn)
}

func (idx *segmentIndex[K, P, S]) descendFrom(pivot K, fn func(segEntry[K, P, S]) bool) {
	idx.tree.DescendLessOrEqual(segEntry[K, P, S]{start: pivot}, fn)
}
