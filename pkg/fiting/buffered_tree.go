package fiting

import (
	"iter"
	"log"

	"github.com/RKolla99/FITing-Tree/pkg/config"
)

// BufferedFitingTree is the buffered façade of spec §4.G: each segment
// carries a small sorted insert buffer so single-key inserts and deletes
// don't force a full rebuild, at the cost of checking two places (packed
// array, buffer) per query. A segment flushes into a local re-segmentation
// only once its buffer fills.
type BufferedFitingTree[K Key, P Pos] struct {
	bufferSize uint64
	segError   uint64
	index      *segmentIndex[K, P, *BufferedSegment[K, P]]
}

// BuildBuffered constructs a BufferedFitingTree over the sorted slice data,
// using error budget errorBound and per-segment buffer capacity
// bufferSize. It panics if errorBound is zero or if bufferSize is not
// strictly less than errorBound (config.IndexConfig.Validate's invariant),
// or if data is not sorted in non-decreasing order.
//
// The error budget is split the way spec §1/§4.G require: segmentation
// itself runs at the reduced budget segError = errorBound - bufferSize,
// leaving bufferSize of slack so a key sitting in a segment's buffer can
// never drift more than errorBound away from its true position before the
// buffer is flushed and the segment re-fit.
func BuildBuffered[K Key, P Pos](data []K, errorBound, bufferSize uint64) *BufferedFitingTree[K, P] {
	cfg := config.IndexConfig{Error: errorBound, BufferSize: bufferSize}
	if err := cfg.Validate(); err != nil {
		panic("fiting: " + err.Error())
	}
	assertSorted(data)

	t := &BufferedFitingTree[K, P]{
		bufferSize: bufferSize,
		segError:   errorBound - bufferSize,
		index:      newSegmentIndex[K, P, *BufferedSegment[K, P]](),
	}
	if len(data) == 0 {
		return t
	}

	in := func(i int) (K, P) { return data[i], P(i) }

	var entries []segEntry[K, P, *BufferedSegment[K, P]]
	out := func(seg Segment[K, P], startIdx, endIdx int) {
		packed := make([]Pair[K, P], endIdx-startIdx)
		for j := startIdx; j < endIdx; j++ {
			packed[j-startIdx] = Pair[K, P]{Key: data[j], Pos: P(j)}
		}
		bs := newBufferedSegment[K, P](seg, packed, bufferSize)
		entries = append(entries, segEntry[K, P, *BufferedSegment[K, P]]{start: seg.StartKey, seg: bs})
	}

	count := buildSegmentsRanged[K, P](len(data), t.segError, in, out)
	if count >= logSegmentThreshold {
		log.Printf("[fiting] built %d buffered segments over %d keys (error=%d, buffer=%d)", count, len(data), errorBound, bufferSize)
	}

	t.index.bulkLoad(entries)
	return t
}

// SegmentCount returns the number of segments currently in the index.
func (t *BufferedFitingTree[K, P]) SegmentCount() int {
	if t.index == nil {
		return 0
	}
	return t.index.len()
}

// Size returns the total number of live keys across all segments, packed
// and buffered.
func (t *BufferedFitingTree[K, P]) Size() int {
	total := 0
	t.index.ascend(func(e segEntry[K, P, *BufferedSegment[K, P]]) bool {
		total += e.seg.size()
		return true
	})
	return total
}

// Find reports the position of key, if it is live in the tree, per spec
// §4.G's find contract: locate the owning segment by floor(key), then
// check its packed array and its buffer.
func (t *BufferedFitingTree[K, P]) Find(key K) (P, bool) {
	e, ok := t.index.floor(key)
	if !ok {
		// A key below every start can only sit in the leftmost segment's
		// buffer, where Insert puts it.
		e, ok = t.index.min()
		if !ok {
			var zero P
			return zero, false
		}
	}

	bs := e.seg
	if idx, ok := bs.searchPacked(0, bs.packedLen(), key); ok {
		return bs.keys[idx].Pos, true
	}
	if idx, ok := bs.bufferFind(key); ok {
		return bs.buffer[idx].pos, true
	}

	var zero P
	return zero, false
}

// LowerBound returns the smallest live (key, pos) pair with Key >= key, or
// ok=false if no such pair exists (spec §4.G). When the owning segment's
// own live entries are all below key — its packed array and buffer are
// both exhausted toward the high end — the search continues into
// subsequent segments.
func (t *BufferedFitingTree[K, P]) LowerBound(key K) (Pair[K, P], bool) {
	e, ok := t.index.floor(key)
	if !ok {
		return t.firstLiveFromBeginning()
	}
	if p, found := e.seg.mergedLowerBound(key); found {
		return p, true
	}
	return t.firstLiveAfter(e.start)
}

func (t *BufferedFitingTree[K, P]) firstLiveFromBeginning() (Pair[K, P], bool) {
	var result Pair[K, P]
	found := false
	t.index.ascend(func(e segEntry[K, P, *BufferedSegment[K, P]]) bool {
		if p, ok := e.seg.firstLive(); ok {
			result = p
			found = true
			return false
		}
		return true
	})
	return result, found
}

func (t *BufferedFitingTree[K, P]) firstLiveAfter(start K) (Pair[K, P], bool) {
	var result Pair[K, P]
	found := false
	t.index.ascendFrom(start, func(e segEntry[K, P, *BufferedSegment[K, P]]) bool {
		if e.start == start {
			return true
		}
		if p, ok := e.seg.firstLive(); ok {
			result = p
			found = true
			return false
		}
		return true
	})
	return result, found
}

// Insert adds (key, pos) to the tree, per spec §4.G. Duplicates are
// forbidden (spec §3, §7): if key is already live anywhere in the tree,
// Insert is a silent no-op, mirroring the reference's
// "if (find(key) != end()) return;". Otherwise the new entry lands in the
// owning segment's buffer when there's room; otherwise the segment's live
// keys (packed + buffered) plus the new entry are merged and re-segmented
// in place, replacing the one old index entry with however many new
// segments the merge produces. When key precedes every segment's start,
// insertion falls back to the leftmost segment, mirroring the reference's
// descending-order rbegin() fallback for a before-the-start key. An insert
// into an empty tree creates its first segment, holding just that key.
func (t *BufferedFitingTree[K, P]) Insert(key K, pos P) {
	if _, found := t.Find(key); found {
		return
	}

	e, ok := t.index.floor(key)
	if !ok {
		e, ok = t.index.min()
		if !ok {
			seg := Segment[K, P]{StartKey: key, StartPos: pos, EndKey: key, Slope: 1}
			packed := []Pair[K, P]{{Key: key, Pos: pos}}
			t.index.insert(segEntry[K, P, *BufferedSegment[K, P]]{start: key, seg: newBufferedSegment[K, P](seg, packed, t.bufferSize)})
			return
		}
	}

	if e.seg.insertBuffer(key, pos) {
		return
	}
	t.flush(e.start, e.seg, key, pos)
}

// flush merges a full segment's live entries with one new (key, pos),
// re-segments the merged run from scratch, and splices the resulting
// segments into the index in place of the old one. Re-segmentation is fed
// each merged entry's original position — not its index in the merged
// slice — so the rebuilt segments stay ε-accurate against the tree's true
// key positions rather than against a locally renumbered one.
func (t *BufferedFitingTree[K, P]) flush(oldStart K, bs *BufferedSegment[K, P], newKey K, newPos P) {
	merged := bs.mergeLive(newKey, newPos)

	in := func(i int) (K, P) { return merged[i].Key, merged[i].Pos }

	var newEntries []segEntry[K, P, *BufferedSegment[K, P]]
	out := func(seg Segment[K, P], startIdx, endIdx int) {
		packed := make([]Pair[K, P], endIdx-startIdx)
		copy(packed, merged[startIdx:endIdx])
		nb := newBufferedSegment[K, P](seg, packed, t.bufferSize)
		newEntries = append(newEntries, segEntry[K, P, *BufferedSegment[K, P]]{start: seg.StartKey, seg: nb})
	}

	buildSegmentsRanged[K, P](len(merged), t.segError, in, out)
	t.index.replaceRange(oldStart, newEntries)
}

// Erase removes key from the tree if present, reporting whether it was
// found. Erase marks the entry as dead (a tombstone in the packed array, a
// deleted flag in the buffer) rather than compacting anything immediately.
func (t *BufferedFitingTree[K, P]) Erase(key K) bool {
	e, ok := t.index.floor(key)
	if !ok {
		e, ok = t.index.min()
		if !ok {
			return false
		}
	}

	bs := e.seg
	if idx, ok := bs.searchPacked(0, bs.packedLen(), key); ok {
		bs.deletePacked(idx)
		return true
	}
	if idx, ok := bs.bufferFind(key); ok {
		bs.deleteBufferAt(idx)
		return true
	}
	return false
}

// All returns an iterator over every live (key, pos) pair in ascending key
// order, walking segments left to right and merging each segment's packed
// array with its buffer.
func (t *BufferedFitingTree[K, P]) All() iter.Seq[Pair[K, P]] {
	return func(yield func(Pair[K, P]) bool) {
		cont := true
		t.index.ascend(func(e segEntry[K, P, *BufferedSegment[K, P]]) bool {
			e.seg.forEachLive(func(p Pair[K, P]) {
				if !cont {
					return
				}
				if !yield(p) {
					cont = false
				}
			})
			return cont
		})
	}
}
