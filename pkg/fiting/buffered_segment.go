package fiting

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Pair is a plain (key, position) tuple, used where a Segment descriptor
// would be overkill: the caller-facing insert/merge APIs of the buffered
// variant.
type Pair[K Key, P Pos] struct {
	Key K
	Pos P
}

// bufferItem is one entry of a BufferedSegment's insert buffer.
type bufferItem[K Key, P Pos] struct {
	key     K
	pos     P
	deleted bool
}

// BufferedSegment is the buffered variant of Segment (spec §3): it carries
// the packed sorted keys assigned to it at build/flush time, plus a small
// ordered insert buffer, plus tombstones for both. Tombstones over the
// packed array are tracked with a github.com/RoaringBitmap/roaring/v2
// bitmap keyed by local index (spec §3 calls this out explicitly as a
// first-class part of the data model, not an afterthought); the buffer is a
// small sorted slice with linear insert, per spec §9's note that this beats
// a map for small BufferSize.
type BufferedSegment[K Key, P Pos] struct {
	seg Segment[K, P]

	keys       []Pair[K, P]
	tombstones *roaring.Bitmap

	buffer        []bufferItem[K, P]
	maxBufferSize uint64
}

func newBufferedSegment[K Key, P Pos](seg Segment[K, P], packed []Pair[K, P], maxBufferSize uint64) *BufferedSegment[K, P] {
	return &BufferedSegment[K, P]{
		seg:           seg,
		keys:          packed,
		tombstones:    roaring.New(),
		maxBufferSize: maxBufferSize,
	}
}

func (s *BufferedSegment[K, P]) startKey() K { return s.seg.StartKey }

// predict mirrors Segment.predict for the segment this buffer sits on.
func (s *BufferedSegment[K, P]) predict(key K) int64 { return s.seg.predict(key) }

func (s *BufferedSegment[K, P]) packedLen() int { return len(s.keys) }

// size is the number of live entries, packed + buffered.
func (s *BufferedSegment[K, P]) size() int {
	live := len(s.keys) - int(s.tombstones.GetCardinality())
	for _, b := range s.buffer {
		if !b.deleted {
			live++
		}
	}
	return live
}

func (s *BufferedSegment[K, P]) bufferLen() int { return len(s.buffer) }

// searchPacked performs a lower_bound search for key within the packed
// array slice [lo, hi), clamped to the array bounds, and returns the index
// of an exact, non-deleted match plus true, or ok=false if none exists in
// range.
func (s *BufferedSegment[K, P]) searchPacked(lo, hi int, key K) (int, bool) {
	if lo < 0 {
		lo = 0
	}
	if hi > len(s.keys) {
		hi = len(s.keys)
	}
	if lo >= hi {
		return 0, false
	}
	window := s.keys[lo:hi]
	idx := sort.Search(len(window), func(i int) bool { return window[i].Key >= key })
	if idx == len(window) {
		return 0, false
	}
	globalIdx := lo + idx
	if window[idx].Key != key {
		return 0, false
	}
	if s.tombstones.Contains(uint32(globalIdx)) {
		return 0, false
	}
	return globalIdx, true
}

// packedLowerBoundWithin returns the index of the first live, non-deleted
// packed entry with Key >= key inside [lo, hi), or ok=false if none.
func (s *BufferedSegment[K, P]) packedLowerBoundWithin(lo, hi int, key K) (int, bool) {
	if lo < 0 {
		lo = 0
	}
	if hi > len(s.keys) {
		hi = len(s.keys)
	}
	for i := lo; i < hi; i++ {
		if s.keys[i].Key >= key && !s.tombstones.Contains(uint32(i)) {
			return i, true
		}
	}
	return 0, false
}

// bufferFind does an exact-match ordered lookup of key in the buffer.
func (s *BufferedSegment[K, P]) bufferFind(key K) (int, bool) {
	idx := sort.Search(len(s.buffer), func(i int) bool { return s.buffer[i].key >= key })
	if idx == len(s.buffer) || s.buffer[idx].key != key {
		return 0, false
	}
	if s.buffer[idx].deleted {
		return 0, false
	}
	return idx, true
}

// bufferLowerBound returns the index of the first live buffer entry with
// key >= target, or ok=false if none.
func (s *BufferedSegment[K, P]) bufferLowerBound(target K) (int, bool) {
	idx := sort.Search(len(s.buffer), func(i int) bool { return s.buffer[i].key >= target })
	for idx < len(s.buffer) && s.buffer[idx].deleted {
		idx++
	}
	if idx == len(s.buffer) {
		return 0, false
	}
	return idx, true
}

// insertBuffer inserts (key, pos) into the sorted buffer, keeping it
// sorted by key via linear insert. It returns false without modifying
// anything when the buffer is already at capacity, signaling the caller to
// flush instead (spec §4.G insert step 3/4).
func (s *BufferedSegment[K, P]) insertBuffer(key K, pos P) bool {
	if uint64(len(s.buffer)) >= s.maxBufferSize {
		return false
	}
	idx := sort.Search(len(s.buffer), func(i int) bool { return s.buffer[i].key >= key })
	s.buffer = append(s.buffer, bufferItem[K, P]{})
	copy(s.buffer[idx+1:], s.buffer[idx:])
	s.buffer[idx] = bufferItem[K, P]{key: key, pos: pos}
	return true
}

func (s *BufferedSegment[K, P]) deletePacked(globalIdx int) {
	s.tombstones.Add(uint32(globalIdx))
}

func (s *BufferedSegment[K, P]) deleteBufferAt(idx int) {
	s.buffer[idx].deleted = true
}

// mergeLive fuses this segment's live packed keys and live buffer entries
// with (newKey, newPos) inserted in sorted order, producing the ordered
// input the segmenter re-runs during a flush (spec §4.G step 4 / the
// reference's merge_buffer).
func (s *BufferedSegment[K, P]) mergeLive(newKey K, newPos P) []Pair[K, P] {
	merged := make([]Pair[K, P], 0, len(s.keys)+len(s.buffer)+1)
	newAdded := false

	emit := func(p Pair[K, P]) {
		if !newAdded && newKey < p.Key {
			merged = append(merged, Pair[K, P]{Key: newKey, Pos: newPos})
			newAdded = true
		}
		merged = append(merged, p)
	}

	s.forEachLive(emit)

	if !newAdded {
		merged = append(merged, Pair[K, P]{Key: newKey, Pos: newPos})
	}
	return merged
}

// firstLive returns the first live entry in merged key order, or ok=false
// if the segment has no live entries left.
func (s *BufferedSegment[K, P]) firstLive() (Pair[K, P], bool) {
	ki, bi := 0, 0
	for ki < len(s.keys) && s.tombstones.Contains(uint32(ki)) {
		ki++
	}
	for bi < len(s.buffer) && s.buffer[bi].deleted {
		bi++
	}
	switch {
	case ki >= len(s.keys) && bi >= len(s.buffer):
		return Pair[K, P]{}, false
	case ki >= len(s.keys):
		return Pair[K, P]{Key: s.buffer[bi].key, Pos: s.buffer[bi].pos}, true
	case bi >= len(s.buffer):
		return s.keys[ki], true
	case s.keys[ki].Key <= s.buffer[bi].key:
		return s.keys[ki], true
	default:
		return Pair[K, P]{Key: s.buffer[bi].key, Pos: s.buffer[bi].pos}, true
	}
}

// mergedLowerBound returns the smallest live key >= target within this
// segment, searching the packed array and the buffer and merging the two
// candidate results, or ok=false if neither has one.
func (s *BufferedSegment[K, P]) mergedLowerBound(target K) (Pair[K, P], bool) {
	pIdx, pOk := s.packedLowerBoundWithin(0, len(s.keys), target)
	bIdx, bOk := s.bufferLowerBound(target)
	switch {
	case pOk && bOk:
		if s.keys[pIdx].Key <= s.buffer[bIdx].key {
			return s.keys[pIdx], true
		}
		return Pair[K, P]{Key: s.buffer[bIdx].key, Pos: s.buffer[bIdx].pos}, true
	case pOk:
		return s.keys[pIdx], true
	case bOk:
		return Pair[K, P]{Key: s.buffer[bIdx].key, Pos: s.buffer[bIdx].pos}, true
	default:
		return Pair[K, P]{}, false
	}
}

// forEachLive visits every live entry across the packed array and the
// buffer in merged key order, mirroring BufferedSegment::begin/end's
// interleaved walk in the reference.
func (s *BufferedSegment[K, P]) forEachLive(visit func(Pair[K, P])) {
	ki, bi := 0, 0
	for ki < len(s.keys) || bi < len(s.buffer) {
		for ki < len(s.keys) && s.tombstones.Contains(uint32(ki)) {
			ki++
		}
		for bi < len(s.buffer) && s.buffer[bi].deleted {
			bi++
		}
		switch {
		case ki >= len(s.keys) && bi >= len(s.buffer):
			return
		case ki >= len(s.keys):
			visit(Pair[K, P]{Key: s.buffer[bi].key, Pos: s.buffer[bi].pos})
			bi++
		case bi >= len(s.buffer):
			visit(s.keys[ki])
			ki++
		case s.keys[ki].Key <= s.buffer[bi].key:
			visit(s.keys[ki])
			ki++
		default:
			visit(Pair[K, P]{Key: s.buffer[bi].key, Pos: s.buffer[bi].pos})
			bi++
		}
	}
}
