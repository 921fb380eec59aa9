package fiting

// buildSegmentsRanged is BuildSegments's sibling for the buffered variant:
// it additionally reports, for each emitted segment, the half-open index
// range [startIdx, endIdx) of the input stream that was folded into it, so
// the caller can slice out the segment's packed sub-array (spec §4.G: a
// BufferedSegment owns the packed run it was built from). The segmentation
// logic itself is identical to BuildSegments.
func buildSegmentsRanged[K Key, P Pos](n int, errorBound uint64, in func(i int) (K, P), out func(seg Segment[K, P], startIdx, endIdx int)) int {
	if n == 0 {
		return 0
	}

	numSegments := 0
	start := 0

	kx, ky := in(0)
	model := newPLM[K, P](errorBound)
	model.addPoint(kx, ky)

	for i := 1; i < n; i++ {
		nx, ny := in(i)
		if i != start && nx == kx {
			continue
		}

		kx, ky = nx, ny
		if !model.addPoint(kx, ky) {
			out(model.getSegment(), start, i)
			start = i
			i--
			numSegments++
		}
	}

	out(model.getSegment(), start, n)
	return numSegments + 1
}
