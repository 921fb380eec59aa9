package fiting

// BuildSegments walks a sorted stream of n (key, position) pairs, produced
// by in(i), and emits the minimal sequence of ε-accurate linear segments
// covering them via out. It implements the Segmenter driver contract of
// spec §4.C: duplicate keys are coalesced (earliest position wins), and a
// point rejected by the current model is retried as the first point of the
// next segment. Returns the number of segments emitted.
func BuildSegments[K Key, P Pos](n int, errorBound uint64, in func(i int) (K, P), out func(Segment[K, P])) int {
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
			out(model.getSegment())
			start = i
			i--
			numSegments++
		}
	}

	out(model.getSegment())
	return numSegments + 1
}
