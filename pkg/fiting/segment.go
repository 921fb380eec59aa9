package fiting

// Segment is an immutable linear predictor over a contiguous run of keys,
// as produced by the shrinking-cone segmenter (spec §3, §4.B). Once
// emitted, a Segment is never mutated.
type Segment[K Key, P Pos] struct {
	StartKey K
	StartPos P
	EndKey   K
	Slope    float64
}

// predict returns (k - StartKey) * Slope + StartPos, rounded toward zero,
// per spec's "Predicted position" definition.
func (s Segment[K, P]) predict(k K) int64 {
	return int64((float64(k)-float64(s.StartKey))*s.Slope) + int64(s.StartPos)
}
