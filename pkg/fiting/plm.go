package fiting

import "math/big"

// piecewiseLinearModel implements the online shrinking-cone fit described in
// spec §4.B: feed points one at a time, and it tells the caller whether the
// point still fits inside the current ε-cone. Once a point is rejected the
// model resets itself to empty and the caller retries the point as the
// first of the next segment (see BuildSegments).
type piecewiseLinearModel[K Key, P Pos] struct {
	errorBound uint64

	first point
	last  point

	lowerSlope slope
	upperSlope slope

	pointsInSegment int
}

func newPLM[K Key, P Pos](errorBound uint64) *piecewiseLinearModel[K, P] {
	return &piecewiseLinearModel[K, P]{errorBound: errorBound}
}

// addPoint feeds (x, y) into the model. It returns false exactly when the
// point falls outside the current cone, at which point the model resets to
// an empty state (pointsInSegment == 0) and the caller retries the point
// against this same, now empty model.
func (m *piecewiseLinearModel[K, P]) addPoint(x K, y P) bool {
	current := newPoint[K, P](x, y)
	delta := int64(m.errorBound)

	switch m.pointsInSegment {
	case 0:
		m.first = current
		m.last = current
		m.lowerSlope = slope{dx: big.NewRat(1, 1), dy: big.NewRat(0, 1)}
		m.upperSlope = slope{dx: big.NewRat(0, 1), dy: big.NewRat(1, 1)}
		m.pointsInSegment = 1
		return true

	case 1:
		p1 := current.shifted(delta)
		p2 := current.shifted(-delta)
		m.lowerSlope = m.first.sub(p2)
		m.upperSlope = m.first.sub(p1)
		m.last = current
		m.pointsInSegment = 2
		return true

	default:
		candidate := m.first.sub(current)
		if candidate.less(m.lowerSlope) || candidate.greater(m.upperSlope) {
			m.pointsInSegment = 0
			return false
		}

		p1 := current.shifted(delta)
		p2 := current.shifted(-delta)
		if s := m.first.sub(p1); s.less(m.upperSlope) {
			m.upperSlope = s
		}
		if s := m.first.sub(p2); s.greater(m.lowerSlope) {
			m.lowerSlope = s
		}

		m.last = current
		m.pointsInSegment++
		return true
	}
}

// getSegment materializes the current cone into an immutable Segment. It is
// called either while points are being fed (pointsInSegment > 0) or right
// after addPoint rejected a point; the reset leaves first, last and the
// cone untouched, so they still describe the segment the rejection closed.
func (m *piecewiseLinearModel[K, P]) getSegment() Segment[K, P] {
	startKey := ratToKey[K](m.first.x)
	startPos := ratToPos[P](m.first.y)
	endKey := ratToKey[K](m.last.x)

	if m.pointsInSegment == 1 {
		return Segment[K, P]{
			StartKey: startKey,
			StartPos: startPos,
			EndKey:   endKey,
			Slope:    1,
		}
	}

	slopeRat := mean(m.lowerSlope, m.upperSlope)
	f, _ := slopeRat.Float64()
	return Segment[K, P]{
		StartKey: startKey,
		StartPos: startPos,
		EndKey:   endKey,
		Slope:    f,
	}
}

func ratToKey[K Key](r *big.Rat) K {
	f, _ := r.Float64()
	return K(f)
}

func ratToPos[P Pos](r *big.Rat) P {
	f, _ := r.Float64()
	return P(f)
}
