package fiting

import "testing"

func TestPLMAcceptsPerfectLine(t *testing.T) {
	m := newPLM[int64, uint64](4)
	for i := int64(0); i < 50; i++ {
		if !m.addPoint(i, uint64(i)) {
			t.Fatalf("perfectly linear point %d unexpectedly rejected", i)
		}
	}
	seg := m.getSegment()
	if seg.StartKey != 0 {
		t.Fatalf("expected start key 0, got %v", seg.StartKey)
	}
	if seg.Slope < 0.9 || seg.Slope > 1.1 {
		t.Fatalf("expected slope near 1 for y=x, got %v", seg.Slope)
	}
}

func TestPLMRejectsOutOfConePoint(t *testing.T) {
	m := newPLM[int64, uint64](2)
	for i := int64(0); i < 10; i++ {
		if !m.addPoint(i, uint64(i)) {
			t.Fatalf("setup point %d unexpectedly rejected", i)
		}
	}
	// A huge jump in y should fall outside a tight ±2 cone built from a
	// slope-1 run.
	if m.addPoint(10, 10000) {
		t.Fatalf("expected an outlier point to be rejected")
	}
	if m.pointsInSegment != 0 {
		t.Fatalf("expected model to reset after rejection, got pointsInSegment=%d", m.pointsInSegment)
	}
}

func TestPLMSinglePointSegmentHasUnitSlope(t *testing.T) {
	m := newPLM[int64, uint64](4)
	m.addPoint(5, 5)
	seg := m.getSegment()
	if seg.Slope != 1 {
		t.Fatalf("expected unit slope for a one-point segment, got %v", seg.Slope)
	}
	if seg.StartKey != 5 || seg.EndKey != 5 {
		t.Fatalf("expected start/end key to both be the single point, got %+v", seg)
	}
}
