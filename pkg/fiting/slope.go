package fiting

import (
	"math/big"

	"golang.org/x/exp/constraints"
)

// Key is the set of types a FITing-Tree can be built over: any ordered
// integer or floating-point type.
type Key interface {
	constraints.Integer | constraints.Float
}

// Pos is the set of types a FITing-Tree can use for positions: any unsigned
// integer type.
type Pos interface {
	constraints.Unsigned
}

// point is a (key, position) pair promoted to exact rational coordinates.
// The reference implementation picks a fixed-width integer (int64/int128)
// or a wide floating type depending on K's size; math/big.Rat is used here
// instead, since it represents any int64 or float64 exactly and never
// overflows regardless of K's width, which is strictly stronger than the
// reference's promotion table while preserving the same cone geometry.
type point struct {
	x *big.Rat
	y *big.Rat
}

func newPoint[K Key, P Pos](x K, y P) point {
	return point{x: keyToRat(x), y: posToRat(y)}
}

// sub returns the slope of the segment from p to q, i.e. (q - p).
func (p point) sub(q point) slope {
	return slope{
		dx: new(big.Rat).Sub(q.x, p.x),
		dy: new(big.Rat).Sub(q.y, p.y),
	}
}

// shifted returns a point with the same x and y shifted by delta (used to
// build the ±ε cone bounds around a point).
func (p point) shifted(delta int64) point {
	return point{x: p.x, y: new(big.Rat).Add(p.y, big.NewRat(delta, 1))}
}

// slope is a rational dy/dx kept as an exact numerator/denominator pair so
// that comparisons between two slopes are exact cross-multiplications with
// no floating drift, matching spec §4.A.
type slope struct {
	dx *big.Rat
	dy *big.Rat
}

// cmp returns -1, 0, or 1 as s compares less than, equal to, or greater
// than o, computed via the exact cross product dy*o.dx vs dx*o.dy. Signs of
// dx/o.dx are always positive in this package's use (x strictly increases
// between the points a cone is built from), so no sign correction is
// needed.
func (s slope) cmp(o slope) int {
	lhs := new(big.Rat).Mul(s.dy, o.dx)
	rhs := new(big.Rat).Mul(s.dx, o.dy)
	return lhs.Cmp(rhs)
}

func (s slope) less(o slope) bool    { return s.cmp(o) < 0 }
func (s slope) greater(o slope) bool { return s.cmp(o) > 0 }

// mean returns the arithmetic mean of two slopes as an exact rational.
func mean(a, b slope) *big.Rat {
	sum := new(big.Rat).Add(ratio(a), ratio(b))
	return new(big.Rat).Mul(sum, big.NewRat(1, 2))
}

// ratio converts a slope to its scalar dy/dx value.
func ratio(s slope) *big.Rat {
	return new(big.Rat).Quo(s.dy, s.dx)
}

func keyToRat[K Key](k K) *big.Rat {
	switch v := any(k).(type) {
	case float32:
		r := new(big.Rat)
		r.SetFloat64(float64(v))
		return r
	case float64:
		r := new(big.Rat)
		r.SetFloat64(v)
		return r
	case uint64:
		return new(big.Rat).SetUint64(v)
	case uint:
		return new(big.Rat).SetUint64(uint64(v))
	case uintptr:
		return new(big.Rat).SetUint64(uint64(v))
	default:
		return new(big.Rat).SetInt64(toInt64(k))
	}
}

func posToRat[P Pos](p P) *big.Rat {
	return new(big.Rat).SetUint64(uint64(p))
}

// toInt64 converts an integer Key to int64. keyToRat routes the 64-bit
// unsigned types (uint64, uint, uintptr), whose values can exceed int64,
// through SetUint64 instead, so every value reaching here fits in int64.
func toInt64[K Key](k K) int64 {
	return int64(k)
}
