package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is an immutable 2D vector.
type Vec2 r2.Vec

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2(r2.Add(r2.Vec(v), r2.Vec(o))) }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2(r2.Sub(r2.Vec(v), r2.Vec(o))) }

func (v Vec2) Scale(f float64) Vec2 { return Vec2(r2.Scale(f, r2.Vec(v))) }

// Div divides both components by f. Dividing by zero yields Inf/NaN
// components, so callers guard the divisor.
func (v Vec2) Div(f float64) Vec2 { return Vec2{X: v.X / f, Y: v.Y / f} }

// Len returns the Euclidean length.
func (v Vec2) Len() float64 { return r2.Norm(r2.Vec(v)) }

func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
