package nav

import "math"

// Vec is a point or displacement in world space.
type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec        { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec        { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(s float64) Vec  { return Vec{v.X * s, v.Y * s} }
func (v Vec) Dot(o Vec) float64    { return v.X*o.X + v.Y*o.Y }
func (v Vec) LenSq() float64       { return v.X*v.X + v.Y*v.Y }
func (v Vec) Len() float64         { return math.Sqrt(v.LenSq()) }
func (v Vec) DistSq(o Vec) float64 { return v.Sub(o).LenSq() }
func (v Vec) Angle() float64       { return math.Atan2(v.Y, v.X) }
func (v Vec) Perpendicular() Vec   { return Vec{-v.Y, v.X} }
func (v Vec) Lerp(o Vec, t float64) Vec {
	return Vec{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Normalize returns the unit vector along v, or the zero vector when v has
// no length.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// FromAngle returns the unit vector for a heading in radians.
func FromAngle(rad float64) Vec {
	return Vec{math.Cos(rad), math.Sin(rad)}
}
