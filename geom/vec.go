// Package geom holds the small amount of 2D vector math the engine and game
// systems share.
package geom

import "math"

// Vec2 is a 2D vector of float32 components, matching the precision the
// renderer works in.
type Vec2 struct {
	X, Y float32
}

// V is shorthand for constructing a Vec2.
func V(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// FromAngle returns the unit vector pointing at the given angle in radians.
func FromAngle(angle float32) Vec2 {
	return Vec2{X: float32(math.Cos(float64(angle))), Y: float32(math.Sin(float64(angle)))}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

// Dot returns the dot product.
func (v Vec2) Dot(o Vec2) float32 {
	return v.X*o.X + v.Y*o.Y
}

// Length returns the Euclidean length.
func (v Vec2) Length() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// LengthSquared avoids the square root when only relative magnitude matters.
func (v Vec2) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns the unit vector in v's direction, or the zero vector when
// v has no length.
func (v Vec2) Normalize() Vec2 {
	length := v.Length()
	if length == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / length, Y: v.Y / length}
}

// ClampLength limits the vector's length to max, preserving direction.
func (v Vec2) ClampLength(max float32) Vec2 {
	length := v.Length()
	if length <= max || length == 0 {
		return v
	}
	return v.Scale(max / length)
}

// Lerp interpolates linearly towards target by alpha in [0, 1].
func (v Vec2) Lerp(target Vec2, alpha float32) Vec2 {
	return Vec2{
		X: v.X + (target.X-v.X)*alpha,
		Y: v.Y + (target.Y-v.Y)*alpha,
	}
}

// Rotate rotates the vector by the given angle in radians.
func (v Vec2) Rotate(angle float32) Vec2 {
	sin, cos := math.Sincos(float64(angle))
	s, c := float32(sin), float32(cos)
	return Vec2{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// Angle returns the vector's direction in radians.
func (v Vec2) Angle() float32 {
	return float32(math.Atan2(float64(v.Y), float64(v.X)))
}

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
