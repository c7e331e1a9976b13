package main

import "math"

// Vec2 is a 2D vector in logical points.
type Vec2 struct {
	X, Y float64
}

// Splat returns a vector with both components set to v.
func Splat(v float64) Vec2 {
	return Vec2{X: v, Y: v}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Mul multiplies componentwise.
func (v Vec2) Mul(o Vec2) Vec2 {
	return Vec2{X: v.X * o.X, Y: v.Y * o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Rect is an axis-aligned rectangle with its top-left corner at Min.
type Rect struct {
	Min  Vec2
	Size Vec2
}

// RectFromCenterSize returns a rectangle of the given size centered on c.
func RectFromCenterSize(c, size Vec2) Rect {
	return Rect{Min: c.Sub(size.Scale(0.5)), Size: size}
}

func (r Rect) Max() Vec2 {
	return r.Min.Add(r.Size)
}

func (r Rect) Center() Vec2 {
	return r.Min.Add(r.Size.Scale(0.5))
}

func (r Rect) LeftCenter() Vec2 {
	return Vec2{X: r.Min.X, Y: r.Min.Y + r.Size.Y/2}
}

func (r Rect) RightCenter() Vec2 {
	return Vec2{X: r.Min.X + r.Size.X, Y: r.Min.Y + r.Size.Y/2}
}

func (r Rect) Translate(d Vec2) Rect {
	return Rect{Min: r.Min.Add(d), Size: r.Size}
}

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X < r.Min.X+r.Size.X &&
		p.Y >= r.Min.Y && p.Y < r.Min.Y+r.Size.Y
}

func (r Rect) Empty() bool {
	return r.Size.X <= 0 || r.Size.Y <= 0
}

// Intersect returns the overlap of r and o, or a zero Rect if they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	minX := math.Max(r.Min.X, o.Min.X)
	minY := math.Max(r.Min.Y, o.Min.Y)
	maxX := math.Min(r.Max().X, o.Max().X)
	maxY := math.Min(r.Max().Y, o.Max().Y)
	if maxX <= minX || maxY <= minY {
		return Rect{}
	}
	return Rect{Min: Vec2{X: minX, Y: minY}, Size: Vec2{X: maxX - minX, Y: maxY - minY}}
}

// ClampInto shifts r so that it lies inside bounds where possible.
func (r Rect) ClampInto(bounds Rect) Rect {
	x := math.Max(bounds.Min.X, math.Min(r.Min.X, bounds.Max().X-r.Size.X))
	y := math.Max(bounds.Min.Y, math.Min(r.Min.Y, bounds.Max().Y-r.Size.Y))
	return Rect{Min: Vec2{X: x, Y: y}, Size: r.Size}
}

// clamp restricts a value to a given range.
func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
