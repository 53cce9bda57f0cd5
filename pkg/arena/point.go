package arena

import (
	"math"
	"strconv"
)

// Point is a 2D position or vector on the arena plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero is the origin / zero vector.
var Zero = Point{}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// Len2 returns the squared length of p.
func (p Point) Len2() float64 { return p.X*p.X + p.Y*p.Y }

// Len returns the length of p.
func (p Point) Len() float64 { return math.Sqrt(p.Len2()) }

// Dist2 returns the squared distance between p and q.
func (p Point) Dist2(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Scale returns a vector with the direction of p and the given length.
// The zero vector has no direction and is returned unchanged.
func (p Point) Scale(length float64) Point {
	if p.X == 0 && p.Y == 0 {
		return p
	}
	return p.Mul(length / p.Len())
}

// Angle returns the heading of p in radians, atan2(y, x).
func (p Point) Angle() float64 { return math.Atan2(p.Y, p.X) }

// Heading returns the unit vector pointing at angle a.
func Heading(a float64) Point { return Point{X: math.Cos(a), Y: math.Sin(a)} }

func (p Point) String() string {
	return formatFloat(p.X) + " " + formatFloat(p.Y)
}

// formatFloat renders v with the shortest representation that parses back
// to the same float64.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
