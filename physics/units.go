package physics

// Scale converts between screen pixels and engine meters.
type Scale float64

// ToMeters converts a pixel length to meters.
func (s Scale) ToMeters(px float64) float64 {
	return px / float64(s)
}

// ToPixels converts a meter length to pixels.
func (s Scale) ToPixels(m float64) float64 {
	return m * float64(s)
}

// PointToMeters converts a pixel point to meters.
func (s Scale) PointToMeters(x, y float32) Vec2 {
	return Vec2{float64(x) / float64(s), float64(y) / float64(s)}
}

// PointToPixels converts a meter point to float32 pixels.
func (s Scale) PointToPixels(v Vec2) (x, y float32) {
	return float32(v.X * float64(s)), float32(v.Y * float64(s))
}
