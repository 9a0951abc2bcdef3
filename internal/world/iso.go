package world

import "math"

// Isometric tile footprint in screen pixels.
const (
	TileWidth  = 64
	TileHeight = 32
)

// WorldToScreen projects a tile coordinate to its screen offset before camera
// translation and zoom.
func WorldToScreen(x, y int) (px, py float64) {
	px = float64(x-y) * (TileWidth / 2)
	py = float64(x+y) * (TileHeight / 2)
	return px, py
}

// ScreenToWorld inverts WorldToScreen for a pointer at (px, py) given the
// camera offset and zoom. The result is floored to the containing tile and may
// be out of bounds.
func ScreenToWorld(px, py, camX, camY, zoom float64) Coord {
	wx := (px - camX) / zoom
	wy := (py - camY) / zoom
	ix := (wy/(TileHeight/2) + wx/(TileWidth/2)) / 2
	iy := (wy/(TileHeight/2) - wx/(TileWidth/2)) / 2
	return Coord{X: int(math.Floor(ix)), Y: int(math.Floor(iy))}
}
