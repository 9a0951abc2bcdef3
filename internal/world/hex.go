// Package world provides the park's tile grid, coordinates, the isometric
// projection used by renderers, and procedural path layouts.
package world

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is the edge length of the square park grid.
const Size = 20

// Coord is a tile position. X selects the column, Y the row.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Directions lists the four orthogonal offsets in the fixed order every
// neighbor scan uses: +X, -X, +Y, -Y.
var Directions = [4]Coord{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
}

// Neighbors returns the four orthogonal neighbors, some possibly out of bounds.
func (c Coord) Neighbors() [4]Coord {
	var result [4]Coord
	for i, dir := range Directions {
		result[i] = Coord{X: c.X + dir.X, Y: c.Y + dir.Y}
	}
	return result
}

// InBounds returns true if the coordinate lies on the grid.
func (c Coord) InBounds() bool {
	return c.X >= 0 && c.Y >= 0 && c.X < Size && c.Y < Size
}

// String formats the coordinate as "x,y".
func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// MarshalText lets Coord key JSON objects.
func (c Coord) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses the "x,y" form.
func (c *Coord) UnmarshalText(text []byte) error {
	parsed, err := ParseCoord(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCoord parses "x,y".
func ParseCoord(s string) (Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("coord %q: missing comma", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Coord{}, fmt.Errorf("coord %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Coord{}, fmt.Errorf("coord %q: %w", s, err)
	}
	return Coord{X: x, Y: y}, nil
}
