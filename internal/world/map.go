package world

import (
	"fmt"

	"github.com/talgya/mini-park/internal/catalog"
)

// Kind is what occupies a tile.
type Kind uint8

const (
	KindEmpty    Kind = iota // Grass, buildable
	KindPath                 // Walkable by visitors
	KindFacility             // Built structure; see Tile.Building
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindPath:
		return "path"
	case KindFacility:
		return "facility"
	default:
		return "unknown"
	}
}

// Tile is one grid cell.
type Tile struct {
	Kind     Kind               `json:"kind"`
	Building catalog.BuildingID `json:"building,omitempty"` // Set only for KindFacility
}

// Grid holds every tile, indexed [x][y]. It is a plain value: copying a Grid
// copies the whole park layout.
type Grid struct {
	Tiles [Size][Size]Tile `json:"tiles"`
}

// NewGrid creates the starting layout: all grass except a five-tile path
// running along the middle column.
func NewGrid() Grid {
	var g Grid
	mid := Size / 2
	for y := mid - 2; y <= mid+2; y++ {
		g.Tiles[mid][y] = Tile{Kind: KindPath}
	}
	return g
}

// At returns the tile at c. Out-of-bounds coordinates read as empty.
func (g *Grid) At(c Coord) Tile {
	if !c.InBounds() {
		return Tile{}
	}
	return g.Tiles[c.X][c.Y]
}

// Set writes the tile at c. Out-of-bounds writes are ignored.
func (g *Grid) Set(c Coord, t Tile) {
	if !c.InBounds() {
		return
	}
	g.Tiles[c.X][c.Y] = t
}

// IsPath returns true if c is in bounds and walkable.
func (g *Grid) IsPath(c Coord) bool {
	return c.InBounds() && g.Tiles[c.X][c.Y].Kind == KindPath
}

// HasAdjacentPath returns true if any orthogonal neighbor of c is a path.
func (g *Grid) HasAdjacentPath(c Coord) bool {
	for _, n := range c.Neighbors() {
		if g.IsPath(n) {
			return true
		}
	}
	return false
}

// PathTiles returns every path coordinate in x-major order.
func (g *Grid) PathTiles() []Coord {
	var out []Coord
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if g.Tiles[x][y].Kind == KindPath {
				out = append(out, Coord{X: x, Y: y})
			}
		}
	}
	return out
}

// FacilityTiles returns every facility coordinate in x-major order.
func (g *Grid) FacilityTiles() []Coord {
	var out []Coord
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if g.Tiles[x][y].Kind == KindFacility {
				out = append(out, Coord{X: x, Y: y})
			}
		}
	}
	return out
}

// Count returns how many tiles have the given kind.
func (g *Grid) Count(kind Kind) int {
	n := 0
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			if g.Tiles[x][y].Kind == kind {
				n++
			}
		}
	}
	return n
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(size=%d, paths=%d, facilities=%d)",
		Size, g.Count(KindPath), g.Count(KindFacility))
}
