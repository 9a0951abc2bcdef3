// Procedural starter layouts using layered simplex noise.
// Paths grow outward from the existing network into the tiles where the noise
// field is highest, producing winding corridors instead of straight lines.
package world

import (
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// LayoutConfig holds path generation parameters.
type LayoutConfig struct {
	Seed      int64   // Noise seed (0 = random)
	MaxPaths  int     // Extra path tiles to carve
	Threshold float64 // Noise level (0.0–1.0) a frontier tile needs to be preferred
}

// DefaultLayoutConfig returns a modest network that leaves most land buildable.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Seed:      0,
		MaxPaths:  40,
		Threshold: 0.45,
	}
}

// GenerateLayout extends the path network on g and returns how many tiles were
// carved. Only empty tiles touching exactly one path tile are candidates, so
// the network stays connected and corridor-shaped. The result is deterministic
// for a given seed and starting grid.
func GenerateLayout(g *Grid, cfg LayoutConfig) int {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	noise := opensimplex.NewNormalized(seed)

	type candidate struct {
		coord Coord
		value float64
	}

	carved := 0
	for carved < cfg.MaxPaths {
		var frontier []candidate
		for x := 0; x < Size; x++ {
			for y := 0; y < Size; y++ {
				c := Coord{X: x, Y: y}
				if g.Tiles[x][y].Kind != KindEmpty || pathNeighbors(g, c) != 1 {
					continue
				}
				frontier = append(frontier, candidate{
					coord: c,
					value: octaveNoise(noise, float64(x), float64(y), 3, 0.12, 0.5),
				})
			}
		}
		if len(frontier) == 0 {
			break
		}

		// Highest noise first; ties broken by position for stable output.
		sort.SliceStable(frontier, func(i, j int) bool {
			return frontier[i].value > frontier[j].value
		})

		// Carve every preferred tile that still qualifies; if none clear the
		// threshold, carve the single best so growth never stalls.
		progressed := false
		for _, cand := range frontier {
			if carved >= cfg.MaxPaths {
				break
			}
			if progressed && cand.value < cfg.Threshold {
				break
			}
			if pathNeighbors(g, cand.coord) != 1 {
				continue
			}
			g.Set(cand.coord, Tile{Kind: KindPath})
			carved++
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return carved
}

func pathNeighbors(g *Grid, c Coord) int {
	n := 0
	for _, nb := range c.Neighbors() {
		if g.IsPath(nb) {
			n++
		}
	}
	return n
}

// octaveNoise sums several noise octaves for a natural-looking field in 0..1.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
