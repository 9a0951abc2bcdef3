// Package catalog provides the immutable table of placeable park structures.
package catalog

import (
	"fmt"
	"sort"
)

// BuildingID names a catalog entry ("rollercoaster", "path", ...).
type BuildingID string

// Category is the closed set of building kinds. Behavior that depends on the
// kind (fun, shop income, amenity bonus) switches on this value.
type Category uint8

const (
	CategoryRide    Category = iota // Adds fun; drives spawn rate and rating
	CategoryShop                    // Earns shop income per tick and per sale
	CategoryUtility                 // Amenities: restroom, garden
	CategoryPath                    // Walkable tile, never a facility
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case CategoryRide:
		return "ride"
	case CategoryShop:
		return "shop"
	case CategoryUtility:
		return "utility"
	case CategoryPath:
		return "path"
	default:
		return "unknown"
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(text []byte) error {
	for _, k := range []Category{CategoryRide, CategoryShop, CategoryUtility, CategoryPath} {
		if k.String() == string(text) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", text)
}

// Building is one immutable catalog entry.
type Building struct {
	ID          BuildingID `json:"id"`
	Name        string     `json:"name"`
	Category    Category   `json:"category"`
	Cost        int64      `json:"cost"`
	Maintenance int64      `json:"maintenance"` // Per tick, before level scaling
	Fun         float64    `json:"fun"`         // Rides only
	ShopIncome  int64      `json:"shop_income"` // Shops only

	// Utility only.
	SatisfactionBonus float64 `json:"satisfaction_bonus,omitempty"` // Applied on a successful visit
	AmenityRating     float64 `json:"amenity_rating,omitempty"`     // Contribution to attractiveness

	RequiresResearch bool  `json:"requires_research,omitempty"`
	RequiresMission  bool  `json:"requires_mission,omitempty"`
	ResearchCost     int64 `json:"research_cost,omitempty"`
	ResearchMinutes  int   `json:"research_minutes,omitempty"`
}

// Locked reports whether the building needs an unlock before it can be placed.
func (b Building) Locked() bool {
	return b.RequiresResearch || b.RequiresMission
}

// IsFacility reports whether placing the building creates facility state.
func (b Building) IsFacility() bool {
	return b.Category != CategoryPath
}

// Well-known ids.
const (
	Rollercoaster BuildingID = "rollercoaster"
	Carousel      BuildingID = "carousel"
	Viking        BuildingID = "viking"
	Ferris        BuildingID = "ferris"
	Bumper        BuildingID = "bumper"
	Waterslide    BuildingID = "waterslide"
	Burger        BuildingID = "burger"
	Drink         BuildingID = "drink"
	Restroom      BuildingID = "restroom"
	Garden        BuildingID = "garden"
	Path          BuildingID = "path"
)

var buildings = map[BuildingID]Building{
	Rollercoaster: {ID: Rollercoaster, Name: "Rollercoaster", Category: CategoryRide, Cost: 3000, Maintenance: 50, Fun: 18},
	Carousel:      {ID: Carousel, Name: "Carousel", Category: CategoryRide, Cost: 1000, Maintenance: 20, Fun: 10},
	Viking:        {ID: Viking, Name: "Viking Ship", Category: CategoryRide, Cost: 2000, Maintenance: 35, Fun: 15},
	Ferris: {ID: Ferris, Name: "Ferris Wheel", Category: CategoryRide, Cost: 2600, Maintenance: 40, Fun: 14,
		RequiresResearch: true, ResearchCost: 1500, ResearchMinutes: 30},
	Bumper: {ID: Bumper, Name: "Bumper Cars", Category: CategoryRide, Cost: 1800, Maintenance: 30, Fun: 13,
		RequiresResearch: true, ResearchCost: 1200, ResearchMinutes: 25},
	Waterslide: {ID: Waterslide, Name: "Waterslide", Category: CategoryRide, Cost: 3400, Maintenance: 55, Fun: 20,
		RequiresResearch: true, ResearchCost: 2200, ResearchMinutes: 40},
	Burger:   {ID: Burger, Name: "Burger Stand", Category: CategoryShop, Cost: 500, Maintenance: 10, ShopIncome: 30},
	Drink:    {ID: Drink, Name: "Drink Stand", Category: CategoryShop, Cost: 400, Maintenance: 8, ShopIncome: 25},
	Restroom: {ID: Restroom, Name: "Restroom", Category: CategoryUtility, Cost: 300, Maintenance: 15, SatisfactionBonus: 3.5, AmenityRating: 8},
	Garden: {ID: Garden, Name: "Garden", Category: CategoryUtility, Cost: 600, Maintenance: 12, SatisfactionBonus: 3.0, AmenityRating: 6,
		RequiresMission: true},
	Path: {ID: Path, Name: "Path", Category: CategoryPath, Cost: 10},
}

// Lookup returns the catalog entry for id.
func Lookup(id BuildingID) (Building, bool) {
	b, ok := buildings[id]
	return b, ok
}

// All returns every catalog entry sorted by category, then id.
func All() []Building {
	out := make([]Building, 0, len(buildings))
	for _, b := range buildings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// StarterUnlocks lists the locked-by-default rides a new park starts with.
// Unflagged buildings never need an unlock and are not listed.
func StarterUnlocks() []BuildingID {
	return []BuildingID{Rollercoaster, Carousel, Viking}
}
