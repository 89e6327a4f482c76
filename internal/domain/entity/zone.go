package entity

// Zone is a named rectangular partition of the operational area, used for
// the cheap pre-filter in §4.4. North/South are latitude bounds, East/West
// are longitude bounds.
type Zone struct {
	Name     string   `json:"name"`
	North    float64  `json:"north"`
	South    float64  `json:"south"`
	East     float64  `json:"east"`
	West     float64  `json:"west"`
	Adjacent []string `json:"adjacent"`
}

// Contains reports whether coord falls inside the zone's rectangle.
func (z Zone) Contains(coord Coordinate) bool {
	return coord.Lat <= z.North && coord.Lat >= z.South &&
		coord.Lng <= z.East && coord.Lng >= z.West
}

// ZoneSet is the full configured partition plus its adjacency relation.
type ZoneSet struct {
	Zones []Zone
}

// Locate returns the name of the zone containing coord, and false if coord
// falls outside every configured zone.
func (zs ZoneSet) Locate(coord Coordinate) (string, bool) {
	for _, z := range zs.Zones {
		if z.Contains(coord) {
			return z.Name, true
		}
	}

	return "", false
}

// AdjacentOrEqual reports whether candidate is the same zone as reference,
// or is listed in reference's adjacency set.
func (zs ZoneSet) AdjacentOrEqual(reference, candidate string) bool {
	if reference == candidate {
		return true
	}

	for _, z := range zs.Zones {
		if z.Name != reference {
			continue
		}
		for _, adj := range z.Adjacent {
			if adj == candidate {
				return true
			}
		}

		return false
	}

	return false
}
