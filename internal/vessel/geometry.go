package vessel

import (
	"fmt"
	"strconv"
)

// Format identifies the physical culture vessel type.
type Format int

const (
	FormatPlate96 Format = iota
	FormatPlate384
	FormatFlaskT25
)

var formatNames = [...]string{"plate96", "plate384", "flaskT25"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// ParseFormat maps a format name to its Format.
func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown vessel format %q", name)
}

// Geometry describes the physical dimensions of a vessel format.
type Geometry struct {
	Format          Format
	Rows            int
	Cols            int
	GrowthAreaCM2   float64
	WorkingVolumeML float64
}

var geometries = map[Format]Geometry{
	FormatPlate96:  {Format: FormatPlate96, Rows: 8, Cols: 12, GrowthAreaCM2: 0.32, WorkingVolumeML: 0.2},
	FormatPlate384: {Format: FormatPlate384, Rows: 16, Cols: 24, GrowthAreaCM2: 0.056, WorkingVolumeML: 0.05},
	FormatFlaskT25: {Format: FormatFlaskT25, Rows: 1, Cols: 1, GrowthAreaCM2: 25, WorkingVolumeML: 5},
}

// GeometryFor returns the geometry of a vessel format.
func GeometryFor(f Format) Geometry {
	return geometries[f]
}

// ParseWellID splits a well identifier like "B02" into zero-based row and
// column indexes. Flask vessels use the empty well ID.
func ParseWellID(id string) (row, col int, err error) {
	if len(id) < 2 {
		return 0, 0, fmt.Errorf("well id %q too short", id)
	}
	r := id[0]
	if r < 'A' || r > 'Z' {
		return 0, 0, fmt.Errorf("well id %q has no row letter", id)
	}
	c, err := strconv.Atoi(id[1:])
	if err != nil || c < 1 {
		return 0, 0, fmt.Errorf("well id %q has invalid column", id)
	}
	return int(r - 'A'), c - 1, nil
}

// IsEdge reports whether the given well sits on the outer ring of the
// plate, where evaporation perturbs growth. Flasks have no edge wells.
func (g Geometry) IsEdge(wellID string) (bool, error) {
	if g.Rows <= 1 && g.Cols <= 1 {
		return false, nil
	}
	row, col, err := ParseWellID(wellID)
	if err != nil {
		return false, err
	}
	if row >= g.Rows || col >= g.Cols {
		return false, fmt.Errorf("well %q outside %s (%dx%d)", wellID, g.Format, g.Rows, g.Cols)
	}
	return row == 0 || row == g.Rows-1 || col == 0 || col == g.Cols-1, nil
}
