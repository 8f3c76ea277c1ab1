// Package field holds the static soccar field geometry: dimensions, unit
// conversions, and the canonical 34-entry boost-pad table.
package field

import (
	"math"

	"github.com/rlstats/go-rl-metrics/internal/model"
)

// Field extent in unreal units (1 uu = 1 cm).
const (
	SideWallX = 4096.0
	BackWallY = 5120.0
	CeilingZ  = 2044.0

	FieldLengthUU = 2 * BackWallY
	FieldWidthUU  = 2 * SideWallX

	GoalHalfWidthUU = 893.0
	GoalHeightUU    = 642.775

	UUPerM       = 100.0
	UUPerKM      = 100000.0
	KPHPerUUPerS = 0.036

	MaxCarSpeedUU = 2300.0
)

// Side labels a pad's canonical half of the field.
type Side string

const (
	SideBlue   Side = "blue"
	SideOrange Side = "orange"
	SideMid    Side = "mid"
)

// Pad radii as placed on the map.
const (
	BigPadRadiusUU   = 208.0
	SmallPadRadiusUU = 144.0
)

// BoostPad is one immutable canonical pad entry.
type BoostPad struct {
	ID       int        `json:"id"`
	Position model.Vec3 `json:"position"`
	Big      bool       `json:"big"`
	Radius   float64    `json:"radius"`
	Side     Side       `json:"side"`
}

// Type returns the pad's capacity class.
func (p BoostPad) Type() model.PadType {
	if p.Big {
		return model.PadBig
	}
	return model.PadSmall
}

// Capacity is the theoretical refill of the pad: BIG=100, SMALL=12.
func (p BoostPad) Capacity() float64 {
	if p.Big {
		return 100
	}
	return 12
}

// pads is the canonical soccar layout: 6 big + 28 small, ordered by Y then X.
// Never mutated at runtime; callers get copies.
var pads = [34]BoostPad{
	pad(0, 0, -4240, 70, false),
	pad(1, -1792, -4184, 70, false),
	pad(2, 1792, -4184, 70, false),
	pad(3, -3072, -4096, 73, true),
	pad(4, 3072, -4096, 73, true),
	pad(5, -940, -3308, 70, false),
	pad(6, 940, -3308, 70, false),
	pad(7, 0, -2816, 70, false),
	pad(8, -3584, -2484, 70, false),
	pad(9, 3584, -2484, 70, false),
	pad(10, -1788, -2300, 70, false),
	pad(11, 1788, -2300, 70, false),
	pad(12, -2048, -1036, 70, false),
	pad(13, 0, -1024, 70, false),
	pad(14, 2048, -1036, 70, false),
	pad(15, -3584, 0, 73, true),
	pad(16, -1024, 0, 70, false),
	pad(17, 1024, 0, 70, false),
	pad(18, 3584, 0, 73, true),
	pad(19, -2048, 1036, 70, false),
	pad(20, 0, 1024, 70, false),
	pad(21, 2048, 1036, 70, false),
	pad(22, -1788, 2300, 70, false),
	pad(23, 1788, 2300, 70, false),
	pad(24, -3584, 2484, 70, false),
	pad(25, 3584, 2484, 70, false),
	pad(26, 0, 2816, 70, false),
	pad(27, -940, 3308, 70, false),
	pad(28, 940, 3308, 70, false),
	pad(29, -3072, 4096, 73, true),
	pad(30, 3072, 4096, 73, true),
	pad(31, -1792, 4184, 70, false),
	pad(32, 1792, 4184, 70, false),
	pad(33, 0, 4240, 70, false),
}

func pad(id int, x, y, z float64, big bool) BoostPad {
	radius := SmallPadRadiusUU
	if big {
		radius = BigPadRadiusUU
	}
	return BoostPad{
		ID:       id,
		Position: model.Vec3{X: x, Y: y, Z: z},
		Big:      big,
		Radius:   radius,
		Side:     SideOf(y),
	}
}

// Pads returns a copy of the canonical pad table.
func Pads() []BoostPad {
	out := make([]BoostPad, len(pads))
	copy(out, pads[:])
	return out
}

// Pad returns the pad with the given id.
func Pad(id int) (BoostPad, bool) {
	if id < 0 || id >= len(pads) {
		return BoostPad{}, false
	}
	return pads[id], true
}

// SideOf labels a Y coordinate: blue half is negative Y.
func SideOf(y float64) Side {
	switch {
	case y < 0:
		return SideBlue
	case y > 0:
		return SideOrange
	default:
		return SideMid
	}
}

// DefendedGoalY is the Y of the goal line the team defends.
func DefendedGoalY(t model.Team) float64 {
	// Blue defends -Y, orange defends +Y.
	return -t.AttackSign() * BackWallY
}

// NearestPad snaps a pickup location to the closest canonical pad whose
// XY distance is within the per-size tolerance. Returns false when no pad
// qualifies.
func NearestPad(loc model.Vec3, bigTolUU, smallTolUU float64) (BoostPad, bool) {
	best := BoostPad{}
	bestDist := math.Inf(1)
	found := false
	for _, p := range pads {
		tol := smallTolUU
		if p.Big {
			tol = bigTolUU
		}
		d := loc.Dist2D(p.Position)
		if d <= tol && d < bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}
