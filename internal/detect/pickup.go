package detect

import (
	"github.com/rlstats/go-rl-metrics/internal/field"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// DetectPickups turns positive per-player boost deltas into pickup events.
// The location snaps to the nearest canonical pad within the per-size
// tolerance; consecutive deltas at the same pad inside the merge window
// coalesce into one event whose gain spans first to last contribution.
// A pickup on the opposing half (by Y sign of the pickup location,
// independent of the pad's canonical side) is flagged stolen.
func (r *Registry) DetectPickups(m *model.Match) []model.BoostPickupEvent {
	var pickups []model.BoostPickupEvent

	prevBoost := make(map[string]float64)
	lastEvent := make(map[string]int) // player id -> index into pickups

	for i := range m.Frames {
		f := &m.Frames[i]
		for j := range f.Players {
			p := &f.Players[j]
			id := m.Resolve(p.PlayerID)
			prev, had := prevBoost[id]
			prevBoost[id] = p.Boost
			if !had || p.Boost <= prev {
				continue
			}

			padID := -1
			padType := model.PadSmall
			if p.Boost-prev > 12 {
				padType = model.PadBig
			}
			if pad, ok := field.NearestPad(p.Position, r.thr.PadSnapBigUU, r.thr.PadSnapSmallUU); ok {
				padID = pad.ID
				padType = pad.Type()
			}

			// Merge with this player's previous event when it hit the same
			// pad inside the merge window.
			if idx, ok := lastEvent[id]; ok {
				ev := &pickups[idx]
				if ev.PadID == padID && padID >= 0 && f.TimeS-ev.TimeS <= r.thr.PickupMergeS {
					ev.BoostAfter = p.Boost
					ev.BoostGain = ev.BoostAfter - ev.BoostBefore
					continue
				}
			}

			team := m.TeamOf(id)
			ev := model.BoostPickupEvent{
				TimeS:       f.TimeS,
				PlayerID:    id,
				PadID:       padID,
				PadType:     padType,
				Stolen:      stolen(team, p.Position.Y),
				BoostBefore: prev,
				BoostAfter:  p.Boost,
				BoostGain:   p.Boost - prev,
				Location:    p.Position,
			}
			pickups = append(pickups, ev)
			lastEvent[id] = len(pickups) - 1
		}
	}
	return pickups
}

// stolen reports whether the pickup's field half is the opposing team's
// half. The half line itself is never stolen.
func stolen(t model.Team, y float64) bool {
	switch t {
	case model.TeamBlue:
		return y > 0
	case model.TeamOrange:
		return y < 0
	default:
		return false
	}
}
