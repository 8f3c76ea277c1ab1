package analysis

import (
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// Boost covers the boost economy: collection rates per minute, time spent
// at the 0/100 extremes, overfill shortfall on near-full pickups, and
// boost wasted while already supersonic.
func (a *Analyzer) Boost(m *model.Match, ev *model.EventSet, s Scope) model.BoostStats {
	var out model.BoostStats

	for _, p := range ev.Pickups {
		if !s.includesPlayer(m, p.PlayerID) {
			continue
		}
		out.AmountCollected += p.BoostGain
		if p.Stolen {
			out.AmountStolen += p.BoostGain
		}
		capacity := 12.0
		if p.PadType == model.PadBig {
			capacity = 100
			out.BigPads++
		} else {
			out.SmallPads++
		}
		// Overfill: the pad's capacity exceeded the recorded headroom, so
		// part of the theoretical refill was lost. Keyed off the event's
		// own boost_before, not a frame re-sample.
		if p.BoostBefore+capacity > 100 {
			if short := capacity - p.BoostGain; short > 0 {
				out.Overfill += short
			}
		}
	}

	duration := m.DurationS()
	if duration > 0 {
		minutes := duration / 60
		out.BPM = out.AmountCollected / minutes
		count := out.BigPads + out.SmallPads
		out.BCPM = float64(count) / minutes
	}

	// Frame integration: boost extremes, average level, supersonic waste.
	type prevState struct {
		boost      float64
		supersonic bool
		valid      bool
	}
	prev := make(map[string]prevState)
	weighted := 0.0
	weightedT := 0.0

	for i := 0; i+1 < len(m.Frames); i++ {
		f := &m.Frames[i]
		dt := m.Frames[i+1].TimeS - f.TimeS
		if dt <= 0 {
			continue
		}
		for j := range f.Players {
			p := &f.Players[j]
			id := m.Resolve(p.PlayerID)
			if !s.includesPlayer(m, id) {
				continue
			}
			if p.Boost < 1 {
				out.TimeZeroBoostS += dt
			}
			if p.Boost > 99 {
				out.TimeHundredBoostS += dt
			}
			weighted += p.Boost * dt
			weightedT += dt

			if st := prev[id]; st.valid && p.Boost < st.boost && st.supersonic && p.IsSupersonic {
				out.Waste += st.boost - p.Boost
			}
			prev[id] = prevState{boost: p.Boost, supersonic: p.IsSupersonic, valid: true}
		}
	}
	if weightedT > 0 {
		out.AvgBoost = weighted / weightedT
	}
	return out
}
