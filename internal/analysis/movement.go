package analysis

import (
	"math"

	"github.com/rlstats/go-rl-metrics/internal/field"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// moveState is the per-player accumulator state carried across frames.
type moveState struct {
	valid        bool
	pos          model.Vec3
	yaw          float64
	timeS        float64
	supersonic   bool
	slideFrames  int
	slideStart   float64
	airStart     float64
	airborne     bool
}

// Movement buckets speed (with supersonic hysteresis) and height, and
// integrates distance, powerslide segments and sustained aerials.
func (a *Analyzer) Movement(m *model.Match, s Scope) model.MovementStats {
	var out model.MovementStats
	state := make(map[string]*moveState)
	speedWeighted := 0.0
	timeTotal := 0.0

	endSlide := func(st *moveState, now float64) {
		if st.slideFrames >= 2 {
			out.PowerslideCount++
			out.PowerslideTimeS += now - st.slideStart
		}
		st.slideFrames = 0
	}
	endAerial := func(st *moveState, now float64) {
		if st.airborne && now-st.airStart >= a.thr.AerialMinDurationS {
			out.AerialCount++
			out.AerialTimeS += now - st.airStart
		}
		st.airborne = false
	}

	for i := 0; i+1 < len(m.Frames); i++ {
		f := &m.Frames[i]
		dt := m.Frames[i+1].TimeS - f.TimeS
		if dt <= 0 {
			continue
		}
		for j := range f.Players {
			p := &f.Players[j]
			id := m.Resolve(p.PlayerID)
			if !s.includesPlayer(m, id) || p.IsDemolished {
				continue
			}
			st := state[id]
			if st == nil {
				st = &moveState{}
				state[id] = st
			}

			hspeed := p.Velocity.Norm2D()

			// Supersonic hysteresis: enter at the high threshold, and once
			// supersonic a brief dip above the exit floor keeps the state.
			if st.supersonic {
				st.supersonic = hspeed >= a.thr.SupersonicExitUU
			} else {
				st.supersonic = hspeed >= a.thr.SupersonicEnterUU
			}
			switch {
			case st.supersonic:
				out.TimeSupersonicS += dt
			case hspeed >= a.thr.BoostSpeedFloorUU:
				out.TimeBoostSpeedS += dt
			default:
				out.TimeSlowS += dt
			}

			z := p.Position.Z
			switch {
			case z <= a.thr.GroundZUU:
				out.TimeGroundS += dt
			case z <= a.thr.HighAirZUU:
				out.TimeLowAirS += dt
			default:
				out.TimeHighAirS += dt
			}

			if st.valid {
				out.DistanceKM += p.Position.Dist(st.pos) / field.UUPerKM

				// Powerslide: sustained high yaw rate while grounded.
				yawRate := math.Abs(wrapAngle(p.Rotation.Yaw-st.yaw)) / (f.TimeS - st.timeS)
				if p.IsOnGround && yawRate >= a.thr.PowerslideYawRateRad {
					if st.slideFrames == 0 {
						st.slideStart = st.timeS
					}
					st.slideFrames++
				} else {
					endSlide(st, f.TimeS)
				}
			}

			// Aerial: sustained time above the high-air threshold.
			if z > a.thr.HighAirZUU {
				if !st.airborne {
					st.airborne = true
					st.airStart = f.TimeS
				}
			} else {
				endAerial(st, f.TimeS)
			}

			speedWeighted += p.Velocity.Norm() * dt
			timeTotal += dt

			st.valid = true
			st.pos = p.Position
			st.yaw = p.Rotation.Yaw
			st.timeS = f.TimeS
		}
	}

	// Close any open segments at the end of the sequence.
	if n := len(m.Frames); n > 0 {
		end := m.Frames[n-1].TimeS
		for _, st := range state {
			endSlide(st, end)
			endAerial(st, end)
		}
	}

	if timeTotal > 0 {
		out.AvgSpeedKPH = speedWeighted / timeTotal * field.KPHPerUUPerS
	}
	return out
}

// wrapAngle normalizes an angle delta to (-pi, pi].
func wrapAngle(d float64) float64 {
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
