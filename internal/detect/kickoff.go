package detect

import (
	"math"
	"sort"

	"github.com/rlstats/go-rl-metrics/internal/model"
)

// kickoffWindow is the in-flight state for one kickoff being tracked.
type kickoffWindow struct {
	startIdx int
	centered int // consecutive centered frames observed
	open     bool
}

// DetectKickoffs finds kickoff windows: the ball at rest within the center
// radius for at least the minimum consecutive frames, closing once it
// leaves the radius or exceeds the speed floor. Each record carries per
// player role, boost spent, time to first touch and an approach
// classification; the outcome follows whichever side's touch establishes
// first possession after the window opens.
func (r *Registry) DetectKickoffs(m *model.Match, touches []model.TouchEvent) []model.KickoffEvent {
	var kickoffs []model.KickoffEvent
	var w kickoffWindow

	for i := range m.Frames {
		f := &m.Frames[i]
		centered := f.Ball.Position.Norm2D() <= r.thr.KickoffCenterRadiusUU &&
			f.Ball.Velocity.Norm() <= r.thr.KickoffBallSpeedFloor

		switch {
		case centered && !w.open:
			if w.centered == 0 {
				w.startIdx = i
			}
			w.centered++
			if w.centered >= r.thr.KickoffMinFrames {
				w.open = true
			}
		case !centered && w.open:
			kickoffs = append(kickoffs, r.closeKickoff(m, touches, w.startIdx, i))
			w = kickoffWindow{}
		case !centered:
			w = kickoffWindow{}
		}
	}
	if w.open {
		kickoffs = append(kickoffs, r.closeKickoff(m, touches, w.startIdx, len(m.Frames)-1))
	}
	return kickoffs
}

func (r *Registry) closeKickoff(m *model.Match, touches []model.TouchEvent, startIdx, endIdx int) model.KickoffEvent {
	start := m.Frames[startIdx].TimeS
	end := m.Frames[endIdx].TimeS

	regulation := m.Header.MatchLengthS
	if regulation <= 0 {
		regulation = r.thr.RegulationLengthS
	}
	phase := model.KickoffInitial
	if start > regulation {
		phase = model.KickoffOT
	}

	ev := model.KickoffEvent{
		Phase:      phase,
		StartTimeS: start,
		EndTimeS:   end,
		Outcome:    r.kickoffOutcome(touches, start),
	}

	// Per-player accounting over the approach span: window start through
	// the player's first touch (or the window end when they never touch).
	startFrame := &m.Frames[startIdx]
	goers := map[model.Team]string{}
	goDist := map[model.Team]float64{}
	for i := range startFrame.Players {
		p := &startFrame.Players[i]
		id := m.Resolve(p.PlayerID)
		team := m.TeamOf(id)
		d := p.Position.Dist2D(startFrame.Ball.Position)
		if cur, ok := goDist[team]; !ok || d < cur {
			goDist[team] = d
			goers[team] = id
		}
	}

	for i := range startFrame.Players {
		p := &startFrame.Players[i]
		id := m.Resolve(p.PlayerID)
		team := m.TeamOf(id)

		role := "BACK"
		if goers[team] == id {
			role = "GO"
		}

		firstTouch := -1.0
		for _, t := range touches {
			if t.TimeS >= start && t.PlayerID == id {
				firstTouch = t.TimeS - start
				break
			}
		}

		spanEnd := end
		if firstTouch >= 0 && start+firstTouch > spanEnd {
			spanEnd = start + firstTouch
		}

		kp := model.KickoffPlayer{
			PlayerID:          id,
			Team:              team,
			Role:              role,
			BoostUsed:         r.boostSpent(m, id, startIdx, spanEnd),
			TimeToFirstTouchS: firstTouch,
		}
		kp.Approach = r.classifyApproach(m, id, role == "GO", startIdx, spanEnd)
		ev.Players = append(ev.Players, kp)
	}
	sort.Slice(ev.Players, func(i, j int) bool { return ev.Players[i].PlayerID < ev.Players[j].PlayerID })
	return ev
}

// kickoffOutcome resolves first possession: the first touch after the
// window opens wins it unless the other side also touches within the
// possession window, which is neutral.
func (r *Registry) kickoffOutcome(touches []model.TouchEvent, start float64) model.KickoffOutcome {
	var first *model.TouchEvent
	for i := range touches {
		if touches[i].TimeS >= start {
			first = &touches[i]
			break
		}
	}
	if first == nil || first.Team == model.TeamUnknown {
		return model.OutcomeNeutral
	}
	for i := range touches {
		t := &touches[i]
		if t.TimeS <= first.TimeS {
			continue
		}
		if t.TimeS-first.TimeS > r.thr.KickoffPossessionS {
			break
		}
		if t.Team != first.Team {
			return model.OutcomeNeutral
		}
	}
	return model.FirstPossessionOutcome(first.Team)
}

// boostSpent sums boost decreases for the player from the window start
// until spanEnd.
func (r *Registry) boostSpent(m *model.Match, id string, startIdx int, spanEnd float64) float64 {
	spent := 0.0
	prev := math.NaN()
	for i := startIdx; i < len(m.Frames); i++ {
		f := &m.Frames[i]
		if f.TimeS > spanEnd {
			break
		}
		for j := range f.Players {
			p := &f.Players[j]
			if m.Resolve(p.PlayerID) != id {
				continue
			}
			if !math.IsNaN(prev) && p.Boost < prev {
				spent += prev - p.Boost
			}
			prev = p.Boost
		}
	}
	return spent
}

// classifyApproach maps the player's motion during the approach span onto
// the fixed taxonomy. Goers are classified by how they reach the ball;
// non-goers by how far and in which direction they commit.
func (r *Registry) classifyApproach(m *model.Match, id string, goer bool, startIdx int, spanEnd float64) model.KickoffApproach {
	var (
		startPos, endPos model.Vec3
		havePos          bool
		maxSpeed         float64
		maxLateral       float64
		leftGround       bool
		relanded         bool
		wasAirborne      bool
		timeToSupersonic = -1.0
		netTowardOwnGoal float64
		startTime        = m.Frames[startIdx].TimeS
		samples          int
	)

	team := m.TeamOf(id)
	for i := startIdx; i < len(m.Frames); i++ {
		f := &m.Frames[i]
		if f.TimeS > spanEnd {
			break
		}
		for j := range f.Players {
			p := &f.Players[j]
			if m.Resolve(p.PlayerID) != id {
				continue
			}
			if !havePos {
				startPos = p.Position
				havePos = true
			}
			endPos = p.Position
			samples++

			speed := p.Velocity.Norm2D()
			if speed > maxSpeed {
				maxSpeed = speed
			}
			if speed >= r.thr.SupersonicEnterUU && timeToSupersonic < 0 {
				timeToSupersonic = f.TimeS - startTime
			}
			if lat := math.Abs(p.Position.X - startPos.X); lat > maxLateral {
				maxLateral = lat
			}
			if !p.IsOnGround {
				leftGround = true
				wasAirborne = true
			} else if wasAirborne {
				relanded = true
				wasAirborne = false
			}
		}
	}
	if !havePos || samples < 2 {
		return model.ApproachUnknown
	}

	moved := endPos.Dist2D(startPos)
	netTowardOwnGoal = (endPos.Y - startPos.Y) * -team.AttackSign()
	boostUsed := r.boostSpent(m, id, startIdx, spanEnd)

	if goer {
		switch {
		case timeToSupersonic >= 0 && timeToSupersonic <= 1.1 && leftGround && maxLateral > 300:
			return model.ApproachSpeedflip
		case leftGround && relanded && maxSpeed >= r.thr.BoostSpeedFloorUU:
			return model.ApproachStandardWavedash
		case leftGround && maxLateral <= 300:
			return model.ApproachStandardFrontflip
		case maxLateral > 300:
			return model.ApproachStandardDiagonal
		case !leftGround && boostUsed > 30:
			return model.ApproachStandardBoost
		default:
			return model.ApproachStandard
		}
	}

	switch {
	case moved < 100:
		return model.ApproachFakeStationary
	case netTowardOwnGoal > 200 && leftGround:
		return model.ApproachFakeHalfflip
	case moved > 800 && netTowardOwnGoal < 0:
		return model.ApproachFakeAggressive
	case moved <= 800:
		return model.ApproachDelay
	default:
		return model.ApproachStandard
	}
}
