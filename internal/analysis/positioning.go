package analysis

import (
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// pass is one detected completed pass between teammates.
type pass struct {
	from, to string
	team     model.Team
	startS   float64
	endS     float64
}

// Positioning attributes possession time by touch recency, splits time
// between offensive and defensive halves, and detects completed passes and
// give-and-gos from the touch stream.
func (a *Analyzer) Positioning(m *model.Match, ev *model.EventSet, s Scope) model.PositioningStats {
	var out model.PositioningStats

	// Possession: each inter-frame interval accrues to the most recent
	// toucher before it.
	ti := 0
	holder := ""
	holderTeam := model.TeamUnknown
	for i := 0; i+1 < len(m.Frames); i++ {
		f := &m.Frames[i]
		dt := m.Frames[i+1].TimeS - f.TimeS
		if dt <= 0 {
			continue
		}
		for ti < len(ev.Touches) && ev.Touches[ti].TimeS <= f.TimeS {
			holder = ev.Touches[ti].PlayerID
			holderTeam = ev.Touches[ti].Team
			ti++
		}
		if holder == "" {
			continue
		}
		switch s.Kind {
		case ScopePlayer:
			if holder == s.PlayerID {
				out.PossessionTimeS += dt
			}
		case ScopeTeam:
			if holderTeam == s.Team {
				out.PossessionTimeS += dt
			}
		default:
			out.PossessionTimeS += dt
		}
	}

	// Halves: offensive half is the attacking direction of each player.
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
			team := m.TeamOf(id)
			if p.Position.Y*team.AttackSign() > 0 {
				out.TimeOffensiveHalfS += dt
			} else {
				out.TimeDefensiveHalfS += dt
			}
		}
	}

	passes := a.detectPasses(ev.Touches)
	for _, p := range passes {
		if s.includesPlayer(m, p.from) {
			out.Passes++
		}
		if s.includesPlayer(m, p.to) {
			out.PassesReceived++
		}
	}

	// Give-and-go: exactly two chained passes between the same two
	// teammates, credited to the initiator.
	for i := 1; i < len(passes); i++ {
		p1, p2 := passes[i-1], passes[i]
		if p1.team == p2.team && p2.from == p1.to && p2.to == p1.from && p2.startS == p1.endS {
			if s.includesPlayer(m, p1.from) {
				out.GiveAndGos++
			}
		}
	}
	return out
}

// detectPasses scans the touch stream for pairs of consecutive distinct
// same-team touchers within the time-and-distance window where the ball
// progressed toward the attacking goal (diagonal progress counts).
func (a *Analyzer) detectPasses(touches []model.TouchEvent) []pass {
	var passes []pass

	// Collapse consecutive same-player touches to their last sample, so a
	// dribble followed by a pass is one possession, one release point.
	var owns []model.TouchEvent
	for _, t := range touches {
		if t.Team == model.TeamUnknown {
			continue
		}
		if n := len(owns); n > 0 && owns[n-1].PlayerID == t.PlayerID {
			owns[n-1] = t
			continue
		}
		owns = append(owns, t)
	}

	for i := 1; i < len(owns); i++ {
		from, to := owns[i-1], owns[i]
		if from.Team != to.Team {
			continue
		}
		if to.TimeS-from.TimeS > a.thr.PassWindowS {
			continue
		}
		if from.Location.Dist(to.Location) > a.thr.PassMaxDistUU {
			continue
		}
		progress := (to.Location.Y - from.Location.Y) * from.Team.AttackSign()
		if progress < -a.thr.ForwardProgressTolUU {
			continue
		}
		passes = append(passes, pass{
			from:   from.PlayerID,
			to:     to.PlayerID,
			team:   from.Team,
			startS: from.TimeS,
			endS:   to.TimeS,
		})
	}
	return passes
}
