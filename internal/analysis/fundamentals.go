package analysis

import (
	"github.com/rlstats/go-rl-metrics/internal/field"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// Fundamentals counts goals, assists, shots, saves and demos for the scope
// and derives the weighted score and shooting percentage.
func (a *Analyzer) Fundamentals(m *model.Match, ev *model.EventSet, s Scope) model.FundamentalsStats {
	var out model.FundamentalsStats

	for _, g := range ev.Goals {
		if g.ScorerID != "" && s.includesPlayer(m, g.ScorerID) {
			out.Goals++
		} else if g.ScorerID == "" && s.Kind != ScopePlayer && (s.Kind == ScopeMatch || g.Team == s.Team) {
			// Unattributed goals still count for team and match scopes.
			out.Goals++
		}
		if assister := a.assister(m, ev, g); assister != "" && s.includesPlayer(m, assister) {
			out.Assists++
		}
	}

	for _, t := range ev.Touches {
		if !s.includesPlayer(m, t.PlayerID) {
			continue
		}
		if t.Outcome == model.TouchShot && a.towardOpponentGoal(m, t) {
			out.Shots++
		}
		if a.isSave(m, t) {
			out.Saves++
		}
	}

	for _, d := range ev.Demos {
		if d.AttackerID != "" && s.includesPlayer(m, d.AttackerID) {
			out.Demos++
		}
	}

	w := a.thr.Score
	out.Score = w.Goal*float64(out.Goals) + w.Assist*float64(out.Assists) +
		w.Save*float64(out.Saves) + w.Shot*float64(out.Shots) + w.Demo*float64(out.Demos)
	if out.Shots > 0 {
		out.ShootingPct = float64(out.Goals) / float64(out.Shots) * 100
	}
	return out
}

// assister finds the previous same-team touch by another player within the
// assist window before the scoring touch.
func (a *Analyzer) assister(m *model.Match, ev *model.EventSet, g model.GoalEvent) string {
	if g.ScorerID == "" {
		return ""
	}
	// Locate the scorer's last touch before the goal.
	scoringTouch := -1.0
	for i := len(ev.Touches) - 1; i >= 0; i-- {
		t := ev.Touches[i]
		if t.TimeS < g.TimeS && t.PlayerID == g.ScorerID {
			scoringTouch = t.TimeS
			break
		}
	}
	if scoringTouch < 0 {
		return ""
	}
	for i := len(ev.Touches) - 1; i >= 0; i-- {
		t := ev.Touches[i]
		if t.TimeS >= scoringTouch || t.PlayerID == g.ScorerID {
			continue
		}
		if scoringTouch-t.TimeS > a.thr.AssistWindowS {
			break
		}
		if t.Team == g.Team {
			return t.PlayerID
		}
	}
	return ""
}

// towardOpponentGoal reports whether the ball left the touch moving toward
// the toucher's attacking goal.
func (a *Analyzer) towardOpponentGoal(m *model.Match, t model.TouchEvent) bool {
	f, ok := frameAt(m, t.TimeS)
	if !ok {
		return false
	}
	return f.Ball.Velocity.Y*t.Team.AttackSign() > 0
}

// isSave: a touch in the defensive third deflecting a ball that was moving
// at shot speed toward the toucher's own goal in the preceding frame.
func (a *Analyzer) isSave(m *model.Match, t model.TouchEvent) bool {
	if t.Team == model.TeamUnknown {
		return false
	}
	idx := frameIndexAt(m, t.TimeS)
	if idx <= 0 {
		return false
	}
	prev := &m.Frames[idx-1]
	towardOwn := prev.Ball.Velocity.Y*t.Team.AttackSign() < 0
	speedKPH := prev.Ball.Velocity.Norm() * field.KPHPerUUPerS
	inDefensiveThird := mabs(t.Location.Y-field.DefendedGoalY(t.Team)) < field.FieldLengthUU/3
	return towardOwn && speedKPH >= a.thr.ShotSpeedKPH && inDefensiveThird
}

func mabs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// frameIndexAt returns the index of the first frame at or after t, or the
// last frame when t is beyond the sequence. Returns -1 for no frames.
func frameIndexAt(m *model.Match, t float64) int {
	if len(m.Frames) == 0 {
		return -1
	}
	lo, hi := 0, len(m.Frames)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if m.Frames[mid].TimeS < t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func frameAt(m *model.Match, t float64) (*model.Frame, bool) {
	idx := frameIndexAt(m, t)
	if idx < 0 {
		return nil, false
	}
	return &m.Frames[idx], true
}
