package detect

import (
	"github.com/rlstats/go-rl-metrics/internal/field"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// DetectGoals emits one GoalEvent each time the ball crosses a back-wall
// plane. Blue attacks +Y, so a crossing beyond +Y scores for BLUE and
// beyond -Y for ORANGE. The scorer is the most recent toucher strictly
// before the crossing within the look-back window; with no such touch the
// scorer stays unset — never guessed.
func (r *Registry) DetectGoals(m *model.Match, touches []model.TouchEvent) []model.GoalEvent {
	var goals []model.GoalEvent
	goalY := field.BackWallY + r.thr.GoalEpsilonUU

	inGoal := false
	for i := range m.Frames {
		f := &m.Frames[i]
		y := f.Ball.Position.Y
		beyond := y > goalY || y < -goalY
		if !beyond {
			inGoal = false
			continue
		}
		if inGoal {
			continue // still inside the goal from a previous crossing
		}
		inGoal = true

		team := model.TeamOrange
		if y > 0 {
			team = model.TeamBlue
		}
		g := model.GoalEvent{TimeS: f.TimeS, Team: team}

		// Latest touch strictly before the crossing frame, bounded look-back.
		for j := len(touches) - 1; j >= 0; j-- {
			t := touches[j]
			if t.TimeS >= f.TimeS {
				continue
			}
			if f.TimeS-t.TimeS > r.thr.GoalScorerLookbackS {
				break
			}
			g.ScorerID = t.PlayerID
			g.ShotSpeedKPH = t.BallSpeedKPH
			break
		}
		goals = append(goals, g)
	}
	return goals
}
