package detect

import (
	"github.com/rlstats/go-rl-metrics/internal/field"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// DetectTouches emits one TouchEvent per frame per player within the touch
// proximity radius of the ball. Outcome follows the ball's resulting speed:
// SHOT above the shot threshold, DRIBBLE below the dribble ceiling,
// otherwise a generic touch. Consecutive same-player touches are
// independent records; contest state is owned by the challenge detector.
func (r *Registry) DetectTouches(m *model.Match) []model.TouchEvent {
	var touches []model.TouchEvent
	for i := range m.Frames {
		f := &m.Frames[i]
		ballSpeedKPH := f.Ball.Velocity.Norm() * field.KPHPerUUPerS
		for j := range f.Players {
			p := &f.Players[j]
			if p.IsDemolished {
				continue
			}
			if p.Position.Dist(f.Ball.Position) > r.thr.TouchRadiusUU {
				continue
			}
			outcome := model.TouchGeneric
			switch {
			case ballSpeedKPH >= r.thr.ShotSpeedKPH:
				outcome = model.TouchShot
			case ballSpeedKPH <= r.thr.DribbleSpeedKPH:
				outcome = model.TouchDribble
			}
			touches = append(touches, model.TouchEvent{
				TimeS:        f.TimeS,
				PlayerID:     m.Resolve(p.PlayerID),
				Team:         m.TeamOf(p.PlayerID),
				Location:     f.Ball.Position,
				BallSpeedKPH: ballSpeedKPH,
				Outcome:      outcome,
			})
		}
	}
	return touches
}
