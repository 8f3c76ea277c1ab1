package detect

import (
	"math"

	"github.com/rlstats/go-rl-metrics/internal/field"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// DetectChallenges groups touch runs into contests: successive touches (any
// team) within the contest window of the previous touch belong to the same
// run; consecutive touches by the same player extend possession without
// ending it. Runs involving both teams become ChallengeEvents. The winner
// is the team of the decisive (final) touch; an ending where the other team
// touched within the neutral epsilon of the decisive touch is ambiguous and
// recorded as neutral.
func (r *Registry) DetectChallenges(m *model.Match, touches []model.TouchEvent) []model.ChallengeEvent {
	var challenges []model.ChallengeEvent

	var run []model.TouchEvent
	flush := func() {
		if ev, ok := r.contestFromRun(run); ok {
			challenges = append(challenges, ev)
		}
		run = run[:0]
	}

	for _, t := range touches {
		if t.Team == model.TeamUnknown {
			continue
		}
		if len(run) > 0 && t.TimeS-run[len(run)-1].TimeS > r.thr.ChallengeWindowS {
			flush()
		}
		run = append(run, t)
	}
	flush()
	return challenges
}

func (r *Registry) contestFromRun(run []model.TouchEvent) (model.ChallengeEvent, bool) {
	if len(run) < 2 {
		return model.ChallengeEvent{}, false
	}
	bothTeams := false
	first := run[0]
	for _, t := range run[1:] {
		if t.Team != first.Team {
			bothTeams = true
			break
		}
	}
	if !bothTeams {
		return model.ChallengeEvent{}, false
	}

	last := run[len(run)-1]
	winner := last.Team
	winnerID := last.PlayerID

	// Loser: the most recent opposing toucher before the decisive touch.
	loserID := ""
	ambiguous := false
	for i := len(run) - 2; i >= 0; i-- {
		if run[i].Team != last.Team {
			loserID = run[i].PlayerID
			if last.TimeS-run[i].TimeS <= r.thr.ChallengeNeutralS {
				ambiguous = true
			}
			break
		}
	}

	ev := model.ChallengeEvent{
		StartTimeS:   first.TimeS,
		EndTimeS:     last.TimeS,
		FirstTouchID: first.PlayerID,
		DepthM:       math.Abs(last.Location.Y-field.DefendedGoalY(winner)) / field.UUPerM,
		RiskIndex:    riskIndex(last),
	}
	if ambiguous {
		ev.WinnerTeam = model.TeamUnknown
		return ev, true
	}
	ev.WinnerTeam = winner
	ev.WinnerID = winnerID
	ev.LoserID = loserID
	return ev, true
}

// riskIndex derives a [0,1] index from speed and positioning at the
// decisive touch: faster balls closer to the decisive side's own goal are
// riskier.
func riskIndex(t model.TouchEvent) float64 {
	speedFactor := t.BallSpeedKPH / (2300 * field.KPHPerUUPerS)
	depth := math.Abs(t.Location.Y-field.DefendedGoalY(t.Team)) / field.FieldLengthUU
	idx := 0.5*speedFactor + 0.5*(1-depth)
	if idx < 0 {
		return 0
	}
	if idx > 1 {
		return 1
	}
	return idx
}
