package analysis

import (
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// Kickoffs aggregates kickoff involvement for the scope: first-possession
// and neutral counts, goals scored for/against inside the post-kickoff
// window, average time to first touch, and the full approach distribution.
func (a *Analyzer) Kickoffs(m *model.Match, ev *model.EventSet, s Scope) model.KickoffStats {
	out := model.NewKickoffStats()
	ttftSum := 0.0
	ttftN := 0

	for ki, k := range ev.Kickoffs {
		scopePlayers := make([]model.KickoffPlayer, 0, len(k.Players))
		for _, kp := range k.Players {
			if s.includesPlayer(m, kp.PlayerID) {
				scopePlayers = append(scopePlayers, kp)
			}
		}
		if len(scopePlayers) == 0 && s.Kind != ScopeMatch {
			continue
		}
		out.Count++

		scopeTeam := s.Team
		if s.Kind == ScopePlayer && len(scopePlayers) > 0 {
			scopeTeam = scopePlayers[0].Team
		}
		switch k.Outcome {
		case model.OutcomeNeutral:
			out.Neutral++
		case model.FirstPossessionOutcome(scopeTeam):
			out.FirstPossession++
		default:
			if s.Kind == ScopeMatch {
				out.FirstPossession++
			}
		}

		// First goal after this kickoff, before the next one, inside the
		// attribution window.
		nextStart := m.DurationS() + 1
		if ki+1 < len(ev.Kickoffs) {
			nextStart = ev.Kickoffs[ki+1].StartTimeS
		}
		for _, g := range ev.Goals {
			if g.TimeS < k.EndTimeS || g.TimeS >= nextStart {
				continue
			}
			if g.TimeS-k.EndTimeS > a.thr.KickoffGoalWindowS {
				break
			}
			if s.Kind == ScopeMatch || g.Team == scopeTeam {
				out.GoalsFor++
			} else {
				out.GoalsAgainst++
			}
			break
		}

		for _, kp := range scopePlayers {
			out.Approaches[string(kp.Approach)]++
			if kp.TimeToFirstTouchS >= 0 {
				ttftSum += kp.TimeToFirstTouchS
				ttftN++
			}
		}
	}

	if ttftN > 0 {
		out.AvgTimeToFirstTouchS = ttftSum / float64(ttftN)
	}
	return out
}
