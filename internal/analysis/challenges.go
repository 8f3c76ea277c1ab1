package analysis

import (
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// Challenges aggregates contest outcomes for the scope: win/loss/neutral
// counts, the first-to-ball percentage, and average depth and risk index.
func (a *Analyzer) Challenges(m *model.Match, ev *model.EventSet, s Scope) model.ChallengeStats {
	var out model.ChallengeStats
	depthSum, riskSum := 0.0, 0.0
	firstToBall := 0

	for _, c := range ev.Challenges {
		if !a.inChallengeScope(m, c, s) {
			continue
		}
		out.Contests++
		depthSum += c.DepthM
		riskSum += c.RiskIndex

		switch {
		case c.WinnerTeam == model.TeamUnknown:
			out.Neutral++
		case s.Kind == ScopePlayer && c.WinnerID == s.PlayerID,
			s.Kind != ScopePlayer && c.WinnerTeam == s.Team:
			out.Wins++
		case s.Kind == ScopeMatch:
			out.Wins++ // match scope: every decided contest has a winner
		default:
			out.Losses++
		}

		switch s.Kind {
		case ScopePlayer:
			if c.FirstTouchID == s.PlayerID {
				firstToBall++
			}
		case ScopeTeam:
			if m.TeamOf(c.FirstTouchID) == s.Team {
				firstToBall++
			}
		default:
			firstToBall++
		}
	}

	if out.Contests > 0 {
		out.FirstToBallPct = float64(firstToBall) / float64(out.Contests) * 100
		out.AvgDepthM = depthSum / float64(out.Contests)
		out.AvgRiskIndex = riskSum / float64(out.Contests)
	}
	return out
}

// inChallengeScope reports whether the contest involves the scope: every
// contest involves both teams, so team and match scopes see all of them;
// a player scope sees contests it won, lost, or reached first.
func (a *Analyzer) inChallengeScope(m *model.Match, c model.ChallengeEvent, s Scope) bool {
	if s.Kind != ScopePlayer {
		return true
	}
	return c.WinnerID == s.PlayerID || c.LoserID == s.PlayerID || c.FirstTouchID == s.PlayerID
}
