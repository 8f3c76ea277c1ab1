// Package analysis turns the frame sequence and detected events into
// fixed-schema per-player and per-team statistics. Every analyzer returns
// its complete key set for any input, including empty input; a failing
// scope degrades to the zero/neutral result instead of aborting the run.
package analysis

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rlstats/go-rl-metrics/internal/config"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// ScopeKind selects what a Scope addresses.
type ScopeKind int

const (
	ScopeMatch ScopeKind = iota
	ScopePlayer
	ScopeTeam
)

// Scope addresses exactly one player, one team, or the whole match.
type Scope struct {
	Kind     ScopeKind
	PlayerID string
	Team     model.Team
}

// PlayerScope addresses a single player.
func PlayerScope(id string, team model.Team) Scope {
	return Scope{Kind: ScopePlayer, PlayerID: id, Team: team}
}

// TeamScope addresses a single team.
func TeamScope(team model.Team) Scope {
	return Scope{Kind: ScopeTeam, Team: team}
}

// MatchScope addresses the whole match.
func MatchScope() Scope { return Scope{Kind: ScopeMatch} }

// includesPlayer reports whether the scope covers the given canonical id.
func (s Scope) includesPlayer(m *model.Match, id string) bool {
	switch s.Kind {
	case ScopePlayer:
		return id == s.PlayerID
	case ScopeTeam:
		return m.TeamOf(id) == s.Team
	default:
		return true
	}
}

// Analyzer bundles the tuning and logger for one report build.
type Analyzer struct {
	log zerolog.Logger
	thr config.Thresholds
}

// New constructs an Analyzer.
func New(log zerolog.Logger, thr config.Thresholds) *Analyzer {
	return &Analyzer{log: log, thr: thr}
}

// BuildReport assembles the full analysis structure: one entry per
// canonical player (sorted by id) and one per team, each carrying all
// seven analyzer results. ctx is checked between scopes; on cancellation
// the partial report is returned with ctx.Err().
func (a *Analyzer) BuildReport(ctx context.Context, m *model.Match, ev *model.EventSet, timeline []model.TimelineEvent) (*model.AnalysisReport, error) {
	report := &model.AnalysisReport{
		ReplayHash: m.ReplayHash,
		MapName:    m.Header.MapName,
		Events:     *ev,
		Timeline:   timeline,
	}

	for _, id := range m.PlayerIDs() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		info := m.Players[id]
		scope := PlayerScope(id, info.Team)
		report.Players = append(report.Players, model.PlayerAnalysis{
			PlayerID:     id,
			Name:         info.Name,
			Team:         info.Team,
			Fundamentals: a.safeFundamentals(m, ev, scope),
			Boost:        a.safeBoost(m, ev, scope),
			Movement:     a.safeMovement(m, scope),
			Positioning:  a.safePositioning(m, ev, scope),
			Challenges:   a.safeChallenges(m, ev, scope),
			Kickoffs:     a.safeKickoffs(m, ev, scope),
			Heatmaps:     a.safeHeatmaps(m, ev, scope),
		})
	}

	for _, team := range []model.Team{model.TeamBlue, model.TeamOrange} {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		scope := TeamScope(team)
		report.Teams = append(report.Teams, model.TeamAnalysis{
			Team:         team,
			Fundamentals: a.safeFundamentals(m, ev, scope),
			Boost:        a.safeBoost(m, ev, scope),
			Movement:     a.safeMovement(m, scope),
			Positioning:  a.safePositioning(m, ev, scope),
			Challenges:   a.safeChallenges(m, ev, scope),
			Kickoffs:     a.safeKickoffs(m, ev, scope),
			Heatmaps:     a.safeHeatmaps(m, ev, scope),
		})
	}
	return report, nil
}

// guard runs one analyzer for one scope, degrading to the provided zero
// result on panic.
func guard[T any](a *Analyzer, name string, zero T, run func() T) (out T) {
	out = zero
	defer func() {
		if rec := recover(); rec != nil {
			a.log.Warn().Str("analyzer", name).Any("panic", rec).
				Msg("analyzer failed; degrading scope to zero result")
		}
	}()
	return run()
}

func (a *Analyzer) safeFundamentals(m *model.Match, ev *model.EventSet, s Scope) model.FundamentalsStats {
	return guard(a, "fundamentals", model.FundamentalsStats{}, func() model.FundamentalsStats {
		return a.Fundamentals(m, ev, s)
	})
}

func (a *Analyzer) safeBoost(m *model.Match, ev *model.EventSet, s Scope) model.BoostStats {
	return guard(a, "boost", model.BoostStats{}, func() model.BoostStats {
		return a.Boost(m, ev, s)
	})
}

func (a *Analyzer) safeMovement(m *model.Match, s Scope) model.MovementStats {
	return guard(a, "movement", model.MovementStats{}, func() model.MovementStats {
		return a.Movement(m, s)
	})
}

func (a *Analyzer) safePositioning(m *model.Match, ev *model.EventSet, s Scope) model.PositioningStats {
	return guard(a, "positioning", model.PositioningStats{}, func() model.PositioningStats {
		return a.Positioning(m, ev, s)
	})
}

func (a *Analyzer) safeChallenges(m *model.Match, ev *model.EventSet, s Scope) model.ChallengeStats {
	return guard(a, "challenges", model.ChallengeStats{}, func() model.ChallengeStats {
		return a.Challenges(m, ev, s)
	})
}

func (a *Analyzer) safeKickoffs(m *model.Match, ev *model.EventSet, s Scope) model.KickoffStats {
	return guard(a, "kickoffs", model.NewKickoffStats(), func() model.KickoffStats {
		return a.Kickoffs(m, ev, s)
	})
}

func (a *Analyzer) safeHeatmaps(m *model.Match, ev *model.EventSet, s Scope) model.HeatmapStats {
	return guard(a, "heatmaps", model.NewHeatmapStats(a.thr.HeatmapCols, a.thr.HeatmapRows), func() model.HeatmapStats {
		return a.Heatmaps(m, ev, s)
	})
}
