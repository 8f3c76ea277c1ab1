package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// PrintMatchSummary prints a one-line summary header for the replay.
func PrintMatchSummary(w io.Writer, s model.MatchSummary) {
	hash := s.ReplayHash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	fmt.Fprintf(w, "\nMap: %s  |  Analyzed: %s  |  %dv%d  |  Score: BLUE %d – ORANGE %d  |  Hash: %s\n\n",
		s.MapName, s.AnalyzedAt, s.TeamSize, s.TeamSize, s.BlueScore, s.OrangeScore, hash)
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func marker(focusID, playerID string) string {
	if focusID != "" && focusID == playerID {
		return ">"
	}
	return " "
}

// PrintCoreTable prints the scoreboard fundamentals table to stdout.
// If focusID is non-empty, that player's row is marked with ">".
func PrintCoreTable(players []model.PlayerAnalysis, focusID string) {
	PrintCoreTableTo(os.Stdout, players, focusID)
}

// PrintCoreTableTo writes the fundamentals table to the provided writer.
func PrintCoreTableTo(w io.Writer, players []model.PlayerAnalysis, focusID string) {
	table := newTable(w)
	table.Header(" ", "NAME", "TEAM", "SCORE", "G", "A", "SHOTS", "SAVES", "DEMOS", "SH%")

	for _, p := range players {
		shPct := "—"
		if p.Fundamentals.Shots > 0 {
			shPct = fmt.Sprintf("%.0f%%", p.Fundamentals.ShootingPct)
		}
		table.Append(
			marker(focusID, p.PlayerID),
			p.Name,
			p.Team.String(),
			fmt.Sprintf("%.0f", p.Fundamentals.Score),
			strconv.Itoa(p.Fundamentals.Goals),
			strconv.Itoa(p.Fundamentals.Assists),
			strconv.Itoa(p.Fundamentals.Shots),
			strconv.Itoa(p.Fundamentals.Saves),
			strconv.Itoa(p.Fundamentals.Demos),
			shPct,
		)
	}
	table.Render()
}

// PrintBoostTable prints the boost economy table.
// Columns: NAME | BPM | BCPM | COLLECTED | STOLEN | BIG | SMALL | AVG | 0BOOST | 100BOOST | OVERFILL | WASTE
func PrintBoostTable(w io.Writer, players []model.PlayerAnalysis, focusID string) {
	table := newTable(w)
	table.Header(" ", "NAME", "BPM", "BCPM", "COLLECTED", "STOLEN", "BIG", "SMALL",
		"AVG", "0BOOST", "100BOOST", "OVERFILL", "WASTE")

	for _, p := range players {
		b := p.Boost
		table.Append(
			marker(focusID, p.PlayerID),
			p.Name,
			fmt.Sprintf("%.0f", b.BPM),
			fmt.Sprintf("%.0f", b.BCPM),
			fmt.Sprintf("%.0f", b.AmountCollected),
			fmt.Sprintf("%.0f", b.AmountStolen),
			strconv.Itoa(b.BigPads),
			strconv.Itoa(b.SmallPads),
			fmt.Sprintf("%.1f", b.AvgBoost),
			fmt.Sprintf("%.1fs", b.TimeZeroBoostS),
			fmt.Sprintf("%.1fs", b.TimeHundredBoostS),
			fmt.Sprintf("%.0f", b.Overfill),
			fmt.Sprintf("%.0f", b.Waste),
		)
	}
	table.Render()
}

// PrintMovementTable prints the movement and speed-tier table.
func PrintMovementTable(w io.Writer, players []model.PlayerAnalysis, focusID string) {
	table := newTable(w)
	table.Header(" ", "NAME", "DIST_KM", "AVG_KPH", "SLOW", "BOOST_SPD", "SUPERSONIC",
		"GROUND", "LOW_AIR", "HIGH_AIR", "SLIDES", "AERIALS")

	for _, p := range players {
		m := p.Movement
		table.Append(
			marker(focusID, p.PlayerID),
			p.Name,
			fmt.Sprintf("%.2f", m.DistanceKM),
			fmt.Sprintf("%.0f", m.AvgSpeedKPH),
			fmt.Sprintf("%.0fs", m.TimeSlowS),
			fmt.Sprintf("%.0fs", m.TimeBoostSpeedS),
			fmt.Sprintf("%.0fs", m.TimeSupersonicS),
			fmt.Sprintf("%.0fs", m.TimeGroundS),
			fmt.Sprintf("%.0fs", m.TimeLowAirS),
			fmt.Sprintf("%.0fs", m.TimeHighAirS),
			strconv.Itoa(m.PowerslideCount),
			strconv.Itoa(m.AerialCount),
		)
	}
	table.Render()
}

// PrintPositioningTable prints possession, halves, passing and contest outcomes.
func PrintPositioningTable(w io.Writer, players []model.PlayerAnalysis, focusID string) {
	table := newTable(w)
	table.Header(" ", "NAME", "POSSESSION", "OFF_HALF", "DEF_HALF", "PASSES", "RECEIVED",
		"G&G", "CONTESTS", "W", "L", "N", "1ST_BALL%", "DEPTH", "RISK")

	for _, p := range players {
		pos, c := p.Positioning, p.Challenges
		firstBall := "—"
		depth := "—"
		risk := "—"
		if c.Contests > 0 {
			firstBall = fmt.Sprintf("%.0f%%", c.FirstToBallPct)
			depth = fmt.Sprintf("%.0fm", c.AvgDepthM)
			risk = fmt.Sprintf("%.2f", c.AvgRiskIndex)
		}
		table.Append(
			marker(focusID, p.PlayerID),
			p.Name,
			fmt.Sprintf("%.1fs", pos.PossessionTimeS),
			fmt.Sprintf("%.0fs", pos.TimeOffensiveHalfS),
			fmt.Sprintf("%.0fs", pos.TimeDefensiveHalfS),
			strconv.Itoa(pos.Passes),
			strconv.Itoa(pos.PassesReceived),
			strconv.Itoa(pos.GiveAndGos),
			strconv.Itoa(c.Contests),
			strconv.Itoa(c.Wins),
			strconv.Itoa(c.Losses),
			strconv.Itoa(c.Neutral),
			firstBall,
			depth,
			risk,
		)
	}
	table.Render()
}

// PrintKickoffTable prints kickoff outcomes and the dominant approach per player.
func PrintKickoffTable(w io.Writer, players []model.PlayerAnalysis, focusID string) {
	table := newTable(w)
	table.Header(" ", "NAME", "KICKOFFS", "FIRST_POSS", "NEUTRAL", "GOALS_FOR", "GOALS_AGAINST", "AVG_TTFT", "TOP_APPROACH")

	for _, p := range players {
		k := p.Kickoffs
		ttft := "—"
		if k.AvgTimeToFirstTouchS > 0 {
			ttft = fmt.Sprintf("%.2fs", k.AvgTimeToFirstTouchS)
		}
		table.Append(
			marker(focusID, p.PlayerID),
			p.Name,
			strconv.Itoa(k.Count),
			strconv.Itoa(k.FirstPossession),
			strconv.Itoa(k.Neutral),
			strconv.Itoa(k.GoalsFor),
			strconv.Itoa(k.GoalsAgainst),
			ttft,
			topApproach(k.Approaches),
		)
	}
	table.Render()
}

// topApproach returns the most frequent approach label, breaking ties by the
// fixed taxonomy order so output is deterministic.
func topApproach(approaches map[string]int) string {
	best, bestN := "—", 0
	for _, a := range model.KickoffApproaches() {
		if n := approaches[string(a)]; n > bestN {
			best, bestN = string(a), n
		}
	}
	return best
}

// PrintTeamTable prints the per-team comparison table, blue then orange.
func PrintTeamTable(w io.Writer, teams []model.TeamAnalysis) {
	table := newTable(w)
	table.Header("TEAM", "G", "SHOTS", "SAVES", "DEMOS", "BPM", "STOLEN",
		"POSSESSION", "PASSES", "CONTESTS_W", "KICKOFF_POSS")

	for _, t := range teams {
		table.Append(
			t.Team.String(),
			strconv.Itoa(t.Fundamentals.Goals),
			strconv.Itoa(t.Fundamentals.Shots),
			strconv.Itoa(t.Fundamentals.Saves),
			strconv.Itoa(t.Fundamentals.Demos),
			fmt.Sprintf("%.0f", t.Boost.BPM),
			fmt.Sprintf("%.0f", t.Boost.AmountStolen),
			fmt.Sprintf("%.1fs", t.Positioning.PossessionTimeS),
			strconv.Itoa(t.Positioning.Passes),
			strconv.Itoa(t.Challenges.Wins),
			strconv.Itoa(t.Kickoffs.FirstPossession),
		)
	}
	table.Render()
}

// PrintTimeline prints the merged event timeline in assembly order.
// Player names come from the analysis rows when available.
func PrintTimeline(w io.Writer, timeline []model.TimelineEvent, players []model.PlayerAnalysis) {
	nameByID := make(map[string]string, len(players))
	for _, p := range players {
		nameByID[p.PlayerID] = p.Name
	}

	table := newTable(w)
	table.Header("TIME", "EVENT", "TEAM", "PLAYER")

	for _, e := range timeline {
		name := nameByID[e.PlayerID]
		if name == "" {
			name = e.PlayerID
		}
		if name == "" {
			name = "—"
		}
		table.Append(
			fmt.Sprintf("%7.2fs", e.TimeS),
			string(e.Type),
			e.Team.String(),
			name,
		)
	}
	table.Render()
}
