package storage

import (
	"database/sql"
	"fmt"

	"github.com/rlstats/go-rl-metrics/internal/model"
)

// ReplayExists returns true if a replay with the given hash is already stored.
func (db *DB) ReplayExists(hash string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM replays WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertReplay inserts a replay record. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertReplay(summary model.MatchSummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO replays(hash, run_id, map_name, analyzed_at, playlist_id, team_size, blue_score, orange_score, match_length_s, fps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ReplayHash, summary.RunID, summary.MapName, summary.AnalyzedAt,
		summary.PlaylistID, summary.TeamSize, summary.BlueScore, summary.OrangeScore,
		summary.MatchLengthS, summary.FPS,
	)
	return err
}

// InsertPlayerStats bulk-inserts per-player analysis rows in a transaction.
func (db *DB) InsertPlayerStats(replayHash string, players []model.PlayerAnalysis) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_stats(
			replay_hash, player_id, name, team,
			goals, assists, shots, saves, demos, score, shooting_pct,
			bpm, bcpm, amount_collected, amount_stolen, big_pads, small_pads,
			avg_boost, time_zero_boost_s, time_hundred_boost_s, overfill, waste,
			time_slow_s, time_boost_speed_s, time_supersonic_s,
			time_ground_s, time_low_air_s, time_high_air_s,
			distance_km, avg_speed_kph, powerslide_count, aerial_count,
			possession_time_s, passes, passes_received, give_and_gos,
			contests, contest_wins, contest_losses, contest_neutral,
			first_to_ball_pct, avg_depth_m, avg_risk_index,
			kickoff_count, first_possession, kickoff_goals_for, kickoff_goals_against, avg_ttft_s
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		_, err = stmt.Exec(
			replayHash, p.PlayerID, p.Name, p.Team.String(),
			p.Fundamentals.Goals, p.Fundamentals.Assists, p.Fundamentals.Shots,
			p.Fundamentals.Saves, p.Fundamentals.Demos, p.Fundamentals.Score, p.Fundamentals.ShootingPct,
			p.Boost.BPM, p.Boost.BCPM, p.Boost.AmountCollected, p.Boost.AmountStolen,
			p.Boost.BigPads, p.Boost.SmallPads,
			p.Boost.AvgBoost, p.Boost.TimeZeroBoostS, p.Boost.TimeHundredBoostS,
			p.Boost.Overfill, p.Boost.Waste,
			p.Movement.TimeSlowS, p.Movement.TimeBoostSpeedS, p.Movement.TimeSupersonicS,
			p.Movement.TimeGroundS, p.Movement.TimeLowAirS, p.Movement.TimeHighAirS,
			p.Movement.DistanceKM, p.Movement.AvgSpeedKPH, p.Movement.PowerslideCount, p.Movement.AerialCount,
			p.Positioning.PossessionTimeS, p.Positioning.Passes, p.Positioning.PassesReceived, p.Positioning.GiveAndGos,
			p.Challenges.Contests, p.Challenges.Wins, p.Challenges.Losses, p.Challenges.Neutral,
			p.Challenges.FirstToBallPct, p.Challenges.AvgDepthM, p.Challenges.AvgRiskIndex,
			p.Kickoffs.Count, p.Kickoffs.FirstPossession, p.Kickoffs.GoalsFor, p.Kickoffs.GoalsAgainst,
			p.Kickoffs.AvgTimeToFirstTouchS,
		)
		if err != nil {
			return fmt.Errorf("insert player_stats for %s: %w", p.PlayerID, err)
		}
	}
	return tx.Commit()
}

// InsertTeamStats bulk-inserts per-team analysis rows in a transaction.
func (db *DB) InsertTeamStats(replayHash string, teams []model.TeamAnalysis) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO team_stats(
			replay_hash, team,
			goals, assists, shots, saves, demos, score, shooting_pct,
			bpm, bcpm, amount_collected, amount_stolen, avg_boost,
			time_slow_s, time_boost_speed_s, time_supersonic_s, distance_km,
			possession_time_s, passes, give_and_gos,
			contests, contest_wins, contest_losses, contest_neutral,
			kickoff_count, first_possession
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range teams {
		_, err = stmt.Exec(
			replayHash, t.Team.String(),
			t.Fundamentals.Goals, t.Fundamentals.Assists, t.Fundamentals.Shots,
			t.Fundamentals.Saves, t.Fundamentals.Demos, t.Fundamentals.Score, t.Fundamentals.ShootingPct,
			t.Boost.BPM, t.Boost.BCPM, t.Boost.AmountCollected, t.Boost.AmountStolen, t.Boost.AvgBoost,
			t.Movement.TimeSlowS, t.Movement.TimeBoostSpeedS, t.Movement.TimeSupersonicS, t.Movement.DistanceKM,
			t.Positioning.PossessionTimeS, t.Positioning.Passes, t.Positioning.GiveAndGos,
			t.Challenges.Contests, t.Challenges.Wins, t.Challenges.Losses, t.Challenges.Neutral,
			t.Kickoffs.Count, t.Kickoffs.FirstPossession,
		)
		if err != nil {
			return fmt.Errorf("insert team_stats for %s: %w", t.Team, err)
		}
	}
	return tx.Commit()
}

// InsertTimeline bulk-inserts the merged event timeline in a transaction.
// The sequence number preserves the deterministic assembly order.
func (db *DB) InsertTimeline(replayHash string, timeline []model.TimelineEvent) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO timeline_events(replay_hash, seq, time_s, type, player_id, team)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range timeline {
		_, err = stmt.Exec(replayHash, i, e.TimeS, string(e.Type), e.PlayerID, e.Team.String())
		if err != nil {
			return fmt.Errorf("insert timeline_events at %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ListReplays returns all stored replay summaries ordered by analysis time desc.
func (db *DB) ListReplays() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`
		SELECT hash, run_id, map_name, analyzed_at, playlist_id, team_size, blue_score, orange_score, match_length_s, fps
		FROM replays ORDER BY analyzed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		var s model.MatchSummary
		if err := rows.Scan(&s.ReplayHash, &s.RunID, &s.MapName, &s.AnalyzedAt,
			&s.PlaylistID, &s.TeamSize, &s.BlueScore, &s.OrangeScore,
			&s.MatchLengthS, &s.FPS); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetReplayByPrefix finds the first replay whose hash starts with the given prefix.
func (db *DB) GetReplayByPrefix(prefix string) (*model.MatchSummary, error) {
	var s model.MatchSummary
	err := db.conn.QueryRow(`
		SELECT hash, run_id, map_name, analyzed_at, playlist_id, team_size, blue_score, orange_score, match_length_s, fps
		FROM replays WHERE hash LIKE ? LIMIT 1`, prefix+"%").
		Scan(&s.ReplayHash, &s.RunID, &s.MapName, &s.AnalyzedAt,
			&s.PlaylistID, &s.TeamSize, &s.BlueScore, &s.OrangeScore,
			&s.MatchLengthS, &s.FPS)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetPlayerStats returns all per-player rows for a replay hash, best score first.
func (db *DB) GetPlayerStats(replayHash string) ([]model.PlayerAnalysis, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, name, team,
		       goals, assists, shots, saves, demos, score, shooting_pct,
		       bpm, bcpm, amount_collected, amount_stolen, big_pads, small_pads,
		       avg_boost, time_zero_boost_s, time_hundred_boost_s, overfill, waste,
		       time_slow_s, time_boost_speed_s, time_supersonic_s,
		       time_ground_s, time_low_air_s, time_high_air_s,
		       distance_km, avg_speed_kph, powerslide_count, aerial_count,
		       possession_time_s, passes, passes_received, give_and_gos,
		       contests, contest_wins, contest_losses, contest_neutral,
		       first_to_ball_pct, avg_depth_m, avg_risk_index,
		       kickoff_count, first_possession, kickoff_goals_for, kickoff_goals_against, avg_ttft_s
		FROM player_stats WHERE replay_hash = ?
		ORDER BY score DESC`, replayHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerAnalysis
	for rows.Next() {
		var p model.PlayerAnalysis
		var teamStr string
		if err := rows.Scan(
			&p.PlayerID, &p.Name, &teamStr,
			&p.Fundamentals.Goals, &p.Fundamentals.Assists, &p.Fundamentals.Shots,
			&p.Fundamentals.Saves, &p.Fundamentals.Demos, &p.Fundamentals.Score, &p.Fundamentals.ShootingPct,
			&p.Boost.BPM, &p.Boost.BCPM, &p.Boost.AmountCollected, &p.Boost.AmountStolen,
			&p.Boost.BigPads, &p.Boost.SmallPads,
			&p.Boost.AvgBoost, &p.Boost.TimeZeroBoostS, &p.Boost.TimeHundredBoostS,
			&p.Boost.Overfill, &p.Boost.Waste,
			&p.Movement.TimeSlowS, &p.Movement.TimeBoostSpeedS, &p.Movement.TimeSupersonicS,
			&p.Movement.TimeGroundS, &p.Movement.TimeLowAirS, &p.Movement.TimeHighAirS,
			&p.Movement.DistanceKM, &p.Movement.AvgSpeedKPH, &p.Movement.PowerslideCount, &p.Movement.AerialCount,
			&p.Positioning.PossessionTimeS, &p.Positioning.Passes, &p.Positioning.PassesReceived, &p.Positioning.GiveAndGos,
			&p.Challenges.Contests, &p.Challenges.Wins, &p.Challenges.Losses, &p.Challenges.Neutral,
			&p.Challenges.FirstToBallPct, &p.Challenges.AvgDepthM, &p.Challenges.AvgRiskIndex,
			&p.Kickoffs.Count, &p.Kickoffs.FirstPossession, &p.Kickoffs.GoalsFor, &p.Kickoffs.GoalsAgainst,
			&p.Kickoffs.AvgTimeToFirstTouchS,
		); err != nil {
			return nil, err
		}
		p.Team = parseTeam(teamStr)
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetTeamStats returns both team rows for a replay hash, blue first.
func (db *DB) GetTeamStats(replayHash string) ([]model.TeamAnalysis, error) {
	rows, err := db.conn.Query(`
		SELECT team,
		       goals, assists, shots, saves, demos, score, shooting_pct,
		       bpm, bcpm, amount_collected, amount_stolen, avg_boost,
		       time_slow_s, time_boost_speed_s, time_supersonic_s, distance_km,
		       possession_time_s, passes, give_and_gos,
		       contests, contest_wins, contest_losses, contest_neutral,
		       kickoff_count, first_possession
		FROM team_stats WHERE replay_hash = ?
		ORDER BY team ASC`, replayHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeamAnalysis
	for rows.Next() {
		var t model.TeamAnalysis
		var teamStr string
		if err := rows.Scan(
			&teamStr,
			&t.Fundamentals.Goals, &t.Fundamentals.Assists, &t.Fundamentals.Shots,
			&t.Fundamentals.Saves, &t.Fundamentals.Demos, &t.Fundamentals.Score, &t.Fundamentals.ShootingPct,
			&t.Boost.BPM, &t.Boost.BCPM, &t.Boost.AmountCollected, &t.Boost.AmountStolen, &t.Boost.AvgBoost,
			&t.Movement.TimeSlowS, &t.Movement.TimeBoostSpeedS, &t.Movement.TimeSupersonicS, &t.Movement.DistanceKM,
			&t.Positioning.PossessionTimeS, &t.Positioning.Passes, &t.Positioning.GiveAndGos,
			&t.Challenges.Contests, &t.Challenges.Wins, &t.Challenges.Losses, &t.Challenges.Neutral,
			&t.Kickoffs.Count, &t.Kickoffs.FirstPossession,
		); err != nil {
			return nil, err
		}
		t.Team = parseTeam(teamStr)
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTimeline returns the stored timeline for a replay hash in assembly order.
func (db *DB) GetTimeline(replayHash string) ([]model.TimelineEvent, error) {
	rows, err := db.conn.Query(`
		SELECT time_s, type, player_id, team
		FROM timeline_events WHERE replay_hash = ?
		ORDER BY seq ASC`, replayHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TimelineEvent
	for rows.Next() {
		var e model.TimelineEvent
		var typeStr, teamStr string
		if err := rows.Scan(&e.TimeS, &typeStr, &e.PlayerID, &teamStr); err != nil {
			return nil, err
		}
		e.Type = model.EventType(typeStr)
		e.Team = parseTeam(teamStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary read-only query and returns columns plus stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprintf("%v", x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// DropReplay deletes a replay and all its dependent rows.
func (db *DB) DropReplay(hash string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM timeline_events WHERE replay_hash = ?",
		"DELETE FROM team_stats WHERE replay_hash = ?",
		"DELETE FROM player_stats WHERE replay_hash = ?",
		"DELETE FROM replays WHERE hash = ?",
	} {
		if _, err := tx.Exec(q, hash); err != nil {
			return fmt.Errorf("drop replay %s: %w", hash, err)
		}
	}
	return tx.Commit()
}

func parseTeam(s string) model.Team {
	switch s {
	case "BLUE":
		return model.TeamBlue
	case "ORANGE":
		return model.TeamOrange
	default:
		return model.TeamUnknown
	}
}
