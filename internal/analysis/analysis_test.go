package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rlstats/go-rl-metrics/internal/config"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

func newTestAnalyzer() *Analyzer {
	return New(zerolog.Nop(), config.Default())
}

// testMatch wraps frames with a fixed 2v2 roster.
func testMatch(frames []model.Frame) *model.Match {
	return &model.Match{
		ReplayHash: "testhash",
		Frames:     frames,
		FPS:        10,
		Players: map[string]model.PlayerInfo{
			"blue1":   {ID: "blue1", Name: "BlueOne", Team: model.TeamBlue},
			"blue2":   {ID: "blue2", Name: "BlueTwo", Team: model.TeamBlue},
			"orange1": {ID: "orange1", Name: "OrangeOne", Team: model.TeamOrange},
			"orange2": {ID: "orange2", Name: "OrangeTwo", Team: model.TeamOrange},
		},
	}
}

func frame(t float64, ball model.BallFrame, players ...model.PlayerFrame) model.Frame {
	return model.Frame{TimeS: t, Ball: ball, Players: players}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// ---- Fixed-schema zero results ----

func TestBuildReport_EmptyInputKeepsFullSchema(t *testing.T) {
	m := testMatch(nil)
	rep, err := newTestAnalyzer().BuildReport(context.Background(), m, &model.EventSet{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rep.Players) != 4 {
		t.Fatalf("expected 4 player entries, got %d", len(rep.Players))
	}
	// Sorted by canonical id.
	wantOrder := []string{"blue1", "blue2", "orange1", "orange2"}
	for i, w := range wantOrder {
		if rep.Players[i].PlayerID != w {
			t.Errorf("player %d = %s, want %s", i, rep.Players[i].PlayerID, w)
		}
	}

	if len(rep.Teams) != 2 || rep.Teams[0].Team != model.TeamBlue || rep.Teams[1].Team != model.TeamOrange {
		t.Fatalf("teams = %+v, want blue then orange", rep.Teams)
	}

	for _, p := range rep.Players {
		if p.Fundamentals != (model.FundamentalsStats{}) {
			t.Errorf("%s: fundamentals not zero: %+v", p.PlayerID, p.Fundamentals)
		}
		if got := len(p.Kickoffs.Approaches); got != len(model.KickoffApproaches()) {
			t.Errorf("%s: approach map carries %d keys, want full taxonomy %d",
				p.PlayerID, got, len(model.KickoffApproaches()))
		}
		if p.Heatmaps.Rows != 20 || p.Heatmaps.Cols != 16 || len(p.Heatmaps.Occupancy) != 20 {
			t.Errorf("%s: heatmap grid %dx%d", p.PlayerID, p.Heatmaps.Cols, p.Heatmaps.Rows)
		}
	}
}

func TestBuildReport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := newTestAnalyzer().BuildReport(ctx, testMatch(nil), &model.EventSet{}, nil)
	if err == nil {
		t.Fatal("expected ctx error")
	}
	if rep == nil {
		t.Fatal("partial report must still be returned")
	}
}

// ---- Fundamentals ----

func TestFundamentals_ScoreAndAttribution(t *testing.T) {
	m := testMatch([]model.Frame{
		frame(0, model.BallFrame{}),
		frame(9.5, model.BallFrame{Velocity: model.Vec3{Y: 2000}}),
	})
	ev := &model.EventSet{
		Goals: []model.GoalEvent{
			{TimeS: 10, Team: model.TeamBlue, ScorerID: "blue1", ShotSpeedKPH: 72},
		},
		Touches: []model.TouchEvent{
			{TimeS: 8.0, PlayerID: "blue2", Team: model.TeamBlue, Outcome: model.TouchGeneric},
			{TimeS: 9.5, PlayerID: "blue1", Team: model.TeamBlue, Outcome: model.TouchShot, BallSpeedKPH: 72},
		},
		Demos: []model.DemoEvent{
			{TimeS: 20, VictimID: "orange1", AttackerID: "blue1",
				VictimTeam: model.TeamOrange, AttackerTeam: model.TeamBlue},
		},
	}

	a := newTestAnalyzer()
	got := a.Fundamentals(m, ev, PlayerScope("blue1", model.TeamBlue))
	if got.Goals != 1 || got.Shots != 1 || got.Demos != 1 || got.Assists != 0 {
		t.Errorf("blue1 fundamentals = %+v", got)
	}
	// goal 100 + shot 20 + demo 25.
	if got.Score != 145 {
		t.Errorf("score = %v, want 145", got.Score)
	}
	if got.ShootingPct != 100 {
		t.Errorf("shooting pct = %v, want 100", got.ShootingPct)
	}

	// blue2 touched 1.5s before the scoring touch: the assist.
	assist := a.Fundamentals(m, ev, PlayerScope("blue2", model.TeamBlue))
	if assist.Assists != 1 {
		t.Errorf("blue2 assists = %d, want 1", assist.Assists)
	}
	if assist.Goals != 0 {
		t.Errorf("blue2 goals = %d, want 0", assist.Goals)
	}

	team := a.Fundamentals(m, ev, TeamScope(model.TeamBlue))
	if team.Goals != 1 || team.Assists != 1 {
		t.Errorf("team fundamentals = %+v", team)
	}
}

func TestFundamentals_UnattributedGoalCountsForTeam(t *testing.T) {
	m := testMatch(nil)
	ev := &model.EventSet{
		Goals: []model.GoalEvent{{TimeS: 10, Team: model.TeamOrange}},
	}
	a := newTestAnalyzer()

	if got := a.Fundamentals(m, ev, TeamScope(model.TeamOrange)); got.Goals != 1 {
		t.Errorf("team goals = %d, want 1 for unattributed goal", got.Goals)
	}
	if got := a.Fundamentals(m, ev, MatchScope()); got.Goals != 1 {
		t.Errorf("match goals = %d, want 1", got.Goals)
	}
	if got := a.Fundamentals(m, ev, PlayerScope("orange1", model.TeamOrange)); got.Goals != 0 {
		t.Errorf("player goals = %d, want 0 (never guessed)", got.Goals)
	}
}

func TestFundamentals_SaveDetection(t *testing.T) {
	// Preceding frame: ball at shot speed toward blue's own goal (-Y).
	// blue1 touches in the defensive third.
	m := testMatch([]model.Frame{
		frame(4.9, model.BallFrame{Velocity: model.Vec3{Y: -1000}}),
		frame(5.0, model.BallFrame{Velocity: model.Vec3{Y: 800}}),
	})
	ev := &model.EventSet{
		Touches: []model.TouchEvent{
			{TimeS: 5.0, PlayerID: "blue1", Team: model.TeamBlue,
				Location: model.Vec3{Y: -4000}, Outcome: model.TouchGeneric},
		},
	}

	got := newTestAnalyzer().Fundamentals(m, ev, PlayerScope("blue1", model.TeamBlue))
	if got.Saves != 1 {
		t.Errorf("saves = %d, want 1", got.Saves)
	}
}

// ---- Boost ----

func TestBoost_PickupAccounting(t *testing.T) {
	// 60s of frames so the per-minute rates are direct.
	m := testMatch([]model.Frame{
		frame(0, model.BallFrame{}),
		frame(60, model.BallFrame{}),
	})
	ev := &model.EventSet{
		Pickups: []model.BoostPickupEvent{
			{TimeS: 1, PlayerID: "blue1", PadID: 4, PadType: model.PadBig,
				BoostBefore: 0, BoostAfter: 100, BoostGain: 100},
			{TimeS: 10, PlayerID: "blue1", PadID: 20, PadType: model.PadSmall,
				Stolen: true, BoostBefore: 30, BoostAfter: 42, BoostGain: 12},
		},
	}

	got := newTestAnalyzer().Boost(m, ev, PlayerScope("blue1", model.TeamBlue))
	if got.AmountCollected != 112 {
		t.Errorf("collected = %v, want 112", got.AmountCollected)
	}
	if got.AmountStolen != 12 {
		t.Errorf("stolen = %v, want 12", got.AmountStolen)
	}
	if got.BigPads != 1 || got.SmallPads != 1 {
		t.Errorf("pads = %d big / %d small", got.BigPads, got.SmallPads)
	}
	if !approx(got.BPM, 112) {
		t.Errorf("bpm = %v, want 112", got.BPM)
	}
	if !approx(got.BCPM, 2) {
		t.Errorf("bcpm = %v, want 2", got.BCPM)
	}
	if got.Overfill != 0 {
		t.Errorf("overfill = %v, want 0", got.Overfill)
	}
}

func TestBoost_Overfill(t *testing.T) {
	m := testMatch(nil)
	// Big pad grabbed at 50 boost: 100 of capacity against 50 of headroom.
	ev := &model.EventSet{
		Pickups: []model.BoostPickupEvent{
			{TimeS: 1, PlayerID: "blue1", PadID: 15, PadType: model.PadBig,
				BoostBefore: 50, BoostAfter: 100, BoostGain: 50},
		},
	}
	got := newTestAnalyzer().Boost(m, ev, PlayerScope("blue1", model.TeamBlue))
	if got.Overfill != 50 {
		t.Errorf("overfill = %v, want 50", got.Overfill)
	}
}

func TestBoost_ExtremesAndWaste(t *testing.T) {
	p := func(boost float64, supersonic bool) model.PlayerFrame {
		return model.PlayerFrame{PlayerID: "blue1", Boost: boost, IsSupersonic: supersonic}
	}
	m := testMatch([]model.Frame{
		frame(0, model.BallFrame{}, p(0, false)),
		frame(1, model.BallFrame{}, p(100, true)),
		frame(2, model.BallFrame{}, p(90, true)),
		frame(3, model.BallFrame{}, p(90, false)),
	})

	got := newTestAnalyzer().Boost(m, &model.EventSet{}, PlayerScope("blue1", model.TeamBlue))
	if !approx(got.TimeZeroBoostS, 1) {
		t.Errorf("zero-boost time = %v, want 1", got.TimeZeroBoostS)
	}
	if !approx(got.TimeHundredBoostS, 1) {
		t.Errorf("full-boost time = %v, want 1", got.TimeHundredBoostS)
	}
	// Boost dropped 100 -> 90 across two supersonic frames.
	if !approx(got.Waste, 10) {
		t.Errorf("waste = %v, want 10", got.Waste)
	}
	if !approx(got.AvgBoost, (0+100+90)/3.0) {
		t.Errorf("avg boost = %v, want %v", got.AvgBoost, (0+100+90)/3.0)
	}
}

// ---- Movement ----

func TestMovement_SpeedBucketsAndHysteresis(t *testing.T) {
	p := func(x, vx float64) model.PlayerFrame {
		return model.PlayerFrame{
			PlayerID: "blue1",
			Position: model.Vec3{X: x, Z: 17},
			Velocity: model.Vec3{X: vx},
			IsOnGround: true,
		}
	}
	m := testMatch([]model.Frame{
		frame(0.0, model.BallFrame{}, p(0, 1000)),    // slow
		frame(0.1, model.BallFrame{}, p(100, 2250)),  // enters supersonic
		frame(0.2, model.BallFrame{}, p(200, 2150)),  // dips but stays (>= exit floor)
		frame(0.3, model.BallFrame{}, p(300, 2000)),  // drops out: boost speed
		frame(0.4, model.BallFrame{}, p(400, 2000)),
	})

	got := newTestAnalyzer().Movement(m, PlayerScope("blue1", model.TeamBlue))
	if !approx(got.TimeSlowS, 0.1) {
		t.Errorf("slow = %v, want 0.1", got.TimeSlowS)
	}
	if !approx(got.TimeSupersonicS, 0.2) {
		t.Errorf("supersonic = %v, want 0.2 (hysteresis keeps the dip)", got.TimeSupersonicS)
	}
	if !approx(got.TimeBoostSpeedS, 0.1) {
		t.Errorf("boost speed = %v, want 0.1", got.TimeBoostSpeedS)
	}
	total := got.TimeSlowS + got.TimeBoostSpeedS + got.TimeSupersonicS
	if !approx(total, 0.4) {
		t.Errorf("bucket sum = %v, want full 0.4 duration", total)
	}
	if !approx(got.TimeGroundS, 0.4) {
		t.Errorf("ground = %v, want 0.4", got.TimeGroundS)
	}
	// 100uu advanced per processed frame after the first.
	if !approx(got.DistanceKM, 0.003) {
		t.Errorf("distance = %v km, want 0.003", got.DistanceKM)
	}
}

func TestMovement_HeightBuckets(t *testing.T) {
	p := func(z float64) model.PlayerFrame {
		return model.PlayerFrame{PlayerID: "blue1", Position: model.Vec3{Z: z}}
	}
	m := testMatch([]model.Frame{
		frame(0, model.BallFrame{}, p(17)),    // ground
		frame(1, model.BallFrame{}, p(500)),   // low air
		frame(2, model.BallFrame{}, p(1500)),  // high air
		frame(3, model.BallFrame{}, p(17)),
	})

	got := newTestAnalyzer().Movement(m, PlayerScope("blue1", model.TeamBlue))
	if !approx(got.TimeGroundS, 1) || !approx(got.TimeLowAirS, 1) || !approx(got.TimeHighAirS, 1) {
		t.Errorf("height split = %v/%v/%v, want 1/1/1",
			got.TimeGroundS, got.TimeLowAirS, got.TimeHighAirS)
	}
	// One sustained stretch above the high-air threshold, longer than the
	// aerial minimum.
	if got.AerialCount != 1 {
		t.Errorf("aerials = %d, want 1", got.AerialCount)
	}
}

// ---- Positioning ----

func TestPositioning_PossessionAndPasses(t *testing.T) {
	cars := func() []model.PlayerFrame {
		return []model.PlayerFrame{
			{PlayerID: "blue1", Position: model.Vec3{Y: -1000, Z: 17}},
			{PlayerID: "blue2", Position: model.Vec3{Y: 1000, Z: 17}},
		}
	}
	m := testMatch([]model.Frame{
		frame(0, model.BallFrame{}, cars()...),
		frame(1, model.BallFrame{}, cars()...),
		frame(2, model.BallFrame{}, cars()...),
		frame(3, model.BallFrame{}, cars()...),
		frame(4, model.BallFrame{}, cars()...),
	})
	ev := &model.EventSet{
		Touches: []model.TouchEvent{
			{TimeS: 1, PlayerID: "blue1", Team: model.TeamBlue, Location: model.Vec3{Y: -1000}},
			{TimeS: 2, PlayerID: "blue2", Team: model.TeamBlue, Location: model.Vec3{Y: 500}},
			{TimeS: 3, PlayerID: "blue1", Team: model.TeamBlue, Location: model.Vec3{Y: 2000}},
		},
	}

	a := newTestAnalyzer()
	got := a.Positioning(m, ev, PlayerScope("blue1", model.TeamBlue))
	// Holder of the intervals starting at t=1 and t=3.
	if !approx(got.PossessionTimeS, 2) {
		t.Errorf("possession = %v, want 2", got.PossessionTimeS)
	}
	if got.Passes != 1 || got.PassesReceived != 1 {
		t.Errorf("passes = %d sent / %d received, want 1/1", got.Passes, got.PassesReceived)
	}
	if got.GiveAndGos != 1 {
		t.Errorf("give-and-gos = %d, want 1 (credited to the initiator)", got.GiveAndGos)
	}
	// blue1 sits at -1000: blue's defensive half for all 4 intervals.
	if !approx(got.TimeDefensiveHalfS, 4) || got.TimeOffensiveHalfS != 0 {
		t.Errorf("halves = %v off / %v def", got.TimeOffensiveHalfS, got.TimeDefensiveHalfS)
	}

	team := a.Positioning(m, ev, TeamScope(model.TeamBlue))
	if !approx(team.PossessionTimeS, 3) {
		t.Errorf("team possession = %v, want 3", team.PossessionTimeS)
	}
	if team.Passes != 2 {
		t.Errorf("team passes = %d, want 2", team.Passes)
	}
	if team.GiveAndGos != 1 {
		t.Errorf("team give-and-gos = %d, want 1", team.GiveAndGos)
	}
}

func TestPositioning_BackPassRejected(t *testing.T) {
	// Ball moved 2000uu backward for blue: beyond the forward-progress
	// tolerance, so no pass.
	ev := &model.EventSet{
		Touches: []model.TouchEvent{
			{TimeS: 1, PlayerID: "blue1", Team: model.TeamBlue, Location: model.Vec3{Y: 2000}},
			{TimeS: 2, PlayerID: "blue2", Team: model.TeamBlue, Location: model.Vec3{Y: 0}},
		},
	}
	got := newTestAnalyzer().Positioning(testMatch(nil), ev, TeamScope(model.TeamBlue))
	if got.Passes != 0 {
		t.Errorf("passes = %d, want 0 for a back pass", got.Passes)
	}
}

// ---- Challenges ----

func TestChallenges_ScopedOutcomes(t *testing.T) {
	ev := &model.EventSet{
		Challenges: []model.ChallengeEvent{
			{StartTimeS: 1, EndTimeS: 2, WinnerTeam: model.TeamBlue,
				WinnerID: "blue1", LoserID: "orange1", FirstTouchID: "blue1",
				DepthM: 50, RiskIndex: 0.4},
			{StartTimeS: 5, EndTimeS: 6, WinnerTeam: model.TeamUnknown,
				FirstTouchID: "orange1", DepthM: 30, RiskIndex: 0.8},
		},
	}
	m := testMatch(nil)
	a := newTestAnalyzer()

	p := a.Challenges(m, ev, PlayerScope("blue1", model.TeamBlue))
	if p.Contests != 1 || p.Wins != 1 || p.Neutral != 0 {
		t.Errorf("blue1 challenges = %+v", p)
	}
	if p.FirstToBallPct != 100 {
		t.Errorf("blue1 first-to-ball = %v, want 100", p.FirstToBallPct)
	}

	team := a.Challenges(m, ev, TeamScope(model.TeamBlue))
	if team.Contests != 2 || team.Wins != 1 || team.Neutral != 1 || team.Losses != 0 {
		t.Errorf("blue team challenges = %+v", team)
	}
	if team.FirstToBallPct != 50 {
		t.Errorf("team first-to-ball = %v, want 50", team.FirstToBallPct)
	}
	if !approx(team.AvgDepthM, 40) {
		t.Errorf("avg depth = %v, want 40", team.AvgDepthM)
	}
	if !approx(team.AvgRiskIndex, 0.6) {
		t.Errorf("avg risk = %v, want 0.6", team.AvgRiskIndex)
	}

	loser := a.Challenges(m, ev, PlayerScope("orange1", model.TeamOrange))
	if loser.Contests != 2 || loser.Losses != 1 || loser.Neutral != 1 {
		t.Errorf("orange1 challenges = %+v", loser)
	}
}

// ---- Kickoffs ----

func TestKickoffs_OutcomesAndApproaches(t *testing.T) {
	m := testMatch([]model.Frame{
		frame(0, model.BallFrame{}),
		frame(30, model.BallFrame{}),
	})
	ev := &model.EventSet{
		Kickoffs: []model.KickoffEvent{{
			Phase: model.KickoffInitial, StartTimeS: 0, EndTimeS: 0.5,
			Outcome: model.OutcomeFirstPossessionBlue,
			Players: []model.KickoffPlayer{
				{PlayerID: "blue1", Team: model.TeamBlue, Role: "GO",
					TimeToFirstTouchS: 0.4, Approach: model.ApproachSpeedflip},
				{PlayerID: "orange1", Team: model.TeamOrange, Role: "GO",
					TimeToFirstTouchS: -1, Approach: model.ApproachStandard},
			},
		}},
		Goals: []model.GoalEvent{
			{TimeS: 3, Team: model.TeamBlue, ScorerID: "blue1"},
		},
	}
	a := newTestAnalyzer()

	got := a.Kickoffs(m, ev, PlayerScope("blue1", model.TeamBlue))
	if got.Count != 1 || got.FirstPossession != 1 || got.Neutral != 0 {
		t.Errorf("blue1 kickoffs = %+v", got)
	}
	if got.GoalsFor != 1 || got.GoalsAgainst != 0 {
		t.Errorf("post-kickoff goals = %d for / %d against", got.GoalsFor, got.GoalsAgainst)
	}
	if !approx(got.AvgTimeToFirstTouchS, 0.4) {
		t.Errorf("avg ttft = %v, want 0.4", got.AvgTimeToFirstTouchS)
	}
	if got.Approaches[string(model.ApproachSpeedflip)] != 1 {
		t.Errorf("approach distribution = %v", got.Approaches)
	}

	// The conceding side records the same goal against.
	opp := a.Kickoffs(m, ev, PlayerScope("orange1", model.TeamOrange))
	if opp.GoalsAgainst != 1 || opp.GoalsFor != 0 {
		t.Errorf("orange1 post-kickoff goals = %d for / %d against", opp.GoalsFor, opp.GoalsAgainst)
	}
	// A no-touch kickoff does not drag the average down.
	if opp.AvgTimeToFirstTouchS != 0 {
		t.Errorf("orange1 avg ttft = %v, want 0 (no touches)", opp.AvgTimeToFirstTouchS)
	}
}

// ---- Heatmaps ----

func TestHeatmaps_Binning(t *testing.T) {
	m := testMatch([]model.Frame{
		frame(0, model.BallFrame{Position: model.Vec3{}},
			model.PlayerFrame{PlayerID: "blue1", Position: model.Vec3{X: -4000, Y: -5000, Z: 17}}),
		frame(1, model.BallFrame{Position: model.Vec3{}},
			model.PlayerFrame{PlayerID: "blue1", Position: model.Vec3{X: -4000, Y: -5000, Z: 17}}),
	})
	ev := &model.EventSet{
		Touches: []model.TouchEvent{
			{TimeS: 0.5, PlayerID: "blue1", Team: model.TeamBlue,
				Location: model.Vec3{X: -4096, Y: -5120}},
		},
	}
	a := newTestAnalyzer()

	// Match scope bins the ball: center of the field.
	match := a.Heatmaps(m, ev, MatchScope())
	if !approx(match.Occupancy[10][8], 1) {
		t.Errorf("ball occupancy at center = %v, want 1s", match.Occupancy[10][8])
	}

	// Player scope bins the car: bottom-left corner.
	player := a.Heatmaps(m, ev, PlayerScope("blue1", model.TeamBlue))
	if !approx(player.Occupancy[0][0], 1) {
		t.Errorf("car occupancy at corner = %v, want 1s", player.Occupancy[0][0])
	}
	if !approx(player.Touches[0][0], 1) {
		t.Errorf("touch bin = %v, want 1", player.Touches[0][0])
	}

	// Out-of-range coordinates clamp into the edge bin rather than panic.
	evFar := &model.EventSet{
		Touches: []model.TouchEvent{
			{TimeS: 0.5, PlayerID: "blue1", Team: model.TeamBlue,
				Location: model.Vec3{X: 9999, Y: 9999}},
		},
	}
	far := a.Heatmaps(m, evFar, PlayerScope("blue1", model.TeamBlue))
	if !approx(far.Touches[19][15], 1) {
		t.Errorf("clamped touch bin = %v, want 1", far.Touches[19][15])
	}
}
