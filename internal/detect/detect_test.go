package detect

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rlstats/go-rl-metrics/internal/config"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// testMatch wraps frames with a fixed 1v1-or-2v2 roster.
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

func newTestRegistry() *Registry {
	return NewRegistry(zerolog.Nop(), config.Default())
}

func ballFrame(t float64, pos, vel model.Vec3, players ...model.PlayerFrame) model.Frame {
	return model.Frame{
		TimeS:   t,
		Ball:    model.BallFrame{Position: pos, Velocity: vel},
		Players: players,
	}
}

func car(id string, pos model.Vec3) model.PlayerFrame {
	return model.PlayerFrame{PlayerID: id, Position: pos, IsOnGround: true}
}

// ---- Touch detection ----

func TestDetectTouches_OutcomeBySpeed(t *testing.T) {
	// 1000 uu/s = 36 kph (shot), 500 uu/s = 18 kph (generic), 100 uu/s =
	// 3.6 kph (dribble).
	m := testMatch([]model.Frame{
		ballFrame(0, model.Vec3{}, model.Vec3{X: 1000}, car("blue1", model.Vec3{X: 200})),
		ballFrame(0.1, model.Vec3{}, model.Vec3{X: 500}, car("blue1", model.Vec3{X: 200})),
		ballFrame(0.2, model.Vec3{}, model.Vec3{X: 100}, car("blue1", model.Vec3{X: 200})),
		ballFrame(0.3, model.Vec3{}, model.Vec3{X: 1000}, car("blue1", model.Vec3{X: 400})), // out of radius
	})

	touches := newTestRegistry().DetectTouches(m)
	if len(touches) != 3 {
		t.Fatalf("expected 3 touches, got %d", len(touches))
	}
	want := []model.TouchOutcome{model.TouchShot, model.TouchGeneric, model.TouchDribble}
	for i, w := range want {
		if touches[i].Outcome != w {
			t.Errorf("touch %d outcome = %v, want %v", i, touches[i].Outcome, w)
		}
	}
	if touches[0].Team != model.TeamBlue || touches[0].PlayerID != "blue1" {
		t.Errorf("touch attribution wrong: %+v", touches[0])
	}
}

func TestDetectTouches_SkipsDemolished(t *testing.T) {
	demoed := car("blue1", model.Vec3{X: 100})
	demoed.IsDemolished = true
	m := testMatch([]model.Frame{
		ballFrame(0, model.Vec3{}, model.Vec3{}, demoed),
	})
	if touches := newTestRegistry().DetectTouches(m); len(touches) != 0 {
		t.Errorf("demolished player produced %d touches", len(touches))
	}
}

// ---- Goal detection ----

func TestDetectGoals_PositiveYIsBlue(t *testing.T) {
	m := testMatch([]model.Frame{
		ballFrame(1.0, model.Vec3{Y: 5000}, model.Vec3{Y: 3000}),
		ballFrame(1.1, model.Vec3{Y: 5250}, model.Vec3{Y: 3000}),
		ballFrame(1.2, model.Vec3{Y: 5300}, model.Vec3{}), // still inside: no second event
	})
	touches := []model.TouchEvent{
		{TimeS: 0.5, PlayerID: "blue1", Team: model.TeamBlue, BallSpeedKPH: 90},
	}

	goals := newTestRegistry().DetectGoals(m, touches)
	if len(goals) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(goals))
	}
	g := goals[0]
	if g.Team != model.TeamBlue {
		t.Errorf("crossing +Y scored for %v, want BLUE", g.Team)
	}
	if g.ScorerID != "blue1" {
		t.Errorf("scorer = %q, want blue1", g.ScorerID)
	}
	if g.ShotSpeedKPH != 90 {
		t.Errorf("shot speed = %v, want 90", g.ShotSpeedKPH)
	}
	if g.TimeS != 1.1 {
		t.Errorf("goal time = %v, want 1.1", g.TimeS)
	}
}

func TestDetectGoals_NegativeYIsOrange_NoScorerOutsideLookback(t *testing.T) {
	m := testMatch([]model.Frame{
		ballFrame(10.0, model.Vec3{Y: -5000}, model.Vec3{}),
		ballFrame(10.1, model.Vec3{Y: -5250}, model.Vec3{}),
	})
	// Touch is 5s old: outside the 3s look-back, so no attribution.
	touches := []model.TouchEvent{
		{TimeS: 5.1, PlayerID: "orange1", Team: model.TeamOrange},
	}

	goals := newTestRegistry().DetectGoals(m, touches)
	if len(goals) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(goals))
	}
	if goals[0].Team != model.TeamOrange {
		t.Errorf("crossing -Y scored for %v, want ORANGE", goals[0].Team)
	}
	if goals[0].ScorerID != "" {
		t.Errorf("scorer = %q, want unattributed", goals[0].ScorerID)
	}
}

func TestDetectGoals_ReArmsAfterLeavingGoal(t *testing.T) {
	m := testMatch([]model.Frame{
		ballFrame(1.0, model.Vec3{Y: 5250}, model.Vec3{}),
		ballFrame(2.0, model.Vec3{Y: 0}, model.Vec3{}),
		ballFrame(3.0, model.Vec3{Y: 5250}, model.Vec3{}),
	})
	goals := newTestRegistry().DetectGoals(m, nil)
	if len(goals) != 2 {
		t.Fatalf("expected 2 goals after re-arm, got %d", len(goals))
	}
}

// ---- Demolition detection ----

func TestDetectDemos_AttributesNearestOpponent(t *testing.T) {
	victim := car("orange1", model.Vec3{})
	attacker := car("blue1", model.Vec3{X: 300})
	far := car("blue2", model.Vec3{X: 2000})

	demoedVictim := victim
	demoedVictim.IsDemolished = true

	m := testMatch([]model.Frame{
		ballFrame(0, model.Vec3{}, model.Vec3{}, victim, attacker, far),
		ballFrame(0.1, model.Vec3{}, model.Vec3{}, demoedVictim, attacker, far),
		ballFrame(0.2, model.Vec3{}, model.Vec3{}, demoedVictim, attacker, far), // still down: one event
	})

	demos := newTestRegistry().DetectDemos(m)
	if len(demos) != 1 {
		t.Fatalf("expected 1 demo, got %d", len(demos))
	}
	d := demos[0]
	if d.VictimID != "orange1" || d.VictimTeam != model.TeamOrange {
		t.Errorf("victim = %s/%v", d.VictimID, d.VictimTeam)
	}
	if d.AttackerID != "blue1" || d.AttackerTeam != model.TeamBlue {
		t.Errorf("attacker = %s/%v, want blue1/BLUE", d.AttackerID, d.AttackerTeam)
	}
}

func TestDetectDemos_NoAttackerBeyondRadius(t *testing.T) {
	victim := car("orange1", model.Vec3{})
	distant := car("blue1", model.Vec3{X: 600}) // beyond the 500uu radius

	demoedVictim := victim
	demoedVictim.IsDemolished = true

	m := testMatch([]model.Frame{
		ballFrame(0, model.Vec3{}, model.Vec3{}, victim, distant),
		ballFrame(0.1, model.Vec3{}, model.Vec3{}, demoedVictim, distant),
	})

	demos := newTestRegistry().DetectDemos(m)
	if len(demos) != 1 {
		t.Fatalf("expected 1 demo, got %d", len(demos))
	}
	if demos[0].AttackerID != "" {
		t.Errorf("attacker = %q, want unattributed", demos[0].AttackerID)
	}
}

// ---- Boost pickup detection ----

func boostCar(id string, pos model.Vec3, boost float64) model.PlayerFrame {
	p := car(id, pos)
	p.Boost = boost
	return p
}

func TestDetectPickups_MergesGradualRefill(t *testing.T) {
	// Big pad 4 sits at (3072, -4096). A refill reported across three
	// frames collapses into one event spanning 0 -> 100.
	at := model.Vec3{X: 3072, Y: -4096, Z: 17}
	m := testMatch([]model.Frame{
		ballFrame(0, model.Vec3{}, model.Vec3{}, boostCar("blue1", at, 0)),
		ballFrame(0.1, model.Vec3{}, model.Vec3{}, boostCar("blue1", at, 40)),
		ballFrame(0.2, model.Vec3{}, model.Vec3{}, boostCar("blue1", at, 80)),
		ballFrame(0.3, model.Vec3{}, model.Vec3{}, boostCar("blue1", at, 100)),
	})

	pickups := newTestRegistry().DetectPickups(m)
	if len(pickups) != 1 {
		t.Fatalf("expected 1 merged pickup, got %d", len(pickups))
	}
	p := pickups[0]
	if p.PadID != 4 || p.PadType != model.PadBig {
		t.Errorf("pad = %d/%v, want 4/BIG", p.PadID, p.PadType)
	}
	if p.BoostBefore != 0 || p.BoostAfter != 100 || p.BoostGain != 100 {
		t.Errorf("gain span = %v->%v (%v), want 0->100 (100)", p.BoostBefore, p.BoostAfter, p.BoostGain)
	}
	if p.Stolen {
		t.Error("blue pickup on blue half flagged stolen")
	}
}

func TestDetectPickups_StolenOnOpponentHalf(t *testing.T) {
	// Small pad 20 sits at (0, 1024): orange half, so a blue pickup there
	// is stolen.
	at := model.Vec3{X: 0, Y: 1024, Z: 17}
	m := testMatch([]model.Frame{
		ballFrame(0, model.Vec3{}, model.Vec3{}, boostCar("blue1", at, 50)),
		ballFrame(0.1, model.Vec3{}, model.Vec3{}, boostCar("blue1", at, 62)),
	})

	pickups := newTestRegistry().DetectPickups(m)
	if len(pickups) != 1 {
		t.Fatalf("expected 1 pickup, got %d", len(pickups))
	}
	p := pickups[0]
	if !p.Stolen {
		t.Error("blue pickup at +Y should be stolen")
	}
	if p.PadID != 20 || p.PadType != model.PadSmall {
		t.Errorf("pad = %d/%v, want 20/SMALL", p.PadID, p.PadType)
	}
}

func TestDetectPickups_UnmatchedPadKeepsEvent(t *testing.T) {
	// No canonical pad near (500, 500); the event survives with pad id -1
	// and the gain-derived pad type.
	at := model.Vec3{X: 500, Y: 500, Z: 17}
	m := testMatch([]model.Frame{
		ballFrame(0, model.Vec3{}, model.Vec3{}, boostCar("blue1", at, 0)),
		ballFrame(0.1, model.Vec3{}, model.Vec3{}, boostCar("blue1", at, 50)),
	})

	pickups := newTestRegistry().DetectPickups(m)
	if len(pickups) != 1 {
		t.Fatalf("expected 1 pickup, got %d", len(pickups))
	}
	if pickups[0].PadID != -1 {
		t.Errorf("pad id = %d, want -1", pickups[0].PadID)
	}
	if pickups[0].PadType != model.PadBig {
		t.Errorf("pad type = %v, want BIG for a 50-unit gain", pickups[0].PadType)
	}
}

// ---- Kickoff detection ----

func TestDetectKickoffs_WindowAndOutcome(t *testing.T) {
	centered := model.Vec3{}
	moved := model.Vec3{Y: 300}
	m := testMatch([]model.Frame{
		ballFrame(0, centered, model.Vec3{},
			car("blue1", model.Vec3{Y: -2000}), car("blue2", model.Vec3{Y: -4000}),
			car("orange1", model.Vec3{Y: 2000}), car("orange2", model.Vec3{Y: 4000})),
		ballFrame(0.1, centered, model.Vec3{},
			car("blue1", model.Vec3{Y: -2000}), car("blue2", model.Vec3{Y: -4000}),
			car("orange1", model.Vec3{Y: 2000}), car("orange2", model.Vec3{Y: 4000})),
		ballFrame(0.2, centered, model.Vec3{},
			car("blue1", model.Vec3{Y: -1000}), car("blue2", model.Vec3{Y: -4000}),
			car("orange1", model.Vec3{Y: 1500}), car("orange2", model.Vec3{Y: 4000})),
		ballFrame(0.3, moved, model.Vec3{Y: 2000},
			car("blue1", model.Vec3{Y: 100}), car("blue2", model.Vec3{Y: -4000}),
			car("orange1", model.Vec3{Y: 1000}), car("orange2", model.Vec3{Y: 4000})),
	})
	touches := []model.TouchEvent{
		{TimeS: 0.35, PlayerID: "blue1", Team: model.TeamBlue},
	}

	kickoffs := newTestRegistry().DetectKickoffs(m, touches)
	if len(kickoffs) != 1 {
		t.Fatalf("expected 1 kickoff, got %d", len(kickoffs))
	}
	k := kickoffs[0]
	if k.Phase != model.KickoffInitial {
		t.Errorf("phase = %v, want INITIAL", k.Phase)
	}
	if k.StartTimeS != 0 || k.EndTimeS != 0.3 {
		t.Errorf("window = [%v, %v], want [0, 0.3]", k.StartTimeS, k.EndTimeS)
	}
	if k.Outcome != model.OutcomeFirstPossessionBlue {
		t.Errorf("outcome = %v, want FIRST_POSSESSION_BLUE", k.Outcome)
	}
	if len(k.Players) != 4 {
		t.Fatalf("expected 4 kickoff players, got %d", len(k.Players))
	}

	roles := map[string]string{}
	for _, kp := range k.Players {
		roles[kp.PlayerID] = kp.Role
	}
	if roles["blue1"] != "GO" || roles["blue2"] != "BACK" {
		t.Errorf("blue roles = %v", roles)
	}
	if roles["orange1"] != "GO" || roles["orange2"] != "BACK" {
		t.Errorf("orange roles = %v", roles)
	}

	for _, kp := range k.Players {
		switch kp.PlayerID {
		case "blue1":
			if kp.TimeToFirstTouchS != 0.35 {
				t.Errorf("blue1 ttft = %v, want 0.35", kp.TimeToFirstTouchS)
			}
		case "orange2":
			if kp.TimeToFirstTouchS != -1 {
				t.Errorf("orange2 ttft = %v, want -1 for no touch", kp.TimeToFirstTouchS)
			}
		}
	}
}

func TestDetectKickoffs_ContestedIsNeutral(t *testing.T) {
	centered := model.Vec3{}
	m := testMatch([]model.Frame{
		ballFrame(0, centered, model.Vec3{}),
		ballFrame(0.1, centered, model.Vec3{}),
		ballFrame(0.2, model.Vec3{Y: 300}, model.Vec3{Y: 2000}),
	})
	// Both sides touch within the possession window.
	touches := []model.TouchEvent{
		{TimeS: 0.25, PlayerID: "blue1", Team: model.TeamBlue},
		{TimeS: 0.9, PlayerID: "orange1", Team: model.TeamOrange},
	}

	kickoffs := newTestRegistry().DetectKickoffs(m, touches)
	if len(kickoffs) != 1 {
		t.Fatalf("expected 1 kickoff, got %d", len(kickoffs))
	}
	if kickoffs[0].Outcome != model.OutcomeNeutral {
		t.Errorf("outcome = %v, want NEUTRAL", kickoffs[0].Outcome)
	}
}

// ---- Challenge detection ----

func TestDetectChallenges_WinnerAndLoser(t *testing.T) {
	touches := []model.TouchEvent{
		{TimeS: 0, PlayerID: "blue1", Team: model.TeamBlue, Location: model.Vec3{Y: 1000}},
		{TimeS: 0.5, PlayerID: "orange1", Team: model.TeamOrange, Location: model.Vec3{Y: 800}},
		{TimeS: 1.0, PlayerID: "blue1", Team: model.TeamBlue, Location: model.Vec3{}, BallSpeedKPH: 40},
	}

	challenges := newTestRegistry().DetectChallenges(testMatch(nil), touches)
	if len(challenges) != 1 {
		t.Fatalf("expected 1 challenge, got %d", len(challenges))
	}
	c := challenges[0]
	if c.WinnerTeam != model.TeamBlue || c.WinnerID != "blue1" {
		t.Errorf("winner = %v/%s", c.WinnerTeam, c.WinnerID)
	}
	if c.LoserID != "orange1" {
		t.Errorf("loser = %s, want orange1", c.LoserID)
	}
	if c.FirstTouchID != "blue1" {
		t.Errorf("first touch = %s, want blue1", c.FirstTouchID)
	}
	// Decisive touch at Y=0, blue defends -5120: 51.2m from own goal.
	if c.DepthM != 51.2 {
		t.Errorf("depth = %v m, want 51.2", c.DepthM)
	}
	if c.RiskIndex < 0 || c.RiskIndex > 1 {
		t.Errorf("risk index %v out of [0,1]", c.RiskIndex)
	}
}

func TestDetectChallenges_AmbiguousEndingIsNeutral(t *testing.T) {
	touches := []model.TouchEvent{
		{TimeS: 0, PlayerID: "blue1", Team: model.TeamBlue},
		{TimeS: 0.50, PlayerID: "orange1", Team: model.TeamOrange},
		{TimeS: 0.55, PlayerID: "blue1", Team: model.TeamBlue}, // 0.05s after: ambiguous
	}

	challenges := newTestRegistry().DetectChallenges(testMatch(nil), touches)
	if len(challenges) != 1 {
		t.Fatalf("expected 1 challenge, got %d", len(challenges))
	}
	c := challenges[0]
	if c.WinnerTeam != model.TeamUnknown {
		t.Errorf("winner team = %v, want unknown (neutral)", c.WinnerTeam)
	}
	if c.WinnerID != "" || c.LoserID != "" {
		t.Errorf("neutral contest must not name winner/loser: %q/%q", c.WinnerID, c.LoserID)
	}
}

func TestDetectChallenges_SingleTeamRunIgnored(t *testing.T) {
	touches := []model.TouchEvent{
		{TimeS: 0, PlayerID: "blue1", Team: model.TeamBlue},
		{TimeS: 0.5, PlayerID: "blue2", Team: model.TeamBlue},
	}
	if challenges := newTestRegistry().DetectChallenges(testMatch(nil), touches); len(challenges) != 0 {
		t.Errorf("same-team run produced %d challenges", len(challenges))
	}
}

// ---- Timeline assembly ----

func TestAssembleTimeline_DeterministicTieBreak(t *testing.T) {
	ev := &model.EventSet{
		Goals:   []model.GoalEvent{{TimeS: 1.0, Team: model.TeamBlue, ScorerID: "blue1"}},
		Demos:   []model.DemoEvent{{TimeS: 1.0, VictimID: "orange1", VictimTeam: model.TeamOrange}},
		Touches: []model.TouchEvent{
			{TimeS: 1.0, PlayerID: "blue2", Team: model.TeamBlue},
			{TimeS: 1.0, PlayerID: "blue1", Team: model.TeamBlue},
		},
		Kickoffs: []model.KickoffEvent{{StartTimeS: 0}},
	}

	tl := AssembleTimeline(ev)
	wantTypes := []model.EventType{
		model.EventKickoff, model.EventTouch, model.EventTouch, model.EventDemo, model.EventGoal,
	}
	if len(tl) != len(wantTypes) {
		t.Fatalf("timeline length = %d, want %d", len(tl), len(wantTypes))
	}
	for i, w := range wantTypes {
		if tl[i].Type != w {
			t.Errorf("event %d type = %v, want %v", i, tl[i].Type, w)
		}
	}
	// Same time, same type: player id breaks the tie.
	if tl[1].PlayerID != "blue1" || tl[2].PlayerID != "blue2" {
		t.Errorf("touch order = %s, %s; want blue1, blue2", tl[1].PlayerID, tl[2].PlayerID)
	}
}

// ---- Registry orchestration ----

func TestRegistryRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev, err := newTestRegistry().Run(ctx, testMatch(nil))
	if err == nil {
		t.Fatal("expected ctx error")
	}
	if ev == nil {
		t.Fatal("partial event set must still be returned")
	}
}

func TestRegistryRun_EmptyMatch(t *testing.T) {
	ev, err := newTestRegistry().Run(context.Background(), testMatch(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ev.Goals)+len(ev.Demos)+len(ev.Kickoffs)+len(ev.Pickups)+len(ev.Touches)+len(ev.Challenges) != 0 {
		t.Error("empty match produced events")
	}
}
