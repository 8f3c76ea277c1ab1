package model

import (
	"math"
	"sort"
)

// Team represents which side a player is on.
type Team int

const (
	TeamUnknown Team = 0
	TeamBlue    Team = 1
	TeamOrange  Team = 2
)

func (t Team) String() string {
	switch t {
	case TeamBlue:
		return "BLUE"
	case TeamOrange:
		return "ORANGE"
	default:
		return "?"
	}
}

// Opponent returns the opposing team, or TeamUnknown for TeamUnknown.
func (t Team) Opponent() Team {
	switch t {
	case TeamBlue:
		return TeamOrange
	case TeamOrange:
		return TeamBlue
	default:
		return TeamUnknown
	}
}

// AttackSign is the Y direction the team shoots toward: +1 for blue
// (orange goal at +Y), -1 for orange.
func (t Team) AttackSign() float64 {
	switch t {
	case TeamBlue:
		return 1
	case TeamOrange:
		return -1
	default:
		return 0
	}
}

// Vec3 is a 3D position or velocity in unreal units (1 uu = 1 cm).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Norm is the vector magnitude.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Norm2D is the magnitude of the XY projection.
func (v Vec3) Norm2D() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Dist is the distance to o.
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Norm() }

// Dist2D is the XY-plane distance to o.
func (v Vec3) Dist2D(o Vec3) float64 { return v.Sub(o).Norm2D() }

// Rotation holds car orientation in radians.
type Rotation struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// BallFrame is the ball's physical state at one frame.
type BallFrame struct {
	Position        Vec3 `json:"position"`
	Velocity        Vec3 `json:"velocity"`
	AngularVelocity Vec3 `json:"angular_velocity"`
}

// PlayerFrame is one player's physical state at one frame.
type PlayerFrame struct {
	PlayerID     string   `json:"player_id"`
	Position     Vec3     `json:"position"`
	Velocity     Vec3     `json:"velocity"`
	Rotation     Rotation `json:"rotation"`
	Boost        float64  `json:"boost"` // always in [0, 100]
	IsOnGround   bool     `json:"is_on_ground"`
	IsSupersonic bool     `json:"is_supersonic"`
	IsDemolished bool     `json:"is_demolished"`
}

// Frame is one timestamped snapshot of ball and player state. Frames are
// immutable once the normalizer has produced them.
type Frame struct {
	TimeS   float64       `json:"time_s"`
	Ball    BallFrame     `json:"ball"`
	Players []PlayerFrame `json:"players"`
}

// Player returns the frame entry for the given player id, if present.
func (f *Frame) Player(id string) (*PlayerFrame, bool) {
	for i := range f.Players {
		if f.Players[i].PlayerID == id {
			return &f.Players[i], true
		}
	}
	return nil, false
}

// HeaderPlayer is one roster entry from the replay header.
type HeaderPlayer struct {
	Name       string `json:"name"`
	PlatformID string `json:"platform_id"`
	Team       Team   `json:"team"`
}

// GoalMarker is an optional header hint that a goal occurs at a given time.
type GoalMarker struct {
	TimeS      float64 `json:"time_s"`
	PlayerName string  `json:"player_name"`
	Team       Team    `json:"team"`
}

// Header holds the static per-match facts supplied by the external parser.
type Header struct {
	MapName      string         `json:"map_name"`
	PlaylistID   int            `json:"playlist_id"`
	TeamSize     int            `json:"team_size"`
	BlueScore    int            `json:"blue_score"`
	OrangeScore  int            `json:"orange_score"`
	MatchLengthS float64        `json:"match_length_s"`
	Players      []HeaderPlayer `json:"players"`
	Goals        []GoalMarker   `json:"goals,omitempty"`
}

// PlayerInfo is one normalized identity. AliasFor is non-empty for entries
// that map a frame-level id back onto the header id it augments.
type PlayerInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PlatformID string `json:"platform_id"`
	Team       Team   `json:"team"`
	AliasFor   string `json:"alias_for,omitempty"`
}

// Match is the normalized, immutable input to detection and analysis.
type Match struct {
	ReplayHash string
	Header     Header
	Frames     []Frame
	FPS        float64
	Players    map[string]PlayerInfo
}

// DurationS is the elapsed time covered by the frame list.
func (m *Match) DurationS() float64 {
	if len(m.Frames) == 0 {
		return 0
	}
	return m.Frames[len(m.Frames)-1].TimeS
}

// Resolve maps a frame-level id through any alias to its canonical id.
func (m *Match) Resolve(id string) string {
	if info, ok := m.Players[id]; ok && info.AliasFor != "" {
		return info.AliasFor
	}
	return id
}

// TeamOf returns the team of the (canonical or alias) player id.
func (m *Match) TeamOf(id string) Team {
	if info, ok := m.Players[m.Resolve(id)]; ok {
		return info.Team
	}
	return TeamUnknown
}

// PlayerIDs returns the canonical (non-alias) player ids in sorted order.
func (m *Match) PlayerIDs() []string {
	ids := make([]string, 0, len(m.Players))
	for id, info := range m.Players {
		if info.AliasFor == "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ---- Raw records supplied by the external parser ----

// RawBall carries loosely-typed ball state; coordinate fields accept any of
// the encodings ToFieldCoords understands.
type RawBall struct {
	Position        any `json:"position"`
	Velocity        any `json:"velocity"`
	AngularVelocity any `json:"angular_velocity"`
}

// RawPlayer carries loosely-typed per-player state for one frame.
type RawPlayer struct {
	ID         string  `json:"id"`
	Name       string  `json:"name,omitempty"`
	Position   any     `json:"position"`
	Velocity   any     `json:"velocity"`
	Rotation   any     `json:"rotation"`
	Boost      float64 `json:"boost"`
	OnGround   bool    `json:"on_ground"`
	Supersonic bool    `json:"supersonic"`
	Demolished bool    `json:"demolished"`
}

// RawFrame is one pre-normalization frame record. TimeS is NaN when the
// record carried no usable timestamp.
type RawFrame struct {
	TimeS   float64
	Ball    RawBall
	Players []RawPlayer
}

// RawReplay is the full external-parser output for one replay.
type RawReplay struct {
	Hash   string
	Header Header
	Frames []RawFrame
}

// ---- Event variants ----

// GoalEvent records a ball crossing a goal line. ScorerID is empty when no
// recent toucher could be attributed.
type GoalEvent struct {
	TimeS        float64 `json:"time_s"`
	Team         Team    `json:"team"`
	ScorerID     string  `json:"scorer_id,omitempty"`
	ShotSpeedKPH float64 `json:"shot_speed_kph,omitempty"`
}

// DemoEvent records a demolition. AttackerID is empty when no opponent was
// within the attribution radius.
type DemoEvent struct {
	TimeS        float64 `json:"time_s"`
	VictimID     string  `json:"victim_id"`
	AttackerID   string  `json:"attacker_id,omitempty"`
	VictimTeam   Team    `json:"victim_team"`
	AttackerTeam Team    `json:"attacker_team"`
}

// KickoffPhase distinguishes regulation kickoffs from overtime ones.
type KickoffPhase string

const (
	KickoffInitial KickoffPhase = "INITIAL"
	KickoffOT      KickoffPhase = "OT"
)

// KickoffApproach is the fixed taxonomy of kickoff approach types.
type KickoffApproach string

const (
	ApproachSpeedflip         KickoffApproach = "SPEEDFLIP"
	ApproachStandardFrontflip KickoffApproach = "STANDARD_FRONTFLIP"
	ApproachStandardDiagonal  KickoffApproach = "STANDARD_DIAGONAL"
	ApproachStandardWavedash  KickoffApproach = "STANDARD_WAVEDASH"
	ApproachStandardBoost     KickoffApproach = "STANDARD_BOOST"
	ApproachStandard          KickoffApproach = "STANDARD"
	ApproachDelay             KickoffApproach = "DELAY"
	ApproachFakeStationary    KickoffApproach = "FAKE_STATIONARY"
	ApproachFakeHalfflip      KickoffApproach = "FAKE_HALFFLIP"
	ApproachFakeAggressive    KickoffApproach = "FAKE_AGGRESSIVE"
	ApproachUnknown           KickoffApproach = "UNKNOWN"
)

// KickoffApproaches lists the taxonomy in its fixed reporting order.
func KickoffApproaches() []KickoffApproach {
	return []KickoffApproach{
		ApproachSpeedflip, ApproachStandardFrontflip, ApproachStandardDiagonal,
		ApproachStandardWavedash, ApproachStandardBoost, ApproachStandard,
		ApproachDelay, ApproachFakeStationary, ApproachFakeHalfflip,
		ApproachFakeAggressive, ApproachUnknown,
	}
}

// KickoffOutcome records which side's touch established first possession.
type KickoffOutcome string

const (
	OutcomeFirstPossessionBlue   KickoffOutcome = "FIRST_POSSESSION_BLUE"
	OutcomeFirstPossessionOrange KickoffOutcome = "FIRST_POSSESSION_ORANGE"
	OutcomeNeutral               KickoffOutcome = "NEUTRAL"
)

// FirstPossessionOutcome returns the outcome value for the given team.
func FirstPossessionOutcome(t Team) KickoffOutcome {
	switch t {
	case TeamBlue:
		return OutcomeFirstPossessionBlue
	case TeamOrange:
		return OutcomeFirstPossessionOrange
	default:
		return OutcomeNeutral
	}
}

// KickoffPlayer is one player's involvement in a kickoff.
type KickoffPlayer struct {
	PlayerID          string          `json:"player_id"`
	Team              Team            `json:"team"`
	Role              string          `json:"role"` // GO or BACK
	BoostUsed         float64         `json:"boost_used"`
	TimeToFirstTouchS float64         `json:"time_to_first_touch_s"` // -1 when no touch
	Approach          KickoffApproach `json:"approach"`
}

// KickoffEvent records one kickoff window and its resolution.
type KickoffEvent struct {
	Phase      KickoffPhase    `json:"phase"`
	StartTimeS float64         `json:"start_time_s"`
	EndTimeS   float64         `json:"end_time_s"`
	Players    []KickoffPlayer `json:"players"`
	Outcome    KickoffOutcome  `json:"outcome"`
}

// PadType distinguishes big (100-unit) from small (12-unit) pads.
type PadType string

const (
	PadBig   PadType = "BIG"
	PadSmall PadType = "SMALL"
)

// BoostPickupEvent records one (possibly merged) boost pickup. PadID is -1
// when no canonical pad lies within the snap tolerance.
type BoostPickupEvent struct {
	TimeS       float64 `json:"time_s"`
	PlayerID    string  `json:"player_id"`
	PadID       int     `json:"pad_id"`
	PadType     PadType `json:"pad_type"`
	Stolen      bool    `json:"stolen"`
	BoostBefore float64 `json:"boost_before"`
	BoostAfter  float64 `json:"boost_after"`
	BoostGain   float64 `json:"boost_gain"`
	Location    Vec3    `json:"location"`
}

// TouchOutcome classifies a touch by the ball's resulting speed.
type TouchOutcome string

const (
	TouchShot    TouchOutcome = "SHOT"
	TouchDribble TouchOutcome = "DRIBBLE"
	TouchGeneric TouchOutcome = "TOUCH"
)

// TouchEvent records one player-ball proximity sample.
type TouchEvent struct {
	TimeS        float64      `json:"time_s"`
	PlayerID     string       `json:"player_id"`
	Team         Team         `json:"team"`
	Location     Vec3         `json:"location"`
	BallSpeedKPH float64      `json:"ball_speed_kph"`
	Outcome      TouchOutcome `json:"outcome"`
}

// ChallengeEvent records one contested-possession window. WinnerTeam is
// TeamUnknown for neutral (ambiguous) endings.
type ChallengeEvent struct {
	StartTimeS   float64 `json:"start_time_s"`
	EndTimeS     float64 `json:"end_time_s"`
	WinnerTeam   Team    `json:"winner_team"`
	WinnerID     string  `json:"winner_id,omitempty"`
	LoserID      string  `json:"loser_id,omitempty"`
	FirstTouchID string  `json:"first_touch_id"`
	DepthM       float64 `json:"depth_m"`
	RiskIndex    float64 `json:"risk_index"` // bounded to [0, 1]
}

// EventSet groups every detector's output for one replay.
type EventSet struct {
	Goals      []GoalEvent        `json:"goals"`
	Demos      []DemoEvent        `json:"demos"`
	Kickoffs   []KickoffEvent     `json:"kickoffs"`
	Pickups    []BoostPickupEvent `json:"boost_pickups"`
	Touches    []TouchEvent       `json:"touches"`
	Challenges []ChallengeEvent   `json:"challenges"`
}

// EventType tags timeline entries. The declaration order is the fixed
// tie-break order for events sharing a timestamp.
type EventType string

const (
	EventKickoff   EventType = "KICKOFF"
	EventTouch     EventType = "TOUCH"
	EventPickup    EventType = "BOOST_PICKUP"
	EventChallenge EventType = "CHALLENGE"
	EventDemo      EventType = "DEMO"
	EventGoal      EventType = "GOAL"
)

// TimelineEvent is the type-tagged projection used for chronological merge.
type TimelineEvent struct {
	TimeS    float64   `json:"time_s"`
	Type     EventType `json:"type"`
	PlayerID string    `json:"player_id,omitempty"`
	Team     Team      `json:"team"`
}
