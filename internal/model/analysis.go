package model

// Fixed-schema analyzer results. The zero value of each struct (or its New
// constructor where maps/grids are involved) is the documented zero/neutral
// default returned for empty input or a degraded scope — downstream
// consumers validate against these schemas and never see partial results.

// FundamentalsStats counts core scoreboard events for a scope.
type FundamentalsStats struct {
	Goals       int     `json:"goals"`
	Assists     int     `json:"assists"`
	Shots       int     `json:"shots"`
	Saves       int     `json:"saves"`
	Demos       int     `json:"demos"`
	Score       float64 `json:"score"`
	ShootingPct float64 `json:"shooting_percentage"`
}

// BoostStats covers boost economy for a scope.
type BoostStats struct {
	BPM               float64 `json:"bpm"`
	BCPM              float64 `json:"bcpm"`
	AmountCollected   float64 `json:"amount_collected"`
	AmountStolen      float64 `json:"amount_stolen"`
	BigPads           int     `json:"big_pads"`
	SmallPads         int     `json:"small_pads"`
	AvgBoost          float64 `json:"avg_boost"`
	TimeZeroBoostS    float64 `json:"time_zero_boost_s"`
	TimeHundredBoostS float64 `json:"time_hundred_boost_s"`
	Overfill          float64 `json:"overfill"`
	Waste             float64 `json:"waste"`
}

// MovementStats covers speed, height and travel for a scope.
type MovementStats struct {
	TimeSlowS       float64 `json:"time_slow_s"`
	TimeBoostSpeedS float64 `json:"time_boost_speed_s"`
	TimeSupersonicS float64 `json:"time_supersonic_s"`
	TimeGroundS     float64 `json:"time_ground_s"`
	TimeLowAirS     float64 `json:"time_low_air_s"`
	TimeHighAirS    float64 `json:"time_high_air_s"`
	DistanceKM      float64 `json:"distance_km"`
	AvgSpeedKPH     float64 `json:"avg_speed_kph"`
	PowerslideCount int     `json:"powerslide_count"`
	PowerslideTimeS float64 `json:"powerslide_time_s"`
	AerialCount     int     `json:"aerial_count"`
	AerialTimeS     float64 `json:"aerial_time_s"`
}

// PositioningStats covers possession, halves and passing for a scope.
type PositioningStats struct {
	PossessionTimeS    float64 `json:"possession_time_s"`
	TimeOffensiveHalfS float64 `json:"time_offensive_half_s"`
	TimeDefensiveHalfS float64 `json:"time_defensive_half_s"`
	Passes             int     `json:"passes"`
	PassesReceived     int     `json:"passes_received"`
	GiveAndGos         int     `json:"give_and_gos"`
}

// ChallengeStats covers contested-possession outcomes for a scope.
type ChallengeStats struct {
	Contests       int     `json:"contests"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	Neutral        int     `json:"neutral"`
	FirstToBallPct float64 `json:"first_to_ball_pct"`
	AvgDepthM      float64 `json:"avg_depth_m"`
	AvgRiskIndex   float64 `json:"avg_risk_index"`
}

// KickoffStats covers kickoff involvement for a scope. Approaches always
// carries the full taxonomy key set.
type KickoffStats struct {
	Count                int            `json:"count"`
	FirstPossession      int            `json:"first_possession"`
	Neutral              int            `json:"neutral"`
	GoalsFor             int            `json:"goals_for"`
	GoalsAgainst         int            `json:"goals_against"`
	AvgTimeToFirstTouchS float64        `json:"avg_time_to_first_touch_s"`
	Approaches           map[string]int `json:"approaches"`
}

// NewKickoffStats returns the zero/neutral kickoff result with every
// approach-taxonomy key present.
func NewKickoffStats() KickoffStats {
	approaches := make(map[string]int, len(KickoffApproaches()))
	for _, a := range KickoffApproaches() {
		approaches[string(a)] = 0
	}
	return KickoffStats{Approaches: approaches}
}

// HeatmapStats holds fixed-resolution grids binned over the field extent,
// indexed [row][col] with rows spanning Y and cols spanning X.
type HeatmapStats struct {
	Cols      int         `json:"cols"`
	Rows      int         `json:"rows"`
	Occupancy [][]float64 `json:"occupancy"`
	Touches   [][]float64 `json:"touches"`
	Pickups   [][]float64 `json:"pickups"`
}

// NewHeatmapStats returns zeroed grids of the given resolution.
func NewHeatmapStats(cols, rows int) HeatmapStats {
	grid := func() [][]float64 {
		g := make([][]float64, rows)
		for i := range g {
			g[i] = make([]float64, cols)
		}
		return g
	}
	return HeatmapStats{Cols: cols, Rows: rows, Occupancy: grid(), Touches: grid(), Pickups: grid()}
}

// PlayerAnalysis is the complete fixed-schema result for one player.
type PlayerAnalysis struct {
	PlayerID     string            `json:"player_id"`
	Name         string            `json:"name"`
	Team         Team              `json:"team"`
	Fundamentals FundamentalsStats `json:"fundamentals"`
	Boost        BoostStats        `json:"boost"`
	Movement     MovementStats     `json:"movement"`
	Positioning  PositioningStats  `json:"positioning"`
	Challenges   ChallengeStats    `json:"challenges"`
	Kickoffs     KickoffStats      `json:"kickoffs"`
	Heatmaps     HeatmapStats      `json:"heatmaps"`
}

// TeamAnalysis is the complete fixed-schema result for one team.
type TeamAnalysis struct {
	Team         Team              `json:"team"`
	Fundamentals FundamentalsStats `json:"fundamentals"`
	Boost        BoostStats        `json:"boost"`
	Movement     MovementStats     `json:"movement"`
	Positioning  PositioningStats  `json:"positioning"`
	Challenges   ChallengeStats    `json:"challenges"`
	Kickoffs     KickoffStats      `json:"kickoffs"`
	Heatmaps     HeatmapStats      `json:"heatmaps"`
}

// AnalysisReport is the assembled output for one replay: per-category event
// lists, the merged timeline, and per-player/per-team dictionaries.
type AnalysisReport struct {
	ReplayHash string           `json:"replay_hash"`
	MapName    string           `json:"map_name"`
	Events     EventSet         `json:"events"`
	Timeline   []TimelineEvent  `json:"timeline"`
	Players    []PlayerAnalysis `json:"players"` // sorted by player id
	Teams      []TeamAnalysis   `json:"teams"`   // blue then orange
}

// MatchSummary is a lightweight record for list/show commands.
type MatchSummary struct {
	ReplayHash   string
	RunID        string
	MapName      string
	AnalyzedAt   string
	PlaylistID   int
	TeamSize     int
	BlueScore    int
	OrangeScore  int
	MatchLengthS float64
	FPS          float64
}
