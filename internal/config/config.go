// Package config consolidates every heuristic threshold the detectors and
// analyzers use into one versioned object, so golden-test tolerances stay
// auditable and tunable independently of detection logic.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ThresholdsVersion identifies the tuning generation baked into Default.
const ThresholdsVersion = 1

// ScoreWeights is the fixed weighting behind the fundamentals score.
type ScoreWeights struct {
	Goal   float64 `mapstructure:"goal"`
	Assist float64 `mapstructure:"assist"`
	Save   float64 `mapstructure:"save"`
	Shot   float64 `mapstructure:"shot"`
	Demo   float64 `mapstructure:"demo"`
}

// Thresholds is the versioned tuning object passed to every detector and
// analyzer. All distances are unreal units, speeds uu/s unless noted.
type Thresholds struct {
	Version int `mapstructure:"version"`

	// Touch detection.
	TouchRadiusUU   float64 `mapstructure:"touch_radius_uu"`
	ShotSpeedKPH    float64 `mapstructure:"shot_speed_kph"`
	DribbleSpeedKPH float64 `mapstructure:"dribble_speed_kph"`

	// Goal detection.
	GoalEpsilonUU     float64 `mapstructure:"goal_epsilon_uu"`
	GoalScorerLookbackS float64 `mapstructure:"goal_scorer_lookback_s"`
	GoalTrimBufferS   float64 `mapstructure:"goal_trim_buffer_s"`

	// Demolition attribution.
	DemoAttackerRadiusUU float64 `mapstructure:"demo_attacker_radius_uu"`

	// Kickoff windows.
	KickoffCenterRadiusUU  float64 `mapstructure:"kickoff_center_radius_uu"`
	KickoffBallSpeedFloor  float64 `mapstructure:"kickoff_ball_speed_floor"`
	KickoffMinFrames       int     `mapstructure:"kickoff_min_frames"`
	KickoffPossessionS     float64 `mapstructure:"kickoff_possession_s"`
	KickoffGoalWindowS     float64 `mapstructure:"kickoff_goal_window_s"`
	RegulationLengthS      float64 `mapstructure:"regulation_length_s"`

	// Boost pickup matching and merging.
	PadSnapBigUU     float64 `mapstructure:"pad_snap_big_uu"`
	PadSnapSmallUU   float64 `mapstructure:"pad_snap_small_uu"`
	PickupMergeS     float64 `mapstructure:"pickup_merge_s"`

	// Challenge contests.
	ChallengeWindowS   float64 `mapstructure:"challenge_window_s"`
	ChallengeNeutralS  float64 `mapstructure:"challenge_neutral_s"`

	// Movement buckets and hysteresis.
	BoostSpeedFloorUU    float64 `mapstructure:"boost_speed_floor_uu"`
	SupersonicEnterUU    float64 `mapstructure:"supersonic_enter_uu"`
	SupersonicExitUU     float64 `mapstructure:"supersonic_exit_uu"`
	GroundZUU            float64 `mapstructure:"ground_z_uu"`
	HighAirZUU           float64 `mapstructure:"high_air_z_uu"`
	AerialMinDurationS   float64 `mapstructure:"aerial_min_duration_s"`
	PowerslideYawRateRad float64 `mapstructure:"powerslide_yaw_rate_rad"`

	// Passing and possession.
	PassWindowS          float64 `mapstructure:"pass_window_s"`
	PassMaxDistUU        float64 `mapstructure:"pass_max_dist_uu"`
	ForwardProgressTolUU float64 `mapstructure:"forward_progress_tol_uu"`
	AssistWindowS        float64 `mapstructure:"assist_window_s"`

	// Heatmap resolution.
	HeatmapCols int `mapstructure:"heatmap_cols"`
	HeatmapRows int `mapstructure:"heatmap_rows"`

	Score ScoreWeights `mapstructure:"score"`
}

// Default returns the v1 tuning.
func Default() Thresholds {
	return Thresholds{
		Version: ThresholdsVersion,

		TouchRadiusUU:   300,
		ShotSpeedKPH:    30,
		DribbleSpeedKPH: 10,

		GoalEpsilonUU:       80,
		GoalScorerLookbackS: 3,
		GoalTrimBufferS:     3,

		DemoAttackerRadiusUU: 500,

		KickoffCenterRadiusUU: 120,
		KickoffBallSpeedFloor: 10,
		KickoffMinFrames:      2,
		KickoffPossessionS:    1.5,
		KickoffGoalWindowS:    10,
		RegulationLengthS:     300,

		PadSnapBigUU:   250,
		PadSnapSmallUU: 400,
		PickupMergeS:   0.5,

		ChallengeWindowS:  1.5,
		ChallengeNeutralS: 0.1,

		BoostSpeedFloorUU:    1410,
		SupersonicEnterUU:    2200,
		SupersonicExitUU:     2100,
		GroundZUU:            300,
		HighAirZUU:           840,
		AerialMinDurationS:   0.4,
		PowerslideYawRateRad: 2.5,

		PassWindowS:          3,
		PassMaxDistUU:        4000,
		ForwardProgressTolUU: 160,
		AssistWindowS:        2,

		HeatmapCols: 16,
		HeatmapRows: 20,

		Score: ScoreWeights{Goal: 100, Assist: 50, Save: 50, Shot: 20, Demo: 25},
	}
}

// Load reads a thresholds file (yaml/toml/json by extension) over the
// defaults. An empty path returns Default unchanged.
func Load(path string) (Thresholds, error) {
	thr := Default()
	if path == "" {
		return thr, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return thr, fmt.Errorf("read thresholds: %w", err)
	}
	if err := v.Unmarshal(&thr); err != nil {
		return thr, fmt.Errorf("unmarshal thresholds: %w", err)
	}
	if thr.Version != ThresholdsVersion {
		return thr, fmt.Errorf("unsupported thresholds version %d (want %d)", thr.Version, ThresholdsVersion)
	}
	return thr, nil
}
