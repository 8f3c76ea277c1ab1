// Package normalize converts heterogeneous raw frame records into the
// ordered, zero-based, strongly-typed Frame sequence the detectors consume.
// All duck typing lives here, at the ingestion boundary.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rlstats/go-rl-metrics/internal/config"
	"github.com/rlstats/go-rl-metrics/internal/field"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

const defaultFPS = 30.0

// MeasureFrameRate estimates the sampling rate as the median of inter-frame
// timestamp deltas, which is robust to dropped-frame gaps. Clamped to
// [1, 240]; returns 30 for fewer than two frames.
func MeasureFrameRate(frames []model.Frame) float64 {
	if len(frames) < 2 {
		return defaultFPS
	}
	deltas := make([]float64, 0, len(frames)-1)
	for i := 1; i < len(frames); i++ {
		d := frames[i].TimeS - frames[i-1].TimeS
		if d > 0 {
			deltas = append(deltas, d)
		}
	}
	if len(deltas) == 0 {
		return defaultFPS
	}
	sort.Float64s(deltas)
	med := deltas[len(deltas)/2]
	if len(deltas)%2 == 0 {
		med = (deltas[len(deltas)/2-1] + deltas[len(deltas)/2]) / 2
	}
	fps := 1 / med
	if fps < 1 {
		return 1
	}
	if fps > 240 {
		return 240
	}
	return fps
}

// ToFieldCoords adapts any of the raw coordinate encodings (Vec3, arrays,
// slices, x/y/z maps, json.Number payloads) into a Vec3 clamped to the field
// bounds with a 10% tolerance margin (Z clamped to [-100, 2x ceiling]).
// Non-numeric or unrecognized input yields the origin; it never fails.
func ToFieldCoords(raw any) model.Vec3 {
	v := coerceVec3(raw)
	v.X = clamp(v.X, -field.SideWallX*1.1, field.SideWallX*1.1)
	v.Y = clamp(v.Y, -field.BackWallY*1.1, field.BackWallY*1.1)
	v.Z = clamp(v.Z, -100, 2*field.CeilingZ)
	return v
}

// ToVelocity adapts raw velocity encodings without field clamping.
func ToVelocity(raw any) model.Vec3 {
	return coerceVec3(raw)
}

// ToRotation adapts raw rotation encodings (pitch/yaw/roll maps or
// 3-element arrays) into a Rotation; unrecognized input yields zeros.
func ToRotation(raw any) model.Rotation {
	switch t := raw.(type) {
	case model.Rotation:
		return t
	case *model.Rotation:
		if t != nil {
			return *t
		}
	case map[string]any:
		var r model.Rotation
		if n, ok := num(t["pitch"]); ok {
			r.Pitch = n
		}
		if n, ok := num(t["yaw"]); ok {
			r.Yaw = n
		}
		if n, ok := num(t["roll"]); ok {
			r.Roll = n
		}
		return r
	default:
		v := coerceVec3(raw)
		return model.Rotation{Pitch: v.X, Yaw: v.Y, Roll: v.Z}
	}
	return model.Rotation{}
}

func coerceVec3(raw any) model.Vec3 {
	switch t := raw.(type) {
	case nil:
		return model.Vec3{}
	case model.Vec3:
		return t
	case *model.Vec3:
		if t == nil {
			return model.Vec3{}
		}
		return *t
	case [3]float64:
		return model.Vec3{X: t[0], Y: t[1], Z: t[2]}
	case []float64:
		var v model.Vec3
		if len(t) > 0 {
			v.X = t[0]
		}
		if len(t) > 1 {
			v.Y = t[1]
		}
		if len(t) > 2 {
			v.Z = t[2]
		}
		return v
	case []any:
		var v model.Vec3
		if len(t) > 0 {
			v.X, _ = numOrZero(t[0])
		}
		if len(t) > 1 {
			v.Y, _ = numOrZero(t[1])
		}
		if len(t) > 2 {
			v.Z, _ = numOrZero(t[2])
		}
		return v
	case map[string]any:
		// Missing keys default to 0.
		var v model.Vec3
		if n, ok := num(t["x"]); ok {
			v.X = n
		}
		if n, ok := num(t["y"]); ok {
			v.Y = n
		}
		if n, ok := num(t["z"]); ok {
			v.Z = n
		}
		return v
	case map[string]float64:
		return model.Vec3{X: t["x"], Y: t["y"], Z: t["z"]}
	default:
		return model.Vec3{}
	}
}

func num(raw any) (float64, bool) {
	switch t := raw.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func numOrZero(raw any) (float64, bool) {
	n, ok := num(raw)
	if !ok {
		return 0, false
	}
	return n, true
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizePlayers builds the id->info map: header players keyed by
// platform id (positional player_N when absent), with frame-level ids not
// present in the header added as alias entries pointing back to the header
// id they augment.
func NormalizePlayers(h model.Header, frames []model.RawFrame) map[string]model.PlayerInfo {
	players := make(map[string]model.PlayerInfo, len(h.Players))
	byName := make(map[string]string, len(h.Players))

	for i, hp := range h.Players {
		id := hp.PlatformID
		if id == "" {
			id = fmt.Sprintf("player_%d", i)
		}
		players[id] = model.PlayerInfo{
			ID:         id,
			Name:       hp.Name,
			PlatformID: hp.PlatformID,
			Team:       hp.Team,
		}
		if hp.Name != "" {
			byName[hp.Name] = id
		}
	}

	for _, f := range frames {
		for _, rp := range f.Players {
			if rp.ID == "" {
				continue
			}
			if _, ok := players[rp.ID]; ok {
				continue
			}
			if canonical, ok := byName[rp.Name]; ok {
				players[rp.ID] = model.PlayerInfo{
					ID:       rp.ID,
					Name:     rp.Name,
					Team:     players[canonical].Team,
					AliasFor: canonical,
				}
				continue
			}
			players[rp.ID] = model.PlayerInfo{ID: rp.ID, Name: rp.Name}
		}
	}
	return players
}

// BuildTimeline converts raw frames into the typed, zero-based sequence:
// individually malformed frames are skipped, timestamps are re-based to
// start at 0, and frames beyond the declared match length are trimmed —
// extended by the goal buffer when goal metadata falls past the nominal
// duration so scoring frames are retained.
func BuildTimeline(log zerolog.Logger, thr config.Thresholds, h model.Header, raws []model.RawFrame) []model.Frame {
	frames := make([]model.Frame, 0, len(raws))

	base := math.NaN()
	prev := math.Inf(-1)
	skipped := 0
	for _, rf := range raws {
		if math.IsNaN(rf.TimeS) || math.IsInf(rf.TimeS, 0) {
			skipped++
			continue
		}
		if math.IsNaN(base) {
			base = rf.TimeS
		}
		t := rf.TimeS - base
		if t < prev {
			// Out-of-order record; timestamps must be non-decreasing.
			skipped++
			continue
		}
		prev = t

		f := model.Frame{
			TimeS: t,
			Ball: model.BallFrame{
				Position:        ToFieldCoords(rf.Ball.Position),
				Velocity:        ToVelocity(rf.Ball.Velocity),
				AngularVelocity: ToVelocity(rf.Ball.AngularVelocity),
			},
			Players: make([]model.PlayerFrame, 0, len(rf.Players)),
		}
		for _, rp := range rf.Players {
			if rp.ID == "" {
				skipped++
				continue
			}
			f.Players = append(f.Players, model.PlayerFrame{
				PlayerID:     rp.ID,
				Position:     ToFieldCoords(rp.Position),
				Velocity:     ToVelocity(rp.Velocity),
				Rotation:     ToRotation(rp.Rotation),
				Boost:        clamp(rp.Boost, 0, 100),
				IsOnGround:   rp.OnGround,
				IsSupersonic: rp.Supersonic,
				IsDemolished: rp.Demolished,
			})
		}
		frames = append(frames, f)
	}
	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Msg("dropped malformed frame records")
	}

	if h.MatchLengthS > 0 {
		limit := h.MatchLengthS
		for _, g := range h.Goals {
			if gt := g.TimeS - zeroOr(base); gt > limit {
				limit = gt + thr.GoalTrimBufferS
			}
		}
		trimmed := frames[:0]
		for _, f := range frames {
			if f.TimeS <= limit {
				trimmed = append(trimmed, f)
			}
		}
		frames = trimmed
	}
	return frames
}

func zeroOr(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Normalize runs the full pipeline: identity mapping, timeline build and
// frame-rate estimation, producing the immutable Match.
func Normalize(log zerolog.Logger, thr config.Thresholds, raw *model.RawReplay) *model.Match {
	frames := BuildTimeline(log, thr, raw.Header, raw.Frames)
	return &model.Match{
		ReplayHash: raw.Hash,
		Header:     raw.Header,
		Frames:     frames,
		FPS:        MeasureFrameRate(frames),
		Players:    NormalizePlayers(raw.Header, raw.Frames),
	}
}
