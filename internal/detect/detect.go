// Package detect holds the six event detectors and the timeline assembler.
// Detectors are pure passes over the immutable frame sequence; a Registry
// is constructed explicitly by the caller — there is no process-wide state.
package detect

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rlstats/go-rl-metrics/internal/config"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// Registry bundles the detector tuning and logger. Construct one per
// analysis invocation (or share across replays; it is stateless).
type Registry struct {
	log zerolog.Logger
	thr config.Thresholds
}

// NewRegistry builds a detector registry with the given tuning.
func NewRegistry(log zerolog.Logger, thr config.Thresholds) *Registry {
	return &Registry{log: log, thr: thr}
}

// Run executes every detector in a fixed order and returns the combined
// event set. A panicking detector degrades to an empty list instead of
// aborting the run; ctx is checked between detectors for cooperative
// early exit, returning whatever was computed alongside ctx.Err().
func (r *Registry) Run(ctx context.Context, m *model.Match) (*model.EventSet, error) {
	ev := &model.EventSet{}

	steps := []struct {
		name string
		run  func()
	}{
		{"touch", func() { ev.Touches = r.DetectTouches(m) }},
		{"goal", func() { ev.Goals = r.DetectGoals(m, ev.Touches) }},
		{"demo", func() { ev.Demos = r.DetectDemos(m) }},
		{"boost_pickup", func() { ev.Pickups = r.DetectPickups(m) }},
		{"kickoff", func() { ev.Kickoffs = r.DetectKickoffs(m, ev.Touches) }},
		{"challenge", func() { ev.Challenges = r.DetectChallenges(m, ev.Touches) }},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return ev, err
		}
		r.guard(s.name, s.run)
	}
	return ev, nil
}

// guard isolates a detector failure: the failing detector's output stays at
// its zero/neutral default and the run continues.
func (r *Registry) guard(name string, run func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn().Str("detector", name).Any("panic", rec).
				Msg("detector failed; degrading to empty output")
		}
	}()
	run()
}
