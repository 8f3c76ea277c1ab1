package analysis

import (
	"github.com/rlstats/go-rl-metrics/internal/field"
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// Heatmaps bins occupancy seconds, touch counts and pickup counts over the
// field extent at the fixed grid resolution. Player and team scopes bin car
// positions; the match scope bins the ball.
func (a *Analyzer) Heatmaps(m *model.Match, ev *model.EventSet, s Scope) model.HeatmapStats {
	out := model.NewHeatmapStats(a.thr.HeatmapCols, a.thr.HeatmapRows)

	bin := func(grid [][]float64, pos model.Vec3, v float64) {
		col := int((pos.X + field.SideWallX) / field.FieldWidthUU * float64(out.Cols))
		row := int((pos.Y + field.BackWallY) / field.FieldLengthUU * float64(out.Rows))
		if col < 0 {
			col = 0
		}
		if col >= out.Cols {
			col = out.Cols - 1
		}
		if row < 0 {
			row = 0
		}
		if row >= out.Rows {
			row = out.Rows - 1
		}
		grid[row][col] += v
	}

	for i := 0; i+1 < len(m.Frames); i++ {
		f := &m.Frames[i]
		dt := m.Frames[i+1].TimeS - f.TimeS
		if dt <= 0 {
			continue
		}
		if s.Kind == ScopeMatch {
			bin(out.Occupancy, f.Ball.Position, dt)
			continue
		}
		for j := range f.Players {
			p := &f.Players[j]
			if !s.includesPlayer(m, m.Resolve(p.PlayerID)) || p.IsDemolished {
				continue
			}
			bin(out.Occupancy, p.Position, dt)
		}
	}

	for _, t := range ev.Touches {
		if s.includesPlayer(m, t.PlayerID) {
			bin(out.Touches, t.Location, 1)
		}
	}
	for _, p := range ev.Pickups {
		if s.includesPlayer(m, p.PlayerID) {
			bin(out.Pickups, p.Location, 1)
		}
	}
	return out
}
