package detect

import (
	"github.com/rlstats/go-rl-metrics/internal/model"
)

// DetectDemos tracks each player's alive/demolished state frame-to-frame
// and emits one DemoEvent per alive->demolished transition. The attacker is
// the nearest opposing player within the attribution radius in the frame
// immediately preceding the transition; with no qualifying opponent the
// attacker stays unset.
func (r *Registry) DetectDemos(m *model.Match) []model.DemoEvent {
	var demos []model.DemoEvent
	demolished := make(map[string]bool)

	for i := range m.Frames {
		f := &m.Frames[i]
		for j := range f.Players {
			p := &f.Players[j]
			id := m.Resolve(p.PlayerID)
			was := demolished[id]
			demolished[id] = p.IsDemolished
			if !p.IsDemolished || was {
				continue
			}

			ev := model.DemoEvent{
				TimeS:      f.TimeS,
				VictimID:   id,
				VictimTeam: m.TeamOf(id),
			}
			if i > 0 {
				if attacker, ok := r.nearestOpponent(m, &m.Frames[i-1], id, ev.VictimTeam); ok {
					ev.AttackerID = attacker
					ev.AttackerTeam = ev.VictimTeam.Opponent()
				}
			}
			demos = append(demos, ev)
		}
	}
	return demos
}

func (r *Registry) nearestOpponent(m *model.Match, f *model.Frame, victimID string, victimTeam model.Team) (string, bool) {
	victim, ok := f.Player(victimID)
	if !ok {
		// The victim may appear under an alias id in this frame.
		for i := range f.Players {
			if m.Resolve(f.Players[i].PlayerID) == victimID {
				victim = &f.Players[i]
				ok = true
				break
			}
		}
		if !ok {
			return "", false
		}
	}

	best := ""
	bestDist := r.thr.DemoAttackerRadiusUU
	for i := range f.Players {
		p := &f.Players[i]
		id := m.Resolve(p.PlayerID)
		if id == victimID || p.IsDemolished {
			continue
		}
		if m.TeamOf(id) == victimTeam || m.TeamOf(id) == model.TeamUnknown {
			continue
		}
		if d := p.Position.Dist(victim.Position); d <= bestDist {
			best, bestDist = id, d
		}
	}
	return best, best != ""
}
