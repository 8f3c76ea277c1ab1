package detect

import (
	"sort"

	"github.com/rlstats/go-rl-metrics/internal/model"
)

// typeRank is the fixed tie-break order for events sharing a timestamp.
var typeRank = map[model.EventType]int{
	model.EventKickoff:   0,
	model.EventTouch:     1,
	model.EventPickup:    2,
	model.EventChallenge: 3,
	model.EventDemo:      4,
	model.EventGoal:      5,
}

// AssembleTimeline merges every event list into one chronological sequence.
// Ties break by event type rank, then player id, so repeated runs over
// identical input always produce identical sequences.
func AssembleTimeline(ev *model.EventSet) []model.TimelineEvent {
	var tl []model.TimelineEvent

	for _, k := range ev.Kickoffs {
		tl = append(tl, model.TimelineEvent{TimeS: k.StartTimeS, Type: model.EventKickoff})
	}
	for _, t := range ev.Touches {
		tl = append(tl, model.TimelineEvent{TimeS: t.TimeS, Type: model.EventTouch, PlayerID: t.PlayerID, Team: t.Team})
	}
	for _, p := range ev.Pickups {
		tl = append(tl, model.TimelineEvent{TimeS: p.TimeS, Type: model.EventPickup, PlayerID: p.PlayerID})
	}
	for _, c := range ev.Challenges {
		tl = append(tl, model.TimelineEvent{TimeS: c.EndTimeS, Type: model.EventChallenge, PlayerID: c.WinnerID, Team: c.WinnerTeam})
	}
	for _, d := range ev.Demos {
		tl = append(tl, model.TimelineEvent{TimeS: d.TimeS, Type: model.EventDemo, PlayerID: d.VictimID, Team: d.VictimTeam})
	}
	for _, g := range ev.Goals {
		tl = append(tl, model.TimelineEvent{TimeS: g.TimeS, Type: model.EventGoal, PlayerID: g.ScorerID, Team: g.Team})
	}

	sort.SliceStable(tl, func(i, j int) bool {
		if tl[i].TimeS != tl[j].TimeS {
			return tl[i].TimeS < tl[j].TimeS
		}
		if typeRank[tl[i].Type] != typeRank[tl[j].Type] {
			return typeRank[tl[i].Type] < typeRank[tl[j].Type]
		}
		return tl[i].PlayerID < tl[j].PlayerID
	})
	return tl
}
