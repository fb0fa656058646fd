package americano

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// Ranking points per match.
const (
	WinPoints  = 3
	DrawPoints = 1
	LossPoints = 0
)

// StandingEntry is one row of the live table. Position is 1-based.
type StandingEntry struct {
	Position      int      `json:"position"`
	PlayerID      string   `json:"playerId"`
	Name          string   `json:"name"`
	Played        int      `json:"played"`
	Won           int      `json:"won"`
	Lost          int      `json:"lost"`
	Drawn         int      `json:"drawn"`
	PointsFor     int      `json:"pointsFor"`
	PointsAgainst int      `json:"pointsAgainst"`
	Points        int      `json:"points"`
	Partners      []string `json:"partners"`
	Opponents     []string `json:"opponents"`
}

func (e StandingEntry) PointDifference() int {
	return e.PointsFor - e.PointsAgainst
}

// Table is the ranked projection of a schedule and its results.
type Table struct {
	Entries []StandingEntry `json:"entries"`
	// SkippedReferences counts match slots naming players missing from the roster.
	SkippedReferences int `json:"skippedReferences"`
}

type standingAccumulator struct {
	entry     StandingEntry
	order     int
	partners  map[string]struct{}
	opponents map[string]struct{}
}

// ComputeStandings folds every completed result into a fresh table. It never mutates its inputs
// and ignores result keys that do not address a match in the schedule.
func ComputeStandings(players []Player, schedule Schedule, results Results) Table {
	rows := make(map[string]*standingAccumulator, len(players))
	for i, p := range players {
		if _, dup := rows[p.ID]; dup {
			continue
		}
		rows[p.ID] = &standingAccumulator{
			entry:     StandingEntry{PlayerID: p.ID, Name: p.Name},
			order:     i,
			partners:  make(map[string]struct{}),
			opponents: make(map[string]struct{}),
		}
	}

	skipped := 0
	for ri, round := range schedule.Rounds {
		if round.IsBreak {
			continue
		}
		for mi, match := range round.Matches {
			result, ok := results[ResultKey(ri, mi)]
			if !ok || !result.IsCompleted() {
				continue
			}
			skipped += applyTeam(rows, match.Team1, match.Team2, result.Team1Score, result.Team2Score)
			skipped += applyTeam(rows, match.Team2, match.Team1, result.Team2Score, result.Team1Score)
		}
	}

	ordered := lo.Values(rows)
	slices.SortFunc(ordered, func(a, b *standingAccumulator) int {
		if c := cmp.Compare(b.entry.Points, a.entry.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.entry.PointDifference(), a.entry.PointDifference()); c != 0 {
			return c
		}
		if c := cmp.Compare(b.entry.PointsFor, a.entry.PointsFor); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})

	entries := make([]StandingEntry, 0, len(ordered))
	for i, acc := range ordered {
		entry := acc.entry
		entry.Position = i + 1
		entry.Partners = sortedNames(acc.partners)
		entry.Opponents = sortedNames(acc.opponents)
		entries = append(entries, entry)
	}

	return Table{Entries: entries, SkippedReferences: skipped}
}

// applyTeam credits one side of a match and returns how many unknown player ids it skipped.
func applyTeam(rows map[string]*standingAccumulator, team, opponents []string, scored, conceded int) int {
	skipped := 0
	for _, id := range team {
		acc, ok := rows[id]
		if !ok {
			skipped++
			continue
		}

		acc.entry.Played++
		acc.entry.PointsFor += scored
		acc.entry.PointsAgainst += conceded
		switch {
		case scored > conceded:
			acc.entry.Won++
			acc.entry.Points += WinPoints
		case scored == conceded:
			acc.entry.Drawn++
			acc.entry.Points += DrawPoints
		default:
			acc.entry.Lost++
			acc.entry.Points += LossPoints
		}

		for _, mate := range team {
			if other, ok := rows[mate]; ok && mate != id {
				acc.partners[other.entry.Name] = struct{}{}
			}
		}
		for _, opp := range opponents {
			if other, ok := rows[opp]; ok {
				acc.opponents[other.entry.Name] = struct{}{}
			}
		}
	}
	return skipped
}

func sortedNames(set map[string]struct{}) []string {
	names := lo.Keys(set)
	slices.Sort(names)
	return names
}
