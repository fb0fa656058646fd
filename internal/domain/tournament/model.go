package tournament

import (
	"maps"
	"slices"
	"time"

	"github.com/riskibarqy/americano/internal/domain/americano"
)

// Tournament is one Americano event: its roster, the current schedule and the results recorded
// against it.
type Tournament struct {
	ID        string
	Name      string
	Players   []americano.Player
	Courts    int
	Rounds    int
	Format    americano.Format
	Sport     string
	Options   americano.Options
	Schedule  *americano.Schedule
	Results   americano.Results
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Request builds the engine input from the stored configuration.
func (t Tournament) Request() americano.Request {
	return americano.Request{
		Players: t.Players,
		Courts:  t.Courts,
		Rounds:  t.Rounds,
		Format:  t.Format,
		Sport:   t.Sport,
		Options: t.Options,
	}
}

func (t Tournament) HasSchedule() bool {
	return t.Schedule != nil
}

// Clone returns a deep copy so callers can mutate it without touching stored state.
func (t Tournament) Clone() Tournament {
	out := t
	out.Players = make([]americano.Player, len(t.Players))
	for i, p := range t.Players {
		p.Sports = slices.Clone(p.Sports)
		out.Players[i] = p
	}
	out.Options.BreakRounds = slices.Clone(t.Options.BreakRounds)
	out.Options.Advanced.PreferredPairings = slices.Clone(t.Options.Advanced.PreferredPairings)
	out.Options.Advanced.AvoidedPairings = slices.Clone(t.Options.Advanced.AvoidedPairings)
	out.Options.Advanced.CourtPreferences = maps.Clone(t.Options.Advanced.CourtPreferences)
	if t.Results != nil {
		out.Results = t.Results.Clone()
	}
	if t.Schedule != nil {
		schedule := cloneSchedule(*t.Schedule)
		out.Schedule = &schedule
	}
	return out
}

func cloneSchedule(s americano.Schedule) americano.Schedule {
	out := s
	out.Rounds = make([]americano.Round, len(s.Rounds))
	for i, r := range s.Rounds {
		matches := make([]americano.Match, len(r.Matches))
		for j, m := range r.Matches {
			matches[j] = americano.Match{
				Court: m.Court,
				Team1: slices.Clone(m.Team1),
				Team2: slices.Clone(m.Team2),
			}
		}
		r.Matches = matches
		r.Resting = slices.Clone(r.Resting)
		out.Rounds[i] = r
	}
	out.Stats.PlayerIDs = slices.Clone(s.Stats.PlayerIDs)
	out.Stats.PartnerMatrix = cloneMatrix(s.Stats.PartnerMatrix)
	out.Stats.OpponentMatrix = cloneMatrix(s.Stats.OpponentMatrix)
	out.Stats.GamesPlayed = slices.Clone(s.Stats.GamesPlayed)
	return out
}

func cloneMatrix(m [][]int) [][]int {
	if m == nil {
		return nil
	}
	out := make([][]int, len(m))
	for i, row := range m {
		out[i] = slices.Clone(row)
	}
	return out
}
