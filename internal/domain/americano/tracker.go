package americano

import "slices"

// neverPlayed is the last-round sentinel for players without a game yet.
const neverPlayed = -1000

// Tracker accumulates pairing history for a single schedule generation. It has exactly one
// writer and is discarded once the schedule is emitted.
type Tracker struct {
	partners  [][]int
	opponents [][]int
	games     []int
	lastRound []int
	courts    [][]int
}

func NewTracker(players int) *Tracker {
	t := &Tracker{
		partners:  newMatrix(players),
		opponents: newMatrix(players),
		games:     make([]int, players),
		lastRound: make([]int, players),
		courts:    make([][]int, players),
	}
	for i := range t.lastRound {
		t.lastRound[i] = neverPlayed
	}
	return t
}

func newMatrix(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

func (t *Tracker) Partners(a, b int) int  { return t.partners[a][b] }
func (t *Tracker) Opponents(a, b int) int { return t.opponents[a][b] }
func (t *Tracker) Games(p int) int        { return t.games[p] }

// MinGames is the fewest games any player has played so far.
func (t *Tracker) MinGames() int {
	if len(t.games) == 0 {
		return 0
	}
	return slices.Min(t.games)
}

// Waiting is the number of rounds p sat out before round.
func (t *Tracker) Waiting(p, round int) int {
	return max(0, round-t.lastRound[p]-1)
}

// LastCourt returns the most recent court p played on.
func (t *Tracker) LastCourt(p int) (int, bool) {
	history := t.courts[p]
	if len(history) == 0 {
		return 0, false
	}
	return history[len(history)-1], true
}

// Commit records a finalized match. Matrix cells are always updated in symmetric pairs.
func (t *Tracker) Commit(round int, m placement) {
	for _, team := range [][]int{m.team1, m.team2} {
		for i := 0; i < len(team); i++ {
			for j := i + 1; j < len(team); j++ {
				t.partners[team[i]][team[j]]++
				t.partners[team[j]][team[i]]++
			}
		}
	}
	for _, a := range m.team1 {
		for _, b := range m.team2 {
			t.opponents[a][b]++
			t.opponents[b][a]++
		}
	}
	for _, p := range m.players() {
		t.games[p]++
		t.lastRound[p] = round
		t.courts[p] = append(t.courts[p], m.court)
	}
}

func (t *Tracker) statistics(ids []string) Statistics {
	stats := Statistics{
		PlayerIDs:      append([]string(nil), ids...),
		PartnerMatrix:  cloneMatrix(t.partners),
		OpponentMatrix: cloneMatrix(t.opponents),
		GamesPlayed:    append([]int(nil), t.games...),
	}
	if len(t.games) > 0 {
		stats.MinGames, stats.MaxGames = t.games[0], t.games[0]
	}
	for _, g := range t.games {
		stats.MinGames = min(stats.MinGames, g)
		stats.MaxGames = max(stats.MaxGames, g)
	}
	for i := range t.partners {
		for j := range t.partners[i] {
			stats.MaxPartnerRepeat = max(stats.MaxPartnerRepeat, t.partners[i][j])
			stats.MaxOpponentRepeat = max(stats.MaxOpponentRepeat, t.opponents[i][j])
		}
	}
	return stats
}

func cloneMatrix(m [][]int) [][]int {
	out := make([][]int, len(m))
	for i := range m {
		out[i] = append([]int(nil), m[i]...)
	}
	return out
}
