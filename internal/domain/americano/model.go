package americano

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Format selects how many players form a team.
type Format string

const (
	FormatDoubles Format = "doubles"
	FormatSingles Format = "singles"
)

func (f Format) normalize() Format {
	if f == "" {
		return FormatDoubles
	}
	return f
}

func (f Format) valid() bool {
	switch f.normalize() {
	case FormatDoubles, FormatSingles:
		return true
	default:
		return false
	}
}

// TeamSize is the number of players on each side of a match.
func (f Format) TeamSize() int {
	if f.normalize() == FormatSingles {
		return 1
	}
	return 2
}

// GroupSize is the number of players one court consumes.
func (f Format) GroupSize() int {
	return 2 * f.TeamSize()
}

// Player is a roster entry owned by the caller. Skill is 1-5, zero when unknown.
// An empty Sports list means the player is eligible for every sport.
type Player struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Skill  int      `json:"skill,omitempty"`
	Sports []string `json:"sports,omitempty"`
}

func (p Player) EligibleFor(sport string) bool {
	sport = strings.TrimSpace(sport)
	if sport == "" || len(p.Sports) == 0 {
		return true
	}
	return slices.ContainsFunc(p.Sports, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), sport)
	})
}

type Match struct {
	Court int      `json:"court"`
	Team1 []string `json:"team1"`
	Team2 []string `json:"team2"`
}

func (m Match) PlayerIDs() []string {
	out := make([]string, 0, len(m.Team1)+len(m.Team2))
	out = append(out, m.Team1...)
	return append(out, m.Team2...)
}

// Round is one time slot of the schedule. Index is 1-based.
type Round struct {
	Index   int      `json:"index"`
	Matches []Match  `json:"matches"`
	Resting []string `json:"resting"`
	IsBreak bool     `json:"isBreak,omitempty"`
}

// Statistics summarizes a generated schedule. Matrix rows and columns follow PlayerIDs.
type Statistics struct {
	PlayerIDs         []string `json:"playerIds"`
	PartnerMatrix     [][]int  `json:"partnerMatrix"`
	OpponentMatrix    [][]int  `json:"opponentMatrix"`
	GamesPlayed       []int    `json:"gamesPlayed"`
	MinGames          int      `json:"minGames"`
	MaxGames          int      `json:"maxGames"`
	MaxPartnerRepeat  int      `json:"maxPartnerRepeat"`
	MaxOpponentRepeat int      `json:"maxOpponentRepeat"`
	TotalMatches      int      `json:"totalMatches"`
	Evaluations       int      `json:"evaluations"`
	Seed              int64    `json:"seed"`
	Variant           int      `json:"variant"`
	RegenerateCount   int      `json:"regenerateCount"`
}

// Schedule is produced atomically by Generate and never mutated afterwards.
type Schedule struct {
	Format Format     `json:"format"`
	Courts int        `json:"courts"`
	Rounds []Round    `json:"rounds"`
	Stats  Statistics `json:"stats"`
}

// Match returns the match at the given 0-based positions.
func (s Schedule) Match(roundIndex, matchIndex int) (Match, bool) {
	if roundIndex < 0 || roundIndex >= len(s.Rounds) {
		return Match{}, false
	}
	matches := s.Rounds[roundIndex].Matches
	if matchIndex < 0 || matchIndex >= len(matches) {
		return Match{}, false
	}
	return matches[matchIndex], true
}

type MatchResult struct {
	Team1Score int  `json:"team1Score"`
	Team2Score int  `json:"team2Score"`
	Completed  bool `json:"completed"`
}

// IsCompleted treats any non-zero score as played, so an unflagged 0:0 counts as not yet played.
func (r MatchResult) IsCompleted() bool {
	return r.Completed || r.Team1Score != 0 || r.Team2Score != 0
}

// Results is keyed by ResultKey.
type Results map[string]MatchResult

// ResultKey builds the "<round>-<match>" key from 0-based positions in the schedule.
func ResultKey(roundIndex, matchIndex int) string {
	return strconv.Itoa(roundIndex) + "-" + strconv.Itoa(matchIndex)
}

func ParseResultKey(key string) (int, int, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(key), "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid result key %q, expected <round>-<match>", key)
	}
	roundIndex, err := strconv.Atoi(left)
	if err != nil || roundIndex < 0 {
		return 0, 0, fmt.Errorf("invalid round index in result key %q", key)
	}
	matchIndex, err := strconv.Atoi(right)
	if err != nil || matchIndex < 0 {
		return 0, 0, fmt.Errorf("invalid match index in result key %q", key)
	}
	return roundIndex, matchIndex, nil
}

// Clone returns a copy that can be modified without touching r.
func (r Results) Clone() Results {
	out := make(Results, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
