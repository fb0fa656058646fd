package americano

import (
	"fmt"
	"strings"
)

// Generate builds a complete schedule or fails without producing partial output.
// Identical requests always yield identical schedules, and so do requests whose
// RegenerateCount differs by a multiple of VariantCount.
func Generate(req Request) (Schedule, error) {
	prep, err := prepare(req)
	if err != nil {
		return Schedule{}, err
	}
	format, ids := prep.format, prep.ids

	breaks := make(map[int]struct{}, len(req.Options.BreakRounds))
	for _, r := range req.Options.BreakRounds {
		breaks[r] = struct{}{}
	}

	seed := DeriveSeed(req.Options.RegenerateCount, req.Options.EventID)
	tracker := NewTracker(len(ids))
	sc := &scorer{
		tracker:     tracker,
		src:         NewSource(seed),
		jitterScale: float64(seed) / seedStride,
		skills:      prep.skills,
		prefs:       prep.prefs,
	}

	pool := make([]int, len(ids))
	for i := range pool {
		pool[i] = i
	}

	rounds := make([]Round, 0, req.Rounds)
	totalMatches := 0
	for r := 0; r < req.Rounds; r++ {
		if _, isBreak := breaks[r+1]; isBreak {
			rounds = append(rounds, Round{
				Index:   r + 1,
				Matches: []Match{},
				Resting: []string{},
				IsBreak: true,
			})
			continue
		}

		placed, resting := buildRound(pool, req.Courts, format.GroupSize(), r, sc)

		round := Round{
			Index:   r + 1,
			Matches: make([]Match, 0, len(placed)),
			Resting: make([]string, 0, len(resting)),
		}
		for _, p := range placed {
			tracker.Commit(r, p)
			round.Matches = append(round.Matches, Match{
				Court: p.court,
				Team1: idsOf(ids, p.team1),
				Team2: idsOf(ids, p.team2),
			})
		}
		for _, p := range resting {
			round.Resting = append(round.Resting, ids[p])
		}

		totalMatches += len(round.Matches)
		rounds = append(rounds, round)
	}

	stats := tracker.statistics(ids)
	stats.TotalMatches = totalMatches
	stats.Evaluations = sc.evaluations
	stats.Seed = seed
	stats.Variant = Variant(req.Options.RegenerateCount)
	stats.RegenerateCount = req.Options.RegenerateCount

	return Schedule{
		Format: format,
		Courts: req.Courts,
		Rounds: rounds,
		Stats:  stats,
	}, nil
}

// Validate reports the error Generate would return for req without building anything.
func Validate(req Request) error {
	_, err := prepare(req)
	return err
}

type plan struct {
	format Format
	ids    []string
	skills []int
	prefs  preferences
}

func prepare(req Request) (plan, error) {
	format := req.Format.normalize()
	if !format.valid() {
		return plan{}, fmt.Errorf("%w: unknown format %q", ErrInvalidOptions, req.Format)
	}

	roster := eligiblePlayers(req.Players, req.Sport)
	if err := validate(req, format, roster); err != nil {
		return plan{}, err
	}

	p := plan{
		format: format,
		ids:    make([]string, len(roster)),
		skills: make([]int, len(roster)),
	}
	indexByID := make(map[string]int, len(roster))
	for i, player := range roster {
		p.ids[i] = player.ID
		p.skills[i] = player.Skill
		indexByID[player.ID] = i
	}

	prefs, err := compilePreferences(req.Options.Advanced, indexByID, req.Courts)
	if err != nil {
		return plan{}, err
	}
	p.prefs = prefs
	return p, nil
}

// MaxEvaluationsPerRound is the scoring bound per round for the given format and court count.
func MaxEvaluationsPerRound(format Format, courts int) int {
	return courts * maxCandidates * len(splits(make([]int, format.GroupSize())))
}

func eligiblePlayers(players []Player, sport string) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		if p.EligibleFor(sport) {
			p.ID = strings.TrimSpace(p.ID)
			out = append(out, p)
		}
	}
	return out
}

func validate(req Request, format Format, roster []Player) error {
	if len(roster) < format.GroupSize() {
		return fmt.Errorf("%w: %s needs at least %d players, got %d", ErrTooFewPlayers, format, format.GroupSize(), len(roster))
	}
	if req.Courts < 1 {
		return fmt.Errorf("%w: need at least 1 court, got %d", ErrTooFewCourts, req.Courts)
	}
	if req.Rounds < 1 {
		return fmt.Errorf("%w: need at least 1 round, got %d", ErrTooFewRounds, req.Rounds)
	}

	seen := make(map[string]struct{}, len(roster))
	for i, p := range roster {
		if p.ID == "" {
			return fmt.Errorf("%w: player at position %d has no id", ErrInvalidOptions, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	if req.Options.RegenerateCount < 0 {
		return fmt.Errorf("%w: regenerateCount must be >= 0, got %d", ErrInvalidOptions, req.Options.RegenerateCount)
	}

	breaks := make(map[int]struct{}, len(req.Options.BreakRounds))
	for _, r := range req.Options.BreakRounds {
		if r < 1 || r > req.Rounds {
			return fmt.Errorf("%w: break round %d outside 1..%d", ErrInvalidOptions, r, req.Rounds)
		}
		breaks[r] = struct{}{}
	}
	if len(breaks) >= req.Rounds {
		return fmt.Errorf("%w: every round is a break", ErrInvalidOptions)
	}

	return nil
}

func idsOf(ids []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, p := range idx {
		out[i] = ids[p]
	}
	return out
}
