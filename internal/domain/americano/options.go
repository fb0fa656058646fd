package americano

import (
	"fmt"
	"strings"
)

// Request carries everything Generate needs. The roster order is significant: it fixes candidate
// generation order and the axes of the statistics matrices.
type Request struct {
	Players []Player
	Courts  int
	Rounds  int
	Format  Format
	// Sport filters the roster by Player.EligibleFor when set.
	Sport   string
	Options Options
}

type Options struct {
	// RegenerateCount selects one of four deterministic variants (RegenerateCount mod 4).
	RegenerateCount int `json:"regenerateCount"`
	// EventID only perturbs the seed.
	EventID string `json:"eventId,omitempty"`
	// BreakRounds lists 1-based rounds that are pauses without matches.
	BreakRounds []int           `json:"breakRounds,omitempty"`
	Advanced    AdvancedOptions `json:"advanced"`
}

// AdvancedOptions are optional score terms. The zero value leaves the cost untouched.
type AdvancedOptions struct {
	// MaxRepetitions caps how often the same partners may be paired. Zero means unlimited.
	MaxRepetitions     int            `json:"maxRepetitions,omitempty"`
	PreferredPairings  []Pairing      `json:"preferredPairings,omitempty"`
	AvoidedPairings    []Pairing      `json:"avoidedPairings,omitempty"`
	CourtPreferences   map[string]int `json:"courtPreferences,omitempty"`
	BalanceSkillLevels bool           `json:"balanceSkillLevels,omitempty"`
	PrioritizeFairness bool           `json:"prioritizeFairness,omitempty"`
}

type Pairing struct {
	A string `json:"a"`
	B string `json:"b"`
}

type pairKey struct {
	a, b int
}

func newPairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// preferences is AdvancedOptions resolved against roster indices.
type preferences struct {
	maxRepetitions     int
	preferred          map[pairKey]struct{}
	avoided            map[pairKey]struct{}
	courtByPlayer      map[int]int
	balanceSkillLevels bool
	prioritizeFairness bool
}

func compilePreferences(opts AdvancedOptions, indexByID map[string]int, courts int) (preferences, error) {
	if opts.MaxRepetitions < 0 {
		return preferences{}, fmt.Errorf("%w: maxRepetitions must be >= 0, got %d", ErrInvalidOptions, opts.MaxRepetitions)
	}

	prefs := preferences{
		maxRepetitions:     opts.MaxRepetitions,
		balanceSkillLevels: opts.BalanceSkillLevels,
		prioritizeFairness: opts.PrioritizeFairness,
	}

	var err error
	if prefs.preferred, err = compilePairings("preferredPairings", opts.PreferredPairings, indexByID); err != nil {
		return preferences{}, err
	}
	if prefs.avoided, err = compilePairings("avoidedPairings", opts.AvoidedPairings, indexByID); err != nil {
		return preferences{}, err
	}

	if len(opts.CourtPreferences) > 0 {
		prefs.courtByPlayer = make(map[int]int, len(opts.CourtPreferences))
		for id, court := range opts.CourtPreferences {
			idx, ok := indexByID[strings.TrimSpace(id)]
			if !ok {
				return preferences{}, fmt.Errorf("%w: courtPreferences references unknown player %q", ErrInvalidOptions, id)
			}
			if court < 1 || court > courts {
				return preferences{}, fmt.Errorf("%w: court preference for %q must be within 1..%d, got %d", ErrInvalidOptions, id, courts, court)
			}
			prefs.courtByPlayer[idx] = court
		}
	}

	return prefs, nil
}

func compilePairings(field string, pairings []Pairing, indexByID map[string]int) (map[pairKey]struct{}, error) {
	if len(pairings) == 0 {
		return nil, nil
	}

	out := make(map[pairKey]struct{}, len(pairings))
	for _, p := range pairings {
		a, okA := indexByID[strings.TrimSpace(p.A)]
		b, okB := indexByID[strings.TrimSpace(p.B)]
		if !okA || !okB {
			return nil, fmt.Errorf("%w: %s references unknown player in pair %q/%q", ErrInvalidOptions, field, p.A, p.B)
		}
		if a == b {
			return nil, fmt.Errorf("%w: %s pairs player %q with itself", ErrInvalidOptions, field, p.A)
		}
		out[newPairKey(a, b)] = struct{}{}
	}
	return out, nil
}
