package americano

import (
	"math"
	"slices"
)

// buildRound fills courts one by one with the cheapest candidate from what is left of the pool.
// It never backtracks; players left over rest this round.
func buildRound(pool []int, courts, groupSize, round int, sc *scorer) ([]placement, []int) {
	remaining := append([]int(nil), pool...)
	slots := min(len(remaining)/groupSize, courts)

	placed := make([]placement, 0, slots)
	for court := 1; court <= slots; court++ {
		best, ok := cheapestPlacement(remaining, groupSize, round, court, sc)
		if !ok {
			break
		}
		placed = append(placed, best)

		taken := best.players()
		remaining = slices.DeleteFunc(remaining, func(p int) bool {
			return slices.Contains(taken, p)
		})
	}

	return placed, remaining
}

// cheapestPlacement keeps the first candidate seen among equal costs.
func cheapestPlacement(pool []int, groupSize, round, court int, sc *scorer) (placement, bool) {
	var (
		best     placement
		bestCost = math.Inf(1)
		found    bool
	)

	for _, group := range candidateGroups(pool, groupSize, sc.src) {
		for _, sp := range splits(group) {
			c := sc.cost(sp, round, court)
			if c < bestCost {
				bestCost = c
				best = placement{court: court, team1: sp.team1, team2: sp.team2}
				found = true
			}
		}
	}

	return best, found
}
