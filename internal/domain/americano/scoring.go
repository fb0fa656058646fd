package americano

import "math"

// Cost weights. Lower cost is better.
const (
	partnerWeight        = 100.0
	opponentWeight       = 50.0
	waitWeight           = 30.0
	spreadWeight      = 80.0
	courtRepeatWeight = 10.0
	jitterWeight      = 3.0

	repetitionLimitPenalty = 10000.0
	preferredPairBonus     = 200.0
	avoidedPairPenalty     = 500.0
	courtPreferencePenalty = 40.0
	skillBalanceWeight     = 25.0
	defaultSkill           = 3

	// fairnessWeight is charged per game a player is ahead of the least-played player in the
	// whole roster. It has to outweigh spreadWeight plus any realistic repetition penalty.
	fairnessWeight = 1000.0
)

type scorer struct {
	tracker     *Tracker
	src         *Source
	// jitterScale is the derived seed in units of seedStride.
	jitterScale float64
	skills      []int
	prefs       preferences
	evaluations int
}

// cost scores split sp placed on court in round (0-based).
func (s *scorer) cost(sp split, round, court int) float64 {
	s.evaluations++
	t := s.tracker
	total := 0.0

	for _, team := range [][]int{sp.team1, sp.team2} {
		if len(team) != 2 {
			continue
		}
		a, b := team[0], team[1]
		partnered := t.Partners(a, b)
		total += partnerWeight * float64(partnered)

		if s.prefs.maxRepetitions > 0 && partnered >= s.prefs.maxRepetitions {
			total += repetitionLimitPenalty
		}
		if _, ok := s.prefs.preferred[newPairKey(a, b)]; ok {
			total -= preferredPairBonus
		}
		if _, ok := s.prefs.avoided[newPairKey(a, b)]; ok {
			total += avoidedPairPenalty
		}
	}

	for _, a := range sp.team1 {
		for _, b := range sp.team2 {
			total += opponentWeight * float64(t.Opponents(a, b))
		}
	}

	minGames, maxGames := math.MaxInt, math.MinInt
	for _, p := range sp.team1 {
		total += s.playerCost(p, round, court, &minGames, &maxGames)
	}
	for _, p := range sp.team2 {
		total += s.playerCost(p, round, court, &minGames, &maxGames)
	}

	total += spreadWeight * float64(maxGames-minGames)

	if s.prefs.prioritizeFairness {
		floor := t.MinGames()
		for _, p := range sp.team1 {
			total += fairnessWeight * float64(t.Games(p)-floor)
		}
		for _, p := range sp.team2 {
			total += fairnessWeight * float64(t.Games(p)-floor)
		}
	}

	if s.prefs.balanceSkillLevels {
		diff := s.teamSkill(sp.team1) - s.teamSkill(sp.team2)
		total += skillBalanceWeight * math.Abs(float64(diff))
	}

	// A zero seed adds no jitter; the draw still advances the source.
	total += jitterWeight * s.jitterScale * s.src.Next()

	return total
}

func (s *scorer) playerCost(p, round, court int, minGames, maxGames *int) float64 {
	t := s.tracker
	total := -waitWeight * float64(t.Waiting(p, round))

	games := t.Games(p)
	*minGames = min(*minGames, games)
	*maxGames = max(*maxGames, games)

	if last, ok := t.LastCourt(p); ok && last == court {
		total += courtRepeatWeight
	}
	if preferred, ok := s.prefs.courtByPlayer[p]; ok && preferred != court {
		total += courtPreferencePenalty
	}
	return total
}

func (s *scorer) teamSkill(team []int) int {
	sum := 0
	for _, p := range team {
		skill := s.skills[p]
		if skill <= 0 {
			skill = defaultSkill
		}
		sum += skill
	}
	return sum
}
