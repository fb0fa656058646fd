package httpapi

import (
	"time"

	"github.com/riskibarqy/americano/internal/domain/americano"
	"github.com/riskibarqy/americano/internal/domain/tournament"
	"github.com/riskibarqy/americano/internal/usecase"
	"github.com/samber/lo"
)

type playerRequest struct {
	ID     string   `json:"id" validate:"required,max=64"`
	Name   string   `json:"name" validate:"omitempty,max=120"`
	Skill  int      `json:"skill" validate:"omitempty,min=1,max=5"`
	Sports []string `json:"sports" validate:"omitempty,dive,required,max=40"`
}

type pairingRequest struct {
	A string `json:"a" validate:"required"`
	B string `json:"b" validate:"required,nefield=A"`
}

type advancedOptionsRequest struct {
	MaxRepetitions     int              `json:"max_repetitions" validate:"min=0"`
	PreferredPairings  []pairingRequest `json:"preferred_pairings" validate:"omitempty,dive"`
	AvoidedPairings    []pairingRequest `json:"avoided_pairings" validate:"omitempty,dive"`
	CourtPreferences   map[string]int   `json:"court_preferences" validate:"omitempty,dive,keys,required,endkeys,min=1"`
	BalanceSkillLevels bool             `json:"balance_skill_levels"`
	PrioritizeFairness bool             `json:"prioritize_fairness"`
}

type createTournamentRequest struct {
	Name        string                  `json:"name" validate:"required,max=120"`
	Players     []playerRequest         `json:"players" validate:"required,min=2,max=256,dive"`
	Courts      int                     `json:"courts" validate:"required,min=1,max=64"`
	Rounds      int                     `json:"rounds" validate:"required,min=1,max=200"`
	Format      string                  `json:"format" validate:"omitempty,oneof=doubles singles"`
	Sport       string                  `json:"sport" validate:"omitempty,max=40"`
	EventID     string                  `json:"event_id" validate:"omitempty,max=120"`
	BreakRounds []int                   `json:"break_rounds" validate:"omitempty,dive,min=1"`
	Advanced    *advancedOptionsRequest `json:"advanced"`
}

type recordResultRequest struct {
	Team1Score *int  `json:"team1_score" validate:"required,min=0"`
	Team2Score *int  `json:"team2_score" validate:"required,min=0"`
	Completed  *bool `json:"completed"`
}

func (r createTournamentRequest) toInput() usecase.CreateTournamentInput {
	input := usecase.CreateTournamentInput{
		Name: r.Name,
		Players: lo.Map(r.Players, func(p playerRequest, _ int) americano.Player {
			return americano.Player{ID: p.ID, Name: p.Name, Skill: p.Skill, Sports: p.Sports}
		}),
		Courts: r.Courts,
		Rounds: r.Rounds,
		Format: americano.Format(r.Format),
		Sport:  r.Sport,
		Options: americano.Options{
			EventID:     r.EventID,
			BreakRounds: r.BreakRounds,
		},
	}
	if adv := r.Advanced; adv != nil {
		input.Options.Advanced = americano.AdvancedOptions{
			MaxRepetitions:     adv.MaxRepetitions,
			PreferredPairings:  toPairings(adv.PreferredPairings),
			AvoidedPairings:    toPairings(adv.AvoidedPairings),
			CourtPreferences:   adv.CourtPreferences,
			BalanceSkillLevels: adv.BalanceSkillLevels,
			PrioritizeFairness: adv.PrioritizeFairness,
		}
	}
	return input
}

func toPairings(items []pairingRequest) []americano.Pairing {
	return lo.Map(items, func(p pairingRequest, _ int) americano.Pairing {
		return americano.Pairing{A: p.A, B: p.B}
	})
}

func (r recordResultRequest) toResult() americano.MatchResult {
	completed := true
	if r.Completed != nil {
		completed = *r.Completed
	}
	return americano.MatchResult{
		Team1Score: *r.Team1Score,
		Team2Score: *r.Team2Score,
		Completed:  completed,
	}
}

type playerDTO struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Skill  int      `json:"skill,omitempty"`
	Sports []string `json:"sports,omitempty"`
}

type pairingDTO struct {
	A string `json:"a"`
	B string `json:"b"`
}

type advancedOptionsDTO struct {
	MaxRepetitions     int            `json:"max_repetitions"`
	PreferredPairings  []pairingDTO   `json:"preferred_pairings"`
	AvoidedPairings    []pairingDTO   `json:"avoided_pairings"`
	CourtPreferences   map[string]int `json:"court_preferences"`
	BalanceSkillLevels bool           `json:"balance_skill_levels"`
	PrioritizeFairness bool           `json:"prioritize_fairness"`
}

type tournamentDTO struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Players         []playerDTO        `json:"players"`
	Courts          int                `json:"courts"`
	Rounds          int                `json:"rounds"`
	Format          string             `json:"format"`
	Sport           string             `json:"sport,omitempty"`
	EventID         string             `json:"event_id,omitempty"`
	BreakRounds     []int              `json:"break_rounds"`
	Advanced        advancedOptionsDTO `json:"advanced"`
	RegenerateCount int                `json:"regenerate_count"`
	Variant         int                `json:"variant"`
	Schedule        *scheduleDTO       `json:"schedule"`
	Version         int64              `json:"version"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
}

type tournamentSummaryDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Players     int    `json:"players"`
	Courts      int    `json:"courts"`
	Rounds      int    `json:"rounds"`
	Format      string `json:"format"`
	HasSchedule bool   `json:"has_schedule"`
	Results     int    `json:"results"`
	UpdatedAt   string `json:"updated_at"`
}

type resultDTO struct {
	Team1Score int  `json:"team1_score"`
	Team2Score int  `json:"team2_score"`
	Completed  bool `json:"completed"`
}

type matchDTO struct {
	Index  int        `json:"index"`
	Court  int        `json:"court"`
	Team1  []string   `json:"team1"`
	Team2  []string   `json:"team2"`
	Result *resultDTO `json:"result"`
}

type roundDTO struct {
	Index   int        `json:"index"`
	IsBreak bool       `json:"is_break"`
	Matches []matchDTO `json:"matches"`
	Resting []string   `json:"resting"`
}

type statsDTO struct {
	PlayerIDs         []string `json:"player_ids"`
	PartnerMatrix     [][]int  `json:"partner_matrix"`
	OpponentMatrix    [][]int  `json:"opponent_matrix"`
	GamesPlayed       []int    `json:"games_played"`
	MinGames          int      `json:"min_games"`
	MaxGames          int      `json:"max_games"`
	MaxPartnerRepeat  int      `json:"max_partner_repeat"`
	MaxOpponentRepeat int      `json:"max_opponent_repeat"`
	TotalMatches      int      `json:"total_matches"`
	Evaluations       int      `json:"evaluations"`
	Seed              int64    `json:"seed"`
	Variant           int      `json:"variant"`
	RegenerateCount   int      `json:"regenerate_count"`
}

type scheduleDTO struct {
	Format string     `json:"format"`
	Courts int        `json:"courts"`
	Rounds []roundDTO `json:"rounds"`
	Stats  statsDTO   `json:"stats"`
}

type standingDTO struct {
	Position        int      `json:"position"`
	PlayerID        string   `json:"player_id"`
	Name            string   `json:"name"`
	Played          int      `json:"played"`
	Won             int      `json:"won"`
	Drawn           int      `json:"drawn"`
	Lost            int      `json:"lost"`
	PointsFor       int      `json:"points_for"`
	PointsAgainst   int      `json:"points_against"`
	PointDifference int      `json:"point_difference"`
	Points          int      `json:"points"`
	Partners        []string `json:"partners"`
	Opponents       []string `json:"opponents"`
}

type standingsDTO struct {
	Entries           []standingDTO `json:"entries"`
	SkippedReferences int           `json:"skipped_references"`
}

type variantPreviewDTO struct {
	RegenerateCount   int   `json:"regenerate_count"`
	Variant           int   `json:"variant"`
	Seed              int64 `json:"seed"`
	Current           bool  `json:"current"`
	TotalMatches      int   `json:"total_matches"`
	MinGames          int   `json:"min_games"`
	MaxGames          int   `json:"max_games"`
	MaxPartnerRepeat  int   `json:"max_partner_repeat"`
	MaxOpponentRepeat int   `json:"max_opponent_repeat"`
	Evaluations       int   `json:"evaluations"`
	DurationMs        int64 `json:"duration_ms"`
}

func tournamentToDTO(item tournament.Tournament) tournamentDTO {
	adv := item.Options.Advanced
	out := tournamentDTO{
		ID:   item.ID,
		Name: item.Name,
		Players: lo.Map(item.Players, func(p americano.Player, _ int) playerDTO {
			return playerDTO{ID: p.ID, Name: p.Name, Skill: p.Skill, Sports: p.Sports}
		}),
		Courts:      item.Courts,
		Rounds:      item.Rounds,
		Format:      string(item.Format),
		Sport:       item.Sport,
		EventID:     item.Options.EventID,
		BreakRounds: nonNil(item.Options.BreakRounds),
		Advanced: advancedOptionsDTO{
			MaxRepetitions:     adv.MaxRepetitions,
			PreferredPairings:  pairingsToDTO(adv.PreferredPairings),
			AvoidedPairings:    pairingsToDTO(adv.AvoidedPairings),
			CourtPreferences:   adv.CourtPreferences,
			BalanceSkillLevels: adv.BalanceSkillLevels,
			PrioritizeFairness: adv.PrioritizeFairness,
		},
		RegenerateCount: item.Options.RegenerateCount,
		Variant:         americano.Variant(item.Options.RegenerateCount),
		Version:         item.Version,
		CreatedAt:       formatTime(item.CreatedAt),
		UpdatedAt:       formatTime(item.UpdatedAt),
	}
	if out.Advanced.CourtPreferences == nil {
		out.Advanced.CourtPreferences = map[string]int{}
	}
	if item.Schedule != nil {
		schedule := scheduleToDTO(*item.Schedule, item.Results)
		out.Schedule = &schedule
	}
	return out
}

func tournamentToSummaryDTO(item tournament.Tournament) tournamentSummaryDTO {
	return tournamentSummaryDTO{
		ID:          item.ID,
		Name:        item.Name,
		Players:     len(item.Players),
		Courts:      item.Courts,
		Rounds:      item.Rounds,
		Format:      string(item.Format),
		HasSchedule: item.HasSchedule(),
		Results:     len(item.Results),
		UpdatedAt:   formatTime(item.UpdatedAt),
	}
}

func pairingsToDTO(items []americano.Pairing) []pairingDTO {
	return lo.Map(nonNil(items), func(p americano.Pairing, _ int) pairingDTO {
		return pairingDTO{A: p.A, B: p.B}
	})
}

func scheduleToDTO(schedule americano.Schedule, results americano.Results) scheduleDTO {
	rounds := make([]roundDTO, 0, len(schedule.Rounds))
	for ri, r := range schedule.Rounds {
		matches := make([]matchDTO, 0, len(r.Matches))
		for mi, m := range r.Matches {
			dto := matchDTO{Index: mi, Court: m.Court, Team1: m.Team1, Team2: m.Team2}
			if res, ok := results[americano.ResultKey(ri, mi)]; ok {
				dto.Result = &resultDTO{Team1Score: res.Team1Score, Team2Score: res.Team2Score, Completed: res.IsCompleted()}
			}
			matches = append(matches, dto)
		}
		rounds = append(rounds, roundDTO{
			Index:   r.Index,
			IsBreak: r.IsBreak,
			Matches: matches,
			Resting: nonNil(r.Resting),
		})
	}

	st := schedule.Stats
	return scheduleDTO{
		Format: string(schedule.Format),
		Courts: schedule.Courts,
		Rounds: rounds,
		Stats: statsDTO{
			PlayerIDs:         st.PlayerIDs,
			PartnerMatrix:     st.PartnerMatrix,
			OpponentMatrix:    st.OpponentMatrix,
			GamesPlayed:       st.GamesPlayed,
			MinGames:          st.MinGames,
			MaxGames:          st.MaxGames,
			MaxPartnerRepeat:  st.MaxPartnerRepeat,
			MaxOpponentRepeat: st.MaxOpponentRepeat,
			TotalMatches:      st.TotalMatches,
			Evaluations:       st.Evaluations,
			Seed:              st.Seed,
			Variant:           st.Variant,
			RegenerateCount:   st.RegenerateCount,
		},
	}
}

func standingsToDTO(table americano.Table) standingsDTO {
	return standingsDTO{
		Entries: lo.Map(table.Entries, func(e americano.StandingEntry, _ int) standingDTO {
			return standingDTO{
				Position:        e.Position,
				PlayerID:        e.PlayerID,
				Name:            e.Name,
				Played:          e.Played,
				Won:             e.Won,
				Drawn:           e.Drawn,
				Lost:            e.Lost,
				PointsFor:       e.PointsFor,
				PointsAgainst:   e.PointsAgainst,
				PointDifference: e.PointDifference(),
				Points:          e.Points,
				Partners:        nonNil(e.Partners),
				Opponents:       nonNil(e.Opponents),
			}
		}),
		SkippedReferences: table.SkippedReferences,
	}
}

func previewToDTO(p usecase.VariantPreview, _ int) variantPreviewDTO {
	return variantPreviewDTO{
		RegenerateCount:   p.RegenerateCount,
		Variant:           p.Variant,
		Seed:              p.Seed,
		Current:           p.Current,
		TotalMatches:      p.TotalMatches,
		MinGames:          p.MinGames,
		MaxGames:          p.MaxGames,
		MaxPartnerRepeat:  p.MaxPartnerRepeat,
		MaxOpponentRepeat: p.MaxOpponentRepeat,
		Evaluations:       p.Evaluations,
		DurationMs:        p.DurationMs,
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
