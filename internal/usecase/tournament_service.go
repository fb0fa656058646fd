package usecase

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/americano/internal/domain/americano"
	"github.com/riskibarqy/americano/internal/domain/tournament"
	"github.com/riskibarqy/americano/internal/platform/cache"
	idgen "github.com/riskibarqy/americano/internal/platform/id"
	"github.com/riskibarqy/americano/internal/platform/logging"
	"github.com/samber/lo"
)

// GenerationRecorder receives one observation per engine run.
type GenerationRecorder interface {
	ObserveGeneration(operation string, elapsed time.Duration, stats americano.Statistics, err error)
}

type noopRecorder struct{}

func (noopRecorder) ObserveGeneration(string, time.Duration, americano.Statistics, error) {}

// CreateTournamentInput is the incoming payload for a new tournament.
type CreateTournamentInput struct {
	Name    string
	Players []americano.Player
	Courts  int
	Rounds  int
	Format  americano.Format
	Sport   string
	Options americano.Options
}

type TournamentService struct {
	repo           tournament.Repository
	idGen          idgen.Generator
	schedules      *cache.Store[americano.Schedule]
	recorder       GenerationRecorder
	previewWorkers int
	logger         *logging.Logger
	now            func() time.Time
}

// NewTournamentService wires the service. schedules and recorder are optional; a nil schedules
// store disables memoization of engine runs.
func NewTournamentService(
	repo tournament.Repository,
	idGen idgen.Generator,
	schedules *cache.Store[americano.Schedule],
	recorder GenerationRecorder,
	previewWorkers int,
	logger *logging.Logger,
) *TournamentService {
	if logger == nil {
		logger = logging.Default()
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if previewWorkers < 1 {
		previewWorkers = 1
	}

	return &TournamentService{
		repo:           repo,
		idGen:          idGen,
		schedules:      schedules,
		recorder:       recorder,
		previewWorkers: previewWorkers,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.CreateTournament")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.Sport = strings.TrimSpace(input.Sport)
	input.Options.EventID = strings.TrimSpace(input.Options.EventID)
	if input.Name == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament name is required", ErrInvalidInput)
	}
	if input.Format == "" {
		input.Format = americano.FormatDoubles
	}

	players := make([]americano.Player, 0, len(input.Players))
	for _, p := range input.Players {
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			p.Name = p.ID
		}
		players = append(players, p)
	}
	input.Players = players

	req := americano.Request{
		Players: input.Players,
		Courts:  input.Courts,
		Rounds:  input.Rounds,
		Format:  input.Format,
		Sport:   input.Sport,
		Options: input.Options,
	}
	if err := americano.Validate(req); err != nil {
		return tournament.Tournament{}, engineError(err)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("generate tournament id: %w", err)
	}

	now := s.now().UTC()
	item := tournament.Tournament{
		ID:        id,
		Name:      input.Name,
		Players:   input.Players,
		Courts:    input.Courts,
		Rounds:    input.Rounds,
		Format:    input.Format,
		Sport:     input.Sport,
		Options:   input.Options,
		Results:   americano.Results{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return tournament.Tournament{}, repositoryError("create tournament", err)
	}

	s.logger.InfoContext(ctx, "tournament created",
		"tournament_id", item.ID,
		"players", len(item.Players),
		"courts", item.Courts,
		"rounds", item.Rounds,
		"format", string(item.Format),
	)
	return item, nil
}

func (s *TournamentService) GetTournament(ctx context.Context, id string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.GetTournament")
	defer span.End()

	return s.load(ctx, id)
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ListTournaments")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, repositoryError("list tournaments", err)
	}
	return items, nil
}

// GenerateSchedule builds the schedule for the stored regenerate counter and discards any
// results recorded against the previous schedule.
func (s *TournamentService) GenerateSchedule(ctx context.Context, id string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.GenerateSchedule")
	defer span.End()

	return s.generate(ctx, id, false)
}

// RegenerateSchedule advances the regenerate counter, moving to the next of the four variants.
func (s *TournamentService) RegenerateSchedule(ctx context.Context, id string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.RegenerateSchedule")
	defer span.End()

	return s.generate(ctx, id, true)
}

func (s *TournamentService) generate(ctx context.Context, id string, advance bool) (tournament.Tournament, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return tournament.Tournament{}, err
	}

	operation := "generate"
	if advance {
		operation = "regenerate"
		item.Options.RegenerateCount++
	}

	schedule, err := s.build(ctx, operation, item.Request())
	if err != nil {
		return tournament.Tournament{}, err
	}

	item.Schedule = &schedule
	item.Results = americano.Results{}
	item.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, item); err != nil {
		return tournament.Tournament{}, repositoryError("save schedule", err)
	}
	item.Version++

	s.logger.InfoContext(ctx, "schedule generated",
		"tournament_id", item.ID,
		"operation", operation,
		"regenerate_count", schedule.Stats.RegenerateCount,
		"variant", schedule.Stats.Variant,
		"seed", schedule.Stats.Seed,
		"matches", schedule.Stats.TotalMatches,
		"min_games", schedule.Stats.MinGames,
		"max_games", schedule.Stats.MaxGames,
		"evaluations", schedule.Stats.Evaluations,
	)
	return item, nil
}

// build runs the engine, memoizing by request fingerprint when a schedule store is configured.
func (s *TournamentService) build(ctx context.Context, operation string, req americano.Request) (americano.Schedule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.build")
	defer span.End()

	started := time.Now()
	run := func(context.Context) (americano.Schedule, error) {
		schedule, err := americano.Generate(req)
		s.recorder.ObserveGeneration(operation, time.Since(started), schedule.Stats, err)
		return schedule, err
	}

	var (
		schedule americano.Schedule
		err      error
	)
	if s.schedules == nil {
		schedule, err = run(ctx)
	} else {
		key, keyErr := requestFingerprint(req)
		if keyErr != nil {
			return americano.Schedule{}, keyErr
		}
		schedule, err = s.schedules.GetOrLoad(ctx, key, run)
	}
	if err != nil {
		return americano.Schedule{}, engineError(err)
	}
	return schedule, nil
}

// RecordResult stores the score of one match, replacing any earlier score for it.
func (s *TournamentService) RecordResult(ctx context.Context, id string, roundIndex, matchIndex int, result americano.MatchResult) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.RecordResult")
	defer span.End()

	if result.Team1Score < 0 || result.Team2Score < 0 {
		return tournament.Tournament{}, fmt.Errorf("%w: scores must be >= 0", ErrInvalidInput)
	}

	item, err := s.loadScheduled(ctx, id)
	if err != nil {
		return tournament.Tournament{}, err
	}
	if err := checkMatch(*item.Schedule, roundIndex, matchIndex); err != nil {
		return tournament.Tournament{}, err
	}

	if item.Results == nil {
		item.Results = americano.Results{}
	}
	item.Results[americano.ResultKey(roundIndex, matchIndex)] = result
	return s.saveResults(ctx, item)
}

func (s *TournamentService) ClearResult(ctx context.Context, id string, roundIndex, matchIndex int) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ClearResult")
	defer span.End()

	item, err := s.loadScheduled(ctx, id)
	if err != nil {
		return tournament.Tournament{}, err
	}
	if err := checkMatch(*item.Schedule, roundIndex, matchIndex); err != nil {
		return tournament.Tournament{}, err
	}

	key := americano.ResultKey(roundIndex, matchIndex)
	if _, ok := item.Results[key]; !ok {
		return item, nil
	}
	delete(item.Results, key)
	return s.saveResults(ctx, item)
}

func (s *TournamentService) saveResults(ctx context.Context, item tournament.Tournament) (tournament.Tournament, error) {
	item.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, item); err != nil {
		return tournament.Tournament{}, repositoryError("save results", err)
	}
	item.Version++
	return item, nil
}

// Standings recomputes the table from the current schedule and results. A tournament without a
// schedule yields a table of zero rows for every eligible player.
func (s *TournamentService) Standings(ctx context.Context, id string) (americano.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Standings")
	defer span.End()

	item, err := s.load(ctx, id)
	if err != nil {
		return americano.Table{}, err
	}

	var schedule americano.Schedule
	if item.Schedule != nil {
		schedule = *item.Schedule
	}
	roster := lo.Filter(item.Players, func(p americano.Player, _ int) bool {
		return p.EligibleFor(item.Sport)
	})

	table := americano.ComputeStandings(roster, schedule, item.Results)
	if table.SkippedReferences > 0 {
		s.logger.WarnContext(ctx, "standings skipped unknown players",
			"tournament_id", item.ID,
			"skipped", table.SkippedReferences,
		)
	}
	return table, nil
}

func (s *TournamentService) load(ctx context.Context, id string) (tournament.Tournament, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	item, exists, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return tournament.Tournament{}, repositoryError("get tournament", err)
	}
	if !exists {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament=%s", ErrNotFound, id)
	}
	return item, nil
}

func (s *TournamentService) loadScheduled(ctx context.Context, id string) (tournament.Tournament, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return tournament.Tournament{}, err
	}
	if !item.HasSchedule() {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament=%s has no schedule yet", ErrConflict, item.ID)
	}
	return item, nil
}

func checkMatch(schedule americano.Schedule, roundIndex, matchIndex int) error {
	if roundIndex >= 0 && roundIndex < len(schedule.Rounds) && schedule.Rounds[roundIndex].IsBreak {
		return fmt.Errorf("%w: round %d is a break", ErrInvalidInput, roundIndex)
	}
	if _, ok := schedule.Match(roundIndex, matchIndex); !ok {
		return fmt.Errorf("%w: no match at round %d position %d", ErrInvalidInput, roundIndex, matchIndex)
	}
	return nil
}

// requestFingerprint hashes the canonical JSON of req. Equal requests share a key.
func requestFingerprint(req americano.Request) (string, error) {
	raw, err := sonic.ConfigStd.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("fingerprint schedule request: %w", err)
	}
	h := fnv.New64a()
	_, _ = h.Write(raw)
	return "schedule:" + hex.EncodeToString(h.Sum(nil)), nil
}
