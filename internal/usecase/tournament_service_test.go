package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/americano/internal/domain/americano"
	"github.com/riskibarqy/americano/internal/domain/tournament"
	"github.com/riskibarqy/americano/internal/infrastructure/repository/memory"
	tournamentmock "github.com/riskibarqy/americano/internal/mocks/domain/tournament"
	"github.com/riskibarqy/americano/internal/platform/cache"
	idgen "github.com/riskibarqy/americano/internal/platform/id"
	"github.com/riskibarqy/americano/internal/platform/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordedRun struct {
	operation string
	err       error
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []recordedRun
}

func (r *fakeRecorder) ObserveGeneration(operation string, _ time.Duration, _ americano.Statistics, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, recordedRun{operation: operation, err: err})
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func roster(n int) []americano.Player {
	out := make([]americano.Player, n)
	for i := range out {
		out[i] = americano.Player{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("Player %d", i+1)}
	}
	return out
}

func newTestService(t *testing.T, schedules *cache.Store[americano.Schedule]) (*TournamentService, *fakeRecorder) {
	t.Helper()
	recorder := &fakeRecorder{}
	svc := NewTournamentService(memory.NewTournamentRepository(), &idgen.Sequence{Prefix: "t-"}, schedules, recorder, 2, nil)
	return svc, recorder
}

func createTournament(t *testing.T, svc *TournamentService, players, courts, rounds int) tournament.Tournament {
	t.Helper()
	item, err := svc.CreateTournament(context.Background(), CreateTournamentInput{
		Name:    "Sunday Americano",
		Players: roster(players),
		Courts:  courts,
		Rounds:  rounds,
	})
	require.NoError(t, err)
	return item
}

func TestTournamentService_CreateTournament(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	item, err := svc.CreateTournament(context.Background(), CreateTournamentInput{
		Name:    "  Sunday Americano ",
		Players: []americano.Player{{ID: " a "}, {ID: "b", Name: "Ben"}, {ID: "c"}, {ID: "d"}},
		Courts:  1,
		Rounds:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, "t-1", item.ID)
	assert.Equal(t, "Sunday Americano", item.Name)
	assert.Equal(t, americano.FormatDoubles, item.Format)
	assert.Equal(t, "a", item.Players[0].ID)
	assert.Equal(t, "a", item.Players[0].Name)
	assert.False(t, item.HasSchedule())
	assert.EqualValues(t, 1, item.Version)

	listed, err := svc.ListTournaments(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestTournamentService_CreateTournamentValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input CreateTournamentInput
		want  error
	}{
		{name: "missing name", input: CreateTournamentInput{Players: roster(4), Courts: 1, Rounds: 1}, want: ErrInvalidInput},
		{name: "too few players", input: CreateTournamentInput{Name: "x", Players: roster(3), Courts: 1, Rounds: 1}, want: americano.ErrTooFewPlayers},
		{name: "no courts", input: CreateTournamentInput{Name: "x", Players: roster(4), Courts: 0, Rounds: 1}, want: americano.ErrTooFewCourts},
		{name: "no rounds", input: CreateTournamentInput{Name: "x", Players: roster(4), Courts: 1, Rounds: 0}, want: americano.ErrTooFewRounds},
		{name: "duplicate ids", input: CreateTournamentInput{Name: "x", Players: append(roster(4), americano.Player{ID: "p1"}), Courts: 1, Rounds: 1}, want: americano.ErrDuplicatePlayer},
		{name: "unknown format", input: CreateTournamentInput{Name: "x", Players: roster(4), Courts: 1, Rounds: 1, Format: "triples"}, want: americano.ErrInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, nil)
			_, err := svc.CreateTournament(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput wrapper, got %v", err)
			}
		})
	}
}

func TestTournamentService_GenerateAndRegenerate(t *testing.T) {
	t.Parallel()

	svc, recorder := newTestService(t, nil)
	created := createTournament(t, svc, 8, 2, 3)
	ctx := context.Background()

	first, err := svc.GenerateSchedule(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, first.HasSchedule())
	assert.Len(t, first.Schedule.Rounds, 3)
	assert.Equal(t, 0, first.Schedule.Stats.RegenerateCount)
	assert.Equal(t, 1, recorder.count())

	again, err := svc.GenerateSchedule(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Schedule.Rounds, again.Schedule.Rounds)

	regenerated, err := svc.RegenerateSchedule(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, regenerated.Options.RegenerateCount)
	assert.Equal(t, 1, regenerated.Schedule.Stats.Variant)

	stored, err := svc.GetTournament(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Options.RegenerateCount)
	assert.Equal(t, regenerated.Version, stored.Version)
}

func TestTournamentService_RegenerateClearsResults(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	created := createTournament(t, svc, 4, 1, 2)
	ctx := context.Background()

	_, err := svc.GenerateSchedule(ctx, created.ID)
	require.NoError(t, err)
	withResult, err := svc.RecordResult(ctx, created.ID, 0, 0, americano.MatchResult{Team1Score: 6, Team2Score: 4, Completed: true})
	require.NoError(t, err)
	require.Len(t, withResult.Results, 1)

	regenerated, err := svc.RegenerateSchedule(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, regenerated.Results)
}

func TestTournamentService_ScheduleCacheMemoizesRuns(t *testing.T) {
	t.Parallel()

	svc, recorder := newTestService(t, cache.NewStore[americano.Schedule](time.Minute))
	created := createTournament(t, svc, 8, 2, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.GenerateSchedule(ctx, created.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, recorder.count())

	_, err := svc.RegenerateSchedule(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, recorder.count())
}

func TestTournamentService_RecordResultAndStandings(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	created := createTournament(t, svc, 4, 1, 1)
	ctx := context.Background()

	generated, err := svc.GenerateSchedule(ctx, created.ID)
	require.NoError(t, err)
	match := generated.Schedule.Rounds[0].Matches[0]

	_, err = svc.RecordResult(ctx, created.ID, 0, 0, americano.MatchResult{Team1Score: 6, Team2Score: 4, Completed: true})
	require.NoError(t, err)

	table, err := svc.Standings(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, table.Entries, 4)
	winners := map[string]bool{match.Team1[0]: true, match.Team1[1]: true}
	for _, e := range table.Entries {
		assert.Equal(t, 1, e.Played)
		if winners[e.PlayerID] {
			assert.Equal(t, 3, e.Points)
			assert.Equal(t, 6, e.PointsFor)
			assert.Equal(t, 4, e.PointsAgainst)
		} else {
			assert.Equal(t, 0, e.Points)
			assert.Equal(t, 1, e.Lost)
		}
	}

	_, err = svc.RecordResult(ctx, created.ID, 0, 0, americano.MatchResult{Team1Score: 1, Team2Score: 6, Completed: true})
	require.NoError(t, err)
	table, err = svc.Standings(ctx, created.ID)
	require.NoError(t, err)
	for _, e := range table.Entries {
		assert.Equal(t, 1, e.Played, "results overwrite, never accumulate")
	}

	cleared, err := svc.ClearResult(ctx, created.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, cleared.Results)
	table, err = svc.Standings(ctx, created.ID)
	require.NoError(t, err)
	for _, e := range table.Entries {
		assert.Zero(t, e.Played)
	}
}

func TestTournamentService_RecordResultValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	created := createTournament(t, svc, 4, 1, 1)

	_, err := svc.RecordResult(ctx, created.ID, 0, 0, americano.MatchResult{Team1Score: 1})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict before generation, got %v", err)
	}

	_, err = svc.GenerateSchedule(ctx, created.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		round  int
		match  int
		result americano.MatchResult
	}{
		{name: "negative score", round: 0, match: 0, result: americano.MatchResult{Team1Score: -1}},
		{name: "round out of range", round: 3, match: 0},
		{name: "match out of range", round: 0, match: 1},
		{name: "negative index", round: -1, match: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordResult(ctx, created.ID, tt.round, tt.match, tt.result)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestTournamentService_RecordResultRejectsBreakRound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	created, err := svc.CreateTournament(ctx, CreateTournamentInput{
		Name:    "With break",
		Players: roster(4),
		Courts:  1,
		Rounds:  2,
		Options: americano.Options{BreakRounds: []int{2}},
	})
	require.NoError(t, err)
	_, err = svc.GenerateSchedule(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.RecordResult(ctx, created.ID, 1, 0, americano.MatchResult{Team1Score: 1})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTournamentService_StandingsWithoutSchedule(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	created := createTournament(t, svc, 5, 1, 1)

	table, err := svc.Standings(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, table.Entries, 5)
	assert.Zero(t, table.SkippedReferences)
}

func TestTournamentService_PreviewVariants(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, cache.NewStore[americano.Schedule](time.Minute))
	created := createTournament(t, svc, 10, 2, 4)
	ctx := context.Background()

	_, err := svc.RegenerateSchedule(ctx, created.ID)
	require.NoError(t, err)

	previews, err := svc.PreviewVariants(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, previews, americano.VariantCount)

	for i, p := range previews {
		assert.Equal(t, 1+i, p.RegenerateCount)
		assert.Equal(t, (1+i)%americano.VariantCount, p.Variant)
		assert.Equal(t, i == 0, p.Current)
		assert.Equal(t, 8, p.TotalMatches)
	}

	stored, err := svc.GetTournament(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Options.RegenerateCount, "preview must not store anything")
}

func TestTournamentService_GetTournamentErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := tournamentmock.NewRepository(t)
	svc := NewTournamentService(repo, &idgen.Sequence{}, nil, nil, 1, nil)

	repo.On("GetByID", mock.Anything, "missing").Return(tournament.Tournament{}, false, nil).Once()
	repo.On("GetByID", mock.Anything, "down").Return(tournament.Tournament{}, false, resilience.ErrCircuitOpen).Once()

	if _, err := svc.GetTournament(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.GetTournament(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetTournament(ctx, "down"); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestTournamentService_GenerateMapsVersionConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := tournamentmock.NewRepository(t)
	svc := NewTournamentService(repo, &idgen.Sequence{}, nil, nil, 1, nil)

	stored := tournament.Tournament{ID: "t-1", Name: "x", Players: roster(4), Courts: 1, Rounds: 1, Version: 3}
	repo.On("GetByID", mock.Anything, "t-1").Return(stored, true, nil).Once()
	repo.
		On("Update", mock.Anything, mock.MatchedBy(func(item tournament.Tournament) bool {
			return item.ID == "t-1" && item.Version == 3 && item.HasSchedule()
		})).
		Return(fmt.Errorf("update: %w", tournament.ErrVersionConflict)).
		Once()

	_, err := svc.GenerateSchedule(ctx, "t-1")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRequestFingerprint(t *testing.T) {
	t.Parallel()

	base := americano.Request{Players: roster(4), Courts: 1, Rounds: 2}
	a, err := requestFingerprint(base)
	require.NoError(t, err)
	b, err := requestFingerprint(base)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := base
	changed.Options.RegenerateCount = 1
	c, err := requestFingerprint(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
