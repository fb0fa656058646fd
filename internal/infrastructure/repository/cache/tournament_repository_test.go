package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/americano/internal/domain/americano"
	"github.com/riskibarqy/americano/internal/domain/tournament"
	tournamentmock "github.com/riskibarqy/americano/internal/mocks/domain/tournament"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleTournament() tournament.Tournament {
	return tournament.Tournament{
		ID:      "t-1",
		Name:    "Cached",
		Players: []americano.Player{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
		Courts:  1,
		Rounds:  1,
		Version: 1,
	}
}

func TestTournamentRepository_GetByIDCachesHitsAndMisses(t *testing.T) {
	ctx := context.Background()
	next := tournamentmock.NewRepository(t)
	next.On("GetByID", mock.Anything, "t-1").Return(sampleTournament(), true, nil).Once()
	next.On("GetByID", mock.Anything, "missing").Return(tournament.Tournament{}, false, nil).Once()

	repo := NewTournamentRepository(next, time.Minute)
	for i := 0; i < 3; i++ {
		item, exists, err := repo.GetByID(ctx, "t-1")
		require.NoError(t, err)
		require.True(t, exists)
		require.Equal(t, "Cached", item.Name)

		_, exists, err = repo.GetByID(ctx, "missing")
		require.NoError(t, err)
		require.False(t, exists)
	}

	stats := repo.Stats()
	require.EqualValues(t, 4, stats.Hits)
}

func TestTournamentRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	next := tournamentmock.NewRepository(t)
	next.On("GetByID", mock.Anything, "t-1").Return(sampleTournament(), true, nil).Once()

	repo := NewTournamentRepository(next, time.Minute)
	first, _, err := repo.GetByID(ctx, "t-1")
	require.NoError(t, err)
	first.Players[0].ID = "mutated"

	second, _, err := repo.GetByID(ctx, "t-1")
	require.NoError(t, err)
	require.Equal(t, "a", second.Players[0].ID)
}

func TestTournamentRepository_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	next := tournamentmock.NewRepository(t)
	item := sampleTournament()

	next.On("List", mock.Anything).Return([]tournament.Tournament{}, nil).Once()
	next.On("Create", mock.Anything, item).Return(nil).Once()
	next.On("List", mock.Anything).Return([]tournament.Tournament{item}, nil).Once()
	next.On("GetByID", mock.Anything, "t-1").Return(item, true, nil).Twice()
	next.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	repo := NewTournamentRepository(next, time.Minute)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, items)

	require.NoError(t, repo.Create(ctx, item))
	items, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, _, err = repo.GetByID(ctx, "t-1")
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, item))
	_, _, err = repo.GetByID(ctx, "t-1")
	require.NoError(t, err)
}

func TestTournamentRepository_FailedUpdateStillInvalidates(t *testing.T) {
	ctx := context.Background()
	next := tournamentmock.NewRepository(t)
	item := sampleTournament()

	next.On("GetByID", mock.Anything, "t-1").Return(item, true, nil).Twice()
	next.On("Update", mock.Anything, mock.Anything).Return(tournament.ErrVersionConflict).Once()

	repo := NewTournamentRepository(next, time.Minute)
	_, _, err := repo.GetByID(ctx, "t-1")
	require.NoError(t, err)

	err = repo.Update(ctx, item)
	require.True(t, errors.Is(err, tournament.ErrVersionConflict))

	_, _, err = repo.GetByID(ctx, "t-1")
	require.NoError(t, err)
}

func TestTournamentRepository_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	next := tournamentmock.NewRepository(t)
	boom := errors.New("db down")
	next.On("GetByID", mock.Anything, "t-1").Return(tournament.Tournament{}, false, boom).Once()
	next.On("GetByID", mock.Anything, "t-1").Return(sampleTournament(), true, nil).Once()

	repo := NewTournamentRepository(next, time.Minute)
	_, _, err := repo.GetByID(ctx, "t-1")
	require.ErrorIs(t, err, boom)

	_, exists, err := repo.GetByID(ctx, "t-1")
	require.NoError(t, err)
	require.True(t, exists)
}
