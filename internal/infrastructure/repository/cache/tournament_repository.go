package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/americano/internal/domain/tournament"
	basecache "github.com/riskibarqy/americano/internal/platform/cache"
)

const tournamentListKey = "tournament:list"

// TournamentRepository caches reads of next and drops the affected entries on every write.
type TournamentRepository struct {
	next  tournament.Repository
	byID  *basecache.Store[cachedTournamentByID]
	lists *basecache.Store[[]tournament.Tournament]
}

type cachedTournamentByID struct {
	value  tournament.Tournament
	exists bool
}

func NewTournamentRepository(next tournament.Repository, ttl time.Duration) *TournamentRepository {
	return &TournamentRepository{
		next:  next,
		byID:  basecache.NewStore[cachedTournamentByID](ttl),
		lists: basecache.NewStore[[]tournament.Tournament](ttl),
	}
}

func tournamentKey(id string) string {
	return "tournament:id:" + id
}

func (r *TournamentRepository) Create(ctx context.Context, item tournament.Tournament) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.byID.Delete(ctx, tournamentKey(item.ID))
	r.lists.Delete(ctx, tournamentListKey)
	return nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, id string) (tournament.Tournament, bool, error) {
	cached, err := r.byID.GetOrLoad(ctx, tournamentKey(id), func(ctx context.Context) (cachedTournamentByID, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return cachedTournamentByID{}, err
		}
		return cachedTournamentByID{value: item.Clone(), exists: exists}, nil
	})
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	if !cached.exists {
		return tournament.Tournament{}, false, nil
	}
	return cached.value.Clone(), true, nil
}

func (r *TournamentRepository) List(ctx context.Context) ([]tournament.Tournament, error) {
	items, err := r.lists.GetOrLoad(ctx, tournamentListKey, func(ctx context.Context) ([]tournament.Tournament, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return cloneAll(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneAll(items), nil
}

// Update invalidates even when next fails so a version conflict is never replayed from a stale entry.
func (r *TournamentRepository) Update(ctx context.Context, item tournament.Tournament) error {
	err := r.next.Update(ctx, item)
	r.byID.Delete(ctx, tournamentKey(item.ID))
	r.lists.Delete(ctx, tournamentListKey)
	return err
}

// Stats reports lookup counters of the by-id cache.
func (r *TournamentRepository) Stats() basecache.Stats {
	return r.byID.Stats()
}

func cloneAll(items []tournament.Tournament) []tournament.Tournament {
	out := make([]tournament.Tournament, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out
}
