package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/americano/internal/domain/tournament"
)

// TournamentRepository keeps tournaments in process memory. Stored values are deep copies, so
// callers never share slices or maps with the repository.
type TournamentRepository struct {
	mu     sync.RWMutex
	items  map[string]tournament.Tournament
	orders []string
}

func NewTournamentRepository(seed ...tournament.Tournament) *TournamentRepository {
	items := make(map[string]tournament.Tournament, len(seed))
	orders := make([]string, 0, len(seed))
	for _, t := range seed {
		if _, dup := items[t.ID]; dup {
			continue
		}
		items[t.ID] = t.Clone()
		orders = append(orders, t.ID)
	}

	return &TournamentRepository{
		items:  items,
		orders: orders,
	}
}

func (r *TournamentRepository) Create(_ context.Context, t tournament.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[t.ID]; exists {
		return fmt.Errorf("create tournament %s: already exists", t.ID)
	}
	r.items[t.ID] = t.Clone()
	r.orders = append(r.orders, t.ID)
	return nil
}

func (r *TournamentRepository) GetByID(_ context.Context, id string) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return tournament.Tournament{}, false, nil
	}
	return t.Clone(), true, nil
}

// List returns tournaments in creation order.
func (r *TournamentRepository) List(_ context.Context) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.Tournament, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}

func (r *TournamentRepository) Update(_ context.Context, t tournament.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[t.ID]
	if !ok {
		return fmt.Errorf("update tournament %s: not found", t.ID)
	}
	if current.Version != t.Version {
		return fmt.Errorf("update tournament %s: %w", t.ID, tournament.ErrVersionConflict)
	}

	stored := t.Clone()
	stored.Version++
	r.items[t.ID] = stored
	return nil
}
