package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/americano/internal/domain/americano"
)

// VariantPreview summarizes one candidate schedule without storing it.
type VariantPreview struct {
	RegenerateCount   int
	Variant           int
	Seed              int64
	Current           bool
	TotalMatches      int
	MinGames          int
	MaxGames          int
	MaxPartnerRepeat  int
	MaxOpponentRepeat int
	Evaluations       int
	DurationMs        int64
}

// PreviewVariants builds all four variants, starting at the stored regenerate counter, on a
// bounded worker pool and returns them ordered by regenerate counter.
func (s *TournamentService) PreviewVariants(ctx context.Context, id string) ([]VariantPreview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.PreviewVariants")
	defer span.End()

	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	workerCount := min(s.previewWorkers, americano.VariantCount)
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("%w: create preview worker pool: %w", ErrDependencyUnavailable, err)
	}
	defer pool.Release()

	type outcome struct {
		preview VariantPreview
		err     error
	}
	results := make(chan outcome, americano.VariantCount)

	base := item.Options.RegenerateCount
	var workers sync.WaitGroup
	for offset := 0; offset < americano.VariantCount; offset++ {
		req := item.Request()
		req.Options.RegenerateCount = base + offset

		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			started := time.Now()
			schedule, err := s.build(ctx, "preview", req)
			if err != nil {
				results <- outcome{err: err}
				return
			}
			results <- outcome{preview: previewOf(schedule.Stats, offset == 0, time.Since(started))}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit preview to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	previews := make([]VariantPreview, 0, americano.VariantCount)
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		previews = append(previews, res.preview)
	}
	slices.SortFunc(previews, func(a, b VariantPreview) int {
		return a.RegenerateCount - b.RegenerateCount
	})

	s.logger.DebugContext(ctx, "schedule variants previewed",
		"tournament_id", item.ID,
		"variants", len(previews),
		"workers", workerCount,
	)
	return previews, nil
}

func previewOf(stats americano.Statistics, current bool, elapsed time.Duration) VariantPreview {
	return VariantPreview{
		RegenerateCount:   stats.RegenerateCount,
		Variant:           stats.Variant,
		Seed:              stats.Seed,
		Current:           current,
		TotalMatches:      stats.TotalMatches,
		MinGames:          stats.MinGames,
		MaxGames:          stats.MaxGames,
		MaxPartnerRepeat:  stats.MaxPartnerRepeat,
		MaxOpponentRepeat: stats.MaxOpponentRepeat,
		Evaluations:       stats.Evaluations,
		DurationMs:        elapsed.Milliseconds(),
	}
}
