package services

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/logger"
)

// ScoreFunc computes the rerank score of one candidate.
// It must not mutate shared state.
type ScoreFunc func(ctx context.Context, c domain.Candidate) (int64, error)

// RerankExecutor scores candidates on a bounded worker pool.
type RerankExecutor struct {
	workers int
}

// NewRerankExecutor creates an executor with the given pool size.
// Zero or negative uses GOMAXPROCS.
func NewRerankExecutor(workers int) *RerankExecutor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &RerankExecutor{workers: workers}
}

// Workers returns the pool size.
func (e *RerankExecutor) Workers() int {
	return e.workers
}

type rerankSlot struct {
	score int64
	ok    bool
}

// Run scores every candidate and returns the successfully scored ones in
// submission order with RerankScore set. Candidates whose score fails are
// excluded, except when a provider is unavailable: that stops the run and is
// returned. On cancellation no further work starts and all results are
// discarded.
func (e *RerankExecutor) Run(ctx context.Context, candidates []domain.Candidate, score ScoreFunc) ([]domain.Candidate, error) {
	slots := make([]rerankSlot, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			s, err := score(gctx, candidates[i])
			if err != nil {
				if errors.Is(err, domain.ErrProviderUnavailable) {
					return err
				}
				if gctx.Err() == nil {
					logger.Warn("Excluding candidate %s: %v", candidates[i].Scene, err)
				}
				return nil
			}
			slots[i] = rerankSlot{score: s, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored := make([]domain.Candidate, 0, len(candidates))
	for i, slot := range slots {
		if !slot.ok {
			continue
		}
		c := candidates[i]
		c.RerankScore = slot.score
		scored = append(scored, c)
	}
	return scored, nil
}
