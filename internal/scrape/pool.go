package scrape

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KENnotcode/taanscrape/internal/model"
)

// progressInterval is how many completed tasks pass between progress logs.
const progressInterval = 50

// Fetcher retrieves the body of a single URL.
// *Client satisfies this; tests substitute a fake.
type Fetcher interface {
	Get(ctx context.Context, pageURL string) ([]byte, error)
}

// Pool converts fetch tasks into member records with bounded concurrency.
// It uses errgroup to manage goroutines and respect the concurrency limit.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled
// worker loop because it's simpler and handles the concurrency correctly.
// Each task gets its own goroutine, but only 'concurrency' goroutines run
// simultaneously.
type Pool struct {
	// fetcher retrieves member detail pages with the retry policy.
	fetcher Fetcher

	// concurrency is the maximum number of in-flight tasks.
	concurrency int

	// placeholder fills missing fields and failed records.
	placeholder string

	// logger for pool-level logging.
	logger *slog.Logger

	// completed counts finished tasks for progress logging.
	// Guarded by mu along with the results slice.
	completed int
	mu        sync.Mutex
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithConcurrency sets the maximum number of concurrent fetches.
// Default is 10 if not specified.
func WithConcurrency(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithPlaceholder sets the missing-data placeholder value.
func WithPlaceholder(placeholder string) PoolOption {
	return func(p *Pool) {
		if placeholder != "" {
			p.placeholder = placeholder
		}
	}
}

// WithPoolLogger sets a custom logger for the pool.
func WithPoolLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// NewPool creates a Pool that fetches pages through the given fetcher.
func NewPool(fetcher Fetcher, opts ...PoolOption) *Pool {
	p := &Pool{
		fetcher:     fetcher,
		concurrency: 10,
		placeholder: "0",
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run processes every task and returns one record per task, in task order.
//
// Results are pre-allocated and stored by task index, so the output order
// equals enumerator order no matter how the scheduler interleaves workers.
// A task whose fetch or parse fails yields an all-placeholder record; no
// task is ever dropped, and one task's failure never affects another.
//
// The returned error is non-nil only when the context is cancelled before
// all tasks complete.
func (p *Pool) Run(ctx context.Context, tasks []model.FetchTask) ([]*model.MemberRecord, error) {
	p.logger.Info("starting fetch pool",
		"tasks", len(tasks),
		"concurrency", p.concurrency,
	)

	startTime := time.Now()
	results := make([]*model.MemberRecord, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, task := range tasks {
		task := task
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rec, err := p.process(ctx, task)
			if err != nil {
				return err
			}

			p.mu.Lock()
			results[task.Index] = rec
			p.completed++
			completed := p.completed
			p.mu.Unlock()

			if completed%progressInterval == 0 {
				elapsed := time.Since(startTime).Seconds()
				p.logger.Info("progress",
					"completed", completed,
					"total", len(tasks),
					"rate_per_sec", float64(completed)/elapsed,
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(startTime)
	p.logger.Info("fetch pool complete",
		"tasks", len(tasks),
		"elapsed", elapsed,
	)
	return results, nil
}

// process handles one task: fetch, extract, and fall back to a
// placeholder record on fetch or parse failure.
//
// Run cancellation is not a member failure: a fetch that died because the
// run context was cancelled propagates the context error instead of
// emitting a placeholder, so an interrupted run aborts rather than
// masking unfetched members as failed rows.
func (p *Pool) process(ctx context.Context, task model.FetchTask) (*model.MemberRecord, error) {
	body, err := p.fetcher.Get(ctx, task.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn("member fetch failed",
			"url", task.URL,
			"error", err,
		)
		return model.PlaceholderRecord(task.URL, task.Category, p.placeholder), nil
	}

	rec, err := Extract(body, task.URL, task.Category, p.placeholder)
	if err != nil {
		p.logger.Warn("member page unparseable",
			"url", task.URL,
			"error", err,
		)
		return model.PlaceholderRecord(task.URL, task.Category, p.placeholder), nil
	}
	return rec, nil
}
