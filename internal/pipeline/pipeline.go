package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"backlogtimer/internal/backlog"
	"backlogtimer/internal/logging"
	"backlogtimer/internal/ranking"
	"backlogtimer/internal/timelookup"
)

// TimeLookup resolves completion-time estimates for a title.
type TimeLookup interface {
	Lookup(ctx context.Context, title, platform string) (timelookup.Result, error)
}

// StatsLookup resolves player-reported medians for a catalog ID.
type StatsLookup interface {
	Lookup(ctx context.Context, gameID int) (backlog.Entry, error)
}

// ProgressStore holds lookup results between runs.
type ProgressStore interface {
	Get(key string) (backlog.Entry, bool)
	Put(key string, entry backlog.Entry)
	Flush() error
}

// Snapshotter persists the full backlog table.
type Snapshotter interface {
	Save(ctx context.Context, username string, items []backlog.Item) error
}

// Options tunes batching and pacing.
type Options struct {
	MaxConcurrency int
	BatchSize      int
	RequestDelay   time.Duration
	// Username is recorded with every table snapshot.
	Username string
}

const (
	defaultMaxConcurrency = 5
	defaultBatchSize      = 25
)

// Stats counts how a run disposed of each row.
type Stats struct {
	Total     int
	Skipped   int
	FromCache int
	ToFetch   int
	Fetched   int
	Batches   int
}

// Pipeline wires lookups to persistence.
type Pipeline struct {
	times    TimeLookup
	stats    StatsLookup
	store    ProgressStore
	snapshot Snapshotter
	opts     Options
	logger   *slog.Logger
}

// New constructs a Pipeline. Zero options take their defaults.
func New(times TimeLookup, stats StatsLookup, store ProgressStore, snapshot Snapshotter, opts Options, logger *slog.Logger) *Pipeline {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.RequestDelay < 0 {
		opts.RequestDelay = 0
	}
	return &Pipeline{
		times:    times,
		stats:    stats,
		store:    store,
		snapshot: snapshot,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
}

// job is one cache key to fetch and every row sharing it.
type job struct {
	key     string
	title   string
	system  string
	raID    int
	indices []int
}

// Run enriches items in place. On error, items hold every result up to the
// last checkpoint.
func (p *Pipeline) Run(ctx context.Context, items []backlog.Item) (Stats, error) {
	logger := logging.WithContext(ctx, p.logger)
	stats, jobs := p.partition(items)

	logger.Info("scan plan",
		logging.Int("total", stats.Total),
		logging.Int("from_cache", stats.FromCache),
		logging.Int("skipped", stats.Skipped),
		logging.Int("to_fetch", stats.ToFetch),
		logging.Int("max_concurrency", p.opts.MaxConcurrency),
		logging.Int("batch_size", p.opts.BatchSize))

	sampler := logging.NewProgressSampler(10)
	for start := 0; start < len(jobs); start += p.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		end := min(start+p.opts.BatchSize, len(jobs))
		batch := jobs[start:end]
		stats.Batches++

		entries, err := p.runBatch(ctx, items, batch)
		if err != nil {
			return stats, err
		}
		if err := p.checkpoint(ctx, items, batch, entries); err != nil {
			return stats, err
		}
		stats.Fetched += countRows(batch)

		if sampler.ShouldLog(end, len(jobs)) {
			logger.Info("scan progress",
				logging.Int(logging.FieldBatch, stats.Batches),
				logging.Int("fetched", end),
				logging.Int("to_fetch", len(jobs)))
		}
	}

	ranking.Apply(items)
	if err := p.snapshot.Save(context.WithoutCancel(ctx), p.opts.Username, items); err != nil {
		return stats, fmt.Errorf("save final table: %w", err)
	}
	logger.Info("scan complete",
		logging.Int("total", stats.Total),
		logging.Int("fetched", stats.Fetched),
		logging.Int("batches", stats.Batches))
	return stats, nil
}

// partition applies cached entries and groups the remaining rows by cache
// key, in backlog order. Rows sharing a key are fetched once.
func (p *Pipeline) partition(items []backlog.Item) (Stats, []job) {
	stats := Stats{Total: len(items)}
	var jobs []job
	byKey := make(map[string]int)
	for idx := range items {
		item := &items[idx]
		if item.IsComplete() {
			stats.Skipped++
			continue
		}
		key := item.Key()
		if entry, ok := p.store.Get(key); ok {
			item.Apply(entry)
			stats.FromCache++
			continue
		}
		stats.ToFetch++
		if pos, ok := byKey[key]; ok {
			jobs[pos].indices = append(jobs[pos].indices, idx)
			continue
		}
		byKey[key] = len(jobs)
		jobs = append(jobs, job{
			key:     key,
			title:   item.Title,
			system:  item.System,
			raID:    item.RAID,
			indices: []int{idx},
		})
	}
	return stats, jobs
}

// runBatch fetches every job with at most MaxConcurrency in flight. Workers
// only read their job, so items are not touched until the barrier.
func (p *Pipeline) runBatch(ctx context.Context, items []backlog.Item, batch []job) ([]backlog.Entry, error) {
	entries := make([]backlog.Entry, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxConcurrency)
	for i := range batch {
		g.Go(func() error {
			if err := p.pause(gctx); err != nil {
				return err
			}
			entry, err := p.enrich(gctx, batch[i])
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *Pipeline) pause(ctx context.Context) error {
	if p.opts.RequestDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.opts.RequestDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// enrich runs both lookups for one key concurrently and merges them.
func (p *Pipeline) enrich(ctx context.Context, j job) (backlog.Entry, error) {
	ctx = logging.WithItemKey(ctx, j.key)
	logger := logging.WithContext(ctx, p.logger)

	var (
		timeResult timelookup.Result
		statsEntry backlog.Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		timeResult, err = p.times.Lookup(gctx, j.title, j.system)
		return err
	})
	if j.raID > 0 && p.stats != nil {
		g.Go(func() error {
			var err error
			statsEntry, err = p.stats.Lookup(gctx, j.raID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return backlog.Entry{}, err
	}

	entry := merge(timeResult, statsEntry)
	logger.Info("game enriched",
		logging.String("matched_name", entry.MatchedName),
		logging.Any("beat_hours", entry.Beat),
		logging.Any("master_hours", entry.RAMaster),
		logging.String("comment", entry.Comment))
	return entry, nil
}

func merge(t timelookup.Result, s backlog.Entry) backlog.Entry {
	entry := t.ToEntry()
	entry.RABeat = s.RABeat
	entry.RAMaster = s.RAMaster
	entry.RABeatHardcore = s.RABeatHardcore
	entry.RAMasterHardcore = s.RAMasterHardcore
	entry.Players = s.Players
	return entry
}

// checkpoint applies a finished batch and persists it. Writes ignore
// cancellation so an interrupt cannot leave the store ahead of the table.
func (p *Pipeline) checkpoint(ctx context.Context, items []backlog.Item, batch []job, entries []backlog.Entry) error {
	for i, j := range batch {
		p.store.Put(j.key, entries[i])
		for _, idx := range j.indices {
			items[idx].Apply(entries[i])
		}
	}
	if err := p.store.Flush(); err != nil {
		logging.ErrorWithContext(p.logger, "progress checkpoint failed", "checkpoint_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the data directory"))
		return fmt.Errorf("flush progress: %w", err)
	}
	if err := p.snapshot.Save(context.WithoutCancel(ctx), p.opts.Username, items); err != nil {
		logging.ErrorWithContext(p.logger, "table snapshot failed", "snapshot_failed",
			logging.Error(err))
		return fmt.Errorf("save table: %w", err)
	}
	return nil
}

func countRows(batch []job) int {
	n := 0
	for _, j := range batch {
		n += len(j.indices)
	}
	return n
}
