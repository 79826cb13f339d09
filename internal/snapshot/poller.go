package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmtigers/questboard/internal/model"
)

// Fetcher pulls state from the game server.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (model.Snapshot, error)
	FetchChronicle(ctx context.Context) (model.Chronicle, error)
}

// Cache persists the last good snapshot so a restart without network still
// has something to show. Load methods return nil when nothing is stored.
type Cache interface {
	SaveSnapshot(s model.Snapshot) error
	LoadSnapshot() (*model.Snapshot, error)
	SaveChronicle(c model.Chronicle) error
	LoadChronicle() (*model.Chronicle, error)
}

// Options configures a Poller.
type Options struct {
	Interval time.Duration
	// OnUpdate and OnChronicle are called after every applied snapshot or
	// chronicle, outside the lock.
	OnUpdate    func(model.Snapshot)
	OnChronicle func(model.Chronicle)
	Logger      *slog.Logger
}

// Poller owns the current snapshot. Each successful fetch replaces it
// wholesale; readers always get a value, never a pointer into shared state.
type Poller struct {
	fetcher     Fetcher
	cache       Cache
	interval    time.Duration
	onUpdate    func(model.Snapshot)
	onChronicle func(model.Chronicle)
	logger      *slog.Logger

	seq atomic.Uint64

	mu           sync.RWMutex
	snapshot     model.Snapshot
	chronicle    model.Chronicle
	snapshotSeq  uint64
	chronicleSeq uint64

	// cacheMu orders cache writes so the row on disk is never older than
	// one already written by an overlapping refresh.
	cacheMu           sync.Mutex
	cachedSnapshotSeq uint64
	cachedChronSeq    uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller seeded with the fallback catalog. cache may be nil.
func NewPoller(fetcher Fetcher, cache Cache, opts Options) *Poller {
	if opts.Interval == 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Poller{
		fetcher:     fetcher,
		cache:       cache,
		interval:    opts.Interval,
		onUpdate:    opts.OnUpdate,
		onChronicle: opts.OnChronicle,
		logger:      opts.Logger,
		snapshot:    Fallback(),
	}
}

// Current returns the snapshot in effect right now.
func (p *Poller) Current() model.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Chronicle returns the most recent chronicle stats.
func (p *Poller) Chronicle() model.Chronicle {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.chronicle
}

// Refresh fetches game data and chronicle concurrently and applies whichever
// succeeded. On failure the previous state stays in place and the returned
// error joins every fetch failure. A response that arrives after a newer one
// has been applied is dropped.
func (p *Poller) Refresh(ctx context.Context) error {
	seq := p.seq.Add(1)

	var (
		g                 errgroup.Group
		snap              *model.Snapshot
		chron             *model.Chronicle
		snapErr, chronErr error
	)
	g.Go(func() error {
		s, err := p.fetcher.FetchSnapshot(ctx)
		if err != nil {
			snapErr = err
			return err
		}
		snap = &s
		return nil
	})
	g.Go(func() error {
		c, err := p.fetcher.FetchChronicle(ctx)
		if err != nil {
			chronErr = err
			return err
		}
		chron = &c
		return nil
	})
	g.Wait()
	err := errors.Join(snapErr, chronErr)

	if snap != nil {
		p.applySnapshot(seq, *snap)
	}
	if chron != nil {
		p.applyChronicle(seq, *chron)
	}
	if err != nil {
		p.logger.Warn("refresh failed, keeping previous snapshot", "error", err)
	}
	return err
}

func (p *Poller) applySnapshot(seq uint64, s model.Snapshot) {
	p.mu.Lock()
	if seq < p.snapshotSeq {
		p.mu.Unlock()
		p.logger.Debug("dropping stale snapshot", "seq", seq, "applied", p.snapshotSeq)
		return
	}
	p.snapshotSeq = seq
	p.snapshot = s
	p.mu.Unlock()

	p.cacheSnapshot(seq, s)
	if p.onUpdate != nil {
		p.onUpdate(s)
	}
}

func (p *Poller) applyChronicle(seq uint64, c model.Chronicle) {
	p.mu.Lock()
	if seq < p.chronicleSeq {
		p.mu.Unlock()
		return
	}
	p.chronicleSeq = seq
	p.chronicle = c
	p.mu.Unlock()

	p.cacheChronicle(seq, c)
	if p.onChronicle != nil {
		p.onChronicle(c)
	}
}

func (p *Poller) cacheSnapshot(seq uint64, s model.Snapshot) {
	if p.cache == nil {
		return
	}
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	if seq < p.cachedSnapshotSeq {
		return
	}
	if err := p.cache.SaveSnapshot(s); err != nil {
		p.logger.Warn("cache snapshot", "error", err)
		return
	}
	p.cachedSnapshotSeq = seq
}

func (p *Poller) cacheChronicle(seq uint64, c model.Chronicle) {
	if p.cache == nil {
		return
	}
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	if seq < p.cachedChronSeq {
		return
	}
	if err := p.cache.SaveChronicle(c); err != nil {
		p.logger.Warn("cache chronicle", "error", err)
		return
	}
	p.cachedChronSeq = seq
}

// LoadCached seeds the poller from the cache. Fetched data always wins over
// cached data, so this is a no-op once a refresh has been applied.
func (p *Poller) LoadCached() error {
	if p.cache == nil {
		return nil
	}

	snap, err := p.cache.LoadSnapshot()
	if err != nil {
		return err
	}
	chron, err := p.cache.LoadChronicle()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if snap != nil && p.snapshotSeq == 0 {
		p.snapshot = *snap
	}
	if chron != nil && p.chronicleSeq == 0 {
		p.chronicle = *chron
	}
	return nil
}

// Start seeds from the cache, refreshes once, then polls every interval
// until ctx is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	if err := p.LoadCached(); err != nil {
		p.logger.Warn("load cached snapshot", "error", err)
	}
	p.Refresh(ctx)

	p.mu.Lock()
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Refresh(ctx)
			}
		}
	}()
}

// Stop halts polling and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.RLock()
	cancel := p.cancel
	done := p.done
	p.mu.RUnlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
