// Package refresh owns the cached snapshot of raw station records for one
// scope and keeps it fresh on a fixed interval. Readers never block on
// network I/O; concurrent refresh requests for the same scope collapse into a
// single upstream fetch.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/informaticaRupestre/geoportal-gasolineras/pkg/api"
)

// DefaultInterval matches the upstream publication cadence with margin; the
// Ministry publishes at most a few updates per day.
const DefaultInterval = time.Hour

// FetchFunc retrieves the raw station list for the coordinator's scope.
type FetchFunc func(ctx context.Context) (*api.GasStationList, error)

// Snapshot is an immutable point-in-time set of raw station records for one
// scope. It is never mutated after creation; queries read whichever snapshot
// was current when they started.
type Snapshot struct {
	FetchedAt time.Time
	Scope     string
	Date      string
	Stations  []api.GasStation
}

// Coordinator refreshes a single scope's snapshot. Two coordinators share
// nothing, so the by-province and all-country scopes cache independently.
type Coordinator struct {
	scope    string
	fetch    FetchFunc
	interval time.Duration
	log      *slog.Logger

	snapshot atomic.Pointer[Snapshot]

	mu       sync.Mutex
	inflight *flight

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// flight is a fetch in progress. Callers joining it wait on done and then
// read the shared outcome.
type flight struct {
	done chan struct{}
	snap *Snapshot
	err  error
}

// ProvinceScope names the cache scope for a single province.
func ProvinceScope(provinceID int) string {
	return fmt.Sprintf("provincia:%d", provinceID)
}

// ScopeAll names the cache scope for the country-wide listing.
const ScopeAll = "all"

// NewCoordinator creates a coordinator for one scope. An interval of zero
// selects DefaultInterval.
func NewCoordinator(scope string, fetch FetchFunc, interval time.Duration, logger *slog.Logger) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Coordinator{
		scope:    scope,
		fetch:    fetch,
		interval: interval,
		log:      logger,
		stopCh:   make(chan struct{}),
	}
}

// Scope returns the scope identifier this coordinator refreshes.
func (c *Coordinator) Scope() string {
	return c.scope
}

// Snapshot returns the current snapshot without blocking on refresh. It is
// nil until the first successful refresh completes.
func (c *Coordinator) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Refresh fetches a new snapshot, joining an in-flight fetch if one is
// already running for this scope. With force=false a snapshot younger than
// the refresh interval is returned as-is. On failure the previous snapshot
// stays installed and remains readable.
func (c *Coordinator) Refresh(ctx context.Context, force bool) (*Snapshot, error) {
	if !force {
		if snap := c.snapshot.Load(); snap != nil && time.Since(snap.FetchedAt) < c.interval {
			return snap, nil
		}
	}

	c.mu.Lock()
	if f := c.inflight; f != nil {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.snap, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	c.inflight = f
	c.mu.Unlock()

	f.snap, f.err = c.doFetch(ctx)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(f.done)

	return f.snap, f.err
}

func (c *Coordinator) doFetch(ctx context.Context) (*Snapshot, error) {
	list, err := c.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching stations for scope %s: %w", c.scope, err)
	}

	if list.ResultadoConsulta != api.ApiResultOK {
		return nil, fmt.Errorf("API returned non-OK result for scope %s: %s", c.scope, list.ResultadoConsulta)
	}

	snap := &Snapshot{
		FetchedAt: time.Now(),
		Scope:     c.scope,
		Date:      list.Fecha,
		Stations:  list.ListaEESSPrecio,
	}
	c.snapshot.Store(snap)

	c.log.Debug("snapshot refreshed", "scope", c.scope, "stations", len(snap.Stations))
	return snap, nil
}

// Start launches the scheduled refresh loop. A failed tick keeps the current
// snapshot and waits for the next one; there is no backoff escalation since
// the interval already dwarfs upstream rate limits.
func (c *Coordinator) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := c.Refresh(ctx, true); err != nil {
					c.log.Error("scheduled refresh failed", "scope", c.scope, "error", err)
				} else {
					c.log.Info("scheduled refresh completed", "scope", c.scope)
				}
			}
		}
	}()
}

// Stop halts the scheduled refresh loop and waits for it to exit.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	c.wg.Wait()
}
