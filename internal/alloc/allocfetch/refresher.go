// Copyright 2026 Peter Edge
//
// All rights reserved.

package allocfetch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bufdev/allocctl/internal/alloc/allocdata"
	"github.com/bufdev/allocctl/internal/alloc/allocsession"
	"github.com/bufdev/allocctl/internal/alloc/allocstate"
	"github.com/bufdev/allocctl/internal/pkg/questrade"
)

var (
	// ErrSuperseded is returned by Refresh when a newer refresh started before
	// this one completed. A superseded refresh commits nothing.
	ErrSuperseded = errors.New("refresh superseded by a newer refresh")
	// ErrNotAuthenticated is returned when there is no session to refresh with.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoCachedPortfolio is returned by Load when no snapshot is cached.
	ErrNoCachedPortfolio = errors.New("no cached portfolio")
)

// Refresher fetches snapshots and commits them to the state store.
//
// Overlapping refreshes never race: starting a refresh cancels the one in
// flight, and only the most recently started refresh may commit.
type Refresher struct {
	logger     *slog.Logger
	fetcher    Fetcher
	stateStore *allocstate.Store
	now        func() time.Time

	lock       sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// NewRefresher returns a new Refresher.
func NewRefresher(logger *slog.Logger, fetcher Fetcher, stateStore *allocstate.Store) *Refresher {
	return &Refresher{
		logger:     logger,
		fetcher:    fetcher,
		stateStore: stateStore,
		now:        time.Now,
	}
}

// Refresh fetches a new snapshot and commits it to the state store.
//
// Returns ErrSuperseded if another Refresh started while this one was in flight.
func (r *Refresher) Refresh(ctx context.Context, session *allocsession.Session) (*allocdata.Portfolio, error) {
	r.lock.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.generation++
	generation := r.generation
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.lock.Unlock()
	defer cancel()

	portfolio, err := r.fetcher.FetchPortfolio(ctx, session)

	r.lock.Lock()
	defer r.lock.Unlock()
	if generation != r.generation {
		r.logger.Debug("discarding superseded refresh", "generation", generation, "current_generation", r.generation)
		return nil, ErrSuperseded
	}
	r.cancel = nil
	if err != nil {
		return nil, err
	}
	updated := r.now()
	// One document, so concurrent processes never leave a mix of two snapshots.
	r.stateStore.Set(allocstate.KeySnapshot, &snapshot{
		Portfolio:   portfolio,
		LastUpdated: updated,
	})
	r.logger.Info("portfolio refreshed", "accounts", len(portfolio.Accounts), "last_updated", updated.Format(time.RFC3339))
	return portfolio, nil
}

// LoadCached returns the last committed snapshot and when it was fetched.
//
// Returns false if no complete, consistent snapshot is cached.
func LoadCached(stateStore *allocstate.Store) (*allocdata.Portfolio, time.Time, bool) {
	cached := allocstate.GetOr[*snapshot](stateStore, allocstate.KeySnapshot, nil)
	if cached == nil || cached.Portfolio == nil {
		return nil, time.Time{}, false
	}
	if err := cached.Portfolio.Validate(); err != nil {
		return nil, time.Time{}, false
	}
	return cached.Portfolio, cached.LastUpdated, true
}

// Load returns the snapshot to display and when it was fetched.
//
// Unless cached is set, refresh is called first. ErrNotAuthenticated and
// questrade.ErrUnauthorized are returned as is. Any other refresh failure is
// logged and the last cached snapshot is used instead. Returns
// ErrNoCachedPortfolio if there is nothing to fall back to.
func Load(
	ctx context.Context,
	logger *slog.Logger,
	stateStore *allocstate.Store,
	cached bool,
	refresh func(context.Context) (*allocdata.Portfolio, error),
) (*allocdata.Portfolio, time.Time, error) {
	if !cached {
		portfolio, err := refresh(ctx)
		if err == nil {
			_, lastUpdated, _ := LoadCached(stateStore)
			return portfolio, lastUpdated, nil
		}
		if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, questrade.ErrUnauthorized) {
			return nil, time.Time{}, err
		}
		logger.Warn("refresh failed, using cached portfolio", "error", err)
	}
	portfolio, lastUpdated, ok := LoadCached(stateStore)
	if !ok {
		return nil, time.Time{}, ErrNoCachedPortfolio
	}
	return portfolio, lastUpdated, nil
}

// *** PRIVATE ***

type snapshot struct {
	Portfolio   *allocdata.Portfolio `json:"portfolio"`
	LastUpdated time.Time            `json:"last_updated"`
}
