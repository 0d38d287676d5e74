// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocctlcmd provides shared wiring for allocctl commands (reading
// config, opening the state store, loading the session, refreshing the snapshot).
package allocctlcmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/internal/alloc/allocbreakdown"
	"github.com/bufdev/allocctl/internal/alloc/allocconfig"
	"github.com/bufdev/allocctl/internal/alloc/allocdata"
	"github.com/bufdev/allocctl/internal/alloc/allocfetch"
	"github.com/bufdev/allocctl/internal/alloc/allocpath"
	"github.com/bufdev/allocctl/internal/alloc/allocsession"
	"github.com/bufdev/allocctl/internal/alloc/allocstate"
	"github.com/bufdev/allocctl/internal/alloc/alloctax"
	"github.com/bufdev/allocctl/internal/alloc/allocview"
	"github.com/bufdev/allocctl/internal/pkg/questrade"
)

// NewStateStore opens the state store in the data directory.
func NewStateStore(container appext.Container) *allocstate.Store {
	return allocstate.NewStore(container.Logger(), allocpath.StateDirPath(container.DataDirPath()))
}

// NewSessionStore returns a session store over the state store.
func NewSessionStore(container appext.Container, stateStore *allocstate.Store) *allocsession.Store {
	return allocsession.NewStore(container.Logger(), stateStore)
}

// NewRefresher constructs a Refresher backed by the Questrade API.
func NewRefresher(container appext.Container, stateStore *allocstate.Store) *allocfetch.Refresher {
	logger := container.Logger()
	return allocfetch.NewRefresher(logger, allocfetch.NewFetcher(logger, questrade.NewClient()), stateStore)
}

// Refresh fetches a fresh snapshot for the stored session and commits it.
//
// Returns an error naming the authorize URL if there is no session or the
// stored access token was rejected.
func Refresh(
	ctx context.Context,
	container appext.Container,
	config *allocconfig.Config,
	stateStore *allocstate.Store,
) (*allocdata.Portfolio, error) {
	session := NewSessionStore(container, stateStore).Load()
	if session == nil {
		return nil, fmt.Errorf(
			"%w, authorize at %s and run \"allocctl auth token <redirect-url>\"",
			allocfetch.ErrNotAuthenticated,
			authorizeURL(config),
		)
	}
	portfolio, err := NewRefresher(container, stateStore).Refresh(ctx, session)
	if err != nil {
		if errors.Is(err, questrade.ErrUnauthorized) {
			return nil, fmt.Errorf(
				"%w, re-authorize at %s and run \"allocctl auth token <redirect-url>\"",
				err,
				authorizeURL(config),
			)
		}
		return nil, err
	}
	return portfolio, nil
}

// LoadPortfolio returns the snapshot to display and when it was fetched.
//
// Unless cached is set, a fresh snapshot is fetched first. Authentication
// failures are returned. Any other fetch failure is logged and the last
// cached snapshot is used instead.
func LoadPortfolio(
	ctx context.Context,
	container appext.Container,
	config *allocconfig.Config,
	stateStore *allocstate.Store,
	cached bool,
) (*allocdata.Portfolio, time.Time, error) {
	portfolio, lastUpdated, err := allocfetch.Load(
		ctx,
		container.Logger(),
		stateStore,
		cached,
		func(ctx context.Context) (*allocdata.Portfolio, error) {
			return Refresh(ctx, container, config, stateStore)
		},
	)
	if errors.Is(err, allocfetch.ErrNoCachedPortfolio) {
		return nil, time.Time{}, fmt.Errorf("%w, run \"allocctl download\" first", err)
	}
	return portfolio, lastUpdated, err
}

// NewPolicy returns the tax policy from the configured rate and the persisted
// post-tax toggle.
func NewPolicy(config *allocconfig.Config, stateStore *allocstate.Store) (alloctax.Policy, error) {
	return alloctax.NewPolicy(
		allocstate.GetOr(stateStore, allocstate.KeyPostTax, false),
		config.TaxRatePercent,
	)
}

// NewViewOptions returns the display options from the persisted toggles.
func NewViewOptions(stateStore *allocstate.Store, policy alloctax.Policy, lastUpdated time.Time) allocview.Options {
	return allocview.Options{
		Redact:      allocstate.GetOr(stateStore, allocstate.KeyRedact, false),
		PostTax:     policy.PostTax,
		Collapsed:   allocstate.GetOr(stateStore, allocstate.KeyCollapsed, map[string]bool{}),
		LastUpdated: lastUpdated,
	}
}

// OnOff returns "on" or "off".
func OnOff(value bool) string {
	if value {
		return "on"
	}
	return "off"
}

// authorizeURL returns the authorize URL for the configured app.
func authorizeURL(config *allocconfig.Config) string {
	return allocsession.AuthorizeURL(config.QuestradeClientID, config.QuestradeRedirectURI)
}

// LoadResult reads the config, loads the portfolio, and computes every
// breakdown under the persisted toggles.
func LoadResult(
	ctx context.Context,
	container appext.Container,
	cached bool,
) (*allocdata.Portfolio, *allocbreakdown.Result, allocview.Options, error) {
	config, err := allocconfig.ReadConfig(container.ConfigDirPath())
	if err != nil {
		return nil, nil, allocview.Options{}, err
	}
	stateStore := NewStateStore(container)
	portfolio, lastUpdated, err := LoadPortfolio(ctx, container, config, stateStore, cached)
	if err != nil {
		return nil, nil, allocview.Options{}, err
	}
	policy, err := NewPolicy(config, stateStore)
	if err != nil {
		return nil, nil, allocview.Options{}, err
	}
	result, err := allocbreakdown.Compute(portfolio, config.AssetClassMap, policy)
	if err != nil {
		return nil, nil, allocview.Options{}, err
	}
	return portfolio, result, NewViewOptions(stateStore, policy, lastUpdated), nil
}
