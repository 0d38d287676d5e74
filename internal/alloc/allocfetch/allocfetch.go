// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocfetch fetches portfolio snapshots from Questrade.
//
// A fetch lists accounts, then fetches every account's positions and balances
// concurrently. The fetch is all-or-nothing: the first failure cancels the
// remaining requests and fails the whole fetch.
package allocfetch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bufdev/allocctl/internal/alloc/allocdata"
	"github.com/bufdev/allocctl/internal/alloc/allocsession"
	"github.com/bufdev/allocctl/internal/pkg/questrade"
	"golang.org/x/sync/errgroup"
)

// balanceCurrency is the currency of the combined balance kept per account.
const balanceCurrency = "CAD"

// Fetcher fetches portfolio snapshots.
type Fetcher interface {
	// FetchPortfolio fetches a complete, validated snapshot for the session.
	//
	// Accounts are ordered by total equity descending and each account's
	// positions by current market value descending.
	FetchPortfolio(ctx context.Context, session *allocsession.Session) (*allocdata.Portfolio, error)
}

// NewFetcher returns a new Fetcher.
func NewFetcher(logger *slog.Logger, client questrade.Client) Fetcher {
	return &fetcher{
		logger: logger,
		client: client,
	}
}

// *** PRIVATE ***

type fetcher struct {
	logger *slog.Logger
	client questrade.Client
}

func (f *fetcher) FetchPortfolio(ctx context.Context, session *allocsession.Session) (*allocdata.Portfolio, error) {
	credentials := questrade.Credentials{
		AccessToken: session.AccessToken,
		APIServer:   session.APIServer,
	}
	// Step 1: List accounts.
	questradeAccounts, err := f.client.GetAccounts(ctx, credentials)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	f.logger.Debug("accounts listed", "count", len(questradeAccounts))

	// Step 2: Fan out positions and balances per account. Each goroutine
	// writes only its own slot.
	accounts := make([]allocdata.Account, len(questradeAccounts))
	balances := make([]allocdata.Balance, len(questradeAccounts))
	positions := make([][]allocdata.Position, len(questradeAccounts))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, questradeAccount := range questradeAccounts {
		accounts[i] = accountFromQuestrade(questradeAccount)
		eg.Go(func() error {
			questradePositions, err := f.client.GetPositions(egCtx, credentials, questradeAccount.Number)
			if err != nil {
				return fmt.Errorf("fetching positions for account %s: %w", questradeAccount.Number, err)
			}
			positions[i] = sortPositions(positionsFromQuestrade(questradePositions))
			return nil
		})
		eg.Go(func() error {
			questradeBalances, err := f.client.GetBalances(egCtx, credentials, questradeAccount.Number)
			if err != nil {
				return fmt.Errorf("fetching balances for account %s: %w", questradeAccount.Number, err)
			}
			balance, err := combinedBalance(questradeBalances)
			if err != nil {
				return fmt.Errorf("account %s: %w", questradeAccount.Number, err)
			}
			balances[i] = balance
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Step 3: Order accounts by total equity now that balances are known.
	order := make([]int, len(accounts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return balances[order[i]].TotalEquity.GreaterThan(balances[order[j]].TotalEquity)
	})
	portfolio := &allocdata.Portfolio{
		Accounts:  make([]allocdata.Account, 0, len(accounts)),
		Balances:  make(map[string]allocdata.Balance, len(accounts)),
		Positions: make(map[string][]allocdata.Position, len(accounts)),
	}
	for _, index := range order {
		account := accounts[index]
		portfolio.Accounts = append(portfolio.Accounts, account)
		portfolio.Balances[account.Number] = balances[index]
		portfolio.Positions[account.Number] = positions[index]
	}
	if err := portfolio.Validate(); err != nil {
		return nil, err
	}

	// Step 4: Enrich with symbol metadata and quotes for every held symbol.
	symbolIDs := portfolio.HeldSymbolIDs()
	if len(symbolIDs) > 0 {
		symbols, err := f.client.GetSymbols(ctx, credentials, symbolIDs)
		if err != nil {
			return nil, fmt.Errorf("fetching symbols: %w", err)
		}
		quotes, err := f.client.GetQuotes(ctx, credentials, symbolIDs)
		if err != nil {
			return nil, fmt.Errorf("fetching quotes: %w", err)
		}
		portfolio.Symbols = symbolsFromQuestrade(symbols)
		portfolio.Quotes = quotesFromQuestrade(quotes)
	}
	f.logger.Info(
		"portfolio fetched",
		"accounts", len(portfolio.Accounts),
		"symbols", len(symbolIDs),
	)
	return portfolio, nil
}

// combinedBalance returns the CAD combined balance.
func combinedBalance(balances *questrade.Balances) (allocdata.Balance, error) {
	for _, balance := range balances.CombinedBalances {
		if balance.Currency == balanceCurrency {
			return allocdata.Balance{
				Currency:    balance.Currency,
				Cash:        balance.Cash,
				MarketValue: balance.MarketValue,
				TotalEquity: balance.TotalEquity,
			}, nil
		}
	}
	return allocdata.Balance{}, fmt.Errorf("%w: no %s combined balance", allocdata.ErrInconsistentPortfolio, balanceCurrency)
}

// sortPositions orders positions by current market value descending.
func sortPositions(positions []allocdata.Position) []allocdata.Position {
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].CurrentMarketValue.GreaterThan(positions[j].CurrentMarketValue)
	})
	return positions
}
