// Copyright 2026 Peter Edge
//
// All rights reserved.

package allocfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bufdev/allocctl/internal/alloc/allocdata"
	"github.com/bufdev/allocctl/internal/alloc/allocsession"
	"github.com/bufdev/allocctl/internal/alloc/allocstate"
	"github.com/bufdev/allocctl/internal/pkg/questrade"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFetchPortfolio(t *testing.T) {
	t.Parallel()
	client := newFakeClient()
	fetcher := NewFetcher(newTestLogger(), client)
	portfolio, err := fetcher.FetchPortfolio(context.Background(), testSession)
	require.NoError(t, err)
	require.NoError(t, portfolio.Validate())

	// Accounts are ordered by total equity descending.
	require.Empty(t, cmp.Diff([]string{"222", "111", "333"}, accountNumbers(portfolio.Accounts)))
	require.Equal(t, allocdata.AccountTypeRRSP, portfolio.Accounts[1].Type)

	// Only the CAD combined balance is kept.
	balance := portfolio.Balances["111"]
	require.Equal(t, "CAD", balance.Currency)
	require.Equal(t, "100", balance.Cash.String())

	// Positions are ordered by market value descending.
	require.Empty(t, cmp.Diff([]string{"XEQT.TO", "VBAL.TO", "XBB.TO"}, positionSymbols(portfolio.Positions["111"])))
	// Accounts without positions have an empty, non-nil position list.
	require.NotNil(t, portfolio.Positions["333"])
	require.Empty(t, portfolio.Positions["333"])

	// Symbols and quotes are fetched once for every held symbol.
	require.Len(t, portfolio.Symbols, 4)
	require.Len(t, portfolio.Quotes, 4)
	symbol, ok := portfolio.SymbolByID(2)
	require.True(t, ok)
	require.Equal(t, "XBB.TO description", symbol.Description)
	quote, ok := portfolio.QuoteByID(3)
	require.True(t, ok)
	require.Equal(t, "XEQT.TO", quote.Symbol)
}

func TestFetchPortfolioAllOrNothing(t *testing.T) {
	t.Parallel()
	client := newFakeClient()
	client.positionsErr["222"] = errors.New("boom")
	_, err := NewFetcher(newTestLogger(), client).FetchPortfolio(context.Background(), testSession)
	require.Error(t, err)
	require.Contains(t, err.Error(), "222")

	client = newFakeClient()
	client.balancesErr["333"] = questrade.ErrUnauthorized
	_, err = NewFetcher(newTestLogger(), client).FetchPortfolio(context.Background(), testSession)
	require.ErrorIs(t, err, questrade.ErrUnauthorized)

	client = newFakeClient()
	client.accountsErr = questrade.ErrUnauthorized
	_, err = NewFetcher(newTestLogger(), client).FetchPortfolio(context.Background(), testSession)
	require.ErrorIs(t, err, questrade.ErrUnauthorized)
}

func TestFetchPortfolioMissingCADBalance(t *testing.T) {
	t.Parallel()
	client := newFakeClient()
	client.balances["111"] = &questrade.Balances{
		CombinedBalances: []questrade.Balance{{Currency: "USD", Cash: decimal.NewFromInt(1)}},
	}
	_, err := NewFetcher(newTestLogger(), client).FetchPortfolio(context.Background(), testSession)
	require.ErrorIs(t, err, allocdata.ErrInconsistentPortfolio)
}

func TestRefresherCommitsSnapshot(t *testing.T) {
	t.Parallel()
	logger := newTestLogger()
	dirPath := t.TempDir()
	stateStore := allocstate.NewStore(logger, dirPath)
	_, _, ok := LoadCached(stateStore)
	require.False(t, ok)

	refresher := NewRefresher(logger, NewFetcher(logger, newFakeClient()), stateStore)
	fixedNow := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	refresher.now = func() time.Time { return fixedNow }
	fetched, err := refresher.Refresh(context.Background(), testSession)
	require.NoError(t, err)

	// A fresh store over the same directory reads the committed snapshot.
	cached, lastUpdated, ok := LoadCached(allocstate.NewStore(logger, dirPath))
	require.True(t, ok)
	require.True(t, lastUpdated.Equal(fixedNow))
	require.Empty(t, cmp.Diff(accountNumbers(fetched.Accounts), accountNumbers(cached.Accounts)))
	require.Empty(t, cmp.Diff(positionSymbols(fetched.Positions["111"]), positionSymbols(cached.Positions["111"])))
	require.True(t, fetched.Balances["222"].TotalEquity.Equal(cached.Balances["222"].TotalEquity))
	require.Len(t, cached.Symbols, 4)
	require.Len(t, cached.Quotes, 4)

	// The snapshot is persisted as a single document.
	dirEntries, err := os.ReadDir(dirPath)
	require.NoError(t, err)
	require.Len(t, dirEntries, 1)
	require.Equal(t, allocstate.KeySnapshot+".json", dirEntries[0].Name())
}

func TestRefresherFailureKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()
	logger := newTestLogger()
	stateStore := allocstate.NewStore(logger, t.TempDir())
	client := newFakeClient()
	refresher := NewRefresher(logger, NewFetcher(logger, client), stateStore)
	_, err := refresher.Refresh(context.Background(), testSession)
	require.NoError(t, err)

	client.setAccountsErr(errors.New("boom"))
	_, err = refresher.Refresh(context.Background(), testSession)
	require.Error(t, err)
	cached, _, ok := LoadCached(stateStore)
	require.True(t, ok)
	require.Len(t, cached.Accounts, 3)
}

func TestRefresherSupersedesInFlightRefresh(t *testing.T) {
	t.Parallel()
	logger := newTestLogger()
	stateStore := allocstate.NewStore(logger, t.TempDir())
	fetcher := &blockingFetcher{
		started: make(chan struct{}),
		slow: &allocdata.Portfolio{
			Accounts:  []allocdata.Account{{Number: "slow"}},
			Balances:  map[string]allocdata.Balance{"slow": {Currency: "CAD"}},
			Positions: map[string][]allocdata.Position{"slow": {}},
		},
		fast: &allocdata.Portfolio{
			Accounts:  []allocdata.Account{{Number: "fast"}},
			Balances:  map[string]allocdata.Balance{"fast": {Currency: "CAD"}},
			Positions: map[string][]allocdata.Position{"fast": {}},
		},
	}
	refresher := NewRefresher(logger, fetcher, stateStore)

	var slowErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = refresher.Refresh(context.Background(), testSession)
	}()
	// Wait until the first refresh is in flight, then start a second.
	<-fetcher.started
	fastPortfolio, err := refresher.Refresh(context.Background(), testSession)
	require.NoError(t, err)
	require.Equal(t, "fast", fastPortfolio.Accounts[0].Number)
	wg.Wait()
	require.ErrorIs(t, slowErr, ErrSuperseded)

	// The superseded refresh committed nothing.
	cached, _, ok := LoadCached(stateStore)
	require.True(t, ok)
	require.Equal(t, "fast", cached.Accounts[0].Number)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		// withCache commits a snapshot before loading.
		withCache  bool
		cached     bool
		refreshErr error
		// wantErr is checked with errors.Is.
		wantErr      error
		wantRefresh  bool
		wantAccounts int
	}{
		{name: "fresh", refreshErr: nil, wantRefresh: true, wantAccounts: 3},
		{name: "cached_flag_skips_refresh", withCache: true, cached: true, wantAccounts: 3},
		{name: "cached_flag_without_cache", cached: true, wantErr: ErrNoCachedPortfolio},
		{name: "not_authenticated_is_returned", withCache: true, refreshErr: ErrNotAuthenticated, wantErr: ErrNotAuthenticated, wantRefresh: true},
		{name: "unauthorized_is_returned", withCache: true, refreshErr: questrade.ErrUnauthorized, wantErr: questrade.ErrUnauthorized, wantRefresh: true},
		{name: "other_error_falls_back_to_cache", withCache: true, refreshErr: errors.New("boom"), wantRefresh: true, wantAccounts: 3},
		{name: "other_error_without_cache", refreshErr: errors.New("boom"), wantErr: ErrNoCachedPortfolio, wantRefresh: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			logger := newTestLogger()
			stateStore := allocstate.NewStore(logger, t.TempDir())
			refresher := NewRefresher(logger, NewFetcher(logger, newFakeClient()), stateStore)
			fixedNow := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			refresher.now = func() time.Time { return fixedNow }
			if test.withCache {
				_, err := refresher.Refresh(context.Background(), testSession)
				require.NoError(t, err)
			}
			var refreshed bool
			refresh := func(ctx context.Context) (*allocdata.Portfolio, error) {
				refreshed = true
				if test.refreshErr != nil {
					return nil, fmt.Errorf("refreshing: %w", test.refreshErr)
				}
				return refresher.Refresh(ctx, testSession)
			}
			portfolio, lastUpdated, err := Load(context.Background(), logger, stateStore, test.cached, refresh)
			require.Equal(t, test.wantRefresh, refreshed)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				require.Nil(t, portfolio)
				return
			}
			require.NoError(t, err)
			require.Len(t, portfolio.Accounts, test.wantAccounts)
			require.True(t, lastUpdated.Equal(fixedNow))
		})
	}
}

var testSession = &allocsession.Session{
	AccessToken: "token",
	APIServer:   "https://api01.iq.questrade.com/",
}

// blockingFetcher blocks its first fetch until the context is canceled and
// returns immediately on every later fetch.
type blockingFetcher struct {
	started chan struct{}
	slow    *allocdata.Portfolio
	fast    *allocdata.Portfolio

	lock  sync.Mutex
	calls int
}

func (f *blockingFetcher) FetchPortfolio(ctx context.Context, _ *allocsession.Session) (*allocdata.Portfolio, error) {
	f.lock.Lock()
	f.calls++
	call := f.calls
	f.lock.Unlock()
	if call > 1 {
		return f.fast, nil
	}
	close(f.started)
	<-ctx.Done()
	return f.slow, nil
}

type fakeClient struct {
	lock         sync.Mutex
	accounts     []questrade.Account
	accountsErr  error
	positions    map[string][]questrade.Position
	positionsErr map[string]error
	balances     map[string]*questrade.Balances
	balancesErr  map[string]error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		accounts: []questrade.Account{
			{Number: "111", Type: "RRSP"},
			{Number: "222", Type: "TFSA"},
			{Number: "333", Type: "Margin"},
		},
		positions: map[string][]questrade.Position{
			"111": {
				newQuestradePosition("XBB.TO", 2, "100"),
				newQuestradePosition("XEQT.TO", 3, "3000"),
				newQuestradePosition("VBAL.TO", 1, "500"),
			},
			"222": {
				newQuestradePosition("VBAL.TO", 1, "9000"),
				newQuestradePosition("ZAG.TO", 4, "1000"),
			},
		},
		positionsErr: make(map[string]error),
		balances: map[string]*questrade.Balances{
			"111": newQuestradeBalances("100", "3700"),
			"222": newQuestradeBalances("0", "10000"),
			"333": newQuestradeBalances("50", "50"),
		},
		balancesErr: make(map[string]error),
	}
}

func (c *fakeClient) setAccountsErr(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.accountsErr = err
}

func (c *fakeClient) GetAccounts(context.Context, questrade.Credentials) ([]questrade.Account, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.accountsErr != nil {
		return nil, c.accountsErr
	}
	return c.accounts, nil
}

func (c *fakeClient) GetPositions(_ context.Context, _ questrade.Credentials, accountNumber string) ([]questrade.Position, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.positionsErr[accountNumber]; err != nil {
		return nil, err
	}
	// Copy so the fetcher's sort does not reorder the fixture.
	return append([]questrade.Position(nil), c.positions[accountNumber]...), nil
}

func (c *fakeClient) GetBalances(_ context.Context, _ questrade.Credentials, accountNumber string) (*questrade.Balances, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.balancesErr[accountNumber]; err != nil {
		return nil, err
	}
	return c.balances[accountNumber], nil
}

func (c *fakeClient) GetSymbols(_ context.Context, _ questrade.Credentials, symbolIDs []int64) ([]questrade.Symbol, error) {
	symbols := make([]questrade.Symbol, 0, len(symbolIDs))
	for _, symbolID := range symbolIDs {
		name := c.symbolName(symbolID)
		symbols = append(symbols, questrade.Symbol{SymbolID: symbolID, Symbol: name, Description: name + " description"})
	}
	return symbols, nil
}

func (c *fakeClient) GetQuotes(_ context.Context, _ questrade.Credentials, symbolIDs []int64) ([]questrade.Quote, error) {
	quotes := make([]questrade.Quote, 0, len(symbolIDs))
	for _, symbolID := range symbolIDs {
		quotes = append(quotes, questrade.Quote{SymbolID: symbolID, Symbol: c.symbolName(symbolID), LastTradePrice: decimal.NewFromInt(symbolID)})
	}
	return quotes, nil
}

func (c *fakeClient) symbolName(symbolID int64) string {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, positions := range c.positions {
		for _, position := range positions {
			if position.SymbolID == symbolID {
				return position.Symbol
			}
		}
	}
	return ""
}

func newQuestradePosition(symbol string, symbolID int64, marketValue string) questrade.Position {
	return questrade.Position{
		Symbol:             symbol,
		SymbolID:           symbolID,
		CurrentMarketValue: decimal.RequireFromString(marketValue),
	}
}

func newQuestradeBalances(cash string, totalEquity string) *questrade.Balances {
	return &questrade.Balances{
		PerCurrencyBalances: []questrade.Balance{
			{Currency: "CAD", Cash: decimal.RequireFromString(cash)},
		},
		CombinedBalances: []questrade.Balance{
			{Currency: "USD", Cash: decimal.NewFromInt(1), TotalEquity: decimal.NewFromInt(1)},
			{Currency: "CAD", Cash: decimal.RequireFromString(cash), TotalEquity: decimal.RequireFromString(totalEquity)},
		},
	}
}

func accountNumbers(accounts []allocdata.Account) []string {
	numbers := make([]string, 0, len(accounts))
	for _, account := range accounts {
		numbers = append(numbers, account.Number)
	}
	return numbers
}

func positionSymbols(positions []allocdata.Position) []string {
	symbols := make([]string, 0, len(positions))
	for _, position := range positions {
		symbols = append(symbols, position.Symbol)
	}
	return symbols
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
