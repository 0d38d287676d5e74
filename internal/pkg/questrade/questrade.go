// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package questrade provides a client for the Questrade REST API.
//
// Every request is an authenticated GET against the per-session API server
// returned by the OAuth flow (e.g., https://api01.iq.questrade.com/), under
// the v1 prefix. Only the fields allocctl consumes are decoded.
//
// See https://www.questrade.com/api/documentation for the API reference.
package questrade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnauthorized is returned when the API rejects the access token,
// typically because it has expired.
var ErrUnauthorized = errors.New("questrade access token rejected")

// Credentials identify an authenticated session.
type Credentials struct {
	// AccessToken is the OAuth bearer token.
	AccessToken string
	// APIServer is the base URL of the session's API server.
	APIServer string
}

// StatusError is returned for unexpected non-200 responses other than 401.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Account is an account as returned by the accounts endpoint.
type Account struct {
	Type      string `json:"type"`
	Number    string `json:"number"`
	Status    string `json:"status"`
	IsPrimary bool   `json:"isPrimary"`
}

// Position is a position as returned by the positions endpoint.
type Position struct {
	Symbol             string          `json:"symbol"`
	SymbolID           int64           `json:"symbolId"`
	OpenQuantity       decimal.Decimal `json:"openQuantity"`
	CurrentPrice       decimal.Decimal `json:"currentPrice"`
	CurrentMarketValue decimal.Decimal `json:"currentMarketValue"`
}

// Balance is a single-currency balance as returned by the balances endpoint.
type Balance struct {
	Currency    string          `json:"currency"`
	Cash        decimal.Decimal `json:"cash"`
	MarketValue decimal.Decimal `json:"marketValue"`
	TotalEquity decimal.Decimal `json:"totalEquity"`
}

// Balances is the response of the balances endpoint.
type Balances struct {
	// PerCurrencyBalances is the balance held in each currency.
	PerCurrencyBalances []Balance `json:"perCurrencyBalances"`
	// CombinedBalances is the whole account's balance expressed in each currency.
	CombinedBalances []Balance `json:"combinedBalances"`
}

// Symbol is symbol metadata as returned by the symbols endpoint.
type Symbol struct {
	Symbol       string `json:"symbol"`
	SymbolID     int64  `json:"symbolId"`
	Description  string `json:"description"`
	SecurityType string `json:"securityType"`
	Currency     string `json:"currency"`
}

// Quote is a Level 1 quote as returned by the markets/quotes endpoint.
type Quote struct {
	Symbol         string          `json:"symbol"`
	SymbolID       int64           `json:"symbolId"`
	LastTradePrice decimal.Decimal `json:"lastTradePrice"`
	BidPrice       decimal.Decimal `json:"bidPrice"`
	AskPrice       decimal.Decimal `json:"askPrice"`
}

// Client is the interface for the Questrade REST API.
type Client interface {
	// GetAccounts lists the session's accounts.
	GetAccounts(ctx context.Context, credentials Credentials) ([]Account, error)
	// GetPositions lists an account's positions.
	GetPositions(ctx context.Context, credentials Credentials, accountNumber string) ([]Position, error)
	// GetBalances returns an account's balances.
	GetBalances(ctx context.Context, credentials Credentials, accountNumber string) (*Balances, error)
	// GetSymbols returns metadata for the given symbol IDs.
	GetSymbols(ctx context.Context, credentials Credentials, symbolIDs []int64) ([]Symbol, error)
	// GetQuotes returns quotes for the given symbol IDs.
	GetQuotes(ctx context.Context, credentials Credentials, symbolIDs []int64) ([]Quote, error)
}

// NewClient creates a new Questrade client.
func NewClient() Client {
	return newClient(http.DefaultClient)
}

// *** PRIVATE ***

type client struct {
	httpClient *http.Client
}

func newClient(httpClient *http.Client) *client {
	return &client{
		httpClient: httpClient,
	}
}

func (c *client) GetAccounts(ctx context.Context, credentials Credentials) ([]Account, error) {
	var response struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.get(ctx, credentials, "accounts", &response); err != nil {
		return nil, err
	}
	return response.Accounts, nil
}

func (c *client) GetPositions(ctx context.Context, credentials Credentials, accountNumber string) ([]Position, error) {
	var response struct {
		Positions []Position `json:"positions"`
	}
	if err := c.get(ctx, credentials, "accounts/"+accountNumber+"/positions", &response); err != nil {
		return nil, err
	}
	return response.Positions, nil
}

func (c *client) GetBalances(ctx context.Context, credentials Credentials, accountNumber string) (*Balances, error) {
	var response Balances
	if err := c.get(ctx, credentials, "accounts/"+accountNumber+"/balances", &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *client) GetSymbols(ctx context.Context, credentials Credentials, symbolIDs []int64) ([]Symbol, error) {
	if len(symbolIDs) == 0 {
		return nil, nil
	}
	var response struct {
		Symbols []Symbol `json:"symbols"`
	}
	if err := c.get(ctx, credentials, "symbols?ids="+joinIDs(symbolIDs), &response); err != nil {
		return nil, err
	}
	return response.Symbols, nil
}

func (c *client) GetQuotes(ctx context.Context, credentials Credentials, symbolIDs []int64) ([]Quote, error) {
	if len(symbolIDs) == 0 {
		return nil, nil
	}
	var response struct {
		Quotes []Quote `json:"quotes"`
	}
	if err := c.get(ctx, credentials, "markets/quotes?ids="+joinIDs(symbolIDs), &response); err != nil {
		return nil, err
	}
	return response.Quotes, nil
}

// get issues an authenticated GET for the resource and decodes the JSON response into v.
func (c *client) get(ctx context.Context, credentials Credentials, resource string, v any) error {
	if credentials.AccessToken == "" {
		return errors.New("access token is required")
	}
	if credentials.APIServer == "" {
		return errors.New("api server is required")
	}
	reqURL := resourceURL(credentials.APIServer, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+credentials.AccessToken)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", resource, ErrUnauthorized)
	default:
		return fmt.Errorf("%s: %w", resource, &StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing %s response: %w", resource, err)
	}
	return nil
}

// resourceURL joins the API server and the v1 resource path.
// The API server is returned with a trailing slash, but tolerate its absence.
func resourceURL(apiServer string, resource string) string {
	return strings.TrimSuffix(apiServer, "/") + "/v1/" + resource
}

func joinIDs(symbolIDs []int64) string {
	ids := make([]string, len(symbolIDs))
	for i, symbolID := range symbolIDs {
		ids[i] = strconv.FormatInt(symbolID, 10)
	}
	return strings.Join(ids, ",")
}
