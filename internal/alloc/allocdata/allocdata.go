// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocdata defines the portfolio snapshot that allocctl fetches,
// persists, and aggregates.
//
// A Portfolio is an immutable snapshot: it is replaced wholesale on every
// refresh and never partially updated.
package allocdata

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountTypeRRSP is the Questrade account type for a Registered Retirement Savings Plan.
const AccountTypeRRSP AccountType = "RRSP"

// ErrInconsistentPortfolio is returned when accounts, balances, and positions
// do not form a matched set keyed by account number.
var ErrInconsistentPortfolio = errors.New("inconsistent portfolio")

// AccountType is the Questrade account type (e.g., "RRSP", "TFSA", "Margin").
type AccountType string

// IsRRSP returns true if the account type is RRSP.
func (t AccountType) IsRRSP() bool {
	return t == AccountTypeRRSP
}

// Account is a brokerage account.
type Account struct {
	// Number is the unique account number.
	Number string `json:"number"`
	// Type is the account type.
	Type AccountType `json:"type"`
	// Status is the account status (e.g., "Active").
	Status string `json:"status,omitempty"`
	// IsPrimary is true for the client's primary account.
	IsPrimary bool `json:"isPrimary,omitempty"`
}

// Balance is the combined balance of an account in a single currency.
type Balance struct {
	// Currency is the ISO currency code, always "CAD" after fetching.
	Currency string `json:"currency"`
	// Cash is the cash balance.
	Cash decimal.Decimal `json:"cash"`
	// MarketValue is the market value of all positions.
	MarketValue decimal.Decimal `json:"marketValue"`
	// TotalEquity is cash plus market value.
	TotalEquity decimal.Decimal `json:"totalEquity"`
}

// Position is a holding of a single symbol within an account.
type Position struct {
	// Symbol is the ticker symbol (e.g., "VBAL.TO").
	Symbol string `json:"symbol"`
	// SymbolID is the Questrade internal symbol identifier.
	SymbolID int64 `json:"symbolId"`
	// OpenQuantity is the number of units held.
	OpenQuantity decimal.Decimal `json:"openQuantity"`
	// CurrentPrice is the most recent price per unit.
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	// CurrentMarketValue is the market value of the position.
	CurrentMarketValue decimal.Decimal `json:"currentMarketValue"`
}

// Symbol is descriptive metadata for a symbol.
type Symbol struct {
	SymbolID     int64  `json:"symbolId"`
	Symbol       string `json:"symbol"`
	Description  string `json:"description"`
	SecurityType string `json:"securityType"`
	Currency     string `json:"currency"`
}

// Quote is a market quote for a symbol.
type Quote struct {
	SymbolID       int64           `json:"symbolId"`
	Symbol         string          `json:"symbol"`
	LastTradePrice decimal.Decimal `json:"lastTradePrice"`
	BidPrice       decimal.Decimal `json:"bidPrice"`
	AskPrice       decimal.Decimal `json:"askPrice"`
}

// Portfolio is a complete fetched snapshot.
type Portfolio struct {
	// Accounts is the ordered list of accounts.
	Accounts []Account `json:"accounts"`
	// Balances maps account number to the account's CAD balance.
	Balances map[string]Balance `json:"balances"`
	// Positions maps account number to the account's ordered positions.
	Positions map[string][]Position `json:"positions"`
	// Symbols is the metadata for every held symbol.
	Symbols []Symbol `json:"symbols,omitempty"`
	// Quotes is the latest quote for every held symbol.
	Quotes []Quote `json:"quotes,omitempty"`
}

// Validate checks that accounts, balances, and positions are a matched set:
// every account has exactly one balance and a position list, and every
// balance or position list belongs to a known account.
func (p *Portfolio) Validate() error {
	accountNumbers := make(map[string]struct{}, len(p.Accounts))
	for _, account := range p.Accounts {
		if account.Number == "" {
			return fmt.Errorf("%w: account with empty number", ErrInconsistentPortfolio)
		}
		if _, ok := accountNumbers[account.Number]; ok {
			return fmt.Errorf("%w: duplicate account %s", ErrInconsistentPortfolio, account.Number)
		}
		accountNumbers[account.Number] = struct{}{}
		if _, ok := p.Balances[account.Number]; !ok {
			return fmt.Errorf("%w: no balance for account %s", ErrInconsistentPortfolio, account.Number)
		}
		if _, ok := p.Positions[account.Number]; !ok {
			return fmt.Errorf("%w: no positions for account %s", ErrInconsistentPortfolio, account.Number)
		}
	}
	for number := range p.Balances {
		if _, ok := accountNumbers[number]; !ok {
			return fmt.Errorf("%w: balance for unknown account %s", ErrInconsistentPortfolio, number)
		}
	}
	for number := range p.Positions {
		if _, ok := accountNumbers[number]; !ok {
			return fmt.Errorf("%w: positions for unknown account %s", ErrInconsistentPortfolio, number)
		}
	}
	return nil
}

// SymbolByID returns the symbol metadata for the given symbol ID.
func (p *Portfolio) SymbolByID(symbolID int64) (Symbol, bool) {
	for _, symbol := range p.Symbols {
		if symbol.SymbolID == symbolID {
			return symbol, true
		}
	}
	return Symbol{}, false
}

// QuoteByID returns the quote for the given symbol ID.
func (p *Portfolio) QuoteByID(symbolID int64) (Quote, bool) {
	for _, quote := range p.Quotes {
		if quote.SymbolID == symbolID {
			return quote, true
		}
	}
	return Quote{}, false
}

// HeldSymbolIDs returns the distinct symbol IDs across all positions, in first-seen order.
func (p *Portfolio) HeldSymbolIDs() []int64 {
	seen := make(map[int64]struct{})
	var symbolIDs []int64
	for _, account := range p.Accounts {
		for _, position := range p.Positions[account.Number] {
			if _, ok := seen[position.SymbolID]; ok {
				continue
			}
			seen[position.SymbolID] = struct{}{}
			symbolIDs = append(symbolIDs, position.SymbolID)
		}
	}
	return symbolIDs
}
