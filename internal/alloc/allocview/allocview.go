// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocview formats allocation results for display.
//
// All formatting and redaction happens here. The aggregator only ever deals
// in exact decimal values.
package allocview

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/bufdev/allocctl/internal/alloc/allocbreakdown"
	"github.com/bufdev/allocctl/internal/alloc/allocdata"
	"github.com/shopspring/decimal"
)

// RedactedPlaceholder replaces money amounts when redaction is on.
const RedactedPlaceholder = "████"

// UndefinedPercent is displayed for a percentage of a zero total.
const UndefinedPercent = "-"

var hundred = decimal.NewFromInt(100)

// Options controls how results are formatted.
type Options struct {
	// Redact replaces every money amount with RedactedPlaceholder.
	Redact bool
	// PostTax is whether the results were computed with the post-tax adjustment.
	PostTax bool
	// Collapsed is the set of account numbers whose positions are not listed.
	// Accounts are expanded by default.
	Collapsed map[string]bool
	// LastUpdated is when the snapshot was fetched. Zero if unknown.
	LastUpdated time.Time
}

// Money formats the amount with FormatMoney, or returns RedactedPlaceholder
// if redaction is on.
func (o Options) Money(amount decimal.Decimal) string {
	if o.Redact {
		return RedactedPlaceholder
	}
	return FormatMoney(amount)
}

// BreakdownOverview is a breakdown formatted for display.
type BreakdownOverview struct {
	Name          string `json:"name"`
	Stocks        string `json:"stocks"`
	StocksPercent string `json:"stocks_percent"`
	Bonds         string `json:"bonds"`
	BondsPercent  string `json:"bonds_percent"`
	Cash          string `json:"cash"`
	CashPercent   string `json:"cash_percent"`
	Total         string `json:"total"`
}

// PositionOverview is a position formatted for display.
type PositionOverview struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description,omitempty"`
	LastPrice   string `json:"last_price,omitempty"`
	Value       string `json:"value"`
	// Percent is the share of the invested (non-cash) value.
	Percent string `json:"percent"`
}

// AccountOverview is an account's breakdown formatted for display.
type AccountOverview struct {
	Number    string             `json:"number"`
	Type      string             `json:"type"`
	Breakdown *BreakdownOverview `json:"breakdown"`
	// Positions is not set for collapsed accounts.
	Positions []*PositionOverview `json:"positions,omitempty"`
}

// Overview is the full allocation overview formatted for display.
type Overview struct {
	LastUpdated string             `json:"last_updated,omitempty"`
	PostTax     bool               `json:"post_tax"`
	Accounts    []*AccountOverview `json:"accounts"`
	RRSP        *BreakdownOverview `json:"rrsp"`
	NonRRSP     *BreakdownOverview `json:"non_rrsp"`
	Overall     *BreakdownOverview `json:"overall"`
}

// NewOverview formats the result.
//
// The portfolio supplies symbol descriptions and last prices where known.
func NewOverview(portfolio *allocdata.Portfolio, result *allocbreakdown.Result, options Options) *Overview {
	overview := &Overview{
		PostTax:  options.PostTax,
		Accounts: make([]*AccountOverview, 0, len(result.Accounts)),
		RRSP:     newBreakdownOverview("RRSP", result.Split.RRSP, options),
		NonRRSP:  newBreakdownOverview("NON-RRSP", result.Split.NonRRSP, options),
		Overall:  newBreakdownOverview("TOTAL", result.Overall, options),
	}
	if !options.LastUpdated.IsZero() {
		overview.LastUpdated = options.LastUpdated.Format(time.RFC3339)
	}
	for _, accountResult := range result.Accounts {
		account := accountResult.Account
		accountOverview := &AccountOverview{
			Number:    account.Number,
			Type:      string(account.Type),
			Breakdown: newBreakdownOverview(AccountName(account), accountResult.Breakdown, options),
		}
		if !options.Collapsed[account.Number] {
			accountOverview.Positions = newPositionOverviews(
				portfolio,
				accountResult.Positions,
				accountResult.Breakdown.Invested(),
				options,
			)
		}
		overview.Accounts = append(overview.Accounts, accountOverview)
	}
	return overview
}

// NewPositionOverviews formats the combined positions of the result, each as
// a share of the portfolio's invested value.
func NewPositionOverviews(portfolio *allocdata.Portfolio, result *allocbreakdown.Result, options Options) []*PositionOverview {
	return newPositionOverviews(portfolio, result.CombinedPositions, result.Overall.Invested(), options)
}

// AccountName returns the display name of the account.
func AccountName(account allocdata.Account) string {
	if account.Type == "" {
		return account.Number
	}
	return string(account.Type) + " " + account.Number
}

// BreakdownOverviewHeaders returns the column headers for table/CSV output.
func BreakdownOverviewHeaders() []string {
	return []string{"NAME", "STOCKS", "STOCKS %", "BONDS", "BONDS %", "CASH", "CASH %", "TOTAL"}
}

// BreakdownOverviewToRow converts a BreakdownOverview to a string slice for table/CSV output.
func BreakdownOverviewToRow(b *BreakdownOverview) []string {
	return []string{
		b.Name,
		b.Stocks,
		b.StocksPercent,
		b.Bonds,
		b.BondsPercent,
		b.Cash,
		b.CashPercent,
		b.Total,
	}
}

// PositionOverviewHeaders returns the column headers for table/CSV output.
func PositionOverviewHeaders() []string {
	return []string{"SYMBOL", "DESCRIPTION", "LAST PRICE", "VALUE", "% INVESTED"}
}

// PositionOverviewToRow converts a PositionOverview to a string slice for table/CSV output.
func PositionOverviewToRow(p *PositionOverview) []string {
	return []string{
		p.Symbol,
		p.Description,
		p.LastPrice,
		p.Value,
		p.Percent,
	}
}

// FormatMoney formats a CAD amount rounded to the nearest whole dollar with
// thousands separators, for example "$1,235".
func FormatMoney(amount decimal.Decimal) string {
	currency := money.GetCurrency(money.CAD)
	cents := amount.Round(0).Shift(int32(currency.Fraction)).IntPart()
	formatted := currency.Formatter().Format(cents)
	// Whole dollars always format with a zero fraction, which is dropped.
	return strings.TrimSuffix(formatted, currency.Decimal+strings.Repeat("0", currency.Fraction))
}

// FormatPrice formats a per-share price with cents, for example "$28.92".
func FormatPrice(price decimal.Decimal) string {
	currency := money.GetCurrency(money.CAD)
	return currency.Formatter().Format(price.Shift(int32(currency.Fraction)).Round(0).IntPart())
}

// FormatPercent formats a fraction as a percentage with one decimal, for
// example "12.3%". Returns UndefinedPercent if ok is false.
func FormatPercent(fraction decimal.Decimal, ok bool) string {
	if !ok {
		return UndefinedPercent
	}
	return fraction.Mul(hundred).StringFixed(1) + "%"
}

// FormatPercentOf formats amount as a percentage of total.
func FormatPercentOf(amount decimal.Decimal, total decimal.Decimal) string {
	return FormatPercent(allocbreakdown.PercentOf(amount, total))
}

// *** PRIVATE ***

func newBreakdownOverview(name string, breakdown allocbreakdown.Breakdown, options Options) *BreakdownOverview {
	return &BreakdownOverview{
		Name:          name,
		Stocks:        options.Money(breakdown.Stocks),
		StocksPercent: FormatPercentOf(breakdown.Stocks, breakdown.Total),
		Bonds:         options.Money(breakdown.Bonds),
		BondsPercent:  FormatPercentOf(breakdown.Bonds, breakdown.Total),
		Cash:          options.Money(breakdown.Cash),
		CashPercent:   FormatPercentOf(breakdown.Cash, breakdown.Total),
		Total:         options.Money(breakdown.Total),
	}
}

func newPositionOverviews(
	portfolio *allocdata.Portfolio,
	positions []allocbreakdown.CombinedPosition,
	invested decimal.Decimal,
	options Options,
) []*PositionOverview {
	positionOverviews := make([]*PositionOverview, 0, len(positions))
	for _, position := range positions {
		positionOverview := &PositionOverview{
			Symbol:  position.Symbol,
			Value:   options.Money(position.Value),
			Percent: FormatPercentOf(position.Value, invested),
		}
		if symbol, ok := portfolio.SymbolByID(position.SymbolID); ok {
			positionOverview.Description = symbol.Description
		}
		if quote, ok := portfolio.QuoteByID(position.SymbolID); ok && !quote.LastTradePrice.IsZero() {
			positionOverview.LastPrice = FormatPrice(quote.LastTradePrice)
		}
		positionOverviews = append(positionOverviews, positionOverview)
	}
	return positionOverviews
}

