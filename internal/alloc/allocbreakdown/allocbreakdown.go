// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocbreakdown computes stocks, bonds, and cash breakdowns from a
// portfolio snapshot.
//
// Every function is pure: results are recomputed from the snapshot, the
// asset-class map, and the tax policy each time they are needed, and nothing
// is rounded until presentation. Position values are split across asset
// classes by their symbol's weights; cash comes from the account balance.
// The tax policy only ever discounts RRSP accounts.
package allocbreakdown

import (
	"fmt"
	"sort"

	"github.com/bufdev/allocctl/internal/alloc/allocclass"
	"github.com/bufdev/allocctl/internal/alloc/allocdata"
	"github.com/bufdev/allocctl/internal/alloc/alloctax"
	"github.com/shopspring/decimal"
)

// Breakdown is the value of a set of holdings split by asset class.
//
// Total is always exactly Stocks + Bonds + Cash.
type Breakdown struct {
	Stocks decimal.Decimal `json:"stocks"`
	Bonds  decimal.Decimal `json:"bonds"`
	Cash   decimal.Decimal `json:"cash"`
	Total  decimal.Decimal `json:"total"`
}

// NewBreakdown returns a Breakdown with Total computed from the components.
func NewBreakdown(stocks decimal.Decimal, bonds decimal.Decimal, cash decimal.Decimal) Breakdown {
	return Breakdown{
		Stocks: stocks,
		Bonds:  bonds,
		Cash:   cash,
		Total:  stocks.Add(bonds).Add(cash),
	}
}

// Add returns the component-wise sum of the two breakdowns.
func (b Breakdown) Add(other Breakdown) Breakdown {
	return NewBreakdown(b.Stocks.Add(other.Stocks), b.Bonds.Add(other.Bonds), b.Cash.Add(other.Cash))
}

// Equal returns true if every component is numerically equal.
func (b Breakdown) Equal(other Breakdown) bool {
	return b.Stocks.Equal(other.Stocks) &&
		b.Bonds.Equal(other.Bonds) &&
		b.Cash.Equal(other.Cash) &&
		b.Total.Equal(other.Total)
}

// Invested returns the value held in positions, excluding cash.
func (b Breakdown) Invested() decimal.Decimal {
	return b.Stocks.Add(b.Bonds)
}

// Split is a breakdown partitioned by tax treatment.
type Split struct {
	RRSP    Breakdown `json:"rrsp"`
	NonRRSP Breakdown `json:"non_rrsp"`
}

// Total returns the sum of both partitions.
func (s Split) Total() Breakdown {
	return s.RRSP.Add(s.NonRRSP)
}

// CombinedPosition is the adjusted value of a symbol summed across accounts.
type CombinedPosition struct {
	Symbol   string          `json:"symbol"`
	SymbolID int64           `json:"symbol_id"`
	Value    decimal.Decimal `json:"value"`
}

// PositionValue returns the position's market value under the tax adjustment
// for the account type.
func PositionValue(position allocdata.Position, accountType allocdata.AccountType, policy alloctax.Policy) decimal.Decimal {
	return position.CurrentMarketValue.Mul(policy.AdjustmentFor(accountType))
}

// AccountBreakdown computes the breakdown of a single account.
//
// Returns an error wrapping allocclass.ErrUnmappedSymbol if any position's
// symbol is not in the map.
func AccountBreakdown(
	account allocdata.Account,
	balance allocdata.Balance,
	positions []allocdata.Position,
	classMap *allocclass.Map,
	policy alloctax.Policy,
) (Breakdown, error) {
	stocks := decimal.Zero
	bonds := decimal.Zero
	for _, position := range positions {
		weights, err := classMap.Lookup(position.Symbol)
		if err != nil {
			return Breakdown{}, fmt.Errorf("account %s: %w", account.Number, err)
		}
		value := PositionValue(position, account.Type, policy)
		stocks = stocks.Add(value.Mul(weights.Stocks))
		bonds = bonds.Add(value.Mul(weights.Bonds))
	}
	cash := balance.Cash.Mul(policy.AdjustmentFor(account.Type))
	return NewBreakdown(stocks, bonds, cash), nil
}

// CombinedPositions merges positions across all accounts by symbol, summing
// adjusted values, and returns them ordered by value descending.
//
// Ties keep the order in which symbols were first seen.
func CombinedPositions(
	accounts []allocdata.Account,
	positionsByAccount map[string][]allocdata.Position,
	policy alloctax.Policy,
) []CombinedPosition {
	indexBySymbol := make(map[string]int)
	var combined []CombinedPosition
	for _, account := range accounts {
		for _, position := range positionsByAccount[account.Number] {
			value := PositionValue(position, account.Type, policy)
			if index, ok := indexBySymbol[position.Symbol]; ok {
				combined[index].Value = combined[index].Value.Add(value)
				continue
			}
			indexBySymbol[position.Symbol] = len(combined)
			combined = append(combined, CombinedPosition{
				Symbol:   position.Symbol,
				SymbolID: position.SymbolID,
				Value:    value,
			})
		}
	}
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Value.GreaterThan(combined[j].Value)
	})
	return combined
}

// OverallBreakdown sums the breakdowns of every account.
func OverallBreakdown(
	accounts []allocdata.Account,
	balances map[string]allocdata.Balance,
	positionsByAccount map[string][]allocdata.Position,
	classMap *allocclass.Map,
	policy alloctax.Policy,
) (Breakdown, error) {
	overall := NewBreakdown(decimal.Zero, decimal.Zero, decimal.Zero)
	for _, account := range accounts {
		breakdown, err := AccountBreakdown(account, balances[account.Number], positionsByAccount[account.Number], classMap, policy)
		if err != nil {
			return Breakdown{}, err
		}
		overall = overall.Add(breakdown)
	}
	return overall, nil
}

// RRSPSplit partitions the accounts by whether they are RRSP accounts and
// returns the breakdown of each partition. The tax adjustment only affects
// the RRSP partition.
func RRSPSplit(
	accounts []allocdata.Account,
	balances map[string]allocdata.Balance,
	positionsByAccount map[string][]allocdata.Position,
	classMap *allocclass.Map,
	policy alloctax.Policy,
) (Split, error) {
	var rrspAccounts, nonRRSPAccounts []allocdata.Account
	for _, account := range accounts {
		if account.Type.IsRRSP() {
			rrspAccounts = append(rrspAccounts, account)
		} else {
			nonRRSPAccounts = append(nonRRSPAccounts, account)
		}
	}
	rrsp, err := OverallBreakdown(rrspAccounts, balances, positionsByAccount, classMap, policy)
	if err != nil {
		return Split{}, err
	}
	nonRRSP, err := OverallBreakdown(nonRRSPAccounts, balances, positionsByAccount, classMap, policy)
	if err != nil {
		return Split{}, err
	}
	return Split{
		RRSP:    rrsp,
		NonRRSP: nonRRSP,
	}, nil
}

// PercentOf returns amount / total as a fraction.
//
// Returns false if total is zero, in which case the percentage is undefined.
func PercentOf(amount decimal.Decimal, total decimal.Decimal) (decimal.Decimal, bool) {
	if total.IsZero() {
		return decimal.Zero, false
	}
	return amount.Div(total), true
}
