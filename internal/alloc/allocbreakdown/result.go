// Copyright 2026 Peter Edge
//
// All rights reserved.

package allocbreakdown

import (
	"github.com/bufdev/allocctl/internal/alloc/allocclass"
	"github.com/bufdev/allocctl/internal/alloc/allocdata"
	"github.com/bufdev/allocctl/internal/alloc/alloctax"
)

// Result is every breakdown derived from a single snapshot.
type Result struct {
	// Accounts is the per-account breakdown, in the snapshot's account order.
	Accounts []*AccountResult `json:"accounts"`
	// Split is the RRSP versus non-RRSP breakdown.
	Split Split `json:"split"`
	// Overall is the breakdown of the whole portfolio.
	Overall Breakdown `json:"overall"`
	// CombinedPositions is every symbol across accounts ordered by value descending.
	CombinedPositions []CombinedPosition `json:"combined_positions"`
}

// AccountResult is the breakdown of a single account along with its adjusted positions.
type AccountResult struct {
	Account   allocdata.Account `json:"account"`
	Breakdown Breakdown         `json:"breakdown"`
	// Positions is the account's positions with values under the tax adjustment,
	// in the snapshot's order.
	Positions []CombinedPosition `json:"positions"`
}

// Compute derives every breakdown from the portfolio.
//
// The portfolio is validated first. This is the single entry point callers
// use whenever the snapshot or the tax policy changes.
func Compute(portfolio *allocdata.Portfolio, classMap *allocclass.Map, policy alloctax.Policy) (*Result, error) {
	if err := portfolio.Validate(); err != nil {
		return nil, err
	}
	accountResults := make([]*AccountResult, 0, len(portfolio.Accounts))
	for _, account := range portfolio.Accounts {
		positions := portfolio.Positions[account.Number]
		breakdown, err := AccountBreakdown(account, portfolio.Balances[account.Number], positions, classMap, policy)
		if err != nil {
			return nil, err
		}
		adjustedPositions := make([]CombinedPosition, 0, len(positions))
		for _, position := range positions {
			adjustedPositions = append(adjustedPositions, CombinedPosition{
				Symbol:   position.Symbol,
				SymbolID: position.SymbolID,
				Value:    PositionValue(position, account.Type, policy),
			})
		}
		accountResults = append(accountResults, &AccountResult{
			Account:   account,
			Breakdown: breakdown,
			Positions: adjustedPositions,
		})
	}
	split, err := RRSPSplit(portfolio.Accounts, portfolio.Balances, portfolio.Positions, classMap, policy)
	if err != nil {
		return nil, err
	}
	overall, err := OverallBreakdown(portfolio.Accounts, portfolio.Balances, portfolio.Positions, classMap, policy)
	if err != nil {
		return nil, err
	}
	return &Result{
		Accounts:          accountResults,
		Split:             split,
		Overall:           overall,
		CombinedPositions: CombinedPositions(portfolio.Accounts, portfolio.Positions, policy),
	}, nil
}
