// Copyright 2026 Peter Edge
//
// All rights reserved.

package allocfetch

import (
	"github.com/bufdev/allocctl/internal/alloc/allocdata"
	"github.com/bufdev/allocctl/internal/pkg/questrade"
)

func accountFromQuestrade(account questrade.Account) allocdata.Account {
	return allocdata.Account{
		Number:    account.Number,
		Type:      allocdata.AccountType(account.Type),
		Status:    account.Status,
		IsPrimary: account.IsPrimary,
	}
}

// positionsFromQuestrade never returns nil so that an account without
// positions still has a position list.
func positionsFromQuestrade(questradePositions []questrade.Position) []allocdata.Position {
	positions := make([]allocdata.Position, 0, len(questradePositions))
	for _, p := range questradePositions {
		positions = append(positions, allocdata.Position{
			Symbol:             p.Symbol,
			SymbolID:           p.SymbolID,
			OpenQuantity:       p.OpenQuantity,
			CurrentPrice:       p.CurrentPrice,
			CurrentMarketValue: p.CurrentMarketValue,
		})
	}
	return positions
}

func symbolsFromQuestrade(questradeSymbols []questrade.Symbol) []allocdata.Symbol {
	symbols := make([]allocdata.Symbol, 0, len(questradeSymbols))
	for _, s := range questradeSymbols {
		symbols = append(symbols, allocdata.Symbol{
			SymbolID:     s.SymbolID,
			Symbol:       s.Symbol,
			Description:  s.Description,
			SecurityType: s.SecurityType,
			Currency:     s.Currency,
		})
	}
	return symbols
}

func quotesFromQuestrade(questradeQuotes []questrade.Quote) []allocdata.Quote {
	quotes := make([]allocdata.Quote, 0, len(questradeQuotes))
	for _, q := range questradeQuotes {
		quotes = append(quotes, allocdata.Quote{
			SymbolID:       q.SymbolID,
			Symbol:         q.Symbol,
			LastTradePrice: q.LastTradePrice,
			BidPrice:       q.BidPrice,
			AskPrice:       q.AskPrice,
		})
	}
	return quotes
}
