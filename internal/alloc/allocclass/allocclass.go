// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocclass provides the static mapping from symbol to asset-class weights.
//
// A balanced fund holding 60% equities and 40% fixed income maps to
// Weights{Stocks: 0.6, Bonds: 0.4}. Weights need not sum to 1; the residual is
// not attributed to any asset class.
package allocclass

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrUnmappedSymbol is returned when a symbol has no asset-class weights.
var ErrUnmappedSymbol = errors.New("unmapped symbol")

// Weights are the fractional asset-class weights of a symbol.
type Weights struct {
	// Stocks is the fraction of the symbol's value held in equities.
	Stocks decimal.Decimal
	// Bonds is the fraction of the symbol's value held in fixed income.
	Bonds decimal.Decimal
}

// Residual returns the fraction attributed to neither stocks nor bonds.
func (w Weights) Residual() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(w.Stocks).Sub(w.Bonds)
}

// Validate checks that both weights are within [0, 1] and sum to at most 1.
func (w Weights) Validate() error {
	one := decimal.NewFromInt(1)
	if w.Stocks.IsNegative() || w.Stocks.GreaterThan(one) {
		return fmt.Errorf("stocks weight %s must be between 0 and 1", w.Stocks)
	}
	if w.Bonds.IsNegative() || w.Bonds.GreaterThan(one) {
		return fmt.Errorf("bonds weight %s must be between 0 and 1", w.Bonds)
	}
	if w.Stocks.Add(w.Bonds).GreaterThan(one) {
		return fmt.Errorf("stocks weight %s and bonds weight %s sum to more than 1", w.Stocks, w.Bonds)
	}
	return nil
}

// Map is an immutable symbol to Weights lookup.
type Map struct {
	weights map[string]Weights
}

// NewMap returns a new Map, validating every entry.
func NewMap(weights map[string]Weights) (*Map, error) {
	copied := make(map[string]Weights, len(weights))
	for symbol, w := range weights {
		if symbol == "" {
			return nil, errors.New("asset class symbol is required")
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("asset class for %s: %w", symbol, err)
		}
		copied[symbol] = w
	}
	return &Map{weights: copied}, nil
}

// Lookup returns the weights for the symbol, or an error wrapping
// ErrUnmappedSymbol if the symbol is not mapped.
func (m *Map) Lookup(symbol string) (Weights, error) {
	w, ok := m.weights[symbol]
	if !ok {
		return Weights{}, fmt.Errorf("%w %q, add it to asset_classes in the configuration file", ErrUnmappedSymbol, symbol)
	}
	return w, nil
}

// Symbols returns the mapped symbols in sorted order.
func (m *Map) Symbols() []string {
	symbols := make([]string, 0, len(m.weights))
	for symbol := range m.weights {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Len returns the number of mapped symbols.
func (m *Map) Len() int {
	return len(m.weights)
}
