// Copyright 2026 Peter Edge
//
// All rights reserved.

package allocclass

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()
	classMap, err := NewMap(map[string]Weights{
		"VBAL.TO": {Stocks: decimal.RequireFromString("0.6"), Bonds: decimal.RequireFromString("0.4")},
		"XBB.TO":  {Bonds: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)
	require.Equal(t, 2, classMap.Len())
	require.Equal(t, []string{"VBAL.TO", "XBB.TO"}, classMap.Symbols())

	weights, err := classMap.Lookup("VBAL.TO")
	require.NoError(t, err)
	require.True(t, weights.Stocks.Equal(decimal.RequireFromString("0.6")))
	require.True(t, weights.Residual().IsZero())

	_, err = classMap.Lookup("NOPE.TO")
	require.ErrorIs(t, err, ErrUnmappedSymbol)
	require.Contains(t, err.Error(), "NOPE.TO")
}

func TestNewMapValidation(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{name: "all stocks", weights: Weights{Stocks: decimal.NewFromInt(1)}},
		{name: "partial", weights: Weights{Stocks: decimal.RequireFromString("0.5"), Bonds: decimal.RequireFromString("0.3")}},
		{name: "negative", weights: Weights{Stocks: decimal.RequireFromString("-0.1")}, wantErr: true},
		{name: "over one", weights: Weights{Bonds: decimal.RequireFromString("1.1")}, wantErr: true},
		{name: "sum over one", weights: Weights{Stocks: decimal.RequireFromString("0.7"), Bonds: decimal.RequireFromString("0.4")}, wantErr: true},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewMap(map[string]Weights{"SYM": test.weights})
			if test.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
	_, err := NewMap(map[string]Weights{"": {}})
	require.Error(t, err)
}
