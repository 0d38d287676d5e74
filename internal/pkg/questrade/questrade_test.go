// Copyright 2026 Peter Edge
//
// All rights reserved.

package questrade

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":1017,"message":"Access token is invalid"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/accounts":
			_, _ = w.Write([]byte(`{"accounts":[{"type":"RRSP","number":"26598145","status":"Active","isPrimary":true,"isBilling":true,"clientAccountType":"Individual"}],"userId":3000124}`))
		case "/v1/accounts/26598145/positions":
			_, _ = w.Write([]byte(`{"positions":[{"symbol":"VBAL.TO","symbolId":23304,"openQuantity":100,"closedQuantity":0,"currentMarketValue":2891.5,"currentPrice":28.915,"averageEntryPrice":27.1,"isRealTime":false,"isUnderReorg":false}]}`))
		case "/v1/accounts/26598145/balances":
			_, _ = w.Write([]byte(`{"perCurrencyBalances":[{"currency":"USD","cash":10,"marketValue":0,"totalEquity":10}],"combinedBalances":[{"currency":"CAD","cash":243971.7,"marketValue":6017,"totalEquity":249988.7,"buyingPower":496367.2},{"currency":"USD","cash":198259.05,"marketValue":4889.6,"totalEquity":203148.65}]}`))
		case "/v1/symbols":
			if r.URL.Query().Get("ids") != "23304,8049" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"symbols":[{"symbol":"VBAL.TO","symbolId":23304,"description":"VANGUARD BALANCED ETF PORTFOLIO","securityType":"Stock","currency":"CAD"}]}`))
		case "/v1/markets/quotes":
			if r.URL.Query().Get("ids") != "23304" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"quotes":[{"symbol":"VBAL.TO","symbolId":23304,"lastTradePrice":28.92,"bidPrice":28.91,"askPrice":null}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":1001,"message":"Invalid endpoint"}`))
		}
	}))
	t.Cleanup(server.Close)

	ctx := context.Background()
	client := newClient(server.Client())
	credentials := Credentials{AccessToken: "token", APIServer: server.URL + "/"}

	accounts, err := client.GetAccounts(ctx, credentials)
	require.NoError(t, err)
	require.Equal(t, []Account{{Type: "RRSP", Number: "26598145", Status: "Active", IsPrimary: true}}, accounts)

	positions, err := client.GetPositions(ctx, credentials, "26598145")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	require.Equal(t, "VBAL.TO", positions[0].Symbol)
	require.Equal(t, "2891.5", positions[0].CurrentMarketValue.String())

	balances, err := client.GetBalances(ctx, credentials, "26598145")
	require.NoError(t, err)
	require.Len(t, balances.CombinedBalances, 2)
	require.Equal(t, "CAD", balances.CombinedBalances[0].Currency)
	require.Equal(t, "243971.7", balances.CombinedBalances[0].Cash.String())

	symbols, err := client.GetSymbols(ctx, credentials, []int64{23304, 8049})
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	require.Equal(t, "VANGUARD BALANCED ETF PORTFOLIO", symbols[0].Description)

	quotes, err := client.GetQuotes(ctx, credentials, []int64{23304})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	require.Equal(t, "28.92", quotes[0].LastTradePrice.String())
	require.True(t, quotes[0].AskPrice.IsZero())

	// No IDs means no request.
	symbols, err = client.GetSymbols(ctx, credentials, nil)
	require.NoError(t, err)
	require.Empty(t, symbols)

	// The API server without a trailing slash is accepted.
	_, err = client.GetAccounts(ctx, Credentials{AccessToken: "token", APIServer: server.URL})
	require.NoError(t, err)

	_, err = client.GetAccounts(ctx, Credentials{AccessToken: "expired", APIServer: server.URL + "/"})
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = client.GetPositions(ctx, credentials, "missing")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.NotErrorIs(t, err, ErrUnauthorized)

	_, err = client.GetAccounts(ctx, Credentials{APIServer: server.URL})
	require.Error(t, err)
	_, err = client.GetAccounts(ctx, Credentials{AccessToken: "token"})
	require.Error(t, err)
}
