// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package alloctax provides the post-tax adjustment applied to RRSP accounts.
//
// Withdrawals from an RRSP are taxed as income, so the post-tax view discounts
// RRSP values by the configured marginal tax rate. All other account types are
// never adjusted.
package alloctax

import (
	"fmt"

	"github.com/bufdev/allocctl/internal/alloc/allocdata"
	"github.com/shopspring/decimal"
)

// DefaultRatePercent is the tax rate used when none is configured.
const DefaultRatePercent = 20

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Policy is the tax adjustment policy.
type Policy struct {
	// PostTax is true when the post-tax view is enabled.
	PostTax bool
	// RatePercent is the tax rate in percent (e.g., 20 for 20%).
	RatePercent decimal.Decimal
}

// NewPolicy returns a new Policy. The rate must be in [0, 100).
func NewPolicy(postTax bool, ratePercent decimal.Decimal) (Policy, error) {
	if ratePercent.IsNegative() || ratePercent.GreaterThanOrEqual(hundred) {
		return Policy{}, fmt.Errorf("tax rate %s%% must be at least 0 and less than 100", ratePercent)
	}
	return Policy{
		PostTax:     postTax,
		RatePercent: ratePercent,
	}, nil
}

// AdjustmentFor returns the multiplier applied to values held in an account of
// the given type: 1 - RatePercent/100 for RRSP accounts when PostTax is set,
// 1 otherwise.
func (p Policy) AdjustmentFor(accountType allocdata.AccountType) decimal.Decimal {
	if !p.PostTax || !accountType.IsRRSP() {
		return one
	}
	return one.Sub(p.RatePercent.Div(hundred))
}

// WithPostTax returns a copy of the policy with PostTax set to the given value.
func (p Policy) WithPostTax(postTax bool) Policy {
	p.PostTax = postTax
	return p
}
