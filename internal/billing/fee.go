// Package billing holds the fee, total and selection rules shared by the
// invoice and remit flows. Everything here is pure; callers own I/O.
package billing

import (
	"github.com/shopspring/decimal"

	"agency-workers/internal/models"
)

// Proration controls how percentage session rates scale the base amount.
type Proration int

const (
	// ProrationNone charges rate% of the full base amount. Agent remits use it.
	ProrationNone Proration = iota
	// ProrationEarlySessions charges a quarter of the base for the first two
	// sessions of a year and half of it for the rest. Customer invoices use it.
	ProrationEarlySessions
)

var (
	hundred = decimal.NewFromInt(100)
	quarter = decimal.RequireFromString("0.25")
	half    = decimal.RequireFromString("0.5")

	earlySessions = map[string]bool{
		"Session 1": true,
		"Session 2": true,
	}
)

func (p Proration) factor(sessionName string) decimal.Decimal {
	if p != ProrationEarlySessions {
		return decimal.NewFromInt(1)
	}
	if earlySessions[sessionName] {
		return quarter
	}
	return half
}

func (p Proration) String() string {
	if p == ProrationEarlySessions {
		return "early-sessions"
	}
	return "none"
}

// CalculateSessionFee returns the fee for one student in one session. A
// session without a rate yields zero; callers that care log it (see
// HasRate). The result is never negative.
func CalculateSessionFee(session models.Session, amount decimal.Decimal, proration Proration) decimal.Decimal {
	if !HasRate(session) {
		return decimal.Zero
	}
	rate := nonNegative(session.Rate.Decimal)
	amount = nonNegative(amount)

	switch session.Type {
	case models.RateFlat:
		return rate
	case models.RatePercentage:
		return amount.Mul(proration.factor(session.SessionName)).Mul(rate).Div(hundred)
	default:
		return decimal.Zero
	}
}

// HasRate reports whether the session carries a usable rate.
func HasRate(session models.Session) bool {
	return session.Rate != nil
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
