package booking

import (
	"errors"
	"strings"
	"time"

	"glampstay/internal/domain/shared/money"
)

var (
	ErrUnknownPolicy = errors.New("booking: unknown cancellation policy")
	ErrInvalidRefund = errors.New("booking: refund must be between zero and the booking total")
)

type Policy string

const (
	PolicyStandard      Policy = "standard"
	PolicyFlexible      Policy = "flexible"
	PolicyNonRefundable Policy = "non_refundable"
)

// PolicyTerms describes the price effect and refund schedule of a policy.
// A negative threshold disables that tier.
type PolicyTerms struct {
	Policy               Policy
	Label                string
	ModifierBps          int64
	FullRefundDays       int
	PartialRefundDays    int
	PartialRefundPercent int
	ChangeFeeCents       int64
}

var policyCatalogue = map[Policy]PolicyTerms{
	PolicyStandard: {
		Policy:               PolicyStandard,
		Label:                "Standard",
		FullRefundDays:       7,
		PartialRefundDays:    3,
		PartialRefundPercent: 50,
	},
	PolicyFlexible: {
		Policy:               PolicyFlexible,
		Label:                "Flexible",
		ModifierBps:          1000,
		FullRefundDays:       1,
		PartialRefundDays:    0,
		PartialRefundPercent: 50,
	},
	PolicyNonRefundable: {
		Policy:            PolicyNonRefundable,
		Label:             "Non-refundable",
		ModifierBps:       -1500,
		FullRefundDays:    -1,
		PartialRefundDays: -1,
		ChangeFeeCents:    2500,
	},
}

// ParsePolicy accepts the wire names; an empty value selects the standard policy.
func ParsePolicy(raw string) (Policy, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "" {
		return PolicyStandard, nil
	}
	p := Policy(normalized)
	if _, ok := policyCatalogue[p]; !ok {
		return "", ErrUnknownPolicy
	}
	return p, nil
}

func (p Policy) Terms() PolicyTerms {
	if t, ok := policyCatalogue[p]; ok {
		return t
	}
	return policyCatalogue[PolicyStandard]
}

func (p Policy) ModifierBps() int64 {
	return p.Terms().ModifierBps
}

// Policies lists the catalogue in display order.
func Policies() []PolicyTerms {
	return []PolicyTerms{
		policyCatalogue[PolicyStandard],
		policyCatalogue[PolicyFlexible],
		policyCatalogue[PolicyNonRefundable],
	}
}

// DaysBeforeCheckIn is floor((checkIn - now) / 24h).
func DaysBeforeCheckIn(checkIn, now time.Time) int {
	const day = 24 * time.Hour
	diff := checkIn.Sub(now)
	days := int(diff / day)
	if diff < 0 && diff%day != 0 {
		days--
	}
	return days
}

// ScheduledRefund applies the policy schedule to the stored total.
func (t PolicyTerms) ScheduledRefund(total money.Money, checkIn, now time.Time) money.Money {
	days := DaysBeforeCheckIn(checkIn, now)
	switch {
	case t.FullRefundDays >= 0 && days >= t.FullRefundDays:
		return total
	case t.PartialRefundDays >= 0 && days >= t.PartialRefundDays:
		return total.Percent(t.PartialRefundPercent)
	default:
		return money.Zero(total.Currency)
	}
}

// RefundDecision carries who cancels and, for administrators, an explicit amount.
type RefundDecision struct {
	Admin    bool
	Override *int64
}

// RefundFor returns the refund owed for a cancellation at now.
// Only an administrator's explicit amount bypasses the schedule.
func RefundFor(policy Policy, total money.Money, checkIn, now time.Time, decision RefundDecision) (money.Money, error) {
	if decision.Admin && decision.Override != nil {
		amount := *decision.Override
		if amount < 0 || amount > total.Amount {
			return money.Money{}, ErrInvalidRefund
		}
		return money.Money{Amount: amount, Currency: total.Currency}, nil
	}
	return policy.Terms().ScheduledRefund(total, checkIn, now), nil
}
