// Package aggregate derives wallet totals, admin statistics and rankings
// from a snapshot of referrals and payouts. Nothing here holds state.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	DefaultTopReferrersLimit = 5
	DefaultMonthCount        = 6
)

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// AdminStats counts every referral; only non-Paid commission is pending.
func AdminStats(referrals []*domain.Referral) domain.AdminStats {
	pending := decimal.Zero
	paidCount := 0
	for _, r := range referrals {
		if r.Status.IsPaid() {
			paidCount++
			continue
		}
		pending = pending.Add(amount(r.ExpectedCommission))
	}
	return domain.AdminStats{
		TotalReferrals:    len(referrals),
		PendingCommission: pending.InexactFloat64(),
		ConversionRate:    ConversionRate(paidCount, len(referrals)),
	}
}

// ConversionRate is paid/total as a whole percent, 0 for an empty set.
func ConversionRate(paidCount, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(paidCount*100) / float64(total)))
}

// SettledPayouts keeps the payouts whose referral is currently Paid.
// A payout left behind by a referral moved out of Paid is history, not earnings.
func SettledPayouts(referrals []*domain.Referral, payouts []*domain.Payout) []*domain.Payout {
	paid := make(map[string]bool, len(referrals))
	for _, r := range referrals {
		if r.Status.IsPaid() {
			paid[r.ID] = true
		}
	}
	out := make([]*domain.Payout, 0, len(payouts))
	for _, p := range payouts {
		if paid[p.ReferralID] {
			out = append(out, p)
		}
	}
	return out
}

// Wallet keeps totalEarned == pending + paid by construction. Each referral
// counts once: pending while non-Paid, through its payout while Paid.
func Wallet(referrals []*domain.Referral, payouts []*domain.Payout, userID string) domain.CommissionWallet {
	pending := decimal.Zero
	for _, r := range referrals {
		if r.ReferrerID != userID || r.Status.IsPaid() {
			continue
		}
		pending = pending.Add(amount(r.ExpectedCommission))
	}
	paid := decimal.Zero
	for _, p := range SettledPayouts(referrals, payouts) {
		if p.UserID != userID {
			continue
		}
		paid = paid.Add(amount(p.Amount))
	}
	return domain.CommissionWallet{
		TotalEarned: pending.Add(paid).InexactFloat64(),
		Pending:     pending.InexactFloat64(),
		Paid:        paid.InexactFloat64(),
	}
}

type referrerTotals struct {
	name       string
	commission decimal.Decimal
	count      int
}

// TopReferrers ranks referrers by paid commission. Ties keep first-seen order.
func TopReferrers(referrals []*domain.Referral, limit int) []domain.TopReferrer {
	if limit <= 0 {
		limit = DefaultTopReferrersLimit
	}
	index := make(map[string]int)
	var groups []*referrerTotals
	for _, r := range referrals {
		i, ok := index[r.ReferrerName]
		if !ok {
			i = len(groups)
			index[r.ReferrerName] = i
			groups = append(groups, &referrerTotals{name: r.ReferrerName, commission: decimal.Zero})
		}
		g := groups[i]
		g.count++
		if r.Status.IsPaid() {
			g.commission = g.commission.Add(amount(r.ExpectedCommission))
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].commission.GreaterThan(groups[j].commission)
	})
	if len(groups) > limit {
		groups = groups[:limit]
	}

	out := make([]domain.TopReferrer, 0, len(groups))
	for _, g := range groups {
		out = append(out, domain.TopReferrer{
			Name:            g.name,
			TotalCommission: g.commission.InexactFloat64(),
			ReferralCount:   g.count,
		})
	}
	return out
}

// MonthlyEarnings buckets payouts into the monthCount calendar months ending at now's month,
// in now's location. Months without payouts are zero.
func MonthlyEarnings(payouts []*domain.Payout, monthCount int, now time.Time) []domain.MonthlyEarning {
	if monthCount <= 0 {
		monthCount = DefaultMonthCount
	}
	loc := now.Location()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -(monthCount - 1), 0)

	sums := make([]decimal.Decimal, monthCount)
	for i := range sums {
		sums[i] = decimal.Zero
	}
	for _, p := range payouts {
		d := p.Date.In(loc)
		idx := (d.Year()-first.Year())*12 + int(d.Month()) - int(first.Month())
		if idx < 0 || idx >= monthCount {
			continue
		}
		sums[idx] = sums[idx].Add(amount(p.Amount))
	}

	out := make([]domain.MonthlyEarning, monthCount)
	for i := range out {
		m := first.AddDate(0, i, 0)
		out[i] = domain.MonthlyEarning{
			Month:    monthNames[m.Month()-1],
			Year:     m.Year(),
			Earnings: sums[i].InexactFloat64(),
		}
	}
	return out
}

// StatusBreakdown counts referrals per status; every status is present.
func StatusBreakdown(referrals []*domain.Referral) map[domain.ReferralStatus]int {
	out := make(map[domain.ReferralStatus]int, len(domain.Statuses))
	for _, st := range domain.Statuses {
		out[st] = 0
	}
	for _, r := range referrals {
		out[r.Status]++
	}
	return out
}
