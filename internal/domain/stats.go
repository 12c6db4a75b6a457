package domain

// CommissionWallet is derived per user, never stored.
type CommissionWallet struct {
	TotalEarned float64 `json:"totalEarned"`
	Pending     float64 `json:"pending"`
	Paid        float64 `json:"paid"`
}

type AdminStats struct {
	TotalReferrals    int     `json:"totalReferrals"`
	PendingCommission float64 `json:"pendingCommission"`
	ConversionRate    int     `json:"conversionRate"`
}

type TopReferrer struct {
	Name            string  `json:"name"`
	TotalCommission float64 `json:"totalCommission"`
	ReferralCount   int     `json:"referralCount"`
}

type MonthlyEarning struct {
	Month    string  `json:"month"`
	Year     int     `json:"year"`
	Earnings float64 `json:"earnings"`
}

// Service is an entry of the public referral catalog.
type Service struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Commission  string `json:"commission" yaml:"commission"`
}
