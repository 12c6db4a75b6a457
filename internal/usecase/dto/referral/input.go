package referraldto

type SubmitReferralInput struct {
	ClientName string
	Mobile     string
	// ExpectedCommission is the raw value, a decimal number
	ExpectedCommission string
	ReferrerID         string
	ReferrerName       string
}

type SetStatusInput struct {
	ReferralID string
	Status     string
	Confirmed  bool
}

type SetReminderInput struct {
	ReferralID   string
	ReminderDate *string
	ReminderNote *string
}

type ListReferralsInput struct {
	Search     string
	Status     string
	ReferrerID string
}
