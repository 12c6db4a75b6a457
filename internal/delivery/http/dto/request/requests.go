package request

type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

type SubmitReferralRequest struct {
	ClientName         string `json:"clientName"`
	Mobile             string `json:"mobile"`
	ExpectedCommission Amount `json:"expectedCommission"`
	UserID             string `json:"userId,omitempty"`
	ReferrerName       string `json:"referrerName,omitempty"`
}

type SetStatusRequest struct {
	ReferralID string `json:"referralId"`
	Status     string `json:"status"`
	Confirmed  bool   `json:"confirmed,omitempty"`
}

type SetReminderRequest struct {
	ReferralID   string  `json:"referralId"`
	ReminderDate *string `json:"reminderDate"`
	ReminderNote *string `json:"reminderNote"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
