package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

const signature = "The Accountant's Factory Team"

func verificationEmail(user *domain.User, publicURL string) Email {
	link := fmt.Sprintf("%s/#/verify?token=%s", strings.TrimRight(publicURL, "/"), *user.VerificationToken)
	return Email{
		To:      user.Email,
		Subject: "Activate Your Accountant's Factory Partner Account",
		Body: fmt.Sprintf(`Hi %s,

Welcome to the Accountant's Factory Referral Network!

To complete your registration and activate your account, please click the link below:
%s

If you did not sign up for this account, you can safely ignore this email.

Best regards,
%s
`, firstName(user.Name), link, signature),
	}
}

func newReferralAdminEmail(adminEmail string, r *domain.Referral) Email {
	return Email{
		To:      adminEmail,
		Subject: fmt.Sprintf("[New Referral] Lead submitted for %s", r.ClientName),
		Body: fmt.Sprintf(`Hi Admin Team,

A new referral has been submitted through the partner portal.

Details:
- Client Name: %s
- Referrer: %s
- Date Submitted: %s

Please review this new lead in the admin dashboard.

Thank you,
Accountant's Factory Notification System
`, r.ClientName, r.ReferrerName, r.DateSubmitted.Format(time.RFC3339)),
	}
}

func statusUpdateEmail(partnerEmail string, r *domain.Referral) Email {
	return Email{
		To:      partnerEmail,
		Subject: fmt.Sprintf("Update on your referral: %s", r.ClientName),
		Body: fmt.Sprintf(`Hi %s,

There's an update on your referral for %s.
The status has been changed to: "%s".

You can view the full details on your partner dashboard.

Best regards,
%s
`, r.ReferrerName, r.ClientName, r.Status, signature),
	}
}

func payoutEmail(partnerEmail string, r *domain.Referral, p *domain.Payout) Email {
	return Email{
		To:      partnerEmail,
		Subject: fmt.Sprintf("Commission Paid for referral %s!", r.ClientName),
		Body: fmt.Sprintf(`Hi %s,

Great news! Your commission of ₹%s for the referral of %s has been processed and paid out.

This amount has been added to your "Total Paid Out" balance in your commission wallet.

Thank you for your continued partnership!

Best regards,
%s
`, r.ReferrerName, FormatINR(p.Amount), r.ClientName, signature),
	}
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return "there"
}

// FormatINR groups digits the Indian way: 12,34,567.5
func FormatINR(amount float64) string {
	s := decimal.NewFromFloat(amount).Round(2).String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return sign + strings.Join(groups, ",") + "," + tail + frac
}
