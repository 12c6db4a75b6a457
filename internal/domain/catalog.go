package domain

// DefaultServices is the referral catalog shown to partners.
var DefaultServices = []Service{
	{ID: "s1", Name: "Incorporations – Private Limited or LLP", Description: "Establish your business legally as a Private Limited company or an LLP.", Commission: "20% on incorporation value + 10% on future services."},
	{ID: "s2", Name: "GST Registration", Description: "Get your business GST registered and compliant from day one.", Commission: "30% on registration + 10% recurring for monthly filings."},
	{ID: "s3", Name: "PF / ESI and Labour Compliance", Description: "Manage your employee compliance with PF, ESI, and other labor laws.", Commission: "30% on registration + 10% recurring for monthly filings."},
	{ID: "s4", Name: "Virtual Accounting Services", Description: "Outsource your bookkeeping, MIS reporting, and accounting needs.", Commission: "1 Month Fee as commission, recurring annually."},
	{ID: "s5", Name: "Virtual CFO Services", Description: "Strategic financial guidance without the cost of a full-time CFO.", Commission: "1 Month Fee as commission, recurring annually."},
	{ID: "s6", Name: "Courses by Vision Connects", Description: "Professional development courses for students and businessmen.", Commission: "Flat 40% of the course value."},
	{ID: "s7", Name: "MCA & ROC Compliance", Description: "Ensure your company meets all annual compliance requirements from the MCA & ROC.", Commission: "15% on service value."},
	{ID: "s8", Name: "Business Advisory", Description: "Expert advice to help you navigate business challenges and seize opportunities.", Commission: "10% on advisory fees."},
}
