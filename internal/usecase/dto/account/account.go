package accountdto

import "github.com/LavaJover/shvark-referral-service/internal/domain"

type UpdateProfileInput struct {
	Name  string
	Email string
}

type LoginOutput struct {
	User *domain.User
	// Token is empty when session tokens are disabled
	Token string
}
