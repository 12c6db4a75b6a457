package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	accountdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/account"
)

func (uc *DefaultAccountUsecase) UpdateProfile(ctx context.Context, input *accountdto.UpdateProfileInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrValidation)
	}
	return uc.UserRepo.UpdateUserName(ctx, email, name)
}

func (uc *DefaultAccountUsecase) Verify(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: verification token is required", domain.ErrValidation)
	}
	return uc.UserRepo.VerifyUser(ctx, token)
}
