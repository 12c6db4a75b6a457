package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	accountdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/account"
	nanoid "github.com/jaevor/go-nanoid"
)

// LoginWithGoogle verifies the ID token, upserts the partner and issues a session token.
// No user row is touched when verification fails.
func (uc *DefaultAccountUsecase) LoginWithGoogle(ctx context.Context, idToken string) (*accountdto.LoginOutput, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, fmt.Errorf("%w: idToken is required", domain.ErrValidation)
	}

	identity, err := uc.Verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		slog.Warn("google login rejected", "error", err.Error())
		return nil, err
	}

	user := &domain.User{
		ID:         identity.Subject,
		Name:       identity.Name,
		Email:      identity.Email,
		Picture:    identity.Picture,
		Role:       domain.RoleUser,
		IsVerified: identity.EmailVerified,
	}
	if uc.isAdminEmail(identity.Email) {
		user.Role = domain.RoleAdmin
	}
	if !identity.EmailVerified {
		idGenerator, err := nanoid.Standard(32)
		if err != nil {
			return nil, err
		}
		token := idGenerator()
		user.VerificationToken = &token
	}

	saved, created, err := uc.UserRepo.UpsertUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if created {
		slog.Info("partner registered", "user_id", saved.ID, "role", saved.Role)
		if !saved.IsVerified {
			uc.sendVerification(ctx, saved)
		}
	}

	out := &accountdto.LoginOutput{User: saved}
	if uc.Tokens != nil && uc.Tokens.Enabled() {
		out.Token, err = uc.Tokens.GenerateToken(saved)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
