package account

import (
	"context"
	"log/slog"
	"strings"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	accountdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/account"
)

type AccountUsecase interface {
	LoginWithGoogle(ctx context.Context, idToken string) (*accountdto.LoginOutput, error)
	UpdateProfile(ctx context.Context, input *accountdto.UpdateProfileInput) (*domain.User, error)
	Verify(ctx context.Context, token string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

type VerificationSender interface {
	SendVerification(ctx context.Context, user *domain.User) error
}

type TokenIssuer interface {
	Enabled() bool
	GenerateToken(user *domain.User) (string, error)
}

type DefaultAccountUsecase struct {
	UserRepo    domain.UserRepository
	Verifier    domain.IdentityVerifier
	Tokens      TokenIssuer
	Mailer      VerificationSender
	adminEmails map[string]struct{}
}

func NewDefaultAccountUsecase(
	userRepo domain.UserRepository,
	verifier domain.IdentityVerifier,
	tokens TokenIssuer,
	mailer VerificationSender,
	adminEmails []string,
) *DefaultAccountUsecase {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &DefaultAccountUsecase{
		UserRepo:    userRepo,
		Verifier:    verifier,
		Tokens:      tokens,
		Mailer:      mailer,
		adminEmails: admins,
	}
}

func (uc *DefaultAccountUsecase) isAdminEmail(email string) bool {
	_, ok := uc.adminEmails[strings.ToLower(email)]
	return ok
}

func (uc *DefaultAccountUsecase) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return uc.UserRepo.GetUserByID(ctx, userID)
}

func (uc *DefaultAccountUsecase) sendVerification(ctx context.Context, user *domain.User) {
	if uc.Mailer == nil {
		return
	}
	if err := uc.Mailer.SendVerification(ctx, user); err != nil {
		slog.Error("failed to send verification email", "user_id", user.ID, "error", err.Error())
	}
}
