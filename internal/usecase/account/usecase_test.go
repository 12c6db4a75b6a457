package account

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/memory"
	accountdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]*domain.GoogleIdentity

func (s stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*domain.GoogleIdentity, error) {
	id, ok := s[idToken]
	if !ok {
		return nil, fmt.Errorf("%w: bad token", domain.ErrAuth)
	}
	return id, nil
}

type stubTokens struct{ fail bool }

func (s stubTokens) Enabled() bool { return true }

func (s stubTokens) GenerateToken(user *domain.User) (string, error) {
	if s.fail {
		return "", errors.New("signing failed")
	}
	return "session-" + user.ID, nil
}

type sentMail struct{ users []*domain.User }

func (s *sentMail) SendVerification(ctx context.Context, user *domain.User) error {
	s.users = append(s.users, user)
	return nil
}

func newAccount(t *testing.T) (*DefaultAccountUsecase, *memory.Store, *sentMail) {
	t.Helper()
	store := memory.NewStore()
	mail := &sentMail{}
	verifier := stubVerifier{
		"asha":  {Subject: "g-asha", Name: "Asha K", Email: "asha@example.com", EmailVerified: true},
		"boss":  {Subject: "g-boss", Name: "Boss", Email: "Boss@Example.com", EmailVerified: true},
		"fresh": {Subject: "g-fresh", Name: "New Partner", Email: "new@example.com"},
	}
	uc := NewDefaultAccountUsecase(store, verifier, stubTokens{}, mail, []string{" boss@example.com "})
	return uc, store, mail
}

func TestLoginWithGoogle(t *testing.T) {
	uc, _, mail := newAccount(t)
	ctx := context.Background()

	out, err := uc.LoginWithGoogle(ctx, "asha")
	require.NoError(t, err)
	assert.Equal(t, "g-asha", out.User.ID)
	assert.Equal(t, domain.RoleUser, out.User.Role)
	assert.True(t, out.User.IsVerified)
	assert.Equal(t, "session-g-asha", out.Token)
	assert.Empty(t, mail.users)

	out, err = uc.LoginWithGoogle(ctx, "boss")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, out.User.Role)
}

func TestLoginUnverifiedEmailSendsVerificationOnce(t *testing.T) {
	uc, _, mail := newAccount(t)
	ctx := context.Background()

	out, err := uc.LoginWithGoogle(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, out.User.IsVerified)
	require.Len(t, mail.users, 1)
	require.NotNil(t, mail.users[0].VerificationToken)
	token := *mail.users[0].VerificationToken

	_, err = uc.LoginWithGoogle(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, mail.users, 1)

	verified, err := uc.Verify(ctx, token)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	_, err = uc.Verify(ctx, token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoginFailures(t *testing.T) {
	uc, store, _ := newAccount(t)
	ctx := context.Background()

	_, err := uc.LoginWithGoogle(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.LoginWithGoogle(ctx, "forged")
	assert.ErrorIs(t, err, domain.ErrAuth)
	_, err = store.GetUserByEmail(ctx, "forged@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	uc.Tokens = stubTokens{fail: true}
	_, err = uc.LoginWithGoogle(ctx, "asha")
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	uc, _, _ := newAccount(t)
	ctx := context.Background()
	_, err := uc.LoginWithGoogle(ctx, "asha")
	require.NoError(t, err)

	user, err := uc.UpdateProfile(ctx, &accountdto.UpdateProfileInput{Name: "Asha Kumar", Email: "asha@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Asha Kumar", user.Name)

	_, err = uc.UpdateProfile(ctx, &accountdto.UpdateProfileInput{Name: "", Email: "asha@example.com"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.UpdateProfile(ctx, &accountdto.UpdateProfileInput{Name: "X", Email: "ghost@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
