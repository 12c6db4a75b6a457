package google

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"google.golang.org/api/idtoken"
)

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// IDTokenVerifier checks Google ID tokens against the OAuth client id.
type IDTokenVerifier struct {
	clientID string
	validate validateFunc
}

func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *IDTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*domain.GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("%w: google client id is not configured", domain.ErrAuth)
	}
	payload, err := v.validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}
	return identityFromPayload(payload)
}

func identityFromPayload(payload *idtoken.Payload) (*domain.GoogleIdentity, error) {
	identity := &domain.GoogleIdentity{
		Subject: payload.Subject,
		Name:    claimString(payload.Claims, "name"),
		Email:   claimString(payload.Claims, "email"),
		Picture: claimString(payload.Claims, "picture"),
	}
	switch v := payload.Claims["email_verified"].(type) {
	case bool:
		identity.EmailVerified = v
	case string:
		identity.EmailVerified = v == "true"
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, fmt.Errorf("%w: token has no subject or email", domain.ErrAuth)
	}
	return identity, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}
