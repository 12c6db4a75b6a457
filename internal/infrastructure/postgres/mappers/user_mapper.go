package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainUser(model *models.UserModel) *domain.User {
	return &domain.User{
		ID:                model.ID,
		Name:              model.Name,
		Email:             model.Email,
		Picture:           model.Picture,
		Role:              domain.UserRole(model.Role),
		IsVerified:        model.IsVerified,
		VerificationToken: model.VerificationToken,
	}
}

func ToGORMUser(user *domain.User) *models.UserModel {
	role := string(user.Role)
	if role == "" {
		role = string(domain.RoleUser)
	}
	return &models.UserModel{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		Picture:           user.Picture,
		Role:              role,
		IsVerified:        user.IsVerified,
		VerificationToken: user.VerificationToken,
	}
}
