package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewDefaultUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (r *DefaultUserRepository) UpsertUser(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
	var (
		saved   models.UserModel
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", user.ID).First(&saved).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			saved = *mappers.ToGORMUser(user)
			created = true
			return tx.Create(&saved).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":    user.Name,
			"picture": user.Picture,
		}
		if user.Role == domain.RoleAdmin {
			updates["role"] = string(domain.RoleAdmin)
		}
		if err := tx.Model(&models.UserModel{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", user.ID).First(&saved).Error
	})
	if err != nil {
		return nil, false, storeError(err, "user "+user.Email)
	}
	return mappers.ToDomainUser(&saved), created, nil
}

func (r *DefaultUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	var userModel models.UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&userModel).Error; err != nil {
		return nil, storeError(err, "user "+userID)
	}
	return mappers.ToDomainUser(&userModel), nil
}

func (r *DefaultUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var userModel models.UserModel
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&userModel).Error; err != nil {
		return nil, storeError(err, "user "+email)
	}
	return mappers.ToDomainUser(&userModel), nil
}

func (r *DefaultUserRepository) UpdateUserName(ctx context.Context, email, name string) (*domain.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).Where("id = ?", user.ID).Update("name", name).Error; err != nil {
		return nil, storeError(err, "user "+email)
	}
	user.Name = name
	return user, nil
}

func (r *DefaultUserRepository) VerifyUser(ctx context.Context, token string) (*domain.User, error) {
	var userModel models.UserModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("verification_token = ?", token).First(&userModel).Error; err != nil {
			return err
		}
		userModel.IsVerified = true
		userModel.VerificationToken = nil
		return tx.Model(&models.UserModel{}).Where("id = ?", userModel.ID).Updates(map[string]interface{}{
			"is_verified":        true,
			"verification_token": nil,
		}).Error
	})
	if err != nil {
		return nil, storeError(err, "verification token")
	}
	return mappers.ToDomainUser(&userModel), nil
}
