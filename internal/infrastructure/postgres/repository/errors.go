package repository

import (
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"gorm.io/gorm"
)

// storeError maps gorm failures onto the domain taxonomy.
func storeError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", domain.ErrValidation, what)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", domain.ErrTransientStore, what, err)
	}
}
