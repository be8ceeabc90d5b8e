package repo

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
)

type GormRepo struct {
	DB *gorm.DB
}

// storageErr hides raw driver errors behind the retryable kind; record-not-found
// is a domain outcome, never a storage failure, and is mapped by the callers.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
}
