package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ecoscan/internal/apperr"
)

// translate maps a gorm error onto the store's error contract. Callers still see
// the original error through errors.Unwrap.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(fmt.Sprintf("%s: already exists", op), err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Constraint(fmt.Sprintf("%s: referenced row does not exist", op), err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &apperr.Error{Kind: apperr.KindNotFound, Message: fmt.Sprintf("%s: not found", op), Err: err}
	default:
		return apperr.Unavailable("storage unavailable", fmt.Errorf("%s: %w", op, err))
	}
}
