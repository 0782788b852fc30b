package lifecycle

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrTransactionFailure  = errors.New("lifecycle transaction failed")
	ErrConstraintViolation = errors.New("operation would leave dangling references")
)

const pgForeignKeyViolation = "23503"

// TranslateStoreError tags foreign-key rejections from the store with
// ErrConstraintViolation. Other errors pass through unchanged.
func TranslateStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConstraintViolation) {
		return err
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	}
	return err
}

func txFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrTransactionFailure, TranslateStoreError(err))
}
