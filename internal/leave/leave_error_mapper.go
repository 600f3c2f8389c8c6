package leave

import (
	"errors"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	if errors.Is(err, ErrStaleVersion) {
		return apperror.WithCause(leaveerrors.ErrConcurrentDecision, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return apperror.WithCause(leaveerrors.ErrConcurrentDecision, err)
		case "22P02":
			// invalid_text_representation, e.g. a malformed uuid
			return leaveerrors.ErrInvalidLeaveID
		}
	}

	return err
}
