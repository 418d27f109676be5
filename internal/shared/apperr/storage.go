package apperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE raised by an EXCLUDE constraint; gorm does not translate it.
const pgExclusionViolation = "23P01"

// FromStorage classifies an error returned by a repository. Missing rows map to
// notFound and unique-key violations to conflict when those are given; anything
// else becomes a Dependency error. Already classified errors pass through.
func FromStorage(op string, err error, notFound, conflict *Error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound.Wrap(err)
	case conflict != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || IsExclusionViolation(err)):
		return conflict.Wrap(err)
	}

	return Dependency(op, err)
}

// IsExclusionViolation reports whether err comes from a postgres exclusion
// constraint.
func IsExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation
}
