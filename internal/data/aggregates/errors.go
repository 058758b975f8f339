package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
)

// ErrConflict marks a write that lost a race against a concurrent writer.
var ErrConflict = errors.New("workflow write conflict")

// ConflictError tags msg as a lost race.
func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// SQLSTATEs worth replaying: serialization_failure, deadlock_detected,
// lock_not_available.
var retryableSQLStates = map[string]struct{}{
	"40001": {},
	"40P01": {},
	"55P03": {},
}

// SQLite reports busy files and lock waits only through the message text.
var retryableSQLiteMessages = []string{
	"database is locked",
	"database table is locked",
	"sqlite_busy",
	"deadlock",
	"serialization",
	"timeout",
}

// MapError classifies a write failure into a domain error code. Errors that
// already carry a code pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *domainagg.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return domainagg.Wrap(classify(err), op, err)
}

func classify(err error) domainagg.ErrorCode {
	switch {
	case errors.Is(err, ErrConflict), IsUniqueViolation(err):
		return domainagg.CodeConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.CodeNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.CodeRetryable
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := retryableSQLStates[strings.TrimSpace(pgErr.Code)]; ok {
			return domainagg.CodeRetryable
		}
		return domainagg.CodeInternal
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range retryableSQLiteMessages {
		if strings.Contains(msg, needle) {
			return domainagg.CodeRetryable
		}
	}
	return domainagg.CodeInternal
}

// IsUniqueViolation recognises unique-index failures from Postgres and SQLite,
// such as two onboardings racing for one email.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint failed")
}
