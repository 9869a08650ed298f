package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the sink reacts to
const (
	sqlUniqueViolation      = "23505"
	sqlForeignKeyViolation  = "23503"
	sqlNotNullViolation     = "23502"
	sqlCheckViolation       = "23514"
	sqlStringTruncation     = "22001"
	sqlInvalidText          = "22P02"
	sqlSerializationFailure = "40001"
	sqlDeadlock             = "40P01"
	sqlLockNotAvailable     = "55P03"
	sqlQueryCanceled        = "57014" // statement_timeout
	sqlReadOnly             = "25006"
	sqlCannotConnectNow     = "57P03"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if stderrs.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// DBErrorCode classifies a postgres error; ok is false for non postgres errors
func DBErrorCode(err error) (code ErrorCode, ok bool) {
	pe, ok := pgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch pe.Code {
	case sqlUniqueViolation:
		return ErrorCodeDuplicateKey, true
	case sqlNotNullViolation, sqlCheckViolation:
		return ErrorCodeValidation, true
	case sqlForeignKeyViolation, sqlStringTruncation, sqlInvalidText:
		return ErrorCodeInvalidArgument, true
	case sqlReadOnly, sqlCannotConnectNow, sqlQueryCanceled:
		return ErrorCodeUnavailable, true
	default:
		return ErrorCodeDB, true
	}
}

// FromPostgres wraps err with the code DBErrorCode picks, or ErrorCodeDB
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// retryText matches driver messages that arrive without a SQLSTATE
var retryText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"terminating connection due to administrator command",
}

// IsRetryable reports whether a write failed on transient contention.
// Local cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pe, ok := pgError(err); ok {
		switch pe.Code {
		case sqlSerializationFailure, sqlDeadlock, sqlLockNotAvailable:
			return true
		}
		return false
	}
	msg := strings.ToLower(Root(err).Error())
	for _, s := range retryText {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
