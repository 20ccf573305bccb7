package errors

import "net/http"

// DBError marks a failure raised by the storage layer. Where names the
// store operation that hit it, which becomes part of the error id.
type DBError struct {
	AppError
}

func NewDBError(where, details string) *DBError {
	e := &DBError{
		AppError: AppError{
			Id:            "store." + where + ".error",
			Where:         where,
			DetailedError: details,
		},
	}
	e.SetStatusCode(http.StatusInternalServerError)
	return e
}

// NewDBInternalError wraps an unexpected storage failure; the cause stays
// reachable through Unwrap for the request log.
func NewDBInternalError(where string, err error) *DBError {
	e := NewDBError(where, err.Error())
	e.cause = err
	return e
}

// DBNotFoundError reports a missing row where one was required.
type DBNotFoundError struct {
	DBError
}

func NewDBNotFoundError(where, details string) *DBNotFoundError {
	e := &DBNotFoundError{DBError: *NewDBError(where, details)}
	e.SetStatusCode(http.StatusNotFound)
	return e
}

// DBUniqueViolationError maps Postgres code 23505.
type DBUniqueViolationError struct {
	DBError
	Column string
}

// DBForeignKeyViolationError maps Postgres code 23503.
type DBForeignKeyViolationError struct {
	DBError
	ForeignKeyTable string
}
