package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	goi18n "github.com/nicksnyder/go-i18n/i18n"
)

// AppError is the error shape surfaced to the host admin UI: a stable
// translatable id, an HTTP status, and the detailed cause kept for logs.
type AppError struct {
	params        map[string]any
	cause         error
	Id            string `json:"id"`
	Where         string `json:"where,omitempty"`
	Status        string `json:"status"`
	DetailedError string `json:"detail"`
	RequestId     string `json:"request_id,omitempty"`
	StatusCode    int    `json:"code,omitempty"`
}

// Option mutates an AppError under construction.
type Option func(*AppError)

// WithID overrides the translatable error id.
func WithID(id string) Option {
	return func(e *AppError) { e.Id = id }
}

// WithCause attaches the underlying error; it stays reachable via Unwrap.
func WithCause(err error) Option {
	return func(e *AppError) { e.cause = err }
}

// New builds an internal-severity AppError from free text.
func New(text string, opts ...Option) *AppError {
	e := &AppError{
		Id:            "app.process.internal",
		DetailedError: text,
	}
	e.SetStatusCode(http.StatusInternalServerError)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Internal is New with intent spelled out at the call site.
func Internal(text string, opts ...Option) *AppError {
	return New(text, opts...)
}

// NotFound builds a 404 AppError.
func NotFound(id, text string) *AppError {
	e := &AppError{Id: id, DetailedError: text}
	e.SetStatusCode(http.StatusNotFound)
	return e
}

// BadRequest builds a 400 AppError.
func BadRequest(id, text string) *AppError {
	e := &AppError{Id: id, DetailedError: text}
	e.SetStatusCode(http.StatusBadRequest)
	return e
}

func (e *AppError) Error() string {
	return fmt.Sprintf("AppError [%s]: %s, %s", e.Id, e.Status, e.DetailedError)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// SetStatusCode records the HTTP code and the matching status text.
func (e *AppError) SetStatusCode(code int) *AppError {
	e.StatusCode = code
	e.Status = http.StatusText(code)
	return e
}

func (e *AppError) GetStatusCode() int {
	return e.StatusCode
}

func (e *AppError) SetDetailedError(details string) {
	e.DetailedError = details
}

func (e *AppError) GetDetailedError() string {
	return e.DetailedError
}

func (e *AppError) SetRequestId(id string) {
	e.RequestId = id
}

func (e *AppError) GetRequestId() string {
	return e.RequestId
}

func (e *AppError) GetId() string {
	return e.Id
}

func (e *AppError) SetTranslationParams(params map[string]any) *AppError {
	e.params = params
	return e
}

func (e *AppError) GetTranslationParams() map[string]any {
	return e.params
}

// Translate replaces the detailed message with the localized text for the
// error id, when the bundle knows it. Missing translations keep the original
// detail so nothing is lost in logs.
func (e *AppError) Translate(T goi18n.TranslateFunc) {
	if T == nil {
		if e.DetailedError == "" {
			e.DetailedError = e.Id
		}
		return
	}

	var text string
	if e.params == nil {
		text = T(e.Id)
	} else {
		text = T(e.Id, e.params)
	}
	if text != e.Id {
		e.DetailedError = text
	}
}

func (e *AppError) ToJson() string {
	b, _ := json.Marshal(e)
	return string(b)
}

func (e *AppError) String() string {
	if e.Id == e.Status && e.DetailedError != "" {
		return e.DetailedError
	}
	return e.Status
}

// Is, As and Join re-export the stdlib so callers never need both packages.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func Join(errs ...error) error { return stderrors.Join(errs...) }

// Code extracts the HTTP status carried by err, falling back to 500 for
// anything that does not carry one.
func Code(err error) int {
	var coded interface{ GetStatusCode() int }
	if stderrors.As(err, &coded) {
		if c := coded.GetStatusCode(); c > 0 {
			return c
		}
	}
	return http.StatusInternalServerError
}

// Details returns the most specific message available for logging.
func Details(err error) string {
	var detailed interface{ GetDetailedError() string }
	if stderrors.As(err, &detailed) {
		if d := detailed.GetDetailedError(); d != "" {
			return d
		}
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
