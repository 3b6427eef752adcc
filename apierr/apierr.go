// Package apierr defines the typed error surface every HTTP handler
// returns (C10), grounded on the original aqaSend implementation's
// HttpHandlerError trait: each error carries an HTTP status, a
// user-presentable flag (whether the message itself is safe to show a
// client, or whether only the bare status text is), and is rendered
// according to the response's negotiated content type.
package apierr

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Kind classifies an error into the handful of HTTP-status-mapped
// categories every handler needs (§C10).
type Kind int

const (
	KindInternal Kind = iota
	KindTransport
	KindBadRequest
	KindAuth
	KindForbidden
	KindNotFound
	KindPayloadTooLarge
	KindStorage
)

// Error is the concrete type every handler in httpapi returns. Build one
// with the Kind-specific constructors below rather than the struct
// literal, so the presentability default stays correct. wrapped, when set,
// is the upstream cause joined to Message via errors.WithMessage, so
// %+v-style stack traces from the original failure survive into the logs.
type Error struct {
	Kind        Kind
	Message     string
	presentable bool
	wrapped     error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return e.wrapped.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.wrapped }

// Status returns the HTTP status code this error maps to.
func (e *Error) Status() int {
	switch e.Kind {
	case KindTransport, KindInternal, KindStorage:
		return http.StatusInternalServerError
	case KindBadRequest:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// UserPresentable reports whether Message is safe to send verbatim to the
// client. Internal/storage/transport failures are not — the client only
// ever sees the bare status text for those, so internals never leak.
func (e *Error) UserPresentable() bool { return e.presentable }

func newError(kind Kind, presentable bool, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), presentable: presentable}
}

// BadRequest builds a KindBadRequest error. Its message is always
// presentable, matching the header/multipart parse errors it usually
// wraps.
func BadRequest(format string, args ...interface{}) *Error {
	return newError(KindBadRequest, true, format, args...)
}

// Auth builds a KindAuth (401) error.
func Auth(format string, args ...interface{}) *Error {
	return newError(KindAuth, true, format, args...)
}

// Forbidden builds a KindForbidden (403) error.
func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, true, format, args...)
}

// NotFound builds a KindNotFound (404) error.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, true, format, args...)
}

// PayloadTooLarge builds a KindPayloadTooLarge (413) error.
func PayloadTooLarge(format string, args ...interface{}) *Error {
	return newError(KindPayloadTooLarge, true, format, args...)
}

// Internal wraps an unexpected failure. Its message is never presentable:
// the client only sees "Internal Server Error".
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", wrapped: errors.WithMessage(cause, "internal error"), presentable: false}
}

// Storage wraps a blob/snapshot I/O failure. Not presentable, for the same
// reason as Internal.
func Storage(cause error) *Error {
	return &Error{Kind: KindStorage, Message: "storage error", wrapped: errors.WithMessage(cause, "storage error"), presentable: false}
}

// Transport wraps a failure originating in the HTTP layer itself (a
// malformed request line, a broken connection) rather than in handler
// logic — the analogue of the original implementation's Hyper/Http
// variants. Not presentable.
func Transport(cause error) *Error {
	return &Error{Kind: KindTransport, Message: "transport error", wrapped: errors.WithMessage(cause, "transport error"), presentable: false}
}

// ContentType enumerates how WriteResponse renders the body.
type ContentType int

const (
	ContentTypePlainText ContentType = iota
	ContentTypeJSON
	ContentTypeHTML
)

type jsonBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// WriteResponse writes e to w as ct dictates, choosing between the
// presentable message and the bare status text exactly as the original
// implementation's HttpHandlerError::response did.
func WriteResponse(w http.ResponseWriter, e *Error, ct ContentType) {
	message := http.StatusText(e.Status())
	if e.UserPresentable() {
		message = e.Error()
	}

	status := e.Status()
	switch ct {
	case ContentTypeJSON:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(jsonBody{Status: status, Message: message}, "", "  ")
		if err != nil {
			return
		}
		_, _ = w.Write(b)
	case ContentTypeHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, "<h1>%d</h1><br><h3>%s</h3>", status, message)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(message))
	}
}
