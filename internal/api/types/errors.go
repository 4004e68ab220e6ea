package types

import (
    "net/http"

    appErr "github.com/mindweave/engine/pkg/errors"
)

func FromAppError(err error) *APIError {
    if err == nil {
        return nil
    }
    code := string(appErr.CodeUnknown)
    if e, ok := err.(*appErr.AppError); ok {
        code = string(e.Code)
        return &APIError{Code: code, Message: e.Message}
    }
    return &APIError{Code: code, Message: err.Error()}
}

// StatusForError maps an application error code to an HTTP status.
// Upstream generation failures surface as 502: the request itself was fine,
// the backing model was not.
func StatusForError(err error) int {
    e, ok := err.(*appErr.AppError)
    if !ok {
        return http.StatusInternalServerError
    }
    switch e.Code {
    case appErr.CodeInvalid:
        return http.StatusBadRequest
    case appErr.CodeUnauthorized:
        return http.StatusUnauthorized
    case appErr.CodeForbidden:
        return http.StatusForbidden
    case appErr.CodeNotFound:
        return http.StatusNotFound
    case appErr.CodeConflict, appErr.CodeAlreadyExists:
        return http.StatusConflict
    case appErr.CodeUpstreamUnavailable, appErr.CodeUpstreamMalformed:
        return http.StatusBadGateway
    case appErr.CodeUnavailable:
        return http.StatusServiceUnavailable
    case appErr.CodeDeadline:
        return http.StatusGatewayTimeout
    default:
        return http.StatusInternalServerError
    }
}
