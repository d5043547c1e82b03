// Package respond writes JSON bodies and maps application errors to HTTP
// statuses for every handler in the service.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/pkg/apperror"
)

// MaxBodyBytes caps every JSON request body.
const MaxBodyBytes = 64 << 10

// DecodeJSON reads at most MaxBodyBytes of r's body into v. Failures are
// ValidationErrors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.NewValidationError("request body too large", err)
		}
		return apperror.NewValidationError("invalid payload", err)
	}
	return nil
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err as an ErrorResponse. Errors that are not an
// *apperror.AppError become 500s; their detail is exposed only in debug mode.
func Error(w http.ResponseWriter, logger *zap.SugaredLogger, debug bool, err error) {
	ae, ok := apperror.FromError(err)
	if !ok {
		msg := "internal server error"
		if debug {
			msg = err.Error()
		}
		ae = apperror.NewInternalError(msg, err)
	}
	status := ae.StatusCode()
	switch {
	case status >= http.StatusInternalServerError:
		logger.Errorw("request failed", "kind", ae.Kind.String(), "err", err)
	default:
		logger.Debugw("request rejected", "kind", ae.Kind.String(), "err", err)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	JSON(w, status, apperror.ErrorResponse{
		Error:     http.StatusText(status),
		Message:   ae.Message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
