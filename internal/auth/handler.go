package auth

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/respond"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/pkg/apperror"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/pkg/validation"
)

// Handler exposes HTTP endpoints for login and the current identity.
type Handler struct {
	svc     *Service
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
	debug   bool
}

func NewHandler(svc *Service, logger *zap.SugaredLogger, m *metrics.Metrics, debug bool) *Handler {
	return &Handler{svc: svc, logger: logger, metrics: m, debug: debug}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		h.metrics.Login("invalid")
		respond.Error(w, h.logger, h.debug, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		h.metrics.Login("invalid")
		respond.Error(w, h.logger, h.debug, err)
		return
	}
	h.logger.Infow("login attempt", "username", req.Username)

	resp, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case apperror.IsKind(err, apperror.AuthenticationFailure):
			h.metrics.Login("failure")
			h.logger.Warnw("login failed", "username", req.Username)
		case apperror.IsKind(err, apperror.ConfigurationError):
			h.metrics.Login("config_error")
			h.logger.Errorw("login unavailable: set ADMIN_PASSWORD_HASH (see cmd/pwhash)", "err", err)
		default:
			h.metrics.Login("error")
		}
		respond.Error(w, h.logger, h.debug, err)
		return
	}
	h.metrics.Login("success")
	h.logger.Infow("login succeeded", "username", resp.Username)
	respond.JSON(w, http.StatusOK, resp)
}

// Me returns the identity attached by RequireBearer.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	subject, ok := SubjectFromContext(r.Context())
	if !ok {
		respond.Error(w, h.logger, h.debug, apperror.NewAuthError(invalidCredentials, nil))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"username":      subject,
		"authenticated": true,
		"timestamp":     time.Now().UTC(),
	})
}

// GeneratePasswordHash hashes the password query parameter so it can be
// copied into ADMIN_PASSWORD_HASH. Only served in debug mode.
func (h *Handler) GeneratePasswordHash(w http.ResponseWriter, r *http.Request) {
	if !h.debug {
		http.NotFound(w, r)
		return
	}
	password := r.URL.Query().Get("password")
	if password == "" {
		respond.Error(w, h.logger, h.debug, apperror.NewValidationError("password is required", nil))
		return
	}
	hash, err := h.svc.HashPassword(r.Context(), password)
	if err != nil {
		respond.Error(w, h.logger, h.debug, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{
		"hash":        hash,
		"instruction": "copy this hash into .env as ADMIN_PASSWORD_HASH",
	})
}
