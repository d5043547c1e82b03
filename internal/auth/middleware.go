package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/respond"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/pkg/apperror"
)

type ctxKey string

const subjectKey ctxKey = "subject"

// TokenValidator is the check RequireBearer runs before every protected handler.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// SubjectFromContext returns the authenticated username stored by RequireBearer.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok && s != ""
}

// RequireBearer rejects requests without a valid bearer token and never
// calls next for them.
func RequireBearer(v TokenValidator, logger *zap.SugaredLogger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				m.TokenCheck(false)
				respond.Error(w, logger, false, apperror.NewAuthError(invalidCredentials, nil))
				return
			}
			subject, err := v.ValidateToken(token)
			if err != nil {
				m.TokenCheck(false)
				respond.Error(w, logger, false, err)
				return
			}
			m.TokenCheck(true)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey, subject)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
