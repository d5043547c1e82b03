package risk

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/respond"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/pkg/validation"
)

// ExampleSample is the fixed input scored by the test endpoint.
var ExampleSample = Sample{
	HRV:             50.5,
	HeartRate:       75,
	Movement:        120.0,
	SleepHours:      7.5,
	MedicationTaken: true,
}

// Handler exposes the prediction endpoints. Both must be mounted behind
// auth.RequireBearer.
type Handler struct {
	scorer  *Scorer
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
	debug   bool
}

func NewHandler(scorer *Scorer, logger *zap.SugaredLogger, m *metrics.Metrics, debug bool) *Handler {
	return &Handler{scorer: scorer, logger: logger, metrics: m, debug: debug}
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.SubjectFromContext(r.Context())

	var req SampleRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, h.logger, h.debug, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		respond.Error(w, h.logger, h.debug, err)
		return
	}
	sample := req.Sample()
	h.logger.Infow("prediction requested", "user", user, "hrv", sample.HRV, "heart_rate", sample.HeartRate)

	a := h.scorer.Score(sample)
	h.metrics.Prediction(string(a.RiskLevel), a.RiskScore)
	h.logger.Infow("prediction", "user", user, "level", a.RiskLevel, "score", a.RiskScore)
	respond.JSON(w, http.StatusOK, a)
}

// Test scores ExampleSample so clients can check the pipeline end to end.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.SubjectFromContext(r.Context())
	a := h.scorer.Score(ExampleSample)
	respond.JSON(w, http.StatusOK, map[string]any{
		"user":   user,
		"input":  ExampleSample,
		"output": a,
		"note":   "scored with example data",
	})
}
