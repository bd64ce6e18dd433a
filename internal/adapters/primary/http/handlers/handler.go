package handlers

import (
	"github.com/gin-gonic/gin"

	"model-serving-service/internal/adapters/primary/http/middleware"
	"model-serving-service/internal/core/services"
)

const headerInferenceID = "X-Inference-ID"

// Handler serves the prediction, probe and feedback endpoints.
// predictor is nil until the model artifact has loaded, feedbackSvc is nil when storage is disabled.
type Handler struct {
	predictor   *services.Predictor
	healthSvc   *services.HealthService
	feedbackSvc *services.FeedbackService
}

func New(
	predictor *services.Predictor,
	healthSvc *services.HealthService,
	feedbackSvc *services.FeedbackService,
) *Handler {
	return &Handler{
		predictor:   predictor,
		healthSvc:   healthSvc,
		feedbackSvc: feedbackSvc,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	// Probes
	r.GET("/health", h.Health)
	r.GET("/ping", h.Health)
	r.GET("/ready", h.Ready)

	api := r.Group("", middleware.RequireJSON())

	// Inference (/invocations is the SageMaker container contract)
	api.POST("/predict", h.Predict)
	api.POST("/invocations", h.Predict)

	// Feedback
	api.POST("/feedback", h.CreateFeedback)
	api.GET("/feedback", h.ListFeedback)
}
