package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"model-serving-service/internal/core/domain"
	"model-serving-service/internal/core/services"
	"model-serving-service/internal/testutil"
)

type routerOptions struct {
	artifact *domain.ModelArtifact
	maxItems int
	feedback *testutil.MockFeedbackRepo
}

func setupRouter(t *testing.T, opts routerOptions) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var predictor *services.Predictor
	if opts.artifact != nil {
		n, err := services.NewTextNormalizer("english")
		require.NoError(t, err)
		predictor, err = services.NewPredictor(opts.artifact, n, services.PredictorOptions{MaxItems: opts.maxItems})
		require.NoError(t, err)
	}

	var feedbackSvc *services.FeedbackService
	if opts.feedback != nil {
		feedbackSvc = services.NewFeedbackService(opts.feedback)
	}

	h := New(predictor, services.NewHealthService(predictor, true), feedbackSvc)
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
