package domain

import "errors"

// ============================================================================
// Startup Errors (fatal)
// ============================================================================

var (
	ErrArtifactNotFound     = errors.New("model artifact not found")
	ErrArtifactCorrupt      = errors.New("model artifact is corrupt")
	ErrDigestMismatch       = errors.New("model artifact digest mismatch")
	ErrUnsupportedLocation  = errors.New("unsupported model location")
	ErrUnsupportedDevice    = errors.New("unsupported device")
	ErrStopWordsUnavailable = errors.New("stop words unavailable for language")
	ErrInvalidOptions       = errors.New("invalid predictor options")
)

// ============================================================================
// Request Errors
// ============================================================================

// Validation errors
var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrNotAcceptable          = errors.New("unsupported accept type")
)

// Availability errors
var (
	ErrModelNotLoaded = errors.New("model not loaded")
)

// Prediction errors
var (
	ErrPrediction   = errors.New("prediction failed")
	ErrTokenization = errors.New("tokenization failed")
)

// ============================================================================
// Feedback Errors
// ============================================================================

var (
	ErrInvalidFeedback   = errors.New("inference_id is required")
	ErrMissingPrediction = errors.New("predicted_label or predicted_value is required")
	ErrFeedbackDisabled  = errors.New("feedback storage is not configured")
)

// ============================================================================
// Deployment Errors
// ============================================================================

var (
	ErrInvalidDeploymentName     = errors.New("deployment name is required")
	ErrInvalidDeploymentImage    = errors.New("deployment image is required")
	ErrInvalidDeploymentModelURI = errors.New("deployment model URI is required")
	ErrDeploymentFailed          = errors.New("deployment failed")
	ErrDeploymentTimeout         = errors.New("timed out waiting for deployment")
	ErrDeploymentNotFound        = errors.New("deployment not found")
	ErrKubernetesNotAvailable    = errors.New("kubernetes integration is not configured")
)
