package domain

import (
	"fmt"
	"strings"
)

// Device is the compute target the predictor runs on
type Device string

const (
	DeviceCPU  Device = "cpu"
	DeviceAuto Device = "auto"
)

// ParseDevice resolves a configured device name once at startup.
// Only CPU execution is available, so auto resolves to cpu.
func ParseDevice(name string) (Device, error) {
	switch Device(strings.ToLower(strings.TrimSpace(name))) {
	case "", DeviceAuto, DeviceCPU:
		return DeviceCPU, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDevice, name)
	}
}

// FeatureRow is one regression input keyed by feature name
type FeatureRow map[string]float64

// InferenceRequest carries one or more raw items. Exactly one of Texts and Rows is set.
type InferenceRequest struct {
	Texts []string
	Rows  []FeatureRow
}

// Len returns the number of items in the request
func (r InferenceRequest) Len() int {
	if r.Texts != nil {
		return len(r.Texts)
	}
	return len(r.Rows)
}

// InferenceResult holds one answer per request item, in request order
type InferenceResult struct {
	Labels []string
	Values []float64
}

// Health statuses
const (
	StatusHealthy  = "healthy"
	StatusReady    = "ready"
	StatusNotReady = "not ready"
)

// HealthState is computed on demand, never stored
type HealthState struct {
	Status string
	Detail string
}

// DefaultClassificationSample is used for readiness when the manifest has no sample
const DefaultClassificationSample = "What is the status of my order?"

// DefaultRegressionSample is the California housing row used for readiness when the manifest has no sample
func DefaultRegressionSample() FeatureRow {
	return FeatureRow{
		"MedInc":     8.0,
		"HouseAge":   40.0,
		"AveRooms":   8.0,
		"AveBedrms":  2.0,
		"Population": 800.0,
		"AveOccup":   3.0,
		"Latitude":   35.0,
		"Longitude":  -122.0,
	}
}
