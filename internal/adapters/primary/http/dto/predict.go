package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"model-serving-service/internal/core/domain"
)

// ClassificationRequest is the intent-detection body. Items are pointers so a
// JSON null is told apart from an empty string.
type ClassificationRequest struct {
	Texts []*string `json:"texts" binding:"required"`
}

// TextItems returns the texts in request order, rejecting null items
func (r ClassificationRequest) TextItems() ([]string, error) {
	texts := make([]string, 0, len(r.Texts))
	for i, text := range r.Texts {
		if text == nil {
			return nil, fmt.Errorf("%w: texts[%d] must be a string, got null", domain.ErrInvalidRequest, i)
		}
		texts = append(texts, *text)
	}
	return texts, nil
}

type ClassificationResponse struct {
	Intents []string `json:"intents"`
}

type RegressionResponse struct {
	Prediction float64 `json:"prediction"`
}

type BatchRegressionResponse struct {
	Predictions []float64 `json:"predictions"`
}

type StatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// instancesKey switches a regression body into batch mode
const instancesKey = "instances"

// ParseRegressionBody turns a JSON object of named numeric fields, or
// {"instances": [{...}, ...]}, into feature rows. batch reports which form was used.
func ParseRegressionBody(body map[string]json.RawMessage, features []string) (rows []domain.FeatureRow, batch bool, err error) {
	raw, ok := body[instancesKey]
	if !ok {
		row, err := parseFeatureRow(body, features)
		if err != nil {
			return nil, false, err
		}
		return []domain.FeatureRow{row}, false, nil
	}

	var instances []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &instances); err != nil {
		return nil, true, fmt.Errorf("%w: instances must be an array of objects", domain.ErrInvalidRequest)
	}
	rows = make([]domain.FeatureRow, 0, len(instances))
	for i, inst := range instances {
		row, err := parseFeatureRow(inst, features)
		if err != nil {
			return nil, true, fmt.Errorf("instance %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, true, nil
}

func parseFeatureRow(obj map[string]json.RawMessage, features []string) (domain.FeatureRow, error) {
	row := make(domain.FeatureRow, len(features))
	for _, name := range features {
		raw, ok := obj[name]
		if !ok {
			return nil, fmt.Errorf("%w: field %q is required", domain.ErrInvalidRequest, name)
		}
		var v float64
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) || json.Unmarshal(raw, &v) != nil {
			return nil, fmt.Errorf("%w: field %q must be a number", domain.ErrInvalidRequest, name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: field %q must be finite", domain.ErrInvalidRequest, name)
		}
		row[name] = v
	}
	return row, nil
}
