package client

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultBatchSizes are the batch sizes measured when none are given
var DefaultBatchSizes = []int{1, 10, 50, 100}

// BenchmarkResult is the latency of one batch
type BenchmarkResult struct {
	BatchSize int
	Latency   time.Duration
	PerItem   time.Duration
}

// BenchmarkReport holds every batch plus the mean per-item latency
type BenchmarkReport struct {
	Results     []BenchmarkResult
	MeanPerItem time.Duration
}

// Benchmark sends one batch of text repeated size times for each size and times the round trip
func (c *Client) Benchmark(ctx context.Context, sizes []int, text string) (*BenchmarkReport, error) {
	if len(sizes) == 0 {
		sizes = DefaultBatchSizes
	}

	report := &BenchmarkReport{Results: make([]BenchmarkResult, 0, len(sizes))}
	var perItemTotal time.Duration
	for _, size := range sizes {
		if size <= 0 {
			return nil, fmt.Errorf("batch size must be positive, got %d", size)
		}
		batch := make([]string, size)
		for i := range batch {
			batch[i] = text
		}

		start := time.Now()
		intents, err := c.Predict(ctx, batch)
		latency := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("batch size %d: %w", size, err)
		}
		if len(intents) != size {
			return nil, fmt.Errorf("batch size %d: got %d intents", size, len(intents))
		}

		res := BenchmarkResult{BatchSize: size, Latency: latency, PerItem: latency / time.Duration(size)}
		report.Results = append(report.Results, res)
		perItemTotal += res.PerItem

		log.WithFields(log.Fields{
			"batch_size": size,
			"latency_ms": latency.Milliseconds(),
		}).Info("batch completed")
	}
	report.MeanPerItem = perItemTotal / time.Duration(len(report.Results))
	return report, nil
}
