package testutil

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"model-serving-service/internal/core/domain"
	output "model-serving-service/internal/core/ports/output"
)

// MockArtifactStore is a mock of ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Scheme() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockArtifactStore) Open(ctx context.Context, loc domain.ArtifactLocation, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, loc, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockFeedbackRepo is a mock of FeedbackRepository.
type MockFeedbackRepo struct {
	mock.Mock
}

func (m *MockFeedbackRepo) Create(ctx context.Context, fb *domain.Feedback) error {
	args := m.Called(ctx, fb)
	return args.Error(0)
}

func (m *MockFeedbackRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Feedback, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Feedback), args.Error(1)
}

// MockDeploymentClient is a mock of DeploymentClient.
type MockDeploymentClient struct {
	mock.Mock
}

func (m *MockDeploymentClient) Deploy(ctx context.Context, d *domain.Deployment) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeploymentClient) Undeploy(ctx context.Context, namespace, name string) error {
	args := m.Called(ctx, namespace, name)
	return args.Error(0)
}

func (m *MockDeploymentClient) GetStatus(ctx context.Context, namespace, name string) (*domain.DeploymentStatus, error) {
	args := m.Called(ctx, namespace, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeploymentStatus), args.Error(1)
}

var (
	_ output.ArtifactStore      = (*MockArtifactStore)(nil)
	_ output.FeedbackRepository = (*MockFeedbackRepo)(nil)
	_ output.DeploymentClient   = (*MockDeploymentClient)(nil)
)
