package ports

import (
	"context"

	"model-serving-service/internal/core/domain"
)

// DeploymentClient defines the contract for the model-hosting platform
type DeploymentClient interface {
	// Deploy creates the endpoint resource
	Deploy(ctx context.Context, d *domain.Deployment) error

	// Undeploy deletes the endpoint resource
	Undeploy(ctx context.Context, namespace, name string) error

	// GetStatus retrieves the current endpoint phase
	GetStatus(ctx context.Context, namespace, name string) (*domain.DeploymentStatus, error)
}
