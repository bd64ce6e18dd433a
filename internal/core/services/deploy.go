package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/wait"

	"model-serving-service/internal/core/domain"
	output "model-serving-service/internal/core/ports/output"
)

const (
	DefaultPollInterval  = 30 * time.Second
	DefaultDeployTimeout = 30 * time.Minute
)

// DeployOptions controls whether Deploy blocks until the endpoint settles
type DeployOptions struct {
	Wait         bool
	Timeout      time.Duration
	PollInterval time.Duration
}

// DeployService creates serving endpoints on the hosting platform and follows their lifecycle
type DeployService struct {
	client output.DeploymentClient
}

func NewDeployService(client output.DeploymentClient) *DeployService {
	return &DeployService{client: client}
}

// Deploy creates the endpoint and, when opts.Wait is set, polls until it is in service or failed
func (s *DeployService) Deploy(ctx context.Context, d *domain.Deployment, opts DeployOptions) (*domain.DeploymentStatus, error) {
	if s.client == nil {
		return nil, domain.ErrKubernetesNotAvailable
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	if err := s.client.Deploy(ctx, d); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"name":      d.Name,
		"namespace": d.Namespace,
		"image":     d.Image,
	}).Info("endpoint creation started")

	if !opts.Wait {
		return &domain.DeploymentStatus{Name: d.Name, Phase: domain.PhaseCreating}, nil
	}
	return s.WaitInService(ctx, d.Namespace, d.Name, opts)
}

// WaitInService polls the endpoint status until it reaches a terminal phase
func (s *DeployService) WaitInService(ctx context.Context, namespace, name string, opts DeployOptions) (*domain.DeploymentStatus, error) {
	if s.client == nil {
		return nil, domain.ErrKubernetesNotAvailable
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultDeployTimeout
	}

	var last *domain.DeploymentStatus
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(ctx context.Context) (bool, error) {
		status, err := s.client.GetStatus(ctx, namespace, name)
		if err != nil {
			return false, err
		}
		last = status
		switch status.Phase {
		case domain.PhaseInService:
			log.WithField("url", status.URL).Info("endpoint is ready")
			return true, nil
		case domain.PhaseFailed:
			return false, fmt.Errorf("%w: %s", domain.ErrDeploymentFailed, status.Message)
		default:
			log.WithField("phase", status.Phase).Info("waiting for endpoint to be ready")
			return false, nil
		}
	})
	if err != nil {
		if errors.Is(err, domain.ErrDeploymentFailed) {
			return last, err
		}
		if wait.Interrupted(err) {
			return last, fmt.Errorf("%w: %s/%s after %s", domain.ErrDeploymentTimeout, namespace, name, timeout)
		}
		return last, err
	}
	return last, nil
}

func (s *DeployService) Undeploy(ctx context.Context, namespace, name string) error {
	if s.client == nil {
		return domain.ErrKubernetesNotAvailable
	}
	return s.client.Undeploy(ctx, namespace, name)
}

func (s *DeployService) Status(ctx context.Context, namespace, name string) (*domain.DeploymentStatus, error) {
	if s.client == nil {
		return nil, domain.ErrKubernetesNotAvailable
	}
	return s.client.GetStatus(ctx, namespace, name)
}
