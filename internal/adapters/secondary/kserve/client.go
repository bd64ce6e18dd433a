package kserve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"model-serving-service/internal/config"
	"model-serving-service/internal/core/domain"
	output "model-serving-service/internal/core/ports/output"
)

var inferenceServiceGVR = schema.GroupVersionResource{
	Group:    "serving.kserve.io",
	Version:  "v1beta1",
	Resource: "inferenceservices",
}

const (
	containerName = "kserve-container"
	containerPort = 8080
	labelPrefix   = "modelserving.ai-platform/"
)

type kserveClient struct {
	client    dynamic.Interface
	defaultNS string
}

// NewKServeClient creates a new KServe client adapter
func NewKServeClient(cfg *config.KubernetesConfig) (output.DeploymentClient, error) {
	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		// Try default kubeconfig location
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	return newClient(client, cfg.DefaultNS), nil
}

func newClient(client dynamic.Interface, defaultNS string) *kserveClient {
	if defaultNS == "" {
		defaultNS = "model-serving"
	}
	return &kserveClient{client: client, defaultNS: defaultNS}
}

func (c *kserveClient) namespace(ns string) string {
	if ns == "" {
		return c.defaultNS
	}
	return ns
}

func (c *kserveClient) Deploy(ctx context.Context, d *domain.Deployment) error {
	obj := buildInferenceServiceCR(d)

	_, err := c.client.Resource(inferenceServiceGVR).
		Namespace(c.namespace(d.Namespace)).
		Create(ctx, obj, metav1.CreateOptions{})
	if err != nil {
		return fmt.Errorf("create kserve inferenceservice: %w", err)
	}
	return nil
}

func (c *kserveClient) Undeploy(ctx context.Context, namespace, name string) error {
	err := c.client.Resource(inferenceServiceGVR).
		Namespace(c.namespace(namespace)).
		Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return domain.ErrDeploymentNotFound
		}
		return fmt.Errorf("delete kserve inferenceservice: %w", err)
	}
	return nil
}

func (c *kserveClient) GetStatus(ctx context.Context, namespace, name string) (*domain.DeploymentStatus, error) {
	obj, err := c.client.Resource(inferenceServiceGVR).
		Namespace(c.namespace(namespace)).
		Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, domain.ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("get kserve inferenceservice: %w", err)
	}

	status := parseStatus(obj)
	status.Name = name
	return status, nil
}

// buildInferenceServiceCR runs this server image as a custom predictor container,
// the model location is handed over through MODEL_URI.
func buildInferenceServiceCR(d *domain.Deployment) *unstructured.Unstructured {
	labels := map[string]interface{}{
		labelPrefix + "managed-by": "servingctl",
	}
	for k, v := range d.Labels {
		labels[k] = v
	}

	env := []interface{}{
		map[string]interface{}{"name": "MODEL_URI", "value": d.ModelURI},
	}
	keys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		if k == "MODEL_URI" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, map[string]interface{}{"name": k, "value": d.Env[k]})
	}

	probe := func(path string) map[string]interface{} {
		return map[string]interface{}{
			"httpGet": map[string]interface{}{
				"path": path,
				"port": int64(containerPort),
			},
		}
	}

	container := map[string]interface{}{
		"name":  containerName,
		"image": d.Image,
		"env":   env,
		"ports": []interface{}{
			map[string]interface{}{"containerPort": int64(containerPort), "protocol": "TCP"},
		},
		"readinessProbe": probe("/ready"),
		"livenessProbe":  probe("/health"),
	}

	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "serving.kserve.io/v1beta1",
			"kind":       "InferenceService",
			"metadata": map[string]interface{}{
				"name":   d.Name,
				"labels": labels,
			},
			"spec": map[string]interface{}{
				"predictor": map[string]interface{}{
					"containers": []interface{}{container},
				},
			},
		},
	}
}

// parseStatus maps the Ready condition onto a deployment phase.
// Ready=True is in service, Ready=False with a failure reason is failed, anything else is still creating.
func parseStatus(obj *unstructured.Unstructured) *domain.DeploymentStatus {
	status := &domain.DeploymentStatus{Phase: domain.PhaseCreating}

	statusMap, found, _ := unstructured.NestedMap(obj.Object, "status")
	if !found {
		return status
	}

	status.URL, _, _ = unstructured.NestedString(statusMap, "url")

	conditions, found, _ := unstructured.NestedSlice(statusMap, "conditions")
	if !found {
		return status
	}
	for _, cond := range conditions {
		condMap, ok := cond.(map[string]interface{})
		if !ok {
			continue
		}
		condType, _ := condMap["type"].(string)
		if condType != "Ready" {
			continue
		}
		condStatus, _ := condMap["status"].(string)
		reason, _ := condMap["reason"].(string)
		msg, _ := condMap["message"].(string)

		switch {
		case condStatus == "True":
			status.Phase = domain.PhaseInService
		case condStatus == "False" && strings.Contains(strings.ToLower(reason), "fail"):
			status.Phase = domain.PhaseFailed
			status.Message = msg
		default:
			status.Message = msg
		}
		break
	}
	return status
}

// Ensure interface compliance
var _ output.DeploymentClient = (*kserveClient)(nil)
