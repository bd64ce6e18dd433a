package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"model-serving-service/internal/adapters/secondary/kserve"
	"model-serving-service/internal/config"
	"model-serving-service/internal/core/domain"
	"model-serving-service/internal/core/services"
)

func newDeployService(cfg *config.Config) (*services.DeployService, error) {
	if !cfg.Kubernetes.Enabled {
		return nil, domain.ErrKubernetesNotAvailable
	}
	client, err := kserve.NewKServeClient(&cfg.Kubernetes)
	if err != nil {
		return nil, err
	}
	return services.NewDeployService(client), nil
}

func NewDeployCmd(cfg *config.Config) *cobra.Command {
	var (
		namespace    = cfg.Kubernetes.DefaultNS
		image        = ""
		modelURI     = cfg.Model.URI
		env          = []string{}
		labels       = []string{}
		noWait       = false
		timeout      = services.DefaultDeployTimeout
		pollInterval = services.DefaultPollInterval
	)
	cmd := &cobra.Command{
		Use:   "deploy <name>",
		Short: "create a serving endpoint",
		Example: `
  servingctl deploy intent-classifier --image registry.example.com/model-serving:latest --model-uri s3://models/intent
  servingctl deploy housing --image registry.example.com/model-serving:latest --model-uri s3://models/housing --env MODEL_STRICT_READINESS=false --no-wait
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
			defer cancel()
			if len(args) == 0 {
				return errors.New("endpoint name is required")
			}
			envMap, err := parseKeyValues(env)
			if err != nil {
				return fmt.Errorf("--env: %w", err)
			}
			labelMap, err := parseKeyValues(labels)
			if err != nil {
				return fmt.Errorf("--label: %w", err)
			}

			svc, err := newDeployService(cfg)
			if err != nil {
				return err
			}
			status, err := svc.Deploy(ctx, &domain.Deployment{
				Name:      args[0],
				Namespace: namespace,
				Image:     image,
				ModelURI:  modelURI,
				Env:       envMap,
				Labels:    labelMap,
			}, services.DeployOptions{
				Wait:         !noWait,
				Timeout:      timeout,
				PollInterval: pollInterval,
			})
			if status != nil {
				printStatus(status)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", namespace, "kubernetes namespace")
	cmd.Flags().StringVar(&image, "image", image, "serving container image")
	cmd.Flags().StringVar(&modelURI, "model-uri", modelURI, "model location (s3://bucket/prefix or file:///dir)")
	cmd.Flags().StringSliceVar(&env, "env", env, "extra container env as KEY=VALUE")
	cmd.Flags().StringSliceVar(&labels, "label", labels, "extra labels as KEY=VALUE")
	cmd.Flags().BoolVar(&noWait, "no-wait", noWait, "return once the endpoint is created")
	cmd.Flags().DurationVar(&timeout, "timeout", timeout, "how long to wait for the endpoint")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", pollInterval, "status poll interval")
	return cmd
}

func NewUndeployCmd(cfg *config.Config) *cobra.Command {
	namespace := cfg.Kubernetes.DefaultNS
	cmd := &cobra.Command{
		Use:          "undeploy <name>",
		Short:        "delete a serving endpoint",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
			defer cancel()
			if len(args) == 0 {
				return errors.New("endpoint name is required")
			}
			svc, err := newDeployService(cfg)
			if err != nil {
				return err
			}
			if err := svc.Undeploy(ctx, namespace, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "endpoint %s deleted\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", namespace, "kubernetes namespace")
	return cmd
}

func NewStatusCmd(cfg *config.Config) *cobra.Command {
	namespace := cfg.Kubernetes.DefaultNS
	cmd := &cobra.Command{
		Use:          "status <name>",
		Short:        "show a serving endpoint status",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
			defer cancel()
			if len(args) == 0 {
				return errors.New("endpoint name is required")
			}
			svc, err := newDeployService(cfg)
			if err != nil {
				return err
			}
			status, err := svc.Status(ctx, namespace, args[0])
			if err != nil {
				return err
			}
			printStatus(status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", namespace, "kubernetes namespace")
	return cmd
}

func printStatus(status *domain.DeploymentStatus) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"NAME", "PHASE", "URL", "MESSAGE"})
	t.AppendRow(table.Row{status.Name, status.Phase, status.URL, status.Message})
	t.Render()
}

func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid pair %q, want KEY=VALUE", p)
		}
		out[k] = v
	}
	return out, nil
}

