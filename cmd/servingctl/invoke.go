package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"model-serving-service/internal/client"
	"model-serving-service/internal/config"
	"model-serving-service/internal/core/domain"
)

func NewInvokeCmd(cfg *config.Config) *cobra.Command {
	endpoint := cfg.Client.Endpoint
	data := ""
	cmd := &cobra.Command{
		Use:   "invoke [text...]",
		Short: "send a prediction request",
		Example: `
  servingctl invoke "What is the status of my order?" "Can I change my shipping address?"
  servingctl invoke --data '{"MedInc": 8.3252, "HouseAge": 41, "AveRooms": 6.98, "AveBedrms": 1.02, "Population": 322, "AveOccup": 2.55, "Latitude": 37.88, "Longitude": -122.23}'
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
			defer cancel()

			var payload any
			switch {
			case data != "":
				var raw json.RawMessage
				if err := json.Unmarshal([]byte(data), &raw); err != nil {
					return fmt.Errorf("--data is not valid JSON: %w", err)
				}
				payload = raw
			case len(args) > 0:
				payload = map[string][]string{"texts": args}
			default:
				payload = map[string][]string{"texts": {domain.DefaultClassificationSample}}
			}

			cli := client.NewClient(endpoint, cfg.Client.Timeout)
			resp, err := cli.Invoke(ctx, "/invocations", payload)
			if err != nil {
				return err
			}
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, resp.Body, "", "  "); err != nil {
				pretty.Write(resp.Body)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, pretty.String())
			if resp.InferenceID != "" {
				fmt.Fprintf(out, "inference id: %s\n", resp.InferenceID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", endpoint, "serving endpoint base url")
	cmd.Flags().StringVar(&data, "data", data, "raw JSON body, overrides positional texts")
	return cmd
}

func NewBenchmarkCmd(cfg *config.Config) *cobra.Command {
	endpoint := cfg.Client.Endpoint
	sizes := client.DefaultBatchSizes
	text := domain.DefaultClassificationSample
	cmd := &cobra.Command{
		Use:          "benchmark",
		Short:        "measure prediction latency across batch sizes",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
			defer cancel()
			if len(sizes) == 0 {
				return errors.New("at least one batch size is required")
			}

			cli := client.NewClient(endpoint, cfg.Client.Timeout)
			report, err := cli.Benchmark(ctx, sizes, text)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"BATCH SIZE", "LATENCY", "PER ITEM"})
			for _, r := range report.Results {
				t.AppendRow(table.Row{r.BatchSize, r.Latency, r.PerItem})
			}
			t.AppendFooter(table.Row{"", "MEAN PER ITEM", report.MeanPerItem})
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", endpoint, "serving endpoint base url")
	cmd.Flags().IntSliceVar(&sizes, "sizes", sizes, "batch sizes to send")
	cmd.Flags().StringVar(&text, "text", text, "text repeated in every batch")
	return cmd
}
