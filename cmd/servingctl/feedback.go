package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"model-serving-service/internal/adapters/primary/http/dto"
	"model-serving-service/internal/client"
	"model-serving-service/internal/config"
)

func NewFeedbackCmd(cfg *config.Config) *cobra.Command {
	endpoint := cfg.Client.Endpoint
	cmd := &cobra.Command{
		Use:          "feedback",
		Short:        "log or list prediction feedback",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&endpoint, "endpoint", endpoint, "serving endpoint base url")

	predicted, actual := "", ""
	var predictedValue, actualValue float64
	logCmd := &cobra.Command{
		Use:   "log <inference-id>",
		Short: "record the actual outcome of a prediction",
		Example: `
  servingctl feedback log 7b1c... --predicted check_order_status --actual cancel_order
  servingctl feedback log 7b1c... --predicted-value 4.85 --actual-value 5.1
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
			defer cancel()
			if len(args) == 0 {
				return errors.New("inference id is required")
			}
			cli := client.NewClient(endpoint, cfg.Client.Timeout)
			req := dto.FeedbackRequest{
				InferenceID:    args[0],
				PredictedLabel: predicted,
				ActualLabel:    actual,
			}
			if cmd.Flags().Changed("predicted-value") {
				req.PredictedValue = &predictedValue
			}
			if cmd.Flags().Changed("actual-value") {
				req.ActualValue = &actualValue
			}
			resp, err := cli.Invoke(ctx, "/feedback", req)
			if err != nil {
				return err
			}
			var out dto.FeedbackResponse
			if err := json.Unmarshal(resp.Body, &out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", out.Message, out.ID)
			return nil
		},
	}
	logCmd.Flags().StringVar(&predicted, "predicted", predicted, "predicted label")
	logCmd.Flags().StringVar(&actual, "actual", actual, "actual label")
	logCmd.Flags().Float64Var(&predictedValue, "predicted-value", 0, "predicted value of a regression model")
	logCmd.Flags().Float64Var(&actualValue, "actual-value", 0, "observed value for a regression prediction")

	limit := 20
	listCmd := &cobra.Command{
		Use:          "list",
		Short:        "list recent feedback",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
			defer cancel()
			cli := client.NewClient(endpoint, cfg.Client.Timeout)
			resp, err := cli.Get(ctx, "/feedback?limit="+strconv.Itoa(limit))
			if err != nil {
				return err
			}
			var out dto.ListFeedbackResponse
			if err := json.Unmarshal(resp.Body, &out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "INFERENCE ID", "PREDICTED", "ACTUAL", "CREATED AT"})
			for _, item := range out.Items {
				t.AppendRow(table.Row{item.ID, item.InferenceID, item.PredictedLabel, item.ActualLabel, item.CreatedAt})
			}
			t.Render()
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", limit, "maximum number of items")

	cmd.AddCommand(logCmd, listCmd)
	return cmd
}
