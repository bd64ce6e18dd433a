package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"model-serving-service/internal/config"
)

const ErrExitCode = 1

func main() {
	if err := NewServingctlCmd().Execute(); err != nil {
		os.Exit(ErrExitCode)
	}
}

func NewServingctlCmd() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	verbose := false
	cmd := &cobra.Command{
		Use:          "servingctl",
		Short:        "deploy, invoke and benchmark model serving endpoints",
		SilenceUsage: true,
	}
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.WarnLevel)
		}
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", verbose, "verbose logging")
	cmd.AddCommand(
		NewDeployCmd(cfg),
		NewUndeployCmd(cfg),
		NewStatusCmd(cfg),
		NewInvokeCmd(cfg),
		NewBenchmarkCmd(cfg),
		NewFeedbackCmd(cfg),
	)
	return cmd
}
