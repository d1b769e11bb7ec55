package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teamtrace/relato/pkg/config"
	"github.com/teamtrace/relato/pkg/evaluation"
	"github.com/teamtrace/relato/pkg/store"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run an evaluation sweep against ground truth",
	Long: `Replay relation inference over the stored object set under a grid of
configurations and score each against a ground-truth relation table.

Metrics (precision, recall, F1 - overall, per stage, per relation type)
are written to the configured sink. Completed layers are cached so an
interrupted sweep resumes where it stopped.`,
	RunE: runEvaluate,
}

var (
	evalExperimentID string
	evalScenario     string
	evalPlatform     string
	evalObjectType   string
)

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalExperimentID, "experiment-id", "", "Experiment id (generated when empty)")
	evaluateCmd.Flags().StringVar(&evalScenario, "scenario", "", "Ground-truth scenario to score against")
	evaluateCmd.Flags().StringVar(&evalPlatform, "platform", "", "Restrict objects to one platform")
	evaluateCmd.Flags().StringVar(&evalObjectType, "object-type", "", "Restrict objects to one type")
	evaluateCmd.Flags().String("ground-truth", "", "Path to ground-truth YAML file")
	evaluateCmd.Flags().Bool("with-embeddings", false, "Score semantic layers with stored chunk embeddings")
	evaluateCmd.Flags().String("store-driver", "", "Store driver (memory, badger, neo4j, postgres)")
	evaluateCmd.Flags().String("store-uri", "", "Store URI/DSN/path")

	viper.BindPFlag("evaluation.ground_truth", evaluateCmd.Flags().Lookup("ground-truth"))
	viper.BindPFlag("evaluation.with_embeddings", evaluateCmd.Flags().Lookup("with-embeddings"))
	viper.BindPFlag("store.driver", evaluateCmd.Flags().Lookup("store-driver"))
	viper.BindPFlag("store.uri", evaluateCmd.Flags().Lookup("store-uri"))
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	if cfg.Evaluation.GroundTruth == "" {
		return fmt.Errorf("a ground-truth file is required (--ground-truth)")
	}
	truth, err := evaluation.LoadGroundTruthFile(cfg.Evaluation.GroundTruth)
	if err != nil {
		return err
	}

	st, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to build store: %w", err)
	}
	defer st.Close()

	sink, err := buildSink(cfg)
	if err != nil {
		return err
	}
	if sink != nil {
		defer sink.Close()
	}

	cache, err := evaluation.NewRunCache(cfg.Evaluation.RunCachePath)
	if err != nil {
		return err
	}
	defer cache.Close()

	runner := evaluation.NewRunner(st, truth, sink, cache, logger)
	summary, err := runner.Run(context.Background(), evaluation.RunOptions{
		ExperimentID:   evalExperimentID,
		Scenario:       evalScenario,
		Filter:         store.ObjectFilter{Platform: evalPlatform, ObjectType: evalObjectType},
		WithEmbeddings: cfg.Evaluation.WithEmbeddings,
	})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	fmt.Printf("experiment %s: %d layers evaluated, %d cached\n",
		summary.ExperimentID, summary.Evaluated, summary.Skipped)
	for name, report := range summary.Reports {
		fmt.Printf("  %-16s precision=%.3f recall=%.3f f1=%.3f\n",
			name, report.Overall.Precision, report.Overall.Recall, report.Overall.F1)
	}
	return nil
}

// buildSink constructs the metrics sink named by config. A "none" driver
// returns nil and the runner keeps results in memory only.
func buildSink(cfg *config.Config) (evaluation.MetricsSink, error) {
	switch cfg.Evaluation.SinkDriver {
	case "none":
		return nil, nil
	case "postgres":
		if cfg.Evaluation.SinkDSN == "" {
			return nil, fmt.Errorf("a sink DSN is required for the postgres sink")
		}
		return evaluation.NewPostgresSink(cfg.Evaluation.SinkDSN)
	case "", "parquet":
		return evaluation.NewParquetSink(cfg.Evaluation.ParquetPath)
	default:
		return nil, fmt.Errorf("unknown sink driver: %s", cfg.Evaluation.SinkDriver)
	}
}
