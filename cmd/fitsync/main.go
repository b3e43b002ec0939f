// fitsync reconciles workouts, programs, and health metrics across a
// workout-log service, a coaching platform, and a health CSV export.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/cabell132/FitnessTracker/internal/config"
	"github.com/cabell132/FitnessTracker/internal/healthexport"
	"github.com/cabell132/FitnessTracker/internal/hevy"
	"github.com/cabell132/FitnessTracker/internal/oracle"
	"github.com/cabell132/FitnessTracker/internal/persistence/postgres"
	"github.com/cabell132/FitnessTracker/internal/sync"
	"github.com/cabell132/FitnessTracker/internal/transcribe"
	"github.com/cabell132/FitnessTracker/internal/truecoach"
	"github.com/cabell132/FitnessTracker/internal/watermark"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fitsync",
		Short: "Cross-service workout reconciliation engine",
		Long: "fitsync pulls workouts, programs, and health metrics from their\n" +
			"source systems, reconciles them into one canonical store, and\n" +
			"pushes results, assessments, and routines back out.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Missing .env is fine, real deployments use the environment.
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(
		newFlowCommand("run", "Run every sync flow in order", allFlows),
		newFlowCommand("health", "Ingest new health export files", onlyFlow("health")),
		newFlowCommand("coach", "Pull programmed workouts from the coaching platform", onlyFlow("coach_pull")),
		newFlowCommand("hevy", "Pull workout events from the log service", onlyFlow("hevy_pull")),
		newFlowCommand("results", "Push logged results to the coaching platform", onlyFlow("results_push")),
		newFlowCommand("assessments", "Push metric values to coaching assessments", onlyFlow("assessments")),
		newFlowCommand("routines", "Create routines on the log service from pending programs", onlyFlow("routines")),
	)
	return cmd
}

// flowFilter decides which flows a subcommand wires; nil flows are
// skipped by the engine.
type flowFilter func(name string) bool

func allFlows(string) bool { return true }

func onlyFlow(name string) flowFilter {
	return func(candidate string) bool { return candidate == name }
}

func newFlowCommand(use, short string, include flowFilter) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(cmd.Context(), include)
		},
	}
}

func runEngine(parent context.Context, include flowFilter) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	store, err := postgres.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("connect to datastore: %w", err)
	}
	defer store.Close()

	if cfg.MetricsAddress != "" {
		go serveMetrics(cfg.MetricsAddress)
	}

	marks := watermark.NewStore(cfg.WatermarkPath)
	hevyClient := hevy.NewClient(cfg.HevyBaseURL, cfg.HevyAPIKey)
	coachClient := truecoach.NewClient(cfg.TrueCoachBaseURL, cfg.TrueCoachToken, cfg.TrueCoachClientID)

	var oracleOpts []oracle.Option
	if cfg.OpenAIBaseURL != "" {
		oracleOpts = append(oracleOpts, oracle.WithBaseURL(cfg.OpenAIBaseURL))
	}
	if cfg.OpenAIModel != "" {
		oracleOpts = append(oracleOpts, oracle.WithModel(cfg.OpenAIModel))
	}
	sets := transcribe.NewEngine(oracle.NewClient(cfg.OpenAIAPIKey, oracleOpts...))

	pick := func(name string, flow sync.Flow) sync.Flow {
		if include(name) {
			return flow
		}
		return nil
	}

	engine := sync.NewEngine(
		pick("health", sync.NewHealthSyncer(healthexport.NewSource(cfg.HealthExportDir), store, marks)),
		pick("coach_pull", sync.NewCoachPuller(coachClient, store)),
		pick("hevy_pull", sync.NewHevyPuller(hevyClient, store, marks)),
		pick("results_push", sync.NewResultsPusher(store, coachClient)),
		pick("assessments", sync.NewAssessmentPusher(store, coachClient)),
		pick("routines", sync.NewRoutinePusher(store, hevyClient, sets)),
	)
	return engine.Run(ctx)
}

func serveMetrics(address string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(address, mux); err != nil {
		log.Printf("metrics listener: %v", err)
	}
}
