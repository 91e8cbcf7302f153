package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"vitrolab-sim/internal/config"
	"vitrolab-sim/internal/logging"
	"vitrolab-sim/internal/metrics"
	"vitrolab-sim/internal/sim"
)

var (
	runPrintOnly     bool
	runConfigPath    string
	runSchemaPath    string
	runLogFile       string
	runDebugTruth    bool
	runMetricsListen string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the scripted culture run",
	Long:  "run seeds the configured plates and executes the plan: stepped culture dynamics, scheduled treatments, media refreshes, and cell painting assays.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}

		log := logging.New()
		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), log))
		defer cancel()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigs
			log.Info("interrupted, stopping run")
			cancel()
		}()

		writers, cleanup, err := newWriters(runPrintOnly, runLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		var recorder metrics.Recorder = metrics.NewExpvarRecorder("vitrolab_sim")
		if runMetricsListen != "" {
			prom, err := metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			recorder = prom
			http.Handle("/metrics", promhttp.Handler())
			go func() {
				log.Info("metrics listening", "addr", runMetricsListen)
				if err := http.ListenAndServe(runMetricsListen, nil); err != nil && err != http.ErrServerClosed {
					log.Error("metrics server failed", "err", err)
				}
			}()
		}

		simulator, err := sim.NewSimulator(cfg,
			sim.WithAssayWriters(writers.assay...),
			sim.WithMaterialWriters(writers.material...),
			sim.WithStateWriters(writers.state...),
			sim.WithEventWriters(writers.event...),
			sim.WithMetrics(recorder),
			sim.WithLogger(log),
			sim.WithDebugTruth(runDebugTruth),
		)
		if err != nil {
			return err
		}

		log.Info("starting run", "run_id", simulator.RunID(), "seed", cfg.RunSeed)
		return simulator.RunPlan(ctx)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	runCmd.Flags().StringVar(&runConfigPath, "config", "configs/simulation.yaml", "Path to simulation configuration YAML")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Path to export observation logs (JSONL)")
	runCmd.Flags().BoolVar(&runDebugTruth, "debug-truth", false, "Attach ground-truth snapshots under _debug_truth (debugging only)")
	runCmd.Flags().StringVar(&runMetricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}
