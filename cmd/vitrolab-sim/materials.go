package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vitrolab-sim/internal/config"
	"vitrolab-sim/internal/detector"
	"vitrolab-sim/internal/logging"
	"vitrolab-sim/internal/sim"
)

var (
	matConfigPath string
	matSchemaPath string
	matPrintOnly  bool
	matLogFile    string
	matRepeats    int
	matExposures  []float64
)

var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "Measure the calibration materials",
	Long:  "materials images the physical reference targets (dark frame and flatfield dye) through the detector stack, for instrument characterization. Material reads never touch the run budget.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(matConfigPath, matSchemaPath)
		if err != nil {
			return err
		}
		log := logging.New()
		ctx := logging.NewContext(context.Background(), log)

		writers, cleanup, err := newWriters(matPrintOnly, matLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		simulator, err := sim.NewSimulator(cfg,
			sim.WithMaterialWriters(writers.material...),
			sim.WithLogger(log),
		)
		if err != nil {
			return err
		}

		materials := []detector.Material{detector.MaterialDark, detector.MaterialFlatfieldDye}
		for _, material := range materials {
			for _, exposure := range matExposures {
				for i := 0; i < matRepeats; i++ {
					if _, err := simulator.MeasureMaterial(ctx, material, exposure); err != nil {
						return fmt.Errorf("measure %s at %gx: %w", material, exposure, err)
					}
				}
			}
		}
		log.Info("materials measured",
			"materials", len(materials), "exposures", len(matExposures), "repeats", matRepeats)
		return nil
	},
}

func init() {
	materialsCmd.Flags().StringVar(&matConfigPath, "config", "configs/simulation.yaml", "Path to simulation configuration YAML")
	materialsCmd.Flags().StringVar(&matSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	materialsCmd.Flags().BoolVar(&matPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	materialsCmd.Flags().StringVar(&matLogFile, "log-file", "", "Path to export observation logs (JSONL)")
	materialsCmd.Flags().IntVar(&matRepeats, "repeats", 8, "Readings per material and exposure")
	materialsCmd.Flags().Float64SliceVar(&matExposures, "exposures", []float64{1, 2, 4}, "Exposure multipliers to sweep")
}
