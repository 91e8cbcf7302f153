package main

import (
	"encoding/json"
	"math"
	"os"

	"github.com/spf13/cobra"

	"vitrolab-sim/internal/config"
	"vitrolab-sim/internal/contamination"
	"vitrolab-sim/internal/sim"
)

var (
	planConfigPath string
	planSchemaPath string
)

// planForecast is the dry-run summary of a configured plan.
type planForecast struct {
	Vessels        int                    `json:"vessels"`
	HorizonHours   float64                `json:"horizon_hours"`
	AssayPoints    int                    `json:"assay_points"`
	Treatments     int                    `json:"treatments"`
	MediaRefreshes int                    `json:"media_refreshes"`
	PlannedSpend   float64                `json:"planned_spend"`
	BudgetUSD      float64                `json:"budget_usd"`
	WithinBudget   bool                   `json:"within_budget"`
	Contamination  contamination.Estimate `json:"contamination"`
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Validate the configuration and forecast the run",
	Long:  "plan validates the configuration against the schema and prints what the scripted run would cost and how many contamination events it can expect, without simulating anything.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(planConfigPath, planSchemaPath)
		if err != nil {
			return err
		}
		simulator, err := sim.NewSimulator(cfg)
		if err != nil {
			return err
		}

		fc := forecast(cfg, simulator)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(fc)
	},
}

func forecast(cfg *config.SimulationConfig, simulator *sim.Simulator) planForecast {
	plan := cfg.Plan
	vessels := 0
	for _, p := range plan.Plates {
		vessels += len(p.Wells)
	}
	assayPoints := 0
	if plan.AssayEveryHours > 0 {
		assayPoints = 1 + int(math.Floor(plan.HorizonHours/plan.AssayEveryHours))
	}
	refreshes := 0
	if plan.MediaRefreshHours > 0 {
		refreshes = int(math.Floor(plan.HorizonHours / plan.MediaRefreshHours))
	}
	treatments := 0
	for _, tr := range plan.Treatments {
		treatments += len(tr.Wells)
	}

	spend := float64(vessels)*cfg.Costs.SeedVessel +
		float64(treatments)*cfg.Costs.Treatment +
		float64(refreshes*vessels)*cfg.Costs.MediaRefresh +
		float64(assayPoints*vessels)*cfg.Costs.Assay

	return planForecast{
		Vessels:        vessels,
		HorizonHours:   plan.HorizonHours,
		AssayPoints:    assayPoints,
		Treatments:     treatments,
		MediaRefreshes: refreshes,
		PlannedSpend:   spend,
		BudgetUSD:      cfg.BudgetUSD,
		WithinBudget:   cfg.BudgetUSD <= 0 || spend <= cfg.BudgetUSD,
		Contamination:  simulator.EstimateContamination(vessels, plan.HorizonHours/24),
	}
}

func init() {
	planCmd.Flags().StringVar(&planConfigPath, "config", "configs/simulation.yaml", "Path to simulation configuration YAML")
	planCmd.Flags().StringVar(&planSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
}
