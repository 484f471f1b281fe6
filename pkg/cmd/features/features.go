package features

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/pkg/cmd/util"
	"github.com/mpapenbr/stintdeg/pkg/loader"
	"github.com/mpapenbr/stintdeg/pkg/pipeline"
	"github.com/mpapenbr/stintdeg/pkg/render"
	"github.com/mpapenbr/stintdeg/pkg/tabular"
)

var (
	lapsFile   string
	stintsFile string
	outFile    string
)

func NewFeaturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "extracts the stint features (degradation per stint)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildFeatures(cmd)
		},
	}
	cmd.Flags().StringVar(&lapsFile, "laps", "data/raw/laps.csv", "lap table (csv)")
	cmd.Flags().StringVar(&stintsFile, "stints", "data/raw/stints.csv", "stint table (csv)")
	cmd.Flags().StringVar(&outFile, "out",
		"data/processed/tire_stints.csv",
		"output file for the stint features")
	return cmd
}

func buildFeatures(cmd *cobra.Command) error {
	logger, err := util.SetupLogger()
	if err != nil {
		return err
	}
	telemetry := util.StartTelemetry(cmd.Context())
	defer telemetry.Shutdown()

	cfg, err := util.PipelineConfig()
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg, pipeline.WithLogger(logger.Named("pipeline")))
	if err != nil {
		return err
	}
	log.Info("Loading raw data", log.String("laps", lapsFile), log.String("stints", stintsFile))
	laps, err := util.ReadFile(lapsFile, loader.LoadLaps)
	if err != nil {
		return err
	}
	stints, err := util.ReadFile(stintsFile, loader.LoadStints)
	if err != nil {
		return err
	}
	res, err := p.BuildFeatures(cmd.Context(), laps, stints)
	if err != nil {
		return err
	}
	log.Info("Saving stint features", log.String("file", outFile))
	if err := tabular.WriteFeaturesFile(outFile, res.Features); err != nil {
		return err
	}
	render.Summary(os.Stdout, res.Summary)
	return nil
}
