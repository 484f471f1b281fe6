package run

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/pkg/cmd/util"
	"github.com/mpapenbr/stintdeg/pkg/loader"
	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/pipeline"
	"github.com/mpapenbr/stintdeg/pkg/render"
	"github.com/mpapenbr/stintdeg/pkg/report"
	"github.com/mpapenbr/stintdeg/pkg/service"
	"github.com/mpapenbr/stintdeg/pkg/tabular"
)

var (
	lapsFile     string
	stintsFile   string
	contextFile  string
	featuresFile string
	outFile      string
	reportFile   string
	store        bool
)

func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "runs the complete pipeline (features and weather merge)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd)
		},
	}
	cmd.Flags().StringVar(&lapsFile, "laps", "data/raw/laps.csv", "lap table (csv)")
	cmd.Flags().StringVar(&stintsFile, "stints", "data/raw/stints.csv", "stint table (csv)")
	cmd.Flags().StringVar(&contextFile, "context", "data/raw/weather.csv",
		"per round weather table (csv)")
	cmd.Flags().StringVar(&featuresFile, "features-out",
		"data/processed/tire_stints.csv",
		"output file for the stint features (empty: not written)")
	cmd.Flags().StringVar(&outFile, "out",
		"data/processed/tire_stints_weather.csv",
		"output file for the enriched stint features")
	cmd.Flags().StringVar(&reportFile, "report", "",
		"if set, a json summary of the run is written to this file")
	cmd.Flags().BoolVar(&store, "store", false,
		"store the run and its features in the database")
	return cmd
}

//nolint:funlen // sequential steps
func runPipeline(cmd *cobra.Command) error {
	ctx := cmd.Context()
	logger, err := util.SetupLogger()
	if err != nil {
		return err
	}
	telemetry := util.StartTelemetry(ctx)
	defer telemetry.Shutdown()

	cfg, err := util.PipelineConfig()
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg, pipeline.WithLogger(logger.Named("pipeline")))
	if err != nil {
		return err
	}

	in := pipeline.Input{}
	if in.Laps, err = util.ReadFile(lapsFile, loader.LoadLaps); err != nil {
		return err
	}
	if in.Stints, err = util.ReadFile(stintsFile, loader.LoadStints); err != nil {
		return err
	}
	contextTable, err := util.ReadFile(contextFile, loader.LoadContext)
	if err != nil {
		return err
	}
	in.Context = contextTable.Records
	in.ContextStats = contextTable.Stats
	res, err := p.Run(ctx, in)
	if err != nil {
		return err
	}

	if featuresFile != "" {
		log.Info("Saving stint features", log.String("file", featuresFile))
		if err := tabular.WriteFeaturesFile(featuresFile, res.Features); err != nil {
			return err
		}
	}
	log.Info("Saving merged dataset", log.String("file", outFile))
	if err := tabular.WriteEnrichedFile(outFile, res.Enriched); err != nil {
		return err
	}

	rep := &report.Report{
		Created: time.Now(),
		Inputs: map[string]string{
			"laps":    lapsFile,
			"stints":  stintsFile,
			"context": contextFile,
		},
		Config:  cfg,
		Summary: res.Summary,
	}
	if store {
		runID, err := storeRun(cmd, cfg, rep, res.Enriched)
		if err != nil {
			return err
		}
		rep.RunID = runID
	}
	if reportFile != "" {
		if err := rep.WriteFile(reportFile); err != nil {
			return err
		}
	}
	render.Summary(os.Stdout, res.Summary)
	return nil
}

func storeRun(
	cmd *cobra.Command,
	cfg pipeline.Config,
	rep *report.Report,
	rows []model.EnrichedStintFeature,
) (string, error) {
	pool, err := util.OpenDB(cmd.Context())
	if err != nil {
		return "", err
	}
	defer pool.Close()
	r := &model.Run{
		LapsFile:         lapsFile,
		StintsFile:       stintsFile,
		ContextFile:      contextFile,
		MinStintLength:   cfg.MinStintLength,
		DuplicateContext: string(cfg.DuplicateContext),
		Summary:          rep.Data(),
	}
	if err := service.InitStoreService(pool).StoreRun(cmd.Context(), r, rows); err != nil {
		return "", err
	}
	return r.ID.String(), nil
}
