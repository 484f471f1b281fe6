package merge

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
	featuresFile string
	contextFile  string
	outFile      string
)

func NewMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "joins stint features with the weather of their round",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mergeContext(cmd)
		},
	}
	cmd.Flags().StringVar(&featuresFile, "features",
		"data/processed/tire_stints.csv",
		"stint feature table (csv)")
	cmd.Flags().StringVar(&contextFile, "context",
		"data/raw/weather.csv",
		"per round weather table (csv)")
	cmd.Flags().StringVar(&outFile, "out",
		"data/processed/tire_stints_weather.csv",
		"output file for the enriched stint features")
	return cmd
}

func mergeContext(cmd *cobra.Command) error {
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
	feats, err := util.ReadFile(featuresFile, loader.LoadFeatures)
	if err != nil {
		return err
	}
	contextTable, err := util.ReadFile(contextFile, loader.LoadContext)
	if err != nil {
		return err
	}
	res, err := p.Enrich(cmd.Context(), feats, contextTable.Records)
	if err != nil {
		return err
	}
	log.Info("Saving merged dataset", log.String("file", outFile))
	if err := tabular.WriteEnrichedFile(outFile, res.Rows); err != nil {
		return err
	}
	render.Summary(os.Stdout, pipeline.Summary{
		Features:               len(feats),
		ContextRecords:         len(contextTable.Records),
		ContextStats:           contextTable.Stats,
		Enriched:               len(res.Rows),
		Unmatched:              res.Unmatched.Count,
		UnmatchedRounds:        res.Unmatched.Rounds,
		DuplicateContextRounds: res.DuplicateRounds,
	})
	return nil
}
