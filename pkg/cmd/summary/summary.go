package summary

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/pkg/aggregate"
	"github.com/mpapenbr/stintdeg/pkg/cmd/util"
	"github.com/mpapenbr/stintdeg/pkg/loader"
	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/render"
	"github.com/mpapenbr/stintdeg/pkg/service"
)

const (
	byCompound      = "compound"
	byRound         = "round"
	byDriver        = "driver"
	byTrack         = "track"
	byTrackCompound = "track-compound"
)

var errCompareDrivers = errors.New("--compare requires --drivers")

type options struct {
	inFile      string
	runID       string
	by          string
	schedule    string
	drivers     []string
	compare     bool
	slopeMin    float64
	slopeMax    float64
	withContext bool
	stintTimes  bool
	rank        bool
}

func NewSummaryCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "shows degradation statistics of an enriched stint table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := util.SetupLogger(); err != nil {
				return err
			}
			rows, err := loadRows(cmd, &opts)
			if err != nil {
				return err
			}
			var labels map[int]string
			if opts.schedule != "" {
				if labels, err = util.ReadFile(opts.schedule, loader.LoadSchedule); err != nil {
					return err
				}
			}
			return show(os.Stdout, rows, labels, &opts)
		},
	}
	cmd.Flags().StringVar(&opts.inFile, "in",
		"data/processed/tire_stints_weather.csv",
		"enriched stint table (csv)")
	cmd.Flags().StringVar(&opts.runID, "run", "",
		"read the rows of this stored run instead of --in")
	cmd.Flags().StringVar(&opts.by, "by", byCompound,
		"group by compound, round, driver, track or track-compound")
	cmd.Flags().StringVar(&opts.schedule, "schedule", "",
		"csv with Round,EventName used to label the tracks")
	cmd.Flags().StringSliceVar(&opts.drivers, "drivers", []string{},
		"restrict to these drivers (comma separated)")
	cmd.Flags().BoolVar(&opts.compare, "compare", false,
		"compare --drivers with all other drivers per compound")
	cmd.Flags().Float64Var(&opts.slopeMin, "slope-min", 0,
		"ignore stints with a smaller slope (used if slope-min < slope-max)")
	cmd.Flags().Float64Var(&opts.slopeMax, "slope-max", 0,
		"ignore stints with a larger slope (used if slope-min < slope-max)")
	cmd.Flags().BoolVar(&opts.withContext, "with-context", false,
		"only use stints with weather data")
	cmd.Flags().BoolVar(&opts.stintTimes, "stint-times", false,
		"show the estimated total stint time per compound and stint length")
	cmd.Flags().BoolVar(&opts.rank, "rank", false,
		"order the groups by mean slope (highest first) instead of describing them")
	return cmd
}

func loadRows(cmd *cobra.Command, opts *options) ([]model.EnrichedStintFeature, error) {
	if opts.runID == "" {
		return util.ReadFile(opts.inFile, loader.LoadEnriched)
	}
	id, err := uuid.FromString(opts.runID)
	if err != nil {
		return nil, fmt.Errorf("invalid run id: %w", err)
	}
	pool, err := util.OpenDB(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	r, rows, err := service.InitStoreService(pool).LoadRun(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	log.Debug("Run loaded",
		log.String("id", r.ID.String()),
		log.Time("created", r.Created),
		log.Int("rows", len(rows)))
	return rows, nil
}

//nolint:cyclop // flag combinations
func show(
	w io.Writer,
	rows []model.EnrichedStintFeature,
	labels map[int]string,
	opts *options,
) error {
	if opts.withContext {
		rows = aggregate.WithContext(rows)
	}
	if opts.slopeMin < opts.slopeMax {
		rows = aggregate.SlopeWithin(rows, opts.slopeMin, opts.slopeMax)
	}
	if opts.compare {
		if len(opts.drivers) == 0 {
			return errCompareDrivers
		}
		render.Comparison(w, strings.Join(opts.drivers, "+"),
			aggregate.CompareGroups(rows, opts.drivers))
		return nil
	}
	if len(opts.drivers) > 0 {
		rows = aggregate.ForDrivers(rows, opts.drivers...)
	}
	if opts.stintTimes {
		render.StintTimes(w, aggregate.StintTimeByLength(rows))
		return nil
	}

	title := fmt.Sprintf("LapTimeSlope by %s (%d stints)", opts.by, len(rows))
	switch opts.by {
	case byCompound:
		showGroups(w, title, rows, aggregate.ByCompound, opts.rank)
	case byRound:
		showGroups(w, title, rows, aggregate.ByRound, opts.rank)
	case byDriver:
		showGroups(w, title, rows, aggregate.ByDriver, opts.rank)
	case byTrack:
		if opts.rank {
			// tracks are ordered by the mean over their compounds
			render.Means(w, title,
				aggregate.RankByGroupMeans(rows, aggregate.ByTrack(labels), aggregate.ByCompound))
			return nil
		}
		showGroups(w, title, rows, aggregate.ByTrack(labels), false)
	case byTrackCompound:
		showGroups(w, title, rows, aggregate.ByTrackCompound(labels), opts.rank)
	default:
		return fmt.Errorf("unknown grouping %q", opts.by)
	}
	return nil
}

func showGroups[K cmp.Ordered](
	w io.Writer,
	title string,
	rows []model.EnrichedStintFeature,
	keyFn func(model.EnrichedStintFeature) K,
	rank bool,
) {
	if rank {
		render.Means(w, title, aggregate.RankByMean(rows, keyFn))
		return
	}
	render.Describe(w, title, aggregate.Describe(rows, keyFn))
}
