package weather

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/pkg/cmd/util"
	"github.com/mpapenbr/stintdeg/pkg/loader"
	"github.com/mpapenbr/stintdeg/pkg/model"
	"github.com/mpapenbr/stintdeg/pkg/tabular"
	"github.com/mpapenbr/stintdeg/pkg/weather"
)

var (
	hourlyFile string
	timelines  map[string]string
	outFile    string
	window     = weather.DefaultWindow
)

var errNoInput = errors.New("no weather input given (use --hourly or --timeline)")

func NewWeatherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "condenses hourly race day weather into the per round context table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return condenseWeather()
		},
	}
	cmd.Flags().StringVar(&hourlyFile, "hourly", "",
		"hourly observations (csv with Round,Hour,Temp,Humidity,WindSpeed,Conditions)")
	cmd.Flags().StringToStringVar(&timelines, "timeline", map[string]string{},
		"stored weather timeline responses (json) as round=file")
	cmd.Flags().StringVar(&outFile, "out", "data/raw/weather.csv",
		"output file for the per round weather table")
	cmd.Flags().IntVar(&window.From, "from-hour", weather.DefaultWindow.From,
		"first hour of the race window")
	cmd.Flags().IntVar(&window.To, "to-hour", weather.DefaultWindow.To,
		"last hour of the race window")
	return cmd
}

func condenseWeather() error {
	if _, err := util.SetupLogger(); err != nil {
		return err
	}
	if err := window.Validate(); err != nil {
		return fmt.Errorf("invalid race window: %w", err)
	}
	hours, err := collectHours()
	if err != nil {
		return err
	}
	if len(hours) == 0 {
		return errNoInput
	}
	records, skipped := weather.Condense(hours, window)
	if len(skipped) > 0 {
		log.Warn("Rounds without observations in race window",
			log.Ints("rounds", skipped),
			log.Int("from", window.From),
			log.Int("to", window.To))
	}
	log.Info("Saving weather data",
		log.String("file", outFile),
		log.Int("rounds", len(records)))
	return tabular.WriteContextFile(outFile, records)
}

func collectHours() ([]model.HourlyObservation, error) {
	var hours []model.HourlyObservation
	if hourlyFile != "" {
		h, err := util.ReadFile(hourlyFile, loader.LoadHourlyWeather)
		if err != nil {
			return nil, err
		}
		hours = append(hours, h...)
	}
	keys := lo.Keys(timelines)
	slices.Sort(keys)
	for _, key := range keys {
		round, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid round in --timeline: %q", key)
		}
		h, err := weather.ReadTimeline(timelines[key], round)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", timelines[key], err)
		}
		log.Debug("Timeline read", log.Int("round", round), log.Int("hours", len(h)))
		hours = append(hours, h...)
	}
	return hours, nil
}
