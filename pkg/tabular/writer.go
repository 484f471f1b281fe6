// Package tabular writes the feature tables as CSV files which can be read
// back by the loader package without loss.
package tabular

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aarondl/opt/null"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

// markers for missing values, both are read back as null by the loader
const (
	naFloat  = "NaN"
	naString = "<NA>"
)

var (
	featureHeader = []string{
		"Driver", "Round", "Stint", "Compound", "StintLength",
		"StartLap", "EndLap", "AvgLapTime", "LapTimeSlope",
	}
	contextHeader = []string{"TrackTemp", "Humidity", "WindSpeed", "Conditions"}
)

func WriteFeatures(w io.Writer, rows []model.StintFeature) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(featureHeader); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(featureRecord(rows[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEnriched writes the features followed by the context columns. A row
// without any context gets empty cells, single missing values of a row with
// context are written as NaN (<NA> for Conditions).
func WriteEnriched(w io.Writer, rows []model.EnrichedStintFeature) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(featureHeader)+len(contextHeader))
	header = append(header, featureHeader...)
	header = append(header, contextHeader...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range rows {
		r := rows[i]
		rec := append(featureRecord(r.StintFeature), contextCells(r)...)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteContext writes the per round weather table in the layout read by
// loader.LoadContext.
func WriteContext(w io.Writer, records []model.ContextRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Round"}, contextHeader...)); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			strconv.Itoa(r.Round),
			nullFloat(r.TrackTemp),
			nullFloat(r.Humidity),
			nullFloat(r.WindSpeed),
			r.Conditions,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteFeaturesFile(path string, rows []model.StintFeature) error {
	return writeFile(path, func(w io.Writer) error { return WriteFeatures(w, rows) })
}

func WriteEnrichedFile(path string, rows []model.EnrichedStintFeature) error {
	return writeFile(path, func(w io.Writer) error { return WriteEnriched(w, rows) })
}

func WriteContextFile(path string, records []model.ContextRecord) error {
	return writeFile(path, func(w io.Writer) error { return WriteContext(w, records) })
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func featureRecord(f model.StintFeature) []string {
	return []string{
		f.Driver,
		strconv.Itoa(f.Round),
		strconv.Itoa(f.Stint),
		f.Compound,
		strconv.Itoa(f.StintLength),
		strconv.Itoa(f.StartLap),
		strconv.Itoa(f.EndLap),
		formatFloat(f.AvgLapTime),
		formatFloat(f.LapTimeSlope),
	}
}

// shortest representation which parses back to the same value
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nullFloat(v null.Val[float64]) string {
	if x, ok := v.Get(); ok {
		return formatFloat(x)
	}
	return ""
}

func contextCells(r model.EnrichedStintFeature) []string {
	if r.TrackTemp.IsNull() && r.Humidity.IsNull() &&
		r.WindSpeed.IsNull() && r.Conditions.IsNull() {
		return []string{"", "", "", ""}
	}
	cell := func(v null.Val[float64]) string {
		if x, ok := v.Get(); ok {
			return formatFloat(x)
		}
		return naFloat
	}
	return []string{
		cell(r.TrackTemp),
		cell(r.Humidity),
		cell(r.WindSpeed),
		r.Conditions.GetOr(naString),
	}
}
