package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/samber/lo"
)

// float64 bounds of int, maxInt itself is not representable as int
const (
	minInt = float64(math.MinInt)
	maxInt = -float64(math.MinInt)
)

// values treated as missing. "NA" is deliberately absent, it is a valid
// driver abbreviation.
var missingValues = []string{"", "NaN", "nan", "NaT", "None", "<NA>"}

// frame is a typed view on a csv table with all required columns present.
type frame struct {
	table string
	df    dataframe.DataFrame
	nrow  int
	cols  map[string]series.Series
	raw   [][]string
	index map[string]int
}

//nolint:whitespace // can't make both editor and linter happy
func readFrame(
	table string,
	r io.Reader,
	required map[string]series.Type,
) (*frame, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, &InputFormatError{Table: table, Reason: err.Error()}
	}
	if len(records) == 0 {
		return nil, &InputFormatError{Table: table, Reason: "no header row"}
	}
	header := records[0]
	missing := lo.Filter(lo.Keys(required), func(name string, _ int) bool {
		return !lo.Contains(header, name)
	})
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, &InputFormatError{
			Table:  table,
			Column: strings.Join(missing, ","),
			Reason: "required column missing",
		}
	}
	ret := &frame{
		table: table,
		cols:  make(map[string]series.Series),
		raw:   records[1:],
		index: make(map[string]int, len(header)),
	}
	for i, name := range header {
		if _, ok := ret.index[name]; !ok {
			ret.index[name] = i
		}
	}
	if len(records) == 1 {
		return ret, nil
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(required),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return nil, &InputFormatError{Table: table, Reason: df.Err.Error()}
	}
	ret.df = df
	ret.nrow = df.Nrow()
	for name := range required {
		col := df.Col(name)
		if col.Err != nil {
			return nil, &InputFormatError{Table: table, Column: name, Reason: col.Err.Error()}
		}
		ret.cols[name] = col
	}
	return ret, nil
}

func (f *frame) rows() int {
	return f.nrow
}

func (f *frame) isNA(name string, i int) bool {
	return f.cols[name].Elem(i).IsNA()
}

// text returns the cell as found in the file
func (f *frame) text(name string, i int) string {
	return f.raw[i][f.index[name]]
}

// str returns the string value of a cell, "" for missing values
func (f *frame) str(name string, i int) string {
	if f.isNA(name, i) {
		return ""
	}
	return f.cols[name].Elem(i).String()
}

// float returns the float value of a cell, NaN for missing or unparseable values
func (f *frame) float(name string, i int) float64 {
	if f.isNA(name, i) {
		return math.NaN()
	}
	return f.cols[name].Elem(i).Float()
}

// integer accepts integral floats ("7" as well as "7.0", pandas writes
// nullable int columns as floats)
func (f *frame) integer(name string, i int) (int, bool) {
	v := f.float(name, i)
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	// int(v) is implementation defined outside of the int range
	if v < minInt || v >= maxInt {
		return 0, false
	}
	return int(v), true
}

func (f *frame) mustInteger(name string, i int) (int, error) {
	v, ok := f.integer(name, i)
	if !ok {
		return 0, &InputFormatError{
			Table:  f.table,
			Column: name,
			Row:    i + 1,
			Reason: fmt.Sprintf("%q is not an integer", f.str(name, i)),
		}
	}
	return v, nil
}

func (f *frame) mustFloat(name string, i int) (float64, error) {
	v := f.float(name, i)
	if math.IsNaN(v) {
		return 0, &InputFormatError{
			Table:  f.table,
			Column: name,
			Row:    i + 1,
			Reason: fmt.Sprintf("%q is not a number", f.str(name, i)),
		}
	}
	return v, nil
}
