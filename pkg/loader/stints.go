package loader

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/series"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

// LoadStints reads the stint table. Every integer cell must be valid and
// (Driver, Round, Stint) must be unique, otherwise the table is rejected.
func LoadStints(r io.Reader) ([]model.StintRecord, error) {
	const table = "stints"
	f, err := readFrame(table, r, map[string]series.Type{
		colDriver:      series.String,
		colRound:       series.Float,
		colStint:       series.Float,
		colCompound:    series.String,
		colStartLap:    series.Float,
		colEndLap:      series.Float,
		colStintLength: series.Float,
	})
	if err != nil {
		return nil, err
	}
	ret := make([]model.StintRecord, 0, f.rows())
	seen := newKeySet(table, f.rows())
	for i := 0; i < f.rows(); i++ {
		item := model.StintRecord{
			Driver:   f.str(colDriver, i),
			Compound: f.str(colCompound, i),
		}
		if item.Driver == "" {
			return nil, missingDriver(table, i+1)
		}
		for _, target := range []struct {
			name string
			dest *int
		}{
			{colRound, &item.Round},
			{colStint, &item.Stint},
			{colStartLap, &item.StartLap},
			{colEndLap, &item.EndLap},
			{colStintLength, &item.StintLength},
		} {
			if *target.dest, err = f.mustInteger(target.name, i); err != nil {
				return nil, err
			}
		}
		if err := seen.add(item.Key(), i+1); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, nil
}

func missingDriver(table string, row int) error {
	return &InputFormatError{Table: table, Column: colDriver, Row: row, Reason: "missing value"}
}

// keySet rejects repeated (Driver, Round, Stint) keys of a table
type keySet struct {
	table string
	seen  map[model.StintKey]int
}

func newKeySet(table string, size int) *keySet {
	return &keySet{table: table, seen: make(map[model.StintKey]int, size)}
}

func (k *keySet) add(key model.StintKey, row int) error {
	if prev, ok := k.seen[key]; ok {
		return &InputFormatError{
			Table:  k.table,
			Row:    row,
			Reason: fmt.Sprintf("duplicate stint %s (first seen in row %d)", key, prev),
		}
	}
	k.seen[key] = row
	return nil
}
