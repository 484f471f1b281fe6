package aggregate

import (
	"cmp"
	"slices"

	"github.com/aarondl/opt/null"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

// Comparison holds the mean slope of a driver group and of everybody else
// for one compound. A side without stints on that compound is null, so is
// the difference then.
type Comparison struct {
	Compound   string            `json:"compound"`
	Group      null.Val[float64] `json:"group"`
	Others     null.Val[float64] `json:"others"`
	Difference null.Val[float64] `json:"difference"`
}

// CompareGroups compares the drivers (for example the two drivers of a team)
// against the rest of the field, per compound.
func CompareGroups(rows []model.EnrichedStintFeature, drivers []string) []Comparison {
	group := meansByCompound(ForDrivers(rows, drivers...))
	others := meansByCompound(ExcludeDrivers(rows, drivers...))
	compounds := lo.Uniq(append(lo.Keys(group), lo.Keys(others)...))
	slices.Sort(compounds)

	ret := make([]Comparison, 0, len(compounds))
	for _, c := range compounds {
		item := Comparison{Compound: c}
		g, gok := group[c]
		o, ook := others[c]
		if gok {
			item.Group = null.From(g)
		}
		if ook {
			item.Others = null.From(o)
		}
		if gok && ook {
			item.Difference = null.From(g - o)
		}
		ret = append(ret, item)
	}
	return ret
}

func meansByCompound(rows []model.EnrichedStintFeature) map[string]float64 {
	return lo.MapValues(slopesBy(rows, ByCompound), func(v []float64, _ string) float64 {
		return stat.Mean(v, nil)
	})
}

// LengthTime is the mean estimated total time (AvgLapTime * StintLength) of
// the stints with the same compound and length.
type LengthTime struct {
	Compound      string  `json:"compound"`
	StintLength   int     `json:"stintLength"`
	Count         int     `json:"count"`
	MeanStintTime float64 `json:"meanStintTime"`
}

func StintTimeByLength(rows []model.EnrichedStintFeature) []LengthTime {
	type key struct {
		compound string
		length   int
	}
	groups := lo.GroupBy(rows, func(r model.EnrichedStintFeature) key {
		return key{r.Compound, r.StintLength}
	})
	ret := make([]LengthTime, 0, len(groups))
	for k, items := range groups {
		totals := lo.Map(items, func(r model.EnrichedStintFeature, _ int) float64 {
			return r.AvgLapTime * float64(r.StintLength)
		})
		ret = append(ret, LengthTime{
			Compound:      k.compound,
			StintLength:   k.length,
			Count:         len(items),
			MeanStintTime: stat.Mean(totals, nil),
		})
	}
	slices.SortFunc(ret, func(a, b LengthTime) int {
		return cmp.Or(cmp.Compare(a.Compound, b.Compound), cmp.Compare(a.StintLength, b.StintLength))
	})
	return ret
}
