// Package aggregate provides the group-by reductions used to compare stint
// degradation across compounds, tracks and drivers.
package aggregate

import (
	"cmp"
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

// Summary describes the LapTimeSlope distribution of a group.
// Std is the sample standard deviation (NaN for a single value).
type Summary[K cmp.Ordered] struct {
	Group  K       `json:"group"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// GroupMean is the mean LapTimeSlope of a group.
type GroupMean[K cmp.Ordered] struct {
	Group K       `json:"group"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// Describe groups the rows by keyFn and summarizes the slopes of every
// group. The result is sorted by group key.
func Describe[K cmp.Ordered](
	rows []model.EnrichedStintFeature,
	keyFn func(model.EnrichedStintFeature) K,
) []Summary[K] {
	groups := slopesBy(rows, keyFn)
	ret := make([]Summary[K], 0, len(groups))
	for _, k := range sortedKeys(groups) {
		ret = append(ret, describe(k, groups[k]))
	}
	return ret
}

// MeanBy computes the mean slope per group, sorted by group key.
func MeanBy[K cmp.Ordered](
	rows []model.EnrichedStintFeature,
	keyFn func(model.EnrichedStintFeature) K,
) []GroupMean[K] {
	groups := slopesBy(rows, keyFn)
	ret := make([]GroupMean[K], 0, len(groups))
	for _, k := range sortedKeys(groups) {
		ret = append(ret, GroupMean[K]{Group: k, Count: len(groups[k]), Mean: stat.Mean(groups[k], nil)})
	}
	return ret
}

// RankByMean is MeanBy ordered by descending mean slope, ties by group key.
func RankByMean[K cmp.Ordered](
	rows []model.EnrichedStintFeature,
	keyFn func(model.EnrichedStintFeature) K,
) []GroupMean[K] {
	ret := MeanBy(rows, keyFn)
	slices.SortStableFunc(ret, func(a, b GroupMean[K]) int {
		return cmp.Compare(b.Mean, a.Mean)
	})
	return ret
}

// RankByGroupMeans ranks the groups of keyFn by the unweighted mean of the
// mean slopes of their subgroups (e.g. the compounds run at a track), highest
// first. Count is the number of stints of the group.
func RankByGroupMeans[K, S cmp.Ordered](
	rows []model.EnrichedStintFeature,
	keyFn func(model.EnrichedStintFeature) K,
	subFn func(model.EnrichedStintFeature) S,
) []GroupMean[K] {
	groups := make(map[K]map[S][]float64)
	for _, r := range rows {
		k := keyFn(r)
		if groups[k] == nil {
			groups[k] = make(map[S][]float64)
		}
		groups[k][subFn(r)] = append(groups[k][subFn(r)], r.LapTimeSlope)
	}
	ret := make([]GroupMean[K], 0, len(groups))
	for _, k := range sortedKeys(groups) {
		sub := groups[k]
		means := make([]float64, 0, len(sub))
		count := 0
		for _, s := range sortedKeys(sub) {
			means = append(means, stat.Mean(sub[s], nil))
			count += len(sub[s])
		}
		ret = append(ret, GroupMean[K]{Group: k, Count: count, Mean: stat.Mean(means, nil)})
	}
	slices.SortStableFunc(ret, func(a, b GroupMean[K]) int {
		return cmp.Compare(b.Mean, a.Mean)
	})
	return ret
}

func slopesBy[K cmp.Ordered](
	rows []model.EnrichedStintFeature,
	keyFn func(model.EnrichedStintFeature) K,
) map[K][]float64 {
	ret := make(map[K][]float64)
	for _, r := range rows {
		k := keyFn(r)
		ret[k] = append(ret[k], r.LapTimeSlope)
	}
	return ret
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

func describe[K cmp.Ordered](k K, values []float64) Summary[K] {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	std := math.NaN()
	if len(sorted) > 1 {
		std = stat.StdDev(sorted, nil)
	}
	return Summary[K]{
		Group:  k,
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Std:    std,
		Min:    floats.Min(sorted),
		Q25:    quantile(0.25, sorted),
		Median: quantile(0.5, sorted),
		Q75:    quantile(0.75, sorted),
		Max:    floats.Max(sorted),
	}
}

// quantile interpolates linearly between the closest ranks of the sorted
// values (Hyndman-Fan type 7).
func quantile(p float64, sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lower := int(math.Floor(h))
	if lower >= n-1 {
		return sorted[n-1]
	}
	return sorted[lower] + (h-float64(lower))*(sorted[lower+1]-sorted[lower])
}
