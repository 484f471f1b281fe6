// Package enrich joins the stint features with the per round context
// (weather) records.
package enrich

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/mpapenbr/stintdeg/pkg/model"
)

var ErrAmbiguousJoin = errors.New("ambiguous join")

// AmbiguousJoinError is raised when the context table holds more than one
// row for a round.
type AmbiguousJoinError struct {
	Rounds []int
}

func (e *AmbiguousJoinError) Error() string {
	return fmt.Sprintf("multiple context records for rounds %s",
		strings.Join(lo.Map(e.Rounds, func(r int, _ int) string {
			return fmt.Sprint(r)
		}), ","))
}

func (e *AmbiguousJoinError) Is(target error) bool {
	return target == ErrAmbiguousJoin
}

// UnmatchedContextWarning is not an error. It reports the feature rows whose
// round has no context record.
type UnmatchedContextWarning struct {
	Count  int   `json:"count"`  // number of feature rows
	Rounds []int `json:"rounds"` // distinct rounds, sorted
}

func (w UnmatchedContextWarning) String() string {
	return fmt.Sprintf("%d stints without context (rounds %v)", w.Count, w.Rounds)
}

// DuplicatePolicy decides what happens if a round has more than one context record.
type DuplicatePolicy string

const (
	PolicyFail  DuplicatePolicy = "fail"
	PolicyFirst DuplicatePolicy = "first"
)

func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(s)); p {
	case PolicyFail, PolicyFirst:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate context policy %q", s)
	}
}

// ContextIndex maps each round to exactly one context record.
type ContextIndex struct {
	byRound map[int]model.ContextRecord
	// rounds which had more than one record (only with PolicyFirst)
	Duplicates []int
}

func (ci ContextIndex) Lookup(round int) (model.ContextRecord, bool) {
	c, ok := ci.byRound[round]
	return c, ok
}

func (ci ContextIndex) Len() int {
	return len(ci.byRound)
}

// IndexContext builds the one-to-one lookup used by the join. With PolicyFail
// duplicates yield an AmbiguousJoinError listing all affected rounds, with
// PolicyFirst the first record of a round (in input order) wins.
func IndexContext(records []model.ContextRecord, policy DuplicatePolicy) (ContextIndex, error) {
	ret := ContextIndex{byRound: make(map[int]model.ContextRecord, len(records))}
	counts := lo.CountValuesBy(records, func(c model.ContextRecord) int { return c.Round })
	for round, n := range counts {
		if n > 1 {
			ret.Duplicates = append(ret.Duplicates, round)
		}
	}
	slices.Sort(ret.Duplicates)
	if len(ret.Duplicates) > 0 && policy != PolicyFirst {
		return ContextIndex{}, &AmbiguousJoinError{Rounds: ret.Duplicates}
	}
	for _, c := range records {
		if _, ok := ret.byRound[c.Round]; !ok {
			ret.byRound[c.Round] = c
		}
	}
	return ret, nil
}

type Result struct {
	Rows            []model.EnrichedStintFeature
	Unmatched       UnmatchedContextWarning
	DuplicateRounds []int
}

// Merge left-joins the features with the index. Every feature appears exactly
// once in the result, in input order.
func Merge(features []model.StintFeature, index ContextIndex) Result {
	ret := Result{
		Rows:            make([]model.EnrichedStintFeature, 0, len(features)),
		DuplicateRounds: index.Duplicates,
	}
	unmatchedRounds := make([]int, 0)
	for _, f := range features {
		c, ok := index.Lookup(f.Round)
		if !ok {
			ret.Unmatched.Count++
			unmatchedRounds = append(unmatchedRounds, f.Round)
			ret.Rows = append(ret.Rows, model.Enrich(f, nil))
			continue
		}
		ret.Rows = append(ret.Rows, model.Enrich(f, &c))
	}
	ret.Unmatched.Rounds = lo.Uniq(unmatchedRounds)
	slices.Sort(ret.Unmatched.Rounds)
	return ret
}

// LeftJoin is IndexContext followed by Merge.
//
//nolint:whitespace // can't make both editor and linter happy
func LeftJoin(
	features []model.StintFeature,
	records []model.ContextRecord,
	policy DuplicatePolicy,
) (Result, error) {
	index, err := IndexContext(records, policy)
	if err != nil {
		return Result{}, err
	}
	return Merge(features, index), nil
}
