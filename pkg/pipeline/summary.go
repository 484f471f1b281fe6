package pipeline

import "github.com/mpapenbr/stintdeg/pkg/loader"

// Summary collects the counters of a run.
type Summary struct {
	LapStats               loader.LoadStats    `json:"laps"`
	Stints                 int                 `json:"stints"`
	MinLength              int                 `json:"minStintLength"`
	SkippedShort           int                 `json:"skippedShort"`
	SkippedNoLaps          int                 `json:"skippedNoLaps"`
	LengthMismatches       int                 `json:"lengthMismatches"`
	Degenerate             int                 `json:"degenerate"`
	Features               int                 `json:"features"`
	ContextRecords         int                 `json:"contextRecords"`
	ContextStats           loader.ContextStats `json:"context"`
	Enriched               int                 `json:"enriched"`
	Unmatched              int                 `json:"unmatched"`
	UnmatchedRounds        []int               `json:"unmatchedRounds"`
	DuplicateContextRounds []int               `json:"duplicateContextRounds"`
}
