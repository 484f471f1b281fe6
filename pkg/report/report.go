// Package report writes the summary of a pipeline run as JSON document.
package report

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"

	"github.com/mpapenbr/stintdeg/pkg/pipeline"
	"github.com/mpapenbr/stintdeg/version"
)

type Report struct {
	Created time.Time
	RunID   string // empty if the run was not stored
	Inputs  map[string]string
	Config  pipeline.Config
	Summary pipeline.Summary
}

// Data returns the generic representation written by Write.
func (r *Report) Data() map[string]any {
	s := r.Summary
	inputs := make(map[string]any, len(r.Inputs))
	for k, v := range r.Inputs {
		inputs[k] = v
	}
	ret := map[string]any{
		"version": version.Version,
		"created": r.Created.UTC().Format(time.RFC3339),
		"inputs":  inputs,
		"config": map[string]any{
			"minStintLength":   r.Config.MinStintLength,
			"workers":          r.Config.Workers,
			"duplicateContext": string(r.Config.DuplicateContext),
		},
		"laps": map[string]any{
			"rows":           s.LapStats.Rows,
			"loaded":         s.LapStats.Loaded,
			"invalidLapTime": s.LapStats.InvalidLapTime,
			"invalidKey":     s.LapStats.InvalidKey,
		},
		"stints": map[string]any{
			"total":            s.Stints,
			"skippedShort":     s.SkippedShort,
			"skippedNoLaps":    s.SkippedNoLaps,
			"lengthMismatches": s.LengthMismatches,
			"degenerate":       s.Degenerate,
			"features":         s.Features,
		},
		"context": map[string]any{
			"records":         s.ContextRecords,
			"incomplete":      s.ContextStats.Incomplete,
			"enriched":        s.Enriched,
			"unmatched":       s.Unmatched,
			"unmatchedRounds": toAny(s.UnmatchedRounds),
			"duplicateRounds": toAny(s.DuplicateContextRounds),
		},
	}
	if r.RunID != "" {
		ret["runId"] = r.RunID
	}
	return ret
}

func (r *Report) Write(w io.Writer) error {
	_, err := io.WriteString(w, oj.JSON(r.Data(), &oj.Options{Indent: 2, Sort: true})+"\n")
	return err
}

func (r *Report) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toAny(values []int) []any {
	return lo.Map(values, func(v, _ int) any { return v })
}
