package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Run describes a stored pipeline run. Summary is kept as opaque JSON
// document.
type Run struct {
	ID               uuid.UUID      `json:"id"`
	Created          time.Time      `json:"created"`
	LapsFile         string         `json:"lapsFile"`
	StintsFile       string         `json:"stintsFile"`
	ContextFile      string         `json:"contextFile"`
	MinStintLength   int            `json:"minStintLength"`
	DuplicateContext string         `json:"duplicateContext"`
	Summary          map[string]any `json:"summary"`
}
