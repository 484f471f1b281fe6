package pipeline

import (
	"github.com/go-playground/validator/v10"

	"github.com/mpapenbr/stintdeg/pkg/enrich"
	"github.com/mpapenbr/stintdeg/pkg/model"
)

// Config controls a pipeline run.
type Config struct {
	// stints shorter than this are not fitted
	MinStintLength int `validate:"gte=2"`
	// number of stints fitted in parallel, 0 means GOMAXPROCS
	Workers int `validate:"gte=0"`
	// what to do with multiple context records for one round
	DuplicateContext enrich.DuplicatePolicy `validate:"oneof=fail first"`
}

func DefaultConfig() Config {
	return Config{
		MinStintLength:   model.MinStintLength,
		Workers:          0,
		DuplicateContext: enrich.PolicyFail,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	return validate.Struct(c)
}
