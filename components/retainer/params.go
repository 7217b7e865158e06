package retainer

import (
	"time"

	"github.com/iotaledger/hive.go/app"
)

// ParametersRetainer contains the definition of the parameters used by the retainer component.
type ParametersRetainer struct {
	// Enabled defines whether the outcomes of submissions are retained.
	Enabled bool `default:"true" usage:"whether the outcomes of transaction submissions are retained"`
	// Path is the directory of the retainer database.
	Path string `default:"db/retainer" usage:"the path to the retainer database folder"`
	// RetentionPeriod is how long the outcome of a submission is kept.
	RetentionPeriod time.Duration `default:"24h" usage:"how long the outcome of a submission is kept"`
	// PruningInterval is the interval in which expired outcomes are deleted.
	PruningInterval time.Duration `default:"10m" usage:"the interval in which expired submission outcomes are deleted"`
}

// ParamsRetainer contains the configuration used by the retainer component.
var ParamsRetainer = &ParametersRetainer{}

var params = &app.ComponentParams{
	Params: map[string]any{
		"retainer": ParamsRetainer,
	},
}
