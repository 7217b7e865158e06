package blockissuer

import (
	"time"

	"github.com/iotaledger/hive.go/app"
)

// ParametersBlockIssuer contains the definition of the configuration parameters used by the BlockIssuer component.
type ParametersBlockIssuer struct {
	// Enabled defines whether the node turns its pending transactions into blocks.
	Enabled bool `default:"true" usage:"whether the BlockIssuer component is enabled"`
	// Interval is the time between two blocks.
	Interval time.Duration `default:"1s" usage:"the interval at which the node issues blocks"`
	// MaxTransactions is the maximum number of user transactions in a block.
	MaxTransactions int `default:"100" usage:"the maximum number of user transactions in a block"`
	// StateCheckpoints defines whether blocks are closed with a state checkpoint transaction.
	StateCheckpoints bool `default:"true" usage:"whether blocks are closed with a state checkpoint transaction"`
}

// ParamsBlockIssuer is the default configuration parameters for the BlockIssuer component.
var ParamsBlockIssuer = &ParametersBlockIssuer{}

var params = &app.ComponentParams{
	Params: map[string]any{
		"blockIssuer": ParamsBlockIssuer,
	},
}
