package ledger

import (
	"github.com/iotaledger/hive.go/app"
)

// ParametersLedger contains the definition of the parameters used by the ledger component.
type ParametersLedger struct {
	// ChainID is the id of the chain the node serves.
	ChainID uint8 `default:"4" usage:"the id of the chain the node serves"`
	// NodeRole is the role of the node in the network.
	NodeRole string `default:"full_node" usage:"the role of the node in the network (full_node, validator)"`
	// ContentLengthLimit is the maximum size in bytes of a submitted transaction.
	ContentLengthLimit uint64 `default:"8388608" usage:"the maximum size in bytes of a request body accepted by the API"`
	// RetainedVersions is the number of ledger versions kept before older ones are pruned.
	RetainedVersions uint64 `default:"0" usage:"how many ledger versions are retained, 0 keeps all of them"`

	Genesis struct {
		// EpochInterval is the epoch interval in microseconds written to the genesis block metadata.
		EpochInterval uint64 `default:"7200000000" usage:"the epoch interval in microseconds"`
		// Accounts are the addresses of the accounts created at genesis.
		Accounts []string `usage:"the hex addresses of the accounts created at genesis"`
	}
}

// ParamsLedger contains the configuration used by the ledger component.
var ParamsLedger = &ParametersLedger{}

var params = &app.ComponentParams{
	Params: map[string]any{
		"ledger": ParamsLedger,
	},
}
