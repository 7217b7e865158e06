package mempool

import (
	"github.com/iotaledger/hive.go/app"
)

// ParametersMempool contains the definition of the parameters used by the mempool component.
type ParametersMempool struct {
	// Capacity is the maximum number of pending transactions.
	Capacity int `default:"2000000" usage:"the maximum number of pending transactions"`
	// CapacityPerUser is the maximum number of pending transactions of a single sender.
	CapacityPerUser int `default:"100" usage:"the maximum number of pending transactions of a single sender"`
	// WorkerCount is the number of workers answering client requests.
	WorkerCount int `default:"4" usage:"the number of workers answering client requests"`
	// BufferSize is the number of client requests that can be queued before senders block.
	BufferSize int `default:"1024" usage:"the number of client requests that can be queued before senders block"`
	// MaxGasAmount is the maximum gas amount a transaction may request.
	MaxGasAmount uint64 `default:"2000000" usage:"the maximum gas amount a transaction may request"`
	// MinGasUnitPrice is the minimum gas unit price a transaction has to pay.
	MinGasUnitPrice uint64 `default:"0" usage:"the minimum gas unit price a transaction has to pay"`
}

// ParamsMempool contains the configuration used by the mempool component.
var ParamsMempool = &ParametersMempool{}

var params = &app.ComponentParams{
	Params: map[string]any{
		"mempool": ParamsMempool,
	},
}
