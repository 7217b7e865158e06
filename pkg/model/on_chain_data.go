package model

// TransactionOnChainData is a committed transaction with everything needed to render it:
// its proof, the events and write set it produced, and the accumulator root as of its version.
type TransactionOnChainData struct {
	Version             Version
	Transaction         Transaction
	Info                *TransactionInfo
	Proof               TransactionAccumulatorProof
	Events              []*ContractEvent
	AccumulatorRootHash HashValue
	Changes             WriteSet
}

// NewTransactionOnChainData folds a transaction with proof, its output and the accumulator root into one record.
// Events attached to the transaction take precedence over the events of the output.
func NewTransactionOnChainData(txn *TransactionWithProof, accumulatorRootHash HashValue, output *TransactionOutput) *TransactionOnChainData {
	events := txn.Events
	if events == nil {
		events = output.Events
	}

	return &TransactionOnChainData{
		Version:             txn.Version,
		Transaction:         txn.Transaction,
		Info:                txn.Proof.TransactionInfo,
		Proof:               txn.Proof.LedgerInfoToTransactionInfoProof,
		Events:              events,
		AccumulatorRootHash: accumulatorRootHash,
		Changes:             output.WriteSet,
	}
}

// VerifyAccumulator checks the transaction info against the accumulator root the record was folded with.
func (t *TransactionOnChainData) VerifyAccumulator() error {
	return t.Proof.Verify(t.Info, t.AccumulatorRootHash)
}
