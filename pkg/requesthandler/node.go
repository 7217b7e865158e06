package requesthandler

import (
	"strings"
	"time"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/pkg/model"
)

// NodeRole is the role the node plays in the network.
type NodeRole uint8

const (
	NodeRoleFullNode NodeRole = iota
	NodeRoleValidator
)

func (n NodeRole) String() string {
	switch n {
	case NodeRoleFullNode:
		return "full_node"
	case NodeRoleValidator:
		return "validator"
	default:
		return "unknown"
	}
}

func NodeRoleFromString(role string) (NodeRole, error) {
	switch strings.ToLower(role) {
	case "full_node", "fullnode":
		return NodeRoleFullNode, nil
	case "validator":
		return NodeRoleValidator, nil
	default:
		return NodeRoleFullNode, ierrors.Errorf("unknown node role %q", role)
	}
}

func (r *RequestHandler) ChainID() model.ChainID {
	return r.optsChainID
}

func (r *RequestHandler) NodeRole() NodeRole {
	return r.optsNodeRole
}

func (r *RequestHandler) ContentLengthLimit() uint64 {
	return r.optsContentLengthLimit
}

// LatestLedgerInfo returns the current ledger snapshot. Its ledger version is the bound every subsequent read
// of a logical request should use.
func (r *RequestHandler) LatestLedgerInfo() (*model.LedgerSnapshot, error) {
	ledgerInfo, err := r.reader.LatestLedgerInfo()
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to read latest ledger info")
	}

	oldestVersion, exists, err := r.reader.FirstTransactionVersion()
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to read oldest ledger version")
	}
	if !exists {
		return nil, ierrors.Wrap(ErrInconsistentLedger, "ledger not initialized: failed to find oldest version")
	}
	if oldestVersion > ledgerInfo.LedgerInfo.Version {
		return nil, ierrors.Wrapf(ErrInconsistentLedger, "oldest version %d is newer than ledger version %d", oldestVersion, ledgerInfo.LedgerInfo.Version)
	}

	return model.NewLedgerSnapshot(r.optsChainID, ledgerInfo, oldestVersion), nil
}

func (r *RequestHandler) LatestLedgerInfoWithSignatures() (*model.LedgerInfoWithSignatures, error) {
	ledgerInfo, err := r.reader.LatestLedgerInfo()
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to read latest ledger info")
	}

	return ledgerInfo, nil
}

// CheckHealth fails with ErrLedgerBehind if the latest ledger timestamp is more than maxAge older than now.
func (r *RequestHandler) CheckHealth(maxAge time.Duration, now time.Time) error {
	snapshot, err := r.LatestLedgerInfo()
	if err != nil {
		return err
	}

	ledgerTime := time.UnixMicro(int64(snapshot.LedgerTimestamp.Uint64()))
	if ledgerTime.Add(maxAge).Before(now) {
		return ierrors.Wrapf(ErrLedgerBehind, "latest ledger timestamp %s is more than %s old", ledgerTime.UTC().Format(time.RFC3339), maxAge)
	}

	return nil
}
