package txretainer

import (
	"time"

	"gorm.io/gorm"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/storage/sqlite"
)

var dbTables = []any{
	&SubmissionMetadata{},
}

// SubmissionRetainer keeps the outcome of transaction submissions so that clients can look up why a
// transaction never made it into the ledger.
type SubmissionRetainer struct {
	dbExecFunc sqlite.ExecFunc

	optsClock func() time.Time

	log.Logger
}

func New(logger log.Logger, dbExecFunc sqlite.ExecFunc, opts ...options.Option[SubmissionRetainer]) (*SubmissionRetainer, error) {
	r := options.Apply(&SubmissionRetainer{
		Logger:     logger,
		dbExecFunc: dbExecFunc,
		optsClock:  time.Now,
	}, opts)

	// the schema never changes while the retainer is running, migrating once is sufficient.
	if err := dbExecFunc(func(db *gorm.DB) error {
		return db.AutoMigrate(dbTables...)
	}); err != nil {
		return nil, ierrors.Wrap(err, "failed to auto migrate tables")
	}

	return r, nil
}

// WithClock sets the clock used to timestamp submissions.
func WithClock(clock func() time.Time) options.Option[SubmissionRetainer] {
	return func(r *SubmissionRetainer) {
		r.optsClock = clock
	}
}

// RecordSubmission stores the outcome of a submission of txn. An accepted outcome is final and is not
// replaced by the outcome of a later submission of the same transaction.
func (r *SubmissionRetainer) RecordSubmission(txn *model.SignedTransaction, status *mempool.SubmissionStatus) error {
	newMetadata := newSubmissionMetadata(txn, status, r.optsClock().UnixMicro())

	if err := r.dbExecFunc(func(db *gorm.DB) error {
		return db.Transaction(func(dbTx *gorm.DB) error {
			existing := &SubmissionMetadata{}
			if err := dbTx.First(existing, &SubmissionMetadata{TransactionHash: newMetadata.TransactionHash}).Error; err == nil {
				if mempool.MempoolStatusCode(existing.StatusCode) == mempool.Accepted {
					return nil
				}
			} else if !ierrors.Is(err, gorm.ErrRecordNotFound) {
				return ierrors.Wrapf(err, "failed to read submission metadata of %s", txn.Hash())
			}

			return dbTx.Save(newMetadata).Error
		})
	}); err != nil {
		return ierrors.Wrap(err, "failed to record submission")
	}

	r.LogDebug("recorded submission", "metadata", newMetadata)

	return nil
}

// SubmissionByHash returns the retained outcome of the submission of the transaction with the given hash,
// nil if none is retained.
func (r *SubmissionRetainer) SubmissionByHash(hash model.HashValue) (*SubmissionMetadata, error) {
	metadata := &SubmissionMetadata{}

	if err := r.dbExecFunc(func(db *gorm.DB) error {
		return db.First(metadata, &SubmissionMetadata{TransactionHash: hash[:]}).Error
	}); err != nil {
		if !ierrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierrors.Wrapf(err, "failed to query submission metadata of %s", hash)
		}

		//nolint:nilnil // nil means no submission is retained
		return nil, nil
	}

	return metadata, nil
}

// SubmissionsBySender returns the retained submissions of sender ordered by sequence number.
func (r *SubmissionRetainer) SubmissionsBySender(sender model.AccountAddress, limit int) ([]*SubmissionMetadata, error) {
	var submissions []*SubmissionMetadata

	if err := r.dbExecFunc(func(db *gorm.DB) error {
		return db.Where("sender = ?", sender[:]).Order("sequence_number").Limit(limit).Find(&submissions).Error
	}); err != nil {
		return nil, ierrors.Wrapf(err, "failed to query submissions of %s", sender)
	}

	return submissions, nil
}

// Prune deletes the outcomes of all submissions older than the given time and returns how many were deleted.
func (r *SubmissionRetainer) Prune(before time.Time) (int64, error) {
	var deleted int64

	if err := r.dbExecFunc(func(db *gorm.DB) error {
		result := db.Where("submitted_at < ?", before.UnixMicro()).Delete(&SubmissionMetadata{})
		deleted = result.RowsAffected

		return result.Error
	}); err != nil {
		return 0, ierrors.Wrap(err, "failed to delete submission metadata")
	}

	return deleted, nil
}

// Count returns the number of retained submissions.
func (r *SubmissionRetainer) Count() (int64, error) {
	var count int64

	if err := r.dbExecFunc(func(db *gorm.DB) error {
		return db.Model(&SubmissionMetadata{}).Count(&count).Error
	}); err != nil {
		return 0, ierrors.Wrap(err, "failed to count submission metadata")
	}

	return count, nil
}
