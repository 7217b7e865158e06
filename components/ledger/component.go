package ledger

import (
	"context"

	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/app"
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/ledgerapi/pkg/blockfactory"
	"github.com/iotaledger/ledgerapi/pkg/daemon"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/metrics"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/requesthandler"
	"github.com/iotaledger/ledgerapi/pkg/retainer/txretainer"
	"github.com/iotaledger/ledgerapi/pkg/storage"
	"github.com/iotaledger/ledgerapi/pkg/storage/memstore"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

func init() {
	Component = &app.Component{
		Name:      "Ledger",
		DepsFunc:  func(cDeps dependencies) { deps = cDeps },
		Params:    params,
		Provide:   provide,
		Configure: configure,
		Run:       run,
	}
}

var (
	Component *app.Component
	deps      dependencies
)

type dependencies struct {
	dig.In

	Store          *memstore.Store
	Factory        *blockfactory.Factory
	RequestHandler *requesthandler.RequestHandler
}

func provide(c *dig.Container) error {
	if err := c.Provide(func() model.ChainID {
		return model.ChainID(ParamsLedger.ChainID)
	}); err != nil {
		return err
	}

	if err := c.Provide(func() *metrics.ServerMetrics {
		return new(metrics.ServerMetrics)
	}); err != nil {
		return err
	}

	if err := c.Provide(func() *vm.LayoutRegistry {
		return vm.NewLayoutRegistry()
	}); err != nil {
		return err
	}

	if err := c.Provide(func() *memstore.Store {
		return memstore.New(mapdb.NewMapDB(), memstore.WithRetainedVersions(ParamsLedger.RetainedVersions))
	}); err != nil {
		return err
	}

	if err := c.Provide(func(store *memstore.Store) storage.Reader {
		return store
	}); err != nil {
		return err
	}

	if err := c.Provide(func(chainID model.ChainID, registry *vm.LayoutRegistry) *blockfactory.Factory {
		return blockfactory.New(chainID, registry,
			blockfactory.WithEpochInterval(ParamsLedger.Genesis.EpochInterval),
			blockfactory.WithGenesisAccounts(genesisAccounts()...),
		)
	}); err != nil {
		return err
	}

	type requestHandlerDeps struct {
		dig.In

		ChainID       model.ChainID
		Reader        storage.Reader
		Registry      *vm.LayoutRegistry
		MempoolSender *mempool.ClientSender
		ServerMetrics *metrics.ServerMetrics
		Retainer      *txretainer.SubmissionRetainer `optional:"true"`
	}

	return c.Provide(func(deps requestHandlerDeps) *requesthandler.RequestHandler {
		nodeRole, err := requesthandler.NodeRoleFromString(ParamsLedger.NodeRole)
		if err != nil {
			Component.LogPanic(err.Error())
		}

		opts := []options.Option[requesthandler.RequestHandler]{
			requesthandler.WithChainID(deps.ChainID),
			requesthandler.WithNodeRole(nodeRole),
			requesthandler.WithContentLengthLimit(ParamsLedger.ContentLengthLimit),
			requesthandler.WithInterpreter(deps.Registry),
			requesthandler.WithServerMetrics(deps.ServerMetrics),
		}
		if deps.Retainer != nil {
			opts = append(opts, requesthandler.WithSubmissionRetainer(deps.Retainer))
		}

		return requesthandler.New(Component.Logger().NewChildLogger("RequestHandler"), deps.Reader, deps.MempoolSender, opts...)
	})
}

func genesisAccounts() []blockfactory.Account {
	accounts := make([]blockfactory.Account, 0, len(ParamsLedger.Genesis.Accounts))
	for _, addressHex := range ParamsLedger.Genesis.Accounts {
		address, err := model.AccountAddressFromHex(addressHex)
		if err != nil {
			Component.LogPanicf("invalid genesis account %s: %s", addressHex, err)
		}

		accounts = append(accounts, blockfactory.Account{Address: address})
	}

	return accounts
}

func configure() error {
	if _, exists, err := deps.Store.FirstTransactionVersion(); err != nil {
		return ierrors.Wrap(err, "failed to read the first transaction version")
	} else if exists {
		return nil
	}

	genesis, err := deps.Factory.Genesis()
	if err != nil {
		return ierrors.Wrap(err, "failed to create genesis")
	}

	ledgerInfo, err := deps.Store.Commit([]*model.TransactionAndOutput{genesis})
	if err != nil {
		return ierrors.Wrap(err, "failed to commit genesis")
	}

	Component.LogInfof("Committed genesis of chain %s, accumulator root %s", deps.Factory.ChainID(), ledgerInfo.LedgerInfo.TransactionAccumulatorHash)

	return nil
}

func run() error {
	return Component.Daemon().BackgroundWorker(Component.Name, func(ctx context.Context) {
		snapshot, err := deps.RequestHandler.LatestLedgerInfo()
		if err != nil {
			Component.LogPanicf("ledger is not readable: %s", err)
		}

		Component.LogInfof("Serving chain %s as %s at ledger version %d", deps.RequestHandler.ChainID(), deps.RequestHandler.NodeRole(), snapshot.Version())

		<-ctx.Done()
		Component.LogInfo("Gracefully shutting down the Ledger... done")
	}, daemon.PriorityLedger)
}
