package blockissuer

import (
	"context"

	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/app"
	"github.com/iotaledger/hive.go/runtime/timeutil"
	"github.com/iotaledger/ledgerapi/pkg/blockfactory"
	"github.com/iotaledger/ledgerapi/pkg/daemon"
	"github.com/iotaledger/ledgerapi/pkg/mempool/mempoolv1"
	"github.com/iotaledger/ledgerapi/pkg/storage/memstore"
)

func init() {
	Component = &app.Component{
		Name:     "BlockIssuer",
		DepsFunc: func(cDeps dependencies) { deps = cDeps },
		Params:   params,
		Provide:  provide,
		Run:      run,
		IsEnabled: func(_ *dig.Container) bool {
			return ParamsBlockIssuer.Enabled
		},
	}
}

var (
	Component *app.Component
	deps      dependencies
)

type dependencies struct {
	dig.In

	BlockIssuer *blockfactory.BlockIssuer
}

func provide(c *dig.Container) error {
	type innerDependencies struct {
		dig.In

		Factory *blockfactory.Factory
		Mempool *mempoolv1.Mempool
		Store   *memstore.Store
	}

	return c.Provide(func(deps innerDependencies) *blockfactory.BlockIssuer {
		return blockfactory.NewBlockIssuer(Component.Logger().NewChildLogger("Issuer"), deps.Factory, deps.Mempool, deps.Store,
			blockfactory.WithMaxTransactions(ParamsBlockIssuer.MaxTransactions),
			blockfactory.WithStateCheckpoints(ParamsBlockIssuer.StateCheckpoints),
		)
	})
}

func issueBlock() {
	ledgerInfo, err := deps.BlockIssuer.IssueBlock()
	if err != nil {
		Component.LogWarnf("error issuing block: %s", err.Error())

		return
	}

	Component.LogDebugf("Issued block - ledger version %d - timestamp %d", ledgerInfo.LedgerInfo.Version, ledgerInfo.LedgerInfo.TimestampUsecs)
}

func run() error {
	return Component.Daemon().BackgroundWorker(Component.Name, func(ctx context.Context) {
		Component.LogInfof("Starting BlockIssuer with interval %s", ParamsBlockIssuer.Interval)

		ticker := timeutil.NewTicker(issueBlock, ParamsBlockIssuer.Interval, ctx)
		ticker.WaitForGracefulShutdown()

		<-ctx.Done()
		Component.LogInfo("Stopping BlockIssuer... done")
	}, daemon.PriorityBlockProducer)
}
