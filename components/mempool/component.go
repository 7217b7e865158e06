package mempool

import (
	"context"

	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/app"
	"github.com/iotaledger/ledgerapi/pkg/daemon"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/mempool/mempoolv1"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/storage"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

func init() {
	Component = &app.Component{
		Name:     "Mempool",
		DepsFunc: func(cDeps dependencies) { deps = cDeps },
		Params:   params,
		Provide:  provide,
		Run:      run,
	}
}

var (
	Component *app.Component
	deps      dependencies
)

type dependencies struct {
	dig.In

	Sender  *mempool.ClientSender
	Mempool *mempoolv1.Mempool
}

func provide(c *dig.Container) error {
	type channelResult struct {
		dig.Out

		Sender   *mempool.ClientSender
		Requests <-chan mempool.ClientRequest
	}

	if err := c.Provide(func() channelResult {
		sender, requests := mempool.NewClientChannel(ParamsMempool.BufferSize)

		return channelResult{
			Sender:   sender,
			Requests: requests,
		}
	}); err != nil {
		Component.LogPanic(err.Error())
	}

	type mempoolDeps struct {
		dig.In

		Requests <-chan mempool.ClientRequest
		Reader   storage.Reader
		Registry *vm.LayoutRegistry
		ChainID  model.ChainID
	}

	return c.Provide(func(deps mempoolDeps) *mempoolv1.Mempool {
		return mempoolv1.New(Component.Logger().NewChildLogger("Pool"), deps.Requests, deps.Reader, deps.Registry, deps.ChainID,
			mempoolv1.WithCapacity(ParamsMempool.Capacity),
			mempoolv1.WithCapacityPerUser(ParamsMempool.CapacityPerUser),
			mempoolv1.WithWorkerCount(ParamsMempool.WorkerCount),
			mempoolv1.WithMaxGasAmount(ParamsMempool.MaxGasAmount),
			mempoolv1.WithMinGasUnitPrice(ParamsMempool.MinGasUnitPrice),
		)
	})
}

func run() error {
	return Component.Daemon().BackgroundWorker(Component.Name, func(ctx context.Context) {
		runCtx, runCtxCancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})

		go func() {
			defer close(stopped)

			deps.Mempool.Run(runCtx)
		}()

		<-ctx.Done()
		Component.LogInfo("Gracefully shutting down the Mempool...")

		// refuse new requests before the buffered ones are dropped
		deps.Sender.Close()
		runCtxCancel()
		<-stopped

		Component.LogInfo("Gracefully shutting down the Mempool... done")
	}, daemon.PriorityMempool)
}
