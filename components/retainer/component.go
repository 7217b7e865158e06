package retainer

import (
	"context"
	"time"

	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/app"
	"github.com/iotaledger/hive.go/runtime/timeutil"
	"github.com/iotaledger/ledgerapi/pkg/daemon"
	"github.com/iotaledger/ledgerapi/pkg/retainer/txretainer"
	"github.com/iotaledger/ledgerapi/pkg/storage/sqlite"
)

const databaseFilename = "tx_retainer.db"

func init() {
	Component = &app.Component{
		Name:     "Retainer",
		DepsFunc: func(cDeps dependencies) { deps = cDeps },
		Params:   params,
		IsEnabled: func(_ *dig.Container) bool {
			return ParamsRetainer.Enabled
		},
		Provide: provide,
		Run:     run,
	}
}

var (
	Component *app.Component
	deps      dependencies
)

type dependencies struct {
	dig.In

	Database *sqlite.Database
	Retainer *txretainer.SubmissionRetainer
}

func provide(c *dig.Container) error {
	if err := c.Provide(func() *sqlite.Database {
		database, err := sqlite.New(Component.Logger().NewChildLogger("DB"), ParamsRetainer.Path, databaseFilename, func(err error) {
			Component.LogError(err.Error())
		})
		if err != nil {
			Component.LogPanic(err.Error())
		}

		return database
	}); err != nil {
		return err
	}

	return c.Provide(func(database *sqlite.Database) *txretainer.SubmissionRetainer {
		retainer, err := txretainer.New(Component.Logger().NewChildLogger("Submissions"), database.ExecDBFunc())
		if err != nil {
			Component.LogPanic(err.Error())
		}

		return retainer
	})
}

func prune() {
	deleted, err := deps.Retainer.Prune(time.Now().Add(-ParamsRetainer.RetentionPeriod))
	if err != nil {
		Component.LogWarnf("failed to prune submission outcomes: %s", err)

		return
	}

	if deleted > 0 {
		Component.LogDebugf("pruned %d submission outcomes", deleted)
	}
}

func run() error {
	return Component.Daemon().BackgroundWorker(Component.Name, func(ctx context.Context) {
		ticker := timeutil.NewTicker(prune, ParamsRetainer.PruningInterval, ctx)
		ticker.WaitForGracefulShutdown()

		<-ctx.Done()
		Component.LogInfo("Gracefully shutting down the Retainer...")
		deps.Database.Shutdown()
		Component.LogInfo("Gracefully shutting down the Retainer... done")
	}, daemon.PriorityCloseDatabase)
}
