package prometheus

// prometheus is the component responsible for the collection of prometheus metrics.
// All metrics are defined in metrics_<namespace>.go files with a different namespace for each collection.
// Metrics naming follows the guidelines from: https://prometheus.io/docs/practices/naming/
// In short:
// 	all metrics should be in base units, do not mix units,
// 	add suffix describing the unit,
// 	use 'total' suffix for accumulating counter

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/app"
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/components/prometheus/collector"
	"github.com/iotaledger/ledgerapi/pkg/daemon"
	"github.com/iotaledger/ledgerapi/pkg/mempool/mempoolv1"
	"github.com/iotaledger/ledgerapi/pkg/metrics"
	"github.com/iotaledger/ledgerapi/pkg/requesthandler"
	"github.com/iotaledger/ledgerapi/pkg/retainer/txretainer"
	"github.com/iotaledger/ledgerapi/pkg/storage/sqlite"
)

func init() {
	Component = &app.Component{
		Name:     "Prometheus",
		DepsFunc: func(cDeps dependencies) { deps = cDeps },
		Params:   params,
		Provide: func(c *dig.Container) error {
			return c.Provide(collector.New)
		},
		Run: run,
		IsEnabled: func(_ *dig.Container) bool {
			return ParamsMetrics.Enabled
		},
	}
}

var (
	Component *app.Component
	deps      dependencies
)

type dependencies struct {
	dig.In

	AppInfo        *app.Info
	RequestHandler *requesthandler.RequestHandler
	ServerMetrics  *metrics.ServerMetrics
	Mempool        *mempoolv1.Mempool
	Collector      *collector.Collector

	RetainerDatabase *sqlite.Database               `optional:"true"`
	Retainer         *txretainer.SubmissionRetainer `optional:"true"`
}

func run() error {
	Component.LogInfo("Starting Prometheus exporter ...")

	if ParamsMetrics.GoMetrics {
		deps.Collector.Registry.MustRegister(collectors.NewGoCollector())
	}
	if ParamsMetrics.ProcessMetrics {
		deps.Collector.Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	if err := registerMetrics(); err != nil {
		return err
	}

	return Component.Daemon().BackgroundWorker("Prometheus exporter", func(ctx context.Context) {
		Component.LogInfo("Starting Prometheus exporter ... done")

		engine := echo.New()
		engine.HideBanner = true
		engine.Use(middleware.Recover())

		engine.GET("/metrics", func(c echo.Context) error {
			deps.Collector.Collect()

			handler := promhttp.HandlerFor(
				deps.Collector.Registry,
				promhttp.HandlerOpts{
					EnableOpenMetrics: true,
				},
			)
			if ParamsMetrics.PromhttpMetrics {
				handler = promhttp.InstrumentMetricHandler(deps.Collector.Registry, handler)
			}
			handler.ServeHTTP(c.Response().Writer, c.Request())

			return nil
		})

		bindAddr := ParamsMetrics.BindAddress
		server := &http.Server{Addr: bindAddr, Handler: engine, ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}

		go func() {
			Component.LogInfof("You can now access the Prometheus exporter using: http://%s/metrics", bindAddr)
			if err := server.ListenAndServe(); err != nil && !ierrors.Is(err, http.ErrServerClosed) {
				Component.LogErrorf("Stopping Prometheus exporter due to an error (%s) ... done", err)
			}
		}()

		<-ctx.Done()
		Component.LogInfo("Stopping Prometheus exporter ...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		//nolint:contextcheck // false positive
		if err := server.Shutdown(shutdownCtx); err != nil {
			Component.LogError(err.Error())
		}

		Component.LogInfo("Stopping Prometheus exporter ... done")
	}, daemon.PriorityMetrics)
}

func registerMetrics() error {
	collections := []*collector.Collection{
		InfoMetrics,
		LedgerMetrics,
		MempoolMetrics,
	}
	if deps.RetainerDatabase != nil && deps.Retainer != nil {
		collections = append(collections, RetainerMetrics)
	}

	for _, collection := range collections {
		if err := deps.Collector.RegisterCollection(collection); err != nil {
			return ierrors.Wrapf(err, "failed to register %s metrics", collection.CollectionName)
		}
	}

	return nil
}
