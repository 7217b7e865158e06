package app

import (
	"github.com/iotaledger/hive.go/app"
	"github.com/iotaledger/hive.go/app/components/profiling"
	"github.com/iotaledger/hive.go/app/components/shutdown"
	"github.com/iotaledger/ledgerapi/components/blockissuer"
	"github.com/iotaledger/ledgerapi/components/ledger"
	"github.com/iotaledger/ledgerapi/components/mempool"
	"github.com/iotaledger/ledgerapi/components/prometheus"
	"github.com/iotaledger/ledgerapi/components/restapi"
	coreapi "github.com/iotaledger/ledgerapi/components/restapi/core"
	"github.com/iotaledger/ledgerapi/components/restapi/management"
	"github.com/iotaledger/ledgerapi/components/retainer"
)

var (
	// Name of the app.
	Name = "ledgerapi"

	// Version of the app.
	Version = "0.1.0"
)

func App() *app.App {
	return app.New(Name, Version,
		app.WithInitComponent(InitComponent),
		app.WithComponents(
			shutdown.Component,
			profiling.Component,
			ledger.Component,
			retainer.Component,
			mempool.Component,
			blockissuer.Component,
			restapi.Component,
			coreapi.Component,
			management.Component,
			prometheus.Component,
		),
	)
}

var InitComponent *app.InitComponent

func init() {
	InitComponent = &app.InitComponent{
		Component: &app.Component{
			Name: "App",
		},
		NonHiddenFlags: []string{
			"config",
			"help",
			"version",
		},
	}
}
