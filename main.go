package main

import (
	"github.com/iotaledger/ledgerapi/components/app"
	"github.com/iotaledger/ledgerapi/pkg/toolset"
)

func main() {
	if toolset.ShouldHandleTools() {
		toolset.HandleTools()
		// HandleTools will call os.Exit
	}

	app.App().Run()
}
