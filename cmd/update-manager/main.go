package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/fleetota-io/fleetota/cmd/update-manager/app"
)

func main() {
	if err := app.NewUpdateManagerCommand().Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
