package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/fleetota-io/fleetota/cmd/fleet-simulator/app"
)

func main() {
	if err := app.NewSimulatorCommand().Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
