package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/Rus1K7/Airport/cmd/groundctl/app"
)

func main() {
	if err := app.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
