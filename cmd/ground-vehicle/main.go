package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/Rus1K7/Airport/cmd/ground-vehicle/app"
)

func main() {
	app.NewApp().Run()
}
