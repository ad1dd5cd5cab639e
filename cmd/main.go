package main

import (
	"github.com/ordent/fulfillment/internal/app"
	"github.com/ordent/fulfillment/internal/config"
)

func main() {
	config.MustInit()

	app.MustNewApp().Run()
}
