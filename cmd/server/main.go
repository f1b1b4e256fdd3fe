package main

import (
	"context"
	"log"
	"os"

	"github.com/EdProwise/beawar-school-sub001/internal/buildinfo"
	"github.com/EdProwise/beawar-school-sub001/internal/server"
	"github.com/EdProwise/beawar-school-sub001/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
