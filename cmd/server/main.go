package main

import (
	"log"

	"github.com/danateck/eco-file-system/internal/app"
	"github.com/danateck/eco-file-system/internal/config"
	"github.com/danateck/eco-file-system/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.InitLogger(cfg.Env); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := app.Run(cfg); err != nil {
		logger.Fatal(err.Error())
	}
}
