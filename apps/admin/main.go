package main

import (
	"log"
	"os"

	"github.com/compliedu/backend/core"
	logsvc "github.com/compliedu/backend/services/logger"
	"github.com/compliedu/backend/storage/kv/file"
	"github.com/compliedu/backend/storage/kv/inmem"
	"github.com/compliedu/backend/storage/kv/postgres"
	"github.com/compliedu/backend/storage/kvrepos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	store, err := setUpStore(conf)
	errAndDie(err)

	rollbarLogger := logsvc.NewRollbarLogger(logger, conf)
	rollbarLogger.Enable(false)
	db := kvrepos.NewDB(store, rollbarLogger)

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: kvrepos.NewUserRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func setUpStore(conf *core.Config) (core.KeyValueStore, error) {
	switch conf.Storage.Backend {
	case "postgres":
		if err := postgres.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		return postgres.NewStore(conf)
	case "inmem":
		return inmem.NewStore(), nil
	default:
		return file.NewStore(conf.Storage.FileDir)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
