package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/subject"
	logsvc "github.com/trezcool/masomo-records/services/logger"
	"github.com/trezcool/masomo-records/storage/database"
)

func main() {
	conf := core.NewConfig()
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.Timeout*2)
	store, err := database.OpenStore(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal("opening database", err)
	}

	// start CLI
	cli := newCommandLine(store, subject.NewService(store.Repos.Subject, store.Repos.School, logger))
	err = cli.run(os.Args)

	ctx, cancel = context.WithTimeout(context.Background(), conf.Database.Timeout)
	defer cancel()
	if cErr := store.Close(ctx); cErr != nil {
		logger.Error("closing database", cErr)
	}

	if err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
